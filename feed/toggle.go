package feed

import "fmt"

// Toggle flips an engagement flag and moves its counter with it.
// Applying it twice returns the starting pair. The count is not clamped: a
// state that was never reachable, such as (true, 0), yields a negative count.
func Toggle(flag bool, count int) (bool, int) {
	if flag {
		return false, count - 1
	}
	return true, count + 1
}

type Engagement int

const (
	Like Engagement = iota
	Repost
	Bookmark
)

func (e Engagement) String() string {
	switch e {
	case Like:
		return "like"
	case Repost:
		return "repost"
	case Bookmark:
		return "bookmark"
	}
	return fmt.Sprintf("engagement(%d)", int(e))
}

// ParseEngagement maps a route segment such as "like" to its Engagement.
func ParseEngagement(s string) (Engagement, error) {
	switch s {
	case "like":
		return Like, nil
	case "repost":
		return Repost, nil
	case "bookmark":
		return Bookmark, nil
	}
	return 0, fmt.Errorf("unknown engagement %q", s)
}

// Engage applies Toggle to the flag/counter pair for e and returns the new flag.
// Bookmarks carry no counter, so only the flag moves.
func (p *Post) Engage(e Engagement) bool {
	switch e {
	case Like:
		p.Liked, p.LikeCount = Toggle(p.Liked, p.LikeCount)
		return p.Liked
	case Repost:
		p.Reposted, p.RepostCount = Toggle(p.Reposted, p.RepostCount)
		return p.Reposted
	case Bookmark:
		p.Bookmarked = !p.Bookmarked
		return p.Bookmarked
	}
	return false
}

// Flag returns the viewer's current flag for e.
func (p Post) Flag(e Engagement) bool {
	switch e {
	case Like:
		return p.Liked
	case Repost:
		return p.Reposted
	case Bookmark:
		return p.Bookmarked
	}
	return false
}

package feed

import "errors"

// ErrNotFound is returned when a lookup by identifier has no match.
var ErrNotFound = errors.New("not found")

// User is a profile. Users are immutable once seeded.
type User struct {
	ID             string
	Handle         string
	Name           string
	AvatarURL      string
	Verified       bool
	Bio            string
	FollowersCount int
	FollowingCount int
}

// Viewer is the single identity looking at the feed.
type Viewer struct {
	User
}

// Is reports whether handle belongs to the viewer.
func (v Viewer) Is(handle string) bool {
	return v.Handle == handle
}

// Post is a tweet together with the viewer's engagement flags.
type Post struct {
	ID          string
	Author      User
	Text        string
	ImageURL    string
	CreatedAt   string
	ReplyCount  int
	RepostCount int
	LikeCount   int
	Liked       bool
	Reposted    bool
	Bookmarked  bool
	ParentID    string
}

// IsReply reports whether the post answers another post.
func (p Post) IsReply() bool {
	return p.ParentID != ""
}

type NotificationKind string

const (
	KindLike   NotificationKind = "like"
	KindRepost NotificationKind = "repost"
	KindFollow NotificationKind = "follow"
	KindReply  NotificationKind = "reply"
)

// Verb is the phrase shown after the actor's name.
func (k NotificationKind) Verb() string {
	switch k {
	case KindLike:
		return "liked your post"
	case KindRepost:
		return "reposted your post"
	case KindFollow:
		return "followed you"
	case KindReply:
		return "replied to your post"
	}
	return ""
}

type Notification struct {
	ID        string
	Kind      NotificationKind
	Actor     User
	Post      *Post
	CreatedAt string
}

// Link points at the post when there is one, otherwise at the actor.
func (n Notification) Link() string {
	if n.Post != nil {
		return "/status/" + n.Post.ID
	}
	return "/" + n.Actor.Handle
}

type TrendingTopic struct {
	ID        string
	Name      string
	Category  string
	PostCount string
}

package feed

// BookmarkList is a derived view of bookmarked posts. It is seeded once by
// filtering and then kept current by Apply; it never re-reads the source list.
type BookmarkList struct {
	ids []string
}

func NewBookmarkList(posts []Post) *BookmarkList {
	l := &BookmarkList{}
	for _, p := range Filter(posts, IsBookmarked) {
		l.ids = append(l.ids, p.ID)
	}
	return l
}

// Apply records a bookmark flip: true appends the post, false removes it.
func (l *BookmarkList) Apply(id string, bookmarked bool) {
	i := l.index(id)
	switch {
	case bookmarked && i < 0:
		l.ids = append(l.ids, id)
	case !bookmarked && i >= 0:
		l.ids = append(l.ids[:i], l.ids[i+1:]...)
	}
}

// IDs returns a copy of the bookmarked post ids in display order.
func (l *BookmarkList) IDs() []string {
	return append([]string(nil), l.ids...)
}

func (l *BookmarkList) Len() int { return len(l.ids) }

func (l *BookmarkList) index(id string) int {
	for i, v := range l.ids {
		if v == id {
			return i
		}
	}
	return -1
}

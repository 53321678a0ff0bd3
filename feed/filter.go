package feed

import "strings"

// Filter returns the items for which keep is true, in their original order.
// The input slice is not modified.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func ByAuthor(handle string) func(Post) bool {
	return func(p Post) bool { return p.Author.Handle == handle }
}

func IsBookmarked(p Post) bool { return p.Bookmarked }

func TopLevel(p Post) bool { return !p.IsReply() }

func RepliesTo(id string) func(Post) bool {
	return func(p Post) bool { return p.ParentID == id }
}

// Matching keeps posts whose text contains query, ignoring case.
func Matching(query string) func(Post) bool {
	q := strings.ToLower(query)
	return func(p Post) bool { return strings.Contains(strings.ToLower(p.Text), q) }
}

package main

import (
	"fmt"
	"io"

	"chirp/feed"
)

// dumpPosts writes one line per seeded post: id, author, formatted likes and
// reposts, and whether it is bookmarked.
func dumpPosts(w io.Writer, seed *Seed) error {
	for _, p := range seed.Posts {
		_, err := fmt.Fprintf(w, "%s,@%s,%s,%s,%t\n",
			p.ID, p.Author.Handle, feed.FormatCount(p.LikeCount), feed.FormatCount(p.RepostCount), p.Bookmarked)
		if err != nil {
			return err
		}
	}
	return nil
}

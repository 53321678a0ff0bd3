package main

import (
	"net/url"

	"chirp/feed"
)

// View models handed to the templates. Counts are formatted here so the
// templates only print strings.

func userView(u feed.User) map[string]interface{} {
	return map[string]interface{}{
		"id":        u.ID,
		"handle":    u.Handle,
		"name":      u.Name,
		"avatar":    u.AvatarURL,
		"initial":   initial(u.Name),
		"verified":  u.Verified,
		"bio":       segmentViews(u.Bio),
		"followers": feed.FormatCount(u.FollowersCount),
		"following": feed.FormatCount(u.FollowingCount),
	}
}

func initial(name string) string {
	for _, r := range name {
		return string(r)
	}
	return ""
}

func segmentViews(text string) []map[string]interface{} {
	segments := feed.Tokenize(text)
	out := make([]map[string]interface{}, 0, len(segments))
	for _, s := range segments {
		out = append(out, map[string]interface{}{
			"kind": s.Kind.String(),
			"text": s.Text,
			"href": s.Href(),
		})
	}
	return out
}

func postView(p feed.Post) map[string]interface{} {
	return map[string]interface{}{
		"id":         p.ID,
		"author":     userView(p.Author),
		"segments":   segmentViews(p.Text),
		"image":      p.ImageURL,
		"createdAt":  p.CreatedAt,
		"replies":    feed.FormatCount(p.ReplyCount),
		"reposts":    feed.FormatCount(p.RepostCount),
		"likes":      feed.FormatCount(p.LikeCount),
		"liked":      p.Liked,
		"reposted":   p.Reposted,
		"bookmarked": p.Bookmarked,
		"parentID":   p.ParentID,
	}
}

func notificationView(n feed.Notification) map[string]interface{} {
	v := map[string]interface{}{
		"id":        n.ID,
		"kind":      string(n.Kind),
		"verb":      n.Kind.Verb(),
		"actor":     userView(n.Actor),
		"link":      n.Link(),
		"createdAt": n.CreatedAt,
		"text":      "",
	}
	if n.Post != nil {
		v["text"] = n.Post.Text
	}
	return v
}

func trendingViews(topics []feed.TrendingTopic) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(topics))
	for _, t := range topics {
		out = append(out, map[string]interface{}{
			"name":     t.Name,
			"category": t.Category,
			"count":    t.PostCount,
			"href":     "/explore?q=" + url.QueryEscape(t.Name),
		})
	}
	return out
}

// suggestionViews lists the first three users other than the viewer.
func suggestionViews(viewer feed.Viewer, users []feed.User) []map[string]interface{} {
	others := feed.Filter(users, func(u feed.User) bool { return !viewer.Is(u.Handle) })
	if len(others) > 3 {
		others = others[:3]
	}
	out := make([]map[string]interface{}, 0, len(others))
	for _, u := range others {
		out = append(out, userView(u))
	}
	return out
}

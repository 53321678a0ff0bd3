package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"chirp/feed"
)

const maxPostChars = 280

// cards renders one post card per post. next is where the card's action
// buttons return to.
func (a *app) cards(posts []feed.Post, next string) ([]string, error) {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		card, err := a.pages.render("post.html", map[string]interface{}{
			"post": postView(p),
			"next": next,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, card)
	}
	return out, nil
}

func (a *app) notFound(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, r, http.StatusNotFound, "notfound.html", map[string]interface{}{
		"title": "Not found",
	})
}

// GET /home: top-level posts, newest first
func (a *app) homeHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := a.store.Posts(r.Context())
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	posts = feed.Filter(posts, feed.TopLevel)
	if len(posts) > a.cfg.Server.PerPage {
		posts = posts[:a.cfg.Server.PerPage]
	}
	cards, err := a.cards(posts, "/home")
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.renderTemplate(w, r, http.StatusOK, "timeline.html", map[string]interface{}{
		"title":    "Home",
		"cards":    cards,
		"compose":  true,
		"maxChars": maxPostChars,
		"empty":    "Nothing here yet.",
	})
}

// GET /explore: trending topics and a handful of posts, or search results for q
func (a *app) exploreHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	posts, err := a.store.Posts(r.Context())
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	if query != "" {
		posts = feed.Filter(posts, feed.Matching(query))
	} else {
		posts = feed.Filter(posts, feed.TopLevel)
		if len(posts) > 5 {
			posts = posts[:5]
		}
	}
	trending, err := a.store.Trending(r.Context())
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	cards, err := a.cards(posts, r.URL.RequestURI())
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.renderTemplate(w, r, http.StatusOK, "explore.html", map[string]interface{}{
		"title":  "Explore",
		"query":  query,
		"topics": trendingViews(trending),
		"cards":  cards,
	})
}

// GET /notifications
func (a *app) notificationsHandler(w http.ResponseWriter, r *http.Request) {
	notifications, err := a.store.Notifications(r.Context())
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	items := make([]map[string]interface{}, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, notificationView(n))
	}
	a.renderTemplate(w, r, http.StatusOK, "notifications.html", map[string]interface{}{
		"title":         "Notifications",
		"notifications": items,
	})
}

// GET /bookmarks
func (a *app) bookmarksHandler(w http.ResponseWriter, r *http.Request) {
	posts, err := a.store.Bookmarks(r.Context())
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	cards, err := a.cards(posts, "/bookmarks")
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.renderTemplate(w, r, http.StatusOK, "timeline.html", map[string]interface{}{
		"title":    "Bookmarks",
		"cards":    cards,
		"compose":  false,
		"maxChars": maxPostChars,
		"empty":    "Save posts for later. Bookmark posts to easily find them again in the future.",
	})
}

// GET /status/{id}: a single post and its replies
func (a *app) statusHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	post, err := a.store.PostByID(r.Context(), id)
	if errors.Is(err, feed.ErrNotFound) {
		a.notFound(w, r)
		return
	} else if err != nil {
		a.serverError(w, r, err)
		return
	}

	posts, err := a.store.Posts(r.Context())
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	next := "/status/" + id
	card, err := a.cards([]feed.Post{post}, next)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	replies, err := a.cards(feed.Filter(posts, feed.RepliesTo(id)), next)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.renderTemplate(w, r, http.StatusOK, "status.html", map[string]interface{}{
		"title":   "Post",
		"post":    card[0],
		"replies": replies,
	})
}

// GET /{handle}: profile and posts by that user
func (a *app) profileHandler(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	ctx := r.Context()

	var profile feed.User
	if a.viewer.Is(handle) {
		profile = a.viewer.User
	} else {
		u, err := a.store.UserByHandle(ctx, handle)
		if errors.Is(err, feed.ErrNotFound) {
			a.notFound(w, r)
			return
		} else if err != nil {
			a.serverError(w, r, err)
			return
		}
		profile = u
	}

	following := false
	if !a.viewer.Is(handle) {
		var err error
		if following, err = a.store.IsFollowing(ctx, handle); err != nil {
			a.serverError(w, r, err)
			return
		}
	}

	posts, err := a.store.Posts(ctx)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	cards, err := a.cards(feed.Filter(posts, feed.ByAuthor(handle)), "/"+handle)
	if err != nil {
		a.serverError(w, r, err)
		return
	}
	a.renderTemplate(w, r, http.StatusOK, "profile.html", map[string]interface{}{
		"title":     profile.Name,
		"profile":   userView(profile),
		"isViewer":  a.viewer.Is(handle),
		"following": following,
		"cards":     cards,
	})
}

var engagementFlashes = map[feed.Engagement][2]string{
	feed.Like:     {"You no longer like this post", "You liked this post"},
	feed.Repost:   {"You undid your repost", "You reposted this post"},
	feed.Bookmark: {"Removed from your Bookmarks", "Added to your Bookmarks"},
}

// POST /status/{id}/{action}: like, repost or bookmark toggle
func (a *app) engageHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]
	e, err := feed.ParseEngagement(vars["action"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	post, err := a.store.Engage(r.Context(), id, e)
	if errors.Is(err, feed.ErrNotFound) {
		a.notFound(w, r)
		return
	} else if err != nil {
		a.serverError(w, r, err)
		return
	}

	on := post.Flag(e)
	observeToggle(e.String(), on)
	log.WithFields(log.Fields{"post": id, "kind": e, "on": on}).Info("engagement toggled")

	msg := engagementFlashes[e][0]
	if on {
		msg = engagementFlashes[e][1]
	}
	a.addFlash(w, r, msg)
	http.Redirect(w, r, redirectTarget(r, "/status/"+id), http.StatusFound)
}

// POST /status/{id}/share
func (a *app) shareHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := a.store.PostByID(r.Context(), id); errors.Is(err, feed.ErrNotFound) {
		a.notFound(w, r)
		return
	} else if err != nil {
		a.serverError(w, r, err)
		return
	}

	link := origin(r) + "/status/" + id
	if err := a.clipboard.Copy(w, r, link); err != nil {
		log.WithError(err).Debug("copy share link")
	}
	http.Redirect(w, r, redirectTarget(r, "/status/"+id), http.StatusFound)
}

// POST /compose
func (a *app) composeHandler(w http.ResponseWriter, r *http.Request) {
	text := strings.TrimSpace(r.FormValue("text"))
	switch {
	case text == "":
		a.addFlash(w, r, "You have to enter some text")
	case utf8.RuneCountInString(text) > maxPostChars:
		a.addFlash(w, r, fmt.Sprintf("Your post is over the %d character limit", maxPostChars))
	default:
		post := feed.Post{
			ID:        "post-" + uuid.NewString(),
			Author:    a.viewer.User,
			Text:      text,
			CreatedAt: "now",
		}
		if err := a.store.AddPost(r.Context(), post); err != nil {
			a.serverError(w, r, err)
			return
		}
		log.WithField("post", post.ID).Info("post recorded")
		a.addFlash(w, r, "Your post was sent")
	}
	http.Redirect(w, r, redirectTarget(r, "/home"), http.StatusFound)
}

// POST /{handle}/follow
func (a *app) followHandler(w http.ResponseWriter, r *http.Request) {
	handle := mux.Vars(r)["handle"]
	if a.viewer.Is(handle) {
		a.addFlash(w, r, "You cannot follow yourself")
		http.Redirect(w, r, "/"+handle, http.StatusFound)
		return
	}

	following, err := a.store.ToggleFollow(r.Context(), handle)
	if errors.Is(err, feed.ErrNotFound) {
		a.notFound(w, r)
		return
	} else if err != nil {
		a.serverError(w, r, err)
		return
	}
	if following {
		a.addFlash(w, r, fmt.Sprintf("You are now following \"%s\"", handle))
	} else {
		a.addFlash(w, r, fmt.Sprintf("You are no longer following \"%s\"", handle))
	}
	http.Redirect(w, r, "/"+handle, http.StatusFound)
}

// redirectTarget honors a "next" form value that stays on this site,
// falling back to def.
func redirectTarget(r *http.Request, def string) string {
	next := r.FormValue("next")
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return def
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return def
	}
	return next
}

// GET /messages
func (a *app) messagesHandler(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, r, http.StatusOK, "messages.html", map[string]interface{}{
		"title": "Messages",
	})
}

package main

import (
	_ "embed"
	"fmt"
	"net/url"

	"gopkg.in/yaml.v3"

	"chirp/feed"
)

//go:embed seed.yaml
var defaultSeed []byte

type seedUser struct {
	ID        string `yaml:"id"`
	Handle    string `yaml:"handle"`
	Name      string `yaml:"name"`
	Verified  bool   `yaml:"verified"`
	Bio       string `yaml:"bio"`
	Followers int    `yaml:"followers"`
	Following int    `yaml:"following"`
}

type seedPost struct {
	ID         string `yaml:"id"`
	Author     string `yaml:"author"`
	Text       string `yaml:"text"`
	Image      string `yaml:"image"`
	CreatedAt  string `yaml:"createdAt"`
	Replies    int    `yaml:"replies"`
	Reposts    int    `yaml:"reposts"`
	Likes      int    `yaml:"likes"`
	Liked      bool   `yaml:"liked"`
	Reposted   bool   `yaml:"reposted"`
	Bookmarked bool   `yaml:"bookmarked"`
	Parent     string `yaml:"parent"`
}

type seedNotification struct {
	ID        string `yaml:"id"`
	Kind      string `yaml:"kind"`
	Actor     string `yaml:"actor"`
	Post      string `yaml:"post"`
	CreatedAt string `yaml:"createdAt"`
}

type seedTrend struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Category  string `yaml:"category"`
	PostCount string `yaml:"postCount"`
}

type seedFile struct {
	Users         []seedUser         `yaml:"users"`
	Posts         []seedPost         `yaml:"posts"`
	Notifications []seedNotification `yaml:"notifications"`
	Trending      []seedTrend        `yaml:"trending"`
}

// Seed is the resolved data every store starts from.
type Seed struct {
	Users         []feed.User
	Posts         []feed.Post
	Notifications []feed.Notification
	Trending      []feed.TrendingTopic
}

func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.PathEscape(name) + "&background=random&size=128"
}

// parseSeed decodes YAML seed data and resolves handle and id references.
func parseSeed(data []byte) (*Seed, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	s := &Seed{}
	byHandle := make(map[string]feed.User)
	for _, u := range f.Users {
		if _, dup := byHandle[u.Handle]; dup {
			return nil, fmt.Errorf("seed: duplicate handle %q", u.Handle)
		}
		user := feed.User{
			ID:             u.ID,
			Handle:         u.Handle,
			Name:           u.Name,
			AvatarURL:      avatarURL(u.Name),
			Verified:       u.Verified,
			Bio:            u.Bio,
			FollowersCount: u.Followers,
			FollowingCount: u.Following,
		}
		byHandle[u.Handle] = user
		s.Users = append(s.Users, user)
	}

	byID := make(map[string]feed.Post)
	for _, p := range f.Posts {
		author, ok := byHandle[p.Author]
		if !ok {
			return nil, fmt.Errorf("seed: post %s: unknown author %q", p.ID, p.Author)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("seed: duplicate post %q", p.ID)
		}
		post := feed.Post{
			ID:          p.ID,
			Author:      author,
			Text:        p.Text,
			ImageURL:    p.Image,
			CreatedAt:   p.CreatedAt,
			ReplyCount:  p.Replies,
			RepostCount: p.Reposts,
			LikeCount:   p.Likes,
			Liked:       p.Liked,
			Reposted:    p.Reposted,
			Bookmarked:  p.Bookmarked,
			ParentID:    p.Parent,
		}
		byID[p.ID] = post
		s.Posts = append(s.Posts, post)
	}
	for _, p := range s.Posts {
		if p.ParentID != "" {
			if _, ok := byID[p.ParentID]; !ok {
				return nil, fmt.Errorf("seed: post %s: unknown parent %q", p.ID, p.ParentID)
			}
		}
	}

	for _, n := range f.Notifications {
		kind := feed.NotificationKind(n.Kind)
		if kind.Verb() == "" {
			return nil, fmt.Errorf("seed: notification %s: unknown kind %q", n.ID, n.Kind)
		}
		actor, ok := byHandle[n.Actor]
		if !ok {
			return nil, fmt.Errorf("seed: notification %s: unknown actor %q", n.ID, n.Actor)
		}
		notification := feed.Notification{ID: n.ID, Kind: kind, Actor: actor, CreatedAt: n.CreatedAt}
		if n.Post != "" {
			p, ok := byID[n.Post]
			if !ok {
				return nil, fmt.Errorf("seed: notification %s: unknown post %q", n.ID, n.Post)
			}
			notification.Post = &p
		}
		s.Notifications = append(s.Notifications, notification)
	}

	for _, t := range f.Trending {
		s.Trending = append(s.Trending, feed.TrendingTopic{ID: t.ID, Name: t.Name, Category: t.Category, PostCount: t.PostCount})
	}
	return s, nil
}

// viewer picks the seeded user that acts as the logged-in identity.
func (s *Seed) viewer(handle string) (feed.Viewer, error) {
	for _, u := range s.Users {
		if u.Handle == handle {
			return feed.Viewer{User: u}, nil
		}
	}
	return feed.Viewer{}, fmt.Errorf("viewer %q: %w", handle, feed.ErrNotFound)
}

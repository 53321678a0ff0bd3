package main

import (
	"context"
	"fmt"
	"sync"

	"chirp/feed"
)

// Store holds the seeded feed for the lifetime of the process.
// Lookups that miss return an error wrapping feed.ErrNotFound.
type Store interface {
	Users(ctx context.Context) ([]feed.User, error)
	UserByHandle(ctx context.Context, handle string) (feed.User, error)
	Posts(ctx context.Context) ([]feed.Post, error)
	PostByID(ctx context.Context, id string) (feed.Post, error)
	Engage(ctx context.Context, id string, e feed.Engagement) (feed.Post, error)
	AddPost(ctx context.Context, p feed.Post) error
	Bookmarks(ctx context.Context) ([]feed.Post, error)
	Notifications(ctx context.Context) ([]feed.Notification, error)
	Trending(ctx context.Context) ([]feed.TrendingTopic, error)
	IsFollowing(ctx context.Context, handle string) (bool, error)
	ToggleFollow(ctx context.Context, handle string) (bool, error)
	Close() error
}

func openStore(cfg StorageConfig, seed *Seed) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return newMemoryStore(seed), nil
	case "sqlite", "sqlite3":
		return newSQLiteStore(cfg.DSN, seed)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// memoryStore keeps the seed in plain slices. A single mutex serializes
// every toggle so concurrent requests cannot interleave a read-modify-write.
type memoryStore struct {
	mu            sync.Mutex
	users         []feed.User
	posts         []feed.Post
	notifications []feed.Notification
	trending      []feed.TrendingTopic
	following     map[string]bool
	bookmarks     *feed.BookmarkList
}

func newMemoryStore(seed *Seed) *memoryStore {
	return &memoryStore{
		users:         append([]feed.User(nil), seed.Users...),
		posts:         append([]feed.Post(nil), seed.Posts...),
		notifications: append([]feed.Notification(nil), seed.Notifications...),
		trending:      append([]feed.TrendingTopic(nil), seed.Trending...),
		following:     make(map[string]bool),
		bookmarks:     feed.NewBookmarkList(seed.Posts),
	}
}

func (s *memoryStore) Users(ctx context.Context) ([]feed.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]feed.User(nil), s.users...), nil
}

func (s *memoryStore) UserByHandle(ctx context.Context, handle string) (feed.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(handle)
	if i < 0 {
		return feed.User{}, fmt.Errorf("user %q: %w", handle, feed.ErrNotFound)
	}
	return s.users[i], nil
}

func (s *memoryStore) Posts(ctx context.Context) ([]feed.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]feed.Post(nil), s.posts...), nil
}

func (s *memoryStore) PostByID(ctx context.Context, id string) (feed.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.postIndex(id)
	if i < 0 {
		return feed.Post{}, fmt.Errorf("post %q: %w", id, feed.ErrNotFound)
	}
	return s.posts[i], nil
}

func (s *memoryStore) Engage(ctx context.Context, id string, e feed.Engagement) (feed.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.postIndex(id)
	if i < 0 {
		return feed.Post{}, fmt.Errorf("post %q: %w", id, feed.ErrNotFound)
	}
	flag := s.posts[i].Engage(e)
	if e == feed.Bookmark {
		s.bookmarks.Apply(id, flag)
	}
	return s.posts[i], nil
}

// AddPost puts p at the top of the timeline.
func (s *memoryStore) AddPost(ctx context.Context, p feed.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.postIndex(p.ID) >= 0 {
		return fmt.Errorf("post %q already exists", p.ID)
	}
	s.posts = append([]feed.Post{p}, s.posts...)
	if p.Bookmarked {
		s.bookmarks.Apply(p.ID, true)
	}
	return nil
}

func (s *memoryStore) Bookmarks(ctx context.Context) ([]feed.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []feed.Post
	for _, id := range s.bookmarks.IDs() {
		if i := s.postIndex(id); i >= 0 {
			out = append(out, s.posts[i])
		}
	}
	return out, nil
}

func (s *memoryStore) Notifications(ctx context.Context) ([]feed.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]feed.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if n.Post != nil {
			if i := s.postIndex(n.Post.ID); i >= 0 {
				p := s.posts[i]
				n.Post = &p
			}
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *memoryStore) Trending(ctx context.Context) ([]feed.TrendingTopic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]feed.TrendingTopic(nil), s.trending...), nil
}

func (s *memoryStore) IsFollowing(ctx context.Context, handle string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userIndex(handle) < 0 {
		return false, fmt.Errorf("user %q: %w", handle, feed.ErrNotFound)
	}
	return s.following[handle], nil
}

// ToggleFollow flips the follow flag only; follower counts are left alone.
func (s *memoryStore) ToggleFollow(ctx context.Context, handle string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userIndex(handle) < 0 {
		return false, fmt.Errorf("user %q: %w", handle, feed.ErrNotFound)
	}
	s.following[handle] = !s.following[handle]
	return s.following[handle], nil
}

func (s *memoryStore) Close() error { return nil }

func (s *memoryStore) userIndex(handle string) int {
	for i, u := range s.users {
		if u.Handle == handle {
			return i
		}
	}
	return -1
}

func (s *memoryStore) postIndex(id string) int {
	for i, p := range s.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

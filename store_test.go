package main

import (
	"context"
	"errors"
	"sync"
	"testing"

	"chirp/feed"
)

// storesUnderTest returns one freshly seeded store per driver.
func storesUnderTest(t *testing.T) map[string]Store {
	t.Helper()
	stores := map[string]Store{}
	for _, driver := range []string{"memory", "sqlite"} {
		seed, err := parseSeed(defaultSeed)
		if err != nil {
			t.Fatal(err)
		}
		s, err := openStore(StorageConfig{Driver: driver, DSN: ":memory:"}, seed)
		if err != nil {
			t.Fatalf("open %s: %v", driver, err)
		}
		t.Cleanup(func() { s.Close() })
		stores[driver] = s
	}
	return stores
}

func postIDs(posts []feed.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStoreEngageLike(t *testing.T) {
	ctx := context.Background()
	for driver, s := range storesUnderTest(t) {
		p, err := s.Engage(ctx, "tweet-16", feed.Like)
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		if !p.Liked || p.LikeCount != 11 {
			t.Errorf("%s: got liked=%v count=%d, want true 11", driver, p.Liked, p.LikeCount)
		}
		if p.RepostCount != 2 || p.Reposted {
			t.Errorf("%s: like touched repost state", driver)
		}

		if _, err := s.Engage(ctx, "tweet-16", feed.Like); err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		p, err = s.PostByID(ctx, "tweet-16")
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		if p.Liked || p.LikeCount != 10 {
			t.Errorf("%s: got liked=%v count=%d after second toggle, want false 10", driver, p.Liked, p.LikeCount)
		}
	}
}

func TestStoreEngageNotFound(t *testing.T) {
	ctx := context.Background()
	for driver, s := range storesUnderTest(t) {
		if _, err := s.Engage(ctx, "nope", feed.Like); !errors.Is(err, feed.ErrNotFound) {
			t.Errorf("%s: Engage on unknown post: got %v", driver, err)
		}
		if _, err := s.PostByID(ctx, "nope"); !errors.Is(err, feed.ErrNotFound) {
			t.Errorf("%s: PostByID on unknown post: got %v", driver, err)
		}
		if _, err := s.UserByHandle(ctx, "nobody"); !errors.Is(err, feed.ErrNotFound) {
			t.Errorf("%s: UserByHandle on unknown user: got %v", driver, err)
		}
		if _, err := s.ToggleFollow(ctx, "nobody"); !errors.Is(err, feed.ErrNotFound) {
			t.Errorf("%s: ToggleFollow on unknown user: got %v", driver, err)
		}
	}
}

func TestStoreBookmarkOrder(t *testing.T) {
	ctx := context.Background()
	for driver, s := range storesUnderTest(t) {
		got, err := s.Bookmarks(ctx)
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		if want := []string{"tweet-2", "tweet-7", "tweet-11"}; !equalIDs(postIDs(got), want) {
			t.Errorf("%s: seeded bookmarks = %v, want %v", driver, postIDs(got), want)
		}

		for _, id := range []string{"tweet-2", "tweet-1", "tweet-2"} {
			if _, err := s.Engage(ctx, id, feed.Bookmark); err != nil {
				t.Fatalf("%s: %v", driver, err)
			}
		}
		got, err = s.Bookmarks(ctx)
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		if want := []string{"tweet-7", "tweet-11", "tweet-1", "tweet-2"}; !equalIDs(postIDs(got), want) {
			t.Errorf("%s: bookmarks = %v, want %v", driver, postIDs(got), want)
		}
		for _, p := range got {
			if !p.Bookmarked {
				t.Errorf("%s: %s listed but not flagged bookmarked", driver, p.ID)
			}
		}
	}
}

func TestStoreAddPost(t *testing.T) {
	ctx := context.Background()
	for driver, s := range storesUnderTest(t) {
		viewer, err := s.UserByHandle(ctx, "yourhandle")
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		err = s.AddPost(ctx, feed.Post{ID: "post-new", Author: viewer, Text: "first!", CreatedAt: "now"})
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		posts, err := s.Posts(ctx)
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		if len(posts) == 0 || posts[0].ID != "post-new" {
			t.Fatalf("%s: new post not at the top: %v", driver, postIDs(posts))
		}
		if posts[0].Author.Handle != "yourhandle" || posts[0].Text != "first!" {
			t.Errorf("%s: new post stored as %+v", driver, posts[0])
		}
		if posts[1].ID != "tweet-1" {
			t.Errorf("%s: second post = %s, want tweet-1", driver, posts[1].ID)
		}
	}
}

func TestStoreToggleFollow(t *testing.T) {
	ctx := context.Background()
	for driver, s := range storesUnderTest(t) {
		before, _ := s.UserByHandle(ctx, "nextjs")

		following, err := s.ToggleFollow(ctx, "nextjs")
		if err != nil || !following {
			t.Fatalf("%s: first toggle = %v, %v", driver, following, err)
		}
		if ok, _ := s.IsFollowing(ctx, "nextjs"); !ok {
			t.Errorf("%s: expected to follow nextjs", driver)
		}
		following, err = s.ToggleFollow(ctx, "nextjs")
		if err != nil || following {
			t.Fatalf("%s: second toggle = %v, %v", driver, following, err)
		}

		after, _ := s.UserByHandle(ctx, "nextjs")
		if after.FollowersCount != before.FollowersCount {
			t.Errorf("%s: follower count changed from %d to %d", driver, before.FollowersCount, after.FollowersCount)
		}
	}
}

func TestStoreNotifications(t *testing.T) {
	ctx := context.Background()
	for driver, s := range storesUnderTest(t) {
		notifications, err := s.Notifications(ctx)
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		if len(notifications) != 12 {
			t.Fatalf("%s: got %d notifications, want 12", driver, len(notifications))
		}
		n := notifications[4]
		if n.ID != "notif-5" || n.Kind != feed.KindReply || n.Actor.Handle != "vercel" {
			t.Errorf("%s: unexpected notification %+v", driver, n)
		}
		if n.Post == nil || n.Post.ID != "reply-1" {
			t.Errorf("%s: reply notification not resolved to reply-1", driver)
		}
		if follow := notifications[2]; follow.Post != nil || follow.Link() != "/nextjs" {
			t.Errorf("%s: follow notification should link to the actor", driver)
		}

		trending, err := s.Trending(ctx)
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		if len(trending) != 7 || trending[0].Name != "#BuildInPublic" {
			t.Errorf("%s: unexpected trending %+v", driver, trending)
		}
	}
}

func TestStoreConcurrentToggles(t *testing.T) {
	ctx := context.Background()
	for driver, s := range storesUnderTest(t) {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Engage(ctx, "tweet-16", feed.Like); err != nil {
					t.Error(err)
				}
			}()
		}
		wg.Wait()

		p, err := s.PostByID(ctx, "tweet-16")
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		// an even number of toggles lands back on the seed state
		if p.Liked || p.LikeCount != 10 {
			t.Errorf("%s: got liked=%v count=%d, want false 10", driver, p.Liked, p.LikeCount)
		}
	}
}

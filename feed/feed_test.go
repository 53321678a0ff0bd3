package feed

import (
	"reflect"
	"strings"
	"testing"
)

func TestToggle(t *testing.T) {
	for _, count := range []int{0, 1, 10, 999_999} {
		flag, n := Toggle(false, count)
		if !flag || n != count+1 {
			t.Errorf("Toggle(false, %d) = (%v, %d), want (true, %d)", count, flag, n, count+1)
		}
		flag, n = Toggle(true, count)
		if flag || n != count-1 {
			t.Errorf("Toggle(true, %d) = (%v, %d), want (false, %d)", count, flag, n, count-1)
		}
	}
}

func TestToggleIsSelfInverse(t *testing.T) {
	flag, count := false, 0
	for i := 0; i < 7; i++ {
		f2, c2 := Toggle(Toggle(flag, count))
		if f2 != flag || c2 != count {
			t.Fatalf("double toggle from (%v, %d) gave (%v, %d)", flag, count, f2, c2)
		}
		flag, count = Toggle(flag, count)
	}
}

func TestToggleDoesNotClamp(t *testing.T) {
	flag, count := Toggle(true, 0)
	if flag || count != -1 {
		t.Errorf("Toggle(true, 0) = (%v, %d), want (false, -1)", flag, count)
	}
}

func TestPostEngageLikeRoundTrip(t *testing.T) {
	p := Post{ID: "p1", LikeCount: 10}

	if liked := p.Engage(Like); !liked || p.LikeCount != 11 {
		t.Fatalf("after first like: liked=%v count=%d", liked, p.LikeCount)
	}
	if liked := p.Engage(Like); liked || p.LikeCount != 10 {
		t.Fatalf("after second like: liked=%v count=%d", liked, p.LikeCount)
	}
}

func TestPostEngageTouchesOnePair(t *testing.T) {
	p := Post{LikeCount: 5, RepostCount: 3, ReplyCount: 2}
	p.Engage(Repost)
	if !p.Reposted || p.RepostCount != 4 {
		t.Errorf("repost pair = (%v, %d)", p.Reposted, p.RepostCount)
	}
	if p.Liked || p.LikeCount != 5 || p.ReplyCount != 2 || p.Bookmarked {
		t.Errorf("repost changed other fields: %+v", p)
	}

	p.Engage(Bookmark)
	if !p.Bookmarked || p.LikeCount != 5 || p.RepostCount != 4 {
		t.Errorf("bookmark changed counters: %+v", p)
	}
}

func TestParseEngagement(t *testing.T) {
	for _, e := range []Engagement{Like, Repost, Bookmark} {
		got, err := ParseEngagement(e.String())
		if err != nil || got != e {
			t.Errorf("ParseEngagement(%q) = %v, %v", e.String(), got, err)
		}
	}
	if _, err := ParseEngagement("share"); err == nil {
		t.Error("expected error for unknown engagement")
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		text string
		want []Segment
	}{
		{"hello @world and #topic!", []Segment{
			{Plain, "hello "}, {Mention, "@world"}, {Plain, " and "}, {Hashtag, "#topic"}, {Plain, "!"},
		}},
		{"", nil},
		{"no tags here", []Segment{{Plain, "no tags here"}}},
		{"@a#b", []Segment{{Mention, "@a"}, {Hashtag, "#b"}}},
		{"lone @ and # signs", []Segment{{Plain, "lone @ and # signs"}}},
		{"@@dan_abramov", []Segment{{Plain, "@"}, {Mention, "@dan_abramov"}}},
		{"mail me@example.com", []Segment{{Plain, "mail me"}, {Mention, "@example"}, {Plain, ".com"}}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"Tailwind CSS v4: the new @theme directive #css",
		"#React19 is out!\n\nThanks @reactjs @vercel",
		"ünïcode @ñame #日本",
		"@@##__",
	}
	for _, in := range inputs {
		var b strings.Builder
		for _, s := range Tokenize(in) {
			b.WriteString(s.Text)
		}
		if b.String() != in {
			t.Errorf("round trip of %q gave %q", in, b.String())
		}
	}
}

func TestSegmentLinks(t *testing.T) {
	m := Segment{Kind: Mention, Text: "@vercel"}
	if m.Handle() != "vercel" || m.Href() != "/vercel" {
		t.Errorf("mention handle=%q href=%q", m.Handle(), m.Href())
	}
	h := Segment{Kind: Hashtag, Text: "#React19"}
	if h.Href() != "/explore?q=%23React19" {
		t.Errorf("hashtag href=%q", h.Href())
	}
	if h.Handle() != "" {
		t.Errorf("hashtag handle=%q", h.Handle())
	}
	if (Segment{Kind: Plain, Text: "x"}).Href() != "" {
		t.Error("plain segment has an href")
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0K"},
		{1050, "1.1K"},
		{1150, "1.2K"},
		{12_500, "12.5K"},
		{999_949, "999.9K"},
		{999_999, "1000.0K"},
		{1_000_000, "1.0M"},
		{1_234_567, "1.2M"},
		{1_250_000, "1.3M"},
		{170_000_000, "170.0M"},
	}
	for _, tt := range tests {
		if got := FormatCount(tt.count); got != tt.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}

func fivePosts() []Post {
	alice := User{Handle: "alice"}
	bob := User{Handle: "bob"}
	return []Post{
		{ID: "1", Author: alice},
		{ID: "2", Author: bob, Bookmarked: true},
		{ID: "3", Author: alice, Bookmarked: true},
		{ID: "4", Author: bob, ParentID: "1"},
		{ID: "5", Author: alice, ParentID: "1"},
	}
}

func ids(posts []Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterByAuthor(t *testing.T) {
	posts := fivePosts()
	got := Filter(posts, ByAuthor("alice"))
	if want := []string{"1", "3", "5"}; !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("got %v, want %v", ids(got), want)
	}
	again := Filter(got, ByAuthor("alice"))
	if !reflect.DeepEqual(again, got) {
		t.Errorf("re-filtering changed result: %v", ids(again))
	}
	if len(posts) != 5 || posts[1].ID != "2" {
		t.Error("filter modified its input")
	}
}

func TestFilterPredicates(t *testing.T) {
	posts := fivePosts()
	tests := []struct {
		name string
		keep func(Post) bool
		want []string
	}{
		{"bookmarked", IsBookmarked, []string{"2", "3"}},
		{"top level", TopLevel, []string{"1", "2", "3"}},
		{"replies", RepliesTo("1"), []string{"4", "5"}},
		{"nobody", ByAuthor("carol"), []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(Filter(posts, tt.keep)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatching(t *testing.T) {
	posts := []Post{{ID: "a", Text: "Loving #React19"}, {ID: "b", Text: "rust"}}
	if got := ids(Filter(posts, Matching("#react19"))); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("got %v", got)
	}
}

func TestBookmarkList(t *testing.T) {
	l := NewBookmarkList(fivePosts())
	if want := []string{"2", "3"}; !reflect.DeepEqual(l.IDs(), want) {
		t.Fatalf("seeded %v, want %v", l.IDs(), want)
	}

	l.Apply("2", false)
	l.Apply("1", true)
	l.Apply("2", true)
	l.Apply("1", true)
	if want := []string{"3", "1", "2"}; !reflect.DeepEqual(l.IDs(), want) {
		t.Errorf("got %v, want %v", l.IDs(), want)
	}

	l.Apply("9", false)
	if l.Len() != 3 {
		t.Errorf("removing an absent id changed the list: %v", l.IDs())
	}
}

func TestNotificationLink(t *testing.T) {
	actor := User{Handle: "nextjs"}
	follow := Notification{Kind: KindFollow, Actor: actor}
	if follow.Link() != "/nextjs" {
		t.Errorf("follow link = %q", follow.Link())
	}
	like := Notification{Kind: KindLike, Actor: actor, Post: &Post{ID: "tweet-3"}}
	if like.Link() != "/status/tweet-3" {
		t.Errorf("like link = %q", like.Link())
	}
	if KindRepost.Verb() != "reposted your post" {
		t.Errorf("repost verb = %q", KindRepost.Verb())
	}
}

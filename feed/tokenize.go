package feed

import (
	"net/url"
	"regexp"
	"strings"
)

type SegmentKind int

const (
	Plain SegmentKind = iota
	Mention
	Hashtag
)

func (k SegmentKind) String() string {
	switch k {
	case Mention:
		return "mention"
	case Hashtag:
		return "hashtag"
	}
	return "plain"
}

// Segment is a classified span of post text. Text always holds the raw
// input, sigil included.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Handle is the mentioned user's handle without the leading '@'.
func (s Segment) Handle() string {
	if s.Kind != Mention {
		return ""
	}
	return strings.TrimPrefix(s.Text, "@")
}

// Href is the link target for a tagged segment, or "" for plain text.
func (s Segment) Href() string {
	switch s.Kind {
	case Mention:
		return "/" + s.Handle()
	case Hashtag:
		return "/explore?q=" + url.QueryEscape(s.Text)
	}
	return ""
}

var tagPattern = regexp.MustCompile(`[@#]\w+`)

// Tokenize splits text into plain, mention and hashtag segments. Joining the
// Text of every segment reproduces the input.
func Tokenize(text string) []Segment {
	var segments []Segment
	last := 0
	for _, loc := range tagPattern.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segments = append(segments, Segment{Kind: Plain, Text: text[last:loc[0]]})
		}
		kind := Mention
		if text[loc[0]] == '#' {
			kind = Hashtag
		}
		segments = append(segments, Segment{Kind: kind, Text: text[loc[0]:loc[1]]})
		last = loc[1]
	}
	if last < len(text) {
		segments = append(segments, Segment{Kind: Plain, Text: text[last:]})
	}
	return segments
}

// Package filter selects posts matching an author, a time window, or a set of words.
// Every filter keeps the input order and leaves the input slice untouched.
package filter

import (
	"strings"

	"github.com/ppiankov/tweetq/internal/tweet"
)

// WrittenBy returns the posts whose author equals username, ignoring case.
func WrittenBy(posts []tweet.Post, username string) []tweet.Post {
	var out []tweet.Post
	for _, p := range posts {
		if strings.EqualFold(p.Author, username) {
			out = append(out, p)
		}
	}
	return out
}

// InTimespan returns the posts whose timestamp lies within iv, boundaries included.
func InTimespan(posts []tweet.Post, iv tweet.Interval) []tweet.Post {
	var out []tweet.Post
	for _, p := range posts {
		if iv.Contains(p.Timestamp) {
			out = append(out, p)
		}
	}
	return out
}

// Containing returns the posts whose text has at least one whitespace-delimited
// token equal to one of words. Tokens are compared after dropping characters
// outside the username alphabet and lower-casing, so "Talk!" matches "talk"
// but "talking" does not.
func Containing(posts []tweet.Post, words []string) []tweet.Post {
	if len(words) == 0 {
		return nil
	}

	wanted := make(map[string]bool, len(words))
	for _, w := range words {
		wanted[strings.ToLower(w)] = true
	}

	var out []tweet.Post
	for _, p := range posts {
		if containsAny(p.Text, wanted) {
			out = append(out, p)
		}
	}
	return out
}

func containsAny(text string, wanted map[string]bool) bool {
	for _, field := range strings.Fields(text) {
		tok := normalizeToken(field)
		if tok != "" && wanted[tok] {
			return true
		}
	}
	return false
}

func normalizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if tweet.IsUsernameChar(r) {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}

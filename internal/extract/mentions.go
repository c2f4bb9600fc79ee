package extract

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/tweetq/internal/tweet"
)

// MentionedUsers returns the lower-cased usernames mentioned across all posts.
func MentionedUsers(posts []tweet.Post) map[string]bool {
	users := make(map[string]bool)
	for _, p := range posts {
		for _, name := range Mentions(p.Text) {
			users[name] = true
		}
	}
	return users
}

// Mentions returns the lower-cased usernames mentioned in text, in order of
// appearance. A mention is '@' followed by one or more username characters,
// where the '@' does not directly follow a username character; this keeps
// email addresses like bitdiddle@mit.edu out.
func Mentions(text string) []string {
	var names []string

	prev := rune(-1)
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r != '@' || (prev >= 0 && tweet.IsUsernameChar(prev)) {
			prev = r
			i += size
			continue
		}

		// Greedy run of username characters after '@'. The alphabet is ASCII,
		// so bytes and runes coincide inside the run.
		j := i + 1
		for j < len(text) && tweet.IsUsernameChar(rune(text[j])) {
			j++
		}
		if j > i+1 {
			names = append(names, strings.ToLower(text[i+1:j]))
			prev = rune(text[j-1])
		} else {
			prev = r
		}
		i = j
	}

	return names
}

// SortedKeys returns the keys of a username set in ascending order.
func SortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

package filter

import "github.com/ppiankov/tweetq/internal/tweet"

// Query combines the three filters. Zero-valued criteria are skipped.
type Query struct {
	Author string          // WrittenBy, when non-empty
	Window *tweet.Interval // InTimespan, when non-nil
	Words  []string        // Containing, when non-empty
}

// IsZero reports whether no criterion is set.
func (q Query) IsZero() bool {
	return q.Author == "" && q.Window == nil && len(q.Words) == 0
}

// Apply runs every set criterion of q over posts, preserving input order.
// The result never aliases posts.
func Apply(posts []tweet.Post, q Query) []tweet.Post {
	if q.IsZero() {
		return append([]tweet.Post(nil), posts...)
	}

	out := posts
	if q.Author != "" {
		out = WrittenBy(out, q.Author)
	}
	if q.Window != nil {
		out = InTimespan(out, *q.Window)
	}
	if len(q.Words) > 0 {
		out = Containing(out, q.Words)
	}
	return out
}

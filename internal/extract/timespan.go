// Package extract derives aggregate information from a list of posts.
package extract

import (
	"time"

	"github.com/ppiankov/tweetq/internal/tweet"
)

// nowFunc anchors the timespan of an empty post list. Replaced in tests.
var nowFunc = time.Now

// Timespan returns the smallest interval containing the timestamp of every post.
// For an empty list it returns a zero-length interval at the current time.
func Timespan(posts []tweet.Post) tweet.Interval {
	if len(posts) == 0 {
		now := nowFunc()
		return tweet.Interval{Start: now, End: now}
	}

	start := posts[0].Timestamp
	end := posts[0].Timestamp
	for _, p := range posts[1:] {
		if p.Timestamp.Before(start) {
			start = p.Timestamp
		}
		if p.Timestamp.After(end) {
			end = p.Timestamp
		}
	}

	return tweet.Interval{Start: start, End: end}
}

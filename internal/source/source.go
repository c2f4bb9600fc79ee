package source

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/tweetq/internal/extract"
	"github.com/ppiankov/tweetq/internal/tweet"
)

// Record is a post as read from a source, before the store assigns it an ID.
type Record struct {
	Source     string    // source identifier: "feed", "file"
	ExternalID string    // source-specific unique ID
	Author     string    // valid username
	Text       string    // full message text
	URL        string    // link to the original item
	PostedAt   time.Time // publication timestamp
}

// Source fetches posts from a post stream.
type Source interface {
	// Name returns the source identifier (e.g. "feed").
	Name() string

	// Fetch returns records published at or after since.
	Fetch(ctx context.Context, since time.Time) ([]Record, error)
}

// Username turns a display name into a username. An embedded @handle wins
// ("Alyssa P. Hacker (@alyssa)" -> "alyssa"); otherwise characters outside the
// username alphabet are dropped. Returns "" when nothing usable remains.
func Username(name string) string {
	if handles := extract.Mentions(name); len(handles) > 0 {
		return handles[0]
	}

	var b strings.Builder
	for _, r := range strings.TrimPrefix(strings.TrimSpace(name), "@") {
		if tweet.IsUsernameChar(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

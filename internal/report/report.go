package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ppiankov/tweetq/internal/social"
	"github.com/ppiankov/tweetq/internal/tweet"
)

// Report is the input for a formatter. Nil or empty sections are omitted.
type Report struct {
	Title       string
	Posts       []tweet.Post
	Timespan    *tweet.Interval
	Mentions    []string
	Influencers []social.Influencer
	Location    *time.Location // display zone; nil means UTC
	Now         time.Time      // reference for relative ages; zero means time.Now
}

// Formatter writes a formatted report to w.
type Formatter interface {
	Format(w io.Writer, r Report) error
}

// Formats lists the names accepted by New.
var Formats = []string{"terminal", "json", "markdown"}

// New returns the formatter for format. color only affects the terminal formatter.
func New(format string, color bool) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "terminal":
		return NewTerminal(color), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

func (r Report) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

func (r Report) now() time.Time {
	if r.Now.IsZero() {
		return time.Now()
	}
	return r.Now
}

func (r Report) empty() bool {
	return len(r.Posts) == 0 && r.Timespan == nil && len(r.Mentions) == 0 && len(r.Influencers) == 0
}

func formatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02 15:04:05 MST")
}

package report

import (
	"encoding/json"
	"io"
	"time"
)

type jsonReport struct {
	Title       string           `json:"title,omitempty"`
	Timespan    *jsonTimespan    `json:"timespan,omitempty"`
	Mentions    []string         `json:"mentions,omitempty"`
	Influencers []jsonInfluencer `json:"influencers,omitempty"`
	Posts       []jsonPost       `json:"posts"`
}

type jsonTimespan struct {
	Start           string  `json:"start"`
	End             string  `json:"end"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type jsonInfluencer struct {
	Username  string `json:"username"`
	Followers int    `json:"followers"`
}

type jsonPost struct {
	ID        int64  `json:"id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// JSONFormatter formats a report as JSON.
type JSONFormatter struct{}

// NewJSON creates a JSON formatter.
func NewJSON() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes the report as indented JSON to w. Timestamps are RFC 3339 in
// the report location.
func (f *JSONFormatter) Format(w io.Writer, r Report) error {
	loc := r.location()

	out := jsonReport{
		Title:    r.Title,
		Mentions: r.Mentions,
		Posts:    make([]jsonPost, 0, len(r.Posts)),
	}
	if r.Timespan != nil {
		out.Timespan = &jsonTimespan{
			Start:           r.Timespan.Start.In(loc).Format(time.RFC3339),
			End:             r.Timespan.End.In(loc).Format(time.RFC3339),
			DurationSeconds: r.Timespan.Duration().Seconds(),
		}
	}
	for _, inf := range r.Influencers {
		out.Influencers = append(out.Influencers, jsonInfluencer{Username: inf.Username, Followers: inf.Followers})
	}
	for _, p := range r.Posts {
		out.Posts = append(out.Posts, jsonPost{
			ID:        p.ID,
			Author:    p.Author,
			Text:      p.Text,
			Timestamp: p.Timestamp.In(loc).Format(time.RFC3339),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

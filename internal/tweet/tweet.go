// Package tweet defines the post and interval value types shared by the query packages.
package tweet

import (
	"fmt"
	"time"
)

// Post is a single social-media post.
type Post struct {
	ID        int64     // unique within a collection, assigned by the caller
	Author    string    // username, compared case-insensitively
	Text      string    // message body
	Timestamp time.Time // publication time
}

// Interval is a closed time range [Start, End] with Start <= End.
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval returns the interval [start, end]. It fails if start is after end.
func NewInterval(start, end time.Time) (Interval, error) {
	if start.After(end) {
		return Interval{}, fmt.Errorf("interval start %s is after end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{Start: start, End: end}, nil
}

// Contains reports whether t lies within the interval, boundaries included.
func (iv Interval) Contains(t time.Time) bool {
	return !t.Before(iv.Start) && !t.After(iv.End)
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// IsUsernameChar reports whether r belongs to the username alphabet:
// ASCII letters, digits and underscore.
func IsUsernameChar(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}

// ValidUsername reports whether s is a nonempty run of username characters.
func ValidUsername(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsUsernameChar(r) {
			return false
		}
	}
	return true
}

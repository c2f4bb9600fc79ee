// Package privacy scrubs sensitive text from posts before they are stored.
package privacy

import (
	"fmt"
	"regexp"
)

const redactedPlaceholder = "[REDACTED]"

// Redactor replaces every match of its patterns with [REDACTED].
// A nil *Redactor leaves text unchanged.
type Redactor struct {
	patterns []*regexp.Regexp
}

// New compiles patterns into a Redactor. It returns nil, nil for an empty list.
func New(patterns []string) (*Redactor, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile redact pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return &Redactor{patterns: compiled}, nil
}

// Apply returns text with all pattern matches redacted.
func (r *Redactor) Apply(text string) string {
	if r == nil {
		return text
	}
	for _, re := range r.patterns {
		text = re.ReplaceAllString(text, redactedPlaceholder)
	}
	return text
}

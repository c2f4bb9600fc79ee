package privacy

import (
	"testing"

	"github.com/ppiankov/tweetq/internal/extract"
)

func TestNew_Valid(t *testing.T) {
	r, err := New([]string{`(?i)token`, `\bsecret\b`})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if len(r.patterns) != 2 {
		t.Errorf("got %d patterns, want 2", len(r.patterns))
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New([]string{`[invalid`})
	if err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestNew_EmptyIsNoop(t *testing.T) {
	r, err := New(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if r != nil {
		t.Errorf("redactor = %v, want nil", r)
	}

	text := "should not change"
	if got := r.Apply(text); got != text {
		t.Errorf("got %q, want unchanged", got)
	}
}

func TestApply_MultiplePatterns(t *testing.T) {
	r, _ := New([]string{`(?i)token`, `(?i)secret`})
	got := r.Apply("Token and Secret values")
	want := "[REDACTED] and [REDACTED] values"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestApply_NoMatch(t *testing.T) {
	r, _ := New([]string{`(?i)token`})
	text := "nothing to redact here"
	if got := r.Apply(text); got != text {
		t.Errorf("got %q, want unchanged", got)
	}
}

func TestApply_EmailRedactionKeepsMentions(t *testing.T) {
	r, _ := New([]string{`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`})
	got := r.Apply("ping @alyssa or mail bitdiddle@mit.edu")
	want := "ping @alyssa or mail [REDACTED]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	names := extract.Mentions(got)
	if len(names) != 1 || names[0] != "alyssa" {
		t.Errorf("mentions after redaction = %v, want [alyssa]", names)
	}
}

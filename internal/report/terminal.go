package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ppiankov/tweetq/internal/tweet"
)

// TerminalFormatter formats a report for terminal output.
type TerminalFormatter struct {
	color bool
}

// NewTerminal creates a terminal formatter. Set color=true for ANSI colors.
func NewTerminal(color bool) *TerminalFormatter {
	return &TerminalFormatter{color: color}
}

// Format writes the report to w, one section per populated field.
func (f *TerminalFormatter) Format(w io.Writer, r Report) error {
	if r.Title != "" {
		fmt.Fprintln(w, f.bold(r.Title))
		fmt.Fprintln(w)
	}

	if r.empty() {
		fmt.Fprintln(w, "No posts found.")
		return nil
	}

	loc := r.location()

	if r.Timespan != nil {
		fmt.Fprintln(w, f.green(f.bold("--- Timespan ---")))
		fmt.Fprintf(w, "  start:    %s\n", formatTime(r.Timespan.Start, loc))
		fmt.Fprintf(w, "  end:      %s\n", formatTime(r.Timespan.End, loc))
		fmt.Fprintf(w, "  duration: %s\n", r.Timespan.Duration())
		fmt.Fprintln(w)
	}

	if len(r.Mentions) > 0 {
		fmt.Fprintln(w, f.green(f.bold(fmt.Sprintf("--- Mentioned (%d) ---", len(r.Mentions)))))
		for _, m := range r.Mentions {
			fmt.Fprintf(w, "  @%s\n", m)
		}
		fmt.Fprintln(w)
	}

	if len(r.Influencers) > 0 {
		fmt.Fprintln(w, f.yellow(f.bold(fmt.Sprintf("--- Influencers (%d) ---", len(r.Influencers)))))
		for _, inf := range r.Influencers {
			fmt.Fprintf(w, "  @%-20s %s\n", inf.Username, f.dim(followers(inf.Followers)))
		}
		fmt.Fprintln(w)
	}

	if len(r.Posts) > 0 {
		fmt.Fprintln(w, f.bold(fmt.Sprintf("--- Posts (%s) ---", humanize.Comma(int64(len(r.Posts))))))
		fmt.Fprintln(w)
		for _, p := range r.Posts {
			f.writePost(w, r, p)
		}
	}

	return nil
}

func (f *TerminalFormatter) writePost(w io.Writer, r Report, p tweet.Post) {
	age := humanize.RelTime(p.Timestamp, r.now(), "ago", "from now")
	fmt.Fprintf(w, "  %s %s\n",
		f.bold("@"+p.Author),
		f.dim(formatTime(p.Timestamp, r.location())+" ("+age+")"),
	)
	for _, line := range strings.Split(strings.TrimSpace(p.Text), "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
	fmt.Fprintln(w)
}

func followers(n int) string {
	if n == 1 {
		return "1 follower"
	}
	return humanize.Comma(int64(n)) + " followers"
}

// ANSI helpers, no-op when color=false.

func (f *TerminalFormatter) bold(s string) string {
	if !f.color {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

func (f *TerminalFormatter) green(s string) string {
	if !f.color {
		return s
	}
	return "\033[32m" + s + "\033[0m"
}

func (f *TerminalFormatter) yellow(s string) string {
	if !f.color {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

func (f *TerminalFormatter) dim(s string) string {
	if !f.color {
		return s
	}
	return "\033[2m" + s + "\033[0m"
}

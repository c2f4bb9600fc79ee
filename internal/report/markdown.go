package report

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownFormatter formats a report as Markdown.
type MarkdownFormatter struct{}

// NewMarkdown creates a Markdown formatter.
func NewMarkdown() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format writes the report as Markdown to w.
func (f *MarkdownFormatter) Format(w io.Writer, r Report) error {
	title := r.Title
	if title == "" {
		title = "tweetq report"
	}
	fmt.Fprintf(w, "# %s\n\n", title)

	if r.empty() {
		fmt.Fprintln(w, "No posts found.")
		return nil
	}

	loc := r.location()

	if r.Timespan != nil {
		fmt.Fprintf(w, "## Timespan\n\n")
		fmt.Fprintf(w, "- Start: %s\n", formatTime(r.Timespan.Start, loc))
		fmt.Fprintf(w, "- End: %s\n", formatTime(r.Timespan.End, loc))
		fmt.Fprintf(w, "- Duration: %s\n\n", r.Timespan.Duration())
	}

	if len(r.Mentions) > 0 {
		fmt.Fprintf(w, "## Mentioned (%d)\n\n", len(r.Mentions))
		for _, m := range r.Mentions {
			fmt.Fprintf(w, "- `@%s`\n", m)
		}
		fmt.Fprintln(w)
	}

	if len(r.Influencers) > 0 {
		fmt.Fprintf(w, "## Influencers (%d)\n\n", len(r.Influencers))
		fmt.Fprintln(w, "| User | Followers |")
		fmt.Fprintln(w, "|---|---|")
		for _, inf := range r.Influencers {
			fmt.Fprintf(w, "| `@%s` | %d |\n", inf.Username, inf.Followers)
		}
		fmt.Fprintln(w)
	}

	if len(r.Posts) > 0 {
		fmt.Fprintf(w, "## Posts (%d)\n\n", len(r.Posts))
		for _, p := range r.Posts {
			fmt.Fprintf(w, "- **@%s** _%s_: %s\n", p.Author, formatTime(p.Timestamp, loc), oneLine(p.Text))
		}
		fmt.Fprintln(w)
	}

	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

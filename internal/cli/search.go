package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/ppiankov/tweetq/internal/filter"
	"github.com/ppiankov/tweetq/internal/report"
	"github.com/ppiankov/tweetq/internal/store"
	"github.com/ppiankov/tweetq/internal/tweet"
)

var (
	searchAuthor string
	searchFrom   string
	searchTo     string
	searchWords  []string
	searchFormat string
)

// endOfTime closes a window that has no --to bound.
var endOfTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

var searchCmd = &cobra.Command{
	Use:   "search [word...]",
	Short: "Find posts by author, time window and words",
	Long: `Find stored posts matching every given criterion.

--author matches the author case-insensitively. --from and --to bound a closed
time window; both accept most date formats and default to the configured
timezone. Words (positional or --word) match whole tokens, ignoring case and
punctuation; a post matches if it contains any of them.`,
	RunE: searchAction,
}

func init() {
	searchCmd.Flags().StringVar(&searchAuthor, "author", "", "posts written by this user")
	searchCmd.Flags().StringVar(&searchFrom, "from", "", "window start (e.g. 2016-02-17, \"2016-02-17 10:00\")")
	searchCmd.Flags().StringVar(&searchTo, "to", "", "window end, inclusive")
	searchCmd.Flags().StringSliceVar(&searchWords, "word", nil, "word to look for (repeatable)")
	searchCmd.Flags().StringVar(&searchFormat, "format", "", "output format: terminal, json, markdown")
	rootCmd.AddCommand(searchCmd)
}

func searchAction(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	window, err := searchWindow(searchFrom, searchTo, cfg.Location())
	if err != nil {
		return err
	}

	var sq store.PostQuery
	if window != nil {
		sq.Since, sq.Until = window.Start, window.End
	}

	words := append(append([]string(nil), searchWords...), args...)
	fq := filter.Query{Author: strings.TrimPrefix(searchAuthor, "@"), Window: window, Words: words}

	posts, err := loadPosts(commandContext(cmd), cfg, sq, fq)
	if err != nil {
		return err
	}

	return render(cmd, cfg, searchFormat, report.Report{
		Title: searchTitle(len(posts), fq),
		Posts: posts,
	})
}

// searchWindow builds the closed window for --from/--to. Returns nil when
// neither is set.
func searchWindow(from, to string, loc *time.Location) (*tweet.Interval, error) {
	if from == "" && to == "" {
		return nil, nil
	}

	var start, end time.Time
	var err error
	if from != "" {
		if start, err = dateparse.ParseIn(from, loc); err != nil {
			return nil, fmt.Errorf("parse --from: %w", err)
		}
	}
	end = endOfTime
	if to != "" {
		if end, err = dateparse.ParseIn(to, loc); err != nil {
			return nil, fmt.Errorf("parse --to: %w", err)
		}
	}

	iv, err := tweet.NewInterval(start, end)
	if err != nil {
		return nil, fmt.Errorf("--from is after --to: %w", err)
	}
	return &iv, nil
}

func searchTitle(n int, q filter.Query) string {
	var parts []string
	if q.Author != "" {
		parts = append(parts, "by @"+q.Author)
	}
	if q.Window != nil {
		parts = append(parts, "in window")
	}
	if len(q.Words) > 0 {
		parts = append(parts, "containing "+strings.Join(q.Words, ", "))
	}
	title := fmt.Sprintf("%d posts", n)
	if len(parts) > 0 {
		title += " " + strings.Join(parts, " ")
	}
	return title
}

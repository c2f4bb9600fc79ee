package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tweetq/internal/extract"
	"github.com/ppiankov/tweetq/internal/filter"
	"github.com/ppiankov/tweetq/internal/report"
	"github.com/ppiankov/tweetq/internal/store"
)

var (
	timespanAuthor string
	timespanFormat string
)

var timespanCmd = &cobra.Command{
	Use:   "timespan",
	Short: "Show the time interval spanned by stored posts",
	RunE:  timespanAction,
}

func init() {
	timespanCmd.Flags().StringVar(&timespanAuthor, "author", "", "only posts written by this user")
	timespanCmd.Flags().StringVar(&timespanFormat, "format", "", "output format: terminal, json, markdown")
	rootCmd.AddCommand(timespanCmd)
}

func timespanAction(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	posts, err := loadPosts(commandContext(cmd), cfg, store.PostQuery{}, filter.Query{Author: timespanAuthor})
	if err != nil {
		return err
	}

	title := fmt.Sprintf("timespan of %d posts", len(posts))
	if len(posts) == 0 {
		title = "timespan of 0 posts (empty: anchored at now)"
	}
	span := extract.Timespan(posts)
	return render(cmd, cfg, timespanFormat, report.Report{
		Title:    title,
		Timespan: &span,
	})
}

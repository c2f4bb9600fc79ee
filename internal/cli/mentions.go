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
	mentionsAuthor string
	mentionsFormat string
)

var mentionsCmd = &cobra.Command{
	Use:   "mentions",
	Short: "List usernames @-mentioned in stored posts",
	RunE:  mentionsAction,
}

func init() {
	mentionsCmd.Flags().StringVar(&mentionsAuthor, "author", "", "only posts written by this user")
	mentionsCmd.Flags().StringVar(&mentionsFormat, "format", "", "output format: terminal, json, markdown")
	rootCmd.AddCommand(mentionsCmd)
}

func mentionsAction(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	posts, err := loadPosts(commandContext(cmd), cfg, store.PostQuery{}, filter.Query{Author: mentionsAuthor})
	if err != nil {
		return err
	}

	mentioned := extract.SortedKeys(extract.MentionedUsers(posts))
	return render(cmd, cfg, mentionsFormat, report.Report{
		Title:    fmt.Sprintf("%d users mentioned in %d posts", len(mentioned), len(posts)),
		Mentions: mentioned,
	})
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tweetq/internal/filter"
	"github.com/ppiankov/tweetq/internal/report"
	"github.com/ppiankov/tweetq/internal/social"
	"github.com/ppiankov/tweetq/internal/store"
)

var (
	influencersLimit      int
	influencersMinAuthors int
	influencersFormat     string
)

var influencersCmd = &cobra.Command{
	Use:   "influencers",
	Short: "Rank users by how many authors mention them",
	Long: `Rank users by follower count in the guessed follows graph, where an author
is taken to follow everyone they @-mention. With --min-authors, list only users
mentioned by at least that many distinct authors.`,
	RunE: influencersAction,
}

func init() {
	influencersCmd.Flags().IntVar(&influencersLimit, "limit", 10, "maximum users to show (0 for all)")
	influencersCmd.Flags().IntVar(&influencersMinAuthors, "min-authors", 0, "only users mentioned by at least N distinct authors")
	influencersCmd.Flags().StringVar(&influencersFormat, "format", "", "output format: terminal, json, markdown")
	rootCmd.AddCommand(influencersCmd)
}

func influencersAction(cmd *cobra.Command, _ []string) error {
	if influencersLimit < 0 {
		return fmt.Errorf("--limit must be >= 0, got %d", influencersLimit)
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	posts, err := loadPosts(commandContext(cmd), cfg, store.PostQuery{}, filter.Query{})
	if err != nil {
		return err
	}

	var ranked []social.Influencer
	if influencersMinAuthors > 0 {
		ranked = social.TopMentioned(posts, influencersMinAuthors)
	} else {
		ranked = social.Influencers(social.FollowsGraph(posts))
	}
	if influencersLimit > 0 && len(ranked) > influencersLimit {
		ranked = ranked[:influencersLimit]
	}

	return render(cmd, cfg, influencersFormat, report.Report{
		Title:       fmt.Sprintf("influencers across %d posts", len(posts)),
		Influencers: ranked,
	})
}

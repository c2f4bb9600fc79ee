package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tweetq/internal/config"
	"github.com/ppiankov/tweetq/internal/filter"
	"github.com/ppiankov/tweetq/internal/report"
	"github.com/ppiankov/tweetq/internal/store"
	"github.com/ppiankov/tweetq/internal/tweet"
)

// loadPosts reads stored posts narrowed by q, then applies fq in memory.
func loadPosts(ctx context.Context, cfg *config.Config, q store.PostQuery, fq filter.Query) ([]tweet.Post, error) {
	db, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	stored, err := db.GetPosts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("get posts: %w", err)
	}
	return filter.Apply(store.Tweets(stored), fq), nil
}

// render writes r with the --format flag value, falling back to query.format.
func render(cmd *cobra.Command, cfg *config.Config, format string, r report.Report) error {
	if format == "" {
		format = cfg.Query.Format
	}
	f, err := report.New(format, useColor())
	if err != nil {
		return err
	}
	r.Location = cfg.Location()
	return f.Format(cmd.OutOrStdout(), r)
}

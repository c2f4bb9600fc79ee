package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tweetq/internal/config"
	"github.com/ppiankov/tweetq/internal/privacy"
	"github.com/ppiankov/tweetq/internal/source"
	"github.com/ppiankov/tweetq/internal/store"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch posts from all configured feeds and files",
	RunE:  pullAction,
}

func init() {
	rootCmd.AddCommand(pullCmd)
}

func pullAction(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	sources, err := buildSources(cfg, logger)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Fprintln(out, "No sources configured. Add feeds or files to config.yaml.")
		return nil
	}

	redactor, err := newRedactor(cfg)
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx := commandContext(cmd)
	since := time.Now().Add(-cfg.Query.Since.Duration)

	total, used := 0, 0
	for _, src := range sources {
		records, err := src.Fetch(ctx, since)
		if err != nil {
			logger.Warn("source fetch failed", "source", src.Name(), "error", err)
			continue
		}

		n, err := ingest(ctx, db, redactor, src.Name(), records, logger)
		if err != nil {
			return err
		}
		total += n
		used++
	}

	pruned, err := db.PruneOld(ctx, cfg.Storage.RetainDays)
	if err != nil {
		return fmt.Errorf("prune old: %w", err)
	}

	fmt.Fprintf(out, "Pulled %d posts from %d sources", total, used)
	if pruned > 0 {
		fmt.Fprintf(out, " (%d old posts pruned)", pruned)
	}
	fmt.Fprintln(out)

	return nil
}

func buildSources(cfg *config.Config, logger *slog.Logger) ([]source.Source, error) {
	var sources []source.Source

	if len(cfg.Sources.Feeds) > 0 {
		fs, err := source.NewFeed(cfg.Sources.Feeds, logger)
		if err != nil {
			return nil, fmt.Errorf("create feed source: %w", err)
		}
		sources = append(sources, fs)
	}

	if len(cfg.Sources.Files) > 0 {
		fs, err := source.NewFile(cfg.Sources.Files, logger)
		if err != nil {
			return nil, fmt.Errorf("create file source: %w", err)
		}
		sources = append(sources, fs)
	}

	return sources, nil
}

func newRedactor(cfg *config.Config) (*privacy.Redactor, error) {
	if !cfg.Privacy.Redact.Enabled {
		return nil, nil
	}
	r, err := privacy.New(cfg.Privacy.Redact.Patterns)
	if err != nil {
		return nil, fmt.Errorf("compile redact patterns: %w", err)
	}
	return r, nil
}

// ingest redacts and upserts records, then logs the run under sourceName.
// Store failures abort the run.
func ingest(ctx context.Context, db *store.Store, redactor *privacy.Redactor, sourceName string, records []source.Record, logger *slog.Logger) (int, error) {
	now := time.Now()
	inserted := 0

	for _, r := range records {
		_, err := db.InsertPost(ctx, store.PostInput{
			Source:     r.Source,
			ExternalID: r.ExternalID,
			Author:     r.Author,
			Text:       redactor.Apply(r.Text),
			URL:        r.URL,
			PostedAt:   r.PostedAt,
			FetchedAt:  now,
		})
		if err != nil {
			return inserted, fmt.Errorf("insert post: %w", err)
		}
		inserted++
	}

	id, err := db.RecordImport(ctx, sourceName, inserted, now)
	if err != nil {
		return inserted, fmt.Errorf("record import: %w", err)
	}
	logger.Debug("ingested posts", "source", sourceName, "count", inserted, "import", id)

	return inserted, nil
}

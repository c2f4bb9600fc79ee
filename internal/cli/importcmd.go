package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tweetq/internal/source"
)

var importCmd = &cobra.Command{
	Use:   "import <file.jsonl|->",
	Short: "Import posts from a JSONL file (- reads stdin)",
	Long: `Import posts from a JSONL file, one JSON object per line:

  {"id": "42", "author": "alyssa", "text": "hello @bbitdiddle", "timestamp": "2016-02-17T10:00:00Z"}

id and url are optional. Malformed lines are skipped with a warning.`,
	Args: cobra.ExactArgs(1),
	RunE: importAction,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func importAction(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	src, err := source.NewFile(args, logger)
	if err != nil {
		return err
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
	records, err := src.Fetch(ctx, time.Time{})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	n, err := ingest(ctx, db, redactor, src.Name(), records, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d posts from %s\n", n, args[0])
	return nil
}

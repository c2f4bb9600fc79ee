package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ppiankov/tweetq/internal/store"
)

var (
	statsImports int
	statsFormat  string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-author post counts and recent imports",
	RunE:  statsAction,
}

func init() {
	statsCmd.Flags().IntVar(&statsImports, "imports", 5, "number of recent import runs to show")
	statsCmd.Flags().StringVar(&statsFormat, "format", "terminal", "output format: terminal, json")
	rootCmd.AddCommand(statsCmd)
}

// staleDays marks authors with no posts in that many days.
const staleDays = 30

func statsAction(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx := commandContext(cmd)

	authors, err := db.GetAuthorStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	imports, err := db.LastImports(ctx, statsImports)
	if err != nil {
		return fmt.Errorf("get imports: %w", err)
	}

	switch statsFormat {
	case "json":
		return printStatsJSON(out, authors, imports)
	case "terminal", "":
		if len(authors) == 0 {
			fmt.Fprintln(out, "No posts found. Run 'tweetq pull' or 'tweetq import' first.")
			return nil
		}
		printStats(out, authors, imports, time.Now())
		return nil
	default:
		return fmt.Errorf("unknown format %q (want terminal or json)", statsFormat)
	}
}

type jsonStatsOutput struct {
	Authors []jsonAuthorStats `json:"authors"`
	Imports []jsonImport      `json:"imports"`
	Total   int               `json:"total_posts"`
}

type jsonAuthorStats struct {
	Author    string `json:"author"`
	Total     int    `json:"total"`
	FirstSeen string `json:"first_seen"`
	LastSeen  string `json:"last_seen"`
}

type jsonImport struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Count      int    `json:"count"`
	ImportedAt string `json:"imported_at"`
}

func printStatsJSON(w io.Writer, authors []store.AuthorStats, imports []store.Import) error {
	out := jsonStatsOutput{
		Authors: make([]jsonAuthorStats, 0, len(authors)),
		Imports: make([]jsonImport, 0, len(imports)),
	}
	for _, as := range authors {
		out.Authors = append(out.Authors, jsonAuthorStats{
			Author:    as.Author,
			Total:     as.Total,
			FirstSeen: as.FirstSeen.UTC().Format(time.RFC3339),
			LastSeen:  as.LastSeen.UTC().Format(time.RFC3339),
		})
		out.Total += as.Total
	}
	for _, imp := range imports {
		out.Imports = append(out.Imports, jsonImport{
			ID:         imp.ID,
			Source:     imp.Source,
			Count:      imp.Count,
			ImportedAt: imp.ImportedAt.UTC().Format(time.RFC3339),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printStats(w io.Writer, authors []store.AuthorStats, imports []store.Import, now time.Time) {
	total := 0
	for _, as := range authors {
		total += as.Total
	}

	fmt.Fprintf(w, "tweetq stats: %s posts from %s authors\n\n",
		humanize.Comma(int64(total)), humanize.Comma(int64(len(authors))))

	fmt.Fprintln(w, "--- Posts by Author ---")
	fmt.Fprintln(w)

	maxName := 6 // "Author"
	for _, as := range authors {
		if len(as.Author)+1 > maxName {
			maxName = len(as.Author) + 1
		}
	}
	if maxName > 30 {
		maxName = 30
	}

	fmt.Fprintf(w, "  %-*s  %6s  %s\n", maxName, "Author", "Posts", "Last post")
	staleThreshold := now.AddDate(0, 0, -staleDays)
	for _, as := range authors {
		name := "@" + as.Author
		if len(name) > maxName {
			name = name[:maxName-1] + "…"
		}
		last := humanize.RelTime(as.LastSeen, now, "ago", "from now")
		if as.LastSeen.Before(staleThreshold) {
			last += " (stale)"
		}
		fmt.Fprintf(w, "  %-*s  %6d  %s\n", maxName, name, as.Total, last)
	}
	fmt.Fprintln(w)

	if len(imports) > 0 {
		fmt.Fprintln(w, "--- Recent Imports ---")
		fmt.Fprintln(w)
		for _, imp := range imports {
			fmt.Fprintf(w, "  %s  %-5s  %5d posts  %s\n",
				shortID(imp.ID), imp.Source, imp.Count,
				humanize.RelTime(imp.ImportedAt, now, "ago", "from now"))
		}
		fmt.Fprintln(w)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

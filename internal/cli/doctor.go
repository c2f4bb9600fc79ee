package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tweetq/internal/config"
	"github.com/ppiankov/tweetq/internal/privacy"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config, store and sources",
	RunE:  doctorAction,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func doctorAction(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	ok := true

	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printCheck(w, false, "config directory %s", configDir)
		ok = false
	} else {
		printCheck(w, true, "config directory %s", configDir)
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		printCheck(w, false, "config.yaml: %v", err)
		ok = false
	} else {
		printCheck(w, true, "config.yaml (%d feeds, %d files)", len(cfg.Sources.Feeds), len(cfg.Sources.Files))
	}

	if cfg != nil {
		if !checkSources(w, cfg) {
			ok = false
		}

		if cfg.Privacy.Redact.Enabled {
			if _, err := privacy.New(cfg.Privacy.Redact.Patterns); err != nil {
				printCheck(w, false, "redact patterns: %v", err)
				ok = false
			} else {
				printCheck(w, true, "redact patterns (%d)", len(cfg.Privacy.Redact.Patterns))
			}
		}

		db, err := openStore(cfg)
		if err != nil {
			printCheck(w, false, "database: %v", err)
			ok = false
		} else {
			defer func() { _ = db.Close() }()
			printCheck(w, true, "database %s", cfg.Storage.Path)

			if imports, err := db.LastImports(commandContext(cmd), 1); err == nil && len(imports) == 0 {
				printInfo(w, "no imports yet: run 'tweetq pull' or 'tweetq import'")
			}
		}
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Fprintln(w, "\nAll checks passed.")
	return nil
}

// checkSources verifies that every configured file is readable.
func checkSources(w io.Writer, cfg *config.Config) bool {
	ok := true
	for _, path := range cfg.Sources.Files {
		info, err := os.Stat(path)
		switch {
		case err != nil:
			printCheck(w, false, "file source: %v", err)
			ok = false
		case info.IsDir():
			printCheck(w, false, "file source: %s is a directory", path)
			ok = false
		default:
			printCheck(w, true, "file source %s", path)
		}
	}
	if len(cfg.Sources.Feeds) == 0 && len(cfg.Sources.Files) == 0 {
		printInfo(w, "no sources configured; posts can still be added with 'tweetq import'")
	}
	return ok
}

func printCheck(w io.Writer, pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Fprintf(w, "[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "[INFO] %s\n", fmt.Sprintf(format, args...))
}

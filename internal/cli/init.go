package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tweetq/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config directory with an example config",
	RunE:  initAction,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initAction(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	configPath := filepath.Join(configDir, config.DefaultConfigFile)
	wrote, err := writeIfNotExists(out, configPath, []byte(exampleConfig))
	if err != nil {
		return err
	}

	if !wrote {
		fmt.Fprintf(out, "Config directory %s already initialized.\n", configDir)
	} else {
		fmt.Fprintf(out, "Initialized %s. Add feeds with 'tweetq feeds add' or import posts with 'tweetq import'.\n", configDir)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(out io.Writer, path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(out, "  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# tweetq configuration

sources:
  feeds: []
  # - "https://nitter.example.com/alyssa/rss"
  files: []
  # - "posts.jsonl"

storage:
  path: .tweetq/tweetq.db
  retain_days: 0

query:
  since: 168h
  timezone: "UTC"
  format: terminal

privacy:
  redact:
    enabled: false
    patterns: []
    # - "[\\w.+-]+@[\\w-]+\\.[\\w.]+"

log:
  level: info
`

package cli

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/tweetq/internal/config"
)

var feedsDryRun bool

var feedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "Manage the feeds listed in config.yaml",
}

var feedsAddCmd = &cobra.Command{
	Use:   "add <url>...",
	Short: "Add RSS/Atom feed URLs to sources.feeds",
	Args:  cobra.MinimumNArgs(1),
	RunE:  feedsAddAction,
}

var feedsImportCmd = &cobra.Command{
	Use:   "import <file.opml>",
	Short: "Add the feeds listed in an OPML file to sources.feeds",
	Args:  cobra.ExactArgs(1),
	RunE:  feedsImportAction,
}

func init() {
	feedsCmd.PersistentFlags().BoolVar(&feedsDryRun, "dry-run", false, "show what would be added without modifying config")
	feedsCmd.AddCommand(feedsAddCmd, feedsImportCmd)
	rootCmd.AddCommand(feedsCmd)
}

type opml struct {
	Body opmlBody `xml:"body"`
}

type opmlBody struct {
	Outlines []opmlOutline `xml:"outline"`
}

type opmlOutline struct {
	XMLURL   string        `xml:"xmlUrl,attr"`
	Text     string        `xml:"text,attr"`
	Outlines []opmlOutline `xml:"outline"`
}

func feedsAddAction(cmd *cobra.Command, args []string) error {
	var urls []string
	for _, u := range args {
		if !isFeedURL(u) {
			return fmt.Errorf("%q is not an http(s) URL", u)
		}
		urls = append(urls, strings.TrimSpace(u))
	}
	return addFeeds(cmd, urls)
}

func feedsImportAction(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read OPML: %w", err)
	}

	var doc opml
	if err := xml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse OPML: %w", err)
	}

	urls := extractFeedURLs(doc.Body.Outlines)
	if len(urls) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No feed URLs found in OPML file.")
		return nil
	}
	return addFeeds(cmd, urls)
}

// addFeeds merges urls into sources.feeds, skipping ones already listed.
func addFeeds(cmd *cobra.Command, urls []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	existing := make(map[string]bool, len(cfg.Sources.Feeds))
	for _, f := range cfg.Sources.Feeds {
		existing[f] = true
	}

	var newFeeds []string
	skipped := 0
	for _, u := range urls {
		if existing[u] {
			skipped++
			continue
		}
		existing[u] = true
		newFeeds = append(newFeeds, u)
	}

	if len(newFeeds) == 0 {
		fmt.Fprintf(out, "All %d feeds already present, nothing to add.\n", skipped)
		return nil
	}

	if feedsDryRun {
		fmt.Fprintf(out, "Would add %d feeds (skipping %d duplicates):\n", len(newFeeds), skipped)
		for _, f := range newFeeds {
			fmt.Fprintf(out, "  + %s\n", f)
		}
		return nil
	}

	configPath := filepath.Join(configDir, config.DefaultConfigFile)
	if err := mergeFeeds(configPath, newFeeds); err != nil {
		return fmt.Errorf("merge feeds: %w", err)
	}

	fmt.Fprintf(out, "Added %d feeds, skipped %d duplicates.\n", len(newFeeds), skipped)
	return nil
}

func isFeedURL(u string) bool {
	u = strings.TrimSpace(u)
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

func extractFeedURLs(outlines []opmlOutline) []string {
	var urls []string
	for _, o := range outlines {
		if u := strings.TrimSpace(o.XMLURL); isFeedURL(u) {
			urls = append(urls, u)
		}
		urls = append(urls, extractFeedURLs(o.Outlines)...)
	}
	return urls
}

// mergeFeeds appends newFeeds to sources.feeds in config.yaml, editing the
// yaml.Node tree so comments and key order survive. A missing sources or
// feeds key is created.
func mergeFeeds(configPath string, newFeeds []string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse config YAML: %w", err)
	}

	feedsNode, err := feedsNode(&doc)
	if err != nil {
		return err
	}

	for _, f := range newFeeds {
		feedsNode.Content = append(feedsNode.Content, &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: f,
			Style: yaml.DoubleQuotedStyle,
		})
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(configPath, out, 0o644)
}

// feedsNode returns the sequence node at sources.feeds, creating it if absent.
func feedsNode(doc *yaml.Node) (*yaml.Node, error) {
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			root.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("config.yaml is not a mapping")
	}

	sources := findMapValue(root, "sources")
	if sources == nil || (sources.Kind == yaml.ScalarNode && sources.Tag == "!!null") {
		sources = setMapValue(root, "sources", &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"})
	}
	if sources.Kind != yaml.MappingNode {
		return nil, errors.New("sources is not a mapping")
	}

	feeds := findMapValue(sources, "feeds")
	if feeds == nil || (feeds.Kind == yaml.ScalarNode && feeds.Tag == "!!null") {
		feeds = setMapValue(sources, "feeds", &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"})
	}
	if feeds.Kind != yaml.SequenceNode {
		return nil, errors.New("sources.feeds is not a list")
	}
	return feeds, nil
}

func findMapValue(mapping *yaml.Node, key string) *yaml.Node {
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// setMapValue sets key to value in mapping, replacing an existing value.
func setMapValue(mapping *yaml.Node, key string, value *yaml.Node) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return value
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
	return value
}

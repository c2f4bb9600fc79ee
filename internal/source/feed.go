package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const (
	feedSourceName   = "feed"
	feedFetchTimeout = 30 * time.Second
	feedUserAgent    = "Mozilla/5.0 (compatible; tweetq/1.0; +https://github.com/ppiankov/tweetq)"
	feedMaxWorkers   = 10
	feedMaxRetries   = 3
	feedDomainDelay  = 3 * time.Second
)

// FeedSource reads posts from RSS/Atom feeds, one post per item.
type FeedSource struct {
	feeds  []string
	client *http.Client
	logger *slog.Logger
}

// NewFeed creates a feed source. At least one feed URL is required.
func NewFeed(feeds []string, logger *slog.Logger) (*FeedSource, error) {
	if len(feeds) == 0 {
		return nil, errors.New("feed: at least one feed URL is required")
	}
	return &FeedSource{
		feeds: feeds,
		client: &http.Client{
			Timeout:   feedFetchTimeout,
			Transport: &feedTransport{base: http.DefaultTransport},
		},
		logger: loggerOrDefault(logger),
	}, nil
}

func (fs *FeedSource) Name() string {
	return feedSourceName
}

// Fetch pulls every feed concurrently. Requests to the same host are
// serialized with a delay between them. A failing feed is logged and skipped.
func (fs *FeedSource) Fetch(ctx context.Context, since time.Time) ([]Record, error) {
	type result struct {
		records []Record
		err     error
		url     string
	}

	domainFeeds := make(map[string][]string)
	for _, feedURL := range fs.feeds {
		d := feedDomain(feedURL)
		domainFeeds[d] = append(domainFeeds[d], feedURL)
	}

	results := make(chan result, len(fs.feeds))
	domainJobs := make(chan []string, len(domainFeeds))

	workers := min(feedMaxWorkers, len(domainFeeds))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for feeds := range domainJobs {
				for i, feedURL := range feeds {
					if i > 0 {
						feedSleepFunc(feedDomainDelay)
					}
					records, err := fs.fetchWithRetry(ctx, feedURL, since)
					results <- result{records: records, err: err, url: feedURL}
				}
			}
		}()
	}

	for _, feeds := range domainFeeds {
		domainJobs <- feeds
	}
	close(domainJobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		records []Record
		failed  int
	)
	for r := range results {
		if r.err != nil {
			fs.logger.Warn("feed fetch failed", "url", r.url, "error", r.err)
			failed++
			continue
		}
		records = append(records, r.records...)
	}

	if err := ctx.Err(); err != nil {
		return records, err
	}
	if failed == len(fs.feeds) {
		return nil, fmt.Errorf("feed: all %d feeds failed", failed)
	}
	return records, nil
}

// feedDomain extracts the host from a feed URL for rate limiting grouping.
func feedDomain(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return feedURL
	}
	return u.Host
}

// feedTransport injects a User-Agent header into every request.
type feedTransport struct {
	base http.RoundTripper
}

func (t *feedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", feedUserAgent)
	return t.base.RoundTrip(req)
}

// feedSleepFunc is used for backoff and same-domain delays. Overridden in tests.
var feedSleepFunc = time.Sleep

func (fs *FeedSource) fetchWithRetry(ctx context.Context, feedURL string, since time.Time) ([]Record, error) {
	var lastErr error
	for attempt := range feedMaxRetries {
		records, err := fs.fetchFeed(ctx, feedURL, since)
		if err == nil {
			return records, nil
		}
		if !isRetryableError(err) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err
		if attempt < feedMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second // 1s, 2s, 4s
			fs.logger.Debug("retrying feed", "url", feedURL, "attempt", attempt+1, "backoff", backoff)
			feedSleepFunc(backoff)
		}
	}
	return nil, lastErr
}

// isRetryableError reports whether err is a timeout, a connection failure, or a 5xx response.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	s := err.Error()
	return strings.Contains(s, "connection refused") || strings.Contains(s, "no such host")
}

func (fs *FeedSource) fetchFeed(ctx context.Context, feedURL string, since time.Time) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, feedFetchTimeout)
	defer cancel()

	fp := gofeed.NewParser()
	fp.Client = fs.client
	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", feedURL, err)
	}

	return fs.recordsFromFeed(feed, feedURL, since), nil
}

func (fs *FeedSource) recordsFromFeed(feed *gofeed.Feed, feedURL string, since time.Time) []Record {
	var records []Record
	for _, item := range feed.Items {
		postedAt := itemPublishedTime(item)
		if postedAt.IsZero() || postedAt.Before(since) {
			continue
		}

		author := Username(itemAuthor(feed, item))
		if author == "" {
			fs.logger.Debug("skipping feed item without author", "url", feedURL, "item", item.Link)
			continue
		}

		id := itemID(item)
		if id == "" {
			id = feedURL + "#" + postedAt.UTC().Format(time.RFC3339Nano)
		}

		records = append(records, Record{
			Source:     feedSourceName,
			ExternalID: id,
			Author:     author,
			Text:       itemText(item),
			URL:        item.Link,
			PostedAt:   postedAt,
		})
	}
	return records
}

func itemPublishedTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}

// itemAuthor picks the item author, falling back to the feed author and then the feed title.
func itemAuthor(feed *gofeed.Feed, item *gofeed.Item) string {
	candidates := []*gofeed.Person{item.Author}
	candidates = append(candidates, item.Authors...)
	candidates = append(candidates, feed.Author)
	candidates = append(candidates, feed.Authors...)
	for _, p := range candidates {
		if p != nil && strings.TrimSpace(p.Name) != "" {
			return p.Name
		}
	}
	return feed.Title
}

func itemID(item *gofeed.Item) string {
	if item.GUID != "" {
		return item.GUID
	}
	return item.Link
}

func itemText(item *gofeed.Item) string {
	raw := item.Content
	if raw == "" {
		raw = item.Description
	}

	text := htmlText(raw)

	if item.Title != "" && !strings.Contains(text, item.Title) {
		text = strings.TrimSpace(item.Title + " " + text)
	}

	return text
}

var blockElements = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// htmlText renders an HTML fragment as single-line plain text. Block elements
// end with a space so "<p>hi</p><p>@bob</p>" keeps @bob a mention.
func htmlText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	var b strings.Builder
	writeText(&b, doc.Selection)
	return strings.Join(strings.Fields(b.String()), " ")
}

func writeText(b *strings.Builder, sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch name {
		case "#text":
			b.WriteString(c.Text())
			return
		case "script", "style":
			return
		}
		writeText(b, c)
		if blockElements[name] {
			b.WriteByte(' ')
		}
	})
}

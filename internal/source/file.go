package source

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/ppiankov/tweetq/internal/tweet"
)

const (
	fileSourceName = "file"
	maxLineLength  = 1 << 20 // 1 MiB per JSONL line
)

// FileSource reads posts from JSONL dumps, one JSON object per line:
//
//	{"id": "42", "author": "alyssa", "text": "...", "timestamp": "2016-02-17T10:00:00Z", "url": "..."}
//
// id and url are optional. timestamp accepts any format dateparse understands;
// zoneless values are read as UTC.
type FileSource struct {
	paths  []string
	logger *slog.Logger
}

// NewFile creates a JSONL file source. "-" reads standard input.
func NewFile(paths []string, logger *slog.Logger) (*FileSource, error) {
	if len(paths) == 0 {
		return nil, errors.New("file: at least one path is required")
	}
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			return nil, errors.New("file: empty path")
		}
	}
	return &FileSource{paths: paths, logger: loggerOrDefault(logger)}, nil
}

func (fs *FileSource) Name() string {
	return fileSourceName
}

// Fetch reads every file in order. An unreadable file fails the whole fetch;
// malformed lines are logged and skipped.
func (fs *FileSource) Fetch(ctx context.Context, since time.Time) ([]Record, error) {
	var records []Record
	for _, path := range fs.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := fs.readFile(path, since)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

func (fs *FileSource) readFile(path string, since time.Time) ([]Record, error) {
	if path == "-" {
		return ParseJSONL(os.Stdin, "stdin", since, fs.logger)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("file: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return ParseJSONL(f, path, since, fs.logger)
}

// fileLine is the JSONL schema of a post dump.
type fileLine struct {
	ID        flexibleID `json:"id"`
	Author    string     `json:"author"`
	Text      string     `json:"text"`
	Timestamp string     `json:"timestamp"`
	URL       string     `json:"url"`
}

// flexibleID accepts both JSON strings and numbers.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = flexibleID(n.String())
	return nil
}

// ParseJSONL reads post records from r. name labels log lines. Records posted
// before since are dropped; malformed lines are logged and skipped.
func ParseJSONL(r io.Reader, name string, since time.Time, logger *slog.Logger) ([]Record, error) {
	logger = loggerOrDefault(logger)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	var records []Record
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rec, err := parseLine(line)
		if err != nil {
			logger.Warn("skipping malformed line", "file", name, "line", lineNum, "error", err)
			continue
		}
		if rec.PostedAt.Before(since) {
			continue
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return records, nil
}

func parseLine(line string) (Record, error) {
	var fl fileLine
	if err := json.Unmarshal([]byte(line), &fl); err != nil {
		return Record{}, fmt.Errorf("invalid json: %w", err)
	}

	author := strings.TrimPrefix(strings.TrimSpace(fl.Author), "@")
	if !tweet.ValidUsername(author) {
		return Record{}, fmt.Errorf("invalid author %q", fl.Author)
	}

	if strings.TrimSpace(fl.Timestamp) == "" {
		return Record{}, errors.New("timestamp is required")
	}
	postedAt, err := dateparse.ParseIn(strings.TrimSpace(fl.Timestamp), time.UTC)
	if err != nil {
		return Record{}, fmt.Errorf("invalid timestamp %q: %w", fl.Timestamp, err)
	}

	id := strings.TrimSpace(string(fl.ID))
	if id == "" {
		id = contentID(author, fl.Text, postedAt)
	}

	return Record{
		Source:     fileSourceName,
		ExternalID: id,
		Author:     author,
		Text:       fl.Text,
		URL:        strings.TrimSpace(fl.URL),
		PostedAt:   postedAt,
	}, nil
}

// contentID derives a stable ID for records that carry none, so re-importing
// the same dump updates rather than duplicates.
func contentID(author, text string, postedAt time.Time) string {
	sum := sha256.Sum256([]byte(strings.ToLower(author) + "\x00" + postedAt.UTC().Format(time.RFC3339Nano) + "\x00" + text))
	return "sha256:" + hex.EncodeToString(sum[:16])
}

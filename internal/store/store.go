package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/tweetq/internal/tweet"
)

// ErrNotInitialized is returned by methods called on a nil Store.
var ErrNotInitialized = errors.New("store is not initialized")

// timeLayout is fixed-width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type Store struct {
	db *sql.DB
}

type Post struct {
	ID         int64
	Source     string
	ExternalID string
	Author     string
	Text       string
	URL        string
	PostedAt   time.Time
	FetchedAt  time.Time
}

// Tweet returns the query-core view of p.
func (p Post) Tweet() tweet.Post {
	return tweet.Post{
		ID:        p.ID,
		Author:    p.Author,
		Text:      p.Text,
		Timestamp: p.PostedAt,
	}
}

// Tweets converts stored posts for the query packages, keeping order.
func Tweets(posts []Post) []tweet.Post {
	out := make([]tweet.Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Tweet())
	}
	return out
}

type PostInput struct {
	Source     string
	ExternalID string
	Author     string
	Text       string
	URL        string
	PostedAt   time.Time
	FetchedAt  time.Time
}

// PostQuery narrows GetPosts. Zero fields are ignored.
type PostQuery struct {
	Since  time.Time // posted_at >= Since
	Until  time.Time // posted_at <= Until
	Author string    // case-insensitive exact match
}

// Import records one ingestion run.
type Import struct {
	ID         string
	Source     string
	Count      int
	ImportedAt time.Time
}

// AuthorStats aggregates stored posts per author.
type AuthorStats struct {
	Author    string
	Total     int
	FirstSeen time.Time
	LastSeen  time.Time
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InsertPost stores a post, replacing any earlier copy with the same
// source and external ID, and returns the stored row.
func (s *Store) InsertPost(ctx context.Context, in PostInput) (Post, error) {
	if s == nil || s.db == nil {
		return Post{}, ErrNotInitialized
	}

	if strings.TrimSpace(in.Source) == "" {
		return Post{}, errors.New("source is required")
	}
	if strings.TrimSpace(in.ExternalID) == "" {
		return Post{}, errors.New("external_id is required")
	}
	if !tweet.ValidUsername(in.Author) {
		return Post{}, fmt.Errorf("author %q is not a valid username", in.Author)
	}
	if in.PostedAt.IsZero() {
		return Post{}, errors.New("posted_at is required")
	}
	if in.FetchedAt.IsZero() {
		return Post{}, errors.New("fetched_at is required")
	}

	var urlVal sql.NullString
	if u := strings.TrimSpace(in.URL); u != "" {
		urlVal = sql.NullString{String: u, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (
			source, external_id, author, author_lower, text, url, posted_at, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, external_id) DO UPDATE SET
			author = excluded.author,
			author_lower = excluded.author_lower,
			text = excluded.text,
			url = excluded.url,
			posted_at = excluded.posted_at,
			fetched_at = excluded.fetched_at
	`,
		in.Source,
		in.ExternalID,
		in.Author,
		strings.ToLower(in.Author),
		in.Text,
		urlVal,
		formatTime(in.PostedAt),
		formatTime(in.FetchedAt),
	)
	if err != nil {
		return Post{}, fmt.Errorf("insert post: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, external_id, author, text, url, posted_at, fetched_at
		FROM posts
		WHERE source = ? AND external_id = ?
	`, in.Source, in.ExternalID)

	return scanPost(row)
}

// GetPosts returns stored posts matching q, oldest first.
func (s *Store) GetPosts(ctx context.Context, q PostQuery) ([]Post, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotInitialized
	}

	query := `
		SELECT id, source, external_id, author, text, url, posted_at, fetched_at
		FROM posts
		WHERE 1 = 1`
	var args []any

	if !q.Since.IsZero() {
		query += " AND posted_at >= ?"
		args = append(args, formatTime(q.Since))
	}
	if !q.Until.IsZero() {
		query += " AND posted_at <= ?"
		args = append(args, formatTime(q.Until))
	}
	if q.Author != "" {
		query += " AND author_lower = ?"
		args = append(args, strings.ToLower(q.Author))
	}

	query += " ORDER BY posted_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	return posts, nil
}

// PruneOld deletes posts older than retainDays. Returns the number removed.
func (s *Store) PruneOld(ctx context.Context, retainDays int) (int64, error) {
	if s == nil || s.db == nil {
		return 0, ErrNotInitialized
	}
	if retainDays <= 0 {
		return 0, nil
	}

	cutoff := formatTime(time.Now().AddDate(0, 0, -retainDays))

	res, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE posted_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune old posts: %w", err)
	}

	n, _ := res.RowsAffected()
	return n, nil
}

// RecordImport logs an ingestion run and returns its generated ID.
func (s *Store) RecordImport(ctx context.Context, source string, count int, at time.Time) (string, error) {
	if s == nil || s.db == nil {
		return "", ErrNotInitialized
	}
	if strings.TrimSpace(source) == "" {
		return "", errors.New("source is required")
	}

	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO imports(id, source, count, imported_at) VALUES(?, ?, ?, ?)",
		id, source, count, formatTime(at),
	); err != nil {
		return "", fmt.Errorf("record import: %w", err)
	}
	return id, nil
}

// LastImports returns up to n import runs, newest first.
func (s *Store) LastImports(ctx context.Context, n int) ([]Import, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotInitialized
	}
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, count, imported_at
		FROM imports
		ORDER BY imported_at DESC, rowid DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("get imports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var imports []Import
	for rows.Next() {
		var (
			imp Import
			at  string
		)
		if err := rows.Scan(&imp.ID, &imp.Source, &imp.Count, &at); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		imp.ImportedAt, err = parseTime(at)
		if err != nil {
			return nil, fmt.Errorf("parse imported_at: %w", err)
		}
		imports = append(imports, imp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate imports: %w", err)
	}

	return imports, nil
}

// GetAuthorStats returns per-author post counts, busiest author first.
func (s *Store) GetAuthorStats(ctx context.Context) ([]AuthorStats, error) {
	if s == nil || s.db == nil {
		return nil, ErrNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT MIN(author), COUNT(*), MIN(posted_at), MAX(posted_at)
		FROM posts
		GROUP BY author_lower
		ORDER BY COUNT(*) DESC, author_lower ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("get author stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []AuthorStats
	for rows.Next() {
		var (
			as          AuthorStats
			first, last string
		)
		if err := rows.Scan(&as.Author, &as.Total, &first, &last); err != nil {
			return nil, fmt.Errorf("scan author stats: %w", err)
		}
		if as.FirstSeen, err = parseTime(first); err != nil {
			return nil, fmt.Errorf("parse first_seen: %w", err)
		}
		if as.LastSeen, err = parseTime(last); err != nil {
			return nil, fmt.Errorf("parse last_seen: %w", err)
		}
		stats = append(stats, as)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate author stats: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(scanner rowScanner) (Post, error) {
	var (
		post                Post
		urlVal              sql.NullString
		postedAt, fetchedAt string
	)

	if err := scanner.Scan(
		&post.ID,
		&post.Source,
		&post.ExternalID,
		&post.Author,
		&post.Text,
		&urlVal,
		&postedAt,
		&fetchedAt,
	); err != nil {
		return Post{}, fmt.Errorf("scan post: %w", err)
	}

	if urlVal.Valid {
		post.URL = urlVal.String
	}

	var err error
	post.PostedAt, err = parseTime(postedAt)
	if err != nil {
		return Post{}, fmt.Errorf("parse posted_at: %w", err)
	}
	post.FetchedAt, err = parseTime(fetchedAt)
	if err != nil {
		return Post{}, fmt.Errorf("parse fetched_at: %w", err)
	}

	return post, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(timeLayout, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tweetq.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st, path
}

func insertTestPost(t *testing.T, st *Store, id, author, text string, postedAt time.Time) Post {
	t.Helper()
	post, err := st.InsertPost(context.Background(), PostInput{
		Source:     "test",
		ExternalID: id,
		Author:     author,
		Text:       text,
		PostedAt:   postedAt,
		FetchedAt:  postedAt.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("insert post %s: %v", id, err)
	}
	return post
}

func TestOpenAndMigrate(t *testing.T) {
	st, path := openTestStore(t)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file not created: %v", err)
	}

	var version string
	if err := st.db.QueryRow("SELECT value FROM metadata WHERE key = 'schema_version'").Scan(&version); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if version != "1" {
		t.Fatalf("unexpected schema version: %s", version)
	}
}

func TestOpen_Reopen(t *testing.T) {
	st, path := openTestStore(t)
	insertTestPost(t, st, "1", "alyssa", "hello", time.Date(2016, 2, 17, 10, 0, 0, 0, time.UTC))
	_ = st.Close()

	again, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = again.Close() }()

	posts, err := again.GetPosts(context.Background(), PostQuery{})
	if err != nil {
		t.Fatalf("get posts: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("posts after reopen = %d, want 1", len(posts))
	}
}

func TestOpen_NewerSchemaRefused(t *testing.T) {
	st, path := openTestStore(t)
	if _, err := st.db.Exec("UPDATE metadata SET value = '99' WHERE key = 'schema_version'"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = st.Close()

	_, err := Open(path)
	if err == nil {
		t.Fatal("expected error for newer schema")
	}
	if !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("error = %q", err)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestInsertPostUpsert(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	postedAt := time.Date(2016, 2, 17, 10, 0, 0, 0, time.UTC)
	first := insertTestPost(t, st, "1", "alyssa", "first text", postedAt)

	if first.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if first.Author != "alyssa" || first.Text != "first text" {
		t.Fatalf("unexpected post: %+v", first)
	}
	if !first.PostedAt.Equal(postedAt) {
		t.Fatalf("posted_at = %v, want %v", first.PostedAt, postedAt)
	}

	second, err := st.InsertPost(ctx, PostInput{
		Source:     "test",
		ExternalID: "1",
		Author:     "Alyssa",
		Text:       "updated text",
		URL:        " https://example.com/1 ",
		PostedAt:   postedAt,
		FetchedAt:  postedAt.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("upsert changed id: %d -> %d", first.ID, second.ID)
	}
	if second.Text != "updated text" {
		t.Errorf("text = %q, want updated text", second.Text)
	}
	if second.URL != "https://example.com/1" {
		t.Errorf("url = %q, want trimmed", second.URL)
	}

	var count int
	if err := st.db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		t.Fatalf("count posts: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 post, got %d", count)
	}
}

func TestInsertPost_Validation(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2016, 2, 17, 10, 0, 0, 0, time.UTC)

	valid := PostInput{Source: "test", ExternalID: "1", Author: "alyssa", Text: "x", PostedAt: at, FetchedAt: at}

	cases := []struct {
		name   string
		mutate func(*PostInput)
		want   string
	}{
		{"source", func(in *PostInput) { in.Source = "" }, "source is required"},
		{"external id", func(in *PostInput) { in.ExternalID = " " }, "external_id is required"},
		{"author", func(in *PostInput) { in.Author = "not valid" }, "not a valid username"},
		{"empty author", func(in *PostInput) { in.Author = "" }, "not a valid username"},
		{"posted at", func(in *PostInput) { in.PostedAt = time.Time{} }, "posted_at is required"},
		{"fetched at", func(in *PostInput) { in.FetchedAt = time.Time{} }, "fetched_at is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := st.InsertPost(ctx, in)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q, want containing %q", err, tc.want)
			}
		})
	}
}

func TestGetPosts_OrderAndFilters(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2016, 2, 17, 10, 0, 0, 0, time.UTC)
	insertTestPost(t, st, "c", "alyssa", "third", base.Add(2*time.Hour))
	insertTestPost(t, st, "a", "bbitdiddle", "first", base)
	insertTestPost(t, st, "b", "ALYSSA", "second", base.Add(time.Hour))
	insertTestPost(t, st, "frac", "alyssa", "fractional", base.Add(500*time.Millisecond))

	all, err := st.GetPosts(ctx, PostQuery{})
	if err != nil {
		t.Fatalf("get posts: %v", err)
	}
	want := []string{"first", "fractional", "second", "third"}
	if len(all) != len(want) {
		t.Fatalf("posts = %d, want %d", len(all), len(want))
	}
	for i, w := range want {
		if all[i].Text != w {
			t.Errorf("posts[%d] = %q, want %q", i, all[i].Text, w)
		}
	}

	byAuthor, err := st.GetPosts(ctx, PostQuery{Author: "Alyssa"})
	if err != nil {
		t.Fatalf("get posts by author: %v", err)
	}
	if len(byAuthor) != 3 {
		t.Errorf("posts by alyssa = %d, want 3", len(byAuthor))
	}

	window, err := st.GetPosts(ctx, PostQuery{Since: base.Add(time.Hour), Until: base.Add(2 * time.Hour)})
	if err != nil {
		t.Fatalf("get posts in window: %v", err)
	}
	if len(window) != 2 || window[0].Text != "second" || window[1].Text != "third" {
		t.Errorf("window posts = %+v, want second and third", window)
	}
}

func TestTweets(t *testing.T) {
	st, _ := openTestStore(t)
	at := time.Date(2016, 2, 17, 10, 0, 0, 0, time.UTC)
	p := insertTestPost(t, st, "1", "alyssa", "@john hello", at)

	tweets := Tweets([]Post{p})
	if len(tweets) != 1 {
		t.Fatalf("tweets = %d, want 1", len(tweets))
	}
	got := tweets[0]
	if got.ID != p.ID || got.Author != "alyssa" || got.Text != "@john hello" || !got.Timestamp.Equal(at) {
		t.Errorf("tweet = %+v", got)
	}
}

func TestPruneOld(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	now := time.Now()
	insertTestPost(t, st, "old", "alyssa", "old", now.AddDate(0, 0, -40))
	insertTestPost(t, st, "new", "alyssa", "new", now.Add(-time.Hour))

	n, err := st.PruneOld(ctx, 30)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned = %d, want 1", n)
	}

	n, err = st.PruneOld(ctx, 0)
	if err != nil {
		t.Fatalf("prune disabled: %v", err)
	}
	if n != 0 {
		t.Errorf("pruned with retain 0 = %d, want 0", n)
	}
}

func TestRecordAndListImports(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2016, 2, 17, 10, 0, 0, 0, time.UTC)
	firstID, err := st.RecordImport(ctx, "file", 3, base)
	if err != nil {
		t.Fatalf("record import: %v", err)
	}
	secondID, err := st.RecordImport(ctx, "feed", 5, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("record import: %v", err)
	}
	if firstID == "" || firstID == secondID {
		t.Fatalf("ids = %q, %q, want distinct non-empty", firstID, secondID)
	}

	imports, err := st.LastImports(ctx, 10)
	if err != nil {
		t.Fatalf("last imports: %v", err)
	}
	if len(imports) != 2 {
		t.Fatalf("imports = %d, want 2", len(imports))
	}
	if imports[0].ID != secondID || imports[0].Count != 5 || imports[0].Source != "feed" {
		t.Errorf("imports[0] = %+v, want newest feed run", imports[0])
	}

	if _, err := st.RecordImport(ctx, "", 1, base); err == nil {
		t.Error("expected error for empty source")
	}
}

func TestGetAuthorStats(t *testing.T) {
	st, _ := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2016, 2, 17, 10, 0, 0, 0, time.UTC)
	insertTestPost(t, st, "1", "alyssa", "a", base)
	insertTestPost(t, st, "2", "Alyssa", "b", base.Add(2*time.Hour))
	insertTestPost(t, st, "3", "bbitdiddle", "c", base.Add(time.Hour))

	stats, err := st.GetAuthorStats(ctx)
	if err != nil {
		t.Fatalf("author stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("stats = %+v, want 2 authors", stats)
	}
	if !strings.EqualFold(stats[0].Author, "alyssa") || stats[0].Total != 2 {
		t.Errorf("stats[0] = %+v, want alyssa with 2", stats[0])
	}
	if !stats[0].FirstSeen.Equal(base) || !stats[0].LastSeen.Equal(base.Add(2*time.Hour)) {
		t.Errorf("stats[0] range = %v..%v", stats[0].FirstSeen, stats[0].LastSeen)
	}
}

func TestNilStore(t *testing.T) {
	var st *Store
	ctx := context.Background()

	if _, err := st.GetPosts(ctx, PostQuery{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("GetPosts error = %v, want ErrNotInitialized", err)
	}
	if _, err := st.InsertPost(ctx, PostInput{}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("InsertPost error = %v, want ErrNotInitialized", err)
	}
	if err := st.Close(); err != nil {
		t.Errorf("Close on nil store: %v", err)
	}
}

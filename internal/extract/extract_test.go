package extract

import (
	"slices"
	"testing"
	"time"

	"github.com/ppiankov/tweetq/internal/tweet"
)

var (
	d1 = time.Date(2016, 2, 17, 10, 0, 0, 0, time.UTC)
	d2 = time.Date(2016, 2, 17, 11, 0, 0, 0, time.UTC)
	d3 = time.Date(2016, 2, 17, 12, 0, 0, 0, time.UTC)

	tweet1 = tweet.Post{ID: 1, Author: "alyssa", Text: "is it reasonable to talk about rivest so much?", Timestamp: d1}
	tweet2 = tweet.Post{ID: 2, Author: "bbitdiddle", Text: "rivest talk in 30 minutes #hype", Timestamp: d2}
	tweet3 = tweet.Post{ID: 3, Author: "alyssa", Text: "@john hello", Timestamp: d3}
	tweet4 = tweet.Post{ID: 4, Author: "bbitdiddle", Text: "email me at bitdiddle@mit.edu", Timestamp: d1}
	tweet5 = tweet.Post{ID: 5, Author: "bbitdiddle", Text: "@john @JaneDoe hi", Timestamp: d2}
)

func pinNow(t *testing.T, at time.Time) {
	t.Helper()
	old := nowFunc
	nowFunc = func() time.Time { return at }
	t.Cleanup(func() { nowFunc = old })
}

func TestTimespan_TwoPosts(t *testing.T) {
	ts := Timespan([]tweet.Post{tweet1, tweet2})

	if !ts.Start.Equal(d1) {
		t.Errorf("start = %v, want %v", ts.Start, d1)
	}
	if !ts.End.Equal(d2) {
		t.Errorf("end = %v, want %v", ts.End, d2)
	}
}

func TestTimespan_OnePost(t *testing.T) {
	ts := Timespan([]tweet.Post{tweet1})

	if !ts.Start.Equal(d1) || !ts.End.Equal(d1) {
		t.Errorf("timespan = [%v, %v], want [%v, %v]", ts.Start, ts.End, d1, d1)
	}
}

func TestTimespan_OutOfOrder(t *testing.T) {
	ts := Timespan([]tweet.Post{tweet3, tweet1, tweet2})

	if !ts.Start.Equal(d1) {
		t.Errorf("start = %v, want %v", ts.Start, d1)
	}
	if !ts.End.Equal(d3) {
		t.Errorf("end = %v, want %v", ts.End, d3)
	}
}

func TestTimespan_SameTimestamp(t *testing.T) {
	ts := Timespan([]tweet.Post{tweet1, tweet4})

	if !ts.Start.Equal(d1) || !ts.End.Equal(d1) {
		t.Errorf("timespan = [%v, %v], want zero-length at %v", ts.Start, ts.End, d1)
	}
}

func TestTimespan_NotAnchoredToNow(t *testing.T) {
	now := time.Date(2024, 10, 6, 12, 0, 0, 0, time.UTC)
	pinNow(t, now)

	ts := Timespan([]tweet.Post{tweet1, tweet2, tweet3})

	if ts.Start.Equal(now) || ts.End.Equal(now) {
		t.Errorf("timespan = [%v, %v] uses the current time", ts.Start, ts.End)
	}
}

func TestTimespan_Empty(t *testing.T) {
	now := time.Date(2024, 10, 6, 12, 0, 0, 0, time.UTC)
	pinNow(t, now)

	ts := Timespan(nil)

	if !ts.Start.Equal(ts.End) {
		t.Errorf("start %v != end %v", ts.Start, ts.End)
	}
	if !ts.Start.Equal(now) {
		t.Errorf("start = %v, want %v", ts.Start, now)
	}
}

func TestTimespan_DoesNotReorderInput(t *testing.T) {
	posts := []tweet.Post{tweet3, tweet1, tweet2}
	_ = Timespan(posts)

	if posts[0].ID != 3 || posts[1].ID != 1 || posts[2].ID != 2 {
		t.Errorf("input reordered: %v", posts)
	}
}

func TestMentionedUsers_NoMention(t *testing.T) {
	users := MentionedUsers([]tweet.Post{tweet1})

	if len(users) != 0 {
		t.Errorf("users = %v, want empty", users)
	}
}

func TestMentionedUsers_OneMention(t *testing.T) {
	users := MentionedUsers([]tweet.Post{tweet3})

	if !users["john"] {
		t.Errorf("users = %v, want john", users)
	}
	if len(users) != 1 {
		t.Errorf("len = %d, want 1", len(users))
	}
}

func TestMentionedUsers_MultipleInOnePost(t *testing.T) {
	users := MentionedUsers([]tweet.Post{tweet5})

	if !users["john"] || !users["janedoe"] {
		t.Errorf("users = %v, want john and janedoe", users)
	}
	if len(users) != 2 {
		t.Errorf("len = %d, want 2", len(users))
	}
}

func TestMentionedUsers_AcrossPosts(t *testing.T) {
	users := MentionedUsers([]tweet.Post{tweet3, tweet5})

	if len(users) != 2 {
		t.Errorf("users = %v, want {john, janedoe}", users)
	}
}

func TestMentionedUsers_CaseInsensitive(t *testing.T) {
	p := tweet.Post{ID: 6, Author: "bbitdiddle", Text: "@John hi @JOHN", Timestamp: d2}
	users := MentionedUsers([]tweet.Post{p})

	if !users["john"] {
		t.Errorf("users = %v, want john", users)
	}
	if len(users) != 1 {
		t.Errorf("len = %d, want 1", len(users))
	}
}

func TestMentionedUsers_EmailExcluded(t *testing.T) {
	users := MentionedUsers([]tweet.Post{tweet4})

	if len(users) != 0 {
		t.Errorf("users = %v, want empty", users)
	}
}

func TestMentions(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"", nil},
		{"no mentions here", nil},
		{"@alice", []string{"alice"}},
		{"hi @Bob!", []string{"bob"}},
		{"@a @b @a", []string{"a", "b", "a"}},
		{"bitdiddle@mit.edu", nil},
		{"@@bob", []string{"bob"}},
		{"@a@b", []string{"a"}},
		{"@ alone", nil},
		{"trailing @", nil},
		{"(@paren) and @under_score.", []string{"paren", "under_score"}},
		{"café@nope", []string{"nope"}},
		{"@héllo", []string{"h"}},
		{"line\n@next", []string{"next"}},
	}

	for _, tc := range cases {
		got := Mentions(tc.text)
		if !slices.Equal(got, tc.want) {
			t.Errorf("Mentions(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]bool{"john": true, "alyssa": true, "bob": true})
	want := []string{"alyssa", "bob", "john"}

	if !slices.Equal(got, want) {
		t.Errorf("SortedKeys = %v, want %v", got, want)
	}
}

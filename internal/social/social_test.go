package social

import (
	"testing"
	"time"

	"github.com/ppiankov/tweetq/internal/tweet"
)

var ts = time.Date(2016, 2, 17, 10, 0, 0, 0, time.UTC)

func post(id int64, author, text string) tweet.Post {
	return tweet.Post{ID: id, Author: author, Text: text, Timestamp: ts}
}

func TestFollowsGraph_Empty(t *testing.T) {
	graph := FollowsGraph(nil)

	if len(graph) != 0 {
		t.Errorf("graph = %v, want empty", graph)
	}
}

func TestFollowsGraph_MentionsBecomeFollows(t *testing.T) {
	graph := FollowsGraph([]tweet.Post{
		post(1, "Alyssa", "@Ben and @cy, look"),
		post(2, "alyssa", "@ben again"),
		post(3, "ben", "no mentions"),
	})

	follows := graph["alyssa"]
	if len(follows) != 2 || !follows["ben"] || !follows["cy"] {
		t.Errorf("alyssa follows %v, want {ben, cy}", follows)
	}
	if _, ok := graph["ben"]; ok {
		t.Errorf("ben should not be a key: %v", graph["ben"])
	}
}

func TestFollowsGraph_SelfMentionIgnored(t *testing.T) {
	graph := FollowsGraph([]tweet.Post{post(1, "alyssa", "talking to myself @ALYSSA")})

	if len(graph) != 0 {
		t.Errorf("graph = %v, want empty", graph)
	}
}

func TestInfluencers_Order(t *testing.T) {
	graph := map[string]map[string]bool{
		"alyssa": {"ben": true, "cy": true},
		"dan":    {"ben": true},
		"cy":     {"ben": true, "alyssa": true},
	}

	got := Influencers(graph)

	want := []Influencer{
		{Username: "ben", Followers: 3},
		{Username: "alyssa", Followers: 1},
		{Username: "cy", Followers: 1},
		{Username: "dan", Followers: 0},
	}
	if len(got) != len(want) {
		t.Fatalf("influencers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("influencers[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTopMentioned_MinAuthors(t *testing.T) {
	posts := []tweet.Post{
		post(1, "alyssa", "@ben @cy"),
		post(2, "alyssa", "@ben"),
		post(3, "dan", "@ben"),
		post(4, "cy", "@cy @ben"),
	}

	got := TopMentioned(posts, 2)

	if len(got) != 1 {
		t.Fatalf("top = %v, want only ben", got)
	}
	if got[0].Username != "ben" || got[0].Followers != 3 {
		t.Errorf("top[0] = %v, want {ben 3}", got[0])
	}
}

func TestTopMentioned_FloorIsOne(t *testing.T) {
	got := TopMentioned([]tweet.Post{post(1, "alyssa", "@ben")}, 0)

	if len(got) != 1 || got[0].Username != "ben" {
		t.Errorf("top = %v, want [ben]", got)
	}
}

// Package social guesses a follows graph from mentions and ranks users by it.
package social

import (
	"sort"
	"strings"

	"github.com/ppiankov/tweetq/internal/extract"
	"github.com/ppiankov/tweetq/internal/tweet"
)

// Influencer is a user with the number of distinct users that follow them.
type Influencer struct {
	Username  string
	Followers int
}

// FollowsGraph guesses who follows whom: an author follows every user they
// @-mention, except themselves. Keys and values are lower-cased usernames.
// Authors that never mention anyone are absent.
func FollowsGraph(posts []tweet.Post) map[string]map[string]bool {
	graph := make(map[string]map[string]bool)

	for _, p := range posts {
		author := strings.ToLower(p.Author)
		for _, name := range extract.Mentions(p.Text) {
			if name == author {
				continue
			}
			if graph[author] == nil {
				graph[author] = make(map[string]bool)
			}
			graph[author][name] = true
		}
	}

	return graph
}

// Influencers returns every user in the graph, follower or followee, sorted by
// follower count descending and then username.
func Influencers(graph map[string]map[string]bool) []Influencer {
	followers := make(map[string]int)

	for user, follows := range graph {
		if _, ok := followers[user]; !ok {
			followers[user] = 0
		}
		for followee := range follows {
			followers[followee]++
		}
	}

	return rank(followers)
}

// TopMentioned returns users mentioned by at least minAuthors distinct authors
// (floor 1), with Followers holding that author count. Self-mentions are ignored.
func TopMentioned(posts []tweet.Post, minAuthors int) []Influencer {
	if minAuthors < 1 {
		minAuthors = 1
	}

	// mentioned user -> distinct authors
	mentionedBy := make(map[string]map[string]bool)
	for author, follows := range FollowsGraph(posts) {
		for name := range follows {
			if mentionedBy[name] == nil {
				mentionedBy[name] = make(map[string]bool)
			}
			mentionedBy[name][author] = true
		}
	}

	counts := make(map[string]int)
	for name, authors := range mentionedBy {
		if len(authors) >= minAuthors {
			counts[name] = len(authors)
		}
	}

	return rank(counts)
}

func rank(counts map[string]int) []Influencer {
	out := make([]Influencer, 0, len(counts))
	for user, n := range counts {
		out = append(out, Influencer{Username: user, Followers: n})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Followers != out[j].Followers {
			return out[i].Followers > out[j].Followers
		}
		return out[i].Username < out[j].Username
	})

	return out
}

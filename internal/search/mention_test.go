package search

import (
	"testing"

	"xojoc.pw/discussions/internal/platform"
)

func TestMatchMentionRules_HostRemapEquivalence(t *testing.T) {
	t.Parallel()

	rule := MentionRule{ID: 1, BaseURL: "m.xojoc.pw"}
	record := Record{
		Platform:      platform.HackerNews,
		SchemelessURL: "xojoc.pw/blog/post",
		CanonicalURL:  "xojoc.pw/blog/post",
	}

	matched := MatchMentionRules(record, []MentionRule{rule})
	if len(matched) != 1 {
		t.Fatalf("expected host-remapped base URL to match, got %d", len(matched))
	}

	unrelated := Record{
		Platform:      platform.HackerNews,
		SchemelessURL: "other.example/blog",
		CanonicalURL:  "other.example/blog",
	}
	if got := MatchMentionRules(unrelated, []MentionRule{rule}); len(got) != 0 {
		t.Fatalf("unrelated domain must not match, got %d", len(got))
	}
}

func TestMatchMentionRules_KeywordOnly(t *testing.T) {
	t.Parallel()

	rule := MentionRule{ID: 1, Keywords: []string{"zig"}}
	record := Record{
		Platform:        platform.HackerNews,
		NormalizedTitle: "zig 0.12 released",
		CommentCount:    10,
		Score:           100,
	}

	if got := MatchMentionRules(record, []MentionRule{rule}); len(got) != 1 {
		t.Fatalf("rule without a base URL must match on keywords alone, got %d", len(got))
	}

	offTopic := Record{
		Platform:        platform.HackerNews,
		NormalizedTitle: "rust 1.80 released",
		CommentCount:    10,
		Score:           100,
	}
	if got := MatchMentionRules(offTopic, []MentionRule{rule}); len(got) != 0 {
		t.Fatalf("keywords still gate the match, got %d", len(got))
	}
}

func TestMatchMentionRules_PrefixBoundary(t *testing.T) {
	t.Parallel()

	rule := MentionRule{ID: 1, BaseURL: "xojoc.pw/blog"}

	inside := Record{SchemelessURL: "xojoc.pw/blog/post", CanonicalURL: "xojoc.pw/blog/post"}
	if got := MatchMentionRules(inside, []MentionRule{rule}); len(got) != 1 {
		t.Fatalf("path under the prefix must match")
	}

	exact := Record{SchemelessURL: "xojoc.pw/blog", CanonicalURL: "xojoc.pw/blog"}
	if got := MatchMentionRules(exact, []MentionRule{rule}); len(got) != 1 {
		t.Fatalf("exact prefix must match")
	}

	lookalike := Record{SchemelessURL: "xojoc.pw/blogs", CanonicalURL: "xojoc.pw/blogs"}
	if got := MatchMentionRules(lookalike, []MentionRule{rule}); len(got) != 0 {
		t.Fatalf("prefix must respect path segment boundaries")
	}
}

func TestMatchMentionRules_Thresholds(t *testing.T) {
	t.Parallel()

	rule := MentionRule{ID: 1, BaseURL: "xojoc.pw", MinComments: 3, MinScore: 10}
	record := Record{
		SchemelessURL: "xojoc.pw/post",
		CanonicalURL:  "xojoc.pw/post",
		CommentCount:  3,
		Score:         10,
	}
	if got := MatchMentionRules(record, []MentionRule{rule}); len(got) != 1 {
		t.Fatalf("thresholds met, rule should match")
	}

	record.Score = 9
	if got := MatchMentionRules(record, []MentionRule{rule}); len(got) != 0 {
		t.Fatalf("score below threshold must not match")
	}
}

func TestMatchMentionRules_PlatformFilterAndKeywords(t *testing.T) {
	t.Parallel()

	rule := MentionRule{
		ID:        1,
		BaseURL:   "xojoc.pw",
		Platforms: []platform.Platform{platform.Lobsters},
		Keywords:  []string{"postgresql"},
	}

	record := Record{
		Platform:        platform.Lobsters,
		SchemelessURL:   "xojoc.pw/post",
		CanonicalURL:    "xojoc.pw/post",
		NormalizedTitle: "postgresql tricks",
	}
	if got := MatchMentionRules(record, []MentionRule{rule}); len(got) != 1 {
		t.Fatalf("expected platform and keyword match")
	}

	record.Platform = platform.HackerNews
	if got := MatchMentionRules(record, []MentionRule{rule}); len(got) != 0 {
		t.Fatalf("platform filter must exclude other platforms")
	}

	record.Platform = platform.Lobsters
	record.NormalizedTitle = "mysql tricks"
	if got := MatchMentionRules(record, []MentionRule{rule}); len(got) != 0 {
		t.Fatalf("missing keyword must not match")
	}
}

func TestMatchMentionRules_Subreddits(t *testing.T) {
	t.Parallel()

	rule := MentionRule{
		ID:                1,
		BaseURL:           "xojoc.pw",
		SubredditsInclude: []string{"programming"},
		SubredditsExclude: []string{"memes"},
	}

	record := Record{
		Platform:      platform.Reddit,
		SchemelessURL: "xojoc.pw/post",
		CanonicalURL:  "xojoc.pw/post",
		Tags:          []string{"programming", "golang"},
	}
	if got := MatchMentionRules(record, []MentionRule{rule}); len(got) != 1 {
		t.Fatalf("included subreddit should match")
	}

	record.Tags = []string{"memes"}
	if got := MatchMentionRules(record, []MentionRule{rule}); len(got) != 0 {
		t.Fatalf("excluded subreddit must not match")
	}

	// Subreddit scoping only restricts Reddit stories.
	record.Platform = platform.HackerNews
	record.Tags = nil
	if got := MatchMentionRules(record, []MentionRule{rule}); len(got) != 1 {
		t.Fatalf("non-reddit platforms ignore subreddit scoping")
	}
}

package digest

import (
	"testing"
	"time"

	"xojoc.pw/discussions/internal/platform"
	"xojoc.pw/discussions/internal/search"
)

func TestBuild_MergesAcrossPlatforms(t *testing.T) {
	t.Parallel()

	records := []search.Record{
		{
			ID:           1,
			Platform:     platform.HackerNews,
			Title:        "Zig 1.0 released",
			CanonicalURL: "ziglang.org/news/1.0",
			Tags:         []string{"zig", "programming", "release"},
			CommentCount: 120,
			Score:        400,
		},
		{
			ID:           2,
			Platform:     platform.Lobsters,
			Title:        "Zig 1.0",
			CanonicalURL: "ziglang.org/news/1.0",
			Tags:         []string{"zig", "programming", "release"},
			CommentCount: 40,
			Score:        90,
		},
		{
			ID:           3,
			Platform:     platform.Reddit,
			Title:        "A tour of PostgreSQL internals",
			CanonicalURL: "example.com/pg-internals",
			Tags:         []string{"postgresql", "programming"},
			CommentCount: 15,
			Score:        60,
		},
	}

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	digest := Build(records, from, to, 10)

	var total int
	for _, topic := range digest.Topics {
		total += len(topic.Entries)
	}
	if total != 2 {
		t.Fatalf("expected 2 merged entries, got %d", total)
	}

	var zigEntry *Entry
	for i := range digest.Topics {
		for j := range digest.Topics[i].Entries {
			if digest.Topics[i].Entries[j].CanonicalURL == "ziglang.org/news/1.0" {
				zigEntry = &digest.Topics[i].Entries[j]
			}
		}
	}
	if zigEntry == nil {
		t.Fatalf("zig entry missing")
	}
	if len(zigEntry.Discussions) != 2 {
		t.Fatalf("expected 2 merged discussions, got %d", len(zigEntry.Discussions))
	}
	if zigEntry.TotalComments != 160 {
		t.Fatalf("total comments = %d", zigEntry.TotalComments)
	}
	if zigEntry.Title != "Zig 1.0 released" {
		t.Fatalf("entry title should come from the most commented discussion, got %q", zigEntry.Title)
	}
}

func TestBuild_NoURLStoriesStaySeparate(t *testing.T) {
	t.Parallel()

	records := []search.Record{
		{ID: 1, Platform: platform.HackerNews, PlatformItemID: "1", Title: "Ask: monolith or microservices?"},
		{ID: 2, Platform: platform.HackerNews, PlatformItemID: "2", Title: "Ask: favorite debugger?"},
	}

	digest := Build(records, time.Now().Add(-time.Hour), time.Now(), 10)

	var total int
	for _, topic := range digest.Topics {
		total += len(topic.Entries)
	}
	if total != 2 {
		t.Fatalf("expected url-less stories to stay separate, got %d entries", total)
	}
	if len(digest.Topics) != 1 || digest.Topics[0].Tag != untaggedTopic {
		t.Fatalf("untagged stories should fall into the %q topic, got %+v", untaggedTopic, digest.Topics)
	}
}

func TestBuild_TopicCap(t *testing.T) {
	t.Parallel()

	var records []search.Record
	for i := 0; i < 5; i++ {
		records = append(records, search.Record{
			ID:             int64(i + 1),
			Platform:       platform.HackerNews,
			PlatformItemID: string(rune('a' + i)),
			Title:          "story",
			CanonicalURL:   "example.com/" + string(rune('a'+i)),
			Tags:           []string{"golang"},
			CommentCount:   i,
		})
	}

	digest := Build(records, time.Now().Add(-time.Hour), time.Now(), 3)
	if len(digest.Topics) != 1 {
		t.Fatalf("expected one topic, got %d", len(digest.Topics))
	}
	if len(digest.Topics[0].Entries) != 3 {
		t.Fatalf("expected topic capped at 3 entries, got %d", len(digest.Topics[0].Entries))
	}
	// Highest comment counts survive the cap.
	if digest.Topics[0].Entries[0].TotalComments != 4 {
		t.Fatalf("expected most commented entry first, got %d", digest.Topics[0].Entries[0].TotalComments)
	}
}

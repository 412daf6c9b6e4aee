// Package digest builds the weekly summary: stories from a time window,
// merged across platforms by canonical URL and grouped under their most
// common tag.
package digest

import (
	"sort"
	"strings"
	"time"

	"xojoc.pw/discussions/internal/search"
)

// Entry is one story in the digest, merged across platforms.
type Entry struct {
	CanonicalURL  string          `json:"canonical_url,omitempty"`
	Title         string          `json:"title"`
	TotalComments int             `json:"total_comments"`
	TotalScore    int             `json:"total_score"`
	Discussions   []search.Record `json:"discussions"`
}

// Topic is one digest section.
type Topic struct {
	Tag     string  `json:"tag"`
	Entries []Entry `json:"entries"`
}

// Digest is the weekly summary read model.
type Digest struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Topics []Topic   `json:"topics"`
}

const untaggedTopic = "miscellanea"

// Build merges the window's stories by canonical URL and groups the merged
// entries under their dominant tag. Entries within a topic are ordered by
// total comment count, topics by size.
func Build(records []search.Record, from, to time.Time, maxPerTopic int) *Digest {
	if maxPerTopic <= 0 {
		maxPerTopic = 10
	}

	entries := mergeByCanonicalURL(records)

	topics := make(map[string][]Entry)
	for _, entry := range entries {
		topics[dominantTag(entry)] = append(topics[dominantTag(entry)], entry)
	}

	digest := &Digest{
		From:   from.UTC(),
		To:     to.UTC(),
		Topics: make([]Topic, 0, len(topics)),
	}
	for tag, topicEntries := range topics {
		sort.SliceStable(topicEntries, func(i, j int) bool {
			if topicEntries[i].TotalComments != topicEntries[j].TotalComments {
				return topicEntries[i].TotalComments > topicEntries[j].TotalComments
			}
			return topicEntries[i].TotalScore > topicEntries[j].TotalScore
		})
		if len(topicEntries) > maxPerTopic {
			topicEntries = topicEntries[:maxPerTopic]
		}
		digest.Topics = append(digest.Topics, Topic{Tag: tag, Entries: topicEntries})
	}

	sort.SliceStable(digest.Topics, func(i, j int) bool {
		if len(digest.Topics[i].Entries) != len(digest.Topics[j].Entries) {
			return len(digest.Topics[i].Entries) > len(digest.Topics[j].Entries)
		}
		return digest.Topics[i].Tag < digest.Topics[j].Tag
	})

	return digest
}

// mergeByCanonicalURL collapses discussions of the same story into one entry.
// Stories without a URL stay separate, keyed by their platform identity.
func mergeByCanonicalURL(records []search.Record) []Entry {
	grouped := make(map[string]*Entry)
	var order []string

	for _, record := range records {
		key := strings.ToLower(record.CanonicalURL)
		if key == "" {
			key = string(record.Platform) + "\x00" + record.PlatformItemID
		}

		entry, ok := grouped[key]
		if !ok {
			entry = &Entry{CanonicalURL: record.CanonicalURL}
			grouped[key] = entry
			order = append(order, key)
		}

		entry.TotalComments += record.CommentCount
		entry.TotalScore += record.Score
		entry.Discussions = append(entry.Discussions, record)
		// The most commented discussion names the entry.
		if entry.Title == "" || record.CommentCount > maxComments(entry.Discussions[:len(entry.Discussions)-1]) {
			entry.Title = record.Title
		}
	}

	entries := make([]Entry, 0, len(order))
	for _, key := range order {
		entries = append(entries, *grouped[key])
	}
	return entries
}

func maxComments(records []search.Record) int {
	most := -1
	for _, record := range records {
		if record.CommentCount > most {
			most = record.CommentCount
		}
	}
	return most
}

// dominantTag picks the tag shared by the most discussions of an entry.
func dominantTag(entry Entry) string {
	counts := make(map[string]int)
	for _, record := range entry.Discussions {
		for _, tag := range record.Tags {
			counts[tag]++
		}
	}
	if len(counts) == 0 {
		return untaggedTopic
	}

	best := ""
	bestCount := 0
	for tag, count := range counts {
		if count > bestCount || (count == bestCount && (best == "" || tag < best)) {
			best = tag
			bestCount = count
		}
	}
	return best
}

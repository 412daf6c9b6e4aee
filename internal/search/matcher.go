// Package search finds every known discussion of a story from a URL or a
// free-text query and ranks the results deterministically.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"xojoc.pw/discussions/internal/canonical"
	"xojoc.pw/discussions/internal/globaltime"
	"xojoc.pw/discussions/internal/platform"
	"xojoc.pw/discussions/internal/title"
)

const (
	// FreeTextLimit caps free-text result sets; URL lookups are exact and
	// stay uncapped.
	FreeTextLimit = 50

	// recentWindow keeps low-engagement but fresh discussions relevant.
	recentWindow = 7 * 24 * time.Hour

	minRelevantComments = 2
)

// Record is the read model the matcher ranks. The store maps its own rows
// into this shape.
type Record struct {
	ID              int64
	Platform        platform.Platform
	PlatformItemID  string
	Title           string
	NormalizedTitle string
	SchemelessURL   string
	CanonicalURL    string
	Tags            []string
	CommentCount    int
	Score           int
	CreatedAt       time.Time
	// Rank is the store-reported relevance for free-text queries; zero in
	// URL mode.
	Rank float64
	// InboundResources counts link-graph references to the story URL.
	InboundResources int
}

// Store is the read side the matcher queries. Lookups must be
// case-insensitive on the URL columns.
type Store interface {
	StoriesByURL(ctx context.Context, schemelessForms []string, canonicalForm string) ([]Record, error)
	StoriesByTitle(ctx context.Context, terms string, siteHost string, limit int) ([]Record, error)
}

type Matcher struct {
	store Store
}

func NewMatcher(store Store) *Matcher {
	return &Matcher{store: store}
}

// FindDiscussions returns every known discussion of the queried story plus
// the canonical URL the query resolved to (empty for free-text queries).
func (m *Matcher) FindDiscussions(ctx context.Context, query string, onlyRelevant bool) ([]Record, string, error) {
	if m == nil || m.store == nil {
		return nil, "", fmt.Errorf("matcher is not initialized")
	}

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, "", nil
	}

	var (
		records      []Record
		canonicalURL string
		err          error
	)
	if IsURLQuery(trimmed) {
		records, canonicalURL, err = m.findByURL(ctx, trimmed)
	} else {
		records, err = m.findByTitle(ctx, trimmed)
	}
	if err != nil {
		return nil, "", err
	}

	if onlyRelevant {
		records = filterRelevant(records, globaltime.UTC())
	}
	orderRecords(records)
	return records, canonicalURL, nil
}

// IsURLQuery reports whether the query should be resolved as a story URL
// rather than searched as free text.
func IsURLQuery(query string) bool {
	if strings.ContainsAny(query, " \t") {
		return false
	}
	_, err := canonical.Canonicalize(query, canonical.Options{})
	return err == nil
}

func (m *Matcher) findByURL(ctx context.Context, rawURL string) ([]Record, string, error) {
	plain := canonical.URL(rawURL)
	generic := canonical.Generic(rawURL)

	forms := dedupeStrings(generic, plain)
	records, err := m.store.StoriesByURL(ctx, forms, plain)
	if err != nil {
		return nil, "", fmt.Errorf("lookup stories by url: %w", err)
	}

	kept := records[:0]
	for _, record := range records {
		if strings.TrimSpace(record.SchemelessURL) == "" {
			continue
		}
		kept = append(kept, record)
	}
	return kept, plain, nil
}

func (m *Matcher) findByTitle(ctx context.Context, query string) ([]Record, error) {
	siteHost, rest := splitSitePrefix(query)

	terms := title.Normalize(rest, title.Options{})
	if terms == "" && siteHost == "" {
		return nil, nil
	}

	records, err := m.store.StoriesByTitle(ctx, terms, siteHost, FreeTextLimit)
	if err != nil {
		return nil, fmt.Errorf("search stories by title: %w", err)
	}
	return records, nil
}

// splitSitePrefix peels an optional "site:<host>" token off a free-text
// query.
func splitSitePrefix(query string) (siteHost, rest string) {
	fields := strings.Fields(query)
	kept := make([]string, 0, len(fields))
	for _, field := range fields {
		if siteHost == "" && strings.HasPrefix(strings.ToLower(field), "site:") {
			siteHost = strings.ToLower(strings.TrimPrefix(field, "site:"))
			continue
		}
		kept = append(kept, field)
	}
	return siteHost, strings.Join(kept, " ")
}

// filterRelevant drops ancient low-engagement records while keeping recent
// activity and archive platforms.
func filterRelevant(records []Record, now time.Time) []Record {
	kept := records[:0]
	for _, record := range records {
		switch {
		case record.CommentCount >= minRelevantComments:
		case now.Sub(record.CreatedAt.UTC()) <= recentWindow:
		case platform.Meta(record.Platform).Archive:
		default:
			continue
		}
		kept = append(kept, record)
	}
	return kept
}

// orderRecords sorts by relevance rank, recency, platform priority and id,
// in that order, producing a deterministic total order.
func orderRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Rank != records[j].Rank {
			return records[i].Rank > records[j].Rank
		}
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		if platform.Order(records[i].Platform) != platform.Order(records[j].Platform) {
			return platform.Order(records[i].Platform) < platform.Order(records[j].Platform)
		}
		return records[i].ID > records[j].ID
	})
}

func dedupeStrings(values ...string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		lowered := strings.ToLower(strings.TrimSpace(value))
		if lowered == "" {
			continue
		}
		if _, ok := seen[lowered]; ok {
			continue
		}
		seen[lowered] = struct{}{}
		out = append(out, lowered)
	}
	return out
}

package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"xojoc.pw/discussions/internal/platform"
	"xojoc.pw/discussions/internal/search"
)

const storyRecordColumns = `
	s.story_id,
	s.platform,
	s.platform_item_id,
	s.title,
	s.normalized_title,
	s.schemeless_url,
	s.canonical_url,
	s.normalized_tags,
	s.comment_count,
	s.score,
	s.story_created_at,
	COALESCE(rl.inbound, 0)`

const storyInboundJoin = `
LEFT JOIN (
	SELECT to_canonical_url, COUNT(*)::BIGINT AS inbound
	FROM discussions.resource_links
	GROUP BY to_canonical_url
) rl ON rl.to_canonical_url = s.canonical_url AND s.canonical_url <> ''`

// UpsertStory inserts or updates the row for (platform, platform_item_id) and
// reports whether a new row was created. All derived columns are written on
// every call so older rows pick up rule changes on their next save.
func (p *Pool) UpsertStory(ctx context.Context, story *Story) (int64, bool, error) {
	if story == nil {
		return 0, false, fmt.Errorf("story is nil")
	}
	if strings.TrimSpace(story.Platform) == "" || strings.TrimSpace(story.PlatformItemID) == "" {
		return 0, false, fmt.Errorf("platform and platform item id are required")
	}

	const q = `
INSERT INTO discussions.stories (
	platform, platform_item_id, title, normalized_title,
	scheme, schemeless_url, canonical_url,
	tags, normalized_tags, category,
	comment_count, score, language, story_created_at,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
ON CONFLICT (platform, platform_item_id) DO UPDATE SET
	title = EXCLUDED.title,
	normalized_title = EXCLUDED.normalized_title,
	scheme = EXCLUDED.scheme,
	schemeless_url = EXCLUDED.schemeless_url,
	canonical_url = EXCLUDED.canonical_url,
	tags = EXCLUDED.tags,
	normalized_tags = EXCLUDED.normalized_tags,
	category = EXCLUDED.category,
	comment_count = EXCLUDED.comment_count,
	score = EXCLUDED.score,
	language = EXCLUDED.language,
	story_created_at = EXCLUDED.story_created_at,
	updated_at = now()
RETURNING story_id, (xmax = 0) AS inserted
`

	var (
		storyID  int64
		inserted bool
	)
	if err := p.QueryRow(ctx, q,
		story.Platform,
		story.PlatformItemID,
		story.Title,
		story.NormalizedTitle,
		story.Scheme,
		story.SchemelessURL,
		story.CanonicalURL,
		jsonbOrEmptyArray(story.Tags),
		jsonbOrEmptyArray(story.NormalizedTags),
		story.Category,
		story.CommentCount,
		story.Score,
		story.Language,
		story.StoryCreatedAt.UTC(),
	).Scan(&storyID, &inserted); err != nil {
		return 0, false, fmt.Errorf("upsert story: %w", err)
	}
	return storyID, inserted, nil
}

// GetStory returns one story by its platform key.
func (p *Pool) GetStory(ctx context.Context, platformCode, itemID string) (*Story, error) {
	const q = `
SELECT
	story_id, platform, platform_item_id, title, normalized_title,
	scheme, schemeless_url, canonical_url,
	tags, normalized_tags, category,
	comment_count, score, language, story_created_at,
	created_at, updated_at
FROM discussions.stories
WHERE platform = $1 AND platform_item_id = $2
`

	var story Story
	if err := p.QueryRow(ctx, q, platformCode, itemID).Scan(
		&story.StoryID,
		&story.Platform,
		&story.PlatformItemID,
		&story.Title,
		&story.NormalizedTitle,
		&story.Scheme,
		&story.SchemelessURL,
		&story.CanonicalURL,
		&story.Tags,
		&story.NormalizedTags,
		&story.Category,
		&story.CommentCount,
		&story.Score,
		&story.Language,
		&story.StoryCreatedAt,
		&story.CreatedAt,
		&story.UpdatedAt,
	); err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query story: %w", err)
	}
	return &story, nil
}

// StoriesByURL returns every story whose stored URL matches one of the
// schemeless forms or the canonical form. Comparison is case-insensitive and
// rows without a stored URL never match.
func (p *Pool) StoriesByURL(ctx context.Context, schemelessForms []string, canonicalForm string) ([]search.Record, error) {
	forms := make([]string, 0, len(schemelessForms))
	for _, form := range schemelessForms {
		form = strings.ToLower(strings.TrimSpace(form))
		if form != "" {
			forms = append(forms, form)
		}
	}
	canonicalForm = strings.ToLower(strings.TrimSpace(canonicalForm))
	if len(forms) == 0 && canonicalForm == "" {
		return nil, nil
	}

	var (
		clauses []string
		args    []any
	)
	for _, form := range forms {
		args = append(args, form)
		clauses = append(clauses, fmt.Sprintf("LOWER(s.schemeless_url) = $%d", len(args)))
	}
	if canonicalForm != "" {
		args = append(args, canonicalForm)
		clauses = append(clauses, fmt.Sprintf("LOWER(s.canonical_url) = $%d", len(args)))
	}

	q := `
SELECT` + storyRecordColumns + `,
	0::DOUBLE PRECISION AS rank
FROM discussions.stories s` + storyInboundJoin + `
WHERE s.schemeless_url <> ''
  AND (` + strings.Join(clauses, " OR ") + `)
`

	rows, err := p.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query stories by url: %w", err)
	}
	defer rows.Close()

	return scanStoryRecords(rows)
}

// StoriesByTitle runs a full-text search over normalized titles, optionally
// scoped to stories whose canonical URL lives under siteHost.
func (p *Pool) StoriesByTitle(ctx context.Context, terms string, siteHost string, limit int) ([]search.Record, error) {
	terms = strings.TrimSpace(terms)
	if terms == "" {
		return nil, nil
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}
	siteHost = strings.ToLower(strings.TrimSpace(siteHost))

	const q = `
SELECT` + storyRecordColumns + `,
	ts_rank(to_tsvector('simple', s.normalized_title), plainto_tsquery('simple', $1)) AS rank
FROM discussions.stories s` + storyInboundJoin + `
WHERE to_tsvector('simple', s.normalized_title) @@ plainto_tsquery('simple', $1)
  AND ($2 = ''
	OR LOWER(s.canonical_url) = $2
	OR LOWER(s.canonical_url) LIKE $2 || '/%')
ORDER BY rank DESC, s.story_created_at DESC, s.story_id DESC
LIMIT $3
`

	rows, err := p.Query(ctx, q, terms, siteHost, limit)
	if err != nil {
		return nil, fmt.Errorf("query stories by title: %w", err)
	}
	defer rows.Close()

	return scanStoryRecords(rows)
}

// ListStoriesInWindow returns stories first seen in the UTC window, most
// commented first. The digest builds its sections from this list.
func (p *Pool) ListStoriesInWindow(ctx context.Context, from, to time.Time) ([]search.Record, error) {
	fromUTC := from.UTC()
	toUTC := to.UTC()
	if !fromUTC.Before(toUTC) {
		return nil, fmt.Errorf("from must be before to")
	}

	const q = `
SELECT` + storyRecordColumns + `,
	0::DOUBLE PRECISION AS rank
FROM discussions.stories s` + storyInboundJoin + `
WHERE s.created_at >= $1
  AND s.created_at < $2
ORDER BY s.comment_count DESC, s.score DESC, s.story_id DESC
`

	rows, err := p.Query(ctx, q, fromUTC, toUTC)
	if err != nil {
		return nil, fmt.Errorf("query stories in window: %w", err)
	}
	defer rows.Close()

	return scanStoryRecords(rows)
}

func scanStoryRecords(rows *Rows) ([]search.Record, error) {
	var records []search.Record
	for rows.Next() {
		var (
			record       search.Record
			platformCode string
			tagsJSON     []byte
		)
		if err := rows.Scan(
			&record.ID,
			&platformCode,
			&record.PlatformItemID,
			&record.Title,
			&record.NormalizedTitle,
			&record.SchemelessURL,
			&record.CanonicalURL,
			&tagsJSON,
			&record.CommentCount,
			&record.Score,
			&record.CreatedAt,
			&record.InboundResources,
			&record.Rank,
		); err != nil {
			return nil, fmt.Errorf("scan story record: %w", err)
		}
		record.Platform = platform.Platform(platformCode)
		if len(tagsJSON) > 0 {
			if err := json.Unmarshal(tagsJSON, &record.Tags); err != nil {
				return nil, fmt.Errorf("decode story tags: %w", err)
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate story records: %w", err)
	}
	return records, nil
}

func jsonbOrEmptyArray(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("[]")
	}
	return raw
}

// Package ingest is the write path: it validates collector payloads, derives
// the canonical URL, normalized title, normalized tags and category, saves
// the story, and evaluates mention rules against the result.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"xojoc.pw/discussions/internal/canonical"
	"xojoc.pw/discussions/internal/category"
	"xojoc.pw/discussions/internal/db"
	"xojoc.pw/discussions/internal/langdetect"
	"xojoc.pw/discussions/internal/language"
	"xojoc.pw/discussions/internal/platform"
	"xojoc.pw/discussions/internal/resource"
	"xojoc.pw/discussions/internal/search"
	"xojoc.pw/discussions/internal/tags"
	"xojoc.pw/discussions/internal/title"
	payloadschema "xojoc.pw/discussions/schema"
)

type Service struct {
	pool      *db.Pool
	logger    zerolog.Logger
	tagRounds int
}

// SaveResult reports what one payload produced.
type SaveResult struct {
	StoryID       int64    `json:"story_id"`
	Inserted      bool     `json:"inserted"`
	CanonicalURL  string   `json:"canonical_url,omitempty"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags,omitempty"`
	Language      string   `json:"language,omitempty"`
	NotifiedRules []int64  `json:"notified_rules,omitempty"`
}

func NewService(pool *db.Pool, logger zerolog.Logger, tagRounds int) *Service {
	if tagRounds < 1 {
		tagRounds = tags.DefaultRounds
	}
	return &Service{
		pool:      pool,
		logger:    logger,
		tagRounds: tagRounds,
	}
}

// SaveRaw validates a raw collector payload and saves the story it carries.
func (s *Service) SaveRaw(ctx context.Context, payload json.RawMessage) (*SaveResult, error) {
	item, err := payloadschema.ValidateStoryItemPayload(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return s.Save(ctx, item)
}

// Save stores one validated story item. Derived fields are recomputed on
// every save, so re-ingesting an item picks up rule changes.
func (s *Service) Save(ctx context.Context, item *payloadschema.StoryItem) (*SaveResult, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("ingest service is not initialized")
	}
	if item == nil {
		return nil, fmt.Errorf("item is nil")
	}

	story, normalizedTags, err := BuildStory(item, s.tagRounds)
	if err != nil {
		return nil, err
	}

	storyID, inserted, err := s.pool.UpsertStory(ctx, story)
	if err != nil {
		return nil, err
	}

	result := &SaveResult{
		StoryID:      storyID,
		Inserted:     inserted,
		CanonicalURL: story.CanonicalURL,
		Category:     story.Category,
		Tags:         normalizedTags,
		Language:     story.Language,
	}

	if item.PageHTML != "" && story.CanonicalURL != "" {
		if err := s.saveResource(ctx, story.CanonicalURL, item.PageHTML); err != nil {
			// Resource extraction is best effort; the story itself is saved.
			s.logger.Warn().Err(err).
				Str("canonical_url", story.CanonicalURL).
				Msg("resource extraction failed")
		}
	}

	notified, err := s.evaluateMentionRules(ctx, storyID, story)
	if err != nil {
		return nil, err
	}
	result.NotifiedRules = notified

	s.logger.Info().
		Str("platform", item.Platform).
		Str("item_id", item.PlatformItemID).
		Int64("story_id", storyID).
		Bool("inserted", inserted).
		Str("category", result.Category).
		Int("notified_rules", len(notified)).
		Msg("story saved")

	return result, nil
}

// BuildStory computes every derived column for a validated item: canonical
// URL, normalized title, normalized tags, category and title language. It
// also returns the normalized tag list for callers that report it.
func BuildStory(item *payloadschema.StoryItem, tagRounds int) (*db.Story, []string, error) {
	if item == nil {
		return nil, nil, fmt.Errorf("item is nil")
	}
	if tagRounds < 1 {
		tagRounds = tags.DefaultRounds
	}

	p := platform.Platform(item.Platform)

	scheme, schemeless := canonical.SplitScheme(item.URL)
	canonicalURL := ""
	if strings.TrimSpace(item.URL) != "" {
		canonicalURL = canonical.URL(item.URL)
	}

	normalizedTitle := title.Normalize(item.Title, title.Options{
		Platform: p,
		URL:      schemeless,
		Tags:     item.Tags,
	})
	normalizedTags := tags.NormalizeRounds(item.Tags, p, item.Title, schemeless, tagRounds)
	storyCategory := category.Derive(canonicalURL, strings.Fields(normalizedTitle), normalizedTags)
	lang := language.NormalizeTag(langdetect.DetectISO6391(item.Title))
	if lang == "" {
		lang = "und"
	}

	tagsJSON, err := json.Marshal(item.Tags)
	if err != nil {
		return nil, nil, fmt.Errorf("encode tags: %w", err)
	}
	normalizedTagsJSON, err := json.Marshal(normalizedTags)
	if err != nil {
		return nil, nil, fmt.Errorf("encode normalized tags: %w", err)
	}

	return &db.Story{
		Platform:        item.Platform,
		PlatformItemID:  item.PlatformItemID,
		Title:           item.Title,
		NormalizedTitle: normalizedTitle,
		Scheme:          scheme,
		SchemelessURL:   schemeless,
		CanonicalURL:    canonicalURL,
		Tags:            tagsJSON,
		NormalizedTags:  normalizedTagsJSON,
		Category:        string(storyCategory),
		CommentCount:    item.CommentCount,
		Score:           item.Score,
		Language:        lang,
		StoryCreatedAt:  item.ParsedCreatedAt(),
	}, normalizedTags, nil
}

func (s *Service) saveResource(ctx context.Context, canonicalURL, pageHTML string) error {
	meta, err := resource.Extract(canonicalURL, pageHTML)
	if err != nil {
		return err
	}

	if _, err := s.pool.UpsertResource(ctx, &db.Resource{
		CanonicalURL: canonicalURL,
		Title:        meta.Title,
		CleanTitle:   meta.CleanTitle,
		Author:       meta.Author,
	}); err != nil {
		return err
	}

	links := make([]db.ResourceLink, 0, len(meta.Links))
	for _, link := range meta.Links {
		links = append(links, db.ResourceLink{
			ToCanonicalURL: link.CanonicalURL,
			Anchor:         link.Anchor,
		})
	}
	return s.pool.ReplaceResourceLinks(ctx, canonicalURL, links)
}

// evaluateMentionRules matches the saved story against the enabled rules and
// records at most one notification per rule. The record carries the raw tags
// because Reddit stories store their subreddit as the first tag.
func (s *Service) evaluateMentionRules(ctx context.Context, storyID int64, story *db.Story) ([]int64, error) {
	rules, err := s.pool.ActiveMentionRules(ctx)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}

	var storyTags []string
	if len(story.Tags) > 0 {
		if err := json.Unmarshal(story.Tags, &storyTags); err != nil {
			return nil, fmt.Errorf("decode story tags: %w", err)
		}
	}

	record := search.Record{
		ID:              storyID,
		Platform:        platform.Platform(story.Platform),
		PlatformItemID:  story.PlatformItemID,
		Title:           story.Title,
		NormalizedTitle: story.NormalizedTitle,
		SchemelessURL:   story.SchemelessURL,
		CanonicalURL:    story.CanonicalURL,
		Tags:            storyTags,
		CommentCount:    story.CommentCount,
		Score:           story.Score,
		CreatedAt:       story.StoryCreatedAt,
	}

	var notified []int64
	for _, rule := range search.MatchMentionRules(record, rules) {
		created, err := s.pool.RecordMentionNotification(ctx, rule.ID, storyID)
		if err != nil {
			return nil, err
		}
		if created {
			notified = append(notified, rule.ID)
		}
	}
	return notified, nil
}

package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"xojoc.pw/discussions/internal/canonical"
	"xojoc.pw/discussions/internal/db"
	"xojoc.pw/discussions/internal/digest"
	"xojoc.pw/discussions/internal/globaltime"
	"xojoc.pw/discussions/internal/platform"
	"xojoc.pw/discussions/internal/search"
)

const maxIngestBodyBytes = 4 * 1024 * 1024

type discussionItem struct {
	StoryID          int64     `json:"story_id"`
	Platform         string    `json:"platform"`
	PlatformName     string    `json:"platform_name"`
	PlatformItemID   string    `json:"platform_item_id"`
	Title            string    `json:"title"`
	CanonicalURL     string    `json:"canonical_url,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	CommentCount     int       `json:"comment_count"`
	Score            int       `json:"score"`
	CreatedAt        time.Time `json:"created_at"`
	InboundResources int       `json:"inbound_resources,omitempty"`
}

func (s *Server) handleDiscussions(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return fail(c, http.StatusBadRequest, "q is required", nil)
	}

	onlyRelevant := false
	if raw := strings.TrimSpace(c.QueryParam("relevant")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return fail(c, http.StatusBadRequest, "relevant must be a boolean", nil)
		}
		onlyRelevant = parsed
	}

	records, canonicalURL, err := s.matcher.FindDiscussions(c.Request().Context(), query, onlyRelevant)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("find discussions failed")
		return internalError(c, "Failed to search discussions")
	}

	items := make([]discussionItem, 0, len(records))
	for _, record := range records {
		items = append(items, toDiscussionItem(record))
	}

	return success(c, map[string]any{
		"query":         query,
		"canonical_url": canonicalURL,
		"count":         len(items),
		"items":         items,
	})
}

func (s *Server) handleCanonical(c echo.Context) error {
	rawURL := strings.TrimSpace(c.QueryParam("url"))
	if rawURL == "" {
		return fail(c, http.StatusBadRequest, "url is required", nil)
	}

	scheme, schemeless := canonical.SplitScheme(rawURL)
	return success(c, map[string]any{
		"url":        rawURL,
		"scheme":     scheme,
		"schemeless": schemeless,
		"canonical":  canonical.URL(rawURL),
		"generic":    canonical.Generic(rawURL),
	})
}

func (s *Server) handleDigest(c echo.Context) error {
	days := s.opts.DigestWindowDays
	if raw := strings.TrimSpace(c.QueryParam("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 90 {
			return fail(c, http.StatusBadRequest, "days must be between 1 and 90", nil)
		}
		days = parsed
	}

	to := globaltime.UTC()
	from := to.AddDate(0, 0, -days)

	records, err := s.pool.ListStoriesInWindow(c.Request().Context(), from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("list digest stories failed")
		return internalError(c, "Failed to build digest")
	}

	return success(c, digest.Build(records, from, to, 10))
}

func (s *Server) handleStats(c echo.Context) error {
	now := globaltime.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	stats, err := s.pool.QueryServiceStats(c.Request().Context(), dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		s.logger.Error().Err(err).Msg("query stats failed")
		return internalError(c, "Failed to load stats")
	}
	return success(c, stats)
}

func (s *Server) handleStoryDetail(c echo.Context) error {
	platformCode := strings.TrimSpace(c.Param("platform"))
	itemID := strings.TrimSpace(c.Param("item_id"))
	if !platform.Known(platform.Platform(platformCode)) {
		return fail(c, http.StatusBadRequest, "unknown platform", nil)
	}
	if itemID == "" {
		return fail(c, http.StatusBadRequest, "item id is required", nil)
	}

	story, err := s.pool.GetStory(c.Request().Context(), platformCode, itemID)
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return failNotFound(c, "Story not found")
		}
		s.logger.Error().Err(err).Msg("query story failed")
		return internalError(c, "Failed to load story")
	}

	var tags, normalizedTags []string
	_ = json.Unmarshal(story.Tags, &tags)
	_ = json.Unmarshal(story.NormalizedTags, &normalizedTags)

	return success(c, map[string]any{
		"story_id":         story.StoryID,
		"platform":         story.Platform,
		"platform_name":    platform.Meta(platform.Platform(story.Platform)).Name,
		"platform_item_id": story.PlatformItemID,
		"title":            story.Title,
		"normalized_title": story.NormalizedTitle,
		"scheme":           story.Scheme,
		"schemeless_url":   story.SchemelessURL,
		"canonical_url":    story.CanonicalURL,
		"tags":             tags,
		"normalized_tags":  normalizedTags,
		"category":         story.Category,
		"comment_count":    story.CommentCount,
		"score":            story.Score,
		"language":         story.Language,
		"created_at":       story.StoryCreatedAt,
		"updated_at":       story.UpdatedAt,
	})
}

func (s *Server) handleIngest(c echo.Context) error {
	if s.ingest == nil {
		return internalError(c, "Ingestion is not available")
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxIngestBodyBytes))
	if err != nil {
		return fail(c, http.StatusBadRequest, "failed to read request body", nil)
	}

	result, err := s.ingest.SaveRaw(c.Request().Context(), body)
	if err != nil {
		if strings.Contains(err.Error(), "invalid payload") {
			return fail(c, http.StatusUnprocessableEntity, err.Error(), nil)
		}
		s.logger.Error().Err(err).Msg("ingest payload failed")
		return internalError(c, "Failed to save story")
	}

	status := http.StatusOK
	if result.Inserted {
		status = http.StatusCreated
	}
	return successWithStatus(c, status, result)
}

func toDiscussionItem(record search.Record) discussionItem {
	return discussionItem{
		StoryID:          record.ID,
		Platform:         string(record.Platform),
		PlatformName:     platform.Meta(record.Platform).Name,
		PlatformItemID:   record.PlatformItemID,
		Title:            record.Title,
		CanonicalURL:     record.CanonicalURL,
		Tags:             record.Tags,
		CommentCount:     record.CommentCount,
		Score:            record.Score,
		CreatedAt:        record.CreatedAt,
		InboundResources: record.InboundResources,
	}
}

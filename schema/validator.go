package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"xojoc.pw/discussions/internal/platform"
)

//go:embed story_item.schema.json
var storyItemSchemaJSON string

// StoryItem is one discussion item as delivered by a platform collector.
type StoryItem struct {
	PayloadVersion string   `json:"payload_version"`
	Platform       string   `json:"platform"`
	PlatformItemID string   `json:"platform_item_id"`
	Title          string   `json:"title"`
	URL            string   `json:"url,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	CommentCount   int      `json:"comment_count,omitempty"`
	Score          int      `json:"score,omitempty"`
	CreatedAt      string   `json:"created_at"`
	// PageHTML, when present, carries the linked page body so resource
	// metadata can be extracted without fetching.
	PageHTML string `json:"page_html,omitempty"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateStoryItemPayload checks the raw collector payload against the
// schema plus a few semantic rules the schema cannot express, and decodes it.
func ValidateStoryItemPayload(payload json.RawMessage) (*StoryItem, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var item StoryItem
	if err := json.Unmarshal(normalized, &item); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := validateSemantics(&item); err != nil {
		return nil, err
	}

	return &item, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("story_item.schema.json", strings.NewReader(storyItemSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("story_item.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateSemantics(item *StoryItem) error {
	if item == nil {
		return fmt.Errorf("payload is nil")
	}

	if strings.TrimSpace(item.PayloadVersion) != "v1" {
		return fmt.Errorf("payload_version must be v1")
	}
	if !platform.Known(platform.Platform(item.Platform)) {
		return fmt.Errorf("platform %q is not known", item.Platform)
	}
	if strings.TrimSpace(item.PlatformItemID) == "" {
		return fmt.Errorf("platform_item_id must not be empty")
	}
	if strings.TrimSpace(item.Title) == "" {
		return fmt.Errorf("title must not be empty")
	}
	if _, err := time.Parse(time.RFC3339, strings.TrimSpace(item.CreatedAt)); err != nil {
		return fmt.Errorf("created_at must be RFC3339: %w", err)
	}

	for i, tag := range item.Tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("tags[%d] must not be empty", i)
		}
	}

	return nil
}

// ParsedCreatedAt returns the item's creation time in UTC. Validation has
// already checked the format.
func (i *StoryItem) ParsedCreatedAt() time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(i.CreatedAt))
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

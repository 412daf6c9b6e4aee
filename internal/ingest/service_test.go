package ingest

import (
	"encoding/json"
	"testing"

	payloadschema "xojoc.pw/discussions/schema"
)

func TestBuildStory_DerivedFields(t *testing.T) {
	t.Parallel()

	item := &payloadschema.StoryItem{
		PayloadVersion: "v1",
		Platform:       "h",
		PlatformItemID: "8863",
		Title:          "Writing a Django App (2019)",
		URL:            "https://www.example.com/django-app/index.html?utm_source=feed",
		Tags:           []string{"django"},
		CommentCount:   12,
		Score:          80,
		CreatedAt:      "2026-02-13T14:00:00Z",
	}

	story, normalizedTags, err := BuildStory(item, 0)
	if err != nil {
		t.Fatalf("BuildStory: %v", err)
	}

	if story.Scheme != "https" {
		t.Fatalf("scheme = %q", story.Scheme)
	}
	if story.SchemelessURL != "www.example.com/django-app/index.html?utm_source=feed" {
		t.Fatalf("schemeless = %q", story.SchemelessURL)
	}
	if story.CanonicalURL != "example.com/django-app" {
		t.Fatalf("canonical = %q", story.CanonicalURL)
	}
	if story.NormalizedTitle != "writing a django app" {
		t.Fatalf("normalized title = %q", story.NormalizedTitle)
	}

	wantTags := map[string]bool{"django": false, "python": false, "programming": false, "webdev": false}
	for _, tag := range normalizedTags {
		if _, ok := wantTags[tag]; ok {
			wantTags[tag] = true
		}
	}
	for tag, found := range wantTags {
		if !found {
			t.Fatalf("missing tag %q in %v", tag, normalizedTags)
		}
	}

	if story.Category != "article" {
		t.Fatalf("category = %q", story.Category)
	}
	if story.StoryCreatedAt.IsZero() {
		t.Fatalf("story created at not parsed")
	}

	var roundTrip []string
	if err := json.Unmarshal(story.NormalizedTags, &roundTrip); err != nil {
		t.Fatalf("normalized tags column is not JSON: %v", err)
	}
}

func TestBuildStory_ProjectCategory(t *testing.T) {
	t.Parallel()

	item := &payloadschema.StoryItem{
		PayloadVersion: "v1",
		Platform:       "l",
		PlatformItemID: "abc123",
		Title:          "ripgrep: a line-oriented search tool",
		URL:            "https://github.com/BurntSushi/ripgrep",
		CreatedAt:      "2026-02-13T14:00:00Z",
	}

	story, _, err := BuildStory(item, 3)
	if err != nil {
		t.Fatalf("BuildStory: %v", err)
	}
	if story.CanonicalURL != "github.com/BurntSushi/ripgrep" {
		t.Fatalf("canonical = %q", story.CanonicalURL)
	}
	if story.Category != "project" {
		t.Fatalf("category = %q", story.Category)
	}
}

func TestBuildStory_NoURL(t *testing.T) {
	t.Parallel()

	item := &payloadschema.StoryItem{
		PayloadVersion: "v1",
		Platform:       "h",
		PlatformItemID: "1",
		Title:          "Ask HN: how do you test database code?",
		CreatedAt:      "2026-02-13T14:00:00Z",
	}

	story, _, err := BuildStory(item, 3)
	if err != nil {
		t.Fatalf("BuildStory: %v", err)
	}
	if story.CanonicalURL != "" || story.SchemelessURL != "" || story.Scheme != "" {
		t.Fatalf("self post must not carry URLs, got %q %q %q", story.Scheme, story.SchemelessURL, story.CanonicalURL)
	}
	if story.Category != "article" {
		t.Fatalf("category = %q", story.Category)
	}
}

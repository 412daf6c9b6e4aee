package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"xojoc.pw/discussions/internal/platform"
	"xojoc.pw/discussions/internal/search"
)

type stubStore struct {
	byURL   []search.Record
	byTitle []search.Record
}

func (s *stubStore) StoriesByURL(_ context.Context, _ []string, _ string) ([]search.Record, error) {
	return s.byURL, nil
}

func (s *stubStore) StoriesByTitle(_ context.Context, _ string, _ string, _ int) ([]search.Record, error) {
	return s.byTitle, nil
}

func testServer(store search.Store) *Server {
	return &Server{
		matcher: search.NewMatcher(store),
		logger:  zerolog.Nop(),
		opts:    Options{DigestWindowDays: 7},
	}
}

func TestHandleCanonical(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/canonical?url=https%3A%2F%2Fwww.example.com%2Fpost%2Findex.html%3Futm_source%3Dx", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	server := testServer(&stubStore{})
	if err := server.handleCanonical(c); err != nil {
		t.Fatalf("handleCanonical: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Canonical string `json:"canonical"`
			Scheme    string `json:"scheme"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != "success" {
		t.Fatalf("status = %q", resp.Status)
	}
	if resp.Data.Canonical != "example.com/post" {
		t.Fatalf("canonical = %q", resp.Data.Canonical)
	}
	if resp.Data.Scheme != "https" {
		t.Fatalf("scheme = %q", resp.Data.Scheme)
	}
}

func TestHandleCanonical_MissingURL(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/canonical", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	server := testServer(&stubStore{})
	if err := server.handleCanonical(c); err != nil {
		t.Fatalf("handleCanonical: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleDiscussions(t *testing.T) {
	t.Parallel()

	store := &stubStore{
		byURL: []search.Record{
			{
				ID:            7,
				Platform:      platform.HackerNews,
				Title:         "Example post",
				SchemelessURL: "example.com/post",
				CanonicalURL:  "example.com/post",
				CommentCount:  12,
				CreatedAt:     time.Now().UTC(),
			},
		},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/discussions?q=example.com%2Fpost", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	server := testServer(store)
	if err := server.handleDiscussions(c); err != nil {
		t.Fatalf("handleDiscussions: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Data struct {
			CanonicalURL string           `json:"canonical_url"`
			Count        int              `json:"count"`
			Items        []discussionItem `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Count != 1 || len(resp.Data.Items) != 1 {
		t.Fatalf("count = %d, items = %d", resp.Data.Count, len(resp.Data.Items))
	}
	if resp.Data.CanonicalURL != "example.com/post" {
		t.Fatalf("canonical_url = %q", resp.Data.CanonicalURL)
	}
	if resp.Data.Items[0].PlatformName != "Hacker News" {
		t.Fatalf("platform_name = %q", resp.Data.Items[0].PlatformName)
	}
}

func TestHandleDiscussions_MissingQuery(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/discussions", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	server := testServer(&stubStore{})
	if err := server.handleDiscussions(c); err != nil {
		t.Fatalf("handleDiscussions: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

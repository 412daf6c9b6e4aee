// Package resource extracts page metadata and the outbound link set from
// HTML supplied by collectors. It never fetches anything itself.
package resource

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"

	"xojoc.pw/discussions/internal/canonical"
)

// Link is one outbound reference found in a page.
type Link struct {
	CanonicalURL string
	Anchor       string
}

// Metadata holds what the extractor learned about a page.
type Metadata struct {
	Title      string
	CleanTitle string
	Author     string
	Excerpt    string
	Links      []Link
}

const maxOutboundLinks = 200

// Extract parses the supplied HTML and returns page metadata plus the
// canonicalized outbound links. Links pointing back at the page itself and
// non-http references are dropped.
func Extract(pageURL string, html string) (*Metadata, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return nil, fmt.Errorf("page URL is required")
	}
	if strings.TrimSpace(html) == "" {
		return nil, fmt.Errorf("page HTML is empty")
	}

	base, err := url.Parse(ensureScheme(pageURL))
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page HTML: %w", err)
	}

	meta := &Metadata{
		Title:  extractTitle(doc),
		Author: extractAuthor(doc),
	}
	meta.CleanTitle = cleanTitle(meta.Title, base.Hostname())
	meta.Links = extractLinks(doc, base, canonical.URL(pageURL))
	meta.Excerpt = extractExcerpt(html, base)

	return meta, nil
}

func extractTitle(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if title := strings.TrimSpace(content); title != "" {
			return title
		}
	}
	if content, ok := doc.Find(`meta[name="twitter:title"]`).Attr("content"); ok {
		if title := strings.TrimSpace(content); title != "" {
			return title
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func extractAuthor(doc *goquery.Document) string {
	selectors := []string{
		`meta[name="author"]`,
		`meta[property="article:author"]`,
		`meta[name="twitter:creator"]`,
	}
	for _, selector := range selectors {
		if content, ok := doc.Find(selector).Attr("content"); ok {
			author := strings.TrimSpace(content)
			// article:author is sometimes a profile URL, not a name.
			if author != "" && !strings.Contains(author, "://") {
				return author
			}
		}
	}
	return strings.TrimSpace(doc.Find(`[rel="author"]`).First().Text())
}

// cleanTitle strips a trailing site-name segment ("Post Title | Example
// Blog") when the page title carries one.
func cleanTitle(pageTitle, host string) string {
	title := strings.TrimSpace(pageTitle)
	if title == "" {
		return ""
	}

	for _, separator := range []string{" | ", " — ", " – ", " - ", " · ", " :: "} {
		index := strings.LastIndex(title, separator)
		if index <= 0 {
			continue
		}
		head := strings.TrimSpace(title[:index])
		tail := strings.TrimSpace(title[index+len(separator):])
		if head == "" || tail == "" {
			continue
		}
		// Only treat the tail as a site name when it is short relative to
		// the head or matches the host.
		if looksLikeSiteName(tail, host) && len(head) >= len(tail) {
			return head
		}
	}
	return title
}

func looksLikeSiteName(tail, host string) bool {
	if len(strings.Fields(tail)) > 4 {
		return false
	}
	compact := strings.ToLower(strings.Join(strings.Fields(tail), ""))
	host = strings.ToLower(host)
	if compact != "" && host != "" && strings.Contains(host, compact) {
		return true
	}
	return len(tail) <= 30
}

func extractLinks(doc *goquery.Document, base *url.URL, pageCanonical string) []Link {
	seen := make(map[string]struct{})
	var links []Link

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return true
		}

		target := canonical.URL(resolved.String())
		if target == "" || target == pageCanonical {
			return true
		}
		if _, dup := seen[target]; dup {
			return true
		}
		seen[target] = struct{}{}

		links = append(links, Link{
			CanonicalURL: target,
			Anchor:       strings.TrimSpace(sel.Text()),
		})
		return len(links) < maxOutboundLinks
	})

	return links
}

func extractExcerpt(html string, base *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader([]byte(html)), base)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(article.Excerpt())
}

func ensureScheme(raw string) string {
	if strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}

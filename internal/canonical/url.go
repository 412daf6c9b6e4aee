// Package canonical turns raw story URLs into the schemeless canonical form
// used as the cross-platform matching key.
package canonical

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Options controls which rewrite layers run. The zero value is the generic
// variant: structural cleanup only, no per-site host remapping. It is used for
// exact story identity, where remapping youtube.com to youtu.be would be too
// aggressive.
type Options struct {
	SiteRules bool
}

var hostPrefixes = []string{"www.", "ww2.", "m.", "mobile."}

// pathSuffixes are stripped from the end of the path repeatedly until none
// match, so "a/index.html/" loses the slash, the extension and the index
// segment in successive rounds.
var pathSuffixes = []string{
	"/default", "/index",
	".htm", ".html", ".shtml", ".php", ".jsp", ".aspx", ".cms", ".md", ".pdf", ".stm",
	"/",
}

var trackingParams = map[string]struct{}{
	"gclid":       {},
	"fbclid":      {},
	"dclid":       {},
	"gclsrc":      {},
	"zanpid":      {},
	"guccounter":  {},
	"campaign_id": {},
	"cd-origin":   {},
	"tstart":      {},
}

// URL canonicalizes a raw URL with per-site rules enabled, falling back to the
// input unchanged when it cannot be parsed.
func URL(raw string) string {
	return URLWithOptions(raw, Options{SiteRules: true})
}

// Generic canonicalizes without per-site host remapping; used for exact story
// identity lookups.
func Generic(raw string) string {
	return URLWithOptions(raw, Options{})
}

// URLWithOptions is the fallback-to-original combinator around Canonicalize.
func URLWithOptions(raw string, opts Options) string {
	canonical, err := Canonicalize(raw, opts)
	if err != nil {
		return raw
	}
	return canonical
}

// Canonicalize parses and rewrites a raw URL into the schemeless canonical
// form "host/path?query". It returns an error only for input it cannot parse;
// callers that need soft failure use URL or URLWithOptions.
func Canonicalize(raw string, opts Options) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw, fmt.Errorf("empty URL")
	}

	parsed, err := parseLenient(trimmed)
	if err != nil {
		return "", err
	}

	host := normalizeHost(parsed.Hostname())
	if port := parsed.Port(); port != "" {
		host = host + ":" + port
	}
	path := normalizePath(parsed.EscapedPath())
	query := normalizeQuery(parsed.RawQuery)
	fragment := parsed.Fragment

	host, path, query = promoteFragment(host, path, query, fragment, opts)

	if opts.SiteRules {
		host, path, query = applySiteRules(host, path, query)
	}

	if host == "" {
		return "", fmt.Errorf("no host in %q", raw)
	}

	var b strings.Builder
	b.WriteString(host)
	b.WriteString(path)
	if query != "" {
		b.WriteString("?")
		b.WriteString(query)
	}
	return b.String(), nil
}

// SplitScheme lowercases a URL and splits off its scheme. On parse failure or
// a missing scheme it returns ("", original).
func SplitScheme(raw string) (scheme, schemeless string) {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "" {
		return "", raw
	}

	parsed, err := url.Parse(lowered)
	if err != nil || parsed.Scheme == "" {
		return "", raw
	}

	rest := strings.TrimPrefix(lowered, parsed.Scheme+":")
	rest = strings.TrimPrefix(rest, "//")
	return parsed.Scheme, rest
}

// parseLenient accepts absolute URLs with or without a scheme. Canonical forms
// are schemeless, so canonicalization of its own output must parse too.
func parseLenient(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err == nil && parsed.Host != "" {
		return parsed, nil
	}

	reparsed, rerr := url.Parse("//" + raw)
	if rerr == nil && reparsed.Host != "" && hostLooksValid(reparsed.Hostname()) {
		return reparsed, nil
	}

	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("not an absolute URL: %q", raw)
}

func hostLooksValid(host string) bool {
	if host == "" {
		return false
	}
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '_':
		default:
			return false
		}
	}
	return strings.Contains(host, ".")
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	for {
		stripped := false
		for _, prefix := range hostPrefixes {
			rest := strings.TrimPrefix(host, prefix)
			if rest != host && len(rest) > 1 {
				host = rest
				stripped = true
			}
		}
		if !stripped {
			break
		}
	}
	return host
}

func normalizePath(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}

	for {
		stripped := false
		for _, suffix := range pathSuffixes {
			if strings.HasSuffix(path, suffix) {
				path = strings.TrimSuffix(path, suffix)
				stripped = true
				break
			}
		}
		if !stripped {
			break
		}
	}
	return path
}

func normalizeQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	type pair struct {
		key   string
		value string
	}
	var pairs []pair
	for _, chunk := range strings.Split(rawQuery, "&") {
		if chunk == "" {
			continue
		}
		key, value, _ := strings.Cut(chunk, "=")
		decodedKey, err := url.QueryUnescape(key)
		if err != nil {
			decodedKey = key
		}
		if dropQueryParam(decodedKey) {
			continue
		}
		decodedValue, err := url.QueryUnescape(value)
		if err != nil {
			decodedValue = value
		}
		pairs = append(pairs, pair{key: decodedKey, value: decodedValue})
	}
	if len(pairs) == 0 {
		return ""
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteString("&")
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteString("=")
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

func dropQueryParam(key string) bool {
	lowered := strings.ToLower(key)
	if strings.HasPrefix(lowered, "utm_") {
		return true
	}
	_, drop := trackingParams[lowered]
	return drop
}

// promoteFragment rewrites fragment-as-path URL patterns before the fragment
// is discarded.
func promoteFragment(host, path, query, fragment string, opts Options) (string, string, string) {
	if fragment == "" {
		return host, path, query
	}

	if path == "" && strings.HasPrefix(fragment, "!") {
		return host, normalizePath("/" + strings.TrimPrefix(fragment, "!")), query
	}

	if !opts.SiteRules {
		return host, path, query
	}

	if host == "cnn.com" && path == "/video" && strings.HasPrefix(fragment, "/") {
		return host, normalizePath(fragment), query
	}

	if host == "groups.google.com" && path == "/forum" && strings.HasPrefix(fragment, "!topic/") {
		parts := strings.Split(strings.TrimPrefix(fragment, "!topic/"), "/")
		if len(parts) == 2 {
			return host, "/g/" + parts[0] + "/c/" + parts[1], query
		}
	}

	return host, path, query
}

func applySiteRules(host, path, query string) (string, string, string) {
	host, path, query = rewriteArchiveOrg(host, path, query)
	host, path, query = rewriteYouTube(host, path, query)
	host, path, query = rewriteMedium(host, path, query)
	host, path, query = rewriteGitHub(host, path, query)
	host, path, query = rewriteNYTimes(host, path, query)
	host, path, query = dropNoiseQueries(host, path, query)
	return host, path, query
}

// rewriteArchiveOrg unwraps web.archive.org snapshot URLs and canonicalizes
// the embedded target. Path collapsing has already turned "https://" into
// "https:/" inside the path.
func rewriteArchiveOrg(host, path, query string) (string, string, string) {
	if host != "web.archive.org" || !strings.HasPrefix(path, "/web/") {
		return host, path, query
	}

	rest := strings.TrimPrefix(path, "/web/")
	_, embedded, ok := strings.Cut(rest, "/")
	if !ok {
		return host, path, query
	}
	for _, prefix := range []string{"https://", "http://", "https:/", "http:/"} {
		if strings.HasPrefix(embedded, prefix) {
			embedded = strings.TrimPrefix(embedded, prefix)
			if query != "" {
				embedded = embedded + "?" + query
			}
			inner, err := Canonicalize(embedded, Options{SiteRules: true})
			if err != nil {
				return host, path, query
			}
			innerHost, innerRest, _ := strings.Cut(inner, "/")
			innerPath := ""
			innerQuery := ""
			if innerRest != "" {
				innerPath = "/" + innerRest
			}
			if i := strings.Index(innerPath, "?"); i >= 0 {
				innerQuery = innerPath[i+1:]
				innerPath = innerPath[:i]
			}
			if i := strings.Index(innerHost, "?"); i >= 0 {
				innerQuery = innerHost[i+1:]
				innerHost = innerHost[:i]
			}
			return innerHost, innerPath, innerQuery
		}
	}
	return host, path, query
}

func rewriteYouTube(host, path, query string) (string, string, string) {
	if host != "youtube.com" {
		return host, path, query
	}

	if path == "/watch" {
		if id := queryValue(query, "v"); id != "" {
			return "youtu.be", "/" + id, ""
		}
		return host, path, query
	}
	if rest := strings.TrimPrefix(path, "/embed/"); rest != path && rest != "" && !strings.Contains(rest, "/") {
		return "youtu.be", "/" + rest, ""
	}
	return host, path, query
}

func rewriteMedium(host, path, query string) (string, string, string) {
	segments := splitPath(path)

	if host == "medium.com" {
		if len(segments) == 2 {
			if id := trailingID(segments[1]); id != "" {
				return host, "/p/" + id, ""
			}
		}
		return host, path, query
	}

	if strings.HasSuffix(host, ".medium.com") && len(segments) == 1 {
		if id := trailingID(segments[0]); id != "" {
			return host, "/" + id, ""
		}
	}
	return host, path, query
}

func rewriteGitHub(host, path, query string) (string, string, string) {
	if host == "github.com" && strings.HasSuffix(path, "/tree/master") {
		path = strings.TrimSuffix(path, "/tree/master")
	}
	return host, path, query
}

func rewriteNYTimes(host, path, query string) (string, string, string) {
	if host == "nytimes.com" || strings.HasSuffix(host, ".nytimes.com") {
		query = ""
	}
	if host == "open.nytimes.com" {
		segments := splitPath(path)
		if len(segments) > 0 {
			if id := trailingID(segments[len(segments)-1]); id != "" {
				path = "/" + id
			}
		}
	}
	return host, path, query
}

func dropNoiseQueries(host, path, query string) (string, string, string) {
	switch {
	case host == "techcrunch.com" || strings.HasSuffix(host, ".techcrunch.com"):
		query = ""
	case strings.HasSuffix(host, ".wikipedia.org"):
		query = ""
	// The ".php" suffix is gone by the time site rules run, so match on the
	// bare segment name.
	case host == "arstechnica.com" && !strings.Contains(path, "viewtopic"):
		query = ""
	case host == "news.bbc.co.uk":
		query = ""
	}
	return host, path, query
}

func splitPath(path string) []string {
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return segments
}

// trailingID extracts the hex id suffix of a "slug-id" path segment.
func trailingID(segment string) string {
	i := strings.LastIndex(segment, "-")
	if i < 0 || i == len(segment)-1 {
		return ""
	}
	id := segment[i+1:]
	for _, r := range id {
		isHex := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
		if !isHex {
			return ""
		}
	}
	return id
}

func queryValue(query, key string) string {
	for _, chunk := range strings.Split(query, "&") {
		k, v, _ := strings.Cut(chunk, "=")
		if k == key {
			decoded, err := url.QueryUnescape(v)
			if err != nil {
				return v
			}
			return decoded
		}
	}
	return ""
}

// Package category classifies stories into a coarse content category from
// their canonical URL shape, normalized tags and title.
package category

import (
	"strings"
)

// Category is the coarse content kind of a story.
type Category string

const (
	Article Category = "article"
	Release Category = "release"
	Project Category = "project"
	Video   Category = "video"
)

var codeForges = map[string]struct{}{
	"github.com":    {},
	"gitlab.com":    {},
	"bitbucket.org": {},
	"gitea.com":     {},
}

var videoHosts = map[string]struct{}{
	"youtu.be":    {},
	"youtube.com": {},
	"vimeo.com":   {},
}

// Derive returns the story category. First match wins; the default is Article.
func Derive(canonicalURL string, titleTokens []string, tags []string) Category {
	tagSet := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tagSet[tag] = struct{}{}
	}

	if isRelease(titleTokens, tagSet) {
		return Release
	}

	host, segments := splitCanonical(canonicalURL)
	if isProject(host, segments) {
		return Project
	}
	if _, ok := videoHosts[host]; ok {
		return Video
	}
	return Article
}

func isRelease(titleTokens []string, tagSet map[string]struct{}) bool {
	if _, ok := tagSet["release"]; ok {
		return true
	}
	if _, ok := tagSet["programming"]; !ok {
		return false
	}
	for _, token := range titleTokens {
		if token == "release" || token == "released" {
			return true
		}
	}
	return false
}

func isProject(host string, segments []string) bool {
	if _, forge := codeForges[host]; forge {
		return len(segments) == 2
	}

	switch host {
	case "sr.ht", "git.sr.ht":
		return len(segments) == 2 && strings.HasPrefix(segments[0], "~")
	case "savannah.gnu.org", "savannah.nongnu.org":
		return len(segments) >= 2 && segments[0] == "projects"
	case "crates.io":
		return len(segments) >= 2 && segments[0] == "crates"
	case "docs.rs":
		return len(segments) == 1
	}
	return false
}

func splitCanonical(canonicalURL string) (string, []string) {
	trimmed := strings.TrimSpace(strings.ToLower(canonicalURL))
	if trimmed == "" {
		return "", nil
	}
	if i := strings.Index(trimmed, "?"); i >= 0 {
		trimmed = trimmed[:i]
	}

	host, rest, _ := strings.Cut(trimmed, "/")
	var segments []string
	for _, segment := range strings.Split(rest, "/") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}
	return host, segments
}

// Package platform holds the closed set of discussion platforms and their metadata.
package platform

import (
	"fmt"
	"strings"
)

// Platform identifies one external discussion site by its stable one-letter code.
// The code doubles as the persisted enum value.
type Platform string

const (
	HackerNews        Platform = "h"
	Reddit            Platform = "r"
	Lobsters          Platform = "l"
	LambdaTheUltimate Platform = "u"
	EchoJS            Platform = "e"
	Laarc             Platform = "a"
)

// Metadata describes one platform.
type Metadata struct {
	Code       Platform
	Name       string
	BaseURL    string
	TagSuffix  string
	Order      int
	ScoreLabel string
	// Archive platforms keep ancient threads relevant in search results.
	Archive bool
}

var registry = map[Platform]Metadata{
	HackerNews: {
		Code:       HackerNews,
		Name:       "Hacker News",
		BaseURL:    "https://news.ycombinator.com/item?id=",
		Order:      10,
		ScoreLabel: "points",
	},
	Lobsters: {
		Code:       Lobsters,
		Name:       "Lobsters",
		BaseURL:    "https://lobste.rs/s/",
		TagSuffix:  "/t/",
		Order:      20,
		ScoreLabel: "points",
	},
	Reddit: {
		Code:       Reddit,
		Name:       "Reddit",
		BaseURL:    "https://www.reddit.com/comments/",
		TagSuffix:  "/r/",
		Order:      30,
		ScoreLabel: "upvotes",
	},
	Laarc: {
		Code:       Laarc,
		Name:       "Laarc",
		BaseURL:    "https://www.laarc.io/item?id=",
		TagSuffix:  "/l/",
		Order:      40,
		ScoreLabel: "points",
	},
	EchoJS: {
		Code:       EchoJS,
		Name:       "Echo JS",
		BaseURL:    "https://www.echojs.com/news/",
		Order:      50,
		ScoreLabel: "points",
	},
	LambdaTheUltimate: {
		Code:       LambdaTheUltimate,
		Name:       "Lambda the Ultimate",
		BaseURL:    "http://lambda-the-ultimate.org/node/",
		Order:      60,
		ScoreLabel: "points",
		Archive:    true,
	},
}

// All returns every known platform in deterministic result order.
func All() []Metadata {
	out := make([]Metadata, 0, len(registry))
	for _, code := range []Platform{HackerNews, Lobsters, Reddit, Laarc, EchoJS, LambdaTheUltimate} {
		out = append(out, registry[code])
	}
	return out
}

// Parse validates a platform code.
func Parse(raw string) (Platform, error) {
	code := Platform(strings.TrimSpace(strings.ToLower(raw)))
	if code == "" {
		return "", fmt.Errorf("platform code is required")
	}
	if _, ok := registry[code]; !ok {
		return "", fmt.Errorf("unknown platform code %q", raw)
	}
	return code, nil
}

// Known reports whether the code names a registered platform. The empty
// platform is accepted by the normalizers and means "no platform context".
func Known(p Platform) bool {
	_, ok := registry[p]
	return ok
}

// Meta returns the metadata for a platform. The zero Metadata is returned for
// unknown codes so callers never branch on a second return at display time.
func Meta(p Platform) Metadata {
	return registry[p]
}

// Order returns the stable per-platform result priority used as a ranking
// tiebreaker; unknown platforms sort last.
func Order(p Platform) int {
	meta, ok := registry[p]
	if !ok {
		return 1 << 16
	}
	return meta.Order
}

func (p Platform) String() string {
	if meta, ok := registry[p]; ok {
		return meta.Name
	}
	return string(p)
}

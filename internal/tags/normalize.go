// Package tags derives the normalized tag set of a story from its raw
// platform tags, normalized title and canonical URL.
package tags

import (
	"sort"
	"strings"

	"xojoc.pw/discussions/internal/platform"
	"xojoc.pw/discussions/internal/title"
)

// DefaultRounds is the bounded fixed-point iteration count. Three rounds are
// enough for every known rule chain (a rename exposing a keyword that an
// augment rule then reacts to, which in turn feeds an enrich rule).
const DefaultRounds = 3

// Set is an immutable-by-convention tag set. Mutating helpers return copies.
type Set map[string]struct{}

func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "" {
			continue
		}
		s[v] = struct{}{}
	}
	return s
}

func (s Set) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

func (s Set) HasAny(tags ...string) bool {
	for _, tag := range tags {
		if s.Has(tag) {
			return true
		}
	}
	return false
}

func (s Set) With(tags ...string) Set {
	out := s.clone()
	for _, tag := range tags {
		out[tag] = struct{}{}
	}
	return out
}

func (s Set) Without(tag string) Set {
	if !s.Has(tag) {
		return s
	}
	out := s.clone()
	delete(out, tag)
	return out
}

func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for tag := range s {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for tag := range s {
		if !other.Has(tag) {
			return false
		}
	}
	return true
}

func (s Set) clone() Set {
	out := make(Set, len(s)+2)
	for tag := range s {
		out[tag] = struct{}{}
	}
	return out
}

var rules = newRules()

// Normalize derives the sorted normalized tag list for a story. It is a pure
// function of its inputs; absent title, URL or tags degrade individual rules
// to no-ops, never to failures.
func Normalize(raw []string, p platform.Platform, storyTitle, url string) []string {
	return NormalizeRounds(raw, p, storyTitle, url, DefaultRounds)
}

// NormalizeRounds runs the rule battery for an explicit number of rounds so
// tests can verify convergence against the default.
func NormalizeRounds(raw []string, p platform.Platform, storyTitle, url string, rounds int) []string {
	if rounds <= 0 {
		rounds = DefaultRounds
	}

	normalizedTitle := title.Normalize(storyTitle, title.Options{
		Platform: p,
		URL:      url,
		Tags:     raw,
	})
	rc := Context{
		Platform:    p,
		TitleTokens: tokenSet(normalizedTitle),
		URL:         strings.ToLower(strings.TrimSpace(url)),
	}

	tags := NewSet(raw...)
	for round := 0; round < rounds; round++ {
		next := tags
		for _, rule := range rules {
			next = rule(next, rc)
		}
		if next.Equal(tags) {
			break
		}
		tags = next
	}

	tags = overrides(tags, rc)
	return tags.Sorted()
}

func tokenSet(normalizedTitle string) map[string]struct{} {
	fields := strings.Fields(normalizedTitle)
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}

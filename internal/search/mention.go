package search

import (
	"strings"

	"xojoc.pw/discussions/internal/canonical"
	"xojoc.pw/discussions/internal/platform"
)

// MaxRuleKeywords caps how many keywords a single rule may carry.
const MaxRuleKeywords = 3

// MentionRule is a user-defined watch predicate over incoming stories.
type MentionRule struct {
	ID        int64
	BaseURL   string
	Keywords  []string
	Platforms []platform.Platform
	// Subreddit scoping applies to Reddit stories only; the record's first
	// tag carries the subreddit name.
	SubredditsInclude []string
	SubredditsExclude []string
	MinComments       int
	MinScore          int
}

// MatchMentionRules returns every rule the record satisfies. Notification
// bookkeeping (at most one per rule and record) belongs to the caller.
func MatchMentionRules(record Record, rules []MentionRule) []MentionRule {
	var matched []MentionRule
	for _, rule := range rules {
		if ruleMatches(rule, record) {
			matched = append(matched, rule)
		}
	}
	return matched
}

func ruleMatches(rule MentionRule, record Record) bool {
	if record.CommentCount < rule.MinComments {
		return false
	}
	if record.Score < rule.MinScore {
		return false
	}
	if !platformAllowed(rule.Platforms, record.Platform) {
		return false
	}
	if !baseURLMatches(rule.BaseURL, record) {
		return false
	}
	if !keywordsMatch(rule.Keywords, record.NormalizedTitle) {
		return false
	}
	return subredditAllowed(rule, record)
}

// platformAllowed treats an empty filter as "all platforms".
func platformAllowed(allowed []platform.Platform, p platform.Platform) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if candidate == p {
			return true
		}
	}
	return false
}

// baseURLMatches compares the rule prefix against both the plain and the
// host-remapped canonical form of the story URL, so "m.xojoc.pw" still
// matches a story stored under "xojoc.pw". An empty base URL means no URL
// constraint, like the empty platform filter.
func baseURLMatches(baseURL string, record Record) bool {
	base := strings.ToLower(strings.TrimSpace(baseURL))
	if base == "" {
		return true
	}

	prefixes := dedupeStrings(canonical.URL(base), canonical.Generic(base), base)
	targets := dedupeStrings(
		record.CanonicalURL,
		canonical.URL(record.SchemelessURL),
		canonical.Generic(record.SchemelessURL),
	)

	for _, prefix := range prefixes {
		for _, target := range targets {
			if target == prefix || strings.HasPrefix(target, prefix+"/") {
				return true
			}
		}
	}
	return false
}

// keywordsMatch requires every rule keyword to appear as a standalone token
// of the normalized title.
func keywordsMatch(keywords []string, normalizedTitle string) bool {
	tokens := make(map[string]struct{})
	for _, token := range strings.Fields(normalizedTitle) {
		tokens[token] = struct{}{}
	}

	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if _, ok := tokens[keyword]; !ok {
			return false
		}
	}
	return true
}

func subredditAllowed(rule MentionRule, record Record) bool {
	if record.Platform != platform.Reddit {
		return true
	}

	subreddit := ""
	if len(record.Tags) > 0 {
		subreddit = strings.ToLower(strings.TrimSpace(record.Tags[0]))
	}

	if len(rule.SubredditsInclude) > 0 && !containsFold(rule.SubredditsInclude, subreddit) {
		return false
	}
	if containsFold(rule.SubredditsExclude, subreddit) {
		return false
	}
	return true
}

func containsFold(values []string, needle string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), needle) {
			return true
		}
	}
	return false
}

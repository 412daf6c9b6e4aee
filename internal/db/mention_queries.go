package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"xojoc.pw/discussions/internal/platform"
	"xojoc.pw/discussions/internal/search"
)

// ActiveMentionRules returns every enabled rule, decoded into the matcher's
// rule shape.
func (p *Pool) ActiveMentionRules(ctx context.Context) ([]search.MentionRule, error) {
	const q = `
SELECT
	rule_id, base_url, keywords, platforms,
	subreddits_include, subreddits_exclude,
	min_comments, min_score
FROM discussions.mention_rules
WHERE NOT disabled
ORDER BY rule_id
`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query mention rules: %w", err)
	}
	defer rows.Close()

	var rules []search.MentionRule
	for rows.Next() {
		var (
			rule          search.MentionRule
			keywordsJSON  []byte
			platformsJSON []byte
			includeJSON   []byte
			excludeJSON   []byte
		)
		if err := rows.Scan(
			&rule.ID,
			&rule.BaseURL,
			&keywordsJSON,
			&platformsJSON,
			&includeJSON,
			&excludeJSON,
			&rule.MinComments,
			&rule.MinScore,
		); err != nil {
			return nil, fmt.Errorf("scan mention rule: %w", err)
		}

		if err := decodeStringList(keywordsJSON, &rule.Keywords); err != nil {
			return nil, fmt.Errorf("decode rule keywords: %w", err)
		}
		var codes []string
		if err := decodeStringList(platformsJSON, &codes); err != nil {
			return nil, fmt.Errorf("decode rule platforms: %w", err)
		}
		for _, code := range codes {
			rule.Platforms = append(rule.Platforms, platform.Platform(code))
		}
		if err := decodeStringList(includeJSON, &rule.SubredditsInclude); err != nil {
			return nil, fmt.Errorf("decode rule subreddit includes: %w", err)
		}
		if err := decodeStringList(excludeJSON, &rule.SubredditsExclude); err != nil {
			return nil, fmt.Errorf("decode rule subreddit excludes: %w", err)
		}

		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mention rules: %w", err)
	}
	return rules, nil
}

// SaveMentionRule inserts a rule and returns its id.
func (p *Pool) SaveMentionRule(ctx context.Context, rule *MentionRule) (int64, error) {
	if rule == nil {
		return 0, fmt.Errorf("rule is nil")
	}
	var keywords []string
	if err := decodeStringList(rule.Keywords, &keywords); err != nil {
		return 0, fmt.Errorf("decode rule keywords: %w", err)
	}
	if strings.TrimSpace(rule.BaseURL) == "" && len(keywords) == 0 {
		return 0, fmt.Errorf("rule needs a base URL or keywords")
	}
	if len(keywords) > search.MaxRuleKeywords {
		return 0, fmt.Errorf("rule allows at most %d keywords, got %d", search.MaxRuleKeywords, len(keywords))
	}

	const q = `
INSERT INTO discussions.mention_rules (
	base_url, keywords, platforms,
	subreddits_include, subreddits_exclude,
	min_comments, min_score, disabled,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
RETURNING rule_id
`

	var ruleID int64
	if err := p.QueryRow(ctx, q,
		rule.BaseURL,
		jsonbOrEmptyArray(rule.Keywords),
		jsonbOrEmptyArray(rule.Platforms),
		jsonbOrEmptyArray(rule.SubredditsInclude),
		jsonbOrEmptyArray(rule.SubredditsExclude),
		rule.MinComments,
		rule.MinScore,
		rule.Disabled,
	).Scan(&ruleID); err != nil {
		return 0, fmt.Errorf("insert mention rule: %w", err)
	}
	return ruleID, nil
}

// RecordMentionNotification stores the (rule, story) pair once. Repeated
// saves of the same story never notify twice.
func (p *Pool) RecordMentionNotification(ctx context.Context, ruleID, storyID int64) (bool, error) {
	const q = `
INSERT INTO discussions.mention_notifications (rule_id, story_id, created_at)
VALUES ($1, $2, now())
ON CONFLICT (rule_id, story_id) DO NOTHING
`

	tag, err := p.Exec(ctx, q, ruleID, storyID)
	if err != nil {
		return false, fmt.Errorf("record mention notification: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func decodeStringList(raw []byte, dest *[]string) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

package db

import (
	"context"
	"fmt"
	"time"
)

// StatsPlatformCount stores per-platform story counts.
type StatsPlatformCount struct {
	Platform string `json:"platform"`
	Stories  int64  `json:"stories"`
	Comments int64  `json:"comments"`
}

// StatsTotals stores totals across platforms.
type StatsTotals struct {
	Stories       int64 `json:"stories"`
	Resources     int64 `json:"resources"`
	ResourceLinks int64 `json:"resource_links"`
	MentionRules  int64 `json:"mention_rules"`
	Notifications int64 `json:"notifications"`
}

// ServiceStats is the read model returned by the stats command.
type ServiceStats struct {
	Day               string               `json:"day"`
	Platforms         []StatsPlatformCount `json:"platforms"`
	Totals            StatsTotals          `json:"totals"`
	StoriesSavedToday int64                `json:"stories_saved_today"`
}

// QueryServiceStats returns per-platform and total counts plus daily throughput.
func (p *Pool) QueryServiceStats(ctx context.Context, dayStart, dayEnd time.Time) (*ServiceStats, error) {
	startUTC := dayStart.UTC()
	endUTC := dayEnd.UTC()
	if !startUTC.Before(endUTC) {
		return nil, fmt.Errorf("dayStart must be before dayEnd")
	}

	stats := &ServiceStats{
		Day:       startUTC.Format("2006-01-02"),
		Platforms: make([]StatsPlatformCount, 0, 8),
	}

	const platformQuery = `
SELECT platform, COUNT(*)::BIGINT, COALESCE(SUM(comment_count), 0)::BIGINT
FROM discussions.stories
GROUP BY platform
ORDER BY platform
`

	rows, err := p.Query(ctx, platformQuery)
	if err != nil {
		return nil, fmt.Errorf("query stats platform counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row StatsPlatformCount
		if err := rows.Scan(&row.Platform, &row.Stories, &row.Comments); err != nil {
			return nil, fmt.Errorf("scan stats platform row: %w", err)
		}
		stats.Totals.Stories += row.Stories
		stats.Platforms = append(stats.Platforms, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats platform rows: %w", err)
	}

	const totalsQuery = `
SELECT
	(SELECT COUNT(*)::BIGINT FROM discussions.resources) AS resources,
	(SELECT COUNT(*)::BIGINT FROM discussions.resource_links) AS resource_links,
	(SELECT COUNT(*)::BIGINT FROM discussions.mention_rules WHERE NOT disabled) AS mention_rules,
	(SELECT COUNT(*)::BIGINT FROM discussions.mention_notifications) AS notifications
`

	if err := p.QueryRow(ctx, totalsQuery).Scan(
		&stats.Totals.Resources,
		&stats.Totals.ResourceLinks,
		&stats.Totals.MentionRules,
		&stats.Totals.Notifications,
	); err != nil {
		return nil, fmt.Errorf("query stats totals: %w", err)
	}

	const throughputQuery = `
SELECT COUNT(*)::BIGINT
FROM discussions.stories
WHERE updated_at >= $1 AND updated_at < $2
`

	if err := p.QueryRow(ctx, throughputQuery, startUTC, endUTC).Scan(&stats.StoriesSavedToday); err != nil {
		return nil, fmt.Errorf("query stats throughput: %w", err)
	}

	return stats, nil
}

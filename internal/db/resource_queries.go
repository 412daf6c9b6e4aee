package db

import (
	"context"
	"fmt"
	"strings"
)

// UpsertResource stores page metadata under its canonical URL.
func (p *Pool) UpsertResource(ctx context.Context, resource *Resource) (int64, error) {
	if resource == nil {
		return 0, fmt.Errorf("resource is nil")
	}
	if strings.TrimSpace(resource.CanonicalURL) == "" {
		return 0, fmt.Errorf("resource canonical URL is required")
	}

	const q = `
INSERT INTO discussions.resources (
	canonical_url, title, clean_title, author,
	last_processed_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, now(), now(), now())
ON CONFLICT (canonical_url) DO UPDATE SET
	title = EXCLUDED.title,
	clean_title = EXCLUDED.clean_title,
	author = EXCLUDED.author,
	last_processed_at = now(),
	updated_at = now()
RETURNING resource_id
`

	var resourceID int64
	if err := p.QueryRow(ctx, q,
		resource.CanonicalURL,
		resource.Title,
		resource.CleanTitle,
		resource.Author,
	).Scan(&resourceID); err != nil {
		return 0, fmt.Errorf("upsert resource: %w", err)
	}
	return resourceID, nil
}

// ReplaceResourceLinks rewrites the outbound link set of one canonical URL.
func (p *Pool) ReplaceResourceLinks(ctx context.Context, fromCanonicalURL string, links []ResourceLink) error {
	fromCanonicalURL = strings.TrimSpace(fromCanonicalURL)
	if fromCanonicalURL == "" {
		return fmt.Errorf("source canonical URL is required")
	}

	tx, err := p.BeginTx(ctx, TxOptions{})
	if err != nil {
		return fmt.Errorf("begin replace links: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`DELETE FROM discussions.resource_links WHERE from_canonical_url = $1`,
		fromCanonicalURL,
	); err != nil {
		return fmt.Errorf("delete old resource links: %w", err)
	}

	const insert = `
INSERT INTO discussions.resource_links (from_canonical_url, to_canonical_url, anchor, created_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (from_canonical_url, to_canonical_url) DO NOTHING
`
	for _, link := range links {
		to := strings.TrimSpace(link.ToCanonicalURL)
		if to == "" || to == fromCanonicalURL {
			continue
		}
		if _, err := tx.Exec(ctx, insert, fromCanonicalURL, to, link.Anchor); err != nil {
			return fmt.Errorf("insert resource link: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace links: %w", err)
	}
	return nil
}

// InboundResourceCount counts link-graph references to a canonical URL.
func (p *Pool) InboundResourceCount(ctx context.Context, canonicalURL string) (int, error) {
	canonicalURL = strings.TrimSpace(canonicalURL)
	if canonicalURL == "" {
		return 0, nil
	}

	const q = `
SELECT COUNT(*)::BIGINT
FROM discussions.resource_links
WHERE to_canonical_url = $1
`

	var count int64
	if err := p.QueryRow(ctx, q, canonicalURL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count inbound resource links: %w", err)
	}
	return int(count), nil
}

// GetResource returns the stored metadata for a canonical URL, or ErrNoRows.
func (p *Pool) GetResource(ctx context.Context, canonicalURL string) (*Resource, error) {
	const q = `
SELECT resource_id, canonical_url, title, clean_title, author,
	last_processed_at, created_at, updated_at
FROM discussions.resources
WHERE canonical_url = $1
`

	var resource Resource
	if err := p.QueryRow(ctx, q, strings.TrimSpace(canonicalURL)).Scan(
		&resource.ResourceID,
		&resource.CanonicalURL,
		&resource.Title,
		&resource.CleanTitle,
		&resource.Author,
		&resource.LastProcessedAt,
		&resource.CreatedAt,
		&resource.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &resource, nil
}

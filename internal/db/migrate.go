package db

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed sql/pre_automigrate.sql
var createSchemaSQL string

//go:embed sql/post_automigrate.sql
var createIndexesSQL string

// autoMigrate creates the discussions schema, lets gorm reconcile the story,
// resource and mention tables, then applies the URL and full-text indexes
// gorm cannot express.
func (p *Pool) autoMigrate(ctx context.Context) error {
	if p == nil || p.gdb == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	if err := p.runMigrationScript(ctx, "create-schema", createSchemaSQL); err != nil {
		return err
	}

	if err := p.gdb.WithContext(ctx).AutoMigrate(autoMigrateModels()...); err != nil {
		return fmt.Errorf("gorm auto-migrate models: %w", err)
	}

	return p.runMigrationScript(ctx, "create-indexes", createIndexesSQL)
}

func (p *Pool) runMigrationScript(ctx context.Context, label, sqlText string) error {
	trimmed := strings.TrimSpace(sqlText)
	if trimmed == "" {
		return nil
	}
	if err := p.gdb.WithContext(ctx).Exec(trimmed).Error; err != nil {
		return fmt.Errorf("execute %s SQL: %w", label, err)
	}
	return nil
}

package store

import (
	"context"
	"fmt"
	"time"
)

// ImportLog 一次导入的记录
type ImportLog struct {
	ID           int64     `db:"id" json:"id"`
	Filename     string    `db:"filename" json:"filename"`
	SheetName    string    `db:"sheet_name" json:"sheetName"`
	Layout       string    `db:"layout" json:"layout"`
	ParsedOrders int       `db:"parsed_orders" json:"parsedOrders"`
	Accepted     int       `db:"accepted" json:"accepted"`
	Skipped      int       `db:"skipped" json:"skipped"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// RecordImport 写入导入记录，返回 id
func (b *SQLiteBackend) RecordImport(ctx context.Context, log ImportLog) (int64, error) {
	res, err := b.db.NamedExecContext(ctx, `
		INSERT INTO import_logs (filename, sheet_name, layout, parsed_orders, accepted, skipped)
		VALUES (:filename, :sheet_name, :layout, :parsed_orders, :accepted, :skipped)
	`, log)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// ListImports 最近的导入记录（新的在前）
func (b *SQLiteBackend) ListImports(ctx context.Context, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []ImportLog
	if err := b.db.SelectContext(ctx, &out, `
		SELECT id, filename, sheet_name, layout, parsed_orders, accepted, skipped, created_at
		FROM import_logs
		ORDER BY id DESC
		LIMIT ?
	`, limit); err != nil {
		return nil, fmt.Errorf("query import logs failed: %w", err)
	}
	return out, nil
}

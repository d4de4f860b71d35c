package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaFS embed.FS

// Slot 命名存储槽位
type Slot string

const (
	SlotMalls      Slot = "malls"
	SlotOrders     Slot = "orders"
	SlotCategories Slot = "categories"
)

// ErrNotFound 槽位或记录不存在
var ErrNotFound = errors.New("store: not found")

// Backend 槽位存储后端
type Backend interface {
	Get(ctx context.Context, slot Slot) ([]byte, error)
	Put(ctx context.Context, slot Slot, data []byte) error
	// PutAll 原子写入多个槽位：要么全部写入，要么都不写
	PutAll(ctx context.Context, writes []SlotWrite) error
	RecordImport(ctx context.Context, log ImportLog) (int64, error)
	ListImports(ctx context.Context, limit int) ([]ImportLog, error)
	Close() error
}

// SlotWrite 单个槽位的写入
type SlotWrite struct {
	Slot Slot
	Data []byte
}

const upsertSlotSQL = `
	INSERT INTO slots (name, data) VALUES (?, ?)
	ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
`

// SQLiteBackend SQLite 存储后端
type SQLiteBackend struct {
	db *sqlx.DB
}

// NewSQLite 打开（必要时创建）SQLite 数据库
func NewSQLite(dbPath string) (*SQLiteBackend, error) {
	// 确保 data 目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sqlx.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite 建议单连接
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	b := &SQLiteBackend{db: db}
	if err := b.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return b, nil
}

// initSchema 初始化数据库结构
func (b *SQLiteBackend) initSchema() error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := b.db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Get 读取槽位数据
func (b *SQLiteBackend) Get(ctx context.Context, slot Slot) ([]byte, error) {
	var data []byte
	err := b.db.GetContext(ctx, &data, "SELECT data FROM slots WHERE name = ?", string(slot))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read slot %s: %w", slot, err)
	}
	return data, nil
}

// Put 写入槽位数据
func (b *SQLiteBackend) Put(ctx context.Context, slot Slot, data []byte) error {
	if _, err := b.db.ExecContext(ctx, upsertSlotSQL, string(slot), data); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", slot, err)
	}
	return nil
}

// PutAll 在一个事务中写入多个槽位
func (b *SQLiteBackend) PutAll(ctx context.Context, writes []SlotWrite) error {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, w := range writes {
		if _, err := tx.ExecContext(ctx, upsertSlotSQL, string(w.Slot), w.Data); err != nil {
			return fmt.Errorf("failed to write slot %s: %w", w.Slot, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit slots: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func (b *SQLiteBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// DB 获取原始数据库连接（用于测试）
func (b *SQLiteBackend) DB() *sqlx.DB {
	return b.db
}

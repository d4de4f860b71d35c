package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"malldash/internal/model"
)

// Collections 三个槽位的完整快照
type Collections struct {
	Malls      []model.Mall
	Orders     []model.Order
	Categories []string
}

// Store 基于槽位后端的类型化存储
// 所有读改写都经过 Update 串行化
type Store struct {
	backend Backend
	mu      sync.Mutex
}

// New 使用指定后端创建 Store
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Open 打开 SQLite 存储
func Open(dbPath string) (*Store, error) {
	b, err := NewSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	return New(b), nil
}

// NewMemory 创建内存存储
func NewMemory() *Store {
	return New(NewMemoryBackend())
}

// Backend 底层后端
func (s *Store) Backend() Backend {
	return s.backend
}

// Close 关闭存储
func (s *Store) Close() error {
	return s.backend.Close()
}

// Malls 商城登记表
func (s *Store) Malls(ctx context.Context) ([]model.Mall, error) {
	out := []model.Mall{}
	if err := s.read(ctx, SlotMalls, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Orders 全部订单
func (s *Store) Orders(ctx context.Context) ([]model.Order, error) {
	out := []model.Order{}
	if err := s.read(ctx, SlotOrders, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Categories 全局分类，未保存过时返回默认分类
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := s.read(ctx, SlotCategories, &out)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return append([]string(nil), model.DefaultCategories...), nil
	}
	return out, nil
}

// Load 读取三个槽位
func (s *Store) Load(ctx context.Context) (Collections, error) {
	var c Collections
	var err error
	if c.Malls, err = s.Malls(ctx); err != nil {
		return Collections{}, err
	}
	if c.Orders, err = s.Orders(ctx); err != nil {
		return Collections{}, err
	}
	if c.Categories, err = s.Categories(ctx); err != nil {
		return Collections{}, err
	}
	return c, nil
}

// Update 读取快照，交给 fn 修改后整体写回；fn 返回错误时不写入
func (s *Store) Update(ctx context.Context, fn func(c *Collections) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&c); err != nil {
		return err
	}

	writes := make([]SlotWrite, 0, 3)
	for _, v := range []struct {
		slot  Slot
		value any
	}{
		{SlotMalls, nonNil(c.Malls)},
		{SlotOrders, nonNil(c.Orders)},
		{SlotCategories, nonNil(c.Categories)},
	} {
		data, err := json.Marshal(v.value)
		if err != nil {
			return fmt.Errorf("failed to encode slot %s: %w", v.slot, err)
		}
		writes = append(writes, SlotWrite{Slot: v.slot, Data: data})
	}
	return s.backend.PutAll(ctx, writes)
}

// RecordImport 写入导入记录
func (s *Store) RecordImport(ctx context.Context, log ImportLog) (int64, error) {
	return s.backend.RecordImport(ctx, log)
}

// ListImports 最近的导入记录
func (s *Store) ListImports(ctx context.Context, limit int) ([]ImportLog, error) {
	return s.backend.ListImports(ctx, limit)
}

// read 槽位不存在时保持 v 不变
func (s *Store) read(ctx context.Context, slot Slot, v any) error {
	data, err := s.backend.Get(ctx, slot)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode slot %s: %w", slot, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

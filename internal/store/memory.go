package store

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend 内存存储后端（测试与 parse 命令使用）
type MemoryBackend struct {
	slots   map[Slot][]byte
	imports []ImportLog
	mu      sync.RWMutex
}

// NewMemoryBackend 创建内存存储
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		slots: make(map[Slot][]byte),
	}
}

// Get 读取槽位数据（返回副本）
func (m *MemoryBackend) Get(_ context.Context, slot Slot) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.slots[slot]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Put 写入槽位数据
func (m *MemoryBackend) Put(_ context.Context, slot Slot, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.slots[slot] = append([]byte(nil), data...)
	return nil
}

// PutAll 一次性写入多个槽位
func (m *MemoryBackend) PutAll(_ context.Context, writes []SlotWrite) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range writes {
		m.slots[w.Slot] = append([]byte(nil), w.Data...)
	}
	return nil
}

// RecordImport 记录导入
func (m *MemoryBackend) RecordImport(_ context.Context, log ImportLog) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	log.ID = int64(len(m.imports) + 1)
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	m.imports = append(m.imports, log)
	return log.ID, nil
}

// ListImports 最近的导入记录（新的在前）
func (m *MemoryBackend) ListImports(_ context.Context, limit int) ([]ImportLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	out := make([]ImportLog, 0, limit)
	for i := len(m.imports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.imports[i])
	}
	return out, nil
}

// Close 无需释放资源
func (m *MemoryBackend) Close() error {
	return nil
}

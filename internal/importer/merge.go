package importer

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"malldash/internal/model"
)

// IDGenerator 订单 ID 生成器
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator 使用 UUIDv7，字符串顺序即生成顺序
type UUIDGenerator struct{}

// NewID 生成新 ID
func (UUIDGenerator) NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator 递增序号，结果可预测
type SequenceGenerator struct {
	Prefix string

	mu   sync.Mutex
	next int
}

// NewID 生成新 ID
func (g *SequenceGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s%d", g.Prefix, g.next)
}

// MergeResult 合并结果
type MergeResult struct {
	Accepted []model.Order `json:"accepted"`
	Skipped  int           `json:"skipped"`
}

// Merge 按 (date, orderNo) 去重，把候选订单合并进已有集合
// 已存在的键被跳过（只计数）；接受的订单分配新的唯一 ID。输入不会被修改。
func Merge(candidates, existing []model.Order, gen IDGenerator) MergeResult {
	if gen == nil {
		gen = UUIDGenerator{}
	}

	keys := make(map[model.OrderKey]struct{}, len(existing)+len(candidates))
	ids := make(map[string]struct{}, len(existing)+len(candidates))
	for _, o := range existing {
		keys[o.Key()] = struct{}{}
		if o.ID != "" {
			ids[o.ID] = struct{}{}
		}
	}

	result := MergeResult{Accepted: []model.Order{}}
	for _, c := range candidates {
		key := c.Key()
		if _, dup := keys[key]; dup {
			result.Skipped++
			continue
		}
		keys[key] = struct{}{}

		id := gen.NewID()
		for id == "" || contains(ids, id) {
			id = gen.NewID()
		}
		ids[id] = struct{}{}

		o := c
		o.ID = id
		o.Items = append([]model.LineItem(nil), c.Items...)
		result.Accepted = append(result.Accepted, o)
	}
	return result
}

func contains(set map[string]struct{}, v string) bool {
	_, ok := set[v]
	return ok
}

package parser

import (
	"strings"

	"malldash/internal/model"
)

// MallMatch 商城匹配结果；ID 为空表示未登记
type MallMatch struct {
	ID   string
	Name string
}

// MallResolver 按商城登记表匹配表格中的商城名，并收集未登记的名称
type MallResolver struct {
	registry []model.Mall
	keys     []string
	unknown  []string
	seen     map[string]bool
}

// NewMallResolver 创建商城匹配器（只读引用登记表）
func NewMallResolver(registry []model.Mall) *MallResolver {
	keys := make([]string, len(registry))
	for i, m := range registry {
		keys[i] = NormalizeText(m.Name)
	}
	return &MallResolver{
		registry: registry,
		keys:     keys,
		seen:     make(map[string]bool),
	}
}

// Resolve 依次尝试 相等 / 登记名包含输入 / 输入包含登记名，按登记顺序取第一个
// 比较前两边都做 NormalizeText；未命中时记录到未登记列表
func (r *MallResolver) Resolve(raw string) MallMatch {
	name := strings.TrimSpace(raw)
	if name == "" {
		return MallMatch{}
	}

	key := NormalizeText(name)
	for i, k := range r.keys {
		if k == "" {
			continue
		}
		if k == key || strings.Contains(k, key) || strings.Contains(key, k) {
			return MallMatch{ID: r.registry[i].ID, Name: name}
		}
	}

	if !r.seen[name] {
		r.seen[name] = true
		r.unknown = append(r.unknown, name)
	}
	return MallMatch{Name: name}
}

// Unknown 未登记的商城名（按首次出现顺序）
func (r *MallResolver) Unknown() []string {
	return append([]string(nil), r.unknown...)
}

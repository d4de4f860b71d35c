package dashboard

import (
	"sort"

	"github.com/shopspring/decimal"

	"malldash/internal/model"
)

// Filter 订单筛选条件，空字段表示不限
type Filter struct {
	From     string `form:"from" json:"from"` // YYYY-MM-DD，含
	To       string `form:"to" json:"to"`     // YYYY-MM-DD，含
	MallID   string `form:"mallId" json:"mallId"`
	Category string `form:"category" json:"category"`
}

// Match 订单是否满足条件
func (f Filter) Match(o model.Order) bool {
	if f.From != "" && o.Date < f.From {
		return false
	}
	if f.To != "" && o.Date > f.To {
		return false
	}
	if f.MallID != "" && o.MallID != f.MallID {
		return false
	}
	if f.Category != "" && !o.HasCategory(f.Category) {
		return false
	}
	return true
}

// Apply 筛选并按日期倒序、订单号升序排列；不修改输入
func (f Filter) Apply(orders []model.Order) []model.Order {
	out := make([]model.Order, 0, len(orders))
	for _, o := range orders {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].OrderNo < out[j].OrderNo
	})
	return out
}

// Bucket 分组合计
type Bucket struct {
	Key    string `json:"key"`
	Count  int    `json:"count"`
	Qty    int64  `json:"qty"`
	Amount int64  `json:"amount"`
}

// Summary 统计结果
type Summary struct {
	TotalOrders   int      `json:"totalOrders"`
	TotalQty      int64    `json:"totalQty"`
	TotalAmount   int64    `json:"totalAmount"`
	AverageAmount int64    `json:"averageAmount"` // 客单价，四舍五入到元
	ByMall        []Bucket `json:"byMall"`        // 金额倒序
	ByDate        []Bucket `json:"byDate"`        // 日期升序
	ByCategory    []Bucket `json:"byCategory"`    // 金额倒序
}

// Summarize 汇总订单
// 分类统计按明细计：Count 为明细条数，金额只统计明细金额
func Summarize(orders []model.Order) Summary {
	byMall := map[string]*Bucket{}
	byDate := map[string]*Bucket{}
	byCategory := map[string]*Bucket{}

	var s Summary
	for _, o := range orders {
		s.TotalOrders++
		s.TotalQty += o.TotalQty
		s.TotalAmount += o.TotalAmount

		add(byMall, o.MallID, 1, o.TotalQty, o.TotalAmount)
		add(byDate, o.Date, 1, o.TotalQty, o.TotalAmount)

		for _, it := range o.Items {
			cat := it.Category
			if cat == "" {
				cat = model.UncategorizedLabel
			}
			add(byCategory, cat, 1, it.Qty, it.Amount)
		}
	}

	if s.TotalOrders > 0 {
		s.AverageAmount = decimal.NewFromInt(s.TotalAmount).
			Div(decimal.NewFromInt(int64(s.TotalOrders))).
			Round(0).
			IntPart()
	}

	s.ByMall = sortedByAmount(byMall)
	s.ByCategory = sortedByAmount(byCategory)
	s.ByDate = flatten(byDate)
	sort.Slice(s.ByDate, func(i, j int) bool { return s.ByDate[i].Key < s.ByDate[j].Key })
	return s
}

// Today 某天的订单（可选按商城），按 ID 倒序
func Today(orders []model.Order, date, mallID string) []model.Order {
	out := Filter{From: date, To: date, MallID: mallID}.Apply(orders)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func add(m map[string]*Bucket, key string, count int, qty, amount int64) {
	b, ok := m[key]
	if !ok {
		b = &Bucket{Key: key}
		m[key] = b
	}
	b.Count += count
	b.Qty += qty
	b.Amount += amount
}

func flatten(m map[string]*Bucket) []Bucket {
	out := make([]Bucket, 0, len(m))
	for _, b := range m {
		out = append(out, *b)
	}
	return out
}

func sortedByAmount(m map[string]*Bucket) []Bucket {
	out := flatten(m)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Key < out[j].Key
	})
	return out
}

package dashboard

import (
	"testing"

	"malldash/internal/model"
)

func sampleOrders() []model.Order {
	return []model.Order{
		{ID: "a", Date: "2024-01-01", OrderNo: "2", MallID: "m1", TotalAmount: 1000, TotalQty: 1,
			Items: []model.LineItem{{Category: "식품", ProductName: "김", Qty: 1, Amount: 1000}}},
		{ID: "b", Date: "2024-01-02", OrderNo: "1", MallID: "m2", TotalAmount: 3000, TotalQty: 3,
			Items: []model.LineItem{{Category: "식품", Qty: 1, Amount: 1000}, {Qty: 2, Amount: 2000}}},
		{ID: "c", Date: "2024-01-01", OrderNo: "1", MallID: "m1", TotalAmount: 500, TotalQty: 1,
			Items: []model.LineItem{{Category: "가전", Qty: 1, Amount: 500}}},
		{ID: "d", Date: "2024-01-03", OrderNo: "9", MallID: "m2", TotalAmount: 0, TotalQty: 1,
			Items: []model.LineItem{{Qty: 1}}},
	}
}

func TestFilter_Apply(t *testing.T) {
	t.Parallel()

	orders := sampleOrders()

	all := Filter{}.Apply(orders)
	if len(all) != 4 || all[0].ID != "d" || all[2].ID != "c" || all[3].ID != "a" {
		t.Fatalf("unexpected ordering: %v", ids(all))
	}

	ranged := Filter{From: "2024-01-01", To: "2024-01-02", MallID: "m1"}.Apply(orders)
	if len(ranged) != 2 || ranged[0].ID != "c" {
		t.Fatalf("unexpected range result: %v", ids(ranged))
	}

	food := Filter{Category: "식품"}.Apply(orders)
	if len(food) != 2 {
		t.Fatalf("unexpected category result: %v", ids(food))
	}
	if orders[0].ID != "a" {
		t.Fatalf("input reordered")
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize(sampleOrders())
	if s.TotalOrders != 4 || s.TotalQty != 6 || s.TotalAmount != 4500 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if s.AverageAmount != 1125 {
		t.Fatalf("average want=1125 got=%d", s.AverageAmount)
	}
	if len(s.ByMall) != 2 || s.ByMall[0].Key != "m2" || s.ByMall[0].Amount != 3000 {
		t.Fatalf("unexpected by mall: %+v", s.ByMall)
	}
	if len(s.ByDate) != 3 || s.ByDate[0].Key != "2024-01-01" || s.ByDate[0].Count != 2 {
		t.Fatalf("unexpected by date: %+v", s.ByDate)
	}

	cats := map[string]Bucket{}
	for _, b := range s.ByCategory {
		cats[b.Key] = b
	}
	if cats["식품"].Amount != 2000 || cats[model.UncategorizedLabel].Count != 2 || cats[model.UncategorizedLabel].Qty != 3 {
		t.Fatalf("unexpected by category: %+v", s.ByCategory)
	}
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	s := Summarize(nil)
	if s.TotalOrders != 0 || s.AverageAmount != 0 || len(s.ByMall) != 0 {
		t.Fatalf("unexpected empty summary: %+v", s)
	}
}

func TestToday(t *testing.T) {
	t.Parallel()

	got := Today(sampleOrders(), "2024-01-01", "")
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "a" {
		t.Fatalf("unexpected today: %v", ids(got))
	}
	if got := Today(sampleOrders(), "2024-01-01", "m2"); len(got) != 0 {
		t.Fatalf("mall filter ignored: %v", ids(got))
	}
}

func ids(orders []model.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

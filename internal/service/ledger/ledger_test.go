package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"malldash/internal/importer"
	"malldash/internal/model"
	"malldash/internal/service/dashboard"
	"malldash/internal/store"
)

func newService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st := store.NewMemory()
	svc := New(st, &importer.SequenceGenerator{Prefix: "o"})
	svc.now = func() time.Time { return time.Date(2025, 3, 9, 10, 0, 0, 0, time.Local) }
	return svc, st
}

func TestAddMall(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	a, err := svc.AddMall(ctx, "  쿠팡 ", []string{"식품", " 식품", "", "가전"})
	if err != nil {
		t.Fatalf("add mall: %v", err)
	}
	if a.ID == "" || a.Name != "쿠팡" || a.Color != model.MallPalette[0] {
		t.Fatalf("unexpected mall: %+v", a)
	}
	if len(a.Categories) != 2 || a.Categories[0] != "식품" || a.Categories[1] != "가전" {
		t.Fatalf("categories not cleaned: %v", a.Categories)
	}

	b, _ := svc.AddMall(ctx, "11번가", nil)
	if b.Color != model.MallPalette[1] {
		t.Fatalf("palette should rotate: %s", b.Color)
	}

	if _, err := svc.AddMall(ctx, "   ", nil); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("want ErrInvalidName, got %v", err)
	}
}

func TestCategoriesFor(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	withOwn, _ := svc.AddMall(ctx, "A", []string{"식품"})
	plain, _ := svc.AddMall(ctx, "B", nil)

	own, err := svc.CategoriesFor(ctx, withOwn.ID)
	if err != nil || len(own) != 1 || own[0] != "식품" {
		t.Fatalf("own categories: %v err=%v", own, err)
	}
	global, err := svc.CategoriesFor(ctx, plain.ID)
	if err != nil || len(global) != len(model.DefaultCategories) {
		t.Fatalf("fallback categories: %v err=%v", global, err)
	}
	if _, err := svc.CategoriesFor(ctx, "missing"); !errors.Is(err, ErrMallNotFound) {
		t.Fatalf("want ErrMallNotFound, got %v", err)
	}

	if _, err := svc.UpdateMallCategories(ctx, plain.ID, []string{"가방"}); err != nil {
		t.Fatalf("update categories: %v", err)
	}
	updated, _ := svc.CategoriesFor(ctx, plain.ID)
	if len(updated) != 1 || updated[0] != "가방" {
		t.Fatalf("updated categories: %v", updated)
	}
}

func TestGlobalCategories(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	cats, err := svc.AddCategory(ctx, "문구")
	if err != nil || cats[len(cats)-1] != "문구" {
		t.Fatalf("add category: %v err=%v", cats, err)
	}
	if _, err := svc.AddCategory(ctx, "문구"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
	cats, err = svc.DeleteCategory(ctx, "상의")
	if err != nil {
		t.Fatalf("delete category: %v", err)
	}
	for _, c := range cats {
		if c == "상의" {
			t.Fatalf("category not deleted: %v", cats)
		}
	}
}

func TestAddOrder(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()
	mall, _ := svc.AddMall(ctx, "쿠팡", nil)

	o, err := svc.AddOrder(ctx, OrderInput{
		OrderNo: "M-1",
		MallID:  mall.ID,
		Items: []model.LineItem{
			{ProductName: "김치", Qty: 2, Amount: 5000},
			{ProductName: "", Qty: 1, Amount: 100},
			{ProductName: "라면", Qty: 0, Amount: 100},
			{ProductName: "햇반", Qty: 1, Amount: 1500},
		},
	})
	if err != nil {
		t.Fatalf("add order: %v", err)
	}
	if o.ID != "o1" || o.Date != "2025-03-09" || o.MallName != "쿠팡" {
		t.Fatalf("unexpected order: %+v", o)
	}
	if len(o.Items) != 2 || o.TotalAmount != 6500 || o.TotalQty != 3 {
		t.Fatalf("unexpected totals: %+v", o)
	}

	_, err = svc.AddOrder(ctx, OrderInput{Date: "2025-03-09", OrderNo: "M-1", MallID: mall.ID, Items: o.Items})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}

	cases := []OrderInput{
		{OrderNo: "X", Items: o.Items},
		{MallID: mall.ID, Items: o.Items},
		{OrderNo: "X", MallID: mall.ID},
		{Date: "2025/03/09", OrderNo: "X", MallID: mall.ID, Items: o.Items},
	}
	for i, in := range cases {
		if _, err := svc.AddOrder(ctx, in); !errors.Is(err, ErrInvalidOrder) {
			t.Fatalf("case %d: want ErrInvalidOrder, got %v", i, err)
		}
	}
	if _, err := svc.AddOrder(ctx, OrderInput{OrderNo: "X", MallID: "nope", Items: o.Items}); !errors.Is(err, ErrMallNotFound) {
		t.Fatalf("want ErrMallNotFound, got %v", err)
	}

	if err := svc.DeleteOrder(ctx, o.ID); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	if err := svc.DeleteOrder(ctx, o.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("want ErrOrderNotFound, got %v", err)
	}
}

func TestDeleteMallCascadesAndLinkMall(t *testing.T) {
	t.Parallel()

	svc, st := newService(t)
	ctx := context.Background()
	a, _ := svc.AddMall(ctx, "쿠팡", nil)
	b, _ := svc.AddMall(ctx, "신규몰", nil)

	_ = st.Update(ctx, func(c *store.Collections) error {
		c.Orders = []model.Order{
			{ID: "1", Date: "2024-01-01", OrderNo: "A", MallID: a.ID, MallName: "쿠팡"},
			{ID: "2", Date: "2024-01-01", OrderNo: "B", MallName: "신규몰"},
			{ID: "3", Date: "2024-01-01", OrderNo: "C", MallName: " 신규몰 "},
			{ID: "4", Date: "2024-01-01", OrderNo: "D", MallName: "다른몰"},
		}
		return nil
	})

	linked, err := svc.LinkMall(ctx, "신규몰", b.ID)
	if err != nil || linked != 2 {
		t.Fatalf("link: %d err=%v", linked, err)
	}

	removed, err := svc.DeleteMall(ctx, a.ID)
	if err != nil || removed != 1 {
		t.Fatalf("delete mall: %d err=%v", removed, err)
	}

	orders, _ := st.Orders(ctx)
	if len(orders) != 3 {
		t.Fatalf("orders after cascade: %+v", orders)
	}
	for _, o := range orders {
		if o.OrderNo == "D" && o.MallID != "" {
			t.Fatalf("unrelated order linked: %+v", o)
		}
	}

	malls, _ := svc.Malls(ctx)
	if len(malls) != 1 || malls[0].ID != b.ID {
		t.Fatalf("mall not deleted: %+v", malls)
	}
	if _, err := svc.DeleteMall(ctx, a.ID); !errors.Is(err, ErrMallNotFound) {
		t.Fatalf("want ErrMallNotFound, got %v", err)
	}
}

func TestAddOrder_DefaultIDsListNewestFirst(t *testing.T) {
	t.Parallel()

	svc := New(store.NewMemory(), nil)
	ctx := context.Background()

	mall, err := svc.AddMall(ctx, "쿠팡", nil)
	if err != nil {
		t.Fatalf("add mall: %v", err)
	}

	const n = 20
	for i := 0; i < n; i++ {
		_, err := svc.AddOrder(ctx, OrderInput{
			Date:    "2025-03-09",
			OrderNo: fmt.Sprintf("N-%02d", i),
			MallID:  mall.ID,
			Items:   []model.LineItem{{ProductName: "김치", Qty: 1, Amount: 1000}},
		})
		if err != nil {
			t.Fatalf("add order %d: %v", i, err)
		}
	}

	orders, _ := svc.Orders(ctx)
	got := dashboard.Today(orders, "2025-03-09", "")
	if len(got) != n {
		t.Fatalf("today want=%d got=%d", n, len(got))
	}
	for i, o := range got {
		if want := fmt.Sprintf("N-%02d", n-1-i); o.OrderNo != want {
			t.Fatalf("position %d want=%s got=%s", i, want, o.OrderNo)
		}
	}
}

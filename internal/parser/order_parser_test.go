package parser

import (
	"strings"
	"testing"

	"malldash/internal/model"
)

func header(labels ...string) []Cell {
	out := make([]Cell, len(labels))
	for i, l := range labels {
		out[i] = TextCell(l)
	}
	return out
}

func TestParse_GroupedRoundTrip(t *testing.T) {
	t.Parallel()

	grid := Grid{
		Sheet: "주문",
		Rows: [][]Cell{
			header("주문일시", "주문번호", "상품명", "수량", "결제금액"),
			{TextCell("2024-01-01"), TextCell("R1"), TextCell("A"), NumberCell(1), NumberCell(1000)},
			{{}, {}, TextCell("B"), NumberCell(2), NumberCell(0)},
		},
	}

	res := Parse(grid, nil, Options{Now: fixedNow})
	if res.Layout != LayoutGrouped {
		t.Fatalf("layout want=grouped got=%s", res.Layout)
	}
	if len(res.Orders) != 1 {
		t.Fatalf("orders want=1 got=%d", len(res.Orders))
	}
	o := res.Orders[0]
	if o.OrderNo != "R1" || o.Date != "2024-01-01" {
		t.Fatalf("unexpected identity: %s %s", o.Date, o.OrderNo)
	}
	if o.TotalAmount != 1000 {
		t.Fatalf("totalAmount want=1000 got=%d", o.TotalAmount)
	}
	if len(o.Items) != 2 || o.Items[0].Amount != 0 || o.Items[1].Amount != 0 {
		t.Fatalf("unexpected items: %+v", o.Items)
	}
	if o.TotalQty != 3 {
		t.Fatalf("totalQty want=3 got=%d", o.TotalQty)
	}
	if !o.OrderLevelAmount() || res.OrderLevelAmountCount != 1 {
		t.Fatalf("order-level amount not flagged")
	}
}

func TestParse_GroupedSingleItemKeepsAmount(t *testing.T) {
	t.Parallel()

	grid := Grid{
		Sheet: "주문",
		Rows: [][]Cell{
			header("날짜", "주문번호", "상품명", "수량", "결제금액", "총수량"),
			{TextCell("2024-01-01"), TextCell("A-1"), TextCell("A"), NumberCell(1), NumberCell(1000), {}},
			{TextCell("2024-01-02"), TextCell("A-2"), TextCell("B"), NumberCell(1), NumberCell(500), NumberCell(5)},
			{{}, {}, TextCell("C"), NumberCell(1), {}, {}},
		},
	}

	res := Parse(grid, nil, Options{Now: fixedNow})
	if res.Layout != LayoutGrouped || len(res.Orders) != 2 {
		t.Fatalf("layout=%s orders=%d", res.Layout, len(res.Orders))
	}
	if got := res.Orders[0].Items[0].Amount; got != 1000 {
		t.Fatalf("single item amount want=1000 got=%d", got)
	}
	if got := res.Orders[1].TotalQty; got != 5 {
		t.Fatalf("reported total qty want=5 got=%d", got)
	}
}

func TestParse_GroupedSynthesizesOrderNoAndDropsOrphans(t *testing.T) {
	t.Parallel()

	grid := Grid{
		Sheet: "S",
		Rows: [][]Cell{
			header("날짜", "주문번호", "상품명"),
			{{}, {}, TextCell("orphan")},
			{TextCell("2024-05-01"), {}, TextCell("A")},
			{{}, {}, TextCell("B")},
			{{}, {}, {}},
		},
	}

	res := Parse(grid, nil, Options{Now: fixedNow})
	if res.Layout != LayoutGrouped {
		t.Fatalf("layout want=grouped got=%s", res.Layout)
	}
	if len(res.Orders) != 1 {
		t.Fatalf("orders want=1 got=%d: %+v", len(res.Orders), res.Orders)
	}
	if res.Orders[0].OrderNo != "R3" {
		t.Fatalf("synthetic order no want=R3 got=%s", res.Orders[0].OrderNo)
	}
	if len(res.Orders[0].Items) != 2 {
		t.Fatalf("items want=2 got=%d", len(res.Orders[0].Items))
	}
}

func TestParse_FlatRoundTrip(t *testing.T) {
	t.Parallel()

	grid := Grid{
		Sheet: "Sheet1",
		Rows: [][]Cell{
			header("date", "orderId", "product", "qty", "payment"),
			{TextCell("2024-01-01"), TextCell("R9"), TextCell("A"), NumberCell(1), NumberCell(500)},
			{TextCell("2024-01-01"), TextCell("R9"), TextCell("B"), NumberCell(1), NumberCell(700)},
		},
	}

	res := Parse(grid, nil, Options{Now: fixedNow})
	if res.Layout != LayoutFlat {
		t.Fatalf("layout want=flat got=%s", res.Layout)
	}
	if len(res.Orders) != 1 {
		t.Fatalf("orders want=1 got=%d", len(res.Orders))
	}
	o := res.Orders[0]
	if o.TotalAmount != 1200 || o.TotalQty != 2 {
		t.Fatalf("totals want=1200/2 got=%d/%d", o.TotalAmount, o.TotalQty)
	}
	if len(o.Items) != 2 || o.Items[0].Amount != 500 || o.Items[1].Amount != 700 {
		t.Fatalf("unexpected items: %+v", o.Items)
	}
	if o.OrderLevelAmount() {
		t.Fatalf("flat order should not be order-level")
	}
}

func TestParse_FlatKeepsOrderOfFirstAppearance(t *testing.T) {
	t.Parallel()

	grid := Grid{
		Sheet: "Sheet1",
		Rows: [][]Cell{
			header("날짜", "주문번호", "상품명", "수량", "금액", "카테고리"),
			{TextCell("2024-01-02"), TextCell("B"), TextCell("x"), {}, TextCell("1,000"), TextCell("상의")},
			{TextCell("2024-01-01"), TextCell("A"), TextCell("y"), TextCell("2"), TextCell("2,000"), {}},
			{TextCell("2024-01-02"), TextCell("B"), TextCell("z"), TextCell("3"), TextCell("3,000"), TextCell("하의")},
			{TextCell("2024-01-03"), {}, TextCell("w"), {}, {}, {}},
		},
	}

	res := Parse(grid, nil, Options{Now: fixedNow})
	if len(res.Orders) != 3 {
		t.Fatalf("orders want=3 got=%d", len(res.Orders))
	}
	if res.Orders[0].OrderNo != "B" || res.Orders[1].OrderNo != "A" || res.Orders[2].OrderNo != "R5" {
		t.Fatalf("unexpected order sequence: %s %s %s", res.Orders[0].OrderNo, res.Orders[1].OrderNo, res.Orders[2].OrderNo)
	}
	b := res.Orders[0]
	if b.TotalQty != 4 || b.TotalAmount != 4000 {
		t.Fatalf("B totals want=4/4000 got=%d/%d", b.TotalQty, b.TotalAmount)
	}
	if b.Items[0].Category != "상의" || b.Items[1].Category != "하의" {
		t.Fatalf("categories not captured: %+v", b.Items)
	}
}

func TestParse_UnknownMallWarning(t *testing.T) {
	t.Parallel()

	registry := []model.Mall{{ID: "m1", Name: "쿠팡"}}
	grid := Grid{
		Sheet: "주문",
		Rows: [][]Cell{
			header("날짜", "주문번호", "상품명", "쇼핑몰"),
			{TextCell("2024-01-01"), TextCell("1"), TextCell("A"), TextCell("새로운몰")},
			{TextCell("2024-01-01"), TextCell("2"), TextCell("B"), TextCell("새로운몰")},
			{TextCell("2024-01-01"), TextCell("3"), TextCell("C"), TextCell("쿠팡")},
		},
	}

	res := Parse(grid, registry, Options{Now: fixedNow})
	if len(res.Warnings) != 3 {
		t.Fatalf("warnings want=3 got=%v", res.Warnings)
	}
	mentions := 0
	for _, w := range res.Warnings {
		if strings.Contains(w, "새로운몰") {
			mentions++
		}
	}
	if mentions != 1 {
		t.Fatalf("want exactly one warning naming the mall, got %d: %v", mentions, res.Warnings)
	}
	if !strings.HasPrefix(res.Warnings[0], "시트 \"주문\" 파싱 중 (3행)") {
		t.Fatalf("unexpected progress line: %s", res.Warnings[0])
	}
	if res.Warnings[2] != msgFlatUsed {
		t.Fatalf("layout line missing: %v", res.Warnings)
	}

	o := res.Orders[0]
	if o.MallID != "" || o.MallName != "새로운몰" {
		t.Fatalf("unexpected mall fields: %q %q", o.MallID, o.MallName)
	}
	if res.Orders[2].MallID != "m1" {
		t.Fatalf("registered mall not resolved: %+v", res.Orders[2])
	}
}

func TestParse_EmptySheet(t *testing.T) {
	t.Parallel()

	for _, grid := range []Grid{
		{Sheet: "empty"},
		{Sheet: "header-only", Rows: [][]Cell{header("날짜", "상품명")}},
	} {
		res := Parse(grid, nil, Options{Now: fixedNow})
		if len(res.Orders) != 0 {
			t.Fatalf("%s: want no orders, got %d", grid.Sheet, len(res.Orders))
		}
		if len(res.Warnings) != 1 || res.Warnings[0] != msgNoData {
			t.Fatalf("%s: unexpected warnings %v", grid.Sheet, res.Warnings)
		}
	}
}

func TestParse_DoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	registry := []model.Mall{{ID: "m1", Name: "쿠팡"}}
	grid := Grid{
		Sheet: "S",
		Rows: [][]Cell{
			header("날짜", "주문번호", "상품명", "결제금액"),
			{TextCell("2024-01-01"), TextCell("1"), TextCell("A"), NumberCell(1000)},
			{{}, {}, TextCell("B"), {}},
		},
	}

	_ = Parse(grid, registry, Options{Now: fixedNow})
	if grid.Rows[1][3].Number != 1000 || len(registry) != 1 || registry[0].Name != "쿠팡" {
		t.Fatalf("inputs mutated")
	}
}

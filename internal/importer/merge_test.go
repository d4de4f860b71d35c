package importer

import (
	"testing"

	"malldash/internal/model"
)

func order(date, no string, amount int64) model.Order {
	return model.Order{
		Date:        date,
		OrderNo:     no,
		TotalAmount: amount,
		TotalQty:    1,
		Items:       []model.LineItem{{ProductName: "p", Qty: 1, Amount: amount}},
	}
}

func TestMerge_SkipsExistingKeys(t *testing.T) {
	t.Parallel()

	existing := []model.Order{order("2024-01-01", "A", 100)}
	existing[0].ID = "ord-1"

	candidates := []model.Order{
		order("2024-01-01", "A", 999),
		order("2024-01-02", "A", 200),
		order("2024-01-01", "B", 300),
	}

	res := Merge(candidates, existing, &SequenceGenerator{Prefix: "ord-"})
	if res.Skipped != 1 || len(res.Accepted) != 2 {
		t.Fatalf("want 2 accepted/1 skipped, got %d/%d", len(res.Accepted), res.Skipped)
	}
	// ord-1 已被占用，生成器需要跳过
	if res.Accepted[0].ID != "ord-2" || res.Accepted[1].ID != "ord-3" {
		t.Fatalf("unexpected ids: %s %s", res.Accepted[0].ID, res.Accepted[1].ID)
	}
	if candidates[1].ID != "" {
		t.Fatalf("candidate mutated")
	}
}

func TestMerge_Idempotent(t *testing.T) {
	t.Parallel()

	candidates := []model.Order{order("2024-01-01", "A", 1), order("2024-01-01", "B", 2)}

	first := Merge(candidates, nil, UUIDGenerator{})
	if len(first.Accepted) != 2 || first.Skipped != 0 {
		t.Fatalf("first pass: %d/%d", len(first.Accepted), first.Skipped)
	}
	if first.Accepted[0].ID == "" || first.Accepted[0].ID == first.Accepted[1].ID {
		t.Fatalf("ids not unique: %s %s", first.Accepted[0].ID, first.Accepted[1].ID)
	}

	second := Merge(candidates, first.Accepted, UUIDGenerator{})
	if len(second.Accepted) != 0 || second.Skipped != 2 {
		t.Fatalf("second pass should add nothing: %d/%d", len(second.Accepted), second.Skipped)
	}
}

func TestMerge_DuplicateWithinBatch(t *testing.T) {
	t.Parallel()

	candidates := []model.Order{
		order("2024-01-01", "A", 1),
		order("2024-01-01", "A", 2),
	}
	res := Merge(candidates, nil, &SequenceGenerator{})
	if len(res.Accepted) != 1 || res.Skipped != 1 {
		t.Fatalf("want 1/1, got %d/%d", len(res.Accepted), res.Skipped)
	}
	if res.Accepted[0].TotalAmount != 1 {
		t.Fatalf("first occurrence should win")
	}
}

func TestUUIDGenerator_Ordered(t *testing.T) {
	t.Parallel()

	var gen UUIDGenerator
	prev := gen.NewID()
	for i := 0; i < 100; i++ {
		id := gen.NewID()
		if id <= prev {
			t.Fatalf("ids not increasing: %s then %s", prev, id)
		}
		prev = id
	}
}

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atmx/fib-dozens/internal/model"
)

func testRun(id string, created time.Time, spins int) *model.Run {
	r := &model.Run{
		ID: id,
		Params: model.Params{
			StartBalance: decimal.NewFromInt(100),
			UnitBet:      decimal.NewFromInt(1),
			TargetProfit: decimal.NewFromInt(10),
		},
		Outcome:      model.OutcomeTargetReached,
		FinalBalance: decimal.NewFromInt(110),
		CreatedAt:    created,
	}
	for i := 1; i <= spins; i++ {
		r.Spins = append(r.Spins, model.SpinResult{Spin: i, Bet: decimal.NewFromInt(1)})
	}
	return r
}

func TestMemoryStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	if err := ms.SaveRun(ctx, testRun("r1", time.Now(), 3)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	run, err := ms.GetRun(ctx, "r1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if run.Outcome != model.OutcomeTargetReached || !run.FinalBalance.Equal(decimal.NewFromInt(110)) {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.Spins != nil {
		t.Error("GetRun should not include spin rows")
	}

	spins, err := ms.GetSpins(ctx, "r1")
	if err != nil {
		t.Fatalf("get spins failed: %v", err)
	}
	if len(spins) != 3 || spins[2].Spin != 3 {
		t.Errorf("expected 3 ordered spins, got %+v", spins)
	}
}

func TestMemoryStore_DuplicateID(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	ms.SaveRun(ctx, testRun("r1", time.Now(), 0))
	if err := ms.SaveRun(ctx, testRun("r1", time.Now(), 0)); err == nil {
		t.Error("expected error for duplicate run ID")
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	if _, err := ms.GetRun(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := ms.GetSpins(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ms.SaveRun(ctx, testRun("old", base, 1))
	ms.SaveRun(ctx, testRun("new", base.Add(time.Hour), 1))

	runs, err := ms.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "new" || runs[1].ID != "old" {
		t.Errorf("expected [new old], got %+v", runs)
	}
	for _, r := range runs {
		if r.Spins != nil {
			t.Errorf("ListRuns should not include spin rows for %s", r.ID)
		}
	}
}

func TestMemoryStore_CopiesOnSave(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	run := testRun("r1", time.Now(), 2)
	ms.SaveRun(ctx, run)

	run.Outcome = "mutated"
	run.Spins[0].Spin = 99

	stored, _ := ms.GetRun(ctx, "r1")
	spins, _ := ms.GetSpins(ctx, "r1")
	if stored.Outcome != model.OutcomeTargetReached || spins[0].Spin != 1 {
		t.Error("store should not be affected by caller mutation")
	}
}

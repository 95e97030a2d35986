package simulation

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/atmx/fib-dozens/internal/model"
	"github.com/atmx/fib-dozens/internal/stats"
	"github.com/atmx/fib-dozens/internal/wheel"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func intPtr(n int) *int { return &n }

// script replays a fixed list of pockets, repeating the last one.
type script struct {
	pockets []int
	pos     int
}

func (s *script) Spin() (int, bool) {
	i := s.pos
	if i >= len(s.pockets) {
		i = len(s.pockets) - 1
	}
	s.pos++
	n := s.pockets[i]
	return n, wheel.IsWin(n)
}

func TestRun_ReachesTarget(t *testing.T) {
	p := model.Params{StartBalance: d(100), UnitBet: d(10), TargetProfit: d(40)}
	res, err := Run(context.Background(), p, Options{Wheel: &script{pockets: []int{5, 0, 33, 36}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Outcome != model.OutcomeTargetReached {
		t.Errorf("expected target_reached, got %s", res.Outcome)
	}
	if len(res.Spins) != 4 {
		t.Fatalf("expected 4 spins, got %d", len(res.Spins))
	}

	wantBalance := []float64{90, 80, 130, 180}
	wantCycle := []int{1, 1, 1, 2}
	wantIndex := []int{1, 2, 3, 1}
	for i, row := range res.Spins {
		if row.Spin != i+1 {
			t.Errorf("row %d: expected spin number %d, got %d", i, i+1, row.Spin)
		}
		if !row.BalancePost.Equal(d(wantBalance[i])) {
			t.Errorf("spin %d: expected balance %v, got %s", i+1, wantBalance[i], row.BalancePost)
		}
		if row.Cycle != wantCycle[i] {
			t.Errorf("spin %d: expected cycle %d, got %d", i+1, wantCycle[i], row.Cycle)
		}
		if row.FibIndex != wantIndex[i] {
			t.Errorf("spin %d: expected index %d, got %d", i+1, wantIndex[i], row.FibIndex)
		}
		if i > 0 && !row.BalancePreSpin.Equal(res.Spins[i-1].BalancePost) {
			t.Errorf("spin %d: pre-spin balance %s != previous post-spin %s",
				i+1, row.BalancePreSpin, res.Spins[i-1].BalancePost)
		}
	}

	win := res.Spins[2]
	if !win.Won || !win.Winnings.Equal(d(60)) {
		t.Errorf("winning spin: expected winnings 60, got won=%v winnings=%s", win.Won, win.Winnings)
	}
	if !res.Spins[0].Winnings.IsZero() {
		t.Errorf("losing spin should have zero winnings, got %s", res.Spins[0].Winnings)
	}
	last := res.Spins[3]
	if !last.Profit.Equal(d(80)) || !last.ProfitPct.Equal(d(0.8)) {
		t.Errorf("expected profit 80 (0.8), got %s (%s)", last.Profit, last.ProfitPct)
	}
	if !last.WinPct.Equal(d(0.5)) || !last.LossPct.Equal(d(0.5)) {
		t.Errorf("expected 0.5/0.5 rates, got %s/%s", last.WinPct, last.LossPct)
	}
	if res.Summary.Cycles != 2 {
		t.Errorf("a session-ending win must not open a new cycle: cycles=%d", res.Summary.Cycles)
	}
}

func TestRun_Bankrupt(t *testing.T) {
	p := model.Params{StartBalance: d(10), UnitBet: d(5), TargetProfit: d(100)}
	res, err := Run(context.Background(), p, Options{Wheel: &script{pockets: []int{0}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != model.OutcomeBankrupt {
		t.Errorf("expected bankrupt, got %s", res.Outcome)
	}
	if len(res.Spins) != 2 {
		t.Fatalf("expected 2 spins, got %d", len(res.Spins))
	}
	if !res.Snapshot.Balance.IsZero() {
		t.Errorf("expected zero balance, got %s", res.Snapshot.Balance)
	}
	if !res.Spins[1].ProfitPct.Equal(d(-1)) {
		t.Errorf("expected profit pct -1, got %s", res.Spins[1].ProfitPct)
	}
}

func TestRun_SpinCap(t *testing.T) {
	p := model.Params{StartBalance: d(1000), UnitBet: d(1), TargetProfit: d(500), MaxSpins: intPtr(7)}
	res, err := Run(context.Background(), p, Options{Wheel: &script{pockets: []int{12}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != model.OutcomeSpinCap {
		t.Errorf("expected spin_cap, got %s", res.Outcome)
	}
	if len(res.Spins) != 7 || res.Summary.TotalSpins != 7 {
		t.Errorf("expected 7 spins, got %d rows / %d total", len(res.Spins), res.Summary.TotalSpins)
	}
}

func TestRun_ZeroSpinCap(t *testing.T) {
	p := model.Params{StartBalance: d(100), UnitBet: d(1), TargetProfit: d(10), MaxSpins: intPtr(0)}
	res, err := Run(context.Background(), p, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != model.OutcomeSpinCap || len(res.Spins) != 0 {
		t.Errorf("expected spin_cap with no rows, got %s with %d rows", res.Outcome, len(res.Spins))
	}
	if !res.Summary.WinRate.IsZero() || res.Summary.Luck != string(stats.LuckUndetermined) {
		t.Errorf("zero-spin summary should have zero rate and undetermined luck, got %s / %s",
			res.Summary.WinRate, res.Summary.Luck)
	}
}

func TestRun_ZeroTargetStopsImmediately(t *testing.T) {
	p := model.Params{StartBalance: d(100), UnitBet: d(1), TargetProfit: d(0)}
	res, err := Run(context.Background(), p, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != model.OutcomeTargetReached || len(res.Spins) != 0 {
		t.Errorf("expected target_reached with no rows, got %s with %d rows", res.Outcome, len(res.Spins))
	}
}

func TestRun_IterationCeiling(t *testing.T) {
	p := model.Params{StartBalance: d(1e12), UnitBet: d(0.01), TargetProfit: d(1e12)}
	res, err := Run(context.Background(), p, Options{
		Wheel:         &script{pockets: []int{0}},
		MaxIterations: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != model.OutcomeIterationCeiling {
		t.Errorf("expected iteration_ceiling, got %s", res.Outcome)
	}
	if len(res.Spins) != 50 {
		t.Errorf("expected 50 spins, got %d", len(res.Spins))
	}
	if res.Summary.LargestFibIndex != 50 {
		t.Errorf("expected largest index 50, got %d", res.Summary.LargestFibIndex)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := model.Params{StartBalance: d(100), UnitBet: d(1), TargetProfit: d(10)}
	_, err := Run(ctx, p, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRun_RandomInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	for i := 0; i < 50; i++ {
		p := model.Params{
			StartBalance: d(1500),
			UnitBet:      d(5),
			MaxBet:       d(float64(rng.IntN(3)) * 50),
			TargetProfit: d(100),
			MaxSpins:     intPtr(2000),
		}
		res, err := Run(context.Background(), p, Options{Wheel: wheel.New(rng)})
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", i, err)
		}

		for _, row := range res.Spins {
			if row.BalancePost.IsNegative() {
				t.Fatalf("run %d spin %d: negative balance %s", i, row.Spin, row.BalancePost)
			}
			if row.Wins+row.Losses != row.Spin {
				t.Fatalf("run %d spin %d: wins %d + losses %d != spins", i, row.Spin, row.Wins, row.Losses)
			}
			if p.MaxBet.IsPositive() && row.Bet.GreaterThan(p.MaxBet) {
				t.Fatalf("run %d spin %d: bet %s above max bet %s", i, row.Spin, row.Bet, p.MaxBet)
			}
		}

		switch res.Outcome {
		case model.OutcomeTargetReached:
			if res.Summary.Result.Amount.LessThan(p.TargetProfit) {
				t.Errorf("run %d: target_reached with profit %s", i, res.Summary.Result.Amount)
			}
		case model.OutcomeBankrupt:
			if !res.Snapshot.Balance.IsZero() {
				t.Errorf("run %d: bankrupt with balance %s", i, res.Snapshot.Balance)
			}
		case model.OutcomeSpinCap:
			if len(res.Spins) != 2000 {
				t.Errorf("run %d: spin_cap after %d spins", i, len(res.Spins))
			}
		default:
			t.Errorf("run %d: unexpected outcome %s", i, res.Outcome)
		}
	}
}

func TestProfitSeries(t *testing.T) {
	rows := []model.SpinResult{
		{Spin: 1, Profit: d(-5)},
		{Spin: 2, Profit: d(25)},
	}
	points := ProfitSeries(rows)
	if len(points) != 2 || points[1].Spin != 2 || !points[1].Profit.Equal(d(25)) {
		t.Errorf("unexpected series: %+v", points)
	}
}

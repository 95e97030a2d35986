// Package simulation drives one betting session to completion: it spins
// the wheel, settles each bet, and records a row per spin.
package simulation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/atmx/fib-dozens/internal/fib"
	"github.com/atmx/fib-dozens/internal/model"
	"github.com/atmx/fib-dozens/internal/session"
	"github.com/atmx/fib-dozens/internal/stats"
	"github.com/atmx/fib-dozens/internal/wheel"
)

// DefaultMaxIterations bounds a run that has no spin cap and never reaches
// its stopping condition.
const DefaultMaxIterations = 100_000

// ctxCheckInterval is how many spins pass between context checks.
const ctxCheckInterval = 1024

// Spinner draws one roulette outcome. *wheel.Wheel satisfies it.
type Spinner interface {
	Spin() (number int, won bool)
}

// Options tune a run without changing its betting semantics.
type Options struct {
	// Wheel draws outcomes; nil uses the process-wide generator.
	Wheel Spinner

	// MaxIterations is the hard spin ceiling; <= 0 uses DefaultMaxIterations.
	MaxIterations int

	// FibCacheLimit bounds the run's multiplier table; <= 0 uses fib.DefaultLimit.
	FibCacheLimit int
}

// Result is the output of a finished run.
type Result struct {
	Outcome  string
	Snapshot session.Snapshot
	Spins    []model.SpinResult
	Summary  model.Summary
}

// Run plays a session with parameters p until it reaches its target, goes
// bankrupt, hits the spin cap, or hits the iteration ceiling. Parameters
// are assumed valid. The only error is cancellation of ctx.
func Run(ctx context.Context, p model.Params, opts Options) (*Result, error) {
	spinner := opts.Wheel
	if spinner == nil {
		spinner = wheel.New(nil)
	}
	ceiling := opts.MaxIterations
	if ceiling <= 0 {
		ceiling = DefaultMaxIterations
	}

	sess := session.New(session.Config{
		StartBalance: p.StartBalance,
		UnitBet:      p.UnitBet,
		MaxBet:       p.MaxBet,
		TargetProfit: p.TargetProfit,
	}, fib.NewTable(opts.FibCacheLimit))

	rows := make([]model.SpinResult, 0, capacityHint(p.MaxSpins, ceiling))
	var outcome string

	for {
		if sess.ReachedTarget() {
			outcome = stopReason(sess)
			break
		}
		if p.MaxSpins != nil && sess.Spins() >= *p.MaxSpins {
			outcome = model.OutcomeSpinCap
			break
		}
		if sess.Spins() >= ceiling {
			outcome = model.OutcomeIterationCeiling
			break
		}
		if sess.Spins()%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("simulation aborted after %d spins: %w", sess.Spins(), err)
			}
		}

		row, err := step(sess, spinner)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	snap := sess.Snapshot()
	return &Result{
		Outcome:  outcome,
		Snapshot: snap,
		Spins:    rows,
		Summary:  stats.Summarize(snap),
	}, nil
}

// step plays one spin and builds its row.
func step(sess *session.Session, spinner Spinner) (model.SpinResult, error) {
	pre := sess.Balance()
	cycle := sess.Cycle()
	number, won := spinner.Spin()

	bet, err := sess.PlaceBet(won)
	if err != nil {
		return model.SpinResult{}, fmt.Errorf("simulation: spin %d: %w", sess.Spins()+1, err)
	}
	post := sess.Balance()
	start := sess.Config().StartBalance

	winnings := decimal.Zero
	if won {
		winnings = post.Sub(pre).Add(bet.Stake)
	}

	return model.SpinResult{
		Spin:           sess.Spins(),
		BalancePreSpin: pre,
		Cycle:          cycle,
		FibIndex:       bet.Index,
		FibMultiplier:  bet.Multiplier,
		Bet:            bet.Stake,
		Number:         number,
		Won:            won,
		Winnings:       winnings,
		BalancePost:    post,
		Profit:         post.Sub(start),
		ProfitPct:      stats.Ratio(post, start).Sub(decimal.NewFromInt(1)),
		Wins:           sess.Wins(),
		Losses:         sess.Losses(),
		WinPct:         stats.Rate(sess.Wins(), sess.Spins()),
		LossPct:        stats.Rate(sess.Losses(), sess.Spins()),
	}, nil
}

func stopReason(sess *session.Session) string {
	if sess.ActualProfit().GreaterThanOrEqual(sess.Config().TargetProfit) {
		return model.OutcomeTargetReached
	}
	return model.OutcomeBankrupt
}

// capacityHint sizes the row slice without reserving the whole ceiling.
func capacityHint(maxSpins *int, ceiling int) int {
	n := 256
	if maxSpins != nil && *maxSpins < n {
		n = *maxSpins
	}
	return min(n, ceiling)
}

// ProfitSeries extracts the profit-over-time series from a run's rows.
func ProfitSeries(rows []model.SpinResult) []model.ProfitPoint {
	points := make([]model.ProfitPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, model.ProfitPoint{Spin: r.Spin, Profit: r.Profit})
	}
	return points
}

// Package model defines the core domain types shared across the simulator.
// All monetary values and ratios use shopspring/decimal.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Params are the collaborator-supplied inputs of one simulation run.
type Params struct {
	StartBalance decimal.Decimal `json:"start_balance"`
	UnitBet      decimal.Decimal `json:"unit_bet"`
	MaxBet       decimal.Decimal `json:"max_bet"` // 0 = no ceiling
	TargetProfit decimal.Decimal `json:"target_profit"`
	MaxSpins     *int            `json:"max_spins,omitempty"` // nil = unbounded
}

// SpinResult is an immutable record of one completed spin.
type SpinResult struct {
	Spin           int             `json:"spin"`
	BalancePreSpin decimal.Decimal `json:"balance_pre_spin"`
	Cycle          int             `json:"cycle"`
	FibIndex       int             `json:"fib_index"`
	FibMultiplier  int64           `json:"fib_multiplier"`
	Bet            decimal.Decimal `json:"current_bet"`
	Number         int             `json:"number"`
	Won            bool            `json:"won"`
	Winnings       decimal.Decimal `json:"winnings"` // 0 if lost
	BalancePost    decimal.Decimal `json:"balance_post_spin"`
	Profit         decimal.Decimal `json:"profit"`
	ProfitPct      decimal.Decimal `json:"profit_pct"` // fraction of starting balance
	Wins           int             `json:"wins"`
	Losses         int             `json:"losses"`
	WinPct         decimal.Decimal `json:"win_pct"`
	LossPct        decimal.Decimal `json:"loss_pct"`
}

// Amounts expresses one money value in three units.
type Amounts struct {
	Amount decimal.Decimal `json:"amount"`
	Pct    decimal.Decimal `json:"pct"`   // fraction of starting balance
	Units  decimal.Decimal `json:"units"` // multiples of the unit bet
}

// Summary is the statistics bundle of a finished session.
type Summary struct {
	Target Amounts `json:"target"`
	Result Amounts `json:"result"`

	TotalSpins      int             `json:"total_spins"`
	Wins            int             `json:"wins"`
	Losses          int             `json:"losses"`
	WinRate         decimal.Decimal `json:"win_rate"`
	ExpectedWinRate decimal.Decimal `json:"expected_win_rate"`
	Cycles          int             `json:"cycles"`

	LargestFibIndex   int             `json:"largest_fib_index"`
	LargestMultiplier decimal.Decimal `json:"largest_multiplier"`
	LargestBet        decimal.Decimal `json:"largest_bet"`
	LargestIndexOdds  float64         `json:"largest_index_odds"` // P(that many losses in a row)

	CDF          float64 `json:"cdf"`           // P(X <= wins)
	ExceedChance float64 `json:"exceed_chance"` // 1 - CDF
	Luck         string  `json:"luck"`
	LuckMessage  string  `json:"luck_message"`
}

// Run statuses describing why a simulation stopped.
const (
	OutcomeTargetReached    = "target_reached"
	OutcomeBankrupt         = "bankrupt"
	OutcomeSpinCap          = "spin_cap"
	OutcomeIterationCeiling = "iteration_ceiling"
)

// Run is the archived report of one finished simulation. Once created it
// is never modified.
type Run struct {
	ID           string          `json:"id"`
	Params       Params          `json:"params"`
	Outcome      string          `json:"outcome"`
	FinalBalance decimal.Decimal `json:"final_balance"`
	Summary      Summary         `json:"summary"`
	Spins        []SpinResult    `json:"spins,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ProfitPoint is one sample of the profit-over-time series.
type ProfitPoint struct {
	Spin   int             `json:"spin"`
	Profit decimal.Decimal `json:"profit"`
}

// Package session implements the betting state machine of one Fibonacci
// dozens playthrough.
//
// A session starts ACTIVE and moves to TERMINATED once the profit target is
// met or the balance is exhausted. The only transition is PlaceBet; bets
// placed on a terminated session are rejected.
//
// All monetary values use shopspring/decimal.
package session

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrTerminated is returned when a bet is placed on a terminated session.
var ErrTerminated = errors.New("session: bet placed on a terminated session")

// Payout is the amount credited per unit staked on a winning spin. The
// stake is debited first, so the net gain on a win is five times the stake.
var Payout = decimal.NewFromInt(6)

// State is the lifecycle tag of a session.
type State int

const (
	Active State = iota
	Terminated
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Multipliers looks up the bet multiplier for a sequence index.
type Multipliers interface {
	Multiplier(n int) int64
}

// Config holds the caller-validated parameters of a session.
type Config struct {
	StartBalance decimal.Decimal
	UnitBet      decimal.Decimal
	MaxBet       decimal.Decimal // zero means no ceiling
	TargetProfit decimal.Decimal
}

// Bet describes one settled bet.
type Bet struct {
	Index      int             // sequence index in effect for this bet
	Multiplier int64           // F(Index)
	Stake      decimal.Decimal // amount actually risked after clamping
	Won        bool
}

// Session is one simulated playthrough. It is not safe for concurrent use.
type Session struct {
	cfg  Config
	mult Multipliers

	state             State
	balance           decimal.Decimal
	currentBet        decimal.Decimal
	fibIndex          int
	largestIndex      int
	largestMultiplier int64
	cycle             int
	spins             int
	wins              int
	losses            int
}

// New creates a session at index 1, cycle 1. A session whose stopping
// condition already holds (for example a zero target) starts terminated.
func New(cfg Config, mult Multipliers) *Session {
	s := &Session{
		cfg:               cfg,
		mult:              mult,
		balance:           cfg.StartBalance,
		currentBet:        cfg.UnitBet,
		fibIndex:          1,
		largestIndex:      1,
		largestMultiplier: 1,
		cycle:             1,
	}
	if s.ReachedTarget() {
		s.state = Terminated
	}
	return s
}

// PlaceBet settles one spin with the given outcome and returns the bet that
// was placed. The stake is unit × F(index), clamped to the balance and to
// the max bet when one is set. A win credits Payout × stake and resets the
// index to 1; a loss advances the index.
func (s *Session) PlaceBet(won bool) (Bet, error) {
	if s.state == Terminated {
		return Bet{}, ErrTerminated
	}

	index := s.fibIndex
	multiplier := s.mult.Multiplier(index)
	if index > s.largestIndex {
		s.largestIndex = index
		s.largestMultiplier = multiplier
	}

	stake := decimal.Min(s.cfg.UnitBet.Mul(decimal.NewFromInt(multiplier)), s.balance)
	if s.cfg.MaxBet.IsPositive() {
		stake = decimal.Min(stake, s.cfg.MaxBet)
	}
	s.currentBet = stake
	s.balance = s.balance.Sub(stake)

	if won {
		s.balance = s.balance.Add(stake.Mul(Payout))
		s.fibIndex = 1
		s.wins++
	} else {
		s.fibIndex++
		s.losses++
	}
	s.spins++

	// A new cycle begins after a winning reset, unless that win ended the
	// session.
	if s.ReachedTarget() {
		s.state = Terminated
	} else if won {
		s.cycle++
	}

	return Bet{Index: index, Multiplier: multiplier, Stake: stake, Won: won}, nil
}

// ReachedTarget reports whether the profit target is met or the balance is
// exhausted. It has no side effects.
func (s *Session) ReachedTarget() bool {
	return s.ActualProfit().GreaterThanOrEqual(s.cfg.TargetProfit) ||
		s.balance.LessThanOrEqual(decimal.Zero)
}

// ActualProfit returns balance minus starting balance.
func (s *Session) ActualProfit() decimal.Decimal {
	return s.balance.Sub(s.cfg.StartBalance)
}

// State returns the lifecycle tag.
func (s *Session) State() State { return s.state }

// Balance returns the current balance.
func (s *Session) Balance() decimal.Decimal { return s.balance }

// CurrentBet returns the stake of the last bet, or the unit bet before the
// first one.
func (s *Session) CurrentBet() decimal.Decimal { return s.currentBet }

// FibIndex returns the index the next bet will use.
func (s *Session) FibIndex() int { return s.fibIndex }

// Cycle returns the current cycle number, starting at 1.
func (s *Session) Cycle() int { return s.cycle }

// Spins returns the number of settled bets.
func (s *Session) Spins() int { return s.spins }

// Wins returns the number of winning bets.
func (s *Session) Wins() int { return s.wins }

// Losses returns the number of losing bets.
func (s *Session) Losses() int { return s.losses }

// Config returns the parameters the session was created with.
func (s *Session) Config() Config { return s.cfg }

// Snapshot is a point-in-time copy of a session's counters.
type Snapshot struct {
	StartBalance      decimal.Decimal
	Balance           decimal.Decimal
	UnitBet           decimal.Decimal
	MaxBet            decimal.Decimal
	TargetProfit      decimal.Decimal
	State             State
	FibIndex          int
	LargestIndex      int
	LargestMultiplier int64
	Cycle             int
	Spins             int
	Wins              int
	Losses            int
}

// Snapshot returns a copy of the session's counters.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		StartBalance:      s.cfg.StartBalance,
		Balance:           s.balance,
		UnitBet:           s.cfg.UnitBet,
		MaxBet:            s.cfg.MaxBet,
		TargetProfit:      s.cfg.TargetProfit,
		State:             s.state,
		FibIndex:          s.fibIndex,
		LargestIndex:      s.largestIndex,
		LargestMultiplier: s.largestMultiplier,
		Cycle:             s.cycle,
		Spins:             s.spins,
		Wins:              s.wins,
		Losses:            s.losses,
	}
}

// ActualProfit returns balance minus starting balance.
func (s Snapshot) ActualProfit() decimal.Decimal {
	return s.Balance.Sub(s.StartBalance)
}

// Package params validates the inputs of a simulation run before the
// betting engine sees them. The engine itself assumes valid input.
package params

import (
	"errors"
	"fmt"

	"github.com/atmx/fib-dozens/internal/model"
)

var (
	ErrStartBalance = errors.New("params: start_balance must be positive")
	ErrUnitBet      = errors.New("params: unit_bet must be positive")
	ErrMaxBet       = errors.New("params: max_bet must not be negative")
	ErrTargetProfit = errors.New("params: target_profit must not be negative")
	ErrMaxSpins     = errors.New("params: max_spins out of range")
)

// Validator checks run parameters against service limits.
type Validator struct {
	// SpinLimit is the largest accepted max_spins; 0 means no limit.
	SpinLimit int
}

// NewValidator creates a validator that accepts max_spins up to spinLimit.
func NewValidator(spinLimit int) *Validator {
	if spinLimit < 0 {
		spinLimit = 0
	}
	return &Validator{SpinLimit: spinLimit}
}

// Validate returns nil if p is acceptable, or a wrapped sentinel error
// naming the first offending field.
func (v *Validator) Validate(p model.Params) error {
	if !p.StartBalance.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrStartBalance, p.StartBalance)
	}
	if !p.UnitBet.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrUnitBet, p.UnitBet)
	}
	if p.MaxBet.IsNegative() {
		return fmt.Errorf("%w: got %s", ErrMaxBet, p.MaxBet)
	}
	if p.TargetProfit.IsNegative() {
		return fmt.Errorf("%w: got %s", ErrTargetProfit, p.TargetProfit)
	}
	if p.MaxSpins != nil {
		n := *p.MaxSpins
		if n < 1 {
			return fmt.Errorf("%w: got %d (must be >= 1)", ErrMaxSpins, n)
		}
		if v.SpinLimit > 0 && n > v.SpinLimit {
			return fmt.Errorf("%w: got %d (limit %d)", ErrMaxSpins, n, v.SpinLimit)
		}
	}
	return nil
}

// IsInvalid reports whether err came from parameter validation.
func IsInvalid(err error) bool {
	for _, sentinel := range []error{ErrStartBalance, ErrUnitBet, ErrMaxBet, ErrTargetProfit, ErrMaxSpins} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

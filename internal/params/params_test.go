package params

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/atmx/fib-dozens/internal/model"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func intPtr(n int) *int { return &n }

func valid() model.Params {
	return model.Params{
		StartBalance: d(1500),
		UnitBet:      d(5),
		TargetProfit: d(100),
	}
}

func TestValidate_Valid(t *testing.T) {
	v := NewValidator(1000)

	p := valid()
	if err := v.Validate(p); err != nil {
		t.Errorf("expected valid params, got %v", err)
	}

	p.MaxBet = d(50)
	p.MaxSpins = intPtr(1000)
	p.TargetProfit = d(0)
	if err := v.Validate(p); err != nil {
		t.Errorf("expected valid params with caps, got %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	v := NewValidator(1000)

	tests := []struct {
		name   string
		mutate func(*model.Params)
		want   error
	}{
		{"zero start balance", func(p *model.Params) { p.StartBalance = d(0) }, ErrStartBalance},
		{"negative start balance", func(p *model.Params) { p.StartBalance = d(-1) }, ErrStartBalance},
		{"zero unit bet", func(p *model.Params) { p.UnitBet = d(0) }, ErrUnitBet},
		{"negative max bet", func(p *model.Params) { p.MaxBet = d(-5) }, ErrMaxBet},
		{"negative target", func(p *model.Params) { p.TargetProfit = d(-10) }, ErrTargetProfit},
		{"zero max spins", func(p *model.Params) { p.MaxSpins = intPtr(0) }, ErrMaxSpins},
		{"max spins over limit", func(p *model.Params) { p.MaxSpins = intPtr(1001) }, ErrMaxSpins},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(&p)
			err := v.Validate(p)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if !IsInvalid(err) {
				t.Errorf("IsInvalid should recognise %v", err)
			}
		})
	}
}

func TestValidate_NoSpinLimit(t *testing.T) {
	v := NewValidator(0)
	p := valid()
	p.MaxSpins = intPtr(10_000_000)
	if err := v.Validate(p); err != nil {
		t.Errorf("expected no limit, got %v", err)
	}
}

func TestIsInvalid_OtherErrors(t *testing.T) {
	if IsInvalid(fmt.Errorf("store: %w", errors.New("boom"))) {
		t.Error("unrelated errors should not be treated as invalid params")
	}
	if IsInvalid(nil) {
		t.Error("nil is not an invalid-params error")
	}
}

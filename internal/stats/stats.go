// Package stats summarizes a finished betting session: target and result
// in three units, win/loss rates, the odds of the longest losing run, and a
// luck rating from the binomial distribution of the win count.
package stats

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/atmx/fib-dozens/internal/model"
	"github.com/atmx/fib-dozens/internal/session"
	"github.com/atmx/fib-dozens/internal/wheel"
)

// RatioScale is the number of decimal places kept for ratios.
var RatioScale int32 = 8

var (
	// WinProbability is the per-spin chance of hitting the group (6/37).
	WinProbability = float64(wheel.GroupSize) / float64(wheel.Pockets)

	// LossProbability is the per-spin chance of missing it (31/37).
	LossProbability = 1 - WinProbability

	// ExpectedWinRate is WinProbability as a decimal ratio.
	ExpectedWinRate = Ratio(decimal.NewFromInt(wheel.GroupSize), decimal.NewFromInt(wheel.Pockets))
)

// Ratio returns num/den rounded to RatioScale, or zero when den is zero.
func Ratio(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den).Round(RatioScale)
}

// Rate returns count/spins as a decimal ratio, or zero when no spins were
// played.
func Rate(count, spins int) decimal.Decimal {
	return Ratio(decimal.NewFromInt(int64(count)), decimal.NewFromInt(int64(spins)))
}

// BinomialCDF returns P(X <= wins) for X ~ Binomial(spins, p).
func BinomialCDF(wins, spins int, p float64) float64 {
	if spins <= 0 {
		return 1
	}
	dist := distuv.Binomial{N: float64(spins), P: p}
	return dist.CDF(float64(wins))
}

// LosingStreakOdds returns the probability of losing n spins in a row.
func LosingStreakOdds(n int) float64 {
	return math.Pow(LossProbability, float64(n))
}

// Summarize computes the statistics bundle for a finished session.
func Summarize(s session.Snapshot) model.Summary {
	profit := s.ActualProfit()

	sum := model.Summary{
		Target:          amounts(s.TargetProfit, s),
		Result:          amounts(profit, s),
		TotalSpins:      s.Spins,
		Wins:            s.Wins,
		Losses:          s.Losses,
		WinRate:         Rate(s.Wins, s.Spins),
		ExpectedWinRate: ExpectedWinRate,
		Cycles:          s.Cycle,
		LargestFibIndex: s.LargestIndex,
	}

	// The largest bet reported is the nominal one, capped by the max bet.
	mult := decimal.NewFromInt(s.LargestMultiplier)
	sum.LargestMultiplier = mult
	sum.LargestBet = mult.Mul(s.UnitBet)
	if s.MaxBet.IsPositive() {
		sum.LargestMultiplier = decimal.Min(mult, Ratio(s.MaxBet, s.UnitBet))
		sum.LargestBet = decimal.Min(sum.LargestBet, s.MaxBet)
	}
	sum.LargestIndexOdds = LosingStreakOdds(s.LargestIndex)

	if s.Spins == 0 {
		sum.CDF = 1
		sum.Luck = string(LuckUndetermined)
		sum.LuckMessage = Message(LuckUndetermined, 0)
		return sum
	}

	sum.CDF = BinomialCDF(s.Wins, s.Spins, WinProbability)
	sum.ExceedChance = 1 - sum.CDF
	luck := Classify(sum.CDF)
	sum.Luck = string(luck)
	sum.LuckMessage = Message(luck, sum.ExceedChance)
	return sum
}

func amounts(v decimal.Decimal, s session.Snapshot) model.Amounts {
	return model.Amounts{
		Amount: v,
		Pct:    Ratio(v, s.StartBalance),
		Units:  Ratio(v, s.UnitBet),
	}
}

// Luck is a percentile band of the observed win count.
type Luck string

const (
	LuckUndetermined Luck = "undetermined"
	LuckVeryBad      Luck = "very_bad_luck"
	LuckUnlucky      Luck = "unlucky"
	LuckBelowAverage Luck = "below_average"
	LuckAboveAverage Luck = "above_average"
	LuckFortunate    Luck = "fortunate"
	LuckVeryLucky    Luck = "very_lucky"
)

// Classify maps a binomial CDF value to its luck band.
func Classify(cdf float64) Luck {
	switch {
	case cdf <= 0.10:
		return LuckVeryBad
	case cdf <= 0.25:
		return LuckUnlucky
	case cdf <= 0.50:
		return LuckBelowAverage
	case cdf <= 0.75:
		return LuckAboveAverage
	case cdf <= 0.90:
		return LuckFortunate
	default:
		return LuckVeryLucky
	}
}

var phrases = map[Luck]string{
	LuckVeryBad:      "Very bad luck, there was a",
	LuckUnlucky:      "Unlucky, there was a",
	LuckBelowAverage: "Below average, there was a",
	LuckAboveAverage: "Above average, there was only a",
	LuckFortunate:    "Fortunate, there was only a",
	LuckVeryLucky:    "Very lucky! There was only a",
}

// Message renders the luck band with the chance of having more wins.
func Message(l Luck, exceed float64) string {
	phrase, ok := phrases[l]
	if !ok {
		return "No spins were played, so luck cannot be assessed."
	}
	return fmt.Sprintf("%s %.2f%% chance to have more wins than this.", phrase, exceed*100)
}

// Package wheel draws roulette outcomes for the dozens strategy.
package wheel

import "math/rand/v2"

const (
	// Pockets is the number of pockets on a single-zero wheel (0-36).
	Pockets = 37

	// GroupLow and GroupHigh bound the 6-number group the strategy bets on.
	GroupLow  = 31
	GroupHigh = 36

	// GroupSize is the number of winning pockets.
	GroupSize = GroupHigh - GroupLow + 1
)

// Source yields uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// globalSource draws from the process-wide math/rand/v2 generator, which
// is safe for concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Wheel spins a single-zero roulette wheel.
type Wheel struct {
	src Source
}

// New creates a wheel. A nil source uses the process-wide generator.
func New(src Source) *Wheel {
	if src == nil {
		src = globalSource{}
	}
	return &Wheel{src: src}
}

// Spin draws one pocket uniformly from 0-36 and reports whether it falls
// in the 31-36 group.
func (w *Wheel) Spin() (number int, won bool) {
	number = w.src.IntN(Pockets)
	return number, IsWin(number)
}

// IsWin reports whether number is in the winning group.
func IsWin(number int) bool {
	return number >= GroupLow && number <= GroupHigh
}

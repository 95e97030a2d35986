// Package fib implements the multiplier sequence used to size bets in the
// Fibonacci dozens strategy.
//
// The sequence is indexed from 1 and follows a skip-one recurrence:
//
//	F(1) = F(2) = F(3) = 1
//	F(n) = F(n-2) + F(n-3)   for n > 3
//
// giving 1, 1, 1, 2, 2, 3, 4, 5, 7, 9, 12, 16, ...
//
// Lookups go through a Table owned by one simulation run. The table is
// bounded, so a long session cannot grow it without limit, and no state is
// shared between runs.
package fib

import (
	"fmt"
	"math"
)

// DefaultLimit is the number of values a Table memoizes when no explicit
// limit is given. Losing this many spins in a row has a probability far
// below anything a simulation can reach.
const DefaultLimit = 256

// seedLen is the number of leading ones the recurrence starts from.
const seedLen = 3

// Table memoizes sequence values up to a fixed limit. It is not safe for
// concurrent use; each run creates its own.
type Table struct {
	limit int
	memo  []int64 // memo[i] holds F(i+1)
}

// NewTable creates a table that stores at most limit values. A limit below
// the seed length falls back to DefaultLimit.
func NewTable(limit int) *Table {
	if limit < seedLen {
		limit = DefaultLimit
	}
	memo := make([]int64, seedLen, min(limit, 64))
	for i := range memo {
		memo[i] = 1
	}
	return &Table{limit: limit, memo: memo}
}

// Limit returns the maximum number of memoized values.
func (t *Table) Limit() int {
	return t.limit
}

// Len returns the number of values currently memoized.
func (t *Table) Len() int {
	return len(t.memo)
}

// Multiplier returns F(n). It panics if n < 1.
//
// Indices inside the limit are memoized. Indices beyond it are computed by
// rolling forward from the last three stored values without growing the
// table. Values saturate at math.MaxInt64.
func (t *Table) Multiplier(n int) int64 {
	if n < 1 {
		panic(fmt.Sprintf("fib: index %d out of range (must be >= 1)", n))
	}
	if n <= len(t.memo) {
		return t.memo[n-1]
	}

	for len(t.memo) < n && len(t.memo) < t.limit {
		k := len(t.memo)
		t.memo = append(t.memo, satAdd(t.memo[k-2], t.memo[k-3]))
	}
	if n <= len(t.memo) {
		return t.memo[n-1]
	}

	// a = F(i-3), b = F(i-2), c = F(i-1) for the next i.
	k := len(t.memo)
	a, b, c := t.memo[k-3], t.memo[k-2], t.memo[k-1]
	for i := k + 1; i <= n; i++ {
		a, b, c = b, c, satAdd(a, b)
	}
	return c
}

// satAdd adds two non-negative values, clamping at math.MaxInt64.
func satAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

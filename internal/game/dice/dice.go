// Package dice provides the randomness abstraction and roll-result types
// for the Integration Quest combat and dungeon engines.
package dice

import (
	"fmt"
	"strconv"
)

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == max(0, sum(Dice) + Modifier).
type RollResult struct {
	Expression string // original notation string, e.g. "2d6+3"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier, clamped to a
// minimum of 0. A large negative modifier can never drive a roll below zero.
//
// Postcondition: return value == max(0, sum(r.Dice) + r.Modifier).
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	if total < 0 {
		return 0
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// Literal and degraded results (no dice rolled) render as "<notation> = <total>".
func (r RollResult) String() string {
	if len(r.Dice) == 0 {
		if r.Expression == "" {
			return strconv.Itoa(r.Total())
		}
		return fmt.Sprintf("%s = %d", r.Expression, r.Total())
	}
	diceStr := fmt.Sprintf("%v", r.Dice)
	modStr := fmt.Sprintf("%+d", r.Modifier)
	return fmt.Sprintf("%s → %s %s = %d", r.Expression, diceStr, modStr, r.Total())
}

// Source is the randomness provider for dice rolls and probability checks.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int

	// Float64 returns a uniform random float64 in [0, 1).
	Float64() float64
}

package dice

// D20Sides is the die used for critical checks.
const D20Sides = 20

// Roll evaluates an Expression using the given Source and returns a RollResult.
//
// Precondition: src must be non-nil.
// Postcondition: len(result.Dice) == expr.Count; each die is in [1, expr.Sides];
// result.Total() == max(0, sum(result.Dice) + result.Modifier).
func Roll(expr Expression, src Source) RollResult {
	var rolled []int
	if expr.Count > 0 && expr.Sides > 0 {
		rolled = make([]int, expr.Count)
		for i := range rolled {
			rolled[i] = src.Intn(expr.Sides) + 1
		}
	}
	return RollResult{
		Expression: expr.Raw,
		Dice:       rolled,
		Modifier:   expr.Modifier,
	}
}

// RollNotation parses notation and rolls it using src in a single call.
//
// Postcondition: never fails; malformed notation yields a result with
// Total() == 0 and no dice.
func RollNotation(notation string, src Source) RollResult {
	return Roll(Parse(notation), src)
}

// RollD20 draws a single d20 in [1, 20].
//
// Precondition: src must be non-nil.
func RollD20(src Source) int {
	return src.Intn(D20Sides) + 1
}

// CriticalHit performs an independent critical-hit check: a fresh d20 draw
// that succeeds on exactly a natural 20 (about a 5% chance).
func CriticalHit(src Source) bool {
	return RollD20(src) == D20Sides
}

// CriticalFail performs an independent critical-fail check: a fresh d20 draw
// that succeeds on exactly a natural 1.
func CriticalFail(src Source) bool {
	return RollD20(src) == 1
}

// Chance returns true with probability p using a uniform [0, 1) draw.
//
// Postcondition: always false for p <= 0; always true for p >= 1.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}

// Between returns a uniform random int in [min, max] inclusive.
//
// Precondition: max >= min.
func Between(src Source, min, max int) int {
	if max < min {
		panic("dice: Between called with max < min")
	}
	return min + src.Intn(max-min+1)
}

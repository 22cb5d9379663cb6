package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged dice rolling.
// All draws are logged at debug level with notation, dice values, modifier,
// and total so combat resolution leaves a full audit trail.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness source for collaborators that
// draw directly.
func (r *Roller) Source() Source {
	return r.src
}

// Roll evaluates expr and logs the result at debug level.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("notation", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollNotation parses notation and rolls it, logging the result.
//
// Postcondition: never fails; malformed notation yields a zero result.
func (r *Roller) RollNotation(notation string) RollResult {
	return r.Roll(Parse(notation))
}

// D20 draws a logged d20 in [1, 20].
func (r *Roller) D20() int {
	v := RollD20(r.src)
	r.logger.Debug("d20 draw", zap.Int("value", v))
	return v
}

// Chance performs a logged probability check that succeeds with probability p.
func (r *Roller) Chance(p float64) bool {
	ok := Chance(r.src, p)
	r.logger.Debug("chance check", zap.Float64("probability", p), zap.Bool("success", ok))
	return ok
}

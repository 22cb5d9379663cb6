package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// notationRe matches standard dice notation at the start of a string:
// "<count>d<sides>" with an optional "+N" or "-N" modifier suffix.
var notationRe = regexp.MustCompile(`^(\d+)d(\d+)([+-]\d+)?`)

// Expression represents a parsed dice notation ready to be rolled.
//
// A literal integer notation ("3") parses to Count == 0, Sides == 0 and the
// value stored in Modifier, so rolling it yields the literal total with no
// dice. Malformed notation parses to the all-zero form, which rolls to 0.
type Expression struct {
	Raw      string // original input string
	Count    int    // number of dice; 0 for literal and malformed notation
	Sides    int    // faces per die; 0 for literal and malformed notation
	Modifier int    // flat modifier, or the literal value itself
}

// Parse parses a dice notation string into an Expression. Supported forms:
// "2d6", "1d8+2", "3d4-1", and bare integers such as "5". Parsing is
// case-insensitive and ignores surrounding whitespace.
//
// Postcondition: Parse never fails. Notation that is neither dice nor a
// bare integer yields a zero-valued Expression that rolls to 0.
func Parse(notation string) Expression {
	s := strings.ToLower(strings.TrimSpace(notation))

	m := notationRe.FindStringSubmatch(s)
	if m == nil {
		if v, err := strconv.Atoi(s); err == nil {
			return Expression{Raw: notation, Modifier: v}
		}
		return Expression{Raw: notation}
	}

	count, _ := strconv.Atoi(m[1])
	sides, _ := strconv.Atoi(m[2])
	modifier := 0
	if m[3] != "" {
		modifier, _ = strconv.Atoi(m[3])
	}

	return Expression{
		Raw:      notation,
		Count:    count,
		Sides:    sides,
		Modifier: modifier,
	}
}

// Check reports whether notation is well-formed dice notation or a bare
// integer. It exists for content validators; the rolling path itself never
// fails and should call Parse directly.
//
// Postcondition: Check(n) == nil implies Parse(n) preserves n's meaning.
func Check(notation string) error {
	s := strings.ToLower(strings.TrimSpace(notation))
	if s == "" {
		return fmt.Errorf("dice: empty notation")
	}
	if notationRe.MatchString(s) {
		return nil
	}
	if _, err := strconv.Atoi(s); err == nil {
		return nil
	}
	return fmt.Errorf("dice: invalid notation %q", notation)
}

package dice

import (
	"crypto/rand"
	"math/big"
)

// float64Bits is the number of random bits used to build a Float64 draw.
// 53 bits is the full precision of a float64 mantissa.
const float64Bits = 53

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are cryptographically secure and uniformly
// distributed over their stated ranges.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n); every value
// returned by Float64 is in [0, 1).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Float64 returns a cryptographically secure uniform float64 in [0, 1).
//
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Float64() float64 {
	max := big.NewInt(1 << float64Bits)
	val, err := rand.Int(rand.Reader, max)
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return float64(val.Int64()) / float64(int64(1)<<float64Bits)
}

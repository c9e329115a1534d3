// Package math holds the small numeric primitives the state transition
// function needs beyond what the standard library's math package covers for
// integers: the reward formulas divide by an integer square root, not a
// floating-point one.
package math

// IntegerSquareRoot returns floor(sqrt(n)) using Newton's (Babylonian)
// integer iteration (no float64 involved, so results stay exact up to
// MaxUint64).
func IntegerSquareRoot(n uint64) uint64 {
	if n < 2 {
		return n
	}
	x := n
	y := x/2 + x%2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}

package calculator

import "errors"

var errNoReturns = errors.New("no returns provided")

// CompoundReturn returns the product of (1 + r) over returns, minus 1.
func CompoundReturn(returns []float64) (float64, error) {
	if len(returns) == 0 {
		return 0, errNoReturns
	}
	growth := 1.0
	for _, r := range returns {
		growth *= 1 + r
	}
	return growth - 1, nil
}

// MeanReturn returns the arithmetic mean of returns.
func MeanReturn(returns []float64) (float64, error) {
	if len(returns) == 0 {
		return 0, errNoReturns
	}
	sum := 0.0
	for _, r := range returns {
		sum += r
	}
	return sum / float64(len(returns)), nil
}

// CountIncreases counts adjacent pairs where the later value is strictly greater.
// Returns must be in date order.
func CountIncreases(returns []float64) int {
	n := 0
	for i := 1; i < len(returns); i++ {
		if returns[i] > returns[i-1] {
			n++
		}
	}
	return n
}

// CountAbove counts values strictly greater than threshold.
func CountAbove(returns []float64, threshold float64) int {
	n := 0
	for _, r := range returns {
		if r > threshold {
			n++
		}
	}
	return n
}

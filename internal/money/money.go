// Package money implements the monetary arithmetic used by draw settlement.
// Every amount is an int64 in minor currency units; percentages are basis
// points. Floating point is deliberately absent: the gross = charity + net
// invariant must hold exactly, not approximately.
package money

import "fmt"

// BpsDenominator is the basis-point scale (10000 bps = 100%).
const BpsDenominator = 10000

// Share returns the round-half-up share of amount at the given basis
// points. Share(3000, 1000) = 300; Share(5, 1000) = 1 (0.5 rounds up).
func Share(amount int64, bps int32) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("negative amount %d", amount)
	}
	if bps < 0 || bps > BpsDenominator {
		return 0, fmt.Errorf("basis points %d out of range [0, %d]", bps, BpsDenominator)
	}
	return (amount*int64(bps) + BpsDenominator/2) / BpsDenominator, nil
}

// SplitEven divides total across n recipients so the parts sum to total
// exactly. The remainder of the integer division goes to the first
// total%n recipients, one unit each, in slice order; callers fix the
// order (entry-id ascending) to keep the distribution deterministic.
func SplitEven(total int64, n int) ([]int64, error) {
	if total < 0 {
		return nil, fmt.Errorf("negative total %d", total)
	}
	if n <= 0 {
		return nil, fmt.Errorf("non-positive recipient count %d", n)
	}
	base := total / int64(n)
	rem := total % int64(n)
	parts := make([]int64, n)
	for i := range parts {
		parts[i] = base
		if int64(i) < rem {
			parts[i]++
		}
	}
	return parts, nil
}

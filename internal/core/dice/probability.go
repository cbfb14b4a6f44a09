package dice

import "math"

// Probability holds the chance of each outcome band for a pool size.
// The four fields sum to 1.
type Probability struct {
	Bad   float64
	Mixed float64
	Good  float64
	Crit  float64
}

// PoolProbability computes the exact outcome distribution for a pool of n
// dice. For n <= 0 it models the desperate fallback (two dice, keep lower),
// which can never crit.
func PoolProbability(n int) Probability {
	if n <= 0 {
		// min of two d6: P(min >= k) = ((7-k)/6)^2
		minAtLeast := func(k int) float64 {
			return math.Pow(float64(7-k)/6, 2)
		}
		return Probability{
			Bad:   1 - minAtLeast(4),
			Mixed: minAtLeast(4) - minAtLeast(6),
			Good:  minAtLeast(6),
			Crit:  0,
		}
	}

	fn := float64(n)
	noSix := math.Pow(5.0/6.0, fn)
	oneSix := fn * (1.0 / 6.0) * math.Pow(5.0/6.0, fn-1)
	allBelowFour := math.Pow(3.0/6.0, fn)

	return Probability{
		Bad:   allBelowFour,
		Mixed: noSix - allBelowFour,
		Good:  oneSix,
		Crit:  1 - noSix - oneSix,
	}
}

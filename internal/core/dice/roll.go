// Package dice implements d6 pool rolling and outcome classification.
//
// Rolling is deterministic with respect to the provided rand source, so
// callers that need reproducible results (tests, replays) inject a seeded
// *rand.Rand.
package dice

import "math/rand"

// Outcome classifies the result of a d6 pool roll.
type Outcome string

const (
	// OutcomeBad indicates the best die was 1-3.
	OutcomeBad Outcome = "bad"
	// OutcomeMixed indicates the best die was 4-5.
	OutcomeMixed Outcome = "mixed"
	// OutcomeGood indicates a single 6.
	OutcomeGood Outcome = "good"
	// OutcomeCrit indicates two or more 6s.
	OutcomeCrit Outcome = "crit"
)

// RollPool rolls a d6 pool of the given size.
//
// A pool of zero or fewer dice uses the desperate fallback: two dice are
// rolled and only the lower one is kept, so the result is a single die.
// Otherwise exactly n dice are rolled.
func RollPool(rng *rand.Rand, n int) []int {
	if n <= 0 {
		a, b := rollD6(rng), rollD6(rng)
		return []int{min(a, b)}
	}
	rolls := make([]int, n)
	for i := range rolls {
		rolls[i] = rollD6(rng)
	}
	return rolls
}

// BestAndCrit returns the highest die in the roll (0 for an empty roll) and
// whether the roll is a critical, meaning at least two dice show a 6.
func BestAndCrit(rolls []int) (best int, crit bool) {
	sixes := 0
	for _, r := range rolls {
		if r > best {
			best = r
		}
		if r == 6 {
			sixes++
		}
	}
	return best, sixes >= 2
}

// Classify maps a roll to its outcome band.
func Classify(rolls []int) Outcome {
	best, crit := BestAndCrit(rolls)
	switch {
	case crit:
		return OutcomeCrit
	case best == 6:
		return OutcomeGood
	case best == 4 || best == 5:
		return OutcomeMixed
	default:
		return OutcomeBad
	}
}

// rollD6 rolls a single six-sided die.
func rollD6(rng *rand.Rand) int {
	return rng.Intn(6) + 1
}

package domain

import (
	"math/rand"
	"sort"
)

// MaxBluffers is how many bluffers join the real owner on stage
const MaxBluffers = 3

// SelectPresenters chooses who presents the current photo when leaving
// the volunteering phase. The real owner always presents; up to
// MaxBluffers volunteers are added, preferring players who have
// presented least often (volunteerCounts), ties broken by uniform
// random order. The final list is shuffled so presentation order is
// independent of the fairness sort.
//
// The random source is injected so tests can fix the seed.
func SelectPresenters(volunteers map[string]bool, realOwnerID string, volunteerCounts map[string]int, rng *rand.Rand) []string {
	presenters := make([]string, 0, MaxBluffers+1)
	if realOwnerID != "" {
		presenters = append(presenters, realOwnerID)
	}

	candidates := make([]string, 0, len(volunteers))
	for id, claimed := range volunteers {
		if claimed && id != realOwnerID {
			candidates = append(candidates, id)
		}
	}

	// Random tiebreak keys first, then a stable sort by volunteer count:
	// equal counts keep their shuffled order.
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		return volunteerCounts[candidates[i]] < volunteerCounts[candidates[j]]
	})

	if len(candidates) > MaxBluffers {
		candidates = candidates[:MaxBluffers]
	}
	presenters = append(presenters, candidates...)

	// Fisher-Yates over the full list for presentation order
	for i := len(presenters) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		presenters[i], presenters[j] = presenters[j], presenters[i]
	}

	return presenters
}

package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPresenters_OwnerAlwaysIncluded(t *testing.T) {
	volunteers := map[string]bool{"a": true, "b": true}
	rng := rand.New(rand.NewSource(1))

	presenters := SelectPresenters(volunteers, "owner", map[string]int{}, rng)

	assert.Contains(t, presenters, "owner")
	assert.Len(t, presenters, 3)
}

func TestSelectPresenters_CapsBluffers(t *testing.T) {
	volunteers := map[string]bool{
		"a": true, "b": true, "c": true, "d": true, "e": true,
	}
	rng := rand.New(rand.NewSource(7))

	presenters := SelectPresenters(volunteers, "owner", map[string]int{}, rng)

	require.Len(t, presenters, MaxBluffers+1)
	assert.Contains(t, presenters, "owner")
}

func TestSelectPresenters_PrefersLeastSelected(t *testing.T) {
	volunteers := map[string]bool{
		"a": true, "b": true, "c": true, "d": true, "e": true,
	}
	counts := map[string]int{"a": 0, "b": 3, "c": 1, "d": 0, "e": 5}

	// The three lowest counts must win regardless of seed
	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		presenters := SelectPresenters(volunteers, "owner", counts, rng)

		require.Len(t, presenters, 4, "seed %d", seed)
		assert.Contains(t, presenters, "owner", "seed %d", seed)
		assert.Contains(t, presenters, "a", "seed %d", seed)
		assert.Contains(t, presenters, "c", "seed %d", seed)
		assert.Contains(t, presenters, "d", "seed %d", seed)
		assert.NotContains(t, presenters, "b", "seed %d", seed)
		assert.NotContains(t, presenters, "e", "seed %d", seed)
	}
}

func TestSelectPresenters_SameSeedSameResult(t *testing.T) {
	volunteers := map[string]bool{
		"a": true, "b": true, "c": true, "d": true,
	}
	counts := map[string]int{"a": 1, "b": 1, "c": 1, "d": 1}

	first := SelectPresenters(volunteers, "owner", counts, rand.New(rand.NewSource(42)))
	second := SelectPresenters(volunteers, "owner", counts, rand.New(rand.NewSource(42)))

	assert.Equal(t, first, second)
}

func TestSelectPresenters_OwnerVolunteeringNotDoubled(t *testing.T) {
	// The owner claiming their own photo must not appear twice
	volunteers := map[string]bool{"owner": true, "a": true}
	rng := rand.New(rand.NewSource(3))

	presenters := SelectPresenters(volunteers, "owner", map[string]int{}, rng)

	seen := map[string]int{}
	for _, id := range presenters {
		seen[id]++
	}
	assert.Equal(t, 1, seen["owner"])
	assert.Len(t, presenters, 2)
}

func TestSelectPresenters_FalseClaimsIgnored(t *testing.T) {
	volunteers := map[string]bool{"a": true, "b": false}
	rng := rand.New(rand.NewSource(1))

	presenters := SelectPresenters(volunteers, "owner", map[string]int{}, rng)

	assert.NotContains(t, presenters, "b")
}

func TestSelectPresenters_NoVolunteers(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	presenters := SelectPresenters(map[string]bool{}, "owner", map[string]int{}, rng)

	assert.Equal(t, []string{"owner"}, presenters)
}

func TestSelectPresenters_NoOwner(t *testing.T) {
	// Owner deleted mid-round: the round still gets presenters
	volunteers := map[string]bool{"a": true, "b": true}
	rng := rand.New(rand.NewSource(1))

	presenters := SelectPresenters(volunteers, "", map[string]int{}, rng)

	assert.Len(t, presenters, 2)
	assert.NotContains(t, presenters, "")
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeResults_OwnerWinsOutright(t *testing.T) {
	votes := map[string]string{
		"v1": "owner",
		"v2": "owner",
		"v3": "bluffer1",
	}
	presenters := []string{"owner", "bluffer1", "bluffer2"}

	results := ComputeResults(votes, presenters, "owner")

	require.Len(t, results.Winners, 1)
	assert.Equal(t, "owner", results.Winners[0].PlayerID)
	assert.True(t, results.Winners[0].IsRealOwner)
	assert.Equal(t, 2, results.Winners[0].Votes)
	assert.Equal(t, PointsOwnerWin, results.Winners[0].PointsAwarded)
	assert.Equal(t, 2, results.RealOwnerVotes)
	assert.Equal(t, []string{"v1", "v2"}, results.CorrectVoters)
	assert.Equal(t, PointsVoterMajority, results.VoterPointsAwarded)
}

func TestComputeResults_BlufferWinsOutright(t *testing.T) {
	votes := map[string]string{
		"v1": "bluffer1",
		"v2": "bluffer1",
		"v3": "owner",
	}
	presenters := []string{"owner", "bluffer1"}

	results := ComputeResults(votes, presenters, "owner")

	require.Len(t, results.Winners, 1)
	assert.Equal(t, "bluffer1", results.Winners[0].PlayerID)
	assert.False(t, results.Winners[0].IsRealOwner)
	assert.Equal(t, PointsBlufferWin, results.Winners[0].PointsAwarded)

	// The bluff won, so the voter who found the truth gets the bigger bonus
	assert.Equal(t, []string{"v3"}, results.CorrectVoters)
	assert.Equal(t, PointsVoterMinority, results.VoterPointsAwarded)
}

func TestComputeResults_TieProducesMultipleWinners(t *testing.T) {
	votes := map[string]string{
		"v1": "owner",
		"v2": "bluffer1",
	}
	presenters := []string{"owner", "bluffer1", "bluffer2"}

	results := ComputeResults(votes, presenters, "owner")

	require.Len(t, results.Winners, 2)
	// Winners come out in presenter order
	assert.Equal(t, "owner", results.Winners[0].PlayerID)
	assert.Equal(t, PointsOwnerWin, results.Winners[0].PointsAwarded)
	assert.Equal(t, "bluffer1", results.Winners[1].PlayerID)
	assert.Equal(t, PointsBlufferWin, results.Winners[1].PointsAwarded)

	// Owner is among the winners, so correct voters get the small bonus
	assert.Equal(t, PointsVoterMajority, results.VoterPointsAwarded)
}

func TestComputeResults_NoVotesLoneOwnerAutoWins(t *testing.T) {
	results := ComputeResults(map[string]string{}, []string{"owner"}, "owner")

	require.Len(t, results.Winners, 1)
	assert.Equal(t, "owner", results.Winners[0].PlayerID)
	assert.True(t, results.Winners[0].IsRealOwner)
	assert.Equal(t, 0, results.Winners[0].Votes)
	assert.Equal(t, PointsOwnerWin, results.Winners[0].PointsAwarded)
}

func TestComputeResults_NoVotesLoneBlufferDoesNotAutoWin(t *testing.T) {
	// Real owner never volunteered and someone else presents alone
	results := ComputeResults(map[string]string{}, []string{"bluffer1"}, "owner")

	assert.Empty(t, results.Winners)
	assert.Empty(t, results.CorrectVoters)
}

func TestComputeResults_NoVotesMultiplePresenters(t *testing.T) {
	results := ComputeResults(map[string]string{}, []string{"owner", "bluffer1"}, "owner")

	assert.Empty(t, results.Winners)
}

func TestComputeResults_VotesForNonPresentersIgnored(t *testing.T) {
	votes := map[string]string{
		"v1": "spectator", // not on stage; dropped from the tally
		"v2": "bluffer1",
	}
	presenters := []string{"owner", "bluffer1"}

	results := ComputeResults(votes, presenters, "owner")

	require.Len(t, results.Winners, 1)
	assert.Equal(t, "bluffer1", results.Winners[0].PlayerID)
	assert.Equal(t, 1, results.Winners[0].Votes)
}

func TestComputeResults_Deterministic(t *testing.T) {
	votes := map[string]string{
		"v1": "owner",
		"v2": "bluffer1",
		"v3": "bluffer2",
	}
	presenters := []string{"owner", "bluffer1", "bluffer2"}

	first := ComputeResults(votes, presenters, "owner")
	for i := 0; i < 10; i++ {
		again := ComputeResults(votes, presenters, "owner")
		assert.Equal(t, first, again)
	}
}

func TestComputeResults_CorrectVotersSorted(t *testing.T) {
	votes := map[string]string{
		"zoe":   "owner",
		"alice": "owner",
		"mia":   "owner",
	}
	results := ComputeResults(votes, []string{"owner", "bluffer1"}, "owner")

	assert.Equal(t, []string{"alice", "mia", "zoe"}, results.CorrectVoters)
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhase_Next(t *testing.T) {
	tests := []struct {
		phase Phase
		next  Phase
		ok    bool
	}{
		{PhaseCountdown, PhaseVolunteering, true},
		{PhasePhoto, PhaseVolunteering, true},
		{PhaseVolunteering, PhasePitches, true},
		{PhasePitches, PhaseVoting, true},
		{PhaseVoting, PhaseResults, true},
		{PhaseResults, PhaseScoreboard, true},
		{PhaseScoreboard, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			next, ok := tt.phase.Next()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.next, next)
		})
	}
}

func TestPhase_NextCoversAllValidPhases(t *testing.T) {
	// Every valid phase except scoreboard must have a successor
	phases := []Phase{
		PhaseCountdown, PhasePhoto, PhaseVolunteering,
		PhasePitches, PhaseVoting, PhaseResults,
	}
	for _, p := range phases {
		next, ok := p.Next()
		assert.True(t, ok, "phase %s has no successor", p)
		assert.True(t, next.IsValid(), "successor of %s is invalid", p)
	}
}

func TestPhase_IsValid(t *testing.T) {
	assert.True(t, PhaseCountdown.IsValid())
	assert.True(t, PhaseScoreboard.IsValid())
	assert.False(t, Phase("intermission").IsValid())
	assert.False(t, Phase("").IsValid())
}

func TestMode_IsValid(t *testing.T) {
	assert.True(t, ModeLobby.IsValid())
	assert.True(t, ModeSlideshow.IsValid())
	assert.True(t, ModeGame.IsValid())
	assert.True(t, ModeFinished.IsValid())
	assert.False(t, Mode("paused").IsValid())
	assert.False(t, Mode("").IsValid())
}

package domain

import (
	"maps"
	"slices"
)

// Timer carries the deadline for the current phase. A nil Timer means
// no deadline: the host must advance manually.
type Timer struct {
	EndsAt   int64 `json:"endsAt"`   // unix millis
	Duration int   `json:"duration"` // seconds
}

// TimerSettings holds the per-phase durations in seconds used when a
// phase is entered. Zero disables the timer for that phase.
type TimerSettings struct {
	Countdown    int `json:"countdown"`
	Volunteering int `json:"volunteering"`
	Pitches      int `json:"pitches"`
	Voting       int `json:"voting"`
	Results      int `json:"results"`
}

// DefaultTimerSettings returns the stock durations. Pitches default to
// zero: the host triggers voting manually.
func DefaultTimerSettings() TimerSettings {
	return TimerSettings{
		Countdown:    3,
		Volunteering: 15,
		Pitches:      0,
		Voting:       30,
		Results:      10,
	}
}

// DurationFor returns the configured duration in seconds for a phase.
// Phases without a configurable timer (photo, scoreboard) return zero.
func (t TimerSettings) DurationFor(phase Phase) int {
	switch phase {
	case PhaseCountdown:
		return t.Countdown
	case PhaseVolunteering:
		return t.Volunteering
	case PhasePitches:
		return t.Pitches
	case PhaseVoting:
		return t.Voting
	case PhaseResults:
		return t.Results
	}
	return 0
}

// Set updates the duration for a phase, clamped at zero. Returns false
// for phases that have no configurable timer.
func (t *TimerSettings) Set(phase Phase, seconds int) bool {
	if seconds < 0 {
		seconds = 0
	}
	switch phase {
	case PhaseCountdown:
		t.Countdown = seconds
	case PhaseVolunteering:
		t.Volunteering = seconds
	case PhasePitches:
		t.Pitches = seconds
	case PhaseVoting:
		t.Voting = seconds
	case PhaseResults:
		t.Results = seconds
	default:
		return false
	}
	return true
}

// GameState is the singleton game record for a room
type GameState struct {
	Mode               Mode              `json:"mode"`
	Phase              Phase             `json:"phase"`
	PhotoQueue         []string          `json:"photoQueue"`
	CurrentPhotoID     string            `json:"currentPhotoId,omitempty"`
	RealOwnerID        string            `json:"realOwnerId,omitempty"`
	Timer              *Timer            `json:"timer,omitempty"`
	Volunteers         map[string]bool   `json:"volunteers"`
	SelectedPresenters []string          `json:"selectedPresenters"`
	Votes              map[string]string `json:"votes"`
	Results            *RoundResults     `json:"results,omitempty"`
	TimerSettings      TimerSettings     `json:"timerSettings"`
	AutoAdvance        bool              `json:"autoAdvance"`
}

// NewGameState returns a lobby-mode state with defaults applied
func NewGameState() *GameState {
	return &GameState{
		Mode:               ModeLobby,
		Phase:              PhasePhoto,
		PhotoQueue:         []string{},
		Volunteers:         map[string]bool{},
		SelectedPresenters: []string{},
		Votes:              map[string]string{},
		TimerSettings:      DefaultTimerSettings(),
		AutoAdvance:        true,
	}
}

// Clone returns a deep copy. Mutations go against a clone and are
// installed only once the store write succeeds, so a failed write
// never leaves cached state ahead of the store.
func (g *GameState) Clone() *GameState {
	c := *g
	c.PhotoQueue = slices.Clone(g.PhotoQueue)
	c.SelectedPresenters = slices.Clone(g.SelectedPresenters)
	c.Volunteers = maps.Clone(g.Volunteers)
	c.Votes = maps.Clone(g.Votes)
	if g.Timer != nil {
		t := *g.Timer
		c.Timer = &t
	}
	if g.Results != nil {
		r := *g.Results
		r.Winners = slices.Clone(g.Results.Winners)
		r.CorrectVoters = slices.Clone(g.Results.CorrectVoters)
		c.Results = &r
	}
	return &c
}

// ResetForNewGame reinitializes the round and queue state while keeping
// the host's timer settings and auto-advance preference.
func (g *GameState) ResetForNewGame() {
	settings := g.TimerSettings
	auto := g.AutoAdvance
	*g = *NewGameState()
	g.TimerSettings = settings
	g.AutoAdvance = auto
}

// StartRound places a dequeued photo into the current slot and resets
// all per-round state, entering countdown.
func (g *GameState) StartRound(photoID, ownerID string, timer *Timer) {
	g.Mode = ModeGame
	g.Phase = PhaseCountdown
	g.CurrentPhotoID = photoID
	g.RealOwnerID = ownerID
	g.Volunteers = map[string]bool{}
	g.SelectedPresenters = []string{}
	g.Votes = map[string]string{}
	g.Results = nil
	g.Timer = timer
}

// IsPresenter reports whether the player is among the selected presenters
func (g *GameState) IsPresenter(playerID string) bool {
	for _, id := range g.SelectedPresenters {
		if id == playerID {
			return true
		}
	}
	return false
}

// QueueContains reports whether the photo is already queued
func (g *GameState) QueueContains(photoID string) bool {
	for _, id := range g.PhotoQueue {
		if id == photoID {
			return true
		}
	}
	return false
}

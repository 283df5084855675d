package domain

// Mode is the top-level state of a room
type Mode string

const (
	ModeLobby     Mode = "lobby"     // Players joining and submitting photos
	ModeSlideshow Mode = "slideshow" // Ambient slideshow on the TV
	ModeGame      Mode = "game"      // A round is in progress
	ModeFinished  Mode = "finished"  // Terminal; TV clients redirect to final results
)

// String returns the string representation of the mode
func (m Mode) String() string {
	return string(m)
}

// IsValid reports whether the mode is one of the known modes
func (m Mode) IsValid() bool {
	switch m {
	case ModeLobby, ModeSlideshow, ModeGame, ModeFinished:
		return true
	}
	return false
}

// Phase is the phase within a round; meaningful only while mode is "game"
type Phase string

const (
	PhaseCountdown    Phase = "countdown"    // Short countdown before the photo is shown
	PhasePhoto        Phase = "photo"        // Legacy entry point, photo on screen
	PhaseVolunteering Phase = "volunteering" // Players claim ("bluff on") the current photo
	PhasePitches      Phase = "pitches"      // Selected presenters pitch their story
	PhaseVoting       Phase = "voting"       // Non-presenters vote for the real owner
	PhaseResults      Phase = "results"      // Reveal winners and points
	PhaseScoreboard   Phase = "scoreboard"   // Standings; host starts the next photo
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// IsValid reports whether the phase is one of the known phases
func (p Phase) IsValid() bool {
	switch p {
	case PhaseCountdown, PhasePhoto, PhaseVolunteering, PhasePitches, PhaseVoting, PhaseResults, PhaseScoreboard:
		return true
	}
	return false
}

// nextPhase is the advancement table used by both manual skip and the
// auto-advance driver. Scoreboard has no successor: the round is over
// and the host must play the next photo.
var nextPhase = map[Phase]Phase{
	PhaseCountdown:    PhaseVolunteering,
	PhasePhoto:        PhaseVolunteering,
	PhaseVolunteering: PhasePitches,
	PhasePitches:      PhaseVoting,
	PhaseVoting:       PhaseResults,
	PhaseResults:      PhaseScoreboard,
}

// Next returns the phase that follows p. The second return is false when
// p has no successor (scoreboard) and advancement must be a no-op.
func (p Phase) Next() (Phase, bool) {
	next, ok := nextPhase[p]
	return next, ok
}

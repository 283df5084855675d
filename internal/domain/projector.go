package domain

import (
	"encoding/json"
	"fmt"
)

// The projector derives typed, defaulted views from raw store
// snapshots. Absent fields get the same defaults the clients assume,
// so a partially written record always projects to a usable state.

// rawGameState mirrors GameState with pointers where absence and the
// zero value must be told apart.
type rawGameState struct {
	Mode               Mode               `json:"mode"`
	Phase              Phase              `json:"phase"`
	PhotoQueue         []string           `json:"photoQueue"`
	CurrentPhotoID     string             `json:"currentPhotoId"`
	RealOwnerID        string             `json:"realOwnerId"`
	Timer              *Timer             `json:"timer"`
	Volunteers         map[string]bool    `json:"volunteers"`
	SelectedPresenters []string           `json:"selectedPresenters"`
	Votes              map[string]string  `json:"votes"`
	Results            *RoundResults      `json:"results"`
	TimerSettings      *TimerSettings     `json:"timerSettings"`
	AutoAdvance        *bool              `json:"autoAdvance"`
}

// ProjectGameState decodes a raw game record, applying defaults for
// absent fields. A nil or empty snapshot projects to the lobby default.
func ProjectGameState(raw json.RawMessage) (*GameState, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return NewGameState(), nil
	}

	var r rawGameState
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode game state: %w", err)
	}

	g := NewGameState()
	if r.Mode.IsValid() {
		g.Mode = r.Mode
	}
	if r.Phase.IsValid() {
		g.Phase = r.Phase
	}
	if r.PhotoQueue != nil {
		g.PhotoQueue = r.PhotoQueue
	}
	g.CurrentPhotoID = r.CurrentPhotoID
	g.RealOwnerID = r.RealOwnerID
	g.Timer = r.Timer
	if r.Volunteers != nil {
		g.Volunteers = r.Volunteers
	}
	if r.SelectedPresenters != nil {
		g.SelectedPresenters = r.SelectedPresenters
	}
	if r.Votes != nil {
		g.Votes = r.Votes
	}
	g.Results = r.Results
	if r.TimerSettings != nil {
		g.TimerSettings = *r.TimerSettings
	}
	if r.AutoAdvance != nil {
		g.AutoAdvance = *r.AutoAdvance
	}

	return g, nil
}

// ProjectPlayer decodes a raw player record keyed by id
func ProjectPlayer(id string, raw json.RawMessage) (*Player, error) {
	var p Player
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode player %s: %w", id, err)
	}
	p.ID = id
	if p.Score < 0 {
		p.Score = 0
	}
	return &p, nil
}

// ProjectSubmission decodes a raw submission record keyed by id
func ProjectSubmission(id string, raw json.RawMessage) (*Submission, error) {
	var s Submission
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode submission %s: %w", id, err)
	}
	s.ID = id
	return &s, nil
}

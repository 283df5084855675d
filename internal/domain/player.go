package domain

// Player represents a player in a room. Created when a player submits
// their entry; score and volunteer count are mutated only by scoring,
// presenter selection and host point adjustment.
type Player struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	SelfieURL           string `json:"selfieUrl"`
	Score               int    `json:"score"`
	HasVolunteeredCount int    `json:"hasVolunteeredCount"`
	IsOnline            bool   `json:"isOnline"`
}

// NewPlayer creates a new player with zeroed counters
func NewPlayer(id, name, selfieURL string) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		SelfieURL: selfieURL,
	}
}

// AdjustScore adds delta to the player's score, clamped at zero
func (p *Player) AdjustScore(delta int) {
	p.Score += delta
	if p.Score < 0 {
		p.Score = 0
	}
}

// ResetForNewGame zeroes the counters a room reset clears
func (p *Player) ResetForNewGame() {
	p.Score = 0
	p.HasVolunteeredCount = 0
}

package domain

// Submission represents one mystery photo submitted by a player.
// HasBeenPlayed flips true exactly once, when the photo is dequeued
// into the current slot.
type Submission struct {
	ID            string `json:"id"`
	OwnerID       string `json:"ownerId"`
	PhotoURL      string `json:"photoUrl"`
	Caption       string `json:"caption"`
	HasBeenPlayed bool   `json:"hasBeenPlayed"`
	IsBonus       bool   `json:"isBonus"`
}

// NewSubmission creates a new unplayed submission
func NewSubmission(id, ownerID, photoURL, caption string, isBonus bool) *Submission {
	return &Submission{
		ID:       id,
		OwnerID:  ownerID,
		PhotoURL: photoURL,
		Caption:  caption,
		IsBonus:  isBonus,
	}
}

// SlideshowPhoto is an independent photo record for the ambient
// slideshow, decoupled from game submissions.
type SlideshowPhoto struct {
	ID         string `json:"id"`
	PhotoURL   string `json:"photoUrl"`
	UploadedBy string `json:"uploadedBy"`
	UploadedAt int64  `json:"uploadedAt"` // unix millis
}

// Prompt is a freeform prompt/answer record for the side mini-feature
type Prompt struct {
	ID        string `json:"id"`
	PlayerID  string `json:"playerId"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	CreatedAt int64  `json:"createdAt"` // unix millis
}

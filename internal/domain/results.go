package domain

import "sort"

// Point awards. Bluffing pays more than telling the truth, and voters
// who find the truth against a winning bluff get the bigger bonus.
const (
	PointsOwnerWin      = 3 // real owner wins or ties the vote
	PointsBlufferWin    = 4 // bluffer wins or ties the vote
	PointsVoterMajority = 1 // correct voter, owner among winners
	PointsVoterMinority = 2 // correct voter, bluff won outright
)

// WinnerResult is one presenter who won (or tied for) the round
type WinnerResult struct {
	PlayerID      string `json:"playerId"`
	Votes         int    `json:"votes"`
	IsRealOwner   bool   `json:"isRealOwner"`
	PointsAwarded int    `json:"pointsAwarded"`
}

// RoundResults is the computed outcome of a round, persisted on the
// game record when voting ends and cleared when the next photo starts.
type RoundResults struct {
	RealOwnerID        string         `json:"realOwnerId"`
	RealOwnerVotes     int            `json:"realOwnerVotes"`
	Winners            []WinnerResult `json:"winners"`
	CorrectVoters      []string       `json:"correctVoters"`
	VoterPointsAwarded int            `json:"voterPointsAwarded"`
}

// ComputeResults tallies votes and determines winners and point awards.
// It is a pure function of its inputs: applying the score deltas to
// players is the caller's job, so results can be recomputed at any time.
//
// Ties produce multiple winners. A real owner presenting alone with no
// votes cast auto-wins, so a round with no bluffers cannot end with no
// winner at all. A lone bluffer with no votes does not auto-win.
func ComputeResults(votes map[string]string, presenters []string, realOwnerID string) *RoundResults {
	// Tally, zero-filled so unvoted presenters appear with count 0.
	// Votes for non-presenters are ignored.
	voteCounts := make(map[string]int, len(presenters))
	for _, id := range presenters {
		voteCounts[id] = 0
	}
	for _, target := range votes {
		if _, ok := voteCounts[target]; ok {
			voteCounts[target]++
		}
	}

	maxVotes := 0
	for _, count := range voteCounts {
		if count > maxVotes {
			maxVotes = count
		}
	}

	// Winners are everyone tied at the max, in presenter order
	winnerIDs := make([]string, 0, len(presenters))
	for _, id := range presenters {
		if maxVotes > 0 && voteCounts[id] == maxVotes {
			winnerIDs = append(winnerIDs, id)
		}
	}

	// No votes at all and only the real owner presenting: they auto-win
	if len(votes) == 0 && len(presenters) == 1 && presenters[0] == realOwnerID {
		winnerIDs = append(winnerIDs, realOwnerID)
	}

	correctVoters := make([]string, 0, len(votes))
	for voterID, target := range votes {
		if target == realOwnerID {
			correctVoters = append(correctVoters, voterID)
		}
	}
	sort.Strings(correctVoters)

	ownerWon := false
	for _, id := range winnerIDs {
		if id == realOwnerID {
			ownerWon = true
			break
		}
	}

	winners := make([]WinnerResult, 0, len(winnerIDs))
	for _, id := range winnerIDs {
		isOwner := id == realOwnerID
		points := PointsBlufferWin
		if isOwner {
			points = PointsOwnerWin
		}
		winners = append(winners, WinnerResult{
			PlayerID:      id,
			Votes:         voteCounts[id],
			IsRealOwner:   isOwner,
			PointsAwarded: points,
		})
	}

	voterPoints := PointsVoterMinority
	if ownerWon {
		voterPoints = PointsVoterMajority
	}

	return &RoundResults{
		RealOwnerID:        realOwnerID,
		RealOwnerVotes:     voteCounts[realOwnerID],
		Winners:            winners,
		CorrectVoters:      correctVoters,
		VoterPointsAwarded: voterPoints,
	}
}

package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/19tp01/very-terry-game/internal/domain"
	"github.com/19tp01/very-terry-game/internal/store"
)

// Room mutation API: every operation here is one bounded
// read-modify-write against the store, serialized by s.mu.

// newTimer builds a phase timer, or nil when the duration is zero
// (manual-advance phase; policy, not an error).
func (s *RoomSession) newTimer(seconds int) *domain.Timer {
	if seconds <= 0 {
		return nil
	}
	return &domain.Timer{
		EndsAt:   s.now().UnixMilli() + int64(seconds)*1000,
		Duration: seconds,
	}
}

// Advance moves the game to the next phase. Leaving volunteering it
// runs presenter selection; leaving voting it runs scoring. Advancing
// from scoreboard is a no-op: the host starts the next photo instead.
// Manual skip and the auto-advance driver both come through here.
func (s *RoomSession) Advance(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(ctx)
}

func (s *RoomSession) advanceLocked(ctx context.Context) error {
	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}

	next, ok := g.Phase.Next()
	if !ok {
		return nil
	}
	prev := g.Phase

	// Presenter selection must land in the same write as the phase so
	// no client ever observes pitches with an empty presenter list.
	if prev == domain.PhaseVolunteering && next == domain.PhasePitches {
		if err := s.selectPresentersLocked(ctx, g); err != nil {
			return err
		}
	}

	g.Phase = next
	g.Mode = domain.ModeGame
	g.Timer = s.newTimer(g.TimerSettings.DurationFor(next))

	// Scoring persists with the transition into results
	if prev == domain.PhaseVoting && next == domain.PhaseResults {
		if err := s.scoreRoundLocked(ctx, g); err != nil {
			return err
		}
	}

	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	s.logger.Info("phase advanced", "from", prev, "to", next)
	s.queueEvent(domain.NewEvent(domain.EventPhaseAdvanced, s.code, nil))
	s.broadcastSnapshot(ctx)
	return nil
}

// selectPresentersLocked runs the presenter selection algorithm and
// increments each selected presenter's volunteer count. Caller must
// hold s.mu; the phase write that follows persists g.SelectedPresenters.
func (s *RoomSession) selectPresentersLocked(ctx context.Context, g *domain.GameState) error {
	players, err := s.loadPlayers(ctx)
	if err != nil {
		return err
	}

	counts := make(map[string]int, len(players))
	byID := make(map[string]*domain.Player, len(players))
	for _, p := range players {
		counts[p.ID] = p.HasVolunteeredCount
		byID[p.ID] = p
	}

	presenters := domain.SelectPresenters(g.Volunteers, g.RealOwnerID, counts, s.rng)

	// One increment per selected presenter, real owner included
	for _, id := range presenters {
		p, ok := byID[id]
		if !ok {
			continue
		}
		p.HasVolunteeredCount++
		if err := s.store.Write(ctx, store.PlayerPath(s.code, id), p); err != nil {
			return err
		}
	}

	g.SelectedPresenters = presenters
	return nil
}

// scoreRoundLocked computes and attaches the round results and applies
// the score deltas. Caller must hold s.mu; the session being the only
// writer is what makes the per-player read-modify-writes safe.
func (s *RoomSession) scoreRoundLocked(ctx context.Context, g *domain.GameState) error {
	if g.RealOwnerID == "" {
		return nil
	}

	results := domain.ComputeResults(g.Votes, g.SelectedPresenters, g.RealOwnerID)
	g.Results = results

	for _, w := range results.Winners {
		if err := s.awardPointsLocked(ctx, w.PlayerID, w.PointsAwarded); err != nil {
			return err
		}
	}
	for _, voterID := range results.CorrectVoters {
		if err := s.awardPointsLocked(ctx, voterID, results.VoterPointsAwarded); err != nil {
			return err
		}
	}
	return nil
}

func (s *RoomSession) awardPointsLocked(ctx context.Context, playerID string, points int) error {
	p, err := s.loadPlayer(ctx, playerID)
	if err != nil {
		if err == domain.ErrPlayerNotFound {
			return nil // deleted mid-round; nothing to credit
		}
		return err
	}
	p.AdjustScore(points)
	return s.store.Write(ctx, store.PlayerPath(s.code, playerID), p)
}

// RevealResults recomputes and persists the round results outside the
// normal voting-to-results transition. Recomputing is safe; the score
// deltas are applied again, so the host uses this only when the
// automatic reveal never ran.
func (s *RoomSession) RevealResults(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}
	if g.RealOwnerID == "" {
		return domain.ErrNoCurrentPhoto
	}

	if err := s.scoreRoundLocked(ctx, g); err != nil {
		return err
	}
	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	s.queueEvent(domain.NewEvent(domain.EventResultsReady, s.code, g.Results))
	s.broadcastSnapshot(ctx)
	return nil
}

// Queue management

// EnqueuePhoto appends a submission to the play queue
func (s *RoomSession) EnqueuePhoto(ctx context.Context, photoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}
	if g.QueueContains(photoID) {
		return domain.ErrAlreadyQueued
	}

	g.PhotoQueue = append(g.PhotoQueue, photoID)
	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	s.broadcastSnapshot(ctx)
	return nil
}

// DequeuePhoto removes a submission from the play queue
func (s *RoomSession) DequeuePhoto(ctx context.Context, photoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}

	queue := make([]string, 0, len(g.PhotoQueue))
	for _, id := range g.PhotoQueue {
		if id != photoID {
			queue = append(queue, id)
		}
	}
	g.PhotoQueue = queue
	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	s.broadcastSnapshot(ctx)
	return nil
}

// ReorderQueue moves the entry at from to position to
func (s *RoomSession) ReorderQueue(ctx context.Context, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}
	if from < 0 || from >= len(g.PhotoQueue) || to < 0 || to >= len(g.PhotoQueue) {
		return domain.ErrInvalidQueueIndex
	}

	queue := g.PhotoQueue
	moved := queue[from]
	queue = append(queue[:from], queue[from+1:]...)
	queue = append(queue[:to], append([]string{moved}, queue[to:]...)...)
	g.PhotoQueue = queue

	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	s.broadcastSnapshot(ctx)
	return nil
}

// PlayNext pops the queue head into the current slot, resets all
// per-round state and enters countdown. The submission is marked played
// before the game record moves: a failure between the two writes never
// leaves a photo in play that is not marked played, and the queue stays
// intact in the store so a retry converges (re-marking is idempotent).
func (s *RoomSession) PlayNext(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}
	if len(g.PhotoQueue) == 0 {
		return domain.ErrQueueEmpty
	}

	photoID := g.PhotoQueue[0]
	raw, err := s.store.Read(ctx, store.SubmissionPath(s.code, photoID))
	if err != nil {
		return domain.ErrSubmissionNotFound
	}
	sub, err := domain.ProjectSubmission(photoID, raw)
	if err != nil {
		return err
	}

	sub.HasBeenPlayed = true
	if err := s.store.Write(ctx, store.SubmissionPath(s.code, photoID), sub); err != nil {
		return err
	}

	g.PhotoQueue = g.PhotoQueue[1:]
	countdown := g.TimerSettings.Countdown
	if countdown <= 0 {
		countdown = 3
	}
	g.StartRound(photoID, sub.OwnerID, s.newTimer(countdown))

	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	s.logger.Info("round started", "photoID", photoID, "ownerID", sub.OwnerID)
	s.queueEvent(domain.NewEvent(domain.EventRoundStarted, s.code, nil))
	s.broadcastSnapshot(ctx)
	return nil
}

// Volunteering and voting

// Volunteer adds a player to the claimants for the current photo.
// Idempotent: volunteering twice equals volunteering once.
func (s *RoomSession) Volunteer(ctx context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.loadPlayer(ctx, playerID); err != nil {
		return err
	}

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}
	if g.Volunteers[playerID] {
		return nil
	}

	g.Volunteers[playerID] = true
	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	s.broadcastSnapshot(ctx)
	return nil
}

// Unvolunteer removes a player from the claimants; a no-op for
// non-members
func (s *RoomSession) Unvolunteer(ctx context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}
	if !g.Volunteers[playerID] {
		return nil
	}

	delete(g.Volunteers, playerID)
	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	s.broadcastSnapshot(ctx)
	return nil
}

// Vote records a voter's pick. Upsert, last write wins. Presenters
// cannot vote and votes must target a presenter: both rules are
// enforced here rather than left to the client UI.
func (s *RoomSession) Vote(ctx context.Context, voterID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.loadPlayer(ctx, voterID); err != nil {
		return err
	}

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}
	if g.IsPresenter(voterID) {
		return domain.ErrPresenterCannotVote
	}
	if !g.IsPresenter(targetID) {
		return domain.ErrInvalidVoteTarget
	}

	g.Votes[voterID] = targetID
	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	s.broadcastSnapshot(ctx)
	return nil
}

// Host controls

// AdjustPoints adds delta to a player's score, clamped at zero
func (s *RoomSession) AdjustPoints(ctx context.Context, playerID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.loadPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	p.AdjustScore(delta)
	if err := s.store.Write(ctx, store.PlayerPath(s.code, playerID), p); err != nil {
		return err
	}

	s.broadcastSnapshot(ctx)
	return nil
}

// SetMode switches the top-level mode. Finished is terminal and tells
// all TV clients to redirect to the final results.
func (s *RoomSession) SetMode(ctx context.Context, mode domain.Mode) error {
	if !mode.IsValid() {
		return domain.ErrInvalidMode
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}
	g.Mode = mode
	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	if mode == domain.ModeFinished {
		s.queueEvent(domain.NewEvent(domain.EventGameFinished, s.code, nil))
	}
	s.broadcastSnapshot(ctx)
	return nil
}

// SetPhase forces the phase directly, entering game mode
func (s *RoomSession) SetPhase(ctx context.Context, phase domain.Phase) error {
	if !phase.IsValid() {
		return domain.ErrInvalidPhase
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}
	g.Phase = phase
	g.Mode = domain.ModeGame
	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	s.broadcastSnapshot(ctx)
	return nil
}

// StartTimer starts a manual timer for the current phase
func (s *RoomSession) StartTimer(ctx context.Context, seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}
	g.Timer = s.newTimer(seconds)
	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	s.broadcastSnapshot(ctx)
	return nil
}

// ClearTimer removes the current deadline
func (s *RoomSession) ClearTimer(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}
	g.Timer = nil
	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	s.broadcastSnapshot(ctx)
	return nil
}

// ShufflePresenters randomizes the presentation order mid-round
func (s *RoomSession) ShufflePresenters(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}

	presenters := g.SelectedPresenters
	for i := len(presenters) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		presenters[i], presenters[j] = presenters[j], presenters[i]
	}
	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	s.broadcastSnapshot(ctx)
	return nil
}

// UpdateTimerSetting changes the configured duration for a phase
func (s *RoomSession) UpdateTimerSetting(ctx context.Context, phase domain.Phase, seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}
	if !g.TimerSettings.Set(phase, seconds) {
		return domain.ErrInvalidPhase
	}
	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	s.broadcastSnapshot(ctx)
	return nil
}

// ToggleAutoAdvance flips whether the timer driver fires automatically
func (s *RoomSession) ToggleAutoAdvance(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}
	g.AutoAdvance = !g.AutoAdvance
	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	s.broadcastSnapshot(ctx)
	return nil
}

// ResetRoom reinitializes the game record to lobby defaults (keeping
// timer settings and auto-advance), zeroes every player's counters and
// flips every submission back to unplayed. Not atomic across entities:
// a failure partway leaves a mixed state the host retries.
func (s *RoomSession) ResetRoom(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}
	g.ResetForNewGame()
	if err := s.saveGame(ctx, g); err != nil {
		return err
	}

	subs, err := s.loadSubmissions(ctx)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		if !sub.HasBeenPlayed {
			continue
		}
		sub.HasBeenPlayed = false
		if err := s.store.Write(ctx, store.SubmissionPath(s.code, sub.ID), sub); err != nil {
			return err
		}
	}

	players, err := s.loadPlayers(ctx)
	if err != nil {
		return err
	}
	for _, p := range players {
		p.ResetForNewGame()
		if err := s.store.Write(ctx, store.PlayerPath(s.code, p.ID), p); err != nil {
			return err
		}
	}

	s.logger.Info("room reset")
	s.broadcastSnapshot(ctx)
	return nil
}

// DeletePlayer removes a player and cascades: their submissions and
// photo blobs go too, and the queue is purged of their photos. The
// player record is deleted first: a cascade that fails partway leaves
// orphaned submissions, which CleanupOrphans resumes, never a player
// with half their photos. Blob deletion is best-effort; a thumbnail
// that never existed is not worth failing the cascade over.
func (s *RoomSession) DeletePlayer(ctx context.Context, playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.loadPlayer(ctx, playerID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, store.PlayerPath(s.code, playerID)); err != nil {
		return err
	}
	s.deleteBlob(ctx, p.SelfieURL)

	subs, err := s.loadSubmissions(ctx)
	if err != nil {
		return err
	}
	owned := make(map[string]bool)
	for _, sub := range subs {
		if sub.OwnerID != playerID {
			continue
		}
		owned[sub.ID] = true
		s.deleteBlob(ctx, sub.PhotoURL)
		if err := s.store.Delete(ctx, store.SubmissionPath(s.code, sub.ID)); err != nil {
			return err
		}
	}

	g, err := s.loadGame(ctx)
	if err != nil {
		return err
	}
	queue := make([]string, 0, len(g.PhotoQueue))
	for _, id := range g.PhotoQueue {
		if !owned[id] {
			queue = append(queue, id)
		}
	}
	if len(queue) != len(g.PhotoQueue) {
		g.PhotoQueue = queue
		if err := s.saveGame(ctx, g); err != nil {
			return err
		}
	}

	s.logger.Info("player deleted", "playerID", playerID)
	s.queueEvent(domain.NewEvent(domain.EventPlayerLeft, s.code, nil))
	s.broadcastSnapshot(ctx)
	return nil
}

// CleanupOrphans deletes submissions whose owner no longer exists and
// purges them from the queue. Returns how many were removed.
func (s *RoomSession) CleanupOrphans(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	players, err := s.loadPlayers(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]bool, len(players))
	for _, p := range players {
		known[p.ID] = true
	}

	subs, err := s.loadSubmissions(ctx)
	if err != nil {
		return 0, err
	}
	orphaned := make(map[string]bool)
	for _, sub := range subs {
		if !known[sub.OwnerID] {
			orphaned[sub.ID] = true
		}
	}
	if len(orphaned) == 0 {
		return 0, nil
	}

	g, err := s.loadGame(ctx)
	if err != nil {
		return 0, err
	}
	queue := make([]string, 0, len(g.PhotoQueue))
	for _, id := range g.PhotoQueue {
		if !orphaned[id] {
			queue = append(queue, id)
		}
	}
	if len(queue) != len(g.PhotoQueue) {
		g.PhotoQueue = queue
		if err := s.saveGame(ctx, g); err != nil {
			return 0, err
		}
	}

	for _, sub := range subs {
		if !orphaned[sub.ID] {
			continue
		}
		s.deleteBlob(ctx, sub.PhotoURL)
		if err := s.store.Delete(ctx, store.SubmissionPath(s.code, sub.ID)); err != nil {
			return 0, err
		}
	}

	s.logger.Info("orphaned submissions removed", "count", len(orphaned))
	s.broadcastSnapshot(ctx)
	return len(orphaned), nil
}

// deleteBlob removes a stored photo, swallowing failures
func (s *RoomSession) deleteBlob(ctx context.Context, url string) {
	if url == "" || s.blobs == nil {
		return
	}
	if err := s.blobs.Delete(ctx, url); err != nil {
		s.logger.Debug("blob cleanup failed", "url", url, "error", err)
	}
}

// Side collections

// AddSlideshowPhoto records a photo for the ambient slideshow
func (s *RoomSession) AddSlideshowPhoto(ctx context.Context, photoURL, uploadedBy string) (*domain.SlideshowPhoto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	photo := &domain.SlideshowPhoto{
		ID:         uuid.New().String(),
		PhotoURL:   photoURL,
		UploadedBy: uploadedBy,
		UploadedAt: s.now().UnixMilli(),
	}
	if err := s.store.Write(ctx, store.SlideshowPath(s.code, photo.ID), photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// ListSlideshowPhotos returns all slideshow photos, oldest first
func (s *RoomSession) ListSlideshowPhotos(ctx context.Context) ([]*domain.SlideshowPhoto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raws, err := s.store.List(ctx, store.SlideshowPrefix(s.code))
	if err != nil {
		return nil, err
	}

	photos := make([]*domain.SlideshowPhoto, 0, len(raws))
	for id, raw := range raws {
		var photo domain.SlideshowPhoto
		if err := unmarshalRecord(raw, &photo); err != nil {
			return nil, err
		}
		photo.ID = id
		photos = append(photos, &photo)
	}
	sortSlideshow(photos)
	return photos, nil
}

// DeleteSlideshowPhoto removes a slideshow photo and its blob
func (s *RoomSession) DeleteSlideshowPhoto(ctx context.Context, photoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.Read(ctx, store.SlideshowPath(s.code, photoID))
	if err == nil {
		var photo domain.SlideshowPhoto
		if unmarshalRecord(raw, &photo) == nil {
			s.deleteBlob(ctx, photo.PhotoURL)
		}
	}
	return s.store.Delete(ctx, store.SlideshowPath(s.code, photoID))
}

// AddPrompt records a freeform prompt answer
func (s *RoomSession) AddPrompt(ctx context.Context, playerID, question, answer string) (*domain.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompt := &domain.Prompt{
		ID:        uuid.New().String(),
		PlayerID:  playerID,
		Question:  question,
		Answer:    answer,
		CreatedAt: s.now().UnixMilli(),
	}
	if err := s.store.Write(ctx, store.PromptPath(s.code, prompt.ID), prompt); err != nil {
		return nil, err
	}
	return prompt, nil
}

// ListPrompts returns all prompt records, oldest first
func (s *RoomSession) ListPrompts(ctx context.Context) ([]*domain.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raws, err := s.store.List(ctx, store.PromptsPrefix(s.code))
	if err != nil {
		return nil, err
	}

	prompts := make([]*domain.Prompt, 0, len(raws))
	for id, raw := range raws {
		var prompt domain.Prompt
		if err := unmarshalRecord(raw, &prompt); err != nil {
			return nil, err
		}
		prompt.ID = id
		prompts = append(prompts, &prompt)
	}
	sortPrompts(prompts)
	return prompts, nil
}

func timerExpired(t *domain.Timer, now time.Time) bool {
	return t != nil && now.UnixMilli() >= t.EndsAt
}

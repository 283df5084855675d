package app

import (
	"context"
	"time"
)

// pollInterval is how often the auto-advance driver checks the current
// deadline against the wall clock. The countdown shown on player and
// TV screens is derived client-side from endsAt; this loop only drives
// the transition.
const pollInterval = 500 * time.Millisecond

// autoAdvanceLoop is the timer driver. The session is the single
// authority for its room, so there is exactly one of these per room
// and a deadline cannot be double-fired by competing host consoles.
func (s *RoomSession) autoAdvanceLoop() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.checkDeadline()
		}
	}
}

// checkDeadline advances the phase when auto-advance is on and the
// deadline has elapsed. Advancing replaces or clears the timer, so an
// expired deadline fires at most once.
func (s *RoomSession) checkDeadline() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.loadGame(ctx)
	if err != nil {
		s.logger.Warn("timer check failed to load game", "error", err)
		return
	}
	if !g.AutoAdvance || !timerExpired(g.Timer, s.now()) {
		return
	}

	if err := s.advanceLocked(ctx); err != nil {
		// Leave state untouched; the host sees the stalled timer and
		// retries with a manual skip.
		s.logger.Error("auto-advance failed", "phase", g.Phase, "error", err)
	}
}

// Package engine is the concurrent core of the live quiz: it tracks which
// rooms are accepting answers, admits at most one answer per player per
// question, keeps running scores in memory, and auto-closes answer windows
// on a timer. Persistence is handed off asynchronously; the in-memory state
// is the source of truth for live ranking.
package engine

import (
	"log"
	"sync"
	"time"
)

// Engine owns the registry of active rooms and the answer admission
// pipeline. All methods are safe for arbitrary concurrent callers.
type Engine struct {
	rooms sync.Map // joinCode -> *Room

	hookMu         sync.RWMutex
	onWindowClosed func(joinCode string)
}

func New() *Engine {
	return &Engine{}
}

// SetWindowClosedHook installs a callback fired whenever a question window
// closes, by timer expiry or explicit close. Used to push the close event
// out to connected clients.
func (e *Engine) SetWindowClosedHook(fn func(joinCode string)) {
	e.hookMu.Lock()
	e.onWindowClosed = fn
	e.hookMu.Unlock()
}

func (e *Engine) windowClosed(joinCode string) {
	e.hookMu.RLock()
	fn := e.onWindowClosed
	e.hookMu.RUnlock()
	if fn != nil {
		fn(joinCode)
	}
}

// CreateRoom registers a live room for the join code. Calling it again for
// the same code is a no-op, so client retries of room initialization are
// idempotent.
func (e *Engine) CreateRoom(joinCode, roomID string) {
	_, loaded := e.rooms.LoadOrStore(joinCode, newRoom(joinCode, roomID))
	if !loaded {
		e.logf(joinCode, "room registered (roomId=%s)", roomID)
	}
}

// RemoveRoom evicts the room's live state. Unknown codes are a no-op.
func (e *Engine) RemoveRoom(joinCode string) {
	if v, loaded := e.rooms.LoadAndDelete(joinCode); loaded {
		v.(*Room).closeWindow()
		e.logf(joinCode, "room removed")
	}
}

func (e *Engine) room(joinCode string) (*Room, bool) {
	v, ok := e.rooms.Load(joinCode)
	if !ok {
		return nil, false
	}
	return v.(*Room), true
}

// OpenWindow opens the answer window for the room's current question for the
// given duration, clearing the previous question's answered-set. It returns
// without waiting on the timer.
func (e *Engine) OpenWindow(joinCode string, d time.Duration) {
	room, ok := e.room(joinCode)
	if !ok {
		e.logf(joinCode, "open window ignored: room unknown")
		return
	}
	room.openWindow(d, func() {
		e.logf(joinCode, "timer expired, window closed")
		e.windowClosed(joinCode)
	})
	e.logf(joinCode, "window open for %s", d)
}

// CloseWindowNow force-closes the window, cancelling the pending timer. Used
// when the host advances before time runs out. Idempotent.
func (e *Engine) CloseWindowNow(joinCode string) {
	room, ok := e.room(joinCode)
	if !ok {
		return
	}
	if room.closeWindow() {
		e.logf(joinCode, "window closed by host")
		e.windowClosed(joinCode)
	}
}

// Submit is the sole entry point for answers. It admits the answer if the
// room exists, the window is open, and the player has not answered this
// question yet; on admission of a correct answer the player's score is
// incremented. The persist continuation runs on its own goroutine so the
// caller never waits on storage; its errors are logged and never unwind the
// admission already committed here.
//
// The return value is true only when the answer was admitted AND correct.
// Rejections are silent: window-closed and duplicate submissions simply
// report false. A submission that passed the window gate just before a close
// is honored even if the close lands first; that race is accepted.
func (e *Engine) Submit(joinCode, playerID string, correct bool, persist func() error) bool {
	room, ok := e.room(joinCode)
	if !ok {
		e.logf(joinCode, "answer rejected (room unknown) player=%s", playerID)
		return false
	}
	if !room.windowOpen.Load() {
		e.logf(joinCode, "answer rejected (window closed) player=%s", playerID)
		return false
	}
	if !room.markAnswered(playerID) {
		e.logf(joinCode, "answer rejected (duplicate) player=%s", playerID)
		return false
	}

	if correct {
		total := room.addPoint(playerID)
		e.logf(joinCode, "answer correct (+1, total %d) player=%s", total, playerID)
	} else {
		e.logf(joinCode, "answer incorrect player=%s", playerID)
	}

	if persist != nil {
		go func() {
			defer func() {
				if rec := recover(); rec != nil {
					e.logf(joinCode, "persist panic for player=%s: %v", playerID, rec)
				}
			}()
			if err := persist(); err != nil {
				e.logf(joinCode, "persist failed for player=%s: %v", playerID, err)
			}
		}()
	}

	return correct
}

// CurrentScores returns a snapshot of the room's live scores, or nil for an
// unknown room. Players with no correct answer are absent, which reads as 0.
func (e *Engine) CurrentScores(joinCode string) map[string]int {
	room, ok := e.room(joinCode)
	if !ok {
		return nil
	}
	return room.scoreSnapshot()
}

// Score returns one player's live score; absent players score 0.
func (e *Engine) Score(joinCode, playerID string) int {
	room, ok := e.room(joinCode)
	if !ok {
		return 0
	}
	return room.score(playerID)
}

// HasAnswered reports whether the player already answered the current
// question.
func (e *Engine) HasAnswered(joinCode, playerID string) bool {
	room, ok := e.room(joinCode)
	if !ok {
		return false
	}
	return room.hasAnswered(playerID)
}

// WindowOpen reports whether the room is currently accepting answers.
func (e *Engine) WindowOpen(joinCode string) bool {
	room, ok := e.room(joinCode)
	if !ok {
		return false
	}
	return room.windowOpen.Load()
}

func (e *Engine) logf(joinCode, format string, args ...any) {
	log.Printf("[room %s] "+format, append([]any{joinCode}, args...)...)
}

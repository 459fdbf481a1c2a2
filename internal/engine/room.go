package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// Room is the in-memory state of one live session. It is a session-time
// cache: scores and the answered-set live here, not in the database, so the
// answer path never waits on storage. Each field is synchronized on its own:
// scores by per-player atomic counters, the answered-set by LoadOrStore
// test-and-set, the window flag by an atomic bool. Only the timer handle
// needs a mutex.
type Room struct {
	RoomID   string
	JoinCode string

	scores     sync.Map // playerID -> *atomic.Int64
	answered   atomic.Pointer[sync.Map]
	windowOpen atomic.Bool

	timerMu   sync.Mutex
	timer     *time.Timer
	windowGen uint64 // bumped on every open; stale timer fires are ignored
}

func newRoom(joinCode, roomID string) *Room {
	r := &Room{
		RoomID:   roomID,
		JoinCode: joinCode,
	}
	r.answered.Store(&sync.Map{})
	return r
}

// openWindow starts accepting answers for a new question: any pending timer
// is stopped, the answered-set is swapped for a fresh one, and a one-shot
// auto-close is scheduled. Calling it while a window is already open
// re-opens (fresh answered-set, rescheduled timer).
func (r *Room) openWindow(d time.Duration, expired func()) {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
	r.windowGen++
	gen := r.windowGen

	// The swap happens before the flag flips so no submission can be
	// admitted against the previous question's answered-set.
	r.answered.Store(&sync.Map{})
	r.windowOpen.Store(true)

	r.timer = time.AfterFunc(d, func() {
		if r.expire(gen) && expired != nil {
			expired()
		}
	})
}

// expire is the timer-driven close. It reports whether this call actually
// closed the window; a fire belonging to a superseded window is a no-op.
func (r *Room) expire(gen uint64) bool {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()
	if gen != r.windowGen {
		return false
	}
	return r.windowOpen.Swap(false)
}

// closeWindow is the explicit host-driven close. Cancelling a timer that has
// already fired is a no-op; either way the window ends closed. Reports
// whether the window was open.
func (r *Room) closeWindow() bool {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	return r.windowOpen.Swap(false)
}

// markAnswered records the player in the current answered-set. The
// LoadOrStore is the single test-and-set that decides admission: exactly one
// of any number of racing submissions for the same player wins.
func (r *Room) markAnswered(playerID string) bool {
	_, dup := r.answered.Load().LoadOrStore(playerID, struct{}{})
	return !dup
}

func (r *Room) hasAnswered(playerID string) bool {
	_, ok := r.answered.Load().Load(playerID)
	return ok
}

// addPoint atomically increments the player's score, creating the entry at 1
// if absent. Increments for different players never contend on a shared lock.
func (r *Room) addPoint(playerID string) int64 {
	v, _ := r.scores.LoadOrStore(playerID, new(atomic.Int64))
	return v.(*atomic.Int64).Add(1)
}

// scoreSnapshot copies the live scores. The copy may trail concurrent
// increments by microseconds, which is fine for ranking reads.
func (r *Room) scoreSnapshot() map[string]int {
	out := make(map[string]int)
	r.scores.Range(func(k, v any) bool {
		out[k.(string)] = int(v.(*atomic.Int64).Load())
		return true
	})
	return out
}

func (r *Room) score(playerID string) int {
	if v, ok := r.scores.Load(playerID); ok {
		return int(v.(*atomic.Int64).Load())
	}
	return 0
}

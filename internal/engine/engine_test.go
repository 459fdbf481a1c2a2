package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenRoom(t *testing.T, code string, d time.Duration) *Engine {
	t.Helper()
	e := New()
	e.CreateRoom(code, "room-id-"+code)
	e.OpenWindow(code, d)
	return e
}

func TestCreateRoomIdempotent(t *testing.T) {
	e := New()
	e.CreateRoom("ABC123", "id-1")
	e.OpenWindow("ABC123", time.Minute)
	require.True(t, e.Submit("ABC123", "p1", true, nil))

	// Second create must not replace the live state.
	e.CreateRoom("ABC123", "id-2")
	assert.Equal(t, 1, e.Score("ABC123", "p1"))
	assert.True(t, e.HasAnswered("ABC123", "p1"))
}

func TestSubmitUnknownRoom(t *testing.T) {
	e := New()
	assert.False(t, e.Submit("NOPE", "p1", true, nil))
	assert.Nil(t, e.CurrentScores("NOPE"))
	assert.False(t, e.HasAnswered("NOPE", "p1"))
	assert.Zero(t, e.Score("NOPE", "p1"))
}

func TestSubmitBeforeWindowOpens(t *testing.T) {
	e := New()
	e.CreateRoom("ABC123", "id-1")
	assert.False(t, e.Submit("ABC123", "p1", true, nil))
	assert.False(t, e.HasAnswered("ABC123", "p1"))
}

func TestDuplicateSubmissionRejected(t *testing.T) {
	e := newOpenRoom(t, "ABC123", time.Minute)

	assert.True(t, e.Submit("ABC123", "p1", true, nil))
	assert.False(t, e.Submit("ABC123", "p1", true, nil), "second submission for the same question must not be admitted")
	assert.Equal(t, 1, e.Score("ABC123", "p1"))
}

func TestIncorrectAnswerAdmittedButNotScored(t *testing.T) {
	e := newOpenRoom(t, "ABC123", time.Minute)

	assert.False(t, e.Submit("ABC123", "p1", false, nil))
	assert.True(t, e.HasAnswered("ABC123", "p1"), "incorrect answer still counts as answered")
	assert.Zero(t, e.Score("ABC123", "p1"))
	// An incorrect answer still blocks a retry within the same question.
	assert.False(t, e.Submit("ABC123", "p1", true, nil))
	assert.Zero(t, e.Score("ABC123", "p1"))
}

func TestConcurrentDuplicatesAdmitExactlyOne(t *testing.T) {
	e := newOpenRoom(t, "ABC123", time.Minute)

	const attempts = 100
	var admitted atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if e.Submit("ABC123", "p1", true, nil) {
				admitted.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load(), "exactly one of the racing duplicates may win")
	assert.Equal(t, 1, e.Score("ABC123", "p1"))
}

func TestConcurrentStress500Players(t *testing.T) {
	e := newOpenRoom(t, "ABC123", time.Minute)

	const players = 500
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			e.Submit("ABC123", fmt.Sprintf("p%d", n), n%2 == 0, nil)
		}(i)
	}
	close(start)
	wg.Wait()

	sum := 0
	for _, s := range e.CurrentScores("ABC123") {
		require.GreaterOrEqual(t, s, 0)
		sum += s
	}
	assert.Equal(t, players/2, sum, "score sum must equal the number of correct admitted answers")

	answered := 0
	for i := 0; i < players; i++ {
		if e.HasAnswered("ABC123", fmt.Sprintf("p%d", i)) {
			answered++
		}
	}
	assert.Equal(t, players, answered)
}

func TestTimerExpiryClosesWindow(t *testing.T) {
	e := newOpenRoom(t, "ABC123", 30*time.Millisecond)

	require.Eventually(t, func() bool {
		return !e.WindowOpen("ABC123")
	}, time.Second, 5*time.Millisecond)

	assert.False(t, e.Submit("ABC123", "p1", true, nil))
	assert.False(t, e.HasAnswered("ABC123", "p1"))
}

func TestCloseWindowNowBeforeExpiry(t *testing.T) {
	e := newOpenRoom(t, "ABC123", 10*time.Second)

	e.CloseWindowNow("ABC123")

	assert.False(t, e.WindowOpen("ABC123"))
	assert.False(t, e.Submit("ABC123", "p1", true, nil), "not admitted even though nominal duration had not elapsed")
}

func TestCloseWindowNowIdempotent(t *testing.T) {
	e := newOpenRoom(t, "ABC123", 30*time.Millisecond)

	var closes atomic.Int32
	e.SetWindowClosedHook(func(string) { closes.Add(1) })

	// Let the timer fire, then cancel after the fact.
	require.Eventually(t, func() bool {
		return !e.WindowOpen("ABC123")
	}, time.Second, 5*time.Millisecond)
	e.CloseWindowNow("ABC123")
	e.CloseWindowNow("ABC123")

	assert.False(t, e.WindowOpen("ABC123"))
	assert.LessOrEqual(t, closes.Load(), int32(1), "a close after the timer already fired must not re-fire the hook")
}

func TestReopenClearsAnsweredSet(t *testing.T) {
	e := newOpenRoom(t, "ABC123", time.Minute)

	require.True(t, e.Submit("ABC123", "p1", true, nil))

	// Next question: the same player may answer again and scores accumulate.
	e.OpenWindow("ABC123", time.Minute)
	assert.False(t, e.HasAnswered("ABC123", "p1"))
	assert.True(t, e.Submit("ABC123", "p1", true, nil))
	assert.Equal(t, 2, e.Score("ABC123", "p1"))
}

func TestReopenSupersedesPendingTimer(t *testing.T) {
	e := newOpenRoom(t, "ABC123", 20*time.Millisecond)

	// Re-open with a long window before the first timer fires; the stale
	// timer must not close the new window.
	e.OpenWindow("ABC123", 10*time.Second)
	time.Sleep(100 * time.Millisecond)

	assert.True(t, e.WindowOpen("ABC123"))
	assert.True(t, e.Submit("ABC123", "p1", true, nil))
}

func TestWindowClosedHookOnExpiry(t *testing.T) {
	e := New()
	e.CreateRoom("ABC123", "id-1")

	closed := make(chan string, 1)
	e.SetWindowClosedHook(func(code string) { closed <- code })

	e.OpenWindow("ABC123", 20*time.Millisecond)

	select {
	case code := <-closed:
		assert.Equal(t, "ABC123", code)
	case <-time.After(time.Second):
		t.Fatal("window close hook never fired")
	}
}

func TestPersistRunsAsync(t *testing.T) {
	e := newOpenRoom(t, "ABC123", time.Minute)

	block := make(chan struct{})
	done := make(chan struct{})
	ok := e.Submit("ABC123", "p1", true, func() error {
		<-block
		close(done)
		return nil
	})
	require.True(t, ok, "submit must not wait on the persistence continuation")

	close(block)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("persist continuation never ran")
	}
}

func TestPersistFailureDoesNotAffectAdmission(t *testing.T) {
	e := newOpenRoom(t, "ABC123", time.Minute)

	ran := make(chan struct{})
	ok := e.Submit("ABC123", "p1", true, func() error {
		close(ran)
		return errors.New("database down")
	})
	require.True(t, ok)
	<-ran

	assert.Equal(t, 1, e.Score("ABC123", "p1"))
	assert.True(t, e.HasAnswered("ABC123", "p1"))
}

func TestPersistPanicIsRecovered(t *testing.T) {
	e := newOpenRoom(t, "ABC123", time.Minute)

	ran := make(chan struct{})
	ok := e.Submit("ABC123", "p1", true, func() error {
		defer close(ran)
		panic("boom")
	})
	require.True(t, ok)
	<-ran

	// The room keeps operating after a persistence panic.
	assert.True(t, e.Submit("ABC123", "p2", true, nil))
	assert.Equal(t, 1, e.Score("ABC123", "p1"))
}

func TestRemoveRoom(t *testing.T) {
	e := newOpenRoom(t, "ABC123", time.Minute)
	require.True(t, e.Submit("ABC123", "p1", true, nil))

	e.RemoveRoom("ABC123")

	assert.False(t, e.Submit("ABC123", "p2", true, nil))
	assert.Nil(t, e.CurrentScores("ABC123"))

	// Removing twice is harmless.
	e.RemoveRoom("ABC123")
}

func TestRoomsAreIndependent(t *testing.T) {
	e := New()
	e.CreateRoom("AAAA11", "id-a")
	e.CreateRoom("BBBB22", "id-b")
	e.OpenWindow("AAAA11", time.Minute)

	assert.True(t, e.Submit("AAAA11", "p1", true, nil))
	assert.False(t, e.Submit("BBBB22", "p1", true, nil), "window of room B was never opened")

	e.CloseWindowNow("AAAA11")
	assert.Equal(t, map[string]int{"p1": 1}, e.CurrentScores("AAAA11"))
	assert.Empty(t, e.CurrentScores("BBBB22"))
}

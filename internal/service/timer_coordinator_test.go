package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func waitFired(t *testing.T, ch <-chan struct{}, within time.Duration) bool {
	t.Helper()
	select {
	case <-ch:
		return true
	case <-time.After(within):
		return false
	}
}

func TestRemainingOverall(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	remaining, timed := RemainingOverall(start, 0, start.Add(time.Hour))
	assert.False(t, timed)
	assert.Equal(t, time.Duration(0), remaining)

	remaining, timed = RemainingOverall(start, 30, start.Add(10*time.Minute))
	assert.True(t, timed)
	assert.Equal(t, 20*time.Minute, remaining)

	// past the window: floored at zero, never negative
	remaining, timed = RemainingOverall(start, 30, start.Add(2*time.Hour))
	assert.True(t, timed)
	assert.Equal(t, time.Duration(0), remaining)
}

func TestOverallTimerFiresImmediatelyWhenWindowOver(t *testing.T) {
	tc := NewTimerCoordinator()
	defer tc.Stop()

	fired := make(chan struct{})
	tc.StartOverall(0, func() { close(fired) })

	assert.True(t, waitFired(t, fired, time.Second))
}

func TestCancelQuestionPreventsCallback(t *testing.T) {
	tc := NewTimerCoordinator()
	defer tc.Stop()

	fired := make(chan struct{})
	tc.StartQuestion(20*time.Millisecond, func(int) { close(fired) })
	tc.CancelQuestion()

	assert.False(t, waitFired(t, fired, 100*time.Millisecond))
}

func TestQuestionLiveReflectsCancellation(t *testing.T) {
	tc := NewTimerCoordinator()
	defer tc.Stop()

	tc.StartQuestion(time.Hour, func(int) {})
	tc.mu.Lock()
	epoch := tc.questionEpoch
	tc.mu.Unlock()

	assert.True(t, tc.QuestionLive(epoch))
	tc.CancelQuestion()
	assert.False(t, tc.QuestionLive(epoch))
}

func TestStartQuestionReplacesPreviousTimer(t *testing.T) {
	tc := NewTimerCoordinator()
	defer tc.Stop()

	stale := make(chan struct{})
	fresh := make(chan struct{})
	tc.StartQuestion(30*time.Millisecond, func(int) { close(stale) })
	tc.StartQuestion(10*time.Millisecond, func(int) { close(fresh) })

	assert.True(t, waitFired(t, fresh, time.Second))
	assert.False(t, waitFired(t, stale, 100*time.Millisecond))
}

func TestStopSilencesBothTimers(t *testing.T) {
	tc := NewTimerCoordinator()

	fired := make(chan struct{}, 2)
	tc.StartOverall(20*time.Millisecond, func() { fired <- struct{}{} })
	tc.StartQuestion(20*time.Millisecond, func(int) { fired <- struct{}{} })
	tc.Stop()
	tc.Stop() // idempotent

	select {
	case <-fired:
		t.Fatal("timer fired after Stop")
	case <-time.After(100 * time.Millisecond):
	}

	// a stopped coordinator refuses new timers
	tc.StartQuestion(time.Millisecond, func(int) { fired <- struct{}{} })
	select {
	case <-fired:
		t.Fatal("timer armed after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}

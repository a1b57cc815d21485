package service

import (
	"sync"
	"time"
)

// RemainingOverall derives the attempt countdown from the recorded start
// instant. Never resumed from a previously displayed value: reloads and
// suspends cannot stretch the window. The second return is false for untimed
// quizzes (duration 0).
func RemainingOverall(startedAt time.Time, durationMinutes int, now time.Time) (time.Duration, bool) {
	if durationMinutes <= 0 {
		return 0, false
	}
	remaining := time.Duration(durationMinutes)*time.Minute - now.Sub(startedAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// TimerCoordinator owns the two countdown handles of one live session: the
// overall attempt clock and the per-question clock. Each handle is cancelled
// before it is restarted, and an epoch guard turns callbacks from an already
// cancelled timer into no-ops, so at most one per-question callback is ever
// live.
type TimerCoordinator struct {
	mu            sync.Mutex
	overall       *time.Timer
	question      *time.Timer
	overallEpoch  int
	questionEpoch int
	stopped       bool
}

func NewTimerCoordinator() *TimerCoordinator {
	return &TimerCoordinator{}
}

// StartOverall arms the attempt clock. A non-positive duration fires the
// expiry immediately (the window was already over when the session mounted).
func (t *TimerCoordinator) StartOverall(d time.Duration, expire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	if t.overall != nil {
		t.overall.Stop()
	}
	t.overallEpoch++
	epoch := t.overallEpoch
	t.overall = time.AfterFunc(d, func() {
		if t.liveOverall(epoch) {
			expire()
		}
	})
}

// StartQuestion arms the per-question clock, cancelling any previous one
// first. The callback receives the epoch it was armed under: the check here
// only discards callbacks that are already stale; the owner must re-validate
// the epoch with QuestionLive after taking its own lock, because a callback
// can pass this check and then lose the lock race to a navigation that
// cancels it.
func (t *TimerCoordinator) StartQuestion(d time.Duration, expire func(epoch int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	if t.question != nil {
		t.question.Stop()
	}
	t.questionEpoch++
	epoch := t.questionEpoch
	t.question = time.AfterFunc(d, func() {
		if t.QuestionLive(epoch) {
			expire(epoch)
		}
	})
}

func (t *TimerCoordinator) CancelQuestion() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.questionEpoch++
	if t.question != nil {
		t.question.Stop()
		t.question = nil
	}
}

// Stop releases both handles. Idempotent; runs on every session exit path.
func (t *TimerCoordinator) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.overallEpoch++
	t.questionEpoch++
	if t.overall != nil {
		t.overall.Stop()
		t.overall = nil
	}
	if t.question != nil {
		t.question.Stop()
		t.question = nil
	}
}

func (t *TimerCoordinator) liveOverall(epoch int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped && t.overallEpoch == epoch
}

// QuestionLive reports whether the given question-timer epoch is still
// current. Cancellation and Stop both invalidate every earlier epoch.
func (t *TimerCoordinator) QuestionLive(epoch int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped && t.questionEpoch == epoch
}

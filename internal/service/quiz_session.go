package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"placement_portal_backend/internal/model"
	"placement_portal_backend/internal/util"
	"placement_portal_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type SessionState int

const (
	SessionLoading SessionState = iota
	SessionActive
	SessionSubmitting
	SessionSubmitted
	SessionGraded
)

func (s SessionState) String() string {
	switch s {
	case SessionLoading:
		return "loading"
	case SessionActive:
		return "active"
	case SessionSubmitting:
		return "submitting"
	case SessionSubmitted:
		return "submitted"
	case SessionGraded:
		return "graded"
	}
	return "unknown"
}

type SessionEvent string

const (
	EventStarted     SessionEvent = "started"
	EventAnswered    SessionEvent = "answered"
	EventSubmitted   SessionEvent = "submitted"
	EventTimeExpired SessionEvent = "time_expired"
)

// sessionBackend is the slice of the persistence layer a live session drives.
type sessionBackend interface {
	SaveAnswer(studentID uint, attemptID string, rec *model.AttemptAnswer) error
	SubmitAttempt(studentID uint, attemptID string, timeExpired bool) (*model.QuizAttempt, error)
}

// SessionView is the client-facing snapshot of a live session.
type SessionView struct {
	AttemptID        string                `json:"attemptId"`
	State            string                `json:"state"`
	ActiveIndex      int                   `json:"activeIndex"`
	RemainingSeconds int                   `json:"remainingSeconds"`
	Untimed          bool                  `json:"untimed"`
	TimeExpired      bool                  `json:"timeExpired"`
	Answers          []model.AttemptAnswer `json:"answers"`
}

// QuizSession is the attempt state machine for one student's live run at a
// quiz: Loading -> Active(index) -> Submitting -> Submitted -> Graded.
// Navigation re-enters Active with a new index. HTTP handlers and both timer
// callbacks serialize on the session mutex, which is this engine's rendering
// of the single-threaded loop the flow was designed for: a timer can never
// interleave with a half-finished save.
type QuizSession struct {
	mu sync.Mutex

	quiz      *model.Quiz
	attempt   *model.QuizAttempt
	studentID uint
	qOrder    []int

	backend sessionBackend
	timers  *TimerCoordinator
	tracker *AnswerTracker
	now     func() time.Time
	onEvent func(ev SessionEvent, attemptID string, questionIndex int)
	log     *zap.Logger

	state  SessionState
	active int
	closed bool
}

func newQuizSession(quiz *model.Quiz, attempt *model.QuizAttempt, backend sessionBackend, now func() time.Time, onEvent func(SessionEvent, string, int), log *zap.Logger) *QuizSession {
	s := &QuizSession{
		quiz:      quiz,
		attempt:   attempt,
		studentID: attempt.StudentID,
		qOrder:    QuestionOrder(attempt.ID, len(quiz.Questions), quiz.ShuffleQuestions),
		backend:   backend,
		timers:    NewTimerCoordinator(),
		now:       now,
		onEvent:   onEvent,
		log:       log,
		state:     SessionLoading,
	}
	s.tracker = NewAnswerTracker(attempt.ID, func(rec *model.AttemptAnswer) error {
		return backend.SaveAnswer(s.studentID, attempt.ID, rec)
	}, now, log)
	return s
}

// Start moves Loading -> Active(0): restores persisted answers, recomputes
// the remaining window from started_at and arms both clocks. A window that
// is already over auto-submits immediately.
func (s *QuizSession) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionLoading {
		return
	}

	s.tracker.Restore(s.attempt.Answers)
	s.state = SessionActive
	s.active = 0
	s.tracker.Activate(0)

	if remaining, timed := RemainingOverall(s.attempt.StartedAt, s.quiz.DurationMinutes, s.now()); timed {
		s.timers.StartOverall(remaining, s.handleOverallExpiry)
	}
	s.armQuestionTimerLocked()

	s.notify(EventStarted, 0)
}

// View recomputes remaining time from the start instant on every call.
func (s *QuizSession) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining, timed := RemainingOverall(s.attempt.StartedAt, s.quiz.DurationMinutes, s.now())
	return SessionView{
		AttemptID:        s.attempt.ID,
		State:            s.state.String(),
		ActiveIndex:      s.active,
		RemainingSeconds: int(remaining / time.Second),
		Untimed:          !timed,
		TimeExpired:      s.attempt.TimeExpired,
		Answers:          s.tracker.Snapshot(),
	}
}

// Attempt returns the session's current attempt record (graded after a
// successful submit).
func (s *QuizSession) Attempt() *model.QuizAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempt
}

// SetAnswer records the student's current entry for a question. Rejected with
// a conflict in any state past Active.
func (s *QuizSession) SetAnswer(index int, v model.AnswerValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionActive {
		return s.conflictLocked()
	}
	if index < 0 || index >= len(s.qOrder) {
		return fmt.Errorf("%w: question index %d out of range", util.ErrInvalidAnswer, index)
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %v", util.ErrInvalidAnswer, err)
	}
	if want := s.questionAt(index).QuestionType; v.Type != want {
		return fmt.Errorf("%w: expected %s payload", util.ErrInvalidAnswer, want)
	}

	s.tracker.SetAnswer(index, v)
	s.notify(EventAnswered, index)
	return nil
}

// Next advances to the following question; no-op at the last index. The
// active answer is persisted before the index changes.
func (s *QuizSession) Next() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navigateLocked(s.active + 1)
}

// Previous is symmetric to Next, bounds-checked at zero.
func (s *QuizSession) Previous() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navigateLocked(s.active - 1)
}

func (s *QuizSession) navigateLocked(target int) (int, error) {
	if s.state != SessionActive {
		return s.active, s.conflictLocked()
	}
	if target < 0 || target >= len(s.qOrder) {
		return s.active, nil
	}

	// Answer at the departing index is persisted before the index changes;
	// a degraded save is logged by the tracker and does not block.
	s.tracker.Persist(s.active)

	s.timers.CancelQuestion()
	s.active = target
	s.tracker.Activate(target)
	s.armQuestionTimerLocked()
	return s.active, nil
}

// Submit freezes the session and grades the attempt. A persistence failure
// leaves the session in Submitting so the caller can retry; a lost submission
// is the one unrecoverable failure, so it is never absorbed silently.
func (s *QuizSession) Submit(timeExpired bool) (*model.QuizAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case SessionActive, SessionSubmitting:
	case SessionSubmitted, SessionGraded:
		return nil, util.ErrAttemptSubmitted
	default:
		return nil, util.ErrSessionNotActive
	}

	s.state = SessionSubmitting

	s.tracker.Persist(s.active)
	if err := s.tracker.FlushDirty(); err != nil {
		return nil, err
	}

	graded, err := s.backend.SubmitAttempt(s.studentID, s.attempt.ID, timeExpired)
	if err != nil {
		if errors.Is(err, util.ErrAttemptSubmitted) {
			// Finalized elsewhere (expiry reaper won the race).
			s.state = SessionGraded
			s.timers.Stop()
		}
		return nil, err
	}

	s.attempt = graded
	s.state = SessionGraded
	s.timers.Stop()

	if timeExpired {
		monitoring.AttemptsSubmitted.WithLabelValues("time_expired").Inc()
		s.notify(EventTimeExpired, s.active)
	} else {
		monitoring.AttemptsSubmitted.WithLabelValues("manual").Inc()
	}
	s.notify(EventSubmitted, s.active)
	return graded, nil
}

// Close releases both timers without touching attempt state. Idempotent;
// runs when the session is evicted or the server shuts down.
func (s *QuizSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.timers.Stop()
}

// Done reports whether the attempt reached a terminal state.
func (s *QuizSession) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state >= SessionSubmitted
}

// handleOverallExpiry is the hard timeout: it submits unconditionally. If the
// submit fails the session stays in Submitting and the background reaper
// finalizes the attempt.
func (s *QuizSession) handleOverallExpiry() {
	if _, err := s.Submit(true); err != nil && !errors.Is(err, util.ErrAttemptSubmitted) {
		s.log.Error("auto-submit on expiry failed, reaper will finalize",
			zap.String("attempt_id", s.attempt.ID),
			zap.Error(err))
	}
}

// handleQuestionExpiry is the soft timeout: it only advances navigation. At
// the last question it is a no-op and never forces submission. The epoch is
// re-validated under the session lock: a callback that fired just before a
// navigation cancelled it blocks on s.mu, and once it gets the lock its epoch
// is no longer live, so it must not advance a second time.
func (s *QuizSession) handleQuestionExpiry(epoch int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.timers.QuestionLive(epoch) {
		return
	}
	if s.state != SessionActive {
		return
	}
	s.navigateLocked(s.active + 1)
}

func (s *QuizSession) armQuestionTimerLocked() {
	if len(s.qOrder) == 0 {
		return
	}
	secs := s.quiz.QuestionTimer(s.qOrder[s.active])
	if secs <= 0 {
		return
	}
	s.timers.StartQuestion(time.Duration(secs)*time.Second, s.handleQuestionExpiry)
}

// conflictLocked names the conflict a mutation hit outside the Active state:
// a submission that is still retryable keeps the attempt frozen but not
// terminal, so it gets its own error.
func (s *QuizSession) conflictLocked() error {
	switch {
	case s.state == SessionSubmitting:
		return util.ErrSubmitInProgress
	case s.state >= SessionSubmitted:
		return util.ErrAttemptSubmitted
	}
	return util.ErrSessionNotActive
}

func (s *QuizSession) questionAt(display int) *model.QuizQuestion {
	return &s.quiz.Questions[s.qOrder[display]]
}

func (s *QuizSession) notify(ev SessionEvent, index int) {
	if s.onEvent != nil {
		s.onEvent(ev, s.attempt.ID, index)
	}
}

package service

import (
	"sync"
	"time"

	"placement_portal_backend/internal/model"
	"placement_portal_backend/internal/util"
	"placement_portal_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// SessionHub owns every live quiz session, one per open attempt. Sessions are
// created on start/resume, rebuilt from the database after a server restart,
// and evicted once the attempt is terminal. The hub is the only place
// sessions live; nothing else holds ambient session state, so two sessions
// can never cross-contaminate.
type SessionHub struct {
	mu       sync.Mutex
	sessions map[string]*QuizSession

	attempts   *AttemptService
	now        func() time.Time
	sweepEvery time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
	log        *zap.Logger
}

func NewSessionHub(attempts *AttemptService, sweepEvery time.Duration, log *zap.Logger) *SessionHub {
	return &SessionHub{
		sessions:   make(map[string]*QuizSession),
		attempts:   attempts,
		now:        time.Now,
		sweepEvery: sweepEvery,
		stop:       make(chan struct{}),
		log:        log,
	}
}

// StartSession starts or resumes the student's attempt at a quiz and returns
// its live session. Idempotent per (quiz, student): a second call while the
// attempt is open lands on the same session.
func (h *SessionHub) StartSession(studentID, quizID uint) (*QuizSession, error) {
	quiz, attempt, resumed, err := h.attempts.StartOrResume(studentID, quizID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.sessions[attempt.ID]; ok {
		return existing, nil
	}

	session := h.mount(quiz, attempt)
	h.log.Info("quiz session started",
		zap.String("attempt_id", attempt.ID),
		zap.Uint("quiz_id", quizID),
		zap.Uint("student_id", studentID),
		zap.Bool("resumed", resumed))
	return session, nil
}

// Get returns the live session for an attempt, rebuilding it from persisted
// state when the process has restarted since the attempt began. Submitted
// attempts have no session; their results are read from the repository.
func (h *SessionHub) Get(attemptID string, studentID uint) (*QuizSession, error) {
	h.mu.Lock()
	if session, ok := h.sessions[attemptID]; ok {
		h.mu.Unlock()
		if session.Attempt().StudentID != studentID {
			return nil, util.ErrAttemptForbidden
		}
		return session, nil
	}
	h.mu.Unlock()

	quiz, attempt, err := h.attempts.OpenAttempt(studentID, attemptID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if session, ok := h.sessions[attemptID]; ok {
		return session, nil
	}
	return h.mount(quiz, attempt), nil
}

// Evict closes and forgets a session; its timers are released.
func (h *SessionHub) Evict(attemptID string) {
	h.mu.Lock()
	session, ok := h.sessions[attemptID]
	if ok {
		delete(h.sessions, attemptID)
		monitoring.ActiveSessions.Set(float64(len(h.sessions)))
	}
	h.mu.Unlock()
	if ok {
		session.Close()
	}
}

// Run sweeps terminal sessions until Stop is called.
func (h *SessionHub) Run() {
	ticker := time.NewTicker(h.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.sweep()
		case <-h.stop:
			return
		}
	}
}

// Stop ends the sweep loop and closes every live session, releasing all
// timer handles on shutdown.
func (h *SessionHub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })

	h.mu.Lock()
	sessions := make([]*QuizSession, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*QuizSession)
	monitoring.ActiveSessions.Set(0)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// mount wires and starts a session; caller holds the hub lock.
func (h *SessionHub) mount(quiz *model.Quiz, attempt *model.QuizAttempt) *QuizSession {
	session := newQuizSession(quiz, attempt, h.attempts, h.now, h.observe, h.log)
	h.sessions[attempt.ID] = session
	monitoring.SessionsStarted.Inc()
	monitoring.ActiveSessions.Set(float64(len(h.sessions)))
	session.Start()
	return session
}

// observe is the lifecycle signal sink: surrounding code may watch these, but
// engine state only ever changes through the session operations themselves.
func (h *SessionHub) observe(ev SessionEvent, attemptID string, questionIndex int) {
	switch ev {
	case EventSubmitted:
		h.log.Info("attempt submitted",
			zap.String("attempt_id", attemptID))
	case EventTimeExpired:
		h.log.Info("attempt time expired, auto-submitted",
			zap.String("attempt_id", attemptID))
	case EventAnswered:
		h.log.Debug("answer recorded",
			zap.String("attempt_id", attemptID),
			zap.Int("question_index", questionIndex))
	}
}

func (h *SessionHub) sweep() {
	h.mu.Lock()
	var done []*QuizSession
	for id, s := range h.sessions {
		if s.Done() {
			done = append(done, s)
			delete(h.sessions, id)
		}
	}
	monitoring.ActiveSessions.Set(float64(len(h.sessions)))
	h.mu.Unlock()

	for _, s := range done {
		s.Close()
	}
}

package service

import (
	"errors"
	"testing"
	"time"

	"placement_portal_backend/internal/model"
	"placement_portal_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSessionBackend stands in for the attempt service behind a live session.
type fakeSessionBackend struct {
	saved       map[int]*model.AttemptAnswer
	saveErr     error
	submitErr   error
	submitCalls int
	timeExpired bool
}

func newFakeSessionBackend() *fakeSessionBackend {
	return &fakeSessionBackend{saved: make(map[int]*model.AttemptAnswer)}
}

func (b *fakeSessionBackend) SaveAnswer(studentID uint, attemptID string, rec *model.AttemptAnswer) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	b.saved[rec.QuestionIndex] = rec
	return nil
}

func (b *fakeSessionBackend) SubmitAttempt(studentID uint, attemptID string, timeExpired bool) (*model.QuizAttempt, error) {
	b.submitCalls++
	b.timeExpired = timeExpired
	if b.submitErr != nil {
		return nil, b.submitErr
	}
	now := time.Now()
	return &model.QuizAttempt{
		UUIDBase:    model.UUIDBase{ID: attemptID},
		StudentID:   studentID,
		IsSubmitted: true,
		IsGraded:    true,
		TimeExpired: timeExpired,
		SubmittedAt: &now,
	}, nil
}

func sessionQuiz() *model.Quiz {
	return &model.Quiz{
		Questions: []model.QuizQuestion{
			{QuestionType: model.QuestionMCQ, Options: []string{"a", "b", "c", "d"}, CorrectOption: "A", Marks: 5},
			{QuestionType: model.QuestionTrueFalse, IsTrue: boolPtr(true), Marks: 5},
			{QuestionType: model.QuestionFillBlank, CorrectText: "channel", Marks: 5},
		},
	}
}

func newTestSession(quiz *model.Quiz, backend sessionBackend, clk *fakeClock) *QuizSession {
	attempt := &model.QuizAttempt{
		UUIDBase:  model.UUIDBase{ID: "attempt-session-test"},
		StudentID: 7,
		StartedAt: clk.Now(),
	}
	return newQuizSession(quiz, attempt, backend, clk.Now, nil, zap.NewNop())
}

func TestSessionStartEntersActiveAtZero(t *testing.T) {
	clk := newFakeClock()
	session := newTestSession(sessionQuiz(), newFakeSessionBackend(), clk)
	defer session.Close()

	session.Start()

	view := session.View()
	assert.Equal(t, "active", view.State)
	assert.Equal(t, 0, view.ActiveIndex)
	assert.True(t, view.Untimed)
	assert.Empty(t, view.Answers)
}

func TestSessionStartRestoresPersistedAnswers(t *testing.T) {
	clk := newFakeClock()
	quiz := sessionQuiz()
	rec := model.AttemptAnswer{AttemptID: "attempt-session-test", QuestionIndex: 1, TimeSpentSeconds: 12}
	require.NoError(t, rec.SetValue(model.AnswerValue{Type: model.QuestionTrueFalse, Bool: boolPtr(true)}))

	attempt := &model.QuizAttempt{
		UUIDBase:  model.UUIDBase{ID: "attempt-session-test"},
		StudentID: 7,
		StartedAt: clk.Now(),
		Answers:   []model.AttemptAnswer{rec},
	}
	session := newQuizSession(quiz, attempt, newFakeSessionBackend(), clk.Now, nil, zap.NewNop())
	defer session.Close()

	session.Start()

	view := session.View()
	require.Len(t, view.Answers, 1)
	assert.Equal(t, 1, view.Answers[0].QuestionIndex)
	assert.Equal(t, 12, view.Answers[0].TimeSpentSeconds)
}

func TestSessionSetAnswerValidation(t *testing.T) {
	clk := newFakeClock()
	session := newTestSession(sessionQuiz(), newFakeSessionBackend(), clk)
	defer session.Close()
	session.Start()

	err := session.SetAnswer(99, model.AnswerValue{Type: model.QuestionMCQ, Option: "A"})
	assert.ErrorIs(t, err, util.ErrInvalidAnswer)

	err = session.SetAnswer(0, model.AnswerValue{Type: model.QuestionMCQ, Option: "Z"})
	assert.ErrorIs(t, err, util.ErrInvalidAnswer)

	// payload type must match the question at that display index
	err = session.SetAnswer(0, model.AnswerValue{Type: model.QuestionFillBlank, Text: "x"})
	assert.ErrorIs(t, err, util.ErrInvalidAnswer)

	assert.NoError(t, session.SetAnswer(0, model.AnswerValue{Type: model.QuestionMCQ, Option: "B"}))
}

func TestSessionNavigationPersistsAndClampsAtBounds(t *testing.T) {
	clk := newFakeClock()
	backend := newFakeSessionBackend()
	session := newTestSession(sessionQuiz(), backend, clk)
	defer session.Close()
	session.Start()

	require.NoError(t, session.SetAnswer(0, model.AnswerValue{Type: model.QuestionMCQ, Option: "A"}))

	// previous at index zero is a no-op
	index, err := session.Previous()
	require.NoError(t, err)
	assert.Equal(t, 0, index)

	// moving away persists the departing answer
	index, err = session.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, index)
	assert.Contains(t, backend.saved, 0)

	index, err = session.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, index)

	// next at the last index is a no-op, never a submit
	index, err = session.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, index)
	assert.Equal(t, 0, backend.submitCalls)
}

func TestSessionSubmitIsTerminal(t *testing.T) {
	clk := newFakeClock()
	backend := newFakeSessionBackend()
	session := newTestSession(sessionQuiz(), backend, clk)
	defer session.Close()
	session.Start()

	require.NoError(t, session.SetAnswer(0, model.AnswerValue{Type: model.QuestionMCQ, Option: "A"}))

	attempt, err := session.Submit(false)
	require.NoError(t, err)
	assert.True(t, attempt.IsSubmitted)
	assert.True(t, attempt.IsGraded)
	assert.Equal(t, "graded", session.View().State)
	assert.Contains(t, backend.saved, 0)

	// every mutation after submit conflicts
	err = session.SetAnswer(1, model.AnswerValue{Type: model.QuestionTrueFalse, Bool: boolPtr(true)})
	assert.ErrorIs(t, err, util.ErrAttemptSubmitted)

	_, err = session.Next()
	assert.ErrorIs(t, err, util.ErrAttemptSubmitted)

	_, err = session.Submit(false)
	assert.ErrorIs(t, err, util.ErrAttemptSubmitted)
	assert.Equal(t, 1, backend.submitCalls)
}

func TestSessionSubmitFlushFailureStaysRetryable(t *testing.T) {
	clk := newFakeClock()
	backend := newFakeSessionBackend()
	session := newTestSession(sessionQuiz(), backend, clk)
	defer session.Close()
	session.Start()

	require.NoError(t, session.SetAnswer(0, model.AnswerValue{Type: model.QuestionMCQ, Option: "A"}))

	backend.saveErr = errors.New("store unavailable")
	_, err := session.Submit(false)
	require.Error(t, err)
	assert.Equal(t, "submitting", session.View().State)
	assert.Equal(t, 0, backend.submitCalls)

	// frozen but not terminal: mutations report the in-flight submission
	err = session.SetAnswer(1, model.AnswerValue{Type: model.QuestionTrueFalse, Bool: boolPtr(true)})
	assert.ErrorIs(t, err, util.ErrSubmitInProgress)
	_, err = session.Next()
	assert.ErrorIs(t, err, util.ErrSubmitInProgress)

	// the store recovers and the retry goes through
	backend.saveErr = nil
	attempt, err := session.Submit(false)
	require.NoError(t, err)
	assert.True(t, attempt.IsSubmitted)
}

func TestSessionSubmitAbsorbsReaperRace(t *testing.T) {
	clk := newFakeClock()
	backend := newFakeSessionBackend()
	session := newTestSession(sessionQuiz(), backend, clk)
	defer session.Close()
	session.Start()

	backend.submitErr = util.ErrAttemptSubmitted
	_, err := session.Submit(false)
	assert.ErrorIs(t, err, util.ErrAttemptSubmitted)

	// the session is terminal either way
	assert.True(t, session.Done())
}

func TestOverallExpiryAutoSubmits(t *testing.T) {
	clk := newFakeClock()
	backend := newFakeSessionBackend()
	quiz := sessionQuiz()
	quiz.DurationMinutes = 30
	session := newTestSession(quiz, backend, clk)
	defer session.Close()
	session.Start()

	session.handleOverallExpiry()

	assert.Equal(t, 1, backend.submitCalls)
	assert.True(t, backend.timeExpired)
	assert.True(t, session.Done())
}

// questionEpoch reads the epoch the session's question timer is currently
// armed under, the token an in-flight expiry callback would carry.
func questionEpoch(s *QuizSession) int {
	s.timers.mu.Lock()
	defer s.timers.mu.Unlock()
	return s.timers.questionEpoch
}

func timedSessionQuiz() *model.Quiz {
	quiz := sessionQuiz()
	quiz.PerQuestionTimerEnabled = true
	for i := range quiz.Questions {
		quiz.Questions[i].TimerSeconds = 60
	}
	return quiz
}

func TestQuestionExpiryAdvancesButNeverSubmits(t *testing.T) {
	clk := newFakeClock()
	backend := newFakeSessionBackend()
	session := newTestSession(timedSessionQuiz(), backend, clk)
	defer session.Close()
	session.Start()

	session.handleQuestionExpiry(questionEpoch(session))
	assert.Equal(t, 1, session.View().ActiveIndex)

	session.handleQuestionExpiry(questionEpoch(session))
	assert.Equal(t, 2, session.View().ActiveIndex)

	// at the last index expiry is a no-op
	session.handleQuestionExpiry(questionEpoch(session))
	assert.Equal(t, 2, session.View().ActiveIndex)
	assert.Equal(t, 0, backend.submitCalls)
	assert.Equal(t, "active", session.View().State)
}

func TestStaleQuestionExpiryAfterNavigationIsNoOp(t *testing.T) {
	clk := newFakeClock()
	backend := newFakeSessionBackend()
	session := newTestSession(timedSessionQuiz(), backend, clk)
	defer session.Close()
	session.Start()

	// A callback that fired for question 0 but lost the mutex race to the
	// user's navigation arrives carrying a cancelled epoch.
	stale := questionEpoch(session)

	index, err := session.Next()
	require.NoError(t, err)
	require.Equal(t, 1, index)

	// The cancelled callback must not advance a second time; question 1 keeps
	// its full window.
	session.handleQuestionExpiry(stale)
	assert.Equal(t, 1, session.View().ActiveIndex)

	// the epoch armed by the navigation is still live
	session.handleQuestionExpiry(questionEpoch(session))
	assert.Equal(t, 2, session.View().ActiveIndex)
}

func TestViewRecomputesRemainingFromStart(t *testing.T) {
	clk := newFakeClock()
	backend := newFakeSessionBackend()
	quiz := sessionQuiz()
	quiz.DurationMinutes = 30
	session := newTestSession(quiz, backend, clk)
	defer session.Close()
	session.Start()

	assert.Equal(t, 30*60, session.View().RemainingSeconds)

	clk.Advance(10 * time.Minute)
	view := session.View()
	assert.Equal(t, 20*60, view.RemainingSeconds)
	assert.False(t, view.Untimed)
}

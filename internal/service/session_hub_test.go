package service

import (
	"testing"
	"time"

	"placement_portal_backend/internal/model"
	"placement_portal_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) (*SessionHub, *model.Quiz) {
	t.Helper()
	svc, db := newAttemptServiceStack(t)
	quiz := seedPublishedQuiz(t, db, 0)
	hub := NewSessionHub(svc, time.Minute, zap.NewNop())
	t.Cleanup(hub.Stop)
	return hub, quiz
}

func TestStartSessionIsIdempotentPerAttempt(t *testing.T) {
	hub, quiz := newTestHub(t)

	first, err := hub.StartSession(1, quiz.ID)
	require.NoError(t, err)
	second, err := hub.StartSession(1, quiz.ID)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "active", first.View().State)

	other, err := hub.StartSession(2, quiz.ID)
	require.NoError(t, err)
	assert.NotSame(t, first, other)
}

func TestGetRebuildsSessionFromPersistedState(t *testing.T) {
	hub, quiz := newTestHub(t)

	session, err := hub.StartSession(1, quiz.ID)
	require.NoError(t, err)
	attemptID := session.Attempt().ID

	require.NoError(t, session.SetAnswer(0, model.AnswerValue{Type: model.QuestionMCQ, Option: "A"}))
	_, err = session.Next()
	require.NoError(t, err)

	// simulate a restart: the hub loses its in-memory sessions
	hub.Evict(attemptID)

	rebuilt, err := hub.Get(attemptID, 1)
	require.NoError(t, err)
	assert.NotSame(t, session, rebuilt)

	view := rebuilt.View()
	require.Len(t, view.Answers, 1)
	assert.Equal(t, 0, view.Answers[0].QuestionIndex)
	// resume restarts at the first question
	assert.Equal(t, 0, view.ActiveIndex)
}

func TestGetEnforcesOwnership(t *testing.T) {
	hub, quiz := newTestHub(t)

	session, err := hub.StartSession(1, quiz.ID)
	require.NoError(t, err)

	_, err = hub.Get(session.Attempt().ID, 2)
	assert.ErrorIs(t, err, util.ErrAttemptForbidden)

	_, err = hub.Get("no-such-attempt", 1)
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestGetRefusesSubmittedAttempt(t *testing.T) {
	hub, quiz := newTestHub(t)

	session, err := hub.StartSession(1, quiz.ID)
	require.NoError(t, err)
	attemptID := session.Attempt().ID

	_, err = session.Submit(false)
	require.NoError(t, err)
	hub.Evict(attemptID)

	_, err = hub.Get(attemptID, 1)
	assert.ErrorIs(t, err, util.ErrAttemptSubmitted)
}

func TestSweepEvictsTerminalSessions(t *testing.T) {
	hub, quiz := newTestHub(t)

	session, err := hub.StartSession(1, quiz.ID)
	require.NoError(t, err)
	_, err = session.Submit(false)
	require.NoError(t, err)

	hub.sweep()

	hub.mu.Lock()
	_, stillThere := hub.sessions[session.Attempt().ID]
	hub.mu.Unlock()
	assert.False(t, stillThere)
}

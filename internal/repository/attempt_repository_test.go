package repository

import (
	"path/filepath"
	"testing"
	"time"

	"placement_portal_backend/internal/model"
	"placement_portal_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Quiz{},
		&model.QuizQuestion{},
		&model.QuizAttempt{},
		&model.AttemptAnswer{},
	))
	return db
}

func seedQuiz(t *testing.T, db *gorm.DB, durationMinutes int) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{
		Title:           "Aptitude Round 1",
		DurationMinutes: durationMinutes,
		IsPublished:     true,
	}
	require.NoError(t, db.Create(quiz).Error)
	return quiz
}

func mcqRecord(t *testing.T, attemptID string, index int, option string) *model.AttemptAnswer {
	t.Helper()
	rec := &model.AttemptAnswer{AttemptID: attemptID, QuestionIndex: index}
	require.NoError(t, rec.SetValue(model.AnswerValue{Type: model.QuestionMCQ, Option: option}))
	return rec
}

func TestStartOrResumeIsIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewAttemptRepository(db)
	quiz := seedQuiz(t, db, 30)
	start := time.Now().Truncate(time.Second)

	first, resumed, err := repo.StartOrResume(quiz.ID, 1, start)
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.NotEmpty(t, first.ID)

	second, resumed, err := repo.StartOrResume(quiz.ID, 1, start.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, first.ID, second.ID)
	// started_at belongs to the first start, never reassigned on resume
	assert.WithinDuration(t, first.StartedAt, second.StartedAt, time.Second)

	// a different student gets their own attempt
	other, resumed, err := repo.StartOrResume(quiz.ID, 2, start)
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestUpsertAnswerLastWriteWins(t *testing.T) {
	db := testDB(t)
	repo := NewAttemptRepository(db)
	quiz := seedQuiz(t, db, 0)

	attempt, _, err := repo.StartOrResume(quiz.ID, 1, time.Now())
	require.NoError(t, err)

	require.NoError(t, repo.UpsertAnswer(attempt.ID, 1, mcqRecord(t, attempt.ID, 0, "A")))
	require.NoError(t, repo.UpsertAnswer(attempt.ID, 1, mcqRecord(t, attempt.ID, 0, "C")))
	require.NoError(t, repo.UpsertAnswer(attempt.ID, 1, mcqRecord(t, attempt.ID, 1, "B")))

	loaded, err := repo.FindOwned(attempt.ID, 1)
	require.NoError(t, err)
	require.Len(t, loaded.Answers, 2)

	v, err := loaded.Answers[0].Value()
	require.NoError(t, err)
	assert.Equal(t, "C", v.Option)
}

func TestUpsertAnswerEnforcesOwnership(t *testing.T) {
	db := testDB(t)
	repo := NewAttemptRepository(db)
	quiz := seedQuiz(t, db, 0)

	attempt, _, err := repo.StartOrResume(quiz.ID, 1, time.Now())
	require.NoError(t, err)

	err = repo.UpsertAnswer(attempt.ID, 2, mcqRecord(t, attempt.ID, 0, "A"))
	assert.ErrorIs(t, err, util.ErrAttemptForbidden)

	_, err = repo.FindOwned(attempt.ID, 2)
	assert.ErrorIs(t, err, util.ErrAttemptForbidden)

	err = repo.UpsertAnswer("no-such-attempt", 1, mcqRecord(t, "no-such-attempt", 0, "A"))
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestSubmitGradedSetsFlagsAtomically(t *testing.T) {
	db := testDB(t)
	repo := NewAttemptRepository(db)
	quiz := seedQuiz(t, db, 30)

	attempt, _, err := repo.StartOrResume(quiz.ID, 1, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.UpsertAnswer(attempt.ID, 1, mcqRecord(t, attempt.ID, 0, "B")))

	grade := model.GradeBreakdown{
		TotalScore: 10, RawScore: 10, MaxScore: 20, Percentage: 50,
		Questions: []model.QuestionScore{
			{QuestionIndex: 0, Answered: true, IsCorrect: true, PointsEarned: 10, MaxPoints: 10},
			{QuestionIndex: 1, MaxPoints: 10},
		},
	}
	submittedAt := time.Now()

	graded, err := repo.SubmitGraded(attempt.ID, 1, submittedAt, false, grade)
	require.NoError(t, err)

	assert.True(t, graded.IsSubmitted)
	assert.True(t, graded.IsGraded)
	assert.False(t, graded.TimeExpired)
	require.NotNil(t, graded.SubmittedAt)
	assert.Equal(t, 10.0, graded.TotalScore)
	assert.Equal(t, 50.0, graded.Percentage)

	require.Len(t, graded.Answers, 1)
	assert.True(t, graded.Answers[0].IsCorrect)
	assert.Equal(t, 10.0, graded.Answers[0].PointsEarned)
}

func TestSubmittedAttemptIsTerminal(t *testing.T) {
	db := testDB(t)
	repo := NewAttemptRepository(db)
	quiz := seedQuiz(t, db, 30)

	attempt, _, err := repo.StartOrResume(quiz.ID, 1, time.Now())
	require.NoError(t, err)

	_, err = repo.SubmitGraded(attempt.ID, 1, time.Now(), true, model.GradeBreakdown{})
	require.NoError(t, err)

	// answers conflict
	err = repo.UpsertAnswer(attempt.ID, 1, mcqRecord(t, attempt.ID, 0, "A"))
	assert.ErrorIs(t, err, util.ErrAttemptSubmitted)

	// a second submit conflicts
	_, err = repo.SubmitGraded(attempt.ID, 1, time.Now(), false, model.GradeBreakdown{})
	assert.ErrorIs(t, err, util.ErrAttemptSubmitted)

	// a new start creates a fresh attempt instead of resuming the closed one
	fresh, resumed, err := repo.StartOrResume(quiz.ID, 1, time.Now())
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.NotEqual(t, attempt.ID, fresh.ID)
}

func TestFindOpenTimedSkipsUntimedAndSubmitted(t *testing.T) {
	db := testDB(t)
	repo := NewAttemptRepository(db)
	timed := seedQuiz(t, db, 30)
	untimed := seedQuiz(t, db, 0)

	open, _, err := repo.StartOrResume(timed.ID, 1, time.Now())
	require.NoError(t, err)
	_, _, err = repo.StartOrResume(untimed.ID, 2, time.Now())
	require.NoError(t, err)

	closed, _, err := repo.StartOrResume(timed.ID, 3, time.Now())
	require.NoError(t, err)
	_, err = repo.SubmitGraded(closed.ID, 3, time.Now(), false, model.GradeBreakdown{})
	require.NoError(t, err)

	candidates, err := repo.FindOpenTimed()
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, open.ID, candidates[0].ID)
}

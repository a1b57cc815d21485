package repository

import (
	"errors"
	"time"

	"placement_portal_backend/internal/model"
	"placement_portal_backend/internal/util"

	"gorm.io/gorm"
)

// AttemptRepository is the durable store for attempt and answer records. It
// owns the terminal-state rule: once an attempt is submitted no answer
// mutation is accepted, and grading happens exactly once, atomically with
// submission.
type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// StartOrResume returns the student's existing non-submitted attempt for the
// quiz, or creates one with a server-assigned start instant. Idempotent: at
// most one open attempt exists per (quiz, student).
func (r *AttemptRepository) StartOrResume(quizID, studentID uint, now time.Time) (*model.QuizAttempt, bool, error) {
	var attempt model.QuizAttempt
	resumed := false

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("attempt_answers.question_index ASC")
		}).
			Where("quiz_id = ? AND student_id = ? AND is_submitted = ?", quizID, studentID, false).
			First(&attempt).Error
		if err == nil {
			resumed = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		attempt = model.QuizAttempt{
			QuizID:    quizID,
			StudentID: studentID,
			StartedAt: now,
		}
		return tx.Create(&attempt).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &attempt, resumed, nil
}

// FindOwned loads an attempt with its answers, enforcing that the caller is
// the student who started it.
func (r *AttemptRepository) FindOwned(attemptID string, studentID uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("attempt_answers.question_index ASC")
	}).First(&attempt, "id = ?", attemptID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrAttemptForbidden
	}
	return &attempt, nil
}

// UpsertAnswer writes the answer record for one question index, replacing any
// earlier record for the same index (last write wins). Rejected with a
// conflict once the attempt is submitted.
func (r *AttemptRepository) UpsertAnswer(attemptID string, studentID uint, rec *model.AttemptAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var attempt model.QuizAttempt
		err := tx.Select("id", "student_id", "is_submitted").First(&attempt, "id = ?", attemptID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrAttemptNotFound
		}
		if err != nil {
			return err
		}
		if attempt.StudentID != studentID {
			return util.ErrAttemptForbidden
		}
		if attempt.IsSubmitted {
			return util.ErrAttemptSubmitted
		}

		var existing model.AttemptAnswer
		err = tx.Where("attempt_id = ? AND question_index = ?", attemptID, rec.QuestionIndex).
			First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing.ID == 0 {
			rec.AttemptID = attemptID
			return tx.Create(rec).Error
		}

		existing.QuestionType = rec.QuestionType
		existing.Answer = rec.Answer
		existing.TimeSpentSeconds = rec.TimeSpentSeconds
		return tx.Save(&existing).Error
	})
}

// SubmitGraded freezes the attempt: sets is_submitted and is_graded together,
// stamps the submission instant and writes the per-question grading fields,
// all in one transaction. A second call conflicts.
func (r *AttemptRepository) SubmitGraded(attemptID string, studentID uint, now time.Time, timeExpired bool, grade model.GradeBreakdown) (*model.QuizAttempt, error) {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var attempt model.QuizAttempt
		err := tx.First(&attempt, "id = ?", attemptID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrAttemptNotFound
		}
		if err != nil {
			return err
		}
		if attempt.StudentID != studentID {
			return util.ErrAttemptForbidden
		}
		if attempt.IsSubmitted {
			return util.ErrAttemptSubmitted
		}

		attempt.SubmittedAt = &now
		attempt.IsSubmitted = true
		attempt.IsGraded = true
		attempt.TimeExpired = timeExpired
		attempt.TotalScore = grade.TotalScore
		attempt.MaxScore = grade.MaxScore
		attempt.Percentage = grade.Percentage
		if err := tx.Save(&attempt).Error; err != nil {
			return err
		}

		for _, q := range grade.Questions {
			if !q.Answered {
				continue
			}
			err := tx.Model(&model.AttemptAnswer{}).
				Where("attempt_id = ? AND question_index = ?", attemptID, q.QuestionIndex).
				Updates(map[string]interface{}{
					"is_correct":    q.IsCorrect,
					"points_earned": q.PointsEarned,
					"max_points":    q.MaxPoints,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindOwned(attemptID, studentID)
}

// FindOpenTimed lists non-submitted attempts of timed quizzes, for the expiry
// reaper. Expiry itself is decided in Go against the quiz duration so the
// query stays portable.
func (r *AttemptRepository) FindOpenTimed() ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id AND quizzes.duration_minutes > 0").
		Where("quiz_attempts.is_submitted = ?", false).
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByQuiz(quizID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	var attempts []model.QuizAttempt
	var total int64

	query := r.DB.Model(&model.QuizAttempt{}).Where("quiz_id = ?", quizID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}

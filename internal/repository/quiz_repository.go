package repository

import (
	"errors"

	"placement_portal_backend/internal/model"
	"placement_portal_backend/internal/util"

	"gorm.io/gorm"
)

// QuizRepository is the definition store: quiz content is written through the
// authoring API and read-only to the attempt engine.
type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Save(quiz).Error
}

func (r *QuizRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&model.QuizQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Quiz{}, id).Error
	})
}

// FindByID loads a quiz with its questions in stable canonical order.
func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("quiz_questions.`order` ASC, quiz_questions.id ASC")
	}).First(&quiz, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *QuizRepository) List(page, limit int, publishedOnly bool) ([]model.Quiz, int64, error) {
	var quizzes []model.Quiz
	var total int64

	query := r.DB.Model(&model.Quiz{})
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&quizzes).Error
	return quizzes, total, err
}

func (r *QuizRepository) CreateQuestion(q *model.QuizQuestion) error {
	return r.DB.Create(q).Error
}

func (r *QuizRepository) UpdateQuestion(q *model.QuizQuestion) error {
	return r.DB.Save(q).Error
}

func (r *QuizRepository) FindQuestion(quizID, questionID uint) (*model.QuizQuestion, error) {
	var q model.QuizQuestion
	err := r.DB.Where("quiz_id = ? AND id = ?", quizID, questionID).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizRepository) DeleteQuestion(quizID, questionID uint) error {
	res := r.DB.Where("quiz_id = ? AND id = ?", quizID, questionID).Delete(&model.QuizQuestion{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrQuestionNotFound
	}
	return nil
}

// RecalculateTotalMarks keeps the quiz's denormalized mark total in step with
// its questions.
func (r *QuizRepository) RecalculateTotalMarks(quizID uint) error {
	var total float64
	err := r.DB.Model(&model.QuizQuestion{}).
		Where("quiz_id = ?", quizID).
		Select("COALESCE(SUM(marks), 0)").
		Scan(&total).Error
	if err != nil {
		return err
	}
	return r.DB.Model(&model.Quiz{}).Where("id = ?", quizID).Update("total_marks", total).Error
}

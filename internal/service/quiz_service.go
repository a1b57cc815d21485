package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"placement_portal_backend/internal/model"
	"placement_portal_backend/internal/repository"
	"placement_portal_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// QuizService owns the quiz definition side: authoring CRUD for staff and a
// cached read path for the attempt engine. Published definitions are cached
// in Redis so starting a session does not hit MySQL on every reload; any
// authoring mutation invalidates the cached entry.
type QuizService struct {
	Repo     *repository.QuizRepository
	rdb      *redis.Client
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewQuizService(repo *repository.QuizRepository, rdb *redis.Client, cacheTTLMinutes int, log *zap.Logger) *QuizService {
	return &QuizService{
		Repo:     repo,
		rdb:      rdb,
		cacheTTL: time.Duration(cacheTTLMinutes) * time.Minute,
		log:      log,
	}
}

func quizCacheKey(id uint) string {
	return fmt.Sprintf("quiz:def:%d", id)
}

// GetByID loads a quiz with questions, trying the cache first. Redis being
// down degrades to plain database reads.
func (s *QuizService) GetByID(id uint) (*model.Quiz, error) {
	ctx := context.Background()
	key := quizCacheKey(id)

	if s.rdb != nil {
		if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var quiz model.Quiz
			if err := json.Unmarshal(data, &quiz); err == nil {
				return &quiz, nil
			}
			s.rdb.Del(ctx, key)
		}
	}

	quiz, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(quiz); err == nil {
			if err := s.rdb.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
				s.log.Warn("quiz cache write failed", zap.Uint("quiz_id", id), zap.Error(err))
			}
		}
	}
	return quiz, nil
}

// GetPublished is GetByID restricted to quizzes students may attempt.
func (s *QuizService) GetPublished(id uint) (*model.Quiz, error) {
	quiz, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !quiz.IsPublished {
		return nil, util.ErrQuizNotPublished
	}
	return quiz, nil
}

func (s *QuizService) invalidate(id uint) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(context.Background(), quizCacheKey(id)).Err(); err != nil {
		s.log.Warn("quiz cache invalidation failed", zap.Uint("quiz_id", id), zap.Error(err))
	}
}

// QuizRequest is the authoring payload for creating or updating a quiz shell.
type QuizRequest struct {
	Title                   string  `json:"title" binding:"required"`
	Description             string  `json:"description"`
	DurationMinutes         int     `json:"durationMinutes"`
	PassingMarks            float64 `json:"passingMarks"`
	AllowNegativeMarking    bool    `json:"allowNegativeMarking"`
	ShuffleQuestions        bool    `json:"shuffleQuestions"`
	ShuffleOptions          bool    `json:"shuffleOptions"`
	PerQuestionTimerEnabled bool    `json:"perQuestionTimerEnabled"`

	// Fallback per-question timers keyed by canonical question index.
	QuestionTimers map[int]int `json:"questionTimers"`
}

func (req *QuizRequest) apply(quiz *model.Quiz) {
	quiz.Title = req.Title
	quiz.Description = req.Description
	quiz.DurationMinutes = req.DurationMinutes
	quiz.PassingMarks = req.PassingMarks
	quiz.AllowNegativeMarking = req.AllowNegativeMarking
	quiz.ShuffleQuestions = req.ShuffleQuestions
	quiz.ShuffleOptions = req.ShuffleOptions
	quiz.PerQuestionTimerEnabled = req.PerQuestionTimerEnabled
	if req.QuestionTimers != nil {
		quiz.QuestionTimers = datatypes.NewJSONType(req.QuestionTimers)
	}
}

func (s *QuizService) Create(req *QuizRequest, creatorID uint) (*model.Quiz, error) {
	quiz := &model.Quiz{CreatorID: creatorID}
	req.apply(quiz)
	if err := s.Repo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) Update(id uint, req *QuizRequest) (*model.Quiz, error) {
	quiz, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	req.apply(quiz)
	if err := s.Repo.Update(quiz); err != nil {
		return nil, err
	}
	s.invalidate(id)
	return quiz, nil
}

func (s *QuizService) Delete(id uint) error {
	if _, err := s.Repo.FindByID(id); err != nil {
		return err
	}
	if err := s.Repo.Delete(id); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

func (s *QuizService) List(page, limit int, publishedOnly bool) ([]model.Quiz, int64, error) {
	return s.Repo.List(page, limit, publishedOnly)
}

// SetPublished flips visibility. A quiz with no questions cannot be
// published.
func (s *QuizService) SetPublished(id uint, published bool) (*model.Quiz, error) {
	quiz, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if published && len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("%w: quiz has no questions", util.ErrInvalidQuestion)
	}
	quiz.IsPublished = published
	if published && quiz.PublishedAt == nil {
		now := time.Now()
		quiz.PublishedAt = &now
	}
	if err := s.Repo.Update(quiz); err != nil {
		return nil, err
	}
	s.invalidate(id)
	return quiz, nil
}

// QuestionRequest is the authoring payload for a single question.
type QuestionRequest struct {
	QuestionType  model.QuestionType `json:"questionType" binding:"required"`
	Content       string             `json:"content" binding:"required"`
	ImageURL      string             `json:"imageUrl"`
	Options       []string           `json:"options"`
	CorrectOption string             `json:"correctOption"`
	IsTrue        *bool              `json:"isTrue"`
	CorrectText   string             `json:"correctText"`
	Marks         float64            `json:"marks"`
	NegativeMarks float64            `json:"negativeMarks"`
	TimerSeconds  int                `json:"timerSeconds"`
	Order         int                `json:"order"`
	Explanation   string             `json:"explanation"`
}

func (req *QuestionRequest) validate() error {
	if req.Marks <= 0 {
		return fmt.Errorf("%w: marks must be positive", util.ErrInvalidQuestion)
	}
	if req.NegativeMarks < 0 {
		return fmt.Errorf("%w: negative marks cannot be below zero", util.ErrInvalidQuestion)
	}
	switch req.QuestionType {
	case model.QuestionMCQ:
		if len(req.Options) < 2 || len(req.Options) > model.MaxOptions {
			return fmt.Errorf("%w: mcq needs 2 to %d options", util.ErrInvalidQuestion, model.MaxOptions)
		}
		pos := model.OptionPosition(req.CorrectOption)
		if pos < 0 || pos >= len(req.Options) {
			return fmt.Errorf("%w: correct option %q is out of range", util.ErrInvalidQuestion, req.CorrectOption)
		}
	case model.QuestionTrueFalse:
		if req.IsTrue == nil {
			return fmt.Errorf("%w: true/false question needs an answer", util.ErrInvalidQuestion)
		}
	case model.QuestionFillBlank:
		if model.NormalizeText(req.CorrectText) == "" {
			return fmt.Errorf("%w: fill-in-the-blank needs a correct text", util.ErrInvalidQuestion)
		}
	default:
		return fmt.Errorf("%w: unknown question type %q", util.ErrInvalidQuestion, req.QuestionType)
	}
	return nil
}

func (req *QuestionRequest) apply(q *model.QuizQuestion) {
	q.QuestionType = req.QuestionType
	q.Content = req.Content
	q.ImageURL = req.ImageURL
	q.Options = req.Options
	q.CorrectOption = req.CorrectOption
	q.IsTrue = req.IsTrue
	q.CorrectText = req.CorrectText
	q.Marks = req.Marks
	q.NegativeMarks = req.NegativeMarks
	q.TimerSeconds = req.TimerSeconds
	q.Order = req.Order
	q.Explanation = req.Explanation
}

func (s *QuizService) AddQuestion(quizID uint, req *QuestionRequest) (*model.QuizQuestion, error) {
	if _, err := s.Repo.FindByID(quizID); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	q := &model.QuizQuestion{QuizID: quizID}
	req.apply(q)
	if err := s.Repo.CreateQuestion(q); err != nil {
		return nil, err
	}
	if err := s.Repo.RecalculateTotalMarks(quizID); err != nil {
		return nil, err
	}
	s.invalidate(quizID)
	return q, nil
}

func (s *QuizService) UpdateQuestion(quizID, questionID uint, req *QuestionRequest) (*model.QuizQuestion, error) {
	q, err := s.Repo.FindQuestion(quizID, questionID)
	if err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	req.apply(q)
	if err := s.Repo.UpdateQuestion(q); err != nil {
		return nil, err
	}
	if err := s.Repo.RecalculateTotalMarks(quizID); err != nil {
		return nil, err
	}
	s.invalidate(quizID)
	return q, nil
}

func (s *QuizService) DeleteQuestion(quizID, questionID uint) error {
	if err := s.Repo.DeleteQuestion(quizID, questionID); err != nil {
		return err
	}
	if err := s.Repo.RecalculateTotalMarks(quizID); err != nil {
		return err
	}
	s.invalidate(quizID)
	return nil
}

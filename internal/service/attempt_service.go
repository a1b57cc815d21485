package service

import (
	"time"

	"placement_portal_backend/internal/model"
	"placement_portal_backend/internal/repository"
	"placement_portal_backend/internal/util"
	"placement_portal_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// AttemptService glues the attempt engine to its collaborators: the quiz
// definition store on one side and the durable attempt store on the other.
// Grading runs here, inside the submit path, so the score is computed on the
// server regardless of what any client claims.
type AttemptService struct {
	Attempts *repository.AttemptRepository
	Quizzes  *QuizService
	now      func() time.Time
	log      *zap.Logger
}

func NewAttemptService(attempts *repository.AttemptRepository, quizzes *QuizService, log *zap.Logger) *AttemptService {
	return &AttemptService{
		Attempts: attempts,
		Quizzes:  quizzes,
		now:      time.Now,
		log:      log,
	}
}

// StartOrResume returns the quiz definition and the student's open attempt,
// creating the attempt on first start. Resume reuses the existing record and
// its saved answers; started_at is never reassigned.
func (s *AttemptService) StartOrResume(studentID, quizID uint) (*model.Quiz, *model.QuizAttempt, bool, error) {
	quiz, err := s.Quizzes.GetPublished(quizID)
	if err != nil {
		return nil, nil, false, err
	}

	attempt, resumed, err := s.Attempts.StartOrResume(quizID, studentID, s.now())
	if err != nil {
		return nil, nil, false, err
	}
	return quiz, attempt, resumed, nil
}

// OpenAttempt loads a non-terminal attempt with its quiz, for session
// rebuilds after a restart.
func (s *AttemptService) OpenAttempt(studentID uint, attemptID string) (*model.Quiz, *model.QuizAttempt, error) {
	attempt, err := s.Attempts.FindOwned(attemptID, studentID)
	if err != nil {
		return nil, nil, err
	}
	if attempt.IsSubmitted {
		return nil, nil, util.ErrAttemptSubmitted
	}

	quiz, err := s.Quizzes.GetByID(attempt.QuizID)
	if err != nil {
		return nil, nil, err
	}
	return quiz, attempt, nil
}

// SaveAnswer upserts one answer record, enforcing ownership and the terminal
// state rule in the repository transaction.
func (s *AttemptService) SaveAnswer(studentID uint, attemptID string, rec *model.AttemptAnswer) error {
	return s.Attempts.UpsertAnswer(attemptID, studentID, rec)
}

// SubmitAttempt grades the persisted answer set and freezes the attempt in
// one transaction. Conflicts if already submitted; grading is never invoked
// twice for the same attempt.
func (s *AttemptService) SubmitAttempt(studentID uint, attemptID string, timeExpired bool) (*model.QuizAttempt, error) {
	attempt, err := s.Attempts.FindOwned(attemptID, studentID)
	if err != nil {
		return nil, err
	}
	if attempt.IsSubmitted {
		return nil, util.ErrAttemptSubmitted
	}

	quiz, err := s.Quizzes.GetByID(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	grade := GradeAttempt(quiz, attempt.ID, attempt.Answers)
	return s.Attempts.SubmitGraded(attempt.ID, studentID, s.now(), timeExpired, grade)
}

// QuestionView is a question as one attempt sees it: display index after the
// attempt's question permutation, options in the attempt's option order,
// correct answers stripped.
type QuestionView struct {
	Index         int                `json:"index"`
	QuestionType  model.QuestionType `json:"questionType"`
	Content       string             `json:"content"`
	ImageURL      string             `json:"imageUrl,omitempty"`
	Options       []string           `json:"options,omitempty"`
	Marks         float64            `json:"marks"`
	NegativeMarks float64            `json:"negativeMarks"`
	TimerSeconds  int                `json:"timerSeconds,omitempty"`
}

// QuestionViews renders the quiz for an attempt. The permutations come from
// the attempt id, so every reload of the same attempt sees identical indexes
// and labels.
func (s *AttemptService) QuestionViews(quiz *model.Quiz, attemptID string) []QuestionView {
	n := len(quiz.Questions)
	qOrder := QuestionOrder(attemptID, n, quiz.ShuffleQuestions)

	views := make([]QuestionView, 0, n)
	for display := 0; display < n; display++ {
		canonical := qOrder[display]
		q := quiz.Questions[canonical]

		view := QuestionView{
			Index:         display,
			QuestionType:  q.QuestionType,
			Content:       q.Content,
			ImageURL:      q.ImageURL,
			Marks:         q.Marks,
			NegativeMarks: q.NegativeMarks,
			TimerSeconds:  quiz.QuestionTimer(canonical),
		}
		if q.QuestionType == model.QuestionMCQ {
			oOrder := OptionOrder(attemptID, canonical, len(q.Options), quiz.ShuffleOptions)
			view.Options = make([]string, len(q.Options))
			for pos, origin := range oOrder {
				view.Options[pos] = q.Options[origin]
			}
		}
		views = append(views, view)
	}
	return views
}

// QuestionResult is one line of the post-grading review.
type QuestionResult struct {
	Index        int                `json:"index"`
	QuestionType model.QuestionType `json:"questionType"`
	Content      string             `json:"content"`
	Answered     bool               `json:"answered"`
	IsCorrect    bool               `json:"isCorrect"`
	PointsEarned float64            `json:"pointsEarned"`
	MaxPoints    float64            `json:"maxPoints"`
	TimeSpent    int                `json:"timeSpentSeconds"`
	Explanation  string             `json:"explanation,omitempty"`
}

type AttemptResult struct {
	Attempt   *model.QuizAttempt `json:"attempt"`
	QuizTitle string             `json:"quizTitle"`
	Passed    bool               `json:"passed"`
	Questions []QuestionResult   `json:"questions"`
}

// Result assembles the graded review from the persisted grading fields. Only
// available once the attempt is graded.
func (s *AttemptService) Result(studentID uint, attemptID string) (*AttemptResult, error) {
	attempt, err := s.Attempts.FindOwned(attemptID, studentID)
	if err != nil {
		return nil, err
	}
	if !attempt.IsGraded {
		return nil, util.ErrAttemptNotGraded
	}

	quiz, err := s.Quizzes.GetByID(attempt.QuizID)
	if err != nil {
		return nil, err
	}

	byIndex := make(map[int]model.AttemptAnswer, len(attempt.Answers))
	for _, a := range attempt.Answers {
		byIndex[a.QuestionIndex] = a
	}

	n := len(quiz.Questions)
	qOrder := QuestionOrder(attempt.ID, n, quiz.ShuffleQuestions)

	result := &AttemptResult{
		Attempt:   attempt,
		QuizTitle: quiz.Title,
		Passed:    attempt.TotalScore >= quiz.PassingMarks,
		Questions: make([]QuestionResult, 0, n),
	}
	for display := 0; display < n; display++ {
		q := quiz.Questions[qOrder[display]]
		qr := QuestionResult{
			Index:        display,
			QuestionType: q.QuestionType,
			Content:      q.Content,
			MaxPoints:    q.Marks,
			Explanation:  q.Explanation,
		}
		if rec, ok := byIndex[display]; ok {
			qr.Answered = true
			qr.IsCorrect = rec.IsCorrect
			qr.PointsEarned = rec.PointsEarned
			qr.TimeSpent = rec.TimeSpentSeconds
		}
		result.Questions = append(result.Questions, qr)
	}
	return result, nil
}

// ListByQuiz is the staff review listing.
func (s *AttemptService) ListByQuiz(quizID uint, page, limit int) ([]model.QuizAttempt, int64, error) {
	return s.Attempts.ListByQuiz(quizID, page, limit)
}

// ProcessExpiredAttempts finalizes timed attempts whose window ran out with
// no live session left to auto-submit them. Grading happens exactly as for a
// manual submit; the attempt is flagged time-expired.
func (s *AttemptService) ProcessExpiredAttempts() (int, error) {
	open, err := s.Attempts.FindOpenTimed()
	if err != nil {
		return 0, err
	}

	durations := make(map[uint]int)
	reaped := 0
	for _, attempt := range open {
		minutes, ok := durations[attempt.QuizID]
		if !ok {
			quiz, err := s.Quizzes.GetByID(attempt.QuizID)
			if err != nil {
				s.log.Error("reaper could not load quiz",
					zap.Uint("quiz_id", attempt.QuizID),
					zap.Error(err))
				continue
			}
			minutes = quiz.DurationMinutes
			durations[attempt.QuizID] = minutes
		}

		remaining, timed := RemainingOverall(attempt.StartedAt, minutes, s.now())
		if !timed || remaining > 0 {
			continue
		}

		if _, err := s.SubmitAttempt(attempt.StudentID, attempt.ID, true); err != nil {
			s.log.Error("reaper failed to submit expired attempt",
				zap.String("attempt_id", attempt.ID),
				zap.Error(err))
			continue
		}
		monitoring.AttemptsSubmitted.WithLabelValues("reaped").Inc()
		reaped++
	}

	if reaped > 0 {
		s.log.Info("expired attempts finalized", zap.Int("count", reaped))
	}
	return reaped, nil
}

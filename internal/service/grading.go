package service

import (
	"placement_portal_backend/internal/model"
)

// GradeAttempt computes the score breakdown for a frozen answer set. Pure and
// deterministic: the same quiz, attempt id and answers always produce the
// same breakdown, so re-invocation is safe (the repository still refuses to
// apply it twice).
//
// Per-question rules:
//   - no record, or an empty payload: zero points, never a deduction
//   - correct: full question marks
//   - wrong: -negative_marks when the quiz enables negative marking, else 0
//
// Per-question scores may go negative; the attempt total is floored at zero
// before the percentage is computed (RawScore keeps the unclamped sum).
func GradeAttempt(quiz *model.Quiz, attemptID string, answers []model.AttemptAnswer) model.GradeBreakdown {
	n := len(quiz.Questions)
	qOrder := QuestionOrder(attemptID, n, quiz.ShuffleQuestions)

	byIndex := make(map[int]model.AttemptAnswer, len(answers))
	for _, a := range answers {
		byIndex[a.QuestionIndex] = a
	}

	breakdown := model.GradeBreakdown{
		Questions: make([]model.QuestionScore, 0, n),
	}

	for display := 0; display < n; display++ {
		canonical := qOrder[display]
		q := quiz.Questions[canonical]

		score := model.QuestionScore{
			QuestionIndex: display,
			MaxPoints:     q.Marks,
		}
		breakdown.MaxScore += q.Marks

		if rec, ok := byIndex[display]; ok {
			if v, err := rec.Value(); err == nil && !v.IsEmpty() {
				score.Answered = true
				if isCorrect(quiz, attemptID, canonical, &q, v) {
					score.IsCorrect = true
					score.PointsEarned = q.Marks
				} else if quiz.AllowNegativeMarking {
					score.PointsEarned = -q.NegativeMarks
				}
			}
		}

		breakdown.RawScore += score.PointsEarned
		breakdown.Questions = append(breakdown.Questions, score)
	}

	breakdown.TotalScore = breakdown.RawScore
	if breakdown.TotalScore < 0 {
		breakdown.TotalScore = 0
	}
	if breakdown.MaxScore > 0 {
		breakdown.Percentage = breakdown.TotalScore / breakdown.MaxScore * 100
	}
	return breakdown
}

func isCorrect(quiz *model.Quiz, attemptID string, canonicalIndex int, q *model.QuizQuestion, v model.AnswerValue) bool {
	if v.Type != q.QuestionType {
		return false
	}
	switch q.QuestionType {
	case model.QuestionMCQ:
		canonical := CanonicalOption(attemptID, canonicalIndex, len(q.Options), quiz.ShuffleOptions, v.Option)
		return canonical != "" && canonical == q.CorrectOption
	case model.QuestionTrueFalse:
		return v.Bool != nil && q.IsTrue != nil && *v.Bool == *q.IsTrue
	case model.QuestionFillBlank:
		return model.NormalizeText(v.Text) == model.NormalizeText(q.CorrectText)
	}
	return false
}

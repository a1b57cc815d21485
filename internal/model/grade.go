package model

// QuestionScore is the grading outcome for one question index of an attempt.
type QuestionScore struct {
	QuestionIndex int     `json:"questionIndex"`
	Answered      bool    `json:"answered"`
	IsCorrect     bool    `json:"isCorrect"`
	PointsEarned  float64 `json:"pointsEarned"`
	MaxPoints     float64 `json:"maxPoints"`
}

// GradeBreakdown is the full score breakdown produced by grading: per-question
// scores plus the attempt totals. TotalScore is floored at zero even when
// negative marking drives the raw sum below it; RawScore keeps the unclamped
// sum for review.
type GradeBreakdown struct {
	TotalScore float64         `json:"totalScore"`
	RawScore   float64         `json:"rawScore"`
	MaxScore   float64         `json:"maxScore"`
	Percentage float64         `json:"percentage"`
	Questions  []QuestionScore `json:"questions"`
}

package model

import "time"

// QuizAttempt is one student's single in-progress-or-completed run at a quiz.
// StartedAt is assigned by the server on creation and never changes; every
// remaining-time computation derives from it. IsSubmitted and IsGraded are
// monotonic and set together in one transaction.
// swagger:model QuizAttempt
type QuizAttempt struct {
	UUIDBase
	QuizID    uint `gorm:"index:idx_attempt_quiz_student;type:bigint unsigned" json:"quizId"`
	StudentID uint `gorm:"index:idx_attempt_quiz_student;type:bigint unsigned" json:"studentId"`

	StartedAt   time.Time  `gorm:"not null" json:"startedAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	IsSubmitted bool       `gorm:"default:false;index" json:"isSubmitted"`
	IsGraded    bool       `gorm:"default:false" json:"isGraded"`
	TimeExpired bool       `gorm:"default:false" json:"timeExpired"`

	TotalScore float64 `gorm:"default:0" json:"totalScore"`
	MaxScore   float64 `gorm:"default:0" json:"maxScore"`
	Percentage float64 `gorm:"default:0" json:"percentage"`

	Answers []AttemptAnswer `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

package model

import (
	"time"

	"gorm.io/datatypes"
)

// Quiz is the immutable definition the attempt engine runs against.
// DurationMinutes = 0 means the quiz is untimed.
// swagger:model Quiz
type Quiz struct {
	BaseModel
	Title                   string  `gorm:"size:255;not null" json:"title"`
	Description             string  `gorm:"type:text" json:"description"`
	DurationMinutes         int     `gorm:"default:0" json:"durationMinutes"`
	TotalMarks              float64 `gorm:"default:0" json:"totalMarks"`
	PassingMarks            float64 `gorm:"default:0" json:"passingMarks"`
	AllowNegativeMarking    bool    `gorm:"default:false" json:"allowNegativeMarking"`
	ShuffleQuestions        bool    `gorm:"default:false" json:"shuffleQuestions"`
	ShuffleOptions          bool    `gorm:"default:false" json:"shuffleOptions"`
	PerQuestionTimerEnabled bool    `gorm:"default:false" json:"perQuestionTimerEnabled"`

	// QuestionTimers maps a question index to a fallback duration in seconds,
	// used when the question at that index has no TimerSeconds of its own.
	QuestionTimers datatypes.JSONType[map[int]int] `gorm:"type:json" json:"questionTimers"`

	IsPublished bool       `gorm:"default:false" json:"isPublished"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CreatorID   uint       `gorm:"index;type:bigint unsigned" json:"creatorId"`

	Questions []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Duration is the overall attempt window; zero when untimed.
func (q *Quiz) Duration() time.Duration {
	return time.Duration(q.DurationMinutes) * time.Minute
}

// QuestionTimer resolves the per-question countdown for the question at the
// given canonical index: the question's own TimerSeconds wins, then the
// quiz-level fallback map. Returns 0 when no per-question timer applies.
func (q *Quiz) QuestionTimer(index int) int {
	if !q.PerQuestionTimerEnabled {
		return 0
	}
	if index < 0 || index >= len(q.Questions) {
		return 0
	}
	if secs := q.Questions[index].TimerSeconds; secs > 0 {
		return secs
	}
	if timers := q.QuestionTimers.Data(); timers != nil {
		return timers[index]
	}
	return 0
}

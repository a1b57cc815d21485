package model

import "gorm.io/datatypes"

type QuestionType string

const (
	QuestionMCQ       QuestionType = "mcq"
	QuestionTrueFalse QuestionType = "true_false"
	QuestionFillBlank QuestionType = "fill_blank"
)

// MaxOptions caps MCQ options; labels run A through D by position.
const MaxOptions = 4

// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel
	QuizID       uint         `gorm:"index;type:bigint unsigned" json:"quizId"`
	Order        int          `gorm:"default:0" json:"order"`
	QuestionType QuestionType `gorm:"size:20;not null" json:"questionType"`
	Content      string       `gorm:"type:text;not null" json:"content"`
	ImageURL     string       `gorm:"size:255" json:"imageUrl,omitempty"`

	// MCQ: canonical option texts in label order (A first). CorrectOption is
	// the canonical label.
	Options       datatypes.JSONSlice[string] `gorm:"type:json" json:"options,omitempty"`
	CorrectOption string                      `gorm:"size:1" json:"-"`

	// True/false.
	IsTrue *bool `json:"-"`

	// Fill in the blank; compared after normalization (trimmed,
	// case-insensitive, inner whitespace collapsed).
	CorrectText string `gorm:"size:255" json:"-"`

	Marks         float64 `gorm:"default:0" json:"marks"`
	NegativeMarks float64 `gorm:"default:0" json:"negativeMarks"`
	TimerSeconds  int     `gorm:"default:0" json:"timerSeconds"`
	Explanation   string  `gorm:"type:text" json:"explanation,omitempty"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// OptionLabel maps a zero-based option position to its label (A-D).
func OptionLabel(position int) string {
	if position < 0 || position >= MaxOptions {
		return ""
	}
	return string(rune('A' + position))
}

// OptionPosition is the inverse of OptionLabel; -1 for anything outside A-D.
func OptionPosition(label string) int {
	if len(label) != 1 || label[0] < 'A' || label[0] > 'D' {
		return -1
	}
	return int(label[0] - 'A')
}

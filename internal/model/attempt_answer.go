package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// AttemptAnswer is the persisted answer plus timing metadata for one question
// within an attempt. QuestionIndex is the attempt's display index (after the
// per-attempt shuffle) and is unique within the attempt; a later write for
// the same index replaces the earlier one.
// swagger:model AttemptAnswer
type AttemptAnswer struct {
	BaseModel
	AttemptID     string       `gorm:"index;uniqueIndex:idx_answer_attempt_question;type:varchar(36)" json:"attemptId"`
	QuestionIndex int          `gorm:"uniqueIndex:idx_answer_attempt_question" json:"questionIndex"`
	QuestionType  QuestionType `gorm:"size:20" json:"questionType"`

	// Answer holds the serialized AnswerValue tagged union.
	Answer           datatypes.JSON `gorm:"type:json" json:"answer"`
	TimeSpentSeconds int            `gorm:"default:0" json:"timeSpentSeconds"`

	// Populated by grading only.
	IsCorrect    bool    `gorm:"default:false" json:"isCorrect"`
	PointsEarned float64 `gorm:"default:0" json:"pointsEarned"`
	MaxPoints    float64 `gorm:"default:0" json:"maxPoints"`
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}

func (a *AttemptAnswer) SetValue(v AnswerValue) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	a.QuestionType = v.Type
	a.Answer = datatypes.JSON(raw)
	return nil
}

func (a *AttemptAnswer) Value() (AnswerValue, error) {
	var v AnswerValue
	if len(a.Answer) == 0 {
		return v, nil
	}
	err := json.Unmarshal(a.Answer, &v)
	return v, err
}

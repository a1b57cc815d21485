package model

import (
	"errors"
	"strings"
)

// AnswerValue is the polymorphic answer payload, tagged by question type so
// grading comparisons stay exhaustive: an option label for MCQ, a boolean for
// true/false, free text for fill-in-the-blank.
// swagger:model AnswerValue
type AnswerValue struct {
	Type   QuestionType `json:"type"`
	Option string       `json:"option,omitempty"`
	Bool   *bool        `json:"bool,omitempty"`
	Text   string       `json:"text,omitempty"`
}

// Validate rejects malformed payloads before anything touches the database.
func (v AnswerValue) Validate() error {
	switch v.Type {
	case QuestionMCQ:
		if v.Option != "" && OptionPosition(v.Option) < 0 {
			return errors.New("mcq option must be a label A-D")
		}
	case QuestionTrueFalse:
		// nil Bool is a cleared answer, which is allowed
	case QuestionFillBlank:
		// any text, including empty
	default:
		return errors.New("unknown question type")
	}
	return nil
}

// IsEmpty reports whether the payload carries no actual answer. Empty answers
// grade as unanswered and never incur a negative-marking deduction.
func (v AnswerValue) IsEmpty() bool {
	switch v.Type {
	case QuestionMCQ:
		return v.Option == ""
	case QuestionTrueFalse:
		return v.Bool == nil
	case QuestionFillBlank:
		return strings.TrimSpace(v.Text) == ""
	}
	return true
}

// NormalizeText is the fill-blank comparison form: surrounding whitespace
// trimmed, runs of inner whitespace collapsed to one space, lower-cased.
func NormalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

package service

import (
	"testing"

	"placement_portal_backend/internal/model"
	"placement_portal_backend/internal/repository"
	"placement_portal_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newQuizServiceStack(t *testing.T) *QuizService {
	t.Helper()
	db := serviceTestDB(t)
	return NewQuizService(repository.NewQuizRepository(db), nil, 10, zap.NewNop())
}

func TestQuestionRequestValidation(t *testing.T) {
	cases := []struct {
		name string
		req  QuestionRequest
		ok   bool
	}{
		{
			name: "valid mcq",
			req: QuestionRequest{
				QuestionType: model.QuestionMCQ, Content: "pick one",
				Options: []string{"a", "b", "c"}, CorrectOption: "B", Marks: 5,
			},
			ok: true,
		},
		{
			name: "mcq with one option",
			req: QuestionRequest{
				QuestionType: model.QuestionMCQ, Content: "pick one",
				Options: []string{"a"}, CorrectOption: "A", Marks: 5,
			},
		},
		{
			name: "mcq correct option out of range",
			req: QuestionRequest{
				QuestionType: model.QuestionMCQ, Content: "pick one",
				Options: []string{"a", "b"}, CorrectOption: "D", Marks: 5,
			},
		},
		{
			name: "true false missing answer",
			req:  QuestionRequest{QuestionType: model.QuestionTrueFalse, Content: "t or f", Marks: 5},
		},
		{
			name: "fill blank with whitespace-only answer",
			req: QuestionRequest{
				QuestionType: model.QuestionFillBlank, Content: "fill", CorrectText: "   ", Marks: 5,
			},
		},
		{
			name: "zero marks",
			req: QuestionRequest{
				QuestionType: model.QuestionFillBlank, Content: "fill", CorrectText: "x", Marks: 0,
			},
		},
		{
			name: "unknown type",
			req:  QuestionRequest{QuestionType: "essay", Content: "write", Marks: 5},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, util.ErrInvalidQuestion)
			}
		})
	}
}

func TestAddQuestionRecalculatesTotalMarks(t *testing.T) {
	svc := newQuizServiceStack(t)

	quiz, err := svc.Create(&QuizRequest{Title: "DSA Basics"}, 1)
	require.NoError(t, err)

	_, err = svc.AddQuestion(quiz.ID, &QuestionRequest{
		QuestionType: model.QuestionFillBlank, Content: "lifo structure", CorrectText: "stack", Marks: 4,
	})
	require.NoError(t, err)
	_, err = svc.AddQuestion(quiz.ID, &QuestionRequest{
		QuestionType: model.QuestionTrueFalse, Content: "maps are ordered", IsTrue: boolPtr(false), Marks: 6,
	})
	require.NoError(t, err)

	loaded, err := svc.GetByID(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, loaded.TotalMarks)
	assert.Len(t, loaded.Questions, 2)
}

func TestPublishRequiresQuestions(t *testing.T) {
	svc := newQuizServiceStack(t)

	quiz, err := svc.Create(&QuizRequest{Title: "Empty"}, 1)
	require.NoError(t, err)

	_, err = svc.SetPublished(quiz.ID, true)
	assert.ErrorIs(t, err, util.ErrInvalidQuestion)

	_, err = svc.AddQuestion(quiz.ID, &QuestionRequest{
		QuestionType: model.QuestionFillBlank, Content: "q", CorrectText: "a", Marks: 1,
	})
	require.NoError(t, err)

	published, err := svc.SetPublished(quiz.ID, true)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)
	assert.NotNil(t, published.PublishedAt)

	// students can load it now
	_, err = svc.GetPublished(quiz.ID)
	assert.NoError(t, err)
}

func TestGetPublishedHidesUnpublished(t *testing.T) {
	svc := newQuizServiceStack(t)

	quiz, err := svc.Create(&QuizRequest{Title: "Draft"}, 1)
	require.NoError(t, err)

	_, err = svc.GetPublished(quiz.ID)
	assert.ErrorIs(t, err, util.ErrQuizNotPublished)
}

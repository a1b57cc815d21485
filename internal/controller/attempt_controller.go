package controller

import (
	"placement_portal_backend/internal/model"
	"placement_portal_backend/internal/service"
	"placement_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AttemptController is the student-facing attempt surface. Every route acts
// through the session hub so timers, answer tracking and submission all run
// inside the live session's state machine.
type AttemptController struct {
	Hub            *service.SessionHub
	AttemptService *service.AttemptService
	QuizService    *service.QuizService
}

func NewAttemptController(hub *service.SessionHub, attemptService *service.AttemptService, quizService *service.QuizService) *AttemptController {
	return &AttemptController{
		Hub:            hub,
		AttemptService: attemptService,
		QuizService:    quizService,
	}
}

// attemptPayload is the full client view: session snapshot plus the quiz as
// this attempt sees it (shuffled, answers stripped).
type attemptPayload struct {
	Session   service.SessionView    `json:"session"`
	QuizTitle string                 `json:"quizTitle"`
	Questions []service.QuestionView `json:"questions"`
}

func (c *AttemptController) payload(session *service.QuizSession) (*attemptPayload, error) {
	attempt := session.Attempt()
	quiz, err := c.QuizService.GetByID(attempt.QuizID)
	if err != nil {
		return nil, err
	}
	return &attemptPayload{
		Session:   session.View(),
		QuizTitle: quiz.Title,
		Questions: c.AttemptService.QuestionViews(quiz, attempt.ID),
	}, nil
}

// Start godoc
// @Summary Start or resume an attempt at a quiz
// @Description Idempotent per student and quiz: while an attempt is open, a second start resumes it with its saved answers and the original clock.
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "quiz id"
// @Success 200 {object} util.Response{data=attemptPayload}
// @Failure 403 {object} util.Response "quiz not published"
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id}/attempts [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	session, err := c.Hub.StartSession(claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	payload, err := c.payload(session)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, payload)
}

// State godoc
// @Summary Current attempt state
// @Description Remaining time is recomputed from the attempt's start instant on every call.
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Success 200 {object} util.Response{data=attemptPayload}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "attempt already submitted"
// @Router /api/attempts/{id} [get]
func (c *AttemptController) State(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	session, err := c.Hub.Get(ctx.Param("id"), claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	payload, err := c.payload(session)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, payload)
}

type answerRequest struct {
	QuestionIndex int               `json:"questionIndex"`
	Answer        model.AnswerValue `json:"answer"`
}

// Answer godoc
// @Summary Record an answer for a question
// @Description Last write wins per question index. Conflicts once the attempt is submitted.
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Param body body answerRequest true "answer payload"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 400 {object} util.Response "invalid answer payload"
// @Failure 409 {object} util.Response "attempt already submitted"
// @Router /api/attempts/{id}/answers [post]
func (c *AttemptController) Answer(ctx *gin.Context) {
	var req answerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	session, err := c.Hub.Get(ctx.Param("id"), claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	if err := session.SetAnswer(req.QuestionIndex, req.Answer); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, session.View())
}

type navigateRequest struct {
	Direction string `json:"direction" binding:"required,oneof=next previous"`
}

// Navigate godoc
// @Summary Move to the next or previous question
// @Description The active answer is persisted before the index changes. At either end of the quiz the move is a no-op.
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Param body body navigateRequest true "direction"
// @Success 200 {object} util.Response{data=service.SessionView}
// @Failure 409 {object} util.Response "attempt already submitted"
// @Router /api/attempts/{id}/navigate [post]
func (c *AttemptController) Navigate(ctx *gin.Context) {
	var req navigateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	session, err := c.Hub.Get(ctx.Param("id"), claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	if req.Direction == "next" {
		_, err = session.Next()
	} else {
		_, err = session.Previous()
	}
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, session.View())
}

// Submit godoc
// @Summary Submit the attempt for grading
// @Description Terminal: grading runs once and the attempt stops accepting changes. A second submit conflicts.
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Success 200 {object} util.Response{data=model.QuizAttempt}
// @Failure 409 {object} util.Response "attempt already submitted"
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	session, err := c.Hub.Get(ctx.Param("id"), claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	attempt, err := session.Submit(false)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	c.Hub.Evict(attempt.ID)
	util.Success(ctx, attempt)
}

// Result godoc
// @Summary Graded result with per-question review
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path string true "attempt id"
// @Success 200 {object} util.Response{data=service.AttemptResult}
// @Failure 409 {object} util.Response "attempt not graded yet"
// @Router /api/attempts/{id}/result [get]
func (c *AttemptController) Result(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	result, err := c.AttemptService.Result(claims.UserID, ctx.Param("id"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

package controller

import (
	"strconv"

	"placement_portal_backend/internal/service"
	"placement_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// QuizController is the authoring surface: staff manage quiz definitions and
// their questions here. Students never touch these routes; they go through
// the attempt endpoints.
type QuizController struct {
	QuizService    *service.QuizService
	AttemptService *service.AttemptService
	StorageService *service.StorageService
}

func NewQuizController(quizService *service.QuizService, attemptService *service.AttemptService, storageService *service.StorageService) *QuizController {
	return &QuizController{
		QuizService:    quizService,
		AttemptService: attemptService,
		StorageService: storageService,
	}
}

func pagination(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// List godoc
// @Summary List quizzes
// @Description Students see published quizzes only; staff see everything.
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/quizzes [get]
func (c *QuizController) List(ctx *gin.Context) {
	page, limit := pagination(ctx)

	claims := util.GetUserFromContext(ctx)
	publishedOnly := claims == nil || claims.Role == "student"

	quizzes, total, err := c.QuizService.List(page, limit, publishedOnly)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: quizzes, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary Get one quiz with its questions
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path int true "quiz id"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id} [get]
func (c *QuizController) Get(ctx *gin.Context) {
	quiz, err := c.QuizService.GetByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// Create godoc
// @Summary Create a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.QuizRequest true "quiz definition"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Router /api/quizzes [post]
func (c *QuizController) Create(ctx *gin.Context) {
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	quiz, err := c.QuizService.Create(&req, claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// Update godoc
// @Summary Update a quiz shell
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "quiz id"
// @Param body body service.QuizRequest true "quiz definition"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id} [put]
func (c *QuizController) Update(ctx *gin.Context) {
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.Update(util.MustParseUint(ctx.Param("id")), &req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// Delete godoc
// @Summary Delete a quiz and its questions
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path int true "quiz id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/quizzes/{id} [delete]
func (c *QuizController) Delete(ctx *gin.Context) {
	if err := c.QuizService.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type publishRequest struct {
	Published bool `json:"published"`
}

// Publish godoc
// @Summary Publish or unpublish a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "quiz id"
// @Param body body publishRequest true "publish flag"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "quiz has no questions"
// @Router /api/quizzes/{id}/publish [post]
func (c *QuizController) Publish(ctx *gin.Context) {
	var req publishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.SetPublished(util.MustParseUint(ctx.Param("id")), req.Published)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// AddQuestion godoc
// @Summary Add a question to a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "quiz id"
// @Param body body service.QuestionRequest true "question definition"
// @Success 201 {object} util.Response{data=model.QuizQuestion}
// @Failure 400 {object} util.Response "invalid question definition"
// @Router /api/quizzes/{id}/questions [post]
func (c *QuizController) AddQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuizService.AddQuestion(util.MustParseUint(ctx.Param("id")), &req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary Update a question
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "quiz id"
// @Param qid path int true "question id"
// @Param body body service.QuestionRequest true "question definition"
// @Success 200 {object} util.Response{data=model.QuizQuestion}
// @Router /api/quizzes/{id}/questions/{qid} [put]
func (c *QuizController) UpdateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.QuizService.UpdateQuestion(
		util.MustParseUint(ctx.Param("id")),
		util.MustParseUint(ctx.Param("qid")),
		&req,
	)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path int true "quiz id"
// @Param qid path int true "question id"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/questions/{qid} [delete]
func (c *QuizController) DeleteQuestion(ctx *gin.Context) {
	err := c.QuizService.DeleteQuestion(
		util.MustParseUint(ctx.Param("id")),
		util.MustParseUint(ctx.Param("qid")),
	)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadQuestionImage godoc
// @Summary Upload an image for use in question content
// @Tags quizzes
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "image file"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response "unsupported file type"
// @Router /api/quizzes/images [post]
func (c *QuizController) UploadQuestionImage(ctx *gin.Context) {
	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	url, err := c.StorageService.UploadQuestionImage(ctx.Request.Context(), header)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Success(ctx, gin.H{"url": url})
}

// Attempts godoc
// @Summary List attempts for a quiz
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path int true "quiz id"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/quizzes/{id}/results [get]
func (c *QuizController) Attempts(ctx *gin.Context) {
	page, limit := pagination(ctx)

	attempts, total, err := c.AttemptService.ListByQuiz(util.MustParseUint(ctx.Param("id")), page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: attempts, Total: total, Page: page, Limit: limit})
}

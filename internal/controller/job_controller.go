package controller

import (
	"placement_portal_backend/internal/model"
	"placement_portal_backend/internal/service"
	"placement_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type JobController struct {
	Service *service.JobPostingService
}

func NewJobController(svc *service.JobPostingService) *JobController {
	return &JobController{Service: svc}
}

// List godoc
// @Summary List job postings
// @Description Students see active postings with open deadlines; staff see everything.
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/jobs [get]
func (c *JobController) List(ctx *gin.Context) {
	page, limit := pagination(ctx)
	claims := util.GetUserFromContext(ctx)

	var (
		items []model.JobPosting
		total int64
		err   error
	)
	if claims == nil || claims.Role == "student" {
		items, total, err = c.Service.ListActive(page, limit)
	} else {
		items, total, err = c.Service.List(page, limit)
	}
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: items, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary Get a job posting
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "job id"
// @Success 200 {object} util.Response{data=model.JobPosting}
// @Failure 404 {object} util.Response
// @Router /api/jobs/{id} [get]
func (c *JobController) Get(ctx *gin.Context) {
	item, err := c.Service.Get(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, item)
}

// Create godoc
// @Summary Create a job posting
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.JobPostingRequest true "job posting"
// @Success 201 {object} util.Response{data=model.JobPosting}
// @Router /api/jobs [post]
func (c *JobController) Create(ctx *gin.Context) {
	var req service.JobPostingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	item, err := c.Service.Create(&req, claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, item)
}

// Update godoc
// @Summary Update a job posting
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "job id"
// @Param body body service.JobPostingRequest true "job posting"
// @Success 200 {object} util.Response{data=model.JobPosting}
// @Failure 404 {object} util.Response
// @Router /api/jobs/{id} [put]
func (c *JobController) Update(ctx *gin.Context) {
	var req service.JobPostingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	item, err := c.Service.Update(util.MustParseUint(ctx.Param("id")), &req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, item)
}

// Delete godoc
// @Summary Delete a job posting
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path int true "job id"
// @Success 200 {object} util.Response
// @Router /api/jobs/{id} [delete]
func (c *JobController) Delete(ctx *gin.Context) {
	if err := c.Service.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

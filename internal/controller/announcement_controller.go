package controller

import (
	"placement_portal_backend/internal/service"
	"placement_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnnouncementController struct {
	Service *service.AnnouncementService
}

func NewAnnouncementController(svc *service.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{Service: svc}
}

// List godoc
// @Summary List announcements
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/announcements [get]
func (c *AnnouncementController) List(ctx *gin.Context) {
	page, limit := pagination(ctx)

	claims := util.GetUserFromContext(ctx)
	publishedOnly := claims == nil || claims.Role == "student"

	items, total, err := c.Service.List(page, limit, publishedOnly)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: items, Total: total, Page: page, Limit: limit})
}

// Create godoc
// @Summary Create an announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AnnouncementRequest true "announcement"
// @Success 201 {object} util.Response{data=model.Announcement}
// @Router /api/announcements [post]
func (c *AnnouncementController) Create(ctx *gin.Context) {
	var req service.AnnouncementRequest
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
// @Summary Update an announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "announcement id"
// @Param body body service.AnnouncementRequest true "announcement"
// @Success 200 {object} util.Response{data=model.Announcement}
// @Failure 404 {object} util.Response
// @Router /api/announcements/{id} [put]
func (c *AnnouncementController) Update(ctx *gin.Context) {
	var req service.AnnouncementRequest
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
// @Summary Delete an announcement
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "announcement id"
// @Success 200 {object} util.Response
// @Router /api/announcements/{id} [delete]
func (c *AnnouncementController) Delete(ctx *gin.Context) {
	if err := c.Service.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

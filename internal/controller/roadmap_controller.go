package controller

import (
	"errors"
	"strconv"

	"study_mentor_backend/internal/service"
	"study_mentor_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RoadmapController struct {
	RoadmapService *service.RoadmapService
}

func NewRoadmapController(roadmapService *service.RoadmapService) *RoadmapController {
	return &RoadmapController{RoadmapService: roadmapService}
}

// GetRoadmap godoc
// @Summary Active roadmap grouped by phase and module
// @Tags roadmap
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "no active roadmap"
// @Router /api/roadmap [get]
func (c *RoadmapController) GetRoadmap(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	tree, err := c.RoadmapService.GetActiveRoadmap(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, util.ErrRoadmapNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	if tree == nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, tree)
}

// CompleteTask godoc
// @Summary Mark a roadmap task completed and unlock its successor
// @Tags roadmap
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "roadmap task id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/roadmap/tasks/{id}/complete [patch]
func (c *RoadmapController) CompleteTask(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid task id")
		return
	}

	task, err := c.RoadmapService.CompleteTask(claims.UserID, uint(id))
	if err != nil {
		if errors.Is(err, util.ErrRoadmapTaskNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, task)
}

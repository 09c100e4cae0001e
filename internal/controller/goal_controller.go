package controller

import (
	"study_mentor_backend/internal/service"
	"study_mentor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GoalController struct {
	GoalService *service.GoalService
}

func NewGoalController(goalService *service.GoalService) *GoalController {
	return &GoalController{GoalService: goalService}
}

type OnboardingRequest struct {
	Subjects []service.SubjectGoal `json:"subjects" binding:"required,min=1,dive"`
}

// Onboard godoc
// @Summary Create goals and roadmaps from the onboarding form
// @Tags goals
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body OnboardingRequest true "subjects to study"
// @Success 201 {object} util.Response
// @Router /api/onboarding [post]
func (c *GoalController) Onboard(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req OnboardingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	summaries, err := c.GoalService.Onboard(ctx.Request.Context(), claims.UserID, req.Subjects)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"goals": summaries})
}

// ListGoals godoc
// @Summary List the user's goals
// @Tags goals
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/goals [get]
func (c *GoalController) ListGoals(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	goals, err := c.GoalService.ListGoals(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"goals": goals})
}

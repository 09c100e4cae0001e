package controller

import (
	"errors"
	"strconv"

	"study_mentor_backend/internal/service"
	"study_mentor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// maxSubmissionImageBytes caps screenshot uploads at 10 MiB.
const maxSubmissionImageBytes = 10 << 20

type TaskController struct {
	TaskService    *service.TaskService
	StorageService *service.StorageService
}

func NewTaskController(taskService *service.TaskService, storageService *service.StorageService) *TaskController {
	return &TaskController{TaskService: taskService, StorageService: storageService}
}

// GetDailyPlan godoc
// @Summary Today's task, materialized on first access
// @Tags tasks
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/daily-plan [get]
func (c *TaskController) GetDailyPlan(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	entry, err := c.TaskService.GetOrCreateToday(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if entry == nil {
		util.Success(ctx, gin.H{"task": nil, "message": "No active roadmap. Complete onboarding to get a plan."})
		return
	}

	util.Success(ctx, entry)
}

// GetTask godoc
// @Summary One daily task with its resources
// @Tags tasks
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "task id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/tasks/{id} [get]
func (c *TaskController) GetTask(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, ok := taskID(ctx)
	if !ok {
		return
	}

	detail, err := c.TaskService.GetTask(claims.UserID, id)
	if err != nil {
		if errors.Is(err, util.ErrTaskNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, detail)
}

type SubmitRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl"`
}

// Submit godoc
// @Summary Submit work for evaluation and complete the task
// @Tags tasks
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "task id"
// @Param body body SubmitRequest true "submission text or image URL"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/tasks/{id}/submit [post]
func (c *TaskController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, ok := taskID(ctx)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.Text == "" && req.ImageURL == "" {
		util.BadRequest(ctx, "submission needs text or an image")
		return
	}

	result, err := c.TaskService.Submit(ctx.Request.Context(), claims.UserID, id, req.Text, req.ImageURL)
	if err != nil {
		if errors.Is(err, util.ErrTaskNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// SubmitImage godoc
// @Summary Upload a screenshot and submit it for evaluation
// @Tags tasks
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "task id"
// @Param image formData file true "screenshot"
// @Success 200 {object} util.Response
// @Router /api/tasks/{id}/submit-image [post]
func (c *TaskController) SubmitImage(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, ok := taskID(ctx)
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		util.BadRequest(ctx, "image file is required")
		return
	}
	if fileHeader.Size > maxSubmissionImageBytes {
		util.BadRequest(ctx, "image too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	imageURL, err := c.StorageService.UploadSubmissionImage(
		ctx.Request.Context(),
		fileHeader.Filename,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	result, err := c.TaskService.Submit(ctx.Request.Context(), claims.UserID, id, "", imageURL)
	if err != nil {
		if errors.Is(err, util.ErrTaskNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"imageUrl": imageURL, "evaluation": result})
}

// RegenerateResources godoc
// @Summary Replace a task's resources with a fresh set
// @Tags tasks
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "task id"
// @Success 200 {object} util.Response
// @Router /api/tasks/{id}/regenerate-resources [post]
func (c *TaskController) RegenerateResources(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id, ok := taskID(ctx)
	if !ok {
		return
	}

	resources, err := c.TaskService.RegenerateResources(ctx.Request.Context(), claims.UserID, id)
	if err != nil {
		if errors.Is(err, util.ErrTaskNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"resources": resources})
}

func taskID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid task id")
		return 0, false
	}
	return uint(id), true
}

package controller

import (
	"study_mentor_backend/internal/service"
	"study_mentor_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	ChatService *service.ChatService
}

func NewChatController(chatService *service.ChatService) *ChatController {
	return &ChatController{ChatService: chatService}
}

type ChatRequest struct {
	Question string `json:"question" binding:"required"`
	TaskID   uint   `json:"taskId"`
}

// Ask godoc
// @Summary Ask the mentor a question
// @Tags chat
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body ChatRequest true "question, optionally scoped to a task"
// @Success 200 {object} util.Response
// @Router /api/chat [post]
func (c *ChatController) Ask(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.ChatService.Ask(ctx.Request.Context(), claims.UserID, req.TaskID, req.Question)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, resp)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"study_mentor_backend/internal/repository"
	"study_mentor_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChatMentor is the slice of MentorService the chat flow needs.
type ChatMentor interface {
	AnswerQuestion(ctx context.Context, question, goalContext, taskContext string) (*ChatReply, bool)
}

const chatFallbackAnswer = "I'm having trouble thinking right now. Please try again in a moment."

// ChatService answers learner questions with goal and task context, and
// applies the occasional resource swap the mentor proposes.
type ChatService struct {
	Goals  *repository.GoalRepository
	Tasks  *repository.DailyTaskRepository
	Mentor ChatMentor
}

func NewChatService(goals *repository.GoalRepository, tasks *repository.DailyTaskRepository, mentor ChatMentor) *ChatService {
	return &ChatService{Goals: goals, Tasks: tasks, Mentor: mentor}
}

// ChatResponse is what the learner sees: the answer, plus a note when a
// resource swap was applied to the referenced task.
type ChatResponse struct {
	Answer          string `json:"answer"`
	ResourceUpdated bool   `json:"resourceUpdated"`
	NewLink         string `json:"newLink,omitempty"`
}

// Ask answers a question. taskID may be zero when the question is not about a
// specific task. Provider failure degrades to a canned reply, never an error.
func (s *ChatService) Ask(ctx context.Context, userID string, taskID uint, question string) (*ChatResponse, error) {
	goalContext := "No learning goal set yet."
	if goal, err := s.Goals.FirstByUserID(userID); err == nil {
		goalContext = fmt.Sprintf("Subject: %s. Target: %s. Level: %s.", goal.Subject, goal.ExamOrSkill, goal.DetectedLevel)
	}

	taskContext := "No specific task."
	if taskID != 0 {
		task, err := s.Tasks.FindByIDAndUserID(taskID, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil {
			taskContext = fmt.Sprintf("Today's task: %s. %s", task.Topic, task.Description)
		}
	}

	reply, ok := s.Mentor.AnswerQuestion(ctx, question, goalContext, taskContext)
	if !ok || reply == nil || strings.TrimSpace(reply.Answer) == "" {
		return &ChatResponse{Answer: chatFallbackAnswer}, nil
	}

	resp := &ChatResponse{Answer: reply.Answer}

	if reply.Action != nil && reply.Action.Type == ChatActionUpdateResource && taskID != 0 && reply.Action.NewLink != "" {
		if err := s.Tasks.UpdateResourceLink(taskID, reply.Action.NewLink); err != nil {
			logger.Log.Error("resource link update from chat failed",
				zap.Uint("taskId", taskID),
				zap.Error(err))
		} else {
			resp.ResourceUpdated = true
			resp.NewLink = reply.Action.NewLink
			logger.Log.Info("resource link replaced from chat",
				zap.Uint("taskId", taskID),
				zap.String("reason", reply.Action.Reason))
		}
	}

	return resp, nil
}

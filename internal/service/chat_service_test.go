package service

import (
	"context"
	"testing"
	"time"

	"study_mentor_backend/internal/model"
	"study_mentor_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeChatMentor struct {
	reply           *ChatReply
	fail            bool
	lastGoalContext string
	lastTaskContext string
}

func (f *fakeChatMentor) AnswerQuestion(ctx context.Context, question, goalContext, taskContext string) (*ChatReply, bool) {
	f.lastGoalContext = goalContext
	f.lastTaskContext = taskContext
	if f.fail {
		return nil, false
	}
	return f.reply, true
}

func newChatHarness(t *testing.T) (*ChatService, *fakeChatMentor, *model.User, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	user, _ := seedUserAndGoal(t, db)

	mentor := &fakeChatMentor{reply: &ChatReply{Answer: "Focus on the basics first."}}
	svc := NewChatService(
		repository.NewGoalRepository(db),
		repository.NewDailyTaskRepository(db),
		mentor,
	)
	return svc, mentor, user, db
}

func seedChatTask(t *testing.T, db *gorm.DB, userID string) *model.DailyTask {
	t.Helper()
	task := &model.DailyTask{
		UserID:       userID,
		Topic:        "Kinematics",
		Description:  "Work through the basics.",
		ResourceLink: "https://old.example",
		Date:         model.DateOnly(time.Now()),
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

func TestAskIncludesGoalAndTaskContext(t *testing.T) {
	svc, mentor, user, db := newChatHarness(t)
	task := seedChatTask(t, db, user.ID)

	resp, err := svc.Ask(context.Background(), user.ID, task.ID, "Where do I start?")
	require.NoError(t, err)
	assert.Equal(t, "Focus on the basics first.", resp.Answer)
	assert.False(t, resp.ResourceUpdated)
	assert.Contains(t, mentor.lastGoalContext, "Physics")
	assert.Contains(t, mentor.lastTaskContext, "Kinematics")
}

func TestAskWithoutTask(t *testing.T) {
	svc, mentor, user, _ := newChatHarness(t)

	resp, err := svc.Ask(context.Background(), user.ID, 0, "How should I plan my week?")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Answer)
	assert.Contains(t, mentor.lastTaskContext, "No specific task")
}

func TestAskProviderFailureReturnsCannedReply(t *testing.T) {
	svc, mentor, user, _ := newChatHarness(t)
	mentor.fail = true

	resp, err := svc.Ask(context.Background(), user.ID, 0, "hello?")
	require.NoError(t, err)
	assert.Equal(t, chatFallbackAnswer, resp.Answer)
}

func TestAskAppliesResourceUpdateAction(t *testing.T) {
	svc, mentor, user, db := newChatHarness(t)
	task := seedChatTask(t, db, user.ID)
	mentor.reply = &ChatReply{
		Answer: "That link is dead, use this one.",
		Action: &ChatAction{Type: ChatActionUpdateResource, NewLink: "https://new.example", Reason: "dead link"},
	}

	resp, err := svc.Ask(context.Background(), user.ID, task.ID, "the video is gone")
	require.NoError(t, err)
	assert.True(t, resp.ResourceUpdated)
	assert.Equal(t, "https://new.example", resp.NewLink)

	var stored model.DailyTask
	require.NoError(t, db.First(&stored, task.ID).Error)
	assert.Equal(t, "https://new.example", stored.ResourceLink)
}

func TestAskIgnoresActionWithoutTask(t *testing.T) {
	svc, mentor, user, _ := newChatHarness(t)
	mentor.reply = &ChatReply{
		Answer: "Here.",
		Action: &ChatAction{Type: ChatActionUpdateResource, NewLink: "https://new.example"},
	}

	resp, err := svc.Ask(context.Background(), user.ID, 0, "swap my resource")
	require.NoError(t, err)
	assert.False(t, resp.ResourceUpdated)
}

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

func newProgressHarness(t *testing.T) (*ProgressService, *model.User, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	user, _ := seedUserAndGoal(t, db)

	svc := NewProgressService(
		repository.NewDailyTaskRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewGoalRepository(db),
		&fakeMentor{},
		nil,
	)
	return svc, user, db
}

func seedDailyTask(t *testing.T, db *gorm.DB, userID string, daysAgo int, completed bool, score int) {
	t.Helper()

	task := &model.DailyTask{
		UserID:      userID,
		Topic:       "Topic",
		Description: "Work through the material.",
		Date:        model.DateOnly(time.Now()).AddDate(0, 0, -daysAgo),
		IsCompleted: completed,
	}
	require.NoError(t, db.Create(task).Error)

	if completed && score > 0 {
		sub := &model.Submission{
			TaskID:      task.ID,
			Text:        "done",
			Feedback:    "ok",
			Score:       score,
			SubmittedAt: time.Now(),
		}
		require.NoError(t, db.Create(sub).Error)
	}
}

func TestStreakConsecutiveDaysEndingToday(t *testing.T) {
	now := time.Now()
	tasks := []model.DailyTask{
		{Date: model.DateOnly(now), IsCompleted: true},
		{Date: model.DateOnly(now).AddDate(0, 0, -1), IsCompleted: true},
		{Date: model.DateOnly(now).AddDate(0, 0, -2), IsCompleted: true},
	}
	assert.Equal(t, 3, streakDays(tasks, now))
}

func TestStreakIncompleteTodayStartsYesterday(t *testing.T) {
	now := time.Now()
	tasks := []model.DailyTask{
		{Date: model.DateOnly(now), IsCompleted: false},
		{Date: model.DateOnly(now).AddDate(0, 0, -1), IsCompleted: true},
		{Date: model.DateOnly(now).AddDate(0, 0, -2), IsCompleted: true},
	}
	assert.Equal(t, 2, streakDays(tasks, now))
}

func TestStreakBrokenByGap(t *testing.T) {
	now := time.Now()
	tasks := []model.DailyTask{
		{Date: model.DateOnly(now), IsCompleted: true},
		{Date: model.DateOnly(now).AddDate(0, 0, -2), IsCompleted: true},
		{Date: model.DateOnly(now).AddDate(0, 0, -3), IsCompleted: true},
	}
	assert.Equal(t, 1, streakDays(tasks, now))
}

func TestStreakEmpty(t *testing.T) {
	assert.Equal(t, 0, streakDays(nil, time.Now()))
}

func TestComputeProgressEmptyHistory(t *testing.T) {
	svc, user, _ := newProgressHarness(t)

	report, err := svc.ComputeProgress(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalTasks)
	assert.Equal(t, 0, report.CompletedTasks)
	assert.Zero(t, report.CompletionPercent)
	assert.Zero(t, report.AverageScore)
	assert.Equal(t, 0, report.StreakDays)
	assert.Equal(t, model.LevelIntermediate, report.Level)
	assert.Equal(t, "Physics", report.Subject)
}

func TestComputeProgressAggregates(t *testing.T) {
	svc, user, db := newProgressHarness(t)

	seedDailyTask(t, db, user.ID, 0, true, 90)
	seedDailyTask(t, db, user.ID, 1, true, 80)
	seedDailyTask(t, db, user.ID, 2, false, 0)

	report, err := svc.ComputeProgress(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalTasks)
	assert.Equal(t, 2, report.CompletedTasks)
	assert.InDelta(t, 66.67, report.CompletionPercent, 0.1)
	assert.InDelta(t, 85.0, report.AverageScore, 0.01)
	assert.Equal(t, 2, report.StreakDays)
}

func TestComputeProgressCountsHistoryWithoutRoadmap(t *testing.T) {
	svc, user, db := newProgressHarness(t)

	seedDailyTask(t, db, user.ID, 0, true, 90)
	seedDailyTask(t, db, user.ID, 1, false, 0)

	report, err := svc.ComputeProgress(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalTasks)
	assert.Equal(t, 1, report.CompletedTasks)
	assert.InDelta(t, 50.0, report.CompletionPercent, 0.01)
}

func TestWeeklySummaryUsesMentor(t *testing.T) {
	svc, user, db := newProgressHarness(t)

	seedDailyTask(t, db, user.ID, 0, true, 90)
	seedDailyTask(t, db, user.ID, 1, true, 70)
	seedDailyTask(t, db, user.ID, 10, true, 60) // outside the window

	summary, err := svc.WeeklySummary(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "You finished 2 tasks across 2 days.", summary)
}

func TestWeeklySummaryFallbackWhenMentorDown(t *testing.T) {
	svc, user, db := newProgressHarness(t)
	svc.Mentor = &fakeMentor{failSummaries: true}

	seedDailyTask(t, db, user.ID, 0, true, 90)

	summary, err := svc.WeeklySummary(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Contains(t, summary, "1 task(s)")
}

func TestWeeklySummaryNoActivity(t *testing.T) {
	svc, user, _ := newProgressHarness(t)
	svc.Mentor = &fakeMentor{failSummaries: true}

	summary, err := svc.WeeklySummary(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Contains(t, summary, "No tasks completed")
}

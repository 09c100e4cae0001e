package service

import (
	"context"
	"testing"
	"time"

	"study_mentor_backend/internal/model"
	"study_mentor_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOnboardingMentor struct {
	failDetect     bool
	failCurriculum bool
	level          model.ProficiencyLevel
	detectCalls    int
}

func (f *fakeOnboardingMentor) DetectLevel(ctx context.Context, subject, examOrSkill string, dailyMinutes int, targetDate time.Time) (*LevelAssessment, bool) {
	f.detectCalls++
	if f.failDetect {
		return nil, false
	}
	level := f.level
	if level == "" {
		level = model.LevelIntermediate
	}
	return &LevelAssessment{Level: level, Message: "Welcome to the grind."}, true
}

func (f *fakeOnboardingMentor) GenerateCurriculum(ctx context.Context, goal *model.Goal) (*Curriculum, bool) {
	if f.failCurriculum {
		return nil, false
	}
	return threeTaskCurriculum(), true
}

func newGoalHarness(t *testing.T) (*GoalService, *RoadmapService, *model.User, *fakeOnboardingMentor) {
	t.Helper()
	db := newTestDB(t)

	user := &model.User{Email: "new@example.com", Password: "x", FullName: "New Learner"}
	require.NoError(t, repository.NewUserRepository(db).Create(user))

	roadmapSvc := NewRoadmapService(repository.NewRoadmapRepository(db))
	mentor := &fakeOnboardingMentor{}
	svc := NewGoalService(
		repository.NewUserRepository(db),
		repository.NewGoalRepository(db),
		roadmapSvc,
		mentor,
	)
	return svc, roadmapSvc, user, mentor
}

func subjectForm(subject string, minutes int) SubjectGoal {
	return SubjectGoal{
		Subject:          subject,
		ExamOrSkill:      "Final exam",
		DailyTimeMinutes: minutes,
		TargetDate:       time.Now().AddDate(0, 3, 0),
	}
}

func TestOnboardCreatesGoalAndRoadmap(t *testing.T) {
	svc, roadmapSvc, user, _ := newGoalHarness(t)

	summaries, err := svc.Onboard(context.Background(), user.ID, []SubjectGoal{subjectForm("Physics", 45)})
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	summary := summaries[0]
	assert.Equal(t, "Physics", summary.Subject)
	assert.Equal(t, model.LevelIntermediate, summary.Level)
	assert.Equal(t, "Welcome to the grind.", summary.Welcome)
	assert.Equal(t, 3, summary.RoadmapTasks)
	assert.False(t, summary.Refreshed)

	active, err := roadmapSvc.GetActiveTask(user.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, 0, active.OrderIndex)
}

func TestOnboardDetectionFailureFallsBackToBeginner(t *testing.T) {
	svc, _, user, mentor := newGoalHarness(t)
	mentor.failDetect = true

	summaries, err := svc.Onboard(context.Background(), user.ID, []SubjectGoal{subjectForm("Physics", 30)})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, model.LevelBeginner, summaries[0].Level)
	assert.NotEmpty(t, summaries[0].Welcome)
}

func TestOnboardCurriculumFailureBuildsStarter(t *testing.T) {
	svc, roadmapSvc, user, mentor := newGoalHarness(t)
	mentor.failCurriculum = true

	summaries, err := svc.Onboard(context.Background(), user.ID, []SubjectGoal{subjectForm("Physics", 30)})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].RoadmapTasks)

	active, err := roadmapSvc.GetActiveTask(user.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "Introduction to Physics", active.Title)
}

func TestOnboardRepeatedSubjectRefreshesWithoutRedetect(t *testing.T) {
	svc, _, user, mentor := newGoalHarness(t)
	ctx := context.Background()

	first, err := svc.Onboard(ctx, user.ID, []SubjectGoal{subjectForm("Physics", 30)})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, mentor.detectCalls)

	second, err := svc.Onboard(ctx, user.ID, []SubjectGoal{subjectForm("Physics", 60)})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.True(t, second[0].Refreshed)
	assert.Equal(t, first[0].GoalID, second[0].GoalID)
	assert.Equal(t, first[0].Level, second[0].Level)
	assert.Equal(t, 1, mentor.detectCalls)

	goals, err := svc.ListGoals(user.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, 60, goals[0].DailyTimeMinutes)
}

func TestOnboardMultipleSubjects(t *testing.T) {
	svc, _, user, _ := newGoalHarness(t)

	summaries, err := svc.Onboard(context.Background(), user.ID, []SubjectGoal{
		subjectForm("Physics", 30),
		subjectForm("Calculus", 45),
	})
	require.NoError(t, err)
	assert.Len(t, summaries, 2)

	goals, err := svc.ListGoals(user.ID)
	require.NoError(t, err)
	assert.Len(t, goals, 2)
}

func TestOnboardUnknownUser(t *testing.T) {
	svc, _, _, _ := newGoalHarness(t)

	_, err := svc.Onboard(context.Background(), "missing-user", []SubjectGoal{subjectForm("Physics", 30)})
	assert.Error(t, err)
}

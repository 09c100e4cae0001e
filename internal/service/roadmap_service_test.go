package service

import (
	"testing"
	"time"

	"study_mentor_backend/internal/model"
	"study_mentor_backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoadmapService(t *testing.T) (*RoadmapService, *model.User, *model.Goal) {
	t.Helper()
	db := newTestDB(t)
	user, goal := seedUserAndGoal(t, db)
	return NewRoadmapService(repository.NewRoadmapRepository(db)), user, goal
}

func TestBuildFlattensCurriculum(t *testing.T) {
	svc, _, goal := newRoadmapService(t)

	roadmap, err := svc.Build(goal, threeTaskCurriculum())
	require.NoError(t, err)
	require.Len(t, roadmap.Tasks, 3)

	tasks, err := svc.Roadmaps.FindTasks(roadmap.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	for i, task := range tasks {
		assert.Equal(t, i, task.OrderIndex)
	}

	first := tasks[0]
	assert.Equal(t, model.RoadmapTaskActive, first.Status)
	require.NotNil(t, first.ScheduledDate)
	assert.Equal(t, todayStamp(), dateStamp(*first.ScheduledDate))
	assert.Equal(t, "Mechanics", first.Phase)
	assert.Equal(t, "Kinematics", first.Module)

	assert.Equal(t, model.RoadmapTaskPending, tasks[1].Status)
	assert.Equal(t, model.RoadmapTaskPending, tasks[2].Status)
	assert.Nil(t, tasks[1].ScheduledDate)
	assert.Equal(t, "Waves", tasks[2].Phase)
}

func TestBuildFallsBackToStarterRoadmap(t *testing.T) {
	svc, _, goal := newRoadmapService(t)

	roadmap, err := svc.Build(goal, nil)
	require.NoError(t, err)
	require.Len(t, roadmap.Tasks, 1)

	task := roadmap.Tasks[0]
	assert.Equal(t, "Introduction to Physics", task.Title)
	assert.Equal(t, "Getting Started", task.Phase)
	assert.Equal(t, "Introduction", task.Module)
	assert.Equal(t, 30, task.EstimatedTimeMinutes)
	assert.Equal(t, model.RoadmapTaskActive, task.Status)
	assert.Equal(t, "Physics Fundamentals", roadmap.Title)
}

func TestBuildEmptyCurriculumFallsBack(t *testing.T) {
	svc, _, goal := newRoadmapService(t)

	roadmap, err := svc.Build(goal, &Curriculum{Title: "Empty", Phases: nil})
	require.NoError(t, err)
	require.Len(t, roadmap.Tasks, 1)
	assert.Equal(t, "Introduction to Physics", roadmap.Tasks[0].Title)
}

func TestCompleteTaskAdvancesSuccessor(t *testing.T) {
	svc, user, goal := newRoadmapService(t)
	roadmap, err := svc.Build(goal, threeTaskCurriculum())
	require.NoError(t, err)

	tasks, err := svc.Roadmaps.FindTasks(roadmap.ID)
	require.NoError(t, err)

	done, err := svc.CompleteTask(user.ID, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoadmapTaskCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	next, err := svc.Roadmaps.FindTaskByID(tasks[1].ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoadmapTaskActive, next.Status)
	require.NotNil(t, next.ScheduledDate)
	assert.Equal(t, todayStamp(), dateStamp(*next.ScheduledDate))

	count, err := svc.Roadmaps.CountActiveTasks(roadmap.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestCompleteTaskIdempotent(t *testing.T) {
	svc, user, goal := newRoadmapService(t)
	roadmap, err := svc.Build(goal, threeTaskCurriculum())
	require.NoError(t, err)

	tasks, err := svc.Roadmaps.FindTasks(roadmap.ID)
	require.NoError(t, err)

	first, err := svc.CompleteTask(user.ID, tasks[0].ID)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)

	again, err := svc.CompleteTask(user.ID, tasks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoadmapTaskCompleted, again.Status)
	require.NotNil(t, again.CompletedAt)
	assert.WithinDuration(t, *first.CompletedAt, *again.CompletedAt, time.Second)

	// The repeat must not touch tasks beyond the original successor.
	third, err := svc.Roadmaps.FindTaskByID(tasks[2].ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoadmapTaskPending, third.Status)

	count, err := svc.Roadmaps.CountActiveTasks(roadmap.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestCompleteLastTaskFinishesRoadmap(t *testing.T) {
	svc, user, goal := newRoadmapService(t)
	roadmap, err := svc.Build(goal, threeTaskCurriculum())
	require.NoError(t, err)

	tasks, err := svc.Roadmaps.FindTasks(roadmap.ID)
	require.NoError(t, err)
	for _, task := range tasks {
		_, err := svc.CompleteTask(user.ID, task.ID)
		require.NoError(t, err)
	}

	count, err := svc.Roadmaps.CountActiveTasks(roadmap.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	active, err := svc.GetActiveTask(user.ID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestCompleteTaskWrongUser(t *testing.T) {
	svc, _, goal := newRoadmapService(t)
	roadmap, err := svc.Build(goal, threeTaskCurriculum())
	require.NoError(t, err)

	tasks, err := svc.Roadmaps.FindTasks(roadmap.ID)
	require.NoError(t, err)

	_, err = svc.CompleteTask("someone-else", tasks[0].ID)
	assert.Error(t, err)
}

func TestGetActiveRoadmapGroupsTree(t *testing.T) {
	svc, user, goal := newRoadmapService(t)
	_, err := svc.Build(goal, threeTaskCurriculum())
	require.NoError(t, err)

	tree, err := svc.GetActiveRoadmap(user.ID)
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.False(t, tree.IsComplete)
	require.Len(t, tree.Phases, 2)
	assert.Equal(t, "Mechanics", tree.Phases[0].Name)
	require.Len(t, tree.Phases[0].Modules, 1)
	assert.Len(t, tree.Phases[0].Modules[0].Tasks, 2)
	assert.Equal(t, "Waves", tree.Phases[1].Name)
	assert.Len(t, tree.Phases[1].Modules[0].Tasks, 1)
}

func TestGetActiveRoadmapCompleteFlag(t *testing.T) {
	svc, user, goal := newRoadmapService(t)
	roadmap, err := svc.Build(goal, threeTaskCurriculum())
	require.NoError(t, err)

	tasks, err := svc.Roadmaps.FindTasks(roadmap.ID)
	require.NoError(t, err)
	for _, task := range tasks {
		_, err := svc.CompleteTask(user.ID, task.ID)
		require.NoError(t, err)
	}

	tree, err := svc.GetActiveRoadmap(user.ID)
	require.NoError(t, err)
	require.NotNil(t, tree)
	assert.True(t, tree.IsComplete)
}

func TestGetActiveRoadmapNone(t *testing.T) {
	svc, user, _ := newRoadmapService(t)

	tree, err := svc.GetActiveRoadmap(user.ID)
	require.NoError(t, err)
	assert.Nil(t, tree)
}

package service

import (
	"errors"
	"fmt"
	"time"

	"study_mentor_backend/internal/model"
	"study_mentor_backend/internal/repository"
	"study_mentor_backend/internal/util"
	"study_mentor_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoadmapService owns the curriculum tree and its progression state machine:
// tasks move from pending to active to completed, at most one active task
// per roadmap.
type RoadmapService struct {
	Roadmaps *repository.RoadmapRepository
}

func NewRoadmapService(roadmaps *repository.RoadmapRepository) *RoadmapService {
	return &RoadmapService{Roadmaps: roadmaps}
}

// Build persists a curriculum tree for the goal. Tasks are flattened in
// traversal order with order_index running from 0 across the whole tree; the
// first task starts active and scheduled for today. A nil or empty curriculum
// never blocks onboarding: a single-task starter roadmap is built instead.
func (s *RoadmapService) Build(goal *model.Goal, curriculum *Curriculum) (*model.Roadmap, error) {
	if curriculum == nil || countCurriculumTasks(curriculum) == 0 {
		logger.Log.Warn("no usable curriculum, building single-task starter roadmap",
			zap.String("subject", goal.Subject))
		curriculum = starterCurriculum(goal.Subject)
	}

	today := model.DateOnly(time.Now())
	roadmap := &model.Roadmap{
		UserID:   goal.UserID,
		GoalID:   goal.ID,
		Title:    curriculum.Title,
		IsActive: true,
	}

	order := 0
	for _, phase := range curriculum.Phases {
		phaseName := phase.Name
		if phaseName == "" {
			phaseName = "Basics"
		}
		for _, mod := range phase.Modules {
			moduleName := mod.Name
			if moduleName == "" {
				moduleName = "Module"
			}
			for _, task := range mod.Tasks {
				rt := model.RoadmapTask{
					Phase:                phaseName,
					Module:               moduleName,
					Title:                orDefault(task.Title, "Lesson"),
					Description:          task.Description,
					EstimatedTimeMinutes: orDefaultInt(task.EstimatedTime, 30),
					OutputDeliverable:    task.OutputDeliverable,
					OrderIndex:           order,
					Status:               model.RoadmapTaskPending,
				}
				if order == 0 {
					rt.Status = model.RoadmapTaskActive
					rt.ScheduledDate = &today
				}
				roadmap.Tasks = append(roadmap.Tasks, rt)
				order++
			}
		}
	}

	if err := s.Roadmaps.Create(roadmap); err != nil {
		return nil, err
	}

	logger.Log.Info("roadmap built",
		zap.Uint("goalId", goal.ID),
		zap.Int("tasks", order))
	return roadmap, nil
}

// starterCurriculum is the deterministic fallback tree used when the
// generation provider fails during onboarding.
func starterCurriculum(subject string) *Curriculum {
	return &Curriculum{
		Title: fmt.Sprintf("%s Fundamentals", subject),
		Phases: []CurriculumPhase{{
			Name: "Getting Started",
			Modules: []CurriculumModule{{
				Name: "Introduction",
				Tasks: []CurriculumTask{{
					Title:             fmt.Sprintf("Introduction to %s", subject),
					Description:       fmt.Sprintf("Start your journey by exploring the core concepts of %s. Research the basics and set up your learning environment.", subject),
					EstimatedTime:     30,
					OutputDeliverable: "A brief summary of what you learned and your setup.",
				}},
			}},
		}},
	}
}

// CompleteTask marks a roadmap task completed and activates its successor,
// pulling the successor's scheduled date forward to today. Completing an
// already-completed task is a no-op that returns the stored state; the
// successor is activated exactly once even when two completions race, because
// both status flips are conditional updates.
func (s *RoadmapService) CompleteTask(userID string, taskID uint) (*model.RoadmapTask, error) {
	task, err := s.Roadmaps.FindTaskByIDAndUserID(taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrRoadmapTaskNotFound
		}
		return nil, err
	}

	rows, err := s.Roadmaps.MarkTaskCompleted(task.ID, time.Now())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Someone completed it first; return their terminal state untouched.
		return s.Roadmaps.FindTaskByID(task.ID)
	}

	next, err := s.Roadmaps.FindTaskByOrderIndex(task.RoadmapID, task.OrderIndex+1)
	switch {
	case err == nil:
		if _, err := s.Roadmaps.ActivateTask(next.ID, model.DateOnly(time.Now())); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Last task of the roadmap; nothing left to unlock.
		logger.Log.Info("roadmap finished", zap.Uint("roadmapId", task.RoadmapID))
	default:
		return nil, err
	}

	return s.Roadmaps.FindTaskByID(task.ID)
}

// GetActiveTask returns the learner's single active roadmap task, or nil when
// every task is done or no roadmap exists.
func (s *RoadmapService) GetActiveTask(userID string) (*model.RoadmapTask, error) {
	task, err := s.Roadmaps.FindActiveTaskByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

// RoadmapTree is the grouped phase/module/task view served to clients.
type RoadmapTree struct {
	ID         uint        `json:"id"`
	Title      string      `json:"title"`
	IsComplete bool        `json:"isComplete"`
	Phases     []TreePhase `json:"phases"`
}

type TreePhase struct {
	Name    string       `json:"name"`
	Modules []TreeModule `json:"modules"`
}

type TreeModule struct {
	Name  string     `json:"name"`
	Tasks []TreeTask `json:"tasks"`
}

type TreeTask struct {
	ID            uint                    `json:"id"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	Status        model.RoadmapTaskStatus `json:"status"`
	EstimatedTime int                     `json:"estimatedTime"`
	Output        string                  `json:"output"`
}

// GetActiveRoadmap regroups the flattened task list back into the tree shape.
// Grouping preserves order_index order, so phases and modules appear in
// traversal order.
func (s *RoadmapService) GetActiveRoadmap(userID string) (*RoadmapTree, error) {
	roadmap, err := s.Roadmaps.FindActiveByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	tasks, err := s.Roadmaps.FindTasks(roadmap.ID)
	if err != nil {
		return nil, err
	}

	tree := &RoadmapTree{
		ID:         roadmap.ID,
		Title:      roadmap.Title,
		IsComplete: len(tasks) > 0,
	}

	for _, t := range tasks {
		if t.Status != model.RoadmapTaskCompleted && t.Status != model.RoadmapTaskSkipped {
			tree.IsComplete = false
		}

		if len(tree.Phases) == 0 || tree.Phases[len(tree.Phases)-1].Name != t.Phase {
			tree.Phases = append(tree.Phases, TreePhase{Name: t.Phase})
		}
		phase := &tree.Phases[len(tree.Phases)-1]

		if len(phase.Modules) == 0 || phase.Modules[len(phase.Modules)-1].Name != t.Module {
			phase.Modules = append(phase.Modules, TreeModule{Name: t.Module})
		}
		mod := &phase.Modules[len(phase.Modules)-1]

		mod.Tasks = append(mod.Tasks, TreeTask{
			ID:            t.ID,
			Title:         t.Title,
			Description:   t.Description,
			Status:        t.Status,
			EstimatedTime: t.EstimatedTimeMinutes,
			Output:        t.OutputDeliverable,
		})
	}

	return tree, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orDefaultInt(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

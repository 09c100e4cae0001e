package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"study_mentor_backend/internal/model"
	"study_mentor_backend/internal/repository"
	"study_mentor_backend/internal/util"
	"study_mentor_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TaskMentor is the slice of MentorService the materializer and submission
// flow need.
type TaskMentor interface {
	BuildTaskDescription(ctx context.Context, topic, subject string, resources []model.TaskResource, level model.ProficiencyLevel, timeMinutes int) (string, bool)
	EvaluateSubmission(ctx context.Context, taskDescription, submissionText string, level model.ProficiencyLevel) (*Evaluation, bool)
}

// ResourceResolver is the slice of ResourceService used here.
type ResourceResolver interface {
	Resolve(ctx context.Context, subject, topic string, level model.ProficiencyLevel, goalContext string, limit int) []model.TaskResource
}

// defaultResourceLimit is how many resources a freshly materialized task gets.
const defaultResourceLimit = 3

// TaskService materializes the active roadmap task into today's daily task
// and owns the submission flow. Materialization is idempotent per calendar
// day: the cached path does no provider calls, and racing creators are
// reconciled through the unique index.
type TaskService struct {
	Tasks       *repository.DailyTaskRepository
	Submissions *repository.SubmissionRepository
	Goals       *repository.GoalRepository
	Roadmap     *RoadmapService
	Resolver    ResourceResolver
	Mentor      TaskMentor
	DB          *gorm.DB
}

func NewTaskService(
	tasks *repository.DailyTaskRepository,
	submissions *repository.SubmissionRepository,
	goals *repository.GoalRepository,
	roadmap *RoadmapService,
	resolver ResourceResolver,
	mentor TaskMentor,
	db *gorm.DB,
) *TaskService {
	return &TaskService{
		Tasks:       tasks,
		Submissions: submissions,
		Goals:       goals,
		Roadmap:     roadmap,
		Resolver:    resolver,
		Mentor:      mentor,
		DB:          db,
	}
}

// DailyPlanEntry is today's enriched task as served to clients.
type DailyPlanEntry struct {
	Task            *model.DailyTask       `json:"task"`
	Subject         string                 `json:"subject"`
	Level           model.ProficiencyLevel `json:"level"`
	GoalDescription string                 `json:"goalDescription"`
	RoadmapTaskID   uint                   `json:"roadmapTaskId"`
}

// GetOrCreateToday returns today's daily task for the user's active roadmap
// task, creating and enriching it on first access of the day. No active
// roadmap task means no plan today (nil, nil).
func (s *TaskService) GetOrCreateToday(ctx context.Context, userID string) (*DailyPlanEntry, error) {
	active, err := s.Roadmap.GetActiveTask(userID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, nil
	}

	roadmap, err := s.Roadmap.Roadmaps.FindByID(active.RoadmapID)
	if err != nil {
		return nil, err
	}
	goal, err := s.Goals.FindByID(roadmap.GoalID)
	if err != nil {
		return nil, err
	}

	today := model.DateOnly(time.Now())

	task, err := s.Tasks.FindByRoadmapTaskAndDate(userID, active.ID, today)
	if err == nil {
		// Already materialized today: pure read, no provider calls.
		return planEntry(task, goal, active.ID), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	task, err = s.materialize(ctx, userID, active, goal, today)
	if err != nil {
		return nil, err
	}
	return planEntry(task, goal, active.ID), nil
}

func planEntry(task *model.DailyTask, goal *model.Goal, roadmapTaskID uint) *DailyPlanEntry {
	return &DailyPlanEntry{
		Task:            task,
		Subject:         goal.Subject,
		Level:           goal.DetectedLevel,
		GoalDescription: goal.ExamOrSkill,
		RoadmapTaskID:   roadmapTaskID,
	}
}

// materialize runs the enrichment flow and persists task + resources in one
// transaction. Losing the insert race is not an error: the winner's row is
// re-read and returned.
func (s *TaskService) materialize(ctx context.Context, userID string, active *model.RoadmapTask, goal *model.Goal, today time.Time) (*model.DailyTask, error) {
	level := goal.DetectedLevel
	if level == "" {
		level = model.LevelBeginner
	}

	resources := s.Resolver.Resolve(ctx, goal.Subject, active.Title, level, goal.ExamOrSkill, defaultResourceLimit)

	description, ok := s.Mentor.BuildTaskDescription(ctx, active.Title, goal.Subject, resources, level, goal.DailyTimeMinutes)
	if !ok {
		// The roadmap task's own description is always good enough to ship.
		description = active.Description
	}

	roadmapTaskID := active.ID
	goalID := goal.ID
	task := &model.DailyTask{
		UserID:        userID,
		GoalID:        &goalID,
		RoadmapTaskID: &roadmapTaskID,
		Topic:         active.Title,
		Description:   description,
		Date:          today,
	}

	if err := s.Tasks.CreateWithResources(task, resources); err != nil {
		if isDuplicateKeyErr(err) {
			logger.Log.Debug("daily task already materialized by a concurrent request",
				zap.String("userId", userID),
				zap.Uint("roadmapTaskId", active.ID))
			return s.Tasks.FindByRoadmapTaskAndDate(userID, active.ID, today)
		}
		return nil, err
	}

	logger.Log.Info("daily task materialized",
		zap.String("userId", userID),
		zap.Uint("taskId", task.ID),
		zap.Int("resources", len(resources)))
	return task, nil
}

// TaskDetail is the single-task view, enriched with goal context when any
// exists (ad-hoc tasks without a goal fall back to generic labels).
type TaskDetail struct {
	Task    *model.DailyTask       `json:"task"`
	Subject string                 `json:"subject"`
	Level   model.ProficiencyLevel `json:"level"`
}

func (s *TaskService) GetTask(userID string, taskID uint) (*TaskDetail, error) {
	task, err := s.Tasks.FindByIDAndUserID(taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTaskNotFound
		}
		return nil, err
	}

	detail := &TaskDetail{Task: task, Subject: "Learning", Level: model.LevelBeginner}
	if goal := s.goalForTask(task); goal != nil {
		detail.Subject = goal.Subject
		if goal.DetectedLevel != "" {
			detail.Level = goal.DetectedLevel
		}
	}
	return detail, nil
}

func (s *TaskService) goalForTask(task *model.DailyTask) *model.Goal {
	if task.GoalID == nil {
		return nil
	}
	goal, err := s.Goals.FindByID(*task.GoalID)
	if err != nil {
		return nil
	}
	return goal
}

// SubmissionResult reports the evaluation, and whether this call created the
// submission or found an earlier one.
type SubmissionResult struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	Repeat   bool   `json:"repeat"`
}

// Submit evaluates the learner's work and completes the task. A task accepts
// exactly one submission; repeats return the stored verdict. Completion
// cascades to the originating roadmap task, which unlocks its successor.
func (s *TaskService) Submit(ctx context.Context, userID string, taskID uint, text, imageURL string) (*SubmissionResult, error) {
	task, err := s.Tasks.FindByIDAndUserID(taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTaskNotFound
		}
		return nil, err
	}

	if existing, err := s.Submissions.FindByTaskID(task.ID); err == nil {
		return &SubmissionResult{Score: existing.Score, Feedback: existing.Feedback, Repeat: true}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	level := model.LevelBeginner
	if goal := s.goalForTask(task); goal != nil && goal.DetectedLevel != "" {
		level = goal.DetectedLevel
	}

	evalText := text
	if strings.TrimSpace(evalText) == "" {
		evalText = ImageSubmissionMarker
	}

	score := 0
	feedback := "Submission received."
	if eval, ok := s.Mentor.EvaluateSubmission(ctx, task.Description, evalText, level); ok {
		score = eval.Score
		feedback = eval.Feedback
	}

	submission := &model.Submission{
		TaskID:      task.ID,
		Text:        text,
		ImageURL:    imageURL,
		Feedback:    feedback,
		Score:       score,
		SubmittedAt: time.Now(),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(submission).Error; err != nil {
			return err
		}
		return tx.Model(&model.DailyTask{}).
			Where("id = ?", task.ID).
			Update("is_completed", true).Error
	})
	if err != nil {
		if isDuplicateKeyErr(err) {
			// Concurrent submit won; serve their verdict.
			if existing, ferr := s.Submissions.FindByTaskID(task.ID); ferr == nil {
				return &SubmissionResult{Score: existing.Score, Feedback: existing.Feedback, Repeat: true}, nil
			}
		}
		return nil, err
	}

	if task.RoadmapTaskID != nil {
		if _, err := s.Roadmap.CompleteTask(userID, *task.RoadmapTaskID); err != nil {
			// The submission stands even if the cascade hits a stale link.
			logger.Log.Error("roadmap completion cascade failed",
				zap.Uint("roadmapTaskId", *task.RoadmapTaskID),
				zap.Error(err))
		}
	}

	return &SubmissionResult{Score: score, Feedback: feedback}, nil
}

// RegenerateResources throws away the task's resource set and resolves a
// fresh one; the description is left alone. The swap is atomic, so readers
// never see a partially replaced set.
func (s *TaskService) RegenerateResources(ctx context.Context, userID string, taskID uint) ([]model.TaskResource, error) {
	task, err := s.Tasks.FindByIDAndUserID(taskID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTaskNotFound
		}
		return nil, err
	}

	subject := "Learning"
	goalContext := "General"
	level := model.LevelBeginner
	if goal := s.goalForTask(task); goal != nil {
		subject = goal.Subject
		goalContext = goal.ExamOrSkill
		if goal.DetectedLevel != "" {
			level = goal.DetectedLevel
		}
	}

	resources := s.Resolver.Resolve(ctx, subject, task.Topic, level, goalContext, defaultResourceLimit)
	if err := s.Tasks.ReplaceResources(task.ID, resources); err != nil {
		return nil, err
	}

	return s.Tasks.FindResources(task.ID)
}

// isDuplicateKeyErr matches gorm's translated duplicate-key error plus the
// raw driver messages, since not every dialect translates.
func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"study_mentor_backend/internal/model"
	"study_mentor_backend/internal/repository"
	"study_mentor_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OnboardingMentor is the slice of MentorService onboarding needs.
type OnboardingMentor interface {
	DetectLevel(ctx context.Context, subject, examOrSkill string, dailyMinutes int, targetDate time.Time) (*LevelAssessment, bool)
	GenerateCurriculum(ctx context.Context, goal *model.Goal) (*Curriculum, bool)
}

// GoalService turns the onboarding form into goals and roadmaps. Every path
// through it ends with a usable roadmap, even when the mentor is down.
type GoalService struct {
	Users   *repository.UserRepository
	Goals   *repository.GoalRepository
	Roadmap *RoadmapService
	Mentor  OnboardingMentor
}

func NewGoalService(users *repository.UserRepository, goals *repository.GoalRepository, roadmap *RoadmapService, mentor OnboardingMentor) *GoalService {
	return &GoalService{Users: users, Goals: goals, Roadmap: roadmap, Mentor: mentor}
}

// SubjectGoal is one subject block from the onboarding form.
type SubjectGoal struct {
	Subject          string    `json:"subject" binding:"required"`
	ExamOrSkill      string    `json:"examOrSkill"`
	DailyTimeMinutes int       `json:"dailyTimeMinutes" binding:"required,min=5,max=480"`
	TargetDate       time.Time `json:"targetDate"`
	TargetGoal       string    `json:"targetGoal"`
	LearningStyle    string    `json:"learningStyle"`
}

// GoalSummary is the per-subject outcome of onboarding.
type GoalSummary struct {
	GoalID       uint                   `json:"goalId"`
	Subject      string                 `json:"subject"`
	Level        model.ProficiencyLevel `json:"level"`
	Welcome      string                 `json:"welcome"`
	RoadmapTasks int                    `json:"roadmapTasks"`
	Refreshed    bool                   `json:"refreshed"`
}

// Onboard processes each subject independently. A repeated subject refreshes
// the goal's schedule fields and keeps the level and roadmap that were built
// the first time; a new subject gets level detection, a curriculum and a
// roadmap. One failing subject does not abort the rest.
func (s *GoalService) Onboard(ctx context.Context, userID string, subjects []SubjectGoal) ([]GoalSummary, error) {
	if _, err := s.Users.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}

	summaries := make([]GoalSummary, 0, len(subjects))
	for _, sg := range subjects {
		summary, err := s.onboardSubject(ctx, userID, sg)
		if err != nil {
			logger.Log.Error("onboarding subject failed",
				zap.String("userId", userID),
				zap.String("subject", sg.Subject),
				zap.Error(err))
			continue
		}
		summaries = append(summaries, *summary)
	}

	if len(summaries) == 0 && len(subjects) > 0 {
		return nil, errors.New("onboarding failed for all subjects")
	}
	return summaries, nil
}

func (s *GoalService) onboardSubject(ctx context.Context, userID string, sg SubjectGoal) (*GoalSummary, error) {
	existing, err := s.Goals.FindByUserAndSubject(userID, sg.Subject)
	if err == nil {
		return s.refreshGoal(existing, sg)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	level := model.LevelBeginner
	welcome := fmt.Sprintf("Welcome! We'll start %s from the fundamentals and build up from there.", sg.Subject)
	if assessment, ok := s.Mentor.DetectLevel(ctx, sg.Subject, sg.ExamOrSkill, sg.DailyTimeMinutes, sg.TargetDate); ok {
		level = assessment.Level
		welcome = assessment.Message
	}

	targetGoal := sg.TargetGoal
	if targetGoal == "" {
		targetGoal = sg.ExamOrSkill
	}
	goal := &model.Goal{
		UserID:           userID,
		Subject:          sg.Subject,
		ExamOrSkill:      sg.ExamOrSkill,
		DailyTimeMinutes: sg.DailyTimeMinutes,
		TargetDate:       sg.TargetDate,
		DetectedLevel:    level,
		TargetGoal:       targetGoal,
		LearningStyle:    sg.LearningStyle,
	}
	if err := s.Goals.Create(goal); err != nil {
		return nil, err
	}

	// A nil curriculum is fine here; Build falls back to a starter roadmap.
	curriculum, _ := s.Mentor.GenerateCurriculum(ctx, goal)
	roadmap, err := s.Roadmap.Build(goal, curriculum)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("goal onboarded",
		zap.String("userId", userID),
		zap.String("subject", sg.Subject),
		zap.String("level", string(level)),
		zap.Int("roadmapTasks", len(roadmap.Tasks)))

	return &GoalSummary{
		GoalID:       goal.ID,
		Subject:      goal.Subject,
		Level:        level,
		Welcome:      welcome,
		RoadmapTasks: len(roadmap.Tasks),
	}, nil
}

// refreshGoal updates schedule fields only. The detected level and the
// existing roadmap carry over so returning users keep their place.
func (s *GoalService) refreshGoal(goal *model.Goal, sg SubjectGoal) (*GoalSummary, error) {
	goal.ExamOrSkill = sg.ExamOrSkill
	goal.DailyTimeMinutes = sg.DailyTimeMinutes
	goal.TargetDate = sg.TargetDate
	if err := s.Goals.Update(goal); err != nil {
		return nil, err
	}

	taskCount := 0
	if roadmap, err := s.Roadmap.Roadmaps.FindActiveByGoalID(goal.ID); err == nil {
		if tasks, err := s.Roadmap.Roadmaps.FindTasks(roadmap.ID); err == nil {
			taskCount = len(tasks)
		}
	}

	return &GoalSummary{
		GoalID:       goal.ID,
		Subject:      goal.Subject,
		Level:        goal.DetectedLevel,
		Welcome:      fmt.Sprintf("Welcome back to %s. Your plan has been updated.", goal.Subject),
		RoadmapTasks: taskCount,
		Refreshed:    true,
	}, nil
}

// ListGoals returns all of the user's goals.
func (s *GoalService) ListGoals(userID string) ([]model.Goal, error) {
	return s.Goals.FindByUserID(userID)
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"study_mentor_backend/internal/model"
	"study_mentor_backend/internal/repository"
	"study_mentor_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// WeeklyMentor is the slice of MentorService the summary needs.
type WeeklyMentor interface {
	SummarizeWeek(ctx context.Context, completedCount int, avgScore float64, dayCount int, level model.ProficiencyLevel, topics string) (string, bool)
}

const (
	weeklySummaryKeyPrefix = "weekly_summary:"
	weeklySummaryTTL       = 6 * time.Hour
	summaryTopicLimit      = 5
)

// ProgressService aggregates the daily-task history, submission scores and
// the day streak, and produces the cached weekly recap.
type ProgressService struct {
	Tasks       *repository.DailyTaskRepository
	Submissions *repository.SubmissionRepository
	Goals       *repository.GoalRepository
	Mentor      WeeklyMentor
	Redis       *redis.Client
}

func NewProgressService(
	tasks *repository.DailyTaskRepository,
	submissions *repository.SubmissionRepository,
	goals *repository.GoalRepository,
	mentor WeeklyMentor,
	rdb *redis.Client,
) *ProgressService {
	return &ProgressService{
		Tasks:       tasks,
		Submissions: submissions,
		Goals:       goals,
		Mentor:      mentor,
		Redis:       rdb,
	}
}

// ProgressReport is the learner's aggregate standing.
type ProgressReport struct {
	TotalTasks        int                    `json:"totalTasks"`
	CompletedTasks    int                    `json:"completedTasks"`
	CompletionPercent float64                `json:"completionPercent"`
	AverageScore      float64                `json:"averageScore"`
	StreakDays        int                    `json:"streakDays"`
	Level             model.ProficiencyLevel `json:"level"`
	Subject           string                 `json:"subject,omitempty"`
}

// ComputeProgress derives the report from stored rows only; it never calls a
// provider. Empty histories yield zeros, never a division error.
func (s *ProgressService) ComputeProgress(userID string) (*ProgressReport, error) {
	report := &ProgressReport{Level: model.LevelBeginner}

	if goal, err := s.Goals.FirstByUserID(userID); err == nil {
		report.Subject = goal.Subject
		if goal.DetectedLevel != "" {
			report.Level = goal.DetectedLevel
		}
	}

	dailyTasks, err := s.Tasks.FindAllByUserID(userID)
	if err != nil {
		return nil, err
	}
	report.TotalTasks = len(dailyTasks)
	for _, t := range dailyTasks {
		if t.IsCompleted {
			report.CompletedTasks++
		}
	}
	if report.TotalTasks > 0 {
		report.CompletionPercent = float64(report.CompletedTasks) / float64(report.TotalTasks) * 100
	}

	submissions, err := s.Submissions.FindAllByUserID(userID)
	if err != nil {
		return nil, err
	}
	if len(submissions) > 0 {
		sum := 0
		for _, sub := range submissions {
			sum += sub.Score
		}
		report.AverageScore = float64(sum) / float64(len(submissions))
	}

	report.StreakDays = streakDays(dailyTasks, time.Now())

	return report, nil
}

// streakDays counts consecutive days with a completed task, walking backward
// from today. An incomplete today does not break the streak; the walk just
// starts from yesterday instead.
func streakDays(tasks []model.DailyTask, now time.Time) int {
	completed := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.IsCompleted {
			completed[dayKey(t.Date)] = true
		}
	}

	day := model.DateOnly(now)
	if !completed[dayKey(day)] {
		day = day.AddDate(0, 0, -1)
	}

	streak := 0
	for completed[dayKey(day)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// dayKey normalizes a stored date to a local calendar day, so comparisons
// survive whatever timezone the driver handed back.
func dayKey(t time.Time) string {
	return t.In(time.Local).Format("2006-01-02")
}

// WeeklySummary returns a short mentor recap of the last seven days, cached
// in redis so repeated dashboard loads do not hit the provider.
func (s *ProgressService) WeeklySummary(ctx context.Context, userID string) (string, error) {
	key := weeklySummaryKeyPrefix + userID

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil && cached != "" {
			return cached, nil
		} else if err != nil && err != redis.Nil {
			logger.Log.Warn("weekly summary cache read failed", zap.Error(err))
		}
	}

	tasks, err := s.Tasks.FindAllByUserID(userID)
	if err != nil {
		return "", err
	}

	weekStart := model.DateOnly(time.Now()).AddDate(0, 0, -6)
	completedCount := 0
	activeDays := make(map[string]bool)
	var topics []string
	for _, t := range tasks {
		day := model.DateOnly(t.Date.In(time.Local))
		if day.Before(weekStart) {
			continue
		}
		if t.IsCompleted {
			completedCount++
			activeDays[dayKey(day)] = true
			if len(topics) < summaryTopicLimit {
				topics = append(topics, t.Topic)
			}
		}
	}

	avgScore := 0.0
	if submissions, err := s.Submissions.FindAllByUserID(userID); err == nil && len(submissions) > 0 {
		sum := 0
		for _, sub := range submissions {
			sum += sub.Score
		}
		avgScore = float64(sum) / float64(len(submissions))
	}

	level := model.LevelBeginner
	if goal, err := s.Goals.FirstByUserID(userID); err == nil && goal.DetectedLevel != "" {
		level = goal.DetectedLevel
	}

	summary, ok := s.Mentor.SummarizeWeek(ctx, completedCount, avgScore, len(activeDays), level, strings.Join(topics, ", "))
	if !ok || strings.TrimSpace(summary) == "" {
		summary = fallbackWeeklySummary(completedCount, len(activeDays))
	}

	if s.Redis != nil {
		if err := s.Redis.Set(ctx, key, summary, weeklySummaryTTL).Err(); err != nil {
			logger.Log.Warn("weekly summary cache write failed", zap.Error(err))
		}
	}

	return summary, nil
}

func fallbackWeeklySummary(completedCount, dayCount int) string {
	if completedCount == 0 {
		return "No tasks completed this week yet. Today is a good day to start."
	}
	return fmt.Sprintf("You completed %d task(s) across %d day(s) this week. Keep the momentum going!", completedCount, dayCount)
}

package service

import (
	"errors"
	"time"

	"study_mentor_backend/internal/model"
	"study_mentor_backend/internal/repository"
	"study_mentor_backend/internal/util"

	"gorm.io/gorm"
)

// UserService serves the profile and settings surface.
type UserService struct {
	Users *repository.UserRepository
	Goals *repository.GoalRepository
}

func NewUserService(users *repository.UserRepository, goals *repository.GoalRepository) *UserService {
	return &UserService{Users: users, Goals: goals}
}

// Profile is the user plus derived onboarding state.
type Profile struct {
	User         *model.User  `json:"user"`
	HasOnboarded bool         `json:"hasOnboarded"`
	Goals        []model.Goal `json:"goals"`
}

func (s *UserService) GetProfile(userID string) (*Profile, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	goals, err := s.Goals.FindByUserID(userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, HasOnboarded: len(goals) > 0, Goals: goals}, nil
}

// SettingsUpdate carries the editable profile and schedule fields. Nil means
// leave the field alone.
type SettingsUpdate struct {
	FullName         *string    `json:"fullName"`
	GoalID           *uint      `json:"goalId"`
	DailyTimeMinutes *int       `json:"dailyTimeMinutes"`
	TargetDate       *time.Time `json:"targetDate"`
	TargetGoal       *string    `json:"targetGoal"`
	LearningStyle    *string    `json:"learningStyle"`
}

func (s *UserService) UpdateSettings(userID string, update SettingsUpdate) (*Profile, error) {
	user, err := s.Users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	if update.FullName != nil {
		user.FullName = *update.FullName
		if err := s.Users.Update(user); err != nil {
			return nil, err
		}
	}

	goalEdited := update.DailyTimeMinutes != nil || update.TargetDate != nil ||
		update.TargetGoal != nil || update.LearningStyle != nil
	if update.GoalID != nil && goalEdited {
		goal, err := s.Goals.FindByIDAndUserID(*update.GoalID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrGoalNotFound
			}
			return nil, err
		}
		if update.DailyTimeMinutes != nil {
			goal.DailyTimeMinutes = *update.DailyTimeMinutes
		}
		if update.TargetDate != nil {
			goal.TargetDate = *update.TargetDate
		}
		if update.TargetGoal != nil {
			goal.TargetGoal = *update.TargetGoal
		}
		if update.LearningStyle != nil {
			goal.LearningStyle = *update.LearningStyle
		}
		if err := s.Goals.Update(goal); err != nil {
			return nil, err
		}
	}

	return s.GetProfile(userID)
}

package repository

import (
	"study_mentor_backend/internal/model"

	"gorm.io/gorm"
)

type GoalRepository struct {
	DB *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{DB: db}
}

func (r *GoalRepository) Create(goal *model.Goal) error {
	return r.DB.Create(goal).Error
}

func (r *GoalRepository) Update(goal *model.Goal) error {
	return r.DB.Save(goal).Error
}

func (r *GoalRepository) FindByID(id uint) (*model.Goal, error) {
	var goal model.Goal
	err := r.DB.First(&goal, id).Error
	return &goal, err
}

func (r *GoalRepository) FindByIDAndUserID(id uint, userID string) (*model.Goal, error) {
	var goal model.Goal
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&goal).Error
	return &goal, err
}

func (r *GoalRepository) FindByUserID(userID string) ([]model.Goal, error) {
	var goals []model.Goal
	err := r.DB.Where("user_id = ?", userID).Order("created_at").Find(&goals).Error
	return goals, err
}

func (r *GoalRepository) FindByUserAndSubject(userID, subject string) (*model.Goal, error) {
	var goal model.Goal
	err := r.DB.Where("user_id = ? AND subject = ?", userID, subject).First(&goal).Error
	return &goal, err
}

// FirstByUserID returns the learner's primary (oldest) goal, used where a
// single set of preferences is needed.
func (r *GoalRepository) FirstByUserID(userID string) (*model.Goal, error) {
	var goal model.Goal
	err := r.DB.Where("user_id = ?", userID).Order("created_at").First(&goal).Error
	return &goal, err
}

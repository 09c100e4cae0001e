package repository

import (
	"study_mentor_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(submission *model.Submission) error {
	return r.DB.Create(submission).Error
}

func (r *SubmissionRepository) FindByTaskID(taskID uint) (*model.Submission, error) {
	var submission model.Submission
	err := r.DB.Where("task_id = ?", taskID).First(&submission).Error
	return &submission, err
}

// FindAllByUserID joins through daily_tasks since submissions carry no user
// column of their own.
func (r *SubmissionRepository) FindAllByUserID(userID string) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.DB.
		Joins("JOIN daily_tasks ON daily_tasks.id = submissions.task_id").
		Where("daily_tasks.user_id = ?", userID).
		Find(&submissions).Error
	return submissions, err
}

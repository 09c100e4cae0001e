package repository

import (
	"time"

	"study_mentor_backend/internal/model"

	"gorm.io/gorm"
)

type DailyTaskRepository struct {
	DB *gorm.DB
}

func NewDailyTaskRepository(db *gorm.DB) *DailyTaskRepository {
	return &DailyTaskRepository{DB: db}
}

// CreateWithResources writes the task and its resource set in one transaction
// so readers never observe a materialized task with a half-written resource
// list.
func (r *DailyTaskRepository) CreateWithResources(task *model.DailyTask, resources []model.TaskResource) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}
		for i := range resources {
			resources[i].DailyTaskID = &task.ID
			if err := tx.Create(&resources[i]).Error; err != nil {
				return err
			}
		}
		task.Resources = resources
		return nil
	})
}

func (r *DailyTaskRepository) FindByIDAndUserID(id uint, userID string) (*model.DailyTask, error) {
	var task model.DailyTask
	err := r.DB.Preload("Resources").
		Where("id = ? AND user_id = ?", id, userID).
		First(&task).Error
	return &task, err
}

func (r *DailyTaskRepository) FindByRoadmapTaskAndDate(userID string, roadmapTaskID uint, date time.Time) (*model.DailyTask, error) {
	var task model.DailyTask
	err := r.DB.Preload("Resources").
		Where("user_id = ? AND roadmap_task_id = ? AND date = ?",
			userID, roadmapTaskID, model.DateOnly(date)).
		First(&task).Error
	return &task, err
}

func (r *DailyTaskRepository) FindAllByUserID(userID string) ([]model.DailyTask, error) {
	var tasks []model.DailyTask
	err := r.DB.Where("user_id = ?", userID).Order("date DESC").Find(&tasks).Error
	return tasks, err
}

func (r *DailyTaskRepository) FindRecentByUserID(userID string, limit int) ([]model.DailyTask, error) {
	var tasks []model.DailyTask
	err := r.DB.Where("user_id = ?", userID).Order("date DESC").Limit(limit).Find(&tasks).Error
	return tasks, err
}

func (r *DailyTaskRepository) CountCompletedByUserID(userID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.DailyTask{}).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (r *DailyTaskRepository) MarkCompleted(id uint) error {
	return r.DB.Model(&model.DailyTask{}).
		Where("id = ?", id).
		Update("is_completed", true).
		Error
}

func (r *DailyTaskRepository) UpdateResourceLink(id uint, link string) error {
	return r.DB.Model(&model.DailyTask{}).
		Where("id = ?", id).
		Update("resource_link", link).
		Error
}

// ReplaceResources swaps a task's resource set atomically; readers see either
// the old set or the complete new one.
func (r *DailyTaskRepository) ReplaceResources(taskID uint, resources []model.TaskResource) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("daily_task_id = ?", taskID).
			Delete(&model.TaskResource{}).Error; err != nil {
			return err
		}
		for i := range resources {
			resources[i].DailyTaskID = &taskID
			if err := tx.Create(&resources[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *DailyTaskRepository) FindResources(taskID uint) ([]model.TaskResource, error) {
	var resources []model.TaskResource
	err := r.DB.Where("daily_task_id = ?", taskID).Order("id").Find(&resources).Error
	return resources, err
}

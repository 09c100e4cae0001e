package repository

import (
	"time"

	"study_mentor_backend/internal/model"

	"gorm.io/gorm"
)

type RoadmapRepository struct {
	DB *gorm.DB
}

func NewRoadmapRepository(db *gorm.DB) *RoadmapRepository {
	return &RoadmapRepository{DB: db}
}

// Create persists the roadmap and its tasks in one transaction so a cancelled
// onboarding never leaves a roadmap without tasks.
func (r *RoadmapRepository) Create(roadmap *model.Roadmap) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		tasks := roadmap.Tasks
		roadmap.Tasks = nil
		if err := tx.Create(roadmap).Error; err != nil {
			return err
		}
		for i := range tasks {
			tasks[i].RoadmapID = roadmap.ID
			if err := tx.Create(&tasks[i]).Error; err != nil {
				return err
			}
		}
		roadmap.Tasks = tasks
		return nil
	})
}

func (r *RoadmapRepository) FindByID(id uint) (*model.Roadmap, error) {
	var roadmap model.Roadmap
	err := r.DB.First(&roadmap, id).Error
	return &roadmap, err
}

func (r *RoadmapRepository) FindActiveByUserID(userID string) (*model.Roadmap, error) {
	var roadmap model.Roadmap
	err := r.DB.Where("user_id = ? AND is_active = ?", userID, true).First(&roadmap).Error
	return &roadmap, err
}

func (r *RoadmapRepository) FindActiveByGoalID(goalID uint) (*model.Roadmap, error) {
	var roadmap model.Roadmap
	err := r.DB.Where("goal_id = ? AND is_active = ?", goalID, true).First(&roadmap).Error
	return &roadmap, err
}

func (r *RoadmapRepository) FindTasks(roadmapID uint) ([]model.RoadmapTask, error) {
	var tasks []model.RoadmapTask
	err := r.DB.Where("roadmap_id = ?", roadmapID).Order("order_index").Find(&tasks).Error
	return tasks, err
}

func (r *RoadmapRepository) FindTaskByID(id uint) (*model.RoadmapTask, error) {
	var task model.RoadmapTask
	err := r.DB.First(&task, id).Error
	return &task, err
}

// FindTaskByIDAndUserID resolves a roadmap task while checking ownership
// through its roadmap.
func (r *RoadmapRepository) FindTaskByIDAndUserID(id uint, userID string) (*model.RoadmapTask, error) {
	var task model.RoadmapTask
	err := r.DB.
		Joins("JOIN roadmaps ON roadmaps.id = roadmap_tasks.roadmap_id").
		Where("roadmap_tasks.id = ? AND roadmaps.user_id = ?", id, userID).
		First(&task).Error
	return &task, err
}

func (r *RoadmapRepository) FindTaskByOrderIndex(roadmapID uint, orderIndex int) (*model.RoadmapTask, error) {
	var task model.RoadmapTask
	err := r.DB.Where("roadmap_id = ? AND order_index = ?", roadmapID, orderIndex).First(&task).Error
	return &task, err
}

// FindActiveTaskByUserID returns the single task in status=active across the
// user's active roadmaps.
func (r *RoadmapRepository) FindActiveTaskByUserID(userID string) (*model.RoadmapTask, error) {
	var task model.RoadmapTask
	err := r.DB.
		Joins("JOIN roadmaps ON roadmaps.id = roadmap_tasks.roadmap_id").
		Where("roadmaps.user_id = ? AND roadmaps.is_active = ? AND roadmap_tasks.status = ?",
			userID, true, model.RoadmapTaskActive).
		First(&task).Error
	return &task, err
}

// MarkTaskCompleted flips a task to completed only if it is not already
// there. The returned count is 0 when another caller completed it first,
// which is how CompleteTask stays idempotent under concurrency.
func (r *RoadmapRepository) MarkTaskCompleted(id uint, completedAt time.Time) (int64, error) {
	res := r.DB.Model(&model.RoadmapTask{}).
		Where("id = ? AND status <> ?", id, model.RoadmapTaskCompleted).
		Updates(map[string]interface{}{
			"status":       model.RoadmapTaskCompleted,
			"completed_at": completedAt,
		})
	return res.RowsAffected, res.Error
}

// ActivateTask promotes a pending task to active and pulls its schedule to the
// given date. The status guard means a successor is activated exactly once no
// matter how many completions race.
func (r *RoadmapRepository) ActivateTask(id uint, scheduledDate time.Time) (int64, error) {
	res := r.DB.Model(&model.RoadmapTask{}).
		Where("id = ? AND status = ?", id, model.RoadmapTaskPending).
		Updates(map[string]interface{}{
			"status":         model.RoadmapTaskActive,
			"scheduled_date": scheduledDate,
		})
	return res.RowsAffected, res.Error
}

// CountActiveTasks reports how many tasks in a roadmap are active; anything
// above one is an invariant violation.
func (r *RoadmapRepository) CountActiveTasks(roadmapID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.RoadmapTask{}).
		Where("roadmap_id = ? AND status = ?", roadmapID, model.RoadmapTaskActive).
		Count(&count).Error
	return count, err
}

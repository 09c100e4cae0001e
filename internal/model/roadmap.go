package model

import "time"

type RoadmapTaskStatus string

const (
	RoadmapTaskPending   RoadmapTaskStatus = "pending"
	RoadmapTaskActive    RoadmapTaskStatus = "active"
	RoadmapTaskCompleted RoadmapTaskStatus = "completed"
	RoadmapTaskSkipped   RoadmapTaskStatus = "skipped"
)

// Roadmap is the persisted curriculum tree for one goal. Exactly one roadmap
// per goal is active; old ones are kept with IsActive=false.
type Roadmap struct {
	BaseModel
	UserID   string        `gorm:"size:36;index;not null" json:"userId"`
	GoalID   uint          `gorm:"index;not null" json:"goalId"`
	Title    string        `gorm:"size:255;not null" json:"title"`
	IsActive bool          `gorm:"default:true;index" json:"isActive"`
	Tasks    []RoadmapTask `gorm:"foreignKey:RoadmapID" json:"tasks,omitempty"`
}

func (Roadmap) TableName() string {
	return "roadmaps"
}

// RoadmapTask is one curriculum leaf. OrderIndex runs 0..n-1 across the whole
// flattened tree and is unique within its roadmap. At most one task per
// roadmap is active at any time; the transitions are pending, active,
// completed, with skipped as an escape hatch, and never go backward.
type RoadmapTask struct {
	BaseModel
	RoadmapID            uint              `gorm:"index;uniqueIndex:idx_roadmap_order,priority:1;not null" json:"roadmapId"`
	Phase                string            `gorm:"size:255;not null" json:"phase"`
	Module               string            `gorm:"size:255;not null" json:"module"`
	Title                string            `gorm:"size:255;not null" json:"title"`
	Description          string            `gorm:"type:text" json:"description"`
	EstimatedTimeMinutes int               `gorm:"not null" json:"estimatedTimeMinutes"`
	OutputDeliverable    string            `gorm:"type:text" json:"outputDeliverable"`
	OrderIndex           int               `gorm:"uniqueIndex:idx_roadmap_order,priority:2;not null" json:"orderIndex"`
	Status               RoadmapTaskStatus `gorm:"size:20;default:'pending';index" json:"status"`
	CompletedAt          *time.Time        `json:"completedAt,omitempty"`
	ScheduledDate        *time.Time        `gorm:"type:date" json:"scheduledDate,omitempty"`
}

func (RoadmapTask) TableName() string {
	return "roadmap_tasks"
}

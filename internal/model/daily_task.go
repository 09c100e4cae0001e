package model

import "time"

// DailyTask is the materialized unit of work for one calendar day, derived
// from at most one roadmap task. The unique index enforces the
// one-per-(user, roadmap task, day) invariant; concurrent materializers race
// on the insert and the loser re-reads the winner's row.
type DailyTask struct {
	BaseModel
	UserID        string         `gorm:"size:36;index;uniqueIndex:idx_user_rt_date,priority:1;not null" json:"userId"`
	GoalID        *uint          `gorm:"index" json:"goalId,omitempty"`
	RoadmapTaskID *uint          `gorm:"uniqueIndex:idx_user_rt_date,priority:2" json:"roadmapTaskId,omitempty"`
	Topic         string         `gorm:"size:255;not null" json:"topic"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	ResourceLink  string         `gorm:"size:512" json:"resourceLink,omitempty"`
	Date          time.Time      `gorm:"type:date;uniqueIndex:idx_user_rt_date,priority:3;not null" json:"date"`
	IsCompleted   bool           `gorm:"default:false" json:"isCompleted"`
	Resources     []TaskResource `gorm:"foreignKey:DailyTaskID" json:"resources,omitempty"`
}

func (DailyTask) TableName() string {
	return "daily_tasks"
}

// Submission holds the one evaluated piece of work for a daily task. The
// unique index on TaskID makes submission a write-once operation.
type Submission struct {
	BaseModel
	TaskID      uint      `gorm:"uniqueIndex;not null" json:"taskId"`
	Text        string    `gorm:"type:text" json:"text,omitempty"`
	ImageURL    string    `gorm:"size:512" json:"imageUrl,omitempty"`
	Feedback    string    `gorm:"type:text" json:"feedback"`
	Score       int       `gorm:"not null;default:0" json:"score"`
	SubmittedAt time.Time `gorm:"not null" json:"submittedAt"`
}

func (Submission) TableName() string {
	return "submissions"
}

package model

import "time"

type ProficiencyLevel string

const (
	LevelBeginner     ProficiencyLevel = "Beginner"
	LevelIntermediate ProficiencyLevel = "Intermediate"
	LevelAdvanced     ProficiencyLevel = "Advanced"
)

// Goal is one subject a learner committed to. A user holds at most one goal
// per subject; DetectedLevel is written once at onboarding and only touched
// again through the explicit settings path.
type Goal struct {
	BaseModel
	UserID           string           `gorm:"size:36;index;not null" json:"userId"`
	Subject          string           `gorm:"size:255;not null" json:"subject"`
	ExamOrSkill      string           `gorm:"size:255;not null" json:"examOrSkill"`
	DailyTimeMinutes int              `gorm:"not null" json:"dailyTimeMinutes"`
	TargetDate       time.Time        `gorm:"type:date;not null" json:"targetDate"`
	DetectedLevel    ProficiencyLevel `gorm:"size:20" json:"detectedLevel"`
	TargetGoal       string           `gorm:"size:255" json:"targetGoal"`
	LearningStyle    string           `gorm:"size:50" json:"learningStyle"`
}

func (Goal) TableName() string {
	return "goals"
}

package model

import "time"

type ResourceConfidence string

const (
	// ConfidenceHigh marks a provider-validated item (embeddable video).
	ConfidenceHigh ResourceConfidence = "high"
	// ConfidenceMedium marks an AI-curated item that was not validated.
	ConfidenceMedium ResourceConfidence = "medium"
	// ConfidenceFallback marks the synthesized search-listing link. A resource
	// with FallbackUsed=true must carry a generic search URL, never a
	// specific-item URL.
	ConfidenceFallback ResourceConfidence = "fallback"
)

// TaskResource is one learning artifact attached to a daily or roadmap task.
type TaskResource struct {
	BaseModel
	DailyTaskID   *uint              `gorm:"index" json:"dailyTaskId,omitempty"`
	RoadmapTaskID *uint              `gorm:"index" json:"roadmapTaskId,omitempty"`
	Title         string             `gorm:"size:255;not null" json:"title"`
	URL           string             `gorm:"size:512;not null" json:"url"`
	Platform      string             `gorm:"size:100" json:"platform"`
	ResourceType  string             `gorm:"size:50" json:"type"`
	Rationale     string             `gorm:"type:text" json:"rationale"`
	Confidence    ResourceConfidence `gorm:"size:20" json:"confidence"`
	Validated     bool               `gorm:"default:false" json:"validated"`
	FallbackUsed  bool               `gorm:"default:false" json:"fallbackUsed"`
	VideoID       string             `gorm:"size:20" json:"videoId,omitempty"`
	IsEmbeddable  bool               `gorm:"default:false" json:"isEmbeddable"`
	ValidatedAt   *time.Time         `json:"validatedAt,omitempty"`
}

func (TaskResource) TableName() string {
	return "task_resources"
}

package domain

import "time"

// RecommendationStatus is the lifecycle state of a recommendation
type RecommendationStatus string

const (
	RecommendationDraft     RecommendationStatus = "DRAFT"
	RecommendationPublished RecommendationStatus = "PUBLISHED"
	RecommendationArchived  RecommendationStatus = "ARCHIVED"
)

// Recommendation is a resident-submitted proposal in the ideas forum.
// Upvotes/Downvotes are denormalized counters refreshed on every vote.
type Recommendation struct {
	ID          string               `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	UserID      string               `gorm:"column:user_id;type:varchar(36);index" json:"user_id"`
	Title       string               `gorm:"column:title;type:varchar(255)" json:"title"`
	Body        string               `gorm:"column:body;type:text" json:"body"`
	Tags        string               `gorm:"column:tags;type:varchar(255)" json:"tags,omitempty"` // comma-separated
	Status      RecommendationStatus `gorm:"column:status;type:varchar(20);index" json:"status"`
	Upvotes     int                  `gorm:"column:upvotes" json:"upvotes"`
	Downvotes   int                  `gorm:"column:downvotes" json:"downvotes"`
	HotScore    float64              `gorm:"column:hot_score;index" json:"hot_score"`
	PublishedAt *time.Time           `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name
func (Recommendation) TableName() string {
	return "recommendations"
}

// Vote is a single ±1 vote on a recommendation; one row per (rec, user)
type Vote struct {
	ID               uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RecommendationID string    `gorm:"column:recommendation_id;type:varchar(36);uniqueIndex:idx_rec_user" json:"recommendation_id"`
	UserID           string    `gorm:"column:user_id;type:varchar(36);uniqueIndex:idx_rec_user" json:"user_id"`
	Value            int       `gorm:"column:value" json:"value"` // 1 or -1
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name
func (Vote) TableName() string {
	return "votes"
}

// CreateRecommendationRequest is the submission payload
type CreateRecommendationRequest struct {
	Title string   `json:"title" binding:"required,min=5,max=255"`
	Body  string   `json:"body" binding:"required,min=10,max=5000"`
	Tags  []string `json:"tags,omitempty" binding:"max=5"`
}

// VoteRequest casts, changes, or removes a vote.
// Value: 1 upvote, -1 downvote, 0 remove.
type VoteRequest struct {
	RecommendationID string `json:"recommendation_id" binding:"required"`
	Value            int    `json:"value" binding:"min=-1,max=1"`
}

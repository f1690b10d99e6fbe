package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CommentStance is the submitter-declared position on an agenda item
type CommentStance string

const (
	StanceFor       CommentStance = "FOR"
	StanceAgainst   CommentStance = "AGAINST"
	StanceConcerned CommentStance = "CONCERNED"
	StanceNeutral   CommentStance = "NEUTRAL"
)

// Valid reports whether the stance is one of the known values
func (s CommentStance) Valid() bool {
	switch s {
	case StanceFor, StanceAgainst, StanceConcerned, StanceNeutral:
		return true
	}
	return false
}

// CommentVisibility is the publication state of a comment
type CommentVisibility string

const (
	// VisibilityPendingVisible awaits meeting start or manual review
	VisibilityPendingVisible CommentVisibility = "PENDING_VISIBLE"
	// VisibilityVisible is shown publicly
	VisibilityVisible CommentVisibility = "VISIBLE"
	// VisibilityHidden is suppressed by auto- or human-moderation
	VisibilityHidden CommentVisibility = "HIDDEN"
	// VisibilityWithdrawn is owner-initiated and terminal
	VisibilityWithdrawn CommentVisibility = "WITHDRAWN"
)

// RiskFlags is the per-category classification result stored on a comment.
// Score is the worst single category score (0.0-1.0), not an average.
type RiskFlags struct {
	Harassment bool    `json:"harassment"`
	Threat     bool    `json:"threat"`
	Hate       bool    `json:"hate"`
	SelfHarm   bool    `json:"selfHarm"`
	Sexual     bool    `json:"sexual"`
	Violence   bool    `json:"violence"`
	Score      float64 `json:"score"`
}

// Value implements driver.Valuer so RiskFlags persists as a JSON column
func (f RiskFlags) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements sql.Scanner for the JSON column
func (f *RiskFlags) Scan(value interface{}) error {
	if value == nil {
		*f = RiskFlags{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("unsupported type for RiskFlags: %T", value)
	}
}

// Comment is a resident comment on meeting agenda items.
// RawBody is the text as submitted and is never shown publicly;
// PublicBody is the post-redaction text displayed to everyone.
type Comment struct {
	ID                string            `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	UserID            string            `gorm:"column:user_id;type:varchar(36);index" json:"user_id"`
	MeetingID         string            `gorm:"column:meeting_id;type:varchar(36);index" json:"meeting_id"`
	RawBody           string            `gorm:"column:raw_body;type:text" json:"raw_body,omitempty"`
	PublicBody        string            `gorm:"column:public_body;type:text" json:"public_body"`
	Stance            CommentStance     `gorm:"column:stance;type:varchar(20)" json:"stance"`
	Visibility        CommentVisibility `gorm:"column:visibility;type:varchar(20);index" json:"visibility"`
	PIIDetected       bool              `gorm:"column:pii_detected" json:"pii_detected"`
	ProfanityDetected bool              `gorm:"column:profanity_detected" json:"profanity_detected"`
	RiskFlags         RiskFlags         `gorm:"column:risk_flags;type:json" json:"risk_flags"`
	ModerationNotes   string            `gorm:"column:moderation_notes;type:text" json:"moderation_notes,omitempty"`
	Latitude          *float64          `gorm:"column:latitude" json:"-"`
	Longitude         *float64          `gorm:"column:longitude" json:"-"`
	RoundedLatitude   *float64          `gorm:"column:rounded_latitude" json:"rounded_latitude,omitempty"`
	RoundedLongitude  *float64          `gorm:"column:rounded_longitude" json:"rounded_longitude,omitempty"`
	SubmittedAt       time.Time         `gorm:"column:submitted_at;autoCreateTime;index" json:"submitted_at"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	VisibleAt         *time.Time        `gorm:"column:visible_at" json:"visible_at,omitempty"`
	WithdrawnAt       *time.Time        `gorm:"column:withdrawn_at;index" json:"withdrawn_at,omitempty"`

	AgendaItems []AgendaItem `gorm:"many2many:comment_agenda_items;joinForeignKey:CommentID;joinReferences:AgendaItemID" json:"agenda_items,omitempty"`
}

// TableName returns the table name
func (Comment) TableName() string {
	return "comments"
}

// Withdrawn reports whether the comment has been withdrawn by its owner.
// Withdrawal is terminal: no moderation action may apply afterwards.
func (c *Comment) Withdrawn() bool {
	return c.WithdrawnAt != nil || c.Visibility == VisibilityWithdrawn
}

// CommentResponse is the API shape of a comment. RawBody is populated
// only for staff/moderator callers.
type CommentResponse struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	UserName          string            `json:"user_name,omitempty"`
	District          string            `json:"district,omitempty"`
	MeetingID         string            `json:"meeting_id"`
	MeetingTitle      string            `json:"meeting_title,omitempty"`
	RawBody           string            `json:"raw_body,omitempty"`
	PublicBody        string            `json:"public_body"`
	Stance            CommentStance     `json:"stance"`
	Visibility        CommentVisibility `json:"visibility"`
	PIIDetected       bool              `json:"pii_detected"`
	ProfanityDetected bool              `json:"profanity_detected"`
	RiskFlags         *RiskFlags        `json:"risk_flags,omitempty"`
	ModerationNotes   string            `json:"moderation_notes,omitempty"`
	AgendaItemCodes   []string          `json:"agenda_item_codes,omitempty"`
	SubmittedAt       string            `json:"submitted_at"`
	VisibleAt         string            `json:"visible_at,omitempty"`
}

// CreateCommentRequest is the comment submission payload
type CreateCommentRequest struct {
	MeetingID     string        `json:"meeting_id" binding:"required"`
	AgendaItemIDs []string      `json:"agenda_item_ids" binding:"required,min=1,max=10"`
	Body          string        `json:"body" binding:"required,min=10,max=2000"`
	Stance        CommentStance `json:"stance" binding:"required"`
	Latitude      *float64      `json:"latitude,omitempty"`
	Longitude     *float64      `json:"longitude,omitempty"`
}

// WithdrawCommentRequest is the owner-initiated withdrawal payload
type WithdrawCommentRequest struct {
	Reason string `json:"reason,omitempty" binding:"max=500"`
}

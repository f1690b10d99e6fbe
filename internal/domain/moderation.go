package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// SystemModeratorID is the reserved identity recorded on automated
// moderation log entries. It is not a valid user id, so it can never
// collide with a real moderator.
const SystemModeratorID = "__system__"

// ModerationAction is the audited visibility-changing action
type ModerationAction string

const (
	// ActionFlag is recorded when automated moderation flags a comment
	ActionFlag ModerationAction = "FLAG"
	// ActionHide is recorded when a moderator rejects a comment
	ActionHide ModerationAction = "HIDE"
	// ActionRestore is recorded when a moderator approves a comment
	ActionRestore ModerationAction = "RESTORE"
)

// ModerationResult is the outcome of running a comment through the
// moderation pipeline. It is not persisted as such: the caller applies
// it to the comment row and optionally snapshots it into a log entry.
type ModerationResult struct {
	Processed           bool              `json:"processed"`
	PublicBody          string            `json:"public_body"`
	PIIDetected         bool              `json:"pii_detected"`
	ProfanityDetected   bool              `json:"profanity_detected"`
	RiskFlags           RiskFlags         `json:"risk_flags"`
	SuggestedVisibility CommentVisibility `json:"suggested_visibility"`
	Notes               []string          `json:"notes"`
}

// Value implements driver.Valuer so a result snapshot persists as JSON metadata
func (r ModerationResult) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for the JSON metadata column
func (r *ModerationResult) Scan(value interface{}) error {
	if value == nil {
		*r = ModerationResult{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return fmt.Errorf("unsupported type for ModerationResult: %T", value)
	}
}

// ModerationLog is the immutable audit record of a moderation decision.
// Rows are append-only: never updated, never deleted.
type ModerationLog struct {
	ID          uint64            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CommentID   string            `gorm:"column:comment_id;type:varchar(36);index" json:"comment_id"`
	ModeratorID string            `gorm:"column:moderator_id;type:varchar(36);index" json:"moderator_id"`
	Action      ModerationAction  `gorm:"column:action;type:varchar(10)" json:"action"`
	Reason      string            `gorm:"column:reason;type:text" json:"reason"`
	Metadata    *ModerationResult `gorm:"column:metadata;type:json" json:"metadata,omitempty"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
}

// TableName returns the table name
func (ModerationLog) TableName() string {
	return "moderation_logs"
}

// QueuePriority is the derived triage classification of a queued comment
type QueuePriority string

const (
	PriorityHigh   QueuePriority = "high"
	PriorityMedium QueuePriority = "medium"
	PriorityLow    QueuePriority = "low"
)

// QueueItem is a comment enriched with triage ordering data.
// Priority and RiskScore are recomputed on every fetch, never stored.
type QueueItem struct {
	Comment   CommentResponse `json:"comment"`
	Priority  QueuePriority   `json:"priority"`
	RiskScore float64         `json:"risk_score"`
}

// ModerationStats summarizes the state of the moderation queue
type ModerationStats struct {
	Total            int64  `json:"total"`
	Pending          int64  `json:"pending"`
	Hidden           int64  `json:"hidden"`
	Visible          int64  `json:"visible"`
	RecentActions    int64  `json:"recent_actions"`
	PercentModerated string `json:"percent_moderated"`
}

// BulkModerationResult reports per-item outcomes of a bulk action.
// Bulk moderation is at-least-effort: one failure never aborts the batch.
type BulkModerationResult struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

// ModerationActionRequest is the moderator action payload (single or bulk)
type ModerationActionRequest struct {
	CommentID  string   `json:"comment_id,omitempty"`
	CommentIDs []string `json:"comment_ids,omitempty"`
	Action     string   `json:"action" binding:"required,oneof=approve reject"`
	Reason     string   `json:"reason,omitempty" binding:"max=500"`
	Notes      string   `json:"notes,omitempty" binding:"max=500"`
}

// ModerationSettings are the runtime toggles for the moderation pipeline
type ModerationSettings struct {
	AutoModerate    bool    `json:"autoModerate"`
	ProfanityFilter bool    `json:"profanityFilter"`
	PIIRedaction    bool    `json:"piiRedaction"`
	RiskThreshold   float64 `json:"riskThreshold"`
}

// DefaultModerationSettings returns the settings used when none are stored
func DefaultModerationSettings() ModerationSettings {
	return ModerationSettings{
		AutoModerate:    true,
		ProfanityFilter: true,
		PIIRedaction:    true,
		RiskThreshold:   0.7,
	}
}

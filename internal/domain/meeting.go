package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MeetingStatus is the lifecycle state of a meeting
type MeetingStatus string

const (
	MeetingUpcoming  MeetingStatus = "UPCOMING"
	MeetingActive    MeetingStatus = "ACTIVE"
	MeetingEnded     MeetingStatus = "ENDED"
	MeetingCancelled MeetingStatus = "CANCELLED"
)

// Valid reports whether the status is one of the known values
func (s MeetingStatus) Valid() bool {
	switch s {
	case MeetingUpcoming, MeetingActive, MeetingEnded, MeetingCancelled:
		return true
	}
	return false
}

// Meeting is a public meeting that residents comment on
type Meeting struct {
	ID          string        `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Title       string        `gorm:"column:title;type:varchar(255)" json:"title"`
	Description string        `gorm:"column:description;type:text" json:"description,omitempty"`
	Body        string        `gorm:"column:body;type:varchar(50)" json:"body"` // convening body, e.g. COUNCIL
	Status      MeetingStatus `gorm:"column:status;type:varchar(20);index" json:"status"`
	StartTime   time.Time     `gorm:"column:start_time;index" json:"start_time"`
	EndTime     *time.Time    `gorm:"column:end_time" json:"end_time,omitempty"`
	Location    string        `gorm:"column:location;type:varchar(255)" json:"location,omitempty"`
	VideoURL    string        `gorm:"column:video_url;type:varchar(500)" json:"video_url,omitempty"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	AgendaItems []AgendaItem `gorm:"foreignKey:MeetingID" json:"agenda_items,omitempty"`
}

// TableName returns the table name
func (Meeting) TableName() string {
	return "meetings"
}

// SupportingDocs is a JSON list of reference documents on an agenda item
type SupportingDocs struct {
	Files []SupportingDoc `json:"files"`
}

// SupportingDoc is one reference document
type SupportingDoc struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Value implements driver.Valuer for the JSON column
func (d SupportingDocs) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for the JSON column
func (d *SupportingDocs) Scan(value interface{}) error {
	if value == nil {
		*d = SupportingDocs{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported type for SupportingDocs: %T", value)
	}
}

// AgendaItem is a discrete topic within a meeting that comments attach to
type AgendaItem struct {
	ID             string          `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	MeetingID      string          `gorm:"column:meeting_id;type:varchar(36);index" json:"meeting_id"`
	Code           string          `gorm:"column:code;type:varchar(20)" json:"code"`
	Title          string          `gorm:"column:title;type:varchar(255)" json:"title"`
	Description    string          `gorm:"column:description;type:text" json:"description,omitempty"`
	OrderIndex     int             `gorm:"column:order_index" json:"order_index"`
	CutoffTime     *time.Time      `gorm:"column:cutoff_time" json:"cutoff_time,omitempty"`
	SupportingDocs *SupportingDocs `gorm:"column:supporting_docs;type:json" json:"supporting_docs,omitempty"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName returns the table name
func (AgendaItem) TableName() string {
	return "agenda_items"
}

// CommentClosed reports whether the item's comment cutoff has passed
func (a *AgendaItem) CommentClosed(now time.Time) bool {
	return a.CutoffTime != nil && now.After(*a.CutoffTime)
}

// CreateMeetingRequest is the staff payload for creating a meeting
type CreateMeetingRequest struct {
	Title       string                   `json:"title" binding:"required,max=255"`
	Description string                   `json:"description,omitempty"`
	Body        string                   `json:"body,omitempty"`
	StartTime   time.Time                `json:"start_time" binding:"required"`
	EndTime     *time.Time               `json:"end_time,omitempty"`
	Location    string                   `json:"location,omitempty"`
	VideoURL    string                   `json:"video_url,omitempty"`
	AgendaItems []CreateAgendaItemInput  `json:"agenda_items,omitempty"`
}

// CreateAgendaItemInput is one agenda item in a meeting creation payload
type CreateAgendaItemInput struct {
	Code           string          `json:"code" binding:"required,max=20"`
	Title          string          `json:"title" binding:"required,max=255"`
	Description    string          `json:"description,omitempty"`
	OrderIndex     int             `json:"order_index"`
	CutoffTime     *time.Time      `json:"cutoff_time,omitempty"`
	SupportingDocs *SupportingDocs `json:"supporting_docs,omitempty"`
}

// UpdateMeetingRequest is the staff payload for updating a meeting
type UpdateMeetingRequest struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *MeetingStatus `json:"status,omitempty"`
	StartTime   *time.Time     `json:"start_time,omitempty"`
	EndTime     *time.Time     `json:"end_time,omitempty"`
	Location    *string        `json:"location,omitempty"`
	VideoURL    *string        `json:"video_url,omitempty"`
}

package repository

import (
	"errors"

	"github.com/civicvoice/civicvoice-backend/internal/common"
	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"gorm.io/gorm"
)

// MeetingRepository is the meeting/agenda data access layer
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new MeetingRepository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// Create inserts a meeting together with its agenda items
func (r *MeetingRepository) Create(meeting *domain.Meeting) error {
	return r.db.Create(meeting).Error
}

// FindByID loads a meeting with agenda items ordered by their index
func (r *MeetingRepository) FindByID(id string) (*domain.Meeting, error) {
	var meeting domain.Meeting
	err := r.db.Preload("AgendaItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index ASC")
	}).Where("id = ?", id).First(&meeting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMeetingNotFound
		}
		return nil, err
	}
	return &meeting, nil
}

// List returns meetings, optionally filtered by status, soonest first
func (r *MeetingRepository) List(status domain.MeetingStatus, page, limit int) ([]domain.Meeting, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := r.db.Model(&domain.Meeting{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var meetings []domain.Meeting
	err := query.Preload("AgendaItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index ASC")
	}).Order("start_time DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&meetings).Error
	return meetings, total, err
}

// Update applies field updates to a meeting
func (r *MeetingRepository) Update(id string, updates map[string]interface{}) error {
	res := r.db.Model(&domain.Meeting{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrMeetingNotFound
	}
	return nil
}

// FindAgendaItems loads the given agenda items of one meeting
func (r *MeetingRepository) FindAgendaItems(meetingID string, itemIDs []string) ([]domain.AgendaItem, error) {
	var items []domain.AgendaItem
	err := r.db.Where("meeting_id = ? AND id IN ?", meetingID, itemIDs).Find(&items).Error
	return items, err
}

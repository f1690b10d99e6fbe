package repository

import (
	"time"

	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"gorm.io/gorm"
)

// ModerationLogRepository append-only audit trail access interface.
// There are deliberately no update or delete methods.
type ModerationLogRepository interface {
	WithTx(tx *gorm.DB) ModerationLogRepository
	Create(entry *domain.ModerationLog) error
	ListByComment(commentID string, limit int) ([]domain.ModerationLog, error)
	CountSince(since time.Time) (int64, error)
}

type moderationLogRepository struct {
	db *gorm.DB
}

// NewModerationLogRepository creates a new ModerationLogRepository
func NewModerationLogRepository(db *gorm.DB) ModerationLogRepository {
	return &moderationLogRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *moderationLogRepository) WithTx(tx *gorm.DB) ModerationLogRepository {
	return &moderationLogRepository{db: tx}
}

// Create appends an audit entry
func (r *moderationLogRepository) Create(entry *domain.ModerationLog) error {
	return r.db.Create(entry).Error
}

// ListByComment returns the most recent entries for a comment
func (r *moderationLogRepository) ListByComment(commentID string, limit int) ([]domain.ModerationLog, error) {
	if limit < 1 || limit > 50 {
		limit = 5
	}
	var logs []domain.ModerationLog
	err := r.db.Where("comment_id = ?", commentID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// CountSince counts entries created at or after the cutoff
func (r *moderationLogRepository) CountSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&domain.ModerationLog{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

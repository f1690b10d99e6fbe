package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/civicvoice/civicvoice-backend/internal/common"
	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"gorm.io/gorm"
)

// CommentFilter narrows comment list queries
type CommentFilter struct {
	MeetingID    string
	AgendaItemID string
	UserID       string
	Stance       domain.CommentStance
	Visibility   domain.CommentVisibility
	Limit        int
	Offset       int
}

// CommentRepository comment data access interface
type CommentRepository interface {
	WithTx(tx *gorm.DB) CommentRepository
	Transaction(fn func(tx *gorm.DB) error) error

	// Write operations
	Create(comment *domain.Comment, agendaItemIDs []string) error
	ApplyModeration(id string, result *domain.ModerationResult, visibility domain.CommentVisibility) error
	UpdateVisibility(id string, visibility domain.CommentVisibility, visibleAt *time.Time, notes *string) error
	Withdraw(id string, at time.Time) error

	// Read operations
	FindByID(id string) (*domain.Comment, error)
	List(filter CommentFilter) ([]domain.Comment, int64, error)
	ListPendingReview(limit, offset int) ([]domain.Comment, error)
	ListVisibleForExport(meetingID string) ([]domain.Comment, error)

	// Aggregations
	CountByUserSince(userID string, since time.Time) (int64, error)
	CountByVisibility(visibility domain.CommentVisibility) (int64, error)
	CountAll() (int64, error)
	CountByStance(meetingID string) ([]StanceCount, error)
	CountByDistrict(meetingID string) ([]DistrictCount, error)
	CountByVisibilityForMeeting(meetingID string) ([]VisibilityCount, error)
	CountByAgendaItem(meetingID string, limit int) ([]AgendaItemCount, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepository{db: tx}
}

// Transaction runs fn inside a database transaction
func (r *commentRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create inserts a comment together with its agenda item links
func (r *commentRepository) Create(comment *domain.Comment, agendaItemIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		for _, itemID := range agendaItemIDs {
			link := map[string]interface{}{
				"comment_id":     comment.ID,
				"agenda_item_id": itemID,
			}
			if err := tx.Table("comment_agenda_items").Create(link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID loads a comment by id
func (r *commentRepository) FindByID(id string) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.db.Preload("AgendaItems").Where("id = ?", id).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrCommentNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// List returns comments matching the filter, newest first
func (r *commentRepository) List(filter CommentFilter) ([]domain.Comment, int64, error) {
	query := r.db.Model(&domain.Comment{})

	if filter.MeetingID != "" {
		query = query.Where("meeting_id = ?", filter.MeetingID)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Stance != "" {
		query = query.Where("stance = ?", filter.Stance)
	}
	if filter.Visibility != "" {
		query = query.Where("visibility = ?", filter.Visibility)
	}
	if filter.AgendaItemID != "" {
		query = query.Joins("JOIN comment_agenda_items cai ON cai.comment_id = comments.id").
			Where("cai.agenda_item_id = ?", filter.AgendaItemID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var comments []domain.Comment
	err := query.Preload("AgendaItems").
		Order("submitted_at DESC").
		Limit(limit).Offset(filter.Offset).
		Find(&comments).Error
	return comments, total, err
}

// ListPendingReview returns comments awaiting moderation: visibility
// PENDING_VISIBLE or HIDDEN and not withdrawn, newest first.
func (r *commentRepository) ListPendingReview(limit, offset int) ([]domain.Comment, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var comments []domain.Comment
	err := r.db.Preload("AgendaItems").
		Where("visibility IN ?", []domain.CommentVisibility{domain.VisibilityPendingVisible, domain.VisibilityHidden}).
		Where("withdrawn_at IS NULL").
		Order("submitted_at DESC").
		Limit(limit).Offset(offset).
		Find(&comments).Error
	return comments, err
}

// ApplyModeration writes the moderation pipeline outcome onto the comment row
func (r *commentRepository) ApplyModeration(id string, result *domain.ModerationResult, visibility domain.CommentVisibility) error {
	updates := map[string]interface{}{
		"public_body":        result.PublicBody,
		"pii_detected":       result.PIIDetected,
		"profanity_detected": result.ProfanityDetected,
		"risk_flags":         result.RiskFlags,
		"visibility":         visibility,
		"moderation_notes":   joinNotes(result.Notes),
	}
	return r.db.Model(&domain.Comment{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateVisibility sets visibility and related fields on a comment
func (r *commentRepository) UpdateVisibility(id string, visibility domain.CommentVisibility, visibleAt *time.Time, notes *string) error {
	updates := map[string]interface{}{
		"visibility": visibility,
	}
	if visibleAt != nil {
		updates["visible_at"] = *visibleAt
	}
	if notes != nil {
		updates["moderation_notes"] = *notes
	}
	res := r.db.Model(&domain.Comment{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrCommentNotFound
	}
	return nil
}

// Withdraw marks the comment withdrawn by its owner (terminal)
func (r *commentRepository) Withdraw(id string, at time.Time) error {
	res := r.db.Model(&domain.Comment{}).
		Where("id = ? AND withdrawn_at IS NULL", id).
		Updates(map[string]interface{}{
			"visibility":   domain.VisibilityWithdrawn,
			"withdrawn_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrCommentNotFound
	}
	return nil
}

// CountByUserSince counts comments a user has submitted since the cutoff
func (r *commentRepository) CountByUserSince(userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Comment{}).
		Where("user_id = ? AND submitted_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

// CountByVisibility counts comments in the given visibility state
func (r *commentRepository) CountByVisibility(visibility domain.CommentVisibility) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Comment{}).Where("visibility = ?", visibility).Count(&count).Error
	return count, err
}

// CountAll counts every comment
func (r *commentRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Comment{}).Count(&count).Error
	return count, err
}

// StanceCount is one row of a stance breakdown
type StanceCount struct {
	Stance domain.CommentStance `gorm:"column:stance"`
	Count  int64                `gorm:"column:cnt"`
}

// CountByStance aggregates visible comments per stance for a meeting
func (r *commentRepository) CountByStance(meetingID string) ([]StanceCount, error) {
	var rows []StanceCount
	err := r.db.Model(&domain.Comment{}).
		Select("stance, COUNT(*) AS cnt").
		Where("meeting_id = ? AND visibility = ?", meetingID, domain.VisibilityVisible).
		Group("stance").
		Find(&rows).Error
	return rows, err
}

// DistrictCount is one row of a participation-by-district breakdown
type DistrictCount struct {
	District string `gorm:"column:district"`
	Count    int64  `gorm:"column:cnt"`
}

// CountByDistrict aggregates visible comments per submitter district
func (r *commentRepository) CountByDistrict(meetingID string) ([]DistrictCount, error) {
	var rows []DistrictCount
	err := r.db.Model(&domain.Comment{}).
		Select("users.district AS district, COUNT(*) AS cnt").
		Joins("JOIN users ON users.id = comments.user_id").
		Where("comments.meeting_id = ? AND comments.visibility = ?", meetingID, domain.VisibilityVisible).
		Group("users.district").
		Find(&rows).Error
	return rows, err
}

// VisibilityCount is one row of a visibility breakdown
type VisibilityCount struct {
	Visibility domain.CommentVisibility `gorm:"column:visibility"`
	Count      int64                    `gorm:"column:cnt"`
}

// CountByVisibilityForMeeting aggregates a meeting's comments per visibility state
func (r *commentRepository) CountByVisibilityForMeeting(meetingID string) ([]VisibilityCount, error) {
	var rows []VisibilityCount
	err := r.db.Model(&domain.Comment{}).
		Select("visibility, COUNT(*) AS cnt").
		Where("meeting_id = ?", meetingID).
		Group("visibility").
		Find(&rows).Error
	return rows, err
}

// AgendaItemCount is one row of an agenda-item engagement breakdown
type AgendaItemCount struct {
	AgendaItemID string `gorm:"column:agenda_item_id"`
	Code         string `gorm:"column:code"`
	Title        string `gorm:"column:title"`
	Count        int64  `gorm:"column:cnt"`
}

// CountByAgendaItem ranks a meeting's agenda items by visible comment count
func (r *commentRepository) CountByAgendaItem(meetingID string, limit int) ([]AgendaItemCount, error) {
	if limit < 1 {
		limit = 5
	}
	var rows []AgendaItemCount
	err := r.db.Model(&domain.Comment{}).
		Select("cai.agenda_item_id AS agenda_item_id, ai.code AS code, ai.title AS title, COUNT(*) AS cnt").
		Joins("JOIN comment_agenda_items cai ON cai.comment_id = comments.id").
		Joins("JOIN agenda_items ai ON ai.id = cai.agenda_item_id").
		Where("comments.meeting_id = ? AND comments.visibility = ?", meetingID, domain.VisibilityVisible).
		Group("cai.agenda_item_id, ai.code, ai.title").
		Order("cnt DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ListVisibleForExport loads visible comments (optionally for one meeting)
// with agenda items preloaded, oldest first for stable export ordering.
func (r *commentRepository) ListVisibleForExport(meetingID string) ([]domain.Comment, error) {
	query := r.db.Preload("AgendaItems").
		Where("visibility = ?", domain.VisibilityVisible)
	if meetingID != "" {
		query = query.Where("meeting_id = ?", meetingID)
	}
	var comments []domain.Comment
	err := query.Order("submitted_at ASC").Find(&comments).Error
	return comments, err
}

func joinNotes(notes []string) string {
	return strings.Join(notes, "\n")
}

package repository

import (
	"errors"
	"time"

	"github.com/civicvoice/civicvoice-backend/internal/common"
	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecommendationRepository is the recommendations/votes data access layer
type RecommendationRepository struct {
	db *gorm.DB
}

// NewRecommendationRepository creates a new RecommendationRepository
func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// Create inserts a recommendation
func (r *RecommendationRepository) Create(rec *domain.Recommendation) error {
	return r.db.Create(rec).Error
}

// FindPublishedByID loads a published recommendation
func (r *RecommendationRepository) FindPublishedByID(id string) (*domain.Recommendation, error) {
	var rec domain.Recommendation
	err := r.db.Where("id = ? AND status = ?", id, domain.RecommendationPublished).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrRecommendationNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// List returns published recommendations in the requested order.
// sort: "hot" (default), "new", "top".
func (r *RecommendationRepository) List(sort, tag string, page, limit int) ([]domain.Recommendation, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := r.db.Model(&domain.Recommendation{}).
		Where("status = ?", domain.RecommendationPublished)
	if tag != "" {
		query = query.Where("FIND_IN_SET(?, tags) > 0", tag)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch sort {
	case "new":
		query = query.Order("published_at DESC")
	case "top":
		query = query.Order("(upvotes - downvotes) DESC")
	default:
		query = query.Order("hot_score DESC")
	}

	var recs []domain.Recommendation
	err := query.Offset((page - 1) * limit).Limit(limit).Find(&recs).Error
	return recs, total, err
}

// UpsertVote creates or updates a user's vote on a recommendation
func (r *RecommendationRepository) UpsertVote(vote *domain.Vote) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recommendation_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(vote).Error
}

// DeleteVote removes a user's vote
func (r *RecommendationRepository) DeleteVote(recommendationID, userID string) error {
	return r.db.Where("recommendation_id = ? AND user_id = ?", recommendationID, userID).
		Delete(&domain.Vote{}).Error
}

// CountVotes tallies up- and downvotes for a recommendation
func (r *RecommendationRepository) CountVotes(recommendationID string) (upvotes, downvotes int, err error) {
	type row struct {
		Value int   `gorm:"column:value"`
		Count int64 `gorm:"column:cnt"`
	}
	var rows []row
	err = r.db.Model(&domain.Vote{}).
		Select("value, COUNT(*) AS cnt").
		Where("recommendation_id = ?", recommendationID).
		Group("value").
		Find(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	for _, rw := range rows {
		switch rw.Value {
		case 1:
			upvotes = int(rw.Count)
		case -1:
			downvotes = int(rw.Count)
		}
	}
	return upvotes, downvotes, nil
}

// UpdateScores writes the denormalized vote counters and hot score
func (r *RecommendationRepository) UpdateScores(id string, upvotes, downvotes int, hotScore float64) error {
	return r.db.Model(&domain.Recommendation{}).Where("id = ?", id).Updates(map[string]interface{}{
		"upvotes":   upvotes,
		"downvotes": downvotes,
		"hot_score": hotScore,
	}).Error
}

// CountByUserSince counts recommendations a user created since the cutoff
func (r *RecommendationRepository) CountByUserSince(userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Recommendation{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

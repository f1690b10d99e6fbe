package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/civicvoice/civicvoice-backend/internal/common"
	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"github.com/civicvoice/civicvoice-backend/internal/repository"
	"github.com/civicvoice/civicvoice-backend/pkg/cache"
	"github.com/civicvoice/civicvoice-backend/pkg/logger"
	"github.com/google/uuid"
)

// RecommendationService handles the resident ideas forum: proposals,
// voting, and hot score ranking.
type RecommendationService struct {
	recRepo     *repository.RecommendationRepository
	moderation  *ModerationService
	cacheSvc    cache.Service
	weeklyLimit int
}

// NewRecommendationService creates a new RecommendationService
func NewRecommendationService(recRepo *repository.RecommendationRepository, moderation *ModerationService, weeklyLimit int) *RecommendationService {
	if weeklyLimit <= 0 {
		weeklyLimit = 5
	}
	return &RecommendationService{
		recRepo:     recRepo,
		moderation:  moderation,
		weeklyLimit: weeklyLimit,
	}
}

// SetCacheService sets the cache for hot lists (optional dependency)
func (s *RecommendationService) SetCacheService(cacheSvc cache.Service) {
	s.cacheSvc = cacheSvc
}

func (s *RecommendationService) invalidateCache(ctx context.Context) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.DeletePattern(ctx, cache.PrefixRecs+"*"); err != nil {
		logger.Warn("failed to invalidate recommendations cache: %v", err)
	}
}

// hotScore decays net votes by age so fresh proposals surface.
// score = (up - down) / (hoursOld + 2)^1.8
func hotScore(upvotes, downvotes int, publishedAt time.Time, now time.Time) float64 {
	hours := now.Sub(publishedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return float64(upvotes-downvotes) / math.Pow(hours+2, 1.8)
}

// Create stores a new proposal after running it through the same text
// pipeline comments use. A risk-flagged proposal stays in DRAFT.
func (s *RecommendationService) Create(ctx context.Context, userID string, req *domain.CreateRecommendationRequest) (*domain.Recommendation, error) {
	since := time.Now().Add(-7 * 24 * time.Hour)
	count, err := s.recRepo.CountByUserSince(userID, since)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.weeklyLimit) {
		return nil, common.ErrRateLimitExceeded
	}

	result := s.moderation.Moderate(ctx, req.Body)

	now := time.Now()
	status := domain.RecommendationPublished
	var publishedAt *time.Time
	if result.SuggestedVisibility == domain.VisibilityVisible {
		publishedAt = &now
	} else {
		status = domain.RecommendationDraft
	}

	rec := &domain.Recommendation{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       req.Title,
		Body:        result.PublicBody,
		Tags:        strings.Join(req.Tags, ","),
		Status:      status,
		PublishedAt: publishedAt,
	}
	if publishedAt != nil {
		rec.HotScore = hotScore(0, 0, *publishedAt, now)
	}

	if err := s.recRepo.Create(rec); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return rec, nil
}

// Get loads one published recommendation
func (s *RecommendationService) Get(id string) (*domain.Recommendation, error) {
	return s.recRepo.FindPublishedByID(id)
}

// RecommendationListResult is a cached page of recommendations
type RecommendationListResult struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
	Total           int64                   `json:"total"`
}

// List returns published recommendations sorted hot, new, or top
func (s *RecommendationService) List(ctx context.Context, sort, tag string, page, limit int) ([]domain.Recommendation, int64, error) {
	key := cache.PrefixRecs + sort + ":" + tag + ":" + strconv.Itoa(page) + ":" + strconv.Itoa(limit)
	if s.cacheSvc != nil {
		var cached RecommendationListResult
		if err := s.cacheSvc.Get(ctx, key, &cached); err == nil {
			return cached.Recommendations, cached.Total, nil
		}
	}

	recs, total, err := s.recRepo.List(sort, tag, page, limit)
	if err != nil {
		return nil, 0, err
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.Set(ctx, key, &RecommendationListResult{Recommendations: recs, Total: total}, cache.TTLShort); err != nil {
			logger.Warn("failed to cache recommendations list: %v", err)
		}
	}
	return recs, total, nil
}

// Vote casts, changes, or removes a vote, then refreshes the
// denormalized counters and hot score.
func (s *RecommendationService) Vote(ctx context.Context, userID string, req *domain.VoteRequest) (*domain.Recommendation, error) {
	rec, err := s.recRepo.FindPublishedByID(req.RecommendationID)
	if err != nil {
		return nil, err
	}

	switch req.Value {
	case 1, -1:
		err = s.recRepo.UpsertVote(&domain.Vote{
			RecommendationID: req.RecommendationID,
			UserID:           userID,
			Value:            req.Value,
		})
	case 0:
		err = s.recRepo.DeleteVote(req.RecommendationID, userID)
	default:
		return nil, common.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}

	upvotes, downvotes, err := s.recRepo.CountVotes(req.RecommendationID)
	if err != nil {
		return nil, err
	}

	publishedAt := rec.CreatedAt
	if rec.PublishedAt != nil {
		publishedAt = *rec.PublishedAt
	}
	score := hotScore(upvotes, downvotes, publishedAt, time.Now())
	if err := s.recRepo.UpdateScores(req.RecommendationID, upvotes, downvotes, score); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	rec.Upvotes = upvotes
	rec.Downvotes = downvotes
	rec.HotScore = score
	return rec, nil
}

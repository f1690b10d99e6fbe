package service

import (
	"context"
	"fmt"

	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"github.com/civicvoice/civicvoice-backend/internal/repository"
	"github.com/civicvoice/civicvoice-backend/pkg/cache"
	"github.com/civicvoice/civicvoice-backend/pkg/logger"
	"github.com/google/uuid"
)

// MeetingService handles meeting and agenda item management
type MeetingService struct {
	meetingRepo *repository.MeetingRepository
	cacheSvc    cache.Service
}

// NewMeetingService creates a new MeetingService
func NewMeetingService(meetingRepo *repository.MeetingRepository) *MeetingService {
	return &MeetingService{meetingRepo: meetingRepo}
}

// SetCacheService sets the cache for meeting lists (optional dependency)
func (s *MeetingService) SetCacheService(cacheSvc cache.Service) {
	s.cacheSvc = cacheSvc
}

func (s *MeetingService) invalidateCache(ctx context.Context) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.DeletePattern(ctx, cache.PrefixMeetings+"*"); err != nil {
		logger.Warn("failed to invalidate meetings cache: %v", err)
	}
}

// Create stores a meeting together with its agenda items
func (s *MeetingService) Create(ctx context.Context, req *domain.CreateMeetingRequest) (*domain.Meeting, error) {
	meeting := &domain.Meeting{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
		Status:      domain.MeetingUpcoming,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		VideoURL:    req.VideoURL,
	}
	for i, input := range req.AgendaItems {
		orderIndex := input.OrderIndex
		if orderIndex == 0 {
			orderIndex = i + 1
		}
		meeting.AgendaItems = append(meeting.AgendaItems, domain.AgendaItem{
			ID:             uuid.New().String(),
			MeetingID:      meeting.ID,
			Code:           input.Code,
			Title:          input.Title,
			Description:    input.Description,
			OrderIndex:     orderIndex,
			CutoffTime:     input.CutoffTime,
			SupportingDocs: input.SupportingDocs,
		})
	}

	if err := s.meetingRepo.Create(meeting); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return meeting, nil
}

// Get loads a meeting with its agenda items
func (s *MeetingService) Get(id string) (*domain.Meeting, error) {
	return s.meetingRepo.FindByID(id)
}

// MeetingListResult is a cached page of meetings
type MeetingListResult struct {
	Meetings []domain.Meeting `json:"meetings"`
	Total    int64            `json:"total"`
}

// List returns meetings filtered by status, cached per page
func (s *MeetingService) List(ctx context.Context, status domain.MeetingStatus, page, limit int) ([]domain.Meeting, int64, error) {
	key := fmt.Sprintf("%s%s:%d:%d", cache.PrefixMeetings, status, page, limit)
	if s.cacheSvc != nil {
		var cached MeetingListResult
		if err := s.cacheSvc.Get(ctx, key, &cached); err == nil {
			return cached.Meetings, cached.Total, nil
		}
	}

	meetings, total, err := s.meetingRepo.List(status, page, limit)
	if err != nil {
		return nil, 0, err
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.Set(ctx, key, &MeetingListResult{Meetings: meetings, Total: total}, cache.TTLMeetings); err != nil {
			logger.Warn("failed to cache meetings list: %v", err)
		}
	}
	return meetings, total, nil
}

// Update applies a partial meeting update
func (s *MeetingService) Update(ctx context.Context, id string, req *domain.UpdateMeetingRequest) (*domain.Meeting, error) {
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, fmt.Errorf("invalid meeting status: %s", *req.Status)
		}
		updates["status"] = *req.Status
	}
	if req.StartTime != nil {
		updates["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		updates["end_time"] = *req.EndTime
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.VideoURL != nil {
		updates["video_url"] = *req.VideoURL
	}
	if len(updates) > 0 {
		if err := s.meetingRepo.Update(id, updates); err != nil {
			return nil, err
		}
	}
	s.invalidateCache(ctx)
	return s.meetingRepo.FindByID(id)
}

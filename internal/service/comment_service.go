package service

import (
	"context"
	"math"
	"time"

	"github.com/civicvoice/civicvoice-backend/internal/common"
	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"github.com/civicvoice/civicvoice-backend/internal/repository"
	"github.com/civicvoice/civicvoice-backend/pkg/logger"
	"github.com/google/uuid"
)

// CommentService handles comment submission, listing, and withdrawal
type CommentService struct {
	commentRepo repository.CommentRepository
	meetingRepo *repository.MeetingRepository
	userRepo    repository.UserRepository
	queueSvc    *ModerationQueueService
	dailyLimit  int
}

// NewCommentService creates a new CommentService
func NewCommentService(
	commentRepo repository.CommentRepository,
	meetingRepo *repository.MeetingRepository,
	userRepo repository.UserRepository,
	queueSvc *ModerationQueueService,
	dailyLimit int,
) *CommentService {
	if dailyLimit <= 0 {
		dailyLimit = 10
	}
	return &CommentService{
		commentRepo: commentRepo,
		meetingRepo: meetingRepo,
		userRepo:    userRepo,
		queueSvc:    queueSvc,
		dailyLimit:  dailyLimit,
	}
}

// roundCoord coarsens a coordinate to two decimal places (roughly a
// 1km grid) so stored locations cannot pinpoint a home address.
func roundCoord(v float64) float64 {
	return math.Round(v*100) / 100
}

// Submit validates and stores a new comment, then runs the moderation
// pipeline over it. A pipeline failure never fails the submission.
func (s *CommentService) Submit(ctx context.Context, userID string, req *domain.CreateCommentRequest) (*domain.Comment, error) {
	if !req.Stance.Valid() {
		return nil, common.ErrInvalidInput
	}

	meeting, err := s.meetingRepo.FindByID(req.MeetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Status == domain.MeetingCancelled {
		return nil, common.ErrCommentsClosed
	}

	items, err := s.meetingRepo.FindAgendaItems(req.MeetingID, req.AgendaItemIDs)
	if err != nil {
		return nil, err
	}
	if len(items) != len(req.AgendaItemIDs) {
		return nil, common.ErrAgendaItemNotFound
	}
	now := time.Now()
	for i := range items {
		if items[i].CommentClosed(now) {
			return nil, common.ErrCommentsClosed
		}
	}

	since := now.Add(-24 * time.Hour)
	count, err := s.commentRepo.CountByUserSince(userID, since)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.dailyLimit) {
		return nil, common.ErrRateLimitExceeded
	}

	// Comments on a live meeting go straight to public; otherwise they
	// wait for the meeting (or a moderator) before showing.
	visibility := domain.VisibilityPendingVisible
	var visibleAt *time.Time
	if meeting.Status == domain.MeetingActive {
		visibility = domain.VisibilityVisible
		visibleAt = &now
	}

	comment := &domain.Comment{
		ID:         uuid.New().String(),
		UserID:     userID,
		MeetingID:  req.MeetingID,
		RawBody:    req.Body,
		PublicBody: req.Body,
		Stance:     req.Stance,
		Visibility: visibility,
		VisibleAt:  visibleAt,
	}
	if req.Latitude != nil && req.Longitude != nil {
		comment.Latitude = req.Latitude
		comment.Longitude = req.Longitude
		rlat := roundCoord(*req.Latitude)
		rlng := roundCoord(*req.Longitude)
		comment.RoundedLatitude = &rlat
		comment.RoundedLongitude = &rlng
	}

	if err := s.commentRepo.Create(comment, req.AgendaItemIDs); err != nil {
		return nil, err
	}

	if _, err := s.queueSvc.ProcessComment(ctx, comment.ID); err != nil {
		logger.Error("moderation pipeline failed for comment %s: %v", comment.ID, err)
	}

	// Re-read so the response reflects the moderated state
	stored, err := s.commentRepo.FindByID(comment.ID)
	if err != nil {
		return comment, nil
	}
	return stored, nil
}

// List returns comments matching the filter. Callers who cannot view
// all comments only see VISIBLE ones, and never raw bodies.
func (s *CommentService) List(filter repository.CommentFilter, viewerRole domain.Role) ([]domain.CommentResponse, int64, error) {
	privileged := viewerRole.CanViewAllComments()
	if !privileged {
		filter.Visibility = domain.VisibilityVisible
	}

	comments, total, err := s.commentRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}

	userIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		userIDs = append(userIDs, c.UserID)
	}
	nameMap, err := s.userRepo.FindNamesByIDs(userIDs)
	if err != nil {
		nameMap = map[string]string{}
	}

	out := make([]domain.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, toCommentResponse(&comments[i], nameMap[comments[i].UserID], privileged))
	}
	return out, total, nil
}

// Get returns one comment, enforcing the same visibility rules as List
func (s *CommentService) Get(commentID, viewerID string, viewerRole domain.Role) (*domain.CommentResponse, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, err
	}
	privileged := viewerRole.CanViewAllComments()
	if !privileged && comment.Visibility != domain.VisibilityVisible && comment.UserID != viewerID {
		return nil, common.ErrCommentNotFound
	}
	resp := toCommentResponse(comment, "", privileged)
	return &resp, nil
}

// Withdraw removes the owner's comment from public view permanently
func (s *CommentService) Withdraw(commentID, userID string) error {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return common.ErrUnauthorized
	}
	if comment.Withdrawn() {
		return common.ErrCommentWithdrawn
	}
	return s.commentRepo.Withdraw(commentID, time.Now())
}

// toCommentResponse maps a stored comment to its API shape. Raw body,
// risk flags, and moderation notes are staff-only.
func toCommentResponse(c *domain.Comment, userName string, privileged bool) domain.CommentResponse {
	resp := domain.CommentResponse{
		ID:                c.ID,
		UserID:            c.UserID,
		UserName:          userName,
		MeetingID:         c.MeetingID,
		PublicBody:        c.PublicBody,
		Stance:            c.Stance,
		Visibility:        c.Visibility,
		PIIDetected:       c.PIIDetected,
		ProfanityDetected: c.ProfanityDetected,
		SubmittedAt:       c.SubmittedAt.Format(time.RFC3339),
	}
	if c.VisibleAt != nil {
		resp.VisibleAt = c.VisibleAt.Format(time.RFC3339)
	}
	for _, item := range c.AgendaItems {
		resp.AgendaItemCodes = append(resp.AgendaItemCodes, item.Code)
	}
	if privileged {
		resp.RawBody = c.RawBody
		flags := c.RiskFlags
		resp.RiskFlags = &flags
		resp.ModerationNotes = c.ModerationNotes
	}
	return resp
}

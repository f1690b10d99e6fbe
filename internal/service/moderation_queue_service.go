package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/civicvoice/civicvoice-backend/internal/common"
	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"github.com/civicvoice/civicvoice-backend/internal/repository"
	"github.com/civicvoice/civicvoice-backend/pkg/cache"
	"github.com/civicvoice/civicvoice-backend/pkg/logger"
	"gorm.io/gorm"
)

// Queue priority thresholds over the stored aggregate risk score
const (
	highRiskThreshold   = 0.7
	mediumRiskThreshold = 0.4
)

// QueueOptions narrows a moderation queue fetch
type QueueOptions struct {
	Limit    int
	Offset   int
	Priority domain.QueuePriority
}

// ModerationQueueService persists moderation verdicts, surfaces comments
// needing human review, and executes moderator actions with an audit
// trail.
type ModerationQueueService struct {
	commentRepo repository.CommentRepository
	logRepo     repository.ModerationLogRepository
	userRepo    repository.UserRepository
	moderation  *ModerationService
	cacheSvc    cache.Service
}

// NewModerationQueueService creates a new ModerationQueueService
func NewModerationQueueService(
	commentRepo repository.CommentRepository,
	logRepo repository.ModerationLogRepository,
	userRepo repository.UserRepository,
	moderation *ModerationService,
) *ModerationQueueService {
	return &ModerationQueueService{
		commentRepo: commentRepo,
		logRepo:     logRepo,
		userRepo:    userRepo,
		moderation:  moderation,
	}
}

// SetCacheService sets the cache used for queue statistics (optional dependency)
func (s *ModerationQueueService) SetCacheService(cacheSvc cache.Service) {
	s.cacheSvc = cacheSvc
}

// invalidateStats drops the cached moderation statistics
func (s *ModerationQueueService) invalidateStats(ctx context.Context) {
	if s.cacheSvc == nil {
		return
	}
	if err := s.cacheSvc.Delete(ctx, cache.PrefixModStats); err != nil {
		logger.Warn("failed to invalidate moderation stats cache: %v", err)
	}
}

// ProcessComment runs the moderation pipeline over a stored comment and
// persists the verdict. The comment keeps its caller-assigned initial
// visibility unless the pipeline detected risk; a FLAG audit entry is
// appended whenever the suggested visibility is not VISIBLE.
func (s *ModerationQueueService) ProcessComment(ctx context.Context, commentID string) (*domain.ModerationResult, error) {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		return nil, err
	}

	result := s.moderation.Moderate(ctx, comment.RawBody)

	// The engine's suggestion composes with the caller's initial
	// visibility: VISIBLE means "no objection", so the initial state
	// stands; a risk-driven suggestion overrides it.
	visibility := comment.Visibility
	if result.SuggestedVisibility != domain.VisibilityVisible {
		visibility = result.SuggestedVisibility
	}

	if err := s.commentRepo.ApplyModeration(commentID, &result, visibility); err != nil {
		return nil, err
	}

	if result.SuggestedVisibility != domain.VisibilityVisible {
		snapshot := result
		entry := &domain.ModerationLog{
			CommentID:   commentID,
			ModeratorID: domain.SystemModeratorID,
			Action:      domain.ActionFlag,
			Reason:      fmt.Sprintf("Automated moderation: %s", joinNotesComma(result.Notes)),
			Metadata:    &snapshot,
		}
		if err := s.logRepo.Create(entry); err != nil {
			// Verdict is already persisted; losing the flag entry is
			// an operator-visible problem, not a submitter-visible one.
			logger.Error("failed to append FLAG audit entry for comment %s: %v", commentID, err)
		}
	}

	s.invalidateStats(ctx)
	return &result, nil
}

// ListQueue returns comments awaiting review ordered for triage:
// high priority first, then medium, then low; within a priority the
// underlying newest-first fetch order is preserved.
func (s *ModerationQueueService) ListQueue(ctx context.Context, opts QueueOptions) ([]domain.QueueItem, error) {
	comments, err := s.commentRepo.ListPendingReview(opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		userIDs = append(userIDs, c.UserID)
	}
	nameMap, err := s.userRepo.FindNamesByIDs(userIDs)
	if err != nil {
		nameMap = map[string]string{}
	}

	items := make([]domain.QueueItem, 0, len(comments))
	for i := range comments {
		c := &comments[i]
		// The fetch already filters withdrawn rows; an owner withdrawal
		// racing this read can still slip one in.
		if c.Withdrawn() {
			continue
		}
		priority, riskScore := computePriority(c)
		if opts.Priority != "" && priority != opts.Priority {
			continue
		}
		items = append(items, domain.QueueItem{
			Comment:   toCommentResponse(c, nameMap[c.UserID], true),
			Priority:  priority,
			RiskScore: riskScore,
		})
	}

	// Stable sort keeps insertion (newest first) order within a priority
	sort.SliceStable(items, func(i, j int) bool {
		return priorityRank(items[i].Priority) < priorityRank(items[j].Priority)
	})

	return items, nil
}

// computePriority derives the triage priority from the stored risk
// score, visibility, and profanity flag. Never persisted.
func computePriority(c *domain.Comment) (domain.QueuePriority, float64) {
	riskScore := c.RiskFlags.Score
	switch {
	case riskScore > highRiskThreshold || c.Visibility == domain.VisibilityHidden:
		return domain.PriorityHigh, riskScore
	case riskScore > mediumRiskThreshold || c.ProfanityDetected:
		return domain.PriorityMedium, riskScore
	default:
		return domain.PriorityLow, riskScore
	}
}

func priorityRank(p domain.QueuePriority) int {
	switch p {
	case domain.PriorityHigh:
		return 0
	case domain.PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Approve makes a comment publicly visible and appends a RESTORE audit
// entry. The comment update and the audit insert are one transaction.
func (s *ModerationQueueService) Approve(ctx context.Context, commentID, moderatorID, notes string) error {
	return s.commentRepo.Transaction(func(tx *gorm.DB) error {
		commentRepo := s.commentRepo.WithTx(tx)
		logRepo := s.logRepo.WithTx(tx)

		comment, err := commentRepo.FindByID(commentID)
		if err != nil {
			return err
		}
		if comment.Withdrawn() {
			return common.ErrCommentWithdrawn
		}

		now := time.Now()
		var notesUpdate *string
		if notes != "" {
			notesUpdate = &notes
		}
		if err := commentRepo.UpdateVisibility(commentID, domain.VisibilityVisible, &now, notesUpdate); err != nil {
			return err
		}

		reason := notes
		if reason == "" {
			reason = "Comment approved after review"
		}
		if err := logRepo.Create(&domain.ModerationLog{
			CommentID:   commentID,
			ModeratorID: moderatorID,
			Action:      domain.ActionRestore,
			Reason:      reason,
		}); err != nil {
			return err
		}

		s.invalidateStats(ctx)
		return nil
	})
}

// Reject hides a comment and appends a HIDE audit entry. The comment
// update and the audit insert are one transaction.
func (s *ModerationQueueService) Reject(ctx context.Context, commentID, moderatorID, reason string) error {
	if reason == "" {
		reason = "Content violates community guidelines"
	}
	return s.commentRepo.Transaction(func(tx *gorm.DB) error {
		commentRepo := s.commentRepo.WithTx(tx)
		logRepo := s.logRepo.WithTx(tx)

		comment, err := commentRepo.FindByID(commentID)
		if err != nil {
			return err
		}
		if comment.Withdrawn() {
			return common.ErrCommentWithdrawn
		}

		if err := commentRepo.UpdateVisibility(commentID, domain.VisibilityHidden, nil, &reason); err != nil {
			return err
		}

		if err := logRepo.Create(&domain.ModerationLog{
			CommentID:   commentID,
			ModeratorID: moderatorID,
			Action:      domain.ActionHide,
			Reason:      reason,
		}); err != nil {
			return err
		}

		s.invalidateStats(ctx)
		return nil
	})
}

// BulkModerate applies approve or reject to every comment id
// independently and concurrently. One failure never aborts the batch;
// the result reports per-item counts.
func (s *ModerationQueueService) BulkModerate(ctx context.Context, commentIDs []string, moderatorID, action, reason string) (*domain.BulkModerationResult, error) {
	if action != "approve" && action != "reject" {
		return nil, fmt.Errorf("invalid bulk action: %s", action)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(commentIDs))

	for i, id := range commentIDs {
		wg.Add(1)
		go func(idx int, commentID string) {
			defer wg.Done()
			if action == "approve" {
				errs[idx] = s.Approve(ctx, commentID, moderatorID, reason)
			} else {
				errs[idx] = s.Reject(ctx, commentID, moderatorID, reason)
			}
		}(i, id)
	}
	wg.Wait()

	result := &domain.BulkModerationResult{Total: len(commentIDs)}
	for i, err := range errs {
		if err != nil {
			logger.Warn("bulk %s failed for comment %s: %v", action, commentIDs[i], err)
			result.Failed++
			continue
		}
		result.Successful++
	}
	return result, nil
}

// Stats summarizes the moderation queue, cached for a short interval
func (s *ModerationQueueService) Stats(ctx context.Context) (*domain.ModerationStats, error) {
	if s.cacheSvc != nil {
		var cached domain.ModerationStats
		if err := s.cacheSvc.Get(ctx, cache.PrefixModStats, &cached); err == nil {
			return &cached, nil
		}
	}

	total, err := s.commentRepo.CountAll()
	if err != nil {
		return nil, err
	}
	pending, err := s.commentRepo.CountByVisibility(domain.VisibilityPendingVisible)
	if err != nil {
		return nil, err
	}
	hidden, err := s.commentRepo.CountByVisibility(domain.VisibilityHidden)
	if err != nil {
		return nil, err
	}
	visible, err := s.commentRepo.CountByVisibility(domain.VisibilityVisible)
	if err != nil {
		return nil, err
	}
	recent, err := s.logRepo.CountSince(time.Now().Add(-24 * time.Hour))
	if err != nil {
		return nil, err
	}

	stats := &domain.ModerationStats{
		Total:            total,
		Pending:          pending,
		Hidden:           hidden,
		Visible:          visible,
		RecentActions:    recent,
		PercentModerated: "0",
	}
	if total > 0 {
		stats.PercentModerated = fmt.Sprintf("%.1f", float64(hidden+pending)/float64(total)*100)
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.Set(ctx, cache.PrefixModStats, stats, cache.TTLModStats); err != nil {
			logger.Warn("failed to cache moderation stats: %v", err)
		}
	}
	return stats, nil
}

// History returns the recent audit entries for one comment
func (s *ModerationQueueService) History(commentID string, limit int) ([]domain.ModerationLog, error) {
	return s.logRepo.ListByComment(commentID, limit)
}

func joinNotesComma(notes []string) string {
	return strings.Join(notes, ", ")
}

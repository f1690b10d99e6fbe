package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/civicvoice/civicvoice-backend/internal/common"
	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"github.com/civicvoice/civicvoice-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockCommentRepository is a mock implementation of repository.CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) WithTx(tx *gorm.DB) repository.CommentRepository {
	return m
}

func (m *MockCommentRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (m *MockCommentRepository) Create(comment *domain.Comment, agendaItemIDs []string) error {
	args := m.Called(comment, agendaItemIDs)
	return args.Error(0)
}

func (m *MockCommentRepository) ApplyModeration(id string, result *domain.ModerationResult, visibility domain.CommentVisibility) error {
	args := m.Called(id, result, visibility)
	return args.Error(0)
}

func (m *MockCommentRepository) UpdateVisibility(id string, visibility domain.CommentVisibility, visibleAt *time.Time, notes *string) error {
	args := m.Called(id, visibility, visibleAt, notes)
	return args.Error(0)
}

func (m *MockCommentRepository) Withdraw(id string, at time.Time) error {
	args := m.Called(id, at)
	return args.Error(0)
}

func (m *MockCommentRepository) FindByID(id string) (*domain.Comment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) List(filter repository.CommentFilter) ([]domain.Comment, int64, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepository) ListPendingReview(limit, offset int) ([]domain.Comment, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListVisibleForExport(meetingID string) ([]domain.Comment, error) {
	args := m.Called(meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *MockCommentRepository) CountByUserSince(userID string, since time.Time) (int64, error) {
	args := m.Called(userID, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentRepository) CountByVisibility(visibility domain.CommentVisibility) (int64, error) {
	args := m.Called(visibility)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentRepository) CountAll() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentRepository) CountByStance(meetingID string) ([]repository.StanceCount, error) {
	args := m.Called(meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.StanceCount), args.Error(1)
}

func (m *MockCommentRepository) CountByDistrict(meetingID string) ([]repository.DistrictCount, error) {
	args := m.Called(meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DistrictCount), args.Error(1)
}

func (m *MockCommentRepository) CountByVisibilityForMeeting(meetingID string) ([]repository.VisibilityCount, error) {
	args := m.Called(meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.VisibilityCount), args.Error(1)
}

func (m *MockCommentRepository) CountByAgendaItem(meetingID string, limit int) ([]repository.AgendaItemCount, error) {
	args := m.Called(meetingID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.AgendaItemCount), args.Error(1)
}

// MockModerationLogRepository is a mock implementation of repository.ModerationLogRepository
type MockModerationLogRepository struct {
	mock.Mock
}

func (m *MockModerationLogRepository) WithTx(tx *gorm.DB) repository.ModerationLogRepository {
	return m
}

func (m *MockModerationLogRepository) Create(entry *domain.ModerationLog) error {
	args := m.Called(entry)
	return args.Error(0)
}

func (m *MockModerationLogRepository) ListByComment(commentID string, limit int) ([]domain.ModerationLog, error) {
	args := m.Called(commentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ModerationLog), args.Error(1)
}

func (m *MockModerationLogRepository) CountSince(since time.Time) (int64, error) {
	args := m.Called(since)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *domain.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(id string) (*domain.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(email string) (*domain.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindNamesByIDs(ids []string) (map[string]string, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockUserRepository) FindDistrictsByIDs(ids []string) (map[string]string, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func newTestQueueService(classifier RiskClassifier) (*ModerationQueueService, *MockCommentRepository, *MockModerationLogRepository, *MockUserRepository) {
	comments := new(MockCommentRepository)
	logs := new(MockModerationLogRepository)
	users := new(MockUserRepository)
	moderation := NewModerationService(NewPIIDetector(), NewProfanityFilter(nil), classifier)
	svc := NewModerationQueueService(comments, logs, users, moderation)
	return svc, comments, logs, users
}

func TestComputePriority(t *testing.T) {
	tests := []struct {
		name    string
		comment domain.Comment
		want    domain.QueuePriority
	}{
		{
			name:    "high risk score",
			comment: domain.Comment{Visibility: domain.VisibilityPendingVisible, RiskFlags: domain.RiskFlags{Score: 0.8}},
			want:    domain.PriorityHigh,
		},
		{
			name:    "auto-hidden is always high",
			comment: domain.Comment{Visibility: domain.VisibilityHidden, RiskFlags: domain.RiskFlags{Score: 0.2}},
			want:    domain.PriorityHigh,
		},
		{
			name:    "medium risk score",
			comment: domain.Comment{Visibility: domain.VisibilityPendingVisible, RiskFlags: domain.RiskFlags{Score: 0.5}},
			want:    domain.PriorityMedium,
		},
		{
			name:    "profanity without risk is medium",
			comment: domain.Comment{Visibility: domain.VisibilityPendingVisible, ProfanityDetected: true},
			want:    domain.PriorityMedium,
		},
		{
			name:    "clean pending is low",
			comment: domain.Comment{Visibility: domain.VisibilityPendingVisible},
			want:    domain.PriorityLow,
		},
		{
			name:    "score at high threshold is medium",
			comment: domain.Comment{Visibility: domain.VisibilityPendingVisible, RiskFlags: domain.RiskFlags{Score: 0.7}},
			want:    domain.PriorityMedium,
		},
		{
			name:    "score at medium threshold is low",
			comment: domain.Comment{Visibility: domain.VisibilityPendingVisible, RiskFlags: domain.RiskFlags{Score: 0.4}},
			want:    domain.PriorityLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, score := computePriority(&tt.comment)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.comment.RiskFlags.Score, score)
		})
	}
}

func TestPriorityOrdering(t *testing.T) {
	items := []domain.QueueItem{
		{Comment: domain.CommentResponse{ID: "a"}, Priority: domain.PriorityLow},
		{Comment: domain.CommentResponse{ID: "b"}, Priority: domain.PriorityHigh},
		{Comment: domain.CommentResponse{ID: "c"}, Priority: domain.PriorityMedium},
		{Comment: domain.CommentResponse{ID: "d"}, Priority: domain.PriorityHigh},
	}

	sort.SliceStable(items, func(i, j int) bool {
		return priorityRank(items[i].Priority) < priorityRank(items[j].Priority)
	})

	// High first, then medium, then low; ties keep input order
	assert.Equal(t, "b", items[0].Comment.ID)
	assert.Equal(t, "d", items[1].Comment.ID)
	assert.Equal(t, "c", items[2].Comment.ID)
	assert.Equal(t, "a", items[3].Comment.ID)
}

func TestJoinNotesComma(t *testing.T) {
	assert.Equal(t, "", joinNotesComma(nil))
	assert.Equal(t, "one", joinNotesComma([]string{"one"}))
	assert.Equal(t, "one, two", joinNotesComma([]string{"one", "two"}))
}

func TestProcessComment_HighRiskHidesAndFlags(t *testing.T) {
	svc, comments, logs, _ := newTestQueueService(&stubClassifier{
		result: &Classification{
			Flagged:    true,
			Categories: []string{"harassment"},
			RiskFlags:  domain.RiskFlags{Harassment: true, Score: 0.9},
		},
	})

	comments.On("FindByID", "c1").Return(&domain.Comment{
		ID:         "c1",
		RawBody:    "You are a menace to this town",
		Visibility: domain.VisibilityPendingVisible,
	}, nil)
	comments.On("ApplyModeration", "c1", mock.Anything, domain.VisibilityHidden).Return(nil)
	logs.On("Create", mock.MatchedBy(func(entry *domain.ModerationLog) bool {
		return entry.CommentID == "c1" &&
			entry.ModeratorID == domain.SystemModeratorID &&
			entry.Action == domain.ActionFlag &&
			entry.Metadata != nil
	})).Return(nil)

	result, err := svc.ProcessComment(context.Background(), "c1")
	assert.NoError(t, err)
	assert.Equal(t, domain.VisibilityHidden, result.SuggestedVisibility)
	comments.AssertExpectations(t)
	logs.AssertExpectations(t)
	logs.AssertNumberOfCalls(t, "Create", 1)
}

func TestProcessComment_CleanCommentKeepsVisibilityAndSkipsLog(t *testing.T) {
	svc, comments, logs, _ := newTestQueueService(NoopClassifier{})

	comments.On("FindByID", "c2").Return(&domain.Comment{
		ID:         "c2",
		RawBody:    "I support the new bike lanes",
		Visibility: domain.VisibilityVisible,
	}, nil)
	comments.On("ApplyModeration", "c2", mock.Anything, domain.VisibilityVisible).Return(nil)

	_, err := svc.ProcessComment(context.Background(), "c2")
	assert.NoError(t, err)
	comments.AssertExpectations(t)
	logs.AssertNotCalled(t, "Create", mock.Anything)
}

func TestApprove_CreatesSingleRestoreLog(t *testing.T) {
	svc, comments, logs, _ := newTestQueueService(nil)

	comments.On("FindByID", "c1").Return(&domain.Comment{
		ID:         "c1",
		Visibility: domain.VisibilityPendingVisible,
	}, nil)
	comments.On("UpdateVisibility", "c1", domain.VisibilityVisible, mock.Anything, (*string)(nil)).Return(nil)
	logs.On("Create", mock.MatchedBy(func(entry *domain.ModerationLog) bool {
		return entry.CommentID == "c1" &&
			entry.ModeratorID == "mod1" &&
			entry.Action == domain.ActionRestore &&
			entry.Reason == "Comment approved after review"
	})).Return(nil)

	err := svc.Approve(context.Background(), "c1", "mod1", "")
	assert.NoError(t, err)
	comments.AssertExpectations(t)
	logs.AssertExpectations(t)
	logs.AssertNumberOfCalls(t, "Create", 1)
}

func TestApprove_WithdrawnCommentRefused(t *testing.T) {
	svc, comments, logs, _ := newTestQueueService(nil)

	withdrawnAt := time.Now()
	comments.On("FindByID", "c1").Return(&domain.Comment{
		ID:          "c1",
		Visibility:  domain.VisibilityWithdrawn,
		WithdrawnAt: &withdrawnAt,
	}, nil)

	err := svc.Approve(context.Background(), "c1", "mod1", "")
	assert.ErrorIs(t, err, common.ErrCommentWithdrawn)
	comments.AssertNotCalled(t, "UpdateVisibility", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	logs.AssertNotCalled(t, "Create", mock.Anything)
}

func TestReject_OverwritesNotesWithReason(t *testing.T) {
	svc, comments, logs, _ := newTestQueueService(nil)

	comments.On("FindByID", "c1").Return(&domain.Comment{
		ID:         "c1",
		Visibility: domain.VisibilityPendingVisible,
	}, nil)
	comments.On("UpdateVisibility", "c1", domain.VisibilityHidden, (*time.Time)(nil), mock.MatchedBy(func(notes *string) bool {
		return notes != nil && *notes == "Off-topic campaigning"
	})).Return(nil)
	logs.On("Create", mock.MatchedBy(func(entry *domain.ModerationLog) bool {
		return entry.Action == domain.ActionHide && entry.Reason == "Off-topic campaigning"
	})).Return(nil)

	err := svc.Reject(context.Background(), "c1", "mod1", "Off-topic campaigning")
	assert.NoError(t, err)
	comments.AssertExpectations(t)
	logs.AssertExpectations(t)
}

func TestReject_DefaultReason(t *testing.T) {
	svc, comments, logs, _ := newTestQueueService(nil)

	comments.On("FindByID", "c1").Return(&domain.Comment{
		ID:         "c1",
		Visibility: domain.VisibilityPendingVisible,
	}, nil)
	comments.On("UpdateVisibility", "c1", domain.VisibilityHidden, (*time.Time)(nil), mock.MatchedBy(func(notes *string) bool {
		return notes != nil && *notes == "Content violates community guidelines"
	})).Return(nil)
	logs.On("Create", mock.MatchedBy(func(entry *domain.ModerationLog) bool {
		return entry.Reason == "Content violates community guidelines"
	})).Return(nil)

	err := svc.Reject(context.Background(), "c1", "mod1", "")
	assert.NoError(t, err)
	comments.AssertExpectations(t)
}

func TestReject_WithdrawnCommentRefused(t *testing.T) {
	svc, comments, logs, _ := newTestQueueService(nil)

	withdrawnAt := time.Now()
	comments.On("FindByID", "c1").Return(&domain.Comment{
		ID:          "c1",
		Visibility:  domain.VisibilityWithdrawn,
		WithdrawnAt: &withdrawnAt,
	}, nil)

	err := svc.Reject(context.Background(), "c1", "mod1", "spam")
	assert.ErrorIs(t, err, common.ErrCommentWithdrawn)
	comments.AssertNotCalled(t, "UpdateVisibility", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	logs.AssertNotCalled(t, "Create", mock.Anything)
}

func TestBulkModerate_PartialFailure(t *testing.T) {
	svc, comments, logs, _ := newTestQueueService(nil)

	comments.On("FindByID", "a").Return(&domain.Comment{ID: "a", Visibility: domain.VisibilityPendingVisible}, nil)
	comments.On("FindByID", "b").Return(nil, common.ErrCommentNotFound)
	comments.On("FindByID", "c").Return(&domain.Comment{ID: "c", Visibility: domain.VisibilityPendingVisible}, nil)
	comments.On("UpdateVisibility", mock.Anything, domain.VisibilityVisible, mock.Anything, mock.Anything).Return(nil)
	logs.On("Create", mock.Anything).Return(nil)

	result, err := svc.BulkModerate(context.Background(), []string{"a", "b", "c"}, "mod1", "approve", "")
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 3, result.Total)
	logs.AssertNumberOfCalls(t, "Create", 2)
}

func TestBulkModerate_InvalidAction(t *testing.T) {
	svc, _, _, _ := newTestQueueService(nil)

	result, err := svc.BulkModerate(context.Background(), []string{"a"}, "mod1", "escalate", "")
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestListQueue_SkipsWithdrawnRows(t *testing.T) {
	svc, comments, _, users := newTestQueueService(nil)

	withdrawnAt := time.Now()
	comments.On("ListPendingReview", 50, 0).Return([]domain.Comment{
		{ID: "kept", UserID: "u1", Visibility: domain.VisibilityPendingVisible},
		{ID: "gone", UserID: "u2", Visibility: domain.VisibilityWithdrawn, WithdrawnAt: &withdrawnAt},
	}, nil)
	users.On("FindNamesByIDs", mock.Anything).Return(map[string]string{"u1": "Ada"}, nil)

	items, err := svc.ListQueue(context.Background(), QueueOptions{Limit: 50})
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "kept", items[0].Comment.ID)
}

func TestListQueue_PriorityFilter(t *testing.T) {
	svc, comments, _, users := newTestQueueService(nil)

	comments.On("ListPendingReview", 50, 0).Return([]domain.Comment{
		{ID: "hot", UserID: "u1", Visibility: domain.VisibilityHidden, RiskFlags: domain.RiskFlags{Score: 0.9}},
		{ID: "mild", UserID: "u2", Visibility: domain.VisibilityPendingVisible, RiskFlags: domain.RiskFlags{Score: 0.1}},
	}, nil)
	users.On("FindNamesByIDs", mock.Anything).Return(map[string]string{}, nil)

	items, err := svc.ListQueue(context.Background(), QueueOptions{Limit: 50, Priority: domain.PriorityHigh})
	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "hot", items[0].Comment.ID)
}

package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"time"

	"github.com/civicvoice/civicvoice-backend/internal/repository"
	"github.com/civicvoice/civicvoice-backend/pkg/cache"
	"github.com/civicvoice/civicvoice-backend/pkg/logger"
)

// Dashboard summarizes resident sentiment on one meeting for council
// members: totals, stance/visibility/district breakdowns, and the agenda
// items drawing the most comments.
type Dashboard struct {
	MeetingID      string           `json:"meeting_id"`
	MeetingTitle   string           `json:"meeting_title"`
	TotalComments  int64            `json:"total_comments"`
	ByStance       map[string]int64 `json:"by_stance"`
	ByVisibility   map[string]int64 `json:"by_visibility"`
	ByDistrict     map[string]int64 `json:"by_district"`
	TopAgendaItems []AgendaItemStat `json:"top_agenda_items"`
	GeneratedAt    string           `json:"generated_at"`
}

// AgendaItemStat is one agenda item ranked by visible comment count
type AgendaItemStat struct {
	AgendaItemID string `json:"agenda_item_id"`
	Code         string `json:"code"`
	Title        string `json:"title"`
	Comments     int64  `json:"comments"`
}

// CouncilService builds read-only sentiment views for council members
type CouncilService struct {
	commentRepo repository.CommentRepository
	meetingRepo *repository.MeetingRepository
	userRepo    repository.UserRepository
	cacheSvc    cache.Service
}

// NewCouncilService creates a new CouncilService
func NewCouncilService(
	commentRepo repository.CommentRepository,
	meetingRepo *repository.MeetingRepository,
	userRepo repository.UserRepository,
) *CouncilService {
	return &CouncilService{
		commentRepo: commentRepo,
		meetingRepo: meetingRepo,
		userRepo:    userRepo,
	}
}

// SetCacheService sets the cache for dashboards (optional dependency)
func (s *CouncilService) SetCacheService(cacheSvc cache.Service) {
	s.cacheSvc = cacheSvc
}

// GetDashboard aggregates comment sentiment for one meeting
func (s *CouncilService) GetDashboard(ctx context.Context, meetingID string) (*Dashboard, error) {
	key := cache.PrefixDashboard + meetingID
	if s.cacheSvc != nil {
		var cached Dashboard
		if err := s.cacheSvc.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	meeting, err := s.meetingRepo.FindByID(meetingID)
	if err != nil {
		return nil, err
	}

	stances, err := s.commentRepo.CountByStance(meetingID)
	if err != nil {
		return nil, err
	}
	visibilities, err := s.commentRepo.CountByVisibilityForMeeting(meetingID)
	if err != nil {
		return nil, err
	}
	districts, err := s.commentRepo.CountByDistrict(meetingID)
	if err != nil {
		return nil, err
	}
	topItems, err := s.commentRepo.CountByAgendaItem(meetingID, topAgendaItemLimit)
	if err != nil {
		return nil, err
	}

	dash := &Dashboard{
		MeetingID:      meetingID,
		MeetingTitle:   meeting.Title,
		ByStance:       map[string]int64{},
		ByVisibility:   map[string]int64{},
		ByDistrict:     map[string]int64{},
		TopAgendaItems: make([]AgendaItemStat, 0, len(topItems)),
		GeneratedAt:    time.Now().Format(time.RFC3339),
	}
	for _, sc := range stances {
		dash.ByStance[string(sc.Stance)] = sc.Count
		dash.TotalComments += sc.Count
	}
	for _, vc := range visibilities {
		dash.ByVisibility[string(vc.Visibility)] = vc.Count
	}
	for _, dc := range districts {
		district := dc.District
		if district == "" {
			district = "UNKNOWN"
		}
		dash.ByDistrict[district] = dc.Count
	}
	for _, item := range topItems {
		dash.TopAgendaItems = append(dash.TopAgendaItems, AgendaItemStat{
			AgendaItemID: item.AgendaItemID,
			Code:         item.Code,
			Title:        item.Title,
			Comments:     item.Count,
		})
	}

	if s.cacheSvc != nil {
		if err := s.cacheSvc.Set(ctx, key, dash, cache.TTLDashboard); err != nil {
			logger.Warn("failed to cache council dashboard: %v", err)
		}
	}
	return dash, nil
}

// ExportFormat selects the export encoding
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// topAgendaItemLimit caps the agenda item ranking on the dashboard
const topAgendaItemLimit = 5

// exportRow is one visible comment in an export. Only public fields;
// raw bodies and precise locations never leave the system.
type exportRow struct {
	CommentID   string `json:"comment_id"`
	MeetingID   string `json:"meeting_id"`
	Stance      string `json:"stance"`
	PublicBody  string `json:"public_body"`
	District    string `json:"district"`
	SubmittedAt string `json:"submitted_at"`
}

// Export renders every VISIBLE comment on a meeting as CSV or JSON
func (s *CouncilService) Export(meetingID string, format ExportFormat) ([]byte, string, error) {
	comments, err := s.commentRepo.ListVisibleForExport(meetingID)
	if err != nil {
		return nil, "", err
	}

	userIDs := make([]string, 0, len(comments))
	for _, c := range comments {
		userIDs = append(userIDs, c.UserID)
	}
	districtMap, err := s.userRepo.FindDistrictsByIDs(userIDs)
	if err != nil {
		districtMap = map[string]string{}
	}

	rows := make([]exportRow, 0, len(comments))
	for _, c := range comments {
		rows = append(rows, exportRow{
			CommentID:   c.ID,
			MeetingID:   c.MeetingID,
			Stance:      string(c.Stance),
			PublicBody:  c.PublicBody,
			District:    districtMap[c.UserID],
			SubmittedAt: c.SubmittedAt.Format(time.RFC3339),
		})
	}

	switch format {
	case ExportJSON:
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	default:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write([]string{"comment_id", "meeting_id", "stance", "public_body", "district", "submitted_at"}); err != nil {
			return nil, "", err
		}
		for _, row := range rows {
			record := []string{row.CommentID, row.MeetingID, row.Stance, row.PublicBody, row.District, row.SubmittedAt}
			if err := w.Write(record); err != nil {
				return nil, "", err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "text/csv", nil
	}
}

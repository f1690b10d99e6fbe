package service

import (
	"testing"
	"time"

	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRoundCoord(t *testing.T) {
	assert.Equal(t, 37.77, roundCoord(37.7749))
	assert.Equal(t, -122.42, roundCoord(-122.4194))
	assert.Equal(t, 0.0, roundCoord(0.004))
}

func TestToCommentResponse_PrivilegedFields(t *testing.T) {
	now := time.Now()
	comment := &domain.Comment{
		ID:              "c1",
		UserID:          "u1",
		RawBody:         "Call me at 555-123-4567",
		PublicBody:      "Call me at [REDACTED]",
		Stance:          domain.StanceAgainst,
		Visibility:      domain.VisibilityVisible,
		PIIDetected:     true,
		RiskFlags:       domain.RiskFlags{Score: 0.2},
		ModerationNotes: "PII detected and redacted: phone",
		SubmittedAt:     now,
	}

	public := toCommentResponse(comment, "Jane", false)
	assert.Empty(t, public.RawBody)
	assert.Nil(t, public.RiskFlags)
	assert.Empty(t, public.ModerationNotes)
	assert.Equal(t, "Call me at [REDACTED]", public.PublicBody)
	assert.Equal(t, "Jane", public.UserName)

	staff := toCommentResponse(comment, "Jane", true)
	assert.Equal(t, "Call me at 555-123-4567", staff.RawBody)
	assert.NotNil(t, staff.RiskFlags)
	assert.Equal(t, 0.2, staff.RiskFlags.Score)
	assert.Equal(t, "PII detected and redacted: phone", staff.ModerationNotes)
}

func TestToCommentResponse_AgendaItemCodes(t *testing.T) {
	comment := &domain.Comment{
		ID: "c1",
		AgendaItems: []domain.AgendaItem{
			{Code: "2026-101"},
			{Code: "2026-102"},
		},
		SubmittedAt: time.Now(),
	}

	resp := toCommentResponse(comment, "", false)
	assert.Equal(t, []string{"2026-101", "2026-102"}, resp.AgendaItemCodes)
}

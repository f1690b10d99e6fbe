package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommentStance_Valid(t *testing.T) {
	assert.True(t, StanceFor.Valid())
	assert.True(t, StanceAgainst.Valid())
	assert.True(t, StanceConcerned.Valid())
	assert.True(t, StanceNeutral.Valid())
	assert.False(t, CommentStance("MAYBE").Valid())
	assert.False(t, CommentStance("").Valid())
}

func TestComment_Withdrawn(t *testing.T) {
	now := time.Now()

	assert.False(t, (&Comment{Visibility: VisibilityVisible}).Withdrawn())
	assert.True(t, (&Comment{Visibility: VisibilityWithdrawn}).Withdrawn())
	assert.True(t, (&Comment{Visibility: VisibilityVisible, WithdrawnAt: &now}).Withdrawn())
}

func TestRiskFlags_ScanRoundtrip(t *testing.T) {
	original := RiskFlags{Harassment: true, Violence: true, Score: 0.83}

	value, err := original.Value()
	assert.NoError(t, err)

	var restored RiskFlags
	assert.NoError(t, restored.Scan(value))
	assert.Equal(t, original, restored)
}

func TestRiskFlags_ScanNil(t *testing.T) {
	flags := RiskFlags{Harassment: true, Score: 0.5}
	assert.NoError(t, flags.Scan(nil))
	assert.Equal(t, RiskFlags{}, flags)
}

func TestAgendaItem_CommentClosed(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&AgendaItem{}).CommentClosed(now))
	assert.False(t, (&AgendaItem{CutoffTime: &future}).CommentClosed(now))
	assert.True(t, (&AgendaItem{CutoffTime: &past}).CommentClosed(now))
}

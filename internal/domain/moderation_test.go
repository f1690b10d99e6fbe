package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultModerationSettings(t *testing.T) {
	s := DefaultModerationSettings()

	assert.True(t, s.AutoModerate)
	assert.True(t, s.ProfanityFilter)
	assert.True(t, s.PIIRedaction)
	assert.Equal(t, 0.7, s.RiskThreshold)
}

func TestModerationResult_ScanRoundtrip(t *testing.T) {
	original := ModerationResult{
		Processed:           true,
		PublicBody:          "cleaned text",
		PIIDetected:         true,
		RiskFlags:           RiskFlags{Harassment: true, Score: 0.9},
		SuggestedVisibility: VisibilityHidden,
		Notes:               []string{"PII detected and redacted: phone", "Auto-hidden due to high risk score"},
	}

	value, err := original.Value()
	assert.NoError(t, err)

	var restored ModerationResult
	assert.NoError(t, restored.Scan(value))
	assert.Equal(t, original, restored)
}

func TestSystemModeratorID_NotAUUID(t *testing.T) {
	// The sentinel must never look like a real user id
	assert.Equal(t, "__system__", SystemModeratorID)
	assert.Len(t, SystemModeratorID, 10)
}

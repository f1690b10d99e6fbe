package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPIIDetector_Phone(t *testing.T) {
	d := NewPIIDetector()

	result := d.Detect("Call me at 555-123-4567 about the rezoning")

	assert.True(t, result.Detected)
	assert.Contains(t, result.Types, "phone")
	assert.NotContains(t, result.RedactedText, "555-123-4567")
	assert.Contains(t, result.RedactedText, RedactedToken)
}

func TestPIIDetector_PhoneFormats(t *testing.T) {
	d := NewPIIDetector()

	tests := []struct {
		name string
		text string
	}{
		{"dashes", "555-123-4567"},
		{"dots", "555.123.4567"},
		{"spaces", "555 123 4567"},
		{"parens", "(555) 123-4567"},
		{"country code", "+1 555-123-4567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := d.Detect("reach me: " + tt.text)
			assert.True(t, result.Detected, "should detect %q", tt.text)
			assert.Contains(t, result.Types, "phone")
		})
	}
}

func TestPIIDetector_Email(t *testing.T) {
	d := NewPIIDetector()

	result := d.Detect("Email jane.doe@example.com for details")

	assert.True(t, result.Detected)
	assert.Contains(t, result.Types, "email")
	assert.NotContains(t, result.RedactedText, "jane.doe@example.com")
}

func TestPIIDetector_SSN(t *testing.T) {
	d := NewPIIDetector()

	result := d.Detect("my ssn is 123-45-6789")

	assert.True(t, result.Detected)
	assert.Contains(t, result.Types, "ssn")
	assert.NotContains(t, result.RedactedText, "123-45-6789")
}

func TestPIIDetector_CreditCard(t *testing.T) {
	d := NewPIIDetector()

	result := d.Detect("card 4111 1111 1111 1111 was charged")

	assert.True(t, result.Detected)
	assert.Contains(t, result.Types, "credit_card")
	assert.NotContains(t, result.RedactedText, "4111")
}

func TestPIIDetector_StreetAddress(t *testing.T) {
	d := NewPIIDetector()

	result := d.Detect("I live at 123 Maple Street and oppose this")

	assert.True(t, result.Detected)
	assert.Contains(t, result.Types, "address")
	assert.NotContains(t, result.RedactedText, "123 Maple Street")
	assert.Contains(t, result.RedactedText, "and oppose this")
}

func TestPIIDetector_CleanTextUnchanged(t *testing.T) {
	d := NewPIIDetector()

	text := "I support the budget proposal for the new park."
	result := d.Detect(text)

	assert.False(t, result.Detected)
	assert.Empty(t, result.Types)
	assert.Equal(t, text, result.RedactedText)
}

func TestPIIDetector_MultipleTypes(t *testing.T) {
	d := NewPIIDetector()

	result := d.Detect("Contact jane@example.com or 555-123-4567")

	assert.True(t, result.Detected)
	assert.Contains(t, result.Types, "email")
	assert.Contains(t, result.Types, "phone")
	assert.Equal(t, 2, strings.Count(result.RedactedText, RedactedToken))
}

func TestPIIDetector_OverlappingMatchesCollapse(t *testing.T) {
	d := NewPIIDetector()

	// A 9-digit run inside a credit card number also matches the ssn
	// pattern; overlapping spans must collapse into one token, never
	// produce nested or partial redactions.
	result := d.Detect("number 4111111111111111 on file")

	assert.True(t, result.Detected)
	assert.NotContains(t, result.RedactedText, "4111")
	assert.NotContains(t, result.RedactedText, RedactedToken+RedactedToken)
}

func TestPIIDetector_Idempotent(t *testing.T) {
	d := NewPIIDetector()

	first := d.Detect("Call 555-123-4567 now")
	second := d.Detect(first.RedactedText)

	assert.Equal(t, first.RedactedText, second.RedactedText)
}

func TestMergeSpans(t *testing.T) {
	tests := []struct {
		name string
		in   []span
		want []span
	}{
		{
			name: "disjoint stay separate",
			in:   []span{{0, 3}, {5, 8}},
			want: []span{{0, 3}, {5, 8}},
		},
		{
			name: "overlapping merge",
			in:   []span{{0, 5}, {3, 8}},
			want: []span{{0, 8}},
		},
		{
			name: "touching merge",
			in:   []span{{0, 5}, {5, 8}},
			want: []span{{0, 8}},
		},
		{
			name: "contained absorbed",
			in:   []span{{0, 10}, {2, 4}},
			want: []span{{0, 10}},
		},
		{
			name: "unsorted input",
			in:   []span{{5, 8}, {0, 3}},
			want: []span{{0, 3}, {5, 8}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergeSpans(tt.in))
		})
	}
}

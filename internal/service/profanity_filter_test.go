package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfanityFilter_Detects(t *testing.T) {
	f := NewProfanityFilter(nil)

	result := f.Filter("what an idiot plan")

	assert.True(t, result.Detected)
	assert.Equal(t, "what an "+RemovedToken+" plan", result.CleanedText)
}

func TestProfanityFilter_CaseInsensitive(t *testing.T) {
	f := NewProfanityFilter(nil)

	result := f.Filter("This is IDIOT behavior")

	assert.True(t, result.Detected)
	assert.NotContains(t, result.CleanedText, "IDIOT")
}

func TestProfanityFilter_WordBoundary(t *testing.T) {
	f := NewProfanityFilter([]string{"hell"})

	// "hello" embeds a blocked term but is not itself blocked
	result := f.Filter("hello neighbors")

	assert.False(t, result.Detected)
	assert.Equal(t, "hello neighbors", result.CleanedText)
}

func TestProfanityFilter_CleanText(t *testing.T) {
	f := NewProfanityFilter(nil)

	text := "I respectfully disagree with this proposal."
	result := f.Filter(text)

	assert.False(t, result.Detected)
	assert.Equal(t, text, result.CleanedText)
}

func TestProfanityFilter_Idempotent(t *testing.T) {
	f := NewProfanityFilter(nil)

	first := f.Filter("you idiot")
	second := f.Filter(first.CleanedText)

	assert.False(t, second.Detected)
	assert.Equal(t, first.CleanedText, second.CleanedText)
}

func TestProfanityFilter_CustomBlocklist(t *testing.T) {
	f := NewProfanityFilter([]string{"bananas"})

	result := f.Filter("this plan is bananas")

	assert.True(t, result.Detected)
	assert.NotContains(t, result.CleanedText, "bananas")

	// Default terms are not part of a custom list
	result = f.Filter("what an idiot plan")
	assert.False(t, result.Detected)
}

func TestNewProfanityFilterFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blocklist.txt")
	content := "# comment line\nfoo\n\n  bar  \n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	f, err := NewProfanityFilterFromFile(path)
	assert.NoError(t, err)

	assert.True(t, f.Filter("foo everywhere").Detected)
	assert.True(t, f.Filter("raise the BAR").Detected)
	assert.False(t, f.Filter("# comment line").Detected)
}

func TestNewProfanityFilterFromFile_Missing(t *testing.T) {
	_, err := NewProfanityFilterFromFile("/nonexistent/blocklist.txt")
	assert.Error(t, err)
}

func TestNewProfanityFilterFromFile_EmptyPath(t *testing.T) {
	f, err := NewProfanityFilterFromFile("")
	assert.NoError(t, err)

	// Falls back to the default list
	assert.True(t, f.Filter("you idiot").Detected)
}

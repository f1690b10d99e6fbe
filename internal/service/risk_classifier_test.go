package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopClassifier(t *testing.T) {
	c := NoopClassifier{}

	assert.False(t, c.Enabled())

	result, err := c.Classify(context.Background(), "anything at all")
	assert.NoError(t, err)
	assert.False(t, result.Flagged)
	assert.Zero(t, result.RiskFlags.Score)
}

func TestMapModerationResult_MaxScore(t *testing.T) {
	scores := map[string]float64{
		"harassment": 0.3,
		"violence":   0.85,
		"hate":       0.1,
	}

	result := mapModerationResult(true, map[string]bool{"violence": true}, scores)

	// The aggregate is the worst category, never an average
	assert.Equal(t, 0.85, result.RiskFlags.Score)
	assert.True(t, result.RiskFlags.Violence)
	assert.True(t, result.Flagged)
}

func TestMapModerationResult_CategoryFolding(t *testing.T) {
	categories := map[string]bool{
		"harassment/threatening": true,
		"self-harm/intent":       true,
		"sexual/minors":          true,
	}

	result := mapModerationResult(true, categories, nil)

	assert.True(t, result.RiskFlags.Harassment)
	assert.True(t, result.RiskFlags.Threat)
	assert.True(t, result.RiskFlags.SelfHarm)
	assert.True(t, result.RiskFlags.Sexual)
	assert.False(t, result.RiskFlags.Hate)
	assert.False(t, result.RiskFlags.Violence)
}

func TestMapModerationResult_CategoriesSorted(t *testing.T) {
	categories := map[string]bool{
		"violence":   true,
		"harassment": true,
		"hate":       false,
	}

	result := mapModerationResult(true, categories, nil)

	assert.Equal(t, []string{"harassment", "violence"}, result.Categories)
}

func TestOpenAIClassifier_Classify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/moderations", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "some comment text", body["input"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{
					"flagged":         true,
					"categories":      map[string]bool{"harassment": true},
					"category_scores": map[string]float64{"harassment": 0.92, "hate": 0.05},
				},
			},
		})
	}))
	defer server.Close()

	c := NewOpenAIClassifier(server.URL, "test-key", 5*time.Second)
	assert.True(t, c.Enabled())

	result, err := c.Classify(context.Background(), "some comment text")
	assert.NoError(t, err)
	assert.True(t, result.Flagged)
	assert.True(t, result.RiskFlags.Harassment)
	assert.Equal(t, 0.92, result.RiskFlags.Score)
}

func TestOpenAIClassifier_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	c := NewOpenAIClassifier(server.URL, "test-key", 5*time.Second)

	_, err := c.Classify(context.Background(), "text")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestOpenAIClassifier_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	c := NewOpenAIClassifier(server.URL, "test-key", 5*time.Second)

	_, err := c.Classify(context.Background(), "text")
	assert.Error(t, err)
}

func TestOpenAIClassifier_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	c := NewOpenAIClassifier(server.URL, "test-key", 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Classify(ctx, "text")
	assert.Error(t, err)
}

func TestOpenAIClassifier_DisabledWithoutKey(t *testing.T) {
	c := NewOpenAIClassifier("https://api.openai.com/v1", "", 0)
	assert.False(t, c.Enabled())
}

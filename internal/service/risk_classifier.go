package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/civicvoice/civicvoice-backend/internal/domain"
)

// Classification is the outcome of scoring text against the content
// classification capability.
type Classification struct {
	Flagged    bool
	Categories []string
	RiskFlags  domain.RiskFlags
}

// RiskClassifier scores text across harassment/threat/hate/self-harm/
// sexual/violence categories. Implementations must be safe for
// concurrent use.
type RiskClassifier interface {
	// Classify scores the text. Callers treat any error as
	// "not flagged, zero risk": classification failures must never
	// block comment submission.
	Classify(ctx context.Context, text string) (*Classification, error)
	// Enabled reports whether a real capability backs this classifier
	Enabled() bool
}

// NoopClassifier is the null implementation used when no API credential
// is configured. Moderation degrades to pattern-based-only.
type NoopClassifier struct{}

// Classify always returns an all-false, zero-score result
func (NoopClassifier) Classify(_ context.Context, _ string) (*Classification, error) {
	return &Classification{}, nil
}

// Enabled always reports false
func (NoopClassifier) Enabled() bool { return false }

// OpenAIClassifier adapts the OpenAI moderation endpoint to the
// RiskClassifier contract.
type OpenAIClassifier struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOpenAIClassifier creates a classifier against an OpenAI-compatible
// moderation endpoint. timeout bounds the remote call; zero means 10s.
func NewOpenAIClassifier(baseURL, apiKey string, timeout time.Duration) *OpenAIClassifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenAIClassifier{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Enabled reports whether an API credential is configured
func (c *OpenAIClassifier) Enabled() bool {
	return c.apiKey != ""
}

// moderationResponse is the wire shape of the moderation endpoint
type moderationResponse struct {
	Results []struct {
		Flagged        bool               `json:"flagged"`
		Categories     map[string]bool    `json:"categories"`
		CategoryScores map[string]float64 `json:"category_scores"`
	} `json:"results"`
}

// Classify calls the remote moderation endpoint and maps its categories
// onto the risk-flags structure. The aggregate score is the MAX across
// all category scores: the worst single category dominates.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (*Classification, error) {
	reqBody := map[string]interface{}{
		"input": text,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/moderations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moderation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read moderation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moderation API error (%d): %s", resp.StatusCode, truncateStr(string(respBody), 200))
	}

	var result moderationResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse moderation response: %w", err)
	}
	if len(result.Results) == 0 {
		return nil, fmt.Errorf("moderation response contained no results")
	}

	return mapModerationResult(result.Results[0].Flagged, result.Results[0].Categories, result.Results[0].CategoryScores), nil
}

// mapModerationResult folds the endpoint's fine-grained categories into
// the six risk flags and the aggregate max score.
func mapModerationResult(flagged bool, categories map[string]bool, scores map[string]float64) *Classification {
	flags := domain.RiskFlags{
		Harassment: categories["harassment"] || categories["harassment/threatening"],
		Threat:     categories["harassment/threatening"] || categories["violence/graphic"],
		Hate:       categories["hate"] || categories["hate/threatening"],
		SelfHarm:   categories["self-harm"] || categories["self-harm/intent"] || categories["self-harm/instructions"],
		Sexual:     categories["sexual"] || categories["sexual/minors"],
		Violence:   categories["violence"] || categories["violence/graphic"],
	}

	var flaggedCategories []string
	for name, hit := range categories {
		if hit {
			flaggedCategories = append(flaggedCategories, name)
		}
	}
	sort.Strings(flaggedCategories)

	for _, score := range scores {
		if score > flags.Score {
			flags.Score = score
		}
	}

	return &Classification{
		Flagged:    flagged,
		Categories: flaggedCategories,
		RiskFlags:  flags,
	}
}

// truncateStr truncates a string to maxLen bytes
func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

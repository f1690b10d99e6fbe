package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/civicvoice/civicvoice-backend/internal/domain"
	"github.com/civicvoice/civicvoice-backend/internal/repository"
	"github.com/civicvoice/civicvoice-backend/pkg/logger"
)

// reviewThreshold is the aggregate risk score above which a comment is
// flagged for manual review (and below the configured hide threshold).
const reviewThreshold = 0.4

// ModerationService runs the comment moderation pipeline: PII redaction,
// profanity filtering, risk classification, and the visibility decision.
// Moderate is pure with respect to storage; callers persist the result.
type ModerationService struct {
	pii        *PIIDetector
	profanity  *ProfanityFilter
	classifier RiskClassifier
	configRepo *repository.SystemConfigRepository
}

// NewModerationService creates a new ModerationService
func NewModerationService(
	pii *PIIDetector,
	profanity *ProfanityFilter,
	classifier RiskClassifier,
) *ModerationService {
	if classifier == nil {
		classifier = NoopClassifier{}
	}
	return &ModerationService{
		pii:        pii,
		profanity:  profanity,
		classifier: classifier,
	}
}

// SetConfigRepo sets the settings repository (optional dependency).
// Without it the service runs with default settings.
func (s *ModerationService) SetConfigRepo(repo *repository.SystemConfigRepository) {
	s.configRepo = repo
}

// Settings returns the stored moderation settings, falling back to the
// defaults when none are stored or the stored value cannot be parsed.
func (s *ModerationService) Settings() domain.ModerationSettings {
	settings := domain.DefaultModerationSettings()
	if s.configRepo == nil {
		return settings
	}
	cfg, err := s.configRepo.Get(domain.ConfigKeyModerationSettings)
	if err != nil {
		return settings
	}
	if err := json.Unmarshal([]byte(cfg.Value), &settings); err != nil {
		logger.Warn("invalid stored moderation settings, using defaults: %v", err)
		return domain.DefaultModerationSettings()
	}
	if settings.RiskThreshold <= 0 || settings.RiskThreshold > 1 {
		settings.RiskThreshold = 0.7
	}
	return settings
}

// SaveSettings persists moderation settings
func (s *ModerationService) SaveSettings(settings domain.ModerationSettings, updatedBy string) error {
	if s.configRepo == nil {
		return fmt.Errorf("settings storage not configured")
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.configRepo.Upsert(&domain.SystemConfig{
		Key:       domain.ConfigKeyModerationSettings,
		Value:     string(data),
		UpdatedBy: updatedBy,
	})
}

// Moderate runs the pipeline over a raw comment body. The steps are
// strictly ordered: PII redaction, then profanity filtering on the
// redacted text, then risk classification on the cleaned text.
//
// Moderate never fails: classifier errors degrade to zero risk, and an
// unexpected panic inside the pipeline yields a best-effort partial
// result with Processed=false. The comment is already durably saved
// before moderation runs; this is an enrichment step, not a gate.
func (s *ModerationService) Moderate(ctx context.Context, rawText string) (result domain.ModerationResult) {
	result = domain.ModerationResult{
		PublicBody:          rawText,
		SuggestedVisibility: domain.VisibilityVisible,
		Notes:               []string{},
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("moderation pipeline panic: %v", r)
			result.Notes = append(result.Notes, "Error during moderation processing")
			result.Processed = false
		}
	}()

	settings := s.Settings()

	// Step 1: PII detection and redaction
	if settings.PIIRedaction {
		piiResult := s.pii.Detect(rawText)
		result.PublicBody = piiResult.RedactedText
		result.PIIDetected = piiResult.Detected
		if piiResult.Detected {
			result.Notes = append(result.Notes,
				fmt.Sprintf("PII detected and redacted: %s", strings.Join(piiResult.Types, ", ")))
		}
	}

	// Step 2: profanity filtering on the redacted text
	if settings.ProfanityFilter {
		profanityResult := s.profanity.Filter(result.PublicBody)
		result.ProfanityDetected = profanityResult.Detected
		if profanityResult.Detected {
			result.PublicBody = profanityResult.CleanedText
			result.Notes = append(result.Notes, "Profanity detected and filtered")
		}
	}

	// Step 3: risk classification on the cleaned text
	if settings.AutoModerate && s.classifier.Enabled() {
		classification, err := s.classifier.Classify(ctx, result.PublicBody)
		if err != nil {
			// Degrade silently to pattern-based-only moderation.
			// Logged for operators, never surfaced to the submitter.
			logger.Warn("risk classification failed, continuing without it: %v", err)
			classification = &Classification{}
		}
		result.RiskFlags = classification.RiskFlags

		if classification.Flagged {
			result.Notes = append(result.Notes,
				fmt.Sprintf("AI flagged content: %s", strings.Join(classification.Categories, ", ")))

			switch {
			case classification.RiskFlags.Score > settings.RiskThreshold:
				result.SuggestedVisibility = domain.VisibilityHidden
				result.Notes = append(result.Notes, "Auto-hidden due to high risk score")
			case classification.RiskFlags.Score > reviewThreshold:
				result.SuggestedVisibility = domain.VisibilityPendingVisible
				result.Notes = append(result.Notes, "Flagged for manual review")
			}
		}
	}

	result.Processed = true
	return result
}

package analyses

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"resume-ats/internal/llm"
	"resume-ats/internal/shared/storage/object"
	"resume-ats/internal/shared/telemetry"
)

// MinImprovedChars is the shortest rewrite accepted from the model.
const MinImprovedChars = 50

var (
	errImprovedTooShort = errors.New("improved resume too short")

	fenceLine = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z0-9_-]*[ \t]*\r?\n?")
)

// Improvement is an ATS-friendly rewrite of a stored resume.
type Improvement struct {
	AnalysisID   string `json:"analysisId"`
	ImprovedText string `json:"improvedText"`
}

// Improve rewrites the stored resume text for the stored job. Nothing is
// persisted and the analysis record is left as it is.
func (s *Service) Improve(ctx context.Context, analysisID, userID string) (Improvement, error) {
	analysis, err := s.Get(ctx, analysisID, userID)
	if err != nil {
		return Improvement{}, err
	}
	if analysis.Status == StatusProcessing {
		return Improvement{}, fmt.Errorf("%w: analysis is still processing", ErrValidation)
	}
	if strings.TrimSpace(analysis.ResumeText) == "" {
		return Improvement{}, ErrNoResumeText
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	prompt := llm.BuildImprovePrompt(analysis.JobTitle, analysis.JobDescription, analysis.ResumeText)
	client := newRetryingLLM(s.llmClient(), analysis.ID, requestIDFromContext(ctx))
	raw, err := client.Generate(ctx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Improvement{}, fmt.Errorf("improve resume: %w", ctxErr)
		}
		return Improvement{}, fmt.Errorf("%w: %w", errLLMFailed, err)
	}

	text := cleanImproved(raw)
	if len([]rune(text)) < MinImprovedChars {
		return Improvement{}, fmt.Errorf("%w: got %d chars", errImprovedTooShort, len([]rune(text)))
	}

	telemetry.Info("analysis.improved", map[string]any{
		"request_id":   requestIDFromContext(ctx),
		"user_id":      userID,
		"analysis_id":  analysis.ID,
		"prompt_hash":  prompt.Hash(),
		"improved_len": len(text),
		"original_len": len(analysis.ResumeText),
	})
	return Improvement{AnalysisID: analysis.ID, ImprovedText: text}, nil
}

// Delete removes an analysis owned by userID together with its stored files.
func (s *Service) Delete(ctx context.Context, analysisID, userID string) error {
	analysis, err := s.Get(ctx, analysisID, userID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, analysis.ID, userID); err != nil {
		return err
	}
	s.deleteObjects(ctx, analysis)

	telemetry.Info("analysis.deleted", map[string]any{
		"request_id":  requestIDFromContext(ctx),
		"user_id":     userID,
		"analysis_id": analysis.ID,
	})
	return nil
}

// deleteObjects removes the upload and its text copy. Best effort.
func (s *Service) deleteObjects(ctx context.Context, analysis Analysis) {
	if s.Store == nil || analysis.StorageKey == "" {
		return
	}
	keys := []string{analysis.StorageKey}
	if textKey := object.TextKey(analysis.StorageKey); textKey != analysis.StorageKey {
		keys = append(keys, textKey)
	}
	for _, key := range keys {
		if err := s.Store.Delete(ctx, key); err != nil {
			telemetry.Warn("analysis.delete_object_failed", map[string]any{
				"analysis_id": analysis.ID,
				"key":         key,
				"error":       sanitizeError(err),
			})
		}
	}
}

// cleanImproved drops code fence markers and keeps what they wrapped.
func cleanImproved(raw string) string {
	text := fenceLine.ReplaceAllString(raw, "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

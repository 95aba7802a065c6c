package analyses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-ats/internal/extract"
	"resume-ats/internal/feedback"
	"resume-ats/internal/llm"
	"resume-ats/internal/ocr"
	"resume-ats/internal/quality"
	"resume-ats/internal/scoring"
	"resume-ats/internal/shared/metrics"
	"resume-ats/internal/shared/storage/object"
	"resume-ats/internal/shared/telemetry"
	"resume-ats/internal/textnorm"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultMaxUploadBytes = 10 << 20
	DefaultListLimit      = 20
	MaxListLimit          = 100
)

// Service runs the extraction, gating, feedback and scoring pipeline.
type Service struct {
	Repo           Repo
	Store          object.ObjectStore
	Extractor      *extract.Extractor
	OCR            ocr.Client
	LLM            llm.Client
	Timeout        time.Duration
	MaxUploadBytes int64
	Now            func() time.Time
}

// Input is one analysis request. Data holds an uploaded file; ResumeText is
// used when no file is given.
type Input struct {
	UserID         string
	JobTitle       string
	JobDescription string
	FileName       string
	MimeType       string
	Data           []byte
	ResumeText     string
}

// ReanalyzeInput overrides the job fields of a stored analysis. Nil keeps the stored value.
type ReanalyzeInput struct {
	JobTitle       *string
	JobDescription *string
}

// Preview is the deterministic keyword and formatting check without the model.
type Preview struct {
	Keywords         []string      `json:"keywords"`
	Matched          []string      `json:"matched"`
	Missing          []string      `json:"missing"`
	KeywordMatch     int           `json:"keywordMatch"`
	FormattingScore  int           `json:"formattingScore"`
	ExtractionSource string        `json:"extractionSource"`
	Stats            quality.Stats `json:"stats"`
}

// Analyze scores a resume against a job description and persists the result.
// On pipeline failure the failed record is persisted and a *FailureError is returned.
func (s *Service) Analyze(ctx context.Context, in Input) (Analysis, error) {
	if err := s.validate(in); err != nil {
		return Analysis{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	now := s.now()
	mimeType := in.MimeType
	if len(in.Data) > 0 {
		mimeType = extract.DetectMimeType(in.Data, in.MimeType, in.FileName)
	}
	analysis := Analysis{
		ID:             uuid.NewString(),
		UserID:         in.UserID,
		JobTitle:       strings.TrimSpace(in.JobTitle),
		JobDescription: strings.TrimSpace(in.JobDescription),
		FileName:       strings.TrimSpace(in.FileName),
		MimeType:       mimeType,
		Status:         StatusProcessing,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		return Analysis{}, fmt.Errorf("create analysis: %w", err)
	}
	metrics.IncAnalysisStarted()
	s.logStatus(ctx, analysis, "->processing", nil)

	if len(in.Data) > 0 {
		key, err := s.storeOriginal(ctx, analysis, in.Data)
		if err != nil {
			return s.fail(ctx, analysis, err)
		}
		analysis.StorageKey = key
	}

	text, source, err := s.resumeText(ctx, in)
	if err != nil {
		return s.fail(ctx, analysis, err)
	}
	analysis.ResumeText = text
	analysis.ExtractionSource = source

	return s.complete(ctx, analysis, now)
}

// Reanalyze reruns feedback and scoring on the stored resume text and
// replaces the previous feedback wholesale.
func (s *Service) Reanalyze(ctx context.Context, analysisID, userID string, in ReanalyzeInput) (Analysis, error) {
	analysis, err := s.Get(ctx, analysisID, userID)
	if err != nil {
		return Analysis{}, err
	}
	if analysis.Status == StatusProcessing {
		return Analysis{}, fmt.Errorf("%w: analysis is still processing", ErrValidation)
	}
	if strings.TrimSpace(analysis.ResumeText) == "" {
		return Analysis{}, ErrNoResumeText
	}
	if in.JobTitle != nil {
		analysis.JobTitle = strings.TrimSpace(*in.JobTitle)
	}
	if in.JobDescription != nil {
		jd := strings.TrimSpace(*in.JobDescription)
		if jd == "" {
			return Analysis{}, fmt.Errorf("%w: jobDescription is required", ErrValidation)
		}
		analysis.JobDescription = jd
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	start := s.now()
	analysis.Status = StatusProcessing
	analysis.Feedback = nil
	analysis.ErrorCode = nil
	analysis.ErrorMessage = nil
	analysis.UpdatedAt = start
	if err := s.Repo.Update(ctx, analysis); err != nil {
		return Analysis{}, fmt.Errorf("mark processing: %w", err)
	}
	metrics.IncAnalysisStarted()
	s.logStatus(ctx, analysis, "->processing", map[string]any{"reanalyze": true})

	if err := quality.CheckSufficient(analysis.ResumeText); err != nil {
		return s.fail(ctx, analysis, err)
	}
	return s.complete(ctx, analysis, start)
}

// Get returns an analysis owned by userID.
func (s *Service) Get(ctx context.Context, analysisID, userID string) (Analysis, error) {
	if strings.TrimSpace(analysisID) == "" {
		return Analysis{}, fmt.Errorf("%w: analysis id is required", ErrValidation)
	}
	analysis, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if analysis.UserID != userID {
		return Analysis{}, ErrNotFound
	}
	return analysis, nil
}

// List returns a user's analyses newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Analysis, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.Repo.ListByUser(ctx, userID, limit, 0)
}

// Preview runs extraction and the deterministic signals without calling the
// model or persisting anything.
func (s *Service) Preview(ctx context.Context, in Input) (Preview, error) {
	if err := s.validate(in); err != nil {
		return Preview{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	text, source, err := s.resumeText(ctx, in)
	if err != nil {
		return Preview{}, err
	}
	sig := scoring.Compute(text, in.JobDescription)
	return Preview{
		Keywords:         sig.Coverage.Keywords,
		Matched:          sig.Coverage.Matched,
		Missing:          sig.Coverage.Missing,
		KeywordMatch:     sig.Coverage.KeywordMatch,
		FormattingScore:  sig.StructureHeuristic,
		ExtractionSource: source,
		Stats:            quality.Measure(text),
	}, nil
}

func (s *Service) validate(in Input) error {
	if strings.TrimSpace(in.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(in.JobDescription) == "" {
		return fmt.Errorf("%w: jobDescription is required", ErrValidation)
	}
	if len(in.Data) == 0 && strings.TrimSpace(in.ResumeText) == "" {
		return fmt.Errorf("%w: a resume file or resumeText is required", ErrValidation)
	}
	if int64(len(in.Data)) > s.maxUploadBytes() {
		return fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxUploadBytes())
	}
	return nil
}

// resumeText produces the cleaned text that will be scored, falling back to
// OCR once when the extracted text fails the quality gate.
func (s *Service) resumeText(ctx context.Context, in Input) (string, string, error) {
	if len(in.Data) == 0 {
		text := textnorm.Clean(in.ResumeText)
		if err := quality.CheckSufficient(text); err != nil {
			return "", "", err
		}
		return text, SourcePasted, nil
	}

	res, err := s.extractor().Extract(ctx, in.Data, in.MimeType, in.FileName)
	if err != nil {
		return "", "", fmt.Errorf("extract %s: %w", in.FileName, err)
	}

	report := quality.Evaluate(textnorm.Clean(res.Text))
	text := report.Text
	source := SourceNative
	if report.Strict {
		source = SourceStrict
	}

	if report.NeedsOCR {
		metrics.IncQualityGateTriggered()
		telemetry.Info("analysis.quality_gate", map[string]any{
			"request_id":      requestIDFromContext(ctx),
			"mime_type":       res.MimeType,
			"pages":           res.Pages,
			"printable_ratio": report.Stats.PrintableRatio,
			"valid_words":     report.Stats.ValidWords,
			"strict":          report.Strict,
		})
		ocrText, ok, err := s.tryOCR(ctx, in.Data, res.MimeType)
		if err != nil {
			return "", "", err
		}
		if ok {
			text = ocrText
			source = SourceOCR
		}
	}

	if err := quality.CheckSufficient(text); err != nil {
		return "", "", err
	}
	return text, source, nil
}

// tryOCR makes the single OCR attempt. Only context errors are returned;
// OCR failures leave the extracted text in place.
func (s *Service) tryOCR(ctx context.Context, data []byte, mimeType string) (string, bool, error) {
	if s.OCR == nil {
		metrics.IncOCRFallback("skipped")
		return "", false, nil
	}
	raw, err := s.OCR.Recognize(ctx, data, mimeType)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, fmt.Errorf("ocr: %w", ctxErr)
		}
		result := "error"
		if errors.Is(err, ocr.ErrNotConfigured) {
			result = "skipped"
		}
		metrics.IncOCRFallback(result)
		telemetry.Warn("analysis.ocr_failed", map[string]any{
			"request_id": requestIDFromContext(ctx),
			"error":      sanitizeError(err),
		})
		return "", false, nil
	}
	text := textnorm.Clean(raw)
	if quality.CountValidWords(text) < quality.MinValidWords {
		metrics.IncOCRFallback("rejected")
		return "", false, nil
	}
	metrics.IncOCRFallback("accepted")
	return text, true, nil
}

func (s *Service) complete(ctx context.Context, analysis Analysis, start time.Time) (Analysis, error) {
	rec, promptHash, err := s.generateFeedback(ctx, analysis)
	if err != nil {
		return s.fail(ctx, analysis, err)
	}

	analysis.Status = StatusCompleted
	analysis.Feedback = &rec
	analysis.PromptHash = promptHash
	analysis.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, analysis); err != nil {
		return s.fail(ctx, analysis, fmt.Errorf("%w: save result: %w", errStorage, err))
	}
	s.storeText(ctx, analysis)

	duration := durationMs(start, analysis.UpdatedAt)
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(duration)
	s.logStatus(ctx, analysis, "processing->completed", map[string]any{
		"duration_ms":   duration,
		"overall_score": rec.OverallScore,
		"ats_score":     rec.ATS.Score,
		"keyword_match": rec.ATS.KeywordMatch,
		"source":        analysis.ExtractionSource,
	})
	return analysis, nil
}

func (s *Service) generateFeedback(ctx context.Context, analysis Analysis) (feedback.Record, string, error) {
	prompt := llm.BuildFeedbackPrompt(analysis.JobTitle, analysis.JobDescription, analysis.ResumeText)
	client := newRetryingLLM(s.llmClient(), analysis.ID, requestIDFromContext(ctx))

	raw, err := client.Generate(ctx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return feedback.Record{}, "", fmt.Errorf("generate feedback: %w", ctxErr)
		}
		return feedback.Record{}, "", fmt.Errorf("%w: %w", errLLMFailed, err)
	}

	ai, err := feedback.Parse(raw)
	if err != nil {
		metrics.IncAIMalformed()
		return feedback.Record{}, "", fmt.Errorf("parse feedback: %w", err)
	}

	rec := scoring.Blend(ai, analysis.ResumeText, analysis.JobDescription)
	if err := rec.Validate(); err != nil {
		return feedback.Record{}, "", fmt.Errorf("blended record invalid: %w", err)
	}
	return rec, prompt.Hash(), nil
}

func (s *Service) fail(ctx context.Context, analysis Analysis, cause error) (Analysis, error) {
	code := classifyFailure(cause)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		code = ErrorCodeTimeout
	}
	msg := publicMessage(code, cause)

	analysis.Status = StatusFailed
	analysis.Feedback = nil
	analysis.ErrorCode = &code
	analysis.ErrorMessage = &msg
	analysis.UpdatedAt = s.now()

	// The request context may already be past its deadline.
	if err := s.Repo.Update(context.WithoutCancel(ctx), analysis); err != nil {
		telemetry.Error("analysis.persist_failure", map[string]any{
			"analysis_id": analysis.ID,
			"error":       sanitizeError(err),
			"cause":       sanitizeError(cause),
		})
	}
	metrics.IncAnalysisFailed(code)
	metrics.ObserveAnalysisDurationMs(durationMs(analysis.CreatedAt, analysis.UpdatedAt))
	s.logStatus(ctx, analysis, "processing->failed", map[string]any{
		"error_code": code,
		"error":      sanitizeError(cause),
	})
	return analysis, &FailureError{AnalysisID: analysis.ID, Code: code, Message: msg, Err: cause}
}

func (s *Service) storeOriginal(ctx context.Context, analysis Analysis, data []byte) (string, error) {
	if s.Store == nil {
		return "", nil
	}
	name := analysis.FileName
	if name == "" {
		name = "resume"
	}
	key, err := object.AnalysisKey(analysis.UserID, analysis.ID, name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	contentType := analysis.MimeType
	if contentType == "" {
		contentType = object.DetectContentType(data)
	}
	if _, err := s.Store.Put(ctx, key, contentType, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("%w: store original: %w", errStorage, err)
	}
	return key, nil
}

// storeText keeps a copy of the scored text next to the upload. Best effort.
func (s *Service) storeText(ctx context.Context, analysis Analysis) {
	if s.Store == nil || analysis.StorageKey == "" {
		return
	}
	key := object.TextKey(analysis.StorageKey)
	if key == analysis.StorageKey {
		return
	}
	if _, err := s.Store.Put(ctx, key, "text/plain; charset=utf-8", strings.NewReader(analysis.ResumeText)); err != nil {
		telemetry.Warn("analysis.store_text_failed", map[string]any{
			"analysis_id": analysis.ID,
			"key":         key,
			"error":       sanitizeError(err),
		})
	}
}

func (s *Service) logStatus(ctx context.Context, analysis Analysis, transition string, extra map[string]any) {
	fields := map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"user_id":           analysis.UserID,
		"analysis_id":       analysis.ID,
		"status":            analysis.Status,
		"status_transition": transition,
	}
	for k, v := range extra {
		fields[k] = v
	}
	telemetry.Info("analysis.status", fields)
}

func (s *Service) extractor() *extract.Extractor {
	if s.Extractor == nil {
		return &extract.Extractor{}
	}
	return s.Extractor
}

func (s *Service) llmClient() llm.Client {
	if s.LLM == nil {
		return llm.PlaceholderClient{}
	}
	return s.LLM
}

func (s *Service) timeout() time.Duration {
	if s.Timeout <= 0 {
		return DefaultTimeout
	}
	return s.Timeout
}

func (s *Service) maxUploadBytes() int64 {
	if s.MaxUploadBytes <= 0 {
		return DefaultMaxUploadBytes
	}
	return s.MaxUploadBytes
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func durationMs(start, end time.Time) float64 {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	return float64(end.Sub(start).Microseconds()) / 1000.0
}

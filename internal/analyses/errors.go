package analyses

import (
	"context"
	"errors"
	"strings"

	"resume-ats/internal/extract"
	"resume-ats/internal/feedback"
	"resume-ats/internal/quality"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrFileTooLarge = errors.New("file too large")
	ErrNoResumeText = errors.New("analysis has no stored resume text")

	errStorage   = errors.New("storage error")
	errLLMFailed = errors.New("llm request failed")
)

const (
	ErrorCodeExtraction          = "EXTRACTION_FAILED"
	ErrorCodeInsufficientContent = "INSUFFICIENT_CONTENT"
	ErrorCodeAIMalformed         = "AI_RESPONSE_MALFORMED"
	ErrorCodeTimeout             = "TIMEOUT"
	ErrorCodeLLMFailed           = "LLM_FAILED"
	ErrorCodeValidation          = "VALIDATION_ERROR"
	ErrorCodeStorage             = "STORAGE_ERROR"
	ErrorCodeInternal            = "INTERNAL_ERROR"
)

// classifyFailure maps a pipeline error to its persisted error code.
func classifyFailure(err error) string {
	switch {
	case err == nil:
		return ErrorCodeInternal
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorCodeTimeout
	case errors.Is(err, extract.ErrUnsupportedFormat), errors.Is(err, extract.ErrCorruptedFile):
		return ErrorCodeExtraction
	case errors.Is(err, quality.ErrInsufficientContent):
		return ErrorCodeInsufficientContent
	case errors.Is(err, feedback.ErrMalformed), errors.Is(err, errImprovedTooShort):
		return ErrorCodeAIMalformed
	case errors.Is(err, errLLMFailed):
		return ErrorCodeLLMFailed
	case errors.Is(err, ErrValidation), errors.Is(err, ErrFileTooLarge), errors.Is(err, ErrNoResumeText):
		return ErrorCodeValidation
	case errors.Is(err, errStorage):
		return ErrorCodeStorage
	default:
		return ErrorCodeInternal
	}
}

// publicMessage is the single human-readable failure string shown to callers.
// Extraction errors are surfaced as they are.
func publicMessage(code string, err error) string {
	switch code {
	case ErrorCodeExtraction, ErrorCodeValidation:
		return sanitizeError(err)
	case ErrorCodeInsufficientContent:
		return "No readable text could be extracted from the document"
	case ErrorCodeAIMalformed:
		return "The feedback service returned an unreadable response"
	case ErrorCodeTimeout:
		return "Analysis timed out"
	case ErrorCodeLLMFailed:
		return "The feedback service is unavailable"
	case ErrorCodeStorage:
		return "Failed to store the analysis"
	default:
		return "Unexpected error during analysis"
	}
}

// FailureError is returned by Analyze and Reanalyze when the pipeline fails
// after the analysis record was created.
type FailureError struct {
	AnalysisID string
	Code       string
	Message    string
	Err        error
}

func (e *FailureError) Error() string {
	return e.Code + ": " + sanitizeError(e.Err)
}

func (e *FailureError) Unwrap() error { return e.Err }

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}

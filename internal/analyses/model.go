package analyses

import (
	"time"

	"resume-ats/internal/feedback"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Where the scored resume text came from.
const (
	SourceNative = "native"
	SourceStrict = "strict"
	SourceOCR    = "ocr"
	SourcePasted = "pasted"
)

// Analysis is one scored resume against one job description.
type Analysis struct {
	ID               string           `json:"id"`
	UserID           string           `json:"userId"`
	JobTitle         string           `json:"jobTitle"`
	JobDescription   string           `json:"jobDescription"`
	FileName         string           `json:"fileName,omitempty"`
	MimeType         string           `json:"mimeType,omitempty"`
	StorageKey       string           `json:"-"`
	ResumeText       string           `json:"-"`
	ExtractionSource string           `json:"extractionSource,omitempty"`
	PromptHash       string           `json:"-"`
	Status           string           `json:"status"`
	Feedback         *feedback.Record `json:"feedback,omitempty"`
	ErrorCode        *string          `json:"errorCode,omitempty"`
	ErrorMessage     *string          `json:"errorMessage,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

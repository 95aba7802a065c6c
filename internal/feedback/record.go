// Package feedback defines the analysis result returned to callers and the
// partial shape decoded from the feedback model's reply.
package feedback

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	TipGood    = "good"
	TipImprove = "improve"
)

// Tip is one piece of qualitative advice produced by the model.
type Tip struct {
	Type        string `json:"type" validate:"oneof=good improve"`
	Tip         string `json:"tip"`
	Explanation string `json:"explanation,omitempty"`
	Priority    string `json:"priority,omitempty" validate:"omitempty,oneof=high medium low"`
}

// UnmarshalJSON accepts either a tip object or a bare string. Unknown types
// become "improve" and unknown priorities are dropped.
func (t *Tip) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Tip{Type: TipImprove, Tip: strings.TrimSpace(s)}
		return nil
	}
	type rawTip Tip
	var r rawTip
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*t = Tip(r)
	t.Type = strings.ToLower(strings.TrimSpace(t.Type))
	if t.Type != TipGood {
		t.Type = TipImprove
	}
	switch p := strings.ToLower(strings.TrimSpace(t.Priority)); p {
	case "high", "medium", "low":
		t.Priority = p
	default:
		t.Priority = ""
	}
	return nil
}

// Category is a scored feedback section.
type Category struct {
	Score int   `json:"score" validate:"min=0,max=100"`
	Tips  []Tip `json:"tips" validate:"dive"`
}

// ATS is the applicant-tracking section with the computed keyword coverage.
type ATS struct {
	Score           int      `json:"score" validate:"min=20,max=98"`
	KeywordMatch    int      `json:"keywordMatch" validate:"min=0,max=100"`
	MissingKeywords []string `json:"missingKeywords" validate:"max=20"`
	Tips            []Tip    `json:"tips" validate:"dive"`
}

// Record is the externally visible result of one analysis.
type Record struct {
	OverallScore      int      `json:"overallScore" validate:"min=30,max=98"`
	OverallAssessment string   `json:"overallAssessment" validate:"required"`
	ATS               ATS      `json:"ATS"`
	ToneAndStyle      Category `json:"toneAndStyle"`
	Content           Category `json:"content"`
	Structure         Category `json:"structure"`
	Skills            Category `json:"skills"`
}

var validate = validator.New()

// Validate checks the score bounds and tip shapes of a finished record.
func (r Record) Validate() error {
	return validate.Struct(r)
}

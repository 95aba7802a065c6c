package feedback

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Score is a model-supplied number. Numeric strings such as "85" or "85%"
// are accepted.
type Score float64

func (s *Score) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		str = strings.TrimSuffix(strings.TrimSpace(str), "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return fmt.Errorf("score %q is not a number", str)
		}
		*s = Score(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*s = Score(f)
	return nil
}

// Value returns the score, or def when it was not supplied.
func (s *Score) Value(def float64) float64 {
	if s == nil {
		return def
	}
	return float64(*s)
}

// AICategory is a section as the model returned it.
type AICategory struct {
	Score *Score `json:"score"`
	Tips  []Tip  `json:"tips"`
}

// AIResult is the partial record decoded from the model. Only the overall
// score and assessment are required; every other field may be absent.
type AIResult struct {
	OverallScore      *Score      `json:"overallScore" validate:"required"`
	OverallAssessment *string     `json:"overallAssessment" validate:"required"`
	ATS               *AICategory `json:"ATS"`
	ToneAndStyle      *AICategory `json:"toneAndStyle"`
	Content           *AICategory `json:"content"`
	Structure         *AICategory `json:"structure"`
	Skills            *AICategory `json:"skills"`
}

// Assessment returns the trimmed overall assessment.
func (r AIResult) Assessment() string {
	if r.OverallAssessment == nil {
		return ""
	}
	return strings.TrimSpace(*r.OverallAssessment)
}

// SectionScore returns c.Score or def.
func SectionScore(c *AICategory, def float64) float64 {
	if c == nil {
		return def
	}
	return c.Score.Value(def)
}

// SectionTips returns a copy of c.Tips, never nil.
func SectionTips(c *AICategory) []Tip {
	if c == nil || len(c.Tips) == 0 {
		return []Tip{}
	}
	return append([]Tip(nil), c.Tips...)
}

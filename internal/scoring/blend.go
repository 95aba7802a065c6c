// Package scoring blends the model's scores with deterministic keyword and
// formatting signals into the final feedback record.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"resume-ats/internal/feedback"
	"resume-ats/internal/keywords"
	"resume-ats/internal/quality"
)

const (
	DefaultSectionScore = 60.0

	atsWeightAI        = 0.6
	atsWeightKeywords  = 0.25
	atsWeightStructure = 0.15

	overallWeightATS       = 0.5
	overallWeightContent   = 0.2
	overallWeightStructure = 0.15
	overallWeightTone      = 0.15

	minATS     = 20
	maxATS     = 98
	minOverall = 30
	maxOverall = 98

	rationaleMissing = 6
)

// Signals are the deterministic inputs computed from the resume and job description.
type Signals struct {
	Coverage           keywords.Coverage
	StructureHeuristic int
}

// Compute derives Signals for one resume and job description.
func Compute(resumeText, jobDescription string) Signals {
	return Signals{
		Coverage:           keywords.Analyze(resumeText, jobDescription),
		StructureHeuristic: quality.AssessFormatting(resumeText),
	}
}

// Blend combines the model result with keyword coverage and the formatting
// heuristic. Tips and other model text pass through untouched.
func Blend(ai feedback.AIResult, resumeText, jobDescription string) feedback.Record {
	return BlendSignals(ai, Compute(resumeText, jobDescription))
}

// BlendSignals is Blend with precomputed signals.
func BlendSignals(ai feedback.AIResult, sig Signals) feedback.Record {
	aiOverall := clampFloat(ai.OverallScore.Value(DefaultSectionScore))
	aiATS := clampFloat(feedback.SectionScore(ai.ATS, aiOverall))
	content := clampFloat(feedback.SectionScore(ai.Content, DefaultSectionScore))
	tone := clampFloat(feedback.SectionScore(ai.ToneAndStyle, DefaultSectionScore))
	structure := clampFloat(feedback.SectionScore(ai.Structure, DefaultSectionScore))
	skills := clampFloat(feedback.SectionScore(ai.Skills, DefaultSectionScore))

	keywordMatch := sig.Coverage.KeywordMatch
	heuristic := float64(sig.StructureHeuristic)

	ats := clamp(round(atsWeightAI*aiATS+atsWeightKeywords*float64(keywordMatch)+atsWeightStructure*heuristic), minATS, maxATS)
	overall := clamp(round(overallWeightATS*float64(ats)+overallWeightContent*content+overallWeightStructure*structure+overallWeightTone*tone), minOverall, maxOverall)

	assessment := ai.Assessment()
	if assessment == "" {
		assessment = Rationale(keywordMatch, sig.Coverage.Missing)
	}

	missing := append([]string{}, sig.Coverage.Missing...)
	if len(missing) > keywords.MaxMissing {
		missing = missing[:keywords.MaxMissing]
	}

	return feedback.Record{
		OverallScore:      overall,
		OverallAssessment: assessment,
		ATS: feedback.ATS{
			Score:           ats,
			KeywordMatch:    clamp(keywordMatch, 0, 100),
			MissingKeywords: missing,
			Tips:            feedback.SectionTips(ai.ATS),
		},
		ToneAndStyle: category(tone, ai.ToneAndStyle),
		Content:      category(content, ai.Content),
		Structure:    category((structure+heuristic)/2, ai.Structure),
		Skills:       category(skills, ai.Skills),
	}
}

// Rationale is the fallback assessment used when the model gives none.
func Rationale(keywordMatch int, missing []string) string {
	if len(missing) == 0 {
		return fmt.Sprintf("Keyword match %d%%. Good coverage.", keywordMatch)
	}
	if len(missing) > rationaleMissing {
		missing = missing[:rationaleMissing]
	}
	return fmt.Sprintf("Keyword match %d%%. Missing: %s.", keywordMatch, strings.Join(missing, ", "))
}

func category(score float64, c *feedback.AICategory) feedback.Category {
	return feedback.Category{Score: clamp(round(score), 0, 100), Tips: feedback.SectionTips(c)}
}

func round(v float64) int {
	return int(math.Round(v))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultSectionScore
	}
	return math.Max(0, math.Min(100, v))
}

package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-ats/internal/feedback"
	"resume-ats/internal/keywords"
)

func score(v float64) *feedback.Score {
	s := feedback.Score(v)
	return &s
}

func str(s string) *string { return &s }

const (
	resume = "Experienced Python developer. Built APIs using Flask and PostgreSQL."
	job    = "Looking for Python, Flask, Docker, AWS, and Kubernetes experience."
)

func TestBlendWeights(t *testing.T) {
	ai := feedback.AIResult{
		OverallScore:      score(80),
		OverallAssessment: str("Strong fit."),
		ATS:               &feedback.AICategory{Score: score(70), Tips: []feedback.Tip{{Type: feedback.TipImprove, Tip: "Add Docker"}}},
		ToneAndStyle:      &feedback.AICategory{Score: score(80)},
		Content:           &feedback.AICategory{Score: score(80)},
		Structure:         &feedback.AICategory{Score: score(70)},
		Skills:            &feedback.AICategory{Score: score(85)},
	}
	sig := Signals{
		Coverage:           keywords.Coverage{KeywordMatch: 40, Missing: []string{"docker", "aws", "kubernetes"}},
		StructureHeuristic: 75,
	}

	rec := BlendSignals(ai, sig)
	// 0.6*70 + 0.25*40 + 0.15*75 = 63.25
	assert.Equal(t, 63, rec.ATS.Score)
	// 0.5*63 + 0.2*80 + 0.15*70 + 0.15*80 = 70
	assert.Equal(t, 70, rec.OverallScore)
	assert.Equal(t, 40, rec.ATS.KeywordMatch)
	assert.Equal(t, []string{"docker", "aws", "kubernetes"}, rec.ATS.MissingKeywords)
	assert.Equal(t, "Strong fit.", rec.OverallAssessment)
	// (70 + 75) / 2 = 72.5
	assert.Equal(t, 73, rec.Structure.Score)
	assert.Equal(t, 80, rec.ToneAndStyle.Score)
	assert.Equal(t, 85, rec.Skills.Score)
	assert.Equal(t, ai.ATS.Tips, rec.ATS.Tips)
	require.NoError(t, rec.Validate())
}

func TestBlendDefaultsForPartialPayload(t *testing.T) {
	ai := feedback.AIResult{OverallScore: score(50), OverallAssessment: str("")}
	sig := Signals{Coverage: keywords.Coverage{KeywordMatch: 100, Missing: []string{}}, StructureHeuristic: 100}

	rec := BlendSignals(ai, sig)
	// ATS falls back to the overall score: 0.6*50 + 25 + 15 = 70
	assert.Equal(t, 70, rec.ATS.Score)
	// 0.5*70 + 0.2*60 + 0.15*60 + 0.15*60 = 65
	assert.Equal(t, 65, rec.OverallScore)
	assert.Equal(t, 60, rec.Content.Score)
	assert.Equal(t, 80, rec.Structure.Score)
	assert.Equal(t, "Keyword match 100%. Good coverage.", rec.OverallAssessment)
	assert.NotNil(t, rec.ATS.Tips)
	assert.NotNil(t, rec.Skills.Tips)
	assert.NotNil(t, rec.ATS.MissingKeywords)
}

func TestBlendEndToEnd(t *testing.T) {
	ai := feedback.AIResult{OverallScore: score(70), OverallAssessment: str("  ")}
	rec := Blend(ai, resume, job)

	assert.Equal(t, 40, rec.ATS.KeywordMatch)
	assert.ElementsMatch(t, []string{"docker", "aws", "kubernetes"}, rec.ATS.MissingKeywords)
	assert.True(t, strings.HasPrefix(rec.OverallAssessment, "Keyword match 40%. Missing: "))
	// Short resume: formatting heuristic is 75. 0.6*70 + 0.25*40 + 0.15*75 = 63.25
	assert.Equal(t, 63, rec.ATS.Score)
}

func TestBlendScoreBounds(t *testing.T) {
	extremes := []float64{-50, 0, 100, 1000}
	for _, a := range extremes {
		for _, c := range extremes {
			for _, match := range []int{0, 100} {
				for _, heuristic := range []int{20, 100} {
					ai := feedback.AIResult{
						OverallScore:      score(a),
						OverallAssessment: str("x"),
						ATS:               &feedback.AICategory{Score: score(a)},
						Content:           &feedback.AICategory{Score: score(c)},
						ToneAndStyle:      &feedback.AICategory{Score: score(c)},
						Structure:         &feedback.AICategory{Score: score(c)},
					}
					rec := BlendSignals(ai, Signals{Coverage: keywords.Coverage{KeywordMatch: match}, StructureHeuristic: heuristic})
					assert.GreaterOrEqual(t, rec.ATS.Score, 20)
					assert.LessOrEqual(t, rec.ATS.Score, 98)
					assert.GreaterOrEqual(t, rec.OverallScore, 30)
					assert.LessOrEqual(t, rec.OverallScore, 98)
					assert.GreaterOrEqual(t, rec.Structure.Score, 0)
					assert.LessOrEqual(t, rec.Structure.Score, 100)
				}
			}
		}
	}
}

func TestRationale(t *testing.T) {
	assert.Equal(t, "Keyword match 90%. Good coverage.", Rationale(90, nil))
	assert.Equal(t, "Keyword match 40%. Missing: docker, aws.", Rationale(40, []string{"docker", "aws"}))
	assert.Equal(t,
		"Keyword match 10%. Missing: a, b, c, d, e, f.",
		Rationale(10, []string{"a", "b", "c", "d", "e", "f", "g", "h"}))
}

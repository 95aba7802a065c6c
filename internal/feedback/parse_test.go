package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullReply = `{
  "overallScore": 78,
  "overallAssessment": "Solid backend profile.",
  "ATS": {"score": 70, "tips": [{"type": "improve", "tip": "Add Docker", "priority": "HIGH"}]},
  "toneAndStyle": {"score": 80, "tips": [{"type": "good", "tip": "Clear voice", "explanation": "Active verbs."}]},
  "content": {"score": "75", "tips": []},
  "structure": {"score": 65, "tips": ["Use section headers"]},
  "skills": {"score": 72, "tips": [{"type": "weird", "tip": "List frameworks", "priority": "urgent"}]}
}`

func TestParseFullReply(t *testing.T) {
	res, err := Parse(fullReply)
	require.NoError(t, err)

	assert.Equal(t, 78.0, res.OverallScore.Value(0))
	assert.Equal(t, "Solid backend profile.", res.Assessment())
	assert.Equal(t, 70.0, SectionScore(res.ATS, 0))
	assert.Equal(t, 75.0, SectionScore(res.Content, 0))

	require.Len(t, res.ATS.Tips, 1)
	assert.Equal(t, "high", res.ATS.Tips[0].Priority)
	assert.Equal(t, Tip{Type: TipImprove, Tip: "Use section headers"}, res.Structure.Tips[0])
	assert.Equal(t, Tip{Type: TipImprove, Tip: "List frameworks"}, res.Skills.Tips[0])
	assert.Equal(t, "Active verbs.", res.ToneAndStyle.Tips[0].Explanation)
}

func TestParseSanitizes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "code fence", raw: "```json\n{\"overallScore\": 61, \"overallAssessment\": \"ok\"}\n```"},
		{name: "prose around", raw: "Sure! Here is the analysis:\n{\"overallScore\": 61, \"overallAssessment\": \"ok\"}\nHope it helps."},
		{name: "trailing commas", raw: `{"overallScore": 61, "overallAssessment": "ok", "skills": {"score": 50, "tips": [],},}`},
		{name: "percent string", raw: `{"overallScore": "61%", "overallAssessment": "ok"}`},
		{name: "two objects", raw: `{"overallScore": 61, "overallAssessment": "ok"} and also {"note": "x"}`},
		{name: "braces in strings", raw: `noise {"overallScore": 61, "overallAssessment": "use {curly} braces"} trailing }`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Parse(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, 61.0, res.OverallScore.Value(0))
		})
	}
}

func TestParseMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "no json", raw: "I cannot help with that."},
		{name: "broken json", raw: `{"overallScore": 61, "overallAssessment": }`},
		{name: "missing score", raw: `{"overallAssessment": "ok"}`},
		{name: "missing assessment", raw: `{"overallScore": 70}`},
		{name: "null score", raw: `{"overallScore": null, "overallAssessment": "ok"}`},
		{name: "non numeric score", raw: `{"overallScore": "great", "overallAssessment": "ok"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.raw)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParseAllowsEmptyAssessment(t *testing.T) {
	res, err := Parse(`{"overallScore": 50, "overallAssessment": ""}`)
	require.NoError(t, err)
	assert.Equal(t, "", res.Assessment())
	assert.Nil(t, res.Content)
	assert.Equal(t, 60.0, SectionScore(res.Content, 60))
	assert.Equal(t, []Tip{}, SectionTips(res.Content))
}

func TestRecordValidate(t *testing.T) {
	rec := Record{
		OverallScore:      70,
		OverallAssessment: "fine",
		ATS:               ATS{Score: 60, KeywordMatch: 40, MissingKeywords: []string{"aws"}, Tips: []Tip{{Type: TipGood, Tip: "x"}}},
		ToneAndStyle:      Category{Score: 60, Tips: []Tip{}},
		Content:           Category{Score: 60, Tips: []Tip{}},
		Structure:         Category{Score: 60, Tips: []Tip{}},
		Skills:            Category{Score: 60, Tips: []Tip{}},
	}
	require.NoError(t, rec.Validate())

	bad := rec
	bad.ATS.Score = 99
	assert.Error(t, bad.Validate())

	bad = rec
	bad.OverallScore = 20
	assert.Error(t, bad.Validate())
}

func TestParseKeepsCommasInsideStrings(t *testing.T) {
	res, err := Parse(`{"overallScore": 61, "overallAssessment": "x, }", "skills": {"score": 50, "tips": ["a, ]",],},}`)
	require.NoError(t, err)
	assert.Equal(t, "x, }", res.Assessment())
	require.NotNil(t, res.Skills)
	require.Len(t, res.Skills.Tips, 1)
	assert.Equal(t, "a, ]", res.Skills.Tips[0].Tip)
}

func TestStripTrailingCommas(t *testing.T) {
	cases := map[string]string{
		`{"a": 1,}`:               `{"a": 1}`,
		"[1, 2,\n ]":              "[1, 2\n ]",
		`{"a": "b,}", "c": [1,]}`: `{"a": "b,}", "c": [1]}`,
		`{"a": "q\",]",}`:         `{"a": "q\",]"}`,
		`{"a": 1, "b": 2}`:        `{"a": 1, "b": 2}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, stripTrailingCommas(in), in)
	}
}

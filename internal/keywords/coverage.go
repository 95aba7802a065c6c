package keywords

import "math"

// MaxMissing bounds the missing keyword list.
const MaxMissing = 20

// MatchResult is the presence decision for one keyword.
type MatchResult struct {
	Keyword string `json:"keyword"`
	Present bool   `json:"present"`
}

// Coverage summarizes how much of a job description's keyword set a resume covers.
type Coverage struct {
	Keywords     []string      `json:"keywords"`
	Results      []MatchResult `json:"results"`
	Matched      []string      `json:"matched"`
	Missing      []string      `json:"missing"`
	KeywordMatch int           `json:"keywordMatch"`
}

// Analyze extracts the job description's keywords and matches each one
// against the resume.
func Analyze(resumeText, jobDescription string) Coverage {
	return Match(resumeText, Extract(jobDescription))
}

// Match checks an existing keyword set against a resume.
func Match(resumeText string, kws []string) Coverage {
	m := NewMatcher(resumeText)
	cov := Coverage{
		Keywords: append([]string{}, kws...),
		Results:  make([]MatchResult, 0, len(kws)),
		Matched:  []string{},
		Missing:  []string{},
	}
	for _, kw := range kws {
		present := m.IsPresent(kw)
		cov.Results = append(cov.Results, MatchResult{Keyword: kw, Present: present})
		if present {
			cov.Matched = append(cov.Matched, kw)
		} else if len(cov.Missing) < MaxMissing {
			cov.Missing = append(cov.Missing, kw)
		}
	}
	cov.KeywordMatch = Percent(len(cov.Matched), len(kws))
	return cov
}

// Percent returns round(100*present/max(1,total)).
func Percent(present, total int) int {
	if total < 1 {
		total = 1
	}
	return int(math.Round(100 * float64(present) / float64(total)))
}

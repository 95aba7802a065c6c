package llm

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"strings"
)

var (
	//go:embed prompts/feedback_system.txt
	feedbackSystem string
	//go:embed prompts/feedback_user.txt
	feedbackUser string
	//go:embed prompts/feedback_format.txt
	feedbackFormat string
	//go:embed prompts/improve_system.txt
	improveSystem string
	//go:embed prompts/improve_user.txt
	improveUser string
)

// MaxResumeChars bounds the resume text placed in a prompt.
const MaxResumeChars = 24000

// BuildFeedbackPrompt renders the feedback prompt for one resume.
func BuildFeedbackPrompt(jobTitle, jobDescription, resumeText string) Prompt {
	system := strings.NewReplacer("{{FORMAT}}", strings.TrimSpace(feedbackFormat)).Replace(feedbackSystem)
	return Prompt{
		System: strings.TrimSpace(system),
		User:   renderJobPrompt(feedbackUser, jobTitle, jobDescription, resumeText),
	}
}

// BuildImprovePrompt renders the prompt that rewrites a resume for one job.
func BuildImprovePrompt(jobTitle, jobDescription, resumeText string) Prompt {
	return Prompt{
		System: strings.TrimSpace(improveSystem),
		User:   renderJobPrompt(improveUser, jobTitle, jobDescription, resumeText),
	}
}

func renderJobPrompt(tmpl, jobTitle, jobDescription, resumeText string) string {
	title := strings.TrimSpace(jobTitle)
	if title == "" {
		title = "Not specified"
	}
	jd := strings.TrimSpace(jobDescription)
	if jd == "" {
		jd = "Not provided"
	}
	resume := strings.TrimSpace(resumeText)
	if r := []rune(resume); len(r) > MaxResumeChars {
		resume = string(r[:MaxResumeChars])
	}
	user := strings.NewReplacer(
		"{{JOB_TITLE}}", title,
		"{{JOB_DESCRIPTION}}", jd,
		"{{RESUME_TEXT}}", resume,
	).Replace(tmpl)
	return strings.TrimSpace(user)
}

// Text joins the system and user parts for providers without a system role.
func (p Prompt) Text() string {
	if p.System == "" {
		return p.User
	}
	return p.System + "\n\n" + p.User
}

// Hash is a stable fingerprint of the prompt, used in logs.
func (p Prompt) Hash() string {
	sum := sha256.Sum256([]byte(p.System + "\x00" + p.User))
	return hex.EncodeToString(sum[:8])
}

package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"resume-ats/internal/llm"
)

type call struct {
	model  string
	config *genai.GenerateContentConfig
	text   string
}

type fakeModels struct {
	calls     []call
	responses map[string]*genai.GenerateContentResponse
	errs      map[string]error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var text string
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		text = contents[0].Parts[0].Text
	}
	f.calls = append(f.calls, call{model: model, config: config, text: text})
	if err := f.errs[model]; err != nil {
		return nil, err
	}
	return f.responses[model], nil
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGenerateUsesFirstModel(t *testing.T) {
	fake := &fakeModels{responses: map[string]*genai.GenerateContentResponse{
		"gemini-2.5-flash": textResponse(`{"overallScore": 70}`),
	}}
	c := newClient(fake, modelChain("", nil))

	out, err := c.Generate(context.Background(), llm.Prompt{System: "sys", User: "user"})
	require.NoError(t, err)
	assert.Equal(t, `{"overallScore": 70}`, out)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "gemini-2.5-flash", fake.calls[0].model)
	assert.Equal(t, "user", fake.calls[0].text)
	require.NotNil(t, fake.calls[0].config.SystemInstruction)
	assert.Equal(t, "sys", fake.calls[0].config.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "application/json", fake.calls[0].config.ResponseMIMEType)
}

func TestGenerateFallsBackThroughModels(t *testing.T) {
	fake := &fakeModels{
		errs: map[string]error{
			"gemini-2.5-flash": genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE"},
		},
		responses: map[string]*genai.GenerateContentResponse{
			"gemini-1.5-flash": textResponse("  "),
			"gemini-1.5-pro":   textResponse("part one", "part two"),
		},
	}
	c := newClient(fake, modelChain("", nil))

	out, err := c.Generate(context.Background(), llm.Prompt{User: "user"})
	require.NoError(t, err)
	assert.Equal(t, "part one\npart two", out)
	require.Len(t, fake.calls, 3)
	assert.Nil(t, fake.calls[2].config.SystemInstruction)
}

func TestGenerateAllModelsFail(t *testing.T) {
	boom := errors.New("boom")
	fake := &fakeModels{errs: map[string]error{"a": boom, "b": boom}}
	c := newClient(fake, modelChain("a", []string{"b", "a"}))

	_, err := c.Generate(context.Background(), llm.Prompt{User: "user"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, fake.calls, 2)
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	c := newClient(&fakeModels{}, []string{"a"})
	_, err := c.Generate(context.Background(), llm.Prompt{System: "sys"})
	assert.Error(t, err)
}

func TestGenerateStopsOnCancelledContext(t *testing.T) {
	fake := &fakeModels{}
	c := newClient(fake, []string{"a", "b"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, llm.Prompt{User: "user"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.calls)
}

func TestModelChain(t *testing.T) {
	assert.Equal(t, DefaultModels, modelChain(" ", nil))
	assert.Equal(t, []string{"x", "y"}, modelChain("x", []string{"y", "x", ""}))
}

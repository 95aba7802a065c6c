// Package gemini implements llm.Client on the Google GenAI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"resume-ats/internal/llm"
	"resume-ats/internal/shared/telemetry"
)

// DefaultModels is tried in order until one model answers.
var DefaultModels = []string{"gemini-2.5-flash", "gemini-1.5-flash", "gemini-1.5-pro"}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client generates feedback with Gemini, falling back through Models.
type Client struct {
	models      contentGenerator
	modelNames  []string
	temperature float32
}

// NewClient creates a Gemini API client. model, when set, is tried first;
// fallbacks follow, and DefaultModels are used when both are empty.
func NewClient(ctx context.Context, apiKey, model string, fallbacks []string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newClient(client.Models, modelChain(model, fallbacks)), nil
}

func newClient(models contentGenerator, names []string) *Client {
	return &Client{models: models, modelNames: names, temperature: 0.2}
}

func modelChain(primary string, fallbacks []string) []string {
	var chain []string
	seen := map[string]bool{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		chain = append(chain, name)
	}
	add(primary)
	for _, f := range fallbacks {
		add(f)
	}
	if len(chain) == 0 {
		for _, m := range DefaultModels {
			add(m)
		}
	}
	return chain
}

// Models returns the fallback chain.
func (c *Client) Models() []string {
	return append([]string(nil), c.modelNames...)
}

// Generate tries each model in order and returns the first non-empty text reply.
func (c *Client) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	if c == nil || c.models == nil {
		return "", errors.New("gemini client is not initialized")
	}
	if strings.TrimSpace(prompt.User) == "" {
		return "", errors.New("prompt must not be empty")
	}

	temp := c.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
	if prompt.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(prompt.System, genai.RoleUser)
	}

	var errs []error
	for _, model := range c.modelNames {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := c.generateWith(ctx, model, prompt.User, cfg)
		if err == nil {
			return text, nil
		}
		telemetry.Info("gemini.model_failed", map[string]any{
			"model":       model,
			"prompt_hash": prompt.Hash(),
			"error":       err.Error(),
		})
		errs = append(errs, fmt.Errorf("%s: %w", model, err))
	}
	return "", fmt.Errorf("all gemini models failed: %w", errors.Join(errs...))
}

func (c *Client) generateWith(ctx context.Context, model, user string, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := c.models.GenerateContent(ctx, model, genai.Text(user), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini api returned no response")
	}
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}
	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

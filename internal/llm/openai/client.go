// Package openai implements llm.Client over the Chat Completions HTTP API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resume-ats/internal/llm"
	"resume-ats/internal/shared/telemetry"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

// Options configures a Client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// NoTemperatureModels lists models that reject an explicit temperature.
	NoTemperatureModels []string
}

// Client calls Chat Completions with a JSON response format.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	noTemp     bool
	httpClient *http.Client
}

// NewClient validates opts and builds a Client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     opts.APIKey,
		model:      strings.TrimSpace(opts.Model),
		baseURL:    baseURL,
		noTemp:     isGPT5(opts.Model) || containsModel(opts.NoTemperatureModels, opts.Model),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate sends the prompt and returns the first choice's content. A
// request rejected for its temperature is retried once without it.
func (c *Client) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	withTemp := !c.noTemp
	out, err := c.complete(ctx, prompt, withTemp)
	if err != nil && withTemp && isTemperatureRejection(err) {
		telemetry.Info("openai.retry_without_temperature", map[string]any{"model": c.model})
		return c.complete(ctx, prompt, false)
	}
	return out, err
}

func (c *Client) complete(ctx context.Context, prompt llm.Prompt, withTemp bool) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if prompt.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: prompt.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt.User})

	reqBody := chatRequest{
		Model:          c.model,
		Messages:       messages,
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	if withTemp {
		temp := float32(0)
		reqBody.Temperature = &temp
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 300 {
			return "", fmt.Errorf("openai http status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai http status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("openai response missing choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai response empty content")
	}
	if parsed.Usage != nil {
		telemetry.Info("openai.usage", map[string]any{
			"model":             c.model,
			"prompt_hash":       prompt.Hash(),
			"prompt_tokens":     parsed.Usage.PromptTokens,
			"completion_tokens": parsed.Usage.CompletionTokens,
			"total_tokens":      parsed.Usage.TotalTokens,
		})
	}
	return content, nil
}

func isTemperatureRejection(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "temperature") && strings.Contains(msg, "unsupported")
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

func containsModel(list []string, model string) bool {
	model = strings.ToLower(strings.TrimSpace(model))
	for _, m := range list {
		if strings.ToLower(strings.TrimSpace(m)) == model {
			return true
		}
	}
	return false
}

var _ llm.Client = (*Client)(nil)

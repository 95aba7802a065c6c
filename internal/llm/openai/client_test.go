package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"resume-ats/internal/llm"
)

type recorder struct {
	mu     sync.Mutex
	bodies []map[string]any
}

func (r *recorder) add(t *testing.T, req *http.Request) int {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		t.Errorf("decode request: %v", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies = append(r.bodies, payload)
	return len(r.bodies)
}

func newTestClient(t *testing.T, url, model string, noTemp ...string) *Client {
	t.Helper()
	c, err := NewClient(Options{APIKey: "test-key", Model: model, BaseURL: url, NoTemperatureModels: noTemp})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestGenerateSendsSystemAndUser(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		rec.add(t, r)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" {\"overallScore\":70} "}}],"usage":{"total_tokens":12}}`))
	}))
	defer server.Close()

	out, err := newTestClient(t, server.URL, "gpt-4o-mini").Generate(context.Background(), llm.Prompt{System: "sys", User: "user"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"overallScore":70}` {
		t.Fatalf("unexpected output %q", out)
	}

	body := rec.bodies[0]
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if body["temperature"] != float64(0) {
		t.Fatalf("expected temperature 0, got %v", body["temperature"])
	}
	format, _ := body["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", body["response_format"])
	}
}

func TestGenerateOmitsTemperatureForDenylist(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(t, r)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer server.Close()

	for _, model := range []string{"gpt-5-mini", "o3-mini"} {
		c := newTestClient(t, server.URL, model, "o3-mini")
		if _, err := c.Generate(context.Background(), llm.Prompt{User: "u"}); err != nil {
			t.Fatalf("Generate %s: %v", model, err)
		}
	}
	for i, body := range rec.bodies {
		if _, ok := body["temperature"]; ok {
			t.Fatalf("request %d: expected temperature to be omitted", i)
		}
	}
}

func TestGenerateRetriesWithoutTemperature(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rec.add(t, r) == 1 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Unsupported value: 'temperature' does not support 0 with this model.","type":"invalid_request_error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer server.Close()

	if _, err := newTestClient(t, server.URL, "gpt-4o-mini").Generate(context.Background(), llm.Prompt{User: "u"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(rec.bodies) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(rec.bodies))
	}
	if _, ok := rec.bodies[0]["temperature"]; !ok {
		t.Fatalf("expected first request to include temperature")
	}
	if _, ok := rec.bodies[1]["temperature"]; ok {
		t.Fatalf("expected retry request to omit temperature")
	}
}

func TestGenerateNoInfiniteRetry(t *testing.T) {
	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(t, r)
		_, _ = w.Write([]byte(`{"error":{"message":"Unsupported value: 'temperature'","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, "gpt-4o-mini").Generate(context.Background(), llm.Prompt{User: "u"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(rec.bodies) != 2 {
		t.Fatalf("expected exactly 2 requests, got %d", len(rec.bodies))
	}
}

func TestGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, "gpt-4o-mini").Generate(context.Background(), llm.Prompt{User: "u"})
	if err == nil || !strings.Contains(err.Error(), "http status 502") {
		t.Fatalf("expected http status error, got %v", err)
	}
}

func TestNewClientValidates(t *testing.T) {
	if _, err := NewClient(Options{APIKey: "k"}); err == nil {
		t.Fatalf("expected model error")
	}
	if _, err := NewClient(Options{Model: "gpt-4o"}); err == nil {
		t.Fatalf("expected api key error")
	}
}

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

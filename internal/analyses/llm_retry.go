package analyses

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"resume-ats/internal/llm"
	"resume-ats/internal/shared/telemetry"
)

const llmRetryBaseDelay = 300 * time.Millisecond

type retryingLLM struct {
	base       llm.Client
	requestID  string
	analysisID string
	delay      time.Duration
}

func newRetryingLLM(base llm.Client, analysisID, requestID string) retryingLLM {
	return retryingLLM{
		base:       base,
		requestID:  requestID,
		analysisID: analysisID,
		delay:      llmRetryBaseDelay,
	}
}

// Generate retries once on transient transport failures.
func (r retryingLLM) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	resp, err := r.base.Generate(ctx, prompt)
	if err == nil || !shouldRetryLLM(err) || ctx.Err() != nil {
		return resp, err
	}

	telemetry.Warn("llm.retry", map[string]any{
		"attempt":     1,
		"request_id":  r.requestID,
		"analysis_id": r.analysisID,
		"error":       sanitizeError(err),
	})
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	return r.base.Generate(ctx, prompt)
}

func shouldRetryLLM(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, llm.ErrNotConfigured) || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") ||
		strings.Contains(msg, "status 429") || strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "unavailable") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}

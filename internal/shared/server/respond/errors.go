package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-ats/internal/shared/telemetry"
)

// Context keys written by the middleware and analysis handlers.
const (
	requestIDKey  = "requestId"
	userIDKey     = "userId"
	analysisIDKey = "analysisId"
)

// ErrorBody is the error object every failed request returns. Details is
// always an object when present.
type ErrorBody struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"requestId,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error logs the failure and aborts with the error envelope. Client errors
// are logged at warn, server errors at error.
func Error(c *gin.Context, status int, code, message string, details map[string]any) {
	requestID := c.GetString(requestIDKey)
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": requestID,
	}
	if userID := c.GetString(userIDKey); userID != "" {
		fields["user_id"] = userID
	}
	if analysisID := c.GetString(analysisIDKey); analysisID != "" {
		fields["analysis_id"] = analysisID
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:      code,
			Message:   message,
			RequestID: requestID,
			Details:   details,
		},
	})
}

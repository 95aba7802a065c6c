package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"resume-ats/internal/shared/server/respond"
	"resume-ats/internal/shared/telemetry"
)

// Recovery turns a handler panic into a logged 500 with the error envelope.
// gin still handles broken client connections itself.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		telemetry.Error("panic", map[string]any{
			"request_id":  RequestIDFromContext(c),
			"analysis_id": c.GetString(AnalysisIDKey),
			"error":       rec,
			"stack":       string(debug.Stack()),
			"path":        c.Request.URL.Path,
			"method":      c.Request.Method,
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
	})
}

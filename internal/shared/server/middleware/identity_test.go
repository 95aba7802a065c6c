package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func identityRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity("/api/v1/health"))
	r.GET("/api/v1/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/v1/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, UserIDFromContext(c))
	})
	return r
}

func TestIdentityHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		status  int
		body    string
	}{
		{name: "user", headers: map[string]string{"X-User-Id": "u-1"}, status: http.StatusOK, body: "u-1"},
		{name: "guest", headers: map[string]string{"X-Guest-Id": "g-1"}, status: http.StatusOK, body: "guest:g-1"},
		{name: "user wins", headers: map[string]string{"X-User-Id": "u-1", "X-Guest-Id": "g-1"}, status: http.StatusOK, body: "u-1"},
		{name: "missing", headers: nil, status: http.StatusUnauthorized},
		{name: "blank", headers: map[string]string{"X-Guest-Id": "  "}, status: http.StatusUnauthorized},
	}
	r := identityRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)
			if resp.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.Code)
			}
			if tt.body != "" && resp.Body.String() != tt.body {
				t.Fatalf("expected body %q, got %q", tt.body, resp.Body.String())
			}
		})
	}
}

func TestIdentitySkipsPublicPaths(t *testing.T) {
	r := identityRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

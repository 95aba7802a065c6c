package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB Pinger
}

// NewService constructs a new health service. db may be nil when the
// in-memory repository is used.
func NewService(db Pinger) *Service {
	return &Service{DB: db}
}

// Status reports liveness and, when a database is configured, whether it answers a ping.
func (s *Service) Status(ctx context.Context) (map[string]any, bool) {
	out := map[string]any{"ok": true}
	if s == nil || s.DB == nil {
		out["database"] = "memory"
		return out, true
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		out["ok"] = false
		out["database"] = "unreachable"
		return out, false
	}
	out["database"] = "ok"
	return out, true
}

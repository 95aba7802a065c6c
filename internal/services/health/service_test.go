package health

import (
	"context"
	"errors"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestStatusWithoutDatabase(t *testing.T) {
	out, ok := NewService(nil).Status(context.Background())
	if !ok || out["database"] != "memory" {
		t.Fatalf("unexpected status: %v %v", out, ok)
	}
}

func TestStatusDatabaseDown(t *testing.T) {
	svc := NewService(pingFunc(func(context.Context) error { return errors.New("refused") }))
	out, ok := svc.Status(context.Background())
	if ok || out["ok"] != false || out["database"] != "unreachable" {
		t.Fatalf("unexpected status: %v %v", out, ok)
	}
}

func TestStatusDatabaseUp(t *testing.T) {
	svc := NewService(pingFunc(func(context.Context) error { return nil }))
	out, ok := svc.Status(context.Background())
	if !ok || out["database"] != "ok" {
		t.Fatalf("unexpected status: %v %v", out, ok)
	}
}

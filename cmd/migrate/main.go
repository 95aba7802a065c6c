package main

// Run database migrations:
//   go run ./cmd/migrate [up|status|down]

import (
	"context"
	"fmt"
	"os"

	"resume-ats/internal/shared/config"
	"resume-ats/internal/shared/storage/db"
	"resume-ats/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel, cfg.JSONLogs())
	defer telemetry.Sync()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}
	run, ok := commands[command]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q (want up, status or down)\n", command)
		os.Exit(2)
	}

	ctx := context.Background()
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := run(ctx, sqlDB); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"command": command, "error": err})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"command": command})
}

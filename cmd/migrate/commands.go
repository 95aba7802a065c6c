package main

import (
	"context"
	"database/sql"

	"resume-ats/internal/shared/storage/db"
)

var commands = map[string]func(context.Context, *sql.DB) error{
	"up":     db.RunMigrations,
	"status": db.MigrationStatus,
	"down":   db.MigrateDownOne,
}

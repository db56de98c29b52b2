// Command migrate manages the SQL schema.
//
//	migrate up               apply pending SQL migrations
//	migrate auto             run GORM AutoMigrate and the expression indexes
//	migrate status           show the schema policy and pending migrations
//	migrate list             list every migration with its applied state
//	migrate down <version>   revert the newest applied migration
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Gentlecoder1/social-app/internal/config"
	"github.com/Gentlecoder1/social-app/internal/database"
	"github.com/Gentlecoder1/social-app/internal/middleware"

	"gorm.io/gorm"
)

var errUsage = errors.New("usage: migrate [-timeout d] <up|auto|status|list|down> [version]")

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "abort schema operations after this long")
	flag.Parse()

	if err := run(*timeout, flag.Args()); err != nil {
		middleware.Logger.Error("migrate failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(timeout time.Duration, args []string) error {
	if len(args) < 1 {
		return errUsage
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log := middleware.Logger
	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "up":
		if err := database.RunMigrations(ctx, db); err != nil {
			return err
		}
		log.Info("sql migrations applied")
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply: %w", err)
		}
		log.Info("automigrations applied")
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status: %w", err)
		}
		log.Info("schema status",
			slog.String("mode", status.Mode),
			slog.String("env", status.Environment),
			slog.Bool("run_sql", status.WillRunSQL),
			slog.Bool("run_auto", status.WillRunAutoMigrate),
			slog.Int("applied", len(status.AppliedVersions)),
			slog.Int("pending", len(status.PendingMigrations)),
		)
		for _, m := range status.PendingMigrations {
			log.Info("pending", slog.String("migration", m.String()))
		}
	case "list":
		return list(ctx, db)
	case "down":
		if len(args) < 2 {
			return errUsage
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return err
		}
		log.Info("migration rolled back", slog.Int("version", version))
	default:
		return errUsage
	}
	return nil
}

func list(ctx context.Context, db *gorm.DB) error {
	set, err := database.GetMigrations()
	if err != nil {
		return err
	}
	applied, err := database.AppliedMigrations(ctx, db)
	if err != nil {
		return err
	}
	at := make(map[int]time.Time, len(applied))
	for _, l := range applied {
		at[l.Version] = l.AppliedAt
	}

	for _, m := range set {
		attrs := []any{slog.String("migration", m.String()), slog.String("checksum", m.Checksum[:12])}
		if ts, ok := at[m.Version]; ok {
			attrs = append(attrs, slog.Time("applied_at", ts))
		} else {
			attrs = append(attrs, slog.Bool("pending", true))
		}
		middleware.Logger.Info("migration", attrs...)
	}
	return nil
}

package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Gentlecoder1/social-app/internal/middleware"

	"gorm.io/gorm"
)

// MigrationLog records one applied migration.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	Checksum  string    `gorm:"size:64"`
	AppliedAt time.Time `gorm:"autoCreateTime;index"`
}

// TableName returns the database table name for MigrationLog.
func (MigrationLog) TableName() string {
	return "migration_logs"
}

// AppliedMigrations lists the recorded migrations, oldest first. A database
// that has never been migrated yields an empty list.
func AppliedMigrations(ctx context.Context, db *gorm.DB) ([]MigrationLog, error) {
	if !db.Migrator().HasTable(&MigrationLog{}) {
		return []MigrationLog{}, nil
	}
	var logs []MigrationLog
	if err := db.WithContext(ctx).Order("version ASC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return logs, nil
}

// RunMigrations applies every embedded migration that has not run yet.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	set, err := GetMigrations()
	if err != nil {
		return err
	}
	return runMigrations(ctx, db, set)
}

func runMigrations(ctx context.Context, db *gorm.DB, set []Migration) error {
	if err := db.WithContext(ctx).AutoMigrate(&MigrationLog{}); err != nil {
		return fmt.Errorf("ensure migration_logs table: %w", err)
	}

	applied, err := AppliedMigrations(ctx, db)
	if err != nil {
		return err
	}
	if err := validateApplied(applied, set); err != nil {
		return err
	}

	done := make(map[int]bool, len(applied))
	for _, l := range applied {
		done[l.Version] = true
	}

	for _, m := range set {
		if done[m.Version] {
			continue
		}
		middleware.Logger.Info("Applying migration", slog.String("migration", m.String()))
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(m.UpScript).Error; err != nil {
				return err
			}
			return tx.Create(&MigrationLog{Version: m.Version, Name: m.Name, Checksum: m.Checksum}).Error
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", m, err)
		}
	}
	return nil
}

// validateApplied refuses to run when the database holds versions this
// binary does not know, or when an applied migration's file has changed.
func validateApplied(applied []MigrationLog, set []Migration) error {
	var unknown, drifted []string
	for _, l := range applied {
		m, ok := findMigration(set, l.Version)
		if !ok {
			unknown = append(unknown, fmt.Sprintf("%06d", l.Version))
			continue
		}
		// Rows written before checksums were recorded carry none.
		if l.Checksum != "" && l.Checksum != m.Checksum {
			drifted = append(drifted, m.String())
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("migration_logs contains versions unknown to this build: %s", strings.Join(unknown, ", "))
	}
	if len(drifted) > 0 {
		return fmt.Errorf("applied migrations were edited after they ran: %s", strings.Join(drifted, ", "))
	}
	return nil
}

// RollbackMigration reverts the newest applied migration, which must be
// version. Older migrations are reverted one at a time in reverse order.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	set, err := GetMigrations()
	if err != nil {
		return err
	}
	return rollbackMigration(ctx, db, set, version)
}

func rollbackMigration(ctx context.Context, db *gorm.DB, set []Migration, version int) error {
	m, ok := findMigration(set, version)
	if !ok {
		return fmt.Errorf("migration version %d not found", version)
	}

	applied, err := AppliedMigrations(ctx, db)
	if err != nil {
		return err
	}
	if len(applied) == 0 || !containsVersion(applied, version) {
		return fmt.Errorf("migration %s has not been applied", m)
	}
	if latest := applied[len(applied)-1].Version; latest != version {
		return fmt.Errorf("migration %s is not the newest applied; roll back %06d first", m, latest)
	}

	middleware.Logger.Info("Rolling back migration", slog.String("migration", m.String()))
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return err
		}
		return tx.Where("version = ?", version).Delete(&MigrationLog{}).Error
	})
	if err != nil {
		return fmt.Errorf("roll back migration %s: %w", m, err)
	}
	return nil
}

func containsVersion(logs []MigrationLog, version int) bool {
	for _, l := range logs {
		if l.Version == version {
			return true
		}
	}
	return false
}

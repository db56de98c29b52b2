// Package bootstrap connects the process to its backing services.
package bootstrap

import (
	"fmt"
	"strings"

	"github.com/Gentlecoder1/social-app/internal/cache"
	"github.com/Gentlecoder1/social-app/internal/config"
	"github.com/Gentlecoder1/social-app/internal/database"
	"github.com/Gentlecoder1/social-app/internal/middleware"
	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedPreset names a seed preset applied to an empty development database.
	SeedPreset string
}

// InitRuntime connects to the database and Redis. The Redis client is nil when
// Redis is unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := seedDevelopment(cfg, db, opts.SeedPreset); err != nil {
		return nil, nil, fmt.Errorf("failed to seed development data: %w", err)
	}

	return db, r, nil
}

// seedDevelopment applies preset when running in development against a
// database that has no users yet.
func seedDevelopment(cfg *config.Config, db *gorm.DB, preset string) error {
	preset = strings.ToLower(strings.TrimSpace(preset))
	if preset == "" || cfg == nil || db == nil || !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}

	presets, err := seed.LoadPresets("")
	if err != nil {
		return err
	}
	p, ok := presets[preset]
	if !ok {
		return fmt.Errorf("unknown seed preset %q", preset)
	}

	middleware.Logger.Info("seeding empty development database", "preset", p.Name)
	return seed.NewSeeder(db, seed.Options{SkipBcrypt: true}).Run(p)
}

// Command seed populates the database with demo users, follows and engagement.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Gentlecoder1/social-app/internal/config"
	"github.com/Gentlecoder1/social-app/internal/database"
	"github.com/Gentlecoder1/social-app/internal/middleware"
	"github.com/Gentlecoder1/social-app/internal/seed"
)

func main() {
	if err := run(); err != nil {
		middleware.Logger.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	presetName := flag.String("preset", "demo", "Seeding preset to apply")
	presetFile := flag.String("presets", "", "Optional YAML file with extra presets")
	users := flag.Int("users", 0, "Override the preset's user count")
	posts := flag.Int("posts", 0, "Override the preset's post count")
	clean := flag.Bool("clean", true, "Clear seeded tables first")
	fast := flag.Bool("fast", false, "Hash the shared password at minimum bcrypt cost")
	randSeed := flag.Int64("seed", 0, "Random seed for a reproducible run")
	flag.Parse()

	presets, err := seed.LoadPresets(*presetFile)
	if err != nil {
		return err
	}
	preset, ok := presets[strings.ToLower(*presetName)]
	if !ok {
		names := make([]string, 0, len(presets))
		for name := range presets {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("unknown preset %q (have %s)", *presetName, strings.Join(names, ", "))
	}
	if *users > 0 {
		preset.Users = *users
	}
	if *posts > 0 {
		preset.Posts = *posts
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	s := seed.NewSeeder(db, seed.Options{SkipBcrypt: *fast, RandSeed: *randSeed})
	if *clean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}
	if err := s.Run(preset); err != nil {
		return err
	}

	middleware.Logger.Info("seeding complete", "password", seed.DefaultPassword)
	return nil
}

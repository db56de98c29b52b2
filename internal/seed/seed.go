// Package seed fills a development database with a believable social graph:
// users with profiles, follow edges, posts, likes, comments and saved posts.
package seed

import (
	"fmt"

	"github.com/Gentlecoder1/social-app/internal/middleware"
	"github.com/Gentlecoder1/social-app/internal/models"

	"gorm.io/gorm"
)

// Options configures a Seeder.
type Options struct {
	// MaxDays bounds how far back post timestamps are spread.
	MaxDays int
	// SkipBcrypt hashes the shared password at minimum cost.
	SkipBcrypt bool
	// RandSeed makes a run reproducible when non-zero.
	RandSeed int64
}

// Seeder writes seed data through a Factory.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts), opts: opts}
}

// seededTables lists tables in child-first order.
var seededTables = []string{
	"notifications", "profile_saved_posts", "comments", "likes", "follows", "posts", "profiles", "users",
}

// ClearAll empties every seeded table.
func (s *Seeder) ClearAll() error {
	middleware.Logger.Info("clearing seeded tables")
	if s.db.Name() == "postgres" {
		sql := "TRUNCATE TABLE notifications, profile_saved_posts, comments, likes, follows, posts, profiles, users RESTART IDENTITY CASCADE"
		return s.db.Exec(sql).Error
	}
	for _, table := range seededTables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// SeedUsers creates count users, each with a profile.
func (s *Seeder) SeedUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			middleware.Logger.Warn("skipping seed user", "error", err)
			continue
		}
		users = append(users, u)
	}
	middleware.Logger.Info("seeded users", "count", len(users))
	return users, nil
}

// SeedFollows adds each possible edge between users with the given probability.
// Nobody follows themselves.
func (s *Seeder) SeedFollows(users []*models.User, probability float64) (int, error) {
	edges := 0
	for _, follower := range users {
		for _, following := range users {
			if follower.ID == following.ID || s.factory.rng.Float64() >= probability {
				continue
			}
			if err := s.factory.CreateFollow(follower, following); err != nil {
				return edges, fmt.Errorf("follow %d -> %d: %w", follower.ID, following.ID, err)
			}
			edges++
		}
	}
	middleware.Logger.Info("seeded follows", "count", edges)
	return edges, nil
}

// Engagement bounds the per-post activity SeedEngagement generates.
type Engagement struct {
	Posts              int
	MaxLikesPerPost    int
	MaxCommentsPerPost int
	SavesPerUser       int
}

// EngagementResult counts what SeedEngagement wrote.
type EngagementResult struct {
	Posts    []*models.Post
	Likes    int
	Comments int
	Saves    int
}

// SeedEngagement creates posts by random authors, then likes and comments
// from distinct other users, then saved posts. Users never like, comment on
// or save their own posts.
func (s *Seeder) SeedEngagement(users []*models.User, e Engagement) (*EngagementResult, error) {
	res := &EngagementResult{}
	if len(users) == 0 {
		return res, nil
	}
	rng := s.factory.rng

	for i := 0; i < e.Posts; i++ {
		author := users[rng.Intn(len(users))]
		post, err := s.factory.CreatePost(author)
		if err != nil {
			return res, fmt.Errorf("create post: %w", err)
		}
		res.Posts = append(res.Posts, post)

		others := othersThan(users, author.ID)
		rng.Shuffle(len(others), func(a, b int) { others[a], others[b] = others[b], others[a] })

		likes := upTo(rng.Intn(e.MaxLikesPerPost+1), len(others))
		for _, fan := range others[:likes] {
			if err := s.factory.CreateLike(fan, post); err != nil {
				return res, fmt.Errorf("create like: %w", err)
			}
			res.Likes++
		}

		comments := rng.Intn(e.MaxCommentsPerPost + 1)
		for j := 0; j < comments && len(others) > 0; j++ {
			if _, err := s.factory.CreateComment(others[rng.Intn(len(others))], post); err != nil {
				return res, fmt.Errorf("create comment: %w", err)
			}
			res.Comments++
		}
	}

	for _, u := range users {
		saved := map[int]bool{}
		for j := 0; j < e.SavesPerUser && len(res.Posts) > 0; j++ {
			idx := rng.Intn(len(res.Posts))
			post := res.Posts[idx]
			if saved[idx] || post.UserID == u.ID {
				continue
			}
			if err := s.factory.SavePost(u, post); err != nil {
				return res, fmt.Errorf("save post: %w", err)
			}
			saved[idx] = true
			res.Saves++
		}
	}

	middleware.Logger.Info("seeded engagement",
		"posts", len(res.Posts), "likes", res.Likes, "comments", res.Comments, "saves", res.Saves)
	return res, nil
}

// Run seeds users, follows and engagement as described by p.
func (s *Seeder) Run(p Preset) error {
	middleware.Logger.Info("seeding", "preset", p.Name, "users", p.Users, "posts", p.Posts)
	users, err := s.SeedUsers(p.Users)
	if err != nil {
		return err
	}
	if _, err := s.SeedFollows(users, p.FollowProbability); err != nil {
		return err
	}
	_, err = s.SeedEngagement(users, Engagement{
		Posts:              p.Posts,
		MaxLikesPerPost:    p.MaxLikesPerPost,
		MaxCommentsPerPost: p.MaxCommentsPerPost,
		SavesPerUser:       p.SavesPerUser,
	})
	return err
}

func othersThan(users []*models.User, id uint) []*models.User {
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}

func upTo(n, limit int) int {
	if n > limit {
		return limit
	}
	return n
}

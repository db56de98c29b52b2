package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Gentlecoder1/social-app/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account can log in with.
const DefaultPassword = "Seeded-Pass-123!"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	opts   Options
	faker  *gofakeit.Faker
	rng    *rand.Rand
	hashed string
}

// NewFactory creates a Factory bound to db. A zero opts.RandSeed picks a
// time-based seed.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:    db,
		opts:  opts,
		faker: gofakeit.New(seed),
		//nolint:gosec // weak randomness is fine for seeding
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (f *Factory) passwordHash() (string, error) {
	if f.hashed != "" {
		return f.hashed, nil
	}
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return "", err
	}
	f.hashed = string(h)
	return f.hashed, nil
}

// BuildUser returns an unsaved user with a filled-in profile.
func (f *Factory) BuildUser(overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}
	username := fmt.Sprintf("%s%d", f.faker.Username(), f.faker.Number(100, 999))
	if len(username) > 30 {
		username = username[len(username)-30:]
	}
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: hash,
		Profile: &models.Profile{
			WorksAt:    truncate(f.faker.Company(), models.ProfileTextMaxLen),
			Occupation: truncate(f.faker.JobTitle(), models.ProfileTextMaxLen),
			Location:   truncate(f.faker.City(), models.ProfileTextMaxLen),
			Bio:        f.faker.Sentence(10),
			ProfilePic: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		},
	}
	for _, override := range overrides {
		override(user)
	}
	return user, nil
}

// CreateUser persists a user and its profile.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user, err := f.BuildUser(overrides...)
	if err != nil {
		return nil, err
	}
	profile := user.Profile
	err = f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Profile").Create(user).Error; err != nil {
			return err
		}
		if profile == nil {
			profile = &models.Profile{ProfilePic: models.DefaultProfilePic}
		}
		profile.UserID = user.ID
		return tx.Omit("SavedPosts").Create(profile).Error
	})
	if err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

// BuildPost returns an unsaved post by user. About a third carry an image,
// and the creation time is spread over the last opts.MaxDays days.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		UserID:    user.ID,
		Caption:   f.faker.Sentence(f.rng.Intn(12) + 3),
		CreatedAt: f.pastTime(),
	}
	if f.rng.Float32() < 0.35 {
		post.MediaType = models.MediaImage
		post.MediaURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, overrides...)
	if err := f.db.Omit("User").Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by user on post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:    post.ID,
		UserID:    user.ID,
		Body:      f.faker.Sentence(f.rng.Intn(10) + 2),
		CreatedAt: laterThan(post.CreatedAt, f.rng),
	}
	if err := f.db.Omit("User").Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike records user liking post and bumps the post's like count in
// the same transaction.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	return f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Like{PostID: post.ID, UserID: user.ID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
			return err
		}
		post.LikeCount++
		return nil
	})
}

// CreateFollow persists the edge follower -> following.
func (f *Factory) CreateFollow(follower, following *models.User) error {
	return f.db.Create(&models.Follow{FollowerID: follower.ID, FollowingID: following.ID}).Error
}

// SavePost adds post to user's saved posts.
func (f *Factory) SavePost(user *models.User, post *models.Post) error {
	if user.Profile == nil {
		return fmt.Errorf("user %d has no profile", user.ID)
	}
	return f.db.Exec(
		"INSERT INTO profile_saved_posts (profile_id, post_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		user.Profile.ID, post.ID,
	).Error
}

func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rng.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

func laterThan(t time.Time, rng *rand.Rand) time.Time {
	later := t.Add(time.Duration(rng.Intn(48*60)+1) * time.Minute)
	if now := time.Now(); later.After(now) {
		return now
	}
	return later
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

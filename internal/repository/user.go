package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Gentlecoder1/social-app/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// FindByLogin matches either username or email. It returns nil, nil when
	// no user matches.
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	// Exists reports which of username or email are already taken.
	Exists(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
	Create(ctx context.Context, user *models.User) error
	// LockByID loads the user with a row lock held until the transaction ends.
	LockByID(ctx context.Context, id uint) (*models.User, error)
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
	// Suggestions returns up to limit random users that userID neither is nor follows.
	Suggestions(ctx context.Context, userID uint, limit int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Profile").First(&user, id).Error; err != nil {
		return nil, mapError(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Profile").Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &models.AppError{Code: models.CodeNotFound, Message: "User " + username + " not found"}
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR LOWER(email) = ?", login, strings.ToLower(login)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, username, email string) (bool, bool, error) {
	var usernames, emails int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&usernames).Error; err != nil {
		return false, false, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(email) = ?", strings.ToLower(email)).Count(&emails).Error; err != nil {
		return false, false, models.NewInternalError(err)
	}
	return usernames > 0, emails > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit("Profile").Create(user).Error; err != nil {
		if IsUniqueViolation(err) {
			return models.NewConflictError("Username or email already in use")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) LockByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, id).Error
	if err != nil {
		return nil, mapError(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.User{}, nil
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	var users []models.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("LOWER(username) LIKE ? ESCAPE '\\'", pattern).
		Order("username ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Suggestions(ctx context.Context, userID uint, limit int) ([]models.User, error) {
	followed := r.db.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", userID)

	var users []models.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("id <> ?", userID).
		Where("id NOT IN (?)", followed).
		Order("RANDOM()").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Gentlecoder1/social-app/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle. Inside
// WithTx every repository of the given Store runs in the same transaction.
type Store interface {
	Users() UserRepository
	Profiles() ProfileRepository
	Posts() PostRepository
	Likes() LikeRepository
	Comments() CommentRepository
	Follows() FollowRepository
	Notifications() NotificationRepository

	// WithTx runs fn in a transaction. fn's error rolls everything back.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns a Store backed by db.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository                 { return NewUserRepository(s.db) }
func (s *gormStore) Profiles() ProfileRepository           { return NewProfileRepository(s.db) }
func (s *gormStore) Posts() PostRepository                 { return NewPostRepository(s.db) }
func (s *gormStore) Likes() LikeRepository                 { return NewLikeRepository(s.db) }
func (s *gormStore) Comments() CommentRepository           { return NewCommentRepository(s.db) }
func (s *gormStore) Follows() FollowRepository             { return NewFollowRepository(s.db) }
func (s *gormStore) Notifications() NotificationRepository { return NewNotificationRepository(s.db) }

func (s *gormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err comes from a unique index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// mapError converts a gorm error into an AppError. AppErrors pass through.
func mapError(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewInternalError(err)
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/Gentlecoder1/social-app/internal/cache"
	"github.com/Gentlecoder1/social-app/internal/middleware"
	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/repository"
	"github.com/Gentlecoder1/social-app/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type SignupInput struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// LoginInput accepts either a username or an email address in Login.
type LoginInput struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	store      repository.Store
	tokens     *cache.Store
	secret     string
	defaultPic string
	now        func() time.Time
}

func NewAuthService(store repository.Store, tokens *cache.Store, secret, defaultPic string) *AuthService {
	if defaultPic == "" {
		defaultPic = models.DefaultProfilePic
	}
	return &AuthService{
		store:      store,
		tokens:     tokens,
		secret:     secret,
		defaultPic: defaultPic,
		now:        time.Now,
	}
}

// Signup creates the account and its profile together and signs the user in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password, in.Username, in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Password != in.ConfirmPassword {
		return nil, models.NewValidationError("Passwords do not match")
	}

	nameTaken, emailTaken, err := s.store.Users().Exists(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if nameTaken {
		return nil, models.NewConflictError("Username already taken")
	}
	if emailTaken {
		return nil, models.NewConflictError("Email already in use")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{Username: in.Username, Email: in.Email, Password: string(hashed)}
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		profile, err := tx.Profiles().GetOrCreate(ctx, user.ID, s.defaultPic)
		if err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Login = strings.TrimSpace(in.Login)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	user, err := s.store.Users().FindByLogin(ctx, in.Login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return s.issue(user)
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *middleware.TokenClaims) error {
	if claims == nil || claims.JTI == "" {
		return models.NewUnauthorizedError("Invalid token")
	}
	if err := s.tokens.Revoke(ctx, claims.JTI, claims.ExpiresAt.Sub(s.now())); err != nil {
		return models.NewUpstreamError("Logout failed, please try again", err)
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, _, err := middleware.IssueToken(s.secret, user.ID, user.Username, s.now())
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

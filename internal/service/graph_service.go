package service

import (
	"context"
	"strings"

	"github.com/Gentlecoder1/social-app/internal/cache"
	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/observability"
	"github.com/Gentlecoder1/social-app/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultSuggestionLimit = 5
	searchResultLimit      = 20
)

// FollowInput names both ends of a follow edge by username.
type FollowInput struct {
	Follower  string `json:"follower" form:"follower" validate:"required"`
	Following string `json:"following" form:"following" validate:"required"`
}

// FollowResult is the edge state after a toggle and the followee's new count.
type FollowResult struct {
	Following     bool   `json:"following"`
	FollowerCount int64  `json:"follower_count"`
	Username      string `json:"username"`
}

// UserSummary is the compact user shape used in lists.
type UserSummary struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
	Bio        string `json:"bio,omitempty"`
}

func summarize(users []models.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		s := UserSummary{ID: u.ID, Username: u.Username, ProfilePic: u.Profile.PictureOrBlank()}
		if u.Profile != nil {
			s.Bio = u.Profile.Bio
		}
		out = append(out, s)
	}
	return out
}

// GraphService maintains follow edges. Follower counts are derived from the
// edges and cached.
type GraphService struct {
	store         repository.Store
	notifications *NotificationService
	cache         *cache.Store
}

func NewGraphService(store repository.Store, notifications *NotificationService, cacheStore *cache.Store) *GraphService {
	return &GraphService{store: store, notifications: notifications, cache: cacheStore}
}

// ToggleFollow follows in.Following as in.Follower, or unfollows if the edge
// exists. actorID must be the follower.
func (s *GraphService) ToggleFollow(ctx context.Context, actorID uint, in FollowInput) (result *FollowResult, err error) {
	in.Follower = strings.TrimSpace(in.Follower)
	in.Following = strings.TrimSpace(in.Following)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "graph.ToggleFollow",
		attribute.String("follower", in.Follower),
		attribute.String("following", in.Following),
	)
	defer func() { observability.EndSpan(span, err) }()

	follower, err := s.store.Users().GetByUsername(ctx, in.Follower)
	if err != nil {
		return nil, err
	}
	if follower.ID != actorID {
		return nil, models.NewForbiddenError("You can only follow users as yourself")
	}
	followee, err := s.store.Users().GetByUsername(ctx, in.Following)
	if err != nil {
		return nil, err
	}
	if follower.ID == followee.ID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}

	res := &FollowResult{Username: followee.Username}
	out := &Outbox{}
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Users().LockByID(ctx, followee.ID); err != nil {
			return err
		}

		removed, err := tx.Follows().Delete(ctx, follower.ID, followee.ID)
		if err != nil {
			return err
		}
		kind := models.NotificationUnfollow
		if !removed {
			if _, err := tx.Follows().Insert(ctx, follower.ID, followee.ID); err != nil {
				return err
			}
			kind = models.NotificationFollow
			res.Following = true
		}

		if err := s.notifications.Notify(ctx, tx, out, NotifyInput{
			RecipientID: followee.ID,
			SenderID:    follower.ID,
			Type:        kind,
		}); err != nil {
			return err
		}

		res.FollowerCount, err = tx.Follows().CountFollowers(ctx, followee.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx,
		cache.FollowerCountKey(followee.ID),
		cache.FollowingCountKey(follower.ID),
		cache.SuggestionsKey(follower.ID),
	)
	action := "unfollow"
	if res.Following {
		action = "follow"
	}
	observability.FollowsToggled.WithLabelValues(action).Inc()
	s.notifications.Deliver(ctx, out)
	return res, nil
}

func (s *GraphService) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	if followerID == 0 || followerID == followingID {
		return false, nil
	}
	return s.store.Follows().Exists(ctx, followerID, followingID)
}

func (s *GraphService) FollowerCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.cache.Aside(ctx, cache.FollowerCountKey(userID), &n, cache.FollowCountTTL, func() error {
		var err error
		n, err = s.store.Follows().CountFollowers(ctx, userID)
		return err
	})
	return n, err
}

func (s *GraphService) FollowingCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.cache.Aside(ctx, cache.FollowingCountKey(userID), &n, cache.FollowCountTTL, func() error {
		var err error
		n, err = s.store.Follows().CountFollowing(ctx, userID)
		return err
	})
	return n, err
}

// Suggestions returns a shuffled handful of users that userID does not follow.
func (s *GraphService) Suggestions(ctx context.Context, userID uint, limit int) ([]UserSummary, error) {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	var out []UserSummary
	err := s.cache.Aside(ctx, cache.SuggestionsKey(userID), &out, cache.SuggestionsTTL, func() error {
		users, err := s.store.Users().Suggestions(ctx, userID, limit)
		if err != nil {
			return err
		}
		out = summarize(users)
		return nil
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

// SearchUsers matches usernames case-insensitively by substring.
func (s *GraphService) SearchUsers(ctx context.Context, query string) ([]UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []UserSummary{}, nil
	}
	users, err := s.store.Users().Search(ctx, query, searchResultLimit)
	if err != nil {
		return nil, err
	}
	return summarize(users), nil
}

package service

import (
	"bytes"
	"context"
	"strings"

	"github.com/Gentlecoder1/social-app/internal/middleware"
	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/repository"
	"github.com/Gentlecoder1/social-app/internal/storage"

	"github.com/google/uuid"
)

const profilePostLimit = 100

// UpdateProfileInput carries the fields to change. Nil fields stay as they are.
type UpdateProfileInput struct {
	UserID     uint
	WorksAt    *string `json:"works_at" validate:"omitempty,max=100"`
	Occupation *string `json:"occupation" validate:"omitempty,max=100"`
	Location   *string `json:"location" validate:"omitempty,max=100"`
	Bio        *string `json:"bio"`
	Image      *MediaFile
	Cover      *MediaFile
}

// ProfileView is everything the profile page shows to a viewer.
type ProfileView struct {
	User           UserSummary     `json:"user"`
	Profile        *models.Profile `json:"profile"`
	Posts          []models.Post   `json:"posts"`
	PostCount      int64           `json:"post_count"`
	FollowerCount  int64           `json:"follower_count"`
	FollowingCount int64           `json:"following_count"`
	IsFollowing    bool            `json:"is_following"`
	ButtonText     string          `json:"button_text"`
	LikedPostIDs   []uuid.UUID     `json:"liked_post_ids"`
}

type ProfileService struct {
	store          repository.Store
	graph          *GraphService
	uploader       storage.Uploader
	defaultPic     string
	maxUploadBytes int64
}

func NewProfileService(
	store repository.Store,
	graph *GraphService,
	uploader storage.Uploader,
	defaultPic string,
	maxUploadBytes int64,
) *ProfileService {
	if defaultPic == "" {
		defaultPic = models.DefaultProfilePic
	}
	return &ProfileService{
		store:          store,
		graph:          graph,
		uploader:       uploader,
		defaultPic:     defaultPic,
		maxUploadBytes: maxUploadBytes,
	}
}

// GetOrCreate returns the user's profile, creating it on first access.
func (s *ProfileService) GetOrCreate(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.store.Profiles().GetOrCreate(ctx, userID, s.defaultPic)
}

// Update validates the input, uploads any new pictures and then applies all
// changes at once. Nothing is written if an upload fails.
func (s *ProfileService) Update(ctx context.Context, in UpdateProfileInput) (*models.Profile, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	profile, err := s.GetOrCreate(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	setText := func(column string, v *string) {
		if v != nil {
			fields[column] = strings.TrimSpace(*v)
		}
	}
	setText("works_at", in.WorksAt)
	setText("occupation", in.Occupation)
	setText("location", in.Location)
	setText("bio", in.Bio)

	// Objects already in the bucket are not referenced by the profile if a
	// later step fails; they are logged for cleanup.
	var uploaded []string
	orphaned := func(err error) {
		if len(uploaded) > 0 {
			middleware.Logger.WarnContext(ctx, "profile update failed after upload",
				"media_urls", uploaded, "error", err)
		}
	}

	if in.Image != nil {
		url, err := s.uploadPicture(ctx, in.Image, storage.CategoryProfile, ProfileImageMaxSize)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, url)
		fields["profile_pic"] = url
	}
	if in.Cover != nil {
		url, err := s.uploadPicture(ctx, in.Cover, storage.CategoryCover, CoverImageMaxSize)
		if err != nil {
			orphaned(err)
			return nil, err
		}
		uploaded = append(uploaded, url)
		fields["cover_photo"] = url
	}

	if err := s.store.Profiles().Update(ctx, profile.ID, fields); err != nil {
		orphaned(err)
		return nil, err
	}
	return s.store.Profiles().GetByUserID(ctx, in.UserID)
}

func (s *ProfileService) uploadPicture(ctx context.Context, file *MediaFile, category storage.Category, maxSize int) (string, error) {
	kind, err := checkMedia(file, s.maxUploadBytes)
	if err != nil {
		return "", err
	}
	if kind != models.MediaImage {
		return "", models.NewValidationError("Profile pictures must be images")
	}
	encoded, err := normalizeImage(file.Content, maxSize)
	if err != nil {
		return "", err
	}
	return s.uploader.Upload(ctx, bytes.NewReader(encoded), string(category)+".webp", category)
}

// View assembles username's profile page as seen by viewerID.
func (s *ProfileService) View(ctx context.Context, viewerID uint, username string) (*ProfileView, error) {
	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	profile, err := s.GetOrCreate(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.Posts().ListByUser(ctx, user.ID, viewerID, profilePostLimit, 0)
	if err != nil {
		return nil, err
	}
	postCount, err := s.store.Posts().CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	followers, err := s.graph.FollowerCount(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.graph.FollowingCount(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	isFollowing, err := s.graph.IsFollowing(ctx, viewerID, user.ID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	liked, err := s.store.Likes().LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	buttonText := "Follow"
	if isFollowing {
		buttonText = "Unfollow"
	}
	return &ProfileView{
		User:           UserSummary{ID: user.ID, Username: user.Username, ProfilePic: profile.PictureOrBlank(), Bio: profile.Bio},
		Profile:        profile,
		Posts:          posts,
		PostCount:      postCount,
		FollowerCount:  followers,
		FollowingCount: following,
		IsFollowing:    isFollowing,
		ButtonText:     buttonText,
		LikedPostIDs:   liked,
	}, nil
}

package server

import (
	"net/url"

	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers handles GET /api/search?username=...
// @Summary Search users
// @Description Case-insensitive username substring match
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param username query string true "Username fragment"
// @Success 200 {object} object{users=[]service.UserSummary}
// @Router /search [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.graphService.SearchUsers(c.UserContext(), c.Query("username"))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetSuggestions handles GET /api/suggestions
// @Summary Follow suggestions
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{users=[]service.UserSummary}
// @Router /suggestions [get]
func (s *Server) GetSuggestions(c *fiber.Ctx) error {
	users, err := s.graphService.Suggestions(c.UserContext(), currentUserID(c), service.DefaultSuggestionLimit)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// GetProfile handles GET /api/profiles/:username
// @Summary Profile page
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} service.ProfileView
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{username} [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	username, err := url.PathUnescape(c.Params("username"))
	if err != nil || username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid username"))
	}
	view, err := s.profileService.View(c.UserContext(), currentUserID(c), username)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(view)
}

// GetSettings handles GET /api/settings
// @Summary Current profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Profile
// @Router /settings [get]
func (s *Server) GetSettings(c *fiber.Ctx) error {
	profile, err := s.profileService.GetOrCreate(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(profile)
}

// UpdateSettings handles PUT /api/settings
// @Summary Update profile
// @Description Text fields plus optional profile image and cover photo
// @Tags users
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param works_at formData string false "Works at"
// @Param occupation formData string false "Occupation"
// @Param location formData string false "Location"
// @Param bio formData string false "Bio"
// @Param image formData file false "Profile image"
// @Param cover formData file false "Cover photo"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /settings [put]
func (s *Server) UpdateSettings(c *fiber.Ctx) error {
	in := service.UpdateProfileInput{}

	form, err := readMultipart(c)
	if err != nil {
		return respondWithAppError(c, err)
	}
	if form != nil {
		in.WorksAt = formValue(form, "works_at")
		in.Occupation = formValue(form, "occupation")
		in.Location = formValue(form, "location")
		in.Bio = formValue(form, "bio")
	} else if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	in.UserID = currentUserID(c)

	image, closeImage, err := formMedia(form, "image")
	if err != nil {
		return respondWithAppError(c, err)
	}
	defer closeImage()
	cover, closeCover, err := formMedia(form, "cover")
	if err != nil {
		return respondWithAppError(c, err)
	}
	defer closeCover()
	in.Image = image
	in.Cover = cover

	profile, err := s.profileService.Update(c.UserContext(), in)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(profile)
}

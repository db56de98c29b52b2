package server

import (
	"net/url"

	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ToggleFollow handles POST /api/follow
// @Summary Toggle follow
// @Description Follows or unfollows. The follower must be the authenticated user.
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.FollowInput true "Edge"
// @Success 200 {object} service.FollowResult
// @Success 303 {object} object{success=bool,message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /follow [post]
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	var req service.FollowInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.graphService.ToggleFollow(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondWithAppError(c, err)
	}

	message := "Unfollowed " + result.Username
	if result.Following {
		message = "Followed " + result.Username
	}
	return respondOrRedirect(c, fiber.StatusOK, fiber.Map{
		"success":        true,
		"following":      result.Following,
		"follower_count": result.FollowerCount,
		"username":       result.Username,
	}, "/api/profiles/"+url.PathEscape(result.Username), message)
}

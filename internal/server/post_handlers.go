package server

import (
	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/service"

	"github.com/gofiber/fiber/v2"
)

const feedLocation = "/api/feed"

// GetFeed handles GET /api/feed
// @Summary Feed
// @Description Posts by everyone except the viewer, newest first
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.Post
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	posts, err := s.postService.Feed(c.UserContext(), currentUserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Description Multipart upload with an optional caption and one image or video
// @Tags posts
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param caption formData string false "Caption"
// @Param image_upload formData file false "Image"
// @Param video_upload formData file false "Video"
// @Success 201 {object} models.Post
// @Success 303 {object} object{success=bool,message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	in := service.CreatePostInput{UserID: currentUserID(c)}

	form, err := readMultipart(c)
	if err != nil {
		return respondWithAppError(c, err)
	}
	if form != nil {
		if caption := formValue(form, "caption"); caption != nil {
			in.Caption = *caption
		}
	} else {
		var req struct {
			Caption string `json:"caption" form:"caption"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in.Caption = req.Caption
	}

	media, closeMedia, err := formMedia(form, "image_upload", "video_upload")
	if err != nil {
		return respondWithAppError(c, err)
	}
	defer closeMedia()
	in.Media = media

	post, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return respondWithAppError(c, err)
	}
	if wantsJSON(c) {
		return c.Status(fiber.StatusCreated).JSON(post)
	}
	return respondOrRedirect(c, fiber.StatusCreated, nil, feedLocation, "Post created")
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Post UUID"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parsePostID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Description Owner only; likes, comments and notifications go with it
// @Tags posts
// @Security BearerAuth
// @Param id path string true "Post UUID"
// @Success 200 {object} object{success=bool}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parsePostID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.UserContext(), currentUserID(c), postID); err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Post deleted"})
}

// ToggleLike handles POST /api/posts/:id/like
// @Summary Toggle like
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Post UUID"
// @Success 200 {object} object{success=bool,liked=bool,like_count=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID, err := parsePostID(c, "id")
	if err != nil {
		return nil
	}
	result, err := s.engagementService.ToggleLike(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"liked":      result.Liked,
		"like_count": result.LikeCount,
	})
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Add comment
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Post UUID"
// @Param request body object{comment=string} true "Comment"
// @Success 200 {object} object{success=bool,comment=service.CommentView}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parsePostID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Comment string `json:"comment" form:"comment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	view, err := s.engagementService.AddComment(c.UserContext(), service.CreateCommentInput{
		UserID:  currentUserID(c),
		PostID:  postID,
		Content: req.Comment,
	})
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "comment": view})
}

// GetComments handles GET /api/posts/:id/comments
// @Summary List comments
// @Description Oldest first
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Post UUID"
// @Success 200 {object} object{success=bool,comments=[]service.CommentView}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := parsePostID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.engagementService.ListComments(c.UserContext(), postID)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "comments": comments})
}

// ToggleSave handles POST /api/posts/:id/save
// @Summary Toggle saved post
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Post UUID"
// @Success 200 {object} object{success=bool,saved=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/save [post]
func (s *Server) ToggleSave(c *fiber.Ctx) error {
	postID, err := parsePostID(c, "id")
	if err != nil {
		return nil
	}
	saved, err := s.postService.ToggleSave(c.UserContext(), currentUserID(c), postID)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "saved": saved})
}

// GetSavedPosts handles GET /api/posts/saved
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	posts, err := s.postService.SavedPosts(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(posts)
}

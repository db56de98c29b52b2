package server

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/Gentlecoder1/social-app/internal/middleware"
	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parsePostID extracts a post UUID route parameter. Like parseID it writes
// the 400 itself.
func parsePostID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post ID"))
		return uuid.Nil, errResponseWritten
	}
	return id, nil
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// statusFor maps an AppError code to its HTTP status.
func statusFor(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeConflict:
		return fiber.StatusConflict
	case models.CodeUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// respondWithAppError writes err with its mapped status. Anything that is not
// a client error is logged with its cause; the client only sees the message.
func respondWithAppError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"path", c.Path(), "status", status, "error", err)
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

// wantsJSON reports whether the client asked for a JSON response rather than
// a redirect.
func wantsJSON(c *fiber.Ctx) bool {
	return strings.Contains(strings.ToLower(c.Get(fiber.HeaderAccept)), fiber.MIMEApplicationJSON)
}

// respondOrRedirect writes body as JSON with status for API clients and a
// 303 See Other to location for form posts.
func respondOrRedirect(c *fiber.Ctx, status int, body fiber.Map, location, message string) error {
	if wantsJSON(c) {
		return c.Status(status).JSON(body)
	}
	c.Location(location)
	return c.Status(fiber.StatusSeeOther).JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// hasUpload reports whether a multipart request carries at least one file.
// A body that fails to parse counts as an upload.
func hasUpload(c *fiber.Ctx) bool {
	if !isMultipart(c) {
		return false
	}
	form, err := c.MultipartForm()
	if err != nil {
		return true
	}
	for _, files := range form.File {
		if len(files) > 0 {
			return true
		}
	}
	return false
}

// formMedia returns the first non-empty file among fields, or nil when the
// form carries none. The returned func closes the opened file.
func formMedia(form *multipart.Form, fields ...string) (*service.MediaFile, func(), error) {
	noop := func() {}
	if form == nil {
		return nil, noop, nil
	}
	for _, field := range fields {
		files := form.File[field]
		if len(files) == 0 || files[0].Filename == "" {
			continue
		}
		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			return nil, noop, models.NewValidationError("Could not read uploaded file")
		}
		return &service.MediaFile{
			Filename: fh.Filename,
			Size:     fh.Size,
			Content:  f,
		}, func() { _ = f.Close() }, nil
	}
	return nil, noop, nil
}

// readMultipart parses the body when it is multipart, and returns a nil form otherwise.
func readMultipart(c *fiber.Ctx) (*multipart.Form, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, models.NewValidationError("Invalid multipart form")
	}
	return form, nil
}

// formValue returns a pointer to a submitted form field, or nil when the
// field is absent, so callers can tell "unset" from "cleared".
func formValue(form *multipart.Form, field string) *string {
	if form == nil {
		return nil
	}
	values, ok := form.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
// @Summary List notifications
// @Description Newest first, with the unread count
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} object{notifications=[]models.Notification,unread_count=int}
// @Router /notifications [get]
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := currentUserID(c)
	page := parsePagination(c, 20)

	list, err := s.notificationService.List(ctx, userID, page.Limit, page.Offset)
	if err != nil {
		return respondWithAppError(c, err)
	}
	unread, err := s.notificationService.UnreadCount(ctx, userID)
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"notifications": list,
		"unread_count":  unread,
	})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
// @Summary Mark notification read
// @Tags notifications
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} object{success=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications/{id}/read [post]
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.notificationService.MarkRead(c.UserContext(), currentUserID(c), id); err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
// @Summary Mark all notifications read
// @Tags notifications
// @Security BearerAuth
// @Success 200 {object} object{success=bool,updated=int}
// @Router /notifications/read-all [post]
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	updated, err := s.notificationService.MarkAllRead(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "updated": updated})
}

// DeleteNotification handles DELETE /api/notifications/:id and POST /api/notifications/:id/delete
// @Summary Delete notification
// @Description Only the recipient can delete; anything else is 404
// @Tags notifications
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} object{success=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /notifications/{id} [delete]
func (s *Server) DeleteNotification(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.notificationService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

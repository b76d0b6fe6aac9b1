package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SetUserAdmin handles PUT /api/users/:id/admin - grants or revokes
// moderator privileges on an account.
func (s *Server) SetUserAdmin(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		IsAdmin bool `json:"is_admin"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.SetAdmin(c.Context(), id, req.IsAdmin)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

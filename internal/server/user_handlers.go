package server

import (
	"context"
	"strings"
	"time"

	"circles/internal/models"
	"circles/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateUser handles POST /api/users
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.CreateUser(c.UserContext(),
		strings.TrimSpace(req.Username), strings.TrimSpace(req.Email))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusCreated, user, "User created")
}

// GetAllUsers handles GET /api/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	search := strings.TrimSpace(c.Query("search"))
	page := parsePagination(c, service.DefaultUsersPerPage)

	users, err := s.userService.GetAllUsers(ctx, search, page.Limit, page.Page)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, users, "Users found")
}

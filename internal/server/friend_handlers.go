package server

import (
	"context"
	"strings"
	"time"

	"circles/internal/models"
	"circles/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AddFriend handles POST /api/users/:userId/friends
func (s *Server) AddFriend(c *fiber.Ctx) error {
	userID, err := s.parseUUIDParam(c, "userId")
	if err != nil {
		return nil
	}

	var req struct {
		FriendUserID string `json:"friendUserId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}
	if _, err := uuid.Parse(req.FriendUserID); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid friend user ID"))
	}

	friendship, err := s.friendService.AddFriend(c.UserContext(), userID, req.FriendUserID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusCreated, friendship, "Friend request sent")
}

// GetUserFriends handles GET /api/users/:userId/friends
func (s *Server) GetUserFriends(c *fiber.Ctx) error {
	userID, err := s.parseUUIDParam(c, "userId")
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	search := strings.TrimSpace(c.Query("search"))
	page := parsePagination(c, service.DefaultFriendsPerPage)

	friends, err := s.friendService.GetUserFriendList(ctx, userID, search, page.Limit, page.Page)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, friends, "Friends found")
}

// ConfirmFriendRequest handles PATCH /api/users/:userId/friends/:friendshipId
func (s *Server) ConfirmFriendRequest(c *fiber.Ctx) error {
	userID, err := s.parseUUIDParam(c, "userId")
	if err != nil {
		return nil
	}
	friendshipID, err := s.parseUUIDParam(c, "friendshipId")
	if err != nil {
		return nil
	}

	friendship, err := s.friendService.ConfirmFriendRequest(c.UserContext(), userID, friendshipID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, friendship, "Friend request confirmed")
}

// RemoveFriend handles DELETE /api/users/:userId/friends/:friendshipId
func (s *Server) RemoveFriend(c *fiber.Ctx) error {
	userID, err := s.parseUUIDParam(c, "userId")
	if err != nil {
		return nil
	}
	friendshipID, err := s.parseUUIDParam(c, "friendshipId")
	if err != nil {
		return nil
	}

	friendship, err := s.friendService.RemoveFriend(c.UserContext(), userID, friendshipID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, friendship, "Friend removed")
}

package server

import (
	"circles/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

// GetStats handles GET /api/stats
func (s *Server) GetStats(c *fiber.Ctx) error {
	var overview models.StatsOverview

	g, gctx := errgroup.WithContext(c.UserContext())
	g.Go(func() error {
		stats, err := s.userService.GetUserStats(gctx)
		if err != nil {
			return err
		}
		overview.Users = *stats
		return nil
	})
	g.Go(func() error {
		stats, err := s.friendService.GetFriendshipStats(gctx)
		if err != nil {
			return err
		}
		overview.Friendships = *stats
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.RespondWithError(c, err)
	}

	return models.RespondWithData(c, fiber.StatusOK, overview, "Stats found")
}

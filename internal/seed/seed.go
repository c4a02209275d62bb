// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"strings"

	"circles/internal/models"
	"circles/internal/repository"
	"circles/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	NumFriendships int
	ShouldClean    bool
}

// Seed populates the database with fake users and a friendship mesh. Edges
// are created through the service layer so the denormalized counters stay
// consistent with the rows.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Seeding %d users and %d friendships...", opts.NumUsers, opts.NumFriendships)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	userService := service.NewUserService(repository.NewUserRepository(db))
	friendService := service.NewFriendService(repository.NewFriendRepository(db), userService)

	ctx := context.Background()

	userIDs, err := createFakeUsers(ctx, userService, opts.NumUsers)
	if err != nil {
		return err
	}
	log.Printf("Created %d users", len(userIDs))

	created, err := createFakeFriendships(ctx, friendService, userIDs, opts.NumFriendships)
	if err != nil {
		return err
	}
	log.Printf("Created %d friendships", created)

	return nil
}

func createFakeUsers(ctx context.Context, users *service.UserService, n int) ([]string, error) {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		username := gofakeit.Username()
		if len(username) > service.MaxUsernameChars {
			username = username[:service.MaxUsernameChars]
		}
		for len(username) < service.MinUsernameChars {
			username += gofakeit.Letter()
		}

		user, err := users.CreateUser(ctx, username, gofakeit.Email())
		if err != nil {
			// Duplicate usernames/emails happen with fake data; skip and move on.
			if isConflict(err) {
				continue
			}
			return nil, err
		}
		ids = append(ids, user.ID)
	}
	return ids, nil
}

func createFakeFriendships(ctx context.Context, friends *service.FriendService, userIDs []string, n int) (int, error) {
	if len(userIDs) < 2 {
		return 0, errors.New("need at least two users to seed friendships")
	}

	created := 0
	for i := 0; i < n; i++ {
		userID := userIDs[rand.Intn(len(userIDs))]
		friendUserID := pickOther(userIDs, userID)

		friendship, err := friends.AddFriend(ctx, userID, friendUserID)
		if err != nil {
			// Random pairs collide; duplicates are expected and skipped.
			if isConflict(err) {
				continue
			}
			return created, err
		}
		created++

		// Confirm roughly half the requests so both lifecycle states exist.
		if rand.Intn(2) == 0 {
			if _, err := friends.ConfirmFriendRequest(ctx, friendUserID, friendship.ID); err != nil {
				return created, err
			}
		}
	}
	return created, nil
}

func isConflict(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Status == fiber.StatusConflict
}

func pickOther(userIDs []string, userID string) string {
	for {
		candidate := userIDs[rand.Intn(len(userIDs))]
		if candidate != userID {
			return candidate
		}
	}
}

func clearData(db *gorm.DB) error {
	var errs []string
	if err := db.Exec("DELETE FROM user_friends").Error; err != nil {
		errs = append(errs, err.Error())
	}
	if err := db.Exec("DELETE FROM users").Error; err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

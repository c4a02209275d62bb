// Package service implements the application's business logic.
package service

import (
	"context"
	"fmt"
	"net/mail"
	"unicode/utf8"

	"circles/internal/cache"
	"circles/internal/middleware"
	"circles/internal/models"
	"circles/internal/repository"
)

// Account ledger constants. The page size is a deployment constant, not a
// caller-tunable default.
const (
	MinUsernameChars = 3
	MaxUsernameChars = 16
	MaxEmailChars    = 320

	DefaultUsersPerPage = 50
)

// UserService owns user identity and the denormalized social counters. It has
// no knowledge of edge semantics beyond "adjust a counter for these user ids".
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UserExists reports whether a user with the given id exists. A missing id
// yields false, never an error.
func (s *UserService) UserExists(ctx context.Context, userID string) (bool, error) {
	return s.userRepo.Exists(ctx, userID)
}

// GetUserByID fetches a single user row.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// CreateUser validates and inserts a new user. The username/email pre-checks
// exist for clean conflict messages; the storage-level unique constraints are
// the authoritative guard against races.
func (s *UserService) CreateUser(ctx context.Context, username, email string) (*models.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError(fmt.Sprintf("User with username '%s' already exists", username))
	}

	existing, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError(fmt.Sprintf("User with email '%s' already exists", email))
	}

	user := &models.User{
		Username: username,
		Email:    email,
		IsActive: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.UsersCreated.Inc()
	cache.InvalidateUserStats(ctx)

	return user, nil
}

// GetAllUsers returns a page of users, most recently updated first, optionally
// filtered by a case-insensitive username substring. An out-of-range page
// yields an empty slice, not an error.
func (s *UserService) GetAllUsers(ctx context.Context, search string, limit, page int) ([]models.User, error) {
	if limit <= 0 {
		limit = DefaultUsersPerPage
	}
	return s.userRepo.List(ctx, search, limit, calculateOffset(page, limit))
}

// IncrementFriendCount adds one to the confirmed-friend counter of every
// given user in one atomic storage operation.
func (s *UserService) IncrementFriendCount(ctx context.Context, userIDs ...string) error {
	return s.userRepo.IncrementCounter(ctx, repository.FriendCountColumn, userIDs...)
}

// DecrementFriendCount subtracts one from the confirmed-friend counter of
// every given user, flooring at zero.
func (s *UserService) DecrementFriendCount(ctx context.Context, userIDs ...string) error {
	return s.userRepo.DecrementCounter(ctx, repository.FriendCountColumn, userIDs...)
}

// IncrementPendingFriendCount adds one to the received-pending counter of
// every given user in one atomic storage operation.
func (s *UserService) IncrementPendingFriendCount(ctx context.Context, userIDs ...string) error {
	return s.userRepo.IncrementCounter(ctx, repository.PendingFriendCountColumn, userIDs...)
}

// DecrementPendingFriendCount subtracts one from the received-pending counter
// of every given user, flooring at zero.
func (s *UserService) DecrementPendingFriendCount(ctx context.Context, userIDs ...string) error {
	return s.userRepo.DecrementCounter(ctx, repository.PendingFriendCountColumn, userIDs...)
}

// GetUserStats returns the total user count, cached for a short TTL.
func (s *UserService) GetUserStats(ctx context.Context) (*models.UserStats, error) {
	var stats models.UserStats
	err := cache.Aside(ctx, cache.UserStatsKey, &stats, cache.StatsTTL, func() error {
		total, err := s.userRepo.Count(ctx)
		if err != nil {
			return err
		}
		stats.Total = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameChars || n > MaxUsernameChars {
		return models.NewValidationError(
			fmt.Sprintf("Username must be between %d and %d characters", MinUsernameChars, MaxUsernameChars))
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) == 0 || len(email) > MaxEmailChars {
		return models.NewValidationError(
			fmt.Sprintf("Email must be between 1 and %d characters", MaxEmailChars))
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return models.NewValidationError("Email address is not valid")
	}
	return nil
}

// calculateOffset converts a 1-indexed page number into a row offset.
func calculateOffset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

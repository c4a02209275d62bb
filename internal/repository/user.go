// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"circles/internal/models"

	"gorm.io/gorm"
)

// CounterColumn names a user counter that can be adjusted atomically.
// Restricting the type keeps raw column names out of caller code paths.
type CounterColumn string

const (
	// FriendCountColumn is the confirmed-friendship counter.
	FriendCountColumn CounterColumn = "friend_count"
	// PendingFriendCountColumn is the received-pending-request counter.
	PendingFriendCountColumn CounterColumn = "pending_friend_count"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context, search string, limit, offset int) ([]models.User, error)
	IncrementCounter(ctx context.Context, column CounterColumn, userIDs ...string) error
	DecrementCounter(ctx context.Context, column CounterColumn, userIDs ...string) error
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Exists probes for a user id without fetching the row. A missing id is not
// an error.
func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User does not exist")
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User with that username or email already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// List returns users ordered by most recent update, optionally filtered by a
// case-insensitive username substring match.
func (r *userRepository) List(ctx context.Context, search string, limit, offset int) ([]models.User, error) {
	users := []models.User{}
	query := r.db.WithContext(ctx).Model(&models.User{})
	if search != "" {
		query = query.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if err := query.
		Order("updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// IncrementCounter adds one to the given counter for every listed user in a
// single UPDATE. The arithmetic happens in storage, not in application code,
// so concurrent calls never lose updates.
func (r *userRepository) IncrementCounter(ctx context.Context, column CounterColumn, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	col := string(column)
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id IN ?", userIDs).
		UpdateColumn(col, gorm.Expr(col+" + 1")).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// DecrementCounter subtracts one from the given counter for every listed
// user, clamping at zero. A counter already at zero stays there; a decrement
// never errors.
func (r *userRepository) DecrementCounter(ctx context.Context, column CounterColumn, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	col := string(column)
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id IN ?", userIDs).
		UpdateColumn(col, gorm.Expr("CASE WHEN "+col+" > 0 THEN "+col+" - 1 ELSE 0 END")).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite reports "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

package repository

import (
	"context"
	"errors"
	"strings"

	"circles/internal/models"

	"gorm.io/gorm"
)

// FriendRepository defines the interface for friendship-edge data operations.
type FriendRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	GetBetweenUsers(ctx context.Context, userID, friendUserID string) (*models.Friendship, error)
	GetReceivedByID(ctx context.Context, id, recipientID string) (*models.Friendship, error)
	GetForParticipant(ctx context.Context, id, participantID string) (*models.Friendship, error)
	Confirm(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ListForUser(ctx context.Context, userID, search string, limit, offset int) ([]models.Friendship, error)
	Count(ctx context.Context) (int64, error)
}

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	if err := r.db.WithContext(ctx).Create(friendship).Error; err != nil {
		// The pair uniqueness index is the authoritative guard; the engine's
		// pre-check can race past concurrent inserts.
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Users are already friends or there is an existing pending request")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// GetBetweenUsers finds the edge between two users in either direction.
// Returns nil when no edge exists.
func (r *friendRepository) GetBetweenUsers(ctx context.Context, userID, friendUserID string) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.WithContext(ctx).
		Where("(user_id = ? AND friend_user_id = ?) OR (user_id = ? AND friend_user_id = ?)",
			userID, friendUserID, friendUserID, userID).
		First(&friendship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

// GetReceivedByID finds the edge with the given id where recipientID is the
// recipient. Returns nil when no such edge exists, which deliberately does
// not distinguish "wrong id" from "not the recipient".
func (r *friendRepository) GetReceivedByID(ctx context.Context, id, recipientID string) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.WithContext(ctx).
		Where("id = ? AND friend_user_id = ?", id, recipientID).
		First(&friendship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

// GetForParticipant finds the edge with the given id where participantID is
// on either side. Returns nil when no such edge exists.
func (r *friendRepository) GetForParticipant(ctx context.Context, id, participantID string) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := r.db.WithContext(ctx).
		Where("id = ? AND (user_id = ? OR friend_user_id = ?)", id, participantID, participantID).
		First(&friendship).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &friendship, nil
}

func (r *friendRepository) Confirm(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("id = ?", id).
		Update("is_confirmed", true).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Friendship{}, "id = ?", id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListForUser returns edges where the user is either party, confirmed or
// pending, with both usernames joined in. No ORDER BY is pinned; callers must
// not rely on insertion order.
func (r *friendRepository) ListForUser(ctx context.Context, userID, search string, limit, offset int) ([]models.Friendship, error) {
	friendships := []models.Friendship{}

	query := r.db.WithContext(ctx).
		Table("user_friends").
		Select("user_friends.*, initiator.username AS user_username, recipient.username AS friend_user_username").
		Joins("JOIN users initiator ON initiator.id = user_friends.user_id").
		Joins("JOIN users recipient ON recipient.id = user_friends.friend_user_id").
		Where("user_friends.user_id = ? OR user_friends.friend_user_id = ?", userID, userID)

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(initiator.username) LIKE ? OR LOWER(recipient.username) LIKE ?", pattern, pattern)
	}

	if err := query.
		Limit(limit).
		Offset(offset).
		Find(&friendships).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return friendships, nil
}

func (r *friendRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Friendship{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

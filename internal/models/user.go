// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a user account with its denormalized social counters.
//
// FriendCount is the number of confirmed friendships the user participates in,
// from either side of the edge. PendingFriendCount counts unconfirmed requests
// where the user is the recipient; requests the user initiated are not counted.
type User struct {
	ID                 string    `gorm:"type:uuid;primaryKey" json:"id"`
	Username           string    `gorm:"size:16;uniqueIndex;not null" json:"username"`
	Email              string    `gorm:"size:320;uniqueIndex;not null" json:"email"`
	FriendCount        int       `gorm:"not null;default:0;index" json:"friendCount"`
	PendingFriendCount int       `gorm:"not null;default:0;index" json:"pendingFriendCount"`
	IsActive           bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key when one was not provided.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserStats holds aggregate user counts for the dashboard.
type UserStats struct {
	Total int64 `json:"total"`
}

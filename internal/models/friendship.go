// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Friendship represents a single directed friend-request edge between two
// distinct users. The relationship is symmetric in meaning once confirmed but
// asymmetric in storage: exactly one row exists per unordered pair, so every
// "is X a friend of Y" query has to check both direction columns.
type Friendship struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string `gorm:"type:uuid;not null;index" json:"userId"`
	FriendUserID string `gorm:"type:uuid;not null;index" json:"friendUserId"`
	Nickname     string `gorm:"size:20" json:"nickname,omitempty"`
	IsConfirmed  bool   `gorm:"not null;default:false" json:"isConfirmed"`
	// IsBlocked is reserved for moderation; no current transition sets it.
	IsBlocked bool      `gorm:"not null;default:false" json:"isBlocked"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relationships
	User       *User `gorm:"foreignKey:UserID" json:"-"`
	FriendUser *User `gorm:"foreignKey:FriendUserID" json:"-"`

	// Usernames of both parties; populated by the friend-list read join only.
	UserUsername       string `gorm:"->;-:migration" json:"userUsername,omitempty"`
	FriendUserUsername string `gorm:"->;-:migration" json:"friendUserUsername,omitempty"`
}

// TableName specifies the table name for GORM
func (Friendship) TableName() string {
	return "user_friends"
}

// BeforeCreate assigns a UUID primary key when one was not provided.
func (f *Friendship) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// FriendshipStats holds aggregate edge counts for the dashboard. Total covers
// both confirmed and pending edges; the two states are not distinguished.
type FriendshipStats struct {
	Total int64 `json:"total"`
}

// StatsOverview combines user and friendship aggregates for the stats endpoint.
type StatsOverview struct {
	Users       UserStats       `json:"users"`
	Friendships FriendshipStats `json:"friendships"`
}

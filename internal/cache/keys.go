package cache

import (
	"context"
	"time"
)

const (
	UserStatsKey       = "stats:users"
	FriendshipStatsKey = "stats:friendships"
)

// StatsTTL bounds how stale the dashboard aggregates may get between
// invalidations.
const StatsTTL = 30 * time.Second

// InvalidateUserStats drops the cached user aggregate.
func InvalidateUserStats(ctx context.Context) {
	Invalidate(ctx, UserStatsKey)
}

// InvalidateFriendshipStats drops the cached friendship aggregate.
func InvalidateFriendshipStats(ctx context.Context) {
	Invalidate(ctx, FriendshipStatsKey)
}

package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"circles/internal/cache"
	"circles/internal/middleware"
	"circles/internal/models"
	"circles/internal/observability"
	"circles/internal/repository"
)

// DefaultFriendsPerPage is the page size for friendship listings.
const DefaultFriendsPerPage = 25

// FriendService owns the friendship edge lifecycle: request, confirm, remove.
// Counter maintenance on both endpoints is delegated to the UserService so
// that the edge logic never touches user rows directly.
type FriendService struct {
	friendRepo  repository.FriendRepository
	userService *UserService
}

// NewFriendService returns a new FriendService.
func NewFriendService(friendRepo repository.FriendRepository, userService *UserService) *FriendService {
	return &FriendService{friendRepo: friendRepo, userService: userService}
}

// AddFriend creates a pending friendship request from userID to friendUserID
// and bumps the recipient's pending counter. The initiator's counters are
// untouched until the request is confirmed.
func (s *FriendService) AddFriend(ctx context.Context, userID, friendUserID string) (_ *models.Friendship, err error) {
	span, ctx := observability.NewSpan(ctx, "FriendService.AddFriend")
	defer func() {
		span.SetError(err)
		span.End()
	}()
	span.AddAttributes(
		attribute.String("friendship.user_id", userID),
		attribute.String("friendship.friend_user_id", friendUserID),
	)

	if userID == friendUserID {
		return nil, models.NewForbiddenError("You cannot add yourself as a friend")
	}

	g, gctx := errgroup.WithContext(ctx)
	var userExists, friendExists bool
	g.Go(func() error {
		var err error
		userExists, err = s.userService.UserExists(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		friendExists, err = s.userService.UserExists(gctx, friendUserID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !userExists || !friendExists {
		return nil, models.NewNotFoundError("One or both users (initiator or receiver) do not exist")
	}

	existing, err := s.friendRepo.GetBetweenUsers(ctx, userID, friendUserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Users are already friends or there is an existing pending request")
	}

	friendship := &models.Friendship{
		UserID:       userID,
		FriendUserID: friendUserID,
		IsConfirmed:  false,
	}
	if err := s.friendRepo.Create(ctx, friendship); err != nil {
		return nil, err
	}

	if err := s.userService.IncrementPendingFriendCount(ctx, friendUserID); err != nil {
		return nil, err
	}

	middleware.FriendshipTransitions.WithLabelValues(middleware.TransitionRequested).Inc()
	cache.InvalidateFriendshipStats(ctx)

	return friendship, nil
}

// ConfirmFriendRequest flips a pending request to confirmed. Only the
// recipient of the request may confirm it; the row lookup is keyed on both
// the friendship id and the recipient id, so an initiator or a stranger gets
// a not-found rather than a hint that the row exists.
func (s *FriendService) ConfirmFriendRequest(ctx context.Context, userID, friendshipID string) (_ *models.Friendship, err error) {
	span, ctx := observability.NewSpan(ctx, "FriendService.ConfirmFriendRequest")
	defer func() {
		span.SetError(err)
		span.End()
	}()
	span.AddAttributes(
		attribute.String("friendship.id", friendshipID),
		attribute.String("friendship.recipient_id", userID),
	)

	exists, err := s.userService.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("User does not exist")
	}

	friendship, err := s.friendRepo.GetReceivedByID(ctx, friendshipID, userID)
	if err != nil {
		return nil, err
	}
	if friendship == nil {
		return nil, models.NewNotFoundError("Friendship request not found (or you did not receive this request)")
	}
	if friendship.IsConfirmed {
		return nil, models.NewConflictError("Users are already friends")
	}

	if err := s.friendRepo.Confirm(ctx, friendshipID); err != nil {
		return nil, err
	}
	friendship.IsConfirmed = true

	// Both counter updates are single atomic statements, but they are not
	// wrapped in one transaction; a crash between them can skew counters
	// until the next reconciliation.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.userService.IncrementFriendCount(gctx, friendship.UserID, friendship.FriendUserID)
	})
	g.Go(func() error {
		return s.userService.DecrementPendingFriendCount(gctx, friendship.UserID, friendship.FriendUserID)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	middleware.FriendshipTransitions.WithLabelValues(middleware.TransitionConfirmed).Inc()
	cache.InvalidateFriendshipStats(ctx)

	return friendship, nil
}

// RemoveFriend deletes a friendship edge that the given user participates in,
// in either role, whether still pending or already confirmed. Counter cleanup
// depends on which state the edge was in.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendshipID string) (_ *models.Friendship, err error) {
	span, ctx := observability.NewSpan(ctx, "FriendService.RemoveFriend")
	defer func() {
		span.SetError(err)
		span.End()
	}()
	span.AddAttributes(
		attribute.String("friendship.id", friendshipID),
		attribute.String("friendship.participant_id", userID),
	)

	friendship, err := s.friendRepo.GetForParticipant(ctx, friendshipID, userID)
	if err != nil {
		return nil, err
	}
	if friendship == nil {
		return nil, models.NewNotFoundError("Friendship does not exist")
	}

	if err := s.friendRepo.Delete(ctx, friendshipID); err != nil {
		return nil, err
	}

	if friendship.IsConfirmed {
		err = s.userService.DecrementFriendCount(ctx, friendship.UserID, friendship.FriendUserID)
	} else {
		// Both sides are decremented even though only the recipient gained a
		// pending count; the zero clamp absorbs the initiator's side.
		err = s.userService.DecrementPendingFriendCount(ctx, friendship.UserID, friendship.FriendUserID)
	}
	if err != nil {
		return nil, err
	}

	middleware.FriendshipTransitions.WithLabelValues(middleware.TransitionRemoved).Inc()
	cache.InvalidateFriendshipStats(ctx)

	return friendship, nil
}

// GetUserFriendList returns a page of the user's friendship rows, pending and
// confirmed, in either role, with both usernames joined in. An out-of-range
// page or an unknown user yields an empty slice.
func (s *FriendService) GetUserFriendList(ctx context.Context, userID, search string, limit, page int) ([]models.Friendship, error) {
	if limit <= 0 {
		limit = DefaultFriendsPerPage
	}
	return s.friendRepo.ListForUser(ctx, userID, search, limit, calculateOffset(page, limit))
}

// GetFriendshipStats returns the total friendship edge count, cached for a
// short TTL.
func (s *FriendService) GetFriendshipStats(ctx context.Context) (*models.FriendshipStats, error) {
	var stats models.FriendshipStats
	err := cache.Aside(ctx, cache.FriendshipStatsKey, &stats, cache.StatsTTL, func() error {
		total, err := s.friendRepo.Count(ctx)
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

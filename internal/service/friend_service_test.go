package service

import (
	"context"
	"errors"
	"testing"

	"circles/internal/models"
	"circles/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type friendRepoStub struct {
	createFn            func(context.Context, *models.Friendship) error
	getBetweenUsersFn   func(context.Context, string, string) (*models.Friendship, error)
	getReceivedByIDFn   func(context.Context, string, string) (*models.Friendship, error)
	getForParticipantFn func(context.Context, string, string) (*models.Friendship, error)
	confirmFn           func(context.Context, string) error
	deleteFn            func(context.Context, string) error
	listForUserFn       func(context.Context, string, string, int, int) ([]models.Friendship, error)
	countFn             func(context.Context) (int64, error)
}

func (s *friendRepoStub) Create(ctx context.Context, friendship *models.Friendship) error {
	return s.createFn(ctx, friendship)
}
func (s *friendRepoStub) GetBetweenUsers(ctx context.Context, userID, friendUserID string) (*models.Friendship, error) {
	return s.getBetweenUsersFn(ctx, userID, friendUserID)
}
func (s *friendRepoStub) GetReceivedByID(ctx context.Context, id, recipientID string) (*models.Friendship, error) {
	return s.getReceivedByIDFn(ctx, id, recipientID)
}
func (s *friendRepoStub) GetForParticipant(ctx context.Context, id, participantID string) (*models.Friendship, error) {
	return s.getForParticipantFn(ctx, id, participantID)
}
func (s *friendRepoStub) Confirm(ctx context.Context, id string) error {
	return s.confirmFn(ctx, id)
}
func (s *friendRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *friendRepoStub) ListForUser(ctx context.Context, userID, search string, limit, offset int) ([]models.Friendship, error) {
	return s.listForUserFn(ctx, userID, search, limit, offset)
}
func (s *friendRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}

type userRepoStub struct {
	existsFn           func(context.Context, string) (bool, error)
	getByIDFn          func(context.Context, string) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	getByEmailFn       func(context.Context, string) (*models.User, error)
	createFn           func(context.Context, *models.User) error
	listFn             func(context.Context, string, int, int) ([]models.User, error)
	incrementCounterFn func(context.Context, repository.CounterColumn, ...string) error
	decrementCounterFn func(context.Context, repository.CounterColumn, ...string) error
	countFn            func(context.Context) (int64, error)
}

func (s *userRepoStub) Exists(ctx context.Context, id string) (bool, error) {
	return s.existsFn(ctx, id)
}
func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) List(ctx context.Context, search string, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, search, limit, offset)
}
func (s *userRepoStub) IncrementCounter(ctx context.Context, column repository.CounterColumn, userIDs ...string) error {
	return s.incrementCounterFn(ctx, column, userIDs...)
}
func (s *userRepoStub) DecrementCounter(ctx context.Context, column repository.CounterColumn, userIDs ...string) error {
	return s.decrementCounterFn(ctx, column, userIDs...)
}
func (s *userRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		existsFn:        func(context.Context, string) (bool, error) { return true, nil },
		getByIDFn:       func(context.Context, string) (*models.User, error) { return &models.User{}, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
		listFn: func(context.Context, string, int, int) ([]models.User, error) {
			return nil, nil
		},
		incrementCounterFn: func(context.Context, repository.CounterColumn, ...string) error { return nil },
		decrementCounterFn: func(context.Context, repository.CounterColumn, ...string) error { return nil },
		countFn:            func(context.Context) (int64, error) { return 0, nil },
	}
}

func noopFriendRepo() *friendRepoStub {
	return &friendRepoStub{
		createFn: func(context.Context, *models.Friendship) error { return nil },
		getBetweenUsersFn: func(context.Context, string, string) (*models.Friendship, error) {
			return nil, nil
		},
		getReceivedByIDFn: func(context.Context, string, string) (*models.Friendship, error) {
			return &models.Friendship{}, nil
		},
		getForParticipantFn: func(context.Context, string, string) (*models.Friendship, error) {
			return &models.Friendship{}, nil
		},
		confirmFn: func(context.Context, string) error { return nil },
		deleteFn:  func(context.Context, string) error { return nil },
		listForUserFn: func(context.Context, string, string, int, int) ([]models.Friendship, error) {
			return nil, nil
		},
		countFn: func(context.Context) (int64, error) { return 0, nil },
	}
}

func newFriendService(friendRepo *friendRepoStub, userRepo *userRepoStub) *FriendService {
	return NewFriendService(friendRepo, NewUserService(userRepo))
}

func assertAppErrorStatus(t *testing.T, err error, status int) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, status, appErr.Status)
	return appErr
}

const (
	aliceID = "11111111-1111-4111-8111-111111111111"
	bobID   = "22222222-2222-4222-8222-222222222222"
	edgeID  = "33333333-3333-4333-8333-333333333333"
)

func TestFriendService_AddFriend(t *testing.T) {
	t.Parallel()

	t.Run("creates pending request and bumps recipient pending count", func(t *testing.T) {
		t.Parallel()
		friendRepo := noopFriendRepo()
		userRepo := noopUserRepo()

		var created *models.Friendship
		friendRepo.createFn = func(_ context.Context, f *models.Friendship) error {
			created = f
			return nil
		}
		var bumpedColumn repository.CounterColumn
		var bumpedIDs []string
		userRepo.incrementCounterFn = func(_ context.Context, col repository.CounterColumn, ids ...string) error {
			bumpedColumn = col
			bumpedIDs = ids
			return nil
		}

		svc := newFriendService(friendRepo, userRepo)
		friendship, err := svc.AddFriend(context.Background(), aliceID, bobID)
		require.NoError(t, err)

		require.NotNil(t, created)
		assert.Equal(t, aliceID, friendship.UserID)
		assert.Equal(t, bobID, friendship.FriendUserID)
		assert.False(t, friendship.IsConfirmed)

		assert.Equal(t, repository.PendingFriendCountColumn, bumpedColumn)
		assert.Equal(t, []string{bobID}, bumpedIDs, "only the recipient's pending count moves")
	})

	t.Run("self friendship is forbidden", func(t *testing.T) {
		t.Parallel()
		svc := newFriendService(noopFriendRepo(), noopUserRepo())
		_, err := svc.AddFriend(context.Background(), aliceID, aliceID)
		appErr := assertAppErrorStatus(t, err, fiber.StatusForbidden)
		assert.Equal(t, "You cannot add yourself as a friend", appErr.Message)
	})

	t.Run("missing participant is not found", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.existsFn = func(_ context.Context, id string) (bool, error) {
			return id != bobID, nil
		}
		svc := newFriendService(noopFriendRepo(), userRepo)
		_, err := svc.AddFriend(context.Background(), aliceID, bobID)
		appErr := assertAppErrorStatus(t, err, fiber.StatusNotFound)
		assert.Equal(t, "One or both users (initiator or receiver) do not exist", appErr.Message)
	})

	t.Run("existing edge in either direction conflicts", func(t *testing.T) {
		t.Parallel()
		friendRepo := noopFriendRepo()
		friendRepo.getBetweenUsersFn = func(context.Context, string, string) (*models.Friendship, error) {
			return &models.Friendship{ID: edgeID, UserID: bobID, FriendUserID: aliceID}, nil
		}
		svc := newFriendService(friendRepo, noopUserRepo())
		_, err := svc.AddFriend(context.Background(), aliceID, bobID)
		assertAppErrorStatus(t, err, fiber.StatusConflict)
	})

	t.Run("create error propagates without counter bump", func(t *testing.T) {
		t.Parallel()
		friendRepo := noopFriendRepo()
		userRepo := noopUserRepo()
		repoErr := errors.New("insert failed")
		friendRepo.createFn = func(context.Context, *models.Friendship) error { return repoErr }
		bumped := false
		userRepo.incrementCounterFn = func(context.Context, repository.CounterColumn, ...string) error {
			bumped = true
			return nil
		}
		svc := newFriendService(friendRepo, userRepo)
		_, err := svc.AddFriend(context.Background(), aliceID, bobID)
		assert.ErrorIs(t, err, repoErr)
		assert.False(t, bumped)
	})
}

func TestFriendService_ConfirmFriendRequest(t *testing.T) {
	t.Parallel()

	t.Run("confirms and moves counters for both users", func(t *testing.T) {
		t.Parallel()
		friendRepo := noopFriendRepo()
		userRepo := noopUserRepo()

		friendRepo.getReceivedByIDFn = func(_ context.Context, id, recipientID string) (*models.Friendship, error) {
			assert.Equal(t, edgeID, id)
			assert.Equal(t, bobID, recipientID)
			return &models.Friendship{ID: edgeID, UserID: aliceID, FriendUserID: bobID}, nil
		}
		confirmed := false
		friendRepo.confirmFn = func(_ context.Context, id string) error {
			confirmed = true
			return nil
		}
		incremented := map[repository.CounterColumn][]string{}
		userRepo.incrementCounterFn = func(_ context.Context, col repository.CounterColumn, ids ...string) error {
			incremented[col] = ids
			return nil
		}
		decremented := map[repository.CounterColumn][]string{}
		userRepo.decrementCounterFn = func(_ context.Context, col repository.CounterColumn, ids ...string) error {
			decremented[col] = ids
			return nil
		}

		svc := newFriendService(friendRepo, userRepo)
		friendship, err := svc.ConfirmFriendRequest(context.Background(), bobID, edgeID)
		require.NoError(t, err)

		assert.True(t, confirmed)
		assert.True(t, friendship.IsConfirmed)
		assert.ElementsMatch(t, []string{aliceID, bobID}, incremented[repository.FriendCountColumn])
		assert.ElementsMatch(t, []string{aliceID, bobID}, decremented[repository.PendingFriendCountColumn])
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		t.Parallel()
		userRepo := noopUserRepo()
		userRepo.existsFn = func(context.Context, string) (bool, error) { return false, nil }
		svc := newFriendService(noopFriendRepo(), userRepo)
		_, err := svc.ConfirmFriendRequest(context.Background(), bobID, edgeID)
		appErr := assertAppErrorStatus(t, err, fiber.StatusNotFound)
		assert.Equal(t, "User does not exist", appErr.Message)
	})

	t.Run("request not received by caller is not found", func(t *testing.T) {
		t.Parallel()
		friendRepo := noopFriendRepo()
		friendRepo.getReceivedByIDFn = func(context.Context, string, string) (*models.Friendship, error) {
			return nil, nil
		}
		svc := newFriendService(friendRepo, noopUserRepo())
		_, err := svc.ConfirmFriendRequest(context.Background(), aliceID, edgeID)
		appErr := assertAppErrorStatus(t, err, fiber.StatusNotFound)
		assert.Equal(t, "Friendship request not found (or you did not receive this request)", appErr.Message)
	})

	t.Run("already confirmed conflicts", func(t *testing.T) {
		t.Parallel()
		friendRepo := noopFriendRepo()
		friendRepo.getReceivedByIDFn = func(context.Context, string, string) (*models.Friendship, error) {
			return &models.Friendship{ID: edgeID, UserID: aliceID, FriendUserID: bobID, IsConfirmed: true}, nil
		}
		svc := newFriendService(friendRepo, noopUserRepo())
		_, err := svc.ConfirmFriendRequest(context.Background(), bobID, edgeID)
		appErr := assertAppErrorStatus(t, err, fiber.StatusConflict)
		assert.Equal(t, "Users are already friends", appErr.Message)
	})
}

func TestFriendService_RemoveFriend(t *testing.T) {
	t.Parallel()

	t.Run("removing a confirmed friendship decrements friend counts", func(t *testing.T) {
		t.Parallel()
		friendRepo := noopFriendRepo()
		userRepo := noopUserRepo()

		friendRepo.getForParticipantFn = func(context.Context, string, string) (*models.Friendship, error) {
			return &models.Friendship{ID: edgeID, UserID: aliceID, FriendUserID: bobID, IsConfirmed: true}, nil
		}
		deleted := false
		friendRepo.deleteFn = func(_ context.Context, id string) error {
			deleted = true
			return nil
		}
		decremented := map[repository.CounterColumn][]string{}
		userRepo.decrementCounterFn = func(_ context.Context, col repository.CounterColumn, ids ...string) error {
			decremented[col] = ids
			return nil
		}

		svc := newFriendService(friendRepo, userRepo)
		_, err := svc.RemoveFriend(context.Background(), bobID, edgeID)
		require.NoError(t, err)

		assert.True(t, deleted)
		assert.ElementsMatch(t, []string{aliceID, bobID}, decremented[repository.FriendCountColumn])
		assert.Empty(t, decremented[repository.PendingFriendCountColumn])
	})

	t.Run("removing a pending request decrements pending counts on both sides", func(t *testing.T) {
		t.Parallel()
		friendRepo := noopFriendRepo()
		userRepo := noopUserRepo()

		friendRepo.getForParticipantFn = func(context.Context, string, string) (*models.Friendship, error) {
			return &models.Friendship{ID: edgeID, UserID: aliceID, FriendUserID: bobID, IsConfirmed: false}, nil
		}
		decremented := map[repository.CounterColumn][]string{}
		userRepo.decrementCounterFn = func(_ context.Context, col repository.CounterColumn, ids ...string) error {
			decremented[col] = ids
			return nil
		}

		svc := newFriendService(friendRepo, userRepo)
		_, err := svc.RemoveFriend(context.Background(), aliceID, edgeID)
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{aliceID, bobID}, decremented[repository.PendingFriendCountColumn])
		assert.Empty(t, decremented[repository.FriendCountColumn])
	})

	t.Run("unknown edge is not found", func(t *testing.T) {
		t.Parallel()
		friendRepo := noopFriendRepo()
		friendRepo.getForParticipantFn = func(context.Context, string, string) (*models.Friendship, error) {
			return nil, nil
		}
		svc := newFriendService(friendRepo, noopUserRepo())
		_, err := svc.RemoveFriend(context.Background(), aliceID, edgeID)
		appErr := assertAppErrorStatus(t, err, fiber.StatusNotFound)
		assert.Equal(t, "Friendship does not exist", appErr.Message)
	})
}

func TestFriendService_GetUserFriendList(t *testing.T) {
	t.Parallel()

	t.Run("applies default limit and page offset", func(t *testing.T) {
		t.Parallel()
		friendRepo := noopFriendRepo()
		var gotLimit, gotOffset int
		friendRepo.listForUserFn = func(_ context.Context, _, _ string, limit, offset int) ([]models.Friendship, error) {
			gotLimit, gotOffset = limit, offset
			return []models.Friendship{}, nil
		}
		svc := newFriendService(friendRepo, noopUserRepo())

		_, err := svc.GetUserFriendList(context.Background(), aliceID, "", 0, 3)
		require.NoError(t, err)
		assert.Equal(t, DefaultFriendsPerPage, gotLimit)
		assert.Equal(t, 2*DefaultFriendsPerPage, gotOffset)
	})

	t.Run("unknown user yields an empty list", func(t *testing.T) {
		t.Parallel()
		friendRepo := noopFriendRepo()
		friendRepo.listForUserFn = func(context.Context, string, string, int, int) ([]models.Friendship, error) {
			return []models.Friendship{}, nil
		}
		userRepo := noopUserRepo()
		userRepo.existsFn = func(context.Context, string) (bool, error) { return false, nil }
		svc := newFriendService(friendRepo, userRepo)
		friendships, err := svc.GetUserFriendList(context.Background(), aliceID, "", 10, 1)
		require.NoError(t, err)
		assert.Empty(t, friendships)
	})
}

package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usersByName(users ...*models.User) *stubUserRepo {
	byName := make(map[string]*models.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}
	return &stubUserRepo{
		getByUsername: func(ctx context.Context, username string) (*models.User, error) {
			return byName[username], nil
		},
	}
}

func TestFollowService_Toggle(t *testing.T) {
	t.Parallel()

	alice := &models.User{ID: 1, Username: "alice"}
	bob := &models.User{ID: 2, Username: "bob"}

	t.Run("unknown author", func(t *testing.T) {
		t.Parallel()
		svc := NewFollowService(&stubFollowRepo{}, usersByName(alice))

		_, err := svc.Toggle(context.Background(), 1, "ghost")
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("self follow", func(t *testing.T) {
		t.Parallel()
		svc := NewFollowService(&stubFollowRepo{}, usersByName(alice))

		_, err := svc.Toggle(context.Background(), 1, "alice")
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("follow then unfollow", func(t *testing.T) {
		t.Parallel()
		following := false
		followRepo := &stubFollowRepo{
			exists: func(ctx context.Context, followerID, followeeID uint) (bool, error) {
				return following, nil
			},
			insert: func(ctx context.Context, followerID, followeeID uint) (bool, error) {
				assert.Equal(t, uint(1), followerID)
				assert.Equal(t, uint(2), followeeID)
				following = true
				return true, nil
			},
			remove: func(ctx context.Context, followerID, followeeID uint) (bool, error) {
				following = false
				return true, nil
			},
			countFollowers: func(ctx context.Context, userID uint) (int64, error) {
				if following {
					return 1, nil
				}
				return 0, nil
			},
		}
		svc := NewFollowService(followRepo, usersByName(alice, bob))

		state, err := svc.Toggle(context.Background(), 1, "bob")
		require.NoError(t, err)
		assert.True(t, state.Following)
		assert.Equal(t, int64(1), state.FollowerCount)

		state, err = svc.Toggle(context.Background(), 1, "bob")
		require.NoError(t, err)
		assert.False(t, state.Following)
		assert.Equal(t, int64(0), state.FollowerCount)
	})
}

func TestFollowService_IsFollowing(t *testing.T) {
	t.Parallel()

	bob := &models.User{ID: 2, Username: "bob"}
	followRepo := &stubFollowRepo{
		exists: func(ctx context.Context, followerID, followeeID uint) (bool, error) {
			return followerID == 1, nil
		},
	}
	svc := NewFollowService(followRepo, usersByName(bob))

	// Anonymous viewers never follow anyone; no lookup happens.
	ok, err := svc.IsFollowing(context.Background(), 0, "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsFollowing(context.Background(), 1, "bob")
	require.NoError(t, err)
	assert.True(t, ok)
}

package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_Signup(t *testing.T) {
	t.Parallel()

	noUsers := &stubUserRepo{
		getByEmail:    func(ctx context.Context, email string) (*models.User, error) { return nil, nil },
		getByUsername: func(ctx context.Context, username string) (*models.User, error) { return nil, nil },
	}

	t.Run("field validation", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noUsers, &stubFollowRepo{})

		_, err := svc.Signup(context.Background(), SignupInput{
			Username: "x",
			Email:    "not-an-email",
			Password: "short",
		})
		assertFieldError(t, err, "username")
		assertFieldError(t, err, "email")
		assertFieldError(t, err, "password")
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		userRepo := &stubUserRepo{
			getByEmail: func(ctx context.Context, email string) (*models.User, error) {
				return &models.User{ID: 1, Email: email}, nil
			},
		}
		svc := NewUserService(userRepo, &stubFollowRepo{})

		_, err := svc.Signup(context.Background(), SignupInput{
			Username: "writer",
			Email:    "taken@example.com",
			Password: "Str0ng-passphrase!",
		})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("hashes the password", func(t *testing.T) {
		t.Parallel()
		var created *models.User
		userRepo := &stubUserRepo{
			getByEmail:    noUsers.getByEmail,
			getByUsername: noUsers.getByUsername,
			create: func(ctx context.Context, user *models.User) error {
				user.ID = 1
				created = user
				return nil
			},
		}
		svc := NewUserService(userRepo, &stubFollowRepo{})

		user, err := svc.Signup(context.Background(), SignupInput{
			Username: "writer",
			Email:    "writer@example.com",
			Password: "Str0ng-passphrase!",
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.NotEqual(t, "Str0ng-passphrase!", user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("Str0ng-passphrase!")))
	})
}

func TestUserService_Login(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng-passphrase!"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo := &stubUserRepo{
		getByEmail: func(ctx context.Context, email string) (*models.User, error) {
			if email == "writer@example.com" {
				return &models.User{ID: 1, Email: email, Password: string(hash)}, nil
			}
			return nil, nil
		},
	}
	svc := NewUserService(userRepo, &stubFollowRepo{})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		user, err := svc.Login(context.Background(), "writer@example.com", "Str0ng-passphrase!")
		require.NoError(t, err)
		assert.Equal(t, uint(1), user.ID)
	})

	// Unknown email and wrong password are indistinguishable to the caller.
	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Login(context.Background(), "ghost@example.com", "Str0ng-passphrase!")
		appErr := assertAppErrorCode(t, err, models.CodeUnauthorized)
		assert.Equal(t, "Invalid email or password", appErr.Message)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Login(context.Background(), "writer@example.com", "nope")
		appErr := assertAppErrorCode(t, err, models.CodeUnauthorized)
		assert.Equal(t, "Invalid email or password", appErr.Message)
	})
}

func TestUserService_GetProfile(t *testing.T) {
	t.Parallel()

	userRepo := &stubUserRepo{
		getByUsername: func(ctx context.Context, username string) (*models.User, error) {
			if username == "writer" {
				return &models.User{ID: 1, Username: username}, nil
			}
			return nil, nil
		},
	}
	followRepo := &stubFollowRepo{
		stats: func(ctx context.Context, userID uint) (*models.AuthorStats, error) {
			return &models.AuthorStats{PostCount: 4, FollowerCount: 2}, nil
		},
		exists: func(ctx context.Context, followerID, followeeID uint) (bool, error) {
			return followerID == 7, nil
		},
	}
	svc := NewUserService(userRepo, followRepo)

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		_, err := svc.GetProfile(context.Background(), "ghost", 0)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("viewer follows", func(t *testing.T) {
		t.Parallel()
		profile, err := svc.GetProfile(context.Background(), "writer", 7)
		require.NoError(t, err)
		assert.Equal(t, int64(4), profile.Stats.PostCount)
		assert.True(t, profile.Following)
	})

	t.Run("own profile never reports following", func(t *testing.T) {
		t.Parallel()
		profile, err := svc.GetProfile(context.Background(), "writer", 1)
		require.NoError(t, err)
		assert.False(t, profile.Following)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()

	stored := &models.User{ID: 1, Username: "writer", Bio: "old bio", Website: "https://old.example.com"}
	userRepo := &stubUserRepo{
		getByID: func(ctx context.Context, id uint) (*models.User, error) { return stored, nil },
		update:  func(ctx context.Context, user *models.User) error { return nil },
	}
	svc := NewUserService(userRepo, &stubFollowRepo{})

	bio := "  new bio  "
	user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{UserID: 1, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "new bio", user.Bio)
	assert.Equal(t, "https://old.example.com", user.Website)
}

package service

import (
	"context"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService implements account management and author profiles.
type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{userRepo: userRepo, followRepo: followRepo}
}

// SignupInput carries a registration request.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Signup validates and creates an account with a bcrypt-hashed password.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	fields := map[string]string{}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.ValidateUsername(in.Username); err != nil {
		fields["username"] = err.Error()
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		fields["email"] = err.Error()
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		fields["password"] = err.Error()
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("Email is already registered")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("Username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and returns the account. The caller issues the
// token. The same error covers unknown email and wrong password.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	return user, nil
}

// IsStaff reports whether the user has the staff flag. This is the lookup
// behind the Authorizer; staff status always comes from the database.
func (s *UserService) IsStaff(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsStaff, nil
}

// AuthorProfile is the public view of an author: the account, its live
// counters, and whether the viewer follows them.
type AuthorProfile struct {
	User      *models.User        `json:"user"`
	Stats     *models.AuthorStats `json:"stats"`
	Following bool                `json:"following"`
}

// GetProfile assembles the profile page data for an author.
func (s *UserService) GetProfile(ctx context.Context, username string, viewerID uint) (*AuthorProfile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}

	stats, err := s.followRepo.Stats(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	profile := &AuthorProfile{User: user, Stats: stats}
	if viewerID != 0 && viewerID != user.ID {
		following, err := s.followRepo.Exists(ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
		profile.Following = following
	}
	return profile, nil
}

// UpdateProfileInput carries a profile edit. Nil pointers leave fields
// untouched.
type UpdateProfileInput struct {
	UserID    uint
	FirstName *string
	LastName  *string
	Bio       *string
	Avatar    *string
	Website   *string
	Twitter   *string
	Facebook  *string
	Instagram *string
	LinkedIn  *string
}

// UpdateProfile applies a partial profile edit to the caller's own account.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&user.FirstName, in.FirstName)
	set(&user.LastName, in.LastName)
	set(&user.Bio, in.Bio)
	set(&user.Avatar, in.Avatar)
	set(&user.Website, in.Website)
	set(&user.Twitter, in.Twitter)
	set(&user.Facebook, in.Facebook)
	set(&user.Instagram, in.Instagram)
	set(&user.LinkedIn, in.LinkedIn)

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListAuthors returns users with published posts for the authors index.
func (s *UserService) ListAuthors(ctx context.Context, page, pageSize int) ([]models.User, int64, error) {
	return s.userRepo.ListAuthors(ctx, pageSize, (page-1)*pageSize)
}

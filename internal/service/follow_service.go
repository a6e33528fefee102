package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// FollowService implements the author follow graph.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// FollowState is the outcome of a toggle: whether the follower now follows
// the author, and the author's updated follower count.
type FollowState struct {
	Following     bool  `json:"following"`
	FollowerCount int64 `json:"follower_count"`
}

// Toggle flips the follow edge. Following an author you already follow
// unfollows; the operation is idempotent under races thanks to the unique
// edge constraint.
func (s *FollowService) Toggle(ctx context.Context, followerID uint, followeeUsername string) (*FollowState, error) {
	followee, err := s.userRepo.GetByUsername(ctx, followeeUsername)
	if err != nil {
		return nil, err
	}
	if followee == nil {
		return nil, models.NewNotFoundError("User", followeeUsername)
	}
	if followee.ID == followerID {
		return nil, models.NewSelfFollowError()
	}

	exists, err := s.followRepo.Exists(ctx, followerID, followee.ID)
	if err != nil {
		return nil, err
	}

	state := &FollowState{}
	if exists {
		if _, err := s.followRepo.Remove(ctx, followerID, followee.ID); err != nil {
			return nil, err
		}
		state.Following = false
	} else {
		if _, err := s.followRepo.Insert(ctx, followerID, followee.ID); err != nil {
			return nil, err
		}
		state.Following = true
	}

	count, err := s.followRepo.CountFollowers(ctx, followee.ID)
	if err != nil {
		return nil, err
	}
	state.FollowerCount = count
	return state, nil
}

// IsFollowing reports whether follower follows the named author.
func (s *FollowService) IsFollowing(ctx context.Context, followerID uint, followeeUsername string) (bool, error) {
	if followerID == 0 {
		return false, nil
	}
	followee, err := s.userRepo.GetByUsername(ctx, followeeUsername)
	if err != nil {
		return false, err
	}
	if followee == nil {
		return false, models.NewNotFoundError("User", followeeUsername)
	}
	return s.followRepo.Exists(ctx, followerID, followee.ID)
}

// Followers lists a user's followers, newest first.
func (s *FollowService) Followers(ctx context.Context, username string, limit, offset int) ([]models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return s.followRepo.ListFollowers(ctx, user.ID, limit, offset)
}

// Stats returns the live counters shown on an author profile.
func (s *FollowService) Stats(ctx context.Context, userID uint) (*models.AuthorStats, error) {
	return s.followRepo.Stats(ctx, userID)
}

package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAuthors handles GET /api/users/authors
// Only users with at least one published post appear.
// @Summary List authors
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} object{authors=[]models.User,total=int}
// @Router /users/authors [get]
func (s *Server) GetAuthors(c *fiber.Ctx) error {
	page := s.parsePagination(c, "index")

	authors, total, err := s.userService.ListAuthors(c.Context(), page.Page, page.PageSize)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"authors":   authors,
		"total":     total,
		"page":      page.Page,
		"page_size": page.PageSize,
	})
}

// GetUserProfile handles GET /api/users/profile/:username
// @Summary Get an author profile with live stats
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} service.AuthorProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/profile/{username} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profile, err := s.userService.GetProfile(c.Context(), c.Params("username"), s.currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	profile.User.Password = ""
	return c.JSON(profile)
}

// GetFollowers handles GET /api/users/profile/:username/followers
// @Summary List an author's followers
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/profile/{username}/followers [get]
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	page := s.parsePagination(c, "index")

	followers, err := s.followService.Followers(c.Context(), c.Params("username"),
		page.PageSize, (page.Page-1)*page.PageSize)
	if err != nil {
		return fail(c, err)
	}
	for i := range followers {
		followers[i].Password = ""
	}
	return c.JSON(followers)
}

// FollowUser handles POST /api/users/:id/follow
// The endpoint is a pure toggle: following an author you already follow
// unfollows them.
// @Summary Toggle following an author
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{success=bool,following=bool,follower_count=int,message=string}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/{id}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	followeeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	followee, gerr := s.userRepo.GetByID(c.Context(), followeeID)
	if gerr != nil {
		return fail(c, gerr)
	}

	state, terr := s.followService.Toggle(c.Context(), s.currentUserID(c), followee.Username)
	if terr != nil {
		return fail(c, terr)
	}

	message := "You are no longer following " + followee.DisplayName()
	if state.Following {
		message = "You are now following " + followee.DisplayName()
	}
	return respondOrRedirect(c, fiber.StatusOK, fiber.Map{
		"following":      state.Following,
		"follower_count": state.FollowerCount,
		"message":        message,
	}, backTo(c))
}

// GetMyProfile handles GET /api/users/me
// @Summary Get the authenticated account
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Security BearerAuth
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.Context(), s.currentUserID(c))
	if err != nil {
		return fail(c, err)
	}
	user.Password = ""
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update the authenticated account's profile
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Bio       *string `json:"bio"`
		Avatar    *string `json:"avatar"`
		Website   *string `json:"website"`
		Twitter   *string `json:"twitter"`
		Facebook  *string `json:"facebook"`
		Instagram *string `json:"instagram"`
		LinkedIn  *string `json:"linkedin"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:    s.currentUserID(c),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Avatar:    req.Avatar,
		Website:   req.Website,
		Twitter:   req.Twitter,
		Facebook:  req.Facebook,
		Instagram: req.Instagram,
		LinkedIn:  req.LinkedIn,
	})
	if err != nil {
		return fail(c, err)
	}
	user.Password = ""
	return c.JSON(user)
}

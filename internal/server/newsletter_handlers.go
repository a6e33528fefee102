package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SubscribeNewsletter handles POST /api/newsletter/subscribe
// Subscribing an address that unsubscribed earlier reactivates it.
// @Summary Subscribe to the newsletter
// @Tags newsletter
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Email"
// @Success 201 {object} object{success=bool,message=string}
// @Failure 400 {object} object{errors=object}
// @Router /newsletter/subscribe [post]
func (s *Server) SubscribeNewsletter(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email" form:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	_, err := s.newsletterService.Subscribe(c.Context(), req.Email)
	if err != nil {
		return fail(c, err)
	}
	return respondOrRedirect(c, fiber.StatusCreated, fiber.Map{
		"message": "You are subscribed. Welcome aboard!",
	}, backTo(c))
}

// UnsubscribeNewsletter handles GET /api/newsletter/unsubscribe/:token
// The token comes from the unsubscribe link in every newsletter email, so no
// authentication is needed. Clicking the link twice is harmless.
// @Summary Unsubscribe from the newsletter
// @Tags newsletter
// @Produce json
// @Param token path string true "Unsubscribe token"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /newsletter/unsubscribe/{token} [get]
func (s *Server) UnsubscribeNewsletter(c *fiber.Ctx) error {
	_, err := s.newsletterService.Unsubscribe(c.Context(), c.Params("token"))
	if err != nil {
		return fail(c, err)
	}
	return respondOrRedirect(c, fiber.StatusOK, fiber.Map{
		"message": "You have been unsubscribed.",
	}, backTo(c))
}

// GetSubscribers handles GET /api/newsletter/subscribers
// @Summary List active subscribers
// @Tags newsletter
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} service.SubscriberPage
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /newsletter/subscribers [get]
func (s *Server) GetSubscribers(c *fiber.Ctx) error {
	page := s.parsePagination(c, "list")

	result, err := s.newsletterService.ListActive(c.Context(), s.currentUserID(c), page.Page, page.PageSize)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

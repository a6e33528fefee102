package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitContact handles POST /api/contact
// @Summary Submit a contact message
// @Tags contact
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string,phone=string,subject=string,custom_subject=string,message=string} true "Message"
// @Success 201 {object} object{success=bool,message=string}
// @Failure 400 {object} object{errors=object}
// @Router /contact [post]
func (s *Server) SubmitContact(c *fiber.Ctx) error {
	var req struct {
		Name          string `json:"name" form:"name"`
		Email         string `json:"email" form:"email"`
		Phone         string `json:"phone" form:"phone"`
		Subject       string `json:"subject" form:"subject"`
		CustomSubject string `json:"custom_subject" form:"custom_subject"`
		Message       string `json:"message" form:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	_, err := s.contactService.Submit(c.Context(), service.SubmitContactInput{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Subject:       models.ContactSubject(req.Subject),
		CustomSubject: req.CustomSubject,
		Message:       req.Message,
		IPAddress:     c.IP(),
		UserAgent:     c.Get("User-Agent"),
	})
	if err != nil {
		return fail(c, err)
	}
	return respondOrRedirect(c, fiber.StatusCreated, fiber.Map{
		"message": "Thank you for your message. We will get back to you soon.",
	}, backTo(c))
}

// GetContactMessages handles GET /api/contact/messages
// @Summary List inbox messages
// @Tags contact
// @Produce json
// @Param status query string false "Status filter (new, read, replied, archived)"
// @Param page query int false "Page number"
// @Success 200 {object} service.InboxPage
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /contact/messages [get]
func (s *Server) GetContactMessages(c *fiber.Ctx) error {
	page := s.parsePagination(c, "list")

	inbox, err := s.contactService.Inbox(c.Context(), s.currentUserID(c),
		models.ContactStatus(c.Query("status")), page.Page, page.PageSize)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(inbox)
}

// GetContactMessage handles GET /api/contact/messages/:id
// @Summary Get one inbox message
// @Tags contact
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} models.ContactMessage
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /contact/messages/{id} [get]
func (s *Server) GetContactMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	msg, gerr := s.contactService.GetMessage(c.Context(), s.currentUserID(c), id)
	if gerr != nil {
		return fail(c, gerr)
	}
	return c.JSON(msg)
}

// AdvanceContactMessage handles POST /api/contact/messages/:id/status
// Workflow transitions only move forward; marking a message replied requires
// a response text, which is emailed to the sender.
// @Summary Advance a message through the inbox workflow
// @Tags contact
// @Accept json
// @Produce json
// @Param id path int true "Message ID"
// @Param request body object{status=string,response=string} true "Transition"
// @Success 200 {object} models.ContactMessage
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /contact/messages/{id}/status [post]
func (s *Server) AdvanceContactMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status   string `json:"status" form:"status"`
		Response string `json:"response" form:"response"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	msg, aerr := s.contactService.Advance(c.Context(), service.AdvanceInput{
		MessageID: id,
		ActorID:   s.currentUserID(c),
		Next:      models.ContactStatus(req.Status),
		Response:  req.Response,
	})
	if aerr != nil {
		return fail(c, aerr)
	}
	return c.JSON(msg)
}

package server

import (
	"github.com/gofiber/fiber/v2"
)

// ApproveComment handles POST /api/comments/:id/approve
// @Summary Approve a pending comment
// @Tags moderation
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} models.Comment
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{id}/approve [post]
func (s *Server) ApproveComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, aerr := s.moderationService.Approve(c.Context(), commentID, s.currentUserID(c))
	if aerr != nil {
		return fail(c, aerr)
	}
	return c.JSON(comment)
}

// DisapproveComment handles POST /api/comments/:id/disapprove
// @Summary Withdraw approval from a comment
// @Tags moderation
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} models.Comment
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{id}/disapprove [post]
func (s *Server) DisapproveComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, derr := s.moderationService.Disapprove(c.Context(), commentID, s.currentUserID(c))
	if derr != nil {
		return fail(c, derr)
	}
	return c.JSON(comment)
}

// GetPendingComments handles GET /api/moderation/comments/pending
// @Summary List comments awaiting moderation
// @Tags moderation
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} service.CommentPage
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /moderation/comments/pending [get]
func (s *Server) GetPendingComments(c *fiber.Ctx) error {
	page := s.parsePagination(c, "list")

	result, err := s.moderationService.ListPending(c.Context(), s.currentUserID(c), page.Page, page.PageSize)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// GetOpenReports handles GET /api/moderation/reports
// @Summary List unresolved comment reports
// @Tags moderation
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} service.ReportPage
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /moderation/reports [get]
func (s *Server) GetOpenReports(c *fiber.Ctx) error {
	page := s.parsePagination(c, "list")

	result, err := s.moderationService.ListOpenReports(c.Context(), s.currentUserID(c), page.Page, page.PageSize)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(result)
}

// ResolveReport handles POST /api/moderation/reports/:id/resolve
// @Summary Resolve a comment report
// @Tags moderation
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} models.CommentReport
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /moderation/reports/{id}/resolve [post]
func (s *Server) ResolveReport(c *fiber.Ctx) error {
	reportID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	report, rerr := s.moderationService.ResolveReport(c.Context(), reportID, s.currentUserID(c))
	if rerr != nil {
		return fail(c, rerr)
	}
	return c.JSON(report)
}

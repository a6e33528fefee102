package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// commentRequest is the shared body shape of comment submissions.
type commentRequest struct {
	Content string `json:"content" form:"content"`
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Website string `json:"website" form:"website"`
}

// backTo is where the classic form flow returns after a mutation.
func backTo(c *fiber.Ctx) string {
	if ref := c.Get("Referer"); ref != "" {
		return ref
	}
	return "/"
}

func (s *Server) submitComment(c *fiber.Ctx, postID uint, parentID *uint) error {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.AddComment(c.Context(), service.AddCommentInput{
		PostID:    postID,
		ParentID:  parentID,
		AuthorID:  s.currentUserID(c),
		Name:      req.Name,
		Email:     req.Email,
		Website:   req.Website,
		Content:   req.Content,
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	})
	if err != nil {
		return fail(c, err)
	}

	message := "Your comment is awaiting moderation."
	if comment.IsApproved {
		message = "Comment posted."
	}
	return respondOrRedirect(c, fiber.StatusCreated, fiber.Map{
		"comment": comment,
		"message": message,
	}, backTo(c))
}

// CreateComment handles POST /api/posts/:id/comments
// Anonymous submissions are accepted when they carry a name.
// @Summary Submit a top-level comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body commentRequest true "Comment"
// @Success 201 {object} object{success=bool,comment=models.Comment,message=string}
// @Failure 400 {object} object{errors=object}
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	return s.submitComment(c, postID, nil)
}

// ReplyToComment handles POST /api/comments/:id/reply
// @Summary Reply to a comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Parent comment ID"
// @Param request body commentRequest true "Reply"
// @Success 201 {object} object{success=bool,comment=models.Comment,message=string}
// @Failure 400 {object} object{errors=object}
// @Router /comments/{id}/reply [post]
func (s *Server) ReplyToComment(c *fiber.Ctx) error {
	parentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	parent, gerr := s.commentRepo.GetByID(c.Context(), parentID)
	if gerr != nil {
		return fail(c, gerr)
	}
	return s.submitComment(c, parent.PostID, &parentID)
}

// GetCommentThread handles GET /api/comments/:id/thread
// @Summary Get a comment with its nested replies
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} models.CommentThread
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id}/thread [get]
func (s *Server) GetCommentThread(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	thread, serr := s.commentService.GetSubtree(c.Context(), commentID, s.currentUserID(c))
	if serr != nil {
		return fail(c, serr)
	}
	return c.JSON(thread)
}

// VoteComment handles POST /api/comments/:id/vote
// Submitting the current value again removes the vote; the opposite value
// replaces it.
// @Summary Vote on a comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Comment ID"
// @Param request body object{value=int} true "1 or -1"
// @Success 200 {object} object{success=bool,upvotes=int,downvotes=int,user_vote=int}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{id}/vote [post]
func (s *Server) VoteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Value int `json:"value" form:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, verr := s.commentService.Vote(c.Context(), commentID, s.currentUserID(c), req.Value)
	if verr != nil {
		return fail(c, verr)
	}
	return respondOrRedirect(c, fiber.StatusOK, fiber.Map{
		"upvotes":   result.Upvotes,
		"downvotes": result.Downvotes,
		"user_vote": result.UserVote,
	}, backTo(c))
}

// ReportComment handles POST /api/comments/:id/report
// @Summary Report a comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Comment ID"
// @Param request body object{reason=string,details=string} true "Report"
// @Success 201 {object} object{success=bool,message=string}
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{id}/report [post]
func (s *Server) ReportComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Reason  string `json:"reason" form:"reason"`
		Details string `json:"details" form:"details"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	_, rerr := s.moderationService.Report(c.Context(), commentID, s.currentUserID(c),
		models.ReportReason(req.Reason), req.Details)
	if rerr != nil {
		return fail(c, rerr)
	}
	return respondOrRedirect(c, fiber.StatusCreated, fiber.Map{
		"message": "Thank you, the comment has been reported.",
	}, backTo(c))
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Edit a comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Comment ID"
// @Param request body object{content=string} true "New content"
// @Success 200 {object} models.Comment
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content" form:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, uerr := s.commentService.UpdateComment(c.Context(), commentID, s.currentUserID(c), req.Content)
	if uerr != nil {
		return fail(c, uerr)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comments/:id
// The comment is hidden, not erased; replies stay attached but invisible.
// @Summary Delete a comment
// @Tags comments
// @Param id path int true "Comment ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.Context(), commentID, s.currentUserID(c)); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

package server

import (
	"errors"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const maxPageSize = 100

// Pagination holds parsed page/page_size query parameters.
type Pagination struct {
	Page     int
	PageSize int
}

// parsePagination extracts page and page_size query parameters. The default
// page size comes from the per-view configuration ("list", "grid", "index").
func (s *Server) parsePagination(c *fiber.Ctx, view string) Pagination {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	size := c.QueryInt("page_size", s.config.PageSize(view))
	if size <= 0 {
		size = s.config.PageSize(view)
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	return Pagination{Page: page, PageSize: size}
}

// parseID extracts a route parameter by name as a positive uint. On failure
// it writes a 400 JSON response and returns errResponseWritten; callers
// should check: if err != nil { return nil }.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUserID returns the authenticated user ID, 0 when anonymous.
func (s *Server) currentUserID(c *fiber.Ctx) uint {
	return middleware.CurrentUserID(c)
}

// wantsJSON reports whether the client asked for a JSON response. Form posts
// from the classic flow get a redirect instead.
func wantsJSON(c *fiber.Ctx) bool {
	return c.Get("X-Requested-With") == "XMLHttpRequest"
}

// respondOrRedirect finishes a mutation: JSON for the AJAX flow, a 303
// redirect for the classic form flow.
func respondOrRedirect(c *fiber.Ctx, status int, payload fiber.Map, redirectTo string) error {
	if wantsJSON(c) {
		if payload == nil {
			payload = fiber.Map{}
		}
		payload["success"] = true
		return c.Status(status).JSON(payload)
	}
	return c.Redirect(redirectTo, fiber.StatusSeeOther)
}

// fail writes the error with the status its code maps to.
func fail(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusForError(err), err)
}

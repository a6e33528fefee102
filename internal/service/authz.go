// Package service implements the application's business logic.
package service

import (
	"context"

	"inkwell/internal/models"
)

// Action names a permission checked through the Authorizer.
type Action string

const (
	// ActionEditPost allows changing a post's content or status.
	ActionEditPost Action = "post:edit"
	// ActionDeletePost allows removing a post.
	ActionDeletePost Action = "post:delete"
	// ActionEditComment allows changing a comment's content.
	ActionEditComment Action = "comment:edit"
	// ActionDeleteComment allows soft-deleting a comment.
	ActionDeleteComment Action = "comment:delete"
	// ActionModerate allows approving comments and resolving reports.
	ActionModerate Action = "moderation"
	// ActionManageInbox allows reading and advancing contact messages.
	ActionManageInbox Action = "inbox:manage"
)

// Authorizer is the single authorization predicate for the application.
// Every permission decision goes through Can so the ownership and staff rules
// live in one place. Staff status is looked up fresh on every check, never
// trusted from a token.
type Authorizer struct {
	isStaff func(ctx context.Context, userID uint) (bool, error)
}

// NewAuthorizer builds an Authorizer around a staff lookup.
func NewAuthorizer(isStaff func(ctx context.Context, userID uint) (bool, error)) *Authorizer {
	return &Authorizer{isStaff: isStaff}
}

// Can reports whether the actor may perform the action on the resource.
// Owners may edit and delete their own posts and comments; everything else
// requires staff.
func (a *Authorizer) Can(ctx context.Context, actorID uint, action Action, resource interface{}) (bool, error) {
	if actorID == 0 {
		return false, nil
	}

	switch action {
	case ActionEditComment, ActionDeleteComment:
		if c, ok := resource.(*models.Comment); ok && c.AuthorID != nil && *c.AuthorID == actorID {
			return true, nil
		}
	case ActionEditPost, ActionDeletePost:
		if p, ok := resource.(*models.Post); ok && p.AuthorID != nil && *p.AuthorID == actorID {
			return true, nil
		}
	}

	if a.isStaff == nil {
		return false, nil
	}
	return a.isStaff(ctx, actorID)
}

// Require is Can with the denial folded into an error, for call sites that
// have no interest in distinguishing "no" from "lookup failed".
func (a *Authorizer) Require(ctx context.Context, actorID uint, action Action, resource interface{}) error {
	ok, err := a.Can(ctx, actorID, action, resource)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewForbiddenError("You do not have permission to do that")
	}
	return nil
}

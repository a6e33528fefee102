package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
	"inkwell/internal/notifications"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

const (
	commentMinLen = 3
	commentMaxLen = 5000
	// threadMaxDepth bounds reply nesting; deeper replies attach at the cap.
	threadMaxDepth = 10
)

// CommentService implements comment submission, threading, and voting.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	authz       *Authorizer
	notifier    *notifications.Notifier
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	authz *Authorizer,
	notifier *notifications.Notifier,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		authz:       authz,
		notifier:    notifier,
	}
}

// AddCommentInput carries a comment submission. AuthorID zero means
// anonymous, which requires Name.
type AddCommentInput struct {
	PostID    uint
	ParentID  *uint
	AuthorID  uint
	Name      string
	Email     string
	Website   string
	Content   string
	IPAddress string
	UserAgent string
}

// AddComment validates and stores a comment. Comments from staff are approved
// immediately; everything else enters the moderation queue and triggers a
// pending notification.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.Status != models.PostStatusPublished {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	fields := map[string]string{}
	content := strings.TrimSpace(in.Content)
	if n := utf8.RuneCountInString(content); n < commentMinLen || n > commentMaxLen {
		fields["content"] = fmt.Sprintf("Comment must be between %d and %d characters", commentMinLen, commentMaxLen)
	}
	if in.AuthorID == 0 {
		if strings.TrimSpace(in.Name) == "" {
			fields["name"] = "Name is required for anonymous comments"
		}
		if in.Email != "" {
			if err := validation.ValidateEmail(in.Email); err != nil {
				fields["email"] = err.Error()
			}
		}
	}
	if len(fields) > 0 {
		observability.CommentsSubmitted.WithLabelValues("rejected").Inc()
		return nil, models.NewFieldValidationError(fields)
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
		if !parent.Visible() {
			return nil, models.NewNotFoundError("Comment", *in.ParentID)
		}
	}

	comment := &models.Comment{
		PostID:    in.PostID,
		ParentID:  in.ParentID,
		Content:   content,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
	}
	if in.AuthorID != 0 {
		comment.AuthorID = &in.AuthorID
		staff, err := s.authz.Can(ctx, in.AuthorID, ActionModerate, nil)
		if err != nil {
			return nil, err
		}
		comment.IsApproved = staff
	} else {
		comment.Name = strings.TrimSpace(in.Name)
		comment.Email = strings.TrimSpace(in.Email)
		comment.Website = strings.TrimSpace(in.Website)
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if comment.IsApproved {
		observability.CommentsSubmitted.WithLabelValues("approved").Inc()
	} else {
		observability.CommentsSubmitted.WithLabelValues("pending").Inc()
		s.notifier.CommentPending(comment)
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// GetThread returns the visible comments of a post as a tree. Children of
// hidden comments stay hidden with them; replies nested beyond the depth cap
// attach at the deepest visible level.
func (s *CommentService) GetThread(ctx context.Context, postID uint) ([]*models.CommentThread, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListVisibleByPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uint]*models.CommentThread, len(comments))
	depths := make(map[uint]int, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &models.CommentThread{Comment: c, Replies: []*models.CommentThread{}}
	}

	var roots []*models.CommentThread
	// Input is ordered by creation, so parents always precede their replies.
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, node)
			depths[c.ID] = 0
			continue
		}
		parent, ok := nodes[*c.ParentID]
		if !ok {
			// Parent not visible; the whole subtree stays hidden.
			continue
		}
		depth := depths[*c.ParentID] + 1
		for depth > threadMaxDepth {
			parent = nodes[*parent.Comment.ParentID]
			depth--
		}
		parent.Replies = append(parent.Replies, node)
		depths[c.ID] = depth
	}
	return roots, nil
}

// GetSubtree returns one visible comment with its nested replies. When
// viewerID is set the root carries the viewer's own vote.
func (s *CommentService) GetSubtree(ctx context.Context, commentID, viewerID uint) (*models.CommentThread, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !comment.Visible() {
		return nil, models.NewNotFoundError("Comment", commentID)
	}

	roots, err := s.GetThread(ctx, comment.PostID)
	if err != nil {
		return nil, err
	}

	queue := roots
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node.Comment.ID != commentID {
			queue = append(queue, node.Replies...)
			continue
		}
		if viewerID != 0 {
			vote, err := s.commentRepo.GetVote(ctx, commentID, viewerID)
			if err != nil {
				return nil, err
			}
			if vote != nil {
				node.Comment.UserVote = vote.Value
			}
		}
		return node, nil
	}
	return nil, models.NewNotFoundError("Comment", commentID)
}

// Vote toggles a user's vote on a visible comment and returns the fresh
// tallies. Submitting the current value again removes the vote; the opposite
// value overwrites it.
func (s *CommentService) Vote(ctx context.Context, commentID, userID uint, value int) (*models.VoteResult, error) {
	if value != 1 && value != -1 {
		return nil, models.NewValidationError("Vote value must be 1 or -1")
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !comment.Visible() {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return s.commentRepo.SetVote(ctx, commentID, userID, value)
}

// UpdateComment lets the author or staff edit a comment's content. Content
// rules match submission.
func (s *CommentService) UpdateComment(ctx context.Context, commentID, actorID uint, content string) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Require(ctx, actorID, ActionEditComment, comment); err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n < commentMinLen || n > commentMaxLen {
		return nil, models.NewValidationError(
			fmt.Sprintf("Comment must be between %d and %d characters", commentMinLen, commentMaxLen))
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment soft-deletes by flipping Active off. The row and its replies
// survive; visibility rules hide the subtree.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, actorID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := s.authz.Require(ctx, actorID, ActionDeleteComment, comment); err != nil {
		return err
	}

	comment.Active = false
	return s.commentRepo.Update(ctx, comment)
}

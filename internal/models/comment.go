// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Comment is a reply on a post. It belongs to exactly one post and may have a
// parent comment, forming a tree. A comment is visible to end users only when
// Active AND IsApproved are both true: Active is the soft-delete flag,
// IsApproved the moderation gate.
type Comment struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	PostID uint `gorm:"not null;index" json:"post_id"`
	Post   Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`

	// AuthorID is nil for anonymous comments, which carry Name/Email instead.
	// On user deletion the reference is nulled and the comment retained.
	AuthorID *uint  `gorm:"index" json:"author_id,omitempty"`
	Author   *User  `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
	Name     string `gorm:"size:100" json:"name,omitempty"`
	Email    string `gorm:"size:100" json:"email,omitempty"`
	Website  string `json:"website,omitempty"`

	Content string `gorm:"type:text;not null" json:"content"`

	// ParentID links a reply to the comment it answers. The tree is keyed by
	// this reference only; child lists are built from a parent-id index.
	ParentID *uint `gorm:"index" json:"parent_id,omitempty"`

	Active      bool       `gorm:"not null;default:true" json:"active"`
	IsApproved  bool       `gorm:"not null;default:false" json:"is_approved"`
	ModeratedBy *uint      `json:"moderated_by,omitempty"`
	ModeratedAt *time.Time `json:"moderated_at,omitempty"`

	// Submission forensics, captured best-effort and never verified.
	IPAddress string `gorm:"size:45" json:"-"`
	UserAgent string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Vote tallies are not persisted; recomputed on every read.
	Upvotes   int `gorm:"->;-:migration" json:"upvotes"`
	Downvotes int `gorm:"->;-:migration" json:"downvotes"`

	// UserVote is the viewer's own vote (0 when none or anonymous), filled in
	// on thread reads for authenticated viewers.
	UserVote int `gorm:"-" json:"user_vote"`
}

// Visible reports whether end users may see the comment.
func (c *Comment) Visible() bool {
	return c.Active && c.IsApproved
}

// AuthorLabel returns the display name for the comment byline.
func (c *Comment) AuthorLabel() string {
	if c.Author != nil {
		return c.Author.DisplayName()
	}
	return c.Name
}

// CommentThread is a comment together with its visible replies, serialized as
// a nested structure for thread endpoints.
type CommentThread struct {
	Comment *Comment         `json:"comment"`
	Replies []*CommentThread `json:"replies"`
}

// CommentVote records one user's vote on one comment. At most one row exists
// per (comment, user); re-submitting the same value removes the row.
type CommentVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_vote_pair" json:"comment_id"`
	Comment   Comment   `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_vote_pair" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Value     int       `gorm:"not null;check:value IN (-1, 1)" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VoteResult is the payload returned by every vote mutation: the freshly
// recomputed tallies plus the caller's current vote (0 when none).
type VoteResult struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	UserVote  int `json:"user_vote"`
}

// ReportReason classifies a spam/abuse report.
type ReportReason string

const (
	// ReportReasonSpam flags unsolicited advertising.
	ReportReasonSpam ReportReason = "spam"
	// ReportReasonAbuse flags harassment or hateful content.
	ReportReasonAbuse ReportReason = "abuse"
	// ReportReasonOffTopic flags content unrelated to the post.
	ReportReasonOffTopic ReportReason = "offtopic"
	// ReportReasonOther covers anything else; details should say what.
	ReportReasonOther ReportReason = "other"
)

// Valid reports whether the reason is one of the known enum values.
func (r ReportReason) Valid() bool {
	switch r {
	case ReportReasonSpam, ReportReasonAbuse, ReportReasonOffTopic, ReportReasonOther:
		return true
	}
	return false
}

// CommentReport is a user's spam/abuse report on a comment. A reporter may
// report a given comment at most once; Resolved transitions false→true exactly
// once and is never reversed.
type CommentReport struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	CommentID  uint         `gorm:"not null;uniqueIndex:idx_comment_report_pair" json:"comment_id"`
	Comment    Comment      `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"comment,omitempty"`
	ReporterID uint         `gorm:"not null;uniqueIndex:idx_comment_report_pair" json:"reporter_id"`
	Reporter   User         `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"-"`
	Reason     ReportReason `gorm:"type:varchar(20);not null" json:"reason"`
	Details    string       `gorm:"type:text" json:"details,omitempty"`
	Resolved   bool         `gorm:"not null;default:false;index" json:"resolved"`
	ResolvedBy *uint        `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

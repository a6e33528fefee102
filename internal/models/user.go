// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in the Inkwell application. Authors and
// moderators are regular users with IsStaff set.
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email     string `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	FirstName string `gorm:"size:50" json:"first_name"`
	LastName  string `gorm:"size:50" json:"last_name"`
	Bio       string `gorm:"size:500" json:"bio"`
	Avatar    string `json:"avatar"`

	// Social links shown on the author profile page.
	Website   string `json:"website"`
	Twitter   string `gorm:"size:50" json:"twitter"`
	Facebook  string `gorm:"size:50" json:"facebook"`
	Instagram string `gorm:"size:50" json:"instagram"`
	LinkedIn  string `gorm:"size:50" json:"linkedin"`

	IsStaff bool `gorm:"default:false" json:"is_staff"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Posts []Post `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}

// DisplayName returns the full name when set, otherwise the username.
func (u *User) DisplayName() string {
	if full := trimJoin(u.FirstName, u.LastName); full != "" {
		return full
	}
	return u.Username
}

func trimJoin(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

// Follow is a directed edge in the author follow graph. A following B does
// not imply B following A; the composite unique index makes the toggle
// race-safe together with ON CONFLICT DO NOTHING inserts.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"follower,omitempty"`
	Followee User `gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE" json:"followee,omitempty"`
}

// TableName specifies the table name for GORM.
func (Follow) TableName() string {
	return "follows"
}

// AuthorStats aggregates live counters for an author profile. Nothing here is
// materialized; every field is recomputed at read time.
type AuthorStats struct {
	PostCount     int64 `json:"post_count"`
	TotalViews    int64 `json:"total_views"`
	TotalComments int64 `json:"total_comments"`
	FollowerCount int64 `json:"follower_count"`
}

// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	// PostStatusDraft indicates a post that is not publicly visible.
	PostStatusDraft PostStatus = "draft"
	// PostStatusPublished indicates a post on the public listing and permalink.
	PostStatusPublished PostStatus = "published"
)

// Post represents a published or draft article. The slug is unique per
// calendar date of PublishedAt, which the dated permalink relies on.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"size:200;not null" json:"title"`
	Slug     string `gorm:"size:200;not null;uniqueIndex:idx_post_slug_date" json:"slug"`
	AuthorID *uint  `gorm:"index" json:"author_id,omitempty"`
	Author   *User  `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`

	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Tags       []Tag     `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty"`

	Content string `gorm:"type:text;not null" json:"content"`
	Excerpt string `gorm:"size:500" json:"excerpt"`

	Status PostStatus `gorm:"type:varchar(10);not null;default:'draft';index" json:"status"`
	// PublishedDay is the calendar date of PublishedAt, kept in its own column
	// so slug uniqueness can be scoped per date with a plain composite index.
	PublishedDay string    `gorm:"size:10;not null;uniqueIndex:idx_post_slug_date" json:"-"`
	PublishedAt  time.Time `gorm:"index" json:"published_at"`

	// ViewCount is mutated only through an atomic column update on the read
	// path, never read-modify-write.
	ViewCount uint `gorm:"default:0" json:"view_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// CommentsCount is not persisted; computed at query time.
	CommentsCount int `gorm:"->;-:migration" json:"comments_count"`
}

// BeforeSave keeps the date component of the slug-uniqueness scope in sync
// with PublishedAt.
func (p *Post) BeforeSave(_ *gorm.DB) error {
	if !p.PublishedAt.IsZero() {
		p.PublishedDay = p.PublishedAt.UTC().Format("2006-01-02")
	}
	return nil
}

// Permalink returns the canonical dated URL path for the post.
func (p *Post) Permalink() string {
	d := p.PublishedAt.UTC()
	return fmt.Sprintf("/api/posts/%d/%02d/%02d/%s", d.Year(), d.Month(), d.Day(), p.Slug)
}

// ReadTime estimates reading time in minutes at ~200 words per minute,
// never less than one minute.
func (p *Post) ReadTime() int {
	words := 0
	inWord := false
	for _, r := range p.Content {
		if r == ' ' || r == '\n' || r == '\t' {
			inWord = false
			continue
		}
		if !inWord {
			words++
			inWord = true
		}
	}
	if minutes := words / 200; minutes > 1 {
		return minutes
	}
	return 1
}

// Category groups posts into a single optional rubric. Categories have an
// independent lifecycle; deleting one detaches its posts.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	// PostCount is not persisted; computed at query time.
	PostCount int64 `gorm:"->;-:migration" json:"post_count"`
}

// TableName specifies the table name for GORM.
func (Category) TableName() string {
	return "categories"
}

// Tag labels posts; a post carries any number of tags through post_tags.
type Tag struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Slug        string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

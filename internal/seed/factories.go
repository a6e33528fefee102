package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Options controls how much data the seeder generates.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// MaxDays bounds how far in the past generated timestamps land.
	MaxDays int
}

// Factory builds realistic model instances. With a nil db the Build* methods
// still work, which keeps generator tests off the database.
type Factory struct {
	db   *gorm.DB
	opts Options
}

// NewFactory creates a Factory and seeds the content generator.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{db: db, opts: opts}
}

// pastTime returns a random instant within the configured window.
func (f *Factory) pastTime() time.Time {
	offset := time.Duration(rand.Intn(f.opts.MaxDays*24)) * time.Hour
	return time.Now().Add(-offset)
}

// BuildUser generates an author profile. Password is left for the caller so
// one bcrypt hash can be shared across the whole batch.
func (f *Factory) BuildUser() *models.User {
	first := gofakeit.FirstName()
	last := gofakeit.LastName()
	return &models.User{
		Username:  strings.ToLower(fmt.Sprintf("%s-%s%d", first, last, gofakeit.Number(10, 99))),
		Email:     gofakeit.Email(),
		FirstName: first,
		LastName:  last,
		Bio:       gofakeit.Sentence(12),
		Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", uuid.NewString()),
		Website:   gofakeit.URL(),
		Twitter:   strings.ToLower(first + last),
		CreatedAt: f.pastTime(),
	}
}

// BuildPost generates a published post with a slug derived from its title.
func (f *Factory) BuildPost(author *models.User, category *models.Category) *models.Post {
	title := strings.TrimSuffix(gofakeit.Sentence(gofakeit.Number(4, 8)), ".")
	publishedAt := f.pastTime()

	post := &models.Post{
		Title:       title,
		Slug:        validation.Slugify(title),
		AuthorID:    &author.ID,
		Content:     gofakeit.Paragraph(gofakeit.Number(3, 8), 4, 10, "\n\n"),
		Excerpt:     gofakeit.Sentence(15),
		Status:      models.PostStatusPublished,
		PublishedAt: publishedAt,
		ViewCount:   uint(gofakeit.Number(0, 5000)),
		CreatedAt:   publishedAt,
	}
	if category != nil {
		post.CategoryID = &category.ID
	}
	return post
}

// BuildComment generates a comment on the post. Roughly a third are anonymous
// with a name and email instead of an author reference.
func (f *Factory) BuildComment(author *models.User, post *models.Post, parent *models.Comment) *models.Comment {
	comment := &models.Comment{
		PostID:     post.ID,
		Content:    gofakeit.Sentence(gofakeit.Number(5, 25)),
		Active:     true,
		IsApproved: gofakeit.Number(0, 9) > 1,
		IPAddress:  gofakeit.IPv4Address(),
		UserAgent:  gofakeit.UserAgent(),
		CreatedAt:  f.pastTime(),
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}
	if author != nil && gofakeit.Number(0, 2) > 0 {
		comment.AuthorID = &author.ID
	} else {
		comment.Name = gofakeit.Name()
		comment.Email = gofakeit.Email()
	}
	return comment
}

// BuildContactMessage generates an inbox message in the "new" state.
func (f *Factory) BuildContactMessage() *models.ContactMessage {
	subjects := []models.ContactSubject{
		models.ContactSubjectGeneral,
		models.ContactSubjectAdvertise,
		models.ContactSubjectSupport,
		models.ContactSubjectFeedback,
		models.ContactSubjectOther,
	}
	msg := &models.ContactMessage{
		Name:      gofakeit.Name(),
		Email:     gofakeit.Email(),
		Phone:     gofakeit.Phone(),
		Subject:   subjects[gofakeit.Number(0, len(subjects)-1)],
		Message:   gofakeit.Paragraph(1, 3, 12, " "),
		IPAddress: gofakeit.IPv4Address(),
		UserAgent: gofakeit.UserAgent(),
		Status:    models.ContactStatusNew,
		CreatedAt: f.pastTime(),
	}
	if msg.Subject == models.ContactSubjectOther {
		msg.CustomSubject = strings.TrimSuffix(gofakeit.Sentence(4), ".")
	}
	return msg
}

// BuildSubscriber generates an active newsletter subscriber.
func (f *Factory) BuildSubscriber() *models.Subscriber {
	return &models.Subscriber{
		Email:     strings.ToLower(gofakeit.Email()),
		IsActive:  gofakeit.Number(0, 9) > 0,
		Token:     uuid.NewString(),
		CreatedAt: f.pastTime(),
	}
}

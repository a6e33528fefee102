// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// seedPassword is the shared password for every generated account.
const seedPassword = "password123"

// Seeder populates the database with realistic development data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll truncates generated data. Order follows foreign keys: leaves first.
func (s *Seeder) ClearAll() error {
	tables := []string{
		"comment_reports", "comment_votes", "comments",
		"post_tags", "posts", "tags",
		"follows", "contact_messages", "subscribers", "users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

// Run seeds categories, users, posts, comments, votes, follows, subscribers,
// and contact messages.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	if err := Categories(s.db); err != nil {
		return fmt.Errorf("seeding categories: %w", err)
	}
	var categories []models.Category
	if err := s.db.Find(&categories).Error; err != nil {
		return err
	}

	users, err := s.seedUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		if err := s.seedFixturePosts(&users[0]); err != nil {
			return err
		}
	}
	posts, err := s.seedPosts(users, categories, opts.NumPosts)
	if err != nil {
		return err
	}
	if err := s.seedComments(users, posts); err != nil {
		return err
	}
	if err := s.seedFollows(users); err != nil {
		return err
	}
	if err := s.seedAudience(); err != nil {
		return err
	}

	log.Printf("Seeded %d users, %d posts across %d categories", len(users), len(posts), len(categories))
	return nil
}

func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		user := s.factory.BuildUser()
		user.Password = string(hash)
		// The first account is the site staff.
		user.IsStaff = i == 0
		if err := s.db.Create(user).Error; err != nil {
			return nil, fmt.Errorf("creating user %s: %w", user.Username, err)
		}
		users = append(users, *user)
	}
	return users, nil
}

func (s *Seeder) seedPosts(users []models.User, categories []models.Category, count int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}

	tagNames := []string{
		"go", "testing", "databases", "http", "concurrency", "deployment",
		"kubernetes", "postgres", "redis", "design", "debugging", "ci",
	}
	tags := make([]models.Tag, 0, len(tagNames))
	for _, name := range tagNames {
		tag := models.Tag{Name: name, Slug: name}
		if err := s.db.Where("slug = ?", name).FirstOrCreate(&tag).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}

	seen := map[string]int{}
	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		var category *models.Category
		if len(categories) > 0 {
			category = &categories[rand.Intn(len(categories))]
		}

		post := s.factory.BuildPost(&author, category)
		// Slug uniqueness is scoped per publish date; suffix same-day
		// collisions the way the publish path would have.
		key := post.PublishedAt.UTC().Format("2006-01-02") + "/" + post.Slug
		seen[key]++
		if n := seen[key]; n > 1 {
			post.Slug = fmt.Sprintf("%s-%d", post.Slug, n)
		}

		idx := rand.Perm(len(tags))[:gofakeit.Number(1, 3)]
		for _, j := range idx {
			post.Tags = append(post.Tags, tags[j])
		}

		if err := s.db.Create(post).Error; err != nil {
			return nil, fmt.Errorf("creating post %q: %w", post.Title, err)
		}
		posts = append(posts, *post)
	}
	return posts, nil
}

func (s *Seeder) seedComments(users []models.User, posts []models.Post) error {
	for _, post := range posts {
		var roots []models.Comment
		for i := 0; i < gofakeit.Number(0, 6); i++ {
			author := users[rand.Intn(len(users))]
			comment := s.factory.BuildComment(&author, &post, nil)
			if err := s.db.Create(comment).Error; err != nil {
				return err
			}
			roots = append(roots, *comment)
		}

		// A few replies to keep threads interesting.
		for i := range roots {
			if gofakeit.Number(0, 2) > 0 {
				continue
			}
			author := users[rand.Intn(len(users))]
			reply := s.factory.BuildComment(&author, &post, &roots[i])
			if err := s.db.Create(reply).Error; err != nil {
				return err
			}
		}

		for i := range roots {
			if err := s.seedVotes(users, &roots[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedVotes(users []models.User, comment *models.Comment) error {
	for _, voter := range pickUsers(users, gofakeit.Number(0, 5)) {
		value := 1
		if gofakeit.Number(0, 3) == 0 {
			value = -1
		}
		vote := models.CommentVote{CommentID: comment.ID, UserID: voter.ID, Value: value}
		if err := s.db.Create(&vote).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedFollows(users []models.User) error {
	for _, follower := range users {
		for _, followee := range pickUsers(users, gofakeit.Number(0, 4)) {
			if follower.ID == followee.ID {
				continue
			}
			follow := models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
			if err := s.db.Where(
				"follower_id = ? AND followee_id = ?", follow.FollowerID, follow.FolloweeID,
			).FirstOrCreate(&follow).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) seedAudience() error {
	for i := 0; i < 40; i++ {
		if err := s.db.Create(s.factory.BuildSubscriber()).Error; err != nil {
			return err
		}
	}
	for i := 0; i < 12; i++ {
		if err := s.db.Create(s.factory.BuildContactMessage()).Error; err != nil {
			return err
		}
	}
	return nil
}

// pickUsers returns n distinct random users.
func pickUsers(users []models.User, n int) []models.User {
	if n > len(users) {
		n = len(users)
	}
	idx := rand.Perm(len(users))[:n]
	out := make([]models.User, 0, n)
	for _, i := range idx {
		out = append(out, users[i])
	}
	return out
}

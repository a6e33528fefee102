package seed

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/validation"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed fixtures.yml
var fixturesYAML []byte

// FixturePost is one curated post from the embedded fixture file.
type FixturePost struct {
	Title    string   `yaml:"title"`
	Category string   `yaml:"category"`
	Tags     []string `yaml:"tags"`
	Excerpt  string   `yaml:"excerpt"`
	Content  string   `yaml:"content"`
}

type fixtureFile struct {
	Posts []FixturePost `yaml:"posts"`
}

// LoadFixturePosts parses the embedded curated posts.
func LoadFixturePosts() ([]FixturePost, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(fixturesYAML, &f); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	return f.Posts, nil
}

// seedFixturePosts publishes the curated posts under the given author,
// spread over the past week so the home page is not a single-day wall.
func (s *Seeder) seedFixturePosts(author *models.User) error {
	fixtures, err := LoadFixturePosts()
	if err != nil {
		return err
	}

	for i, fx := range fixtures {
		var category models.Category
		if err := s.db.Where("slug = ?", fx.Category).First(&category).Error; err != nil {
			return fmt.Errorf("fixture category %q: %w", fx.Category, err)
		}

		publishedAt := time.Now().AddDate(0, 0, -(i + 1))
		post := models.Post{
			Title:       fx.Title,
			Slug:        validation.Slugify(fx.Title),
			AuthorID:    &author.ID,
			CategoryID:  &category.ID,
			Content:     strings.TrimSpace(fx.Content),
			Excerpt:     fx.Excerpt,
			Status:      models.PostStatusPublished,
			PublishedAt: publishedAt,
		}
		for _, name := range fx.Tags {
			tag := models.Tag{Name: name, Slug: name}
			if err := s.db.Where("slug = ?", name).FirstOrCreate(&tag).Error; err != nil {
				return err
			}
			post.Tags = append(post.Tags, tag)
		}

		if err := s.db.Create(&post).Error; err != nil && !isDuplicate(err) {
			return fmt.Errorf("creating fixture post %q: %w", fx.Title, err)
		}
	}
	return nil
}

// isDuplicate reports a unique-constraint violation, which for fixtures means
// the post was seeded on a previous run.
func isDuplicate(err error) bool {
	return err == gorm.ErrDuplicatedKey || strings.Contains(err.Error(), "duplicate")
}

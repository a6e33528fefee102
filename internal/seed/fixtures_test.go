package seed

import (
	"testing"

	"inkwell/internal/validation"
)

func TestLoadFixturePosts(t *testing.T) {
	posts, err := LoadFixturePosts()
	if err != nil {
		t.Fatalf("parsing embedded fixtures: %v", err)
	}
	if len(posts) == 0 {
		t.Fatal("no fixture posts")
	}

	categories := map[string]bool{}
	for _, c := range BuiltInCategories {
		categories[c.Slug] = true
	}

	for _, p := range posts {
		if p.Title == "" || p.Content == "" || p.Excerpt == "" {
			t.Fatalf("fixture %q is missing fields", p.Title)
		}
		if !categories[p.Category] {
			t.Fatalf("fixture %q references unknown category %q", p.Title, p.Category)
		}
		if err := validation.ValidatePostSlug(validation.Slugify(p.Title)); err != nil {
			t.Fatalf("fixture %q slug rejected: %v", p.Title, err)
		}
	}
}

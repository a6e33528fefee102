package seed

import (
	"inkwell/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInCategory is a permanent editorial category.
type BuiltInCategory struct {
	Name        string
	Slug        string
	Description string
}

// BuiltInCategories defines the permanent editorial categories. Seeding is an
// upsert keyed on slug, so re-running refreshes names and descriptions without
// duplicating rows.
var BuiltInCategories = []BuiltInCategory{
	{Name: "Engineering", Slug: "engineering", Description: "Software design, architecture, and craft."},
	{Name: "Tutorials", Slug: "tutorials", Description: "Step-by-step guides and walkthroughs."},
	{Name: "Opinion", Slug: "opinion", Description: "Essays and takes on the industry."},
	{Name: "News", Slug: "news", Description: "Releases, announcements, and events."},
	{Name: "Tooling", Slug: "tooling", Description: "Editors, build systems, and workflows."},
	{Name: "Career", Slug: "career", Description: "Growth, interviewing, and working in teams."},
	{Name: "Open Source", Slug: "open-source", Description: "Projects, maintainership, and community."},
	{Name: "Performance", Slug: "performance", Description: "Profiling, benchmarks, and optimization."},
}

// Categories seeds the permanent categories.
func Categories(db *gorm.DB) error {
	for _, item := range BuiltInCategories {
		category := models.Category{
			Name:        item.Name,
			Slug:        item.Slug,
			Description: item.Description,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description"}),
		}).Create(&category).Error
		if err != nil {
			return err
		}
	}
	return nil
}

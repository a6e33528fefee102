package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const slugMaxLength = 250

var postSlugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var reservedPostSlugs = map[string]struct{}{
	"admin":      {},
	"api":        {},
	"auth":       {},
	"posts":      {},
	"comments":   {},
	"categories": {},
	"tags":       {},
	"authors":    {},
	"contact":    {},
	"newsletter": {},
	"search":     {},
	"swagger":    {},
	"metrics":    {},
	"health":     {},
	"login":      {},
	"signup":     {},
}

// Slugify converts a title into a URL slug: lowercase, accents stripped,
// runs of non-alphanumerics collapsed to single hyphens.
func Slugify(title string) string {
	decomposed := norm.NFKD.String(title)

	var b strings.Builder
	prevHyphen := false
	for _, r := range decomposed {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
			prevHyphen = false
		case unicode.IsMark(r):
			// Combining marks left over from decomposition are dropped.
		default:
			if !prevHyphen && b.Len() > 0 {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > slugMaxLength {
		slug = strings.Trim(slug[:slugMaxLength], "-")
	}
	return slug
}

// ValidatePostSlug validates post slug format and reserved names.
func ValidatePostSlug(slug string) error {
	if slug == "" || len(slug) > slugMaxLength {
		return fmt.Errorf("slug must be 1-%d characters", slugMaxLength)
	}
	if !postSlugRegex.MatchString(slug) {
		return fmt.Errorf("slug must contain only lowercase letters, numbers, and hyphens")
	}
	if _, exists := reservedPostSlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}
	return nil
}

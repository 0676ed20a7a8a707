package export

import (
	"regexp"
	"strings"
)

var nonSlugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a post title into a URL slug: lowercase, alphanumeric
// runs joined by single hyphens.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = nonSlugRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// DefaultURI returns the default exported URI for a post title.
func DefaultURI(title string) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "post"
	}
	return slug + ".html"
}

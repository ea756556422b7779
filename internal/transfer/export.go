package transfer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/papapumpkin/destrack/internal/state"
)

// Export returns the document for projectID: the project and every
// category, subcategory, requirement and node it owns, in stored order. The
// bool is false when the project does not exist.
func Export(s state.State, projectID string, now time.Time) (Document, bool) {
	p, ok := s.Project(projectID)
	if !ok {
		return Document{}, false
	}
	slice := s.ProjectSlice(projectID)
	return Document{
		Version:             Version,
		ExportedAt:          now.UTC(),
		Project:             p,
		Categories:          slice.Categories,
		Subcategories:       slice.Subcategories,
		Requirements:        slice.Requirements,
		ImplementationNodes: slice.ImplementationNodes,
	}, true
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases name and collapses every run of other characters to a
// single dash.
func Slug(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// Filename returns destrack-<slug>-<YYYY-MM-DD>.<ext>. A name with no
// usable characters gets the slug "project".
func Filename(projectName string, now time.Time, format Format) string {
	slug := Slug(projectName)
	if slug == "" {
		slug = "project"
	}
	if format == "" {
		format = FormatJSON
	}
	return fmt.Sprintf("destrack-%s-%s.%s", slug, now.UTC().Format(time.DateOnly), format)
}

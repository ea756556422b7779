// Package transfer moves a single project between destrack instances as a
// self-describing document in JSON, TOML or YAML.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/papapumpkin/destrack/internal/model"
)

// Version is the document format version written by Export.
const Version = "1.0"

// ErrInvalidDocument is returned for a document that does not parse or lacks
// a required field.
var ErrInvalidDocument = errors.New("invalid export document")

// Document is one exported project with everything it owns.
type Document struct {
	Version             string                     `json:"version" toml:"version" yaml:"version"`
	ExportedAt          time.Time                  `json:"exportedAt" toml:"exportedAt" yaml:"exportedAt"`
	Project             model.Project              `json:"project" toml:"project" yaml:"project"`
	Categories          []model.Category           `json:"categories" toml:"categories" yaml:"categories"`
	Subcategories       []model.Subcategory        `json:"subcategories" toml:"subcategories" yaml:"subcategories"`
	Requirements        []model.Requirement        `json:"requirements" toml:"requirements" yaml:"requirements"`
	ImplementationNodes []model.ImplementationNode `json:"implementationNodes" toml:"implementationNodes" yaml:"implementationNodes"`
}

// rawDocument mirrors Document with pointers so absent fields can be told
// apart from empty ones.
type rawDocument struct {
	Version             *string                     `json:"version" toml:"version" yaml:"version"`
	ExportedAt          time.Time                   `json:"exportedAt" toml:"exportedAt" yaml:"exportedAt"`
	Project             *rawProject                 `json:"project" toml:"project" yaml:"project"`
	Categories          *[]model.Category           `json:"categories" toml:"categories" yaml:"categories"`
	Subcategories       *[]model.Subcategory        `json:"subcategories" toml:"subcategories" yaml:"subcategories"`
	Requirements        *[]model.Requirement        `json:"requirements" toml:"requirements" yaml:"requirements"`
	ImplementationNodes *[]model.ImplementationNode `json:"implementationNodes" toml:"implementationNodes" yaml:"implementationNodes"`
}

type rawProject struct {
	ID          *string   `json:"id" toml:"id" yaml:"id"`
	Name        *string   `json:"name" toml:"name" yaml:"name"`
	Description string    `json:"description" toml:"description" yaml:"description"`
	CreatedAt   time.Time `json:"createdAt" toml:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" toml:"updatedAt" yaml:"updatedAt"`
}

// Validate checks the fields Import relies on.
func (d Document) Validate() error {
	switch {
	case d.Version == "":
		return fmt.Errorf("%w: missing version", ErrInvalidDocument)
	case d.Project.ID == "":
		return fmt.Errorf("%w: project has no id", ErrInvalidDocument)
	case d.Project.Name == "":
		return fmt.Errorf("%w: project has no name", ErrInvalidDocument)
	}
	return nil
}

func (r rawDocument) document() (Document, error) {
	var missing []string
	if r.Version == nil {
		missing = append(missing, "version")
	}
	if r.Project == nil {
		missing = append(missing, "project")
	} else {
		if r.Project.ID == nil {
			missing = append(missing, "project.id")
		}
		if r.Project.Name == nil {
			missing = append(missing, "project.name")
		}
	}
	if r.Categories == nil {
		missing = append(missing, "categories")
	}
	if r.Subcategories == nil {
		missing = append(missing, "subcategories")
	}
	if r.Requirements == nil {
		missing = append(missing, "requirements")
	}
	if r.ImplementationNodes == nil {
		missing = append(missing, "implementationNodes")
	}
	if len(missing) > 0 {
		return Document{}, fmt.Errorf("%w: missing %s", ErrInvalidDocument, strings.Join(missing, ", "))
	}

	d := Document{
		Version:    *r.Version,
		ExportedAt: r.ExportedAt,
		Project: model.Project{
			ID:          *r.Project.ID,
			Name:        *r.Project.Name,
			Description: r.Project.Description,
			CreatedAt:   r.Project.CreatedAt,
			UpdatedAt:   r.Project.UpdatedAt,
		},
		Categories:          *r.Categories,
		Subcategories:       *r.Subcategories,
		Requirements:        *r.Requirements,
		ImplementationNodes: *r.ImplementationNodes,
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, toml, yaml or yml, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want json, toml or yaml)", s)
}

// FormatFromPath picks the format from path's extension. Unknown extensions
// are treated as JSON.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatJSON
	}
	return f
}

// Supported reports whether path has one of the document extensions.
func Supported(path string) bool {
	_, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	return err == nil
}

// Encode writes doc to w in the given format.
func Encode(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("transfer: encode toml: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("transfer: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("transfer: encode yaml: %w", err)
		}
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("transfer: encode json: %w", err)
		}
	}
	return nil
}

// Decode reads a document in the given format. A document that does not
// parse or lacks a required field fails with ErrInvalidDocument.
func Decode(r io.Reader, format Format) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("transfer: read document: %w", err)
	}
	var raw rawDocument
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return raw.document()
}

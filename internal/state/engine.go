package state

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papapumpkin/destrack/internal/model"
)

// Engine derives new states. NewID and Now are its only sources of
// non-determinism; tests replace them to get reproducible output.
//
// Operations that reference an id absent from the state return the input
// state unchanged and no error. Validation failures return an error matching
// ErrValidation and the input state.
type Engine struct {
	NewID func() string
	Now   func() time.Time
}

// NewEngine returns an Engine issuing random UUIDs and wall-clock UTC times.
func NewEngine() Engine {
	return Engine{
		NewID: uuid.NewString,
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

func (e Engine) now() time.Time {
	if e.Now == nil {
		return time.Now().UTC()
	}
	return e.Now()
}

func (e Engine) id() string {
	if e.NewID == nil {
		return uuid.NewString()
	}
	return e.NewID()
}

// NextID issues a fresh entity id.
func (e Engine) NextID() string { return e.id() }

// Timestamp returns the engine's current time.
func (e Engine) Timestamp() time.Time { return e.now() }

// touch refreshes the project's UpdatedAt.
func (e Engine) touch(s State, projectID string) State {
	if projectID == "" {
		return s
	}
	now := e.now()
	s.Projects, _ = replace(s.Projects, func(p model.Project) bool { return p.ID == projectID },
		func(p model.Project) model.Project {
			p.UpdatedAt = now
			return p
		})
	return s
}

// ProjectPatch lists the project fields to change; nil means unchanged.
type ProjectPatch struct {
	Name        *string
	Description *string
}

// AddProject appends a new project and selects it.
func (e Engine) AddProject(s State, name, description string) (State, model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, model.Project{}, emptyField("project", "name")
	}
	now := e.now()
	p := model.Project{
		ID:          e.id(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.Projects = appendCopy(s.Projects, p)
	s.Selection = Selection{ProjectID: p.ID}
	return s, p, nil
}

// UpdateProject applies patch and refreshes UpdatedAt.
func (e Engine) UpdateProject(s State, id string, patch ProjectPatch) (State, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return s, emptyField("project", "name")
	}
	now := e.now()
	projects, ok := replace(s.Projects, func(p model.Project) bool { return p.ID == id },
		func(p model.Project) model.Project {
			if patch.Name != nil {
				p.Name = strings.TrimSpace(*patch.Name)
			}
			if patch.Description != nil {
				p.Description = *patch.Description
			}
			p.UpdatedAt = now
			return p
		})
	if !ok {
		return s, nil
	}
	s.Projects = projects
	return s, nil
}

// DeleteProject removes the project and everything it owns.
func (e Engine) DeleteProject(s State, id string) (State, Counts) {
	if _, ok := s.Project(id); !ok {
		return s, Counts{}
	}
	r := s.expand(removal{projects: idSet{id: {}}})
	return s.without(r), r.counts()
}

// SelectProject selects a project and clears the requirement selection.
// An empty id clears both. Unknown ids are ignored.
func (e Engine) SelectProject(s State, id string) State {
	if id != "" {
		if _, ok := s.Project(id); !ok {
			return s
		}
	}
	s.Selection = Selection{ProjectID: id}
	return s
}

// CategoryPatch lists the category fields to change; nil means unchanged.
type CategoryPatch struct {
	Name  *string
	Order *int
}

// AddCategory appends a category to projectID at the next sibling order.
func (e Engine) AddCategory(s State, projectID, name string) (State, model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, model.Category{}, emptyField("category", "name")
	}
	if _, ok := s.Project(projectID); !ok {
		return s, model.Category{}, nil
	}
	c := model.Category{
		ID:        e.id(),
		Name:      name,
		Order:     s.NextCategoryOrder(projectID),
		ProjectID: projectID,
	}
	s.Categories = appendCopy(s.Categories, c)
	return e.touch(s, projectID), c, nil
}

// UpdateCategory applies patch to the category.
func (e Engine) UpdateCategory(s State, id string, patch CategoryPatch) (State, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return s, emptyField("category", "name")
	}
	categories, ok := replace(s.Categories, func(c model.Category) bool { return c.ID == id },
		func(c model.Category) model.Category {
			if patch.Name != nil {
				c.Name = strings.TrimSpace(*patch.Name)
			}
			if patch.Order != nil {
				c.Order = *patch.Order
			}
			return c
		})
	if !ok {
		return s, nil
	}
	s.Categories = categories
	return e.touch(s, s.projectOfCategory(id)), nil
}

// ReorderCategory sets the category's Order. Siblings are not renumbered.
func (e Engine) ReorderCategory(s State, id string, order int) State {
	next, _ := e.UpdateCategory(s, id, CategoryPatch{Order: &order})
	return next
}

// DeleteCategory removes the category, its subcategories, their
// requirements and those requirements' nodes.
func (e Engine) DeleteCategory(s State, id string) (State, Counts) {
	projectID := s.projectOfCategory(id)
	if _, ok := s.Category(id); !ok {
		return s, Counts{}
	}
	r := s.expand(removal{categories: idSet{id: {}}})
	return e.touch(s.without(r), projectID), r.counts()
}

// SubcategoryPatch lists the subcategory fields to change; nil means unchanged.
type SubcategoryPatch struct {
	Name  *string
	Order *int
}

// AddSubcategory appends a subcategory to categoryID at the next sibling order.
func (e Engine) AddSubcategory(s State, categoryID, name string) (State, model.Subcategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, model.Subcategory{}, emptyField("subcategory", "name")
	}
	if _, ok := s.Category(categoryID); !ok {
		return s, model.Subcategory{}, nil
	}
	sub := model.Subcategory{
		ID:         e.id(),
		Name:       name,
		Order:      s.NextSubcategoryOrder(categoryID),
		CategoryID: categoryID,
	}
	s.Subcategories = appendCopy(s.Subcategories, sub)
	return e.touch(s, s.projectOfCategory(categoryID)), sub, nil
}

// UpdateSubcategory applies patch to the subcategory.
func (e Engine) UpdateSubcategory(s State, id string, patch SubcategoryPatch) (State, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return s, emptyField("subcategory", "name")
	}
	subs, ok := replace(s.Subcategories, func(sub model.Subcategory) bool { return sub.ID == id },
		func(sub model.Subcategory) model.Subcategory {
			if patch.Name != nil {
				sub.Name = strings.TrimSpace(*patch.Name)
			}
			if patch.Order != nil {
				sub.Order = *patch.Order
			}
			return sub
		})
	if !ok {
		return s, nil
	}
	s.Subcategories = subs
	return e.touch(s, s.projectOfSubcategory(id)), nil
}

// ReorderSubcategory sets the subcategory's Order. Siblings are not renumbered.
func (e Engine) ReorderSubcategory(s State, id string, order int) State {
	next, _ := e.UpdateSubcategory(s, id, SubcategoryPatch{Order: &order})
	return next
}

// DeleteSubcategory removes the subcategory, its requirements and their nodes.
func (e Engine) DeleteSubcategory(s State, id string) (State, Counts) {
	projectID := s.projectOfSubcategory(id)
	if _, ok := s.Subcategory(id); !ok {
		return s, Counts{}
	}
	r := s.expand(removal{subcategories: idSet{id: {}}})
	return e.touch(s.without(r), projectID), r.counts()
}

// RequirementInput carries the fields of a new requirement. Empty Priority
// and Status default to medium and not-started.
type RequirementInput struct {
	Code        string
	Title       string
	Description string
	Priority    model.Priority
	Status      model.Status
}

// RequirementPatch lists the requirement fields to change; nil means unchanged.
type RequirementPatch struct {
	Code        *string
	Title       *string
	Description *string
	Priority    *model.Priority
	Status      *model.Status
}

// AddRequirement appends a requirement to subcategoryID.
func (e Engine) AddRequirement(s State, subcategoryID string, in RequirementInput) (State, model.Requirement, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Title = strings.TrimSpace(in.Title)
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if in.Status == "" {
		in.Status = model.StatusNotStarted
	}
	if err := validateRequirement(in.Code, in.Title, in.Priority, in.Status); err != nil {
		return s, model.Requirement{}, err
	}
	if _, ok := s.Subcategory(subcategoryID); !ok {
		return s, model.Requirement{}, nil
	}
	r := model.Requirement{
		ID:            e.id(),
		Code:          in.Code,
		Title:         in.Title,
		Description:   in.Description,
		Priority:      in.Priority,
		Status:        in.Status,
		SubcategoryID: subcategoryID,
	}
	s.Requirements = appendCopy(s.Requirements, r)
	return e.touch(s, s.projectOfSubcategory(subcategoryID)), r, nil
}

// UpdateRequirement applies patch to the requirement.
func (e Engine) UpdateRequirement(s State, id string, patch RequirementPatch) (State, error) {
	cur, ok := s.Requirement(id)
	if !ok {
		return s, nil
	}
	if patch.Code != nil {
		cur.Code = strings.TrimSpace(*patch.Code)
	}
	if patch.Title != nil {
		cur.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		cur.Description = *patch.Description
	}
	if patch.Priority != nil {
		cur.Priority = *patch.Priority
	}
	if patch.Status != nil {
		cur.Status = *patch.Status
	}
	if err := validateRequirement(cur.Code, cur.Title, cur.Priority, cur.Status); err != nil {
		return s, err
	}
	s.Requirements, _ = replace(s.Requirements, func(r model.Requirement) bool { return r.ID == id },
		func(model.Requirement) model.Requirement { return cur })
	return e.touch(s, s.ProjectOfRequirement(id)), nil
}

// DeleteRequirement removes the requirement and all of its nodes.
func (e Engine) DeleteRequirement(s State, id string) (State, Counts) {
	projectID := s.ProjectOfRequirement(id)
	if _, ok := s.Requirement(id); !ok {
		return s, Counts{}
	}
	r := s.expand(removal{requirements: idSet{id: {}}})
	return e.touch(s.without(r), projectID), r.counts()
}

// SelectRequirement selects a requirement; an empty id clears the selection.
// Unknown ids are ignored.
func (e Engine) SelectRequirement(s State, id string) State {
	if id != "" {
		if _, ok := s.Requirement(id); !ok {
			return s
		}
	}
	s.Selection.RequirementID = id
	return s
}

func validateRequirement(code, title string, p model.Priority, st model.Status) error {
	switch {
	case code == "":
		return emptyField("requirement", "code")
	case title == "":
		return emptyField("requirement", "title")
	case !p.Valid():
		return invalidValue("requirement", "priority", string(p))
	case !st.Valid():
		return invalidValue("requirement", "status", string(st))
	}
	return nil
}

// appendCopy appends to a fresh backing array so the previous state's slice
// is never shared with the next one.
func appendCopy[T any](items []T, extra ...T) []T {
	out := make([]T, 0, len(items)+len(extra))
	out = append(out, items...)
	return append(out, extra...)
}

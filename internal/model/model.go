// Package model defines the records tracked by destrack: projects,
// categories, subcategories, requirements and the implementation nodes that
// map a requirement onto source artifacts. All relationships are by-id
// references; nested views are derived by the tree package.
package model

import "time"

// Project is the top-level container for a set of requirements.
type Project struct {
	ID          string    `json:"id" toml:"id" yaml:"id"`
	Name        string    `json:"name" toml:"name" yaml:"name"`
	Description string    `json:"description" toml:"description" yaml:"description"`
	CreatedAt   time.Time `json:"createdAt" toml:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" toml:"updatedAt" yaml:"updatedAt"`
}

// Category groups subcategories within a project. Order defines the sibling
// sequence and is not required to be contiguous.
type Category struct {
	ID        string `json:"id" toml:"id" yaml:"id"`
	Name      string `json:"name" toml:"name" yaml:"name"`
	Order     int    `json:"order" toml:"order" yaml:"order"`
	ProjectID string `json:"projectId" toml:"projectId" yaml:"projectId"`
}

// Subcategory groups requirements within a category.
type Subcategory struct {
	ID         string `json:"id" toml:"id" yaml:"id"`
	Name       string `json:"name" toml:"name" yaml:"name"`
	Order      int    `json:"order" toml:"order" yaml:"order"`
	CategoryID string `json:"categoryId" toml:"categoryId" yaml:"categoryId"`
}

// Requirement is a single tracked requirement.
type Requirement struct {
	ID            string   `json:"id" toml:"id" yaml:"id"`
	Code          string   `json:"code" toml:"code" yaml:"code"`
	Title         string   `json:"title" toml:"title" yaml:"title"`
	Description   string   `json:"description" toml:"description" yaml:"description"`
	Priority      Priority `json:"priority" toml:"priority" yaml:"priority"`
	Status        Status   `json:"status" toml:"status" yaml:"status"`
	SubcategoryID string   `json:"subcategoryId" toml:"subcategoryId" yaml:"subcategoryId"`
}

// ImplementationNode is one artifact in a requirement's implementation
// forest. A nil ParentID marks a root. Every node in a subtree carries the
// RequirementID of its root.
type ImplementationNode struct {
	ID            string   `json:"id" toml:"id" yaml:"id"`
	Type          NodeType `json:"type" toml:"type" yaml:"type"`
	Name          string   `json:"name" toml:"name" yaml:"name"`
	ParentID      *string  `json:"parentId" toml:"parentId,omitempty" yaml:"parentId"`
	RequirementID string   `json:"requirementId" toml:"requirementId" yaml:"requirementId"`
	Notes         *string  `json:"notes" toml:"notes,omitempty" yaml:"notes"`
	Order         int      `json:"order" toml:"order" yaml:"order"`
}

// Parent returns the parent id, or "" for a root node.
func (n ImplementationNode) Parent() string {
	if n.ParentID == nil {
		return ""
	}
	return *n.ParentID
}

// IsRoot reports whether the node has no parent.
func (n ImplementationNode) IsRoot() bool {
	return n.ParentID == nil
}

// NoteText returns the notes, or "" when none are set.
func (n ImplementationNode) NoteText() string {
	if n.Notes == nil {
		return ""
	}
	return *n.Notes
}

// Ref returns a pointer to s, or nil when s is empty. It is the conversion
// used for the nullable ParentID and Notes fields.
func Ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CategoryWithChildren is a category with its ordered subcategories.
type CategoryWithChildren struct {
	Category
	Subcategories []SubcategoryWithChildren
}

// SubcategoryWithChildren is a subcategory with its requirements.
type SubcategoryWithChildren struct {
	Subcategory
	Requirements []Requirement
}

// NodeWithChildren is an implementation node with its ordered children.
type NodeWithChildren struct {
	ImplementationNode
	Children []NodeWithChildren
}

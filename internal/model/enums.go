package model

// Priority ranks how important a requirement is.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Priorities returns every priority from lowest to highest.
func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// DisplayName returns the human-readable priority label.
func (p Priority) DisplayName() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	case PriorityCritical:
		return "Critical"
	}
	return string(p)
}

// Status tracks how far a requirement has progressed.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusComplete   Status = "complete"
	StatusBlocked    Status = "blocked"
)

// Statuses returns every status in workflow order.
func Statuses() []Status {
	return []Status{StatusNotStarted, StatusInProgress, StatusComplete, StatusBlocked}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusComplete, StatusBlocked:
		return true
	}
	return false
}

// DisplayName returns the human-readable status label.
func (s Status) DisplayName() string {
	switch s {
	case StatusNotStarted:
		return "Not Started"
	case StatusInProgress:
		return "In Progress"
	case StatusComplete:
		return "Complete"
	case StatusBlocked:
		return "Blocked"
	}
	return string(s)
}

// Icon returns a single-glyph marker for the status.
func (s Status) Icon() string {
	switch s {
	case StatusNotStarted:
		return "☐"
	case StatusInProgress:
		return "◐"
	case StatusComplete:
		return "☑"
	case StatusBlocked:
		return "⛔"
	}
	return "?"
}

// Next returns the status that follows s in workflow order, wrapping
// around after the last one.
func (s Status) Next() Status {
	all := Statuses()
	for i, st := range all {
		if st == s {
			return all[(i+1)%len(all)]
		}
	}
	return StatusNotStarted
}

// NodeType is the kind of artifact an implementation node represents.
type NodeType string

const (
	NodeDirectory NodeType = "directory"
	NodeFile      NodeType = "file"
	NodeClass     NodeType = "class"
	NodeMethod    NodeType = "method"
)

// NodeTypes returns every node type from coarsest to finest.
func NodeTypes() []NodeType {
	return []NodeType{NodeDirectory, NodeFile, NodeClass, NodeMethod}
}

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	switch t {
	case NodeDirectory, NodeFile, NodeClass, NodeMethod:
		return true
	}
	return false
}

// DisplayName returns the human-readable node type label.
func (t NodeType) DisplayName() string {
	switch t {
	case NodeDirectory:
		return "Directory"
	case NodeFile:
		return "File"
	case NodeClass:
		return "Class"
	case NodeMethod:
		return "Method"
	}
	return string(t)
}

// Icon returns a single-glyph marker for the node type.
func (t NodeType) Icon() string {
	switch t {
	case NodeDirectory:
		return "📁"
	case NodeFile:
		return "📄"
	case NodeClass:
		return "🔷"
	case NodeMethod:
		return "⚙"
	}
	return "·"
}

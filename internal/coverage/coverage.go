// Package coverage summarizes a requirement set: how many requirements have
// at least one implementation node, and how they split by status and
// priority.
package coverage

import "github.com/papapumpkin/destrack/internal/model"

// Stats is the dashboard summary for one requirement set.
type Stats struct {
	TotalRequirements              int                    `json:"totalRequirements"`
	RequirementsWithImplementation int                    `json:"requirementsWithImplementation"`
	CoveragePercentage             int                    `json:"coveragePercentage"`
	ByStatus                       map[model.Status]int   `json:"byStatus"`
	ByPriority                     map[model.Priority]int `json:"byPriority"`
}

// Calculate computes Stats for requirements against nodes. Both slices
// should be scoped to the same project: a requirement counts as covered when
// any node in nodes references it, whichever set the node came from.
// ByStatus and ByPriority always hold every enum key.
func Calculate(requirements []model.Requirement, nodes []model.ImplementationNode) Stats {
	implemented := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		implemented[n.RequirementID] = true
	}

	stats := Stats{
		TotalRequirements: len(requirements),
		ByStatus:          make(map[model.Status]int, len(model.Statuses())),
		ByPriority:        make(map[model.Priority]int, len(model.Priorities())),
	}
	for _, s := range model.Statuses() {
		stats.ByStatus[s] = 0
	}
	for _, p := range model.Priorities() {
		stats.ByPriority[p] = 0
	}

	for _, r := range requirements {
		stats.ByStatus[r.Status]++
		stats.ByPriority[r.Priority]++
		if implemented[r.ID] {
			stats.RequirementsWithImplementation++
		}
	}
	stats.CoveragePercentage = Percent(stats.RequirementsWithImplementation, stats.TotalRequirements)
	return stats
}

// Percent returns 100*part/total rounded half up, or 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}

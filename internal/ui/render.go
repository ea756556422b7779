package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/destrack/internal/coverage"
	"github.com/papapumpkin/destrack/internal/model"
	"github.com/papapumpkin/destrack/internal/telemetry"
)

// StatusStyle returns the style a requirement status is drawn in.
func StatusStyle(s model.Status) lipgloss.Style {
	switch s {
	case model.StatusComplete:
		return styleSuccess
	case model.StatusInProgress:
		return styleBlue
	case model.StatusBlocked:
		return styleDanger
	}
	return styleNormal
}

// PriorityStyle returns the style a priority label is drawn in.
func PriorityStyle(p model.Priority) lipgloss.Style {
	switch p {
	case model.PriorityCritical:
		return styleError
	case model.PriorityHigh:
		return styleWarn
	case model.PriorityLow:
		return styleMuted
	}
	return styleNormal
}

// RequirementLine renders one requirement: status icon, code, title,
// priority and the number of mapped nodes.
func RequirementLine(r model.Requirement, nodes int) string {
	line := fmt.Sprintf("%s %s %s %s",
		StatusStyle(r.Status).Render(r.Status.Icon()),
		styleCode.Render(r.Code),
		r.Title,
		PriorityStyle(r.Priority).Render("["+r.Priority.DisplayName()+"]"))
	if nodes > 0 {
		line += " " + styleMuted.Render(plural(nodes, "node"))
	}
	return line
}

// RequirementsTree renders categories, subcategories and requirements as an
// indented outline. nodeCounts maps requirement id to its node count.
func RequirementsTree(forest []model.CategoryWithChildren, nodeCounts map[string]int) string {
	if len(forest) == 0 {
		return styleMuted.Render("no categories") + "\n"
	}
	var b strings.Builder
	for _, c := range forest {
		b.WriteString(styleHeading.Render("▸ "+c.Name) + " " + styleMuted.Render(c.ID) + "\n")
		for _, sub := range c.Subcategories {
			b.WriteString("  " + styleTitle.Render("• "+sub.Name) + " " + styleMuted.Render(sub.ID) + "\n")
			for _, r := range sub.Requirements {
				b.WriteString("      " + RequirementLine(r, nodeCounts[r.ID]) + " " + styleMuted.Render(r.ID) + "\n")
			}
		}
	}
	return b.String()
}

// ImplementationTree renders a node forest with box-drawing connectors.
func ImplementationTree(forest []model.NodeWithChildren) string {
	if len(forest) == 0 {
		return styleMuted.Render("no implementation nodes") + "\n"
	}
	var b strings.Builder
	writeNodes(&b, forest, "")
	return b.String()
}

func writeNodes(b *strings.Builder, nodes []model.NodeWithChildren, prefix string) {
	for i, n := range nodes {
		last := i == len(nodes)-1
		connector, childPrefix := "├── ", "│   "
		if last {
			connector, childPrefix = "└── ", "    "
		}
		b.WriteString(styleMuted.Render(prefix+connector) + NodeLabel(n.ImplementationNode) + "\n")
		writeNodes(b, n.Children, prefix+childPrefix)
	}
}

// NodeLabel renders a node's icon, name, notes and id on one line.
func NodeLabel(n model.ImplementationNode) string {
	label := n.Type.Icon() + " " + n.Name
	if notes := n.NoteText(); notes != "" {
		label += " " + styleMuted.Render("· "+notes)
	}
	return label + " " + styleMuted.Render(n.ID)
}

// Path renders ancestor names root first.
func Path(names []string) string {
	parts := make([]string, len(names))
	for i, name := range names {
		if name == "" {
			name = "?"
		}
		parts[i] = name
	}
	return strings.Join(parts, styleMuted.Render(" / "))
}

const barWidth = 20

// CoverageBar renders percent as a fixed-width bar.
func CoverageBar(percent int) string {
	percent = min(max(percent, 0), 100)
	filled := (percent*barWidth + 50) / 100
	return styleSuccess.Render(strings.Repeat("█", filled)) + styleMuted.Render(strings.Repeat("░", barWidth-filled))
}

// Coverage renders the coverage summary with per-status and per-priority
// breakdowns.
func Coverage(s coverage.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %d%% %s\n",
		styleHeading.Render("Coverage"),
		CoverageBar(s.CoveragePercentage),
		s.CoveragePercentage,
		styleMuted.Render(fmt.Sprintf("(%d of %d requirements implemented)", s.RequirementsWithImplementation, s.TotalRequirements)))

	b.WriteString(styleTitle.Render("By status") + "\n")
	for _, st := range model.Statuses() {
		fmt.Fprintf(&b, "  %s %-12s %d\n", StatusStyle(st).Render(st.Icon()), st.DisplayName(), s.ByStatus[st])
	}
	b.WriteString(styleTitle.Render("By priority") + "\n")
	for _, p := range model.Priorities() {
		fmt.Fprintf(&b, "  %-14s %d\n", PriorityStyle(p).Render(p.DisplayName()), s.ByPriority[p])
	}
	return b.String()
}

// ProjectList renders projects one per line, marking the selected one.
func ProjectList(projects []model.Project, selected string) string {
	if len(projects) == 0 {
		return styleMuted.Render("no projects") + "\n"
	}
	var b strings.Builder
	for _, p := range projects {
		marker := "  "
		if p.ID == selected {
			marker = styleHeading.Render("▎ ")
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", marker, styleTitle.Render(p.Name), styleMuted.Render(p.ID),
			styleMuted.Render("updated "+p.UpdatedAt.Local().Format("2006-01-02 15:04")))
		if p.Description != "" {
			b.WriteString("    " + styleNormal.Render(p.Description) + "\n")
		}
	}
	return b.String()
}

// AuditTrail renders audit events one per line, oldest first.
func AuditTrail(events []telemetry.Event) string {
	if len(events) == 0 {
		return styleMuted.Render("no audit events") + "\n"
	}
	var b strings.Builder
	for _, e := range events {
		kind := styleNormal
		switch e.Kind {
		case telemetry.KindRejected:
			kind = styleDanger
		case telemetry.KindCascade:
			kind = styleWarn
		case telemetry.KindImport:
			kind = styleBlue
		}
		fmt.Fprintf(&b, "%s %s %s", styleMuted.Render(e.Timestamp.Local().Format("2006-01-02 15:04:05")),
			kind.Render(fmt.Sprintf("%-8s", e.Kind)), e.Op)
		if e.EntityID != "" {
			b.WriteString(" " + styleMuted.Render(e.EntityID))
		}
		if e.Kind == telemetry.KindRejected && e.Data != nil {
			fmt.Fprintf(&b, " %s", styleDanger.Render(fmt.Sprint(e.Data)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

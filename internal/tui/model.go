package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/papapumpkin/destrack/internal/coverage"
	"github.com/papapumpkin/destrack/internal/model"
	"github.com/papapumpkin/destrack/internal/state"
	"github.com/papapumpkin/destrack/internal/tree"
	"github.com/papapumpkin/destrack/internal/ui"
)

// Backend is the state source the browser reads and the one write it makes.
// *tracker.Tracker implements it.
type Backend interface {
	Snapshot() state.State
	UpdateRequirement(ctx context.Context, id string, patch state.RequirementPatch) error
	SelectRequirement(id string)
}

// line is one rendered row of the requirements pane. Only requirement rows
// carry an id and can hold the cursor.
type line struct {
	text          string
	requirementID string
}

// MsgStatusAdvanced reports the result of an asynchronous status change.
type MsgStatusAdvanced struct {
	RequirementID string
	Err           error
}

// Model is the bubbletea model of the requirements browser.
type Model struct {
	ctx       context.Context
	backend   Backend
	projectID string
	keys      KeyMap

	filter model.Status
	lines  []line
	rows   []int // indexes into lines of the requirement rows
	cursor int   // index into rows

	width, height int
	err           error
}

// NewModel returns a browser over projectID.
func NewModel(ctx context.Context, b Backend, projectID string) Model {
	m := Model{
		ctx:       ctx,
		backend:   b,
		projectID: projectID,
		keys:      DefaultKeyMap(),
		width:     100,
		height:    30,
	}
	m.rebuild()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case MsgStatusAdvanced:
		m.err = msg.Err
		m.rebuild()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Enter):
		if id := m.CurrentRequirement(); id != "" {
			m.backend.SelectRequirement(id)
		}
	case key.Matches(msg, m.keys.Filter):
		m.filter = nextFilter(m.filter)
		m.cursor = 0
		m.rebuild()
	case key.Matches(msg, m.keys.Advance):
		return m, m.advanceStatus()
	}
	return m, nil
}

// advanceStatus moves the requirement under the cursor to its next status.
func (m Model) advanceStatus() tea.Cmd {
	id := m.CurrentRequirement()
	if id == "" {
		return nil
	}
	r, ok := m.backend.Snapshot().Requirement(id)
	if !ok {
		return nil
	}
	next := r.Status.Next()
	b, ctx := m.backend, m.ctx
	return func() tea.Msg {
		err := b.UpdateRequirement(ctx, id, state.RequirementPatch{Status: &next})
		return MsgStatusAdvanced{RequirementID: id, Err: err}
	}
}

// nextFilter cycles all → each status → all.
func nextFilter(f model.Status) model.Status {
	if f == "" {
		return model.Statuses()[0]
	}
	all := model.Statuses()
	if f == all[len(all)-1] {
		return ""
	}
	return f.Next()
}

// Filter returns the active status filter; "" means all.
func (m Model) Filter() model.Status { return m.filter }

// CurrentRequirement returns the id under the cursor, or "".
func (m Model) CurrentRequirement() string {
	if len(m.rows) == 0 {
		return ""
	}
	return m.lines[m.rows[m.cursor]].requirementID
}

// rebuild re-derives the requirements pane from the latest snapshot.
func (m *Model) rebuild() {
	s := m.backend.Snapshot()
	reqs := state.FilterByStatus(s.ProjectRequirements(m.projectID), m.filter)
	forest := tree.BuildRequirementsTree(s.Categories, s.Subcategories, reqs, m.projectID)

	nodeCounts := make(map[string]int)
	for _, n := range s.ProjectNodes(m.projectID) {
		nodeCounts[n.RequirementID]++
	}

	m.lines, m.rows = nil, nil
	for _, c := range forest {
		m.lines = append(m.lines, line{text: styleGroup.Render("▸ " + c.Name)})
		for _, sub := range c.Subcategories {
			m.lines = append(m.lines, line{text: "  " + styleRowNormal.Render("• "+sub.Name)})
			for _, r := range sub.Requirements {
				m.rows = append(m.rows, len(m.lines))
				m.lines = append(m.lines, line{text: ui.RequirementLine(r, nodeCounts[r.ID]), requirementID: r.ID})
			}
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	s := m.backend.Snapshot()
	p, _ := s.Project(m.projectID)

	title := "destrack · " + p.Name
	if m.filter != "" {
		title += "  " + styleFilterBadge.Render("["+m.filter.DisplayName()+"]")
	}
	header := styleStatusBar.Width(m.width).Render(title)

	paneWidth := max(m.width/2-2, 20)
	left := stylePane.Width(paneWidth).Render(m.requirementsPane())
	right := stylePane.Width(paneWidth).Render(m.nodesPane(s))
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	stats := coverage.Calculate(s.ProjectRequirements(m.projectID), s.ProjectNodes(m.projectID))
	footer := styleFooter.Width(m.width).Render(
		fmt.Sprintf("coverage %s %d%%  %s", ui.CoverageBar(stats.CoveragePercentage), stats.CoveragePercentage, m.helpLine()))

	parts := []string{header, body}
	if m.err != nil {
		parts = append(parts, styleError.Render("error: "+m.err.Error()))
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) requirementsPane() string {
	if len(m.rows) == 0 {
		return styleMuted.Render("no requirements")
	}
	current := m.rows[m.cursor]
	out := make([]string, len(m.lines))
	for i, l := range m.lines {
		if i == current {
			out[i] = styleRowSelected.Render(selectionIndicator) + " " + l.text
			continue
		}
		out[i] = "  " + l.text
	}
	return strings.Join(out, "\n")
}

func (m Model) nodesPane(s state.State) string {
	id := s.Selection.RequirementID
	r, ok := s.Requirement(id)
	if !ok {
		return styleMuted.Render("press enter on a requirement")
	}
	forest := tree.BuildImplementationTree(s.ImplementationNodes, id)
	head := styleGroup.Render(r.Code+" "+r.Title) + "\n" + styleMuted.Render(r.Status.DisplayName()) + "\n\n"
	return head + strings.TrimRight(ui.ImplementationTree(forest), "\n")
}

func (m Model) helpLine() string {
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+styleMuted.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

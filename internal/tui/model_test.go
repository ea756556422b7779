package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/papapumpkin/destrack/internal/model"
	"github.com/papapumpkin/destrack/internal/state"
	"github.com/papapumpkin/destrack/internal/storage"
	"github.com/papapumpkin/destrack/internal/tracker"
)

func newBackend(t *testing.T) *tracker.Tracker {
	t.Helper()
	seed := state.Collections{
		Projects:      []model.Project{{ID: "p1", Name: "Demo", CreatedAt: time.Unix(0, 0), UpdatedAt: time.Unix(0, 0)}},
		Categories:    []model.Category{{ID: "c1", Name: "Auth", Order: 1, ProjectID: "p1"}},
		Subcategories: []model.Subcategory{{ID: "s1", Name: "Login", Order: 1, CategoryID: "c1"}},
		Requirements: []model.Requirement{
			{ID: "r1", Code: "AUTH-1", Title: "Password login", Priority: model.PriorityHigh, Status: model.StatusComplete, SubcategoryID: "s1"},
			{ID: "r2", Code: "AUTH-2", Title: "Lockout", Priority: model.PriorityLow, Status: model.StatusNotStarted, SubcategoryID: "s1"},
		},
		ImplementationNodes: []model.ImplementationNode{
			{ID: "n1", Type: model.NodeFile, Name: "login.go", RequirementID: "r1", Order: 1},
		},
	}
	tr, err := tracker.New(context.Background(), storage.NewMemoryStore(seed))
	if err != nil {
		t.Fatalf("tracker.New: %v", err)
	}
	return tr
}

func press(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCursorMovement(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), newBackend(t), "p1")

	if got := m.CurrentRequirement(); got != "r1" {
		t.Fatalf("initial cursor on %q, want r1", got)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	if got := m.CurrentRequirement(); got != "r2" {
		t.Errorf("after down: %q, want r2", got)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	if got := m.CurrentRequirement(); got != "r2" {
		t.Errorf("down past the end: %q, want r2", got)
	}
	m, _ = press(m, runes("k"))
	if got := m.CurrentRequirement(); got != "r1" {
		t.Errorf("after k: %q, want r1", got)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyUp})
	if got := m.CurrentRequirement(); got != "r1" {
		t.Errorf("up past the start: %q, want r1", got)
	}
}

func TestEnterSelectsRequirement(t *testing.T) {
	t.Parallel()
	b := newBackend(t)
	m := NewModel(context.Background(), b, "p1")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := b.Snapshot().Selection.RequirementID; got != "r1" {
		t.Fatalf("selected requirement = %q, want r1", got)
	}
	view := m.View()
	if !strings.Contains(view, "login.go") {
		t.Errorf("view does not show the selected requirement's nodes:\n%s", view)
	}
}

func TestFilterCycle(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), newBackend(t), "p1")

	want := append(model.Statuses(), "")
	for _, st := range want {
		m, _ = press(m, runes("f"))
		if m.Filter() != st {
			t.Fatalf("filter = %q, want %q", m.Filter(), st)
		}
	}

	m, _ = press(m, runes("f")) // not started
	if got := m.CurrentRequirement(); got != "r2" {
		t.Errorf("not started filter: cursor on %q, want r2", got)
	}
	m, _ = press(m, runes("f")) // in progress
	if got := m.CurrentRequirement(); got != "" {
		t.Errorf("in progress filter: cursor on %q, want none", got)
	}
	if view := m.View(); !strings.Contains(view, "no requirements") {
		t.Errorf("empty filter view missing placeholder:\n%s", view)
	}
}

func TestAdvanceStatus(t *testing.T) {
	t.Parallel()
	b := newBackend(t)
	m := NewModel(context.Background(), b, "p1")

	m, cmd := press(m, runes("s"))
	if cmd == nil {
		t.Fatal("advance returned no command")
	}
	msg, ok := cmd().(MsgStatusAdvanced)
	if !ok {
		t.Fatalf("command produced %T, want MsgStatusAdvanced", msg)
	}
	if msg.Err != nil || msg.RequirementID != "r1" {
		t.Fatalf("msg = %+v, want r1 without error", msg)
	}
	next, _ := m.Update(msg)
	m = next.(Model)

	r, _ := b.Snapshot().Requirement("r1")
	if r.Status != model.StatusBlocked {
		t.Errorf("status = %q, want %q", r.Status, model.StatusBlocked)
	}
	if m.err != nil {
		t.Errorf("model error = %v", m.err)
	}
}

func TestQuit(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), newBackend(t), "p1")
	_, cmd := press(m, runes("q"))
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestViewHeaderAndCoverage(t *testing.T) {
	t.Parallel()
	m := NewModel(context.Background(), newBackend(t), "p1")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := next.(Model).View()

	for _, want := range []string{"Demo", "AUTH-1", "AUTH-2", "Auth", "Login", "50%", "press enter on a requirement"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestRunRejectsUnknownProject(t *testing.T) {
	t.Parallel()
	if err := Run(context.Background(), newBackend(t), "nope"); err == nil {
		t.Error("Run with an unknown project returned nil")
	}
}

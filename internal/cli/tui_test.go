package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/pageviz/pkg/source"
	"github.com/matzehuels/pageviz/pkg/viewer"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDocumentListModel(t *testing.T) {
	entries := []source.Entry{
		{Key: "a.json", Name: "a", Size: 2048, ModTime: time.Now().Add(-2 * time.Hour)},
		{Key: "b.json", Name: "b"},
	}
	var m tea.Model = NewDocumentListModel(entries)

	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down")) // stays on the last entry
	if got := m.(DocumentListModel).Cursor; got != 1 {
		t.Fatalf("Cursor = %d, want 1", got)
	}
	if view := m.View(); !strings.Contains(view, "a.json") || !strings.Contains(view, "2.0 KB") {
		t.Errorf("View() missing entries:\n%s", view)
	}

	m, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Error("enter should quit")
	}
	if sel := m.(DocumentListModel).Selected; sel == nil || sel.Key != "b.json" {
		t.Errorf("Selected = %+v", sel)
	}
}

func TestExplorerModel(t *testing.T) {
	h, err := viewer.Load(context.Background(), []byte(sampleOutline), viewer.Options{})
	if err != nil {
		t.Fatal(err)
	}
	updates, cancel := h.Subscribe()
	defer cancel()

	var m tea.Model = NewExplorerModel(h, updates)
	if got := len(m.(ExplorerModel).proj.Nodes); got != 5 {
		t.Fatalf("visible = %d, want 5", got)
	}

	// Cursor onto Intro (node-1) and collapse it.
	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("enter"))
	if !h.IsCollapsed("node-1") {
		t.Fatal("enter did not collapse node-1")
	}
	m, _ = m.Update(projectionMsg(h.VisibleGraph()))
	if got := len(m.(ExplorerModel).proj.Nodes); got != 3 {
		t.Errorf("visible after collapse = %d, want 3", got)
	}
	if view := m.View(); !strings.Contains(view, "+2") {
		t.Errorf("View() missing hidden count:\n%s", view)
	}

	// Search through the input line.
	m, _ = m.Update(key("/"))
	if !m.(ExplorerModel).searching {
		t.Fatal("/ did not start search")
	}
	for _, r := range "intro" {
		m, _ = m.Update(key(string(r)))
	}
	m, _ = m.Update(key("enter"))
	if h.Query() != "intro" {
		t.Errorf("Query() = %q, want intro", h.Query())
	}
	if status := m.(ExplorerModel).status; status != "2 matches" {
		t.Errorf("status = %q", status)
	}

	m, _ = m.Update(key("e"))
	if len(h.Collapsed()) != 0 {
		t.Errorf("e did not expand all: %v", h.Collapsed())
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{49 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(time.Now().Add(-tt.ago)); got != tt.want {
			t.Errorf("formatRelativeTime(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

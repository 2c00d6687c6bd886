package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/pageviz/pkg/source"
	"github.com/matzehuels/pageviz/pkg/view"
	"github.com/matzehuels/pageviz/pkg/viewer"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorMuted)
)

// =============================================================================
// DocumentListModel - Interactive document selection
// =============================================================================

// DocumentListModel is the bubbletea model for picking a document from a
// source listing.
type DocumentListModel struct {
	Entries  []source.Entry
	Cursor   int
	Selected *source.Entry
	Height   int
	Offset   int
}

// NewDocumentListModel creates a new document list model.
func NewDocumentListModel(entries []source.Entry) DocumentListModel {
	return DocumentListModel{
		Entries: entries,
		Height:  15,
	}
}

func (m DocumentListModel) Init() tea.Cmd {
	return nil
}

func (m DocumentListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Entries) == 0 {
				return m, nil
			}
			entry := m.Entries[m.Cursor]
			m.Selected = &entry
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m DocumentListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Document"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Entries))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		size := "—"
		if e.Size > 0 {
			size = formatSize(e.Size)
		}
		updated := "—"
		if !e.ModTime.IsZero() {
			updated = formatRelativeTime(e.ModTime)
		}
		rows = append(rows, []string{cursor, e.Name, e.Key, size, updated})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("", "Document", "Key", "Size", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			isCurrent := m.Offset+row == m.Cursor
			base := lipgloss.NewStyle()
			if col >= 2 {
				base = base.Foreground(colorMuted)
				if isCurrent {
					base = base.Foreground(colorSecondary)
				}
				return base
			}
			if isCurrent {
				return base.Foreground(colorOK).Bold(true)
			}
			return base.Foreground(colorText)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}

// =============================================================================
// ExplorerModel - Interactive outline view
// =============================================================================

// projectionMsg delivers a new visible graph from the handle subscription.
type projectionMsg view.Projection

// statusMsg replaces the status line (reload results, errors).
type statusMsg string

// ExplorerModel is the bubbletea model for browsing one document: a cursor
// over the visible nodes, collapse toggles and incremental search.
type ExplorerModel struct {
	handle  *viewer.Handle
	updates <-chan view.Projection

	proj      view.Projection
	cursor    int
	searching bool
	input     textinput.Model
	viewport  viewport.Model
	status    string
}

// NewExplorerModel creates an explorer over h. updates must come from
// h.Subscribe.
func NewExplorerModel(h *viewer.Handle, updates <-chan view.Projection) ExplorerModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search titles"
	ti.SetValue(h.Query())

	return ExplorerModel{
		handle:   h,
		updates:  updates,
		proj:     h.VisibleGraph(),
		input:    ti,
		viewport: viewport.New(80, 20),
	}
}

func waitForProjection(updates <-chan view.Projection) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-updates
		if !ok {
			return nil
		}
		return projectionMsg(p)
	}
}

func (m ExplorerModel) Init() tea.Cmd {
	return waitForProjection(m.updates)
}

func (m ExplorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case projectionMsg:
		m.proj = view.Projection(msg)
		m.cursor = min(m.cursor, max(len(m.proj.Nodes)-1, 0))
		m.refresh()
		return m, waitForProjection(m.updates)

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 3)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.proj.Nodes)-1 {
				m.cursor++
			}
		case "home", "g":
			m.cursor = 0
		case "end", "G":
			m.cursor = max(len(m.proj.Nodes)-1, 0)
		case "enter", " ":
			if n, ok := m.current(); ok {
				m.handle.ToggleCollapse(n.ID)
			}
		case "e":
			m.handle.ExpandAll()
		case "n":
			m.cursor = m.nextMatch()
		case "/":
			m.searching = true
			cmd := m.input.Focus()
			return m, cmd
		}
		m.refresh()
	}
	return m, nil
}

func (m ExplorerModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.input.Blur()
		matches := m.handle.SetSearchQuery(m.input.Value())
		m.status = fmt.Sprintf("%d matches", matches)
		return m, nil
	case "esc", "ctrl+c":
		m.searching = false
		m.input.Blur()
		m.input.SetValue(m.handle.Query())
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ExplorerModel) current() (view.Node, bool) {
	if m.cursor < 0 || m.cursor >= len(m.proj.Nodes) {
		return view.Node{}, false
	}
	return m.proj.Nodes[m.cursor], true
}

// nextMatch returns the index of the next highlighted node after the cursor,
// wrapping around, or the cursor itself when nothing visible matches.
func (m ExplorerModel) nextMatch() int {
	n := len(m.proj.Nodes)
	for i := 1; i <= n; i++ {
		j := (m.cursor + i) % n
		if m.proj.Nodes[j].IsHighlighted {
			return j
		}
	}
	return m.cursor
}

// refresh redraws the node list and scrolls the cursor into view.
func (m *ExplorerModel) refresh() {
	lines := make([]string, len(m.proj.Nodes))
	for i, n := range m.proj.Nodes {
		lines[i] = renderNodeLine(n, i == m.cursor)
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func renderNodeLine(n view.Node, selected bool) string {
	marker := "•"
	switch {
	case n.IsCollapsed:
		marker = "▸"
	case n.HasChildren:
		marker = "▾"
	}

	title := lipgloss.NewStyle().Foreground(lipgloss.Color(n.Colors.Fill()))
	if n.IsHighlighted {
		title = title.Bold(true).Underline(true)
	}

	line := strings.Repeat("  ", n.Depth) + StyleDim.Render(marker) + " " + title.Render(n.Title)
	if n.IsCollapsed && n.HiddenCount > 0 {
		line += StyleDim.Render(fmt.Sprintf("  +%d", n.HiddenCount))
	}

	cursor := "  "
	if selected {
		cursor = listSelectedStyle.Render("▸ ")
	}
	return cursor + line
}

func (m ExplorerModel) View() string {
	var b strings.Builder

	title := "Outline"
	if len(m.proj.Nodes) > 0 {
		title = m.proj.Nodes[0].Title
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d/%d visible", len(m.proj.Nodes), m.proj.TotalNodes)))
	if m.proj.MatchCount > 0 {
		b.WriteString(StyleHighlight.Render(fmt.Sprintf("  %d matches (%d shown)", m.proj.MatchCount, m.proj.VisibleMatchCount)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.searching {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(listDimStyle.Render("↑/↓ move  ⏎ toggle  / search  n next match  e expand all  q quit"))
		if m.status != "" {
			b.WriteString(StyleDim.Render("  · " + m.status))
		}
	}
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

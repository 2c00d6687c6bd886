package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pageviz/pkg/palette"
)

// Terminal colors. The accents are the border colors of the first two depth
// levels in rendered diagrams, so CLI output and cards look alike.
var (
	colorAccent    = lipgloss.Color(palette.ForDepth(0).Border)
	colorSection   = lipgloss.Color(palette.ForDepth(1).Border)
	colorOK        = lipgloss.Color("#10b981")
	colorWarn      = lipgloss.Color("#f59e0b")
	colorFail      = lipgloss.Color("#ef4444")
	colorText      = lipgloss.Color("255")
	colorSecondary = lipgloss.Color("245")
	colorMuted     = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorSection)
	StyleDim       = lipgloss.NewStyle().Foreground(colorMuted)
	StyleValue     = lipgloss.NewStyle().Foreground(colorText)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleKey         = lipgloss.NewStyle().Foreground(colorSecondary).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorSection)
)

// statusIcons prefix one-line status messages.
var statusIcons = map[string]string{
	"success": lipgloss.NewStyle().Foreground(colorOK).Render("✓"),
	"error":   lipgloss.NewStyle().Foreground(colorFail).Render("✗"),
	"warning": lipgloss.NewStyle().Foreground(colorWarn).Render("!"),
	"info":    lipgloss.NewStyle().Foreground(colorSecondary).Render("›"),
}

func status(w io.Writer, kind, format string, args ...any) {
	fmt.Fprintln(w, statusIcons[kind]+" "+fmt.Sprintf(format, args...))
}

func (c *CLI) printSuccess(format string, args ...any) { status(c.stdout, "success", format, args...) }

func (c *CLI) printInfo(format string, args ...any) { status(c.stdout, "info", format, args...) }

func (c *CLI) printWarning(format string, args ...any) {
	status(c.stdout, "warning", "%s", StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, dimmed line under a status message.
func (c *CLI) printDetail(format string, args ...any) {
	fmt.Fprintln(c.stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a written file.
func (c *CLI) printFile(path string) {
	fmt.Fprintln(c.stdout, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func (c *CLI) printKeyValue(key, value string) {
	fmt.Fprintln(c.stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep suggests a follow-up command after a blank line.
func (c *CLI) printNextStep(description, cmd string) {
	fmt.Fprintln(c.stdout)
	fmt.Fprintln(c.stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// graphStats is the summary line printed under build and render results.
// Zero counts are left out; visible is only shown when some nodes are
// hidden.
type graphStats struct {
	nodes, edges, visible, depth int
	cached                       bool
}

func (c *CLI) printStats(s graphStats) {
	var parts []string
	if s.nodes > 0 {
		parts = append(parts, fmt.Sprintf("%d nodes", s.nodes))
	}
	if s.edges > 0 {
		parts = append(parts, fmt.Sprintf("%d edges", s.edges))
	}
	if s.visible > 0 && s.visible < s.nodes {
		parts = append(parts, fmt.Sprintf("%d visible", s.visible))
	}
	if s.depth > 0 {
		parts = append(parts, fmt.Sprintf("depth %d", s.depth))
	}
	layout := "layout computed"
	if s.cached {
		layout = lipgloss.NewStyle().Foreground(colorOK).Render("layout cached")
	}
	parts = append(parts, layout)

	fmt.Fprintln(c.stdout, "  "+StyleDim.Render(strings.Join(parts, " · ")))
}

package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/che-incubator/che-plugins/internal/manager"
	"github.com/che-incubator/che-plugins/internal/registry"
)

// ── styles ───────────────────────────────────────────────────────────────────

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("8"))
	nameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	focusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	installStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle    = dimStyle
)

const (
	msgInvalidRegistry = "Your registry is invalid"
	msgNoPlugins       = "No plugins currently available"
	msgRestart         = "Restart your workspace to apply changes"
)

// linesPerItem is the height of one rendered plugin.
const linesPerItem = 4

// ── View ─────────────────────────────────────────────────────────────────────

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("  che-plugins"))
	if m.registry.URI != "" {
		b.WriteString("  " + m.registry.Name + dimStyle.Render("  "+m.registry.URI))
	}
	b.WriteString("\n\n")

	if m.backend.NeedsRestart() && !m.restartHidden {
		b.WriteString("  " + noticeStyle.Render("✔ "+msgRestart) + dimStyle.Render("  (x to dismiss)") + "\n\n")
	}

	switch m.mode {
	case modeFilter:
		b.WriteString("  " + sectionStyle.Render("Filter") + "\n")
		b.WriteString("  " + m.input.View() + "\n\n")
	case modeURI:
		label := "Add registry"
		if m.uriAction == actionChangeRegistry {
			label = "Change registry"
		}
		b.WriteString("  " + sectionStyle.Render(label) + "\n")
		b.WriteString("  " + m.input.View() + "\n\n")
	default:
		if m.filter != "" {
			b.WriteString("  " + sectionStyle.Render("Filter") + " " + m.filter + "\n\n")
		}
	}

	if m.mode == modeMenu {
		b.WriteString(m.viewMenu())
	} else {
		b.WriteString(m.viewList())
	}

	if m.errMsg != "" {
		b.WriteString("  " + errorStyle.Render("✖ "+m.errMsg) + "\n\n")
	}

	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m model) viewList() string {
	switch m.status {
	case statusLoading:
		return "  " + m.spinner.View() + " Loading plugins...\n\n"
	case statusFailed:
		s := "  " + errorStyle.Render("✖ "+msgInvalidRegistry) + "\n"
		if m.loadErr != nil {
			s += "  " + dimStyle.Render(m.loadErr.Error()) + "\n"
		}
		return s + "\n"
	}
	if len(m.plugins) == 0 {
		return "  " + dimStyle.Render(msgNoPlugins) + "\n\n"
	}

	first, last := m.window()
	var b strings.Builder
	if first > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↑ %d more", first)) + "\n")
	}
	for i := first; i < last; i++ {
		b.WriteString(m.renderPlugin(i, m.plugins[i]))
	}
	if last < len(m.plugins) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↓ %d more", len(m.plugins)-last)) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// window returns the range of plugins that fit on screen around the cursor.
func (m model) window() (first, last int) {
	visible := 8
	if m.height > 0 {
		visible = max(1, (m.height-10)/linesPerItem)
	}
	if visible >= len(m.plugins) {
		return 0, len(m.plugins)
	}
	first = max(0, m.cursor-visible/2)
	last = first + visible
	if last > len(m.plugins) {
		last = len(m.plugins)
		first = last - visible
	}
	return first, last
}

func (m model) renderPlugin(idx int, p registry.Plugin) string {
	cursor := "  "
	if idx == m.cursor {
		cursor = focusStyle.Render(" ▶")
	}
	head := fmt.Sprintf("%s %s %s", cursor, nameStyle.Render(p.Name), dimStyle.Render(p.Version))
	if label := m.actionLabel(p); label != "" {
		head += "  " + label
	}

	var b strings.Builder
	b.WriteString(head + "\n")
	if p.Description != "" {
		b.WriteString("     " + p.Description + "\n")
	}
	b.WriteString("     " + dimStyle.Render(p.Publisher+" · "+p.Type) + "\n\n")
	return b.String()
}

// actionLabel returns the install action of p, or "" for plugins that
// cannot be changed.
func (m model) actionLabel(p registry.Plugin) string {
	if p.Disabled {
		return ""
	}
	switch m.stateOf(p) {
	case manager.Installed:
		return doneStyle.Render("[Installed]")
	case manager.Installing:
		return m.spinner.View() + dimStyle.Render(" Installing...")
	case manager.Removing:
		return m.spinner.View() + dimStyle.Render(" Removing...")
	}
	return installStyle.Render("[Install]")
}

func (m model) viewMenu() string {
	var b strings.Builder
	group := ""
	for i, item := range menuItems {
		if item.group != group {
			group = item.group
			b.WriteString("  " + sectionStyle.Render("─── "+group+" ───") + "\n")
		}
		cursor := "  "
		if i == m.menuCursor {
			cursor = focusStyle.Render(" ▶")
		}
		label := item.label
		if item.disabled {
			label = dimStyle.Render(label)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", cursor, label))
	}
	b.WriteString("\n")
	return b.String()
}

func (m model) help() string {
	switch m.mode {
	case modeMenu:
		return "  ↑↓ move · enter select · esc back"
	case modeFilter, modeURI:
		return "  enter apply · esc cancel"
	}
	return "  ↑↓ move · enter install/remove · / filter · m menu · r reload · q quit"
}

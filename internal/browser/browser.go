// Package browser implements the interactive Bubble Tea plugin browser.
// It lists the plugins of the current registry with their install state,
// installs or removes the plugin under the cursor, filters the list and
// offers a menu for preset filters and registry changes.
package browser

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/che-incubator/che-plugins/internal/manager"
	"github.com/che-incubator/che-plugins/internal/registry"
)

// Backend is the plugin manager driven by the browser.
type Backend interface {
	GetPlugins(ctx context.Context, filter string) ([]registry.Plugin, error)
	State(p registry.Plugin) manager.State
	Install(ctx context.Context, p registry.Plugin) error
	Remove(ctx context.Context, p registry.Plugin) error
	NeedsRestart() bool
	Registry() (registry.Registry, error)
	AddRegistry(uri string) registry.Registry
	SetRegistry(uri string) (registry.Registry, error)
}

// Options controls browser behaviour.
type Options struct {
	// Filter is the initial filter, e.g. "@installed".
	Filter string
}

// Run shows the browser until the user quits.
func Run(ctx context.Context, b Backend, opts Options) error {
	p := tea.NewProgram(newModel(ctx, b, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// ── model ────────────────────────────────────────────────────────────────────

type status int

const (
	statusLoading status = iota
	statusFailed
	statusReady
)

type mode int

const (
	modeList   mode = iota // browsing plugins
	modeMenu               // context menu open
	modeFilter             // editing the filter
	modeURI                // entering a registry URI
)

type pluginsMsg struct {
	seq     int
	reg     registry.Registry
	plugins []registry.Plugin
	err     error
}

type changedMsg struct {
	key string
	err error
}

type registryMsg struct {
	reg registry.Registry
	err error
}

type model struct {
	ctx     context.Context
	backend Backend

	status   status
	loadErr  error
	plugins  []registry.Plugin
	registry registry.Registry
	filter   string
	seq      int

	mode       mode
	cursor     int
	menuCursor int
	uriAction  action
	input      textinput.Model

	spinner  spinner.Model
	spinning bool
	busy     map[string]manager.State

	errMsg        string
	restartHidden bool
	height        int
}

func newModel(ctx context.Context, b Backend, opts Options) model {
	ti := textinput.New()
	ti.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = focusStyle

	return model{
		ctx:      ctx,
		backend:  b,
		status:   statusLoading,
		filter:   strings.TrimSpace(opts.Filter),
		seq:      1,
		input:    ti,
		spinner:  sp,
		spinning: true,
		busy:     make(map[string]manager.State),
	}
}

// ── tea.Model interface ──────────────────────────────────────────────────────

// Init fetches the first listing; newModel already put the model in the
// loading state.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case pluginsMsg:
		if msg.seq != m.seq {
			return m, nil // superseded by a newer load
		}
		m.registry = msg.reg
		if msg.err != nil {
			m.status = statusFailed
			m.loadErr = msg.err
			m.plugins = nil
		} else {
			m.status = statusReady
			m.loadErr = nil
			m.plugins = msg.plugins
		}
		m.cursor = 0
		return m, nil

	case changedMsg:
		delete(m.busy, msg.key)
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		} else if m.backend.NeedsRestart() {
			m.restartHidden = false
		}
		return m, nil

	case registryMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.registry = msg.reg
		cmd := m.load()
		return m, cmd

	case spinner.TickMsg:
		if m.status != statusLoading && len(m.busy) == 0 {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.mode == modeFilter || m.mode == modeURI {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modeMenu:
		return m.handleMenuKey(msg)
	case modeFilter, modeURI:
		return m.handleInputKey(msg)
	}
	return m.handleListKey(msg)
}

func (m model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.plugins)-1 {
			m.cursor++
		}
	case "enter", " ":
		cmd := m.toggle()
		return m, cmd
	case "/":
		m.mode = modeFilter
		m.input.Placeholder = "@installed @type:che_editor text"
		m.input.SetValue(m.filter)
		m.input.CursorEnd()
		cmd := m.input.Focus()
		return m, cmd
	case "m":
		m.mode = modeMenu
		m.menuCursor = 0
	case "r":
		cmd := m.load()
		return m, cmd
	case "x":
		m.restartHidden = true
	}
	return m, nil
}

func (m model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "m", "q":
		m.mode = modeList
	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case "down", "j":
		if m.menuCursor < len(menuItems)-1 {
			m.menuCursor++
		}
	case "enter", " ":
		return m.selectMenuItem(menuItems[m.menuCursor])
	}
	return m, nil
}

func (m model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		inputMode := m.mode
		m.mode = modeList
		m.input.Blur()
		if inputMode == modeFilter {
			m.filter = value
			cmd := m.load()
			return m, cmd
		}
		if value == "" {
			m.errMsg = "registry URI is required"
			return m, nil
		}
		cmd := m.applyRegistry(m.uriAction, value)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) selectMenuItem(item menuItem) (tea.Model, tea.Cmd) {
	if item.disabled {
		return m, nil
	}
	m.mode = modeList
	switch item.action {
	case actionFilter:
		m.filter = item.filter
		cmd := m.load()
		return m, cmd
	case actionAddRegistry, actionChangeRegistry:
		m.mode = modeURI
		m.uriAction = item.action
		m.input.Placeholder = "https://che-plugin-registry.example.com"
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	}
	return m, nil
}

// ── commands ─────────────────────────────────────────────────────────────────

// load starts listing plugins. Results of earlier loads are dropped.
func (m *model) load() tea.Cmd {
	m.seq++
	m.status = statusLoading
	m.errMsg = ""
	return tea.Batch(m.fetch(), m.spin())
}

func (m model) fetch() tea.Cmd {
	seq, filter, b, ctx := m.seq, m.filter, m.backend, m.ctx
	return func() tea.Msg {
		reg, err := b.Registry()
		if err != nil {
			return pluginsMsg{seq: seq, err: err}
		}
		plugins, err := b.GetPlugins(ctx, filter)
		return pluginsMsg{seq: seq, reg: reg, plugins: plugins, err: err}
	}
}

// toggle installs or removes the plugin under the cursor.
func (m *model) toggle() tea.Cmd {
	if m.status != statusReady || m.cursor >= len(m.plugins) {
		return nil
	}
	p := m.plugins[m.cursor]
	if p.Disabled {
		return nil
	}
	if _, ok := m.busy[p.Key]; ok {
		return nil
	}

	b, ctx := m.backend, m.ctx
	var op func(context.Context, registry.Plugin) error
	switch b.State(p) {
	case manager.NotInstalled:
		m.busy[p.Key] = manager.Installing
		op = b.Install
	case manager.Installed:
		m.busy[p.Key] = manager.Removing
		op = b.Remove
	default:
		return nil
	}
	m.errMsg = ""
	change := func() tea.Msg {
		return changedMsg{key: p.Key, err: op(ctx, p)}
	}
	return tea.Batch(change, m.spin())
}

func (m *model) applyRegistry(a action, uri string) tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		if a == actionAddRegistry {
			return registryMsg{reg: b.AddRegistry(uri)}
		}
		reg, err := b.SetRegistry(uri)
		return registryMsg{reg: reg, err: err}
	}
}

// spin starts the spinner unless it is already running.
func (m *model) spin() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// stateOf returns the displayed state of p.
func (m model) stateOf(p registry.Plugin) manager.State {
	if s, ok := m.busy[p.Key]; ok {
		return s
	}
	return m.backend.State(p)
}

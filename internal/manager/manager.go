// Package manager orchestrates plugin installation and removal for a
// workspace. It lists plugins through a Catalog, keeps the workspace plugin
// list in a Store and tracks the transient state of every plugin change.
package manager

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/che-incubator/che-plugins/internal/logger"
	"github.com/che-incubator/che-plugins/internal/registry"
)

// State is the install state of a plugin in the workspace.
type State string

const (
	NotInstalled State = "not_installed"
	Installed    State = "installed"
	Installing   State = "installing"
	Removing     State = "removing"
)

var (
	// ErrDisabled is returned for plugins that cannot be changed, such as editors.
	ErrDisabled = errors.New("plugin cannot be changed")
	// ErrBusy is returned while another change of the same plugin is running.
	ErrBusy = errors.New("plugin change already in progress")
	// ErrUnknownPlugin is returned by Find when no plugin has the key.
	ErrUnknownPlugin = errors.New("unknown plugin")
)

// Store persists the workspace plugin list and registry setting.
type Store interface {
	Plugins() ([]string, error)
	SetPlugins(keys []string) error
	RegistryURL() (string, error)
	SetRegistryURL(uri string) error
}

// Catalog lists the plugins of a registry. def is the workspace default
// registry, used to derive plugin keys.
type Catalog interface {
	Plugins(ctx context.Context, reg, def registry.Registry) ([]registry.Plugin, error)
}

// Manager installs and removes workspace plugins.
type Manager struct {
	Store   Store
	Catalog Catalog
	Log     *logger.Logger
	OnStep  func(step, total int, label string) // called at each named stage

	mu         sync.Mutex
	writeMu    sync.Mutex // held from reading the plugin list until it is saved
	def        registry.Source
	current    *registry.Registry // nil means the default registry
	added      []registry.Registry
	states     map[string]State
	installed  map[string]bool
	needsReset bool
}

// New returns a manager. override, if non-empty, is a registry URI used
// instead of the workspace default for listing.
func New(store Store, catalog Catalog, log *logger.Logger, override string) *Manager {
	if log == nil {
		log = logger.NewDiscard()
	}
	m := &Manager{
		Store:     store,
		Catalog:   catalog,
		Log:       log,
		def:       registry.Unresolved(),
		states:    make(map[string]State),
		installed: make(map[string]bool),
	}
	if override != "" {
		reg := registry.Resolve(override)
		m.current = &reg
	}
	return m
}

// DefaultRegistry returns the registry named by the workspace setting,
// resolving it on first use.
func (m *Manager) DefaultRegistry() (registry.Registry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.defaultLocked()
}

func (m *Manager) defaultLocked() (registry.Registry, error) {
	if reg, ok := m.def.Registry(); ok {
		return reg, nil
	}
	setting, err := m.Store.RegistryURL()
	if err != nil {
		return registry.Registry{}, fmt.Errorf("read registry setting: %w", err)
	}
	reg := registry.Resolve(setting)
	m.def = registry.Resolved(reg)
	m.Log.Debugf("default registry %s (%s)", reg.URI, reg.Name)
	return reg, nil
}

// Registry returns the registry plugins are listed from.
func (m *Manager) Registry() (registry.Registry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return *m.current, nil
	}
	return m.defaultLocked()
}

// Registries returns the default registry followed by the added ones.
func (m *Manager) Registries() ([]registry.Registry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	def, err := m.defaultLocked()
	if err != nil {
		return nil, err
	}
	return append([]registry.Registry{def}, m.added...), nil
}

// AddRegistry makes uri available for this session and lists from it.
// The workspace setting is not changed.
func (m *Manager) AddRegistry(uri string) registry.Registry {
	reg := registry.Registry{Name: uri, URI: uri}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.added, reg) {
		m.added = append(m.added, reg)
	}
	m.current = &reg
	m.Log.Infof("added registry %s", uri)
	return reg
}

// SetRegistry stores uri as the workspace registry setting and lists from it.
func (m *Manager) SetRegistry(uri string) (registry.Registry, error) {
	if err := m.Store.SetRegistryURL(uri); err != nil {
		return registry.Registry{}, fmt.Errorf("save registry setting: %w", err)
	}
	reg := registry.Resolve(uri)
	m.mu.Lock()
	m.def = registry.Resolved(reg)
	m.current = nil
	m.mu.Unlock()
	m.Log.Infof("registry set to %s", reg.URI)
	return reg, nil
}

// GetPlugins lists the current registry and applies filter.
func (m *Manager) GetPlugins(ctx context.Context, filter string) ([]registry.Plugin, error) {
	def, err := m.DefaultRegistry()
	if err != nil {
		return nil, err
	}
	reg, err := m.Registry()
	if err != nil {
		return nil, err
	}
	if _, err := m.refresh(); err != nil {
		return nil, err
	}

	plugins, err := m.Catalog.Plugins(ctx, reg, def)
	if err != nil {
		return nil, fmt.Errorf("list plugins from %s: %w", reg.URI, err)
	}
	return registry.ParseQuery(filter).Apply(plugins, m.IsInstalled), nil
}

// Find returns the plugins of the current registry with the given keys, in
// the order of keys. The registry is listed once.
func (m *Manager) Find(ctx context.Context, keys ...string) ([]registry.Plugin, error) {
	plugins, err := m.GetPlugins(ctx, "")
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]registry.Plugin, len(plugins))
	for _, p := range plugins {
		byKey[p.Key] = p
	}
	found := make([]registry.Plugin, 0, len(keys))
	for _, k := range keys {
		p, ok := byKey[k]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownPlugin, k)
		}
		found = append(found, p)
	}
	return found, nil
}

// InstalledKeys returns the workspace plugin list.
func (m *Manager) InstalledKeys() ([]string, error) {
	return m.refresh()
}

// IsInstalled reports whether p is in the workspace plugin list as of the
// last listing or change.
func (m *Manager) IsInstalled(p registry.Plugin) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.installed[p.Key]
}

// State returns the state of p, including changes in progress.
func (m *Manager) State(p registry.Plugin) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[p.Key]; ok {
		return s
	}
	if m.installed[p.Key] {
		return Installed
	}
	return NotInstalled
}

// NeedsRestart reports whether a change was made that the running workspace
// has not picked up yet.
func (m *Manager) NeedsRestart() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.needsReset
}

// Install adds p to the workspace plugin list.
func (m *Manager) Install(ctx context.Context, p registry.Plugin) error {
	return m.change(ctx, p, Installing, Installed, func(st []string) []string {
		if slices.Contains(st, p.Key) {
			return st
		}
		return append(st, p.Key)
	})
}

// Remove deletes p from the workspace plugin list.
func (m *Manager) Remove(ctx context.Context, p registry.Plugin) error {
	return m.change(ctx, p, Removing, NotInstalled, func(st []string) []string {
		return slices.DeleteFunc(st, func(k string) bool { return k == p.Key })
	})
}

// ── helpers ──────────────────────────────────────────────────────────────────

// change moves p through the transient state to final, reverting on failure.
func (m *Manager) change(ctx context.Context, p registry.Plugin, transient, final State, edit func([]string) []string) error {
	if p.Disabled {
		return fmt.Errorf("%s: %w", p.Key, ErrDisabled)
	}

	m.mu.Lock()
	if s, ok := m.states[p.Key]; ok {
		m.mu.Unlock()
		return fmt.Errorf("%s is %s: %w", p.Key, s, ErrBusy)
	}
	m.states[p.Key] = transient
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.states, p.Key)
		m.mu.Unlock()
	}()

	verb := "Installing"
	if transient == Removing {
		verb = "Removing"
	}

	m.step(1, 2, fmt.Sprintf("%s %s", verb, p.Key))

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	keys, err := m.Store.Plugins()
	if err != nil {
		return fmt.Errorf("read workspace plugins: %w", err)
	}
	updated := edit(slices.Clone(keys))
	if slices.Equal(keys, updated) {
		m.Log.Debugf("%s: workspace already %s", p.Key, final)
		m.setInstalled(p.Key, final == Installed, false)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.step(2, 2, "Saving workspace plugins")
	if err := m.Store.SetPlugins(updated); err != nil {
		m.Log.Errorf("%s %s failed: %v", verb, p.Key, err)
		return fmt.Errorf("save workspace plugins: %w", err)
	}
	m.setInstalled(p.Key, final == Installed, true)
	m.Log.Infof("%s is now %s", p.Key, final)
	return nil
}

func (m *Manager) setInstalled(key string, installed, changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if installed {
		m.installed[key] = true
	} else {
		delete(m.installed, key)
	}
	if changed {
		m.needsReset = true
	}
}

// refresh reloads the installed set from the store and returns the keys.
func (m *Manager) refresh() ([]string, error) {
	keys, err := m.Store.Plugins()
	if err != nil {
		return nil, fmt.Errorf("read workspace plugins: %w", err)
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	m.mu.Lock()
	m.installed = set
	m.mu.Unlock()
	return keys, nil
}

func (m *Manager) step(n, total int, label string) {
	m.Log.Debugf("[%d/%d] %s", n, total, label)
	if m.OnStep != nil {
		m.OnStep(n, total, label)
	}
}

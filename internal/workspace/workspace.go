// Package workspace manages the workspace state file written to
// <workspace>/.che/workspace.json: the list of plugins the workspace runs
// and the plugin registry it is configured with. The schema is versioned to
// support forward-compatible migrations.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/afero"
)

const (
	stateVersion = 1
	stateDir     = ".che"
	stateFile    = "workspace.json"
)

// ErrNotFound is returned by Read when the workspace has no state file.
var ErrNotFound = errors.New("workspace state not found")

// State is the persistent state written to <workspace>/.che/workspace.json.
type State struct {
	Version     int       `json:"version"`
	Plugins     []string  `json:"plugins"`
	RegistryURL string    `json:"pluginRegistryUrl,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// New returns an empty state ready to be written.
func New() *State {
	return &State{Version: stateVersion, Plugins: []string{}}
}

// Has reports whether key is in the plugin list.
func (s *State) Has(key string) bool {
	return slices.Contains(s.Plugins, key)
}

// Add appends key to the plugin list. It reports whether the list changed.
func (s *State) Add(key string) bool {
	if key == "" || s.Has(key) {
		return false
	}
	s.Plugins = append(s.Plugins, key)
	return true
}

// Remove deletes every occurrence of key. It reports whether the list changed.
func (s *State) Remove(key string) bool {
	n := len(s.Plugins)
	s.Plugins = slices.DeleteFunc(s.Plugins, func(k string) bool { return k == key })
	return len(s.Plugins) != n
}

// Path returns the path to the state file for the given workspace directory.
func Path(dir string) string {
	return filepath.Join(dir, stateDir, stateFile)
}

// Write persists st to <dir>/.che/workspace.json and stamps UpdatedAt.
func Write(fsys afero.Fs, dir string, st *State) error {
	if err := fsys.MkdirAll(filepath.Join(dir, stateDir), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	st.Version = stateVersion
	st.UpdatedAt = time.Now().UTC()
	if st.Plugins == nil {
		st.Plugins = []string{}
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal workspace state: %w", err)
	}

	if err := afero.WriteFile(fsys, Path(dir), data, 0o644); err != nil {
		return fmt.Errorf("write workspace state: %w", err)
	}
	return nil
}

// Read loads the state of dir. A missing file yields an error wrapping ErrNotFound.
func Read(fsys afero.Fs, dir string) (*State, error) {
	path := Path(dir)
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read workspace state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse workspace state: %w", err)
	}
	if st.Plugins == nil {
		st.Plugins = []string{}
	}
	return &st, nil
}

// Open is Read, except that a missing state file yields a fresh state.
func Open(fsys afero.Fs, dir string) (*State, error) {
	st, err := Read(fsys, dir)
	if errors.Is(err, ErrNotFound) {
		return New(), nil
	}
	return st, err
}

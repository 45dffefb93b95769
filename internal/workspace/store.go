package workspace

import (
	"slices"
	"sync"

	"github.com/spf13/afero"
)

// Store reads and writes one workspace's state file. Every call re-reads the
// file so that changes made by other processes are picked up.
type Store struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

// NewStore returns a store for the workspace at dir.
func NewStore(fsys afero.Fs, dir string) *Store {
	return &Store{fs: fsys, dir: dir}
}

// Dir returns the workspace directory.
func (s *Store) Dir() string { return s.dir }

// Plugins returns the workspace plugin keys.
func (s *Store) Plugins() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := Open(s.fs, s.dir)
	if err != nil {
		return nil, err
	}
	return slices.Clone(st.Plugins), nil
}

// SetPlugins replaces the workspace plugin list.
func (s *Store) SetPlugins(keys []string) error {
	return s.update(func(st *State) {
		st.Plugins = nil
		for _, k := range keys {
			st.Add(k)
		}
	})
}

// RegistryURL returns the configured plugin registry, or "".
func (s *Store) RegistryURL() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := Open(s.fs, s.dir)
	if err != nil {
		return "", err
	}
	return st.RegistryURL, nil
}

// SetRegistryURL stores the plugin registry setting.
func (s *Store) SetRegistryURL(uri string) error {
	return s.update(func(st *State) { st.RegistryURL = uri })
}

func (s *Store) update(fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := Open(s.fs, s.dir)
	if err != nil {
		return err
	}
	fn(st)
	return Write(s.fs, s.dir, st)
}

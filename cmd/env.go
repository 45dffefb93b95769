package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	clog "github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/che-incubator/che-plugins/internal/config"
	"github.com/che-incubator/che-plugins/internal/logger"
	"github.com/che-incubator/che-plugins/internal/manager"
	"github.com/che-incubator/che-plugins/internal/registry"
	"github.com/che-incubator/che-plugins/internal/workspace"
)

// env is the wiring shared by the plugin commands.
type env struct {
	cfg   config.Config
	dir   string
	fs    afero.Fs
	log   *logger.Logger
	store *workspace.Store
	mgr   *manager.Manager
}

// envOptions tweaks setup for commands with special console needs.
type envOptions struct {
	// quiet keeps the console free of log output, e.g. under a full-screen TUI.
	quiet bool
}

// setup loads settings, opens the workspace log and builds the manager.
// Callers must Close the returned env.
func setup(cmd *cobra.Command, opts envOptions) (*env, error) {
	cfg, err := config.Load(cmd, flagConfig)
	if err != nil {
		return nil, err
	}
	dir, err := resolveWorkspaceDir(cfg)
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	if opts.quiet {
		level = clog.FatalLevel
	}
	log, err := logger.New(dir, level)
	if err != nil {
		return nil, err
	}

	fsys := afero.NewOsFs()
	store := workspace.NewStore(fsys, dir)

	client := registry.NewClient(cfg.Timeout, log)
	client.LocalIndex = cfg.LocalIndex
	client.Concurrency = cfg.Concurrency

	mgr := manager.New(store, client, log, cfg.Registry)
	log.Debugf("workspace %s, log %s", dir, log.LogPath())

	return &env{cfg: cfg, dir: dir, fs: fsys, log: log, store: store, mgr: mgr}, nil
}

func (e *env) Close() error { return e.log.Close() }

// resolveWorkspaceDir returns the absolute workspace directory from settings
// or the current directory.
func resolveWorkspaceDir(cfg config.Config) (string, error) {
	dir := cfg.Workspace
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = cwd
	}
	abs, err := filepath.Abs(expandHome(dir))
	if err != nil {
		return "", fmt.Errorf("resolve workspace %s: %w", dir, err)
	}
	return abs, nil
}

// workspaceDir resolves the workspace directory without opening a log.
func workspaceDir(cmd *cobra.Command) (string, error) {
	cfg, err := config.Load(cmd, flagConfig)
	if err != nil {
		return "", err
	}
	return resolveWorkspaceDir(cfg)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// confirm asks a yes/no question on out and reads the answer from in.
// An empty answer means yes.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	r := bufio.NewReader(in)
	line, _ := r.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "" || line == "y" || line == "yes"
}

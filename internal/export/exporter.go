package export

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/che-incubator/che-plugins/internal/jsonc"
	"github.com/che-incubator/che-plugins/internal/logger"
)

// ConfigDir is the workspace directory holding IDE configuration files.
const ConfigDir = ".theia"

// Target describes one exportable configuration file.
type Target struct {
	Type string // "launch" or "tasks"
	File string // file name inside ConfigDir
	Key  string // top-level array holding the entries
}

var (
	// Launch is the debug launch configuration file.
	Launch = Target{Type: "launch", File: "launch.json", Key: "configurations"}
	// Tasks is the task configuration file.
	Tasks = Target{Type: "tasks", File: "tasks.json", Key: "tasks"}
)

// TargetByType returns the target registered under typ.
func TargetByType(typ string) (Target, error) {
	switch typ {
	case Launch.Type:
		return Launch, nil
	case Tasks.Type:
		return Tasks, nil
	}
	return Target{}, fmt.Errorf("unknown export type %q (want %q or %q)", typ, Launch.Type, Tasks.Type)
}

// Exporter merges configuration content into a workspace file.
type Exporter struct {
	Fs     afero.Fs
	Target Target
	Format jsonc.FormattingOptions
	Log    *logger.Logger
}

// New returns an exporter for target using the default formatting options.
func New(fsys afero.Fs, target Target, log *logger.Logger) *Exporter {
	if log == nil {
		log = logger.NewDiscard()
	}
	return &Exporter{Fs: fsys, Target: target, Format: jsonc.DefaultFormatting, Log: log}
}

// ConfigPath returns the path of the target file under workspaceRoot.
func (e *Exporter) ConfigPath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, ConfigDir, e.Target.File)
}

// Export merges content into the target file under workspaceRoot. The file is
// written at most once, and only after the new text is fully computed.
// Read and write failures are returned; unusable content is not an error.
func (e *Exporter) Export(content, workspaceRoot string) (Outcome, error) {
	path := e.ConfigPath(workspaceRoot)

	existing, err := e.read(path)
	if err != nil {
		return Skipped, err
	}

	out, outcome, err := Merge(existing, content, e.Target.Key, e.Format)
	if err != nil {
		return outcome, err
	}
	if !outcome.Written() {
		e.Log.Debugf("export %s: %s, nothing written to %s", e.Target.Type, outcome, path)
		return outcome, nil
	}

	if err := e.write(path, out); err != nil {
		return outcome, err
	}
	e.Log.Infof("export %s: %s %s", e.Target.Type, outcome, path)
	return outcome, nil
}

// read returns the file content, or "" if the file or its directory is absent.
func (e *Exporter) read(path string) (string, error) {
	data, err := afero.ReadFile(e.Fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func (e *Exporter) write(path, content string) error {
	if err := e.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := afero.WriteFile(e.Fs, path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

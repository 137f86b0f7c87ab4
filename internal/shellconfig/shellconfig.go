// Package shellconfig exposes the read-only settings the out-of-scope
// shell-extension collaborator consumes: ExePath, Diagnostics, LogPath
// (spec.md §6, "Persisted configuration"). The engine never reads these
// itself; this package only gives the shell extension a stable place to
// look them up. On Windows that would be the registry key named in the
// spec; everywhere else (and in this repo, which targets the pack's
// non-Windows build) it is a small JSON file, following the same
// Load(path)->struct shape internal/config uses for the teacher's YAML
// loader.
package shellconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Settings mirrors the three keys spec.md §6 names under
// SOFTWARE\DiskBench\ShellExtension.
type Settings struct {
	ExePath     string `json:"exe_path,omitempty"`
	Diagnostics int    `json:"diagnostics,omitempty"`
	LogPath     string `json:"log_path,omitempty"`
}

// DefaultPath returns the non-Windows stand-in for the registry key: a
// JSON file under the user's local app-data-equivalent directory, named
// after the default log path spec.md gives
// (<local-app-data>/DiskBench/ShellExtension.log) but for settings.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("shellconfig: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "DiskBench", "ShellExtension.json"), nil
}

// Load reads the settings file. A missing file is not an error: it
// returns the zero Settings, since the engine treats every key as
// optional.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("shellconfig: read %s: %w", path, err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("shellconfig: parse %s: %w", path, err)
	}
	return s, nil
}

// DefaultLogPath returns LogPath if set, else the spec's documented
// default (<local-app-data>/DiskBench/ShellExtension.log).
func (s Settings) DefaultLogPath() (string, error) {
	if s.LogPath != "" {
		return s.LogPath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("shellconfig: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "DiskBench", "ShellExtension.log"), nil
}

// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// LocalConfigDir is the per-project config directory.
const LocalConfigDir = ".runmanager"

// RedirectFile, when present in a collection root, names the directory the
// datasets actually live in. Relative targets resolve against the root.
const RedirectFile = ".redirect"

// ResolveCollectionRoot resolves the configured collection path.
//
// Input normalization:
//   - "" -> "."
//   - "~/data" -> "$HOME/data"
//   - "data" with baseDir "/etc/rm" -> "/etc/rm/data"
//   - "/abs/data" -> "/abs/data"
//
// The result is absolute; a path left relative resolves against the working
// directory. A redirect file inside the resolved directory is followed once.
func ResolveCollectionRoot(path, baseDir string) string {
	path = ExpandHome(path)
	if path == "" {
		path = "."
	}
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return followRedirect(filepath.Clean(path))
}

// ProjectDir returns the directory relative collection paths resolve against
// for the config file at configPath:
//   - "<dir>/.runmanager/config.yaml" -> "<dir>"
//   - the user config or no config -> the working directory
//   - any other file -> its directory
func ProjectDir(configPath string) string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	if configPath == "" {
		return cwd
	}
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return cwd
	}
	dir := filepath.Dir(abs)
	switch {
	case filepath.Base(dir) == LocalConfigDir:
		return filepath.Dir(dir)
	case dir == UserConfigDir():
		return cwd
	default:
		return dir
	}
}

// UserConfigDir returns ~/.config/runmanager, or "" when the home directory is unknown.
func UserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "runmanager")
}

// ExpandHome replaces a leading "~" with the user's home directory.
// The path is returned unchanged when the home directory is unknown.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// followRedirect checks for a redirect file and follows it if present.
func followRedirect(root string) string {
	content, err := os.ReadFile(filepath.Join(root, RedirectFile)) //nolint:gosec // redirect path is within the collection root
	if err != nil {
		return root
	}

	target := strings.TrimSpace(string(content))
	if target == "" {
		return root
	}
	target = ExpandHome(target)
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(root, target))
}

// DefaultIndexPath returns ~/.cache/runmanager/index.db, falling back to a
// path relative to the working directory when no cache dir is known.
func DefaultIndexPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".runmanager", "index.db")
	}
	return filepath.Join(dir, "runmanager", "index.db")
}

// DefaultTracePath returns the default JSONL trace file next to configDir.
func DefaultTracePath(configDir string) string {
	if configDir == "" {
		configDir = LocalConfigDir
	}
	return filepath.Join(configDir, "traces", "traces.jsonl")
}

// Package paths provides path resolution utilities.
package paths

import (
	"os"
	"path/filepath"
)

// LocalConfigDir is the project-local configuration directory, probed
// before the per-user one so a repository can carry its own settings.
const LocalConfigDir = ".nacre"

// UserConfigDir resolves the per-user nacre configuration directory.
//
// Resolution order:
//   - ~/.config/nacre when the home directory is known
//   - ".nacre" (relative to the working directory) as a last resort
func UserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return LocalConfigDir
	}
	return filepath.Join(home, ".config", "nacre")
}

// UserConfigFile returns the main config file path inside UserConfigDir.
func UserConfigFile() string {
	return filepath.Join(UserConfigDir(), "config.yaml")
}

// LocalConfigFile returns the project-local config file path.
func LocalConfigFile() string {
	return filepath.Join(LocalConfigDir, "config.yaml")
}

// TracesFile returns the default path for file-exported traces.
func TracesFile() string {
	return filepath.Join(UserConfigDir(), "traces", "traces.jsonl")
}

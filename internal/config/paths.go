// ABOUTME: Standard filesystem paths for seekdeck configuration and logs
// ABOUTME: Resolves ~/.seekdeck/ for global and .seekdeck/ for project-local paths

package config

import (
	"os"
	"path/filepath"
	"strings"
)

const dirName = ".seekdeck"

// GlobalDir returns the user-global config directory (~/.seekdeck/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", dirName)
	}
	return filepath.Join(home, dirName)
}

// ProjectDir returns the project-local config directory.
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, dirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), "config.yaml")
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), "config.yaml")
}

// LogFile returns the default log file path.
func LogFile() string {
	return filepath.Join(GlobalDir(), "seekdeck.log")
}

// ExpandHome replaces a leading "~/" with the home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// EnsureDir creates a directory and all parents if they don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o700)
}

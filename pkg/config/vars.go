package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "gomi"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/gomi by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/gomi by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/gomi/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// DataDir returns the directory path for the database and the raw item
// catalogue. Returns ~/.local/share/gomi/data by default.
func DataDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "data")
}

// ExportDir returns the directory path for CSV exports.
// Returns ~/.local/share/gomi/export by default.
func ExportDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "export")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/gomi/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// ScheduleFilePath returns the full path to the default schedule document.
// Returns ~/.config/gomi/schedule.yaml by default.
func ScheduleFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "schedule.yaml")
}

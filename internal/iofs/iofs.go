// Package iofs bootstraps gomi directories and files on the local file
// system.
package iofs

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
)

//go:embed config.yaml
var ConfigYAML string

//go:embed schedule.yaml
var ScheduleYAML string

// EnsureDirs creates config, cache, log, data and export directories.
func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.CacheDir(homeDir),
		config.LogDir(homeDir),
		config.DataDir(homeDir),
		config.ExportDir(homeDir),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

// EnsureConfigFile copies the embedded config.yaml to the config
// directory unless it is already there.
func EnsureConfigFile(homeDir string) error {
	return ensureFile(config.ConfigFilePath(homeDir), ConfigYAML)
}

// EnsureScheduleFile copies the embedded example schedule document to
// the config directory unless it is already there.
func EnsureScheduleFile(homeDir string) error {
	return ensureFile(config.ScheduleFilePath(homeDir), ScheduleYAML)
}

func ensureFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := touchDir(filepath.Dir(path)); err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return CopyFileError(path, err)
	}

	return nil
}

// WriteFileAtomic writes data to a temporary file next to path and
// renames it into place, so readers never see a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := touchDir(dir); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return WriteFileError(path, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err = f.Write(data); err != nil {
		f.Close()
		return WriteFileError(path, err)
	}
	if err = f.Close(); err != nil {
		return WriteFileError(path, err)
	}
	if err = os.Chmod(tmp, 0644); err != nil {
		return WriteFileError(path, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return WriteFileError(path, err)
	}
	return nil
}

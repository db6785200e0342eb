package iofs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/HashiReo/nonoichi-waste-app/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEnsureDirs(t *testing.T) {
	home := t.TempDir()

	// second call must be a no-op
	require.NoError(t, EnsureDirs(home))
	require.NoError(t, EnsureDirs(home))

	dirs := []string{
		config.ConfigDir(home),
		config.CacheDir(home),
		config.LogDir(home),
		config.DataDir(home),
		config.ExportDir(home),
	}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
		assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
	}
}

func TestTouchDirOnFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	err := touchDir(path)
	assert.Error(t, err)
}

func TestEnsureConfigFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, EnsureConfigFile(home))

	path := config.ConfigFilePath(home)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ConfigYAML, string(data))

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, []string{"自己処理", "未分類"}, cfg.Seed.ExcludedCategories)
	assert.Equal(t, 12, cfg.Seed.IDLength)
	assert.Equal(t, "Asia/Tokyo", cfg.Query.TimeZone)
}

func TestEnsureFileKeepsUserEdits(t *testing.T) {
	home := t.TempDir()
	path := config.ConfigFilePath(home)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644))

	require.NoError(t, EnsureConfigFile(home))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "log:\n  level: debug\n", string(data))
}

func TestEnsureScheduleFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, EnsureScheduleFile(home))

	data, err := os.ReadFile(config.ScheduleFilePath(home))
	require.NoError(t, err)

	doc, err := schedule.Parse(data)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Categories)
	assert.NotEmpty(t, doc.Links)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "items.csv")

	require.NoError(t, WriteFileAtomic(path, []byte("one")))
	require.NoError(t, WriteFileAtomic(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left")
}

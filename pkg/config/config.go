// Package config provides configuration management for gomi.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Database: driver, path, host, port, user, password, database, ssl_mode
//   - Seed: schedule_path, catalogue_path, excluded_categories, id_length
//   - Fetch: base_url, max_page, retries, pages_per_second, timeout_sec
//   - Query: suggestions, time_zone
//   - Serve: port
//   - Export: dir
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - Seed.WithoutCatalogue, Seed.WithExport (per-command)
//   - Fetch.OutputPath (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use GOMI_ prefix with underscores for nesting:
//
//	GOMI_DATABASE_DRIVER=postgres
//	GOMI_DATABASE_HOST=localhost
//	GOMI_SEED_SCHEDULE_PATH=/data/schedule_r7.yaml
//	GOMI_LOG_LEVEL=info
//	GOMI_JOBS_NUMBER=4
package config

import (
	"path/filepath"
	"runtime"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the complete gomi configuration.
type Config struct {
	// Database contains storage connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Seed contains settings of the seeding run.
	Seed SeedConfig `mapstructure:"seed" yaml:"seed"`

	// Fetch contains settings of the item catalogue fetcher.
	Fetch FetchConfig `mapstructure:"fetch" yaml:"fetch"`

	// Query contains settings of item and pickup queries.
	Query QueryConfig `mapstructure:"query" yaml:"query"`

	// Serve contains settings of the HTTP API.
	Serve ServeConfig `mapstructure:"serve" yaml:"serve"`

	// Export contains settings of CSV export.
	Export ExportConfig `mapstructure:"export" yaml:"export"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers of the fetcher.
	// Default value is set according to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, data and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// DatabaseConfig contains storage connection parameters.
type DatabaseConfig struct {
	// Driver is either "sqlite" (default) or "postgres".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Path is the SQLite database file. Empty means the default file
	// inside DataDir.
	Path string `mapstructure:"path" yaml:"path"`

	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the PostgreSQL database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// SeedConfig contains settings of the seeding run.
type SeedConfig struct {
	// SchedulePath is the schedule document. Empty means schedule.yaml
	// in ConfigDir.
	SchedulePath string `mapstructure:"schedule_path" yaml:"schedule_path"`

	// CataloguePath is the raw item catalogue CSV. Empty means items.csv
	// in DataDir.
	CataloguePath string `mapstructure:"catalogue_path" yaml:"catalogue_path"`

	// ExcludedCategories are catalogue category names that carry no
	// collection schedule (self-disposal, uncategorized). Rows with these
	// categories are skipped.
	ExcludedCategories []string `mapstructure:"excluded_categories" yaml:"excluded_categories"`

	// IDLength is the number of hex characters of derived identifiers.
	IDLength int `mapstructure:"id_length" yaml:"id_length"`

	// WithoutCatalogue skips the catalogue merge step.
	WithoutCatalogue bool `mapstructure:"-" yaml:"-"`

	// WithExport dumps every table to CSV after seeding.
	WithExport bool `mapstructure:"-" yaml:"-"`
}

// FetchConfig contains settings of the item catalogue fetcher.
type FetchConfig struct {
	// BaseURL is the root of the municipal item dictionary.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// MaxPage caps the number of listing pages to fetch.
	MaxPage int `mapstructure:"max_page" yaml:"max_page"`

	// Retries is the number of attempts per page.
	Retries int `mapstructure:"retries" yaml:"retries"`

	// PagesPerSecond limits request rate across all workers.
	PagesPerSecond int `mapstructure:"pages_per_second" yaml:"pages_per_second"`

	// TimeoutSec is the timeout of one HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// OutputPath is the CSV file to write. Empty means Seed.CataloguePath.
	OutputPath string `mapstructure:"-" yaml:"-"`
}

// QueryConfig contains settings of item and pickup queries.
type QueryConfig struct {
	// Suggestions is the default number of prefix suggestions.
	Suggestions int `mapstructure:"suggestions" yaml:"suggestions"`

	// TimeZone is the IANA zone used for "now" in pickup queries.
	TimeZone string `mapstructure:"time_zone" yaml:"time_zone"`
}

// ServeConfig contains settings of the HTTP API.
type ServeConfig struct {
	// Port is the TCP port to listen on.
	Port int `mapstructure:"port" yaml:"port"`
}

// ExportConfig contains settings of CSV export.
type ExportConfig struct {
	// Dir is the export directory. Empty means ExportDir.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), stderr or stdout
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Database: DatabaseConfig{
			Driver:   DriverSQLite,
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "gomi",
			SSLMode:  "disable",
		},
		Seed: SeedConfig{
			ExcludedCategories: []string{"自己処理", "未分類"},
			IDLength:           12,
		},
		Fetch: FetchConfig{
			BaseURL:        "https://gb.hn-kouiki.jp/nonoichi",
			MaxPage:        90,
			Retries:        3,
			PagesPerSecond: 2,
			TimeoutSec:     20,
		},
		Query: QueryConfig{
			Suggestions: 10,
			TimeZone:    "Asia/Tokyo",
		},
		Serve: ServeConfig{
			Port: 8080,
		},
		Log: LogConfig{
			Format: "json",
			Level:  "info",
			// for now file is rewritten every time the log starts
			Destination: "file",
		},
		JobsNumber: min(runtime.NumCPU(), 4),
	}

	return res
}

// SQLitePath returns the SQLite database file.
func (c *Config) SQLitePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(DataDir(c.HomeDir), "gomi.db")
}

// SchedulePath returns the schedule document location.
func (c *Config) SchedulePath() string {
	if c.Seed.SchedulePath != "" {
		return c.Seed.SchedulePath
	}
	return ScheduleFilePath(c.HomeDir)
}

// CataloguePath returns the raw item catalogue location.
func (c *Config) CataloguePath() string {
	if c.Seed.CataloguePath != "" {
		return c.Seed.CataloguePath
	}
	return filepath.Join(DataDir(c.HomeDir), "items.csv")
}

// FetchOutputPath returns where the fetcher writes the catalogue.
func (c *Config) FetchOutputPath() string {
	if c.Fetch.OutputPath != "" {
		return c.Fetch.OutputPath
	}
	return c.CataloguePath()
}

// ExportPath returns the CSV export directory.
func (c *Config) ExportPath() string {
	if c.Export.Dir != "" {
		return c.Export.Dir
	}
	return ExportDir(c.HomeDir)
}

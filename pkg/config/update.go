package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir, Seed.WithoutCatalogue,
// Seed.WithExport, Fetch.OutputPath).
func (c *Config) ToOptions() []Option {
	var res []Option
	str := func(s string, fn func(string) Option) {
		if s != "" {
			res = append(res, fn(s))
		}
	}
	num := func(i int, fn func(int) Option) {
		if i > 0 {
			res = append(res, fn(i))
		}
	}

	str(c.Database.Driver, OptDatabaseDriver)
	str(c.Database.Path, OptDatabasePath)
	str(c.Database.Host, OptDatabaseHost)
	num(c.Database.Port, OptDatabasePort)
	str(c.Database.User, OptDatabaseUser)
	str(c.Database.Password, OptDatabasePassword)
	str(c.Database.Database, OptDatabaseDatabase)
	str(c.Database.SSLMode, OptDatabaseSSLMode)

	str(c.Seed.SchedulePath, OptSeedSchedulePath)
	str(c.Seed.CataloguePath, OptSeedCataloguePath)
	if c.Seed.ExcludedCategories != nil {
		res = append(res, OptSeedExcludedCategories(c.Seed.ExcludedCategories))
	}
	num(c.Seed.IDLength, OptSeedIDLength)

	str(c.Fetch.BaseURL, OptFetchBaseURL)
	num(c.Fetch.MaxPage, OptFetchMaxPage)
	num(c.Fetch.Retries, OptFetchRetries)
	num(c.Fetch.PagesPerSecond, OptFetchPagesPerSecond)
	num(c.Fetch.TimeoutSec, OptFetchTimeoutSec)

	num(c.Query.Suggestions, OptQuerySuggestions)
	str(c.Query.TimeZone, OptQueryTimeZone)

	num(c.Serve.Port, OptServePort)
	str(c.Export.Dir, OptExportDir)

	str(c.Log.Format, OptLogFormat)
	str(c.Log.Level, OptLogLevel)
	str(c.Log.Destination, OptLogDestination)

	num(c.JobsNumber, OptJobsNumber)
	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Database.Driver": {DriverSQLite: s, DriverPostgres: s},
		"Database.SSLMode": {"disable": s, "require": s,
			"verify-ca": s, "verify-full": s},
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	if _, ok := data[name][val]; ok {
		return true
	}

	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		lines = append(lines, fmt.Sprintf("  * %s", v))
	}
	gn.Warn(
		"<em>%s</em> does not support '%s' as a value. "+
			"Valid values are: \n%s\nIgnoring...",
		name, val, strings.Join(lines, "\n"),
	)
	return false
}

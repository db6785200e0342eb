package config

import (
	"net/url"
	"strings"

	"github.com/gnames/gn"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptDatabaseDriver sets the storage engine.
// Valid values: "sqlite", "postgres".
func OptDatabaseDriver(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Database.Driver", s) {
			c.Database.Driver = s
		}
	}
}

// OptDatabasePath sets the SQLite database file.
func OptDatabasePath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Path", s) {
			c.Database.Path = s
		}
	}
}

// OptDatabaseHost sets the PostgreSQL server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the PostgreSQL server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the PostgreSQL database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the PostgreSQL database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the PostgreSQL database name to connect to.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptSeedSchedulePath sets the schedule document location.
func OptSeedSchedulePath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Schedule Path", s) {
			c.Seed.SchedulePath = s
		}
	}
}

// OptSeedCataloguePath sets the raw item catalogue location.
func OptSeedCataloguePath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Catalogue Path", s) {
			c.Seed.CataloguePath = s
		}
	}
}

// OptSeedExcludedCategories replaces the list of catalogue categories
// to skip. Blank entries are dropped, an empty list is allowed.
func OptSeedExcludedCategories(ss []string) Option {
	res := make([]string, 0, len(ss))
	for _, v := range ss {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}
	return func(c *Config) {
		c.Seed.ExcludedCategories = res
	}
}

// OptSeedIDLength sets the number of hex characters of derived ids.
// Valid range is 8..40.
func OptSeedIDLength(i int) Option {
	return func(c *Config) {
		if i < 8 || i > 40 {
			gn.Warn("<em>Seed ID Length</em> must be between 8 and 40, ignoring %d", i)
			return
		}
		c.Seed.IDLength = i
	}
}

// OptSeedWithoutCatalogue skips the catalogue merge step.
// Runtime-only field - not in ToOptions().
func OptSeedWithoutCatalogue(b bool) Option {
	return func(c *Config) {
		c.Seed.WithoutCatalogue = b
	}
}

// OptSeedWithExport exports all tables after seeding.
// Runtime-only field - not in ToOptions().
func OptSeedWithExport(b bool) Option {
	return func(c *Config) {
		c.Seed.WithExport = b
	}
}

// OptFetchBaseURL sets the root URL of the item dictionary.
func OptFetchBaseURL(s string) Option {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	return func(c *Config) {
		if !isValidString("Fetch Base URL", s) {
			return
		}
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			gn.Warn("<em>Fetch Base URL</em> must be an http(s) URL, ignoring '%s'", s)
			return
		}
		c.Fetch.BaseURL = s
	}
}

// OptFetchMaxPage sets the number of listing pages to fetch.
func OptFetchMaxPage(i int) Option {
	return func(c *Config) {
		if isValidInt("Fetch Max Page", i) {
			c.Fetch.MaxPage = i
		}
	}
}

// OptFetchRetries sets the number of attempts per page.
func OptFetchRetries(i int) Option {
	return func(c *Config) {
		if isValidInt("Fetch Retries", i) {
			c.Fetch.Retries = i
		}
	}
}

// OptFetchPagesPerSecond sets the request rate limit.
func OptFetchPagesPerSecond(i int) Option {
	return func(c *Config) {
		if isValidInt("Fetch Pages Per Second", i) {
			c.Fetch.PagesPerSecond = i
		}
	}
}

// OptFetchTimeoutSec sets the timeout of one HTTP request in seconds.
func OptFetchTimeoutSec(i int) Option {
	return func(c *Config) {
		if isValidInt("Fetch Timeout", i) {
			c.Fetch.TimeoutSec = i
		}
	}
}

// OptFetchOutputPath sets the CSV file the fetcher writes.
// Runtime-only field - not in ToOptions().
func OptFetchOutputPath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Fetch Output Path", s) {
			c.Fetch.OutputPath = s
		}
	}
}

// OptQuerySuggestions sets the default number of item suggestions.
func OptQuerySuggestions(i int) Option {
	return func(c *Config) {
		if isValidInt("Query Suggestions", i) {
			c.Query.Suggestions = i
		}
	}
}

// OptQueryTimeZone sets the IANA time zone of pickup queries.
// The zone name is resolved by the caller.
func OptQueryTimeZone(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Query Time Zone", s) {
			c.Query.TimeZone = s
		}
	}
}

// OptServePort sets the HTTP API port.
func OptServePort(i int) Option {
	return func(c *Config) {
		if i > 65535 {
			gn.Warn("<em>Serve Port</em> must not exceed 65535, ignoring %d", i)
			return
		}
		if isValidInt("Serve Port", i) {
			c.Serve.Port = i
		}
	}
}

// OptExportDir sets the CSV export directory.
func OptExportDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Export Dir", s) {
			c.Export.Dir = s
		}
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text".
func OptLogFormat(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.ToLower(strings.TrimSpace(s))
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent fetch workers.
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config, data, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}

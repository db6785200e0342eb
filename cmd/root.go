/*
Copyright © 2026 HashiReo

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/HashiReo/nonoichi-waste-app/internal/iofs"
	"github.com/HashiReo/nonoichi-waste-app/internal/iologger"
	gomi "github.com/HashiReo/nonoichi-waste-app/pkg"
	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// HomeEnv overrides the user home directory, mostly for tests and
// containers.
const HomeEnv = "GOMI_HOME"

var (
	homeDir   string
	opts      []config.Option
	cfg       *config.Config
	logCloser io.Closer
)

// getRootCmd returns the root command with all subcommands attached.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", gomi.Version, gomi.Build),
		Use:     "gomi",
		Short:   "gomi answers when and how to put out waste in Nonoichi",
		Long: `gomi turns the municipal waste-collection schedule into a database
of collection events and item categories.

Typical workflow:
  gomi create      create the database schema
  gomi fetch       download the item dictionary into items.csv
  gomi seed        load schedule.yaml and items.csv into the database
  gomi item TEXT   find the category of an item
  gomi next        show the next pickup and whether waste can go out now
  gomi serve       serve the same lookups over HTTP

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (GOMI_*)
  3. Config file (~/.config/gomi/config.yaml)
  4. Built-in defaults

Environment variables use underscores for nested fields, for example
GOMI_DATABASE_DRIVER, GOMI_QUERY_TIME_ZONE, GOMI_LOG_LEVEL.`,
		PersistentPreRunE:  bootstrap,
		PersistentPostRunE: shutdown,
		SilenceErrors:      true,
		SilenceUsage:       true,
	}

	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.Flags().BoolP("version", "V", false, "version for gomi")

	rootCmd.AddCommand(
		getCreateCmd(),
		getMigrateCmd(),
		getSeedCmd(),
		getFetchCmd(),
		getItemCmd(),
		getNextCmd(),
		getExportCmd(),
		getServeCmd(),
	)
	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir = os.Getenv(HomeEnv)
	if homeDir == "" {
		if homeDir, err = os.UserHomeDir(); err != nil {
			gn.PrintErrorMessage(err)
			return err
		}
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Defaults until the config file is read.
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if logCloser, err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	if err = iofs.EnsureScheduleFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var cfgViper *config.Config
	if cfgViper, err = initConfig(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	cfg.Update(opts)
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	if err = reconfigureLogging(cfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir),
		"command", cmd.Name(),
	)
	return nil
}

// reconfigureLogging reinitializes the logger with the loaded
// configuration. The log file keeps the lines written during bootstrap.
func reconfigureLogging(cfg *config.Config) error {
	if logCloser != nil {
		logCloser.Close()
	}
	var err error
	logCloser, err = iologger.Init(config.LogDir(cfg.HomeDir), cfg.Log, true)
	return err
}

func shutdown(_ *cobra.Command, _ []string) error {
	if logCloser != nil {
		return logCloser.Close()
	}
	return nil
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig(home string) (*config.Config, error) {
	var err error
	cfgPath := config.ConfigFilePath(home)
	v := viper.New()
	v.SetConfigFile(cfgPath)

	initEnvVars(v)

	if err = v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	var res config.Config
	if err = v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(cfgPath, err)
	}

	return &res, nil
}

func initEnvVars(v *viper.Viper) {
	// Variables are bound one by one so the allowed set is explicit. They
	// match the persistent fields of config.ToOptions().
	v.SetEnvPrefix("GOMI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Database configuration
	v.BindEnv("database.driver", "GOMI_DATABASE_DRIVER")
	v.BindEnv("database.path", "GOMI_DATABASE_PATH")
	v.BindEnv("database.host", "GOMI_DATABASE_HOST")
	v.BindEnv("database.port", "GOMI_DATABASE_PORT")
	v.BindEnv("database.user", "GOMI_DATABASE_USER")
	v.BindEnv("database.password", "GOMI_DATABASE_PASSWORD")
	v.BindEnv("database.database", "GOMI_DATABASE_DATABASE")
	v.BindEnv("database.ssl_mode", "GOMI_DATABASE_SSL_MODE")

	// Seed configuration
	v.BindEnv("seed.schedule_path", "GOMI_SEED_SCHEDULE_PATH")
	v.BindEnv("seed.catalogue_path", "GOMI_SEED_CATALOGUE_PATH")
	v.BindEnv("seed.excluded_categories", "GOMI_SEED_EXCLUDED_CATEGORIES")
	v.BindEnv("seed.id_length", "GOMI_SEED_ID_LENGTH")

	// Fetch configuration
	v.BindEnv("fetch.base_url", "GOMI_FETCH_BASE_URL")
	v.BindEnv("fetch.max_page", "GOMI_FETCH_MAX_PAGE")
	v.BindEnv("fetch.retries", "GOMI_FETCH_RETRIES")
	v.BindEnv("fetch.pages_per_second", "GOMI_FETCH_PAGES_PER_SECOND")
	v.BindEnv("fetch.timeout_sec", "GOMI_FETCH_TIMEOUT_SEC")

	// Query, serve and export configuration
	v.BindEnv("query.suggestions", "GOMI_QUERY_SUGGESTIONS")
	v.BindEnv("query.time_zone", "GOMI_QUERY_TIME_ZONE")
	v.BindEnv("serve.port", "GOMI_SERVE_PORT")
	v.BindEnv("export.dir", "GOMI_EXPORT_DIR")

	// Log configuration
	v.BindEnv("log.level", "GOMI_LOG_LEVEL")
	v.BindEnv("log.format", "GOMI_LOG_FORMAT")
	v.BindEnv("log.destination", "GOMI_LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", "GOMI_JOBS_NUMBER")

	v.AutomaticEnv()
}

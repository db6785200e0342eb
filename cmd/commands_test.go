package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flagSpec struct {
	name, shorthand, def string
}

// TestCommands verifies names, descriptions and flags of
// every subcommand.
func TestCommands(t *testing.T) {
	tests := []struct {
		msg   string
		get   func() *cobra.Command
		use   string
		long  string
		flags []flagSpec
	}{
		{"create", getCreateCmd, "create", "--force",
			[]flagSpec{{"force", "f", "false"}}},
		{"migrate", getMigrateCmd, "migrate", "non-destructive", nil},
		{"seed", getSeedCmd, "seed", "items.csv", []flagSpec{
			{"schedule", "s", ""},
			{"catalogue", "c", ""},
			{"no-catalogue", "", "false"},
			{"export", "e", "false"},
			{"json", "j", "false"},
		}},
		{"fetch", getFetchCmd, "fetch", "failed_pages.txt", []flagSpec{
			{"output", "o", ""},
			{"max-page", "m", "0"},
			{"json", "j", "false"},
		}},
		{"item", getItemCmd, "item TEXT", "alias", []flagSpec{
			{"suggestions", "k", "0"},
			{"json", "j", "false"},
		}},
		{"next", getNextCmd, "next", "query.time_zone", []flagSpec{
			{"area", "a", ""},
			{"item", "i", ""},
			{"category", "c", ""},
			{"time", "t", ""},
			{"json", "j", "false"},
		}},
		{"export", getExportCmd, "export", "iCalendar", []flagSpec{
			{"dir", "d", ""},
			{"area", "a", ""},
			{"alarm", "", "0"},
		}},
		{"serve", getServeCmd, "serve", "/api/next", []flagSpec{
			{"port", "p", "0"},
		}},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			cmd := v.get()
			require.NotNil(t, cmd)
			assert.Equal(t, v.use, cmd.Use)
			assert.NotEmpty(t, cmd.Short)
			assert.Contains(t, cmd.Long, v.long)
			assert.Contains(t, cmd.Long, "Examples:")
			assert.NotNil(t, cmd.RunE)

			for _, f := range v.flags {
				flag := cmd.Flags().Lookup(f.name)
				require.NotNil(t, flag, "--%s flag should exist", f.name)
				assert.Equal(t, f.shorthand, flag.Shorthand, f.name)
				assert.Equal(t, f.def, flag.DefValue, f.name)
				assert.NotEmpty(t, flag.Usage, f.name)
			}
		})
	}
}

// TestCommands_IndependentInstances verifies each call
// returns a new instance.
func TestCommands_IndependentInstances(t *testing.T) {
	cmd1 := getSeedCmd()
	cmd2 := getSeedCmd()
	assert.NotSame(t, cmd1, cmd2)

	require.NoError(t, cmd1.Flags().Set("schedule", "/tmp/a.yaml"))
	assert.Equal(t, "", cmd2.Flags().Lookup("schedule").Value.String())
}

// TestCommands_HelpText verifies help renders without
// touching the configuration.
func TestCommands_HelpText(t *testing.T) {
	for _, name := range []string{"item", "next", "export", "serve"} {
		t.Run(name, func(t *testing.T) {
			root := getRootCmd()
			buf := new(bytes.Buffer)
			root.SetOut(buf)
			root.SetArgs([]string{name, "--help"})

			require.NoError(t, root.Execute())
			assert.Contains(t, buf.String(), "Usage:")
			assert.Contains(t, buf.String(), "gomi "+name)
		})
	}
}

package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HashiReo/nonoichi-waste-app/internal/iotesting"
	"github.com/HashiReo/nonoichi-waste-app/pkg/ident"
	"github.com/HashiReo/nonoichi-waste-app/pkg/lifecycle"
	"github.com/gnames/gnfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type home struct {
	dir, schedule, catalogue string
}

func newHome(t *testing.T) home {
	h := home{dir: t.TempDir()}
	t.Setenv(HomeEnv, h.dir)
	t.Setenv("GOMI_LOG_DESTINATION", "file")
	h.schedule = iotesting.WriteFile(t, h.dir, "in/schedule.yaml",
		iotesting.ScheduleYAML)
	h.catalogue = iotesting.WriteFile(t, h.dir, "in/items.csv",
		iotesting.CatalogueCSV)
	return h
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := getRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func seedHome(t *testing.T) home {
	t.Helper()

	h := newHome(t)
	_, err := run(t, "create", "-f")
	require.NoError(t, err)
	_, err = run(t, "seed", "-s", h.schedule, "-c", h.catalogue)
	require.NoError(t, err)
	return h
}

func TestWorkflowBootstrap(t *testing.T) {
	h := newHome(t)

	_, err := run(t, "create", "-f")
	require.NoError(t, err)
	_, err = run(t, "migrate")
	require.NoError(t, err)

	for _, path := range []string{
		filepath.Join(h.dir, ".config", "gomi", "config.yaml"),
		filepath.Join(h.dir, ".config", "gomi", "schedule.yaml"),
		filepath.Join(h.dir, ".local", "share", "gomi", "logs", "gomi.log"),
	} {
		assert.FileExists(t, path)
	}
}

func TestWorkflowSeedJSON(t *testing.T) {
	h := newHome(t)
	_, err := run(t, "create", "-f")
	require.NoError(t, err)

	out, err := run(t, "seed", "-s", h.schedule, "-c", h.catalogue, "-j")
	require.NoError(t, err)

	var report lifecycle.Report
	enc := gnfmt.GNjson{}
	require.NoError(t, enc.Decode([]byte(out), &report))
	assert.Equal(t, 26, report.EventsInserted)
	assert.Equal(t, 6, report.ItemsMerged)
	assert.Equal(t, 3, report.Counts[lifecycle.TableAreas])
	assert.False(t, report.CatalogueSkipped)
}

func TestWorkflowSeedWithoutSchema(t *testing.T) {
	h := newHome(t)

	out, err := run(t, "seed", "-s", h.schedule, "-j")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestWorkflowItem(t *testing.T) {
	seedHome(t)

	tests := []struct {
		msg, text string
		want      []string
	}{
		{"name", "ペットボトル", []string{"ペットボトル: ペットボトル [pet]"}},
		{"alias", "ペット", []string{"[pet]", "found by alias"}},
		{"full-width", "ＰＥＴボトル", []string{"[pet]"}},
		{"suggestions", "ペットボ", []string{"Did you mean:", "ペットボトルキャップ"}},
		{"nothing", "冷蔵庫", []string{"No item named"}},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			out, err := run(t, "item", v.text)
			require.NoError(t, err)
			for _, w := range v.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestWorkflowNext(t *testing.T) {
	seedHome(t)

	tests := []struct {
		msg  string
		args []string
		want []string
	}{
		{"category before deadline",
			[]string{"-a", "本町1丁目", "-c", "pet", "-t", "2025-04-09T06:50"},
			[]string{"2025-04-09 until 07:00", "can still be put out"}},
		{"category after deadline",
			[]string{"-a", "本町1丁目", "-c", "pet", "-t", "2025-04-09 07:30"},
			[]string{"2025-04-09", "deadline has passed"}},
		{"item",
			[]string{"-a", "本町2丁目", "-i", "生ごみ", "-t", "2025-04-04"},
			[]string{"生ごみ: 燃やすごみ", "2025-04-07 until 08:00", "祝日も収集します"}},
		{"unknown item",
			[]string{"-a", "本町2丁目", "-i", "冷蔵庫", "-t", "2025-04-04"},
			[]string{"No item named"}},
		{"no upcoming",
			[]string{"-a", "末松1丁目", "-c", "large", "-t", "2025-04-17"},
			[]string{"No upcoming pickup"}},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			out, err := run(t, append([]string{"next"}, v.args...)...)
			require.NoError(t, err)
			for _, w := range v.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestWorkflowNextErrors(t *testing.T) {
	seedHome(t)

	tests := []struct {
		msg  string
		args []string
	}{
		{"no area", []string{"-c", "pet"}},
		{"no category", []string{"-a", "本町1丁目"}},
		{"both", []string{"-a", "本町1丁目", "-c", "pet", "-i", "ペット"}},
		{"bad time", []string{"-a", "本町1丁目", "-c", "pet", "-t", "tomorrow"}},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			_, err := run(t, append([]string{"next"}, v.args...)...)
			assert.Error(t, err)
		})
	}
}

func TestWorkflowExport(t *testing.T) {
	h := seedHome(t)
	dir := filepath.Join(h.dir, "out")

	out, err := run(t, "export", "-d", dir)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "categories.csv"))
	assert.FileExists(t, filepath.Join(dir, "collection_events.csv"))

	out, err = run(t, "export", "-d", dir, "-a", "本町2丁目", "--alarm", "30")
	require.NoError(t, err)
	ics := filepath.Join(dir, ident.AreaID("本町2丁目", 12)+".ics")
	assert.Contains(t, out, ics)

	data, err := os.ReadFile(ics)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "BEGIN:VCALENDAR"))
	assert.Contains(t, string(data), "VALARM")
}

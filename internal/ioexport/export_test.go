package ioexport_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/HashiReo/nonoichi-waste-app/internal/iodb"
	"github.com/HashiReo/nonoichi-waste-app/internal/ioexport"
	"github.com/HashiReo/nonoichi-waste-app/internal/ioseed"
	"github.com/HashiReo/nonoichi-waste-app/internal/iotesting"
	"github.com/HashiReo/nonoichi-waste-app/pkg/config"
	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/HashiReo/nonoichi-waste-app/pkg/schema"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	cfg := iotesting.Config(t)
	cfg.Update([]config.Option{
		config.OptSeedSchedulePath(
			iotesting.WriteFile(t, cfg.HomeDir, "schedule.yaml", iotesting.ScheduleYAML)),
		config.OptSeedWithoutCatalogue(true),
	})
	op := iotesting.SQLite(t, cfg)

	clock := func() time.Time { return time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC) }
	_, err := ioseed.New(cfg, op, ioseed.OptClock(clock)).Seed(context.Background())
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "nested", "export")
	exp := ioexport.New(op)
	files, err := exp.Export(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, files, len(schema.AllTables()))

	path := filepath.Join(dir, "categories.csv")
	assert.Contains(t, files, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\uFEFF")))

	recs, err := csv.NewReader(strings.NewReader(
		strings.TrimPrefix(string(data), "\uFEFF"))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, schema.Columns(schema.Category{}), recs[0])
	require.Len(t, recs, 4)
	// rows are sorted by all columns
	assert.Equal(t, "burnable", recs[1][0])
	assert.Equal(t, "large", recs[2][0])
	assert.Equal(t, "pet", recs[3][0])

	events, err := os.ReadFile(filepath.Join(dir, "collection_events.csv"))
	require.NoError(t, err)
	assert.Equal(t, 27, bytes.Count(events, []byte("\n")))

	// a second export of the same store gives identical files
	_, err = exp.Export(context.Background(), dir)
	require.NoError(t, err)
	again, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, again)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(schema.AllTables()))
}

func TestExportNotConnected(t *testing.T) {
	_, err := ioexport.New(iodb.New()).Export(context.Background(), t.TempDir())
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.DBNotConnectedError, gnErr.Code)
}

package ioschedule_test

import (
	"testing"

	"github.com/HashiReo/nonoichi-waste-app/internal/ioschedule"
	"github.com/HashiReo/nonoichi-waste-app/internal/iotesting"
	"github.com/HashiReo/nonoichi-waste-app/pkg/errcode"
	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := iotesting.WriteFile(t, t.TempDir(), "schedule.yaml",
		iotesting.ScheduleYAML)

	doc, err := ioschedule.New(path).Load()
	require.NoError(t, err)
	assert.Len(t, doc.Categories, 3)
	assert.Len(t, doc.AreaGroups, 2)
	assert.Len(t, doc.ScheduleGroups, 4)
	assert.Equal(t, "2025-04-01", doc.EffectiveStart.String())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := iotesting.WriteFile(t, dir, "bad.yaml", "categories: [\n")

	tests := []struct {
		msg  string
		path string
		code gn.ErrorCode
	}{
		{"missing", dir + "/none.yaml", errcode.MissingInputError},
		{"broken yaml", bad, errcode.ScheduleParseError},
		{"directory", dir, errcode.ReadFileError},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			_, err := ioschedule.New(v.path).Load()
			require.Error(t, err)
			gnErr, ok := err.(*gn.Error)
			require.True(t, ok)
			assert.Equal(t, v.code, gnErr.Code)
		})
	}
}

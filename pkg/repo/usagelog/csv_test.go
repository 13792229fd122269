package usagelog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/repo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(material string, passage, tube int) *model.UsageEntry {
	return &model.UsageEntry{
		Timestamp:    model.DateTime{Time: time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)},
		User:         "alice",
		Date:         model.DateOf(time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)),
		Sheet:        material,
		Material:     material,
		Lot:          "7",
		Passage:      model.IntOf(passage),
		UsedTubeNo:   model.IntOf(tube),
		UsedQuantity: 1,
		Type:         model.UsageTypeCell,
	}
}

func TestCSVMissingFileIsEmpty(t *testing.T) {
	store := NewCSV(filepath.Join(t.TempDir(), "usage_log.csv"))

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCSVAppendUpdateDelete(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "usage_log.csv")
	store := NewCSV(path)

	first := newEntry("HeLa", 2, 1)
	require.NoError(t, store.Append(ctx, first))
	assert.Equal(t, int64(1), first.Index)

	second := newEntry("HeLa", 2, 2)
	require.NoError(t, store.Append(ctx, second))
	assert.Equal(t, int64(2), second.Index)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), strings.Join(model.UsageHeader, ",")))

	got, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UsedTubeNo.V)
	assert.Equal(t, "2024-03-01", got.Date.String())

	got.User = "bob"
	require.NoError(t, store.Update(ctx, got))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[1].User)

	require.NoError(t, store.Delete(ctx, 1))
	entries, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].Index)
	assert.Equal(t, "bob", entries[0].User)

	err = store.Delete(ctx, 5)
	assert.ErrorIs(t, err, code.UsageNotFound)
}

func TestCSVUpgradesLegacyLog(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "usage_log.csv")
	legacy := "Timestamp,User,Date,Sheet,Material,Lot,Passage,Used Quantity,Experiment,Type\n" +
		"2023-05-01 09:00:00.000000,carol,2023-05-01,A549,A549,3,4.0,1,,Cell\n"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	entries, err := NewCSV(path).List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].Passage.V)
	assert.False(t, entries[0].UsedTubeNo.Valid)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Used Tube No")
}

package usagelog

import (
	"context"
	"testing"

	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/middleware/db"
	"github.com/scienceol/cellbank/pkg/repo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDatastore(t *testing.T) *db.Datastore {
	t.Helper()
	g, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := g.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, g.AutoMigrate(&model.UsageRecord{}))
	return db.NewDatastore(g)
}

func TestDBAppendUpdateDelete(t *testing.T) {
	ctx := context.Background()
	store := NewDB(newTestDatastore(t))

	e := newEntry("HeLa", 3, 2)
	require.NoError(t, store.Append(ctx, e))
	require.NotZero(t, e.Index)

	got, err := store.Get(ctx, e.Index)
	require.NoError(t, err)
	assert.Equal(t, "HeLa", got.Material)
	assert.Equal(t, 3, got.Passage.V)
	assert.Equal(t, 2, got.UsedTubeNo.V)
	assert.Equal(t, "2024-03-01", got.Date.String())

	got.UsedTubeNo = model.IntOf(4)
	got.User = "dave"
	require.NoError(t, store.Update(ctx, got))

	entries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].UsedTubeNo.V)
	assert.Equal(t, "dave", entries[0].User)

	require.NoError(t, store.Delete(ctx, e.Index))
	_, err = store.Get(ctx, e.Index)
	assert.ErrorIs(t, err, code.UsageNotFound)
	assert.ErrorIs(t, store.Delete(ctx, e.Index), code.UsageNotFound)
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	ds := newTestDatastore(t)

	n, err := Import(ctx, ds, []*model.UsageEntry{newEntry("A549", 1, 1), newEntry("A549", 1, 2)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := NewDB(ds).List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[1].UsedTubeNo.V)
}

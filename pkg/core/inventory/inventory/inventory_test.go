package inventory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/core/inventory"
	"github.com/scienceol/cellbank/pkg/core/notify"
	"github.com/scienceol/cellbank/pkg/core/notify/events"
	"github.com/scienceol/cellbank/pkg/repo"
	"github.com/scienceol/cellbank/pkg/repo/model"
	"github.com/scienceol/cellbank/pkg/repo/usagelog"
	"github.com/scienceol/cellbank/pkg/repo/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

type fixture struct {
	svc      inventory.Service
	wb       repo.WorkbookRepo
	log      repo.UsageLogRepo
	received chan string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	wb := workbook.New(filepath.Join(dir, "cells.xlsx"))

	hela := model.NewSheet("HeLa", model.TubeColumns)
	hela.Append(map[string]string{
		model.ColTray: "T1", model.ColLot: "7", model.ColCellName: "HeLa", model.ColTubeCount: "3",
		model.ColDate: "2024-01-05", model.ColPassage: "2", model.ColRemainVials: "3", model.ColSource: "ATCC",
	}, nil)
	hela.Append(map[string]string{
		model.ColTray: "T1", model.ColLot: "8", model.ColCellName: "HeLa", model.ColTubeCount: "2",
		model.ColDate: "2024-03-01", model.ColPassage: "5", model.ColRemainVials: "1", model.ColSource: "ATCC",
	}, nil)
	hela.Append(map[string]string{model.ColCellName: "ghost"}, nil)
	hela.Append(map[string]string{
		model.ColTray: "T2", model.ColLot: "9", model.ColCellName: "HeLa S3",
		model.ColPassage: "1", model.ColSource: "lab",
	}, nil)
	require.NoError(t, wb.SaveSheet(ctx, hela))

	a549 := model.NewSheet("A549", model.TubeColumns)
	a549.Append(map[string]string{
		model.ColTray: "T3", model.ColLot: "1", model.ColCellName: "A549",
		model.ColPassage: "4", model.ColRemainVials: "2", model.ColSource: "ATCC",
	}, nil)
	require.NoError(t, wb.SaveSheet(ctx, a549))

	log := usagelog.NewCSV(filepath.Join(dir, "usage_log.csv"))
	center := events.NewLocal()
	received := make(chan string, 16)
	require.NoError(t, center.Registry(ctx, notify.InventoryModify, func(_ context.Context, msg string) error {
		received <- msg
		return nil
	}))

	svc := New(Deps{
		Workbook:         wb,
		UsageLog:         log,
		MsgCenter:        center,
		RecommendWeights: inventory.Weights{Passage: -1, Vials: 1},
		StoredWeights:    inventory.Weights{Passage: -1, Vials: 1, Freshness: 1},
		Now:              func() time.Time { return fixedNow },
	})
	return &fixture{svc: svc, wb: wb, log: log, received: received}
}

func TestSheetsAndCells(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sheets, err := f.svc.Sheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"HeLa", "A549"}, sheets)

	names, err := f.svc.CellNames(ctx, "HeLa")
	require.NoError(t, err)
	assert.Equal(t, []string{"HeLa", "HeLa S3"}, names)

	tubes, err := f.svc.Tubes(ctx, &inventory.TubesReq{Sheet: "HeLa", CellName: "HeLa"})
	require.NoError(t, err)
	require.Len(t, tubes, 2)
	assert.Equal(t, 1, tubes[0].Row)

	all, err := f.svc.Tubes(ctx, &inventory.TubesReq{Sheet: "HeLa"})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// blank tray row is skipped but positions are kept
	assert.Equal(t, 4, all[2].Row)

	_, err = f.svc.CellNames(ctx, "Nope")
	assert.ErrorIs(t, err, code.SheetNotFound)
}

func TestCountByCellLine(t *testing.T) {
	f := newFixture(t)
	stats, err := f.svc.CountByCellLine(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, []inventory.CellCount{
		{CellName: "HeLa", Count: 2},
		{CellName: "A549", Count: 1},
		{CellName: "HeLa S3", Count: 1},
	}, stats.ByCell)
	assert.Equal(t, []inventory.SourceCount{
		{CellName: "A549", Source: "ATCC", Count: 1},
		{CellName: "HeLa", Source: "ATCC", Count: 2},
		{CellName: "HeLa S3", Source: "lab", Count: 1},
	}, stats.BySource)
}

func TestRecommend(t *testing.T) {
	f := newFixture(t)
	recs, err := f.svc.Recommend(context.Background(), &inventory.RecommendReq{Sheet: "HeLa", CellName: "HeLa"})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	// -2+3 beats -5+1
	assert.Equal(t, "7", recs[0].Lot)
	assert.Equal(t, 1.0, recs[0].RecommendScore)
	assert.Equal(t, -4.0, recs[1].RecommendScore)

	recs, err = f.svc.Recommend(context.Background(), &inventory.RecommendReq{Sheet: "HeLa", CellName: "HeLa", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRegisterUsageFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ref := inventory.TubeRef{Sheet: "HeLa", Row: 1}

	avail, err := f.svc.AvailableTubes(ctx, &ref)
	require.NoError(t, err)
	assert.Equal(t, []string{"P2_1", "P2_2", "P2_3"}, avail.Tubes)

	resp, err := f.svc.RegisterUsage(ctx, &inventory.RegisterUsageReq{
		TubeRef: ref, Tube: "P2_2", User: "alice", Experiment: "western",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Entry.Index)
	assert.Equal(t, model.IntOf(2), resp.RemainVials)
	assert.Equal(t, model.StatusInuse, resp.Status)
	assert.Equal(t, "2025-06-01", resp.Entry.Date.String())
	assert.Equal(t, model.UsageTypeCell, resp.Entry.Type)

	select {
	case msg := <-f.received:
		assert.Contains(t, msg, "inventory-modify")
	case <-time.After(time.Second):
		t.Fatal("no inventory event")
	}

	avail, err = f.svc.AvailableTubes(ctx, &ref)
	require.NoError(t, err)
	assert.Equal(t, []string{"P2_1", "P2_3"}, avail.Tubes)

	_, err = f.svc.RegisterUsage(ctx, &inventory.RegisterUsageReq{TubeRef: ref, TubeNo: 2})
	assert.ErrorIs(t, err, code.TubeAlreadyUsed)
	_, err = f.svc.RegisterUsage(ctx, &inventory.RegisterUsageReq{TubeRef: ref, TubeNo: 9})
	assert.ErrorIs(t, err, code.TubeOutOfRange)
	_, err = f.svc.RegisterUsage(ctx, &inventory.RegisterUsageReq{TubeRef: ref, Tube: "P3_1"})
	assert.ErrorIs(t, err, code.ParamErr)
	_, err = f.svc.RegisterUsage(ctx, &inventory.RegisterUsageReq{TubeRef: inventory.TubeRef{Sheet: "HeLa", Row: 3}, TubeNo: 1})
	assert.ErrorIs(t, err, code.RowNotFound)

	s, err := f.wb.LoadSheet(ctx, "HeLa")
	require.NoError(t, err)
	assert.Equal(t, "2", s.Get(0, model.ColRemainVials))
	assert.Equal(t, "Inuse", s.Get(0, model.ColStatus))
}

func TestRegisterUsageDepletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ref := inventory.TubeRef{Sheet: "HeLa", Row: 2}

	resp, err := f.svc.RegisterUsage(ctx, &inventory.RegisterUsageReq{TubeRef: ref, TubeNo: 1, User: "bob"})
	require.NoError(t, err)
	assert.Equal(t, model.IntOf(0), resp.RemainVials)
	assert.Equal(t, model.StatusDepleted, resp.Status)

	_, err = f.svc.RegisterUsage(ctx, &inventory.RegisterUsageReq{TubeRef: ref, TubeNo: 2, User: "bob"})
	require.NoError(t, err)

	s, err := f.wb.LoadSheet(ctx, "HeLa")
	require.NoError(t, err)
	// floored at zero
	assert.Equal(t, "0", s.Get(1, model.ColRemainVials))

	_, err = f.svc.AvailableTubes(ctx, &ref)
	assert.ErrorIs(t, err, code.NoTubeAvailable)
}

func TestUpdateAndDeleteUsage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ref := inventory.TubeRef{Sheet: "HeLa", Row: 2}

	_, err := f.svc.RegisterUsage(ctx, &inventory.RegisterUsageReq{TubeRef: ref, TubeNo: 1, User: "bob"})
	require.NoError(t, err)

	user := "carol"
	tube := 2
	updated, err := f.svc.UpdateUsage(ctx, &inventory.UpdateUsageReq{Index: 1, User: &user, UsedTubeNo: &tube})
	require.NoError(t, err)
	assert.Equal(t, "carol", updated.User)
	assert.Equal(t, 2, updated.UsedTubeNo.V)

	// editing does not touch the workbook
	s, err := f.wb.LoadSheet(ctx, "HeLa")
	require.NoError(t, err)
	assert.Equal(t, "0", s.Get(1, model.ColRemainVials))

	bad := 0
	_, err = f.svc.UpdateUsage(ctx, &inventory.UpdateUsageReq{Index: 1, UsedTubeNo: &bad})
	assert.ErrorIs(t, err, code.ParamErr)

	del, err := f.svc.DeleteUsage(ctx, 1)
	require.NoError(t, err)
	assert.True(t, del.Compensated)

	s, err = f.wb.LoadSheet(ctx, "HeLa")
	require.NoError(t, err)
	assert.Equal(t, "1", s.Get(1, model.ColRemainVials))
	assert.Equal(t, "Inuse", s.Get(1, model.ColStatus))

	entries, err := f.log.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = f.svc.DeleteUsage(ctx, 1)
	assert.ErrorIs(t, err, code.UsageNotFound)
}

func TestDeleteUsageWithoutMatchingRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.log.Append(ctx, &model.UsageEntry{
		Sheet: "HeLa", Material: "Gone", Lot: "1", Passage: model.IntOf(1), UsedTubeNo: model.IntOf(1),
	}))

	del, err := f.svc.DeleteUsage(ctx, 1)
	require.NoError(t, err)
	assert.False(t, del.Compensated)
}

func TestListUsageDropsUnknownSheets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.log.Append(ctx, &model.UsageEntry{Sheet: "HeLa", Material: "HeLa"}))
	require.NoError(t, f.log.Append(ctx, &model.UsageEntry{Sheet: "Removed", Material: "X"}))
	require.NoError(t, f.log.Append(ctx, &model.UsageEntry{Sheet: "A549", Material: "A549"}))

	entries, err := f.svc.ListUsage(ctx, &inventory.ListUsageReq{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = f.svc.ListUsage(ctx, &inventory.ListUsageReq{Material: "A549"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(3), entries[0].Index)
}

func TestCreateTube(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	freeze := model.DateOf(fixedNow.AddDate(0, 0, -30))

	tube, err := f.svc.CreateTube(ctx, &inventory.CreateTubeReq{
		CellName: "  MCF7 ", Lot: "3", TubeCount: 4, Passage: 6, RemainVials: 4,
		FreezeDate: &freeze, Source: "ATCC", ParentTube: "P5_1",
	})
	require.NoError(t, err)
	assert.Equal(t, "MCF7", tube.Sheet)
	assert.Equal(t, 1, tube.Row)
	require.NotNil(t, tube.Score)
	// -6 + 4 + 334 days past the one-year mark
	assert.Equal(t, 332.0, *tube.Score)

	s, err := f.wb.LoadSheet(ctx, "MCF7")
	require.NoError(t, err)
	assert.Equal(t, "P5_1", s.Get(0, model.ColParentTube))
	assert.Equal(t, "", s.Get(0, model.ColStatus))

	unknown, err := f.svc.CreateTube(ctx, &inventory.CreateTubeReq{Passage: 1})
	require.NoError(t, err)
	assert.Equal(t, "Unknown", unknown.Sheet)
}

type failSave struct {
	repo.WorkbookRepo
}

func (failSave) SaveSheet(context.Context, *model.Sheet) error {
	return code.WorkbookWriteErr.WithErr(errors.New("disk full"))
}

func TestRegisterUsageRollsBackOnSaveError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := New(Deps{
		Workbook:         failSave{f.wb},
		UsageLog:         f.log,
		RecommendWeights: inventory.Weights{Passage: -1, Vials: 1},
		Now:              func() time.Time { return fixedNow },
	})

	_, err := svc.RegisterUsage(ctx, &inventory.RegisterUsageReq{
		TubeRef: inventory.TubeRef{Sheet: "HeLa", Row: 1},
		TubeNo:  1,
		User:    "amy",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, code.WorkbookWriteErr)

	entries, err := f.log.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	tubes, err := f.svc.Tubes(ctx, &inventory.TubesReq{Sheet: "HeLa", CellName: "HeLa"})
	require.NoError(t, err)
	assert.Equal(t, 3, tubes[0].RemainVials.V)

	avail, err := f.svc.AvailableTubes(ctx, &inventory.TubeRef{Sheet: "HeLa", Row: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"P2_1", "P2_2", "P2_3"}, avail.Tubes)
}

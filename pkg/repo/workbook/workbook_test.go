package workbook

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/repo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeFixture(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "HeLa"))
	rows := [][]any{
		{"Tray", "Box", "Lot", "Cell name", "N. of tube", "Date", "Passage", "Remain vials", "Status", "Parent Tube", "Notes"},
		{"T1", "B1", 7, "HeLa", 3, "2024-01-05", 2, 3, "", "", "keep"},
		{"T1", "B2", 8, "HeLa", 2, "2024-02-10", 3, 1, "Inuse", "P2_1", ""},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("HeLa", cell, &row))
	}
	_, err := f.NewSheet("A549")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("A549", "A1", &[]any{"Cell name", "Passage"}))
	require.NoError(t, f.SaveAs(path))
}

func TestLoadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cells.xlsx")
	writeFixture(t, path)

	wb := New(path)
	require.True(t, wb.Exists())
	sheets, err := wb.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, "HeLa", sheets[0].Name)
	assert.Equal(t, "A549", sheets[1].Name)
	require.Len(t, sheets[0].Rows, 2)

	tube := model.TubeFromRow(sheets[0], 1)
	assert.Equal(t, "8", tube.Lot)
	assert.Equal(t, 3, tube.Passage.V)
	assert.Equal(t, model.StatusInuse, tube.Status)
	assert.Equal(t, "P2_1", tube.ParentTube)
	assert.Empty(t, sheets[1].Rows)
}

func TestMissingWorkbook(t *testing.T) {
	wb := New(filepath.Join(t.TempDir(), "none.xlsx"))
	assert.False(t, wb.Exists())
	_, err := wb.LoadAll(context.Background())
	assert.ErrorIs(t, err, code.WorkbookNotFound)
}

func TestSaveSheetKeepsUnknownColumns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cells.xlsx")
	writeFixture(t, path)
	wb := New(path)

	s, err := wb.LoadSheet(ctx, "HeLa")
	require.NoError(t, err)
	s.Set(0, model.ColRemainVials, "2")
	s.Set(0, model.ColStatus, string(model.StatusInuse))
	require.NoError(t, wb.SaveSheet(ctx, s))

	again, err := wb.LoadSheet(ctx, "HeLa")
	require.NoError(t, err)
	assert.Equal(t, "2", again.Get(0, model.ColRemainVials))
	assert.Equal(t, "Inuse", again.Get(0, model.ColStatus))
	assert.Equal(t, "keep", again.Get(0, "Notes"))
	assert.Equal(t, "2024-01-05", again.Get(0, model.ColDate))

	_, err = wb.LoadSheet(ctx, "Nope")
	assert.ErrorIs(t, err, code.SheetNotFound)
}

func TestAppendRecordCreatesWorkbookAndSheet(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sub", "new.xlsx")
	wb := New(path)

	row, err := wb.AppendRecord(ctx, "MCF7", map[string]string{
		model.ColCellName: "MCF7",
		model.ColPassage:  "4",
		model.ColLot:      "1",
	}, model.TubeColumns)
	require.NoError(t, err)
	assert.Equal(t, 1, row)

	row, err = wb.AppendRecord(ctx, "MCF7", map[string]string{
		model.ColCellName: "MCF7",
		model.ColPassage:  "5",
	}, model.TubeColumns)
	require.NoError(t, err)
	assert.Equal(t, 2, row)

	sheets, err := wb.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	assert.Equal(t, "MCF7", sheets[0].Name)
	assert.Equal(t, model.TubeColumns, sheets[0].Header)
	assert.Equal(t, "5", sheets[0].Get(1, model.ColPassage))
}

func TestCellValue(t *testing.T) {
	assert.Nil(t, cellValue(model.ColPassage, ""))
	assert.Equal(t, 3, cellValue(model.ColPassage, "3.0"))
	assert.Equal(t, 1.5, cellValue(model.ColScore, "1.5"))
	assert.Equal(t, "abc", cellValue(model.ColPassage, "abc"))
	assert.Equal(t, "2024-01-05", cellValue(model.ColDate, "2024/01/05"))
}

func TestSaveSheetReplacesWorkbookInPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cells.xlsx")
	wb := New(path)
	ctx := context.Background()

	s := model.NewSheet("HeLa", model.TubeColumns)
	s.Append(map[string]string{model.ColCellName: "HeLa", model.ColPassage: "2"}, nil)
	require.NoError(t, wb.SaveSheet(ctx, s))

	s.Set(0, model.ColPassage, "3")
	require.NoError(t, wb.SaveSheet(ctx, s))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cells.xlsx", entries[0].Name())

	got, err := New(path).LoadSheet(ctx, "HeLa")
	require.NoError(t, err)
	assert.Equal(t, "3", got.Get(0, model.ColPassage))
}

func TestTmpExt(t *testing.T) {
	assert.Equal(t, ".xlsx", tmpExt("/data/cells.xlsx"))
	assert.Equal(t, ".xlsm", tmpExt("/data/cells.XLSM"))
	assert.Equal(t, ".xlsx", tmpExt("/data/cells"))
}

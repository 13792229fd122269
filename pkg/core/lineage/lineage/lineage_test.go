package lineage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/core/lineage"
	"github.com/scienceol/cellbank/pkg/repo/model"
	"github.com/scienceol/cellbank/pkg/repo/usagelog"
	"github.com/scienceol/cellbank/pkg/repo/workbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) lineage.Service {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	wb := workbook.New(filepath.Join(dir, "cells.xlsx"))

	s := model.NewSheet("HeLa", model.TubeColumns)
	s.Append(map[string]string{model.ColTray: "T1", model.ColCellName: "HeLa", model.ColSource: "ATCC",
		model.ColPassage: "2", model.ColTubeCount: "2", model.ColDate: "2024-02-01", model.ColParentTube: "P1_1"}, nil)
	s.Append(map[string]string{model.ColTray: "T1", model.ColCellName: "HeLa", model.ColSource: "ATCC",
		model.ColPassage: "1", model.ColTubeCount: "1", model.ColDate: "2024-01-01"}, nil)
	s.Append(map[string]string{model.ColTray: "T1", model.ColCellName: "HeLa", model.ColSource: "lab",
		model.ColTubeCount: "1"}, nil)
	require.NoError(t, wb.SaveSheet(ctx, s))

	log := usagelog.NewCSV(filepath.Join(dir, "usage_log.csv"))
	require.NoError(t, log.Append(ctx, &model.UsageEntry{Sheet: "HeLa", Material: "HeLa",
		Passage: model.IntOf(2), UsedTubeNo: model.IntOf(2), User: "alice"}))
	require.NoError(t, log.Append(ctx, &model.UsageEntry{Sheet: "Other", Material: "HeLa",
		Passage: model.IntOf(2), UsedTubeNo: model.IntOf(1), User: "bob"}))
	require.NoError(t, log.Append(ctx, &model.UsageEntry{Sheet: "ATCC", Material: "HeLa",
		Passage: model.IntOf(1), UsedTubeNo: model.IntOf(1), User: "carol"}))

	return New(wb, log)
}

func TestGroups(t *testing.T) {
	groups, err := newService(t).Groups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"HeLa | ATCC", "HeLa | lab"}, groups)
}

func TestTree(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	resp, err := svc.Tree(ctx, &lineage.TreeReq{Group: "HeLa | ATCC"})
	require.NoError(t, err)
	require.Len(t, resp.Rows, 2)
	// oldest freeze first
	assert.Equal(t, 1, resp.Rows[0].Passage.V)

	require.Len(t, resp.Nodes, 1)
	root := resp.Nodes[0]
	assert.Equal(t, "P1_1", root.Name)
	// an entry whose sheet names the source does not belong to the group
	assert.Equal(t, lineage.ColorStored, root.ItemStyle.Color)
	require.Len(t, root.Children, 2)
	// only the entry logged against this sheet counts
	assert.Equal(t, lineage.ColorStored, root.Children[0].ItemStyle.Color)
	assert.Equal(t, lineage.ColorUsed, root.Children[1].ItemStyle.Color)

	undated, err := svc.Tree(ctx, &lineage.TreeReq{Group: "HeLa | lab"})
	require.NoError(t, err)
	assert.Equal(t, "P0_1", undated.Nodes[0].Name)

	_, err = svc.Tree(ctx, &lineage.TreeReq{Group: "HeLa"})
	assert.ErrorIs(t, err, code.ParamErr)
	_, err = svc.Tree(ctx, &lineage.TreeReq{Group: "A549 | ATCC"})
	assert.ErrorIs(t, err, code.LineageGroupNotFound)
}

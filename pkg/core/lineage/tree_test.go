package lineage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/scienceol/cellbank/pkg/repo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(passage, tubes int, parent string, status model.Status) *model.Tube {
	return &model.Tube{
		CellName:   "HeLa",
		Lot:        "7",
		Passage:    model.IntOf(passage),
		TubeCount:  model.IntOf(tubes),
		ParentTube: parent,
		Status:     status,
		Source:     "ATCC",
	}
}

func names(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name)
	}
	return out
}

func TestBuildTreeLinksChildren(t *testing.T) {
	rows := []*model.Tube{
		row(1, 2, "", model.StatusInuse),
		row(2, 2, "P1_1", model.StatusStored),
		row(3, 1, "P2_2", model.StatusDepleted),
		row(4, 1, "P9_9", model.StatusStored),
	}
	log := []*model.UsageEntry{{
		User: "alice", Experiment: "qPCR", Passage: model.IntOf(2), UsedTubeNo: model.IntOf(1),
		Date: model.DateOf(time.Date(2024, 5, 2, 0, 0, 0, 0, time.Local)),
	}}

	roots := BuildTree(rows, log)
	assert.Equal(t, []string{"P1_1", "P1_2", "P4_1"}, names(roots))

	p11 := roots[0]
	assert.Equal(t, ColorInuse, p11.ItemStyle.Color)
	assert.Equal(t, []string{"P2_1", "P2_2"}, names(p11.Children))

	p21 := p11.Children[0]
	assert.Equal(t, ColorUsed, p21.ItemStyle.Color)
	assert.Contains(t, p21.Value, "<b>Used by:</b> alice")
	assert.Contains(t, p21.Value, "2024-05-02")

	p22 := p11.Children[1]
	assert.Equal(t, ColorStored, p22.ItemStyle.Color)
	require.Len(t, p22.Children, 1)
	assert.Equal(t, ColorDepleted, p22.Children[0].ItemStyle.Color)
	assert.Contains(t, p22.Value, "<b>Tube:</b> P2_2<br>Passage: 2<br>Lot: 7")
}

func TestBuildTreeDuplicateReplacesInPlace(t *testing.T) {
	first := row(1, 1, "", model.StatusStored)
	first.Name = "old"
	second := row(2, 1, "", model.StatusStored)
	dup := row(1, 1, "", model.StatusDepleted)
	dup.Name = "new"

	roots := BuildTree([]*model.Tube{first, second, dup}, nil)
	require.Equal(t, []string{"P1_1", "P2_1"}, names(roots))
	assert.Contains(t, roots[0].Value, "Name: new")
	assert.Equal(t, ColorDepleted, roots[0].ItemStyle.Color)
}

func TestBuildTreeDefaultsAndSelfParent(t *testing.T) {
	r := &model.Tube{Passage: model.IntOf(3), ParentTube: "P3_1"}
	roots := BuildTree([]*model.Tube{r}, nil)
	require.Len(t, roots, 1)
	assert.Equal(t, "P3_1", roots[0].Name)
	assert.Empty(t, roots[0].Children)
}

func TestBuildTreeBreaksCycles(t *testing.T) {
	rows := []*model.Tube{
		row(1, 1, "P2_1", model.StatusStored),
		row(2, 1, "P1_1", model.StatusStored),
		row(3, 1, "P2_1", model.StatusStored),
		row(5, 1, "", model.StatusStored),
	}
	roots := BuildTree(rows, nil)
	assert.Equal(t, []string{"P5_1", "P1_1"}, names(roots))
	require.Len(t, roots[1].Children, 1)
	p21 := roots[1].Children[0]
	assert.Equal(t, "P2_1", p21.Name)
	assert.Equal(t, []string{"P3_1"}, names(p21.Children))

	// finite output
	_, err := json.Marshal(roots)
	require.NoError(t, err)
}

func TestBuildTreeEscapesTooltip(t *testing.T) {
	r := row(1, 1, "", model.StatusStored)
	r.Name = "<script>"
	roots := BuildTree([]*model.Tube{r}, nil)
	assert.Contains(t, roots[0].Value, "&lt;script&gt;")
	assert.Contains(t, roots[0].Value, "Status: Stored")
}

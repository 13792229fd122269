package lineage

import (
	"context"
	"sort"
	"strings"

	"github.com/scienceol/cellbank/internal/config"
	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/core/lineage"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
	"github.com/scienceol/cellbank/pkg/repo"
	"github.com/scienceol/cellbank/pkg/repo/model"
	"github.com/scienceol/cellbank/pkg/repo/usagelog"
	"github.com/scienceol/cellbank/pkg/repo/workbook"
	"github.com/scienceol/cellbank/pkg/utils"
)

type lineageImpl struct {
	workbook repo.WorkbookRepo
	usageLog repo.UsageLogRepo
}

func NewLineage() lineage.Service {
	return New(workbook.New(config.Global().Inventory.WorkbookPath), usagelog.NewUsageLogRepo())
}

func New(wb repo.WorkbookRepo, log repo.UsageLogRepo) lineage.Service {
	return &lineageImpl{workbook: wb, usageLog: log}
}

func (l *lineageImpl) rows(ctx context.Context) ([]*model.Tube, error) {
	sheets, err := l.workbook.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Tube, 0)
	for _, s := range sheets {
		for idx := range s.Rows {
			if s.IsBlank(idx) {
				continue
			}
			if t := model.TubeFromRow(s, idx); t.CellName != "" {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func groupOf(t *model.Tube) string {
	return t.CellName + lineage.GroupSep + t.Source
}

func (l *lineageImpl) Groups(ctx context.Context) ([]string, error) {
	rows, err := l.rows(ctx)
	if err != nil {
		return nil, err
	}
	return utils.Distinct(utils.FilterSlice(rows, func(t *model.Tube) (string, bool) {
		return groupOf(t), true
	})), nil
}

func (l *lineageImpl) Tree(ctx context.Context, req *lineage.TreeReq) (*lineage.TreeResp, error) {
	parts := strings.SplitN(req.Group, lineage.GroupSep, 2)
	if len(parts) != 2 {
		return nil, code.ParamErr.WithMsgf("group %q is not \"cell name | source\"", req.Group)
	}
	cellName, source := parts[0], parts[1]

	all, err := l.rows(ctx)
	if err != nil {
		return nil, err
	}
	rows := utils.FilterSlice(all, func(t *model.Tube) (*model.Tube, bool) {
		return t, t.CellName == cellName && t.Source == source
	})
	if len(rows) == 0 {
		return nil, code.LineageGroupNotFound.WithMsg(req.Group)
	}
	sortByFreezeDate(rows)

	sheets := map[string]bool{}
	for _, t := range rows {
		sheets[t.Sheet] = true
		if !t.Passage.Valid {
			t.Passage = model.IntOf(0)
		}
	}
	entries, err := l.usageLog.List(ctx)
	if err != nil {
		return nil, err
	}
	// entries are logged under their sheet name, never under the source,
	// so the group is matched by material and the sheets its rows came from
	log := utils.FilterSlice(entries, func(e *model.UsageEntry) (*model.UsageEntry, bool) {
		return e, e.Material == cellName && sheets[e.Sheet]
	})

	nodes := lineage.BuildTree(rows, log)
	logger.Debugf(ctx, "lineage group %s rows: %d usage: %d roots: %d", req.Group, len(rows), len(log), len(nodes))
	return &lineage.TreeResp{
		Group:    req.Group,
		CellName: cellName,
		Source:   source,
		Nodes:    nodes,
		Rows:     rows,
	}, nil
}

// sortByFreezeDate orders rows oldest first, undated rows last.
func sortByFreezeDate(rows []*model.Tube) {
	sort.SliceStable(rows, func(a, b int) bool {
		da, db := rows[a].FreezeDate, rows[b].FreezeDate
		switch {
		case da == nil:
			return false
		case db == nil:
			return true
		}
		return da.Before(*db)
	})
}

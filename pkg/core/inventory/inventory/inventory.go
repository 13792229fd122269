package inventory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/scienceol/cellbank/internal/config"
	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/core/inventory"
	"github.com/scienceol/cellbank/pkg/core/notify"
	"github.com/scienceol/cellbank/pkg/core/notify/events"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
	"github.com/scienceol/cellbank/pkg/repo"
	"github.com/scienceol/cellbank/pkg/repo/cellosaurus"
	"github.com/scienceol/cellbank/pkg/repo/lock"
	"github.com/scienceol/cellbank/pkg/repo/model"
	"github.com/scienceol/cellbank/pkg/repo/usagelog"
	"github.com/scienceol/cellbank/pkg/repo/workbook"
	"github.com/scienceol/cellbank/pkg/utils"
)

const lockKey = "inventory"

type Deps struct {
	Workbook    repo.WorkbookRepo
	UsageLog    repo.UsageLogRepo
	Locker      repo.Locker
	Cellosaurus repo.CellosaurusRepo
	MsgCenter   notify.MsgCenter

	RecommendWeights inventory.Weights
	StoredWeights    inventory.Weights
	Limit            int
	Now              func() time.Time
}

type inventoryImpl struct {
	Deps
}

func NewInventory() inventory.Service {
	conf := config.Global()
	return New(Deps{
		Workbook:    workbook.New(conf.Inventory.WorkbookPath),
		UsageLog:    usagelog.NewUsageLogRepo(),
		Locker:      lock.NewLocker(),
		Cellosaurus: cellosaurus.NewCellosaurusRepo(),
		MsgCenter:   events.NewEvents(),
		RecommendWeights: inventory.Weights{
			Passage:   conf.Score.RecommendPassage,
			Vials:     conf.Score.RecommendVials,
			Freshness: conf.Score.RecommendFreshness,
		},
		StoredWeights: inventory.Weights{
			Passage:   conf.Score.StoredPassage,
			Vials:     conf.Score.StoredVials,
			Freshness: conf.Score.StoredFreshness,
		},
		Limit: conf.Inventory.RecommendLimit,
	})
}

func New(deps Deps) inventory.Service {
	if deps.Locker == nil {
		deps.Locker = lock.NewLocal()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Limit <= 0 {
		deps.Limit = 5
	}
	return &inventoryImpl{Deps: deps}
}

func (i *inventoryImpl) Sheets(ctx context.Context) ([]string, error) {
	sheets, err := i.Workbook.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return utils.FilterSlice(sheets, func(s *model.Sheet) (string, bool) {
		return s.Name, true
	}), nil
}

func (i *inventoryImpl) CellNames(ctx context.Context, sheet string) ([]string, error) {
	s, err := i.Workbook.LoadSheet(ctx, sheet)
	if err != nil {
		return nil, err
	}
	names := utils.FilterSlice(tubesOf(s), func(t *model.Tube) (string, bool) {
		return t.CellName, t.CellName != ""
	})
	return utils.Distinct(names), nil
}

func (i *inventoryImpl) Tubes(ctx context.Context, req *inventory.TubesReq) ([]*model.Tube, error) {
	s, err := i.Workbook.LoadSheet(ctx, req.Sheet)
	if err != nil {
		return nil, err
	}
	return utils.FilterSlice(tubesOf(s), func(t *model.Tube) (*model.Tube, bool) {
		return t, req.CellName == "" || t.CellName == req.CellName
	}), nil
}

func (i *inventoryImpl) CountByCellLine(ctx context.Context) (*inventory.CellLineStats, error) {
	sheets, err := i.Workbook.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	type pair struct{ cell, source string }
	byCell := map[string]int{}
	bySource := map[pair]int{}
	hasSource := false
	total := 0
	for _, s := range sheets {
		if s.ColumnIndex(model.ColSource) >= 0 {
			hasSource = true
		}
		for _, t := range tubesOf(s) {
			if t.CellName == "" {
				continue
			}
			total++
			byCell[t.CellName]++
			if t.Source != "" {
				bySource[pair{t.CellName, t.Source}]++
			}
		}
	}

	resp := &inventory.CellLineStats{Total: total, ByCell: make([]inventory.CellCount, 0, len(byCell))}
	for name, n := range byCell {
		resp.ByCell = append(resp.ByCell, inventory.CellCount{CellName: name, Count: n})
	}
	sort.Slice(resp.ByCell, func(a, b int) bool {
		if resp.ByCell[a].Count != resp.ByCell[b].Count {
			return resp.ByCell[a].Count > resp.ByCell[b].Count
		}
		return resp.ByCell[a].CellName < resp.ByCell[b].CellName
	})

	if hasSource {
		resp.BySource = make([]inventory.SourceCount, 0, len(bySource))
		for k, n := range bySource {
			resp.BySource = append(resp.BySource, inventory.SourceCount{CellName: k.cell, Source: k.source, Count: n})
		}
		sort.Slice(resp.BySource, func(a, b int) bool {
			if resp.BySource[a].CellName != resp.BySource[b].CellName {
				return resp.BySource[a].CellName < resp.BySource[b].CellName
			}
			return resp.BySource[a].Source < resp.BySource[b].Source
		})
	}
	return resp, nil
}

func (i *inventoryImpl) LookupCellLine(ctx context.Context, req *inventory.CellosaurusReq) (*repo.CellLineInfo, error) {
	if i.Cellosaurus == nil {
		return nil, code.RPCHttpErr.WithMsg("cellosaurus client not configured")
	}
	return i.Cellosaurus.GetCellLine(ctx, req.Name)
}

func (i *inventoryImpl) withLock(ctx context.Context, fn func() error) error {
	unlock, err := i.Locker.Lock(ctx, lockKey)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

func (i *inventoryImpl) publish(ctx context.Context, action notify.Action, sheet string, data any) {
	if i.MsgCenter == nil {
		return
	}
	if err := i.MsgCenter.Broadcast(ctx, &notify.SendMsg{
		Channel: action,
		Sheet:   sheet,
		Data:    data,
	}); err != nil {
		logger.Warnf(ctx, "publish %s sheet %s err: %+v", action, sheet, err)
	}
}

// tubesOf reads the non-blank rows of s; Row keeps the sheet position.
func tubesOf(s *model.Sheet) []*model.Tube {
	out := make([]*model.Tube, 0, len(s.Rows))
	for idx := range s.Rows {
		if s.IsBlank(idx) {
			continue
		}
		out = append(out, model.TubeFromRow(s, idx))
	}
	return out
}

// rowOf returns the tube at 1-based row of s.
func rowOf(s *model.Sheet, row int) (*model.Tube, error) {
	if row < 1 || row > len(s.Rows) || s.IsBlank(row-1) {
		return nil, code.RowNotFound.WithMsgf("sheet %s row %d", s.Name, row)
	}
	return model.TubeFromRow(s, row-1), nil
}

// matchRow is the first row of s consumed by entry, -1 when none.
func matchRow(s *model.Sheet, entry *model.UsageEntry) int {
	for _, t := range tubesOf(s) {
		if entry.Matches(t) {
			return t.Row - 1
		}
	}
	return -1
}

func isNotFound(err error) bool {
	return errors.Is(err, code.WorkbookNotFound)
}

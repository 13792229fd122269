package inventory

import (
	"context"
	"sort"

	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/core/inventory"
	"github.com/scienceol/cellbank/pkg/core/notify"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
	"github.com/scienceol/cellbank/pkg/repo/model"
)

func (i *inventoryImpl) Recommend(ctx context.Context, req *inventory.RecommendReq) ([]*inventory.Recommendation, error) {
	s, err := i.Workbook.LoadSheet(ctx, req.Sheet)
	if err != nil {
		return nil, err
	}
	now := i.Now()
	out := make([]*inventory.Recommendation, 0)
	for _, t := range tubesOf(s) {
		if t.CellName != req.CellName {
			continue
		}
		out = append(out, &inventory.Recommendation{
			Tube:           t,
			RecommendScore: inventory.Score(t, i.RecommendWeights, now),
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].RecommendScore > out[b].RecommendScore
	})

	limit := req.Limit
	if limit <= 0 {
		limit = i.Limit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (i *inventoryImpl) AvailableTubes(ctx context.Context, ref *inventory.TubeRef) (*inventory.AvailableResp, error) {
	s, err := i.Workbook.LoadSheet(ctx, ref.Sheet)
	if err != nil {
		return nil, err
	}
	t, err := rowOf(s, ref.Row)
	if err != nil {
		return nil, err
	}
	entries, err := i.UsageLog.List(ctx)
	if err != nil {
		return nil, err
	}
	return available(t, entries)
}

// available lists the unlogged tubes of row t ordered by tube number.
func available(t *model.Tube, entries []*model.UsageEntry) (*inventory.AvailableResp, error) {
	if !t.Passage.Valid {
		return nil, code.ParamErr.WithMsgf("sheet %s row %d has no passage", t.Sheet, t.Row)
	}

	used := map[int]bool{}
	for _, e := range entries {
		if e.UsedTubeNo.Valid && e.Matches(t) {
			used[e.UsedTubeNo.V] = true
		}
	}
	resp := &inventory.AvailableResp{
		Sheet:    t.Sheet,
		Row:      t.Row,
		CellName: t.CellName,
		Lot:      t.Lot,
		Passage:  t.Passage.V,
		Total:    t.Tubes(),
		Tubes:    []string{},
	}
	for n := 1; n <= resp.Total; n++ {
		if !used[n] {
			resp.Tubes = append(resp.Tubes, model.TubeLabel(t.Passage.V, n))
		}
	}
	if len(resp.Tubes) == 0 {
		return resp, code.NoTubeAvailable.WithMsgf("%s lot %s passage %d", t.CellName, t.Lot, t.Passage.V)
	}
	return resp, nil
}

func (i *inventoryImpl) RegisterUsage(ctx context.Context, req *inventory.RegisterUsageReq) (*inventory.RegisterUsageResp, error) {
	tubeNo := req.TubeNo
	if req.Tube != "" {
		_, n, ok := model.ParseTubeLabel(req.Tube)
		if !ok {
			return nil, code.ParamErr.WithMsgf("bad tube label %q", req.Tube)
		}
		tubeNo = n
	}

	var resp *inventory.RegisterUsageResp
	err := i.withLock(ctx, func() error {
		s, err := i.Workbook.LoadSheet(ctx, req.Sheet)
		if err != nil {
			return err
		}
		t, err := rowOf(s, req.Row)
		if err != nil {
			return err
		}
		entries, err := i.UsageLog.List(ctx)
		if err != nil {
			return err
		}
		avail, err := available(t, entries)
		if err != nil {
			return err
		}
		if req.Tube != "" && req.Tube != model.TubeLabel(t.Passage.V, tubeNo) {
			return code.ParamErr.WithMsgf("tube %s is not from passage %d", req.Tube, t.Passage.V)
		}
		if tubeNo < 1 || tubeNo > avail.Total {
			return code.TubeOutOfRange.WithMsgf("tube %d of %d", tubeNo, avail.Total)
		}
		label := model.TubeLabel(t.Passage.V, tubeNo)
		free := false
		for _, l := range avail.Tubes {
			free = free || l == label
		}
		if !free {
			return code.TubeAlreadyUsed.WithMsg(label)
		}

		now := i.Now()
		entry := &model.UsageEntry{
			Timestamp:    model.DateTime{Time: now},
			User:         req.User,
			Date:         model.DateOf(now),
			Sheet:        s.Name,
			Material:     t.CellName,
			Lot:          t.Lot,
			Passage:      t.Passage,
			UsedTubeNo:   model.IntOf(tubeNo),
			UsedQuantity: 1,
			Experiment:   req.Experiment,
			Type:         model.UsageTypeCell,
		}
		if err := i.UsageLog.Append(ctx, entry); err != nil {
			return err
		}

		resp = &inventory.RegisterUsageResp{Entry: entry}
		idx := matchRow(s, entry)
		if idx < 0 {
			logger.Warnf(ctx, "no row matches usage %s lot %s passage %d", entry.Material, entry.Lot, t.Passage.V)
			return nil
		}
		remain := model.TubeFromRow(s, idx).RemainVials
		if remain.Valid {
			remain.V = max(0, remain.V-1)
			s.Set(idx, model.ColRemainVials, remain.String())
		}
		status := model.StatusAfterConsume(remain.V)
		s.Set(idx, model.ColStatus, string(status))
		if err := i.Workbook.SaveSheet(ctx, s); err != nil {
			logger.Errorf(ctx, "decrement remain vials sheet %s row %d err: %+v", s.Name, idx+1, err)
			if delErr := i.UsageLog.Delete(ctx, entry.Index); delErr != nil {
				logger.Errorf(ctx, "rollback usage %d err: %+v", entry.Index, delErr)
			}
			return err
		}
		resp.RemainVials = remain
		resp.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infof(ctx, "usage registered sheet: %s material: %s tube: P%d_%d user: %s",
		resp.Entry.Sheet, resp.Entry.Material, resp.Entry.Passage.V, tubeNo, resp.Entry.User)
	i.publish(ctx, notify.InventoryModify, resp.Entry.Sheet, resp)
	return resp, nil
}

func (i *inventoryImpl) ListUsage(ctx context.Context, req *inventory.ListUsageReq) ([]*model.UsageEntry, error) {
	entries, err := i.UsageLog.List(ctx)
	if err != nil {
		return nil, err
	}

	var known map[string]bool
	sheets, err := i.Workbook.LoadAll(ctx)
	switch {
	case err == nil:
		known = make(map[string]bool, len(sheets))
		for _, s := range sheets {
			known[s.Name] = true
		}
	case isNotFound(err):
	default:
		return nil, err
	}

	out := make([]*model.UsageEntry, 0, len(entries))
	for _, e := range entries {
		if known != nil && !known[e.Sheet] {
			continue
		}
		if req.Sheet != "" && e.Sheet != req.Sheet {
			continue
		}
		if req.Material != "" && e.Material != req.Material {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (i *inventoryImpl) UpdateUsage(ctx context.Context, req *inventory.UpdateUsageReq) (*model.UsageEntry, error) {
	if req.UsedTubeNo != nil && *req.UsedTubeNo < 1 {
		return nil, code.ParamErr.WithMsg("used tube no must be positive")
	}
	if req.UsedQuantity != nil && *req.UsedQuantity < 0 {
		return nil, code.ParamErr.WithMsg("used quantity must not be negative")
	}

	var entry *model.UsageEntry
	err := i.withLock(ctx, func() error {
		var err error
		entry, err = i.UsageLog.Get(ctx, req.Index)
		if err != nil {
			return err
		}
		if req.User != nil {
			entry.User = *req.User
		}
		if req.Date != nil {
			entry.Date = *req.Date
		}
		if req.UsedQuantity != nil {
			entry.UsedQuantity = *req.UsedQuantity
		}
		if req.UsedTubeNo != nil {
			entry.UsedTubeNo = model.IntOf(*req.UsedTubeNo)
		}
		return i.UsageLog.Update(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	i.publish(ctx, notify.UsageModify, entry.Sheet, entry)
	return entry, nil
}

func (i *inventoryImpl) DeleteUsage(ctx context.Context, index int64) (*inventory.DeleteUsageResp, error) {
	resp := &inventory.DeleteUsageResp{}
	err := i.withLock(ctx, func() error {
		entry, err := i.UsageLog.Get(ctx, index)
		if err != nil {
			return err
		}
		resp.Entry = entry

		if err := i.restoreVial(ctx, entry); err != nil {
			logger.Errorf(ctx, "restore vial for usage %d err: %+v", index, err)
		} else {
			resp.Compensated = true
		}
		return i.UsageLog.Delete(ctx, index)
	})
	if err != nil {
		return nil, err
	}
	i.publish(ctx, notify.InventoryModify, resp.Entry.Sheet, resp)
	return resp, nil
}

// restoreVial gives the tube back to the first row the entry consumed from.
func (i *inventoryImpl) restoreVial(ctx context.Context, entry *model.UsageEntry) error {
	s, err := i.Workbook.LoadSheet(ctx, entry.Sheet)
	if err != nil {
		return err
	}
	idx := matchRow(s, entry)
	if idx < 0 {
		return code.RowNotFound.WithMsgf("%s lot %s passage %s", entry.Material, entry.Lot, entry.Passage)
	}
	if remain := model.TubeFromRow(s, idx).RemainVials; remain.Valid {
		s.Set(idx, model.ColRemainVials, model.IntOf(remain.V+1).String())
	}
	s.Set(idx, model.ColStatus, string(model.StatusInuse))
	return i.Workbook.SaveSheet(ctx, s)
}

package inventory

import (
	"context"
	"strings"

	"github.com/scienceol/cellbank/pkg/core/inventory"
	"github.com/scienceol/cellbank/pkg/core/notify"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
	"github.com/scienceol/cellbank/pkg/repo/model"
)

const unknownSheet = "Unknown"

func (i *inventoryImpl) CreateTube(ctx context.Context, req *inventory.CreateTubeReq) (*model.Tube, error) {
	now := i.Now()
	freeze := model.DateOf(now).Time
	if req.FreezeDate != nil && !req.FreezeDate.IsZero() {
		freeze = req.FreezeDate.Time
	}

	sheetName := strings.TrimSpace(req.CellName)
	if sheetName == "" {
		sheetName = unknownSheet
	}

	t := &model.Tube{
		Sheet:             sheetName,
		Tray:              req.Tray,
		Box:               req.Box,
		Lot:               req.Lot,
		CellName:          strings.TrimSpace(req.CellName),
		TubeCount:         model.IntOf(req.TubeCount),
		FreezeDate:        &freeze,
		Passage:           model.IntOf(req.Passage),
		RemainVials:       model.IntOf(req.RemainVials),
		Name:              req.Name,
		Source:            req.Source,
		Myco:              req.Myco,
		Status:            model.StatusStored,
		ParentTube:        strings.TrimSpace(req.ParentTube),
		FreezingCondition: req.FreezingCondition,
		Thaw:              req.Thaw,
		AdditionalInfo:    req.AdditionalInfo,
		OncotreeCode:      req.OncotreeCode,
		OncotreeSubtype:   req.OncotreeSubtype,
		OncotreeDisease:   req.OncotreeDisease,
		OncotreeLineage:   req.OncotreeLineage,
		Species:           req.Species,
	}
	score := inventory.Score(t, i.StoredWeights, now)
	t.Score = &score

	err := i.withLock(ctx, func() error {
		row, err := i.Workbook.AppendRecord(ctx, sheetName, t.Record(), model.TubeColumns)
		if err != nil {
			return err
		}
		t.Row = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infof(ctx, "tube row created sheet: %s row: %d passage: %d", t.Sheet, t.Row, t.Passage.V)
	i.publish(ctx, notify.InventoryModify, t.Sheet, t)
	return t, nil
}

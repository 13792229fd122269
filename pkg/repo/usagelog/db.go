package usagelog

import (
	"context"
	"errors"

	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/middleware/db"
	"github.com/scienceol/cellbank/pkg/repo"
	"github.com/scienceol/cellbank/pkg/repo/model"
	"gorm.io/gorm"
)

type dbImpl struct {
	*db.Datastore
}

// NewDB stores the log in the usage_log table.
func NewDB(ds *db.Datastore) repo.UsageLogRepo {
	return &dbImpl{Datastore: ds}
}

func (d *dbImpl) List(ctx context.Context) ([]*model.UsageEntry, error) {
	var rows []*model.UsageRecord
	if err := d.DBWithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, code.QueryRecordErr.WithErr(err)
	}
	out := make([]*model.UsageEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Entry())
	}
	return out, nil
}

func (d *dbImpl) Get(ctx context.Context, index int64) (*model.UsageEntry, error) {
	row := &model.UsageRecord{}
	err := d.DBWithContext(ctx).Where("id = ?", index).First(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.UsageNotFound.WithMsgf("index %d", index)
	}
	if err != nil {
		return nil, code.QueryRecordErr.WithErr(err)
	}
	return row.Entry(), nil
}

func (d *dbImpl) Append(ctx context.Context, entry *model.UsageEntry) error {
	row := model.NewUsageRecord(entry)
	row.ID = 0
	if err := d.DBWithContext(ctx).Create(row).Error; err != nil {
		return code.CreateDataErr.WithErr(err)
	}
	entry.Index = row.ID
	return nil
}

func (d *dbImpl) Update(ctx context.Context, entry *model.UsageEntry) error {
	row := model.NewUsageRecord(entry)
	res := d.DBWithContext(ctx).Model(&model.UsageRecord{}).Where("id = ?", entry.Index).
		Select("timestamp", "user", "date", "sheet", "material", "lot", "passage",
			"used_tube_no", "used_quantity", "experiment", "type", "updated_at").
		Updates(row)
	if res.Error != nil {
		return code.UpdateDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.UsageNotFound.WithMsgf("index %d", entry.Index)
	}
	return nil
}

func (d *dbImpl) Delete(ctx context.Context, index int64) error {
	res := d.DBWithContext(ctx).Where("id = ?", index).Delete(&model.UsageRecord{})
	if res.Error != nil {
		return code.DeleteDataErr.WithErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return code.UsageNotFound.WithMsgf("index %d", index)
	}
	return nil
}

// Import copies entries into the table in one transaction.
func Import(ctx context.Context, ds *db.Datastore, entries []*model.UsageEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	rows := make([]*model.UsageRecord, 0, len(entries))
	for _, e := range entries {
		r := model.NewUsageRecord(e)
		r.ID = 0
		rows = append(rows, r)
	}
	err := ds.ExecTx(ctx, func(txCtx context.Context) error {
		return ds.DBWithContext(txCtx).CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return 0, code.CreateDataErr.WithErr(err)
	}
	return len(rows), nil
}

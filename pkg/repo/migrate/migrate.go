package migrate

import (
	"context"

	"github.com/scienceol/cellbank/pkg/middleware/db"
	"github.com/scienceol/cellbank/pkg/repo/model"
	"github.com/scienceol/cellbank/pkg/utils"
)

func Table(ctx context.Context, ds *db.Datastore) error {
	return utils.IfErrReturn(func() error {
		return ds.DBWithContext(ctx).AutoMigrate(
			&model.UsageRecord{}, // usage log
		)
	}, func() error {
		// availability lookups match on material, lot and passage
		return ds.DBWithContext(ctx).Exec(`CREATE INDEX IF NOT EXISTS idx_usage_key ON usage_log (material, lot, passage)`).Error
	})
}

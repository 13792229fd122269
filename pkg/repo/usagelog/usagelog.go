package usagelog

import (
	"github.com/scienceol/cellbank/internal/config"
	"github.com/scienceol/cellbank/pkg/middleware/db"
	"github.com/scienceol/cellbank/pkg/repo"
)

// NewUsageLogRepo picks the backend named by USAGE_LOG_BACKEND. The db
// backend needs db.InitPostgres to have run.
func NewUsageLogRepo() repo.UsageLogRepo {
	conf := config.Global().Inventory
	if conf.UsageLogBackend == config.LogBackendDB && db.DB() != nil {
		return NewDB(db.DB())
	}
	return NewCSV(conf.UsageLogPath)
}

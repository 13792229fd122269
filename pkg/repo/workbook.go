package repo

import (
	"context"

	"github.com/scienceol/cellbank/pkg/repo/model"
)

// WorkbookRepo is the tube workbook: one sheet per cell line or source.
type WorkbookRepo interface {
	// LoadAll returns every sheet in workbook order.
	LoadAll(ctx context.Context) ([]*model.Sheet, error)
	LoadSheet(ctx context.Context, name string) (*model.Sheet, error)
	// SaveSheet rewrites one sheet, creating the workbook or sheet if needed.
	SaveSheet(ctx context.Context, sheet *model.Sheet) error
	// AppendRecord adds a row to sheetName and returns its 1-based row.
	AppendRecord(ctx context.Context, sheetName string, rec map[string]string, order []string) (int, error)
	Exists() bool
	Path() string
}

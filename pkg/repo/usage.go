package repo

import (
	"context"

	"github.com/scienceol/cellbank/pkg/repo/model"
)

type UsageLogRepo interface {
	List(ctx context.Context) ([]*model.UsageEntry, error)
	Get(ctx context.Context, index int64) (*model.UsageEntry, error)
	// Append stores entry and sets its Index.
	Append(ctx context.Context, entry *model.UsageEntry) error
	// Update replaces the entry at entry.Index.
	Update(ctx context.Context, entry *model.UsageEntry) error
	Delete(ctx context.Context, index int64) error
}

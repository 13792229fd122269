package inventory

import (
	"context"

	"github.com/scienceol/cellbank/pkg/repo"
	"github.com/scienceol/cellbank/pkg/repo/model"
)

// Weights of the linear tube score.
type Weights struct {
	Passage   float64 `json:"passage"`
	Vials     float64 `json:"vials"`
	Freshness float64 `json:"freshness"`
}

type SheetReq struct {
	Sheet string `uri:"sheet" binding:"required"`
}

type TubesReq struct {
	Sheet    string `uri:"sheet" binding:"required"`
	CellName string `form:"cell_name"`
}

type CellCount struct {
	CellName string `json:"cell_name"`
	Count    int    `json:"count"`
}

type SourceCount struct {
	CellName string `json:"cell_name"`
	Source   string `json:"source"`
	Count    int    `json:"count"`
}

type CellLineStats struct {
	Total    int           `json:"total"`
	ByCell   []CellCount   `json:"by_cell"`
	BySource []SourceCount `json:"by_source,omitempty"`
}

type RecommendReq struct {
	Sheet    string `form:"sheet" binding:"required"`
	CellName string `form:"cell_name" binding:"required"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type Recommendation struct {
	*model.Tube
	RecommendScore float64 `json:"recommend_score"`
}

type TubeRef struct {
	Sheet string `form:"sheet" json:"sheet" binding:"required"`
	Row   int    `form:"row" json:"row" binding:"required,min=1"`
}

type AvailableResp struct {
	Sheet    string   `json:"sheet"`
	Row      int      `json:"row"`
	CellName string   `json:"cell_name"`
	Lot      string   `json:"lot"`
	Passage  int      `json:"passage"`
	Total    int      `json:"total"`
	Tubes    []string `json:"tubes"`
}

type RegisterUsageReq struct {
	TubeRef
	// TubeNo or Tube ("P2_3") selects the tube to consume.
	TubeNo     int    `json:"tube_no"`
	Tube       string `json:"tube"`
	User       string `json:"user"`
	Experiment string `json:"experiment"`
}

type RegisterUsageResp struct {
	Entry       *model.UsageEntry `json:"entry"`
	RemainVials model.OptInt      `json:"remain_vials"`
	Status      model.Status      `json:"status"`
}

type ListUsageReq struct {
	Sheet    string `form:"sheet"`
	Material string `form:"material"`
}

type UsageIndexReq struct {
	Index int64 `uri:"index" binding:"required,min=1"`
}

// UpdateUsageReq edits only the fields that are set.
type UpdateUsageReq struct {
	Index        int64       `json:"-"`
	User         *string     `json:"user"`
	Date         *model.Date `json:"date"`
	UsedQuantity *float64    `json:"used_quantity"`
	UsedTubeNo   *int        `json:"used_tube_no"`
}

type DeleteUsageResp struct {
	Entry       *model.UsageEntry `json:"entry"`
	Compensated bool              `json:"compensated"`
}

type CreateTubeReq struct {
	Tray              string      `json:"tray"`
	Box               string      `json:"box"`
	Lot               string      `json:"lot"`
	CellName          string      `json:"cell_name"`
	TubeCount         int         `json:"tube_count" binding:"min=0"`
	FreezeDate        *model.Date `json:"freeze_date"`
	Passage           int         `json:"passage" binding:"min=0"`
	RemainVials       int         `json:"remain_vials" binding:"min=0"`
	Name              string      `json:"name"`
	Source            string      `json:"source"`
	Myco              string      `json:"myco"`
	FreezingCondition string      `json:"freezing_condition"`
	Thaw              string      `json:"thaw"`
	AdditionalInfo    string      `json:"additional_info"`
	OncotreeCode      string      `json:"oncotree_code"`
	OncotreeSubtype   string      `json:"oncotree_subtype"`
	OncotreeDisease   string      `json:"oncotree_primary_disease"`
	OncotreeLineage   string      `json:"oncotree_lineage"`
	Species           string      `json:"species"`
	ParentTube        string      `json:"parent_tube"`
}

type CellosaurusReq struct {
	Name string `form:"name" binding:"required"`
}

type Service interface {
	Sheets(ctx context.Context) ([]string, error)
	CellNames(ctx context.Context, sheet string) ([]string, error)
	Tubes(ctx context.Context, req *TubesReq) ([]*model.Tube, error)
	CountByCellLine(ctx context.Context) (*CellLineStats, error)
	Recommend(ctx context.Context, req *RecommendReq) ([]*Recommendation, error)
	AvailableTubes(ctx context.Context, ref *TubeRef) (*AvailableResp, error)
	RegisterUsage(ctx context.Context, req *RegisterUsageReq) (*RegisterUsageResp, error)
	ListUsage(ctx context.Context, req *ListUsageReq) ([]*model.UsageEntry, error)
	UpdateUsage(ctx context.Context, req *UpdateUsageReq) (*model.UsageEntry, error)
	DeleteUsage(ctx context.Context, index int64) (*DeleteUsageResp, error)
	CreateTube(ctx context.Context, req *CreateTubeReq) (*model.Tube, error)
	LookupCellLine(ctx context.Context, req *CellosaurusReq) (*repo.CellLineInfo, error)
}

package lineage

import (
	"context"

	"github.com/scienceol/cellbank/pkg/repo/model"
)

const GroupSep = " | "

type ItemStyle struct {
	Color string `json:"color"`
}

// Node is one tube in the lineage tree, shaped for an ECharts tree series.
type Node struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	Children  []*Node   `json:"children"`
	ItemStyle ItemStyle `json:"itemStyle"`
}

type TreeReq struct {
	Group string `form:"group" binding:"required"`
}

type TreeResp struct {
	Group    string        `json:"group"`
	CellName string        `json:"cell_name"`
	Source   string        `json:"source"`
	Nodes    []*Node       `json:"nodes"`
	Rows     []*model.Tube `json:"rows"`
}

type Service interface {
	// Groups lists "cell name | source" pairs in workbook order.
	Groups(ctx context.Context) ([]string, error)
	Tree(ctx context.Context, req *TreeReq) (*TreeResp, error)
}

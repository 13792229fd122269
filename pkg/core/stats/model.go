package stats

import (
	"context"

	"github.com/scienceol/cellbank/pkg/repo/model"
)

type ChartName string

const (
	ChartCellLines ChartName = "cell-lines"
	ChartSources   ChartName = "sources"
	ChartUsage     ChartName = "usage"
	ChartTimeline  ChartName = "timeline"
	ChartDetail    ChartName = "detail"
)

var AllCharts = []ChartName{ChartCellLines, ChartSources, ChartUsage, ChartTimeline, ChartDetail}

type UsageReq struct {
	Sheet    string `form:"sheet"`
	Material string `form:"material"`
}

type MaterialCount struct {
	Material string `json:"material"`
	Tubes    int    `json:"tubes"`
}

type TimelinePoint struct {
	Date     model.Date `json:"date"`
	Material string     `json:"material"`
	Tubes    int        `json:"tubes"`
}

type UsagePoint struct {
	Date       model.Date   `json:"date"`
	Material   string       `json:"material"`
	User       string       `json:"user"`
	Experiment string       `json:"experiment"`
	TubeNo     model.OptInt `json:"tube_no"`
}

type UsageSummary struct {
	ByMaterial []MaterialCount `json:"by_material"`
	Timeline   []TimelinePoint `json:"timeline"`
	Details    []UsagePoint    `json:"details"`
}

type ChartReq struct {
	Name ChartName `uri:"name" binding:"required"`
	UsageReq
}

type ChartsReq struct {
	Names []ChartName `form:"name"`
	UsageReq
}

type Service interface {
	UsageSummary(ctx context.Context, req *UsageReq) (*UsageSummary, error)
	// Chart renders one chart as SVG.
	Chart(ctx context.Context, req *ChartReq) ([]byte, error)
	// Charts renders several charts concurrently, keyed by name.
	Charts(ctx context.Context, req *ChartsReq) (map[ChartName]string, error)
	Close()
}

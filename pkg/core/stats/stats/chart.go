package stats

import (
	"bytes"
	"io"
	"sort"
	"time"

	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/core/inventory"
	"github.com/scienceol/cellbank/pkg/core/stats"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartWidth  = 960
	chartHeight = 480
	barWidth    = 40
	barSpacing  = 20
)

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func render(c renderable) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.SVG, &buf); err != nil {
		return nil, code.ChartRenderErr.WithErr(err)
	}
	return buf.Bytes(), nil
}

func padding() chart.Style {
	return chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}}
}

// pointStyle draws dots only.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 1,
		StrokeColor: drawing.ColorTransparent,
		DotWidth:    5,
		DotColor:    col,
	}
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
		DotWidth:    4,
		DotColor:    col,
	}
}

func widthFor(bars int) int {
	return max(chartWidth, 80+bars*(barWidth+barSpacing))
}

// countRange keeps a zero based y axis with room above the tallest bar.
func countRange(maxV float64) *chart.ContinuousRange {
	if maxV <= 0 {
		maxV = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: maxV * 1.1}
}

func barChart(title string, bars []chart.Value) ([]byte, error) {
	if len(bars) == 0 {
		return nil, code.ChartNoData.WithMsg(title)
	}
	maxV := 0.0
	for _, b := range bars {
		maxV = max(maxV, b.Value)
	}
	return render(chart.BarChart{
		Title:      title,
		Background: padding(),
		Width:      widthFor(len(bars)),
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		YAxis:      chart.YAxis{Range: countRange(maxV)},
		Bars:       bars,
	})
}

func cellLineChart(counts *inventory.CellLineStats) ([]byte, error) {
	bars := make([]chart.Value, 0, len(counts.ByCell))
	for _, c := range counts.ByCell {
		bars = append(bars, chart.Value{Label: c.CellName, Value: float64(c.Count)})
	}
	return barChart("Cell lines", bars)
}

// sourceChart stacks one segment per source on each cell line bar.
func sourceChart(counts *inventory.CellLineStats) ([]byte, error) {
	if len(counts.BySource) == 0 {
		return nil, code.ChartNoData.WithMsg("Cell lines by source")
	}

	colors := map[string]drawing.Color{}
	bars := make([]chart.StackedBar, 0)
	index := map[string]int{}
	for _, c := range counts.BySource {
		col, ok := colors[c.Source]
		if !ok {
			col = chart.GetDefaultColor(len(colors))
			colors[c.Source] = col
		}
		i, ok := index[c.CellName]
		if !ok {
			i = len(bars)
			index[c.CellName] = i
			bars = append(bars, chart.StackedBar{Name: c.CellName, Width: barWidth})
		}
		bars[i].Values = append(bars[i].Values, chart.Value{
			Label: c.Source,
			Value: float64(c.Count),
			Style: chart.Style{FillColor: col, StrokeColor: col},
		})
	}
	return render(chart.StackedBarChart{
		Title:      "Cell lines by source",
		Background: padding(),
		Width:      widthFor(len(bars)),
		Height:     chartHeight,
		BarSpacing: barSpacing,
		Bars:       bars,
	})
}

func usageChart(summary *stats.UsageSummary) ([]byte, error) {
	bars := make([]chart.Value, 0, len(summary.ByMaterial))
	for _, m := range summary.ByMaterial {
		bars = append(bars, chart.Value{Label: m.Material, Value: float64(m.Tubes)})
	}
	return barChart("Tubes used per cell line", bars)
}

// dateAxis widens a single-day range so the axis has a span.
func dateAxis(dates []time.Time) chart.XAxis {
	axis := chart.XAxis{Name: "Date", ValueFormatter: chart.TimeDateValueFormatter}
	if len(dates) == 0 {
		return axis
	}
	lo, hi := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(lo) {
			lo = d
		}
		if d.After(hi) {
			hi = d
		}
	}
	if lo.Equal(hi) {
		axis.Range = &chart.ContinuousRange{
			Min: chart.TimeToFloat64(lo.Add(-24 * time.Hour)),
			Max: chart.TimeToFloat64(hi.Add(24 * time.Hour)),
		}
	}
	return axis
}

func timelineChart(summary *stats.UsageSummary) ([]byte, error) {
	if len(summary.Timeline) == 0 {
		return nil, code.ChartNoData.WithMsg("Usage timeline")
	}

	order := []string{}
	series := map[string]*chart.TimeSeries{}
	dates := make([]time.Time, 0, len(summary.Timeline))
	maxV := 0.0
	for _, p := range summary.Timeline {
		ts, ok := series[p.Material]
		if !ok {
			ts = &chart.TimeSeries{Name: p.Material, Style: lineStyle(chart.GetDefaultColor(len(order)))}
			series[p.Material] = ts
			order = append(order, p.Material)
		}
		ts.XValues = append(ts.XValues, p.Date.Time)
		ts.YValues = append(ts.YValues, float64(p.Tubes))
		dates = append(dates, p.Date.Time)
		maxV = max(maxV, float64(p.Tubes))
	}

	c := chart.Chart{
		Title:      "Tubes used over time",
		Background: padding(),
		Width:      chartWidth,
		Height:     chartHeight,
		XAxis:      dateAxis(dates),
		YAxis:      chart.YAxis{Name: "Tubes", Range: &chart.ContinuousRange{Min: 0, Max: maxV + 1}},
	}
	for _, m := range order {
		c.Series = append(c.Series, *series[m])
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}
	return render(c)
}

// detailChart plots each usage as a dot per material row, coloured by user.
func detailChart(summary *stats.UsageSummary) ([]byte, error) {
	if len(summary.Details) == 0 {
		return nil, code.ChartNoData.WithMsg("Usage detail")
	}

	materials := map[string]int{}
	names := []string{}
	for _, p := range summary.Details {
		if _, ok := materials[p.Material]; !ok {
			materials[p.Material] = 0
			names = append(names, p.Material)
		}
	}
	sort.Strings(names)
	ticks := make([]chart.Tick, 0, len(names))
	for i, m := range names {
		materials[m] = i
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: m})
	}

	users := []string{}
	series := map[string]*chart.TimeSeries{}
	dates := make([]time.Time, 0, len(summary.Details))
	for _, p := range summary.Details {
		user := p.User
		if user == "" {
			user = "(unknown)"
		}
		ts, ok := series[user]
		if !ok {
			ts = &chart.TimeSeries{Name: user, Style: pointStyle(chart.GetDefaultColor(len(users)))}
			series[user] = ts
			users = append(users, user)
		}
		ts.XValues = append(ts.XValues, p.Date.Time)
		ts.YValues = append(ts.YValues, float64(materials[p.Material]))
		dates = append(dates, p.Date.Time)
	}

	c := chart.Chart{
		Title:      "Usage detail",
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 120, Right: 16, Bottom: 16}},
		Width:      chartWidth,
		Height:     max(chartHeight, 120+len(names)*40),
		XAxis:      dateAxis(dates),
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: -1, Max: float64(len(names))},
			Ticks: ticks,
		},
	}
	for _, u := range users {
		c.Series = append(c.Series, *series[u])
	}
	c.Elements = []chart.Renderable{chart.Legend(&c)}
	return render(c)
}

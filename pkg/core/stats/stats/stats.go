package stats

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/core/inventory"
	"github.com/scienceol/cellbank/pkg/core/stats"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
	"github.com/scienceol/cellbank/pkg/repo/model"
)

const poolSize = 4

type statsImpl struct {
	inv   inventory.Service
	pools *ants.Pool
}

func New(inv inventory.Service) stats.Service {
	pools, err := ants.NewPool(poolSize, ants.WithExpiryDuration(30*time.Second))
	if err != nil {
		pools, _ = ants.NewPool(ants.DefaultAntsPoolSize)
	}
	return &statsImpl{inv: inv, pools: pools}
}

func (s *statsImpl) Close() {
	s.pools.Release()
}

func (s *statsImpl) UsageSummary(ctx context.Context, req *stats.UsageReq) (*stats.UsageSummary, error) {
	entries, err := s.inv.ListUsage(ctx, &inventory.ListUsageReq{Sheet: req.Sheet, Material: req.Material})
	if err != nil {
		return nil, err
	}
	return summarize(entries), nil
}

// summarize counts logged tube numbers per material and per (date, material).
func summarize(entries []*model.UsageEntry) *stats.UsageSummary {
	type dayKey struct {
		day      string
		material string
	}
	byMaterial := map[string]int{}
	byDay := map[dayKey]int{}
	days := map[string]model.Date{}
	resp := &stats.UsageSummary{
		ByMaterial: []stats.MaterialCount{},
		Timeline:   []stats.TimelinePoint{},
		Details:    []stats.UsagePoint{},
	}

	for _, e := range entries {
		n := 0
		if e.UsedTubeNo.Valid {
			n = 1
		}
		byMaterial[e.Material] += n
		if !e.Date.IsZero() {
			k := dayKey{e.Date.String(), e.Material}
			byDay[k] += n
			days[k.day] = e.Date
			resp.Details = append(resp.Details, stats.UsagePoint{
				Date:       e.Date,
				Material:   e.Material,
				User:       e.User,
				Experiment: e.Experiment,
				TubeNo:     e.UsedTubeNo,
			})
		}
	}

	for m, n := range byMaterial {
		resp.ByMaterial = append(resp.ByMaterial, stats.MaterialCount{Material: m, Tubes: n})
	}
	sort.Slice(resp.ByMaterial, func(a, b int) bool {
		return resp.ByMaterial[a].Material < resp.ByMaterial[b].Material
	})

	for k, n := range byDay {
		resp.Timeline = append(resp.Timeline, stats.TimelinePoint{Date: days[k.day], Material: k.material, Tubes: n})
	}
	sort.Slice(resp.Timeline, func(a, b int) bool {
		ta, tb := resp.Timeline[a], resp.Timeline[b]
		if !ta.Date.Equal(tb.Date.Time) {
			return ta.Date.Before(tb.Date.Time)
		}
		return ta.Material < tb.Material
	})
	sort.SliceStable(resp.Details, func(a, b int) bool {
		return resp.Details[a].Date.Before(resp.Details[b].Date.Time)
	})
	return resp
}

func (s *statsImpl) Chart(ctx context.Context, req *stats.ChartReq) ([]byte, error) {
	switch req.Name {
	case stats.ChartCellLines, stats.ChartSources:
		counts, err := s.inv.CountByCellLine(ctx)
		if err != nil {
			return nil, err
		}
		if req.Name == stats.ChartCellLines {
			return cellLineChart(counts)
		}
		return sourceChart(counts)
	case stats.ChartUsage, stats.ChartTimeline, stats.ChartDetail:
		summary, err := s.UsageSummary(ctx, &req.UsageReq)
		if err != nil {
			return nil, err
		}
		switch req.Name {
		case stats.ChartUsage:
			return usageChart(summary)
		case stats.ChartTimeline:
			return timelineChart(summary)
		default:
			return detailChart(summary)
		}
	}
	return nil, code.UnknownChartErr.WithMsg(string(req.Name))
}

func (s *statsImpl) Charts(ctx context.Context, req *stats.ChartsReq) (map[stats.ChartName]string, error) {
	names := req.Names
	if len(names) == 0 {
		names = stats.AllCharts
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	out := make(map[stats.ChartName]string, len(names))
	for _, name := range names {
		chartReq := &stats.ChartReq{Name: name, UsageReq: req.UsageReq}
		wg.Add(1)
		if err := s.pools.Submit(func() {
			defer wg.Done()
			svg, err := s.Chart(ctx, chartReq)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warnf(ctx, "render chart %s err: %+v", chartReq.Name, err)
				if firstErr == nil && !errors.Is(err, code.ChartNoData) {
					firstErr = err
				}
				return
			}
			out[chartReq.Name] = string(svg)
		}); err != nil {
			wg.Done()
			return nil, code.ChartRenderErr.WithErr(err)
		}
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

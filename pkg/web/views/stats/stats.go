package stats

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/cellbank/pkg/common"
	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/common/constant"
	"github.com/scienceol/cellbank/pkg/core/stats"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
)

type Handle struct {
	sService stats.Service
}

func NewStatsHandle(sService stats.Service) *Handle {
	return &Handle{sService: sService}
}

func (h *Handle) Usage(ctx *gin.Context) {
	req := &stats.UsageReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse Usage param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.sService.UsageSummary(ctx, req)
	common.Reply(ctx, err, resp)
}

// Chart writes one chart as an SVG document; failures use the JSON envelope.
func (h *Handle) Chart(ctx *gin.Context) {
	req := &stats.ChartReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse Chart uri err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	if err := ctx.ShouldBindQuery(&req.UsageReq); err != nil {
		logger.Errorf(ctx, "parse Chart query err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	svg, err := h.sService.Chart(ctx, req)
	if err != nil {
		common.ReplyErr(ctx, err)
		return
	}
	ctx.Header("Cache-Control", fmt.Sprintf("max-age=%d", constant.ChartCacheSeconds))
	ctx.Data(http.StatusOK, "image/svg+xml", svg)
}

func (h *Handle) Charts(ctx *gin.Context) {
	req := &stats.ChartsReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse Charts param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.sService.Charts(ctx, req)
	common.Reply(ctx, err, resp)
}

package inventory

import (
	"github.com/gin-gonic/gin"
	"github.com/scienceol/cellbank/pkg/common"
	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/core/inventory"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
)

type Handle struct {
	iService inventory.Service
}

func NewInventoryHandle(iService inventory.Service) *Handle {
	return &Handle{iService: iService}
}

func (h *Handle) Sheets(ctx *gin.Context) {
	resp, err := h.iService.Sheets(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) CellNames(ctx *gin.Context) {
	req := &inventory.SheetReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse CellNames param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.iService.CellNames(ctx, req.Sheet)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Tubes(ctx *gin.Context) {
	req := &inventory.TubesReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse Tubes uri err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse Tubes query err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.iService.Tubes(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) CellLineStats(ctx *gin.Context) {
	resp, err := h.iService.CountByCellLine(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Recommend(ctx *gin.Context) {
	req := &inventory.RecommendReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse Recommend param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.iService.Recommend(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Available(ctx *gin.Context) {
	req := &inventory.TubeRef{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse Available param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.iService.AvailableTubes(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) CreateTube(ctx *gin.Context) {
	req := &inventory.CreateTubeReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse CreateTube param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.iService.CreateTube(ctx, req)
	if err != nil {
		logger.Errorf(ctx, "CreateTube err: %+v", err)
	}
	common.Reply(ctx, err, resp)
}

func (h *Handle) Cellosaurus(ctx *gin.Context) {
	req := &inventory.CellosaurusReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse Cellosaurus param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.iService.LookupCellLine(ctx, req)
	common.Reply(ctx, err, resp)
}

package inventory

import (
	"github.com/gin-gonic/gin"
	"github.com/scienceol/cellbank/pkg/common"
	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/core/inventory"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
)

func (h *Handle) RegisterUsage(ctx *gin.Context) {
	req := &inventory.RegisterUsageReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse RegisterUsage param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.iService.RegisterUsage(ctx, req)
	if err != nil {
		logger.Errorf(ctx, "RegisterUsage err: %+v", err)
	}
	common.Reply(ctx, err, resp)
}

func (h *Handle) ListUsage(ctx *gin.Context) {
	req := &inventory.ListUsageReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse ListUsage param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.iService.ListUsage(ctx, req)
	common.Reply(ctx, err, resp)
}

func (h *Handle) UpdateUsage(ctx *gin.Context) {
	idx := &inventory.UsageIndexReq{}
	if err := ctx.ShouldBindUri(idx); err != nil {
		logger.Errorf(ctx, "parse UpdateUsage index err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req := &inventory.UpdateUsageReq{}
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Errorf(ctx, "parse UpdateUsage param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	req.Index = idx.Index
	resp, err := h.iService.UpdateUsage(ctx, req)
	if err != nil {
		logger.Errorf(ctx, "UpdateUsage err: %+v", err)
	}
	common.Reply(ctx, err, resp)
}

func (h *Handle) DeleteUsage(ctx *gin.Context) {
	req := &inventory.UsageIndexReq{}
	if err := ctx.ShouldBindUri(req); err != nil {
		logger.Errorf(ctx, "parse DeleteUsage param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.iService.DeleteUsage(ctx, req.Index)
	if err != nil {
		logger.Errorf(ctx, "DeleteUsage err: %+v", err)
	}
	common.Reply(ctx, err, resp)
}

package lineage

import (
	"github.com/gin-gonic/gin"
	"github.com/scienceol/cellbank/pkg/common"
	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/core/lineage"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
)

type Handle struct {
	lService lineage.Service
}

func NewLineageHandle(lService lineage.Service) *Handle {
	return &Handle{lService: lService}
}

func (h *Handle) Groups(ctx *gin.Context) {
	resp, err := h.lService.Groups(ctx)
	common.Reply(ctx, err, resp)
}

func (h *Handle) Tree(ctx *gin.Context) {
	req := &lineage.TreeReq{}
	if err := ctx.ShouldBindQuery(req); err != nil {
		logger.Errorf(ctx, "parse Tree param err: %+v", err.Error())
		common.ReplyErr(ctx, code.ParamErr, err.Error())
		return
	}
	resp, err := h.lService.Tree(ctx, req)
	common.Reply(ctx, err, resp)
}

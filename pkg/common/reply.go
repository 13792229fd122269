package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scienceol/cellbank/pkg/common/code"
)

type Resp struct {
	Code code.ErrCode `json:"code"`
	Msg  string       `json:"msg,omitempty"`
	Data any          `json:"data,omitempty"`
}

type WsMsgType struct {
	Action  string `json:"action"`
	MsgUUID string `json:"msg_uuid"`
}

type WSData[T any] struct {
	WsMsgType
	Data T `json:"data,omitempty"`
}

func ReplyOk(ctx *gin.Context, data ...any) {
	resp := &Resp{Code: code.Success}
	if len(data) > 0 {
		resp.Data = data[0]
	}
	ctx.JSON(http.StatusOK, resp)
}

// ReplyErr writes err as the reply envelope; msg overrides the error text.
func ReplyErr(ctx *gin.Context, err error, msg ...string) {
	resp := &Resp{Code: code.From(err), Msg: err.Error()}
	var e *code.Error
	if errors.As(err, &e) {
		resp.Msg = e.Msg()
	}
	if len(msg) > 0 {
		resp.Msg = msg[0]
	}
	ctx.JSON(http.StatusOK, resp)
}

func Reply(ctx *gin.Context, err error, data ...any) {
	if err != nil {
		ReplyErr(ctx, err)
		return
	}
	ReplyOk(ctx, data...)
}

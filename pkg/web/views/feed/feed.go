package feed

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
	"github.com/scienceol/cellbank/pkg/common/constant"
	"github.com/scienceol/cellbank/pkg/core/feed"
	impl "github.com/scienceol/cellbank/pkg/core/feed/feed"
	"github.com/scienceol/cellbank/pkg/core/inventory"
	"github.com/scienceol/cellbank/pkg/core/notify"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
)

type Handle struct {
	fService feed.Service
	wsClient *melody.Melody
}

func NewFeedHandle(ctx context.Context, inv inventory.Service, center notify.MsgCenter) *Handle {
	wsClient := melody.New()
	wsClient.Config.MaxMessageSize = constant.MaxMessageSize

	h := &Handle{
		fService: impl.NewFeed(ctx, wsClient, inv, center),
		wsClient: wsClient,
	}
	h.initInventoryWebSocket()
	return h
}

func (h *Handle) Close() error {
	return h.wsClient.Close()
}

// Inventory upgrades to a websocket that receives every inventory event.
func (h *Handle) Inventory(ctx *gin.Context) {
	if err := h.wsClient.HandleRequestWithKeys(ctx.Writer, ctx.Request, map[string]any{
		"ctx": ctx,
	}); err != nil {
		logger.Errorf(ctx, "Inventory HandleRequestWithKeys err: %+v", err)
	}
}

// Notify streams the same events as server-sent events.
func (h *Handle) Notify(ctx *gin.Context) {
	ch, cancel := h.fService.Subscribe(ctx)
	defer cancel()

	ctx.Writer.Header().Set("Content-Type", "text/event-stream")
	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")
	ctx.Writer.Header().Set("Access-Control-Allow-Origin", "*")
	ctx.Writer.Flush()

	ctx.Stream(func(_ io.Writer) bool {
		select {
		case msg, ok := <-ch:
			if !ok {
				return false
			}
			ctx.SSEvent("message", msg)
			return true
		case <-ctx.Request.Context().Done():
			return false
		}
	})
}

func (h *Handle) initInventoryWebSocket() {
	h.wsClient.HandleClose(func(s *melody.Session, _ int, _ string) error {
		if ctx, ok := s.Get("ctx"); ok {
			logger.Infof(ctx.(context.Context), "inventory ws client close keys: %+v", s.Keys)
		}
		return nil
	})

	h.wsClient.HandleDisconnect(func(s *melody.Session) {
		if ctx, ok := s.Get("ctx"); ok {
			logger.Infof(ctx.(context.Context), "inventory ws client disconnected keys: %+v", s.Keys)
		}
	})

	h.wsClient.HandleError(func(s *melody.Session, err error) {
		if errors.Is(err, melody.ErrMessageBufferFull) {
			return
		}
		if closeErr, ok := err.(*websocket.CloseError); ok {
			if closeErr.Code == websocket.CloseGoingAway {
				return
			}
		}
		if ctx, ok := s.Get("ctx"); ok {
			logger.Errorf(ctx.(context.Context), "inventory ws error keys: %+v, err: %+v", s.Keys, err)
		}
	})

	h.wsClient.HandleConnect(func(s *melody.Session) {
		if ctx, ok := s.Get("ctx"); ok {
			if err := h.fService.OnWSConnect(ctx.(context.Context), s); err != nil {
				logger.Errorf(ctx.(context.Context), "inventory OnWSConnect err: %+v", err)
			}
		}
	})

	h.wsClient.HandleMessage(func(s *melody.Session, b []byte) {
		ctxI, ok := s.Get("ctx")
		if !ok {
			if err := s.CloseWithMsg([]byte("no ctx")); err != nil {
				logger.Errorf(context.Background(), "HandleMessage ctx not exist CloseWithMsg err: %+v", err)
			}
			return
		}
		if err := h.fService.OnWSMsg(ctxI.(*gin.Context), s, b); err != nil {
			logger.Errorf(ctxI.(*gin.Context), "inventory handle msg err: %+v", err)
		}
	})
}

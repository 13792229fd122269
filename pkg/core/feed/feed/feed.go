package feed

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/olahol/melody"
	"github.com/scienceol/cellbank/pkg/common"
	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/core/feed"
	"github.com/scienceol/cellbank/pkg/core/inventory"
	"github.com/scienceol/cellbank/pkg/core/notify"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
)

const subBuffer = 16

type feedImpl struct {
	inv      inventory.Service
	wsClient *melody.Melody

	mu   sync.Mutex
	subs map[chan string]struct{}
}

func NewFeed(ctx context.Context, wsClient *melody.Melody, inv inventory.Service, center notify.MsgCenter) feed.Service {
	f := &feedImpl{
		inv:      inv,
		wsClient: wsClient,
		subs:     make(map[chan string]struct{}),
	}
	for _, action := range []notify.Action{notify.InventoryModify, notify.UsageModify} {
		if err := center.Registry(ctx, action, f.OnNotify); err != nil {
			logger.Errorf(ctx, "Registry %s fail err: %+v", action, err)
		}
	}
	return f
}

func (f *feedImpl) OnNotify(ctx context.Context, msg string) error {
	f.mu.Lock()
	for ch := range f.subs {
		select {
		case ch <- msg:
		default:
			logger.Warnf(ctx, "sse subscriber is slow, drop msg")
		}
	}
	f.mu.Unlock()

	return f.wsClient.Broadcast([]byte(msg))
}

func (f *feedImpl) Subscribe(_ context.Context) (<-chan string, func()) {
	ch := make(chan string, subBuffer)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			f.mu.Unlock()
			close(ch)
		})
	}
}

func (f *feedImpl) OnWSConnect(ctx context.Context, _ *melody.Session) error {
	logger.Infof(ctx, "inventory ws connect")
	return nil
}

func (f *feedImpl) OnWSMsg(ctx context.Context, s *melody.Session, b []byte) error {
	wsMsg := &common.WsMsgType{}
	if err := json.Unmarshal(b, wsMsg); err != nil {
		logger.Errorf(ctx, "OnWSMsg unmarshal err: %+v", err)
		return code.UnmarshalWSDataErr
	}

	switch feed.WSAction(wsMsg.Action) {
	case feed.Ping:
		return common.ReplyWSOk(s, wsMsg.Action, wsMsg.MsgUUID, "pong")
	case feed.FetchSheets:
		return f.onFetchSheets(ctx, s, wsMsg)
	case feed.FetchTubes:
		return f.onFetchTubes(ctx, s, wsMsg, b)
	case feed.FetchAvailable:
		return f.onFetchAvailable(ctx, s, wsMsg, b)
	default:
		logger.Errorf(ctx, "unknown ws action: %s", wsMsg.Action)
		return common.ReplyWSErr(s, wsMsg.Action, wsMsg.MsgUUID, code.UnknownWSActionErr)
	}
}

func (f *feedImpl) onFetchSheets(ctx context.Context, s *melody.Session, msg *common.WsMsgType) error {
	sheets, err := f.inv.Sheets(ctx)
	if err != nil {
		return common.ReplyWSErr(s, msg.Action, msg.MsgUUID, err)
	}
	return common.ReplyWSOk(s, msg.Action, msg.MsgUUID, sheets)
}

func (f *feedImpl) onFetchTubes(ctx context.Context, s *melody.Session, msg *common.WsMsgType, b []byte) error {
	req := &common.WSData[feed.FetchTubesReq]{}
	if err := json.Unmarshal(b, req); err != nil || req.Data.Sheet == "" {
		return common.ReplyWSErr(s, msg.Action, msg.MsgUUID, code.ParamErr)
	}
	tubes, err := f.inv.Tubes(ctx, &inventory.TubesReq{Sheet: req.Data.Sheet, CellName: req.Data.CellName})
	if err != nil {
		return common.ReplyWSErr(s, msg.Action, msg.MsgUUID, err)
	}
	return common.ReplyWSOk(s, msg.Action, msg.MsgUUID, tubes)
}

func (f *feedImpl) onFetchAvailable(ctx context.Context, s *melody.Session, msg *common.WsMsgType, b []byte) error {
	req := &common.WSData[inventory.TubeRef]{}
	if err := json.Unmarshal(b, req); err != nil || req.Data.Sheet == "" || req.Data.Row < 1 {
		return common.ReplyWSErr(s, msg.Action, msg.MsgUUID, code.ParamErr)
	}
	resp, err := f.inv.AvailableTubes(ctx, &req.Data)
	if err != nil {
		return common.ReplyWSErr(s, msg.Action, msg.MsgUUID, err)
	}
	return common.ReplyWSOk(s, msg.Action, msg.MsgUUID, resp)
}

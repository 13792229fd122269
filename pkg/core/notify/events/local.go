package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/scienceol/cellbank/pkg/common/code"
	"github.com/scienceol/cellbank/pkg/core/notify"
	"github.com/scienceol/cellbank/pkg/middleware/logger"
	"github.com/scienceol/cellbank/pkg/utils"
)

// Local delivers events to handlers registered in the same process.
type Local struct {
	mu       sync.RWMutex
	handlers map[notify.Action]notify.HandleFunc
	wait     sync.WaitGroup
}

func NewLocal() *Local {
	return &Local{handlers: make(map[notify.Action]notify.HandleFunc)}
}

func (l *Local) Registry(_ context.Context, msgName notify.Action, handleFunc notify.HandleFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.handlers[msgName]; ok {
		return code.NotifyActionAlreadyRegistryErr.WithMsg(string(msgName))
	}
	l.handlers[msgName] = handleFunc
	return nil
}

func (l *Local) Broadcast(ctx context.Context, msg *notify.SendMsg) error {
	stamp(msg)
	data, err := json.Marshal(msg)
	if err != nil {
		return code.NotifySendMsgErr.WithErr(err)
	}

	l.mu.RLock()
	handle, ok := l.handlers[msg.Channel]
	l.mu.RUnlock()
	if !ok {
		return nil
	}

	hCtx := context.WithoutCancel(ctx)
	l.wait.Add(1)
	utils.SafelyGo(func() {
		defer l.wait.Done()
		if err := handle(hCtx, string(data)); err != nil {
			logger.Errorf(hCtx, "handle local msg fail name: %s, err: %+v", msg.Channel, err)
		}
	}, func(err error) {
		logger.Errorf(hCtx, "local msg handler panic name: %s, err: %+v", msg.Channel, err)
	})
	return nil
}

func (l *Local) Close(_ context.Context) error {
	l.wait.Wait()
	return nil
}

package notify

import (
	"context"

	"github.com/scienceol/cellbank/pkg/common/uuid"
)

type Action string

const (
	InventoryModify Action = "inventory-modify"
	UsageModify     Action = "usage-modify"
)

type SendMsg struct {
	Channel   Action    `json:"action"`
	Sheet     string    `json:"sheet"`
	Data      any       `json:"data"`
	UUID      uuid.UUID `json:"uuid"`
	Timestamp int64     `json:"timestamp"`
}

type HandleFunc func(ctx context.Context, msg string) error

type MsgCenter interface {
	Registry(ctx context.Context, msgName Action, handleFunc HandleFunc) error
	Broadcast(ctx context.Context, msg *SendMsg) error
	Close(ctx context.Context) error
}

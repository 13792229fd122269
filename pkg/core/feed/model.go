package feed

import (
	"context"

	"github.com/olahol/melody"
)

type WSAction string

const (
	Ping           WSAction = "ping"
	FetchSheets    WSAction = "fetch_sheets"
	FetchTubes     WSAction = "fetch_tubes"
	FetchAvailable WSAction = "fetch_available"
)

type FetchTubesReq struct {
	Sheet    string `json:"sheet"`
	CellName string `json:"cell_name"`
}

// Service pushes inventory and usage events to websocket and SSE clients
// and answers the read-only websocket actions.
type Service interface {
	OnWSConnect(ctx context.Context, s *melody.Session) error
	OnWSMsg(ctx context.Context, s *melody.Session, b []byte) error
	OnNotify(ctx context.Context, msg string) error
	// Subscribe returns a channel of raw event payloads; cancel detaches it.
	Subscribe(ctx context.Context) (<-chan string, func())
}

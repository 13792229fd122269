package common

import (
	"encoding/json"

	"github.com/olahol/melody"
	"github.com/scienceol/cellbank/pkg/common/code"
)

type WSResp[T any] struct {
	WsMsgType
	Code code.ErrCode `json:"code"`
	Msg  string       `json:"msg,omitempty"`
	Data T            `json:"data,omitempty"`
}

func ReplyWSOk[T any](s *melody.Session, action, msgUUID string, data T) error {
	b, err := json.Marshal(&WSResp[T]{
		WsMsgType: WsMsgType{Action: action, MsgUUID: msgUUID},
		Code:      code.Success,
		Data:      data,
	})
	if err != nil {
		return err
	}
	return s.Write(b)
}

func ReplyWSErr(s *melody.Session, action, msgUUID string, err error) error {
	resp := &WSResp[any]{
		WsMsgType: WsMsgType{Action: action, MsgUUID: msgUUID},
		Code:      code.From(err),
		Msg:       err.Error(),
	}
	b, mErr := json.Marshal(resp)
	if mErr != nil {
		return mErr
	}
	return s.Write(b)
}

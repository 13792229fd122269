package code

import (
	"errors"
	"fmt"
)

type ErrCode int

const Success ErrCode = 0

const (
	UnDefineErr ErrCode = 1000 + iota
	ParamErr
	RecordNotFound
	QueryRecordErr
	CreateDataErr
	UpdateDataErr
	DeleteDataErr
)

const (
	WorkbookNotFound ErrCode = 2000 + iota
	WorkbookReadErr
	WorkbookWriteErr
	SheetNotFound
	RowNotFound
	ColumnNotFound
)

const (
	UsageLogReadErr ErrCode = 3000 + iota
	UsageLogWriteErr
	UsageNotFound
	NoTubeAvailable
	TubeAlreadyUsed
	TubeOutOfRange
	LineageGroupNotFound
)

const (
	LockAcquireErr ErrCode = 4000 + iota
	LockReleaseErr
	NotifyActionAlreadyRegistryErr
	NotifySendMsgErr
	UnmarshalWSDataErr
	UnknownWSActionErr
	ChartRenderErr
	UnknownChartErr
	ChartNoData
)

const (
	RPCHttpErr ErrCode = 5000 + iota
	RPCHttpCodeErr
	CellLineNotFound
)

var msgs = map[ErrCode]string{
	Success:                        "success",
	UnDefineErr:                    "undefined error",
	ParamErr:                       "invalid parameter",
	RecordNotFound:                 "record not found",
	QueryRecordErr:                 "query record error",
	CreateDataErr:                  "create data error",
	UpdateDataErr:                  "update data error",
	DeleteDataErr:                  "delete data error",
	WorkbookNotFound:               "workbook not found",
	WorkbookReadErr:                "read workbook error",
	WorkbookWriteErr:               "write workbook error",
	SheetNotFound:                  "sheet not found",
	RowNotFound:                    "row not found",
	ColumnNotFound:                 "column not found",
	UsageLogReadErr:                "read usage log error",
	UsageLogWriteErr:               "write usage log error",
	UsageNotFound:                  "usage entry not found",
	NoTubeAvailable:                "no tube available",
	TubeAlreadyUsed:                "tube already used",
	TubeOutOfRange:                 "tube number out of range",
	LineageGroupNotFound:           "lineage group not found",
	LockAcquireErr:                 "acquire lock error",
	LockReleaseErr:                 "release lock error",
	NotifyActionAlreadyRegistryErr: "notify action already registered",
	NotifySendMsgErr:               "send notify message error",
	UnmarshalWSDataErr:             "unmarshal websocket data error",
	UnknownWSActionErr:             "unknown websocket action",
	ChartRenderErr:                 "render chart error",
	UnknownChartErr:                "unknown chart",
	ChartNoData:                    "no data to chart",
	RPCHttpErr:                     "rpc http error",
	RPCHttpCodeErr:                 "rpc http status error",
	CellLineNotFound:               "cell line not found",
}

func (c ErrCode) String() string {
	if m, ok := msgs[c]; ok {
		return m
	}
	return fmt.Sprintf("error code %d", int(c))
}

func (c ErrCode) Error() string {
	return c.String()
}

func (c ErrCode) Code() ErrCode {
	return c
}

func (c ErrCode) WithMsg(msg string) *Error {
	return &Error{code: c, msg: msg}
}

func (c ErrCode) WithMsgf(format string, args ...any) *Error {
	return &Error{code: c, msg: fmt.Sprintf(format, args...)}
}

func (c ErrCode) WithErr(err error) *Error {
	e := &Error{code: c, err: err}
	if err != nil {
		e.msg = err.Error()
	}
	return e
}

// Error is an ErrCode carrying a detail message and an optional cause.
type Error struct {
	code ErrCode
	msg  string
	err  error
}

func (e *Error) Code() ErrCode {
	return e.code
}

func (e *Error) Msg() string {
	if e.msg == "" {
		return e.code.String()
	}
	return e.msg
}

func (e *Error) Error() string {
	if e.msg == "" {
		return e.code.String()
	}
	return fmt.Sprintf("%s: %s", e.code.String(), e.msg)
}

func (e *Error) Unwrap() error {
	return e.err
}

func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case ErrCode:
		return e.code == t
	case *Error:
		return e.code == t.code
	}
	return false
}

type coder interface {
	Code() ErrCode
}

// From extracts the ErrCode of err, UnDefineErr when err carries none.
func From(err error) ErrCode {
	if err == nil {
		return Success
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return UnDefineErr
}

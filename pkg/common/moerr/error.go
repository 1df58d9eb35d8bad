// Copyright 2021 - 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package moerr

import (
	"context"
	"fmt"
)

const defaultSqlState = "HY000"

// Error codes.  0-99 are reserved for OK-ish conditions that carry no
// information and are handled with static instances.
const (
	Ok uint16 = 0

	OkMax uint16 = 99

	// Group 1: internal errors
	ErrStart             uint16 = 20100
	ErrInternal          uint16 = 20101
	ErrOOM               uint16 = 20103
	ErrQueryInterrupted  uint16 = 20104
	ErrRowsProducedLimit uint16 = 20106

	// Group 3: invalid input
	ErrInvalidInput uint16 = 20301

	// Group 4: unexpected state
	ErrInvalidState uint16 = 20400
)

type item struct {
	sqlState string
	format   string
}

var errorItems = map[uint16]item{
	ErrInternal:          {defaultSqlState, "internal error: %s"},
	ErrOOM:               {defaultSqlState, "out of memory"},
	ErrQueryInterrupted:  {defaultSqlState, "query interrupted"},
	ErrRowsProducedLimit: {defaultSqlState, "query produced more rows than the configured limit %d"},
	ErrInvalidInput:      {defaultSqlState, "invalid input: %s"},
	ErrInvalidState:      {defaultSqlState, "invalid state %s"},
}

// Error is the single error type surfaced by the engine.  The code decides
// how callers classify an error, the message is for humans.
type Error struct {
	code     uint16
	sqlState string
	message  string
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) ErrorCode() uint16 {
	return e.code
}

func (e *Error) SqlState() string {
	return e.sqlState
}

func (e *Error) Ok() bool {
	return e.code < OkMax
}

func newError(ctx context.Context, code uint16, args ...any) *Error {
	it, has := errorItems[code]
	if !has {
		panic(fmt.Errorf("missing error item for error code %d", code))
	}
	var msg string
	if len(args) == 0 {
		msg = it.format
	} else {
		msg = fmt.Sprintf(it.format, args...)
	}
	_ = ctx
	return &Error{code: code, sqlState: it.sqlState, message: msg}
}

// IsMoErrCode reports whether err is a *Error with the given code.
func IsMoErrCode(e error, rc uint16) bool {
	if e == nil {
		return rc == Ok
	}
	me, ok := e.(*Error)
	if !ok {
		return false
	}
	return me.code == rc
}

func NewInternalError(ctx context.Context, msg string, args ...any) *Error {
	return newError(ctx, ErrInternal, fmt.Sprintf(msg, args...))
}

func NewOOM(ctx context.Context) *Error {
	return newError(ctx, ErrOOM)
}

func NewQueryInterrupted(ctx context.Context) *Error {
	return newError(ctx, ErrQueryInterrupted)
}

func NewRowsProducedLimit(ctx context.Context, limit int64) *Error {
	return newError(ctx, ErrRowsProducedLimit, limit)
}

func NewInvalidInput(ctx context.Context, msg string, args ...any) *Error {
	return newError(ctx, ErrInvalidInput, fmt.Sprintf(msg, args...))
}

func NewInvalidState(ctx context.Context, msg string, args ...any) *Error {
	return newError(ctx, ErrInvalidState, fmt.Sprintf(msg, args...))
}

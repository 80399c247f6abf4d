// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transportmock provides a generated-style gomock double for
// transport.Broadcaster, in the shape mockgen would produce and that
// the teacher's validatorsmock/sendermock packages follow.
package transportmock

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/luxfi/narwhal/transport"
)

// Broadcaster is a mock of the transport.Broadcaster interface.
type Broadcaster struct {
	ctrl     *gomock.Controller
	recorder *BroadcasterMockRecorder
}

// BroadcasterMockRecorder is the recorder for Broadcaster.
type BroadcasterMockRecorder struct {
	mock *Broadcaster
}

// NewBroadcaster creates a new mock instance.
func NewBroadcaster(ctrl *gomock.Controller) *Broadcaster {
	mock := &Broadcaster{ctrl: ctrl}
	mock.recorder = &BroadcasterMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *Broadcaster) EXPECT() *BroadcasterMockRecorder {
	return m.recorder
}

// Send mocks base method.
func (m *Broadcaster) Send(ctx context.Context, to []transport.Address, frame []byte) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Send", ctx, to, frame)
	ret0, _ := ret[0].(error)
	return ret0
}

// Send indicates an expected call of Send.
func (mr *BroadcasterMockRecorder) Send(ctx, to, frame any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Send", reflect.TypeOf((*Broadcaster)(nil).Send), ctx, to, frame)
}

// Broadcast mocks base method.
func (m *Broadcaster) Broadcast(ctx context.Context, to []transport.Address, frame []byte) ([]transport.Address, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Broadcast", ctx, to, frame)
	ret0, _ := ret[0].([]transport.Address)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Broadcast indicates an expected call of Broadcast.
func (mr *BroadcasterMockRecorder) Broadcast(ctx, to, frame any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Broadcast", reflect.TypeOf((*Broadcaster)(nil).Broadcast), ctx, to, frame)
}

var _ transport.Broadcaster = (*Broadcaster)(nil)

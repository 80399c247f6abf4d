// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"context"
	"fmt"
	"sync"
)

// LocalNetwork is an in-process Broadcaster wiring every registered
// address to a bounded inbox channel. It is the transport cmd/replica
// uses to run several replicas in one binary, and what the worker and
// primary package tests use in place of a real socket.
type LocalNetwork struct {
	mu      sync.RWMutex
	inboxes map[Address]chan []byte
}

// NewLocalNetwork returns an empty network with no registered addresses.
func NewLocalNetwork() *LocalNetwork {
	return &LocalNetwork{inboxes: make(map[Address]chan []byte)}
}

// Register creates addr's inbox with the given capacity and returns
// the receive side for the owning task to consume.
func (n *LocalNetwork) Register(addr Address, capacity int) <-chan []byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	ch := make(chan []byte, capacity)
	n.inboxes[addr] = ch
	return ch
}

func (n *LocalNetwork) inbox(addr Address) (chan []byte, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	ch, ok := n.inboxes[addr]
	return ch, ok
}

// Send is best-effort: unknown addresses and full inboxes are silently
// skipped rather than blocking the caller indefinitely.
func (n *LocalNetwork) Send(ctx context.Context, to []Address, frame []byte) error {
	for _, addr := range to {
		ch, ok := n.inbox(addr)
		if !ok {
			continue
		}
		select {
		case ch <- frame:
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}

// Broadcast retries each address until its inbox accepts the frame or
// ctx is cancelled, then returns the addresses that acked.
func (n *LocalNetwork) Broadcast(ctx context.Context, to []Address, frame []byte) ([]Address, error) {
	acked := make([]Address, 0, len(to))
	for _, addr := range to {
		ch, ok := n.inbox(addr)
		if !ok {
			continue
		}
		select {
		case ch <- frame:
			acked = append(acked, addr)
		case <-ctx.Done():
			return acked, fmt.Errorf("transport: broadcast cancelled: %w", ctx.Err())
		}
	}
	return acked, nil
}

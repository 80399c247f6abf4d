// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/luxfi/narwhal/config"
	"github.com/luxfi/narwhal/log"
	"github.com/luxfi/narwhal/wire"
)

// PeerReceiver decodes batch frames pushed by peer workers during
// dissemination and forwards them to the Batch Processor for storage,
// the receiving half of §4.2's quorum dissemination: every worker that
// acks a Broadcast must actually retain what it acked.
type PeerReceiver struct {
	mode config.BatchIDMode
	in   <-chan []byte
	out  chan<- SealedBatch
	log  log.Logger
}

// NewPeerReceiver wires a PeerReceiver between a transport inbox and
// the Batch Processor's input. mode must match the committee's
// configured BatchIDMode so locally re-derived digests agree with the
// sender's.
func NewPeerReceiver(mode config.BatchIDMode, in <-chan []byte, out chan<- SealedBatch, l log.Logger) *PeerReceiver {
	return &PeerReceiver{mode: mode, in: in, out: out, log: l}
}

func (r *PeerReceiver) Run(ctx context.Context) error {
	for {
		select {
		case frame, ok := <-r.in:
			if !ok {
				return fmt.Errorf("worker: peer receiver input channel closed")
			}
			if err := r.handle(ctx, frame); err != nil {
				r.log.Warn("dropping malformed worker frame", zap.Error(err))
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *PeerReceiver) handle(ctx context.Context, frame []byte) error {
	var msg wire.WorkerMessage
	if err := wire.Unmarshal(frame, &msg); err != nil {
		return fmt.Errorf("decode worker frame: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("validate worker frame: %w", err)
	}
	switch msg.Kind {
	case wire.WorkerKindBatch:
		digest := deriveDigest(r.mode, *msg.Batch)
		select {
		case r.out <- SealedBatch{Block: *msg.Batch, Digest: digest}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	default:
		r.log.Debug("ignoring unhandled worker message kind", zap.Int("kind", int(msg.Kind)))
		return nil
	}
}

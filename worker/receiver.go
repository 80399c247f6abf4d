// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package worker is the data-dissemination tier (§2): Receiver, Batch
// Maker, Quorum Disseminator, Batch Processor and the Primary
// Connector bridge. Each task owns its state exclusively and
// communicates only via channels, per §5's task-local concurrency
// model.
package worker

import (
	"context"

	"github.com/luxfi/narwhal/log"
	"github.com/luxfi/narwhal/types"
)

// Receiver accepts client transactions and forwards them to the Batch
// Maker over a bounded channel (§2: "Accepts client transactions over
// the network, pushes them to the batch maker.").
type Receiver struct {
	out chan<- types.Transaction
	log log.Logger
}

// NewReceiver wires a Receiver to the Batch Maker's input channel.
func NewReceiver(out chan<- types.Transaction, l log.Logger) *Receiver {
	return &Receiver{out: out, log: l}
}

// Submit accepts one transaction, blocking if the channel is full
// (§5: "a channel full condition applies backpressure to the producer").
func (r *Receiver) Submit(ctx context.Context, tx types.Transaction) error {
	select {
	case r.out <- tx:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

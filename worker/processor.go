// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/luxfi/narwhal/log"
	"github.com/luxfi/narwhal/store"
	"github.com/luxfi/narwhal/types"
	"github.com/luxfi/narwhal/wire"
)

// PendingProposal is one (TxHash, ElectionId) pair the Processor hands
// to the Primary Connector once a batch is stored. A batch is itself
// the unit the election protocol agrees on, so its digest serves as
// both the TxHash and the ElectionId (§3: "ElectionId ... derived from
// the proposed unit").
type PendingProposal struct {
	TxHash     types.Digest
	ElectionID types.Digest
}

// Processor stores quorum-disseminated batches by digest and forwards
// their (digest, election-id) pair to the local primary (§4.3).
// Idempotent under duplicate delivery: a second store of the same
// digest is a no-op.
type Processor struct {
	blobs store.BlobStore
	in    <-chan SealedBatch
	out   chan<- PendingProposal
	log   log.Logger
}

// NewProcessor wires a Processor between the Disseminator's output and
// the Primary Connector's input.
func NewProcessor(blobs store.BlobStore, in <-chan SealedBatch, out chan<- PendingProposal, l log.Logger) *Processor {
	return &Processor{blobs: blobs, in: in, out: out, log: l}
}

func (p *Processor) Run(ctx context.Context) error {
	for {
		select {
		case batch, ok := <-p.in:
			if !ok {
				return fmt.Errorf("worker: processor input channel closed")
			}
			if err := p.process(ctx, batch); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Processor) process(ctx context.Context, batch SealedBatch) error {
	body, err := wire.Marshal(wire.NewBatchMessage(batch.Block))
	if err != nil {
		return fmt.Errorf("worker: processor: encode batch: %w", err)
	}
	if err := p.blobs.Put(batch.Digest, body); err != nil {
		return fmt.Errorf("worker: processor: store batch %s: %w", batch.Digest, err)
	}

	proposal := PendingProposal{TxHash: batch.Digest, ElectionID: batch.Digest}
	select {
	case p.out <- proposal:
		p.log.Debug("batch stored and forwarded", zap.Stringer("digest", batch.Digest))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/luxfi/narwhal/config"
	"github.com/luxfi/narwhal/log"
	"github.com/luxfi/narwhal/types"
)

// SealedBatch pairs a sealed batch with its derived digest, the unit
// the Batch Maker hands to the Quorum Disseminator (§4.1).
type SealedBatch struct {
	Block  types.Block
	Digest types.Digest
}

// BatchMaker assembles client transactions into batches, sealed by
// size or time (§4.1). It owns the current batch exclusively; all
// mutation happens inside Run.
type BatchMaker struct {
	params config.Parameters
	in     <-chan types.Transaction
	out    chan<- SealedBatch
	log    log.Logger

	current     []types.Transaction
	currentSize int
}

// NewBatchMaker wires a BatchMaker between the Receiver's output and
// the Disseminator's input.
func NewBatchMaker(params config.Parameters, in <-chan types.Transaction, out chan<- SealedBatch, l log.Logger) *BatchMaker {
	return &BatchMaker{
		params:  params,
		in:      in,
		out:     out,
		log:     l,
		current: make([]types.Transaction, 0, params.BatchSize/64),
	}
}

// Run drives the seal-by-size-or-time loop until ctx is cancelled or
// the input channel closes. Grounded on the original batch maker's
// tokio::select! loop: one branch drains a transaction and seals if
// the size threshold is crossed, the other reseals on timer fire if
// the batch is non-empty (§4.1).
func (b *BatchMaker) Run(ctx context.Context) error {
	timer := time.NewTimer(b.params.MaxBatchDelay)
	defer timer.Stop()

	for {
		select {
		case tx, ok := <-b.in:
			if !ok {
				return fmt.Errorf("worker: batch maker input channel closed")
			}
			b.current = append(b.current, tx)
			b.currentSize += tx.Size()
			if b.currentSize >= b.params.BatchSize {
				if err := b.seal(ctx); err != nil {
					return err
				}
				resetTimer(timer, b.params.MaxBatchDelay)
			}

		case <-timer.C:
			if len(b.current) > 0 {
				if err := b.seal(ctx); err != nil {
					return err
				}
			}
			resetTimer(timer, b.params.MaxBatchDelay)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// seal serializes the current batch, derives its digest and sends it
// downstream. Send failure is fatal (§4.1: "Downstream send failure is
// fatal ... batch data loss must not be silently swallowed").
func (b *BatchMaker) seal(ctx context.Context) error {
	batch := types.Block{Txs: b.current}
	b.current = make([]types.Transaction, 0, b.params.BatchSize/64)
	b.currentSize = 0

	digest := b.deriveDigest(batch)

	select {
	case b.out <- SealedBatch{Block: batch, Digest: digest}:
		b.log.Debug("sealed batch", zap.Int("txs", len(batch.Txs)), zap.Stringer("digest", digest))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker: batch maker: %w", ctx.Err())
	}
}

func (b *BatchMaker) deriveDigest(batch types.Block) types.Digest {
	return deriveDigest(b.params.BatchIDMode, batch)
}

// deriveDigest applies one of the configured batch-id derivation rules
// (§4.1). It is shared with PeerReceiver, which must derive the same
// digest a remote Batch Maker would for an identical batch.
func deriveDigest(mode config.BatchIDMode, batch types.Block) types.Digest {
	switch mode {
	case config.BatchIDContentHash:
		return contentHashDigest(batch)
	default:
		return types.BatchIDFromFirstTx(batch)
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

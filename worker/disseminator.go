// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/luxfi/ids"

	"github.com/luxfi/narwhal/config"
	"github.com/luxfi/narwhal/log"
	"github.com/luxfi/narwhal/transport"
	"github.com/luxfi/narwhal/wire"
)

// PeerWorker is one other worker sharing this worker's id across the
// committee, the fan-out set the Quorum Disseminator broadcasts to
// (§4.2: "all other workers sharing this worker id across the committee").
type PeerWorker struct {
	Author  ids.NodeID
	Address transport.Address
}

// Disseminator reliably broadcasts sealed batches to peer workers and
// declares a batch quorum-disseminated once stake-weighted acks reach
// 2f+1, including self (§4.2). Until then the batch must not be
// forwarded to the Batch Processor.
type Disseminator struct {
	committee *config.Committee
	self      ids.NodeID
	peers     []PeerWorker
	bcast     transport.Broadcaster

	in  <-chan SealedBatch
	out chan<- SealedBatch
	log log.Logger
}

// NewDisseminator wires a Disseminator between the Batch Maker's
// output and the Batch Processor's input.
func NewDisseminator(
	committee *config.Committee,
	self ids.NodeID,
	peers []PeerWorker,
	bcast transport.Broadcaster,
	in <-chan SealedBatch,
	out chan<- SealedBatch,
	l log.Logger,
) *Disseminator {
	return &Disseminator{
		committee: committee,
		self:      self,
		peers:     peers,
		bcast:     bcast,
		in:        in,
		out:       out,
		log:       l,
	}
}

// Run drains sealed batches, disseminates each to quorum, and forwards
// it downstream once quorum-disseminated.
func (d *Disseminator) Run(ctx context.Context) error {
	for {
		select {
		case batch, ok := <-d.in:
			if !ok {
				return fmt.Errorf("worker: disseminator input channel closed")
			}
			if err := d.disseminate(ctx, batch); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *Disseminator) disseminate(ctx context.Context, batch SealedBatch) error {
	msg := wire.NewBatchMessage(batch.Block)
	frame, err := wire.Marshal(msg)
	if err != nil {
		return fmt.Errorf("worker: disseminator: encode batch: %w", err)
	}

	addrByAuthor := make(map[transport.Address]ids.NodeID, len(d.peers))
	addrs := make([]transport.Address, 0, len(d.peers))
	for _, p := range d.peers {
		if p.Author == d.self {
			continue
		}
		addrByAuthor[p.Address] = p.Author
		addrs = append(addrs, p.Address)
	}

	acked, err := d.bcast.Broadcast(ctx, addrs, frame)
	if err != nil {
		d.log.Warn("dissemination broadcast failed", zap.Error(err), zap.Stringer("digest", batch.Digest))
	}

	stake := d.committee.Stake(d.self)
	for _, addr := range acked {
		if author, ok := addrByAuthor[addr]; ok {
			stake += d.committee.Stake(author)
		}
	}

	if stake < d.committee.QuorumThreshold() {
		d.log.Warn("batch did not reach quorum dissemination, dropping",
			zap.Stringer("digest", batch.Digest), zap.Uint64("stake", stake))
		return nil
	}

	select {
	case d.out <- batch:
		d.log.Debug("batch quorum-disseminated", zap.Stringer("digest", batch.Digest))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

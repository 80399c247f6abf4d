// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package worker

import (
	"context"
	"testing"
	"time"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/narwhal/log"
	"github.com/luxfi/narwhal/store"
	"github.com/luxfi/narwhal/types"
)

func TestProcessorStoresAndForwards(t *testing.T) {
	require := require.New(t)

	blobs := store.NewMemStore()
	in := make(chan SealedBatch, 1)
	out := make(chan PendingProposal, 1)
	p := NewProcessor(blobs, in, out, log.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	digest := ids.GenerateTestID()
	batch := SealedBatch{Block: types.Block{Txs: []types.Transaction{{ID: ids.GenerateTestID()}}}, Digest: digest}
	in <- batch

	select {
	case pp := <-out:
		require.Equal(digest, pp.TxHash)
		require.Equal(digest, pp.ElectionID)
	case <-time.After(time.Second):
		t.Fatal("expected a forwarded pending proposal")
	}

	require.True(blobs.Has(digest))
}

func TestProcessorIsIdempotentUnderDuplicateDelivery(t *testing.T) {
	require := require.New(t)

	blobs := store.NewMemStore()
	in := make(chan SealedBatch, 2)
	out := make(chan PendingProposal, 2)
	p := NewProcessor(blobs, in, out, log.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	digest := ids.GenerateTestID()
	batch := SealedBatch{Block: types.Block{Txs: []types.Transaction{{ID: digest}}}, Digest: digest}
	in <- batch
	in <- batch

	for i := 0; i < 2; i++ {
		select {
		case <-out:
		case <-time.After(time.Second):
			t.Fatal("expected both deliveries to be forwarded")
		}
	}
	require.True(blobs.Has(digest))
}

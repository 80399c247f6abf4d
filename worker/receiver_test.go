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
	"github.com/luxfi/narwhal/types"
)

func TestReceiverForwardsToBatchMaker(t *testing.T) {
	require := require.New(t)

	out := make(chan types.Transaction, 1)
	r := NewReceiver(out, log.NewNop())

	tx := types.Transaction{ID: ids.GenerateTestID()}
	require.NoError(r.Submit(context.Background(), tx))

	select {
	case got := <-out:
		require.Equal(tx, got)
	case <-time.After(time.Second):
		t.Fatal("expected the transaction to reach the batch maker channel")
	}
}

func TestReceiverSubmitRespectsContextCancellation(t *testing.T) {
	require := require.New(t)

	out := make(chan types.Transaction) // unbuffered and never drained
	r := NewReceiver(out, log.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Submit(ctx, types.Transaction{ID: ids.GenerateTestID()})
	require.ErrorIs(err, context.Canceled)
}

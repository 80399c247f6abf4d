// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package types is the data model shared across workers and primaries
// (§3): transactions, batches, headers, votes, certificates and the
// round payloads that fall out of a decided header.
package types

import "github.com/luxfi/ids"

// Round is the primary's monotone logical DAG height.
type Round uint64

// VoteRound is the election-internal round used by the voting state
// machine. It is independent of Round and may exceed it.
type VoteRound uint64

// Digest is a 32-byte content hash, reused as both TxHash and
// ElectionId throughout this package.
type Digest = ids.ID

// Transaction is one client-submitted unit accepted by a worker's
// Receiver. The balance commitment and representative point named by
// the data model belong to the external signer/transport collaborators
// and are carried here only as opaque payload bytes.
type Transaction struct {
	ID        Digest
	Payload   []byte
	Signature []byte
}

// Size is the transaction's contribution to a batch's size accounting
// (§4.1: "size in bytes = sum(tx.payload.len()+32)").
func (t Transaction) Size() int {
	return len(t.Payload) + 32
}

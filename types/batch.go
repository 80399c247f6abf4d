// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

// Block is the ordered sequence of transactions a Batch Maker seals
// (§3: "Batch / Block"). The wire name `Block` is kept distinct from
// the worker's internal notion of a sealed batch purely to mirror
// the grammar in §6 ("WorkerMessage ::= Batch(Block) | ...").
type Block struct {
	Txs []Transaction
}

// Size is the sum of the block's transactions' sizes.
func (b Block) Size() int {
	var n int
	for _, tx := range b.Txs {
		n += tx.Size()
	}
	return n
}

// BatchIDFromFirstTx derives a 32-byte batch identifier by the default
// derivation rule (§4.1): the first transaction's id, left-padded or
// truncated to 32 bytes. It is deterministic but weak; it does not
// depend on the rest of the batch's contents.
func BatchIDFromFirstTx(b Block) Digest {
	if len(b.Txs) == 0 {
		return Digest{}
	}
	return b.Txs[0].ID
}

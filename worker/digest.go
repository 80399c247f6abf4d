// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package worker

import (
	"github.com/luxfi/narwhal/crypto"
	"github.com/luxfi/narwhal/types"
	"github.com/luxfi/narwhal/wire"
)

// contentHashDigest derives a batch id from a domain-separated hash of
// the serialized batch, the stricter alternative §4.1 permits in place
// of the default first-transaction-id rule.
func contentHashDigest(batch types.Block) types.Digest {
	body, err := wire.Marshal(batch)
	if err != nil {
		// Serialization of our own just-sealed batch cannot fail under
		// the canonical CBOR encoder; a digest of the empty body is a
		// safe, deterministic fallback rather than panicking here.
		return crypto.Hash(crypto.TagBatch, nil)
	}
	return crypto.Hash(crypto.TagBatch, body)
}

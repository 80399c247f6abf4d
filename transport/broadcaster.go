// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transport is the message transport external collaborator
// (§6): "two primitives: (1) best-effort broadcast send(addrs, bytes);
// (2) reliable broadcast broadcast(addrs, bytes) -> future<acks> which
// retries until the transport reports delivery or permanently fails."
// This package specifies the contract as an interface (grounded on the
// teacher's networking/sender.Sender shape) plus one concrete
// in-process implementation for single-machine demos and tests.
package transport

import (
	"context"

	"github.com/luxfi/ids"
)

// Address names one authority's reachable endpoint for one of the
// five address classes the committee declares per authority (§6):
// transactions, worker-to-worker, worker-to-primary, primary-to-worker,
// primary-to-primary.
type Address string

// Broadcaster is the transport contract every worker and primary task
// holds. Frames are opaque, length-prefixed bytes; this module's
// callers always pass wire.Marshal output.
type Broadcaster interface {
	// Send is best-effort: it does not retry and does not report
	// delivery. Used for the Proposer's header broadcast and the
	// Election state machine's vote broadcast (§4.4, §4.5).
	Send(ctx context.Context, to []Address, frame []byte) error

	// Broadcast is reliable: it retries until every address
	// acknowledges or the context is cancelled, then reports which
	// addresses acked. Used by the Quorum Disseminator, which needs to
	// know when stake-weighted acks reach 2f+1 (§4.2).
	Broadcast(ctx context.Context, to []Address, frame []byte) (acked []Address, err error)
}

// AddressBook resolves the reachable address for a given node id under
// one address class from committee configuration. It is an interface
// rather than a method on config.Committee so the transport package
// does not import config for a single lookup.
type AddressBook interface {
	AddressOf(id ids.NodeID) (Address, bool)
}

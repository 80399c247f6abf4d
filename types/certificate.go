// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import "github.com/luxfi/ids"

// VoteSig pairs one authority's signature with its identity, the unit
// a Votes Aggregator collects into a Certificate (§4.6).
type VoteSig struct {
	Author    ids.NodeID
	Signature []byte
}

// Certificate attests that a header reached quorum_of_votes: at least
// quorum_threshold distinct-authority Votes, each carrying that
// authority's signature over its own ballot on this header's election,
// except the header author's implicit vote, whose Signature is empty
// (§3 "Certificate", §8 invariant 6). AggregateSignature rolls the
// non-empty per-ballot BLS signatures into one via crypto.Aggregate;
// Votes itself remains the per-author list §8 invariant 6 is checked
// against.
type Certificate struct {
	Header             Header
	Votes              []VoteSig
	AggregateSignature []byte
}

// RoundPayload is what the Certificates Aggregator emits once a
// round's certificates reach quorum (§4.7): the accumulated list of
// certificate digests for that round.
type RoundPayload struct {
	Round        Round
	Certificates []Digest
}

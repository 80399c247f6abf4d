// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import "github.com/luxfi/ids"

// Proposal is one (TxHash, ElectionId) pair a Header carries.
type Proposal struct {
	TxHash     Digest
	ElectionID Digest
}

// Header is a replica's round-bound proposal (§3 "Header"). Its id is
// a domain-separated digest of its own contents, computed once at
// construction by the Proposer and never recomputed.
type Header struct {
	Round     Round
	Author    ids.NodeID
	Proposals []Proposal
	ID        Digest
	Signature []byte
}

// ContainsElection reports whether h proposes election.
func (h Header) ContainsElection(election Digest) bool {
	for _, p := range h.Proposals {
		if p.ElectionID == election {
			return true
		}
	}
	return false
}

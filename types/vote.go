// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package types

import "github.com/luxfi/ids"

// Vote is one authority's ballot for a (TxHash, ElectionId) pair at a
// given vote-round (§3 "Vote"). ProposalRound is the round of the
// header that first introduced ElectionID; VoteRound is the
// election-internal round and may exceed ProposalRound.
type Vote struct {
	VoteRound     VoteRound
	TxHash        Digest
	ElectionID    Digest
	ProposalRound Round
	Commit        bool
	Author        ids.NodeID
	HeaderID      Digest
	Signature     []byte
}

// VoteKey identifies the tally slot a vote contributes to: at most one
// vote per (author, election, vote-round) is counted, later votes
// replacing earlier ones (§4.5).
type VoteKey struct {
	Author     ids.NodeID
	ElectionID Digest
	VoteRound  VoteRound
}

func (v Vote) Key() VoteKey {
	return VoteKey{Author: v.Author, ElectionID: v.ElectionID, VoteRound: v.VoteRound}
}

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primary

import (
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/narwhal/config"
	"github.com/luxfi/narwhal/crypto"
	"github.com/luxfi/narwhal/types"
)

// ErrAuthorityReuse is returned when the same author votes on a
// header's certificate twice (§4.6, §8 scenario 4).
var ErrAuthorityReuse = fmt.Errorf("primary: authority reuse in votes aggregator")

// VotesAggregator turns 2f+1 distinct-authority votes on one header
// into a Certificate (§4.6). It refuses further input once quorum has
// been reached exactly once.
type VotesAggregator struct {
	committee *config.Committee
	header    types.Header

	weight uint64
	votes  []types.VoteSig
	used   map[ids.NodeID]struct{}
	done   bool
}

// NewVotesAggregator creates an aggregator for one header.
func NewVotesAggregator(committee *config.Committee, header types.Header) *VotesAggregator {
	return &VotesAggregator{
		committee: committee,
		header:    header,
		used:      make(map[ids.NodeID]struct{}),
	}
}

// Append records one vote. Returns a non-nil Certificate exactly once,
// the call at which stake reaches quorum_threshold.
func (a *VotesAggregator) Append(v types.Vote) (*types.Certificate, error) {
	if a.done {
		return nil, nil
	}
	if _, dup := a.used[v.Author]; dup {
		return nil, ErrAuthorityReuse
	}
	a.used[v.Author] = struct{}{}
	a.votes = append(a.votes, types.VoteSig{Author: v.Author, Signature: v.Signature})
	a.weight += a.committee.Stake(v.Author)

	if a.weight < a.committee.QuorumThreshold() {
		return nil, nil
	}
	a.done = true

	// Roll the accumulated per-author vote signatures into one aggregate
	// BLS signature alongside the per-author list (§4.6). The header
	// author's own implicit round-0 vote (§4.4 process_header step a)
	// carries no signature of its own — its authenticity rides on the
	// header's signature instead — so it is counted toward quorum like
	// any other ballot but skipped here rather than failing aggregation.
	sigs := make([]*crypto.Signature, 0, len(a.votes))
	for _, vs := range a.votes {
		if len(vs.Signature) == 0 {
			continue
		}
		sig, err := crypto.SignatureFromBytes(vs.Signature)
		if err != nil {
			return nil, fmt.Errorf("primary: decode vote signature for aggregation: %w", err)
		}
		sigs = append(sigs, sig)
	}
	var aggSig []byte
	if len(sigs) > 0 {
		agg, err := crypto.Aggregate(sigs)
		if err != nil {
			return nil, fmt.Errorf("primary: aggregate vote signatures: %w", err)
		}
		aggSig = crypto.SignatureToBytes(agg)
	}

	cert := types.Certificate{
		Header:             a.header,
		Votes:              append([]types.VoteSig(nil), a.votes...),
		AggregateSignature: aggSig,
	}
	return &cert, nil
}

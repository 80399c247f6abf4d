// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primary

import (
	"fmt"

	"github.com/luxfi/ids"

	"github.com/luxfi/narwhal/config"
	"github.com/luxfi/narwhal/crypto"
	"github.com/luxfi/narwhal/types"
	"github.com/luxfi/narwhal/wire"
)

// errUnknownAuthor and errBadSignature are the §7 "invalid or missing
// signature" protocol errors: dropped-and-logged by the caller, never
// fatal.
var (
	errUnknownAuthor = fmt.Errorf("primary: message author not in committee")
	errBadSignature  = fmt.Errorf("primary: signature verification failed")
)

// signableHeader carries only the fields a Header's id and signature
// are computed over, excluding the id and signature themselves.
type signableHeader struct {
	Round     types.Round
	Author    ids.NodeID
	Proposals []types.Proposal
}

// signHeader computes h.ID as a domain-separated digest of h's content
// and sets h.Signature to this replica's signature over that digest
// (§3 "Header": "id = digest(header)").
func signHeader(signer crypto.Signer, h *types.Header) error {
	body, err := wire.Marshal(signableHeader{Round: h.Round, Author: h.Author, Proposals: h.Proposals})
	if err != nil {
		return fmt.Errorf("primary: encode header for signing: %w", err)
	}
	h.ID = crypto.Hash(crypto.TagHeader, body)
	sig, err := signer.Sign(h.ID[:])
	if err != nil {
		return fmt.Errorf("primary: sign header: %w", err)
	}
	h.Signature = crypto.SignatureToBytes(sig)
	return nil
}

// signableVote mirrors signableHeader for votes.
type signableVote struct {
	VoteRound     types.VoteRound
	TxHash        types.Digest
	ElectionID    types.Digest
	ProposalRound types.Round
	Commit        bool
	Author        ids.NodeID
	HeaderID      types.Digest
}

// signVote sets v.Signature to this replica's signature over a
// domain-separated digest of v's content.
func signVote(signer crypto.Signer, v *types.Vote) error {
	body, err := wire.Marshal(signableVote{
		VoteRound:     v.VoteRound,
		TxHash:        v.TxHash,
		ElectionID:    v.ElectionID,
		ProposalRound: v.ProposalRound,
		Commit:        v.Commit,
		Author:        v.Author,
		HeaderID:      v.HeaderID,
	})
	if err != nil {
		return fmt.Errorf("primary: encode vote for signing: %w", err)
	}
	digest := crypto.Hash(crypto.TagVote, body)
	sig, err := signer.Sign(digest[:])
	if err != nil {
		return fmt.Errorf("primary: sign vote: %w", err)
	}
	v.Signature = crypto.SignatureToBytes(sig)
	return nil
}

// verifyHeader checks h.Signature against h.Author's committee key over
// the same digest signHeader computed (§7: a header with an invalid or
// missing signature is dropped and logged, never acted on).
func verifyHeader(committee *config.Committee, h types.Header) error {
	authority, ok := committee.Authority(h.Author)
	if !ok {
		return errUnknownAuthor
	}
	body, err := wire.Marshal(signableHeader{Round: h.Round, Author: h.Author, Proposals: h.Proposals})
	if err != nil {
		return fmt.Errorf("primary: encode header for verification: %w", err)
	}
	want := crypto.Hash(crypto.TagHeader, body)
	if want != h.ID {
		return errBadSignature
	}
	sig, err := crypto.SignatureFromBytes(h.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadSignature, err)
	}
	if !crypto.Verify(authority.PublicKey, sig, h.ID[:]) {
		return errBadSignature
	}
	return nil
}

// verifyVote checks v.Signature against v.Author's committee key over
// the same digest signVote computed.
func verifyVote(committee *config.Committee, v types.Vote) error {
	authority, ok := committee.Authority(v.Author)
	if !ok {
		return errUnknownAuthor
	}
	body, err := wire.Marshal(signableVote{
		VoteRound:     v.VoteRound,
		TxHash:        v.TxHash,
		ElectionID:    v.ElectionID,
		ProposalRound: v.ProposalRound,
		Commit:        v.Commit,
		Author:        v.Author,
		HeaderID:      v.HeaderID,
	})
	if err != nil {
		return fmt.Errorf("primary: encode vote for verification: %w", err)
	}
	digest := crypto.Hash(crypto.TagVote, body)
	sig, err := crypto.SignatureFromBytes(v.Signature)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadSignature, err)
	}
	if !crypto.Verify(authority.PublicKey, sig, digest[:]) {
		return errBadSignature
	}
	return nil
}

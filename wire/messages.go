// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"fmt"

	"github.com/luxfi/crypto/bls"

	"github.com/luxfi/narwhal/types"
)

// WorkerKind discriminates the WorkerMessage sum type
// (§6: "WorkerMessage ::= Batch(Block) | BatchRequest(...)").
type WorkerKind byte

const (
	WorkerKindBatch WorkerKind = iota + 1
	WorkerKindBatchRequest
)

// WorkerMessage is the tagged union workers exchange. Exactly one of
// Batch or BatchRequest is populated, selected by Kind.
type WorkerMessage struct {
	Kind           WorkerKind
	Batch          *types.Block   `cbor:",omitempty"`
	RequestDigests []types.Digest `cbor:",omitempty"`
	RequestOrigin  []byte         `cbor:",omitempty"`
}

// NewBatchMessage wraps a sealed batch for dissemination.
func NewBatchMessage(b types.Block) WorkerMessage {
	return WorkerMessage{Kind: WorkerKindBatch, Batch: &b}
}

// NewBatchRequestMessage requests the listed digests from origin.
func NewBatchRequestMessage(digests []types.Digest, origin *bls.PublicKey) WorkerMessage {
	return WorkerMessage{
		Kind:           WorkerKindBatchRequest,
		RequestDigests: digests,
		RequestOrigin:  originBytes(origin),
	}
}

func originBytes(pk *bls.PublicKey) []byte {
	if pk == nil {
		return nil
	}
	return bls.PublicKeyToCompressedBytes(pk)
}

// PrimaryKind discriminates the PrimaryMessage sum type
// (§6: "PrimaryMessage ::= Header(Header) | Vote(Vote) | Certificate(Certificate)").
type PrimaryKind byte

const (
	PrimaryKindHeader PrimaryKind = iota + 1
	PrimaryKindVote
	PrimaryKindCertificate
)

// PrimaryMessage is the tagged union primaries exchange. Exactly one
// of Header, Vote or Certificate is populated, selected by Kind.
type PrimaryMessage struct {
	Kind        PrimaryKind
	Header      *types.Header      `cbor:",omitempty"`
	Vote        *types.Vote        `cbor:",omitempty"`
	Certificate *types.Certificate `cbor:",omitempty"`
}

func NewHeaderMessage(h types.Header) PrimaryMessage {
	return PrimaryMessage{Kind: PrimaryKindHeader, Header: &h}
}

func NewVoteMessage(v types.Vote) PrimaryMessage {
	return PrimaryMessage{Kind: PrimaryKindVote, Vote: &v}
}

func NewCertificateMessage(c types.Certificate) PrimaryMessage {
	return PrimaryMessage{Kind: PrimaryKindCertificate, Certificate: &c}
}

// Validate checks that exactly the field named by Kind is populated,
// guarding against a malformed or truncated inbound frame (§7
// "Serialization: deserialize failure on an inbound frame - message
// dropped, logged").
func (m PrimaryMessage) Validate() error {
	switch m.Kind {
	case PrimaryKindHeader:
		if m.Header == nil {
			return fmt.Errorf("wire: header message missing header")
		}
	case PrimaryKindVote:
		if m.Vote == nil {
			return fmt.Errorf("wire: vote message missing vote")
		}
	case PrimaryKindCertificate:
		if m.Certificate == nil {
			return fmt.Errorf("wire: certificate message missing certificate")
		}
	default:
		return fmt.Errorf("wire: unknown primary message kind %d", m.Kind)
	}
	return nil
}

func (m WorkerMessage) Validate() error {
	switch m.Kind {
	case WorkerKindBatch:
		if m.Batch == nil {
			return fmt.Errorf("wire: batch message missing block")
		}
	case WorkerKindBatchRequest:
		if len(m.RequestDigests) == 0 {
			return fmt.Errorf("wire: batch request missing digests")
		}
	default:
		return fmt.Errorf("wire: unknown worker message kind %d", m.Kind)
	}
	return nil
}

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package crypto wraps the external signing and hashing oracles the
// core consensus engine treats as collaborators (spec §6): a signer
// (sign/verify, BLS-backed) and a hasher (domain-separated 32-byte
// digests, blake3-backed). Neither primitive's internals are this
// package's concern; it only fixes one concrete scheme per the §9
// open question ("fix a single signing scheme and document it").
package crypto

import (
	"fmt"

	"github.com/luxfi/crypto/bls"
)

// Signature is an opaque, fixed-format BLS signature.
type Signature = bls.Signature

// PublicKey is an opaque BLS public key.
type PublicKey = bls.PublicKey

// Signer signs messages on behalf of one authority and exposes its
// public key. Verification and aggregation are the package-level
// Verify and Aggregate functions.
type Signer interface {
	PublicKey() *PublicKey
	Sign(msg []byte) (*Signature, error)
}

// Verify checks a single signature against a public key and message.
func Verify(pk *PublicKey, sig *Signature, msg []byte) bool {
	if pk == nil || sig == nil {
		return false
	}
	return bls.Verify(pk, sig, msg)
}

// Aggregate combines N signatures (over possibly different messages,
// as BLS aggregate signatures allow) into one. Used to fold a
// Certificate's 2f+1 vote signatures into a single aggregate signature
// alongside the per-author list the spec requires.
func Aggregate(sigs []*Signature) (*Signature, error) {
	if len(sigs) == 0 {
		return nil, fmt.Errorf("crypto: cannot aggregate zero signatures")
	}
	agg, err := bls.AggregateSignatures(sigs)
	if err != nil {
		return nil, fmt.Errorf("crypto: aggregate signatures: %w", err)
	}
	return agg, nil
}

// SignatureToBytes serializes a signature for wire transport.
func SignatureToBytes(sig *Signature) []byte {
	if sig == nil {
		return nil
	}
	return bls.SignatureToBytes(sig)
}

// SignatureFromBytes deserializes a signature received over the wire.
func SignatureFromBytes(b []byte) (*Signature, error) {
	sig, err := bls.SignatureFromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode signature: %w", err)
	}
	return sig, nil
}

// PublicKeyToBytes serializes a public key.
func PublicKeyToBytes(pk *PublicKey) []byte {
	if pk == nil {
		return nil
	}
	return bls.PublicKeyToCompressedBytes(pk)
}

// PublicKeyFromBytes deserializes a public key.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	pk, err := bls.PublicKeyFromCompressedBytes(b)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode public key: %w", err)
	}
	return pk, nil
}

// blsSigner is the concrete Signer backed by a local BLS secret key.
type blsSigner struct {
	sk *bls.SecretKey
	pk *bls.PublicKey
}

// NewSigner generates a fresh BLS keypair and wraps it as a Signer.
func NewSigner() (Signer, error) {
	sk, err := bls.NewSecretKey()
	if err != nil {
		return nil, fmt.Errorf("crypto: generate BLS key: %w", err)
	}
	return &blsSigner{sk: sk, pk: sk.PublicKey()}, nil
}

func (s *blsSigner) PublicKey() *PublicKey {
	return s.pk
}

func (s *blsSigner) Sign(msg []byte) (*Signature, error) {
	sig, err := s.sk.Sign(msg)
	if err != nil {
		return nil, fmt.Errorf("crypto: sign: %w", err)
	}
	return sig, nil
}

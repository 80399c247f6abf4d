// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	require := require.New(t)

	signer, err := NewSigner()
	require.NoError(err)

	msg := []byte("header bytes")
	sig, err := signer.Sign(msg)
	require.NoError(err)

	require.True(Verify(signer.PublicKey(), sig, msg))
	require.False(Verify(signer.PublicKey(), sig, []byte("different bytes")))
}

func TestVerifyRejectsNilInputs(t *testing.T) {
	require := require.New(t)

	require.False(Verify(nil, nil, []byte("x")))

	signer, err := NewSigner()
	require.NoError(err)
	sig, err := signer.Sign([]byte("x"))
	require.NoError(err)

	require.False(Verify(nil, sig, []byte("x")))
	require.False(Verify(signer.PublicKey(), nil, []byte("x")))
}

func TestAggregateSignatures(t *testing.T) {
	require := require.New(t)

	var sigs []*Signature
	for i := 0; i < 3; i++ {
		signer, err := NewSigner()
		require.NoError(err)
		sig, err := signer.Sign([]byte("same message"))
		require.NoError(err)
		sigs = append(sigs, sig)
	}

	agg, err := Aggregate(sigs)
	require.NoError(err)
	require.NotNil(agg)

	_, err = Aggregate(nil)
	require.Error(err)
}

func TestSignatureRoundTrip(t *testing.T) {
	require := require.New(t)

	signer, err := NewSigner()
	require.NoError(err)
	sig, err := signer.Sign([]byte("payload"))
	require.NoError(err)

	b := SignatureToBytes(sig)
	got, err := SignatureFromBytes(b)
	require.NoError(err)
	require.Equal(SignatureToBytes(got), b)

	require.Nil(SignatureToBytes(nil))
}

func TestPublicKeyRoundTrip(t *testing.T) {
	require := require.New(t)

	signer, err := NewSigner()
	require.NoError(err)

	b := PublicKeyToBytes(signer.PublicKey())
	got, err := PublicKeyFromBytes(b)
	require.NoError(err)
	require.Equal(b, PublicKeyToBytes(got))

	require.Nil(PublicKeyToBytes(nil))
}

func TestHashIsDeterministicAndDomainSeparated(t *testing.T) {
	require := require.New(t)

	msg := []byte("same content")
	h1 := Hash(TagHeader, msg)
	h2 := Hash(TagHeader, msg)
	require.Equal(h1, h2)

	hVote := Hash(TagVote, msg)
	require.NotEqual(h1, hVote, "same bytes under different domain tags must hash differently")

	hOther := Hash(TagHeader, []byte("different content"))
	require.NotEqual(h1, hOther)
}

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
)

func TestMemStorePutGetHas(t *testing.T) {
	require := require.New(t)

	s := NewMemStore()
	digest := ids.GenerateTestID()

	require.False(s.Has(digest))
	_, ok := s.Get(digest)
	require.False(ok)

	require.NoError(s.Put(digest, []byte("payload")))
	require.True(s.Has(digest))

	got, ok := s.Get(digest)
	require.True(ok)
	require.Equal([]byte("payload"), got)
}

func TestMemStorePutIsIdempotentForIdenticalContent(t *testing.T) {
	require := require.New(t)

	s := NewMemStore()
	digest := ids.GenerateTestID()

	require.NoError(s.Put(digest, []byte("payload")))
	require.NoError(s.Put(digest, []byte("payload")))

	got, ok := s.Get(digest)
	require.True(ok)
	require.Equal([]byte("payload"), got)
}

func TestMemStorePutRejectsContentMismatch(t *testing.T) {
	require := require.New(t)

	s := NewMemStore()
	digest := ids.GenerateTestID()

	require.NoError(s.Put(digest, []byte("first")))
	err := s.Put(digest, []byte("second"))
	require.ErrorIs(err, ErrContentMismatch)
}

func TestMemStoreGetReturnsACopy(t *testing.T) {
	require := require.New(t)

	s := NewMemStore()
	digest := ids.GenerateTestID()
	original := []byte("payload")
	require.NoError(s.Put(digest, original))

	got, ok := s.Get(digest)
	require.True(ok)
	got[0] = 'X'

	got2, ok := s.Get(digest)
	require.True(ok)
	require.Equal([]byte("payload"), got2, "mutating a returned slice must not corrupt the store")
}

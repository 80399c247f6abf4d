// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primary

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/narwhal/crypto"
	"github.com/luxfi/narwhal/types"
)

// testVoteSig produces a real BLS signature over msg so VotesAggregator
// can decode and aggregate it, the way an authority's actual vote
// signature would arrive on the wire.
func testVoteSig(t *testing.T, msg []byte) []byte {
	t.Helper()
	signer, err := crypto.NewSigner()
	require.NoError(t, err)
	sig, err := signer.Sign(msg)
	require.NoError(t, err)
	return crypto.SignatureToBytes(sig)
}

func TestVotesAggregatorEmitsCertificateExactlyAtQuorum(t *testing.T) {
	require := require.New(t)

	committee, authors := testCommittee(t, 1, 1, 1, 1)
	header := types.Header{Round: 0, Author: authors[0], ID: ids.GenerateTestID()}
	agg := NewVotesAggregator(committee, header)

	cert, err := agg.Append(types.Vote{Author: authors[0], Signature: testVoteSig(t, []byte("sig0"))})
	require.NoError(err)
	require.Nil(cert)

	cert, err = agg.Append(types.Vote{Author: authors[1], Signature: testVoteSig(t, []byte("sig1"))})
	require.NoError(err)
	require.Nil(cert, "2 of 4 stake is below quorum_threshold 3")

	cert, err = agg.Append(types.Vote{Author: authors[2], Signature: testVoteSig(t, []byte("sig2"))})
	require.NoError(err)
	require.NotNil(cert)
	require.Equal(header, cert.Header)
	require.Len(cert.Votes, 3)
	require.NotEmpty(cert.AggregateSignature, "certificate must carry an aggregate of the quorum's vote signatures")

	// Further input is refused after quorum (§4.6: "refuses further
	// input for h" once quorum is reached exactly once).
	cert, err = agg.Append(types.Vote{Author: authors[3], Signature: testVoteSig(t, []byte("sig3"))})
	require.NoError(err)
	require.Nil(cert)
}

// TestVotesAggregatorRejectsAuthorityReuse is §8 scenario 4.
func TestVotesAggregatorRejectsAuthorityReuse(t *testing.T) {
	require := require.New(t)

	committee, authors := testCommittee(t, 1, 1, 1, 1)
	header := types.Header{Round: 0, Author: authors[0], ID: ids.GenerateTestID()}
	agg := NewVotesAggregator(committee, header)

	_, err := agg.Append(types.Vote{Author: authors[0], Signature: testVoteSig(t, []byte("sig0"))})
	require.NoError(err)

	_, err = agg.Append(types.Vote{Author: authors[0], Signature: testVoteSig(t, []byte("sig0-again"))})
	require.ErrorIs(err, ErrAuthorityReuse)

	// A different author still advances toward quorum afterward.
	cert, err := agg.Append(types.Vote{Author: authors[1], Signature: testVoteSig(t, []byte("sig1"))})
	require.NoError(err)
	require.Nil(cert)

	cert, err = agg.Append(types.Vote{Author: authors[2], Signature: testVoteSig(t, []byte("sig2"))})
	require.NoError(err)
	require.NotNil(cert)
	require.Len(cert.Votes, 3, "the rejected duplicate must not be counted in the certificate")
}

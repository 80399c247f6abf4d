// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primary

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/narwhal/types"
)

func testCertificate(author ids.NodeID) types.Certificate {
	return types.Certificate{Header: types.Header{Author: author, ID: ids.GenerateTestID()}}
}

func TestCertificatesAggregatorEmitsAtQuorumAndResets(t *testing.T) {
	require := require.New(t)

	committee, authors := testCommittee(t, 1, 1, 1, 1)
	agg := NewCertificatesAggregator(committee)

	require.Nil(agg.Append(types.Round(0), testCertificate(authors[0])))
	require.Nil(agg.Append(types.Round(0), testCertificate(authors[1])))

	out := agg.Append(types.Round(0), testCertificate(authors[2]))
	require.Len(out, 3)

	// The aggregator reset after emission; a new round of certificates
	// accumulates from zero again instead of re-firing immediately.
	require.Nil(agg.Append(types.Round(1), testCertificate(authors[0])))
}

func TestCertificatesAggregatorDuplicateOriginIsSilentNoOp(t *testing.T) {
	require := require.New(t)

	committee, authors := testCommittee(t, 1, 1, 1, 1)
	agg := NewCertificatesAggregator(committee)

	require.Nil(agg.Append(types.Round(0), testCertificate(authors[0])))
	// A second certificate from the same origin must not count twice
	// toward quorum (§4.7: "Duplicate origin is a silent no-op").
	require.Nil(agg.Append(types.Round(0), testCertificate(authors[0])))
	require.Nil(agg.Append(types.Round(0), testCertificate(authors[1])))

	out := agg.Append(types.Round(0), testCertificate(authors[2]))
	require.Len(out, 3, "only 3 distinct origins should be counted despite 4 Append calls")
}

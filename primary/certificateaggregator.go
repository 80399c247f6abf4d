// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primary

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/narwhal/config"
	"github.com/luxfi/narwhal/crypto"
	"github.com/luxfi/narwhal/types"
)

// CertificatesAggregator collects one round's certificates by
// distinct origin (the certificate's header author) and emits the
// accumulated certificate digests once stake reaches quorum_threshold
// (§4.7). A duplicate origin is a silent no-op, not an error.
type CertificatesAggregator struct {
	committee *config.Committee

	weight       uint64
	certificates []types.Digest
	used         map[ids.NodeID]struct{}
}

// NewCertificatesAggregator creates an aggregator for one DAG round.
func NewCertificatesAggregator(committee *config.Committee) *CertificatesAggregator {
	return &CertificatesAggregator{committee: committee, used: make(map[ids.NodeID]struct{})}
}

// Append records one certificate. Returns a non-nil digest list
// exactly on the call at which stake reaches quorum_threshold; the
// aggregator resets afterward so a new round payload can accumulate.
func (a *CertificatesAggregator) Append(round types.Round, cert types.Certificate) []types.Digest {
	origin := cert.Header.Author
	if _, dup := a.used[origin]; dup {
		return nil
	}
	a.used[origin] = struct{}{}

	digest := crypto.Hash(crypto.TagCertificate, cert.Header.ID[:])
	a.certificates = append(a.certificates, digest)
	a.weight += a.committee.Stake(origin)

	if a.weight >= a.committee.QuorumThreshold() {
		out := a.certificates
		a.weight = 0
		a.certificates = nil
		a.used = make(map[ids.NodeID]struct{})
		return out
	}
	return nil
}

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config holds the committee, stake and timing parameters shared
// immutably by every component once a replica starts (§5: "Committee/
// config/signing key are immutable and shared by clone").
package config

import (
	"github.com/luxfi/crypto/bls"
	"github.com/luxfi/ids"
)

// Authority is one committee member: a fixed-size identity, its BLS
// public key, and its stake weight, kept together in one record (see
// DESIGN.md, "address-vs-key dualism"). The ID is supplied by the
// caller; it is not derived from PublicKey, and nothing checks that
// the two correspond.
type Authority struct {
	ID        ids.NodeID
	PublicKey *bls.PublicKey
	Stake     uint64
}

// Committee is the fixed set of authorities participating in consensus
// during an epoch. It is built once and never mutated (§5).
type Committee struct {
	authorities []Authority
	byID        map[ids.NodeID]Authority
	totalStake  uint64
}

// NewCommittee builds a Committee from an authority list, rejecting
// duplicate ids. The authority order is preserved for deterministic
// iteration (e.g. broadcast address fan-out).
func NewCommittee(authorities []Authority) (*Committee, error) {
	byID := make(map[ids.NodeID]Authority, len(authorities))
	var total uint64
	for _, a := range authorities {
		if _, exists := byID[a.ID]; exists {
			return nil, ErrDuplicateAuthority
		}
		byID[a.ID] = a
		total += a.Stake
	}
	return &Committee{
		authorities: append([]Authority(nil), authorities...),
		byID:        byID,
		totalStake:  total,
	}, nil
}

// Authorities returns the ordered authority list.
func (c *Committee) Authorities() []Authority {
	return append([]Authority(nil), c.authorities...)
}

// Authority looks up a committee member by id.
func (c *Committee) Authority(id ids.NodeID) (Authority, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// Contains reports whether id is a committee member.
func (c *Committee) Contains(id ids.NodeID) bool {
	_, ok := c.byID[id]
	return ok
}

// Stake returns the stake of an authority, or 0 if it is unknown.
func (c *Committee) Stake(id ids.NodeID) uint64 {
	return c.byID[id].Stake
}

// Size returns the number of authorities, N.
func (c *Committee) Size() int {
	return len(c.authorities)
}

// TotalStake returns the sum of all authorities' stake.
func (c *Committee) TotalStake() uint64 {
	return c.totalStake
}

// MaxByzantineStake returns f, the maximum stake that may be Byzantine:
// f = (total_stake-1)/3, integer division, matching N = 3f+1.
func (c *Committee) MaxByzantineStake() uint64 {
	if c.totalStake == 0 {
		return 0
	}
	return (c.totalStake - 1) / 3
}

// QuorumThreshold returns 2f+1, the stake-weighted quorum size.
func (c *Committee) QuorumThreshold() uint64 {
	return 2*c.MaxByzantineStake() + 1
}

// ValidityThreshold returns f+1.
func (c *Committee) ValidityThreshold() uint64 {
	return c.MaxByzantineStake() + 1
}

// StakeOf sums the stake of a set of distinct authority ids. Callers are
// responsible for deduplicating ids before calling this (the election
// tally already guarantees at most one entry per author).
func (c *Committee) StakeOf(authors []ids.NodeID) uint64 {
	var sum uint64
	for _, id := range authors {
		sum += c.Stake(id)
	}
	return sum
}

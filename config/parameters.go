// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "time"

// BatchIDMode selects how the Batch Maker derives a batch's digest from
// its contents (§4.1: "a hash-of-contents is an acceptable stricter
// alternative").
type BatchIDMode int

const (
	// BatchIDFirstTx left-pads/truncates the first transaction's id to
	// 32 bytes. This is the spec's default and is deterministic but
	// weak (it does not depend on the rest of the batch).
	BatchIDFirstTx BatchIDMode = iota
	// BatchIDContentHash derives the batch id from a domain-separated
	// hash of the serialized batch. Stricter; does not affect protocol
	// correctness provided uniqueness holds in expectation.
	BatchIDContentHash
)

// Parameters holds the timing and sizing knobs shared by workers and
// primaries. Grounded on config/parameters.go's Mainnet/Testnet/Local
// constructor shape.
type Parameters struct {
	// BatchSize is the worker's preferred batch size in bytes (§4.1).
	BatchSize int
	// MaxBatchDelay is the worker's seal-by-time bound (§4.1).
	MaxBatchDelay time.Duration
	// BatchIDMode selects the batch id derivation rule.
	BatchIDMode BatchIDMode

	// HeaderSize is the primary's max proposals per header (§4.4).
	HeaderSize int
	// MaxHeaderDelay is the primary's seal-by-time bound for headers (§4.4).
	MaxHeaderDelay time.Duration

	// VoteRoundTimeout is the per-(election,vote-round) tally timer
	// interval (§4.5, §5).
	VoteRoundTimeout time.Duration

	// ChannelCapacity bounds every SPSC channel wiring the pipeline
	// (§5's default of 100_000).
	ChannelCapacity int

	// SyncRetryDelay is a retry interval that Validate requires to be
	// positive. No component in this module reads it: the quorum
	// disseminator does not retry a broadcast that fell short of quorum.
	SyncRetryDelay time.Duration

	// Byzantine disables all active participation for this replica
	// (§4.4's testing affordance: a silent Byzantine replica).
	Byzantine bool
}

// Validate checks Parameters for internally-inconsistent values.
func (p Parameters) Validate() error {
	if p.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if p.HeaderSize <= 0 {
		return ErrInvalidHeaderSize
	}
	if p.MaxBatchDelay <= 0 || p.MaxHeaderDelay <= 0 || p.VoteRoundTimeout <= 0 || p.SyncRetryDelay <= 0 {
		return ErrInvalidDelay
	}
	if p.ChannelCapacity <= 0 {
		return ErrInvalidChannelCapacity
	}
	return nil
}

// DefaultChannelCapacity is §5's default bounded-channel capacity.
const DefaultChannelCapacity = 100_000

// Local returns parameters tuned for a single-process, low-latency
// development network (mirrors config/parameters.go's Local()).
func Local() Parameters {
	return Parameters{
		BatchSize:        500_000,
		MaxBatchDelay:    100 * time.Millisecond,
		BatchIDMode:      BatchIDFirstTx,
		HeaderSize:       32,
		MaxHeaderDelay:   200 * time.Millisecond,
		VoteRoundTimeout: 500 * time.Millisecond,
		ChannelCapacity:  DefaultChannelCapacity,
		SyncRetryDelay:   50 * time.Millisecond,
	}
}

// Testnet returns parameters tuned for a small multi-host network.
func Testnet() Parameters {
	p := Local()
	p.MaxHeaderDelay = time.Second
	p.VoteRoundTimeout = 2 * time.Second
	p.SyncRetryDelay = 500 * time.Millisecond
	return p
}

// Mainnet returns conservative production parameters.
func Mainnet() Parameters {
	p := Testnet()
	p.BatchSize = 1_000_000
	p.MaxBatchDelay = 200 * time.Millisecond
	p.MaxHeaderDelay = 2 * time.Second
	p.VoteRoundTimeout = 5 * time.Second
	return p
}

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package primary is the agreement tier (§2): the Proposer, the
// per-election voting state machine, the Votes and Certificates
// aggregators, and the Payload Receiver.
package primary

import (
	"sync"

	"github.com/luxfi/ids"

	"github.com/luxfi/narwhal/config"
	"github.com/luxfi/narwhal/types"
)

// TimerState is a tally's per-round timer latch (§4.5, §5). It fires
// exactly once and then stays Expired.
type TimerState int

const (
	Running TimerState = iota
	Expired
)

// ballot is one author's current vote at a tally round; re-inserting
// for the same author replaces the previous ballot (§4.5: "later votes
// from the same author at the same round replace earlier ones").
type ballot struct {
	txHash Digest
	commit bool
}

// Digest is a local alias kept for readability inside the primary package.
type Digest = types.Digest

// Tally accumulates one election's votes for a single vote-round
// (§3 "Tally"). Stake is summed over the distinct authors present,
// never over message count.
type Tally struct {
	committee *config.Committee

	mu      sync.Mutex
	timerMu sync.Mutex
	ballots map[ids.NodeID]ballot
	timer   TimerState
}

// NewTally creates an empty tally with its timer Running. The timer is
// driven externally (the caller calls Expire once its interval
// elapses); Tally itself holds no goroutine.
func NewTally(committee *config.Committee) *Tally {
	return &Tally{committee: committee, ballots: make(map[ids.NodeID]ballot)}
}

// Insert records author's ballot at this round, replacing any prior
// ballot from the same author.
func (t *Tally) Insert(author ids.NodeID, txHash Digest, commit bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ballots[author] = ballot{txHash: txHash, commit: commit}
}

// Voted reports whether author has any ballot recorded in this round.
func (t *Tally) Voted(author ids.NodeID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.ballots[author]
	return ok
}

// TotalVotes returns total_votes(r): the stake of distinct authors
// present in this round, regardless of commit bit.
func (t *Tally) TotalVotes() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	var sum uint64
	for author := range t.ballots {
		sum += t.committee.Stake(author)
	}
	return sum
}

// QuorumOfVotes returns (txHash, true) if some tx_hash has
// non-commit stake-weighted support >= quorum_threshold.
func (t *Tally) QuorumOfVotes() (Digest, bool) {
	return t.quorumFor(false)
}

// QuorumOfCommits returns (txHash, true) if some tx_hash has
// commit stake-weighted support >= quorum_threshold.
func (t *Tally) QuorumOfCommits() (Digest, bool) {
	return t.quorumFor(true)
}

func (t *Tally) quorumFor(commit bool) (Digest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	stakes := make(map[Digest]uint64)
	for author, b := range t.ballots {
		if b.commit != commit {
			continue
		}
		stakes[b.txHash] += t.committee.Stake(author)
	}
	threshold := t.committee.QuorumThreshold()
	for tx, stake := range stakes {
		if stake >= threshold {
			return tx, true
		}
	}
	return Digest{}, false
}

// Expire latches the timer to Expired. Safe to call more than once;
// only the first call has effect (§5: "tally timers fire exactly once
// and latch to Expired").
func (t *Tally) Expire() {
	t.timerMu.Lock()
	defer t.timerMu.Unlock()
	t.timer = Expired
}

// TimerState reports the current latch state.
func (t *Tally) TimerState() TimerState {
	t.timerMu.Lock()
	defer t.timerMu.Unlock()
	return t.timer
}

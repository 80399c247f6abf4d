// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primary

import (
	"sync"
	"time"

	"github.com/luxfi/ids"

	"github.com/luxfi/narwhal/config"
	"github.com/luxfi/narwhal/types"
)

// Outcome is the pure result of feeding one vote into an Election: at
// most one outbound vote to insert-and-broadcast, or a decision.
// Splitting the transition into data like this (rather than having
// insertion directly recurse into broadcast) keeps the mutual
// recursion the original handler expressed ("handle vote" emitting a
// vote that must itself be "handled") as an explicit, boundedly deep
// loop in the Proposer instead (§9 "Recursive voting handlers").
type Outcome struct {
	Outbound  *types.Vote
	Decided   bool
	DecidedTx Digest
}

// Election is one unit of agreement's full per-vote-round state
// (§3 "Election", §4.5). All mutation happens through InsertVote; once
// Decided is true no further insertion mutates the decision.
type Election struct {
	committee *config.Committee

	mu        sync.Mutex
	tallies   map[types.VoteRound]*Tally
	armed     map[types.VoteRound]bool
	highest   *Digest
	commit    *Digest
	proof     types.VoteRound
	decided   bool
	decidedTx Digest
}

// NewElection creates an empty election.
func NewElection(committee *config.Committee) *Election {
	return &Election{committee: committee, tallies: make(map[types.VoteRound]*Tally)}
}

// Decided reports whether the election has reached a decision, and
// the decided tx_hash if so.
func (e *Election) Decided() (Digest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.decidedTx, e.decided
}

// TallyAt returns the tally for round r, creating it if this is the
// first vote seen at r.
func (e *Election) TallyAt(r types.VoteRound) *Tally {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tallyLocked(r)
}

func (e *Election) tallyLocked(r types.VoteRound) *Tally {
	t, ok := e.tallies[r]
	if !ok {
		t = NewTally(e.committee)
		e.tallies[r] = t
	}
	return t
}

func (e *Election) peekTallyLocked(r types.VoteRound) *Tally {
	return e.tallies[r]
}

func (e *Election) updateHighestLocked(tx Digest) {
	if e.highest == nil || tx.Compare(*e.highest) > 0 {
		h := tx
		e.highest = &h
	}
}

// InsertVote applies the four ordered transition rules of §4.5 to vote
// v, evaluated in order; the first whose predicate holds fires.
func (e *Election) InsertVote(v types.Vote, self ids.NodeID) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.decided {
		return Outcome{}
	}

	r := v.VoteRound
	tally := e.tallyLocked(r)
	tally.Insert(v.Author, v.TxHash, v.Commit)
	e.updateHighestLocked(v.TxHash)

	return e.evaluateLocked(r, self, v.ElectionID, v.ProposalRound, v.HeaderID)
}

// CheckTimeout re-evaluates the §4.5 transition rules for vote-round r
// without inserting a new ballot. It is the re-entry point a round-r
// tally timer's fire must drive (§5 "{Running, Expired}" latch, §4.5
// rule 3's "timer(r) = Expired" disjunct): that disjunct can only ever
// become true between votes, so something must re-run the rules when
// it flips, not just when a new vote arrives. A no-op if round r has no
// tally yet or the election is already decided.
func (e *Election) CheckTimeout(r types.VoteRound, self ids.NodeID, electionID types.Digest, proposalRound types.Round, headerID types.Digest) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.decided {
		return Outcome{}
	}
	if e.peekTallyLocked(r) == nil {
		return Outcome{}
	}
	return e.evaluateLocked(r, self, electionID, proposalRound, headerID)
}

// ArmTimeout arms round r's one-shot tally timer the first time it is
// requested for this election, so §4.5 rule 3's first disjunct and
// §5's timer latch are driven by wall-clock time rather than staying
// permanently Running. fire is invoked once, after d elapses and the
// tally itself has already latched to Expired; it must re-enter the
// election via CheckTimeout, since a bare latch flip doesn't
// re-evaluate any transition.
func (e *Election) ArmTimeout(r types.VoteRound, d time.Duration, fire func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.decided {
		return
	}
	if e.armed == nil {
		e.armed = make(map[types.VoteRound]bool)
	}
	if e.armed[r] {
		return
	}
	e.armed[r] = true

	tally := e.tallyLocked(r)
	time.AfterFunc(d, func() {
		tally.Expire()
		fire()
	})
}

// evaluateLocked runs the four ordered transition rules against round
// r's current tally contents. Callers must hold e.mu. By the time this
// runs, r's tally holds at least one ballot (either just inserted by
// InsertVote, or the reason CheckTimeout's timer was armed in the first
// place), so e.highest is always set — rule 4's fallback never needs a
// bare incoming vote's tx_hash.
func (e *Election) evaluateLocked(r types.VoteRound, self ids.NodeID, electionID types.Digest, proposalRound types.Round, headerID types.Digest) Outcome {
	tally := e.tallyLocked(r)

	// Rule 1: Decision.
	if x, ok := tally.QuorumOfCommits(); ok {
		e.decided = true
		e.decidedTx = x
		return Outcome{Decided: true, DecidedTx: x}
	}

	nextTally := e.peekTallyLocked(r + 1)
	selfVotedNext := nextTally != nil && nextTally.Voted(self)

	// Rule 2: Commit step.
	if x, ok := tally.QuorumOfVotes(); ok && !selfVotedNext {
		e.commit = &x
		e.proof = r
		outbound := types.Vote{
			VoteRound:     r + 1,
			TxHash:        x,
			ElectionID:    electionID,
			ProposalRound: proposalRound,
			Commit:        true,
			Author:        self,
			HeaderID:      headerID,
		}
		return Outcome{Outbound: &outbound}
	}

	selfVotedHere := tally.Voted(self)
	quorum := e.committee.QuorumThreshold()
	total := e.committee.TotalStake()
	timerExpired := tally.TimerState() == Expired
	votesNow := tally.TotalVotes()

	// Rule 3: Vote-change step.
	if selfVotedHere && ((votesNow >= quorum && timerExpired) || votesNow == total) && !selfVotedNext {
		x := *e.highest
		committed := false
		if e.commit != nil {
			x = *e.commit
			committed = true
		}
		outbound := types.Vote{
			VoteRound:     r + 1,
			TxHash:        x,
			ElectionID:    electionID,
			ProposalRound: proposalRound,
			Commit:        committed,
			Author:        self,
			HeaderID:      headerID,
		}
		return Outcome{Outbound: &outbound}
	}

	// Rule 4: Initial vote step.
	if !selfVotedHere {
		x := *e.highest
		commit := false
		if e.commit != nil {
			x = *e.commit
		}
		outbound := types.Vote{
			VoteRound:     r,
			TxHash:        x,
			ElectionID:    electionID,
			ProposalRound: proposalRound,
			Commit:        commit,
			Author:        self,
			HeaderID:      headerID,
		}
		return Outcome{Outbound: &outbound}
	}

	return Outcome{}
}

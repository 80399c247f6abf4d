// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primary

import (
	"testing"
	"time"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/narwhal/types"
)

func newVote(round types.VoteRound, author ids.NodeID, tx Digest, commit bool) types.Vote {
	return types.Vote{VoteRound: round, TxHash: tx, ElectionID: ids.GenerateTestID(), Author: author, Commit: commit}
}

// TestElectionHappyPath mirrors §8 scenario 1: all four replicas vote
// the same tx_hash at round 0, reach quorum_of_votes, commit at round
// 1, reach quorum_of_commits, and decide.
func TestElectionHappyPath(t *testing.T) {
	require := require.New(t)

	committee, authors := testCommittee(t, 1, 1, 1, 1)
	self := authors[0]
	e := NewElection(committee)
	tx := ids.GenerateTestID()

	// self's own implicit round-0 vote, as processHeader would insert it.
	out := e.InsertVote(newVote(0, self, tx, false), self)
	require.Nil(out.Outbound)
	require.False(out.Decided)

	out = e.InsertVote(newVote(0, authors[1], tx, false), self)
	require.Nil(out.Outbound)

	// Third distinct author pushes stake to quorum_threshold (3): the
	// commit step (rule 2) fires and self emits its own round-1 commit vote.
	out = e.InsertVote(newVote(0, authors[2], tx, false), self)
	require.NotNil(out.Outbound)
	require.Equal(types.VoteRound(1), out.Outbound.VoteRound)
	require.Equal(tx, out.Outbound.TxHash)
	require.True(out.Outbound.Commit)
	require.Equal(self, out.Outbound.Author)

	// Feed self's own commit vote back in, as the proposer's re-process loop would.
	out = e.InsertVote(*out.Outbound, self)
	require.Nil(out.Outbound)
	require.False(out.Decided)

	// The other two correct replicas broadcast their own round-1 commit votes.
	out = e.InsertVote(newVote(1, authors[1], tx, true), self)
	require.False(out.Decided)

	out = e.InsertVote(newVote(1, authors[2], tx, true), self)
	require.True(out.Decided)
	require.Equal(tx, out.DecidedTx)

	decidedTx, decided := e.Decided()
	require.True(decided)
	require.Equal(tx, decidedTx)
}

// TestElectionVoteChangeOnAllVoted mirrors §8 scenario 3: a split vote
// where every authority has voted (total_votes = N) forces the
// vote-change step even before any per-round timer expires, and all
// correct replicas converge on the same deterministic tie-break.
func TestElectionVoteChangeOnAllVoted(t *testing.T) {
	require := require.New(t)

	committee, authors := testCommittee(t, 1, 1, 1, 1)
	self := authors[0]
	e := NewElection(committee)

	t1, t2 := ids.GenerateTestID(), ids.GenerateTestID()
	highest := t1
	if t2.Compare(t1) > 0 {
		highest = t2
	}

	out := e.InsertVote(newVote(0, self, t1, false), self)
	require.Nil(out.Outbound)
	out = e.InsertVote(newVote(0, authors[1], t1, false), self)
	require.Nil(out.Outbound)
	out = e.InsertVote(newVote(0, authors[2], t2, false), self)
	require.Nil(out.Outbound)

	// The fourth and last vote brings total_votes(0) to N=4 with no
	// tx_hash at quorum: rule 3 fires on the deterministic tie-break.
	out = e.InsertVote(newVote(0, authors[3], t2, false), self)
	require.NotNil(out.Outbound)
	require.Equal(types.VoteRound(1), out.Outbound.VoteRound)
	require.Equal(highest, out.Outbound.TxHash)
	require.False(out.Outbound.Commit)
}

// TestElectionVoteChangeRequiresTimerBelowQuorum checks that reaching
// quorum stake at a round without every authority voting requires the
// per-round timer to have expired before rule 3 fires.
func TestElectionVoteChangeRequiresTimerBelowQuorum(t *testing.T) {
	require := require.New(t)

	committee, authors := testCommittee(t, 1, 1, 1, 1, 1) // N=5, f=(5-1)/3=1, quorum=2*1+1=3
	self := authors[0]
	e := NewElection(committee)

	t1, t2 := ids.GenerateTestID(), ids.GenerateTestID()

	out := e.InsertVote(newVote(0, self, t1, false), self)
	require.Nil(out.Outbound)
	out = e.InsertVote(newVote(0, authors[1], t2, false), self)
	require.Nil(out.Outbound)

	// total_votes(0) = 2 < N = 5 and below quorum_threshold: no rule fires yet.
	require.Nil(out.Outbound)
	require.False(out.Decided)

	// A third distinct author brings total_votes(0) to quorum_threshold,
	// but with the timer still Running rule 3 does not fire.
	third := newVote(0, authors[2], t2, false)
	out = e.InsertVote(third, self)
	require.Nil(out.Outbound, "quorum-sized participation with the timer still Running fires nothing")

	tally := e.TallyAt(0)
	require.Equal(Running, tally.TimerState())
	tally.Expire()

	// Re-insertion (e.g. a duplicate delivery) at the same round now
	// satisfies "total_votes(r) >= quorum and timer expired" once a third
	// distinct author is present.
	out = e.InsertVote(third, self)
	require.NotNil(out.Outbound, "expired timer plus quorum-sized participation should force a vote-change")
	require.Equal(types.VoteRound(1), out.Outbound.VoteRound)
}

// TestElectionDecidedIsSticky checks that once decided, no further
// insertion mutates the decision (§3 Election invariant).
func TestElectionDecidedIsSticky(t *testing.T) {
	require := require.New(t)

	committee, authors := testCommittee(t, 1, 1, 1, 1)
	self := authors[0]
	e := NewElection(committee)
	tx := ids.GenerateTestID()

	e.InsertVote(newVote(0, self, tx, false), self)
	e.InsertVote(newVote(0, authors[1], tx, false), self)
	out := e.InsertVote(newVote(0, authors[2], tx, false), self)
	require.NotNil(out.Outbound)
	e.InsertVote(*out.Outbound, self)
	e.InsertVote(newVote(1, authors[1], tx, true), self)
	out = e.InsertVote(newVote(1, authors[2], tx, true), self)
	require.True(out.Decided)

	other := ids.GenerateTestID()
	out = e.InsertVote(newVote(2, authors[3], other, false), self)
	require.Equal(Outcome{}, out)

	decidedTx, decided := e.Decided()
	require.True(decided)
	require.Equal(tx, decidedTx)
}

// TestElectionArmTimeoutDrivesVoteChange exercises rule 3's first
// disjunct end-to-end through the wall-clock timer, rather than a
// hand-called Tally.Expire() (see
// TestElectionVoteChangeRequiresTimerBelowQuorum): a split below
// N-of-N participation must still force a vote-change once the
// armed timer actually fires.
func TestElectionArmTimeoutDrivesVoteChange(t *testing.T) {
	require := require.New(t)

	committee, authors := testCommittee(t, 1, 1, 1, 1, 1) // N=5, quorum=3
	self := authors[0]
	e := NewElection(committee)
	electionID := ids.GenerateTestID()
	headerID := ids.GenerateTestID()

	t1, t2 := ids.GenerateTestID(), ids.GenerateTestID()

	v1 := types.Vote{VoteRound: 0, TxHash: t1, ElectionID: electionID, ProposalRound: 0, Author: self, HeaderID: headerID}
	out := e.InsertVote(v1, self)
	require.Nil(out.Outbound)

	fired := make(chan struct{}, 1)
	e.ArmTimeout(0, 20*time.Millisecond, func() { fired <- struct{}{} })

	out = e.InsertVote(types.Vote{VoteRound: 0, TxHash: t2, ElectionID: electionID, ProposalRound: 0, Author: authors[1], HeaderID: headerID}, self)
	require.Nil(out.Outbound, "2 of 5 stake with timer still Running fires nothing")

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("armed timer never fired")
	}
	require.Equal(Expired, e.TallyAt(0).TimerState())

	// A third distinct author now brings total_votes(0) to quorum
	// (3) with the timer Expired: rule 3 fires on re-evaluation.
	out = e.CheckTimeout(0, self, electionID, 0, headerID)
	require.Nil(out.Outbound, "re-checking before the third vote arrives changes nothing")

	out = e.InsertVote(types.Vote{VoteRound: 0, TxHash: t2, ElectionID: electionID, ProposalRound: 0, Author: authors[2], HeaderID: headerID}, self)
	require.NotNil(out.Outbound)
	require.Equal(types.VoteRound(1), out.Outbound.VoteRound)
}

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primary

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/narwhal/config"
)

func testCommittee(t *testing.T, stakes ...uint64) (*config.Committee, []ids.NodeID) {
	t.Helper()
	authorities := make([]config.Authority, len(stakes))
	nodeIDs := make([]ids.NodeID, len(stakes))
	for i, s := range stakes {
		id := ids.BuildTestNodeID([]byte{byte('a' + i)})
		authorities[i] = config.Authority{ID: id, Stake: s}
		nodeIDs[i] = id
	}
	c, err := config.NewCommittee(authorities)
	require.NoError(t, err)
	return c, nodeIDs
}

func TestTallyReplacesPriorBallotFromSameAuthor(t *testing.T) {
	require := require.New(t)

	committee, authors := testCommittee(t, 1, 1, 1, 1)
	tally := NewTally(committee)

	t1, t2 := ids.GenerateTestID(), ids.GenerateTestID()
	tally.Insert(authors[0], t1, false)
	require.False(func() bool { _, ok := tally.QuorumOfVotes(); return ok }())

	// Same author votes again for a different tx_hash; the first ballot
	// must not still be counted (§4.5: "later votes ... replace earlier ones").
	tally.Insert(authors[0], t2, false)
	require.Equal(uint64(1), tally.TotalVotes())
	require.True(tally.Voted(authors[0]))
}

func TestTallyQuorumOfVotesAndCommits(t *testing.T) {
	require := require.New(t)

	committee, authors := testCommittee(t, 1, 1, 1, 1)
	tally := NewTally(committee)

	tx := ids.GenerateTestID()
	tally.Insert(authors[0], tx, false)
	tally.Insert(authors[1], tx, false)
	_, ok := tally.QuorumOfVotes()
	require.False(ok, "2 of 4 stake is below quorum_threshold 3")

	tally.Insert(authors[2], tx, false)
	got, ok := tally.QuorumOfVotes()
	require.True(ok)
	require.Equal(tx, got)

	// Commit-bit votes are tracked separately from non-commit votes.
	_, ok = tally.QuorumOfCommits()
	require.False(ok)

	tally.Insert(authors[0], tx, true)
	tally.Insert(authors[1], tx, true)
	tally.Insert(authors[2], tx, true)
	committedTx, ok := tally.QuorumOfCommits()
	require.True(ok)
	require.Equal(tx, committedTx)
}

func TestTallyTimerLatchesOnce(t *testing.T) {
	require := require.New(t)

	committee, _ := testCommittee(t, 1)
	tally := NewTally(committee)

	require.Equal(Running, tally.TimerState())
	tally.Expire()
	require.Equal(Expired, tally.TimerState())
	tally.Expire()
	require.Equal(Expired, tally.TimerState())
}

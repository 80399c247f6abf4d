// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primary

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/luxfi/ids"

	"github.com/luxfi/narwhal/config"
	"github.com/luxfi/narwhal/crypto"
	"github.com/luxfi/narwhal/internal/xset"
	"github.com/luxfi/narwhal/log"
	"github.com/luxfi/narwhal/metrics"
	"github.com/luxfi/narwhal/transport"
	"github.com/luxfi/narwhal/types"
	"github.com/luxfi/narwhal/wire"
	"github.com/luxfi/narwhal/worker"
)

// Proposer owns the replica's active DAG position and drives both
// header creation and the election voting loop (§4.4). All of its
// state is task-local; it is mutated only from within Run.
type Proposer struct {
	self      ids.NodeID
	committee *config.Committee
	signer    crypto.Signer
	params    config.Parameters
	addresses []transport.Address
	bcast     transport.Broadcaster
	payloads  *PayloadReceiver
	metrics   *metrics.Metrics
	log       log.Logger

	workerIn   <-chan worker.PendingProposal
	peerIn     <-chan []byte
	certOut    chan<- types.Certificate
	payloadOut chan<- types.RoundPayload

	round            types.Round
	proposals        []types.Proposal
	elections        map[types.Round]map[types.Digest]*Election
	decided          xset.Set[types.Digest]
	activeElections  []types.Digest
	pendingVotes     map[types.Round][]types.Vote
	ownProposals     xset.Set[types.Round]
	allProposals     map[types.Digest]headerElections
	headerDecided    map[types.Digest]bool
	headerByElection map[types.Digest]types.Header

	voteAggs map[types.Digest]*VotesAggregator
	certAggs map[types.Round]*CertificatesAggregator

	timeoutCh   chan timeoutEvent
	headerTimer *time.Timer
}

// timeoutEvent re-enters the Proposer's single task-local goroutine
// when a per-(election, vote-round) tally timer fires (§4.5 rule 3,
// §5's {Running, Expired} latch). The timer itself runs on its own
// goroutine (time.AfterFunc); it cannot touch Election or Proposer
// state directly — task-local state is only ever mutated from within
// Run (§5 "Shared state") — so it only latches the tally and hands a
// re-evaluation request back through this channel.
type timeoutEvent struct {
	proposalRound types.Round
	electionID    types.Digest
	voteRound     types.VoteRound
	headerID      types.Digest
}

// NewProposer builds a Proposer. addresses is the primary-to-primary
// broadcast list, expected to include this replica's own address so a
// self-authored header loops back through the same process_header path
// as a peer header (see DESIGN.md, "header self-delivery").
func NewProposer(
	self ids.NodeID,
	committee *config.Committee,
	signer crypto.Signer,
	params config.Parameters,
	addresses []transport.Address,
	bcast transport.Broadcaster,
	payloads *PayloadReceiver,
	m *metrics.Metrics,
	l log.Logger,
	workerIn <-chan worker.PendingProposal,
	peerIn <-chan []byte,
	certOut chan<- types.Certificate,
	payloadOut chan<- types.RoundPayload,
) *Proposer {
	return &Proposer{
		self:             self,
		committee:        committee,
		signer:           signer,
		params:           params,
		addresses:        addresses,
		bcast:            bcast,
		payloads:         payloads,
		metrics:          m,
		log:              l,
		workerIn:         workerIn,
		peerIn:           peerIn,
		certOut:          certOut,
		payloadOut:       payloadOut,
		elections:        make(map[types.Round]map[types.Digest]*Election),
		decided:          xset.New[types.Digest](0),
		pendingVotes:     make(map[types.Round][]types.Vote),
		ownProposals:     xset.New[types.Round](0),
		allProposals:     make(map[types.Digest]headerElections),
		headerDecided:    make(map[types.Digest]bool),
		headerByElection: make(map[types.Digest]types.Header),
		voteAggs:         make(map[types.Digest]*VotesAggregator),
		certAggs:         make(map[types.Round]*CertificatesAggregator),
		timeoutCh:        make(chan timeoutEvent, params.ChannelCapacity),
		headerTimer:      time.NewTimer(params.MaxHeaderDelay),
	}
}

// Run drives the proposer's main loop: pooling pending proposals,
// periodic header emission, and inbound peer messages (§4.4 "run").
func (p *Proposer) Run(ctx context.Context) error {
	if p.params.Byzantine {
		<-ctx.Done()
		return ctx.Err()
	}

	defer p.headerTimer.Stop()

	for {
		select {
		case pp, ok := <-p.workerIn:
			if !ok {
				return fmt.Errorf("primary: proposer worker input channel closed")
			}
			p.payloads.Announce(pp.TxHash, 0)
			p.proposals = append(p.proposals, types.Proposal{TxHash: pp.TxHash, ElectionID: pp.ElectionID})
			if len(p.proposals) >= p.params.HeaderSize && !p.ownProposals.Contains(p.round) {
				if err := p.makeHeader(ctx); err != nil {
					return err
				}
			}

		case <-p.headerTimer.C:
			if len(p.proposals) > 0 && !p.ownProposals.Contains(p.round) {
				if err := p.makeHeader(ctx); err != nil {
					return err
				}
			}
			resetTimer(p.headerTimer, p.params.MaxHeaderDelay)

		case frame, ok := <-p.peerIn:
			if !ok {
				return fmt.Errorf("primary: proposer peer input channel closed")
			}
			if err := p.handleFrame(ctx, frame); err != nil {
				p.log.Warn("dropping malformed primary frame", zap.Error(err))
			}

		case te := <-p.timeoutCh:
			if err := p.handleTimeout(ctx, te); err != nil {
				return err
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Proposer) handleFrame(ctx context.Context, frame []byte) error {
	var msg wire.PrimaryMessage
	if err := wire.Unmarshal(frame, &msg); err != nil {
		return fmt.Errorf("primary: decode frame: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	switch msg.Kind {
	case wire.PrimaryKindHeader:
		if err := verifyHeader(p.committee, *msg.Header); err != nil {
			p.log.Warn("dropping header with invalid signature", zap.Stringer("author", msg.Header.Author), zap.Error(err))
			return nil
		}
		return p.processHeader(ctx, *msg.Header)
	case wire.PrimaryKindVote:
		if err := verifyVote(p.committee, *msg.Vote); err != nil {
			p.log.Warn("dropping vote with invalid signature", zap.Stringer("author", msg.Vote.Author), zap.Error(err))
			return nil
		}
		return p.processVote(ctx, *msg.Vote)
	case wire.PrimaryKindCertificate:
		p.handleCertificate(*msg.Certificate)
		return nil
	}
	return nil
}

// makeHeader implements §4.4 "make_header()".
func (p *Proposer) makeHeader(ctx context.Context) error {
	kept := p.proposals[:0]
	for _, prop := range p.proposals {
		if p.decided.Contains(prop.ElectionID) {
			continue
		}
		if containsDigest(p.activeElections, prop.ElectionID) {
			continue
		}
		kept = append(kept, prop)
	}
	p.proposals = kept

	n := len(p.proposals)
	if n > p.params.HeaderSize {
		n = p.params.HeaderSize
	}
	drained := append([]types.Proposal(nil), p.proposals[:n]...)
	p.proposals = p.proposals[n:]

	header := types.Header{Round: p.round, Author: p.self, Proposals: drained}
	if err := signHeader(p.signer, &header); err != nil {
		return err
	}
	p.ownProposals.Add(p.round)

	p.metrics.HeadersProposed.Inc()
	p.log.Info("made header", zap.Stringer("id", header.ID), zap.Uint64("round", uint64(p.round)), zap.Int("proposals", n))

	msg := wire.NewHeaderMessage(header)
	frame, err := wire.Marshal(msg)
	if err != nil {
		return fmt.Errorf("primary: encode header: %w", err)
	}
	if err := p.bcast.Send(ctx, p.addresses, frame); err != nil {
		return fmt.Errorf("primary: broadcast header: %w", err)
	}
	return nil
}

// processHeader implements §4.4 "process_header(h)".
func (p *Proposer) processHeader(ctx context.Context, h types.Header) error {
	p.headerDecided[h.ID] = false
	p.metrics.HeadersReceived.Inc()

	var electionIDs []types.Digest
	for _, prop := range h.Proposals {
		electionIDs = append(electionIDs, prop.ElectionID)

		round := p.electionsAt(h.Round)
		election, existed := round[prop.ElectionID]
		if !existed {
			election = NewElection(p.committee)
			round[prop.ElectionID] = election
			if !p.decided.Contains(prop.ElectionID) && !containsDigest(p.activeElections, prop.ElectionID) {
				p.activeElections = append(p.activeElections, prop.ElectionID)
			}
			// The first header to introduce an election is the one its
			// round-0 votes certify (§4.6): later headers that happen to
			// reference the same election id don't steal its certificate.
			p.headerByElection[prop.ElectionID] = h
		}

		if !p.payloads.Available(prop.TxHash, 0) {
			p.log.Warn("voting on header referencing unannounced batch",
				zap.Stringer("header", h.ID), zap.Stringer("batch", prop.TxHash))
		}

		implicit := types.Vote{
			VoteRound:     0,
			TxHash:        prop.TxHash,
			ElectionID:    prop.ElectionID,
			ProposalRound: h.Round,
			Commit:        false,
			Author:        h.Author,
			HeaderID:      h.ID,
		}
		outcome := election.InsertVote(implicit, p.self)
		p.armTimeout(election, 0, prop.ElectionID, h.Round, h.ID)
		p.feedVoteAggregator(h, implicit)
		if err := p.handleOutcome(ctx, prop.ElectionID, h.Round, outcome); err != nil {
			return err
		}

		// Remove any pending entries for this election: it is now live.
		p.proposals = removeByElection(p.proposals, prop.ElectionID)
	}
	p.allProposals[h.ID] = headerElections{Round: h.Round, Elections: electionIDs}

	pending := p.pendingVotes[h.Round]
	delete(p.pendingVotes, h.Round)
	p.metrics.VotesPendingBuffered.Sub(float64(len(pending)))
	for _, v := range pending {
		if err := p.processVote(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// processVote implements §4.4 "process_vote(v)".
func (p *Proposer) processVote(ctx context.Context, v types.Vote) error {
	p.metrics.VotesReceived.Inc()
	round, ok := p.elections[v.ProposalRound]
	if !ok {
		p.bufferVote(v)
		return nil
	}
	election, ok := round[v.ElectionID]
	if !ok {
		p.bufferVote(v)
		return nil
	}
	if _, decided := election.Decided(); decided {
		return nil
	}
	outcome := election.InsertVote(v, p.self)
	p.armTimeout(election, v.VoteRound, v.ElectionID, v.ProposalRound, v.HeaderID)
	// A peer's round-0 ballot is itself a vote on the header that
	// introduced this election; feed it to that header's certificate
	// aggregation the same way the header's own implicit vote is (§4.6).
	if v.VoteRound == 0 {
		if h, ok := p.headerByElection[v.ElectionID]; ok {
			p.feedVoteAggregator(h, v)
		}
	}
	return p.handleOutcome(ctx, v.ElectionID, v.ProposalRound, outcome)
}

// armTimeout arms electionID's round-r tally timer exactly once
// (Election.ArmTimeout is itself idempotent per round) and routes its
// fire back onto the Proposer's own goroutine via timeoutCh, since
// time.AfterFunc's callback runs on a separate goroutine and must never
// touch task-local state directly (§5 "Shared state").
func (p *Proposer) armTimeout(election *Election, voteRound types.VoteRound, electionID types.Digest, proposalRound types.Round, headerID types.Digest) {
	election.ArmTimeout(voteRound, p.params.VoteRoundTimeout, func() {
		p.timeoutCh <- timeoutEvent{
			proposalRound: proposalRound,
			electionID:    electionID,
			voteRound:     voteRound,
			headerID:      headerID,
		}
	})
}

// handleTimeout re-enters an election when its round-r tally timer
// fires, re-evaluating the transition rules with no new ballot (§4.5
// rule 3's "timer(r) = Expired" disjunct).
func (p *Proposer) handleTimeout(ctx context.Context, te timeoutEvent) error {
	round, ok := p.elections[te.proposalRound]
	if !ok {
		return nil
	}
	election, ok := round[te.electionID]
	if !ok {
		return nil
	}
	outcome := election.CheckTimeout(te.voteRound, p.self, te.electionID, te.proposalRound, te.headerID)
	return p.handleOutcome(ctx, te.electionID, te.proposalRound, outcome)
}

func (p *Proposer) bufferVote(v types.Vote) {
	p.pendingVotes[v.ProposalRound] = append(p.pendingVotes[v.ProposalRound], v)
	p.metrics.VotesPendingBuffered.Inc()
}

// handleOutcome applies the result of one InsertVote call: either a
// decision or an outbound vote to cast (and, per §9's "recursive
// voting handlers" note, re-fed into the same election since a
// self-emitted vote must itself be processed).
func (p *Proposer) handleOutcome(ctx context.Context, electionID types.Digest, proposalRound types.Round, outcome Outcome) error {
	for {
		if outcome.Decided {
			p.decided.Add(electionID)
			p.activeElections = removeDigest(p.activeElections, electionID)
			p.round++
			resetTimer(p.headerTimer, p.params.MaxHeaderDelay)
			p.metrics.ElectionsDecided.Inc()
			p.metrics.CurrentRound.Set(float64(p.round))
			p.log.Info("election decided",
				zap.Stringer("election", electionID), zap.Stringer("tx_hash", outcome.DecidedTx))
			p.checkHeaderCommitted()
			return nil
		}
		if outcome.Outbound == nil {
			return nil
		}

		v := *outcome.Outbound
		if err := signVote(p.signer, &v); err != nil {
			return err
		}
		p.metrics.VotesCast.Inc()
		// This replica's own round-0 ballot (rule 4, §4.5) counts toward
		// its header's certificate exactly like the implicit vote does.
		if v.VoteRound == 0 {
			if h, ok := p.headerByElection[electionID]; ok {
				p.feedVoteAggregator(h, v)
			}
		}
		msg := wire.NewVoteMessage(v)
		frame, err := wire.Marshal(msg)
		if err != nil {
			return fmt.Errorf("primary: encode vote: %w", err)
		}
		if err := p.bcast.Send(ctx, p.addresses, frame); err != nil {
			return fmt.Errorf("primary: broadcast vote: %w", err)
		}

		election := p.elections[proposalRound][electionID]
		outcome = election.InsertVote(v, p.self)
		p.armTimeout(election, v.VoteRound, electionID, proposalRound, v.HeaderID)
	}
}

// headerElections records which elections a header introduced and the
// DAG round they live under, so a later decision can look each one up
// regardless of which election triggered the re-check.
type headerElections struct {
	Round     types.Round
	Elections []types.Digest
}

// checkHeaderCommitted implements §4.5 "Header-level commit": a header
// is committed once every election it references is decided.
func (p *Proposer) checkHeaderCommitted() {
	for headerID, he := range p.allProposals {
		if p.headerDecided[headerID] {
			continue
		}
		all := true
		for _, eid := range he.Elections {
			el, ok := p.elections[he.Round][eid]
			if !ok {
				all = false
				break
			}
			if _, decided := el.Decided(); !decided {
				all = false
				break
			}
		}
		if all {
			p.headerDecided[headerID] = true
			p.log.Info("header committed", zap.Stringer("header", headerID))
		}
	}
}

// feedVoteAggregator records one author's first vote for header h
// against h's VotesAggregator, emitting a Certificate once 2f+1
// distinct authors have voted (§4.6). Only the first vote seen for a
// given (header, author) pair is counted; a later vote from the same
// author is rejected by the aggregator with ErrAuthorityReuse and
// dropped with a warning.
func (p *Proposer) feedVoteAggregator(h types.Header, v types.Vote) {
	agg, ok := p.voteAggs[h.ID]
	if !ok {
		agg = NewVotesAggregator(p.committee, h)
		p.voteAggs[h.ID] = agg
	}
	cert, err := agg.Append(v)
	if err != nil {
		p.log.Warn("dropping vote in aggregator", zap.Stringer("header", h.ID), zap.Error(err))
		return
	}
	if cert == nil {
		return
	}
	delete(p.voteAggs, h.ID)
	p.metrics.CertificatesEmitted.Inc()

	certAgg, ok := p.certAggs[h.Round]
	if !ok {
		certAgg = NewCertificatesAggregator(p.committee)
		p.certAggs[h.Round] = certAgg
	}
	digests := certAgg.Append(h.Round, *cert)

	select {
	case p.certOut <- *cert:
	default:
	}

	if digests != nil {
		p.metrics.RoundPayloadsEmitted.Inc()
		payload := types.RoundPayload{Round: h.Round, Certificates: digests}
		select {
		case p.payloadOut <- payload:
		default:
		}
	}
}

func (p *Proposer) handleCertificate(cert types.Certificate) {
	certAgg, ok := p.certAggs[cert.Header.Round]
	if !ok {
		certAgg = NewCertificatesAggregator(p.committee)
		p.certAggs[cert.Header.Round] = certAgg
	}
	digests := certAgg.Append(cert.Header.Round, cert)
	if digests != nil {
		p.metrics.RoundPayloadsEmitted.Inc()
		payload := types.RoundPayload{Round: cert.Header.Round, Certificates: digests}
		select {
		case p.payloadOut <- payload:
		default:
		}
	}
}

func (p *Proposer) electionsAt(round types.Round) map[types.Digest]*Election {
	m, ok := p.elections[round]
	if !ok {
		m = make(map[types.Digest]*Election)
		p.elections[round] = m
	}
	return m
}

func containsDigest(list []types.Digest, target types.Digest) bool {
	for _, d := range list {
		if d == target {
			return true
		}
	}
	return false
}

func removeDigest(list []types.Digest, target types.Digest) []types.Digest {
	out := list[:0]
	for _, d := range list {
		if d != target {
			out = append(out, d)
		}
	}
	return out
}

func removeByElection(proposals []types.Proposal, electionID types.Digest) []types.Proposal {
	out := proposals[:0]
	for _, p := range proposals {
		if p.ElectionID != electionID {
			out = append(out, p)
		}
	}
	return out
}

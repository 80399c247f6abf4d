// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics is the Prometheus metrics surface for one replica,
// covering the component table in §2: batches sealed/disseminated,
// headers proposed/received, votes cast/received, elections decided,
// certificates and round payloads emitted.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every counter and gauge a replica registers. Grounded
// on the teacher's Metrics{Registry} wrapper, extended with the
// concrete collectors this core's components need. Only the Proposer
// updates them; the worker-side batch counters are registered but no
// worker task increments them.
type Metrics struct {
	Registry prometheus.Registerer

	BatchesSealed        prometheus.Counter
	BatchesDisseminated  prometheus.Counter
	BatchesStored        prometheus.Counter
	HeadersProposed      prometheus.Counter
	HeadersReceived      prometheus.Counter
	VotesCast            prometheus.Counter
	VotesReceived        prometheus.Counter
	VotesPendingBuffered prometheus.Gauge
	ElectionsDecided     prometheus.Counter
	CertificatesEmitted  prometheus.Counter
	RoundPayloadsEmitted prometheus.Counter
	CurrentRound         prometheus.Gauge
}

// New creates and registers every collector against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Registry: reg,
		BatchesSealed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "narwhal", Subsystem: "worker", Name: "batches_sealed_total",
			Help: "Batches sealed by the batch maker, by size or time.",
		}),
		BatchesDisseminated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "narwhal", Subsystem: "worker", Name: "batches_disseminated_total",
			Help: "Batches that reached stake-weighted quorum acks.",
		}),
		BatchesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "narwhal", Subsystem: "worker", Name: "batches_stored_total",
			Help: "Batches written to the blob store by the processor.",
		}),
		HeadersProposed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "narwhal", Subsystem: "primary", Name: "headers_proposed_total",
			Help: "Headers this replica has proposed.",
		}),
		HeadersReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "narwhal", Subsystem: "primary", Name: "headers_received_total",
			Help: "Peer headers processed.",
		}),
		VotesCast: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "narwhal", Subsystem: "primary", Name: "votes_cast_total",
			Help: "Votes this replica has cast, across all elections.",
		}),
		VotesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "narwhal", Subsystem: "primary", Name: "votes_received_total",
			Help: "Votes processed, own and peer.",
		}),
		VotesPendingBuffered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "narwhal", Subsystem: "primary", Name: "votes_pending_buffered",
			Help: "Votes currently buffered awaiting their proposal round's header.",
		}),
		ElectionsDecided: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "narwhal", Subsystem: "primary", Name: "elections_decided_total",
			Help: "Elections that reached a decision.",
		}),
		CertificatesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "narwhal", Subsystem: "primary", Name: "certificates_emitted_total",
			Help: "Certificates emitted by the votes aggregator.",
		}),
		RoundPayloadsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "narwhal", Subsystem: "primary", Name: "round_payloads_emitted_total",
			Help: "Round payloads emitted by the certificates aggregator.",
		}),
		CurrentRound: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "narwhal", Subsystem: "primary", Name: "current_round",
			Help: "The proposer's current DAG round.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.BatchesSealed, m.BatchesDisseminated, m.BatchesStored,
		m.HeadersProposed, m.HeadersReceived,
		m.VotesCast, m.VotesReceived, m.VotesPendingBuffered,
		m.ElectionsDecided, m.CertificatesEmitted, m.RoundPayloadsEmitted,
		m.CurrentRound,
	} {
		_ = m.Registry.Register(c)
	}
	return m
}

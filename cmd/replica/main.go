// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command replica runs a small committee of consensus replicas in a
// single process over an in-memory transport, continuously submitting
// synthetic transactions and logging each round payload as it is
// emitted. It exists to exercise the full worker+primary pipeline
// end to end without a real network (grounded on the teacher's
// cmd/consensus/main.go wiring shape).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/luxfi/ids"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/narwhal/config"
	"github.com/luxfi/narwhal/crypto"
	"github.com/luxfi/narwhal/log"
	"github.com/luxfi/narwhal/metrics"
	"github.com/luxfi/narwhal/primary"
	"github.com/luxfi/narwhal/store"
	"github.com/luxfi/narwhal/transport"
	"github.com/luxfi/narwhal/types"
	"github.com/luxfi/narwhal/worker"
)

func main() {
	nodes := flag.Int("nodes", 4, "committee size")
	network := flag.String("network", "local", "timing profile: local, testnet, or mainnet")
	duration := flag.Duration("duration", 10*time.Second, "how long to run before exiting")
	txRate := flag.Duration("tx-interval", 2*time.Millisecond, "interval between synthetic transactions per replica")
	flag.Parse()

	logger := log.NewDevelopment()

	params, err := paramsForNetwork(*network)
	if err != nil {
		logger.Error("invalid network", zap.Error(err))
		os.Exit(1)
	}

	committee, signers, err := buildCommittee(*nodes)
	if err != nil {
		logger.Error("failed to build committee", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *duration)
	defer cancelTimeout()

	net := transport.NewLocalNetwork()
	reg := prometheus.NewRegistry()

	replicas := make([]*replica, len(committee.Authorities()))
	for i, a := range committee.Authorities() {
		replicas[i] = newReplica(i, a.ID, committee, signers[a.ID], params, net, reg, log.With(logger, zap.Stringer("replica", a.ID)))
	}

	errCh := make(chan error, len(replicas)*6)
	for _, r := range replicas {
		r.start(ctx, errCh)
	}

	for _, r := range replicas {
		go feedTransactions(ctx, r, *txRate)
	}

	logger.Info("replica network running", zap.Int("nodes", *nodes), zap.String("network", *network), zap.Duration("duration", *duration))

	for {
		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				logger.Error("task exited", zap.Error(err))
				os.Exit(1)
			}
		case <-ctx.Done():
			logger.Info("shutting down")
			drain(errCh)
			return
		}
	}
}

func paramsForNetwork(name string) (config.Parameters, error) {
	switch name {
	case "local":
		return config.Local(), nil
	case "testnet":
		return config.Testnet(), nil
	case "mainnet":
		return config.Mainnet(), nil
	default:
		return config.Parameters{}, fmt.Errorf("unknown network %q", name)
	}
}

func buildCommittee(n int) (*config.Committee, map[ids.NodeID]crypto.Signer, error) {
	authorities := make([]config.Authority, 0, n)
	signers := make(map[ids.NodeID]crypto.Signer, n)
	for i := 0; i < n; i++ {
		id := ids.BuildTestNodeID([]byte(fmt.Sprintf("replica-%d", i)))
		signer, err := crypto.NewSigner()
		if err != nil {
			return nil, nil, fmt.Errorf("generate signer for replica %d: %w", i, err)
		}
		authorities = append(authorities, config.Authority{ID: id, PublicKey: signer.PublicKey(), Stake: 1})
		signers[id] = signer
	}
	committee, err := config.NewCommittee(authorities)
	if err != nil {
		return nil, nil, fmt.Errorf("build committee: %w", err)
	}
	return committee, signers, nil
}

// replica wires one committee member's full worker+primary pipeline.
type replica struct {
	self     ids.NodeID
	receiver *worker.Receiver
	proposer *primary.Proposer
	tasks    []func(context.Context) error
}

func newReplica(
	index int,
	self ids.NodeID,
	committee *config.Committee,
	signer crypto.Signer,
	params config.Parameters,
	net *transport.LocalNetwork,
	reg prometheus.Registerer,
	l log.Logger,
) *replica {
	workerAddr := transport.Address(fmt.Sprintf("worker-%d", index))
	primaryAddr := transport.Address(fmt.Sprintf("primary-%d", index))

	txs := make(chan types.Transaction, params.ChannelCapacity)
	sealed := make(chan worker.SealedBatch, params.ChannelCapacity)
	disseminated := make(chan worker.SealedBatch, params.ChannelCapacity)
	pending := make(chan worker.PendingProposal, params.ChannelCapacity)
	toProposer := make(chan worker.PendingProposal, params.ChannelCapacity)
	certOut := make(chan types.Certificate, params.ChannelCapacity)
	payloadOut := make(chan types.RoundPayload, params.ChannelCapacity)

	m := metrics.New(prometheus.WrapRegistererWith(prometheus.Labels{"replica": fmt.Sprint(index)}, reg))

	workerInbox := net.Register(workerAddr, params.ChannelCapacity)
	primaryInbox := net.Register(primaryAddr, params.ChannelCapacity)

	peers := make([]worker.PeerWorker, 0, committee.Size())
	addresses := make([]transport.Address, 0, committee.Size())
	for i, a := range committee.Authorities() {
		peers = append(peers, worker.PeerWorker{Author: a.ID, Address: transport.Address(fmt.Sprintf("worker-%d", i))})
		addresses = append(addresses, transport.Address(fmt.Sprintf("primary-%d", i)))
	}

	receiver := worker.NewReceiver(txs, l)
	batchMaker := worker.NewBatchMaker(params, txs, sealed, l)
	disseminator := worker.NewDisseminator(committee, self, peers, net, sealed, disseminated, l)
	peerReceiver := worker.NewPeerReceiver(params.BatchIDMode, workerInbox, disseminated, l)
	processor := worker.NewProcessor(store.NewMemStore(), disseminated, pending, l)
	connector := worker.NewPrimaryConnector(pending, toProposer, l)
	payloads := primary.NewPayloadReceiver()
	proposer := primary.NewProposer(self, committee, signer, params, addresses, net, payloads, m, l, toProposer, primaryInbox, certOut, payloadOut)

	r := &replica{self: self, receiver: receiver, proposer: proposer}
	r.tasks = []func(context.Context) error{
		batchMaker.Run,
		disseminator.Run,
		peerReceiver.Run,
		processor.Run,
		connector.Run,
		proposer.Run,
		func(ctx context.Context) error { return drainCertificates(ctx, certOut, payloadOut, l) },
	}
	return r
}

func drainCertificates(ctx context.Context, certs <-chan types.Certificate, payloads <-chan types.RoundPayload, l log.Logger) error {
	for {
		select {
		case c, ok := <-certs:
			if !ok {
				return fmt.Errorf("cmd/replica: certificate channel closed")
			}
			l.Debug("certificate emitted", zap.Stringer("header", c.Header.ID))
		case p, ok := <-payloads:
			if !ok {
				return fmt.Errorf("cmd/replica: payload channel closed")
			}
			l.Info("round payload emitted", zap.Uint64("round", uint64(p.Round)), zap.Int("certificates", len(p.Certificates)))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *replica) start(ctx context.Context, errCh chan<- error) {
	for _, task := range r.tasks {
		task := task
		go func() { errCh <- task(ctx) }()
	}
}

func feedTransactions(ctx context.Context, r *replica, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			payload := make([]byte, 32)
			rand.Read(payload)
			tx := types.Transaction{ID: randomDigest(), Payload: payload}
			if err := r.receiver.Submit(ctx, tx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func randomDigest() types.Digest {
	var d types.Digest
	rand.Read(d[:])
	return d
}

func drain(errCh <-chan error) {
	for {
		select {
		case <-errCh:
		default:
			return
		}
	}
}

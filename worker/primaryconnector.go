// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package worker

import (
	"context"
	"fmt"

	"github.com/luxfi/narwhal/log"
)

// PrimaryConnector shuttles worker→primary digest messages to the
// local primary (§2 "Bridge" tier, §4.3). It is a pure relay: all
// state belongs to the Processor upstream and the Proposer downstream.
type PrimaryConnector struct {
	in  <-chan PendingProposal
	out chan<- PendingProposal
	log log.Logger
}

// NewPrimaryConnector wires the Processor's output to the Proposer's
// pending-proposal input.
func NewPrimaryConnector(in <-chan PendingProposal, out chan<- PendingProposal, l log.Logger) *PrimaryConnector {
	return &PrimaryConnector{in: in, out: out, log: l}
}

func (c *PrimaryConnector) Run(ctx context.Context) error {
	for {
		select {
		case p, ok := <-c.in:
			if !ok {
				return fmt.Errorf("worker: primary connector input channel closed")
			}
			select {
			case c.out <- p:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primary

import (
	"sync"

	"github.com/luxfi/narwhal/types"
)

// workerAnnouncement keys a (digest, worker_id) availability record.
type workerAnnouncement struct {
	digest   types.Digest
	workerID uint32
}

// PayloadReceiver records (digest, worker_id) announcements from
// workers so the Proposer can check availability of batches
// referenced in peer headers before voting on them (§4.8, §8 invariant
// 7 "Batch availability"). Append is a pure, idempotent record: a
// duplicate announcement changes nothing.
type PayloadReceiver struct {
	mu        sync.RWMutex
	available map[workerAnnouncement]struct{}
}

// NewPayloadReceiver creates an empty receiver.
func NewPayloadReceiver() *PayloadReceiver {
	return &PayloadReceiver{available: make(map[workerAnnouncement]struct{})}
}

// Announce records that workerID has quorum-disseminated digest.
func (r *PayloadReceiver) Announce(digest types.Digest, workerID uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.available[workerAnnouncement{digest: digest, workerID: workerID}] = struct{}{}
}

// Available reports whether digest has been announced by workerID.
func (r *PayloadReceiver) Available(digest types.Digest, workerID uint32) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.available[workerAnnouncement{digest: digest, workerID: workerID}]
	return ok
}

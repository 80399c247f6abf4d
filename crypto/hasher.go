// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package crypto

import (
	"github.com/luxfi/ids"
	"github.com/zeebo/blake3"
)

// DomainTag distinguishes hash functions used for different purposes
// within the protocol (glossary: "domain separation tag"), so that a
// header digest can never collide with a vote or batch digest even if
// their serialized bytes happened to match.
type DomainTag byte

const (
	// TagHeader separates header-id digests.
	TagHeader DomainTag = iota + 1
	// TagVote separates vote-id digests.
	TagVote
	// TagBatch separates content-hash batch ids (config.BatchIDContentHash).
	TagBatch
	// TagCertificate separates certificate digests.
	TagCertificate
)

// Hash computes a domain-separated 32-byte digest of msg.
func Hash(tag DomainTag, msg []byte) ids.ID {
	h := blake3.New()
	h.Write([]byte{byte(tag)})
	h.Write(msg)
	var out ids.ID
	sum := h.Sum(nil)
	copy(out[:], sum)
	return out
}

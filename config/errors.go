// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "errors"

var (
	// ErrAuthorityNotFound denotes an authority id with no entry in the
	// committee. No function in this module returns it.
	ErrAuthorityNotFound = errors.New("authority not in committee")
	// ErrSelfNotInCommittee denotes a replica configured to run as an
	// authority that the committee doesn't list. No function in this
	// module returns it; startup does not check self membership.
	ErrSelfNotInCommittee = errors.New("this authority is not in the committee")
	// ErrInvalidBatchSize is returned by parameter validation.
	ErrInvalidBatchSize = errors.New("batch size must be > 0")
	// ErrInvalidHeaderSize is returned by parameter validation.
	ErrInvalidHeaderSize = errors.New("header size must be > 0")
	// ErrInvalidDelay is returned by parameter validation.
	ErrInvalidDelay = errors.New("delay must be > 0")
	// ErrInvalidChannelCapacity is returned by parameter validation.
	ErrInvalidChannelCapacity = errors.New("channel capacity must be > 0")
	// ErrDuplicateAuthority is fatal at startup: two authorities share an id.
	ErrDuplicateAuthority = errors.New("duplicate authority id in committee")
)

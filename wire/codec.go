// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wire is the self-describing wire schema for WorkerMessage
// and PrimaryMessage (§6). The exact encoding is implementation
// defined but must be deterministic (§8 round-trip law:
// serialize(deserialize(bytes)) = bytes); this package uses canonical
// CBOR (deterministic map-key and integer encoding) behind a
// version-byte-prefixed envelope, mirroring the teacher's
// codec.Codec{Marshal,Unmarshal} shape with its JSON encoder swapped
// for a format that actually round-trips byte-for-byte.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Version is the wire codec version prefixed to every encoded frame.
type Version byte

// CurrentVersion is the only version this module emits or accepts.
const CurrentVersion Version = 1

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	opts := cbor.CanonicalEncOptions()
	m, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: build canonical encoder: %v", err))
	}
	encMode = m

	dopts := cbor.DecOptions{}
	dm, err := dopts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wire: build decoder: %v", err))
	}
	decMode = dm
}

// Marshal encodes v as a version-prefixed canonical CBOR frame.
func Marshal(v any) ([]byte, error) {
	body, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: encode: %w", err)
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, byte(CurrentVersion))
	out = append(out, body...)
	return out, nil
}

// Unmarshal decodes a version-prefixed frame produced by Marshal into v.
func Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("wire: empty frame")
	}
	if Version(data[0]) != CurrentVersion {
		return fmt.Errorf("wire: unsupported version %d", data[0])
	}
	if err := decMode.Unmarshal(data[1:], v); err != nil {
		return fmt.Errorf("wire: decode: %w", err)
	}
	return nil
}

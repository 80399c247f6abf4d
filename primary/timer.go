// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primary

import "time"

// resetTimer re-arms t for d, draining a pending fire first. Safe to
// call whether or not t has already fired (§5: "the max_header_delay
// ... timers are resettable; resetting mid-flight is safe").
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

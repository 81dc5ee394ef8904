// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package device

import (
	"time"

	"github.com/Yukon163/localcast/protocol"
)

// Record wraps a DeviceDescriptor with the bookkeeping timestamps Registry
// maintains for it.
type Record struct {
	// Descriptor is the most recently observed DeviceDescriptor for this
	// device. Its fields (display name, control port) are overwritten on
	// every subsequent Observe.
	Descriptor protocol.DeviceDescriptor

	// FirstSeen is when this device was first observed.
	FirstSeen time.Time
	// LastSeen is when this device was most recently observed.
	LastSeen time.Time
}

// key identifies a device for deduplication purposes. Device ID is
// authoritative; two descriptors sharing a device ID are the same device
// even if their observed IP has changed (e.g. DHCP lease renewal).
func key(d protocol.DeviceDescriptor) string { return d.DeviceID }

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package device

import (
	"sync"
	"time"

	"github.com/Yukon163/localcast/protocol"
)

// Registry tracks the set of currently-known devices, deduplicated by
// device ID, expiring entries that haven't been observed within Expiration.
//
// Registry is safe for concurrent use. It is explicitly not part of the
// discovery core's contract (§9's "Host-side device deduplication" note):
// it is optional tooling a host composes on top by passing Registry itself
// (it implements callback.Discovery) as the Discovery callback, or by
// calling Observe directly from its own callback implementation.
type Registry struct {
	// Expiration is how long a device may go unobserved before it is
	// removed. If <= 0, entries never expire once observed.
	Expiration time.Duration

	mu      sync.Mutex
	devices map[string]*registryEntry
}

// OnDeviceFound implements callback.Discovery by recording the observation.
func (reg *Registry) OnDeviceFound(d protocol.DeviceDescriptor) { reg.Observe(d) }

// Observe records an observation of d, creating a new Record if this is the
// first time d's device ID has been seen, or refreshing LastSeen (and the
// descriptor fields) otherwise.
func (reg *Registry) Observe(d protocol.DeviceDescriptor) (rec Record, isNew bool) {
	id := key(d)
	now := time.Now()

	reg.mu.Lock()
	defer reg.mu.Unlock()

	e := reg.devices[id]
	if e == nil {
		e = &registryEntry{
			reg:               reg,
			deviceID:          id,
			updateExpirationC: make(chan time.Time, 1),
			doneC:             make(chan struct{}),
		}
		e.record.FirstSeen = now

		if reg.devices == nil {
			reg.devices = make(map[string]*registryEntry)
		}
		reg.devices[id] = e
		isNew = true

		go e.manageLifecycle()
		devicesKnownGauge.Inc()
	}

	if isNew {
		deviceObservations.WithLabelValues("true").Inc()
	} else {
		deviceObservations.WithLabelValues("false").Inc()
	}

	e.record.Descriptor = d
	e.record.LastSeen = now

	if reg.Expiration > 0 {
		select {
		case e.updateExpirationC <- now.Add(reg.Expiration):
		default:
			// Lifecycle goroutine hasn't drained the previous update yet;
			// it will still expire strictly later than now, so dropping
			// this one is harmless.
		}
	}

	rec = e.record
	return
}

// Records returns the current set of known devices, in no particular order.
func (reg *Registry) Records() []Record {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	records := make([]Record, 0, len(reg.devices))
	for _, e := range reg.devices {
		records = append(records, e.record)
	}
	return records
}

// Unregister immediately removes deviceID, if present, without waiting for
// it to expire.
func (reg *Registry) Unregister(deviceID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if e := reg.devices[deviceID]; e != nil {
		reg.unregisterLocked(e)
	}
}

// Shutdown removes every tracked device and stops their lifecycle
// goroutines.
func (reg *Registry) Shutdown() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for _, e := range reg.devices {
		reg.unregisterLocked(e)
	}
}

func (reg *Registry) unregisterLocked(e *registryEntry) {
	if reg.devices[e.deviceID] != e {
		// Already unregistered (can race with self-expiry).
		return
	}
	close(e.doneC)
	delete(reg.devices, e.deviceID)
	devicesKnownGauge.Dec()
}

func (reg *Registry) unregister(e *registryEntry) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.unregisterLocked(e)
}

type registryEntry struct {
	reg      *Registry
	deviceID string
	record   Record

	updateExpirationC chan time.Time
	doneC             chan struct{}
}

// manageLifecycle expires the entry once it goes Expiration time without a
// fresh Observe call, or exits immediately if it's explicitly unregistered.
func (e *registryEntry) manageLifecycle() {
	defer e.reg.unregister(e)

	var t *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-e.doneC:
			return

		case <-timerC:
			return

		case expireAt, ok := <-e.updateExpirationC:
			if !ok {
				return
			}

			delta := time.Until(expireAt)
			if delta < 0 {
				return
			}

			if t == nil {
				t = time.NewTimer(delta)
				defer t.Stop()
			} else {
				if !t.Stop() {
					<-t.C
				}
				t.Reset(delta)
			}
			timerC = t.C
		}
	}
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package discovery implements the UDP DISCOVER/HERE peer-discovery
// protocol.
//
// Endpoint owns the listen+reply half: it binds a broadcast-enabled UDP
// socket, dispatches every inbound datagram to a callback.Discovery, and
// answers DISCOVER with a unicast HERE. Broadcaster owns the announce half:
// it periodically (or on demand, via AnnounceNow) sends DISCOVER to every
// broadcast address the Interface Enumerator (support/network.Enumerator)
// resolves.
//
// Host-side device bookkeeping (deduplication, expiry) is not part of this
// package; see the device package for an optional helper built on top of a
// callback.Discovery implementation.
package discovery

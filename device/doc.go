// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package device is host-side convenience bookkeeping built on top of
// discovery's callback.Discovery events.
//
// The discovery core itself never deduplicates: every inbound datagram
// fires a callback, re-observations included, by design (a host may want
// last-seen timestamps refreshed on every packet). Registry is the optional
// helper a host composes on top when it instead wants "the current set of
// known devices," expiring entries that haven't been observed recently.
package device

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package callback defines the capability-set interfaces that discovery and
// transfer report through.
//
// Both interfaces are pure capability contracts: a host may implement them
// directly, adapt them onto a message channel, or (for a C-ABI host) map
// each method onto a function-pointer table. Nothing in this package or its
// callers assumes a particular dispatch mechanism beyond "reference-counted,
// callable from any goroutine."
package callback

import "github.com/Yukon163/localcast/protocol"

// Discovery receives notifications as devices are observed on the network.
//
// on_device_found may fire more than once for the same device: every
// re-reception of a DISCOVER or HERE datagram reports again. Merging by
// device ID or IP address is the host's responsibility; see device.Registry
// for an optional helper that does this.
type Discovery interface {
	// OnDeviceFound is called once per received discovery datagram that is
	// well-formed and not a self-echo; malformed and self-echoed datagrams
	// are dropped without a call.
	OnDeviceFound(d protocol.DeviceDescriptor)
}

// Transfer receives notifications from both the send and receive sides of a
// file transfer.
//
// OnReceiveRequest is the only method in either capability set that
// determines protocol flow: the handler blocks on its return value, so an
// implementation must not block arbitrarily long, though it need not return
// immediately (e.g. it may prompt a user).
type Transfer interface {
	// OnReceiveRequest is invoked synchronously when a REQ frame arrives.
	// Returning true accepts the transfer; false rejects it.
	OnReceiveRequest(fileName string, fileSize uint64, senderIP string) bool

	// OnProgress reports bytes transferred so far out of total. Delivery is
	// best-effort and not ordered across parallel streams; callers should
	// treat it as monotonic only in aggregate.
	OnProgress(transferred, total uint64)

	// OnComplete reports that a transfer finished, successfully or not. It
	// may be called more than once for the same logical transfer; hosts
	// are expected to debounce.
	OnComplete(success bool, message string)
}

// NopTransfer is a Transfer that accepts every request and otherwise does
// nothing, useful for tests and headless defaults.
type NopTransfer struct{}

func (NopTransfer) OnReceiveRequest(string, uint64, string) bool { return true }
func (NopTransfer) OnProgress(uint64, uint64)                    {}
func (NopTransfer) OnComplete(bool, string)                      {}

// NopDiscovery is a Discovery that ignores every event.
type NopDiscovery struct{}

func (NopDiscovery) OnDeviceFound(protocol.DeviceDescriptor) {}

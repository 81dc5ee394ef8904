// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package discovery

import (
	"context"
	"net"
	"time"

	"github.com/Yukon163/localcast/protocol"
	"github.com/Yukon163/localcast/support/fmtutil"
	"github.com/Yukon163/localcast/support/logging"
	"github.com/Yukon163/localcast/support/network"
)

// DefaultBroadcastInterval is the periodic broadcaster's send cadence.
const DefaultBroadcastInterval = 5 * time.Second

// Broadcaster periodically announces this host's presence by sending
// DISCOVER datagrams to every broadcast address the Interface Enumerator
// finds.
//
// Broadcaster owns its own ephemeral UDP socket, independent of any
// Endpoint's listening socket, so a host can run a broadcaster without a
// local Endpoint (or vice versa).
type Broadcaster struct {
	// Logger, if not nil, is the Logger to log Broadcaster status to.
	Logger logging.L

	// Interval is the periodic send cadence. Zero uses DefaultBroadcastInterval.
	Interval time.Duration

	// Enumerator resolves broadcast addresses each round. The zero value
	// works: it falls back to the real net.Interfaces list.
	Enumerator network.Enumerator

	// DeviceID, DisplayName, and ControlPort identify this host in every
	// DISCOVER datagram sent.
	DeviceID    string
	DisplayName string
	ControlPort uint16

	conn *net.UDPConn
}

// Start opens the broadcaster's socket and spawns a task that sends one
// round of DISCOVER datagrams every Interval until c is cancelled.
func (b *Broadcaster) Start(c context.Context, discoveryPort int) error {
	conn, err := network.DialBroadcastUDP4()
	if err != nil && conn == nil {
		return err
	}
	if err != nil {
		b.logger().Warnf("Broadcaster socket: %s", err)
	}
	b.conn = conn

	interval := b.Interval
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		defer func() { _ = b.conn.Close() }()

		for {
			b.announce(discoveryPort)

			select {
			case <-c.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return nil
}

// AnnounceNow performs one round of the periodic broadcast behavior
// synchronously: it resolves the current broadcast addresses and sends one
// DISCOVER datagram to each, then returns. It does not require Start to have
// been called; it dials and closes its own socket.
func (b *Broadcaster) AnnounceNow(discoveryPort int) error {
	conn, err := network.DialBroadcastUDP4()
	if err != nil && conn == nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	prior := b.conn
	b.conn = conn
	defer func() { b.conn = prior }()

	b.announce(discoveryPort)
	return nil
}

func (b *Broadcaster) announce(discoveryPort int) {
	dg := &protocol.DiscoveryDatagram{
		Kind:        protocol.DiscoverKind,
		DeviceID:    b.DeviceID,
		DisplayName: b.DisplayName,
		ControlPort: b.ControlPort,
	}
	payload := dg.Encode()

	for _, addr := range b.Enumerator.Enumerate() {
		dst := &net.UDPAddr{IP: addr, Port: discoveryPort}
		b.logger().Debugf("Broadcasting to %s:\n%s", dst, fmtutil.Hex(payload))

		if _, err := b.conn.WriteToUDP(payload, dst); err != nil {
			// Send failures are logged and never interrupt the cadence.
			b.logger().Warnf("Failed to broadcast to %s: %s", dst, err)
			continue
		}
		discoveryBroadcastsSent.Inc()
	}
}

func (b *Broadcaster) logger() logging.L { return logging.Must(b.Logger) }

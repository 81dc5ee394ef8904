// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package discovery

import (
	"context"
	"net"

	"github.com/Yukon163/localcast/callback"
	"github.com/Yukon163/localcast/protocol"
	"github.com/Yukon163/localcast/support/fmtutil"
	"github.com/Yukon163/localcast/support/logging"
	"github.com/Yukon163/localcast/support/network"

	"github.com/pkg/errors"
)

// Endpoint owns the UDP socket that both listens for discovery datagrams and
// sends unicast HERE replies.
//
// Endpoint is not safe for concurrent use beyond Start/Close: the receive
// loop it spawns is internal and single-threaded by construction.
type Endpoint struct {
	// Logger, if not nil, is the Logger to log Endpoint status to.
	Logger logging.L

	// DeviceID is this host's own device ID, used for self-echo suppression
	// and in HERE reply bodies.
	DeviceID string
	// DisplayName is this host's own display name, sent in HERE replies.
	DisplayName string
	// ControlPort is this host's own transfer port, sent in HERE replies.
	ControlPort uint16

	conn *net.UDPConn
}

// Start binds a UDP socket to 0.0.0.0:port and spawns a receive task that
// runs until c is cancelled or the socket is closed out from under it.
//
// If binding fails, Start returns the error and leaves Endpoint inert; the
// caller should log it and continue without discovery rather than crash the
// host, per the BindError policy.
func (e *Endpoint) Start(c context.Context, port int, cb callback.Discovery) error {
	conn, err := network.ListenBroadcastUDP4(port)
	if err != nil && conn == nil {
		return errors.Wrapf(err, "binding discovery endpoint to port %d", port)
	}
	if err != nil {
		// Non-fatal SO_BROADCAST failure: still usable for receive + unicast
		// reply.
		e.logger().Warnf("Discovery endpoint on port %d: %s", port, err)
	}
	e.conn = conn

	go func() {
		<-c.Done()
		_ = e.conn.Close()
	}()

	go e.receiveLoop(cb)
	return nil
}

// Close stops the receive task and releases the underlying socket.
func (e *Endpoint) Close() error {
	if e.conn == nil {
		return nil
	}
	return e.conn.Close()
}

func (e *Endpoint) receiveLoop(cb callback.Discovery) {
	buf := make([]byte, network.MaxUDPSize)
	for {
		amt, src, err := e.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				// The context (or Close) closed our socket: expected shutdown.
				e.logger().Debugf("Discovery endpoint receive loop exiting: %s", err)
				return
			}
			// A genuine recv error is logged and the loop keeps reading.
			e.logger().Warnf("Discovery endpoint receive error: %s", err)
			continue
		}

		discoveryPacketsReceived.Inc()
		e.handleDatagram(buf[:amt], src, cb)
	}
}

func (e *Endpoint) handleDatagram(data []byte, src *net.UDPAddr, cb callback.Discovery) {
	dg, err := protocol.ParseDiscoveryDatagram(data)
	if err != nil {
		e.logger().Debugf("Dropping malformed discovery datagram from %s: %s\n%s",
			src, err, fmtutil.Hex(data))
		discoveryPacketsDropped.WithLabelValues("malformed").Inc()
		return
	}

	if dg.DeviceID == e.DeviceID {
		// Self-echo: our own broadcast looped back to us.
		discoveryPacketsDropped.WithLabelValues("self_echo").Inc()
		return
	}

	desc := protocol.DescriptorFromDatagram(dg, src)
	cb.OnDeviceFound(desc)

	if dg.Kind != protocol.DiscoverKind {
		return
	}

	reply := &protocol.DiscoveryDatagram{
		Kind:        protocol.HereKind,
		DeviceID:    e.DeviceID,
		DisplayName: e.DisplayName,
		ControlPort: e.ControlPort,
	}
	replyAddr := &net.UDPAddr{IP: src.IP, Port: int(dg.ControlPort)}
	if err := e.sendReply(reply, replyAddr); err != nil {
		e.logger().Warnf("Failed to send HERE reply to %s: %s", replyAddr, err)
		return
	}
	discoveryRepliesSent.Inc()
}

func (e *Endpoint) sendReply(dg *protocol.DiscoveryDatagram, addr *net.UDPAddr) error {
	sender, err := network.DialDatagramSender(addr)
	if err != nil {
		return err
	}
	defer func() { _ = sender.Close() }()

	e.logger().Debugf("Sending HERE reply to %s:\n%s", addr, fmtutil.Hex(dg.Encode()))
	return sender.SendDatagram(dg.Encode())
}

func (e *Endpoint) logger() logging.L { return logging.Must(e.Logger) }

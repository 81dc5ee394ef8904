// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package network

import (
	"net"

	"github.com/pkg/errors"
)

const (
	// MaxUDPSize is the largest UDP datagram this package will allocate
	// buffers for.
	MaxUDPSize = 65507
)

// ListenBroadcastUDP4 binds a UDP socket to 0.0.0.0:port with SO_BROADCAST
// enabled, suitable for the Discovery Endpoint (§4.2): it both receives
// unicast/broadcast datagrams and sends unicast HERE replies.
//
// If binding the port fails, the returned error should be treated by the
// caller as a BindError: log it and leave the component inert rather than
// crashing the host.
func ListenBroadcastUDP4(port int) (*net.UDPConn, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, err
	}

	if err := setBroadcast(conn); err != nil {
		// Non-fatal: a platform that refuses SO_BROADCAST still works for
		// unicast HERE replies and for receiving datagrams.
		return conn, errors.Wrap(err, "enabling SO_BROADCAST")
	}
	return conn, nil
}

// DialBroadcastUDP4 opens an ephemeral, broadcast-enabled UDP socket not
// bound to any particular peer, suitable for the Discovery Broadcaster
// (§4.3), which owns its own send-only socket independent of the listening
// socket.
func DialBroadcastUDP4() (*net.UDPConn, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
	if err != nil {
		return nil, err
	}

	if err := setBroadcast(conn); err != nil {
		return conn, errors.Wrap(err, "enabling SO_BROADCAST")
	}
	return conn, nil
}

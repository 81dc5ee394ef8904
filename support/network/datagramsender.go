// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package network

import (
	"io"
	"net"
)

// DatagramSender exposes an interface which sends individual datagrams.
type DatagramSender interface {
	io.Closer
	SendDatagram(b []byte) error

	// MaxDatagramSize returns the maximum allowed packet size.
	//
	// This value is advisory; the DatagramSender is not repsonsible for enforcing
	// this size.
	MaxDatagramSize() int
}

// UDPDatagramSender returns a DatagramSender that sends through conn.
//
// UDPDatagramSender takes ownership of conn, and will close it when Close is
// called.
func UDPDatagramSender(conn *net.UDPConn) DatagramSender {
	return &udpDatagramSender{conn}
}

type udpDatagramSender struct {
	// conn is the underlying UDP connectiopn.
	conn *net.UDPConn
}

// SendDatagram implements DatagramSender.
func (uds *udpDatagramSender) SendDatagram(b []byte) error {
	_, _, err := uds.conn.WriteMsgUDP(b, nil, nil)
	return err
}

func (uds *udpDatagramSender) MaxDatagramSize() int { return MaxUDPSize }
func (uds *udpDatagramSender) Close() error         { return uds.conn.Close() }

// DialDatagramSender opens a short-lived, connected UDP socket to addr and
// wraps it as a DatagramSender.
//
// This is the shape the Discovery Endpoint uses to send a single unicast HERE
// reply: dial, send once, close. It deliberately does not pool or reuse
// connections, since a reply target is rarely seen twice in a row and the
// discovery protocol already tolerates per-datagram connection setup cost.
func DialDatagramSender(addr *net.UDPAddr) (DatagramSender, error) {
	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return nil, err
	}
	return UDPDatagramSender(conn), nil
}

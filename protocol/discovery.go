// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package protocol

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultDiscoveryPort is the UDP port devices broadcast/listen for
	// discovery datagrams on.
	DefaultDiscoveryPort = 4060

	// DefaultTransferPort is the TCP port devices accept transfer
	// connections on.
	DefaultTransferPort = 4061
)

// DiscoveryKind is the verb of a DiscoveryDatagram.
type DiscoveryKind uint8

const (
	// UnknownKind is the zero value, not a valid wire verb.
	UnknownKind DiscoveryKind = iota
	// DiscoverKind is "DISCOVER", a request for peers to announce themselves.
	DiscoverKind
	// HereKind is "HERE", an announcement, solicited or not.
	HereKind
)

func (k DiscoveryKind) String() string {
	switch k {
	case DiscoverKind:
		return "DISCOVER"
	case HereKind:
		return "HERE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(k))
	}
}

func parseDiscoveryKind(v string) DiscoveryKind {
	switch v {
	case "DISCOVER":
		return DiscoverKind
	case "HERE":
		return HereKind
	default:
		return UnknownKind
	}
}

// DiscoveryDatagram is one parsed line of the UDP discovery protocol.
//
// On the wire it is exactly four '|'-separated fields and no trailing
// newline: "<kind>|<device_id>|<display_name>|<control_port>".
type DiscoveryDatagram struct {
	Kind        DiscoveryKind
	DeviceID    string
	DisplayName string
	ControlPort uint16
}

// String renders dg in its wire format.
func (dg *DiscoveryDatagram) String() string {
	return fmt.Sprintf("%s|%s|%s|%d", dg.Kind, dg.DeviceID, dg.DisplayName, dg.ControlPort)
}

// Encode renders dg in its wire format as a byte slice suitable for sending
// in a single UDP datagram.
func (dg *DiscoveryDatagram) Encode() []byte { return []byte(dg.String()) }

// ParseDiscoveryDatagram parses a single discovery datagram from raw bytes.
//
// Per the protocol's invariant, a datagram must split into exactly four
// '|'-separated fields; anything else is malformed and ParseDiscoveryDatagram
// returns an error. Malformed datagrams should be dropped silently by the
// caller, not logged at error level, since they are expected noise on a
// shared broadcast domain.
func ParseDiscoveryDatagram(data []byte) (*DiscoveryDatagram, error) {
	// Decode as lossy UTF-8: a stray non-UTF-8 byte shouldn't prevent us from
	// reading an otherwise-valid ASCII control line.
	line := strings.ToValidUTF8(string(data), "�")

	fields := strings.Split(line, "|")
	if len(fields) != 4 {
		return nil, errors.Errorf("expected 4 fields, got %d", len(fields))
	}

	kind := parseDiscoveryKind(fields[0])
	if kind == UnknownKind {
		return nil, errors.Errorf("unknown discovery verb %q", fields[0])
	}

	// A malformed port falls back to the discovery port, never to a hard
	// failure: per spec, integers that fail to parse default rather than
	// aborting the datagram.
	port, err := strconv.ParseUint(fields[3], 10, 16)
	if err != nil {
		port = DefaultDiscoveryPort
	}

	return &DiscoveryDatagram{
		Kind:        kind,
		DeviceID:    fields[1],
		DisplayName: fields[2],
		ControlPort: uint16(port),
	}, nil
}

// DeviceDescriptor is the peer information delivered to a host's
// callback.Discovery for every inbound DISCOVER or HERE datagram.
//
// IP is always the source address observed on the UDP header, never the
// value (if any) advertised inside the datagram: a host behind a translated
// or multi-homed address may misreport its own IP, but the packet's source
// address cannot lie about where replies need to go.
type DeviceDescriptor struct {
	DeviceID    string
	DisplayName string
	IP          net.IP
	ControlPort uint16
}

// DescriptorFromDatagram builds a DeviceDescriptor from a parsed datagram and
// the UDP source address it arrived on.
func DescriptorFromDatagram(dg *DiscoveryDatagram, src *net.UDPAddr) DeviceDescriptor {
	return DeviceDescriptor{
		DeviceID:    dg.DeviceID,
		DisplayName: dg.DisplayName,
		IP:          src.IP,
		ControlPort: dg.ControlPort,
	}
}

func (d DeviceDescriptor) String() string {
	return fmt.Sprintf("Device{id=%s, name=%q, ip=%s, port=%d}",
		d.DeviceID, d.DisplayName, d.IP, d.ControlPort)
}

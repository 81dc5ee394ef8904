// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package network contains generic network constants and utilities shared by
// the discovery and transfer subsystems: broadcast-address arithmetic,
// datagram sending, and small net.Addr helpers.
package network

import (
	"net"

	"github.com/pkg/errors"
)

// GlobalBroadcastIP4Address is the IPv4 limited-broadcast address,
// 255.255.255.255. It is the Interface Enumerator's fallback when no
// usable broadcast-capable interface can be found.
func GlobalBroadcastIP4Address() net.IP { return net.IP{255, 255, 255, 255} }

// ParseIP4Address parses the string, v, into an IPv4 address. If v failed to
// parse, or if v did not parse into an IPv4 address, an error will be returned.
func ParseIP4Address(v string) (net.IP, error) {
	ip := net.ParseIP(v)
	if ip == nil {
		return nil, errors.Errorf("could not parse IP address %q", v)
	}

	ip = ip.To4()
	if ip == nil {
		return nil, errors.Errorf("unable to get IPv4 address for %q", v)
	}

	return ip, nil
}

// BroadcastAddr computes the IPv4 broadcast address for an interface bound to
// ip with netmask mask: B = A | ~M.
//
// Both ip and mask must be (or reduce to, via To4) 4-byte IPv4
// representations; BroadcastAddr returns nil if either does not.
func BroadcastAddr(ip, mask net.IP) net.IP {
	ip4 := ip.To4()
	mask4 := mask.To4()
	if ip4 == nil || mask4 == nil {
		return nil
	}

	b := make(net.IP, net.IPv4len)
	for i := range b {
		b[i] = ip4[i] | ^mask4[i]
	}
	return b
}

// GetIPNet extracts the *net.IPNet describing an address's IP and mask,
// regardless of its concrete net.Addr type.
func GetIPNet(addr net.Addr) *net.IPNet {
	switch t := addr.(type) {
	case *net.IPNet:
		return t
	case *net.IPAddr:
		return &net.IPNet{
			IP:   t.IP,
			Mask: t.IP.DefaultMask(),
		}
	case *net.UDPAddr:
		return &net.IPNet{
			IP:   t.IP,
			Mask: t.IP.DefaultMask(),
		}
	default:
		return nil
	}
}

// Enumerator resolves the set of IPv4 broadcast addresses a host should
// transmit discovery datagrams to.
//
// Enumerator is the Interface Enumerator component: it walks every local
// network interface, skips loopbacks, and computes each IPv4-bound
// interface's broadcast address. It never surfaces interface-query errors to
// the caller; any such failure simply contributes nothing to the result, and
// an empty final result degrades to the global broadcast address.
type Enumerator struct {
	// Interfaces, if not nil, is used in place of net.Interfaces. Tests set
	// this to avoid depending on the host's real network configuration.
	Interfaces func() ([]net.Interface, error)
}

// Enumerate returns the set of broadcast addresses to transmit on.
//
// The result is never empty: if no usable interface is found, it falls back
// to the singleton {255.255.255.255}.
func (e *Enumerator) Enumerate() []net.IP {
	listIfaces := e.Interfaces
	if listIfaces == nil {
		listIfaces = net.Interfaces
	}

	ifaces, err := listIfaces()
	if err != nil {
		// Degrade to the fallback; the caller is expected to log a warning.
		return []net.IP{GlobalBroadcastIP4Address()}
	}

	seen := make(map[string]struct{})
	var result []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipNet := GetIPNet(addr)
			if ipNet == nil || ipNet.IP.To4() == nil {
				continue
			}

			b := BroadcastAddr(ipNet.IP, ipNet.Mask)
			if b == nil || b.IsUnspecified() {
				continue
			}

			key := b.String()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			result = append(result, b)
		}
	}

	if len(result) == 0 {
		return []net.IP{GlobalBroadcastIP4Address()}
	}
	return result
}

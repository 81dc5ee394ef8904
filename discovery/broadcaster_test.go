// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package discovery

import (
	"context"
	"net"
	"time"

	"github.com/Yukon163/localcast/protocol"
	"github.com/Yukon163/localcast/support/network"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Broadcaster", func() {
	var (
		listener *net.UDPConn
		port     int
		b        *Broadcaster
	)

	BeforeEach(func() {
		var err error
		listener, err = net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
		Expect(err).NotTo(HaveOccurred())
		port = listener.LocalAddr().(*net.UDPAddr).Port

		b = &Broadcaster{
			DeviceID:    "self",
			DisplayName: "Self",
			ControlPort: 4061,
			Enumerator: network.Enumerator{
				Interfaces: func() ([]net.Interface, error) { return nil, nil },
			},
		}
	})

	AfterEach(func() {
		listener.Close()
	})

	It("AnnounceNow sends one DISCOVER per enumerated address", func() {
		// With a nil interface list, Enumerator falls back to the global
		// broadcast address, so exactly one datagram goes out; direct it at
		// our loopback listener port instead of the real broadcast port so
		// the test doesn't depend on LAN configuration.
		Expect(b.AnnounceNow(port)).To(Succeed())

		buf := make([]byte, 1024)
		Expect(listener.SetReadDeadline(time.Now().Add(time.Second))).To(Succeed())
		n, _, err := listener.ReadFromUDP(buf)
		Expect(err).NotTo(HaveOccurred())

		dg, err := protocol.ParseDiscoveryDatagram(buf[:n])
		Expect(err).NotTo(HaveOccurred())
		Expect(dg.Kind).To(Equal(protocol.DiscoverKind))
		Expect(dg.DeviceID).To(Equal("self"))
	})

	It("Start sends periodically until the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		b.Interval = 20 * time.Millisecond
		Expect(b.Start(ctx, port)).To(Succeed())

		Expect(listener.SetReadDeadline(time.Now().Add(time.Second))).To(Succeed())
		buf := make([]byte, 1024)

		_, _, err := listener.ReadFromUDP(buf)
		Expect(err).NotTo(HaveOccurred())

		_, _, err = listener.ReadFromUDP(buf)
		Expect(err).NotTo(HaveOccurred())
	})
})

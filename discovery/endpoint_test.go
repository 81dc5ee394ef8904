// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package discovery

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/Yukon163/localcast/protocol"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type recordingDiscovery struct {
	found chan protocol.DeviceDescriptor
}

func newRecordingDiscovery() *recordingDiscovery {
	return &recordingDiscovery{found: make(chan protocol.DeviceDescriptor, 8)}
}

func (r *recordingDiscovery) OnDeviceFound(d protocol.DeviceDescriptor) { r.found <- d }

var _ = Describe("Endpoint", func() {
	var (
		ctx    context.Context
		cancel context.CancelFunc
		ep     *Endpoint
		cb     *recordingDiscovery
		port   int
	)

	BeforeEach(func() {
		ctx, cancel = context.WithCancel(context.Background())
		cb = newRecordingDiscovery()
		ep = &Endpoint{DeviceID: "self", DisplayName: "Self", ControlPort: 4061}

		// Port 0 lets the OS pick an ephemeral port; recover it afterward.
		Expect(ep.Start(ctx, 0, cb)).To(Succeed())
		port = ep.conn.LocalAddr().(*net.UDPAddr).Port
	})

	AfterEach(func() {
		cancel()
		_ = ep.Close()
	})

	sendFrom := func(payload string) *net.UDPConn {
		conn, err := net.DialUDP("udp4", nil, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port})
		Expect(err).NotTo(HaveOccurred())
		_, err = conn.Write([]byte(payload))
		Expect(err).NotTo(HaveOccurred())
		return conn
	}

	It("fires OnDeviceFound for an inbound DISCOVER", func() {
		conn := sendFrom("DISCOVER|peer|Peer|4061")
		defer conn.Close()

		Eventually(cb.found, "1s").Should(Receive(Equal(protocol.DeviceDescriptor{
			DeviceID:    "peer",
			DisplayName: "Peer",
			IP:          net.IPv4(127, 0, 0, 1).To4(),
			ControlPort: 4061,
		})))
	})

	It("suppresses self-echo", func() {
		conn := sendFrom("DISCOVER|self|Self|4061")
		defer conn.Close()

		Consistently(cb.found, "100ms").ShouldNot(Receive())
	})

	It("drops malformed datagrams silently", func() {
		conn := sendFrom("GARBAGE")
		defer conn.Close()

		Consistently(cb.found, "100ms").ShouldNot(Receive())
	})

	It("replays the same DISCOVER to identical OnDeviceFound calls", func() {
		for i := 0; i < 2; i++ {
			conn := sendFrom("DISCOVER|peer|Peer|4061")
			conn.Close()
		}

		var first, second protocol.DeviceDescriptor
		Eventually(cb.found, "1s").Should(Receive(&first))
		Eventually(cb.found, "1s").Should(Receive(&second))
		Expect(first).To(Equal(second))
	})

	It("replies HERE to a unicast responder listening on the advertised port", func() {
		reply, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
		Expect(err).NotTo(HaveOccurred())
		defer reply.Close()

		replyPort := reply.LocalAddr().(*net.UDPAddr).Port
		conn := sendFrom("DISCOVER|peer|Peer|" + strconv.Itoa(replyPort))
		defer conn.Close()

		buf := make([]byte, 1024)
		Expect(reply.SetReadDeadline(time.Now().Add(time.Second))).To(Succeed())
		n, _, err := reply.ReadFromUDP(buf)
		Expect(err).NotTo(HaveOccurred())

		dg, err := protocol.ParseDiscoveryDatagram(buf[:n])
		Expect(err).NotTo(HaveOccurred())
		Expect(dg.Kind).To(Equal(protocol.HereKind))
		Expect(dg.DeviceID).To(Equal("self"))
	})
})

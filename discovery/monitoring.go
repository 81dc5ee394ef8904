// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	discoveryPacketsReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discovery_packets_received",
		Help: "Count of discovery datagrams read off the socket, valid or not.",
	})

	discoveryPacketsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_packets_dropped",
		Help: "Count of discovery datagrams dropped, by reason.",
	},
		[]string{"reason"})

	discoveryRepliesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discovery_replies_sent",
		Help: "Count of unicast HERE replies sent in answer to a DISCOVER.",
	})

	discoveryBroadcastsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discovery_broadcasts_sent",
		Help: "Count of DISCOVER datagrams broadcast, summed across all addresses per round.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		discoveryPacketsReceived,
		discoveryPacketsDropped,
		discoveryRepliesSent,
		discoveryBroadcastsSent,
	)
}

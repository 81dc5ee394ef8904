// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package transfer

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	activeSessionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "transfer_active_sessions",
		Help: "Count of currently-open DATA connection handlers.",
	})

	bytesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "transfer_bytes_received",
		Help: "Count of file bytes written by DATA handlers.",
	})

	bytesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "transfer_bytes_sent",
		Help: "Count of file bytes sent by Sender workers.",
	})

	receivesAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "transfer_receives_accepted",
		Help: "Count of REQ frames answered with ACC.",
	})

	receivesRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transfer_receives_rejected",
		Help: "Count of REQ frames answered with REJ, by reason.",
	},
		[]string{"reason"})

	transferErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transfer_errors",
		Help: "Count of transfer errors, by Kind.",
	},
		[]string{"kind"})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		activeSessionsGauge,
		bytesReceived,
		bytesSent,
		receivesAccepted,
		receivesRejected,
		transferErrors,
	)
}

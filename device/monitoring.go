// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package device

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	devicesKnownGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "device_registry_known_devices",
		Help: "Count of devices currently tracked by the registry.",
	})

	deviceObservations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "device_registry_observations",
		Help: "Count of device observations recorded, by whether the device was new.",
	},
		[]string{"new"})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(devicesKnownGauge, deviceObservations)
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package localcastd defines the logic for the "localcastd" demo app.
//
// It runs a LAN file-transfer host: discovery (broadcasting its own
// presence and logging peers it observes) and a transfer listener that
// auto-accepts incoming requests into a save directory. Passing
// --send-to/--send-file instead sends one file to a peer and exits,
// demonstrating the Sender half of the protocol.
package localcastd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Yukon163/localcast/callback"
	"github.com/Yukon163/localcast/device"
	"github.com/Yukon163/localcast/discovery"
	"github.com/Yukon163/localcast/protocol"
	"github.com/Yukon163/localcast/support/logging"
	"github.com/Yukon163/localcast/support/savepath"
	"github.com/Yukon163/localcast/transfer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

var (
	discoveryPort  = pflag.Int("discovery-port", protocol.DefaultDiscoveryPort, "UDP port for peer discovery.")
	transferPort   = pflag.Int("transfer-port", protocol.DefaultTransferPort, "TCP port for file transfer.")
	deviceID       = pflag.String("device-id", "", "This host's device ID. Defaults to hostname:pid.")
	displayName    = pflag.String("display-name", "", "This host's display name. Defaults to its device ID.")
	saveDir        = pflag.String("save-dir", ".", "Directory incoming files are written to.")
	parallelism    = pflag.Int("parallelism", transfer.DefaultParallelism, "Number of parallel DATA connections a send uses.")
	broadcastEvery = pflag.Duration("broadcast-interval", discovery.DefaultBroadcastInterval,
		"How often to broadcast this host's presence.")
	deviceExpiry = pflag.Duration("device-expiry", 30*time.Second,
		"How long a device may go unobserved before the registry forgets it.")

	sendTo   = pflag.String("send-to", "", "If set with --send-file, send a single file to this IP and exit.")
	sendFile = pflag.String("send-file", "", "Path of the file to send when --send-to is set.")

	logLevel = logging.LevelFlag(logging.InfoLevel)
)

func init() {
	pflag.Var(&logLevel, "log-level", "Log verbosity: "+logging.LevelFlagValues()+".")
}

// Main is the main entry point.
func Main() {
	pflag.Parse()

	logger := logging.AtLevel(logging.Std{Logger: log.New(os.Stderr, "", log.LstdFlags)}, logLevel.Value())

	id := *deviceID
	if id == "" {
		id = defaultDeviceID()
	}
	name := *displayName
	if name == "" {
		name = id
	}

	reg := prometheus.NewRegistry()
	discovery.RegisterMonitoring(reg)
	transfer.RegisterMonitoring(reg)
	device.RegisterMonitoring(reg)

	if *sendTo != "" {
		runSend(logger, id)
		return
	}

	runDaemon(logger, id, name)
}

func runSend(logger logging.L, id string) {
	if *sendFile == "" {
		logger.Errorf("--send-file is required with --send-to")
		os.Exit(2)
	}

	s := &transfer.Sender{Logger: logger, Parallelism: *parallelism}
	cb := &loggingTransfer{logger: logger}
	if err := s.SendFile(*sendTo, *transferPort, *sendFile, cb); err != nil {
		logger.Errorf("Send failed: %s", err)
		os.Exit(1)
	}
}

func runDaemon(logger logging.L, id, name string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigC
		logger.Info("Shutting down...")
		cancel()
	}()

	reg := &device.Registry{Expiration: *deviceExpiry}

	ep := &discovery.Endpoint{
		Logger:      logger,
		DeviceID:    id,
		DisplayName: name,
		ControlPort: uint16(*transferPort),
	}
	if err := ep.Start(ctx, *discoveryPort, &loggingDiscovery{logger: logger, reg: reg}); err != nil {
		logger.Errorf("Discovery endpoint disabled: %s", err)
	}

	bc := &discovery.Broadcaster{
		Logger:      logger,
		Interval:    *broadcastEvery,
		DeviceID:    id,
		DisplayName: name,
		ControlPort: uint16(*transferPort),
	}
	if err := bc.Start(ctx, *discoveryPort); err != nil {
		logger.Errorf("Broadcaster disabled: %s", err)
	}

	sp, err := savepath.New(*saveDir)
	if err != nil {
		logger.Errorf("Invalid save directory %q: %s", *saveDir, err)
		os.Exit(1)
	}

	l := &transfer.Listener{Logger: logger, SavePath: sp, Session: &transfer.Session{}}
	if err := l.Start(ctx, *transferPort, &loggingTransfer{logger: logger}); err != nil {
		logger.Errorf("Transfer listener disabled: %s", err)
	}

	logger.Infof("localcastd running as %q (%s), discovery :%d, transfer :%d, saving to %q",
		id, name, *discoveryPort, *transferPort, *saveDir)

	<-ctx.Done()
}

func defaultDeviceID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "localcast"
	}
	return fmt.Sprintf("%s:%d", host, os.Getpid())
}

// loggingDiscovery forwards every observation to a device.Registry and logs
// newly-seen devices.
type loggingDiscovery struct {
	logger logging.L
	reg    *device.Registry
}

var _ callback.Discovery = (*loggingDiscovery)(nil)

func (ld *loggingDiscovery) OnDeviceFound(d protocol.DeviceDescriptor) {
	_, isNew := ld.reg.Observe(d)
	if isNew {
		ld.logger.Infof("Discovered device %s", d)
	}
}

// loggingTransfer accepts every request and logs progress/completion.
type loggingTransfer struct {
	logger logging.L
}

var _ callback.Transfer = (*loggingTransfer)(nil)

func (lt *loggingTransfer) OnReceiveRequest(fileName string, fileSize uint64, senderIP string) bool {
	lt.logger.Infof("Accepting %q (%d bytes) from %s", fileName, fileSize, senderIP)
	return true
}

func (lt *loggingTransfer) OnProgress(transferred, total uint64) {
	lt.logger.Debugf("Progress: %d/%d bytes", transferred, total)
}

func (lt *loggingTransfer) OnComplete(success bool, message string) {
	lt.logger.Infof("Transfer complete (success=%t): %s", success, message)
}

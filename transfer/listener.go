// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package transfer

import (
	"context"
	"fmt"
	"net"

	"github.com/Yukon163/localcast/callback"
	"github.com/Yukon163/localcast/support/logging"
	"github.com/Yukon163/localcast/support/savepath"

	"github.com/pkg/errors"
)

// Listener owns the TCP socket that accepts both REQ handshake connections
// and DATA chunk connections, handing each accepted net.Conn to its own
// connectionHandler goroutine.
type Listener struct {
	// Logger, if not nil, is the Logger to log Listener status to.
	Logger logging.L

	// SavePath resolves an inbound file_name into a safe destination path.
	SavePath *savepath.D

	// Session is the shared receive-side transfer state. A zero Session is
	// usable.
	Session *Session

	ln net.Listener
}

// Start binds a TCP listener to 0.0.0.0:port and spawns an accept loop that
// runs until c is cancelled or the listener is closed out from under it.
//
// If binding fails, Start returns the error and leaves Listener inert, per
// the BindError policy: the caller should log it and run without transfer
// support rather than crash the host.
func (l *Listener) Start(c context.Context, port int, cb callback.Transfer) error {
	ln, err := net.Listen("tcp4", addrForPort(port))
	if err != nil {
		return wrap(BindErrorKind, err, "binding transfer listener to port %d", port)
	}
	l.ln = ln

	go func() {
		<-c.Done()
		_ = l.ln.Close()
	}()

	go l.acceptLoop(cb)
	return nil
}

// Close stops the accept loop and releases the underlying listener.
func (l *Listener) Close() error {
	if l.ln == nil {
		return nil
	}
	return l.ln.Close()
}

func (l *Listener) acceptLoop(cb callback.Transfer) {
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				// Our own Close (or the context's): expected shutdown.
				l.logger().Debugf("Transfer listener accept loop exiting: %s", err)
				return
			}
			// A genuine accept error is logged and the loop keeps accepting.
			l.logger().Warnf("Transfer listener accept error: %s", err)
			continue
		}

		h := &connectionHandler{
			conn:     conn,
			session:  l.Session,
			savePath: l.SavePath,
			cb:       cb,
			logger:   l.logger(),
		}
		go h.run()
	}
}

func (l *Listener) logger() logging.L { return logging.Must(l.Logger) }

func addrForPort(port int) string {
	return fmt.Sprintf(":%d", port)
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package transfer

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a transfer-related failure for logging and metrics.
//
// Kind is never sent across the wire: per the protocol's propagation policy,
// failures only ever surface to a peer as a closed connection or a REJ line.
type Kind int

const (
	// UnknownKind is the zero value, not a valid classification.
	UnknownKind Kind = iota
	// BindErrorKind: unable to claim a listening port. Non-fatal; the
	// affected component is disabled.
	BindErrorKind
	// TransportErrorKind: a socket read/write failure.
	TransportErrorKind
	// ProtocolErrorKind: a malformed frame, unknown verb, or wrong field
	// count.
	ProtocolErrorKind
	// FilesystemErrorKind: a file create/open/seek/write failure.
	FilesystemErrorKind
	// RejectedByPeerKind: the receiver answered REJ.
	RejectedByPeerKind
	// RejectedByHostKind: the host callback returned false from
	// OnReceiveRequest.
	RejectedByHostKind
)

func (k Kind) String() string {
	switch k {
	case BindErrorKind:
		return "BindError"
	case TransportErrorKind:
		return "TransportError"
	case ProtocolErrorKind:
		return "ProtocolError"
	case FilesystemErrorKind:
		return "FilesystemError"
	case RejectedByPeerKind:
		return "RejectedByPeer"
	case RejectedByHostKind:
		return "RejectedByHost"
	default:
		return fmt.Sprintf("UnknownKind(%d)", int(k))
	}
}

// Error is a typed error carrying a Kind alongside its wrapped cause, used
// internally for log and metric classification.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.cause) }

func (e *Error) Unwrap() error { return e.cause }

// wrap builds an *Error of the given Kind wrapping cause with a formatted
// message, or returns nil if cause is nil.
func wrap(kind Kind, cause error, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	transferErrors.WithLabelValues(kind.String()).Inc()
	return &Error{Kind: kind, cause: errors.Wrapf(cause, format, args...)}
}

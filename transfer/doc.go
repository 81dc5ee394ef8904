// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package transfer implements the TCP REQ/DATA/ACC/REJ file-transfer
// protocol, both receive side (Listener, connectionHandler, Session) and
// send side (Sender).
//
// The receive side accepts two kinds of connection: a REQ handshake, synchronously
// gated on callback.Transfer.OnReceiveRequest, and N parallel DATA
// connections that each write one contiguous, disjoint byte range of the
// same destination file. The send side mirrors this: one handshake
// connection followed by N parallel chunk-worker connections, joined with a
// shared atomic failure flag.
package transfer

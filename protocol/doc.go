// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package protocol implements the two wire formats used by the LAN
// file-transfer core: the UDP discovery datagram (DISCOVER/HERE) and the TCP
// transfer frame (REQ/DATA, ACC/REJ).
//
// Both formats are plain pipe-delimited UTF-8 text lines. Neither carries a
// version field; field count is the only framing check.
package protocol

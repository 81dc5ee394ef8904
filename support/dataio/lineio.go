// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dataio

import (
	"github.com/pkg/errors"
)

// MaxLineSize bounds ReadLine against a peer that never sends a newline.
const MaxLineSize = 4096

// ReadLine reads bytes one at a time from r until it sees '\n', returning the
// line with the trailing '\n' (and any trailing '\r') stripped.
//
// The transfer protocol frames control messages as a single
// newline-terminated line, ahead of a binary payload for DATA; reading
// byte-by-byte is the only way to stop exactly at the line
// boundary without either blocking on or over-consuming the payload that
// follows.
func ReadLine(r Reader) (string, error) {
	buf := make([]byte, 0, 128)
	for {
		if len(buf) >= MaxLineSize {
			return "", errors.Errorf("line exceeds %d bytes", MaxLineSize)
		}

		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == '\n' {
			if n := len(buf); n > 0 && buf[n-1] == '\r' {
				buf = buf[:n-1]
			}
			return string(buf), nil
		}
		buf = append(buf, b)
	}
}

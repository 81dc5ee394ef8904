// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package transfer

import "sync"

// Session is the process-wide receive-side transfer state: total_bytes and
// bytes_written from §3/§9, mutated under a single mutex.
//
// Its counters are shared across every DATA connection handler belonging to
// the same logical transfer: a REQ handshake resets them, and the N parallel
// DATA streams that follow all add to the same bytesWritten counter. This
// does not generalize to concurrent transfers from different senders (§9's
// design note): a second concurrent REQ overwrites this state, which is
// incorrect for overlapping receives. Concurrent receives are explicitly
// unsupported, matching the minimum-conforming implementation this package
// targets.
type Session struct {
	mu           sync.Mutex
	fileName     string
	totalBytes   uint64
	bytesWritten uint64
}

// Begin resets the session for a newly-accepted REQ: fileName identifies the
// file now being received (reported back by Snapshot, for logging), and
// totalBytes is its declared size.
func (s *Session) Begin(fileName string, totalBytes uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fileName = fileName
	s.totalBytes = totalBytes
	s.bytesWritten = 0
}

// AddWritten adds n to bytesWritten and returns the resulting
// (bytesWritten, totalBytes) pair so the caller can decide whether to fire
// progress or completion callbacks without taking the lock itself.
func (s *Session) AddWritten(n uint64) (written, total uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bytesWritten += n
	return s.bytesWritten, s.totalBytes
}

// Snapshot returns the current (fileName, bytesWritten, totalBytes) without
// mutating anything.
func (s *Session) Snapshot() (fileName string, written, total uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileName, s.bytesWritten, s.totalBytes
}

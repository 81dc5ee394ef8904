// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package transfer

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/Yukon163/localcast/callback"
	"github.com/Yukon163/localcast/protocol"
	"github.com/Yukon163/localcast/support/dataio"
	"github.com/Yukon163/localcast/support/logging"
)

// DefaultParallelism is the sender's recommended worker count, per §6's
// configuration inputs.
const DefaultParallelism = 4

// ChunkAssignment is one worker's slice of a file, satisfying
// Σ length_i == file_size with disjoint, contiguous ranges.
type ChunkAssignment struct {
	Offset uint64
	Length uint64
}

// PlanChunks divides fileSize into n contiguous, non-overlapping chunks. The
// first n-1 chunks each get fileSize/n bytes; the last absorbs the
// remainder so the total always equals fileSize exactly. n < 1 is treated
// as 1.
func PlanChunks(fileSize uint64, n int) []ChunkAssignment {
	if n < 1 {
		n = 1
	}

	base := fileSize / uint64(n)
	plan := make([]ChunkAssignment, n)
	var offset uint64
	for i := 0; i < n; i++ {
		length := base
		if i == n-1 {
			length = fileSize - offset
		}
		plan[i] = ChunkAssignment{Offset: offset, Length: length}
		offset += length
	}
	return plan
}

// Sender sends files to remote transfer listeners.
type Sender struct {
	// Logger, if not nil, is the Logger to log Sender status to.
	Logger logging.L

	// Parallelism is the number of DATA connections to open per transfer.
	// <= 0 uses DefaultParallelism.
	Parallelism int
}

// SendFile implements the two-phase send operation from §4.6: a handshake
// over one connection, then parallel DATA streams over Parallelism
// connections. Exactly one OnComplete call is made on cb before SendFile
// returns, mirroring the final-callback guarantee in §8.
func (s *Sender) SendFile(targetIP string, port int, filePath string, cb callback.Transfer) error {
	st, err := os.Stat(filePath)
	if err != nil {
		cb.OnComplete(false, "file does not exist")
		return wrap(FilesystemErrorKind, err, "statting %q", filePath)
	}
	fileSize := uint64(st.Size())
	baseName := filepath.Base(filePath)
	addr := fmt.Sprintf("%s:%d", targetIP, port)

	if err := s.handshake(addr, baseName, fileSize); err != nil {
		msg := err.Error()
		if terr, ok := err.(*Error); ok && terr.Kind == RejectedByPeerKind {
			msg = "peer rejected"
		}
		cb.OnComplete(false, msg)
		return err
	}

	n := s.Parallelism
	if n <= 0 {
		n = DefaultParallelism
	}
	plan := PlanChunks(fileSize, n)

	var wg sync.WaitGroup
	var failed int32
	var written uint64

	for _, chunk := range plan {
		wg.Add(1)
		go func(chunk ChunkAssignment) {
			defer wg.Done()
			if err := s.sendChunk(addr, filePath, baseName, chunk, &written); err != nil {
				s.logger().Warnf("Chunk %+v failed: %s", chunk, err)
				atomic.StoreInt32(&failed, 1)
			}
		}(chunk)
	}
	wg.Wait()

	if atomic.LoadInt32(&failed) != 0 {
		cb.OnComplete(false, "send failed")
		return wrap(TransportErrorKind, errSendFailed, "sending %q", filePath)
	}

	cb.OnComplete(true, "send completed")
	return nil
}

var errSendFailed = fmt.Errorf("one or more chunk workers failed")

func (s *Sender) handshake(addr, baseName string, fileSize uint64) error {
	conn, err := net.Dial("tcp4", addr)
	if err != nil {
		return wrap(TransportErrorKind, err, "dialing %s", addr)
	}
	defer func() { _ = conn.Close() }()

	req := &protocol.ReqFrame{FileName: baseName, FileSize: fileSize}
	if _, err := fmt.Fprintf(conn, "%s\n", req); err != nil {
		return wrap(TransportErrorKind, err, "writing REQ")
	}

	line, err := dataio.ReadLine(dataio.MakeReader(conn))
	if err != nil {
		return wrap(TransportErrorKind, err, "reading handshake response")
	}
	if !protocol.IsAccept(line) {
		return wrap(RejectedByPeerKind, errPeerRejected, "peer responded %q", line)
	}
	return nil
}

var errPeerRejected = fmt.Errorf("peer rejected")

func (s *Sender) sendChunk(addr, filePath, baseName string, chunk ChunkAssignment, written *uint64) error {
	conn, err := net.Dial("tcp4", addr)
	if err != nil {
		return wrap(TransportErrorKind, err, "dialing %s", addr)
	}
	defer func() { _ = conn.Close() }()

	if tc, ok := conn.(*net.TCPConn); ok {
		// Disable Nagle: latency beats throughput at LAN sizes, and without
		// this the final small write of an unevenly-divided chunk can stall.
		_ = tc.SetNoDelay(true)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return wrap(FilesystemErrorKind, err, "opening %q", filePath)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(int64(chunk.Offset), io.SeekStart); err != nil {
		return wrap(FilesystemErrorKind, err, "seeking %q to %d", filePath, chunk.Offset)
	}

	data := &protocol.DataFrame{FileName: baseName, Offset: chunk.Offset}
	if _, err := fmt.Fprintf(conn, "%s\n", data); err != nil {
		return wrap(TransportErrorKind, err, "writing DATA header")
	}

	buf := chunkBufferPool.Get()
	defer buf.Release()
	raw := buf.Bytes()

	remaining := chunk.Length
	for remaining > 0 {
		want := uint64(len(raw))
		if remaining < want {
			want = remaining
		}

		n, rerr := f.Read(raw[:want])
		if n > 0 {
			if _, werr := conn.Write(raw[:n]); werr != nil {
				return wrap(TransportErrorKind, werr, "writing chunk bytes")
			}
			atomic.AddUint64(written, uint64(n))
			bytesSent.Add(float64(n))
			remaining -= uint64(n)
		}
		if rerr != nil {
			if rerr == io.EOF && remaining == 0 {
				break
			}
			return wrap(FilesystemErrorKind, rerr, "reading %q", filePath)
		}
	}
	return nil
}

func (s *Sender) logger() logging.L { return logging.Must(s.Logger) }

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package transfer

import (
	"io"
	"net"
	"os"

	"github.com/Yukon163/localcast/callback"
	"github.com/Yukon163/localcast/protocol"
	"github.com/Yukon163/localcast/support/bufferpool"
	"github.com/Yukon163/localcast/support/dataio"
	"github.com/Yukon163/localcast/support/logging"
	"github.com/Yukon163/localcast/support/savepath"
)

// chunkBufferSize is the recommended DATA copy-loop buffer size from §4.5.
const chunkBufferSize = 64 * 1024

// progressStep is how many additional bytes must land before the next
// progress notification, per §4.5's "advanced by ≥1 MiB" policy.
const progressStep = 1 << 20

var chunkBufferPool = &bufferpool.Pool{Size: chunkBufferSize}

// connectionHandler processes exactly one accepted net.Conn: a REQ
// handshake connection or a DATA chunk connection, per §4.5.
type connectionHandler struct {
	conn     net.Conn
	session  *Session
	savePath *savepath.D
	cb       callback.Transfer
	logger   logging.L
}

func (h *connectionHandler) run() {
	defer func() { _ = h.conn.Close() }()

	reader := dataio.MakeReader(h.conn)
	line, err := dataio.ReadLine(reader)
	if err != nil {
		// Peer closed before delivering the terminator, or the line
		// exceeded our bound: silently abort, per §4.5/§4.8.
		return
	}

	req, data, err := protocol.ParseHeaderLine(line)
	if err != nil {
		h.logger.Debugf("Dropping connection with malformed header %q: %s", line, err)
		return
	}

	switch {
	case req != nil:
		h.handleReq(req)
	case data != nil:
		h.handleData(data, reader)
	default:
		// Unknown verb: dropped silently.
	}
}

func (h *connectionHandler) handleReq(req *protocol.ReqFrame) {
	senderIP := remoteIP(h.conn)

	if !h.cb.OnReceiveRequest(req.FileName, req.FileSize, senderIP) {
		h.reject("")
		receivesRejected.WithLabelValues("host").Inc()
		return
	}

	path, err := h.savePath.Resolve(req.FileName)
	if err != nil {
		h.logger.Warnf("Rejecting REQ for unsafe file name %q: %s", req.FileName, err)
		h.reject("BadFileName")
		receivesRejected.WithLabelValues("bad_file_name").Inc()
		return
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		h.logger.Warnf("Failed to create %q: %s", path, err)
		h.reject("CreateFileErr")
		receivesRejected.WithLabelValues("create_file_err").Inc()
		return
	}
	defer func() { _ = f.Close() }()

	// Pre-allocate, sparse where the OS permits. This is a correctness
	// requirement for the parallel-seek-write model (§9's "Parallel writer
	// correctness" note), not merely an optimization, but a failure here is
	// still only logged: some filesystems auto-extend on seek+write anyway.
	if err := f.Truncate(int64(req.FileSize)); err != nil {
		h.logger.Warnf("Failed to pre-allocate %q to %d bytes: %s", path, req.FileSize, err)
	}

	h.session.Begin(req.FileName, req.FileSize)

	if _, err := io.WriteString(h.conn, protocol.AcceptResponse); err != nil {
		h.logger.Debugf("Failed to write ACC: %s", err)
		return
	}
	receivesAccepted.Inc()
}

func (h *connectionHandler) reject(reason string) {
	if _, err := io.WriteString(h.conn, protocol.RejectResponse(reason)); err != nil {
		h.logger.Debugf("Failed to write REJ: %s", err)
	}
}

func (h *connectionHandler) handleData(data *protocol.DataFrame, reader dataio.Reader) {
	path, err := h.savePath.Resolve(data.FileName)
	if err != nil {
		h.logger.Debugf("Dropping DATA for unsafe file name %q: %s", data.FileName, err)
		return
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		h.logger.Warnf("Failed to open %q for DATA write: %s", path, err)
		return
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(int64(data.Offset), io.SeekStart); err != nil {
		h.logger.Warnf("Failed to seek %q to %d: %s", path, data.Offset, err)
		return
	}

	activeSessionsGauge.Inc()
	defer activeSessionsGauge.Dec()

	buf := chunkBufferPool.Get()
	defer buf.Release()
	raw := buf.Bytes()

	var sinceNotify uint64
	for {
		n, rerr := reader.Read(raw)
		if n > 0 {
			if _, werr := f.Write(raw[:n]); werr != nil {
				h.logger.Warnf("Failed to write %q: %s", path, werr)
				return
			}

			bytesReceived.Add(float64(n))
			written, total := h.session.AddWritten(uint64(n))
			sinceNotify += uint64(n)

			if sinceNotify >= progressStep || written == total {
				h.cb.OnProgress(written, total)
				sinceNotify = 0
			}

			if total > 0 && written >= total {
				h.cb.OnComplete(true, data.FileName)
			}
		}

		if rerr != nil {
			// EOF (peer closed normally, the expected end of a DATA stream)
			// or a genuine transport error: either way the loop ends with no
			// explicit failure notification, per §4.5 step 7/§4.8.
			return
		}
	}
}

func remoteIP(conn net.Conn) string {
	if addr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		return addr.IP.String()
	}
	return conn.RemoteAddr().String()
}

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package transfer

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/Yukon163/localcast/support/savepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// recordingTransfer implements callback.Transfer, recording calls for
// assertion and gating acceptance on Accept.
type recordingTransfer struct {
	Accept bool

	mu          sync.Mutex
	requests    []string
	completions []completion
}

type completion struct {
	success bool
	message string
}

func (r *recordingTransfer) OnReceiveRequest(fileName string, fileSize uint64, senderIP string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, fileName)
	return r.Accept
}

func (r *recordingTransfer) OnProgress(uint64, uint64) {}

func (r *recordingTransfer) OnComplete(success bool, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions = append(r.completions, completion{success, message})
}

func (r *recordingTransfer) Completions() []completion {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]completion, len(r.completions))
	copy(out, r.completions)
	return out
}

func startListener(dir string, cb *recordingTransfer) (port int, stop func()) {
	sp, err := savepath.New(dir)
	Expect(err).NotTo(HaveOccurred())

	l := &Listener{SavePath: sp, Session: &Session{}}
	ctx, cancel := context.WithCancel(context.Background())
	Expect(l.Start(ctx, 0, cb)).To(Succeed())

	port = l.ln.Addr().(*net.TCPAddr).Port
	return port, func() {
		cancel()
		_ = l.Close()
	}
}

var _ = Describe("receive side end-to-end", func() {
	var (
		dir string
		cb  *recordingTransfer
		port int
		stop func()
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "localcast-recv-")
		Expect(err).NotTo(HaveOccurred())
		cb = &recordingTransfer{Accept: true}
		port, stop = startListener(dir, cb)
	})

	AfterEach(func() {
		stop()
		_ = os.RemoveAll(dir)
	})

	It("transfers a small file over a single stream", func() {
		src := filepath.Join(dir, "src", "t.bin")
		Expect(os.MkdirAll(filepath.Dir(src), 0o755)).To(Succeed())
		Expect(os.WriteFile(src, []byte("ABCDEFG"), 0o644)).To(Succeed())

		s := &Sender{Parallelism: 1}
		Expect(s.SendFile("127.0.0.1", port, src, callbackNop{})).To(Succeed())

		Eventually(func() ([]byte, error) {
			return os.ReadFile(filepath.Join(dir, "t.bin"))
		}, "2s").Should(Equal([]byte("ABCDEFG")))
	})

	It("transfers a file over parallel non-aligned chunks", func() {
		content := []byte("0123456789")
		src := filepath.Join(dir, "src", "p.bin")
		Expect(os.MkdirAll(filepath.Dir(src), 0o755)).To(Succeed())
		Expect(os.WriteFile(src, content, 0o644)).To(Succeed())

		s := &Sender{Parallelism: 4}
		Expect(s.SendFile("127.0.0.1", port, src, callbackNop{})).To(Succeed())

		Eventually(func() ([]byte, error) {
			return os.ReadFile(filepath.Join(dir, "p.bin"))
		}, "2s").Should(Equal(content))
	})

	It("rejects when the host declines the request", func() {
		cb.Accept = false

		src := filepath.Join(dir, "src", "r.bin")
		Expect(os.MkdirAll(filepath.Dir(src), 0o755)).To(Succeed())
		Expect(os.WriteFile(src, []byte("nope"), 0o644)).To(Succeed())

		s := &Sender{Parallelism: 1}
		err := s.SendFile("127.0.0.1", port, src, cb)
		Expect(err).To(HaveOccurred())

		Expect(cb.Completions()).To(ContainElement(completion{false, "peer rejected"}))
		_, statErr := os.Stat(filepath.Join(dir, "r.bin"))
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})

	It("rejects a file name that escapes the save directory", func() {
		conn, err := net.Dial("tcp4", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		_, err = conn.Write([]byte("REQ|../escape.bin|4\n"))
		Expect(err).NotTo(HaveOccurred())

		buf := make([]byte, 64)
		n, err := conn.Read(buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("REJ|BadFileName\n"))
	})

	It("rejects REQ when the destination can't be created", func() {
		// A directory already occupying the destination name makes the
		// O_CREATE open fail, standing in for "save_dir not writable".
		Expect(os.MkdirAll(filepath.Join(dir, "blocked.bin"), 0o755)).To(Succeed())

		conn, err := net.Dial("tcp4", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()

		_, err = conn.Write([]byte("REQ|blocked.bin|4\n"))
		Expect(err).NotTo(HaveOccurred())

		buf := make([]byte, 64)
		n, err := conn.Read(buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(buf[:n])).To(Equal("REJ|CreateFileErr\n"))
	})
})

// callbackNop satisfies callback.Transfer for send-side tests that don't
// need to inspect callback invocations.
type callbackNop struct{}

func (callbackNop) OnReceiveRequest(string, uint64, string) bool { return true }
func (callbackNop) OnProgress(uint64, uint64)                    {}
func (callbackNop) OnComplete(bool, string)                      {}

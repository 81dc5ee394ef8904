// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dataio

import (
	"bytes"
	"io"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestLineIO(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "LineIO")
}

var _ = Describe("ReadLine", func() {
	It("reads a single LF-terminated line", func() {
		r := MakeReader(strings.NewReader("REQ|photo.png|1024\n"))
		line, err := ReadLine(r)
		Expect(err).NotTo(HaveOccurred())
		Expect(line).To(Equal("REQ|photo.png|1024"))
	})

	It("strips a trailing CR", func() {
		r := MakeReader(strings.NewReader("ACC\r\n"))
		line, err := ReadLine(r)
		Expect(err).NotTo(HaveOccurred())
		Expect(line).To(Equal("ACC"))
	})

	It("leaves the reader positioned at the byte after the newline", func() {
		r := MakeReader(strings.NewReader("ACC\nBINARYPAYLOAD"))
		line, err := ReadLine(r)
		Expect(err).NotTo(HaveOccurred())
		Expect(line).To(Equal("ACC"))

		rest := make([]byte, len("BINARYPAYLOAD"))
		Expect(ReadFull(r, rest)).To(Succeed())
		Expect(string(rest)).To(Equal("BINARYPAYLOAD"))
	})

	It("propagates EOF when no newline ever arrives", func() {
		r := MakeReader(bytes.NewReader([]byte("no newline here")))
		_, err := ReadLine(r)
		Expect(err).To(Equal(io.EOF))
	})

	It("errors out past the maximum line size", func() {
		huge := strings.Repeat("x", MaxLineSize+1)
		r := MakeReader(strings.NewReader(huge + "\n"))
		_, err := ReadLine(r)
		Expect(err).To(HaveOccurred())
	})
})

// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package protocol

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Transfer frames", func() {
	It("round-trips a REQ frame", func() {
		req := ReqFrame{FileName: "t.bin", FileSize: 7}
		parsedReq, parsedData, err := ParseHeaderLine(req.String())
		Expect(err).ToNot(HaveOccurred())
		Expect(parsedData).To(BeNil())
		Expect(*parsedReq).To(Equal(req))
	})

	It("round-trips a DATA frame", func() {
		data := DataFrame{FileName: "t.bin", Offset: 6}
		parsedReq, parsedData, err := ParseHeaderLine(data.String())
		Expect(err).ToNot(HaveOccurred())
		Expect(parsedReq).To(BeNil())
		Expect(*parsedData).To(Equal(data))
	})

	It("drops unknown verbs silently", func() {
		req, data, err := ParseHeaderLine("PING|a|b")
		Expect(err).ToNot(HaveOccurred())
		Expect(req).To(BeNil())
		Expect(data).To(BeNil())
	})

	It("drops under-sized frames silently", func() {
		req, data, err := ParseHeaderLine("REQ|onlytwo")
		Expect(err).ToNot(HaveOccurred())
		Expect(req).To(BeNil())
		Expect(data).To(BeNil())
	})

	It("rejects a REQ with an unparseable size", func() {
		_, _, err := ParseHeaderLine("REQ|t.bin|notanumber")
		Expect(err).To(HaveOccurred())
	})

	DescribeTable("handshake response classification",
		func(line string, accept bool) {
			Expect(IsAccept(line)).To(Equal(accept))
		},
		Entry("bare accept", "ACC", true),
		Entry("bare reject", "REJ", false),
		Entry("reject with reason", "REJ|CreateFileErr", false),
	)
})

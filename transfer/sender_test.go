// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package transfer

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("PlanChunks", func() {
	DescribeTable("sums to file_size with non-overlapping ranges",
		func(fileSize uint64, n int) {
			plan := PlanChunks(fileSize, n)
			Expect(plan).To(HaveLen(n))

			var total uint64
			var nextOffset uint64
			for _, c := range plan {
				Expect(c.Offset).To(Equal(nextOffset))
				total += c.Length
				nextOffset += c.Length
			}
			Expect(total).To(Equal(fileSize))
		},
		Entry("10 bytes over 4 workers", uint64(10), 4),
		Entry("evenly divisible", uint64(100), 5),
		Entry("single worker", uint64(7), 1),
		Entry("n > file_size", uint64(3), 8),
		Entry("zero-length file", uint64(0), 4),
	)

	It("matches the spec's parallel non-aligned example exactly", func() {
		plan := PlanChunks(10, 4)
		Expect(plan).To(Equal([]ChunkAssignment{
			{Offset: 0, Length: 2},
			{Offset: 2, Length: 2},
			{Offset: 4, Length: 2},
			{Offset: 6, Length: 4},
		}))
	})

	It("treats n < 1 as 1", func() {
		Expect(PlanChunks(42, 0)).To(Equal([]ChunkAssignment{{Offset: 0, Length: 42}}))
	})
})

package pgmplay

import (
	"bytes"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Frame", func() {
	frame := &Frame{width: 3, height: 2, glyphs: []byte(" .-=O@")}

	It("indexes glyphs row-major", func() {
		Expect(frame.At(0, 2)).To(Equal(byte('-')))
		Expect(frame.At(1, 0)).To(Equal(byte('=')))
		Expect(frame.Row(1)).To(Equal("=O@"))
	})

	It("writes one line per row", func() {
		var b bytes.Buffer
		n, err := frame.WriteTo(&b)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeEquivalentTo(8))
		Expect(b.String()).To(Equal(" .-\n=O@\n"))
		Expect(frame.String()).To(Equal(b.String()))
	})
})

package events

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("buffer", func() {
	It("pops messages in the order they were pushed", func() {
		buffer := newBuffer()

		buffer.PushBack(&message{Kind: ImportJobMessageKind, Data: []byte("msg1")})
		buffer.PushBack(&message{Kind: ImportJobMessageKind, Data: []byte("msg2")})
		buffer.PushBack(&message{Kind: ImportJobMessageKind, Data: []byte("msg3")})
		Expect(buffer.Size()).To(Equal(3))
		Expect(buffer.head.Data).To(Equal([]byte("msg1")))
		Expect(buffer.tail.Data).To(Equal([]byte("msg3")))

		for _, expected := range []string{"msg1", "msg2", "msg3"} {
			msg := buffer.Pop()
			Expect(msg).NotTo(BeNil())
			Expect(string(msg.Data)).To(Equal(expected))
		}

		Expect(buffer.Size()).To(Equal(0))
		Expect(buffer.head).To(BeNil())
		Expect(buffer.tail).To(BeNil())
		Expect(buffer.Pop()).To(BeNil())
	})

	It("can be reused once emptied", func() {
		buffer := newBuffer()
		buffer.PushBack(&message{Data: []byte("a")})
		Expect(buffer.Pop()).NotTo(BeNil())

		buffer.PushBack(&message{Data: []byte("b")})
		Expect(buffer.Size()).To(Equal(1))
		Expect(string(buffer.Pop().Data)).To(Equal("b"))
	})
})

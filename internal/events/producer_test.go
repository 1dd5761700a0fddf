package events

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	api "github.com/kubev2v/model-server/api/v1alpha1"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("producer", func() {
	Context("write", func() {
		It("writes successfully", func() {
			w := newTestWriter()
			ep := NewEventProducer(w, WithOutputTopic("imports"))

			Expect(ep.Write(context.TODO(), "kind1", bytes.NewReader([]byte("msg1")))).To(Succeed())
			Expect(ep.Write(context.TODO(), "kind2", bytes.NewReader([]byte("msg2")))).To(Succeed())

			Eventually(w.Len).Should(Equal(2))
			messages := w.Events()
			Expect(messages[0].Type()).To(Equal("kind1"))
			Expect(messages[1].Type()).To(Equal("kind2"))
			Expect(w.Topics()).To(ConsistOf("imports", "imports"))

			Expect(ep.Close()).To(Succeed())
			Expect(w.closed).To(BeTrue())
		})

		It("refuses events once closed", func() {
			ep := NewEventProducer(newTestWriter())
			Expect(ep.Close()).To(Succeed())

			err := ep.Write(context.TODO(), "kind", bytes.NewReader([]byte("late")))
			Expect(err).To(MatchError(ErrProducerClosed))
		})
	})

	Context("import jobs", func() {
		It("publishes the status of a job", func() {
			w := newTestWriter()
			ep := NewEventProducer(w, WithSource("test"))
			defer ep.Close()

			job := api.ImportJob{ID: uuid.New(), Locator: api.HubLocator{Repository: "owner/repo", File: "a.gguf"}}
			info := "/cache/owner/repo/a.gguf"
			ep.ObserveImportJob(job, api.CompletedStatus(&info))

			Eventually(w.Len).Should(Equal(1))
			e := w.Events()[0]
			Expect(e.Type()).To(Equal(ImportJobMessageKind))
			Expect(e.Source()).To(Equal("test"))

			var event ImportJobEvent
			Expect(json.Unmarshal(e.Data(), &event)).To(Succeed())
			Expect(event.JobID).To(Equal(job.ID))
			Expect(event.Source.Locator).To(Equal(job.Locator))
			Expect(event.Status.State).To(Equal(api.ImportJobStateCompleted))
			Expect(event.Message).To(Equal("completed(/cache/owner/repo/a.gguf)"))
		})
	})
})

type testwriter struct {
	lock     sync.Mutex
	messages []cloudevents.Event
	topics   []string
	closed   bool
}

func newTestWriter() *testwriter {
	return &testwriter{}
}

func (t *testwriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.messages = append(t.messages, e)
	t.topics = append(t.topics, topic)
	return nil
}

func (t *testwriter) Close(_ context.Context) error {
	t.closed = true
	return nil
}

func (t *testwriter) Len() int {
	t.lock.Lock()
	defer t.lock.Unlock()
	return len(t.messages)
}

func (t *testwriter) Events() []cloudevents.Event {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]cloudevents.Event(nil), t.messages...)
}

func (t *testwriter) Topics() []string {
	t.lock.Lock()
	defer t.lock.Unlock()
	return append([]string(nil), t.topics...)
}

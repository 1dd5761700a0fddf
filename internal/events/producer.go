package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	api "github.com/kubev2v/model-server/api/v1alpha1"
	"go.uber.org/zap"
)

const (
	ImportJobMessageKind string = "model.server.events.import"
	defaultTopic         string = "model.server.events"
	defaultSource        string = "model.server"

	closeTimeout = 5 * time.Second
)

var ErrProducerClosed = errors.New("event producer is closed")

// Writer is the interface to be implemented by the underlying writer.
type Writer interface {
	Write(ctx context.Context, topic string, e cloudevents.Event) error
	Close(ctx context.Context) error
}

// EventProducer queues events in an unbounded buffer and hands them to the
// writer from a single goroutine, so Write never waits on the writer.
type EventProducer struct {
	buffer    *buffer
	wakeCh    chan struct{}
	doneCh    chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	writer    Writer
	topic     string
	source    string
}

func NewEventProducer(w Writer, opts ...ProducerOptions) *EventProducer {
	ep := &EventProducer{
		buffer:  newBuffer(),
		wakeCh:  make(chan struct{}, 1),
		doneCh:  make(chan struct{}),
		stopped: make(chan struct{}),
		writer:  w,
		topic:   defaultTopic,
		source:  defaultSource,
	}

	for _, o := range opts {
		o(ep)
	}

	go ep.run()
	return ep
}

func (ep *EventProducer) Write(ctx context.Context, kind string, body io.Reader) error {
	select {
	case <-ep.doneCh:
		return ErrProducerClosed
	default:
	}

	d, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	ep.buffer.PushBack(&message{Kind: kind, Data: d})

	select {
	case ep.wakeCh <- struct{}{}:
	default:
	}
	return nil
}

// ObserveImportJob publishes every status change of an import job. Its
// signature matches the importer status observers.
func (ep *EventProducer) ObserveImportJob(job api.ImportJob, status api.ImportJobStatus) {
	data, err := json.Marshal(ImportJobEvent{
		JobID:   job.ID,
		Source:  api.LocatorEnvelope{Locator: job.Locator},
		Status:  status,
		Message: status.String(),
	})
	if err != nil {
		zap.S().Named("event_producer").Errorw("failed to marshal import job event", "job_id", job.ID, "error", err)
		return
	}

	if err := ep.Write(context.Background(), ImportJobMessageKind, bytes.NewReader(data)); err != nil {
		zap.S().Named("event_producer").Warnw("import job event dropped", "job_id", job.ID, "error", err)
	}
}

// Close sends the pending events and closes the writer.
func (ep *EventProducer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	ep.closeOnce.Do(func() { close(ep.doneCh) })
	select {
	case <-ep.stopped:
	case <-ctx.Done():
		zap.S().Named("event_producer").Warnw("pending events dropped", "count", ep.buffer.Size())
	}

	if err := ep.writer.Close(ctx); err != nil {
		zap.S().Named("event_producer").Errorf("event producer closed with error: %s", err)
		return err
	}

	zap.S().Named("event_producer").Info("event producer closed")
	return nil
}

func (ep *EventProducer) run() {
	defer close(ep.stopped)

	for {
		for msg := ep.buffer.Pop(); msg != nil; msg = ep.buffer.Pop() {
			ep.send(msg)
		}

		select {
		case <-ep.wakeCh:
		case <-ep.doneCh:
			for msg := ep.buffer.Pop(); msg != nil; msg = ep.buffer.Pop() {
				ep.send(msg)
			}
			return
		}
	}
}

func (ep *EventProducer) send(msg *message) {
	e := cloudevents.NewEvent()
	e.SetID(uuid.NewString())
	e.SetSource(ep.source)
	e.SetType(msg.Kind)
	e.SetTime(time.Now())
	_ = e.SetData(*cloudevents.StringOfApplicationJSON(), msg.Data)

	if err := ep.writer.Write(context.Background(), ep.topic, e); err != nil {
		zap.S().Named("event_producer").Errorw("failed to send event", "error", err, "type", msg.Kind)
	}
}

package importer

import (
	"time"

	api "github.com/kubev2v/model-server/api/v1alpha1"
)

const (
	defaultStatusBufferSize    = 128
	defaultRegistrationTimeout = 30 * time.Second
)

// StatusObserver is called by the status loop after a status has been applied.
// It runs on the loop goroutine: a slow observer slows status propagation.
type StatusObserver func(job api.ImportJob, status api.ImportJobStatus)

type ImporterOptions func(o *options)

type options struct {
	statusBufferSize     int
	maxConcurrentImports int
	registrationTimeout  time.Duration
	observers            []StatusObserver
}

func newOptions(opts ...ImporterOptions) *options {
	o := &options{
		statusBufferSize:    defaultStatusBufferSize,
		registrationTimeout: defaultRegistrationTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithStatusBufferSize sets the capacity of the status channel. Values below 1 are ignored.
func WithStatusBufferSize(size int) ImporterOptions {
	return func(o *options) {
		if size > 0 {
			o.statusBufferSize = size
		}
	}
}

// WithMaxConcurrentImports caps the number of fetches running at the same time.
// Zero or a negative value leaves the fan-out unbounded.
func WithMaxConcurrentImports(limit int) ImporterOptions {
	return func(o *options) {
		o.maxConcurrentImports = limit
	}
}

func WithRegistrationTimeout(timeout time.Duration) ImporterOptions {
	return func(o *options) {
		if timeout > 0 {
			o.registrationTimeout = timeout
		}
	}
}

func WithStatusObserver(observer StatusObserver) ImporterOptions {
	return func(o *options) {
		if observer != nil {
			o.observers = append(o.observers, observer)
		}
	}
}

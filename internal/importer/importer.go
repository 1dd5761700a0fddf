package importer

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/kubev2v/model-server/internal/validator"
	"github.com/kubev2v/model-server/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Fetcher makes the artifact named by a locator available on local disk and
// returns its path.
type Fetcher interface {
	Fetch(ctx context.Context, locator api.Locator) (string, error)
}

// ModelRegistry records completed imports as model versions.
type ModelRegistry interface {
	Register(ctx context.Context, req api.RegisterModelRequest) (uuid.UUID, error)
}

type lifecycle int

const (
	created lifecycle = iota
	running
	stopping
	stopped
)

type statusMessage struct {
	id     api.ImportJobID
	status api.ImportJobStatus
}

// Importer accepts import requests, runs one worker per job and funnels every
// worker status update through a single status loop. The loop is the only
// writer of the job table.
type Importer struct {
	jobs      *JobStore
	fetcher   Fetcher
	bridge    *RegistryBridge
	validator *validator.Validator
	opts      *options
	sem       *semaphore.Weighted

	statusCh chan statusMessage
	quit     chan struct{}
	loopDone chan struct{}

	mu     sync.RWMutex
	state  lifecycle
	ctx    context.Context
	cancel context.CancelFunc

	workers       sync.WaitGroup
	registrations sync.WaitGroup
}

func New(fetcher Fetcher, registry ModelRegistry, opts ...ImporterOptions) *Importer {
	o := newOptions(opts...)

	i := &Importer{
		jobs:      NewJobStore(),
		fetcher:   fetcher,
		bridge:    NewRegistryBridge(registry),
		validator: validator.NewValidator().Register(validator.NewLocatorValidationRules()...),
		opts:      o,
		statusCh:  make(chan statusMessage, o.statusBufferSize),
		quit:      make(chan struct{}),
		loopDone:  make(chan struct{}),
	}
	if o.maxConcurrentImports > 0 {
		i.sem = semaphore.NewWeighted(int64(o.maxConcurrentImports))
	}
	return i
}

// Start launches the status loop. Fetches run under a context derived from ctx:
// cancelling it aborts them and their jobs end up failed.
func (i *Importer) Start(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.state != created {
		return fmt.Errorf("importer cannot be started twice")
	}
	i.ctx, i.cancel = context.WithCancel(ctx)
	i.state = running

	go i.run()

	zap.S().Named("importer").Infow("importer started", "status_buffer_size", i.opts.statusBufferSize, "max_concurrent_imports", i.opts.maxConcurrentImports)
	return nil
}

// Shutdown stops accepting submissions, waits for in-flight jobs to reach a
// terminal state and for the status loop to apply everything it buffered.
// When ctx expires first, running fetches are cancelled, their jobs end up
// failed, and Shutdown returns ctx.Err() once the loop has exited.
func (i *Importer) Shutdown(ctx context.Context) error {
	i.mu.Lock()
	if i.state != running {
		i.mu.Unlock()
		return ErrImporterNotRunning
	}
	i.state = stopping
	i.mu.Unlock()

	logger := zap.S().Named("importer")
	logger.Info("shutting down importer")

	var shutdownErr error

	workersDone := make(chan struct{})
	go func() {
		i.workers.Wait()
		close(workersDone)
	}()

	select {
	case <-workersDone:
	case <-ctx.Done():
		logger.Warnw("shutdown deadline reached, cancelling running imports", "error", ctx.Err())
		shutdownErr = ctx.Err()
		i.cancel()
		// cancelled workers still report their failure to the loop
		<-workersDone
	}

	close(i.quit)
	<-i.loopDone

	registrationsDone := make(chan struct{})
	go func() {
		i.registrations.Wait()
		close(registrationsDone)
	}()

	select {
	case <-registrationsDone:
	case <-ctx.Done():
		shutdownErr = ctx.Err()
	}

	i.cancel()

	i.mu.Lock()
	i.state = stopped
	i.mu.Unlock()

	logger.Info("importer stopped")
	return shutdownErr
}

// Submit validates the locator, records a queued job and starts its worker.
// It returns as soon as the job is recorded.
func (i *Importer) Submit(locator api.Locator) (api.ImportJobID, error) {
	if locator == nil {
		return uuid.Nil, NewErrInvalidLocator(fmt.Errorf("locator is missing"))
	}
	if err := i.validator.Struct(locator); err != nil {
		return uuid.Nil, NewErrInvalidLocator(err)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.state != running {
		return uuid.Nil, ErrImporterNotRunning
	}

	job := api.ImportJob{ID: uuid.New(), Locator: locator}
	if err := i.jobs.Insert(JobEntry{Job: job, Status: api.QueuedStatus()}); err != nil {
		return uuid.Nil, err
	}

	i.workers.Add(1)
	go i.work(i.ctx, job)

	zap.S().Named("importer").Debugw("import job queued", "job_id", job.ID, "locator", job.Locator)
	return job.ID, nil
}

func (i *Importer) GetStatus(id api.ImportJobID) (api.ImportJobStatus, error) {
	entry, err := i.jobs.Get(id)
	if err != nil {
		return api.ImportJobStatus{}, err
	}
	return entry.Status, nil
}

func (i *Importer) ListStatus() map[api.ImportJobID]api.ImportJobStatus {
	return i.jobs.List()
}

// Counts returns the number of jobs per state.
func (i *Importer) Counts() map[api.ImportJobState]int {
	return i.jobs.Counts()
}

// emit hands a status update to the status loop. It only gives up once the
// loop has exited, which happens after a forced shutdown.
func (i *Importer) emit(id api.ImportJobID, status api.ImportJobStatus) bool {
	select {
	case i.statusCh <- statusMessage{id: id, status: status}:
		return true
	case <-i.loopDone:
		zap.S().Named("importer").Warnw("status loop stopped, dropping status update", "job_id", id, "status", status)
		return false
	}
}

func (i *Importer) run() {
	defer close(i.loopDone)

	for {
		select {
		case msg := <-i.statusCh:
			i.apply(msg)
		case <-i.quit:
			for {
				select {
				case msg := <-i.statusCh:
					i.apply(msg)
				default:
					return
				}
			}
		}
	}
}

func (i *Importer) apply(msg statusMessage) {
	logger := zap.S().Named("importer")

	job, err := i.jobs.apply(msg.id, msg.status)
	if err != nil {
		logger.Errorw("status update rejected", "job_id", msg.id, "status", msg.status, "error", err)
		return
	}

	logger.Debugw("import job status updated", "job_id", msg.id, "status", msg.status)

	if msg.status.IsTerminal() {
		metrics.IncreaseImportJobsTotalMetric(string(job.Locator.Type()), string(msg.status.State))
	}

	for _, observe := range i.opts.observers {
		i.notify(observe, job, msg.status)
	}

	if msg.status.State == api.ImportJobStateCompleted {
		i.register(job, msg.status)
	}
}

func (i *Importer) notify(observe StatusObserver, job api.ImportJob, status api.ImportJobStatus) {
	defer func() {
		if r := recover(); r != nil {
			zap.S().Named("importer").Errorw("status observer panicked", "job_id", job.ID, "panic", r)
		}
	}()
	observe(job, status)
}

// register records a completed job in the model registry without blocking the
// status loop. A failed registration leaves the job completed.
func (i *Importer) register(job api.ImportJob, status api.ImportJobStatus) {
	i.registrations.Add(1)
	go func() {
		defer i.registrations.Done()

		logger := zap.S().Named("importer").With("job_id", job.ID)
		defer func() {
			if r := recover(); r != nil {
				metrics.IncreaseModelRegistrationsTotalMetric("failed")
				logger.Errorw("model registration panicked", "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), i.opts.registrationTimeout)
		defer cancel()

		modelID, err := i.bridge.Register(ctx, job, status.Info)
		if err != nil {
			metrics.IncreaseModelRegistrationsTotalMetric("failed")
			logger.Errorw("failed to register imported model", "error", err)
			return
		}

		metrics.IncreaseModelRegistrationsTotalMetric("success")
		logger.Infow("imported model registered", "model_id", modelID)
	}()
}

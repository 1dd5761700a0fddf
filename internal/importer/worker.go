package importer

import (
	"context"
	"fmt"

	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/kubev2v/model-server/pkg/metrics"
	"go.uber.org/zap"
)

// work drives a single job to a terminal state. Every exit path, panics
// included, emits exactly one terminal status.
func (i *Importer) work(ctx context.Context, job api.ImportJob) {
	defer i.workers.Done()

	logger := zap.S().Named("import_worker").With("job_id", job.ID, "locator", job.Locator)

	terminal := false
	finish := func(status api.ImportJobStatus) {
		terminal = true
		i.emit(job.ID, status)
	}

	defer func() {
		r := recover()
		if terminal {
			return
		}
		msg := "import worker exited without a result"
		if r != nil {
			msg = fmt.Sprintf("import worker panicked: %v", r)
			logger.Errorw("import worker panicked", "panic", r)
		}
		finish(api.FailedStatus(&msg))
	}()

	if i.sem != nil {
		if err := i.sem.Acquire(ctx, 1); err != nil {
			msg := fmt.Sprintf("import cancelled before it started: %s", err)
			finish(api.FailedStatus(&msg))
			return
		}
		defer i.sem.Release(1)
	}

	if !i.emit(job.ID, api.InProgressStatus(0)) {
		terminal = true
		return
	}

	metrics.IncreaseImportsInFlightMetric()
	path, err := i.fetch(ctx, job.Locator)
	metrics.DecreaseImportsInFlightMetric()

	if err != nil {
		logger.Warnw("import failed", "error", err)
		msg := err.Error()
		finish(api.FailedStatus(&msg))
		return
	}

	logger.Infow("import completed", "path", path)
	finish(api.CompletedStatus(&path))
}

func (i *Importer) fetch(ctx context.Context, locator api.Locator) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetcher panicked: %v", r)
		}
	}()
	return i.fetcher.Fetch(ctx, locator)
}

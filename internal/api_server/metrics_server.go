package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	api "github.com/kubev2v/model-server/api/v1alpha1"
	"github.com/kubev2v/model-server/pkg/metrics"
	"github.com/lthibault/jitterbug/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const jobStateRefreshInterval = 15 * time.Second

// JobCounter reports how many import jobs are in each state.
type JobCounter interface {
	Counts() map[api.ImportJobState]int
}

type MetricServer struct {
	bindAddress string
	httpServer  *http.Server
	listener    net.Listener
	jobs        JobCounter
}

func NewMetricServer(bindAddress string, listener net.Listener, jobs JobCounter) *MetricServer {
	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())

	s := &MetricServer{
		bindAddress: bindAddress,
		listener:    listener,
		jobs:        jobs,
		httpServer: &http.Server{
			Addr:    bindAddress,
			Handler: router,
		},
	}

	return s
}

func (m *MetricServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		m.httpServer.SetKeepAlivesEnabled(false)
		_ = m.httpServer.Shutdown(ctxTimeout)
		zap.S().Named("metrics_server").Info("metrics server terminated")
	}()

	if m.jobs != nil {
		go m.refreshJobStates(ctx)
	}

	zap.S().Named("metrics_server").Infof("serving metrics: %s", m.bindAddress)
	if err := m.httpServer.Serve(m.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (m *MetricServer) refreshJobStates(ctx context.Context) {
	ticker := jitterbug.New(jobStateRefreshInterval, &jitterbug.Norm{Stdev: 500 * time.Millisecond, Mean: 0})
	defer ticker.Stop()

	m.updateJobStates()
	for {
		select {
		case <-ticker.C:
			m.updateJobStates()
		case <-ctx.Done():
			return
		}
	}
}

func (m *MetricServer) updateJobStates() {
	for state, count := range m.jobs.Counts() {
		metrics.UpdateImportJobStateCountMetric(string(state), count)
	}
}

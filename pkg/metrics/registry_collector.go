package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/kubev2v/model-server/internal/store/model"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const collectTimeout = 10 * time.Second

type StatsProvider interface {
	Statistics(ctx context.Context) (model.RegistryStats, error)
}

type registryStatsCollector struct {
	provider        StatsProvider
	totalModels     *prometheus.Desc
	totalVersions   *prometheus.Desc
	modelsByRuntime *prometheus.Desc
}

// NewRegistryStatsCollector exposes the content of the model registry as gauges
// computed on every scrape.
func NewRegistryStatsCollector(provider StatsProvider) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_registry_%s", modelServer, name)
	}

	return &registryStatsCollector{
		provider: provider,
		totalModels: prometheus.NewDesc(
			fqName("models_total"),
			"Total number of registered models.",
			nil,
			prometheus.Labels{},
		),
		totalVersions: prometheus.NewDesc(
			fqName("model_versions_total"),
			"Total number of registered model versions.",
			nil,
			prometheus.Labels{},
		),
		modelsByRuntime: prometheus.NewDesc(
			fqName("models_by_runtime_total"),
			"Total models by runtime",
			[]string{"runtime"},
			prometheus.Labels{},
		),
	}
}

func (c *registryStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalModels
	ch <- c.totalVersions
	ch <- c.modelsByRuntime
}

func (c *registryStatsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	stats, err := c.provider.Statistics(ctx)
	if err != nil {
		zap.S().Named("registry_collector").Errorf("failed to collect registry statistics: %s", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.totalModels, prometheus.GaugeValue, float64(stats.TotalModels))
	ch <- prometheus.MustNewConstMetric(c.totalVersions, prometheus.GaugeValue, float64(stats.TotalVersions))

	for runtime, total := range stats.ModelsByRuntime {
		ch <- prometheus.MustNewConstMetric(c.modelsByRuntime, prometheus.GaugeValue, float64(total), runtime)
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	modelServer = "model_server"

	importJobsTotal         = "import_jobs_total"
	importJobsStateCount    = "import_jobs_state_count"
	importsInFlight         = "imports_in_flight"
	modelRegistrationsTotal = "model_registrations_total"
	hubDownloadsTotal       = "hub_downloads_total"

	stateLabel    = "state"
	locatorLabel  = "locator"
	resultLabel   = "result"
	downloadLabel = "source"
)

var importJobsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: modelServer,
		Name:      importJobsTotal,
		Help:      "number of import jobs that reached a terminal state",
	},
	[]string{locatorLabel, stateLabel},
)

var importJobsStateCountMetric = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Subsystem: modelServer,
		Name:      importJobsStateCount,
		Help:      "number of import jobs in each state",
	},
	[]string{stateLabel},
)

var importsInFlightMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: modelServer,
		Name:      importsInFlight,
		Help:      "number of fetches currently running",
	},
)

var modelRegistrationsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: modelServer,
		Name:      modelRegistrationsTotal,
		Help:      "number of model registrations triggered by completed imports",
	},
	[]string{resultLabel},
)

var hubDownloadsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: modelServer,
		Name:      hubDownloadsTotal,
		Help:      "number of hub file downloads per source and result",
	},
	[]string{downloadLabel, resultLabel},
)

func init() {
	prometheus.MustRegister(
		importJobsTotalMetric,
		importJobsStateCountMetric,
		importsInFlightMetric,
		modelRegistrationsTotalMetric,
		hubDownloadsTotalMetric,
	)
}

func IncreaseImportJobsTotalMetric(locator, state string) {
	importJobsTotalMetric.With(prometheus.Labels{locatorLabel: locator, stateLabel: state}).Inc()
}

func UpdateImportJobStateCountMetric(state string, count int) {
	importJobsStateCountMetric.With(prometheus.Labels{stateLabel: state}).Set(float64(count))
}

func IncreaseImportsInFlightMetric() {
	importsInFlightMetric.Inc()
}

func DecreaseImportsInFlightMetric() {
	importsInFlightMetric.Dec()
}

func IncreaseModelRegistrationsTotalMetric(result string) {
	modelRegistrationsTotalMetric.With(prometheus.Labels{resultLabel: result}).Inc()
}

func IncreaseHubDownloadsTotalMetric(source, result string) {
	hubDownloadsTotalMetric.With(prometheus.Labels{downloadLabel: source, resultLabel: result}).Inc()
}

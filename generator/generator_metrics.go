package generator

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sky-uk/hexlane/util/metrics"
)

var once sync.Once

var (
	rangesGauge       prometheus.Gauge
	valuesGauge       prometheus.Gauge
	dataWidthGauge    prometheus.Gauge
	rangeLanesGauge   prometheus.Gauge
	valueLanesGauge   prometheus.Gauge
	laneFilesCounter  prometheus.Counter
	failedRunsCounter prometheus.Counter
)

func newGauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   metrics.PrometheusNamespace,
		Subsystem:   metrics.PrometheusGeneratorSubsystem,
		Name:        name,
		Help:        help,
		ConstLabels: metrics.ConstLabels(),
	})
}

func newCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   metrics.PrometheusNamespace,
		Subsystem:   metrics.PrometheusGeneratorSubsystem,
		Name:        name,
		Help:        help,
		ConstLabels: metrics.ConstLabels(),
	})
}

func initMetrics() {
	once.Do(func() {
		rangesGauge = newGauge("ranges", "The number of ranges in the last generated input.")
		valuesGauge = newGauge("values", "The number of values in the last generated input.")
		dataWidthGauge = newGauge("data_width_bits", "The data width of the last generated memories.")
		rangeLanesGauge = newGauge("range_lanes", "The range parallelism of the last run.")
		valueLanesGauge = newGauge("value_lanes", "The value parallelism of the last run.")
		laneFilesCounter = newCounter("lane_files_written_total", "The number of lane files written.")
		failedRunsCounter = newCounter("failed_runs_total", "The number of runs that ended in an error.")

		prometheus.MustRegister(rangesGauge)
		prometheus.MustRegister(valuesGauge)
		prometheus.MustRegister(dataWidthGauge)
		prometheus.MustRegister(rangeLanesGauge)
		prometheus.MustRegister(valueLanesGauge)
		prometheus.MustRegister(laneFilesCounter)
		prometheus.MustRegister(failedRunsCounter)
	})
}

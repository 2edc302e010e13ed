package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	// PrometheusNamespace is the metric namespace for hexlane binaries.
	PrometheusNamespace = "hexlane"
	// PrometheusGeneratorSubsystem is the metric subsystem for the file generator.
	PrometheusGeneratorSubsystem = "generator"
)

var constLabels = make(prometheus.Labels)

// SetConstLabels sets the labels attached to every hexlane metric. It must be called
// before any metric is created.
func SetConstLabels(labels prometheus.Labels) {
	constLabels = labels
}

// ConstLabels should be used when creating a prometheus metric as a set of default labels.
// To ensure the correct const labels are used, make sure metrics are not created in init().
func ConstLabels() prometheus.Labels {
	return constLabels
}

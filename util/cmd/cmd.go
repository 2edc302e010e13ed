package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/onrik/logrus/filename"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/prometheus/common/expfmt"
	"github.com/sethgrid/pester"
	log "github.com/sirupsen/logrus"
	"github.com/sky-uk/hexlane/util/metrics"
)

// ConfigureLogging sets logging to Stdout and manages setting debug level
func ConfigureLogging(debug bool) {
	// logging is the main output, so write it all to stdout
	log.SetOutput(os.Stdout)
	if debug {
		log.SetLevel(log.DebugLevel)
	}
	filenameHook := filename.NewHook()
	filenameHook.Field = "source"
	log.AddHook(filenameHook)
}

// ConfigureMetrics sets the default labels. This must be called before any metrics
// are defined.
func ConfigureMetrics(prometheusLabels KeyValues) {
	metrics.SetConstLabels(prometheusLabels.Labels())
}

// PushMetrics pushes everything in the gatherer to a prometheus pushgateway once,
// retrying failed requests. It does nothing if pushgatewayURL is empty.
func PushMetrics(job, pushgatewayURL string, retries int, gatherer prometheus.Gatherer) error {
	if pushgatewayURL == "" {
		return nil
	}

	instance, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("unable to lookup hostname for metrics: %w", err)
	}

	client := pester.New()
	client.MaxRetries = retries
	client.Backoff = pester.ExponentialBackoff

	err = push.New(pushgatewayURL, job).
		Gatherer(gatherer).
		Grouping("instance", instance).
		Client(client).
		Push()
	if err != nil {
		return fmt.Errorf("unable to push metrics: %w", err)
	}
	log.Debugf("Pushed metrics to %s", pushgatewayURL)
	return nil
}

// WriteMetricsTextfile writes everything in the gatherer to path in the text exposition
// format, replacing the file in one rename so a textfile collector never reads it half
// written. It does nothing if path is empty.
func WriteMetricsTextfile(path string, gatherer prometheus.Gatherer) error {
	if path == "" {
		return nil
	}

	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("unable to gather metrics: %w", err)
	}

	tmp, err := ioutil.TempFile(filepath.Dir(path), filepath.Base(path))
	if err != nil {
		return fmt.Errorf("unable to create metrics file: %w", err)
	}
	defer os.Remove(tmp.Name())

	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(tmp, family); err != nil {
			tmp.Close()
			return fmt.Errorf("unable to write metrics file: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to write metrics file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("unable to write metrics file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("unable to write metrics file: %w", err)
	}
	return nil
}

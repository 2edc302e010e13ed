package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/sky-uk/hexlane/generator"
	"github.com/sky-uk/hexlane/hexfile"
	"github.com/sky-uk/hexlane/manifest"
	"github.com/sky-uk/hexlane/params"
	"github.com/sky-uk/hexlane/publish"

	cmdutil "github.com/sky-uk/hexlane/util/cmd"
)

const metricsJob = "hexlane"

func runCmd(args []string) error {
	rangeParallelism, err := parseParallelism("range-parallelism", args[1])
	if err != nil {
		return err
	}
	valueParallelism, err := parseParallelism("value-parallelism", args[2])
	if err != nil {
		return err
	}

	cmdutil.ConfigureLogging(debug)
	cmdutil.ConfigureMetrics(pushgatewayLabels)

	conf, err := createGeneratorConfig(args[0], rangeParallelism, valueParallelism)
	if err != nil {
		return err
	}

	g, err := generator.New(conf)
	if err != nil {
		return err
	}

	_, runErr := g.Run()
	reportMetrics()
	return runErr
}

func parseParallelism(name, arg string) (int, error) {
	parallelism, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, arg)
	}
	return parallelism, nil
}

func classification() params.Classification {
	if legacyClassification {
		return params.ClassifyByContent
	}
	return params.ClassifyByPosition
}

func createGeneratorConfig(inputPath string, rangeParallelism, valueParallelism int) (generator.Config, error) {
	conf := generator.Config{
		InputPath:        inputPath,
		RangeParallelism: rangeParallelism,
		ValueParallelism: valueParallelism,
		Classification:   classification(),
		Sink:             hexfile.New(filepath.Join(outputDir, hexDirName)),
		Manifest: manifest.New(manifest.Conf{
			Path:         filepath.Join(outputDir, manifestName),
			TemplatePath: manifestTemplate,
			PackageName:  packageName,
		}),
	}

	if s3Bucket != "" {
		publisher, err := publish.New(publish.Conf{
			Region: region,
			Bucket: s3Bucket,
			Prefix: s3Prefix,
			Root:   outputDir,
		})
		if err != nil {
			return conf, err
		}
		conf.Publisher = publisher
	}

	return conf, nil
}

func reportMetrics() {
	if err := cmdutil.PushMetrics(metricsJob, pushgatewayURL, pushgatewayRetries, prometheus.DefaultGatherer); err != nil {
		log.Warnf("Unable to push metrics: %v", err)
	}
	if err := cmdutil.WriteMetricsTextfile(metricsTextfile, prometheus.DefaultGatherer); err != nil {
		log.Warnf("Unable to write metrics: %v", err)
	}
}

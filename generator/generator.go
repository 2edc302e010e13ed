/*
Package generator runs a single conversion of a range/value document into lane files and
a parameter manifest.
*/
package generator

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/sky-uk/hexlane/hexfile"
	"github.com/sky-uk/hexlane/input"
	"github.com/sky-uk/hexlane/lanes"
	"github.com/sky-uk/hexlane/manifest"
	"github.com/sky-uk/hexlane/params"
	"github.com/sky-uk/hexlane/publish"
)

// Generator converts one input document.
type Generator interface {
	// Run the conversion. Nothing is written unless the whole input is valid.
	Run() (*Result, error)
}

// Config for creating a new generator.
type Config struct {
	InputPath        string
	RangeParallelism int
	ValueParallelism int
	Classification   params.Classification
	Sink             hexfile.Sink
	Manifest         manifest.Writer
	// Publisher is optional.
	Publisher publish.Publisher
}

// Result describes a completed run.
type Result struct {
	Parameters      params.Parameters
	Layout          *lanes.Layout
	Fields          manifest.Fields
	ManifestUpdated bool
	// Files lists every written path, manifest last.
	Files []string
}

type generator struct {
	Config
}

// New creates a generator.
func New(conf Config) (Generator, error) {
	if conf.Sink == nil {
		return nil, errors.New("unable to create generator: missing lane file sink")
	}
	if conf.Manifest == nil {
		return nil, errors.New("unable to create generator: missing manifest writer")
	}
	initMetrics()
	return &generator{Config: conf}, nil
}

func (g *generator) Run() (*Result, error) {
	result, err := g.run()
	if err != nil {
		failedRunsCounter.Inc()
		return nil, err
	}
	return result, nil
}

func (g *generator) run() (*Result, error) {
	log.Infof("Input file: %s", g.InputPath)
	log.Infof("Range parallelism: %d", g.RangeParallelism)
	log.Infof("Value parallelism: %d", g.ValueParallelism)

	doc, err := input.ReadFile(g.InputPath)
	if err != nil {
		return nil, err
	}

	p, err := params.Derive(doc, g.Classification)
	if err != nil {
		return nil, fmt.Errorf("unable to derive parameters: %w", err)
	}
	log.WithFields(log.Fields{
		"ranges":    p.RangesCount,
		"values":    p.ValuesCount,
		"max":       p.MaxValue,
		"bitWidth":  p.BitWidth,
		"hexDigits": p.HexWidth,
	}).Info("Derived parameters")

	if err := lanes.Validate(p, g.RangeParallelism, g.ValueParallelism); err != nil {
		return nil, err
	}

	layout, err := lanes.Partition(doc, p, g.RangeParallelism, g.ValueParallelism)
	if err != nil {
		return nil, fmt.Errorf("unable to partition input: %w", err)
	}

	result := &Result{Parameters: p, Layout: layout}

	if err := g.Sink.Prepare(); err != nil {
		return nil, err
	}
	for _, file := range layout.Files() {
		if err := g.Sink.WriteLane(file.Name, file.Entries); err != nil {
			return nil, err
		}
		laneFilesCounter.Inc()
		result.Files = append(result.Files, g.Sink.FilePath(file.Name))
	}

	result.Fields = manifest.NewFields(p, layout)
	result.ManifestUpdated, err = g.Manifest.Write(result.Fields)
	if err != nil {
		return nil, err
	}
	result.Files = append(result.Files, g.Manifest.Path())

	if g.Publisher != nil {
		if err := g.Publisher.Publish(result.Files); err != nil {
			return nil, fmt.Errorf("unable to publish artifacts: %w", err)
		}
	}

	rangesGauge.Set(float64(p.RangesCount))
	valuesGauge.Set(float64(p.ValuesCount))
	dataWidthGauge.Set(float64(p.BitWidth))
	rangeLanesGauge.Set(float64(g.RangeParallelism))
	valueLanesGauge.Set(float64(g.ValueParallelism))

	log.Infof("Wrote %d lane files and %s", len(result.Files)-1, g.Manifest.Path())
	return result, nil
}

/*
Package manifest renders the SystemVerilog parameter package describing the lane files.
*/
package manifest

import (
	"bytes"
	_ "embed" // default template
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"text/template"

	log "github.com/sirupsen/logrus"
	"github.com/sky-uk/hexlane/lanes"
	"github.com/sky-uk/hexlane/params"
	"github.com/sky-uk/hexlane/util"
)

// DefaultPackageName is the SystemVerilog package name used when none is configured.
const DefaultPackageName = "params_pkg"

//go:embed params_pkg.sv.tmpl
var defaultTemplate string

// Conf configuration for the manifest writer.
type Conf struct {
	// Path of the generated package file.
	Path string
	// TemplatePath overrides the built in template when set.
	TemplatePath string
	PackageName  string
}

// Fields are the values available to the manifest template.
type Fields struct {
	PackageName            string
	DataWidth              int
	RangeParallelism       int
	ValueParallelism       int
	RangesCount            int
	ValuesCount            int
	CounterWidth           int
	RangeMemFileLength     int
	RangeMemAddressWidth   int
	ValueMemFileLength     int
	ValueMemAddressWidth   int
	ValueLengthChangeIndex int
	RangeLengthChangeIndex int
}

// NewFields collects every manifest field from the derived parameters and lane layout.
func NewFields(p params.Parameters, layout *lanes.Layout) Fields {
	return Fields{
		DataWidth:              p.BitWidth,
		RangeParallelism:       layout.RangeLowBounds.Lanes(),
		ValueParallelism:       layout.Values.Lanes(),
		RangesCount:            p.RangesCount,
		ValuesCount:            p.ValuesCount,
		CounterWidth:           util.CeilLog2(p.ValuesCount),
		RangeMemFileLength:     layout.RangeFileLength(),
		RangeMemAddressWidth:   layout.RangeAddressWidth(),
		ValueMemFileLength:     layout.ValueFileLength(),
		ValueMemAddressWidth:   layout.ValueAddressWidth(),
		ValueLengthChangeIndex: layout.ValueLengthChangeIndex,
		RangeLengthChangeIndex: layout.RangeLengthChangeIndex,
	}
}

// Writer writes the manifest file.
type Writer interface {
	// Write renders the manifest, returning true if the file changed.
	Write(fields Fields) (bool, error)
	// Path of the manifest file.
	Path() string
}

type writer struct {
	Conf
}

// New creates a manifest writer.
func New(conf Conf) Writer {
	if conf.PackageName == "" {
		conf.PackageName = DefaultPackageName
	}
	return &writer{Conf: conf}
}

func (w *writer) Path() string {
	return w.Conf.Path
}

func (w *writer) Write(fields Fields) (bool, error) {
	if fields.PackageName == "" {
		fields.PackageName = w.PackageName
	}

	updated, err := w.render(fields)
	if err != nil {
		return false, err
	}

	existing, err := ioutil.ReadFile(w.Conf.Path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Debugf("Error trying to read %s: %v", w.Conf.Path, err)
		}
		log.Infof("Creating %s", w.Conf.Path)
		if err := os.MkdirAll(filepath.Dir(w.Conf.Path), 0755); err != nil {
			return false, fmt.Errorf("unable to create manifest directory: %w", err)
		}
		return writeFile(w.Conf.Path, updated)
	}

	if bytes.Equal(existing, updated) {
		log.Info("Manifest has not changed")
		return false, nil
	}

	log.Infof("Updating %s", w.Conf.Path)
	return writeFile(w.Conf.Path, updated)
}

func (w *writer) render(fields Fields) ([]byte, error) {
	tmpl, err := w.template()
	if err != nil {
		return nil, err
	}

	var output bytes.Buffer
	if err := tmpl.Execute(&output, fields); err != nil {
		return nil, fmt.Errorf("unable to create manifest from template: %w", err)
	}
	return output.Bytes(), nil
}

func (w *writer) template() (*template.Template, error) {
	if w.TemplatePath == "" {
		return template.New("manifest").Option("missingkey=error").Parse(defaultTemplate)
	}
	tmpl, err := template.ParseFiles(w.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("unable to parse manifest template: %w", err)
	}
	return tmpl.Option("missingkey=error"), nil
}

func writeFile(location string, contents []byte) (bool, error) {
	if err := ioutil.WriteFile(location, contents, 0644); err != nil {
		return false, fmt.Errorf("unable to write manifest: %w", err)
	}
	return true, nil
}

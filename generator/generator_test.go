package generator

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/sky-uk/hexlane/hexfile"
	"github.com/sky-uk/hexlane/lanes"
	"github.com/sky-uk/hexlane/manifest"
	"github.com/sky-uk/hexlane/params"
	"github.com/stretchr/testify/mock"
)

const example = "10-20\n5-7\n\n3\n9\n15\n"

type fakeSink struct {
	mock.Mock
}

func (s *fakeSink) Prepare() error {
	return s.Called().Error(0)
}

func (s *fakeSink) WriteLane(name string, entries []string) error {
	return s.Called(name, entries).Error(0)
}

func (s *fakeSink) FilePath(name string) string {
	return s.Called(name).String(0)
}

type fakeManifest struct {
	mock.Mock
}

func (m *fakeManifest) Write(fields manifest.Fields) (bool, error) {
	args := m.Called(fields)
	return args.Bool(0), args.Error(1)
}

func (m *fakeManifest) Path() string {
	return m.Called().String(0)
}

type fakePublisher struct {
	mock.Mock
}

func (p *fakePublisher) Publish(files []string) error {
	return p.Called(files).Error(0)
}

func gaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	Expect(g.Write(m)).To(Succeed())
	return m.GetGauge().GetValue()
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	Expect(c.Write(m)).To(Succeed())
	return m.GetCounter().GetValue()
}

func listDir(dir string) []string {
	infos, err := ioutil.ReadDir(dir)
	Expect(err).NotTo(HaveOccurred())
	var names []string
	for _, info := range infos {
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names
}

func readLines(path string) string {
	contents, err := ioutil.ReadFile(path)
	Expect(err).NotTo(HaveOccurred())
	return string(contents)
}

var _ = Describe("Generator", func() {
	var (
		tmpDir    string
		inputPath string
	)

	writeInput := func(text string) {
		Expect(ioutil.WriteFile(inputPath, []byte(text), 0644)).To(Succeed())
	}

	BeforeEach(func() {
		initMetrics()
		var err error
		tmpDir, err = ioutil.TempDir("", "generator-test")
		Expect(err).NotTo(HaveOccurred())
		inputPath = filepath.Join(tmpDir, "input.txt")
		writeInput(example)
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("creation", func() {
		It("requires a sink and a manifest writer", func() {
			_, err := New(Config{Manifest: &fakeManifest{}})
			Expect(err).To(HaveOccurred())

			_, err = New(Config{Sink: &fakeSink{}})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("with a fake sink", func() {
		var (
			sink      *fakeSink
			writer    *fakeManifest
			publisher *fakePublisher
		)

		newGenerator := func(rangeParallelism, valueParallelism int) Generator {
			g, err := New(Config{
				InputPath:        inputPath,
				RangeParallelism: rangeParallelism,
				ValueParallelism: valueParallelism,
				Sink:             sink,
				Manifest:         writer,
				Publisher:        publisher,
			})
			Expect(err).NotTo(HaveOccurred())
			return g
		}

		BeforeEach(func() {
			sink = &fakeSink{}
			writer = &fakeManifest{}
			publisher = &fakePublisher{}
		})

		AfterEach(func() {
			sink.AssertExpectations(GinkgoT())
			writer.AssertExpectations(GinkgoT())
			publisher.AssertExpectations(GinkgoT())
		})

		It("writes nothing when value parallelism exceeds the value count", func() {
			_, err := newGenerator(1, 4).Run()

			Expect(errors.Is(err, lanes.ErrParallelismExceedsCount)).To(BeTrue())
			sink.AssertNotCalled(GinkgoT(), "Prepare")
			sink.AssertNotCalled(GinkgoT(), "WriteLane", mock.Anything, mock.Anything)
			writer.AssertNotCalled(GinkgoT(), "Write", mock.Anything)
		})

		It("writes nothing when parallelism is zero", func() {
			_, err := newGenerator(0, 1).Run()

			Expect(errors.Is(err, lanes.ErrZeroParallelism)).To(BeTrue())
			sink.AssertNotCalled(GinkgoT(), "Prepare")
		})

		It("writes nothing when a value line is malformed", func() {
			writeInput("10-20\n\n3\nnine\n")

			_, err := newGenerator(1, 1).Run()

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("nine"))
			sink.AssertNotCalled(GinkgoT(), "Prepare")
		})

		It("fails when the input is missing", func() {
			Expect(os.Remove(inputPath)).To(Succeed())

			_, err := newGenerator(1, 1).Run()

			Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
		})

		It("counts failed runs", func() {
			before := counterValue(failedRunsCounter)

			_, err := newGenerator(3, 1).Run()

			Expect(err).To(HaveOccurred())
			Expect(counterValue(failedRunsCounter)).To(Equal(before + 1))
		})

		It("prepares the sink once, writes every lane, then the manifest, then publishes", func() {
			var order []string
			record := func(step string) func(mock.Arguments) {
				return func(mock.Arguments) { order = append(order, step) }
			}
			sink.On("Prepare").Return(nil).Run(record("prepare")).Once()
			for _, name := range []string{"range_high_bound_0", "range_low_bound_0", "values_0", "values_1"} {
				sink.On("WriteLane", name, mock.Anything).Return(nil).Run(record(name)).Once()
				sink.On("FilePath", name).Return("/hex/" + name + ".hex")
			}
			writer.On("Write", mock.AnythingOfType("manifest.Fields")).Return(true, nil).Run(record("manifest")).Once()
			writer.On("Path").Return("/params_pkg.sv")
			publisher.On("Publish", []string{
				"/hex/range_high_bound_0.hex",
				"/hex/range_low_bound_0.hex",
				"/hex/values_0.hex",
				"/hex/values_1.hex",
				"/params_pkg.sv",
			}).Return(nil).Run(record("publish")).Once()

			result, err := newGenerator(1, 2).Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(order).To(Equal([]string{
				"prepare", "range_high_bound_0", "range_low_bound_0", "values_0", "values_1", "manifest", "publish",
			}))
			Expect(result.ManifestUpdated).To(BeTrue())
			sink.AssertCalled(GinkgoT(), "WriteLane", "values_1", []string{"09"})
		})

		It("stops at the first lane write failure", func() {
			diskFull := errors.New("disk full")
			sink.On("Prepare").Return(nil)
			sink.On("WriteLane", "range_high_bound_0", mock.Anything).Return(diskFull)

			_, err := newGenerator(1, 2).Run()

			Expect(errors.Is(err, diskFull)).To(BeTrue())
			writer.AssertNotCalled(GinkgoT(), "Write", mock.Anything)
		})

		It("reports publish failures", func() {
			sink.On("Prepare").Return(nil)
			sink.On("WriteLane", mock.Anything, mock.Anything).Return(nil)
			sink.On("FilePath", mock.Anything).Return("/hex/lane.hex")
			writer.On("Write", mock.Anything).Return(false, nil)
			writer.On("Path").Return("/params_pkg.sv")
			publisher.On("Publish", mock.Anything).Return(errors.New("no credentials"))

			_, err := newGenerator(2, 3).Run()

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("unable to publish artifacts"))
		})
	})

	Describe("writing to a directory", func() {
		var (
			hexDir       string
			manifestPath string
		)

		run := func(rangeParallelism, valueParallelism int, classification params.Classification) (*Result, error) {
			g, err := New(Config{
				InputPath:        inputPath,
				RangeParallelism: rangeParallelism,
				ValueParallelism: valueParallelism,
				Classification:   classification,
				Sink:             hexfile.New(hexDir),
				Manifest:         manifest.New(manifest.Conf{Path: manifestPath}),
			})
			Expect(err).NotTo(HaveOccurred())
			return g.Run()
		}

		BeforeEach(func() {
			hexDir = filepath.Join(tmpDir, "hardware", "hex")
			manifestPath = filepath.Join(tmpDir, "hardware", "params_pkg.sv")
		})

		It("produces the expected lane files and manifest", func() {
			result, err := run(1, 2, params.ClassifyByPosition)

			Expect(err).NotTo(HaveOccurred())
			Expect(listDir(hexDir)).To(Equal([]string{
				"range_high_bound_0.hex", "range_low_bound_0.hex", "values_0.hex", "values_1.hex",
			}))
			Expect(readLines(filepath.Join(hexDir, "range_low_bound_0.hex"))).To(Equal("0a\n05\n"))
			Expect(readLines(filepath.Join(hexDir, "range_high_bound_0.hex"))).To(Equal("14\n07\n"))
			Expect(readLines(filepath.Join(hexDir, "values_0.hex"))).To(Equal("03\n0f\n"))
			Expect(readLines(filepath.Join(hexDir, "values_1.hex"))).To(Equal("09\n"))

			sv := readLines(manifestPath)
			Expect(sv).To(ContainSubstring("VALUE_LENGTH_CHANGE_INDEX = 1;"))
			Expect(sv).To(ContainSubstring("RANGE_LENGTH_CHANGE_INDEX = -1;"))
			Expect(result.Fields.DataWidth).To(Equal(5))
			Expect(result.Files).To(HaveLen(5))
		})

		It("records the run in metrics", func() {
			before := counterValue(laneFilesCounter)

			_, err := run(2, 3, params.ClassifyByPosition)

			Expect(err).NotTo(HaveOccurred())
			Expect(gaugeValue(rangesGauge)).To(Equal(2.0))
			Expect(gaugeValue(valuesGauge)).To(Equal(3.0))
			Expect(gaugeValue(dataWidthGauge)).To(Equal(5.0))
			Expect(gaugeValue(rangeLanesGauge)).To(Equal(2.0))
			Expect(gaugeValue(valueLanesGauge)).To(Equal(3.0))
			Expect(counterValue(laneFilesCounter)).To(Equal(before + 7))
		})

		It("removes lane files left by a run with more lanes", func() {
			_, err := run(2, 3, params.ClassifyByPosition)
			Expect(err).NotTo(HaveOccurred())
			Expect(listDir(hexDir)).To(HaveLen(7))

			_, err = run(1, 1, params.ClassifyByPosition)
			Expect(err).NotTo(HaveOccurred())
			Expect(listDir(hexDir)).To(Equal([]string{"range_high_bound_0.hex", "range_low_bound_0.hex", "values_0.hex"}))
			Expect(readLines(filepath.Join(hexDir, "values_0.hex"))).To(Equal("03\n09\n0f\n"))
		})

		It("keeps the previous output when a later run fails", func() {
			_, err := run(1, 2, params.ClassifyByPosition)
			Expect(err).NotTo(HaveOccurred())

			_, err = run(1, 5, params.ClassifyByPosition)
			Expect(err).To(HaveOccurred())
			Expect(listDir(hexDir)).To(HaveLen(4))
		})

		It("rejects inputs whose classifications disagree", func() {
			writeInput("1-3\n\n4\n5\n6-9\n")

			_, err := run(1, 1, params.ClassifyByContent)

			Expect(errors.Is(err, lanes.ErrCountMismatch)).To(BeTrue())
			_, statErr := os.Stat(hexDir)
			Expect(os.IsNotExist(statErr)).To(BeTrue())
		})
	})
})

package cmd

import (
	"fmt"
	"os"

	"github.com/sky-uk/hexlane/manifest"
	"github.com/sky-uk/hexlane/util/cmd"
	"github.com/spf13/cobra"
)

var (
	// version of binary, injected by "go tool link -X"
	version string
	// buildTime of binary, injected by "go tool link -X"
	buildTime string

	rootCmd = &cobra.Command{
		Use:     "hexlane <input-file> <range-parallelism> <value-parallelism>",
		Version: printVersion(),
		Short:   "hexlane generates lane memory files for a parallel range checker",
		Long: `hexlane reads a list of ranges and values and writes the memory initialisation
files and SystemVerilog parameter package for a range checker that compares
value-parallelism values against range-parallelism ranges every clock cycle.

The input holds one "low-high" range per line, a blank line, then one value per
line. Entries are striped round-robin over the lanes of each kind.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return runCmd(args)
		},
	}
)

var (
	debug bool

	outputDir            string
	manifestTemplate     string
	packageName          string
	legacyClassification bool

	s3Bucket string
	s3Prefix string
	region   string

	pushgatewayURL     string
	pushgatewayRetries int
	pushgatewayLabels  cmd.KeyValues
	metricsTextfile    string
)

const (
	defaultOutputDir          = "../hardware"
	defaultRegion             = "eu-west-1"
	defaultPushgatewayRetries = 3

	hexDirName   = "hex"
	manifestName = "params_pkg.sv"
)

func init() {
	configureGeneralFlags()
	configureOutputFlags()
	configurePublishFlags()
	configurePrometheusFlags()
}

func configureGeneralFlags() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug logging.")
	rootCmd.PersistentFlags().BoolVar(&legacyClassification, "legacy-classification", false,
		"Count any line containing '-' as a range when deriving parameters, instead of every line before "+
			"the first blank line. Inputs where the two rules disagree are rejected.")
}

func configureOutputFlags() {
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", defaultOutputDir,
		"Directory for the parameter package. Lane files go in its '"+hexDirName+"' subdirectory, which is "+
			"deleted and recreated on every successful run.")
	rootCmd.PersistentFlags().StringVar(&manifestTemplate, "manifest-template", "",
		"Path to a text/template used instead of the built in parameter package template.")
	rootCmd.PersistentFlags().StringVar(&packageName, "package-name", manifest.DefaultPackageName,
		"Name of the generated SystemVerilog package.")
}

func configurePublishFlags() {
	rootCmd.PersistentFlags().StringVar(&s3Bucket, "s3-bucket", "",
		"S3 bucket to upload the generated files to. Leave blank to not publish.")
	rootCmd.PersistentFlags().StringVar(&s3Prefix, "s3-prefix", "",
		"Key prefix for uploaded files.")
	rootCmd.PersistentFlags().StringVar(&region, "region", defaultRegion,
		"AWS region of the S3 bucket.")
}

func configurePrometheusFlags() {
	rootCmd.PersistentFlags().StringVar(&pushgatewayURL, "pushgateway", "",
		"Prometheus pushgateway URL for pushing run metrics. Leave blank to not push metrics.")
	rootCmd.PersistentFlags().IntVar(&pushgatewayRetries, "pushgateway-retries", defaultPushgatewayRetries,
		"Number of attempts when pushing metrics.")
	rootCmd.PersistentFlags().Var(&pushgatewayLabels, "pushgateway-label",
		"A label=value pair to attach to metrics pushed to prometheus. Specify multiple times for multiple labels.")
	rootCmd.PersistentFlags().StringVar(&metricsTextfile, "metrics-textfile", "",
		"Write run metrics to this file for a node exporter textfile collector. Leave blank to not write.")
}

func printVersion() string {
	return fmt.Sprintf("%s (%s)", version, buildTime)
}

// Execute is the entry point for Cobra commands
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/depthaudit/core"
	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/internal/loader"
	"github.com/huangsam/depthaudit/internal/outwriter"
	"github.com/huangsam/depthaudit/internal/parquet"
	"github.com/huangsam/depthaudit/internal/plotsink"
	"github.com/huangsam/depthaudit/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "depthaudit",
	Short:              "Audit crowd-sourced relative depth annotations.",
	Long:               `Depthaudit scores pairwise keypoint depth judgments against 3D ground truth to show you which annotators and images to trust.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".depthaudit") // Name of config file (without extension)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("DEPTHAUDIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Set defaults in Viper
	viper.SetDefault("hits", contract.DefaultHitsPath)
	viper.SetDefault("truth", contract.DefaultTruthPath)
	viper.SetDefault("rotations", contract.DefaultRotationsPath)
	viper.SetDefault("threshold", schema.DefaultWorkerThreshold)
	viper.SetDefault("image-threshold", schema.DefaultImageThreshold)
	viper.SetDefault("tie-rule", schema.LenientTies)
	viper.SetDefault("provenance", schema.AllProvenance)
	viper.SetDefault("depth-axis", schema.DefaultDepthAxis)
	viper.SetDefault("bin-width", schema.DefaultBinWidth)
	viper.SetDefault("absolute", true)
	viper.SetDefault("seed", contract.DefaultSeed)
	viper.SetDefault("limit", contract.DefaultResultLimit)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	input.LookupArgs = args

	// 4. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	contract.SetColors(cfg.UseColors)
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// newSources wires the JSON file loaders named by the config.
func newSources(c *contract.Config) contract.DataSources {
	return contract.DataSources{
		Hits:      loader.NewHitFile(c.HitsPath),
		Truths:    loader.NewTruthFile(c.TruthPath),
		Rotations: loader.NewRotationFile(c.RotationsPath),
	}
}

// newSink picks the report sink for the configured output, adding the plot
// sink when a plot directory is set.
func newSink(c *contract.Config) contract.ResultSink {
	var primary contract.ResultSink = outwriter.NewOutWriter(c)
	if c.Output == schema.ParquetOut {
		primary = parquet.NewSink(c.OutputFile)
	}
	if c.PlotDir == "" {
		return primary
	}
	return outwriter.NewMultiSink(primary, plotsink.NewSink(c.PlotDir))
}

// runExecutor adapts an executor to a cobra Run function.
func runExecutor(exec core.ExecutorFunc, what string) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		if err := exec(rootCtx, cfg, newSources(cfg), newSink(cfg)); err != nil {
			contract.LogFatal("Cannot run "+what, err)
		}
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

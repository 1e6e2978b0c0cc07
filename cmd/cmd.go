// Package cmd defines the command-line interface for depthaudit.
package cmd

import (
	"github.com/huangsam/depthaudit/internal/contract"
	"github.com/huangsam/depthaudit/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(workersCmd)
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(wrongnessCmd)
	rootCmd.AddCommand(agreementCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(depthstatsCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(versionCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("hits", contract.DefaultHitsPath, "Path to the annotation dump (JSON)")
	rootCmd.PersistentFlags().String("truth", contract.DefaultTruthPath, "Path to the ground-truth dataset (JSON)")
	rootCmd.PersistentFlags().String("rotations", contract.DefaultRotationsPath, "Path to the camera rotation matrices (JSON)")
	rootCmd.PersistentFlags().Float64("threshold", schema.DefaultWorkerThreshold, "Worker noise threshold in mm")
	rootCmd.PersistentFlags().Float64("image-threshold", schema.DefaultImageThreshold, "Metaperson noise threshold in mm")
	rootCmd.PersistentFlags().String("tie-rule", string(schema.LenientTies), "How ties are judged: lenient or strict")
	rootCmd.PersistentFlags().String("provenance", string(schema.AllProvenance), "Comparisons to rank by: all or human or generated")
	rootCmd.PersistentFlags().Int("depth-axis", schema.DefaultDepthAxis, "Index of the 3D axis used as depth (0, 1 or 2)")
	rootCmd.PersistentFlags().String("subjects", "", "Comma-separated subject ids to keep")
	rootCmd.PersistentFlags().String("action", "", "Action name to keep")
	rootCmd.PersistentFlags().Int("action-version", 0, "Version of the action to keep")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("plot-dir", "", "Write histogram plots as PNG files into this directory")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of rows to display")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of workersCmd to Viper
	workersCmd.Flags().String("thresholds", "", "Comma-separated sweep thresholds in mm (default 1000,500,200,150,100)")
	if err := viper.BindPFlags(workersCmd.Flags()); err != nil {
		contract.LogFatal("Error binding workers flags", err)
	}

	// Bind all flags of wrongnessCmd to Viper
	wrongnessCmd.Flags().Float64("bin-width", schema.DefaultBinWidth, "Width of each depth difference bucket in mm")
	wrongnessCmd.Flags().Bool("absolute", true, "Bucket by absolute depth difference")
	if err := viper.BindPFlags(wrongnessCmd.Flags()); err != nil {
		contract.LogFatal("Error binding wrongness flags", err)
	}

	// Bind all flags of agreementCmd to Viper
	agreementCmd.Flags().Uint64("seed", contract.DefaultSeed, "Seed for the random ordering baseline")
	if err := viper.BindPFlags(agreementCmd.Flags()); err != nil {
		contract.LogFatal("Error binding agreement flags", err)
	}

	// Bind all flags of lookupCmd to Viper
	lookupCmd.Flags().String("by", contract.LookupFiles, "Lookup mode: files or images or workers or hits")
	if err := viper.BindPFlags(lookupCmd.Flags()); err != nil {
		contract.LogFatal("Error binding lookup flags", err)
	}
}

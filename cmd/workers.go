package cmd

import (
	"github.com/huangsam/depthaudit/core"
	"github.com/spf13/cobra"
)

// workersCmd ranks annotators by accuracy against ground truth.
var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "Rank annotators by depth judgment accuracy.",
	Long: `Score every annotator's pairwise depth judgments against 3D ground truth.

Comparisons whose true depth difference is within the noise threshold are skipped.
The run sweeps a list of thresholds so you can see how rankings shift as
near-ties are excluded. Human-made and generated comparisons are tallied apart.

Examples:
  # Rank annotators with the default sweep
  depthaudit workers

  # Only judge what annotators actually clicked
  depthaudit workers --provenance human --thresholds 500,200

  # Export the sweep for a spreadsheet
  depthaudit workers --output csv --output-file workers.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteWorkers, "worker ranking"),
}

package cmd

import (
	"github.com/huangsam/depthaudit/core"
	"github.com/spf13/cobra"
)

// agreementCmd measures how much annotators of the same image agree.
var agreementCmd = &cobra.Command{
	Use:   "agreement",
	Short: "Measure ordering similarity between annotators of the same image.",
	Long: `Compare the depth orderings of every pair of annotators on each image and
summarize the average, best and worst pairwise similarity.

A random-ordering baseline is drawn with a fixed seed so runs are repeatable.

Examples:
  depthaudit agreement
  depthaudit agreement --seed 42 --plot-dir plots`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteAgreement, "agreement analysis"),
}

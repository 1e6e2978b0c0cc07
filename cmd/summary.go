package cmd

import (
	"github.com/huangsam/depthaudit/core"
	"github.com/spf13/cobra"
)

// summaryCmd reports dataset counts and record-level issues.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize the loaded dataset and its record-level issues.",
	Long: `Load and match all inputs, then report how many hits were usable and why
the others were dropped.

Examples:
  depthaudit summary
  depthaudit summary --subjects 9,11 --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteSummary, "dataset summary"),
}

package cmd

import (
	"github.com/huangsam/depthaudit/core"
	"github.com/spf13/cobra"
)

// wrongnessCmd buckets judgments by true depth difference.
var wrongnessCmd = &cobra.Command{
	Use:   "wrongness",
	Short: "Show how accuracy depends on the true depth difference.",
	Long: `Bucket every judged comparison by the ground-truth depth difference of its
keypoints and count correct and incorrect judgments per bucket.

Examples:
  depthaudit wrongness --bin-width 100
  depthaudit wrongness --absolute=false --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteWrongness, "wrongness analysis"),
}

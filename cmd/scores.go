package cmd

import (
	"github.com/huangsam/depthaudit/core"
	"github.com/spf13/cobra"
)

// scoresCmd scores each hit's full ordering.
var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Score each hit's ordering with naive and distance scores.",
	Long: `Compare each hit's depth ordering with the ground-truth ordering.

The naive score counts keypoints placed at exactly the right position. The
distance score sums how far each keypoint landed from its true position.

Examples:
  depthaudit scores --limit 100
  depthaudit scores --output parquet --output-file scores.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteScores, "ordering scores"),
}

package cmd

import (
	"github.com/huangsam/depthaudit/core"
	"github.com/spf13/cobra"
)

// depthstatsCmd describes the ground-truth depth ranges.
var depthstatsCmd = &cobra.Command{
	Use:     "depthstats",
	Short:   "Describe the depth range of the matched ground-truth poses.",
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteDepthStats, "depth statistics"),
}

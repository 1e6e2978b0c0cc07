package cmd

import (
	"github.com/huangsam/depthaudit/core"
	"github.com/spf13/cobra"
)

// lookupCmd answers id and filename lookups over the matched dataset.
var lookupCmd = &cobra.Command{
	Use:   "lookup <value>...",
	Short: "Look up hits, images and filenames.",
	Long: `Resolve identifiers across the annotation dump and the ground truth.

Modes:
- files:   hit ids annotating each image filename
- images:  filename of each image id
- workers: filenames annotated by each worker id
- hits:    hit ids annotating each image id

Examples:
  depthaudit lookup --by workers A1B2C3
  depthaudit lookup --by images 12,13,14`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteLookup, "lookup"),
}

package cmd

import (
	"github.com/huangsam/depthaudit/core"
	"github.com/spf13/cobra"
)

// imagesCmd scores the majority-vote annotator of each image.
var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Score the consensus ordering of each image.",
	Long: `Combine every annotator of an image into a majority-vote metaperson and
score it against ground truth.

Images are ranked from least to most accurate so that the hardest images
come first. Tied votes are reported per image.

Examples:
  # Show the 50 hardest images
  depthaudit images --limit 50

  # Use a stricter noise threshold and plot the accuracy histogram
  depthaudit images --image-threshold 500 --plot-dir plots`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteImages, "image scoring"),
}

package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/philipparndt/gobbox/internal/dataset"
	"github.com/spf13/cobra"
)

var splitCmd = &cobra.Command{
	Use:   "split [image] [split]",
	Short: "Move an image and its label into a dataset split",
	Long:  "Move an image together with its label file into a split folder (e.g. train, val or test) next to it.",
	Args:  cobra.ExactArgs(2),
	Run:   runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) {
	img, split := args[0], args[1]

	if !slices.Contains(cfg.Splits, split) {
		logger.Warn("split is not configured", "split", split, "splits", cfg.Splits)
	}

	target, err := dataset.MoveToSplit(img, split)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Moved %s to %s\n", img, target)
}

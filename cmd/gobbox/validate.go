package main

import (
	"fmt"
	"os"

	"github.com/philipparndt/gobbox/internal/dataset"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [folder]",
	Short: "Check the label files of an image folder",
	Long: `Load the label file of every image and report corrupt files, label ids
without a name and coordinates outside the image. Exits with status 1 when
problems are found.`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	dir := args[0]

	names, err := cfg.LabelNamesFor(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading label names: %v\n", err)
		os.Exit(1)
	}
	if names == nil {
		logger.Info("no label names found, label ids are not checked")
	}

	report, err := dataset.ValidateFolder(dir, names)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Validation")
	fmt.Println("==========")
	fmt.Printf("Images: %d\n", report.Images)
	fmt.Printf("Labeled: %d\n", report.Labeled)
	fmt.Printf("Boxes: %d\n", report.Boxes)
	fmt.Printf("Problems: %d\n", len(report.Problems))

	if len(report.Problems) == 0 {
		return
	}

	fmt.Println()
	for _, p := range report.Problems {
		fmt.Printf("  %s\n", p)
	}
	os.Exit(1)
}

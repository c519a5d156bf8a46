package main

import (
	"fmt"
	"os"

	"github.com/philipparndt/gobbox/internal/app"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [folder]",
	Short: "Open the annotation editor",
	Long:  "Open the editor window for an image folder. Label files are read from and written next to the images.",
	Args:  cobra.MaximumNArgs(1),
	Run:   runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)

	// the root command opens the editor as well
	for _, c := range []*cobra.Command{rootCmd, editCmd} {
		c.Flags().Float64Var(&catchRadius, "catch-radius", 0, "Distance at which corners and edges are grabbed")
		c.Flags().StringVar(&reviewDir, "review", "", "Folder with predicted labels to review, relative to the image folder")
	}
}

var (
	catchRadius float64
	reviewDir   string
)

func runEdit(cmd *cobra.Command, args []string) {
	folder := ""
	if len(args) > 0 {
		folder = args[0]
	}

	if catchRadius > 0 {
		cfg.CatchRadius = catchRadius
	}
	if reviewDir != "" {
		cfg.ReviewDir = reviewDir
	}

	if err := app.Run(cfg, folder, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

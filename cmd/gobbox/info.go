package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/philipparndt/gobbox/internal/dataset"
	"github.com/philipparndt/gobbox/pkg/analysis"
	"github.com/philipparndt/gobbox/pkg/annotation"
	"github.com/philipparndt/gobbox/pkg/geometry"
	"github.com/philipparndt/gobbox/pkg/yolo"
	"github.com/spf13/cobra"
)

var (
	infoWidth  float64
	infoHeight float64
	infoImage  string
)

var infoCmd = &cobra.Command{
	Use:   "info [label-file]",
	Short: "Display the boxes of a label file",
	Long: `Show every box of a label file in pixels and normalized coordinates.
The image size is read from --image or given with --width and --height.`,
	Args: cobra.ExactArgs(1),
	Run:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().Float64Var(&infoWidth, "width", 0, "Image width in pixels")
	infoCmd.Flags().Float64Var(&infoHeight, "height", 0, "Image height in pixels")
	infoCmd.Flags().StringVar(&infoImage, "image", "", "Image the labels belong to")

	infoCmd.MarkFlagsRequiredTogether("width", "height")
	infoCmd.MarkFlagsMutuallyExclusive("image", "width")
}

func runInfo(cmd *cobra.Command, args []string) {
	filename := args[0]

	size := geometry.NewSize(infoWidth, infoHeight)
	if infoImage != "" {
		var err error
		size, err = dataset.ImageSize(infoImage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading image: %v\n", err)
			os.Exit(1)
		}
	}
	if size.IsEmpty() {
		fmt.Fprintln(os.Stderr, "Error: an image size is required, use --image or --width and --height")
		os.Exit(1)
	}

	store := annotation.NewStore()
	if err := store.LoadFromFile(filename, size); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading label file: %v\n", err)
		os.Exit(1)
	}

	names, err := cfg.LabelNamesFor(labelDir(filename))
	if err != nil {
		logger.Warn("failed to read label names", "error", err)
	}

	fmt.Println("Label File Information")
	fmt.Println("======================")
	fmt.Printf("File: %s\n", filename)
	fmt.Printf("Image size: %s\n\n", size)

	boxes := store.Boxes()
	entries := make([]yolo.Entry, len(boxes))
	fmt.Printf("Boxes (%d):\n", len(boxes))
	for i, b := range boxes {
		entries[i] = b.Entry()
		fmt.Printf("  %3d. %-12s %s\n", i+1, yolo.LabelName(names, b.LabelID()), b.Rect())
		fmt.Printf("       %s\n", b.NormalizedString())
	}

	stats := analysis.AnalyzeEntries(filename, entries)
	fmt.Println("\nStatistics:")
	fmt.Printf("  Objects: %d\n", stats.NumObjects)
	fmt.Printf("  Smallest side: %s\n", analysis.FormatRelSize(stats.MinRelSize))
	fmt.Printf("  Largest side: %s\n", analysis.FormatRelSize(stats.MaxRelSize))
	for _, id := range stats.Labels() {
		fmt.Printf("  %s: %d\n", yolo.LabelName(names, id), stats.LabelCounts[id])
	}
}

// labelDir is the folder label names are looked up in for a label file.
// Predicted labels live one level below their images.
func labelDir(labelFile string) string {
	dir := filepath.Dir(labelFile)
	if filepath.Base(dir) == cfg.ReviewDir {
		return filepath.Dir(dir)
	}
	return dir
}

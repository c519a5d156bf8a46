package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/philipparndt/gobbox/internal/session"
	"github.com/philipparndt/gobbox/pkg/analysis"
	"github.com/philipparndt/gobbox/pkg/yolo"
	"github.com/spf13/cobra"
)

var (
	statsName    string
	statsObjects string
	statsSize    string
	statsSort    string
	statsDesc    bool
	statsReview  bool
)

var statsCmd = &cobra.Command{
	Use:   "stats [folder]",
	Short: "List annotation statistics per image",
	Long: `Print the number of objects and the smallest and largest relative box side
of every image. Images can be filtered and the table sorted.

Ranges are written as min-max, min- or -max.`,
	Args: cobra.ExactArgs(1),
	Run:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsName, "name", "", "Only images whose name contains this text")
	statsCmd.Flags().StringVar(&statsObjects, "objects", "", "Range of the number of objects")
	statsCmd.Flags().StringVar(&statsSize, "size", "", "Range of the relative box side (0-1)")
	statsCmd.Flags().StringVarP(&statsSort, "sort", "s", analysis.SortByName,
		fmt.Sprintf("Sort column (%s, %s, %s, %s)", analysis.SortByName, analysis.SortByNumObjects, analysis.SortByMinRelSize, analysis.SortByMaxRelSize))
	statsCmd.Flags().BoolVarP(&statsDesc, "desc", "d", false, "Sort descending")
	statsCmd.Flags().BoolVar(&statsReview, "review", false, "Count predicted labels for images without own labels")
}

func runStats(cmd *cobra.Command, args []string) {
	dir := args[0]

	objects, err := analysis.ParseIntRange(statsObjects)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	size, err := analysis.ParseFloatRange(statsSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := session.Options{}
	if statsReview {
		opts.ReviewDir = cfg.ReviewDir
	}
	s := session.New(logger, opts)
	if err := s.Open(dir); err != nil && s.Dir() != dir {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	filter := analysis.Filter{NamePattern: statsName, NumObjects: objects, RelSize: size}
	stats := filter.Apply(s.Stats())
	if err := analysis.SortStats(stats, statsSort, statsDesc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	names, err := cfg.LabelNamesFor(dir)
	if err != nil {
		logger.Warn("failed to read label names", "error", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IMAGE\tOBJECTS\tMIN SIZE\tMAX SIZE\tLABELS")
	for _, st := range stats {
		if st.Err != nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t%v\n", filepath.Base(st.Image), st.Err)
			continue
		}
		var labels []string
		for _, id := range st.Labels() {
			labels = append(labels, fmt.Sprintf("%s:%d", yolo.LabelName(names, id), st.LabelCounts[id]))
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			filepath.Base(st.Image), st.NumObjects,
			analysis.FormatRelSize(st.MinRelSize), analysis.FormatRelSize(st.MaxRelSize),
			strings.Join(labels, " "))
	}
	w.Flush()

	fmt.Printf("\n%d of %d images\n", len(stats), s.Len())
}

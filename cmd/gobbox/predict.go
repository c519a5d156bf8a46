package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/philipparndt/gobbox/internal/dataset"
	"github.com/philipparndt/gobbox/internal/session"
	"github.com/philipparndt/gobbox/pkg/detector"
	"github.com/spf13/cobra"
)

var predictOutput string

var predictCmd = &cobra.Command{
	Use:   "predict [folder]",
	Short: "Run the configured detector on an image folder",
	Long: `Run the detector command from the configuration on an image folder. The
predicted label files are written to the output folder, where the editor
picks them up for review.`,
	Args: cobra.ExactArgs(1),
	Run:  runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringVarP(&predictOutput, "output", "o", "", "Output folder, defaults to the configured one inside the image folder")
}

func runPredict(cmd *cobra.Command, args []string) {
	dir := args[0]

	output := predictOutput
	if output == "" {
		output = cfg.Detector.OutputDir
		if !filepath.IsAbs(output) {
			output = filepath.Join(dir, output)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := detector.NewRunner(cfg.Detector.Command, cfg.Detector.Args, dir)
	logger.Info("starting prediction", "command", cfg.Detector.Command, "args", runner.Args(dir, output))

	err := runner.Run(ctx, dir, output, func(line string) {
		fmt.Println(line)
	})
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Prediction interrupted")
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	count := 0
	for _, d := range []string{output, filepath.Join(output, session.PredictionLabelsDir)} {
		entries, err := os.ReadDir(d)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == dataset.LabelExt {
				count++
			}
		}
	}
	fmt.Printf("\nPredicted labels for %d images in %s\n", count, output)
}

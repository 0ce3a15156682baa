package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pagecore/pkg/layout"
	"pagecore/pkg/render"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		output string
		expect string
		full   bool
		scroll int
	)
	cmd := &cobra.Command{
		Use:   "render <url-or-file>",
		Short: "Render a document to a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locator, err := toLocator(args[0])
			if err != nil {
				return err
			}
			page, fetcher := a.newPage()
			defer fetcher.Close()

			if err := page.Load(cmd.Context(), locator); err != nil {
				return err
			}
			for _, w := range multierr.Errors(page.Warnings()) {
				a.log.Warn("style sheet skipped", zap.Error(w))
			}

			width, height := a.cfg.Viewport.Width, a.cfg.Viewport.Height
			if full {
				height = int(math.Ceil(page.Height() + 2*layout.VStep))
				page.SetViewport(float64(width), float64(height))
			}
			for i := 0; i < scroll; i++ {
				page.ScrollDown()
			}

			raster := render.NewRaster(width, height, a.log)
			raster.Clear()
			page.Draw(raster)
			if err := raster.SavePNG(output); err != nil {
				return fmt.Errorf("saving %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s to %s (%dx%d, %d paint commands)\n",
				locator, output, width, height, len(page.DisplayList()))
			if expect == "" {
				return nil
			}
			return compareWith(raster, expect, strings.TrimSuffix(output, ".png")+"-diff.png")
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "page.png", "output PNG file path")
	cmd.Flags().BoolVar(&full, "full", false, "render the whole document instead of one viewport")
	cmd.Flags().IntVar(&scroll, "scroll", 0, "scroll down this many steps before rendering")
	cmd.Flags().StringVar(&expect, "expect", "", "reference PNG the render must match")
	return cmd
}

// compareWith checks the raster against a reference image and writes a
// diff image next to the output when they differ.
func compareWith(raster *render.Raster, reference, diffPath string) error {
	expected, err := render.LoadPNG(reference)
	if err != nil {
		return fmt.Errorf("loading reference: %w", err)
	}
	result, err := render.Compare(raster.Image(), expected, render.CompareOptions{Tolerance: 2, Diff: true})
	if err != nil {
		return err
	}
	if result.Match {
		return nil
	}
	if err := render.SavePNG(result.Diff, diffPath); err != nil {
		return fmt.Errorf("saving diff: %w", err)
	}
	return fmt.Errorf("render differs from %s in %d of %d pixels (diff in %s)",
		reference, result.DifferentPixels, result.TotalPixels, diffPath)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/timowlmtn/living-harmonix/internal/capture"
	"github.com/timowlmtn/living-harmonix/internal/geo"
)

var (
	captureUser    string
	captureProject string
	captureLat     float64
	captureLon     float64
	captureHeading string
	captureAwait   bool
)

var captureCmd = &cobra.Command{
	Use:   "capture <image-file>",
	Short: "Upload an image capture, optionally waiting for its annotation",
	Example: `  harmonix capture shot.png --user u1 --project living_harmony_back_garden --lat 42.3601 --lon -71.0589
  harmonix capture shot.png --user u1 --project zen_guide_studio --lat 42.3601 --lon -71.0589 --heading 270 --await`,
	Args: cobra.ExactArgs(1),
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().StringVar(&captureUser, "user", "", "user id (required)")
	captureCmd.Flags().StringVar(&captureProject, "project", "", "project id (required)")
	captureCmd.Flags().Float64Var(&captureLat, "lat", 0, "capture latitude (required)")
	captureCmd.Flags().Float64Var(&captureLon, "lon", 0, "capture longitude (required)")
	captureCmd.Flags().StringVar(&captureHeading, "heading", "", "compass heading in degrees")
	captureCmd.Flags().BoolVar(&captureAwait, "await", false, "wait for the annotation side-car")
	_ = captureCmd.MarkFlagRequired("user")
	_ = captureCmd.MarkFlagRequired("project")
	_ = captureCmd.MarkFlagRequired("lat")
	_ = captureCmd.MarkFlagRequired("lon")
}

func runCapture(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	gw, cfg, logger, err := newGateway(ctx)
	if err != nil {
		return err
	}

	image, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	locator := geo.FixedLocator{Coord: geo.Coordinate{Lat: captureLat, Lon: captureLon}}
	syncer := capture.NewSyncer(gw, cfg.Storage.Namespace, locator, logger)

	if captureAwait {
		text, err := syncer.SaveImageAndAwaitAnnotation(ctx, captureUser, captureProject,
			image, captureHeading, cfg.Capture.PollTimeout, cfg.Capture.PollInterval)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	}

	key, err := syncer.SaveImage(ctx, captureUser, captureProject, image, captureHeading)
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"dicomviewer/internal/models"
	"dicomviewer/pkg/config"
	"dicomviewer/pkg/decoder"
	"dicomviewer/pkg/measure"
	"dicomviewer/pkg/viewer"
	"dicomviewer/pkg/viewport"
	"dicomviewer/pkg/visualization"
)

func (a *app) openSession(ctx context.Context, dir string) (*viewer.Session, error) {
	s, err := viewer.New(a.cfg, decoder.NewAutoDecoder(), viewer.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	start := time.Now()
	if err := s.LoadDir(ctx, dir); err != nil {
		s.Close()
		return nil, err
	}
	a.logger.Debug("series ready", "dir", dir, "elapsed", time.Since(start))
	return s, nil
}

func (a *app) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <dir>",
		Short: "List the frames of a series with their size and calibration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			current := s.Series()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Series %s: %d frames\n", current.ID, current.Len())
			for i, f := range current.Frames {
				calibration := "calibrated"
				if !f.Calibrated {
					calibration = "uncalibrated"
				}
				fmt.Fprintf(out, "%4d  %-32s %4dx%-4d px  %.2fx%.2f mm  spacing %.4f\\%.4f (%s)  range [%.0f, %.0f]\n",
					i, f.Name, f.PixelWidth, f.PixelHeight, f.PhysicalWidth(), f.PhysicalHeight(),
					f.SpacingRow, f.SpacingCol, calibration, f.Stats.Min, f.Stats.Max)
			}
			return nil
		},
	}
}

func (a *app) newMeasureCmd() *cobra.Command {
	var frame int

	cmd := &cobra.Command{
		Use:   "measure <dir> <x1> <y1> <x2> <y2>",
		Short: "Measure the distance in mm between two image pixel positions",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			points := make([]float64, 4)
			for i, arg := range args[1:] {
				v, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid coordinate %q: %w", arg, err)
				}
				points[i] = v
			}

			s, err := a.openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			s.Navigation().Jump(frame)
			f := s.CurrentFrame()

			// lay the frame out one screen pixel per image pixel
			s.SetContainer(viewport.Box{Width: float64(f.PixelWidth), Height: float64(f.PixelHeight)})
			s.SetMode(models.Crosshair)
			s.PointerEnter()
			s.Click(points[0], points[1])
			if s.Click(points[2], points[3]) != measure.TwoAnchors {
				return fmt.Errorf("measurement did not complete")
			}

			label := s.Snapshot().Label
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", f.Name, label.Text)
			if !f.Calibrated {
				a.logger.Warn("frame has no pixel spacing, distance assumes 1 mm per pixel", "frame", f.Name)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&frame, "frame", "f", 0, "frame index")
	return cmd
}

func (a *app) newRenderCmd() *cobra.Command {
	var (
		frame    int
		width    int
		height   int
		zoom     int
		contrast int
	)

	cmd := &cobra.Command{
		Use:   "render <dir> <output.jpg>",
		Short: "Render one frame through the viewport to a JPEG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			s.Navigation().Jump(frame)
			s.SetContainer(viewport.Box{Width: float64(width), Height: float64(height)})
			for i := 0; i < zoom; i++ {
				s.ZoomIn()
			}
			for i := 0; i > zoom; i-- {
				s.ZoomOut()
			}
			for i := 0; i < contrast; i++ {
				s.ContrastUp()
			}
			for i := 0; i > contrast; i-- {
				s.ContrastDown()
			}

			file, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer file.Close()
			if err := visualization.EncodeJPEG(file, s.Render(), a.cfg.Render.JPEGQuality); err != nil {
				return err
			}

			snap := s.Snapshot()
			a.logger.Info("rendered", "frame", snap.Frame.Name, "zoom", snap.Viewport.Zoom, "contrast", snap.Viewport.Contrast, "output", args[1])
			return nil
		},
	}
	cmd.Flags().IntVarP(&frame, "frame", "f", 0, "frame index")
	cmd.Flags().IntVar(&width, "width", 512, "canvas width in pixels")
	cmd.Flags().IntVar(&height, "height", 512, "canvas height in pixels")
	cmd.Flags().IntVar(&zoom, "zoom", 0, "zoom steps, negative to zoom out")
	cmd.Flags().IntVar(&contrast, "contrast", 0, "contrast steps, negative to lower")
	return cmd
}

func (a *app) newExportCmd() *cobra.Command {
	var contrast int

	cmd := &cobra.Command{
		Use:   "export <dir> <output-dir>",
		Short: "Save every frame of a series as a JPEG in series order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			files, err := visualization.SaveSeries(s.Series(), args[1], contrast, a.cfg.Render.JPEGQuality)
			if err != nil {
				return err
			}
			a.logger.Info("export completed", "frames", len(files), "dir", filepath.Clean(args[1]))
			return nil
		},
	}
	cmd.Flags().IntVar(&contrast, "contrast", 100, "contrast percentage")
	return cmd
}

func (a *app) newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a configuration file with default values",
		Args:  cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.CreateDefaultConfigFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}

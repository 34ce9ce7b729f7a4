// Package normalize turns decoded rasters into immutable, displayable frames
// with physical calibration.
package normalize

import (
	"image"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"dicomviewer/internal/models"
	"dicomviewer/pkg/decoder"
	verrors "dicomviewer/pkg/errors"
)

// Normalizer converts raw file bytes into frames
type Normalizer struct {
	decoder decoder.Decoder
	logger  *log.Logger
}

// New creates a normalizer over the given decoder.
// A nil logger falls back to log.Default().
func New(dec decoder.Decoder, logger *log.Logger) *Normalizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Normalizer{decoder: dec, logger: logger}
}

// Normalize decodes data and builds a Frame named name.
//
// Decoder failures are reported as DECODE_ERROR, rasters that cannot be
// displayed (zero sized, or with a sample count that does not match the
// dimensions) as RENDER_ERROR. Missing or unparsable pixel spacing is not an
// error: both axes fall back to models.DefaultSpacing and the frame is marked
// uncalibrated, so measurements read in pixels.
func (n *Normalizer) Normalize(name string, data []byte) (*models.Frame, error) {
	raster, err := n.decoder.Decode(data)
	if err != nil {
		return nil, verrors.Decode(name, err)
	}
	if raster == nil {
		return nil, verrors.Decode(name, nil)
	}

	if raster.Width <= 0 || raster.Height <= 0 {
		return nil, verrors.Render(name, "image has zero size (%dx%d)", raster.Width, raster.Height)
	}
	if len(raster.Samples) != raster.Width*raster.Height {
		return nil, verrors.Render(name, "expected %d samples, got %d", raster.Width*raster.Height, len(raster.Samples))
	}

	row, col, ok := ParsePixelSpacing(raster.PixelSpacing)
	if !ok {
		n.logger.Warn("pixel spacing unavailable, measuring in pixels", "file", name, "tag", raster.PixelSpacing)
	}

	stats := intensityStats(raster.Samples)
	frame := &models.Frame{
		Name:        name,
		Image:       Rasterize(raster, stats.Min, stats.Max),
		PixelWidth:  raster.Width,
		PixelHeight: raster.Height,
		SpacingRow:  row,
		SpacingCol:  col,
		Calibrated:  ok,
		Stats:       stats,
	}

	n.logger.Debug("normalized frame", "file", name, "width", frame.PixelWidth, "height", frame.PixelHeight,
		"spacingRow", row, "spacingCol", col)
	return frame, nil
}

// ParsePixelSpacing parses a (0028,0030) value of the form "row\col".
// It returns the default spacing for both axes and ok=false unless both
// components are finite positive numbers.
func ParsePixelSpacing(raw string) (row, col float64, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), `\`)
	if len(parts) != 2 {
		return models.DefaultSpacing, models.DefaultSpacing, false
	}

	var values [2]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return models.DefaultSpacing, models.DefaultSpacing, false
		}
		values[i] = v
	}
	return values[0], values[1], true
}

// Rasterize maps samples linearly from [lo, hi] onto 8-bit gray. Inverted
// rasters map lo to white instead of black. A flat raster (lo == hi) renders
// black.
func Rasterize(raster *decoder.Raster, lo, hi float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, raster.Width, raster.Height))
	span := hi - lo
	if span <= 0 {
		return img
	}
	for i, v := range raster.Samples {
		scaled := (v - lo) / span * 255
		if raster.Inverted {
			scaled = 255 - scaled
		}
		img.Pix[i] = uint8(math.Round(math.Max(0, math.Min(255, scaled))))
	}
	return img
}

func intensityStats(samples []float64) models.IntensityStats {
	mean, std := stat.MeanStdDev(samples, nil)
	if len(samples) < 2 {
		std = 0
	}
	return models.IntensityStats{
		Min:    floats.Min(samples),
		Max:    floats.Max(samples),
		Mean:   mean,
		StdDev: std,
	}
}

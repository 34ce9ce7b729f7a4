package models

import (
	"image"
)

// DefaultSpacing is the mm-per-pixel value used when a file carries no
// usable pixel spacing calibration.
const DefaultSpacing = 1.0

// SourceFile is one input file as handed over by the file selection surface
type SourceFile struct {
	// Name is the filename used to order the series
	Name string

	// Data holds the raw file bytes
	Data []byte
}

// IntensityStats summarizes the decoded sample values of a frame
type IntensityStats struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Frame represents a single normalized image with its physical calibration.
// A Frame is created once by the normalizer and never mutated afterwards.
type Frame struct {
	// Name is the original filename of the frame
	Name string

	// Image is the displayable 8-bit raster, owned by the frame
	Image *image.Gray

	// PixelWidth and PixelHeight are the native raster dimensions
	PixelWidth  int
	PixelHeight int

	// SpacingRow is the physical distance in mm between adjacent rows
	SpacingRow float64

	// SpacingCol is the physical distance in mm between adjacent columns
	SpacingCol float64

	// Calibrated is false when the spacing fell back to DefaultSpacing
	Calibrated bool

	// Stats holds intensity statistics of the source samples
	Stats IntensityStats
}

// PhysicalWidth returns the width of the frame in mm
func (f *Frame) PhysicalWidth() float64 {
	return float64(f.PixelWidth) * f.SpacingCol
}

// PhysicalHeight returns the height of the frame in mm
func (f *Frame) PhysicalHeight() float64 {
	return float64(f.PixelHeight) * f.SpacingRow
}

// Series is an ordered, non-empty stack of frames navigated as a unit
type Series struct {
	// ID identifies one successful build of the series
	ID string

	// Frames are ordered by the lexicographic order of their source names
	Frames []*Frame
}

// Len returns the number of frames in the series
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Frames)
}

// Frame returns the frame at index i, or nil when i is out of range
func (s *Series) Frame(i int) *Frame {
	if s == nil || i < 0 || i >= len(s.Frames) {
		return nil
	}
	return s.Frames[i]
}

// Names returns the source filenames in series order
func (s *Series) Names() []string {
	names := make([]string, s.Len())
	for i := range names {
		names[i] = s.Frames[i].Name
	}
	return names
}

// PointerMode selects how pointer input on the image is interpreted
type PointerMode int

const (
	// Pointer mode pages through the series on vertical drag
	Pointer PointerMode = iota
	// Crosshair mode places caliper anchors on click
	Crosshair
)

// String returns the mode name
func (m PointerMode) String() string {
	switch m {
	case Pointer:
		return "pointer"
	case Crosshair:
		return "crosshair"
	default:
		return "unknown"
	}
}

// Anchor is one caliper point in element-relative screen space and in mm
type Anchor struct {
	ScreenX float64
	ScreenY float64
	MMX     float64
	MMY     float64
}

package viewport

import (
	"math"

	"github.com/paulmach/orb"

	"dicomviewer/internal/models"
)

// Box is an on-screen rectangle in screen pixels
type Box struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Bound returns the box as an orb bound
func (b Box) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.Left, b.Top},
		Max: orb.Point{b.Left + b.Width, b.Top + b.Height},
	}
}

// Contains reports whether the screen point lies inside the box
func (b Box) Contains(x, y float64) bool {
	return b.Bound().Contains(orb.Point{x, y})
}

// Center returns the centre of the box
func (b Box) Center() orb.Point {
	return b.Bound().Center()
}

// Empty reports whether the box has no area
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Fit returns the largest box with the frame's aspect ratio centred inside
// container, the way the image element is laid out at zoom 1.
func Fit(container Box, frame *models.Frame) Box {
	if frame == nil || container.Empty() || frame.PixelWidth <= 0 || frame.PixelHeight <= 0 {
		return Box{}
	}
	s := math.Min(container.Width/float64(frame.PixelWidth), container.Height/float64(frame.PixelHeight))
	w := float64(frame.PixelWidth) * s
	h := float64(frame.PixelHeight) * s
	return Box{
		Left:   container.Left + (container.Width-w)/2,
		Top:    container.Top + (container.Height-h)/2,
		Width:  w,
		Height: h,
	}
}

// Display returns the on-screen box of the rendered image: the fitted box
// scaled by zoom about its centre, then moved by the pan offset. The pan is
// applied in unscaled element pixels, so its on-screen effect grows with
// zoom.
func Display(container Box, frame *models.Frame, s State) Box {
	fit := Fit(container, frame)
	if fit.Empty() {
		return fit
	}
	c := fit.Center()
	w := fit.Width * s.Zoom
	h := fit.Height * s.Zoom
	return Box{
		Left:   c[0] - w/2 + s.PanX*s.Zoom,
		Top:    c[1] - h/2 + s.PanY*s.Zoom,
		Width:  w,
		Height: h,
	}
}

// Mapping is one pointer position expressed in every coordinate space
type Mapping struct {
	// LocalX and LocalY are relative to the top-left of the image box
	LocalX float64
	LocalY float64

	// ScaleX and ScaleY are image pixels per screen pixel
	ScaleX float64
	ScaleY float64

	// ImageX and ImageY are clamped to [0, PixelWidth] and [0, PixelHeight]
	ImageX float64
	ImageY float64

	// MMX and MMY are physical coordinates from the image origin
	MMX float64
	MMY float64
}

// Map converts a screen position into image and physical coordinates using
// the image's current on-screen box. It must be called again whenever the
// box may have changed; results are never cached.
func Map(screenX, screenY float64, box Box, frame *models.Frame) Mapping {
	m := Mapping{
		LocalX: screenX - box.Left,
		LocalY: screenY - box.Top,
	}
	if frame == nil || box.Empty() {
		return m
	}

	m.ScaleX = float64(frame.PixelWidth) / box.Width
	m.ScaleY = float64(frame.PixelHeight) / box.Height
	m.ImageX = clamp(m.LocalX*m.ScaleX, 0, float64(frame.PixelWidth))
	m.ImageY = clamp(m.LocalY*m.ScaleY, 0, float64(frame.PixelHeight))
	m.MMX = m.ImageX * frame.SpacingCol
	m.MMY = m.ImageY * frame.SpacingRow
	return m
}

// ScreenOf is the inverse of Map for points inside the image
func ScreenOf(imageX, imageY float64, box Box, frame *models.Frame) (x, y float64) {
	if frame == nil || frame.PixelWidth <= 0 || frame.PixelHeight <= 0 {
		return box.Left, box.Top
	}
	x = box.Left + imageX*box.Width/float64(frame.PixelWidth)
	y = box.Top + imageY*box.Height/float64(frame.PixelHeight)
	return x, y
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

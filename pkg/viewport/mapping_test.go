package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dicomviewer/internal/models"
)

func testFrame(w, h int, spacingRow, spacingCol float64) *models.Frame {
	return &models.Frame{PixelWidth: w, PixelHeight: h, SpacingRow: spacingRow, SpacingCol: spacingCol}
}

func TestMapCenterOfBox(t *testing.T) {
	frame := testFrame(200, 200, 0.5, 0.5)
	box := Box{Left: 10, Top: 20, Width: 100, Height: 100}

	m := Map(60, 70, box, frame)
	assert.Equal(t, 2.0, m.ScaleX)
	assert.Equal(t, 2.0, m.ScaleY)
	assert.Equal(t, 50.0, m.LocalX)
	assert.Equal(t, 100.0, m.ImageX)
	assert.Equal(t, 50.0, m.MMX)
	assert.Equal(t, 100.0, m.ImageY)
	assert.Equal(t, 50.0, m.MMY)
}

func TestMapUsesPerAxisSpacing(t *testing.T) {
	frame := testFrame(100, 50, 2, 0.25)
	box := Box{Width: 100, Height: 50}

	m := Map(40, 10, box, frame)
	assert.Equal(t, 10.0, m.MMX)
	assert.Equal(t, 20.0, m.MMY)
}

func TestMapClampsOutsidePoints(t *testing.T) {
	frame := testFrame(200, 100, 1, 1)
	box := Box{Left: 0, Top: 0, Width: 100, Height: 50}

	m := Map(-30, 500, box, frame)
	assert.Equal(t, 0.0, m.ImageX)
	assert.Equal(t, 100.0, m.ImageY)
	assert.Equal(t, -30.0, m.LocalX, "local coordinates are not clamped")
}

func TestMapDegenerateBox(t *testing.T) {
	m := Map(5, 5, Box{}, testFrame(10, 10, 1, 1))
	assert.Equal(t, 0.0, m.ScaleX)
	assert.Equal(t, 0.0, m.MMX)

	m = Map(5, 5, Box{Width: 10, Height: 10}, nil)
	assert.Equal(t, 0.0, m.ImageX)
}

func TestFitKeepsAspectRatio(t *testing.T) {
	frame := testFrame(200, 100, 1, 1)
	fit := Fit(Box{Left: 0, Top: 0, Width: 400, Height: 400}, frame)
	assert.Equal(t, Box{Left: 0, Top: 100, Width: 400, Height: 200}, fit)

	assert.Equal(t, Box{}, Fit(Box{}, frame))
}

func TestDisplayZoomAndPan(t *testing.T) {
	frame := testFrame(100, 100, 1, 1)
	container := Box{Width: 200, Height: 200}

	s := DefaultState()
	assert.Equal(t, Box{Width: 200, Height: 200}, Display(container, frame, s))

	s.Zoom = 2
	s.PanX = 10
	box := Display(container, frame, s)
	assert.Equal(t, Box{Left: -100 + 20, Top: -100, Width: 400, Height: 400}, box)
}

func TestScreenOfInvertsMap(t *testing.T) {
	frame := testFrame(512, 256, 0.7, 0.7)
	box := Box{Left: 33, Top: 12, Width: 300, Height: 150}

	x, y := ScreenOf(128, 64, box, frame)
	m := Map(x, y, box, frame)
	assert.InDelta(t, 128, m.ImageX, 1e-9)
	assert.InDelta(t, 64, m.ImageY, 1e-9)
}

func TestPhysicalMappingInvariantUnderZoomAndPan(t *testing.T) {
	frame := testFrame(256, 256, 0.8, 0.6)
	container := Box{Left: 50, Top: 40, Width: 600, Height: 500}
	v := New(DefaultLimits())

	before := Display(container, frame, v.State())
	sx, sy := ScreenOf(90, 170, before, frame)
	m1 := Map(sx, sy, before, frame)

	v.ZoomIn()
	v.ZoomIn()
	v.PanMove(0.3, -0.4)
	after := Display(container, frame, v.State())
	tx, ty := ScreenOf(90, 170, after, frame)
	m2 := Map(tx, ty, after, frame)

	assert.NotEqual(t, sx, tx, "the screen position moves with the zoom")
	assert.InDelta(t, m1.MMX, m2.MMX, 1e-9)
	assert.InDelta(t, m1.MMY, m2.MMY, 1e-9)
	assert.InDelta(t, 54.0, m2.MMX, 1e-9)
	assert.InDelta(t, 136.0, m2.MMY, 1e-9)
}

func TestBoxContains(t *testing.T) {
	box := Box{Left: 10, Top: 10, Width: 20, Height: 10}
	assert.True(t, box.Contains(15, 15))
	assert.True(t, box.Contains(30, 20), "edges are inside")
	assert.False(t, box.Contains(31, 15))
	assert.False(t, box.Contains(15, 9))
	c := box.Center()
	assert.Equal(t, 20.0, c[0])
	assert.Equal(t, 15.0, c[1])
}

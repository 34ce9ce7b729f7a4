// Package viewport holds the zoom, pan, contrast and pointer-mode state of
// the image view and maps between screen, image-pixel and physical space.
package viewport

import (
	"math"
	"sync"

	"dicomviewer/internal/models"
)

// State is a snapshot of the viewport
type State struct {
	Zoom     float64
	PanX     float64
	PanY     float64
	Contrast int
	Mode     models.PointerMode
}

// DefaultState is the state of a freshly loaded series
func DefaultState() State {
	return State{Zoom: 1, Contrast: 100, Mode: models.Pointer}
}

// Limits bounds and scales the viewport controls
type Limits struct {
	ZoomStep     float64
	MinZoom      float64
	MaxZoom      float64
	ContrastStep int
	MinContrast  int
	MaxContrast  int
	PanSpeed     float64
}

// DefaultLimits matches config.DefaultConfig
func DefaultLimits() Limits {
	return Limits{
		ZoomStep:     1.2,
		MinZoom:      0.1,
		MaxZoom:      20,
		ContrastStep: 10,
		MinContrast:  0,
		MaxContrast:  400,
		PanSpeed:     2,
	}
}

// Viewport owns the view state; every mutation goes through its methods
type Viewport struct {
	limits Limits

	mu    sync.Mutex
	state State
	panVX float64
	panVY float64
}

// New creates a viewport in the default state
func New(limits Limits) *Viewport {
	return &Viewport{limits: limits, state: DefaultState()}
}

// State returns a copy of the current state
func (v *Viewport) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Reset restores every field to its default and stops any pan input
func (v *Viewport) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state = DefaultState()
	v.panVX, v.panVY = 0, 0
}

// ZoomIn multiplies the zoom by the zoom step. It reports whether the zoom
// actually changed, which is false at the upper bound.
func (v *Viewport) ZoomIn() bool {
	return v.setZoom(func(z float64) float64 { return z * v.limits.ZoomStep })
}

// ZoomOut divides the zoom by the zoom step. It reports whether the zoom
// actually changed, which is false at the lower bound.
func (v *Viewport) ZoomOut() bool {
	return v.setZoom(func(z float64) float64 { return z / v.limits.ZoomStep })
}

func (v *Viewport) setZoom(next func(float64) float64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	z := math.Max(v.limits.MinZoom, math.Min(v.limits.MaxZoom, next(v.state.Zoom)))
	if z == v.state.Zoom {
		return false
	}
	v.state.Zoom = z
	return true
}

// ContrastUp raises contrast by one step, up to the maximum
func (v *Viewport) ContrastUp() int {
	return v.addContrast(v.limits.ContrastStep)
}

// ContrastDown lowers contrast by one step, down to the minimum
func (v *Viewport) ContrastDown() int {
	return v.addContrast(-v.limits.ContrastStep)
}

func (v *Viewport) addContrast(delta int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	c := v.state.Contrast + delta
	if c > v.limits.MaxContrast {
		c = v.limits.MaxContrast
	}
	if c < v.limits.MinContrast {
		c = v.limits.MinContrast
	}
	v.state.Contrast = c
	return c
}

// PanMove sets the joystick vector (each axis clamped to [-1, 1]) and applies
// one sample of it
func (v *Viewport) PanMove(x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panVX = clampUnit(x)
	v.panVY = clampUnit(y)
	v.sampleLocked()
}

// PanStop zeroes the joystick vector; the accumulated offset is kept
func (v *Viewport) PanStop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panVX, v.panVY = 0, 0
}

// Panning reports whether the joystick is deflected
func (v *Viewport) Panning() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.panVX != 0 || v.panVY != 0
}

// The joystick y axis points up while screen y points down, and the image
// moves against the x deflection.
func (v *Viewport) sampleLocked() {
	v.state.PanX += -v.panVX * v.limits.PanSpeed
	v.state.PanY += v.panVY * v.limits.PanSpeed
}

// Recenter resets zoom and pan in one step
func (v *Viewport) Recenter() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Zoom = 1
	v.state.PanX, v.state.PanY = 0, 0
}

// CanRecenter reports whether zoom or pan differ from their defaults
func (v *Viewport) CanRecenter() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Zoom != 1 || v.state.PanX != 0 || v.state.PanY != 0
}

// SetMode selects the pointer mode
func (v *Viewport) SetMode(m models.PointerMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.state.Mode = m
}

// Mode returns the pointer mode
func (v *Viewport) Mode() models.PointerMode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Mode
}

func clampUnit(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	return math.Max(-1, math.Min(1, x))
}

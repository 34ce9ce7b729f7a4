// Package measure implements the two-point caliper.
//
// The caliper cycles Empty -> OneAnchor -> TwoAnchors; a click while two
// anchors are shown starts a new caliper with a single anchor. Distances are
// computed from the screen-space delta between the anchors, converted to mm
// with the pointer-to-image scale and the per-axis pixel spacing.
package measure

import (
	"fmt"
	"sync"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/floats"

	"dicomviewer/internal/models"
	"dicomviewer/pkg/viewport"
)

// State of the caliper
type State int

const (
	Empty State = iota
	OneAnchor
	TwoAnchors
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case OneAnchor:
		return "one-anchor"
	case TwoAnchors:
		return "two-anchors"
	default:
		return "unknown"
	}
}

// Label is the distance annotation drawn between two anchors
type Label struct {
	// X and Y are the screen-space midpoint of the anchors
	X, Y float64

	// DistanceMM is the unrounded physical distance
	DistanceMM float64

	// Text is the distance rounded to two decimals, e.g. "12.34 mm"
	Text string
}

// Caliper is the measurement state machine
type Caliper struct {
	mu       sync.Mutex
	anchors  []models.Anchor
	distance float64
}

// NewCaliper returns an empty caliper
func NewCaliper() *Caliper {
	return &Caliper{}
}

// Place adds an anchor at the pointer position described by m on frame.
// The second anchor closes the caliper and fixes its distance; a third
// placement replaces both anchors with a new first one. Without a frame
// nothing is placed.
func (c *Caliper) Place(m viewport.Mapping, frame *models.Frame) State {
	if frame == nil {
		return c.State()
	}
	anchor := models.Anchor{
		ScreenX: m.LocalX,
		ScreenY: m.LocalY,
		MMX:     m.MMX,
		MMY:     m.MMY,
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch len(c.anchors) {
	case 1:
		c.anchors = append(c.anchors, anchor)
		c.distance = Distance(c.anchors[0], c.anchors[1], m.ScaleX, m.ScaleY, frame.SpacingRow, frame.SpacingCol)
	default:
		c.anchors = []models.Anchor{anchor}
		c.distance = 0
	}
	return stateOf(len(c.anchors))
}

// Clear removes every anchor
func (c *Caliper) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.anchors = nil
	c.distance = 0
}

// State returns the current caliper state
func (c *Caliper) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return stateOf(len(c.anchors))
}

// Anchors returns a copy of the placed anchors
func (c *Caliper) Anchors() []models.Anchor {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Anchor, len(c.anchors))
	copy(out, c.anchors)
	return out
}

// Distance returns the measured distance in mm once both anchors are placed
func (c *Caliper) Distance() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.anchors) != 2 {
		return 0, false
	}
	return c.distance, true
}

// Label returns the annotation for a complete caliper
func (c *Caliper) Label() (Label, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.anchors) != 2 {
		return Label{}, false
	}
	mid := Midpoint(c.anchors[0], c.anchors[1])
	return Label{
		X:          mid[0],
		Y:          mid[1],
		DistanceMM: c.distance,
		Text:       FormatMM(c.distance),
	}, true
}

// Distance computes the physical distance between two anchors from their
// screen delta:
//
//	dx = (b.x - a.x) * scaleX * spacingCol
//	dy = (b.y - a.y) * scaleY * spacingRow
func Distance(a, b models.Anchor, scaleX, scaleY, spacingRow, spacingCol float64) float64 {
	delta := []float64{
		(b.ScreenX - a.ScreenX) * scaleX * spacingCol,
		(b.ScreenY - a.ScreenY) * scaleY * spacingRow,
	}
	return floats.Norm(delta, 2)
}

// Midpoint returns the screen-space midpoint of two anchors
func Midpoint(a, b models.Anchor) orb.Point {
	return orb.Point{(a.ScreenX + b.ScreenX) / 2, (a.ScreenY + b.ScreenY) / 2}
}

// FormatMM renders a distance rounded to two decimals
func FormatMM(mm float64) string {
	return fmt.Sprintf("%.2f mm", mm)
}

func stateOf(n int) State {
	switch n {
	case 1:
		return OneAnchor
	case 2:
		return TwoAnchors
	default:
		return Empty
	}
}

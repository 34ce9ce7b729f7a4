package viewer

import (
	"dicomviewer/internal/models"
	"dicomviewer/pkg/measure"
	"dicomviewer/pkg/viewport"
)

// FrameInfo describes the frame on display
type FrameInfo struct {
	Name        string
	PixelWidth  int
	PixelHeight int
	WidthMM     float64
	HeightMM    float64
	SpacingRow  float64
	SpacingCol  float64
	Calibrated  bool
}

// Snapshot is everything a surface needs to draw the current view
type Snapshot struct {
	SeriesID    string
	Index       int
	Count       int
	Frame       *FrameInfo
	Viewport    viewport.State
	CanRecenter bool
	Repeating   bool
	Cursor      *viewport.Mapping
	Anchors     []models.Anchor
	Label       *measure.Label
}

// Snapshot returns a consistent copy of the session state
func (s *Session) Snapshot() Snapshot {
	current := s.store.Current()
	snap := Snapshot{
		Index:       s.nav.Index(),
		Count:       current.Len(),
		Viewport:    s.view.State(),
		CanRecenter: s.view.CanRecenter(),
		Repeating:   s.nav.Repeating(),
		Anchors:     s.caliper.Anchors(),
	}
	if current != nil {
		snap.SeriesID = current.ID
	}
	if frame := current.Frame(snap.Index); frame != nil {
		snap.Frame = &FrameInfo{
			Name:        frame.Name,
			PixelWidth:  frame.PixelWidth,
			PixelHeight: frame.PixelHeight,
			WidthMM:     frame.PhysicalWidth(),
			HeightMM:    frame.PhysicalHeight(),
			SpacingRow:  frame.SpacingRow,
			SpacingCol:  frame.SpacingCol,
			Calibrated:  frame.Calibrated,
		}
	}
	if l, ok := s.caliper.Label(); ok {
		snap.Label = &l
	}

	s.mu.Lock()
	if s.cursor != nil {
		c := *s.cursor
		snap.Cursor = &c
	}
	s.mu.Unlock()
	return snap
}

package viewer

import (
	"dicomviewer/internal/models"
	"dicomviewer/pkg/measure"
	"dicomviewer/pkg/navigation"
	"dicomviewer/pkg/viewport"
)

// PointerEnter marks the pointer as over the image body
func (s *Session) PointerEnter() {
	s.nav.SetHovered(true)
}

// PointerLeave marks the pointer as outside the image body, which also ends
// any repeat and drag in progress
func (s *Session) PointerLeave() {
	s.mu.Lock()
	s.cursor = nil
	s.mu.Unlock()
	s.nav.SetHovered(false)
}

// Wheel pages by one frame per event while hovering
func (s *Session) Wheel(deltaY float64) int {
	return s.nav.Wheel(deltaY)
}

// PointerDown starts a vertical drag at screen y
func (s *Session) PointerDown(x, y float64) {
	s.nav.DragStart(y)
}

// PointerMove updates the cursor readout and pages the drag gesture
func (s *Session) PointerMove(x, y float64) int {
	if frame := s.CurrentFrame(); frame != nil {
		m := viewport.Map(x, y, s.DisplayBox(), frame)
		s.mu.Lock()
		s.cursor = &m
		s.mu.Unlock()
	}
	return s.nav.DragMove(y, s.view.Mode(), s.view.Panning())
}

// PointerUp ends the drag gesture
func (s *Session) PointerUp() {
	s.nav.DragEnd()
}

// Click places a caliper anchor. It only acts in crosshair mode while the
// pointer is over the image body, and ignores clicks outside the image.
func (s *Session) Click(x, y float64) measure.State {
	frame := s.CurrentFrame()
	if frame == nil || !s.nav.Hovered() || s.view.Mode() != models.Crosshair {
		return s.caliper.State()
	}
	box := s.DisplayBox()
	if !box.Contains(x, y) {
		return s.caliper.State()
	}
	m := viewport.Map(x, y, box, frame)
	state := s.caliper.Place(m, frame)
	if d, ok := s.caliper.Distance(); ok {
		s.logger.Debug("caliper closed", "distance", measure.FormatMM(d), "frame", frame.Name)
	}
	return state
}

// PressNext starts press-and-hold paging forward
func (s *Session) PressNext() int {
	return s.nav.PressStart(navigation.Forward)
}

// PressPrev starts press-and-hold paging backward
func (s *Session) PressPrev() int {
	return s.nav.PressStart(navigation.Backward)
}

// Release ends press-and-hold paging
func (s *Session) Release() {
	s.nav.PressEnd()
}

// CancelPress ends press-and-hold paging when the press is cancelled
func (s *Session) CancelPress() {
	s.nav.PressCancel()
}

// JoystickMove feeds one joystick sample into the pan offset
func (s *Session) JoystickMove(x, y float64) {
	s.view.PanMove(x, y)
}

// JoystickStop releases the joystick
func (s *Session) JoystickStop() {
	s.view.PanStop()
}

// ZoomIn zooms in one step; anchors are cleared when the zoom changes since
// their screen positions no longer line up with the image
func (s *Session) ZoomIn() {
	if s.view.ZoomIn() {
		s.caliper.Clear()
	}
}

// ZoomOut zooms out one step, clearing anchors when the zoom changes
func (s *Session) ZoomOut() {
	if s.view.ZoomOut() {
		s.caliper.Clear()
	}
}

// ContrastUp raises the contrast one step
func (s *Session) ContrastUp() int {
	return s.view.ContrastUp()
}

// ContrastDown lowers the contrast one step
func (s *Session) ContrastDown() int {
	return s.view.ContrastDown()
}

// Recenter resets zoom and pan. Anchors are cleared if the zoom changed.
func (s *Session) Recenter() {
	zoomed := s.view.State().Zoom != 1
	s.view.Recenter()
	if zoomed {
		s.caliper.Clear()
	}
}

// SetMode switches the pointer mode; anchors are kept
func (s *Session) SetMode(m models.PointerMode) {
	s.view.SetMode(m)
}

// ClearMeasurement removes every caliper anchor
func (s *Session) ClearMeasurement() {
	s.caliper.Clear()
}

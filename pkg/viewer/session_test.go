package viewer

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dicomviewer/internal/models"
	"dicomviewer/pkg/config"
	"dicomviewer/pkg/decoder/decodertest"
	verrors "dicomviewer/pkg/errors"
	"dicomviewer/pkg/measure"
	"dicomviewer/pkg/viewport"
)

// manualScheduler hands out repeat tasks that only run when fired.
type manualScheduler struct {
	mu    sync.Mutex
	fn    func()
	alive bool
}

func (s *manualScheduler) Every(_ time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn, s.alive = fn, true
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.alive = false
	}
}

func (s *manualScheduler) fire() {
	s.mu.Lock()
	fn, alive := s.fn, s.alive
	s.mu.Unlock()
	if alive {
		fn()
	}
}

func newSession(t *testing.T, cfg *config.Config) (*Session, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	s, err := New(cfg, &decodertest.Fake{}, WithLogger(log.New(io.Discard)), WithScheduler(sched))
	require.NoError(t, err)
	t.Cleanup(s.Close)

	// 100x50 frames at 0.5 mm fill a 200x100 container exactly, so one
	// screen pixel is half an image pixel
	s.SetContainer(viewport.Box{Width: 200, Height: 100})
	return s, sched
}

func seriesFiles(names ...string) []models.SourceFile {
	files := make([]models.SourceFile, len(names))
	for i, name := range names {
		files[i] = models.SourceFile{Name: name, Data: decodertest.Payload(100, 50, `0.5\0.5`)}
	}
	return files
}

func loaded(t *testing.T, names ...string) (*Session, *manualScheduler) {
	t.Helper()
	s, sched := newSession(t, nil)
	require.NoError(t, s.Load(context.Background(), seriesFiles(names...)))
	return s, sched
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Viewport.ZoomStep = 1

	_, err := New(cfg, &decodertest.Fake{})
	require.Error(t, err)
	assert.True(t, verrors.Is(err, verrors.ErrCodeConfig))
}

func TestLoadShowsFirstFrameInNameOrder(t *testing.T) {
	s, _ := loaded(t, "c.dcm", "a.dcm", "b.dcm")

	snap := s.Snapshot()
	assert.NotEmpty(t, snap.SeriesID)
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, 3, snap.Count)
	require.NotNil(t, snap.Frame)
	assert.Equal(t, "a.dcm", snap.Frame.Name)
	assert.Equal(t, 100, snap.Frame.PixelWidth)
	assert.InDelta(t, 50.0, snap.Frame.WidthMM, 1e-9)
	assert.InDelta(t, 25.0, snap.Frame.HeightMM, 1e-9)
	assert.True(t, snap.Frame.Calibrated)
}

func TestFailedLoadKeepsPreviousSeries(t *testing.T) {
	s, _ := loaded(t, "a.dcm", "b.dcm")
	s.PointerEnter()
	s.Wheel(1)
	before := s.Snapshot()

	files := seriesFiles("x.dcm", "y.dcm")
	files[1].Data = decodertest.Corrupt()
	err := s.Load(context.Background(), files)

	require.Error(t, err)
	assert.True(t, verrors.Is(err, verrors.ErrCodeSeriesBuild))
	assert.True(t, verrors.Is(err, verrors.ErrCodeDecode))
	after := s.Snapshot()
	assert.Equal(t, before.SeriesID, after.SeriesID)
	assert.Equal(t, 1, after.Index)
	assert.Equal(t, "b.dcm", after.Frame.Name)
}

func TestEmptySessionSnapshot(t *testing.T) {
	s, _ := newSession(t, nil)

	snap := s.Snapshot()
	assert.Empty(t, snap.SeriesID)
	assert.Equal(t, 0, snap.Count)
	assert.Nil(t, snap.Frame)
	assert.Nil(t, snap.Label)
	assert.Equal(t, 0, s.Wheel(1))
	assert.Equal(t, measure.Empty, s.Click(10, 10))
}

func TestWheelNeedsHover(t *testing.T) {
	s, _ := loaded(t, "a.dcm", "b.dcm", "c.dcm")

	assert.Equal(t, 0, s.Wheel(1))
	s.PointerEnter()
	assert.Equal(t, 1, s.Wheel(1))
	assert.Equal(t, 2, s.Wheel(3))
	assert.Equal(t, 2, s.Wheel(1), "stays on the last frame")
	assert.Equal(t, 1, s.Wheel(-1))
	s.PointerLeave()
	assert.Equal(t, 1, s.Wheel(1))
}

func TestDragPagesInPointerModeOnly(t *testing.T) {
	s, _ := loaded(t, "a.dcm", "b.dcm", "c.dcm")
	s.PointerEnter()

	s.PointerDown(50, 50)
	assert.Equal(t, 0, s.PointerMove(50, 50.05), "inside the deadband")
	assert.Equal(t, 1, s.PointerMove(50, 45), "moving up advances")
	assert.Equal(t, 0, s.PointerMove(50, 60))
	s.PointerUp()
	assert.Equal(t, 0, s.PointerMove(50, 10))

	s.SetMode(models.Crosshair)
	s.PointerDown(50, 50)
	assert.Equal(t, 0, s.PointerMove(50, 10))
	s.PointerUp()
}

func TestDragPausedWhilePanning(t *testing.T) {
	s, _ := loaded(t, "a.dcm", "b.dcm")
	s.PointerEnter()

	s.JoystickMove(0.5, 0)
	s.PointerDown(50, 50)
	assert.Equal(t, 0, s.PointerMove(50, 10))
	s.JoystickStop()
	assert.Equal(t, 1, s.PointerMove(50, 0))
}

func TestPressAndHoldRepeats(t *testing.T) {
	s, sched := loaded(t, "a.dcm", "b.dcm", "c.dcm", "d.dcm")

	assert.Equal(t, 1, s.PressNext())
	assert.True(t, s.Snapshot().Repeating)
	sched.fire()
	sched.fire()
	assert.Equal(t, 3, s.Snapshot().Index)
	sched.fire()
	assert.Equal(t, 3, s.Snapshot().Index)

	s.Release()
	assert.False(t, s.Snapshot().Repeating)
	sched.fire()
	assert.Equal(t, 3, s.Snapshot().Index)

	assert.Equal(t, 2, s.PressPrev())
	s.CancelPress()
	assert.False(t, s.Snapshot().Repeating)
}

func TestCursorReadout(t *testing.T) {
	s, _ := loaded(t, "a.dcm")
	s.PointerEnter()
	s.PointerMove(100, 50)

	cursor := s.Snapshot().Cursor
	require.NotNil(t, cursor)
	assert.InDelta(t, 50.0, cursor.ImageX, 1e-9)
	assert.InDelta(t, 25.0, cursor.ImageY, 1e-9)
	assert.InDelta(t, 25.0, cursor.MMX, 1e-9)
	assert.InDelta(t, 12.5, cursor.MMY, 1e-9)

	s.PointerLeave()
	assert.Nil(t, s.Snapshot().Cursor)
}

func TestCaliperMeasuresInCrosshairMode(t *testing.T) {
	s, _ := loaded(t, "a.dcm")
	s.PointerEnter()

	assert.Equal(t, measure.Empty, s.Click(20, 20), "pointer mode ignores clicks")

	s.SetMode(models.Crosshair)
	assert.Equal(t, measure.OneAnchor, s.Click(20, 20))
	assert.Equal(t, measure.TwoAnchors, s.Click(100, 20))

	snap := s.Snapshot()
	require.NotNil(t, snap.Label)
	// 80 screen px * 0.5 image px * 0.5 mm
	assert.InDelta(t, 20.0, snap.Label.DistanceMM, 1e-9)
	assert.Equal(t, "20.00 mm", snap.Label.Text)
	assert.Len(t, snap.Anchors, 2)

	assert.Equal(t, measure.OneAnchor, s.Click(30, 30), "a third click starts over")
	assert.Nil(t, s.Snapshot().Label)

	s.PointerLeave()
	assert.Equal(t, measure.OneAnchor, s.Click(60, 60))
}

func TestClickOutsideImageIsIgnored(t *testing.T) {
	s, _ := loaded(t, "a.dcm")
	s.PointerEnter()
	s.SetMode(models.Crosshair)
	s.ZoomOut()

	// the zoomed-out image no longer reaches the container corner
	assert.Equal(t, measure.Empty, s.Click(2, 2))
	assert.Equal(t, measure.OneAnchor, s.Click(100, 50))
	assert.Equal(t, measure.OneAnchor, s.Click(198, 98))
	assert.Equal(t, measure.TwoAnchors, s.Click(150, 60))
}

func TestZoomClearsCaliperOnlyWhenZoomChanges(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Viewport.MaxZoom = 1.2
	s, _ := newSession(t, cfg)
	require.NoError(t, s.Load(context.Background(), seriesFiles("a.dcm")))
	s.PointerEnter()
	s.SetMode(models.Crosshair)

	s.Click(10, 10)
	s.Click(50, 10)
	s.ContrastUp()
	assert.Len(t, s.Snapshot().Anchors, 2)

	s.ZoomIn()
	assert.Empty(t, s.Snapshot().Anchors)
	assert.InDelta(t, 1.2, s.Snapshot().Viewport.Zoom, 1e-9)

	s.Click(10, 10)
	s.ZoomIn()
	assert.Len(t, s.Snapshot().Anchors, 1, "zoom already at its limit")

	s.Recenter()
	assert.Empty(t, s.Snapshot().Anchors)
	assert.Equal(t, 1.0, s.Snapshot().Viewport.Zoom)
}

func TestLoadResetsViewAndMeasurement(t *testing.T) {
	s, _ := loaded(t, "a.dcm", "b.dcm")
	s.PointerEnter()
	s.Wheel(1)
	s.ZoomOut()
	s.ContrastDown()
	s.JoystickMove(1, 1)
	s.SetMode(models.Crosshair)
	s.Click(10, 10)

	require.NoError(t, s.Load(context.Background(), seriesFiles("p.dcm", "q.dcm")))

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, viewport.DefaultState(), snap.Viewport)
	assert.False(t, snap.CanRecenter)
	assert.Empty(t, snap.Anchors)
	assert.Equal(t, "p.dcm", snap.Frame.Name)
}

func TestReset(t *testing.T) {
	s, _ := loaded(t, "a.dcm", "b.dcm")
	s.PressNext()

	s.Reset()

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Count)
	assert.Nil(t, snap.Frame)
	assert.False(t, snap.Repeating)
}

func TestRender(t *testing.T) {
	s, _ := loaded(t, "a.dcm")
	s.PointerEnter()
	s.SetMode(models.Crosshair)
	s.Click(20, 20)
	s.Click(100, 20)

	img := s.Render()
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())

	url, err := s.RenderDataURL()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))
}

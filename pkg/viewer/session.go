// Package viewer wires the series store, navigation controller, viewport
// and caliper into one session driven by input events.
//
// A Session is what an interactive surface talks to: it forwards pointer,
// wheel, press-and-hold and joystick events to the component that owns the
// affected state, and exposes a Snapshot of everything needed to draw the
// current view.
package viewer

import (
	"context"
	"image"
	"sync"

	"github.com/charmbracelet/log"

	"dicomviewer/internal/models"
	"dicomviewer/pkg/config"
	"dicomviewer/pkg/decoder"
	verrors "dicomviewer/pkg/errors"
	"dicomviewer/pkg/measure"
	"dicomviewer/pkg/navigation"
	"dicomviewer/pkg/normalize"
	"dicomviewer/pkg/series"
	"dicomviewer/pkg/viewport"
	"dicomviewer/pkg/visualization"
)

// Option customizes a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithScheduler replaces the press-and-hold repeat scheduler
func WithScheduler(sched navigation.Scheduler) Option {
	return func(s *Session) { s.scheduler = sched }
}

// Session is one viewing session over at most one series at a time
type Session struct {
	cfg       *config.Config
	logger    *log.Logger
	scheduler navigation.Scheduler

	store   *series.Store
	nav     *navigation.Controller
	view    *viewport.Viewport
	caliper *measure.Caliper

	mu        sync.Mutex
	container viewport.Box
	cursor    *viewport.Mapping
}

// New creates a session decoding files with dec
func New(cfg *config.Config, dec decoder.Decoder, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}

	normalizer := normalize.New(dec, s.logger)
	s.store = series.NewStore(series.NewBuilder(normalizer, cfg.Loading.Workers, s.logger), s.logger)
	s.nav = navigation.New(navigation.Options{
		RepeatInterval: cfg.Navigation.RepeatInterval,
		DragDeadband:   cfg.Navigation.DragDeadband,
		Scheduler:      s.scheduler,
		Logger:         s.logger,
	})
	s.view = viewport.New(viewport.Limits{
		ZoomStep:     cfg.Viewport.ZoomStep,
		MinZoom:      cfg.Viewport.MinZoom,
		MaxZoom:      cfg.Viewport.MaxZoom,
		ContrastStep: cfg.Viewport.ContrastStep,
		MinContrast:  cfg.Viewport.MinContrast,
		MaxContrast:  cfg.Viewport.MaxContrast,
		PanSpeed:     cfg.Viewport.PanSpeed,
	})
	s.caliper = measure.NewCaliper()
	return s, nil
}

// Navigation exposes the navigation controller, e.g. to subscribe to index
// changes
func (s *Session) Navigation() *navigation.Controller {
	return s.nav
}

// Close stops any background repeat
func (s *Session) Close() {
	s.nav.Close()
}

// Load builds a series from files and shows it from the first frame with a
// fresh viewport. On failure the previous series stays on display and the
// returned error carries a SERIES_BUILD_ERROR code.
func (s *Session) Load(ctx context.Context, files []models.SourceFile) error {
	s.cancelGestures()

	built, err := s.store.Load(ctx, files)
	if err != nil {
		s.logger.Error("load failed", "files", len(files), "message", verrors.UserMessage(err))
		return err
	}

	s.nav.SetLength(built.Len())
	s.view.Reset()
	s.caliper.Clear()
	s.mu.Lock()
	s.cursor = nil
	s.mu.Unlock()

	s.logger.Info("series loaded", "series", built.ID, "frames", built.Len())
	return nil
}

// LoadDir loads every file of dir as one series
func (s *Session) LoadDir(ctx context.Context, dir string) error {
	files, err := series.ReadDir(dir)
	if err != nil {
		return verrors.SeriesBuild(err, "cannot read %s", dir)
	}
	return s.Load(ctx, files)
}

// Reset clears the series and every piece of view state
func (s *Session) Reset() {
	s.cancelGestures()
	s.store.Clear()
	s.nav.SetLength(0)
	s.view.Reset()
	s.caliper.Clear()
	s.mu.Lock()
	s.cursor = nil
	s.mu.Unlock()
}

func (s *Session) cancelGestures() {
	s.nav.PressEnd()
	s.nav.DragEnd()
	s.view.PanStop()
}

// Series returns the series on display, or nil
func (s *Session) Series() *models.Series {
	return s.store.Current()
}

// CurrentFrame returns the frame at the current index, or nil
func (s *Session) CurrentFrame() *models.Frame {
	return s.store.Current().Frame(s.nav.Index())
}

// SetContainer sets the on-screen box the image is laid out in
func (s *Session) SetContainer(box viewport.Box) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.container = box
}

// DisplayBox returns the current on-screen box of the image
func (s *Session) DisplayBox() viewport.Box {
	s.mu.Lock()
	container := s.container
	s.mu.Unlock()
	return viewport.Display(container, s.CurrentFrame(), s.view.State())
}

// Render composes the current frame and caliper overlay at the size of the
// container
func (s *Session) Render() *image.RGBA {
	s.mu.Lock()
	container := s.container
	s.mu.Unlock()

	w, h := int(container.Width), int(container.Height)
	frame := s.CurrentFrame()
	state := s.view.State()
	canvas := visualization.Viewport(frame, state, w, h)

	local := viewport.Box{Width: container.Width, Height: container.Height}
	var label *measure.Label
	if l, ok := s.caliper.Label(); ok {
		label = &l
	}
	visualization.Overlay(canvas, viewport.Display(local, frame, state), s.caliper.Anchors(), label)
	return canvas
}

// RenderDataURL renders the view as a JPEG data URL
func (s *Session) RenderDataURL() (string, error) {
	return visualization.DataURL(s.Render(), s.cfg.Render.JPEGQuality)
}

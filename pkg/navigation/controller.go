// Package navigation owns the current position in a series and arbitrates
// the three paging gestures: mouse wheel, press-and-hold repeat and vertical
// drag on the image.
//
// All gestures mutate the same clamped index under one lock; the last writer
// wins and nothing is queued. At most one repeat task is alive at any time.
package navigation

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"dicomviewer/internal/models"
)

// Direction of a step
type Direction int

const (
	// Backward moves towards index 0
	Backward Direction = -1
	// Forward moves towards the last frame
	Forward Direction = 1
)

// Options configures a Controller
type Options struct {
	// RepeatInterval is the press-and-hold repeat period
	RepeatInterval time.Duration

	// DragDeadband is the vertical movement in pixels needed for one drag step
	DragDeadband float64

	// Scheduler drives the repeat task; TickerScheduler when nil
	Scheduler Scheduler

	// Logger falls back to log.Default() when nil
	Logger *log.Logger
}

// Controller is the navigation state machine over one series
type Controller struct {
	interval  time.Duration
	deadband  float64
	scheduler Scheduler
	logger    *log.Logger

	mu       sync.Mutex
	length   int
	index    int
	hovered  bool
	dragging bool
	dragRefY float64

	cancelRepeat func()
	repeatToken  uint64

	listeners []func(index int)
}

// New creates a controller for an empty series
func New(opts Options) *Controller {
	if opts.Scheduler == nil {
		opts.Scheduler = TickerScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RepeatInterval <= 0 {
		opts.RepeatInterval = 40 * time.Millisecond
	}
	return &Controller{
		interval:  opts.RepeatInterval,
		deadband:  opts.DragDeadband,
		scheduler: opts.Scheduler,
		logger:    opts.Logger,
	}
}

// OnChange registers fn to be called with the new index after every change.
// Listeners run synchronously, outside the controller lock.
func (c *Controller) OnChange(fn func(index int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// SetLength switches to a series of n frames: the index goes back to 0 and
// any repeat or drag in progress is cancelled.
func (c *Controller) SetLength(n int) {
	c.mu.Lock()
	if n < 0 {
		n = 0
	}
	c.length = n
	c.stopRepeatLocked()
	c.dragging = false
	changed := c.index != 0
	c.index = 0
	c.mu.Unlock()

	if changed {
		c.notify(0)
	}
}

// Len returns the number of frames being navigated
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.length
}

// Index returns the current index
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Step moves the index by delta, clamped into range, and returns the result
func (c *Controller) Step(delta int) int {
	c.mu.Lock()
	idx, changed := c.setLocked(c.index + delta)
	c.mu.Unlock()

	if changed {
		c.notify(idx)
	}
	return idx
}

// Jump moves to index i, clamped into range, and returns the result
func (c *Controller) Jump(i int) int {
	c.mu.Lock()
	idx, changed := c.setLocked(i)
	c.mu.Unlock()

	if changed {
		c.notify(idx)
	}
	return idx
}

// Next steps one frame forward
func (c *Controller) Next() int { return c.Step(int(Forward)) }

// Prev steps one frame backward
func (c *Controller) Prev() int { return c.Step(int(Backward)) }

// SetHovered gates the wheel. Leaving the viewport also ends any repeat and
// drag in progress.
func (c *Controller) SetHovered(hovered bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hovered = hovered
	if !hovered {
		c.stopRepeatLocked()
		c.dragging = false
	}
}

// Hovered reports whether the pointer is over the viewport
func (c *Controller) Hovered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hovered
}

// Wheel applies one wheel event: scrolling down (deltaY > 0) advances,
// anything else goes back. Ignored unless the pointer is over the viewport.
func (c *Controller) Wheel(deltaY float64) int {
	c.mu.Lock()
	if !c.hovered {
		idx := c.index
		c.mu.Unlock()
		return idx
	}
	dir := Backward
	if deltaY > 0 {
		dir = Forward
	}
	idx, changed := c.setLocked(c.index + int(dir))
	c.mu.Unlock()

	if changed {
		c.notify(idx)
	}
	return idx
}

// PressStart performs one immediate step in dir, then repeats it every
// repeat interval until PressEnd or PressCancel. A repeat already running is
// cancelled first.
func (c *Controller) PressStart(dir Direction) int {
	c.mu.Lock()
	c.stopRepeatLocked()
	idx, changed := c.setLocked(c.index + int(dir))

	c.repeatToken++
	token := c.repeatToken
	c.cancelRepeat = c.scheduler.Every(c.interval, func() { c.tick(token, dir) })
	c.mu.Unlock()

	c.logger.Debug("press repeat started", "direction", int(dir), "interval", c.interval)
	if changed {
		c.notify(idx)
	}
	return idx
}

// PressEnd stops the repeat on release
func (c *Controller) PressEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopRepeatLocked()
}

// PressCancel stops the repeat when the press is cancelled
func (c *Controller) PressCancel() {
	c.PressEnd()
}

// Repeating reports whether a repeat task is alive
func (c *Controller) Repeating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelRepeat != nil
}

func (c *Controller) tick(token uint64, dir Direction) {
	c.mu.Lock()
	if token != c.repeatToken || c.cancelRepeat == nil {
		// a tick that raced its own cancellation
		c.mu.Unlock()
		return
	}
	idx, changed := c.setLocked(c.index + int(dir))
	c.mu.Unlock()

	if changed {
		c.notify(idx)
	}
}

// DragStart records the reference point of a vertical drag
func (c *Controller) DragStart(y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dragging = true
	c.dragRefY = y
}

// DragMove pages by one frame each time the pointer moves more than the
// deadband away from the reference point, then makes y the new reference.
// Moving up advances. Only Pointer mode drags page, and never while a pan is
// in progress.
func (c *Controller) DragMove(y float64, mode models.PointerMode, panning bool) int {
	c.mu.Lock()
	if !c.dragging || mode != models.Pointer || panning {
		idx := c.index
		c.mu.Unlock()
		return idx
	}

	dy := y - c.dragRefY
	var idx int
	var changed bool
	switch {
	case dy < -c.deadband:
		idx, changed = c.setLocked(c.index + int(Forward))
		c.dragRefY = y
	case dy > c.deadband:
		idx, changed = c.setLocked(c.index + int(Backward))
		c.dragRefY = y
	default:
		idx = c.index
	}
	c.mu.Unlock()

	if changed {
		c.notify(idx)
	}
	return idx
}

// DragEnd finishes the drag gesture
func (c *Controller) DragEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dragging = false
}

// Dragging reports whether a drag gesture is active
func (c *Controller) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragging
}

// Close cancels any background repeat
func (c *Controller) Close() {
	c.PressEnd()
}

func (c *Controller) setLocked(i int) (int, bool) {
	if i > c.length-1 {
		i = c.length - 1
	}
	if i < 0 {
		i = 0
	}
	if i == c.index {
		return i, false
	}
	c.index = i
	return i, true
}

func (c *Controller) stopRepeatLocked() {
	if c.cancelRepeat == nil {
		return
	}
	c.cancelRepeat()
	c.cancelRepeat = nil
	c.repeatToken++
}

func (c *Controller) notify(idx int) {
	c.mu.Lock()
	listeners := make([]func(int), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	c.logger.Debug("index changed", "index", idx)
	for _, fn := range listeners {
		fn(idx)
	}
}

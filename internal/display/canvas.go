package display

import (
	"sync"
	"time"

	"github.com/tinytelemetry/cards/internal/model"
)

// DefaultPulseDuration is how long a long haptic pulse stays visible.
const DefaultPulseDuration = 500 * time.Millisecond

// Canvas is the in-memory Surface. It is safe for concurrent use: the
// watch loop mutates it while the terminal UI renders it.
type Canvas struct {
	mu     sync.Mutex
	now    func() time.Time
	root   *Layer
	nextID int
	live   int

	alert      *alert
	pulseUntil time.Time
	pulses     int
}

type alert struct {
	title, body string
	until       time.Time
}

// CanvasOption configures a Canvas.
type CanvasOption func(*Canvas)

// WithClock overrides the time source used for animations and overlays.
func WithClock(now func() time.Time) CanvasOption {
	return func(c *Canvas) { c.now = now }
}

// NewCanvas creates an empty screen.
func NewCanvas(opts ...CanvasOption) *Canvas {
	c := &Canvas{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.root = &Layer{
		id:    0,
		kind:  KindGroup,
		frame: model.Rect{W: model.ScreenWidth, H: model.ScreenHeight},
	}
	c.nextID = 1
	return c
}

// Root returns the window layer.
func (c *Canvas) Root() *Layer { return c.root }

func (c *Canvas) add(parent *Layer, l *Layer) *Layer {
	c.mu.Lock()
	defer c.mu.Unlock()

	if parent == nil {
		parent = c.root
	}
	l.id = c.nextID
	c.nextID++
	if parent.removed {
		// Children of a removed layer are born detached.
		l.removed = true
		return l
	}
	l.parent = parent
	parent.children = append(parent.children, l)
	c.live++
	return l
}

// AddGroup adds an empty container layer.
func (c *Canvas) AddGroup(parent *Layer, frame model.Rect) *Layer {
	return c.add(parent, &Layer{kind: KindGroup, frame: frame})
}

// AddBitmap adds an image layer.
func (c *Canvas) AddBitmap(parent *Layer, frame model.Rect, bmp Bitmap) *Layer {
	return c.add(parent, &Layer{kind: KindBitmap, frame: frame, bitmap: bmp})
}

// AddText adds a text layer bound to src.
func (c *Canvas) AddText(parent *Layer, frame model.Rect, src TextSource, style TextStyle) *Layer {
	if src == nil {
		src = StaticText("")
	}
	return c.add(parent, &Layer{kind: KindText, frame: frame, text: src, style: style})
}

// AddInverter adds a layer that inverts everything beneath it.
func (c *Canvas) AddInverter(parent *Layer, frame model.Rect) *Layer {
	return c.add(parent, &Layer{kind: KindInverter, frame: frame})
}

// Remove detaches l and all of its children. Removing twice is a no-op.
func (c *Canvas) Remove(l *Layer) {
	if l == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if l.removed || l == c.root {
		return
	}
	if p := l.parent; p != nil {
		for i, child := range p.children {
			if child == l {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	c.markRemoved(l)
}

func (c *Canvas) markRemoved(l *Layer) {
	l.removed = true
	l.parent = nil
	l.anim = nil
	c.live--
	for _, child := range l.children {
		c.markRemoved(child)
	}
	l.children = nil
}

// Animate moves l from its current frame to to over d. A new animation
// replaces any running one, starting from the interpolated position.
func (c *Canvas) Animate(l *Layer, to model.Rect, d time.Duration) {
	if l == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if l.removed {
		return
	}
	now := c.now()
	from := c.frameLocked(l, now)
	if d <= 0 {
		l.frame = to
		l.anim = nil
		return
	}
	l.anim = &animation{from: from, to: to, start: now, dur: d}
}

// Frame returns the current frame of l relative to its parent.
func (c *Canvas) Frame(l *Layer) model.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frameLocked(l, c.now())
}

func (c *Canvas) frameLocked(l *Layer, now time.Time) model.Rect {
	if l.anim == nil {
		return l.frame
	}
	r, done := l.anim.at(now)
	if done {
		l.frame = r
		l.anim = nil
	}
	return r
}

// Animating reports whether l has an animation in progress.
func (c *Canvas) Animating(l *Layer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l.anim == nil {
		return false
	}
	c.frameLocked(l, c.now())
	return l.anim != nil
}

// LiveLayers returns the number of attached layers, excluding the root.
func (c *Canvas) LiveLayers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// ShowAlert displays a modal over the screen until timeout elapses.
func (c *Canvas) ShowAlert(title, body string, timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alert = &alert{title: title, body: body, until: c.now().Add(timeout)}
}

// ActiveAlert returns the visible alert, if any.
func (c *Canvas) ActiveAlert() (title, body string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a := c.activeAlertLocked(c.now())
	if a == nil {
		return "", "", false
	}
	return a.title, a.body, true
}

func (c *Canvas) activeAlertLocked(now time.Time) *alert {
	if c.alert == nil {
		return nil
	}
	if !now.Before(c.alert.until) {
		c.alert = nil
		return nil
	}
	return c.alert
}

// LongPulse records one long vibration.
func (c *Canvas) LongPulse() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pulses++
	c.pulseUntil = c.now().Add(DefaultPulseDuration)
}

// Pulsing reports whether a vibration is in progress.
func (c *Canvas) Pulsing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Before(c.pulseUntil)
}

// Pulses returns the number of vibrations so far.
func (c *Canvas) Pulses() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pulses
}

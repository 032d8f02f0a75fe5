// Package display is the watch screen: a layer tree composited onto a
// 144x168 pixel surface and rasterised into terminal cells.
package display

import (
	"time"

	"github.com/tinytelemetry/cards/internal/model"
)

// Kind is the type of a layer.
type Kind int

const (
	KindGroup Kind = iota
	KindBitmap
	KindText
	KindInverter
)

// Align controls horizontal text placement inside a text layer.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextStyle describes how a text layer is drawn.
type TextStyle struct {
	Align Align
	Bold  bool
}

// TextSource supplies the text of a text layer. It is read on every frame,
// so a layer bound to a mutable buffer always shows the latest content.
// Render calls String from the renderer's goroutine, so a mutable source
// must synchronise its own writes (model.Text does).
type TextSource interface {
	String() string
}

// StaticText is a TextSource for fixed strings.
type StaticText string

func (s StaticText) String() string { return string(s) }

// Bitmap is a monochrome image. Fill paints the whole frame white; Rows are
// drawn from the top-left corner, one string per cell row, spaces transparent.
type Bitmap struct {
	Name string
	Fill bool
	Rows []string
}

// Surface creates, positions and animates layers. Layer frames are
// relative to their parent. Animate has no completion callback; callers
// infer completion from the duration.
type Surface interface {
	Root() *Layer
	AddGroup(parent *Layer, frame model.Rect) *Layer
	AddBitmap(parent *Layer, frame model.Rect, bmp Bitmap) *Layer
	AddText(parent *Layer, frame model.Rect, src TextSource, style TextStyle) *Layer
	AddInverter(parent *Layer, frame model.Rect) *Layer
	Remove(l *Layer)
	Animate(l *Layer, to model.Rect, d time.Duration)
	Frame(l *Layer) model.Rect
}

// Layer is a handle to one element of the layer tree. All fields are owned
// by the Canvas that created it and are only touched under its lock.
type Layer struct {
	id       int
	kind     Kind
	parent   *Layer
	children []*Layer
	frame    model.Rect
	anim     *animation
	bitmap   Bitmap
	text     TextSource
	style    TextStyle
	removed  bool
}

// ID returns the canvas-unique layer id.
func (l *Layer) ID() int { return l.id }

// Kind returns the layer type.
func (l *Layer) Kind() Kind { return l.kind }

type animation struct {
	from, to model.Rect
	start    time.Time
	dur      time.Duration
}

// at returns the interpolated frame and whether the animation has finished.
func (a *animation) at(now time.Time) (model.Rect, bool) {
	elapsed := now.Sub(a.start)
	if elapsed >= a.dur {
		return a.to, true
	}
	if elapsed <= 0 {
		return a.from, false
	}
	p := easeInOut(float64(elapsed) / float64(a.dur))
	return model.Rect{
		X: lerp(a.from.X, a.to.X, p),
		Y: lerp(a.from.Y, a.to.Y, p),
		W: lerp(a.from.W, a.to.W, p),
		H: lerp(a.from.H, a.to.H, p),
	}, false
}

func easeInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	u := -2*t + 2
	return 1 - u*u/2
}

func lerp(a, b int, p float64) int {
	v := float64(a) + float64(b-a)*p
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

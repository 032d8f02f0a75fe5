// Package card implements one on-screen card: a group of bitmap and text
// layers showing time, date, weather and connectivity for a single
// spawn/rest/despawn cycle.
package card

import (
	"time"

	"github.com/tinytelemetry/cards/internal/display"
	"github.com/tinytelemetry/cards/internal/model"
)

// Layout of the sub-elements inside the card frame.
var (
	backgroundFrame  = model.Rect{X: 0, Y: 0, W: 144, H: 129}
	timeFrame        = model.Rect{X: 0, Y: 16, W: 144, H: 16}
	dateFrame        = model.Rect{X: 0, Y: 40, W: 144, H: 8}
	locationFrame    = model.Rect{X: 8, Y: 64, W: 128, H: 8}
	conditionsFrame  = model.Rect{X: 8, Y: 80, W: 96, H: 8}
	weatherFrame     = model.Rect{X: 112, Y: 72, W: 16, H: 16}
	temperatureFrame = model.Rect{X: 96, Y: 96, W: 40, H: 8}
	batteryFrame     = model.Rect{X: 8, Y: 112, W: 24, H: 8}
	btFrame          = model.Rect{X: 128, Y: 112, W: 8, H: 8}
)

// batteryBarMax is the pixel width of a full battery bar.
const batteryBarMax = 16

// Options tunes how a card looks and moves.
type Options struct {
	Duration   time.Duration // spawn and despawn animation length
	Use24Hour  bool
	DateLayout string
}

func (o Options) withDefaults() Options {
	if o.Duration <= 0 {
		o.Duration = model.DefaultTransitionDelay
	}
	if o.DateLayout == "" {
		o.DateLayout = "Mon 02 Jan"
	}
	return o
}

// Card owns the layers of one visible card. The location, conditions and
// temperature buffers are borrowed; time and date buffers are owned.
type Card struct {
	surface display.Surface
	opts    Options

	group      *display.Layer
	background *display.Layer
	battery    *display.Layer
	batteryBar *display.Layer
	bt         *display.Layer
	weather    *display.Layer

	timeLayer        *display.Layer
	dateLayer        *display.Layer
	locationLayer    *display.Layer
	conditionsLayer  *display.Layer
	temperatureLayer *display.Layer

	timeBuf *model.Text
	dateBuf *model.Text

	position  model.Position
	weatherOf Condition
	destroyed bool
}

// New builds a card below the viewport, ready to be spawned.
func New(surface display.Surface, values *model.LastKnown, status model.Status, now time.Time, opts Options) *Card {
	opts = opts.withDefaults()
	c := &Card{
		surface:  surface,
		opts:     opts,
		timeBuf:  &model.Text{},
		dateBuf:  &model.Text{},
		position: model.PositionSpawn,
	}

	if opts.Use24Hour {
		c.timeBuf.Set(now.Format("15:04"))
	} else {
		c.timeBuf.Set(now.Format("3:04"))
	}
	c.dateBuf.Set(now.Format(opts.DateLayout))

	c.group = surface.AddGroup(surface.Root(), model.CardSpawnRect)
	c.background = surface.AddBitmap(c.group, backgroundFrame, backgroundBitmap)

	c.timeLayer = surface.AddText(c.group, timeFrame, c.timeBuf, display.TextStyle{Align: display.AlignCenter, Bold: true})
	c.dateLayer = surface.AddText(c.group, dateFrame, c.dateBuf, display.TextStyle{Align: display.AlignCenter})
	c.locationLayer = surface.AddText(c.group, locationFrame, values.Location, display.TextStyle{})
	c.conditionsLayer = surface.AddText(c.group, conditionsFrame, values.Conditions, display.TextStyle{})
	c.temperatureLayer = surface.AddText(c.group, temperatureFrame, values.Temperature, display.TextStyle{Align: display.AlignRight, Bold: true})

	c.weatherOf = ClassifyConditions(values.Conditions.String())
	c.weather = surface.AddBitmap(c.group, weatherFrame, weatherBitmap(c.weatherOf))

	c.battery = surface.AddBitmap(c.group, batteryFrame, batteryBitmap)
	c.batteryBar = surface.AddInverter(c.group, batteryBarFrame(status.BatteryPercent))

	btBitmap := btDisconnectedBitmap
	if status.Connected {
		btBitmap = btConnectedBitmap
	}
	c.bt = surface.AddBitmap(c.group, btFrame, btBitmap)

	return c
}

func batteryBarFrame(percent int) model.Rect {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	w := percent * batteryBarMax / 100
	return model.Rect{X: batteryFrame.X + 4, Y: batteryFrame.Y, W: w, H: batteryFrame.H}
}

// Spawn animates the card from its current location to the resting band.
func (c *Card) Spawn() {
	if c.destroyed {
		return
	}
	c.position = model.PositionResting
	c.surface.Animate(c.group, model.CardRestingRect, c.opts.Duration)
}

// Despawn animates the card out through the top of the screen.
func (c *Card) Despawn() {
	if c.destroyed {
		return
	}
	c.position = model.PositionDespawn
	c.surface.Animate(c.group, model.CardDespawnRect, c.opts.Duration)
}

// Destroy releases every layer and the owned buffers. The card must not be
// used afterwards; repeated calls do nothing.
func (c *Card) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.surface.Remove(c.group)

	c.group, c.background, c.battery, c.batteryBar, c.bt, c.weather = nil, nil, nil, nil, nil, nil
	c.timeLayer, c.dateLayer, c.locationLayer, c.conditionsLayer, c.temperatureLayer = nil, nil, nil, nil, nil
	c.timeBuf, c.dateBuf = nil, nil
}

// Position returns the logical placement last requested for the card.
func (c *Card) Position() model.Position { return c.position }

// Weather returns the condition the weather icon was chosen for.
func (c *Card) Weather() Condition { return c.weatherOf }

// Destroyed reports whether Destroy has been called.
func (c *Card) Destroyed() bool { return c.destroyed }

// TimeText returns the formatted time, empty once destroyed.
func (c *Card) TimeText() string { return c.timeBuf.String() }

// DateText returns the formatted date, empty once destroyed.
func (c *Card) DateText() string { return c.dateBuf.String() }

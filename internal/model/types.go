package model

import "time"

// Screen geometry of the watch display, in pixels.
const (
	ScreenWidth  = 144
	ScreenHeight = 168
)

// Rect is a screen rectangle in pixels. Y grows downwards.
type Rect struct {
	X, Y, W, H int
}

// Offset returns r translated by dx, dy.
func (r Rect) Offset(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Card rectangles: new cards enter from below, rest in the visible band
// and leave above.
var (
	CardSpawnRect   = Rect{X: 0, Y: 168, W: 144, H: 129}
	CardRestingRect = Rect{X: 0, Y: 29, W: 144, H: 129}
	CardDespawnRect = Rect{X: 0, Y: -100, W: 144, H: 129}
)

// Position is the logical placement of a card.
type Position int

const (
	PositionSpawn Position = iota
	PositionResting
	PositionDespawn
)

func (p Position) String() string {
	switch p {
	case PositionResting:
		return "resting"
	case PositionDespawn:
		return "despawn"
	default:
		return "spawn"
	}
}

// Status is the device state a card shows in its indicators.
type Status struct {
	BatteryPercent int
	Charging       bool
	Connected      bool
}

// SchedulerStats is a point-in-time view of the card scheduler.
type SchedulerStats struct {
	Transitioning bool      `json:"transitioning"`
	Transitions   int       `json:"transitions"`
	Retries       int       `json:"retries"`
	CardsBuilt    int       `json:"cards_built"`
	Position      string    `json:"position"`
	LastCardAt    time.Time `json:"last_card_at"`
}

// WatchState is the externally visible state of the watchface.
type WatchState struct {
	Values    Values         `json:"values"`
	Scheduler SchedulerStats `json:"scheduler"`
	Connected bool           `json:"connected"`
	Battery   int            `json:"battery"`
}

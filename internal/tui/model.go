// Package tui draws the running watch in the terminal and maps key presses
// to watch controls.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/cards/internal/display"
	"github.com/tinytelemetry/cards/internal/model"
)

// Screen is what the TUI draws on the watch face.
type Screen interface {
	Render() display.Raster
	Pulsing() bool
}

// Options tunes the TUI.
type Options struct {
	FrameInterval time.Duration
	StateInterval time.Duration
	Version       string
}

const defaultStateInterval = 250 * time.Millisecond

// WatchModel is the Bubble Tea model for the watch emulator.
type WatchModel struct {
	watch  model.Controller
	screen Screen
	keys   KeyMap
	help   help.Model

	frameInterval time.Duration
	stateInterval time.Duration
	version       string

	width  int
	height int

	raster   display.Raster
	pulsing  bool
	state    model.WatchState
	hasState bool
	status   string
	lastErr  string
	showHelp bool
	quitting bool
}

// NewWatchModel creates the model. screen is read on every frame; watch
// receives the key-driven controls.
func NewWatchModel(watch model.Controller, screen Screen, opts Options) *WatchModel {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = model.DefaultFrameInterval
	}
	if opts.StateInterval <= 0 {
		opts.StateInterval = defaultStateInterval
	}
	return &WatchModel{
		watch:         watch,
		screen:        screen,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		frameInterval: opts.FrameInterval,
		stateInterval: opts.StateInterval,
		version:       opts.Version,
		raster:        screen.Render(),
	}
}

// FrameMsg redraws the watch face.
type FrameMsg time.Time

// StateTickMsg triggers a state poll.
type StateTickMsg time.Time

type stateLoadedMsg struct {
	state model.WatchState
	err   error
}

type actionDoneMsg struct {
	what string
	err  error
}

func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.frameTick(), m.fetchState())
}

func (m *WatchModel) frameTick() tea.Cmd {
	return tea.Tick(m.frameInterval, func(t time.Time) tea.Msg { return FrameMsg(t) })
}

func (m *WatchModel) stateTick() tea.Cmd {
	return tea.Tick(m.stateInterval, func(t time.Time) tea.Msg { return StateTickMsg(t) })
}

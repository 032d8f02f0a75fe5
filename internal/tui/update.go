package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const controlTimeout = 2 * time.Second

// Update handles messages
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case FrameMsg:
		m.raster = m.screen.Render()
		m.pulsing = m.screen.Pulsing()
		return m, m.frameTick()

	case StateTickMsg:
		return m, m.fetchState()

	case stateLoadedMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		} else {
			m.state = msg.state
			m.hasState = true
		}
		return m, m.stateTick()

	case actionDoneMsg:
		if msg.err != nil {
			m.lastErr = msg.what + ": " + msg.err.Error()
			m.status = ""
		} else {
			m.lastErr = ""
			m.status = msg.what
		}
		return m, nil
	}
	return m, nil
}

func (m *WatchModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit), key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Next):
		return m, m.control("next card requested", m.watch.Next)

	case key.Matches(msg, m.keys.ToggleLink):
		connected := !m.state.Connected
		m.state.Connected = connected
		what := "phone link down"
		if connected {
			what = "phone link up"
		}
		return m, m.control(what, func(ctx context.Context) error {
			return m.watch.SetConnection(ctx, connected)
		})

	case key.Matches(msg, m.keys.Refresh):
		return m, m.control("weather requested", m.watch.Refresh)
	}
	return m, nil
}

func (m *WatchModel) control(what string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
		defer cancel()
		return actionDoneMsg{what: what, err: fn(ctx)}
	}
}

func (m *WatchModel) fetchState() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
		defer cancel()
		st, err := m.watch.State(ctx)
		return stateLoadedMsg{state: st, err: err}
	}
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/cards/internal/display"
)

// View renders the watch next to its status panel.
func (m *WatchModel) View() string {
	if m.quitting {
		return ""
	}

	watch := m.renderWatch()
	panel := m.renderPanel(lipgloss.Height(watch))
	body := lipgloss.JoinHorizontal(lipgloss.Top, watch, "  ", panel)
	footer := m.help.View(m.keys)

	view := lipgloss.JoinVertical(lipgloss.Left, body, footer)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, view)
	}
	return view
}

func (m *WatchModel) renderWatch() string {
	bezel := ColorBezel
	if m.pulsing {
		bezel = ColorBezelPulse
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(bezel).
		Padding(0, 1).
		Background(ColorScreen).
		Render(renderRaster(m.raster))
}

type cellStyle int

const (
	styleBlank cellStyle = iota
	styleInk
	styleInkBold
	stylePaper
	stylePaperBold
	styleAlert
)

func classify(c display.Cell) cellStyle {
	switch {
	case c.Alert:
		return styleAlert
	case c.Lit() && c.Bold:
		return stylePaperBold
	case c.Lit():
		return stylePaper
	case c.Ch != ' ' && c.Bold:
		return styleInkBold
	case c.Ch != ' ':
		return styleInk
	}
	return styleBlank
}

func (s cellStyle) style() lipgloss.Style {
	base := lipgloss.NewStyle()
	switch s {
	case styleInk:
		return base.Foreground(ColorInk).Background(ColorScreen)
	case styleInkBold:
		return base.Foreground(ColorInk).Background(ColorScreen).Bold(true)
	case stylePaper:
		return base.Foreground(ColorPaperInk).Background(ColorPaper)
	case stylePaperBold:
		return base.Foreground(ColorPaperInk).Background(ColorPaper).Bold(true)
	case styleAlert:
		return base.Foreground(ColorScreen).Background(ColorAlert).Bold(true)
	}
	return base.Background(ColorScreen)
}

// renderRaster styles runs of equally styled cells together.
func renderRaster(r display.Raster) string {
	lines := make([]string, len(r))
	for y, row := range r {
		var b strings.Builder
		var run strings.Builder
		current := styleBlank
		flush := func() {
			if run.Len() > 0 {
				b.WriteString(current.style().Render(run.String()))
				run.Reset()
			}
		}
		for _, c := range row {
			s := classify(c)
			if s != current {
				flush()
				current = s
			}
			ch := c.Ch
			if ch == 0 {
				ch = ' '
			}
			run.WriteRune(ch)
		}
		flush()
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

func (m *WatchModel) renderPanel(height int) string {
	title := lipgloss.NewStyle().Foreground(ColorBlue).Bold(true).Render("cards")
	if m.version != "" {
		title += lipgloss.NewStyle().Foreground(ColorGray).Render(" " + m.version)
	}

	label := lipgloss.NewStyle().Foreground(ColorGray).Width(12)
	row := func(k, v string) string { return label.Render(k) + v }

	st := m.state
	link := lipgloss.NewStyle().Foreground(ColorYellow).Render("disconnected")
	if st.Connected {
		link = lipgloss.NewStyle().Foreground(ColorGreen).Render("connected")
	}
	phase := "idle"
	if st.Scheduler.Transitioning {
		phase = "transitioning"
	}

	lines := []string{title, ""}
	if m.hasState {
		lines = append(lines,
			row("location", orDash(st.Values.Location)),
			row("conditions", orDash(st.Values.Conditions)),
			row("temp", orDash(st.Values.Temperature)),
			"",
			row("phone", link),
			row("battery", fmt.Sprintf("%d%%", st.Battery)),
			"",
			row("scheduler", phase),
			row("card", orDash(st.Scheduler.Position)),
			row("built", fmt.Sprintf("%d", st.Scheduler.CardsBuilt)),
			row("transitions", fmt.Sprintf("%d", st.Scheduler.Transitions)),
			row("retries", fmt.Sprintf("%d", st.Scheduler.Retries)),
		)
	} else {
		lines = append(lines, lipgloss.NewStyle().Foreground(ColorGray).Italic(true).Render("waiting for watch..."))
	}

	lines = append(lines, "")
	switch {
	case m.lastErr != "":
		lines = append(lines, lipgloss.NewStyle().Foreground(ColorAlert).Render(m.lastErr))
	case m.status != "":
		lines = append(lines, lipgloss.NewStyle().Foreground(ColorGray).Render(m.status))
	}

	return lipgloss.NewStyle().Height(height).Width(36).Render(strings.Join(lines, "\n"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

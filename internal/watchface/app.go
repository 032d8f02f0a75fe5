// Package watchface is the application context of the watch: it owns the
// last-known weather values, the card scheduler and the collaborators, and
// turns ticks, connectivity changes and phone messages into card requests.
package watchface

import (
	"log"
	"time"

	"github.com/tinytelemetry/cards/internal/card"
	"github.com/tinytelemetry/cards/internal/display"
	"github.com/tinytelemetry/cards/internal/model"
	"github.com/tinytelemetry/cards/internal/scheduler"
)

// Config tunes the watchface behaviour.
type Config struct {
	Scheduler scheduler.Config
	Card      card.Options

	// RefreshMinutes is the tick period, in minutes, of the outbound
	// weather refresh request.
	RefreshMinutes int
	AlertTimeout   time.Duration
}

func (c Config) withDefaults() Config {
	if c.RefreshMinutes <= 0 {
		c.RefreshMinutes = model.DefaultRefreshMinutes
	}
	if c.AlertTimeout <= 0 {
		c.AlertTimeout = model.DefaultAlertTimeout
	}
	if c.Card.Duration <= 0 {
		c.Card.Duration = c.Scheduler.TransitionDelay
	}
	return c
}

// Deps are the host services the watchface runs against.
type Deps struct {
	Surface display.Surface
	Timers  model.Timers
	Alerter model.Alerter
	Haptics model.Haptics
	Outbox  model.Outbox
	Battery model.BatteryReader
	Now     func() time.Time
}

// App is the watchface. Every method must be called from the watch loop.
type App struct {
	cfg  Config
	deps Deps

	values    *model.LastKnown
	sched     *scheduler.Scheduler
	connected bool
	started   bool
}

// New wires an App. Start must be called to show the first card.
func New(deps Deps, cfg Config) *App {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	a := &App{
		cfg:    cfg.withDefaults(),
		deps:   deps,
		values: model.NewLastKnown(),
	}
	a.sched = scheduler.New(deps.Timers, a.buildCard, a.cfg.Scheduler)
	return a
}

func (a *App) buildCard() scheduler.Card {
	return card.New(a.deps.Surface, a.values, a.status(), a.deps.Now(), a.cfg.Card)
}

func (a *App) status() model.Status {
	st := model.Status{BatteryPercent: 100, Connected: a.connected}
	if a.deps.Battery != nil {
		st.BatteryPercent = a.deps.Battery.BatteryPercent()
	}
	return st
}

// Start shows the first card.
func (a *App) Start() {
	if a.started {
		return
	}
	a.started = true
	a.sched.Start()
}

// Stop destroys the live card.
func (a *App) Stop() {
	if !a.started {
		return
	}
	a.started = false
	a.sched.Stop()
}

// RequestNext asks the scheduler for the next card.
func (a *App) RequestNext() {
	a.sched.RequestNext()
}

// HandleTick runs once per minute. Every RefreshMinutes it also asks the
// phone for fresh weather.
func (a *App) HandleTick(t time.Time) {
	a.sched.RequestNext()

	if t.Minute()%a.cfg.RefreshMinutes == 0 {
		a.send(model.RefreshRequest())
	}
}

// HandleConnection reacts to the phone link going up or down. The
// direction only changes the indicator on the next card.
func (a *App) HandleConnection(connected bool) {
	a.connected = connected
	if a.deps.Haptics != nil {
		a.deps.Haptics.LongPulse()
	}
	a.sched.RequestNext()
}

// HandleMessage applies one inbound dictionary, then always requests the
// next card, even when nothing changed.
func (a *App) HandleMessage(d model.Dictionary) {
	for _, t := range d {
		a.processTuple(t)
	}
	a.sched.RequestNext()
}

func (a *App) processTuple(t model.Tuple) {
	switch model.Classify(t.Key) {
	case model.KindLocation:
		a.values.Location.Set(t.Value.String())
		log.Printf("watchface: RECV: %s", a.values.Location)
	case model.KindConditions:
		a.values.Conditions.Set(t.Value.String())
		log.Printf("watchface: RECV: %s", a.values.Conditions)
	case model.KindTemperature:
		a.values.Temperature.Set(t.Value.String())
		log.Printf("watchface: RECV: %s", a.values.Temperature)
	case model.KindUpdateAvailable:
		if a.deps.Alerter != nil {
			a.deps.Alerter.ShowAlert(model.UpdateAlertTitle, model.UpdateAlertBody, a.cfg.AlertTimeout)
		}
	case model.KindIgnored:
	}
}

// Refresh asks the phone for fresh weather now.
func (a *App) Refresh() error {
	if a.deps.Outbox == nil {
		return nil
	}
	return a.deps.Outbox.Send(model.RefreshRequest())
}

func (a *App) send(d model.Dictionary) {
	if a.deps.Outbox == nil {
		return
	}
	if err := a.deps.Outbox.Send(d); err != nil {
		log.Printf("watchface: send failed: %v", err)
	}
}

// Values returns the last-known weather buffers.
func (a *App) Values() *model.LastKnown { return a.values }

// Connected reports the last observed link state.
func (a *App) Connected() bool { return a.connected }

// Snapshot returns a copy of the externally visible state.
func (a *App) Snapshot() model.WatchState {
	st := a.status()
	return model.WatchState{
		Values:    a.values.Snapshot(),
		Scheduler: a.sched.Stats(),
		Connected: st.Connected,
		Battery:   st.BatteryPercent,
	}
}

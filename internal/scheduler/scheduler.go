// Package scheduler serialises card transitions: at most one
// despawn-then-spawn sequence runs at a time, and triggers arriving
// mid-sequence retry after a backoff instead of being queued.
package scheduler

import (
	"log"
	"time"

	"github.com/tinytelemetry/cards/internal/model"
)

// Card is the lifecycle surface the scheduler drives.
type Card interface {
	Spawn()
	Despawn()
	Destroy()
	Position() model.Position
}

// Builder constructs the next card from the current last-known values.
type Builder func() Card

// Config holds the scheduler timings.
type Config struct {
	// TransitionDelay is the fixed time allowed for a despawn or spawn
	// animation to finish before the next step runs.
	TransitionDelay time.Duration
	// RetryBackoff is how long a trigger that arrives mid-transition waits
	// before trying again.
	RetryBackoff time.Duration
	// CoalesceRetries keeps at most one retry pending. By default every
	// rejected trigger arms its own retry.
	CoalesceRetries bool
}

func (c Config) withDefaults() Config {
	if c.TransitionDelay <= 0 {
		c.TransitionDelay = model.DefaultTransitionDelay
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = model.DefaultRetryBackoff
	}
	return c
}

// Scheduler owns the single live card. It is not safe for concurrent use:
// every method, and every timer callback, must run on the watch loop.
type Scheduler struct {
	cfg    Config
	timers model.Timers
	build  Builder
	now    func() time.Time

	current       Card
	transitioning bool
	retryPending  int

	transitions int
	retries     int
	cardsBuilt  int
	lastCardAt  time.Time
}

// New creates a scheduler. Start must be called before RequestNext.
func New(timers model.Timers, build Builder, cfg Config) *Scheduler {
	return &Scheduler{
		cfg:    cfg.withDefaults(),
		timers: timers,
		build:  build,
		now:    time.Now,
	}
}

// Start builds and spawns the first card. There is no previous card, so
// the despawn phase is skipped and the scheduler stays idle.
func (s *Scheduler) Start() {
	if s.current != nil {
		return
	}
	s.current = s.newCard()
	s.current.Spawn()
}

// Stop destroys the live card.
func (s *Scheduler) Stop() {
	if s.current == nil {
		return
	}
	s.current.Destroy()
	s.current = nil
}

// RequestNext asks for the next card. When idle it starts the transition
// immediately; otherwise it re-arms itself after the retry backoff.
func (s *Scheduler) RequestNext() {
	if s.transitioning || s.current == nil {
		s.scheduleRetry()
		return
	}

	// Set before touching the card so a trigger fired from inside Despawn
	// already sees the transition.
	s.transitioning = true
	s.transitions++
	s.current.Despawn()
	s.timers.AfterFunc(s.cfg.TransitionDelay, s.despawnComplete)
}

func (s *Scheduler) scheduleRetry() {
	if s.cfg.CoalesceRetries && s.retryPending > 0 {
		return
	}
	s.retryPending++
	s.retries++
	log.Printf("scheduler: transition in progress, retrying in %s", s.cfg.RetryBackoff)
	s.timers.AfterFunc(s.cfg.RetryBackoff, s.retry)
}

func (s *Scheduler) retry() {
	s.retryPending--
	s.RequestNext()
}

func (s *Scheduler) despawnComplete() {
	if s.current != nil {
		s.current.Destroy()
	}
	s.current = s.newCard()
	s.current.Spawn()
	s.timers.AfterFunc(s.cfg.TransitionDelay, s.spawnComplete)
}

func (s *Scheduler) spawnComplete() {
	s.transitioning = false
}

func (s *Scheduler) newCard() Card {
	c := s.build()
	s.cardsBuilt++
	s.lastCardAt = s.now()
	return c
}

// Transitioning reports whether a despawn/spawn sequence is in flight.
func (s *Scheduler) Transitioning() bool { return s.transitioning }

// Current returns the live card.
func (s *Scheduler) Current() Card { return s.current }

// Stats returns counters for status reporting.
func (s *Scheduler) Stats() model.SchedulerStats {
	st := model.SchedulerStats{
		Transitioning: s.transitioning,
		Transitions:   s.transitions,
		Retries:       s.retries,
		CardsBuilt:    s.cardsBuilt,
		LastCardAt:    s.lastCardAt,
	}
	if s.current != nil {
		st.Position = s.current.Position().String()
	}
	return st
}

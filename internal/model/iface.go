package model

import (
	"context"
	"time"
)

// Timers schedules one-shot callbacks. There is no cancel primitive: once
// armed, a callback always fires.
type Timers interface {
	AfterFunc(d time.Duration, fn func())
}

// Alerter shows a transient modal message.
type Alerter interface {
	ShowAlert(title, body string, timeout time.Duration)
}

// Haptics drives the vibration motor.
type Haptics interface {
	LongPulse()
}

// Outbox sends dictionaries to the paired phone.
type Outbox interface {
	Send(d Dictionary) error
}

// BatteryReader reports the charge level shown on each card.
type BatteryReader interface {
	BatteryPercent() int
}

// Controller drives a running watch from outside its event loop. Every
// call is serialised onto the loop.
type Controller interface {
	State(ctx context.Context) (WatchState, error)
	Next(ctx context.Context) error
	Deliver(ctx context.Context, d Dictionary) error
	SetConnection(ctx context.Context, connected bool) error
	Refresh(ctx context.Context) error
}

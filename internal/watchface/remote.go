package watchface

import (
	"context"

	"github.com/tinytelemetry/cards/internal/model"
)

// Runner executes fn on the watch loop and waits for it.
type Runner interface {
	Do(ctx context.Context, fn func()) error
}

// Remote serialises external requests onto the watch loop.
type Remote struct {
	loop Runner
	app  *App
}

var _ model.Controller = (*Remote)(nil)

// NewRemote returns a controller for app running on loop.
func NewRemote(loop Runner, app *App) *Remote {
	return &Remote{loop: loop, app: app}
}

func (r *Remote) State(ctx context.Context) (model.WatchState, error) {
	var st model.WatchState
	err := r.loop.Do(ctx, func() { st = r.app.Snapshot() })
	return st, err
}

func (r *Remote) Next(ctx context.Context) error {
	return r.loop.Do(ctx, r.app.RequestNext)
}

func (r *Remote) Deliver(ctx context.Context, d model.Dictionary) error {
	return r.loop.Do(ctx, func() { r.app.HandleMessage(d) })
}

func (r *Remote) SetConnection(ctx context.Context, connected bool) error {
	return r.loop.Do(ctx, func() { r.app.HandleConnection(connected) })
}

func (r *Remote) Refresh(ctx context.Context) error {
	var sendErr error
	if err := r.loop.Do(ctx, func() { sendErr = r.app.Refresh() }); err != nil {
		return err
	}
	return sendErr
}

// Package companion is the phone side of the watch link. It answers every
// watch message with fresh weather and announces new watchface releases.
package companion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tinytelemetry/cards/internal/model"
	"github.com/tinytelemetry/cards/internal/weather"
)

// DefaultRedialDelay is the wait between connection attempts.
const DefaultRedialDelay = 5 * time.Second

// LocationError is sent in place of the location when the position is unknown.
const LocationError = "ERR"

// ErrNoPosition is returned when no coordinates are configured.
var ErrNoPosition = errors.New("companion: position unknown")

// Link is an open connection to the watch.
type Link interface {
	Send(d model.Dictionary) error
	Messages() <-chan model.Dictionary
	Close() error
}

// DialFunc opens a Link.
type DialFunc func(ctx context.Context) (Link, error)

// WeatherSource returns current conditions.
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) (weather.Report, error)
}

// VersionSource reports whether a newer watchface is published.
type VersionSource interface {
	UpdateAvailable(ctx context.Context, current string) (bool, error)
}

// Position is a latitude/longitude pair.
type Position struct {
	Lat float64
	Lon float64
}

type Config struct {
	Position    *Position
	Version     string
	RedialDelay time.Duration
}

// Companion holds the last weather sent so unchanged reports are not resent.
type Companion struct {
	cfg      Config
	weather  WeatherSource
	versions VersionSource

	last    weather.Report
	hasLast bool
}

// New creates a companion. versions may be nil to skip the update check.
func New(cfg Config, w WeatherSource, versions VersionSource) *Companion {
	if cfg.RedialDelay <= 0 {
		cfg.RedialDelay = DefaultRedialDelay
	}
	return &Companion{cfg: cfg, weather: w, versions: versions}
}

// Serve handles one connection: weather and version check on connect,
// then weather after every watch message. It returns when the link drops
// or ctx is done.
func (c *Companion) Serve(ctx context.Context, link Link) error {
	if err := c.SendWeather(ctx, link); err != nil {
		log.Printf("companion: weather: %v", err)
	}
	if err := c.CheckVersion(ctx, link); err != nil {
		log.Printf("companion: version check: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-link.Messages():
			if !ok {
				return nil
			}
			log.Printf("companion: watch message with %d tuples", len(d))
			if err := c.SendWeather(ctx, link); err != nil {
				log.Printf("companion: weather: %v", err)
			}
		}
	}
}

// Run dials the watch and serves each connection until ctx is done.
func (c *Companion) Run(ctx context.Context, dial DialFunc) error {
	for {
		link, err := dial(ctx)
		if err != nil {
			log.Printf("companion: %v, retrying in %s", err, c.cfg.RedialDelay)
		} else {
			log.Printf("companion: connected to watch")
			err = c.Serve(ctx, link)
			link.Close()
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("companion: watch link closed, redialing in %s", c.cfg.RedialDelay)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(c.cfg.RedialDelay):
		}
	}
}

// SendWeather fetches the weather and sends it when any value changed
// since the last send. Without a position it sends LocationError.
func (c *Companion) SendWeather(ctx context.Context, link Link) error {
	if c.cfg.Position == nil {
		if err := link.Send(model.Dictionary{{Key: model.KeyLocation, Value: model.StringValue(LocationError)}}); err != nil {
			return fmt.Errorf("send location error: %w", err)
		}
		return ErrNoPosition
	}

	rep, err := c.weather.Current(ctx, c.cfg.Position.Lat, c.cfg.Position.Lon)
	if err != nil {
		return err
	}
	if c.hasLast && rep == c.last {
		return nil
	}

	d := model.Dictionary{
		{Key: model.KeyLocation, Value: model.StringValue(rep.Location)},
		{Key: model.KeyConditions, Value: model.StringValue(rep.Conditions)},
		{Key: model.KeyTemperature, Value: model.IntValue(int32(rep.Temperature))},
	}
	if err := link.Send(d); err != nil {
		return fmt.Errorf("send weather: %w", err)
	}
	c.last, c.hasLast = rep, true
	log.Printf("companion: sent %s, %s, %d", rep.Location, rep.Conditions, rep.Temperature)
	return nil
}

// CheckVersion sends the update notice when the published version differs.
func (c *Companion) CheckVersion(ctx context.Context, link Link) error {
	if c.versions == nil {
		return nil
	}
	update, err := c.versions.UpdateAvailable(ctx, c.cfg.Version)
	if err != nil || !update {
		return err
	}
	log.Printf("companion: new version available")
	return link.Send(model.Dictionary{{Key: model.KeyUpdateAvailable, Value: model.IntValue(0)}})
}

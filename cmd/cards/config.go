package main

import (
	"time"

	"github.com/tinytelemetry/cards/internal/appmsg"
	"github.com/tinytelemetry/cards/internal/device"
	"github.com/tinytelemetry/cards/internal/model"
	"github.com/tinytelemetry/cards/internal/msgsource"
)

const (
	defaultBindHost        = "127.0.0.1"
	defaultTCPPort         = 4100
	defaultAPIPort         = 3100
	defaultSkin            = model.DefaultSkin
	defaultFrameInterval   = model.DefaultFrameInterval
	defaultTransitionDelay = model.DefaultTransitionDelay
	defaultRetryBackoff    = model.DefaultRetryBackoff
	defaultRefreshMinutes  = model.DefaultRefreshMinutes
	defaultAlertTimeout    = model.DefaultAlertTimeout
	defaultDateLayout      = "Mon 02 Jan"
	defaultInboundBuffer   = appmsg.DefaultInboundBuffer
	defaultMuxBufferSize   = msgsource.DefaultMuxBuffer
	defaultPowerSupplyPath = device.DefaultPowerSupplyRoot
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	TUI              bool          `mapstructure:"tui"`
	Skin             string        `mapstructure:"skin"`
	FrameInterval    time.Duration `mapstructure:"frame-interval"`
	TransitionDelay  time.Duration `mapstructure:"transition-delay"`
	RetryBackoff     time.Duration `mapstructure:"retry-backoff"`
	CoalesceRetries  bool          `mapstructure:"coalesce-retries"`
	RefreshMinutes   int           `mapstructure:"refresh-minutes"`
	AlertTimeout     time.Duration `mapstructure:"alert-timeout"`
	Use24Hour        bool          `mapstructure:"use-24-hour"`
	DateLayout       string        `mapstructure:"date-layout"`
	TCPEnabled       bool          `mapstructure:"tcp-enabled"`
	TCPPort          int           `mapstructure:"tcp-port"`
	TCPAddr          string        `mapstructure:"tcp-addr"`
	InboundBuffer    int           `mapstructure:"inbound-buffer"`
	MuxBufferSize    int           `mapstructure:"mux-buffer-size"`
	APIEnabled       bool          `mapstructure:"api-enabled"`
	APIPort          int           `mapstructure:"api-port"`
	APIAddr          string        `mapstructure:"api-addr"`
	SocketPath       string        `mapstructure:"socket-path"`
	BluetoothEnabled bool          `mapstructure:"bluetooth-enabled"`
	PowerSupplyPath  string        `mapstructure:"power-supply-path"`
	ConfigPath       string        `mapstructure:"-"` // not from config file
	ConfigDir        string        `mapstructure:"-"`
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/cards/internal/appmsg"
	"github.com/tinytelemetry/cards/internal/companion"
	"github.com/tinytelemetry/cards/internal/weather"
)

const (
	defaultWatchAddr   = appmsg.DefaultTCPAddr
	defaultWeatherURL  = weather.DefaultBaseURL
	defaultRedialDelay = companion.DefaultRedialDelay
)

// companionConfig holds the phone-side settings.
type companionConfig struct {
	WatchAddr    string        `mapstructure:"watch-addr"`
	Latitude     float64       `mapstructure:"latitude"`
	Longitude    float64       `mapstructure:"longitude"`
	APIKey       string        `mapstructure:"api-key"`
	WeatherURL   string        `mapstructure:"weather-url"`
	VersionURL   string        `mapstructure:"version-url"`
	CheckVersion bool          `mapstructure:"check-version"`
	RedialDelay  time.Duration `mapstructure:"redial-delay"`
	HasPosition  bool          `mapstructure:"-"`
}

func loadCompanionConfig(configPath string) (companionConfig, error) {
	var cfg companionConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("CARDS_COMPANION")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("watch-addr", defaultWatchAddr)
	v.SetDefault("api-key", "")
	v.SetDefault("weather-url", defaultWeatherURL)
	v.SetDefault("version-url", "")
	v.SetDefault("check-version", true)
	v.SetDefault("redial-delay", defaultRedialDelay)
	// Position has no default: an unset position is reported to the watch.
	_ = v.BindEnv("latitude")
	_ = v.BindEnv("longitude")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "cards", "companion.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.HasPosition = v.IsSet("latitude") && v.IsSet("longitude")

	if cfg.HasPosition {
		if cfg.Latitude < -90 || cfg.Latitude > 90 {
			return cfg, fmt.Errorf("invalid latitude: %v", cfg.Latitude)
		}
		if cfg.Longitude < -180 || cfg.Longitude > 180 {
			return cfg, fmt.Errorf("invalid longitude: %v", cfg.Longitude)
		}
	}
	if cfg.RedialDelay <= 0 {
		return cfg, fmt.Errorf("invalid redial-delay: %s", cfg.RedialDelay)
	}
	if cfg.CheckVersion && cfg.VersionURL == "" {
		cfg.CheckVersion = false
	}

	return cfg, nil
}

func (c companionConfig) position() *companion.Position {
	if !c.HasPosition {
		return nil
	}
	return &companion.Position{Lat: c.Latitude, Lon: c.Longitude}
}

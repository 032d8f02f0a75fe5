// Command cards-companion plays the phone: it keeps a link to the watch
// open and answers with weather and release notices.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tinytelemetry/cards/internal/appmsg"
	"github.com/tinytelemetry/cards/internal/companion"
	"github.com/tinytelemetry/cards/internal/weather"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var watchAddr string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/cards/companion.yml)")
	flag.StringVar(&watchAddr, "watch", "", "override watch address")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Cards Companion - Phone Link\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCompanionConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if watchAddr != "" {
		cfg.WatchAddr = watchAddr
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg companionConfig) error {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !cfg.HasPosition {
		log.Printf("companion: no latitude/longitude configured, the watch will show %q", companion.LocationError)
	}

	var versions companion.VersionSource
	if cfg.CheckVersion {
		versions = weather.NewVersionChecker(cfg.VersionURL)
	}

	c := companion.New(companion.Config{
		Position:    cfg.position(),
		Version:     version,
		RedialDelay: cfg.RedialDelay,
	}, weather.NewClient(weather.Config{
		BaseURL: cfg.WeatherURL,
		APIKey:  cfg.APIKey,
	}), versions)

	log.Printf("companion: linking to watch at %s", cfg.WatchAddr)
	return c.Run(ctx, func(ctx context.Context) (companion.Link, error) {
		client, err := appmsg.Dial(ctx, cfg.WatchAddr)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
}

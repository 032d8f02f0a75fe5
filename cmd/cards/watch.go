package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/cards/internal/appmsg"
	"github.com/tinytelemetry/cards/internal/card"
	"github.com/tinytelemetry/cards/internal/device"
	"github.com/tinytelemetry/cards/internal/display"
	"github.com/tinytelemetry/cards/internal/httpserver"
	"github.com/tinytelemetry/cards/internal/loop"
	"github.com/tinytelemetry/cards/internal/msgsource"
	"github.com/tinytelemetry/cards/internal/scheduler"
	"github.com/tinytelemetry/cards/internal/socketrpc"
	"github.com/tinytelemetry/cards/internal/tui"
	"github.com/tinytelemetry/cards/internal/watchface"
)

// runWatch runs the watch loop with its transports, control surfaces and,
// when attached to a terminal, the watch face.
func runWatch(cfg appConfig) error {
	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lp := loop.New(loop.DefaultQueueSize)
	canvas := display.NewCanvas()
	hub := appmsg.NewHub(cfg.InboundBuffer)

	app := watchface.New(watchface.Deps{
		Surface: canvas,
		Timers:  lp,
		Alerter: canvas,
		Haptics: canvas,
		Outbox:  hub,
		Battery: &device.Battery{Root: cfg.PowerSupplyPath},
	}, watchface.Config{
		Scheduler: scheduler.Config{
			TransitionDelay: cfg.TransitionDelay,
			RetryBackoff:    cfg.RetryBackoff,
			CoalesceRetries: cfg.CoalesceRetries,
		},
		Card: card.Options{
			Use24Hour:  cfg.Use24Hour,
			DateLayout: cfg.DateLayout,
		},
		RefreshMinutes: cfg.RefreshMinutes,
		AlertTimeout:   cfg.AlertTimeout,
	})
	remote := watchface.NewRemote(lp, app)

	onLink := func(connected bool) {
		lp.Post(func() { app.HandleConnection(connected) })
	}
	hub.OnLinkChange(onLink)

	bluetoothState := "disabled"
	if cfg.BluetoothEnabled {
		monitor := device.NewLinkMonitor()
		if err := monitor.Start(onLink); err != nil {
			log.Printf("Warning: bluetooth monitor unavailable: %v", err)
			bluetoothState = "unavailable"
		} else {
			bluetoothState = "watching"
		}
	}

	if cfg.APIEnabled {
		apiServer := httpserver.NewServer(cfg.APIAddr, remote, hub)
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
	}

	sockServer := socketrpc.NewServer(cfg.SocketPath, remote)
	if err := sockServer.Start(); err != nil {
		log.Printf("Warning: failed to start socket server: %v", err)
	} else {
		defer sockServer.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		// Shutdown deadline starts now, not at boot.
		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		cleanupSocket(cfg.SocketPath)
		os.Exit(1)
	}()

	plugins := buildInputPlugins(InputPluginConfig{
		Hub:        hub,
		TCPEnabled: cfg.TCPEnabled,
		TCPAddr:    cfg.TCPAddr,
		WSEnabled:  cfg.APIEnabled,
	})

	sources := make([]msgsource.Source, 0, len(plugins))
	for _, plugin := range plugins {
		if !plugin.Enabled() {
			continue
		}
		src, err := plugin.Build(ctx)
		if err != nil {
			log.Printf("Error initializing input plugin %q: %v", plugin.Name(), err)
			continue
		}
		sources = append(sources, src)
	}

	mux := msgsource.NewMultiplexer(ctx, sources, cfg.MuxBufferSize)
	mux.Start()

	useTUI := cfg.TUI && isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
	if !useTUI {
		printStartupBanner(cfg, mux.Names(), bluetoothState)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return lp.Run(gctx)
	})

	lp.Post(app.Start)
	ticker := lp.EveryMinute(app.HandleTick)
	defer ticker.Stop()

	// Frames are decoded off the loop; only valid dictionaries are posted.
	g.Go(func() error {
		for env := range mux.Lines() {
			d, err := appmsg.Decode([]byte(env.Line))
			if err != nil {
				log.Printf("watch: dropping frame from %s: %v", env.Source, err)
				continue
			}
			lp.Post(func() { app.HandleMessage(d) })
		}
		return nil
	})

	if useTUI {
		if err := tui.InitializeSkin(cfg.Skin, cfg.ConfigDir); err != nil {
			log.Printf("Warning: failed to load skin %q: %v (using default)", cfg.Skin, err)
		}
		face := tui.NewWatchModel(remote, canvas, tui.Options{
			FrameInterval: cfg.FrameInterval,
			Version:       version,
		})
		g.Go(func() error {
			defer cancel()
			return tui.Run(gctx, face)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("watch: errgroup exited with error: %v", err)
	}

	cancel()
	mux.Stop()

	// The loop has exited; release the live card directly.
	app.Stop()

	signal.Stop(sigCh)
	return nil
}

func cleanupSocket(path string) {
	if path != "" {
		os.Remove(path)
	}
}

func configureRuntimeLogger() func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logDir := filepath.Join(home, ".local", "state", "cards")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logPath := filepath.Join(logDir, "cards.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}

func printStartupBanner(cfg appConfig, sources []string, bluetoothState string) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╔═╗╔═╗╦═╗╔╦╗╔═╗
    ║  ╠═╣╠╦╝ ║║╚═╗
    ╚═╝╩ ╩╩╚══╩╝╚═╝`)

	var lines []string
	lines = append(lines, "", logo, "    "+dim.Render("v"+version), "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator, "")

	lines = append(lines, bold.Render("    Phone"), "")
	if cfg.TCPEnabled {
		lines = append(lines, fmt.Sprintf("    %s  TCP Link       %s", check, cyan.Render(cfg.TCPAddr)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  TCP Link       %s", dot, dim.Render("disabled")))
	}
	if cfg.APIEnabled {
		lines = append(lines, fmt.Sprintf("    %s  WebSocket      %s", check, cyan.Render("ws://"+cfg.APIAddr+"/api/ws")))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  WebSocket      %s", dot, dim.Render("disabled")))
	}
	if bluetoothState == "watching" {
		lines = append(lines, fmt.Sprintf("    %s  Bluetooth      %s", check, dim.Render(bluetoothState)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Bluetooth      %s", dot, dim.Render(bluetoothState)))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Control"), "")
	if cfg.APIEnabled {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render(cfg.APIAddr)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", dot, dim.Render("disabled")))
	}
	lines = append(lines, fmt.Sprintf("    %s  Unix Socket    %s", check, cyan.Render(shortenPath(cfg.SocketPath))))
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Runtime"), "")
	if len(sources) > 0 {
		lines = append(lines, fmt.Sprintf("    %s  Inputs         %s", check, dim.Render(strings.Join(sources, ", "))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Inputs         %s", dot, dim.Render("none")))
	}
	lines = append(lines, fmt.Sprintf("    %s  Transitions    %s", check, dim.Render(fmt.Sprintf("%s, retry %s", cfg.TransitionDelay, cfg.RetryBackoff))))
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines, "", separator, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"), "")

	fmt.Println(strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tinytelemetry/cards/internal/appmsg"
	"github.com/tinytelemetry/cards/internal/msgsource"
)

// InputSourcePlugin is a small plugin primitive for wiring message inputs.
type InputSourcePlugin interface {
	Name() string
	Enabled() bool
	Build(ctx context.Context) (msgsource.Source, error)
}

// InputPluginConfig defines runtime input selection.
type InputPluginConfig struct {
	Hub        *appmsg.Hub
	TCPEnabled bool
	TCPAddr    string
	WSEnabled  bool
}

func buildInputPlugins(cfg InputPluginConfig) []InputSourcePlugin {
	plugins := make([]InputSourcePlugin, 0, 2)
	plugins = append(plugins, phoneInputPlugin{
		hub:  cfg.Hub,
		tcp:  cfg.TCPEnabled,
		addr: cfg.TCPAddr,
		ws:   cfg.WSEnabled,
	})
	plugins = append(plugins, stdinInputPlugin{})
	return plugins
}

// phoneInputPlugin feeds frames from every phone transport sharing the hub.
// The WebSocket transport is mounted on the HTTP API.
type phoneInputPlugin struct {
	hub  *appmsg.Hub
	tcp  bool
	addr string
	ws   bool
}

func (p phoneInputPlugin) Name() string { return "phone" }

func (p phoneInputPlugin) Enabled() bool { return p.hub != nil && (p.tcp || p.ws) }

func (p phoneInputPlugin) Build(_ context.Context) (msgsource.Source, error) {
	var transports []msgsource.Stopper
	if p.tcp {
		server := appmsg.NewServer(p.addr, p.hub)
		if err := server.Start(); err != nil {
			return nil, fmt.Errorf("start phone tcp server: %w", err)
		}
		transports = append(transports, server)
	}
	return msgsource.NewPhoneSource(p.hub, transports...), nil
}

type stdinInputPlugin struct{}

func (p stdinInputPlugin) Name() string { return "stdin" }

func (p stdinInputPlugin) Enabled() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

func (p stdinInputPlugin) Build(ctx context.Context) (msgsource.Source, error) {
	return msgsource.NewStdinSource(ctx), nil
}

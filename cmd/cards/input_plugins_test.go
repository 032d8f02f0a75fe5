package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tinytelemetry/cards/internal/appmsg"
)

func TestBuildInputPlugins_RegistersPhoneThenStdin(t *testing.T) {
	t.Parallel()

	plugins := buildInputPlugins(InputPluginConfig{
		Hub:        appmsg.NewHub(0),
		TCPEnabled: true,
		TCPAddr:    "127.0.0.1:4100",
	})

	if len(plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(plugins))
	}
	if plugins[0].Name() != "phone" {
		t.Fatalf("plugins[0] name = %q, want %q", plugins[0].Name(), "phone")
	}
	if plugins[1].Name() != "stdin" {
		t.Fatalf("plugins[1] name = %q, want %q", plugins[1].Name(), "stdin")
	}
	if !plugins[0].Enabled() {
		t.Fatal("expected phone plugin to be enabled when TCPEnabled=true")
	}
}

func TestBuildInputPlugins_PhoneEnablement(t *testing.T) {
	t.Parallel()

	hub := appmsg.NewHub(0)
	tests := []struct {
		name string
		cfg  InputPluginConfig
		want bool
	}{
		{name: "no transports", cfg: InputPluginConfig{Hub: hub}, want: false},
		{name: "websocket only", cfg: InputPluginConfig{Hub: hub, WSEnabled: true}, want: true},
		{name: "no hub", cfg: InputPluginConfig{TCPEnabled: true, WSEnabled: true}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildInputPlugins(tt.cfg)[0].Enabled(); got != tt.want {
				t.Fatalf("Enabled = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPhoneInputPlugin_BuildStartsTCPServer(t *testing.T) {
	t.Parallel()

	hub := appmsg.NewHub(4)
	plugin := buildInputPlugins(InputPluginConfig{
		Hub:        hub,
		TCPEnabled: true,
		TCPAddr:    "127.0.0.1:0",
	})[0]

	src, err := plugin.Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer src.Stop()

	if src.Name() != "phone" {
		t.Fatalf("source name = %q, want phone", src.Name())
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetCardsEnv(t)

	cfg, err := loadConfig(writeTempConfig(t, "skin: classic"))
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}

	if cfg.TCPAddr != "127.0.0.1:4100" {
		t.Fatalf("TCPAddr = %q", cfg.TCPAddr)
	}
	if cfg.APIAddr != "127.0.0.1:3100" {
		t.Fatalf("APIAddr = %q", cfg.APIAddr)
	}
	if cfg.TransitionDelay != 600*time.Millisecond {
		t.Fatalf("TransitionDelay = %s", cfg.TransitionDelay)
	}
	if cfg.RetryBackoff != 15*time.Second {
		t.Fatalf("RetryBackoff = %s", cfg.RetryBackoff)
	}
	if cfg.RefreshMinutes != 15 {
		t.Fatalf("RefreshMinutes = %d", cfg.RefreshMinutes)
	}
	if cfg.CoalesceRetries || cfg.BluetoothEnabled {
		t.Fatal("coalesce-retries and bluetooth-enabled should default to false")
	}
	if !cfg.TUI || !cfg.TCPEnabled || !cfg.APIEnabled {
		t.Fatal("tui, tcp and api should default to enabled")
	}
	if cfg.SocketPath == "" {
		t.Fatal("socket path should have a default")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	resetCardsEnv(t)

	tests := []struct {
		name         string
		configYAML   string
		env          map[string]string
		wantErr      bool
		errSubstring string
		assert       func(t *testing.T, cfg appConfig)
	}{
		{
			name: "ports derive addresses",
			configYAML: `
tcp-port: 4200
api-port: 3200
`,
			assert: func(t *testing.T, cfg appConfig) {
				t.Helper()
				if cfg.TCPAddr != "127.0.0.1:4200" || cfg.APIAddr != "127.0.0.1:3200" {
					t.Fatalf("addrs = %q %q", cfg.TCPAddr, cfg.APIAddr)
				}
			},
		},
		{
			name: "explicit addresses win",
			configYAML: `
tcp-port: 4200
tcp-addr: 0.0.0.0:9999
`,
			assert: func(t *testing.T, cfg appConfig) {
				t.Helper()
				if cfg.TCPAddr != "0.0.0.0:9999" {
					t.Fatalf("TCPAddr = %q", cfg.TCPAddr)
				}
			},
		},
		{
			name: "durations and retry policy",
			configYAML: `
transition-delay: 250ms
retry-backoff: 2s
coalesce-retries: true
`,
			assert: func(t *testing.T, cfg appConfig) {
				t.Helper()
				if cfg.TransitionDelay != 250*time.Millisecond || cfg.RetryBackoff != 2*time.Second {
					t.Fatalf("durations = %s %s", cfg.TransitionDelay, cfg.RetryBackoff)
				}
				if !cfg.CoalesceRetries {
					t.Fatal("coalesce-retries should be true")
				}
			},
		},
		{
			name:       "environment overrides file",
			configYAML: "skin: classic",
			env:        map[string]string{"CARDS_SKIN": "midnight", "CARDS_REFRESH_MINUTES": "30"},
			assert: func(t *testing.T, cfg appConfig) {
				t.Helper()
				if cfg.Skin != "midnight" {
					t.Fatalf("Skin = %q, want midnight", cfg.Skin)
				}
				if cfg.RefreshMinutes != 30 {
					t.Fatalf("RefreshMinutes = %d, want 30", cfg.RefreshMinutes)
				}
			},
		},
		{
			name:         "invalid tcp port rejected",
			configYAML:   "tcp-port: 70000",
			wantErr:      true,
			errSubstring: "invalid tcp-port",
		},
		{
			name:         "invalid refresh minutes rejected",
			configYAML:   "refresh-minutes: 0",
			wantErr:      true,
			errSubstring: "invalid refresh-minutes",
		},
		{
			name:         "invalid transition delay rejected",
			configYAML:   "transition-delay: 0s",
			wantErr:      true,
			errSubstring: "invalid transition-delay",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := loadConfig(writeTempConfig(t, tt.configYAML))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errSubstring != "" && !strings.Contains(err.Error(), tt.errSubstring) {
					t.Fatalf("error = %q, want substring %q", err.Error(), tt.errSubstring)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadConfig returned error: %v", err)
			}
			if tt.assert != nil {
				tt.assert(t, cfg)
			}
		})
	}
}

func TestShortenPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := shortenPath(filepath.Join(home, "cards.sock")); got != "~/cards.sock" {
		t.Fatalf("shortenPath = %q", got)
	}
	if strings.HasPrefix("/tmp", home) {
		return
	}
	if got := shortenPath("/tmp/cards.sock"); got != "/tmp/cards.sock" {
		t.Fatalf("shortenPath = %q", got)
	}
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func resetCardsEnv(t *testing.T) {
	t.Helper()

	original := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "CARDS_") {
			continue
		}
		original[key] = value
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}

	t.Cleanup(func() {
		for key, value := range original {
			if err := os.Setenv(key, value); err != nil {
				t.Fatalf("cleanup restore %s: %v", key, err)
			}
		}
	})
}

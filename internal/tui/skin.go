package tui

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/tinytelemetry/cards/internal/model"
)

//go:embed skins/*.yml
var builtinSkins embed.FS

// Skin is a colour scheme for the watch and the status panel. Values are
// lipgloss colours: ANSI indices ("12") or hex ("#ff8800").
type Skin struct {
	Name       string `yaml:"name"`
	Bezel      string `yaml:"bezel"`
	BezelPulse string `yaml:"bezel-pulse"`
	Screen     string `yaml:"screen"`
	Ink        string `yaml:"ink"`
	Paper      string `yaml:"paper"`
	PaperInk   string `yaml:"paper-ink"`
	Alert      string `yaml:"alert"`
	Accent     string `yaml:"accent"`
	Muted      string `yaml:"muted"`
	OK         string `yaml:"ok"`
	Warn       string `yaml:"warn"`
}

// Active skin colours.
var (
	ColorBezel      lipgloss.Color
	ColorBezelPulse lipgloss.Color
	ColorScreen     lipgloss.Color
	ColorInk        lipgloss.Color
	ColorPaper      lipgloss.Color
	ColorPaperInk   lipgloss.Color
	ColorAlert      lipgloss.Color
	ColorBlue       lipgloss.Color
	ColorGray       lipgloss.Color
	ColorGreen      lipgloss.Color
	ColorYellow     lipgloss.Color
)

func init() {
	s, err := builtinSkin(model.DefaultSkin)
	if err != nil {
		panic(err)
	}
	applySkin(s)
}

// ParseSkin decodes a YAML skin. Missing colours fall back to the default skin.
func ParseSkin(data []byte) (Skin, error) {
	s, err := builtinSkin(model.DefaultSkin)
	if err != nil {
		return Skin{}, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Skin{}, fmt.Errorf("parse skin: %w", err)
	}
	return s, nil
}

func builtinSkin(name string) (Skin, error) {
	data, err := builtinSkins.ReadFile("skins/" + name + ".yml")
	if err != nil {
		return Skin{}, fmt.Errorf("unknown skin %q", name)
	}
	var s Skin
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Skin{}, fmt.Errorf("parse skin %q: %w", name, err)
	}
	return s, nil
}

// BuiltinSkins lists the embedded skin names.
func BuiltinSkins() []string {
	entries, _ := builtinSkins.ReadDir("skins")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yml"))
	}
	sort.Strings(names)
	return names
}

// LoadSkin resolves name to a skin. A file at <configDir>/skins/<name>.yml
// overrides the built-in of the same name.
func LoadSkin(name, configDir string) (Skin, error) {
	if name == "" {
		name = model.DefaultSkin
	}
	if configDir != "" {
		data, err := os.ReadFile(filepath.Join(configDir, "skins", name+".yml"))
		switch {
		case err == nil:
			return ParseSkin(data)
		case !errors.Is(err, os.ErrNotExist):
			return Skin{}, err
		}
	}
	return builtinSkin(name)
}

// InitializeSkin loads and activates a skin. On error the active skin is
// left unchanged.
func InitializeSkin(name, configDir string) error {
	s, err := LoadSkin(name, configDir)
	if err != nil {
		return err
	}
	applySkin(s)
	return nil
}

func applySkin(s Skin) {
	ColorBezel = lipgloss.Color(s.Bezel)
	ColorBezelPulse = lipgloss.Color(s.BezelPulse)
	ColorScreen = lipgloss.Color(s.Screen)
	ColorInk = lipgloss.Color(s.Ink)
	ColorPaper = lipgloss.Color(s.Paper)
	ColorPaperInk = lipgloss.Color(s.PaperInk)
	ColorAlert = lipgloss.Color(s.Alert)
	ColorBlue = lipgloss.Color(s.Accent)
	ColorGray = lipgloss.Color(s.Muted)
	ColorGreen = lipgloss.Color(s.OK)
	ColorYellow = lipgloss.Color(s.Warn)
}

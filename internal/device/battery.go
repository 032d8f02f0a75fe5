// Package device reads host state that stands in for the watch hardware:
// battery level and Bluetooth link changes.
package device

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultPowerSupplyRoot is where Linux exposes batteries.
const DefaultPowerSupplyRoot = "/sys/class/power_supply"

// FullCharge is reported when no battery is present.
const FullCharge = 100

// Battery reports the host battery level through sysfs.
type Battery struct {
	Root string
}

// NewBattery returns a Battery reading DefaultPowerSupplyRoot.
func NewBattery() *Battery {
	return &Battery{Root: DefaultPowerSupplyRoot}
}

// BatteryPercent returns the first battery's capacity, clamped to 0..100.
// Hosts without a battery report FullCharge.
func (b *Battery) BatteryPercent() int {
	pct, _, ok := b.read()
	if !ok {
		return FullCharge
	}
	return pct
}

// Charging reports whether the first battery is charging.
func (b *Battery) Charging() bool {
	_, charging, _ := b.read()
	return charging
}

func (b *Battery) read() (pct int, charging bool, ok bool) {
	root := b.Root
	if root == "" {
		root = DefaultPowerSupplyRoot
	}
	matches, err := filepath.Glob(filepath.Join(root, "*", "capacity"))
	if err != nil {
		return 0, false, false
	}
	for _, path := range matches {
		dir := filepath.Dir(path)
		if kind, err := readTrimmed(filepath.Join(dir, "type")); err == nil && kind != "Battery" {
			continue
		}
		raw, err := readTrimmed(path)
		if err != nil {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		status, _ := readTrimmed(filepath.Join(dir, "status"))
		return min(max(n, 0), 100), status == "Charging", true
	}
	return 0, false, false
}

func readTrimmed(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

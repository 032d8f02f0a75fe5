package device

import (
	"fmt"
	"log"
	"sync"

	"tinygo.org/x/bluetooth"
)

// adapter is the part of *bluetooth.Adapter the monitor uses.
type adapter interface {
	Enable() error
	SetConnectHandler(func(device bluetooth.Device, connected bool))
}

// LinkMonitor turns Bluetooth device connections into phone link changes.
// The link is up while at least one device is connected.
type LinkMonitor struct {
	adapter adapter

	mu       sync.Mutex
	devices  map[string]struct{}
	onChange func(connected bool)
}

// NewLinkMonitor watches the default host adapter.
func NewLinkMonitor() *LinkMonitor {
	return newLinkMonitor(bluetooth.DefaultAdapter)
}

func newLinkMonitor(a adapter) *LinkMonitor {
	return &LinkMonitor{adapter: a, devices: make(map[string]struct{})}
}

// Start enables the adapter and reports link changes to onChange, which
// runs on the adapter's goroutine.
func (m *LinkMonitor) Start(onChange func(connected bool)) error {
	m.mu.Lock()
	m.onChange = onChange
	m.mu.Unlock()

	if err := m.adapter.Enable(); err != nil {
		return fmt.Errorf("enable bluetooth adapter: %w", err)
	}
	m.adapter.SetConnectHandler(m.handle)
	return nil
}

func (m *LinkMonitor) handle(device bluetooth.Device, connected bool) {
	addr := device.Address.String()

	m.mu.Lock()
	before := len(m.devices) > 0
	if connected {
		m.devices[addr] = struct{}{}
	} else {
		delete(m.devices, addr)
	}
	after := len(m.devices) > 0
	fn := m.onChange
	m.mu.Unlock()

	log.Printf("device: bluetooth %s connected=%v", addr, connected)
	if before != after && fn != nil {
		fn(after)
	}
}

// Connected reports whether any device is connected.
func (m *LinkMonitor) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.devices) > 0
}

package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-drummer/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of MIDI keyboards
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration

	match func(name string) bool
	ports func(ctx context.Context) ([]string, error)
	open  func(ctx context.Context, name string) (Controller, error)
}

// NewDeviceManager watches input ports whose name contains one of names
// (case-insensitive). No names means every input port.
func NewDeviceManager(names []string) *DeviceManager {
	dm := &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		match:       nameMatcher(names),
		ports:       inPortNames,
		open:        openKeyboard,
	}
	return dm
}

func nameMatcher(names []string) func(string) bool {
	return func(port string) bool {
		if len(names) == 0 {
			return true
		}
		port = strings.ToLower(port)
		for _, n := range names {
			if n != "" && strings.Contains(port, strings.ToLower(n)) {
				return true
			}
		}
		return false
	}
}

func inPortNames(ctx context.Context) ([]string, error) {
	ins, _, err := PortNames(ctx)
	return ins, err
}

func openKeyboard(ctx context.Context, name string) (Controller, error) {
	ins, _, err := ListPorts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range ins {
		if p.String() == name {
			return NewKeyboardController(name, p)
		}
	}
	return nil, ErrPortGone
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan(ctx)
		}
	}
}

func (dm *DeviceManager) scan(ctx context.Context) {
	names, err := dm.ports(ctx)
	if err != nil {
		// hung driver: skip this scan
		debug.LogEvery(30, "midi", "scan: %v", err)
		return
	}

	seenIDs := make(map[string]bool)
	for _, name := range names {
		if !dm.match(name) {
			continue
		}
		seenIDs[name] = true

		dm.mu.RLock()
		_, exists := dm.controllers[name]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		kb, err := dm.open(ctx, name)
		if err != nil {
			debug.Log("midi", "open %s: %v", name, err)
			continue
		}
		dm.mu.Lock()
		dm.controllers[name] = kb
		dm.mu.Unlock()
		debug.Log("midi", "keyboard connected: %s", name)
		dm.emit(DeviceEvent{Type: DeviceConnected, Controller: kb, ID: name})
	}

	// Check for disconnects
	dm.mu.Lock()
	var gone []string
	for id, c := range dm.controllers {
		if !seenIDs[id] {
			c.Close()
			delete(dm.controllers, id)
			gone = append(gone, id)
		}
	}
	dm.mu.Unlock()
	for _, id := range gone {
		debug.Log("midi", "keyboard disconnected: %s", id)
		dm.emit(DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

// emit drops events nobody is reading.
func (dm *DeviceManager) emit(e DeviceEvent) {
	select {
	case dm.events <- e:
	default:
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

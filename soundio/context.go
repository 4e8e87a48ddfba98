package soundio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Context is the root handle applications hold: it owns a connection to
// exactly one Backend, the current DevicesInfo snapshot, and the callbacks
// a caller registers to learn about device changes and backend failures.
// It is the Go analogue of struct SoundIo.
type Context struct {
	AppName string

	// SessionID uniquely tags this Context for log correlation across the
	// goroutines a backend spawns (watcher threads, stream callbacks).
	SessionID uuid.UUID

	// OnDevicesChange is invoked after FlushEvents publishes a new device
	// snapshot. OnBackendDisconnect is invoked from FlushEvents/WaitEvents
	// if the backend reported it can no longer continue (e.g. the sound
	// server process exited). The Context logs the failure and never panics;
	// it keeps the backend until the caller calls Disconnect. If
	// OnBackendDisconnect is nil, the failure is only logged.
	OnDevicesChange     func(*Context)
	OnBackendDisconnect func(*Context, error)

	logger *slog.Logger

	mu                sync.Mutex
	backend           Backend
	devices           atomic.Pointer[DevicesInfo]
	pendingDisconnect error
}

// NewContext creates an unconnected Context. appName is stored in AppName
// ("soundio" if empty); it is not passed to any backend.
func NewContext(appName string) *Context {
	if appName == "" {
		appName = "soundio"
	}
	id := uuid.New()
	return &Context{
		AppName:   appName,
		SessionID: id,
		logger:    slog.Default().With("component", "soundio.Context", "session", id),
	}
}

// Connect tries every registered backend in preference order (see
// backendPreferenceOrder) and stays connected to the first one that
// succeeds, matching soundio_connect's "try each, skip
// ErrorInitAudioBackend, propagate anything else" behavior; a backend that
// fails with ErrorBackendUnavailable is skipped as well.
func (c *Context) Connect() error {
	var lastErr error
	for _, id := range backendPreferenceOrder {
		err := c.ConnectBackend(id)
		if err == nil {
			return nil
		}
		lastErr = err
		if KindOf(err) != ErrorInitAudioBackend && KindOf(err) != ErrorBackendUnavailable {
			return err
		}
	}
	if lastErr == nil {
		return NewError(ErrorBackendUnavailable, fmt.Errorf("no backends registered"))
	}
	return lastErr
}

// ConnectBackend connects to a single named backend, bypassing the
// preference order Connect uses.
func (c *Context) ConnectBackend(id BackendID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.backend != nil {
		return NewError(ErrorInvalid, fmt.Errorf("context already connected to %s", c.backend.ID()))
	}

	factory, ok := backendFactories[id]
	if !ok {
		return NewError(ErrorBackendUnavailable, fmt.Errorf("backend %s not registered (blank-import its package)", id))
	}

	backend := factory()
	if err := backend.Connect(func() { c.handleDevicesChange() }, func(err error) { c.handleBackendDisconnect(err) }); err != nil {
		return NewError(ErrorInitAudioBackend, err)
	}

	c.backend = backend
	c.logger.Info("connected", "backend", id.String())
	return nil
}

// handleDevicesChange is the onDevicesChange hook passed to Backend.Connect.
// A backend's watcher thread calls it after publishing a new scan; it just
// flushes, which itself detects the new snapshot and fires OnDevicesChange
// exactly once per change.
func (c *Context) handleDevicesChange() {
	c.FlushEvents()
}

// handleBackendDisconnect is the onDisconnect hook passed to Backend.Connect.
// It only records err; OnBackendDisconnect itself is invoked from
// FlushEvents/WaitEvents, matching soundio_flush_events/soundio_wait_events
// delivering SoundIoErrorBackendDisconnected to the caller's thread instead
// of from whatever internal thread first noticed the failure.
func (c *Context) handleBackendDisconnect(err error) {
	c.mu.Lock()
	c.pendingDisconnect = err
	c.mu.Unlock()
	c.logger.Error("backend disconnected", "err", err)
}

// deliverPendingDisconnect fires OnBackendDisconnect exactly once for the
// most recently recorded disconnect, if any.
func (c *Context) deliverPendingDisconnect() {
	c.mu.Lock()
	err := c.pendingDisconnect
	c.pendingDisconnect = nil
	c.mu.Unlock()
	if err != nil && c.OnBackendDisconnect != nil {
		c.OnBackendDisconnect(c, err)
	}
}

// Disconnect releases the backend connection. Any open streams become
// invalid; the caller must destroy them first.
func (c *Context) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.backend == nil {
		return nil
	}
	err := c.backend.Disconnect()
	c.backend = nil
	c.devices.Store(nil)
	return err
}

// CurrentBackend returns the id of the backend the Context is connected to,
// or BackendNone if Connect has not succeeded.
func (c *Context) CurrentBackend() BackendID {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend == nil {
		return BackendNone
	}
	return c.backend.ID()
}

// FlushEvents publishes the most recently completed device scan, if any,
// making it visible to InputDevices/OutputDevices/DefaultInputDevice/
// DefaultOutputDevice.
func (c *Context) FlushEvents() {
	defer c.deliverPendingDisconnect()

	c.mu.Lock()
	backend := c.backend
	c.mu.Unlock()
	if backend == nil {
		return
	}
	backend.FlushEvents()
	info := backend.Devices()
	if info == nil {
		return
	}
	previous := c.devices.Swap(info)
	if previous != info && c.OnDevicesChange != nil {
		c.OnDevicesChange(c)
	}
}

// WaitEvents blocks the calling goroutine until FlushEvents has new
// information to publish or ctx is canceled. Applications typically run
// this in its own goroutine in a loop, the same role the library's
// dedicated "events thread" plays.
func (c *Context) WaitEvents(ctx context.Context) error {
	c.mu.Lock()
	backend := c.backend
	c.mu.Unlock()
	if backend == nil {
		return NewError(ErrorInvalid, fmt.Errorf("context not connected"))
	}
	err := backend.WaitEvents(ctx)
	if err == nil {
		c.FlushEvents()
	} else {
		c.deliverPendingDisconnect()
	}
	return err
}

// Wakeup causes a concurrent WaitEvents call to return immediately.
func (c *Context) Wakeup() {
	c.mu.Lock()
	backend := c.backend
	c.mu.Unlock()
	if backend != nil {
		backend.Wakeup()
	}
}

// ForceDeviceScan requests a fresh device enumeration regardless of whether
// the backend believes it needs one.
func (c *Context) ForceDeviceScan() {
	c.mu.Lock()
	backend := c.backend
	c.mu.Unlock()
	if backend != nil {
		backend.ForceDeviceScan()
	}
}

// Devices returns the most recent device snapshot, or nil if FlushEvents
// has not yet been called since Connect.
func (c *Context) Devices() *DevicesInfo {
	return c.devices.Load()
}

// InputDevices returns the input devices in the current snapshot.
func (c *Context) InputDevices() []*Device {
	if d := c.Devices(); d != nil {
		return d.InputDevices
	}
	return nil
}

// OutputDevices returns the output devices in the current snapshot.
func (c *Context) OutputDevices() []*Device {
	if d := c.Devices(); d != nil {
		return d.OutputDevices
	}
	return nil
}

// DefaultInputDevice returns the current snapshot's default input device,
// or nil.
func (c *Context) DefaultInputDevice() *Device {
	return c.Devices().DefaultInputDevice()
}

// DefaultOutputDevice returns the current snapshot's default output device,
// or nil.
func (c *Context) DefaultOutputDevice() *Device {
	return c.Devices().DefaultOutputDevice()
}

// GetInputDevice returns the i'th input device in the current snapshot
// with an added reference, or nil if i is out of range.
func (c *Context) GetInputDevice(i int) *Device {
	devices := c.InputDevices()
	if i < 0 || i >= len(devices) {
		return nil
	}
	return devices[i].Ref()
}

// GetOutputDevice returns the i'th output device in the current snapshot
// with an added reference, or nil if i is out of range.
func (c *Context) GetOutputDevice(i int) *Device {
	devices := c.OutputDevices()
	if i < 0 || i >= len(devices) {
		return nil
	}
	return devices[i].Ref()
}

// CreateOutstream allocates an unopened Outstream against device, taking a
// reference that Outstream.Destroy releases. The caller configures the
// remaining fields (Format, SampleRate, Layout, WriteCallback, ...) before
// calling Open.
func (c *Context) CreateOutstream(device *Device) *Outstream {
	return &Outstream{Device: device.Ref()}
}

// CreateInstream allocates an unopened Instream against device.
func (c *Context) CreateInstream(device *Device) *Instream {
	return &Instream{Device: device.Ref()}
}

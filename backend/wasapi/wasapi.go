//go:build windows

// Package wasapi plugs the Windows Audio Session API into soundio. Streaming
// (open/start/pause/begin-write/...) is delegated to rtaudiobridge exactly
// like every other hardware backend; this package adds on top of it the one
// thing rtaudiobridge's generic Connect/FlushEvents cannot provide on its
// own: a hot-plug watcher, implemented here as a WMI poll over COM via
// go-ole, using the same CoInitializeEx/oleutil.CreateObject/IDispatch
// idiom as any other COM automation client.
package wasapi

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/roundtable-audio/soundio/internal/rtaudio"
	"github.com/roundtable-audio/soundio/internal/rtaudiobridge"
	"github.com/roundtable-audio/soundio/soundio"
)

func init() {
	soundio.RegisterBackendFactory(soundio.BackendWasapi, New)
}

const pollInterval = 2 * time.Second

// wmiFailureThreshold is how many consecutive failed WMI polls are treated
// as the WMI service itself having gone away, rather than one transient
// query hiccup.
const wmiFailureThreshold = 3

// Backend wraps an rtaudiobridge.Bridge with a WMI-polling device watcher.
type Backend struct {
	inner soundio.Backend

	mu           sync.Mutex
	lastNames    []string
	stopWatch    chan struct{}
	watchDone    chan struct{}
	disconnectFn func(error)
}

// New constructs an unconnected WASAPI backend.
func New() soundio.Backend {
	return &Backend{inner: rtaudiobridge.New(soundio.BackendWasapi, rtaudio.APIWindowsWASAPI)}
}

func (b *Backend) ID() soundio.BackendID { return soundio.BackendWasapi }

func (b *Backend) Connect(onDevicesChange func(), onDisconnect func(error)) error {
	if err := b.inner.Connect(onDevicesChange, onDisconnect); err != nil {
		return err
	}
	b.mu.Lock()
	b.disconnectFn = onDisconnect
	names, err := soundDeviceNames()
	if err == nil {
		b.lastNames = names
	}
	b.stopWatch = make(chan struct{})
	b.watchDone = make(chan struct{})
	b.mu.Unlock()

	go b.watch()
	return nil
}

// watch polls Win32_SoundDevice over WMI (CLSID "WbemScripting.SWbemLocator"
// via IDispatch, driven entirely through oleutil.CreateObject/CallMethod)
// since WASAPI itself exposes hot-plug only through a vtable-only COM
// callback interface this package does not bind directly.
func (b *Backend) watch() {
	defer close(b.watchDone)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	consecutiveFailures := 0
	for {
		select {
		case <-b.stopWatch:
			return
		case <-ticker.C:
		}

		names, err := soundDeviceNames()
		if err != nil {
			consecutiveFailures++
			if consecutiveFailures >= wmiFailureThreshold {
				b.reportDisconnect(fmt.Errorf("WMI sound device poll failing: %w", err))
				return
			}
			continue
		}
		consecutiveFailures = 0

		b.mu.Lock()
		changed := !stringSlicesEqual(b.lastNames, names)
		b.lastNames = names
		b.mu.Unlock()

		// ForceDeviceScan rebuilds the rtaudio-backed snapshot and fires
		// onDevicesChange itself if the device list actually moved; the WMI
		// name set is only used as the trigger, never as the device list.
		if changed {
			b.inner.ForceDeviceScan()
		}
	}
}

// reportDisconnect invokes the registered onDisconnect callback at most
// once and stops treating this backend as watchable.
func (b *Backend) reportDisconnect(err error) {
	b.mu.Lock()
	fn := b.disconnectFn
	b.disconnectFn = nil
	b.mu.Unlock()
	if fn != nil {
		fn(soundio.NewError(soundio.ErrorBackendDisconnected, err))
	}
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// soundDeviceNames queries the sound device names Windows currently reports
// via WMI, used purely as a change signal (not as the device list itself,
// which still comes from RtAudio so format/channel/rate negotiation stays
// consistent with every other backend).
func soundDeviceNames() ([]string, error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		return nil, fmt.Errorf("wasapi: CoInitializeEx: %w", err)
	}
	defer ole.CoUninitialize()

	locatorObj, err := oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		return nil, fmt.Errorf("wasapi: create SWbemLocator: %w", err)
	}
	defer locatorObj.Release()

	locator, err := locatorObj.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, fmt.Errorf("wasapi: SWbemLocator IDispatch: %w", err)
	}
	defer locator.Release()

	serviceRaw, err := oleutil.CallMethod(locator, "ConnectServer")
	if err != nil {
		return nil, fmt.Errorf("wasapi: ConnectServer: %w", err)
	}
	service := serviceRaw.ToIDispatch()
	defer service.Release()

	resultRaw, err := oleutil.CallMethod(service, "ExecQuery", "SELECT Name FROM Win32_SoundDevice")
	if err != nil {
		return nil, fmt.Errorf("wasapi: ExecQuery: %w", err)
	}
	result := resultRaw.ToIDispatch()
	defer result.Release()

	countRaw, err := oleutil.GetProperty(result, "Count")
	if err != nil {
		return nil, fmt.Errorf("wasapi: Count: %w", err)
	}
	count := int(countRaw.Val)

	names := make([]string, 0, count)
	itemsRaw, err := oleutil.CallMethod(result, "ItemIndex", 0)
	_ = itemsRaw // probed once to fail fast if the collection cannot be indexed at all
	if err != nil && count > 0 {
		return nil, fmt.Errorf("wasapi: ItemIndex: %w", err)
	}
	for i := 0; i < count; i++ {
		itemRaw, err := oleutil.CallMethod(result, "ItemIndex", i)
		if err != nil {
			continue
		}
		item := itemRaw.ToIDispatch()
		nameRaw, err := oleutil.GetProperty(item, "Name")
		item.Release()
		if err != nil {
			continue
		}
		names = append(names, strings.TrimSpace(nameRaw.ToString()))
	}
	return names, nil
}

func (b *Backend) Disconnect() error {
	b.mu.Lock()
	stop := b.stopWatch
	b.mu.Unlock()
	if stop != nil {
		close(stop)
		<-b.watchDone
	}
	return b.inner.Disconnect()
}

func (b *Backend) FlushEvents()                         { b.inner.FlushEvents() }
func (b *Backend) WaitEvents(ctx context.Context) error { return b.inner.WaitEvents(ctx) }
func (b *Backend) Wakeup()                              { b.inner.Wakeup() }
func (b *Backend) ForceDeviceScan()                     { b.inner.ForceDeviceScan() }
func (b *Backend) Devices() *soundio.DevicesInfo        { return b.inner.Devices() }

func (b *Backend) OutstreamOpen(s *soundio.Outstream) error  { return b.inner.OutstreamOpen(s) }
func (b *Backend) OutstreamDestroy(s *soundio.Outstream)     { b.inner.OutstreamDestroy(s) }
func (b *Backend) OutstreamStart(s *soundio.Outstream) error { return b.inner.OutstreamStart(s) }
func (b *Backend) OutstreamPause(s *soundio.Outstream, pause bool) error {
	return b.inner.OutstreamPause(s, pause)
}
func (b *Backend) OutstreamClearBuffer(s *soundio.Outstream) error {
	return b.inner.OutstreamClearBuffer(s)
}
func (b *Backend) OutstreamGetLatency(s *soundio.Outstream) (float64, error) {
	return b.inner.OutstreamGetLatency(s)
}
func (b *Backend) OutstreamBeginWrite(s *soundio.Outstream, frameCount int) ([]soundio.ChannelArea, int, error) {
	return b.inner.OutstreamBeginWrite(s, frameCount)
}
func (b *Backend) OutstreamEndWrite(s *soundio.Outstream) error { return b.inner.OutstreamEndWrite(s) }

func (b *Backend) InstreamOpen(s *soundio.Instream) error  { return b.inner.InstreamOpen(s) }
func (b *Backend) InstreamDestroy(s *soundio.Instream)     { b.inner.InstreamDestroy(s) }
func (b *Backend) InstreamStart(s *soundio.Instream) error { return b.inner.InstreamStart(s) }
func (b *Backend) InstreamPause(s *soundio.Instream, pause bool) error {
	return b.inner.InstreamPause(s, pause)
}
func (b *Backend) InstreamGetLatency(s *soundio.Instream) (float64, error) {
	return b.inner.InstreamGetLatency(s)
}
func (b *Backend) InstreamBeginRead(s *soundio.Instream, frameCount int) ([]soundio.ChannelArea, int, error) {
	return b.inner.InstreamBeginRead(s, frameCount)
}
func (b *Backend) InstreamEndRead(s *soundio.Instream) error { return b.inner.InstreamEndRead(s) }

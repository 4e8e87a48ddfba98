// Package dummy is a pure-software Backend: it produces exactly one input
// and one output device, neither touching real hardware, and drives their
// streams with a goroutine that simulates consumption/production at the
// stream's sample rate. It is the library's reference implementation and
// test harness, the role backend_data.dummy plays in dummy.c.
package dummy

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roundtable-audio/soundio/internal/osutil"
	"github.com/roundtable-audio/soundio/internal/ringbuffer"
	"github.com/roundtable-audio/soundio/soundio"
)

func init() {
	soundio.RegisterBackendFactory(soundio.BackendDummy, New)
}

// Backend is the Dummy soundio.Backend implementation.
type Backend struct {
	mu      sync.Mutex
	devices *soundio.DevicesInfo
	wake    chan struct{}
}

// New constructs an unconnected Dummy backend.
func New() soundio.Backend {
	return &Backend{wake: make(chan struct{}, 1)}
}

func (b *Backend) ID() soundio.BackendID { return soundio.BackendDummy }

// Connect builds the one-time device snapshot. onDevicesChange and
// onDisconnect are unused: a dummy device list never changes after the
// first scan and there is no real sound server to lose contact with.
func (b *Backend) Connect(onDevicesChange func(), onDisconnect func(error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices = b.buildDevices()
	return nil
}

func (b *Backend) Disconnect() error { return nil }

func (b *Backend) buildDevices() *soundio.DevicesInfo {
	stereo := soundio.BuiltinChannelLayouts[1]
	formats := []soundio.Format{soundio.FormatFloat32NE, soundio.FormatS16NE}
	rates := []soundio.SampleRateRange{{Min: 8000, Max: 192000}}

	input := &soundio.Device{
		ID:                     "dummy-input",
		Name:                   "Dummy Input",
		Aim:                    soundio.AimInput,
		Layouts:                []soundio.ChannelLayout{stereo},
		CurrentLayout:          stereo,
		Formats:                formats,
		CurrentFormat:          soundio.FormatFloat32NE,
		SampleRates:            rates,
		SampleRateCurrent:      48000,
		SoftwareLatencyMin:     0.01,
		SoftwareLatencyMax:     2.0,
		SoftwareLatencyCurrent: 0.1,
		Backend:                soundio.BackendDummy,
	}
	output := &soundio.Device{
		ID:                     "dummy-output",
		Name:                   "Dummy Output",
		Aim:                    soundio.AimOutput,
		Layouts:                []soundio.ChannelLayout{stereo},
		CurrentLayout:          stereo,
		Formats:                formats,
		CurrentFormat:          soundio.FormatFloat32NE,
		SampleRates:            rates,
		SampleRateCurrent:      48000,
		SoftwareLatencyMin:     0.01,
		SoftwareLatencyMax:     2.0,
		SoftwareLatencyCurrent: 0.1,
		Backend:                soundio.BackendDummy,
	}
	input.AttachBackend(b)
	output.AttachBackend(b)

	return &soundio.DevicesInfo{
		InputDevices:       []*soundio.Device{input},
		OutputDevices:      []*soundio.Device{output},
		DefaultInputIndex:  0,
		DefaultOutputIndex: 0,
	}
}

// FlushEvents is a no-op: the dummy device snapshot built at Connect time
// never changes, matching flush_events_dummy's behavior after its first
// call (Context.FlushEvents handles detecting "first call" by comparing
// snapshot pointers).
func (b *Backend) FlushEvents() {}

func (b *Backend) WaitEvents(ctx context.Context) error {
	b.FlushEvents()
	select {
	case <-b.wake:
		return nil
	case <-ctx.Done():
		return soundio.NewError(soundio.ErrorInterrupted, ctx.Err())
	}
}

func (b *Backend) Wakeup() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// ForceDeviceScan is a no-op: dummy devices never change, matching
// force_device_scan_dummy.
func (b *Backend) ForceDeviceScan() {}

func (b *Backend) Devices() *soundio.DevicesInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.devices
}

// outstreamState is the Dummy-specific worker state attached to an
// Outstream via SetBackendData, mirroring struct SoundIoOutStreamDummy.
type outstreamState struct {
	ring           *ringbuffer.RingBuffer
	periodDuration time.Duration
	stopCh         chan struct{}
	pauseRequested atomic32
	reservedBytes  int
}

type instreamState struct {
	ring           *ringbuffer.RingBuffer
	periodDuration time.Duration
	stopCh         chan struct{}
	pauseRequested atomic32
	reservedBytes  int
}

// atomic32 is a tiny bool-ish flag; defined locally to avoid pulling in
// sync/atomic's verbose Bool type name at every call site in this file.
type atomic32 struct{ v atomic.Uint32 }

func (a *atomic32) Store(b bool) {
	if b {
		a.v.Store(1)
	} else {
		a.v.Store(0)
	}
}
func (a *atomic32) Load() bool { return a.v.Load() != 0 }

func clampDouble(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func (b *Backend) OutstreamOpen(s *soundio.Outstream) error {
	if s.SoftwareLatency == 0 {
		s.SoftwareLatency = clampDouble(1.0, s.Device.SoftwareLatencyMin, s.Device.SoftwareLatencyMax)
	}
	if s.Name == "" {
		s.Name = "SoundIoOutStream"
	}

	bufferSize := int(float64(s.BytesPerFrame) * float64(s.SampleRate) * s.SoftwareLatency)
	ring, err := ringbuffer.Create(bufferSize)
	if err != nil {
		return soundio.NewError(soundio.ErrorNoMem, err)
	}
	bufferFrameCount := ring.Capacity() / s.BytesPerFrame
	s.SoftwareLatency = float64(bufferFrameCount) / float64(s.SampleRate)

	st := &outstreamState{
		ring:           ring,
		periodDuration: time.Duration(s.SoftwareLatency * float64(time.Second) / 2),
		stopCh:         make(chan struct{}),
	}
	s.SetBackendData(st)
	return nil
}

func (b *Backend) OutstreamDestroy(s *soundio.Outstream) {
	st, _ := s.BackendData().(*outstreamState)
	if st == nil {
		return
	}
	close(st.stopCh)
	if st.ring != nil {
		st.ring.Close()
	}
}

func (b *Backend) OutstreamPause(s *soundio.Outstream, pause bool) error {
	st, ok := s.BackendData().(*outstreamState)
	if !ok {
		return soundio.NewError(soundio.ErrorInvalid, fmt.Errorf("stream not opened"))
	}
	st.pauseRequested.Store(pause)
	return nil
}

func (b *Backend) OutstreamClearBuffer(s *soundio.Outstream) error {
	st, ok := s.BackendData().(*outstreamState)
	if !ok {
		return soundio.NewError(soundio.ErrorInvalid, fmt.Errorf("stream not opened"))
	}
	st.ring.Clear()
	return nil
}

func (b *Backend) OutstreamGetLatency(s *soundio.Outstream) (float64, error) {
	st, ok := s.BackendData().(*outstreamState)
	if !ok {
		return 0, soundio.NewError(soundio.ErrorInvalid, fmt.Errorf("stream not opened"))
	}
	framesQueued := st.ring.FillCount() / s.BytesPerFrame
	return float64(framesQueued) / float64(s.SampleRate), nil
}

// OutstreamBeginWrite exposes the ring buffer's free region as one
// interleaved ChannelArea per channel; StepBytes is the frame size, so each
// area's FrameAt walks past the other channels' samples to reach the next
// frame of its own.
func (b *Backend) OutstreamBeginWrite(s *soundio.Outstream, frameCount int) ([]soundio.ChannelArea, int, error) {
	st, ok := s.BackendData().(*outstreamState)
	if !ok {
		return nil, 0, soundio.NewError(soundio.ErrorInvalid, fmt.Errorf("stream not opened"))
	}
	buf := st.ring.WritePtr()
	available := len(buf) / s.BytesPerFrame
	actual := frameCount
	if actual > available {
		actual = available
	}
	st.reservedBytes = actual * s.BytesPerFrame
	return channelAreas(buf[:st.reservedBytes], s.Layout.ChannelCount(), s.BytesPerSample), actual, nil
}

func (b *Backend) OutstreamEndWrite(s *soundio.Outstream) error {
	st, ok := s.BackendData().(*outstreamState)
	if !ok {
		return soundio.NewError(soundio.ErrorInvalid, fmt.Errorf("stream not opened"))
	}
	st.ring.AdvanceWritePtr(st.reservedBytes)
	st.reservedBytes = 0
	return nil
}

// channelAreas splits an interleaved byte buffer into one ChannelArea per
// channel, each pointing at the same backing array with its own starting
// offset.
func channelAreas(buf []byte, channelCount, bytesPerSample int) []soundio.ChannelArea {
	frameBytes := channelCount * bytesPerSample
	areas := make([]soundio.ChannelArea, channelCount)
	for ch := 0; ch < channelCount; ch++ {
		offset := ch * bytesPerSample
		areas[ch] = soundio.ChannelArea{
			Pointer:   buf[offset:],
			StepBytes: frameBytes,
		}
	}
	return areas
}

func (b *Backend) OutstreamStart(s *soundio.Outstream) error {
	st := s.BackendData().(*outstreamState)
	go runPlayback(s, st)
	return nil
}

// runPlayback simulates a playback device draining the ring buffer at
// SampleRate, ported from playback_thread_run in dummy.c: it wakes once
// per period, figures out how many frames elapsed time says should have
// been consumed, advances the read pointer by that many (clamped to what
// is actually available), and reports an underflow if demand outran
// supply.
func runPlayback(s *soundio.Outstream, st *outstreamState) {
	clock := osutil.NewMonotonicClock()
	startTime := clock.Seconds()
	framesConsumed := int64(0)

	freeFrames := st.ring.FreeCount() / s.BytesPerFrame
	if freeFrames > 0 && s.WriteCallback != nil {
		s.WriteCallback(s, 0, freeFrames)
	}

	ticker := time.NewTicker(st.periodDuration)
	defer ticker.Stop()

	for {
		select {
		case <-st.stopCh:
			return
		case <-ticker.C:
		}

		if st.pauseRequested.Load() {
			startTime = clock.Seconds()
			framesConsumed = 0
			continue
		}

		fillFrames := st.ring.FillCount() / s.BytesPerFrame
		freeFrames := st.ring.FreeCount() / s.BytesPerFrame

		totalTime := clock.Seconds() - startTime
		totalFrames := int64(totalTime * float64(s.SampleRate))
		framesToKill := totalFrames - framesConsumed
		readCount := minInt64(framesToKill, int64(fillFrames))
		st.ring.AdvanceReadPtr(int(readCount) * s.BytesPerFrame)
		framesConsumed += readCount

		if framesToKill > int64(fillFrames) {
			if s.UnderflowCallback != nil {
				s.UnderflowCallback(s)
			}
			freeFrames = st.ring.FreeCount() / s.BytesPerFrame
			if freeFrames > 0 && s.WriteCallback != nil {
				s.WriteCallback(s, 0, freeFrames)
			}
			framesConsumed = 0
			startTime = clock.Seconds()
		} else if freeFrames > 0 && s.WriteCallback != nil {
			s.WriteCallback(s, 0, freeFrames)
		}
	}
}

func (b *Backend) InstreamOpen(s *soundio.Instream) error {
	if s.SoftwareLatency == 0 {
		s.SoftwareLatency = clampDouble(1.0, s.Device.SoftwareLatencyMin, s.Device.SoftwareLatencyMax)
	}
	if s.Name == "" {
		s.Name = "SoundIoInStream"
	}

	bufferSize := int(float64(s.BytesPerFrame) * float64(s.SampleRate) * s.SoftwareLatency)
	ring, err := ringbuffer.Create(bufferSize)
	if err != nil {
		return soundio.NewError(soundio.ErrorNoMem, err)
	}
	bufferFrameCount := ring.Capacity() / s.BytesPerFrame
	s.SoftwareLatency = float64(bufferFrameCount) / float64(s.SampleRate)

	st := &instreamState{
		ring:           ring,
		periodDuration: time.Duration(s.SoftwareLatency * float64(time.Second) / 2),
		stopCh:         make(chan struct{}),
	}
	s.SetBackendData(st)
	return nil
}

func (b *Backend) InstreamDestroy(s *soundio.Instream) {
	st, _ := s.BackendData().(*instreamState)
	if st == nil {
		return
	}
	close(st.stopCh)
	if st.ring != nil {
		st.ring.Close()
	}
}

func (b *Backend) InstreamPause(s *soundio.Instream, pause bool) error {
	st, ok := s.BackendData().(*instreamState)
	if !ok {
		return soundio.NewError(soundio.ErrorInvalid, fmt.Errorf("stream not opened"))
	}
	st.pauseRequested.Store(pause)
	return nil
}

func (b *Backend) InstreamGetLatency(s *soundio.Instream) (float64, error) {
	st, ok := s.BackendData().(*instreamState)
	if !ok {
		return 0, soundio.NewError(soundio.ErrorInvalid, fmt.Errorf("stream not opened"))
	}
	framesQueued := st.ring.FillCount() / s.BytesPerFrame
	return float64(framesQueued) / float64(s.SampleRate), nil
}

// InstreamBeginRead exposes the ring buffer's filled region as one
// interleaved ChannelArea per channel, mirroring OutstreamBeginWrite.
func (b *Backend) InstreamBeginRead(s *soundio.Instream, frameCount int) ([]soundio.ChannelArea, int, error) {
	st, ok := s.BackendData().(*instreamState)
	if !ok {
		return nil, 0, soundio.NewError(soundio.ErrorInvalid, fmt.Errorf("stream not opened"))
	}
	buf := st.ring.ReadPtr()
	available := len(buf) / s.BytesPerFrame
	actual := frameCount
	if actual > available {
		actual = available
	}
	st.reservedBytes = actual * s.BytesPerFrame
	return channelAreas(buf[:st.reservedBytes], s.Layout.ChannelCount(), s.BytesPerSample), actual, nil
}

func (b *Backend) InstreamEndRead(s *soundio.Instream) error {
	st, ok := s.BackendData().(*instreamState)
	if !ok {
		return soundio.NewError(soundio.ErrorInvalid, fmt.Errorf("stream not opened"))
	}
	st.ring.AdvanceReadPtr(st.reservedBytes)
	st.reservedBytes = 0
	return nil
}

func (b *Backend) InstreamStart(s *soundio.Instream) error {
	st := s.BackendData().(*instreamState)
	go runCapture(s, st)
	return nil
}

// runCapture simulates a capture device filling the ring buffer at
// SampleRate, ported from capture_thread_run in dummy.c.
func runCapture(s *soundio.Instream, st *instreamState) {
	clock := osutil.NewMonotonicClock()
	startTime := clock.Seconds()
	framesConsumed := int64(0)

	ticker := time.NewTicker(st.periodDuration)
	defer ticker.Stop()

	for {
		select {
		case <-st.stopCh:
			return
		case <-ticker.C:
		}

		if st.pauseRequested.Load() {
			startTime = clock.Seconds()
			framesConsumed = 0
			continue
		}

		fillFrames := st.ring.FillCount() / s.BytesPerFrame
		freeFrames := st.ring.FreeCount() / s.BytesPerFrame

		totalTime := clock.Seconds() - startTime
		totalFrames := int64(totalTime * float64(s.SampleRate))
		framesToKill := totalFrames - framesConsumed
		writeCount := minInt64(framesToKill, int64(freeFrames))
		st.ring.AdvanceWritePtr(int(writeCount) * s.BytesPerFrame)
		framesConsumed += writeCount

		if framesToKill > int64(freeFrames) {
			if s.OverflowCallback != nil {
				s.OverflowCallback(s)
			}
			framesConsumed = 0
			startTime = clock.Seconds()
		}

		fillFrames = st.ring.FillCount() / s.BytesPerFrame
		if fillFrames > 0 && s.ReadCallback != nil {
			s.ReadCallback(s, 0, fillFrames)
		}
	}
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Package rtaudiobridge adapts the vendored cgo RtAudio wrapper
// (internal/rtaudio) to the soundio.Backend interface. Every hardware
// backend package (alsa, pulseaudio, jack, coreaudio, wasapi) is a thin,
// platform-tagged wrapper that picks a different rtaudio.API and
// soundio.BackendID and otherwise shares this one implementation, the same
// way RtAudio itself picks an API enum but exposes one C ABI regardless of
// which native sound system backs it.
package rtaudiobridge

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unsafe"

	"github.com/roundtable-audio/soundio/internal/rtaudio"
	"github.com/roundtable-audio/soundio/soundio"
)

// rescanInterval is how often a connected Bridge re-enumerates devices to
// detect hot-plug changes. RtAudio's C ABI exposes no push-based
// device-change callback for ALSA/PulseAudio/JACK/CoreAudio, so this bridge
// falls back to periodic re-enumeration, the same strategy backend/wasapi
// uses for WMI.
const rescanInterval = 2 * time.Second

// disconnectThreshold is how many consecutive failed rescans are treated as
// the sound server having gone away (ALSA device node removed, PulseAudio
// or JACK daemon exited) rather than one transient enumeration failure.
const disconnectThreshold = 3

// Bridge is a soundio.Backend backed by one rtaudio.API.
type Bridge struct {
	id  soundio.BackendID
	api rtaudio.API

	mu           sync.Mutex
	devices      *soundio.DevicesInfo
	wake         chan struct{}
	stopWatch    chan struct{}
	watchDone    chan struct{}
	onChange     func()
	onDisconnect func(error)
}

// New constructs an unconnected Bridge for the given backend identity and
// RtAudio API selector.
func New(id soundio.BackendID, api rtaudio.API) soundio.Backend {
	return &Bridge{id: id, api: api, wake: make(chan struct{}, 1)}
}

func (b *Bridge) ID() soundio.BackendID { return b.id }

// Connect performs the first device scan and starts a background watcher
// that periodically repeats it so later hot-plug changes are picked up.
func (b *Bridge) Connect(onDevicesChange func(), onDisconnect func(error)) error {
	if err := b.scan(); err != nil {
		return soundio.NewError(soundio.ErrorInitAudioBackend, err)
	}

	b.mu.Lock()
	b.onChange = onDevicesChange
	b.onDisconnect = onDisconnect
	b.stopWatch = make(chan struct{})
	b.watchDone = make(chan struct{})
	b.mu.Unlock()

	go b.watch()
	return nil
}

// scan opens a throwaway RtAudio controller purely to enumerate devices;
// each stream later opens its own controller scoped to its own lifetime,
// matching how a SoundIoOutStream owns its own backend handle independent
// of the device-scan connection.
func (b *Bridge) scan() error {
	ra, err := rtaudio.Create(b.api)
	if err != nil {
		return err
	}
	defer ra.Destroy()

	infos, err := ra.Devices()
	if err != nil {
		return err
	}

	devices := b.buildDevices(infos)
	unchanged := b.snapshotKey() == (&Bridge{devices: devices}).snapshotKey()

	b.mu.Lock()
	// An unchanged device-id set keeps the published snapshot pointer, so
	// Context.FlushEvents does not report a change that did not happen.
	if b.devices == nil || !unchanged {
		b.devices = devices
	}
	b.mu.Unlock()
	return nil
}

// watch re-enumerates devices on a fixed interval, firing onChange whenever
// the set of device ids differs from the previous scan. A run of scan
// failures past disconnectThreshold is reported once via onDisconnect and
// ends the watcher, mirroring how a real backend would tear down its
// connection after losing contact with the sound server.
func (b *Bridge) watch() {
	defer close(b.watchDone)
	ticker := time.NewTicker(rescanInterval)
	defer ticker.Stop()

	consecutiveFailures := 0
	for {
		select {
		case <-b.stopWatch:
			return
		case <-ticker.C:
		}

		before := b.snapshotKey()
		if err := b.scan(); err != nil {
			consecutiveFailures++
			if consecutiveFailures >= disconnectThreshold {
				b.reportDisconnect(fmt.Errorf("device rescan failing: %w", err))
				b.Wakeup()
				return
			}
			continue
		}
		consecutiveFailures = 0

		b.mu.Lock()
		onChange := b.onChange
		b.mu.Unlock()
		if before != b.snapshotKey() {
			if onChange != nil {
				onChange()
			}
			b.Wakeup()
		}
	}
}

// snapshotKey is a cheap, order-sensitive fingerprint of the current device
// snapshot used only to decide whether anything changed between two scans.
func (b *Bridge) snapshotKey() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.devices == nil {
		return ""
	}
	var sb strings.Builder
	for _, d := range b.devices.InputDevices {
		sb.WriteString("in:")
		sb.WriteString(d.ID)
		sb.WriteByte(';')
	}
	for _, d := range b.devices.OutputDevices {
		sb.WriteString("out:")
		sb.WriteString(d.ID)
		sb.WriteByte(';')
	}
	return sb.String()
}

// reportDisconnect invokes onDisconnect at most once.
func (b *Bridge) reportDisconnect(err error) {
	b.mu.Lock()
	fn := b.onDisconnect
	b.onDisconnect = nil
	b.mu.Unlock()
	if fn != nil {
		fn(soundio.NewError(soundio.ErrorBackendDisconnected, err))
	}
}

func (b *Bridge) Disconnect() error {
	b.mu.Lock()
	stop := b.stopWatch
	b.mu.Unlock()
	if stop != nil {
		close(stop)
		<-b.watchDone
	}
	return nil
}

// supportedFormats lists the soundio.Format values this bridge can map to
// and from an rtaudio.Format; RtAudio has no 24-bit-in-32-bit or unsigned
// sample type, so those are left out of every device's catalog.
func supportedFormats() []soundio.Format {
	return []soundio.Format{
		soundio.FormatS16NE,
		soundio.FormatS32NE,
		soundio.FormatFloat32NE,
		soundio.FormatFloat64NE,
	}
}

func (b *Bridge) buildDevices(infos []rtaudio.DeviceInfo) *soundio.DevicesInfo {
	var inputs, outputs []*soundio.Device
	defaultIn, defaultOut := -1, -1
	mono := soundio.BuiltinChannelLayouts[0]
	stereo := soundio.BuiltinChannelLayouts[1]

	for _, info := range infos {
		rates := make([]soundio.SampleRateRange, 0, len(info.SampleRates))
		for _, r := range info.SampleRates {
			rates = append(rates, soundio.SampleRateRange{Min: r, Max: r})
		}
		if len(rates) == 0 && info.PreferredSampleRate > 0 {
			rates = append(rates, soundio.SampleRateRange{
				Min: int(info.PreferredSampleRate),
				Max: int(info.PreferredSampleRate),
			})
		}

		if info.NumInputChannels > 0 {
			layout := mono
			if info.NumInputChannels >= 2 {
				layout = stereo
			}
			d := newDevice(info, soundio.AimInput, layout, rates, b.id)
			d.AttachBackend(b)
			if info.IsDefaultInput {
				defaultIn = len(inputs)
			}
			inputs = append(inputs, d)
		}
		if info.NumOutputChannels > 0 {
			layout := mono
			if info.NumOutputChannels >= 2 {
				layout = stereo
			}
			d := newDevice(info, soundio.AimOutput, layout, rates, b.id)
			d.AttachBackend(b)
			if info.IsDefaultOutput {
				defaultOut = len(outputs)
			}
			outputs = append(outputs, d)
		}
	}

	return &soundio.DevicesInfo{
		InputDevices:       inputs,
		OutputDevices:      outputs,
		DefaultInputIndex:  defaultIn,
		DefaultOutputIndex: defaultOut,
	}
}

func newDevice(info rtaudio.DeviceInfo, aim soundio.Aim, layout soundio.ChannelLayout, rates []soundio.SampleRateRange, backendID soundio.BackendID) *soundio.Device {
	return &soundio.Device{
		ID:                     strconv.FormatUint(uint64(info.ID), 10),
		Name:                   info.Name,
		Aim:                    aim,
		Layouts:                []soundio.ChannelLayout{layout},
		CurrentLayout:          layout,
		Formats:                supportedFormats(),
		CurrentFormat:          soundio.FormatS16NE,
		SampleRates:            rates,
		SampleRateCurrent:      int(info.PreferredSampleRate),
		SoftwareLatencyMin:     0.01,
		SoftwareLatencyMax:     1.0,
		SoftwareLatencyCurrent: 0.05,
		Backend:                backendID,
	}
}

// FlushEvents is a no-op beyond what Devices already returns: the watch
// goroutine keeps the published snapshot current on its own schedule, so
// there is nothing extra to publish synchronously here.
func (b *Bridge) FlushEvents() {}

func (b *Bridge) WaitEvents(ctx context.Context) error {
	select {
	case <-b.wake:
		return nil
	case <-ctx.Done():
		return soundio.NewError(soundio.ErrorInterrupted, ctx.Err())
	}
}

func (b *Bridge) Wakeup() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// ForceDeviceScan runs one rescan synchronously instead of waiting for the
// next tick, firing onChange immediately if the device set moved.
func (b *Bridge) ForceDeviceScan() {
	before := b.snapshotKey()
	if err := b.scan(); err != nil {
		return
	}
	b.mu.Lock()
	onChange := b.onChange
	b.mu.Unlock()
	if onChange != nil && before != b.snapshotKey() {
		onChange()
	}
}

func (b *Bridge) Devices() *soundio.DevicesInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.devices
}

// rtFormat maps a soundio.Format to the rtaudio.Format it corresponds to,
// or false if RtAudio has no matching native sample type.
func rtFormat(f soundio.Format) (rtaudio.Format, bool) {
	switch f {
	case soundio.FormatS16NE:
		return rtaudio.FormatInt16, true
	case soundio.FormatS32NE:
		return rtaudio.FormatInt32, true
	case soundio.FormatFloat32NE:
		return rtaudio.FormatFloat32, true
	case soundio.FormatFloat64NE:
		return rtaudio.FormatFloat64, true
	default:
		return 0, false
	}
}

// rawBytes reinterprets whichever typed slice matches format as a []byte of
// the same underlying memory, so channelAreas can hand out raw byte
// ChannelAreas regardless of the native sample type RtAudio is using.
func rawBytes(buf rtaudio.Buffer, format soundio.Format) []byte {
	switch format {
	case soundio.FormatS16NE:
		s := buf.Int16()
		if len(s) == 0 {
			return nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*2)
	case soundio.FormatS32NE:
		s := buf.Int32()
		if len(s) == 0 {
			return nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	case soundio.FormatFloat32NE:
		s := buf.Float32()
		if len(s) == 0 {
			return nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	case soundio.FormatFloat64NE:
		s := buf.Float64()
		if len(s) == 0 {
			return nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	default:
		return nil
	}
}

func channelAreas(buf []byte, channelCount, bytesPerSample int) []soundio.ChannelArea {
	frameBytes := channelCount * bytesPerSample
	areas := make([]soundio.ChannelArea, channelCount)
	for ch := 0; ch < channelCount; ch++ {
		offset := ch * bytesPerSample
		areas[ch] = soundio.ChannelArea{Pointer: buf[offset:], StepBytes: frameBytes}
	}
	return areas
}

func parseDeviceID(device *soundio.Device) (uint, error) {
	id, err := strconv.ParseUint(device.ID, 10, 32)
	if err != nil {
		return 0, soundio.NewError(soundio.ErrorNoSuchDevice, fmt.Errorf("device id %q: %w", device.ID, err))
	}
	return uint(id), nil
}

// outstreamState is the native handle and in-flight-callback bookkeeping a
// Bridge attaches to an Outstream via SetBackendData.
type outstreamState struct {
	audio      rtaudio.RtAudio
	format     soundio.Format
	currentBuf []byte // valid only for the duration of the active rtaudio callback
}

func (b *Bridge) OutstreamOpen(s *soundio.Outstream) error {
	rtFmt, ok := rtFormat(s.Format)
	if !ok {
		return soundio.NewError(soundio.ErrorIncompatibleDevice, fmt.Errorf("format %s has no RtAudio equivalent", s.Format))
	}
	deviceID, err := parseDeviceID(s.Device)
	if err != nil {
		return err
	}

	audio, err := rtaudio.Create(b.api)
	if err != nil {
		return soundio.NewError(soundio.ErrorInitAudioBackend, err)
	}

	st := &outstreamState{audio: audio, format: s.Format}
	s.SetBackendData(st)

	params := &rtaudio.StreamParams{
		DeviceID:     deviceID,
		NumChannels:  uint(s.Layout.ChannelCount()),
		FirstChannel: 0,
	}
	frames := uint(int(s.SoftwareLatency*float64(s.SampleRate)) / 2)
	if frames == 0 {
		frames = 256
	}

	cb := func(out, in rtaudio.Buffer, dur time.Duration, status rtaudio.StreamStatus) int {
		st.currentBuf = rawBytes(out, st.format)
		if status&rtaudio.StatusOutputUnderflow != 0 && s.UnderflowCallback != nil {
			s.UnderflowCallback(s)
		}
		if s.WriteCallback != nil {
			n := out.Len()
			s.WriteCallback(s, n, n)
		}
		st.currentBuf = nil
		return 0
	}

	opts := &rtaudio.StreamOptions{Flags: rtaudio.FlagsMinimizeLatency}
	if err := audio.Open(params, nil, rtFmt, uint(s.SampleRate), frames, cb, opts); err != nil {
		audio.Destroy()
		return soundio.NewError(soundio.ErrorOpeningDevice, err)
	}
	return nil
}

func (b *Bridge) OutstreamDestroy(s *soundio.Outstream) {
	st, ok := s.BackendData().(*outstreamState)
	if !ok {
		return
	}
	if st.audio.IsRunning() {
		st.audio.Stop()
	}
	if st.audio.IsOpen() {
		st.audio.Close()
	}
	st.audio.Destroy()
}

func (b *Bridge) OutstreamStart(s *soundio.Outstream) error {
	st := s.BackendData().(*outstreamState)
	if err := st.audio.Start(); err != nil {
		return soundio.NewError(soundio.ErrorStreaming, err)
	}
	return nil
}

func (b *Bridge) OutstreamPause(s *soundio.Outstream, pause bool) error {
	st, ok := s.BackendData().(*outstreamState)
	if !ok {
		return soundio.NewError(soundio.ErrorInvalid, fmt.Errorf("stream not opened"))
	}
	if pause {
		if err := st.audio.Stop(); err != nil {
			return soundio.NewError(soundio.ErrorStreaming, err)
		}
		return nil
	}
	if err := st.audio.Start(); err != nil {
		return soundio.NewError(soundio.ErrorStreaming, err)
	}
	return nil
}

func (b *Bridge) OutstreamClearBuffer(s *soundio.Outstream) error {
	return soundio.NewError(soundio.ErrorIncompatibleBackend, fmt.Errorf("RtAudio has no buffer-clear primitive"))
}

func (b *Bridge) OutstreamGetLatency(s *soundio.Outstream) (float64, error) {
	st, ok := s.BackendData().(*outstreamState)
	if !ok {
		return 0, soundio.NewError(soundio.ErrorInvalid, fmt.Errorf("stream not opened"))
	}
	frames, err := st.audio.Latency()
	if err != nil {
		return 0, soundio.NewError(soundio.ErrorStreaming, err)
	}
	return float64(frames) / float64(s.SampleRate), nil
}

// OutstreamBeginWrite hands out areas pointing directly into the buffer
// RtAudio's native callback provided for this round; there is no
// intermediate ring buffer because the callback already runs synchronously
// on the realtime thread with exactly the right amount of space reserved.
func (b *Bridge) OutstreamBeginWrite(s *soundio.Outstream, frameCount int) ([]soundio.ChannelArea, int, error) {
	st, ok := s.BackendData().(*outstreamState)
	if !ok || st.currentBuf == nil {
		return nil, 0, soundio.NewError(soundio.ErrorInvalid, fmt.Errorf("BeginWrite called outside of WriteCallback"))
	}
	available := len(st.currentBuf) / s.BytesPerFrame
	actual := frameCount
	if actual > available {
		actual = available
	}
	return channelAreas(st.currentBuf[:actual*s.BytesPerFrame], s.Layout.ChannelCount(), s.BytesPerSample), actual, nil
}

// OutstreamEndWrite is a no-op: the data is already in place in the native
// callback's output buffer by the time WriteCallback returns.
func (b *Bridge) OutstreamEndWrite(s *soundio.Outstream) error { return nil }

type instreamState struct {
	audio      rtaudio.RtAudio
	format     soundio.Format
	currentBuf []byte
}

func (b *Bridge) InstreamOpen(s *soundio.Instream) error {
	rtFmt, ok := rtFormat(s.Format)
	if !ok {
		return soundio.NewError(soundio.ErrorIncompatibleDevice, fmt.Errorf("format %s has no RtAudio equivalent", s.Format))
	}
	deviceID, err := parseDeviceID(s.Device)
	if err != nil {
		return err
	}

	audio, err := rtaudio.Create(b.api)
	if err != nil {
		return soundio.NewError(soundio.ErrorInitAudioBackend, err)
	}

	st := &instreamState{audio: audio, format: s.Format}
	s.SetBackendData(st)

	params := &rtaudio.StreamParams{
		DeviceID:     deviceID,
		NumChannels:  uint(s.Layout.ChannelCount()),
		FirstChannel: 0,
	}
	frames := uint(int(s.SoftwareLatency*float64(s.SampleRate)) / 2)
	if frames == 0 {
		frames = 256
	}

	cb := func(out, in rtaudio.Buffer, dur time.Duration, status rtaudio.StreamStatus) int {
		st.currentBuf = rawBytes(in, st.format)
		if status&rtaudio.StatusInputOverflow != 0 && s.OverflowCallback != nil {
			s.OverflowCallback(s)
		}
		if s.ReadCallback != nil {
			n := in.Len()
			s.ReadCallback(s, n, n)
		}
		st.currentBuf = nil
		return 0
	}

	opts := &rtaudio.StreamOptions{Flags: rtaudio.FlagsMinimizeLatency}
	if err := audio.Open(nil, params, rtFmt, uint(s.SampleRate), frames, cb, opts); err != nil {
		audio.Destroy()
		return soundio.NewError(soundio.ErrorOpeningDevice, err)
	}
	return nil
}

func (b *Bridge) InstreamDestroy(s *soundio.Instream) {
	st, ok := s.BackendData().(*instreamState)
	if !ok {
		return
	}
	if st.audio.IsRunning() {
		st.audio.Stop()
	}
	if st.audio.IsOpen() {
		st.audio.Close()
	}
	st.audio.Destroy()
}

func (b *Bridge) InstreamStart(s *soundio.Instream) error {
	st := s.BackendData().(*instreamState)
	if err := st.audio.Start(); err != nil {
		return soundio.NewError(soundio.ErrorStreaming, err)
	}
	return nil
}

func (b *Bridge) InstreamPause(s *soundio.Instream, pause bool) error {
	st, ok := s.BackendData().(*instreamState)
	if !ok {
		return soundio.NewError(soundio.ErrorInvalid, fmt.Errorf("stream not opened"))
	}
	if pause {
		if err := st.audio.Stop(); err != nil {
			return soundio.NewError(soundio.ErrorStreaming, err)
		}
		return nil
	}
	if err := st.audio.Start(); err != nil {
		return soundio.NewError(soundio.ErrorStreaming, err)
	}
	return nil
}

func (b *Bridge) InstreamGetLatency(s *soundio.Instream) (float64, error) {
	st, ok := s.BackendData().(*instreamState)
	if !ok {
		return 0, soundio.NewError(soundio.ErrorInvalid, fmt.Errorf("stream not opened"))
	}
	frames, err := st.audio.Latency()
	if err != nil {
		return 0, soundio.NewError(soundio.ErrorStreaming, err)
	}
	return float64(frames) / float64(s.SampleRate), nil
}

func (b *Bridge) InstreamBeginRead(s *soundio.Instream, frameCount int) ([]soundio.ChannelArea, int, error) {
	st, ok := s.BackendData().(*instreamState)
	if !ok || st.currentBuf == nil {
		return nil, 0, soundio.NewError(soundio.ErrorInvalid, fmt.Errorf("BeginRead called outside of ReadCallback"))
	}
	available := len(st.currentBuf) / s.BytesPerFrame
	actual := frameCount
	if actual > available {
		actual = available
	}
	return channelAreas(st.currentBuf[:actual*s.BytesPerFrame], s.Layout.ChannelCount(), s.BytesPerSample), actual, nil
}

func (b *Bridge) InstreamEndRead(s *soundio.Instream) error { return nil }

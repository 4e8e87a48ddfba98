package soundio

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ChannelArea describes where one channel's samples live for the duration
// of a single begin/end-write or begin/end-read call. Pointer and
// StepBytes together represent both interleaved and planar buffers:
// interleaved stereo Float32 gives StepBytes=8 for both channels with
// Pointer offsets 0 and 4 bytes into the same underlying buffer.
type ChannelArea struct {
	Pointer   []byte
	StepBytes int
}

// FrameAt returns the byte slice for frame index i in this channel, valid
// for exactly BytesPerSample bytes; callers write/read exactly that many
// bytes per call.
func (a ChannelArea) FrameAt(i, bytesPerSample int) []byte {
	offset := i * a.StepBytes
	return a.Pointer[offset : offset+bytesPerSample]
}

// StreamState enumerates the lifecycle every Outstream/Instream passes
// through. Destruction is valid from any state.
type StreamState int32

const (
	StreamUnopened StreamState = iota
	StreamOpened
	StreamStarted
	StreamRunning
	StreamPaused
	StreamDestroyed
)

func (s StreamState) String() string {
	switch s {
	case StreamUnopened:
		return "unopened"
	case StreamOpened:
		return "opened"
	case StreamStarted:
		return "started"
	case StreamRunning:
		return "running"
	case StreamPaused:
		return "paused"
	case StreamDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// streamFormatPreference is the format probe order from §4.10: native float
// first, then descending integer width, native endianness before foreign.
var streamFormatPreference = []Format{
	FormatFloat32NE, flipEndian(FormatFloat32NE),
	FormatS32NE, flipEndian(FormatS32NE),
	FormatS24NE, flipEndian(FormatS24NE),
	FormatS16NE, flipEndian(FormatS16NE),
	FormatFloat64NE, flipEndian(FormatFloat64NE),
	FormatU32NE, flipEndian(FormatU32NE),
	FormatU24NE, flipEndian(FormatU24NE),
	FormatU16NE, flipEndian(FormatU16NE),
	FormatS8, FormatU8,
}

func flipEndian(f Format) Format {
	switch f {
	case FormatS16LE:
		return FormatS16BE
	case FormatS16BE:
		return FormatS16LE
	case FormatU16LE:
		return FormatU16BE
	case FormatU16BE:
		return FormatU16LE
	case FormatS24LE:
		return FormatS24BE
	case FormatS24BE:
		return FormatS24LE
	case FormatU24LE:
		return FormatU24BE
	case FormatU24BE:
		return FormatU24LE
	case FormatS32LE:
		return FormatS32BE
	case FormatS32BE:
		return FormatS32LE
	case FormatU32LE:
		return FormatU32BE
	case FormatU32BE:
		return FormatU32LE
	case FormatFloat32LE:
		return FormatFloat32BE
	case FormatFloat32BE:
		return FormatFloat32LE
	case FormatFloat64LE:
		return FormatFloat64BE
	case FormatFloat64BE:
		return FormatFloat64LE
	default:
		return f
	}
}

// chooseFormat picks requested if the device supports it, else the first
// entry of streamFormatPreference the device supports, matching §4.8's
// "fall back to Float32NE if supported, else first supported format".
func chooseFormat(device *Device, requested Format) (Format, error) {
	if requested != FormatInvalid && device.SupportsFormat(requested) {
		return requested, nil
	}
	for _, f := range streamFormatPreference {
		if device.SupportsFormat(f) {
			return f, nil
		}
	}
	if len(device.Formats) > 0 {
		return device.Formats[0], nil
	}
	return FormatInvalid, NewError(ErrorIncompatibleDevice, fmt.Errorf("device %q advertises no formats", device.Name))
}

// chooseLayout picks requested if supported, else Stereo if supported,
// else the device's first (richest, if sorted) layout.
func chooseLayout(device *Device, requested ChannelLayout) (ChannelLayout, error) {
	if requested.ChannelCount() > 0 && device.SupportsLayout(requested) {
		return requested, nil
	}
	stereo := BuiltinChannelLayouts[1]
	if device.SupportsLayout(stereo) {
		return stereo, nil
	}
	if len(device.Layouts) > 0 {
		return device.Layouts[0], nil
	}
	return ChannelLayout{}, NewError(ErrorIncompatibleDevice, fmt.Errorf("device %q advertises no channel layouts", device.Name))
}

// chooseSampleRate picks requested if non-zero, else the device's nearest
// rate to 48kHz.
func chooseSampleRate(device *Device, requested int) (int, error) {
	if requested != 0 {
		return requested, nil
	}
	return device.NearestSampleRate(48000)
}

func clampLatency(requested float64, device *Device) float64 {
	if requested <= 0 {
		requested = device.SoftwareLatencyCurrent
		if requested <= 0 {
			requested = 0.1
		}
	}
	if device.SoftwareLatencyMin > 0 && requested < device.SoftwareLatencyMin {
		requested = device.SoftwareLatencyMin
	}
	if device.SoftwareLatencyMax > 0 && requested > device.SoftwareLatencyMax {
		requested = device.SoftwareLatencyMax
	}
	return requested
}

// Outstream is a playback (output) stream. Construct one with
// Context.CreateOutstream, configure the exported fields, then call Open.
type Outstream struct {
	Device             *Device
	Format             Format
	SampleRate         int
	Layout             ChannelLayout
	SoftwareLatency    float64
	Name               string

	WriteCallback     WriteCallback
	UnderflowCallback UnderflowCallback
	ErrorCallback     ErrorCallback

	BytesPerFrame  int
	BytesPerSample int
	LayoutError    error

	backend     Backend
	state       atomic.Int32
	mu          sync.Mutex
	backendData any
}

// BackendData lets a Backend implementation stash its own native handle on
// the stream without the soundio package needing to know its type.
func (o *Outstream) BackendData() any          { return o.backendData }
func (o *Outstream) SetBackendData(v any)      { o.backendData = v }

// State returns the stream's current lifecycle state.
func (o *Outstream) State() StreamState { return StreamState(o.state.Load()) }

func (o *Outstream) setState(s StreamState) { o.state.Store(int32(s)) }

// Open validates the requested configuration against the device
// (substituting fallbacks per §4.8), then asks the backend to allocate its
// native resources. It is valid to call Open exactly once.
func (o *Outstream) Open() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.State() != StreamUnopened {
		return NewError(ErrorInvalid, fmt.Errorf("outstream already opened"))
	}
	if o.Device == nil {
		return NewError(ErrorInvalid, fmt.Errorf("outstream has no device"))
	}
	if o.Device.Aim != AimOutput {
		return NewError(ErrorInvalid, fmt.Errorf("device %q is not an output device", o.Device.Name))
	}

	format, err := chooseFormat(o.Device, o.Format)
	if err != nil {
		return err
	}
	layout, layoutErr := chooseLayout(o.Device, o.Layout)
	if layoutErr != nil {
		o.LayoutError = layoutErr
		layout = o.Device.CurrentLayout
	}
	if len(layout.Channels) > maxChannels {
		return NewError(ErrorInvalid, fmt.Errorf("channel count %d exceeds maximum %d", len(layout.Channels), maxChannels))
	}
	rate, err := chooseSampleRate(o.Device, o.SampleRate)
	if err != nil {
		return err
	}

	o.Format = format
	o.Layout = layout
	o.SampleRate = rate
	o.SoftwareLatency = clampLatency(o.SoftwareLatency, o.Device)
	o.BytesPerSample = format.BytesPerSample()
	o.BytesPerFrame = format.BytesPerFrame(layout.ChannelCount())

	o.backend = o.Device.backendRef
	if o.backend == nil {
		return NewError(ErrorInvalid, fmt.Errorf("device %q is not attached to a connected backend", o.Device.Name))
	}
	if err := o.backend.OutstreamOpen(o); err != nil {
		return err
	}
	o.setState(StreamOpened)
	return nil
}

// Start begins streaming: the backend schedules WriteCallback on its own
// worker thread or native callback, per §4.8.
func (o *Outstream) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.State() != StreamOpened {
		return NewError(ErrorInvalid, fmt.Errorf("outstream must be opened before start"))
	}
	if err := o.backend.OutstreamStart(o); err != nil {
		return err
	}
	o.setState(StreamStarted)
	return nil
}

// Pause toggles the stream between Running and Paused. Backends that
// cannot pause return ErrorIncompatibleBackend.
func (o *Outstream) Pause(pause bool) error {
	if err := o.backend.OutstreamPause(o, pause); err != nil {
		return err
	}
	if pause {
		o.setState(StreamPaused)
	} else {
		o.setState(StreamRunning)
	}
	return nil
}

// ClearBuffer drops queued playback samples without stopping the stream,
// where the backend supports it.
func (o *Outstream) ClearBuffer() error {
	return o.backend.OutstreamClearBuffer(o)
}

// BeginWrite reserves room for up to frameCount frames and returns one
// ChannelArea per channel of Layout, plus however many frames were actually
// reserved (which may be less than requested). The caller writes samples
// into the returned areas, then calls EndWrite exactly once before the next
// BeginWrite.
func (o *Outstream) BeginWrite(frameCount int) ([]ChannelArea, int, error) {
	return o.backend.OutstreamBeginWrite(o, frameCount)
}

// EndWrite commits whatever was written into the areas returned by the most
// recent BeginWrite, making it visible to the backend.
func (o *Outstream) EndWrite() error {
	return o.backend.OutstreamEndWrite(o)
}

// GetLatency reports frames_in_flight/sample_rate plus hardware latency, in
// seconds.
func (o *Outstream) GetLatency() (float64, error) {
	return o.backend.OutstreamGetLatency(o)
}

// Destroy stops the worker and releases the native handle. Valid from any
// state; safe to call more than once.
func (o *Outstream) Destroy() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.State() == StreamDestroyed {
		return
	}
	if o.backend != nil {
		o.backend.OutstreamDestroy(o)
	}
	o.setState(StreamDestroyed)
	if o.Device != nil {
		o.Device.Unref()
	}
}

// Instream is a capture (input) stream; see Outstream for the mirrored
// field-by-field meaning.
type Instream struct {
	Device          *Device
	Format          Format
	SampleRate      int
	Layout          ChannelLayout
	SoftwareLatency float64
	Name            string

	ReadCallback     ReadCallback
	OverflowCallback OverflowCallback
	ErrorCallback    ErrorCallback

	BytesPerFrame  int
	BytesPerSample int
	LayoutError    error

	backend     Backend
	state       atomic.Int32
	mu          sync.Mutex
	backendData any
}

func (i *Instream) BackendData() any     { return i.backendData }
func (i *Instream) SetBackendData(v any) { i.backendData = v }

func (i *Instream) State() StreamState      { return StreamState(i.state.Load()) }
func (i *Instream) setState(s StreamState)  { i.state.Store(int32(s)) }

// Open mirrors Outstream.Open for a capture device.
func (i *Instream) Open() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.State() != StreamUnopened {
		return NewError(ErrorInvalid, fmt.Errorf("instream already opened"))
	}
	if i.Device == nil {
		return NewError(ErrorInvalid, fmt.Errorf("instream has no device"))
	}
	if i.Device.Aim != AimInput {
		return NewError(ErrorInvalid, fmt.Errorf("device %q is not an input device", i.Device.Name))
	}

	format, err := chooseFormat(i.Device, i.Format)
	if err != nil {
		return err
	}
	layout, layoutErr := chooseLayout(i.Device, i.Layout)
	if layoutErr != nil {
		i.LayoutError = layoutErr
		layout = i.Device.CurrentLayout
	}
	if len(layout.Channels) > maxChannels {
		return NewError(ErrorInvalid, fmt.Errorf("channel count %d exceeds maximum %d", len(layout.Channels), maxChannels))
	}
	rate, err := chooseSampleRate(i.Device, i.SampleRate)
	if err != nil {
		return err
	}

	i.Format = format
	i.Layout = layout
	i.SampleRate = rate
	i.SoftwareLatency = clampLatency(i.SoftwareLatency, i.Device)
	i.BytesPerSample = format.BytesPerSample()
	i.BytesPerFrame = format.BytesPerFrame(layout.ChannelCount())

	i.backend = i.Device.backendRef
	if i.backend == nil {
		return NewError(ErrorInvalid, fmt.Errorf("device %q is not attached to a connected backend", i.Device.Name))
	}
	if err := i.backend.InstreamOpen(i); err != nil {
		return err
	}
	i.setState(StreamOpened)
	return nil
}

// Start begins capture.
func (i *Instream) Start() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.State() != StreamOpened {
		return NewError(ErrorInvalid, fmt.Errorf("instream must be opened before start"))
	}
	if err := i.backend.InstreamStart(i); err != nil {
		return err
	}
	i.setState(StreamStarted)
	return nil
}

// Pause toggles the stream between Running and Paused.
func (i *Instream) Pause(pause bool) error {
	if err := i.backend.InstreamPause(i, pause); err != nil {
		return err
	}
	if pause {
		i.setState(StreamPaused)
	} else {
		i.setState(StreamRunning)
	}
	return nil
}

// GetLatency reports the stream's current capture latency in seconds.
func (i *Instream) GetLatency() (float64, error) {
	return i.backend.InstreamGetLatency(i)
}

// BeginRead exposes up to frameCount already-captured frames as one
// ChannelArea per channel of Layout, plus how many frames are actually
// available. The caller reads samples out of the returned areas, then calls
// EndRead exactly once before the next BeginRead.
func (i *Instream) BeginRead(frameCount int) ([]ChannelArea, int, error) {
	return i.backend.InstreamBeginRead(i, frameCount)
}

// EndRead releases the frames returned by the most recent BeginRead back to
// the backend.
func (i *Instream) EndRead() error {
	return i.backend.InstreamEndRead(i)
}

// Destroy stops the worker and releases the native handle.
func (i *Instream) Destroy() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.State() == StreamDestroyed {
		return
	}
	if i.backend != nil {
		i.backend.InstreamDestroy(i)
	}
	i.setState(StreamDestroyed)
	if i.Device != nil {
		i.Device.Unref()
	}
}

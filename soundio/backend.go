package soundio

import "context"

// BackendID identifies one of the pluggable OS audio backends a Context can
// connect to, matching the SoundIoBackend enum.
type BackendID int

const (
	BackendNone BackendID = iota
	BackendJack
	BackendPulseAudio
	BackendAlsa
	BackendCoreAudio
	BackendWasapi
	BackendDummy
)

func (b BackendID) String() string {
	switch b {
	case BackendNone:
		return "(none)"
	case BackendJack:
		return "JACK"
	case BackendPulseAudio:
		return "PulseAudio"
	case BackendAlsa:
		return "ALSA"
	case BackendCoreAudio:
		return "CoreAudio"
	case BackendWasapi:
		return "WASAPI"
	case BackendDummy:
		return "Dummy"
	default:
		return "(invalid backend)"
	}
}

// backendPreferenceOrder is the order Context.Connect tries registered
// backends in, matching available_backends in soundio.c: JACK and
// PulseAudio before ALSA, platform backends before Dummy, Dummy always
// last so Connect never fails outright.
var backendPreferenceOrder = []BackendID{
	BackendJack,
	BackendPulseAudio,
	BackendAlsa,
	BackendCoreAudio,
	BackendWasapi,
	BackendDummy,
}

// WriteCallback is invoked from the realtime thread when an Outstream has
// room to accept more frames. frameCountMin and frameCountMax bound how
// many frames the callback must/may write this round via
// Outstream.BeginWrite / Outstream.EndWrite.
type WriteCallback func(stream *Outstream, frameCountMin, frameCountMax int)

// ReadCallback is invoked from the realtime thread when an Instream has
// captured frames ready to be consumed.
type ReadCallback func(stream *Instream, frameCountMin, frameCountMax int)

// UnderflowCallback reports that an Outstream ran out of buffered frames to
// play, and OverflowCallback that an Instream's ring buffer could not
// absorb newly captured frames quickly enough.
type UnderflowCallback func(stream *Outstream)
type OverflowCallback func(stream *Instream)

// ErrorCallback reports a stream entering SoundIoErrorStreaming: an
// unrecoverable condition the stream's owner must react to by destroying
// and, if desired, reopening the stream.
type ErrorCallback func(err error)

// Backend is the interface a platform-specific audio subsystem implements
// to plug into Context. It corresponds to the function-pointer table
// SoundIoPrivate carries per backend in the C library (connect,
// disconnect, flush_events, wait_events, ..., outstream_open,
// outstream_start, ...), made into a Go interface instead.
type Backend interface {
	ID() BackendID

	// Connect performs whatever one-time setup the backend needs (opening
	// a client handle to the sound server, subscribing to hotplug
	// notifications) and begins the first device scan. onDisconnect is
	// called at most once, from whatever goroutine first detects that the
	// backend can no longer continue (the sound server process exited, a
	// rescan started failing); the backend must not touch onDevicesChange
	// or onDisconnect again afterward.
	Connect(onDevicesChange func(), onDisconnect func(error)) error

	// Disconnect releases every resource Connect acquired. The backend
	// must not invoke any registered callback after this returns.
	Disconnect() error

	// FlushEvents publishes the most recent completed device scan (if any)
	// so a subsequent call to Devices returns it, without blocking for a
	// new scan to start.
	FlushEvents()

	// WaitEvents blocks until FlushEvents would have new information to
	// publish, or until ctx is canceled.
	WaitEvents(ctx context.Context) error

	// Wakeup causes a concurrent WaitEvents call to return immediately.
	Wakeup()

	// ForceDeviceScan requests a fresh enumeration even if the backend
	// believes its device list is current.
	ForceDeviceScan()

	// Devices returns the most recently published device snapshot.
	Devices() *DevicesInfo

	// OutstreamOpen and InstreamOpen realize a stream against a concrete
	// device, allocating whatever native handle or ring buffer the backend
	// needs, but do not yet start producing or consuming audio.
	OutstreamOpen(stream *Outstream) error
	OutstreamDestroy(stream *Outstream)
	OutstreamStart(stream *Outstream) error
	OutstreamPause(stream *Outstream, pause bool) error
	OutstreamClearBuffer(stream *Outstream) error
	OutstreamGetLatency(stream *Outstream) (float64, error)

	// OutstreamBeginWrite reserves room for up to frameCount frames (fewer if
	// that much room is not available) and returns one ChannelArea per
	// channel pointing into it; EndWrite commits whatever prefix of that
	// room the caller actually filled.
	OutstreamBeginWrite(stream *Outstream, frameCount int) (areas []ChannelArea, actualFrameCount int, err error)
	OutstreamEndWrite(stream *Outstream) error

	InstreamOpen(stream *Instream) error
	InstreamDestroy(stream *Instream)
	InstreamStart(stream *Instream) error
	InstreamPause(stream *Instream, pause bool) error
	InstreamGetLatency(stream *Instream) (float64, error)

	// InstreamBeginRead exposes up to frameCount already-captured frames as
	// one ChannelArea per channel; EndRead releases them back to the backend.
	InstreamBeginRead(stream *Instream, frameCount int) (areas []ChannelArea, actualFrameCount int, err error)
	InstreamEndRead(stream *Instream) error
}

// BackendFactory constructs a Backend for the current process; registered
// by each platform-specific backend package's init function via
// RegisterBackendFactory.
type BackendFactory func() Backend

var backendFactories = map[BackendID]BackendFactory{}

// RegisterBackendFactory is called from the init function of each
// backend/* package to make itself available to Context.Connect /
// Context.ConnectBackend without soundio importing those packages
// directly (which would pull every cgo backend into every build; callers
// blank-import the backends they want, the same driver-registration pattern
// database/sql uses to keep SQL drivers optional at compile time).
func RegisterBackendFactory(id BackendID, factory BackendFactory) {
	backendFactories[id] = factory
}

//go:build linux

// Package pulseaudio plugs the PulseAudio sound server into soundio via
// rtaudiobridge. Blank-import this package to make soundio.BackendPulseAudio
// available to Context.Connect/Context.ConnectBackend.
package pulseaudio

import (
	"github.com/roundtable-audio/soundio/internal/rtaudio"
	"github.com/roundtable-audio/soundio/internal/rtaudiobridge"
	"github.com/roundtable-audio/soundio/soundio"
)

func init() {
	soundio.RegisterBackendFactory(soundio.BackendPulseAudio, New)
}

// New constructs an unconnected PulseAudio backend.
func New() soundio.Backend {
	return rtaudiobridge.New(soundio.BackendPulseAudio, rtaudio.APILinuxPulse)
}

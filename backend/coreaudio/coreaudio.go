//go:build darwin

// Package coreaudio plugs Apple's CoreAudio into soundio via rtaudiobridge.
// Blank-import this package to make soundio.BackendCoreAudio available to
// Context.Connect/Context.ConnectBackend.
package coreaudio

import (
	"github.com/roundtable-audio/soundio/internal/rtaudio"
	"github.com/roundtable-audio/soundio/internal/rtaudiobridge"
	"github.com/roundtable-audio/soundio/soundio"
)

func init() {
	soundio.RegisterBackendFactory(soundio.BackendCoreAudio, New)
}

// New constructs an unconnected CoreAudio backend.
func New() soundio.Backend {
	return rtaudiobridge.New(soundio.BackendCoreAudio, rtaudio.APIMacOSXCore)
}

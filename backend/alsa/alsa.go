//go:build linux

// Package alsa plugs the Advanced Linux Sound Architecture into soundio via
// rtaudiobridge. Blank-import this package to make soundio.BackendAlsa
// available to Context.Connect/Context.ConnectBackend.
package alsa

import (
	"github.com/roundtable-audio/soundio/internal/rtaudio"
	"github.com/roundtable-audio/soundio/internal/rtaudiobridge"
	"github.com/roundtable-audio/soundio/soundio"
)

func init() {
	soundio.RegisterBackendFactory(soundio.BackendAlsa, New)
}

// New constructs an unconnected ALSA backend.
func New() soundio.Backend {
	return rtaudiobridge.New(soundio.BackendAlsa, rtaudio.APILinuxALSA)
}

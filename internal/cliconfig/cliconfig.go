// Package cliconfig centralizes the spf13/viper defaults shared by the
// cmd/sio-* example programs. The core soundio package takes no dependency
// on viper; only these command-line collaborators do.
package cliconfig

import "github.com/spf13/viper"

// SetDefaults registers the viper defaults read by every sio-* program
// before it parses its own flags or optional config file.
func SetDefaults() {
	viper.SetDefault("backend", "")
	viper.SetDefault("samplerate", 48000)
	viper.SetDefault("latency", 0.1)
	viper.SetDefault("loglevel", "info")
	viper.SetDefault("logfile", "")
}

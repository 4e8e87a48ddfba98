// Command sio-list lists every input and output device the selected backend
// reports, along with the formats, channel layouts, and sample rates each
// one supports.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/roundtable-audio/soundio/internal/cliconfig"
	"github.com/roundtable-audio/soundio/internal/logging"
	"github.com/roundtable-audio/soundio/soundio"

	_ "github.com/roundtable-audio/soundio/backend/alsa"
	_ "github.com/roundtable-audio/soundio/backend/coreaudio"
	_ "github.com/roundtable-audio/soundio/backend/dummy"
	_ "github.com/roundtable-audio/soundio/backend/jack"
	_ "github.com/roundtable-audio/soundio/backend/pulseaudio"
	_ "github.com/roundtable-audio/soundio/backend/wasapi"
)

func main() {
	backendFlag := flag.String("backend", "", "Backend to connect to (alsa, pulseaudio, jack, coreaudio, wasapi, dummy); empty tries them in preference order")
	configFilePath := flag.String("configFilePath", "", "Optional path to a config file read by viper")
	flag.Parse()

	cliconfig.SetDefaults()
	if *configFilePath != "" {
		viper.SetConfigFile(*configFilePath)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "sio-list: reading config: %v\n", err)
			os.Exit(1)
		}
	}
	if *backendFlag != "" {
		viper.Set("backend", *backendFlag)
	}

	logFile, err := logging.Configure(viper.GetString("loglevel"), viper.GetString("logfile"), slog.HandlerOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sio-list: configuring logger: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	ctx := soundio.NewContext("sio-list")
	if name := viper.GetString("backend"); name != "" {
		err = ctx.ConnectBackend(backendIDFromName(name))
	} else {
		err = ctx.Connect()
	}
	if err != nil {
		slog.Error("connect failed", "err", err)
		os.Exit(1)
	}
	defer ctx.Disconnect()

	ctx.FlushEvents()
	fmt.Printf("backend: %s\n\n", ctx.CurrentBackend())

	printDevices("Input devices", ctx.InputDevices(), ctx.Devices().DefaultInputIndex)
	fmt.Println()
	printDevices("Output devices", ctx.OutputDevices(), ctx.Devices().DefaultOutputIndex)
}

func printDevices(title string, devices []*soundio.Device, defaultIndex int) {
	fmt.Println(title + ":")
	for i, d := range devices {
		marker := " "
		if i == defaultIndex {
			marker = "*"
		}
		fmt.Printf("%s %d: %s [%s]\n", marker, i, d.Name, d.ID)
		fmt.Printf("    layouts: %s\n", layoutNames(d.Layouts))
		fmt.Printf("    formats: %v\n", d.Formats)
		fmt.Printf("    sample rates: %s\n", sampleRateRanges(d.SampleRates))
	}
}

func layoutNames(layouts []soundio.ChannelLayout) string {
	names := make([]string, len(layouts))
	for i, l := range layouts {
		if l.Name != "" {
			names[i] = l.Name
		} else {
			names[i] = fmt.Sprintf("%d-channel", l.ChannelCount())
		}
	}
	return fmt.Sprintf("%v", names)
}

func sampleRateRanges(ranges []soundio.SampleRateRange) string {
	out := ""
	for i, r := range ranges {
		if i > 0 {
			out += ", "
		}
		if r.Min == r.Max {
			out += fmt.Sprintf("%d", r.Min)
		} else {
			out += fmt.Sprintf("%d-%d", r.Min, r.Max)
		}
	}
	return out
}

func backendIDFromName(name string) soundio.BackendID {
	switch name {
	case "alsa":
		return soundio.BackendAlsa
	case "pulseaudio":
		return soundio.BackendPulseAudio
	case "jack":
		return soundio.BackendJack
	case "coreaudio":
		return soundio.BackendCoreAudio
	case "wasapi":
		return soundio.BackendWasapi
	case "dummy":
		return soundio.BackendDummy
	default:
		return soundio.BackendNone
	}
}

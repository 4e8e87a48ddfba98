package soundio

import "encoding/binary"

// Format identifies a PCM sample encoding: bit width, signedness, and byte
// order. The catalog and byte widths match soundio_get_bytes_per_sample and
// soundio_format_string in the original library exactly.
type Format int

const (
	FormatInvalid Format = iota
	FormatS8
	FormatU8
	FormatS16LE
	FormatS16BE
	FormatU16LE
	FormatU16BE
	FormatS24LE
	FormatS24BE
	FormatU24LE
	FormatU24BE
	FormatS32LE
	FormatS32BE
	FormatU32LE
	FormatU32BE
	FormatFloat32LE
	FormatFloat32BE
	FormatFloat64LE
	FormatFloat64BE
)

// nativeEndian is resolved once at init time so FormatS16NE and friends
// below pick the correct concrete format for the host architecture, the way
// the C header's SoundIoFormatS16NE macro does at compile time.
var nativeEndian = func() binary.ByteOrder {
	var x uint16 = 1
	b := [2]byte{}
	binary.NativeEndian.PutUint16(b[:], x)
	if b[0] == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}()

// Native-endian aliases, resolved for the host at package init. These are
// the formats application code should prefer unless it has a specific
// reason to care about byte order (e.g. writing a file format that
// mandates one).
var (
	FormatS16NE     = pickEndian(FormatS16LE, FormatS16BE)
	FormatU16NE     = pickEndian(FormatU16LE, FormatU16BE)
	FormatS24NE     = pickEndian(FormatS24LE, FormatS24BE)
	FormatU24NE     = pickEndian(FormatU24LE, FormatU24BE)
	FormatS32NE     = pickEndian(FormatS32LE, FormatS32BE)
	FormatU32NE     = pickEndian(FormatU32LE, FormatU32BE)
	FormatFloat32NE = pickEndian(FormatFloat32LE, FormatFloat32BE)
	FormatFloat64NE = pickEndian(FormatFloat64LE, FormatFloat64BE)
)

func pickEndian(le, be Format) Format {
	if nativeEndian == binary.LittleEndian {
		return le
	}
	return be
}

// BytesPerSample returns the size in bytes of one sample of this format, or
// -1 for FormatInvalid.
func (f Format) BytesPerSample() int {
	switch f {
	case FormatS8, FormatU8:
		return 1
	case FormatS16LE, FormatS16BE, FormatU16LE, FormatU16BE:
		return 2
	case FormatS24LE, FormatS24BE, FormatU24LE, FormatU24BE:
		return 4
	case FormatS32LE, FormatS32BE, FormatU32LE, FormatU32BE:
		return 4
	case FormatFloat32LE, FormatFloat32BE:
		return 4
	case FormatFloat64LE, FormatFloat64BE:
		return 8
	default:
		return -1
	}
}

// BytesPerFrame returns the byte size of a single frame (one sample per
// channel) for a stream with the given channel count in this format.
func (f Format) BytesPerFrame(channelCount int) int {
	return f.BytesPerSample() * channelCount
}

// BytesPerSecond returns the byte rate of a stream in this format at the
// given channel count and sample rate.
func (f Format) BytesPerSecond(channelCount, sampleRate int) int {
	return f.BytesPerFrame(channelCount) * sampleRate
}

func (f Format) String() string {
	switch f {
	case FormatS8:
		return "signed 8-bit"
	case FormatU8:
		return "unsigned 8-bit"
	case FormatS16LE:
		return "signed 16-bit LE"
	case FormatS16BE:
		return "signed 16-bit BE"
	case FormatU16LE:
		return "unsigned 16-bit LE"
	case FormatU16BE:
		return "unsigned 16-bit BE"
	case FormatS24LE:
		return "signed 24-bit LE"
	case FormatS24BE:
		return "signed 24-bit BE"
	case FormatU24LE:
		return "unsigned 24-bit LE"
	case FormatU24BE:
		return "unsigned 24-bit BE"
	case FormatS32LE:
		return "signed 32-bit LE"
	case FormatS32BE:
		return "signed 32-bit BE"
	case FormatU32LE:
		return "unsigned 32-bit LE"
	case FormatU32BE:
		return "unsigned 32-bit BE"
	case FormatFloat32LE:
		return "float 32-bit LE"
	case FormatFloat32BE:
		return "float 32-bit BE"
	case FormatFloat64LE:
		return "float 64-bit LE"
	case FormatFloat64BE:
		return "float 64-bit BE"
	default:
		return "(invalid sample format)"
	}
}

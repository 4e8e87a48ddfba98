package soundio

import "testing"

func TestBytesPerSample(t *testing.T) {
	cases := map[Format]int{
		FormatS8:       1,
		FormatU8:       1,
		FormatS16LE:    2,
		FormatU16BE:    2,
		FormatS24LE:    4,
		FormatS32LE:    4,
		FormatFloat32LE: 4,
		FormatFloat64LE: 8,
		FormatInvalid:  -1,
	}
	for f, want := range cases {
		if got := f.BytesPerSample(); got != want {
			t.Errorf("%s.BytesPerSample() = %d, want %d", f, got, want)
		}
	}
}

func TestBytesPerFrameAndSecond(t *testing.T) {
	f := FormatS16LE
	if got := f.BytesPerFrame(2); got != 4 {
		t.Fatalf("BytesPerFrame(2) = %d, want 4", got)
	}
	if got := f.BytesPerSecond(2, 48000); got != 4*48000 {
		t.Fatalf("BytesPerSecond = %d, want %d", got, 4*48000)
	}
}

func TestNativeEndianAliasesResolve(t *testing.T) {
	aliases := []struct {
		name string
		f    Format
		le   Format
		be   Format
	}{
		{"S16NE", FormatS16NE, FormatS16LE, FormatS16BE},
		{"U16NE", FormatU16NE, FormatU16LE, FormatU16BE},
		{"S24NE", FormatS24NE, FormatS24LE, FormatS24BE},
		{"S32NE", FormatS32NE, FormatS32LE, FormatS32BE},
		{"Float32NE", FormatFloat32NE, FormatFloat32LE, FormatFloat32BE},
		{"Float64NE", FormatFloat64NE, FormatFloat64LE, FormatFloat64BE},
	}
	for _, tc := range aliases {
		if tc.f != tc.le && tc.f != tc.be {
			t.Errorf("%s resolved to %v, want either %v or %v", tc.name, tc.f, tc.le, tc.be)
		}
	}
}

func TestFormatString(t *testing.T) {
	if got := FormatS16LE.String(); got != "signed 16-bit LE" {
		t.Fatalf("String() = %q", got)
	}
	if got := FormatInvalid.String(); got != "(invalid sample format)" {
		t.Fatalf("String() = %q", got)
	}
}

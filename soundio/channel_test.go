package soundio

import "testing"

func TestChannelNameKnownAndUnknown(t *testing.T) {
	if got := ChannelName(ChannelIdFrontLeft); got != "Front Left" {
		t.Fatalf("ChannelName(FrontLeft) = %q, want %q", got, "Front Left")
	}
	if got := ChannelName(ChannelId(10000)); got != "(Invalid Channel)" {
		t.Fatalf("ChannelName(out of range) = %q, want (Invalid Channel)", got)
	}
}

func TestParseChannelIdAliases(t *testing.T) {
	cases := map[string]ChannelId{
		"Front Left":  ChannelIdFrontLeft,
		"FL":          ChannelIdFrontLeft,
		"front-left":  ChannelIdFrontLeft,
		"LFE":         ChannelIdLfe,
		"nonexistent": ChannelIdInvalid,
	}
	for in, want := range cases {
		if got := ParseChannelId(in); got != want {
			t.Errorf("ParseChannelId(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestChannelLayoutEqualIgnoresName(t *testing.T) {
	a := ChannelLayout{Name: "A", Channels: []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight}}
	b := ChannelLayout{Name: "B", Channels: []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight}}
	if !a.Equal(b) {
		t.Fatal("layouts with same channels but different names should be equal")
	}
	c := ChannelLayout{Channels: []ChannelId{ChannelIdFrontRight, ChannelIdFrontLeft}}
	if a.Equal(c) {
		t.Fatal("layouts with channels in a different order must not be equal")
	}
}

func TestDetectBuiltinFindsStereo(t *testing.T) {
	stereo := ChannelLayout{Channels: []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight}}
	name, ok := stereo.DetectBuiltin()
	if !ok || name != "Stereo" {
		t.Fatalf("DetectBuiltin() = (%q, %v), want (\"Stereo\", true)", name, ok)
	}

	custom := ChannelLayout{Channels: []ChannelId{ChannelIdTopCenter, ChannelIdAux5}}
	if _, ok := custom.DetectBuiltin(); ok {
		t.Fatal("an arbitrary channel set must not match a builtin layout")
	}
}

func TestChannelLayoutDefaultCoversCommonCounts(t *testing.T) {
	for count, want := range map[int]int{1: 1, 2: 2, 6: 6, 8: 8} {
		layout, ok := ChannelLayoutDefault(count)
		if !ok {
			t.Fatalf("ChannelLayoutDefault(%d) reported no default", count)
		}
		if layout.ChannelCount() != want {
			t.Fatalf("ChannelLayoutDefault(%d).ChannelCount() = %d, want %d", count, layout.ChannelCount(), want)
		}
	}
	if _, ok := ChannelLayoutDefault(99); ok {
		t.Fatal("ChannelLayoutDefault(99) should report no default")
	}
}

func TestBestMatchingChannelLayoutPrefersEarliestPreference(t *testing.T) {
	mono := ChannelLayout{Channels: []ChannelId{ChannelIdFrontCenter}}
	stereo := ChannelLayout{Channels: []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight}}
	preferred := []ChannelLayout{stereo, mono}
	available := []ChannelLayout{mono}

	got, ok := BestMatchingChannelLayout(preferred, available)
	if !ok || !got.Equal(mono) {
		t.Fatalf("expected to fall back to mono, got %+v ok=%v", got, ok)
	}

	if _, ok := BestMatchingChannelLayout(preferred, nil); ok {
		t.Fatal("no available layouts should report no match")
	}
}

func TestSortChannelLayoutsByChannelCountDescending(t *testing.T) {
	mono := ChannelLayout{Channels: []ChannelId{ChannelIdFrontCenter}}
	stereo := ChannelLayout{Channels: []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight}}
	layouts := []ChannelLayout{mono, stereo}
	SortChannelLayoutsByChannelCount(layouts)
	if layouts[0].ChannelCount() < layouts[1].ChannelCount() {
		t.Fatalf("expected descending channel count, got %v", layouts)
	}
}

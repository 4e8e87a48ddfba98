package soundio

// ChannelId identifies the role of a single channel within a layout (front
// left, LFE, top center, and so on). The catalog and ordering are ported
// directly from the channel_names table in the original library so that
// ChannelId values, their short and long aliases, and their array index
// stay in lockstep with upstream.
type ChannelId int

const (
	ChannelIdInvalid ChannelId = iota
	ChannelIdFrontLeft
	ChannelIdFrontRight
	ChannelIdFrontCenter
	ChannelIdLfe
	ChannelIdBackLeft
	ChannelIdBackRight
	ChannelIdFrontLeftCenter
	ChannelIdFrontRightCenter
	ChannelIdBackCenter
	ChannelIdSideLeft
	ChannelIdSideRight
	ChannelIdTopCenter
	ChannelIdTopFrontLeft
	ChannelIdTopFrontCenter
	ChannelIdTopFrontRight
	ChannelIdTopBackLeft
	ChannelIdTopBackCenter
	ChannelIdTopBackRight
	ChannelIdBackLeftCenter
	ChannelIdBackRightCenter
	ChannelIdFrontLeftWide
	ChannelIdFrontRightWide
	ChannelIdFrontLeftHigh
	ChannelIdFrontCenterHigh
	ChannelIdFrontRightHigh
	ChannelIdTopFrontLeftCenter
	ChannelIdTopFrontRightCenter
	ChannelIdTopSideLeft
	ChannelIdTopSideRight
	ChannelIdLeftLfe
	ChannelIdRightLfe
	ChannelIdLfe2
	ChannelIdBottomCenter
	ChannelIdBottomLeftCenter
	ChannelIdBottomRightCenter
	ChannelIdMsMid
	ChannelIdMsSide
	ChannelIdAmbisonicW
	ChannelIdAmbisonicX
	ChannelIdAmbisonicY
	ChannelIdAmbisonicZ
	ChannelIdXyX
	ChannelIdXyY
	ChannelIdHeadphonesLeft
	ChannelIdHeadphonesRight
	ChannelIdClickTrack
	ChannelIdForeignLanguage
	ChannelIdHearingImpaired
	ChannelIdNarration
	ChannelIdHaptic
	ChannelIdDialogCentricMix
	ChannelIdAux
	ChannelIdAux0
	ChannelIdAux1
	ChannelIdAux2
	ChannelIdAux3
	ChannelIdAux4
	ChannelIdAux5
	ChannelIdAux6
	ChannelIdAux7
	ChannelIdAux8
	ChannelIdAux9
	ChannelIdAux10
	ChannelIdAux11
	ChannelIdAux12
	ChannelIdAux13
	ChannelIdAux14
	ChannelIdAux15
)

type channelNameAliases struct {
	full  string
	short string
	alt   string
}

// channelNames is indexed by ChannelId, one entry per id, matching the
// upstream channel_names table including which ids have no short/alt alias.
var channelNames = []channelNameAliases{
	{"(Invalid Channel)", "", ""},
	{"Front Left", "FL", "front-left"},
	{"Front Right", "FR", "front-right"},
	{"Front Center", "FC", "front-center"},
	{"LFE", "LFE", "lfe"},
	{"Back Left", "BL", "rear-left"},
	{"Back Right", "BR", "rear-right"},
	{"Front Left Center", "FLC", "front-left-of-center"},
	{"Front Right Center", "FRC", "front-right-of-center"},
	{"Back Center", "BC", "rear-center"},
	{"Side Left", "SL", "side-left"},
	{"Side Right", "SR", "side-right"},
	{"Top Center", "TC", "top-center"},
	{"Top Front Left", "TFL", "top-front-left"},
	{"Top Front Center", "TFC", "top-front-center"},
	{"Top Front Right", "TFR", "top-front-right"},
	{"Top Back Left", "TBL", "top-rear-left"},
	{"Top Back Center", "TBC", "top-rear-center"},
	{"Top Back Right", "TBR", "top-rear-right"},
	{"Back Left Center", "", ""},
	{"Back Right Center", "", ""},
	{"Front Left Wide", "", ""},
	{"Front Right Wide", "", ""},
	{"Front Left High", "", ""},
	{"Front Center High", "", ""},
	{"Front Right High", "", ""},
	{"Top Front Left Center", "", ""},
	{"Top Front Right Center", "", ""},
	{"Top Side Left", "", ""},
	{"Top Side Right", "", ""},
	{"Left LFE", "", ""},
	{"Right LFE", "", ""},
	{"LFE 2", "", ""},
	{"Bottom Center", "", ""},
	{"Bottom Left Center", "", ""},
	{"Bottom Right Center", "", ""},
	{"Mid/Side Mid", "", ""},
	{"Mid/Side Side", "", ""},
	{"Ambisonic W", "", ""},
	{"Ambisonic X", "", ""},
	{"Ambisonic Y", "", ""},
	{"Ambisonic Z", "", ""},
	{"X-Y X", "", ""},
	{"X-Y Y", "", ""},
	{"Headphones Left", "", ""},
	{"Headphones Right", "", ""},
	{"Click Track", "", ""},
	{"Foreign Language", "", ""},
	{"Hearing Impaired", "", ""},
	{"Narration", "", ""},
	{"Haptic", "", ""},
	{"Dialog Centric Mix", "", ""},
	{"Aux", "", ""},
	{"Aux 0", "", ""},
	{"Aux 1", "", ""},
	{"Aux 2", "", ""},
	{"Aux 3", "", ""},
	{"Aux 4", "", ""},
	{"Aux 5", "", ""},
	{"Aux 6", "", ""},
	{"Aux 7", "", ""},
	{"Aux 8", "", ""},
	{"Aux 9", "", ""},
	{"Aux 10", "", ""},
	{"Aux 11", "", ""},
	{"Aux 12", "", ""},
	{"Aux 13", "", ""},
	{"Aux 14", "", ""},
	{"Aux 15", "", ""},
}

// ChannelName returns the display name for id, or "(Invalid Channel)" for
// an id outside the known catalog.
func ChannelName(id ChannelId) string {
	if int(id) < 0 || int(id) >= len(channelNames) {
		return "(Invalid Channel)"
	}
	return channelNames[id].full
}

// ParseChannelId resolves a channel by its full name or either alias,
// matching soundio_parse_channel_id. It returns ChannelIdInvalid if str
// does not match any known alias.
func ParseChannelId(str string) ChannelId {
	for id, names := range channelNames {
		if names.full == str || (names.short != "" && names.short == str) || (names.alt != "" && names.alt == str) {
			return ChannelId(id)
		}
	}
	return ChannelIdInvalid
}

const maxChannels = 32

// ChannelLayout names an ordered set of channel roles, e.g. "Stereo" =
// [FrontLeft, FrontRight]. A device advertises the layouts it supports; a
// stream is opened with exactly one.
type ChannelLayout struct {
	Name     string
	Channels []ChannelId
}

// ChannelCount returns the number of channels in the layout.
func (l ChannelLayout) ChannelCount() int { return len(l.Channels) }

// Equal reports whether two layouts have the same channels in the same
// order; layout names are not compared, matching soundio_channel_layout_equal.
func (l ChannelLayout) Equal(o ChannelLayout) bool {
	if len(l.Channels) != len(o.Channels) {
		return false
	}
	for i, c := range l.Channels {
		if o.Channels[i] != c {
			return false
		}
	}
	return true
}

// FindChannel returns the index of id within the layout, or -1 if absent.
func (l ChannelLayout) FindChannel(id ChannelId) int {
	for i, c := range l.Channels {
		if c == id {
			return i
		}
	}
	return -1
}

// DetectBuiltin returns the name of the builtin layout matching l's channel
// set, and true, or ("", false) if l does not match any builtin layout.
// This mirrors soundio_channel_layout_detect_builtin, which fills in the
// layout's name as a side effect; callers here get the name back instead
// and decide whether to apply it.
func (l ChannelLayout) DetectBuiltin() (string, bool) {
	for _, b := range BuiltinChannelLayouts {
		if b.Equal(l) {
			return b.Name, true
		}
	}
	return "", false
}

// BuiltinChannelLayouts is the fixed catalog of named layouts ported from
// builtin_channel_layouts in channel_layout.c, ordered identically so
// ChannelLayoutDefault's index lookups stay correct.
var BuiltinChannelLayouts = []ChannelLayout{
	{"Mono", []ChannelId{ChannelIdFrontCenter}},
	{"Stereo", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight}},
	{"2.1", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdLfe}},
	{"3.0", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter}},
	{"3.0 (back)", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdBackCenter}},
	{"3.1", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdLfe}},
	{"4.0", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdBackCenter}},
	{"Quad", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdBackLeft, ChannelIdBackRight}},
	{"Quad (side)", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdSideLeft, ChannelIdSideRight}},
	{"4.1", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdBackCenter, ChannelIdLfe}},
	{"5.0 (back)", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdBackLeft, ChannelIdBackRight}},
	{"5.0 (side)", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdSideLeft, ChannelIdSideRight}},
	{"5.1", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdSideLeft, ChannelIdSideRight, ChannelIdLfe}},
	{"5.1 (back)", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdBackLeft, ChannelIdBackRight, ChannelIdLfe}},
	{"6.0 (side)", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdSideLeft, ChannelIdSideRight, ChannelIdBackCenter}},
	{"6.0 (front)", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdSideLeft, ChannelIdSideRight, ChannelIdFrontLeftCenter, ChannelIdFrontRightCenter}},
	{"Hexagonal", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdBackLeft, ChannelIdBackRight, ChannelIdBackCenter}},
	{"6.1", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdSideLeft, ChannelIdSideRight, ChannelIdBackCenter, ChannelIdLfe}},
	{"6.1 (back)", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdBackLeft, ChannelIdBackRight, ChannelIdBackCenter, ChannelIdLfe}},
	{"6.1 (front)", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdSideLeft, ChannelIdSideRight, ChannelIdFrontLeftCenter, ChannelIdFrontRightCenter, ChannelIdLfe}},
	{"7.0", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdSideLeft, ChannelIdSideRight, ChannelIdBackLeft, ChannelIdBackRight}},
	{"7.0 (front)", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdSideLeft, ChannelIdSideRight, ChannelIdFrontLeftCenter, ChannelIdFrontRightCenter}},
	{"7.1", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdSideLeft, ChannelIdSideRight, ChannelIdBackLeft, ChannelIdBackRight, ChannelIdLfe}},
	{"7.1 (wide)", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdSideLeft, ChannelIdSideRight, ChannelIdFrontLeftCenter, ChannelIdFrontRightCenter, ChannelIdLfe}},
	{"7.1 (wide) (back)", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdBackLeft, ChannelIdBackRight, ChannelIdFrontLeftCenter, ChannelIdFrontRightCenter, ChannelIdLfe}},
	{"Octagonal", []ChannelId{ChannelIdFrontLeft, ChannelIdFrontRight, ChannelIdFrontCenter, ChannelIdSideLeft, ChannelIdSideRight, ChannelIdBackLeft, ChannelIdBackRight, ChannelIdBackCenter}},
}

// Indices into BuiltinChannelLayouts used by ChannelLayoutDefault.
const (
	layoutIdxMono        = 0
	layoutIdxStereo      = 1
	layoutIdx3Point0     = 3
	layoutIdx4Point0     = 6
	layoutIdx5Point0Back = 10
	layoutIdx5Point1Back = 13
	layoutIdx6Point1     = 17
	layoutIdx7Point1     = 22
)

// ChannelLayoutDefault returns the conventional layout for a given channel
// count (mono, stereo, 5.1 back, 7.1, and so on), matching
// soundio_channel_layout_get_default. It reports false for channel counts
// that have no canonical default.
func ChannelLayoutDefault(channelCount int) (ChannelLayout, bool) {
	var idx int
	switch channelCount {
	case 1:
		idx = layoutIdxMono
	case 2:
		idx = layoutIdxStereo
	case 3:
		idx = layoutIdx3Point0
	case 4:
		idx = layoutIdx4Point0
	case 5:
		idx = layoutIdx5Point0Back
	case 6:
		idx = layoutIdx5Point1Back
	case 7:
		idx = layoutIdx6Point1
	case 8:
		idx = layoutIdx7Point1
	default:
		return ChannelLayout{}, false
	}
	return BuiltinChannelLayouts[idx], true
}

// BestMatchingChannelLayout returns the first entry of preferredLayouts, in
// preferredLayouts' order, that is also present in availableLayouts, or the
// zero ChannelLayout and false if none of preferredLayouts is present.
func BestMatchingChannelLayout(preferredLayouts, availableLayouts []ChannelLayout) (ChannelLayout, bool) {
	for _, pref := range preferredLayouts {
		for _, avail := range availableLayouts {
			if pref.Equal(avail) {
				return avail, true
			}
		}
	}
	return ChannelLayout{}, false
}

// SortChannelLayoutsByChannelCount sorts layouts in place, most channels
// first, matching the ordering soundio_sort_channel_layouts guarantees so
// callers that want "richest layout available" can just take index 0.
func SortChannelLayoutsByChannelCount(layouts []ChannelLayout) {
	for i := 1; i < len(layouts); i++ {
		for j := i; j > 0 && layouts[j].ChannelCount() > layouts[j-1].ChannelCount(); j-- {
			layouts[j], layouts[j-1] = layouts[j-1], layouts[j]
		}
	}
}

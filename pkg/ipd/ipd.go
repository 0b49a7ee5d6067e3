// Package ipd holds the intermediate project document: the normalized form of a
// live set that the MIDI encoders consume.
package ipd

// BeatTicks is the number of output ticks per IPD beat.
const BeatTicks = 30

type TrackKind int

const (
	KindUnknown TrackKind = iota
	KindNote
	KindAudio
	KindGroup
	KindReturn
)

func (k TrackKind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindAudio:
		return "audio"
	case KindGroup:
		return "group"
	case KindReturn:
		return "return"
	}
	return "unknown"
}

type Color [3]float64

type Track struct {
	ID          string
	Kind        TrackKind
	Name        string
	Color       Color
	Pan         float64
	Vol         float64
	GroupParent string
}

type Breakpoint struct {
	Tick  int64
	Value float64
}

type PointList struct {
	StartTick    int64
	DurationTick int64
	Points       []Breakpoint
}

// PitchPoint is one per-note pitch bend point; Beat is relative to the note start.
type PitchPoint struct {
	Beat  float64
	Value float64
}

type Note struct {
	ID           int64
	Key          int
	StartBeat    float64
	DurationBeat float64
	Velocity     float64
	OffVelocity  float64
	Probability  float64
	Enabled      bool
	PitchBend    []PitchPoint
}

type LoopKind int

const (
	// Cut plays [Start, End) of the clip content once.
	Cut LoopKind = iota + 1
	// Loop plays from Start and repeats [LoopStart, LoopEnd).
	Loop
)

// LoopOrCut positions are in beats relative to the clip content.
type LoopOrCut struct {
	Kind      LoopKind
	Start     float64
	End       float64
	LoopStart float64
	LoopEnd   float64
}

type Placement struct {
	StartBeat    float64
	DurationBeat float64
	Name         string
	Color        Color
	Muted        bool
	Notes        []Note
	Loop         *LoopOrCut
}

type ValueKind int

const (
	ValueFloat ValueKind = iota
	ValueBool
	ValueInt
)

func (k ValueKind) String() string {
	switch k {
	case ValueBool:
		return "bool"
	case ValueInt:
		return "int"
	}
	return "float"
}

type Document struct {
	Version  string
	TempoBPM float64
	Master   Track
	Tracks   []Track

	// Placements are keyed by Track.ID.
	Placements map[string][]Placement
	Automation Automation

	Devices    []DeviceRecord
	Presets    []PluginPreset
	AudioFiles []string
}

func NewDocument() *Document {
	return &Document{
		Placements: make(map[string][]Placement),
	}
}

// Track looks a track up by id.
func (d *Document) Track(id string) (Track, bool) {
	for _, t := range d.Tracks {
		if t.ID == id {
			return t, true
		}
	}
	return Track{}, false
}

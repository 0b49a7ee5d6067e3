// Package midi renders project documents as MIDI event streams and reads
// standard MIDI files back into the same event model.
package midi

// TicksPerQuarterNote is the resolution of every bundle the encoders produce.
const TicksPerQuarterNote = 480

type Kind uint8

const (
	KindNoteOn Kind = iota + 1
	KindNoteOff
	KindControlChange
	KindProgramChange
	KindTimeSignature
	KindTempo
	KindTrackName
	KindSequencerData
	KindEndOfTrack
)

func (k Kind) String() string {
	switch k {
	case KindNoteOn:
		return "note_on"
	case KindNoteOff:
		return "note_off"
	case KindControlChange:
		return "control_change"
	case KindProgramChange:
		return "program_change"
	case KindTimeSignature:
		return "time_signature"
	case KindTempo:
		return "set_tempo"
	case KindTrackName:
		return "track_name"
	case KindSequencerData:
		return "sequencer_specific"
	case KindEndOfTrack:
		return "end_of_track"
	}
	return "unknown"
}

// Event is one timed message of a stream. Delta is in ticks since the previous event.
// Only the fields of the event's kind are set.
type Event struct {
	Delta uint32
	Kind  Kind

	Channel    uint8
	Key        uint8
	Velocity   uint8
	Controller uint8
	Value      uint8
	Program    uint8

	Numerator           uint8
	Denominator         uint8
	MicrosecondsPerBeat uint32

	Text string
	Data []byte
}

// Stream is one track of a bundle.
type Stream struct {
	Name   string
	Events []Event
}

// Bundle is the content of one standard MIDI file: a meta stream followed by content streams.
type Bundle struct {
	Name                string
	TicksPerQuarterNote uint16
	Streams             []*Stream
}

func newBundle(name string) *Bundle {
	return &Bundle{Name: name, TicksPerQuarterNote: TicksPerQuarterNote}
}

// timed is an event at an absolute tick, before delta encoding.
type timed struct {
	tick int64
	ev   Event
}

// appendDeltas converts absolute ticks to deltas; the input must be sorted.
func appendDeltas(dst []Event, events []timed) []Event {
	last := int64(0)
	for _, t := range events {
		ev := t.ev
		ev.Delta = uint32(t.tick - last)
		last = t.tick
		dst = append(dst, ev)
	}
	return dst
}

func trackName(name string) Event {
	return Event{Kind: KindTrackName, Text: name}
}

func endOfTrack() Event {
	return Event{Kind: KindEndOfTrack}
}

// metaStream carries the 4/4 time signature, the tempo and an optional name.
func metaStream(name string, bpm float64) *Stream {
	s := &Stream{Name: name}
	s.Events = append(s.Events,
		Event{Kind: KindTimeSignature, Numerator: 4, Denominator: 4},
		Event{Kind: KindTempo, MicrosecondsPerBeat: tempoMicroseconds(bpm)},
	)
	if name != "" {
		s.Events = append(s.Events, trackName(name))
	}
	s.Events = append(s.Events, endOfTrack())
	return s
}

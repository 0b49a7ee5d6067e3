package midi

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// message converts an event to its wire form. End of track is handled by the caller.
func message(ev Event) ([]byte, error) {
	switch ev.Kind {
	case KindNoteOn:
		return gomidi.NoteOn(ev.Channel, ev.Key, ev.Velocity), nil
	case KindNoteOff:
		return gomidi.NoteOffVelocity(ev.Channel, ev.Key, ev.Velocity), nil
	case KindControlChange:
		return gomidi.ControlChange(ev.Channel, ev.Controller, ev.Value), nil
	case KindProgramChange:
		return gomidi.ProgramChange(ev.Channel, ev.Program), nil
	case KindTimeSignature:
		return smf.MetaTimeSig(ev.Numerator, ev.Denominator, 24, 8), nil
	case KindTempo:
		mpb := ev.MicrosecondsPerBeat
		return []byte{0xff, 0x51, 0x03, byte(mpb >> 16), byte(mpb >> 8), byte(mpb)}, nil
	case KindTrackName:
		return smf.MetaTrackSequenceName(ev.Text), nil
	case KindSequencerData:
		return smf.MetaSequencerData(ev.Data), nil
	}
	return nil, fmt.Errorf("%w: event kind %d", ErrInvalidArgument, ev.Kind)
}

// SMF builds a format 1 file with one track per stream.
func (b *Bundle) SMF() (*smf.SMF, error) {
	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(b.TicksPerQuarterNote)

	for i, st := range b.Streams {
		var tr smf.Track
		closed := false
		for _, ev := range st.Events {
			if ev.Kind == KindEndOfTrack {
				tr.Close(ev.Delta)
				closed = true
				break
			}
			msg, err := message(ev)
			if err != nil {
				return nil, errors.Wrapf(err, "stream %d %q", i, st.Name)
			}
			tr.Add(ev.Delta, msg)
		}
		if !closed {
			tr.Close(0)
		}
		if err := s.Add(tr); err != nil {
			return nil, errors.Wrapf(err, "add stream %d %q", i, st.Name)
		}
	}
	return s, nil
}

// WriteTo writes the bundle as a standard MIDI file.
func (b *Bundle) WriteTo(w io.Writer) (int64, error) {
	s, err := b.SMF()
	if err != nil {
		return 0, err
	}
	n, err := s.WriteTo(w)
	if err != nil {
		return n, errors.Wrapf(err, "write %s", b.Name)
	}
	return n, nil
}

// String formats an event the way mido prints messages.
func (ev Event) String() string {
	switch ev.Kind {
	case KindNoteOn, KindNoteOff:
		return fmt.Sprintf("%s channel=%d note=%d velocity=%d time=%d", ev.Kind, ev.Channel, ev.Key, ev.Velocity, ev.Delta)
	case KindControlChange:
		return fmt.Sprintf("%s channel=%d control=%d value=%d time=%d", ev.Kind, ev.Channel, ev.Controller, ev.Value, ev.Delta)
	case KindProgramChange:
		return fmt.Sprintf("%s channel=%d program=%d time=%d", ev.Kind, ev.Channel, ev.Program, ev.Delta)
	case KindTimeSignature:
		return fmt.Sprintf("MetaMessage('%s', numerator=%d, denominator=%d, time=%d)", ev.Kind, ev.Numerator, ev.Denominator, ev.Delta)
	case KindTempo:
		return fmt.Sprintf("MetaMessage('%s', tempo=%d, time=%d)", ev.Kind, ev.MicrosecondsPerBeat, ev.Delta)
	case KindTrackName:
		return fmt.Sprintf("MetaMessage('%s', name=%q, time=%d)", ev.Kind, ev.Text, ev.Delta)
	case KindSequencerData:
		return fmt.Sprintf("MetaMessage('%s', data=% x, time=%d)", ev.Kind, ev.Data, ev.Delta)
	}
	return fmt.Sprintf("MetaMessage('%s', time=%d)", ev.Kind, ev.Delta)
}

// Dump writes a readable listing of every stream.
func (b *Bundle) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s: %d ticks per beat, %d tracks\n", b.Name, b.TicksPerQuarterNote, len(b.Streams)); err != nil {
		return err
	}
	for i, s := range b.Streams {
		if _, err := fmt.Fprintf(w, "Track %d: %s\n", i, s.Name); err != nil {
			return err
		}
		r := newBeatRange(int64(b.TicksPerQuarterNote))
		tick := int64(0)
		for _, ev := range s.Events {
			tick += int64(ev.Delta)
			r.seek(tick)
			if _, err := fmt.Fprintf(w, "  %-6s %s\n", r.position(), ev); err != nil {
				return err
			}
		}
	}
	return nil
}

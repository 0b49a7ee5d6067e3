package midi

import (
	"math"
	"sort"

	"github.com/Garik-/alsmidi/pkg/ipd"
	"go.uber.org/zap"
)

const offVelocity = 64

func beatTick(beat float64) int64 {
	return int64(math.Round(beat * ipd.BeatTicks))
}

func velocity(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * maxValue))
}

// EncodeNotes renders the note tracks of a document. Muted placements, disabled
// notes (Enabled false), keys outside 0..127 and notes shorter than one tick are
// left out. It reports false when there is no tempo or no track has a playable note.
func EncodeNotes(doc *ipd.Document, opts Options) (*Bundle, bool) {
	log := opts.logger().Named("notes")
	if doc == nil || !validTempo(doc.TempoBPM) {
		log.Info("no tempo, nothing to encode")
		return nil, false
	}

	bundle := newBundle(opts.Name)
	bundle.Streams = append(bundle.Streams, metaStream(opts.Name, doc.TempoBPM))
	channels := opts.channels(log)

	for _, track := range doc.Tracks {
		if track.Kind != ipd.KindNote {
			continue
		}
		events := trackNotes(track, doc.Placements[track.ID], log)
		if len(events) == 0 {
			log.Debug("skip track without notes", zap.String("track", track.ID))
			continue
		}

		ch := channels.Next()
		for i := range events {
			events[i].ev.Channel = ch
		}

		s := &Stream{Name: track.Name}
		s.Events = append(s.Events,
			trackName(track.Name),
			Event{Kind: KindProgramChange, Channel: ch, Program: opts.Program & 0x7f},
		)
		s.Events = append(s.Events, colorEvents(track.Color)...)
		s.Events = appendDeltas(s.Events, events)
		s.Events = append(s.Events, endOfTrack())
		bundle.Streams = append(bundle.Streams, s)

		log.Debug("note stream",
			zap.String("track", track.ID),
			zap.String("name", track.Name),
			zap.Uint8("channel", ch),
			zap.Int("events", len(events)))
	}

	if len(bundle.Streams) == 1 {
		log.Info("no note tracks to encode")
		return nil, false
	}
	return bundle, true
}

// trackNotes returns the sorted note on/off pairs of a track, channel unset.
func trackNotes(track ipd.Track, placements []ipd.Placement, log *zap.Logger) []timed {
	var events []timed
	for _, p := range placements {
		if p.Muted {
			continue
		}
		for _, n := range p.Notes {
			if !n.Enabled {
				continue
			}
			if n.Key < 0 || n.Key > maxValue {
				log.Debug("skip note out of range", zap.String("track", track.ID), zap.Int("key", n.Key))
				continue
			}
			on := beatTick(p.StartBeat + n.StartBeat)
			dur := beatTick(n.DurationBeat)
			if dur <= 0 || on < 0 {
				log.Debug("skip note",
					zap.String("track", track.ID),
					zap.Int64("tick", on),
					zap.Int64("duration", dur))
				continue
			}
			key := uint8(n.Key)
			events = append(events,
				timed{tick: on, ev: Event{Kind: KindNoteOn, Key: key, Velocity: velocity(n.Velocity)}},
				timed{tick: on + dur, ev: Event{Kind: KindNoteOff, Key: key, Velocity: offVelocity}},
			)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].tick < events[j].tick
	})
	return events
}

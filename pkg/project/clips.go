package project

import (
	"github.com/Garik-/alsmidi/pkg/ipd"
	"github.com/Garik-/alsmidi/pkg/tree"
	"go.uber.org/zap"
)

// clip positions are stored in native units of a quarter beat
const beatsPerUnit = 4

// per-note controller carrying pitch bend
const pitchBendCC = -2

const pitchBendRange = 170.0

func (r *run) midiClips(events *tree.Node, track ipd.Track, log *zap.Logger) []ipd.Placement {
	var out []ipd.Placement
	for _, clip := range events.All("MidiClip") {
		p := midiClip(clip, track, log)
		if len(p.Notes) == 0 {
			log.Debug("drop empty clip", zap.String("clip", p.Name), zap.Float64("start", p.StartBeat))
			continue
		}
		out = append(out, p)
	}
	return out
}

func midiClip(clip *tree.Node, track ipd.Track, log *zap.Logger) ipd.Placement {
	start := tree.Float(clip, "CurrentStart", 0)
	end := tree.Float(clip, "CurrentEnd", 0)

	p := ipd.Placement{
		StartBeat:    start * beatsPerUnit,
		DurationBeat: (end - start) * beatsPerUnit,
		Name:         tree.Value(clip, "Name", ""),
		Color:        paletteColor(tree.Int(clip, "Color", -1), track.Color),
		Muted:        tree.Bool(clip, "Disabled", false),
	}

	if loop := clip.Child("Loop"); loop != nil {
		loopStart := tree.Float(loop, "LoopStart", 0) * beatsPerUnit
		loopEnd := tree.Float(loop, "LoopEnd", 1) * beatsPerUnit
		if tree.Bool(loop, "LoopOn", false) {
			p.Loop = &ipd.LoopOrCut{
				Kind:      ipd.Loop,
				Start:     tree.Float(loop, "StartRelative", 0) * beatsPerUnit,
				LoopStart: loopStart,
				LoopEnd:   loopEnd,
			}
		} else {
			p.Loop = &ipd.LoopOrCut{Kind: ipd.Cut, Start: loopStart, End: loopEnd}
		}
	}

	notes := clip.Child("Notes")
	p.Notes = clipNotes(notes, log)
	attachPitchBend(notes, p.Notes, log)
	return p
}

// clipNotes reads every key track. Notes without a positive NoteId get a
// negative synthetic id, so per-note envelopes never match them.
func clipNotes(notes *tree.Node, log *zap.Logger) []ipd.Note {
	var out []ipd.Note
	synthetic := int64(0)

	for _, kt := range notes.Path("KeyTracks").All("KeyTrack") {
		key := int(tree.Int(kt, "MidiKey", 60))
		for _, ev := range kt.Path("Notes").All("MidiNoteEvent") {
			n := ipd.Note{
				ID:           tree.AttrInt(ev, "NoteId", 0),
				Key:          key,
				StartBeat:    tree.AttrFloat(ev, "Time", 0) * beatsPerUnit,
				DurationBeat: tree.AttrFloat(ev, "Duration", 0) * beatsPerUnit,
				Velocity:     tree.AttrFloat(ev, "Velocity", 100) / 100,
				OffVelocity:  tree.AttrFloat(ev, "OffVelocity", 64) / 100,
				Probability:  tree.AttrFloat(ev, "Probability", 1),
				Enabled:      tree.AttrBool(ev, "IsEnabled", true),
			}
			if n.DurationBeat <= 0 {
				log.Debug("drop note with non-positive duration",
					zap.Int("key", key), zap.Float64("start", n.StartBeat), zap.Float64("duration", n.DurationBeat))
				continue
			}
			if n.ID <= 0 {
				synthetic--
				n.ID = synthetic
			}
			out = append(out, n)
		}
	}
	return out
}

// attachPitchBend joins per-note event lists onto notes by NoteId.
func attachPitchBend(notes *tree.Node, list []ipd.Note, log *zap.Logger) {
	lists := notes.Path("PerNoteEventStore", "EventLists").All("PerNoteEventList")
	if len(lists) == 0 {
		return
	}

	index := make(map[int64]*ipd.Note, len(list))
	for i := range list {
		if id := list[i].ID; id > 0 {
			if _, dup := index[id]; !dup {
				index[id] = &list[i]
			}
		}
	}

	for _, el := range lists {
		if tree.AttrInt(el, "CC", 0) != pitchBendCC {
			continue
		}
		id := tree.AttrInt(el, "NoteId", 0)
		note, ok := index[id]
		if !ok {
			log.Debug("per-note envelope without note", zap.Int64("note", id))
			continue
		}
		var points []ipd.PitchPoint
		for _, ev := range el.Path("Events").All("PerNoteEvent") {
			points = append(points, ipd.PitchPoint{
				Beat:  tree.AttrFloat(ev, "TimeOffset", 0) * beatsPerUnit,
				Value: tree.AttrFloat(ev, "Value", 0) / pitchBendRange,
			})
		}
		note.PitchBend = points
	}
}

// audioClips records the sample path of every unfrozen audio clip.
func (r *run) audioClips(events *tree.Node) {
	for _, clip := range events.All("AudioClip") {
		if tree.Float(clip, "FreezeStart", 0) != 0 || tree.Float(clip, "FreezeEnd", 0) != 0 {
			continue
		}
		path := tree.Value(clip.Path("SampleRef", "FileRef"), "RelativePath", "")
		if path == "" {
			continue
		}
		if _, seen := r.audioFiles[path]; seen {
			continue
		}
		r.audioFiles[path] = struct{}{}
		r.doc.AudioFiles = append(r.doc.AudioFiles, path)
	}
}

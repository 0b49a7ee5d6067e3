package project

import (
	"github.com/Garik-/alsmidi/pkg/ipd"
)

// segment is one loop-free slice of a looped placement.
type segment struct {
	pos, dur   float64
	start, end float64
}

// cutLoop unrolls a loop into segments covering dur beats from pos. Content is
// read from start, and every time reading reaches loopEnd it resumes at loopStart.
func cutLoop(pos, dur, start, loopStart, loopEnd float64) []segment {
	if loopEnd <= loopStart {
		return []segment{{pos, dur, start, start + dur}}
	}
	if loopStart > start {
		return loopBefore(pos, dur, start, loopStart, loopEnd)
	}
	return loopAfter(pos, dur, start, loopStart, loopEnd)
}

// loopBefore handles a read position ahead of the loop: it plays through to loopEnd once first.
func loopBefore(pos, dur, start, loopStart, loopEnd float64) []segment {
	var out []segment
	size := loopEnd - loopStart

	if first := min(dur, loopEnd-start); first > 0 {
		out = append(out, segment{pos, first, start, start + first})
		pos += first
		dur -= first
	}
	for dur > 0 {
		d := min(dur, size)
		out = append(out, segment{pos, d, loopStart, loopStart + d})
		pos += d
		dur -= d
	}
	return out
}

func loopAfter(pos, dur, start, loopStart, loopEnd float64) []segment {
	var out []segment
	read := start
	for dur > 0 {
		if read < loopStart || read >= loopEnd {
			read = loopStart
		}
		d := min(dur, loopEnd-read)
		out = append(out, segment{pos, d, read, read + d})
		pos += d
		dur -= d
		read += d
	}
	return out
}

// removeLoops replaces every looped placement with one cut placement per segment.
func removeLoops(placements []ipd.Placement) []ipd.Placement {
	out := make([]ipd.Placement, 0, len(placements))
	for _, p := range placements {
		if p.Loop == nil || p.Loop.Kind != ipd.Loop {
			out = append(out, p)
			continue
		}
		for _, s := range cutLoop(p.StartBeat, p.DurationBeat, p.Loop.Start, p.Loop.LoopStart, p.Loop.LoopEnd) {
			c := p
			c.StartBeat = s.pos
			c.DurationBeat = s.dur
			c.Loop = &ipd.LoopOrCut{Kind: ipd.Cut, Start: s.start, End: s.end}
			out = append(out, c)
		}
	}
	return out
}

// removeCut keeps the notes inside [start, start+duration) and moves them to the placement origin.
func removeCut(p *ipd.Placement) {
	if p.Loop == nil || p.Loop.Kind != ipd.Cut {
		return
	}
	start := p.Loop.Start
	end := start + p.DurationBeat

	notes := make([]ipd.Note, 0, len(p.Notes))
	for _, n := range p.Notes {
		if n.StartBeat >= end {
			continue
		}
		n.StartBeat -= start
		if n.StartBeat < 0 {
			continue
		}
		notes = append(notes, n)
	}
	p.Notes = notes
	p.Loop = nil
}

// normalize flattens loop and cut metadata of every note placement and drops
// placements left without notes. Placements without loop metadata are untouched,
// so running it twice is the same as running it once.
func normalize(doc *ipd.Document) {
	for id, placements := range doc.Placements {
		placements = removeLoops(placements)
		kept := placements[:0]
		for i := range placements {
			removeCut(&placements[i])
			if len(placements[i].Notes) > 0 {
				kept = append(kept, placements[i])
			}
		}
		if len(kept) == 0 {
			delete(doc.Placements, id)
			continue
		}
		doc.Placements[id] = kept
	}
}

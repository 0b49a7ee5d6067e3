package project

import (
	"math"
	"sort"

	"github.com/Garik-/alsmidi/pkg/ipd"
	"github.com/Garik-/alsmidi/pkg/tree"
	"go.uber.org/zap"
)

// Pending accumulates envelope point lists by target id until binding.
// Ids keep first-seen order.
type Pending struct {
	order   []uint32
	entries map[uint32]*pendingEntry
}

type pendingEntry struct {
	kind  ipd.ValueKind
	lists []ipd.PointList
}

func NewPending() *Pending {
	return &Pending{entries: make(map[uint32]*pendingEntry)}
}

func (p *Pending) Add(id uint32, kind ipd.ValueKind, list ipd.PointList) {
	e, ok := p.entries[id]
	if !ok {
		e = &pendingEntry{kind: kind}
		p.entries[id] = e
		p.order = append(p.order, id)
	}
	e.lists = append(e.lists, list)
}

// Each visits ids in first-seen order.
func (p *Pending) Each(fn func(id uint32, kind ipd.ValueKind, lists []ipd.PointList)) {
	for _, id := range p.order {
		e := p.entries[id]
		fn(id, e.kind, e.lists)
	}
}

func (p *Pending) Len() int {
	return len(p.order)
}

// ticksPerUnit converts envelope time (native beat units) to output ticks: 480 / 16.
const ticksPerUnit = 30

func envelopeTick(t float64) int64 {
	return int64(math.Round(math.Max(0, t) * ticksPerUnit))
}

// collectEnvelopes reads the automation envelopes of a track or the master track.
func collectEnvelopes(owner *tree.Node, pending *Pending, log *zap.Logger) int {
	envs := owner.Path("AutomationEnvelopes", "Envelopes").All("AutomationEnvelope")
	n := 0
	for _, env := range envs {
		id := tree.ParseInt(tree.Value(env.Child("EnvelopeTarget"), "PointeeId", "-1"), -1)
		if id <= 0 || id > int64(^uint32(0)) {
			log.Debug("skip envelope with invalid pointee", zap.Int64("id", id))
			continue
		}

		kind, points := envelopePoints(env.Path("Automation", "Events"))
		if len(points) == 0 {
			continue
		}

		pending.Add(uint32(id), kind, ipd.PointList{Points: points})
		n++
	}
	return n
}

func envelopePoints(events *tree.Node) (ipd.ValueKind, []ipd.Breakpoint) {
	kind := ipd.ValueFloat
	var points []ipd.Breakpoint

	for _, ev := range events.Elements() {
		tick := envelopeTick(tree.AttrFloat(ev, "Time", 0))
		switch ev.Tag {
		case "FloatEvent":
			points = append(points, ipd.Breakpoint{Tick: tick, Value: tree.AttrFloat(ev, "Value", 0)})
		case "BoolEvent":
			kind = ipd.ValueBool
			v := 0.0
			if tree.AttrBool(ev, "Value", false) {
				v = 1
			}
			points = append(points, ipd.Breakpoint{Tick: tick, Value: v})
		case "EnumEvent":
			kind = ipd.ValueInt
			points = append(points, ipd.Breakpoint{Tick: tick, Value: float64(tree.AttrInt(ev, "Value", 0))})
		}
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Tick < points[j].Tick
	})
	return kind, points
}

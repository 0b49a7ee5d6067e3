package midi

import (
	"math"
	"sort"

	"github.com/Garik-/alsmidi/pkg/ipd"
	"go.uber.org/zap"
)

// valueRange is the raw span of a numeric parameter across all of its point lists.
type valueRange struct {
	min, max float64
}

func (r valueRange) scale(v float64) float64 {
	if r.max == r.min {
		if v >= r.max {
			return maxValue
		}
		return 0
	}
	v = (v - r.min) / (r.max - r.min) * maxValue
	return math.Max(0, math.Min(maxValue, v))
}

func defaultRange(kind ipd.ValueKind) valueRange {
	if kind == ipd.ValueInt {
		return valueRange{0, maxValue}
	}
	return valueRange{0, 1}
}

func paramRange(p *ipd.Parameter) (valueRange, bool) {
	r := valueRange{min: math.Inf(1), max: math.Inf(-1)}
	found := false
	for _, l := range p.PointLists {
		for _, b := range l.Points {
			r.min = math.Min(r.min, b.Value)
			r.max = math.Max(r.max, b.Value)
			found = true
		}
	}
	if !found {
		return defaultRange(p.Kind), false
	}
	return r, true
}

// scaled maps a point list onto controller range.
func scaled(points []ipd.Breakpoint, kind ipd.ValueKind, r valueRange) []ipd.Breakpoint {
	out := make([]ipd.Breakpoint, len(points))
	for i, b := range points {
		v := r.scale(b.Value)
		if kind == ipd.ValueBool {
			v = 0
			if b.Value >= 0.5 {
				v = maxValue
			}
		}
		out[i] = ipd.Breakpoint{Tick: b.Tick, Value: v}
	}
	return out
}

// controlPoints interpolates every point list of a parameter, shifts it to the
// list start and merges the result. Later lists overwrite earlier ones on the same tick.
func controlPoints(p *ipd.Parameter, ip Interpolator, log *zap.Logger) []ControlPoint {
	r, ok := paramRange(p)
	if !ok && p.Kind != ipd.ValueBool {
		log.Debug("no values, using default range",
			zap.String("param", p.Path),
			zap.Stringer("kind", p.Kind),
			zap.Float64("min", r.min),
			zap.Float64("max", r.max))
	}

	values := make(map[int64]uint8)
	for _, l := range p.PointLists {
		for _, cp := range ip.Interpolate(scaled(l.Points, p.Kind, r)) {
			values[cp.Tick+l.StartTick] = cp.Value
		}
	}

	out := make([]ControlPoint, 0, len(values))
	for tick, v := range values {
		if tick < 0 {
			continue
		}
		out = append(out, ControlPoint{Tick: tick, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Tick < out[j].Tick
	})
	return out
}

func automationName(file, track string) string {
	if file == "" {
		return "Automation_" + track
	}
	return file + "_Automation_" + track
}

// EncodeAutomation renders one bundle per automation group. Groups without a single
// controller event are left out; a document without tempo yields nothing.
func EncodeAutomation(doc *ipd.Document, opts Options) []*Bundle {
	log := opts.logger().Named("automation")
	if doc == nil || !validTempo(doc.TempoBPM) {
		log.Info("no tempo, nothing to encode")
		return nil
	}

	ip := Interpolator{Step: opts.gridTicks(), Curve: opts.Curve}
	cc := opts.controller()

	var bundles []*Bundle
	for _, g := range doc.Automation.Groups {
		name := automationName(opts.Name, g.TrackName)
		bundle := newBundle(name)
		bundle.Streams = append(bundle.Streams, metaStream(name, doc.TempoBPM))
		channels := opts.channels(log)

		for _, p := range g.Params {
			points := controlPoints(p, ip, log)
			if len(points) == 0 {
				log.Debug("skip empty parameter", zap.String("param", p.Path))
				continue
			}
			ch := channels.Next()
			events := make([]timed, len(points))
			for i, cp := range points {
				events[i] = timed{tick: cp.Tick, ev: Event{
					Kind:       KindControlChange,
					Channel:    ch,
					Controller: cc,
					Value:      cp.Value,
				}}
			}

			s := &Stream{Name: p.Path}
			s.Events = append(s.Events, trackName(p.Path))
			s.Events = appendDeltas(s.Events, events)
			s.Events = append(s.Events, endOfTrack())
			bundle.Streams = append(bundle.Streams, s)
		}

		if len(bundle.Streams) == 1 {
			log.Debug("skip empty automation group", zap.Strings("location", g.Location))
			continue
		}
		log.Debug("automation bundle",
			zap.String("name", name),
			zap.Int("streams", len(bundle.Streams)-1))
		bundles = append(bundles, bundle)
	}
	return bundles
}

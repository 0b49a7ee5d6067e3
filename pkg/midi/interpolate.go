package midi

import (
	"math"
	"sort"

	"github.com/Garik-/alsmidi/pkg/ipd"
)

const maxValue = 127

// ControlPoint is one dense controller value.
type ControlPoint struct {
	Tick  int64
	Value uint8
}

type Curve int

const (
	Linear Curve = iota
	// Logarithmic rises fast and flattens towards the next breakpoint.
	Logarithmic
)

// Interpolator fills the gaps between breakpoints scaled to 0..127.
// Step is the tick distance between generated points; 1 yields one point per tick.
type Interpolator struct {
	Step  int64
	Curve Curve
}

// Interpolate fills every tick between breakpoints linearly.
func Interpolate(points []ipd.Breakpoint) []ControlPoint {
	return Interpolator{Step: 1}.Interpolate(points)
}

// Interpolate expects points sorted by tick. Where a tick is written more than once
// the later value wins, so equal ticks in the input keep the jump to the second value.
// The output is sorted, clamped to 0..127 and always contains the first and last ticks.
func (ip Interpolator) Interpolate(points []ipd.Breakpoint) []ControlPoint {
	if len(points) < 2 {
		out := make([]ControlPoint, 0, len(points))
		for _, p := range points {
			out = append(out, ControlPoint{Tick: p.Tick, Value: toValue(p.Value)})
		}
		return out
	}

	step := ip.Step
	if step < 1 {
		step = 1
	}

	values := make(map[int64]uint8, len(points))
	for i := 0; i+1 < len(points); i++ {
		a, b := points[i], points[i+1]
		values[a.Tick] = toValue(a.Value)
		if a.Tick == b.Tick || a.Value == b.Value {
			continue
		}

		dt := b.Tick - a.Tick
		steps := dt / step
		if steps < 1 {
			steps = 1
		}
		for s := int64(1); s < steps; s++ {
			t := float64(s) / float64(steps)
			values[a.Tick+s*dt/steps] = toValue(ip.at(a.Value, b.Value, t))
		}
	}
	last := points[len(points)-1]
	values[last.Tick] = toValue(last.Value)

	out := make([]ControlPoint, 0, len(values))
	for tick, v := range values {
		out = append(out, ControlPoint{Tick: tick, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Tick < out[j].Tick
	})
	return out
}

func (ip Interpolator) at(from, to, t float64) float64 {
	if ip.Curve == Logarithmic {
		t = math.Log10(1 + 9*t)
	}
	return from + (to-from)*t
}

func toValue(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(maxValue, v))))
}

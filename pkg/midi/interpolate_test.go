package midi

import (
	"testing"

	"github.com/Garik-/alsmidi/pkg/ipd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func points(pairs ...float64) []ipd.Breakpoint {
	var out []ipd.Breakpoint
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, ipd.Breakpoint{Tick: int64(pairs[i]), Value: pairs[i+1]})
	}
	return out
}

func TestInterpolateLinear(t *testing.T) {
	got := Interpolate(points(0, 0, 10, 100))
	require.Len(t, got, 11)
	for i, cp := range got {
		assert.Equal(t, int64(i), cp.Tick)
		assert.Equal(t, uint8(i*10), cp.Value)
	}
}

func TestInterpolateClamps(t *testing.T) {
	got := Interpolate(points(0, -50, 10, 200))
	require.Len(t, got, 11)
	assert.Equal(t, uint8(0), got[0].Value)
	assert.Equal(t, uint8(127), got[10].Value)
	for _, cp := range got {
		assert.LessOrEqual(t, cp.Value, uint8(127))
	}
}

func TestInterpolateLaterWins(t *testing.T) {
	got := Interpolate(points(0, 0, 5, 50, 5, 60, 10, 100))
	require.Len(t, got, 11)
	assert.Equal(t, ControlPoint{Tick: 5, Value: 60}, got[5])
	assert.Equal(t, uint8(40), got[4].Value)
	assert.Equal(t, uint8(100), got[10].Value)
}

func TestInterpolateIdempotent(t *testing.T) {
	dense := Interpolate(points(0, 3, 1, 7, 2, 7, 3, 100, 4, 0))

	again := make([]ipd.Breakpoint, len(dense))
	for i, cp := range dense {
		again[i] = ipd.Breakpoint{Tick: cp.Tick, Value: float64(cp.Value)}
	}
	assert.Equal(t, dense, Interpolate(again))
}

func TestInterpolateShort(t *testing.T) {
	assert.Empty(t, Interpolate(nil))
	assert.Equal(t, []ControlPoint{{Tick: 7, Value: 127}}, Interpolate(points(7, 300)))
}

func TestInterpolatorGrid(t *testing.T) {
	ip := Interpolator{Step: 30}

	assert.Equal(t, []ControlPoint{{0, 0}, {30, 127}}, ip.Interpolate(points(0, 0, 30, 127)))
	assert.Equal(t, []ControlPoint{{0, 0}, {30, 64}, {60, 127}}, ip.Interpolate(points(0, 0, 60, 127)))
	// shorter than one step
	assert.Equal(t, []ControlPoint{{0, 0}, {10, 100}}, ip.Interpolate(points(0, 0, 10, 100)))
}

func TestInterpolatorLogarithmic(t *testing.T) {
	ip := Interpolator{Step: 5, Curve: Logarithmic}
	got := ip.Interpolate(points(0, 0, 10, 100))

	assert.Equal(t, []ControlPoint{{0, 0}, {5, 74}, {10, 100}}, got)
}

func TestInterpolateFlat(t *testing.T) {
	got := Interpolator{Step: 30}.Interpolate(points(0, 64, 300, 64))
	assert.Equal(t, []ControlPoint{{0, 64}, {300, 64}}, got)
}

package project

import (
	"testing"

	"github.com/Garik-/alsmidi/pkg/ipd"
	"github.com/Garik-/alsmidi/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func envelope(id string, events ...*tree.Node) *tree.Node {
	return tree.New("AutomationEnvelope").Add(
		tree.New("EnvelopeTarget").Add(tree.New("PointeeId", "Value", id)),
		tree.New("Automation").Add(tree.New("Events").Add(events...)),
	)
}

func event(tag, time, value string) *tree.Node {
	return tree.New(tag, "Time", time, "Value", value)
}

func owner(envs ...*tree.Node) *tree.Node {
	return tree.New("MidiTrack").Add(
		tree.New("AutomationEnvelopes").Add(tree.New("Envelopes").Add(envs...)),
	)
}

func TestEnvelopeTick(t *testing.T) {
	assert.Equal(t, int64(0), envelopeTick(-3))
	assert.Equal(t, int64(30), envelopeTick(1))
	assert.Equal(t, int64(8), envelopeTick(0.25))
	assert.Equal(t, int64(4), envelopeTick(0.125))
}

func TestCollectEnvelopes(t *testing.T) {
	track := owner(
		envelope("5",
			event("FloatEvent", "2", "0.5"),
			event("FloatEvent", "-63072000", "0.1"),
			event("FloatEvent", "1", "0.2"),
		),
		envelope("6", event("BoolEvent", "0", "true"), event("BoolEvent", "1", "false")),
		envelope("7", event("EnumEvent", "0", "3")),
		envelope("0", event("FloatEvent", "0", "1")),
		envelope("x", event("FloatEvent", "0", "1")),
		envelope("8"),
		envelope("5", event("FloatEvent", "4", "1")),
	)

	pending := NewPending()
	n := collectEnvelopes(track, pending, zap.NewNop())
	assert.Equal(t, 4, n)
	assert.Equal(t, 3, pending.Len())

	type got struct {
		kind  ipd.ValueKind
		lists []ipd.PointList
	}
	seen := map[uint32]got{}
	var order []uint32
	pending.Each(func(id uint32, kind ipd.ValueKind, lists []ipd.PointList) {
		order = append(order, id)
		seen[id] = got{kind, lists}
	})
	assert.Equal(t, []uint32{5, 6, 7}, order)

	require.Len(t, seen[5].lists, 2)
	assert.Equal(t, ipd.ValueFloat, seen[5].kind)
	assert.Equal(t, []ipd.Breakpoint{{Tick: 0, Value: 0.1}, {Tick: 30, Value: 0.2}, {Tick: 60, Value: 0.5}}, seen[5].lists[0].Points)
	assert.Equal(t, []ipd.Breakpoint{{Tick: 120, Value: 1}}, seen[5].lists[1].Points)

	assert.Equal(t, ipd.ValueBool, seen[6].kind)
	assert.Equal(t, []ipd.Breakpoint{{Tick: 0, Value: 1}, {Tick: 30, Value: 0}}, seen[6].lists[0].Points)

	assert.Equal(t, ipd.ValueInt, seen[7].kind)
	assert.Equal(t, []ipd.Breakpoint{{Tick: 0, Value: 3}}, seen[7].lists[0].Points)
}

func TestEnvelopePointsStable(t *testing.T) {
	events := tree.New("Events").Add(
		event("FloatEvent", "1", "0.25"),
		event("FloatEvent", "1", "0.75"),
		event("FloatEvent", "0", "0"),
	)
	_, points := envelopePoints(events)
	assert.Equal(t, []ipd.Breakpoint{{Tick: 0, Value: 0}, {Tick: 30, Value: 0.25}, {Tick: 30, Value: 0.75}}, points)
}

func TestCollectEnvelopesNoOwner(t *testing.T) {
	pending := NewPending()
	assert.Zero(t, collectEnvelopes(tree.New("MidiTrack"), pending, zap.NewNop()))
	assert.Zero(t, pending.Len())
}

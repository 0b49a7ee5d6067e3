package project

import (
	"strings"

	"github.com/Garik-/alsmidi/pkg/ipd"
	"github.com/Garik-/alsmidi/pkg/tree"
)

// classifyTrack infers a track kind from its structure. The checks run in a
// fixed priority order; a set may carry more than one of these shapes.
func classifyTrack(n *tree.Node) ipd.TrackKind {
	seq := n.Path("DeviceChain", "MainSequencer")
	events := seq.Path("ClipTimeable", "ArrangerAutomation", "Events")

	switch {
	case seq.Has("MidiControllers") || events.Has("MidiClip"):
		return ipd.KindNote
	case seq.Has("Sample") || events.Has("AudioClip"):
		return ipd.KindAudio
	case n.Has("TrackUnfolded") && n.Has("TrackDelay") && n.Tag != "ReturnTrack":
		return ipd.KindGroup
	case n.Tag == "ReturnTrack":
		return ipd.KindReturn
	case strings.Contains(strings.ToLower(trackName(n)), "return"):
		return ipd.KindReturn
	}
	return ipd.KindUnknown
}

func trackName(n *tree.Node) string {
	return tree.Value(n.Child("Name"), "EffectiveName", "Track "+n.Attr("Id", ""))
}

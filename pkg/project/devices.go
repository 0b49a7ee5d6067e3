package project

import (
	"encoding/hex"
	"strings"

	"github.com/Garik-/alsmidi/pkg/tree"
)

// Device is the closed set of device kinds the walker understands.
type Device interface {
	isDevice()
}

// NativeDevice is a recognized built-in processor with a typed snapshot.
type NativeDevice struct {
	Type     string
	Snapshot Snapshot
}

// GroupDevice holds nested device chains, one per branch.
type GroupDevice struct {
	Type     string
	Branches []*tree.Node
}

// PluginDevice hosts a third-party plugin.
type PluginDevice struct {
	Host     string
	Plugin   string
	PresetID string
	Payload  []byte
}

// Unrecognized is every device tag outside the known set.
type Unrecognized struct {
	Name string
}

func (NativeDevice) isDevice() {}
func (GroupDevice) isDevice()  {}
func (PluginDevice) isDevice() {}
func (Unrecognized) isDevice() {}

const genericPluginName = "PluginDevice"

var natives = map[string]func(*tree.Node) Snapshot{
	"Eq8":            func(n *tree.Node) Snapshot { return newEq8(n) },
	"FilterEQ3":      func(n *tree.Node) Snapshot { return newEq3(n) },
	"Compressor2":    newCompressor,
	"GlueCompressor": newGlueCompressor,
	"Limiter":        newLimiter,
	"AutoPan":        newAutoPan,
	"MidiPitcher":    newPitcher,
}

// branch chain containers per group device tag
var groupChains = map[string][2]string{
	"AudioEffectGroupDevice": {"AudioEffectBranch", "AudioToAudioDeviceChain"},
	"MidiEffectGroupDevice":  {"MidiEffectBranch", "MidiToMidiDeviceChain"},
	"InstrumentGroupDevice":  {"InstrumentBranch", "MidiToAudioDeviceChain"},
}

func classifyDevice(n *tree.Node) Device {
	if ctor, ok := natives[n.Tag]; ok {
		return NativeDevice{Type: n.Tag, Snapshot: ctor(n)}
	}
	if chain, ok := groupChains[n.Tag]; ok {
		return GroupDevice{Type: n.Tag, Branches: branchDevices(n, chain)}
	}
	switch n.Tag {
	case "PluginDevice", "AuPluginDevice":
		return pluginDevice(n)
	}
	return Unrecognized{Name: n.Tag}
}

// branchDevices returns the Devices list of every branch. Branches written
// by older sets may use another chain tag, so any DeviceChain child with a
// Devices list is accepted.
func branchDevices(n *tree.Node, chain [2]string) []*tree.Node {
	var out []*tree.Node
	for _, br := range n.Child("Branches").Elements() {
		dc := br.Child("DeviceChain")
		devices := dc.Path(chain[1], "Devices")
		if devices == nil {
			for _, c := range dc.Elements() {
				if d := c.Child("Devices"); d != nil {
					devices = d
					break
				}
			}
		}
		if devices != nil {
			out = append(out, devices)
		}
	}
	return out
}

// pluginName is the hosted plugin's display name used to prefix its parameters.
func pluginName(n *tree.Node) string {
	desc := n.Child("PluginDesc")
	for _, c := range []struct{ info, field string }{
		{"VstPluginInfo", "PlugName"},
		{"Vst3PluginInfo", "Name"},
		{"AuPluginInfo", "Name"},
	} {
		if name := tree.Value(desc.Child(c.info), c.field, ""); name != "" {
			return name
		}
	}
	return genericPluginName
}

func pluginDevice(n *tree.Node) PluginDevice {
	desc := n.Child("PluginDesc")
	p := PluginDevice{Plugin: pluginName(n)}

	switch {
	case desc.Has("VstPluginInfo"):
		p.Host = "vst"
		preset := desc.Path("VstPluginInfo", "Preset", "VstPreset")
		p.PresetID = preset.Attr("Id", "0")
		p.Payload = hexPayload(preset.Child("Buffer").TextContent())
	case desc.Has("Vst3PluginInfo"):
		p.Host = "vst3"
		preset := desc.Path("Vst3PluginInfo", "Preset", "Vst3Preset")
		p.PresetID = preset.Attr("Id", "0")
		p.Payload = hexPayload(preset.Path("ProcessorState").TextContent())
	case desc.Has("AuPluginInfo"):
		p.Host = "au"
		preset := desc.Path("AuPluginInfo", "Preset", "AuPreset")
		p.PresetID = preset.Attr("Id", "0")
		p.Payload = hexPayload(preset.Child("Buffer").TextContent())
	default:
		p.Host = "unknown"
	}
	return p
}

// hexPayload decodes a whitespace-wrapped hex dump; undecodable input yields nil.
func hexPayload(s string) []byte {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

// enabled reads On/Manual; devices without the flag are on.
func enabled(n *tree.Node) bool {
	return tree.ParamBool(n, "On", true)
}

// targetPrefix names the parameters of a device.
func targetPrefix(n *tree.Node) string {
	switch n.Tag {
	case "PluginDevice", "AuPluginDevice":
		return pluginName(n)
	}
	return n.Tag
}

func newPitcher(n *tree.Node) Snapshot {
	return &paramSet{
		values:   map[string]float64{"Pitch": tree.ParamFloat(n, "Pitch", 0)},
		modified: func(v map[string]float64) bool { return v["Pitch"] != 0 },
	}
}

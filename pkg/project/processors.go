package project

import (
	"fmt"
	"math"

	"github.com/Garik-/alsmidi/pkg/tree"
)

// Snapshot is the typed parameter state of a native processor.
type Snapshot interface {
	Params() map[string]float64
	// Modified reports whether the state differs from the factory defaults.
	Modified() bool
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func amplitudeToDecibel(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}

// Eq8 band modes
const (
	eq8LowCut48 = iota
	eq8LowCut12
	eq8LeftShelf
	eq8Bell
	eq8Notch
	eq8RightShelf
	eq8HighCut12
	eq8HighCut48
)

type eq8Band struct {
	Number    int
	Parameter string
	IsOn      bool
	Mode      int
	Freq      float64
	Gain      float64
	Q         float64
}

type Eq8 struct {
	Mode  int
	Bands []eq8Band
}

func newEq8(n *tree.Node) *Eq8 {
	e := &Eq8{Mode: int(tree.Int(n, "Mode", 0))}
	for i := 0; i < 8; i++ {
		band := n.Child(fmt.Sprintf("Bands.%d", i))
		if band == nil {
			continue
		}
		for _, side := range []string{"ParameterA", "ParameterB"} {
			p := band.Child(side)
			if p == nil {
				continue
			}
			e.Bands = append(e.Bands, eq8Band{
				Number:    i,
				Parameter: side,
				IsOn:      tree.ParamBool(p, "IsOn", true),
				Mode:      int(tree.ParamInt(p, "Mode", eq8Bell)),
				Freq:      tree.ParamFloat(p, "Freq", 1000),
				Gain:      tree.ParamFloat(p, "Gain", 0),
				Q:         tree.ParamFloat(p, "Q", 1),
			})
		}
	}
	return e
}

func (e *Eq8) Params() map[string]float64 {
	out := map[string]float64{"Mode": float64(e.Mode)}
	for _, b := range e.Bands {
		k := fmt.Sprintf("Band%d%s_", b.Number+1, b.Parameter[len(b.Parameter)-1:])
		out[k+"IsOn"] = b2f(b.IsOn)
		out[k+"Mode"] = float64(b.Mode)
		out[k+"Freq"] = b.Freq
		out[k+"Gain"] = b.Gain
		out[k+"Q"] = b.Q
	}
	return out
}

func (e *Eq8) Modified() bool {
	for _, b := range e.Bands {
		if !b.IsOn {
			continue
		}
		if math.Abs(b.Gain) > 0.01 {
			return true
		}
		switch b.Mode {
		case eq8LowCut48, eq8LowCut12, eq8HighCut12, eq8HighCut48:
			return true
		}
	}
	return false
}

type eq3Band struct {
	Freq   float64
	GainDB float64
	IsOn   bool
}

// Eq3 is the three band FilterEQ3; gains are stored as amplitude ratios in the set.
type Eq3 struct {
	Low, Mid, High eq3Band
	Slope          int
}

func newEq3(n *tree.Node) *Eq3 {
	band := func(freq, gain, on string) eq3Band {
		return eq3Band{
			Freq:   tree.ParamFloat(n, freq, 0),
			GainDB: amplitudeToDecibel(tree.ParamFloat(n, gain, 1)),
			IsOn:   tree.ParamBool(n, on, true),
		}
	}
	return &Eq3{
		Low:   band("FreqLo", "GainLo", "LowOn"),
		Mid:   band("FreqMid", "GainMid", "MidOn"),
		High:  band("FreqHi", "GainHi", "HighOn"),
		Slope: int(tree.ParamInt(n, "Slope", 0)),
	}
}

func (e *Eq3) Params() map[string]float64 {
	return map[string]float64{
		"FreqLo": e.Low.Freq, "GainLo": e.Low.GainDB, "LowOn": b2f(e.Low.IsOn),
		"FreqMid": e.Mid.Freq, "GainMid": e.Mid.GainDB, "MidOn": b2f(e.Mid.IsOn),
		"FreqHi": e.High.Freq, "GainHi": e.High.GainDB, "HighOn": b2f(e.High.IsOn),
		"Slope": float64(e.Slope),
	}
}

func (e *Eq3) Modified() bool {
	for _, b := range []eq3Band{e.Low, e.Mid, e.High} {
		if b.IsOn && math.Abs(b.GainDB) > 0.01 {
			return true
		}
	}
	return false
}

// paramSet is a flat processor whose parameters are all read the same way.
type paramSet struct {
	values   map[string]float64
	modified func(map[string]float64) bool
}

func (p *paramSet) Params() map[string]float64 { return p.values }

func (p *paramSet) Modified() bool {
	if p.modified == nil {
		return true
	}
	return p.modified(p.values)
}

type paramSpec struct {
	name     string
	fallback float64
	boolean  bool
}

func readParams(n *tree.Node, specs []paramSpec) map[string]float64 {
	out := make(map[string]float64, len(specs))
	for _, s := range specs {
		if s.boolean {
			out[s.name] = b2f(tree.ParamBool(n, s.name, s.fallback != 0))
			continue
		}
		out[s.name] = tree.ParamFloat(n, s.name, s.fallback)
	}
	return out
}

var compressorSpecs = []paramSpec{
	{name: "Threshold"}, {name: "Ratio"}, {name: "ExpansionRatio"},
	{name: "Attack"}, {name: "Release"},
	{name: "AutoReleaseControlOnOff", boolean: true},
	{name: "Gain"}, {name: "GainCompensation", boolean: true},
	{name: "DryWet"}, {name: "Model"}, {name: "LegacyModel"},
	{name: "Knee"}, {name: "LookAhead"},
}

// Compressor2 and GlueCompressor have no stable factory snapshot; they always report modified.
func newCompressor(n *tree.Node) Snapshot {
	return &paramSet{values: readParams(n, compressorSpecs)}
}

var glueSpecs = []paramSpec{
	{name: "Threshold"}, {name: "Range"}, {name: "Makeup"},
	{name: "Attack"}, {name: "Ratio"}, {name: "Release"},
	{name: "DryWet"}, {name: "PeakClipIn", boolean: true},
}

func newGlueCompressor(n *tree.Node) Snapshot {
	return &paramSet{values: readParams(n, glueSpecs)}
}

const limiterLookahead3ms = 1

var limiterSpecs = []paramSpec{
	{name: "Gain"}, {name: "Ceiling"}, {name: "Release"},
	{name: "AutoRelease", boolean: true},
	{name: "LinkChannels", boolean: true},
	{name: "Lookahead"},
}

func newLimiter(n *tree.Node) Snapshot {
	return &paramSet{
		values: readParams(n, limiterSpecs),
		modified: func(v map[string]float64) bool {
			return v["Gain"] != 0 ||
				math.Abs(v["Ceiling"]+0.3) > 0.0001 ||
				v["Release"] != 300 ||
				v["AutoRelease"] == 0 ||
				v["LinkChannels"] == 0 ||
				v["Lookahead"] != limiterLookahead3ms
		},
	}
}

var autoPanSpecs = []paramSpec{
	{name: "Type"}, {name: "Frequency"}, {name: "RateType"}, {name: "BeatRate"},
	{name: "StereoMode"}, {name: "Spin"}, {name: "Phase", fallback: 180},
	{name: "Offset"}, {name: "IsOn", boolean: true},
	{name: "Quantize", boolean: true}, {name: "BeatQuantize", fallback: 2},
	{name: "NoiseWidth", fallback: 0.5}, {name: "LfoAmount"},
	{name: "LfoInvert", boolean: true}, {name: "LfoShape"},
}

// factory state of AutoPan's LFO; BeatRate 4 is 1/16.
var autoPanDefaults = map[string]float64{
	"Type": 0, "Frequency": 1, "RateType": 0, "BeatRate": 4,
	"StereoMode": 0, "Spin": 0, "Phase": 180, "Offset": 0, "IsOn": 1,
	"Quantize": 0, "BeatQuantize": 2, "NoiseWidth": 0.5, "LfoAmount": 0,
	"LfoInvert": 0, "LfoShape": 0,
}

func newAutoPan(n *tree.Node) Snapshot {
	return &paramSet{
		values: readParams(n.Child("Lfo"), autoPanSpecs),
		modified: func(v map[string]float64) bool {
			for k, d := range autoPanDefaults {
				if math.Abs(v[k]-d) > 0.0001 {
					return true
				}
			}
			return false
		},
	}
}

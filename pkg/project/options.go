package project

import (
	"errors"

	"github.com/Garik-/alsmidi/pkg/ipd"
	"go.uber.org/zap"
)

var (
	// ErrMalformedInput reports a document the builder cannot convert at all.
	ErrMalformedInput = errors.New("malformed input")
)

// PresetSink receives hosted plugin presets found while walking device chains.
type PresetSink interface {
	Preset(p ipd.PluginPreset)
}

type Options struct {
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Presets defaults to appending to Document.Presets.
	Presets PresetSink
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

type docPresets struct {
	doc *ipd.Document
}

func (d docPresets) Preset(p ipd.PluginPreset) {
	d.doc.Presets = append(d.doc.Presets, p)
}

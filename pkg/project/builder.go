// Package project converts a parsed live set into an ipd.Document.
//
// Build walks the master track and every track, registers automation targets
// by id and collects envelopes by pointee id. Envelopes are bound to targets
// only after the walk, then loop and cut metadata is flattened.
package project

import (
	"fmt"

	"github.com/Garik-/alsmidi/pkg/ipd"
	"github.com/Garik-/alsmidi/pkg/tree"
	"go.uber.org/zap"
)

// Build converts one document. The root may be the LiveSet element or the
// Ableton element that wraps it. All state is local to the call, so
// concurrent Builds of different documents are safe.
func Build(root *tree.Node, opts Options) (*ipd.Document, error) {
	live := root
	if root != nil && root.Tag != "LiveSet" {
		live = root.Child("LiveSet")
	}
	if live == nil {
		return nil, fmt.Errorf("%w: no LiveSet element", ErrMalformedInput)
	}

	r := newRun(opts)
	r.doc.Version = root.Attr("Creator", "")
	if r.doc.Version == "" {
		r.log.Warn("document has no creator version")
	}

	r.walkMaster(live)
	r.walkTracks(live)

	bound, dropped := bind(r.doc, r.pending, r.targets, r.log.Named("binder"))
	normalize(r.doc)

	r.log.Info("document built",
		zap.String("version", r.doc.Version),
		zap.Int("tracks", len(r.doc.Tracks)),
		zap.Int("targets", r.targets.Len()),
		zap.Int("envelopes", r.pending.Len()),
		zap.Int("bound", bound),
		zap.Int("unresolved", dropped),
		zap.Int("devices", len(r.doc.Devices)))

	return r.doc, nil
}

package project

import (
	"github.com/Garik-/alsmidi/pkg/ipd"
	"go.uber.org/zap"
)

// bind moves pending envelopes onto the parameters registered for their ids.
// It runs after the walk, because an envelope may point at a target that is
// registered later in document order.
func bind(doc *ipd.Document, pending *Pending, targets *Targets, log *zap.Logger) (bound, dropped int) {
	pending.Each(func(id uint32, kind ipd.ValueKind, lists []ipd.PointList) {
		if len(lists) == 0 {
			return
		}
		ref, ok := targets.Lookup(id)
		if !ok {
			log.Debug("unresolved automation target", zap.Uint32("id", id), zap.Int("lists", len(lists)))
			dropped++
			return
		}
		doc.Automation.Group(ref.Location, ref.TrackName).Param(ref.Path).Add(kind, lists...)
		bound++
	})
	return bound, dropped
}

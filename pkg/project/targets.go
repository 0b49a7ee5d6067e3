package project

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/Garik-/alsmidi/pkg/tree"
	"go.uber.org/zap"
)

const markerTag = "AutomationTarget"

// TargetRef locates an automatable parameter registered under a numeric id.
type TargetRef struct {
	ID        uint32
	TrackID   string
	TrackName string
	Location  []string
	// Device is [type, id].
	Device [2]string
	Path   string
}

// Targets is the id lookup table filled during the walk. First registration wins.
type Targets struct {
	log  *zap.Logger
	refs map[uint32]TargetRef
}

func NewTargets(log *zap.Logger) *Targets {
	if log == nil {
		log = zap.NewNop()
	}
	return &Targets{log: log, refs: make(map[uint32]TargetRef)}
}

func (t *Targets) Register(ref TargetRef) bool {
	if prev, ok := t.refs[ref.ID]; ok {
		t.log.Debug("duplicate automation target",
			zap.Uint32("id", ref.ID),
			zap.String("kept", prev.Path),
			zap.String("dropped", ref.Path))
		return false
	}
	t.refs[ref.ID] = ref
	return true
}

func (t *Targets) Lookup(id uint32) (TargetRef, bool) {
	ref, ok := t.refs[id]
	return ref, ok
}

func (t *Targets) Len() int {
	return len(t.refs)
}

// scope is the owning track of a device chain.
type scope struct {
	TrackID   string
	TrackName string
	Location  []string
}

type marker struct {
	id    uint32
	segs  []string
	nodes []*tree.Node
}

// resolveTargets registers every automation marker below a device.
// Nested device lists are not entered; the walker resolves those devices itself.
func resolveTargets(device *tree.Node, prefix string, sc scope, details [2]string, targets *Targets) int {
	var found []marker
	findMarkers(device, nil, nil, &found)

	n := 0
	for _, m := range found {
		ref := TargetRef{
			ID:        m.id,
			TrackID:   sc.TrackID,
			TrackName: sc.TrackName,
			Location:  sc.Location,
			Device:    details,
			Path:      parameterName(prefix, m.segs, m.nodes),
		}
		if targets.Register(ref) {
			n++
		}
	}
	return n
}

func findMarkers(n *tree.Node, segs []string, nodes []*tree.Node, out *[]marker) {
	counts := make(map[string]int, len(n.Children))
	for _, c := range n.Children {
		counts[c.Tag]++
	}
	seen := make(map[string]int, len(counts))

	for _, c := range n.Children {
		seen[c.Tag]++
		seg := c.Tag
		if counts[c.Tag] > 1 {
			seg = c.Tag + "[" + strconv.Itoa(seen[c.Tag]) + "]"
		}

		switch c.Tag {
		case markerTag:
			id := tree.AttrInt(c, "Id", 0)
			if id <= 0 || id > int64(^uint32(0)) {
				continue
			}
			*out = append(*out, marker{
				id:    uint32(id),
				segs:  append([]string(nil), segs...),
				nodes: append([]*tree.Node(nil), nodes...),
			})
		case "Devices":
			// nested chain of a group device
		default:
			if len(c.Children) == 0 {
				continue
			}
			findMarkers(c, append(segs, seg), append(nodes, c), out)
		}
	}
}

func baseTag(seg string) string {
	if i := strings.IndexByte(seg, '['); i >= 0 {
		return seg[:i]
	}
	return seg
}

// parameterName derives a stable identifier from the tag path of a marker.
func parameterName(prefix string, segs []string, nodes []*tree.Node) string {
	name := ""
	for i, s := range segs {
		b := baseTag(s)
		if b != "Manual" && b != "ParameterValue" {
			continue
		}
		if i > 0 {
			name = tree.Value(nodes[i-1], "ParameterName", "")
			if name == "" {
				name = segs[i-1]
			}
		}
		break
	}
	if name == "" {
		name = strings.Join(segs, "_")
	}
	if name == "" {
		return sanitize(prefix)
	}
	return sanitize(prefix + "_" + name)
}

// sanitize keeps [A-Za-z0-9_], turns whitespace into underscores and never starts with a digit.
func sanitize(s string) string {
	var b strings.Builder
	under := false
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			under = false
		case r == '_' || unicode.IsSpace(r):
			if !under && b.Len() > 0 {
				b.WriteByte('_')
				under = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "_")
	if out == "" {
		return "Parameter"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "_" + out
	}
	return out
}

package ipd

import "strings"

// Parameter is the bound automation of one target parameter.
type Parameter struct {
	Path       string
	Kind       ValueKind
	kindSet    bool
	PointLists []PointList
}

// AutomationGroup collects the parameters automated at one location,
// e.g. ["track", "midi_12"] on track "Lead".
type AutomationGroup struct {
	Location  []string
	TrackName string
	Params    []*Parameter
	index     map[string]*Parameter
}

// Param returns the parameter with the given path, creating it on first use.
func (g *AutomationGroup) Param(path string) *Parameter {
	if g.index == nil {
		g.index = make(map[string]*Parameter)
	}
	if p, ok := g.index[path]; ok {
		return p
	}
	p := &Parameter{Path: path}
	g.index[path] = p
	g.Params = append(g.Params, p)
	return p
}

// Lookup returns the parameter with the given path if it exists.
func (g *AutomationGroup) Lookup(path string) (*Parameter, bool) {
	p, ok := g.index[path]
	return p, ok
}

// Automation is keyed by location path then parameter path. Groups keep first-insertion order.
type Automation struct {
	Groups []*AutomationGroup
	index  map[string]*AutomationGroup
}

func groupKey(location []string, trackName string) string {
	return strings.Join(append(append([]string(nil), location...), trackName), "\x00")
}

// Group returns the group for location + track name, creating it on first use.
func (a *Automation) Group(location []string, trackName string) *AutomationGroup {
	if a.index == nil {
		a.index = make(map[string]*AutomationGroup)
	}
	key := groupKey(location, trackName)
	if g, ok := a.index[key]; ok {
		return g
	}
	g := &AutomationGroup{
		Location:  append([]string(nil), location...),
		TrackName: trackName,
	}
	a.index[key] = g
	a.Groups = append(a.Groups, g)
	return g
}

// Lookup finds an existing group.
func (a *Automation) Lookup(location []string, trackName string) (*AutomationGroup, bool) {
	g, ok := a.index[groupKey(location, trackName)]
	return g, ok
}

// Add merges kind and appends point lists. The first declared kind is kept.
func (p *Parameter) Add(kind ValueKind, lists ...PointList) {
	if !p.kindSet {
		p.Kind = kind
		p.kindSet = true
	}
	p.PointLists = append(p.PointLists, lists...)
}

// Len returns the number of bound parameters across all groups.
func (a *Automation) Len() int {
	n := 0
	for _, g := range a.Groups {
		n += len(g.Params)
	}
	return n
}

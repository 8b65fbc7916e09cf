package engine

import (
	goical "github.com/emersion/go-ical"

	"github.com/sonroyaalmerol/w32ical/pkg/ical"
	"github.com/sonroyaalmerol/w32ical/pkg/native"
)

// memoKey identifies one revision of a native event. Modification stamps
// have minute resolution, so edits within the minute of a cached
// translation are served stale until the TTL expires. Events without a
// modification stamp are never memoized.
type memoKey struct {
	id       string
	modified string
}

// memoEntry is a cached translation and the warnings it raised.
type memoEntry struct {
	comps    []*goical.Component
	warnings []ical.ConsistencyWarning
}

func keyOf(ev *native.Event) (memoKey, bool) {
	if ev.ID == "" || ev.Modified == "" {
		return memoKey{}, false
	}
	return memoKey{id: ev.ID, modified: ev.Modified}, true
}

// cloneComponents deep copies comps so that cached values are never shared
// with callers.
func cloneComponents(comps []*goical.Component) []*goical.Component {
	out := make([]*goical.Component, len(comps))
	for i, c := range comps {
		out[i] = cloneComponent(c)
	}
	return out
}

func cloneComponent(c *goical.Component) *goical.Component {
	out := &goical.Component{
		Name:  c.Name,
		Props: make(goical.Props, len(c.Props)),
	}
	for name, props := range c.Props {
		cp := make([]goical.Prop, len(props))
		for i, p := range props {
			cp[i] = p
			cp[i].Params = make(goical.Params, len(p.Params))
			for k, v := range p.Params {
				cp[i].Params[k] = append([]string(nil), v...)
			}
		}
		out.Props[name] = cp
	}
	for _, child := range c.Children {
		out.Children = append(out.Children, cloneComponent(child))
	}
	return out
}

// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"errors"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ik5/audgraph/event"
	"github.com/ik5/audgraph/graph"
)

// Member is a Group child: a *Sample or a *Group.
type Member interface {
	Parent() *Group
	OutputNode() graph.Node
	setParent(g *Group)
}

type GroupEvent int

const (
	GroupSampleDestroyed GroupEvent = iota
)

type GroupNotice struct {
	Group  *Group
	Sample *Sample
}

// Group is a mixing bus. Every child's output feeds the group's effect
// chain, and the group's output feeds its parent.
//
// A child has at most one parent. Adding it elsewhere detaches it first.
// Cycles are not detected; building one makes the recursive operations
// loop forever.
type Group struct {
	wrapper

	// values unsubscribe from the child's destroy event
	samples   *orderedmap.OrderedMap[*Sample, func()]
	subgroups *orderedmap.OrderedMap[*Group, struct{}]
	parent    *Group
	destroyed bool

	events event.Hub[GroupEvent, GroupNotice]
}

func newGroup(e *Engine) *Group {
	g := &Group{
		samples:   orderedmap.New[*Sample, func()](),
		subgroups: orderedmap.New[*Group, struct{}](),
	}
	g.initWrapper(e)
	return g
}

// NewGroup creates a group under the root group.
func (e *Engine) NewGroup() (*Group, error) {
	if e.closed {
		return nil, ErrEngineClosed
	}
	g := newGroup(e)
	if err := e.root.Add(g); err != nil {
		g.release()
		return nil, err
	}
	return g, nil
}

func (g *Group) Events() *event.Hub[GroupEvent, GroupNotice] { return &g.events }

func (g *Group) Parent() *Group     { return g.parent }
func (g *Group) setParent(p *Group) { g.parent = p }
func (g *Group) Destroyed() bool    { return g.destroyed }
func (g *Group) isRoot() bool       { return g == g.engine.root }

// Add makes m a child of g, detaching it from its current parent first.
// A nil member is logged and ignored.
func (g *Group) Add(m Member) error {
	if g.destroyed {
		return ErrDestroyed
	}

	switch c := m.(type) {
	case *Sample:
		if c == nil {
			break
		}
		if c.destroyed {
			return ErrDestroyed
		}
		if c.parent == g {
			return nil
		}
		if c.parent != nil {
			_ = c.parent.removeSample(c)
		}
		off := c.events.On(SampleDestroyed, func(SampleNotice) {
			_ = g.removeSample(c)
			g.events.Emit(GroupSampleDestroyed, GroupNotice{Group: g, Sample: c})
		})
		g.samples.Set(c, off)
		c.OutputNode().Connect(g.InputNode())
		c.setParent(g)
		return nil

	case *Group:
		if c == nil {
			break
		}
		if c.destroyed {
			return ErrDestroyed
		}
		if c.isRoot() {
			return ErrRootGroup
		}
		if c.parent == g {
			return nil
		}
		if c.parent != nil {
			_ = c.parent.removeGroup(c)
		}
		g.subgroups.Set(c, struct{}{})
		c.OutputNode().Connect(g.InputNode())
		c.setParent(g)
		return nil
	}

	g.engine.log.Warn("group add ignored: not a sample or group", "member", m)
	return nil
}

func (g *Group) removeSample(s *Sample) error {
	off, ok := g.samples.Get(s)
	if !ok {
		return ErrNotChild
	}
	off()
	g.samples.Delete(s)
	s.OutputNode().Disconnect(g.InputNode())
	s.setParent(nil)
	return nil
}

func (g *Group) removeGroup(c *Group) error {
	if _, ok := g.subgroups.Get(c); !ok {
		return ErrNotChild
	}
	g.subgroups.Delete(c)
	c.OutputNode().Disconnect(g.InputNode())
	c.setParent(nil)
	return nil
}

// Samples returns the direct sample children in insertion order.
func (g *Group) Samples() []*Sample { return keys(g.samples) }

// Subgroups returns the direct group children in insertion order.
func (g *Group) Subgroups() []*Group { return keys(g.subgroups) }

// Play plays every descendant sample with its defaults, depth first.
func (g *Group) Play() error {
	return g.each(func(s *Sample) error {
		_, err := s.Play(nil)
		return err
	})
}

func (g *Group) Pause() error  { return g.each((*Sample).Pause) }
func (g *Group) Resume() error { return g.each((*Sample).Resume) }
func (g *Group) Stop() error   { return g.each((*Sample).Stop) }

// each applies fn to the samples, then recurses into the subgroups.
func (g *Group) each(fn func(*Sample) error) error {
	if g.destroyed {
		return ErrDestroyed
	}

	var errs []error
	for _, s := range g.Samples() {
		if err := fn(s); err != nil {
			errs = append(errs, err)
		}
	}
	for _, sub := range g.Subgroups() {
		if err := sub.each(fn); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AllSamples returns every sample below g, each once.
func (g *Group) AllSamples() []*Sample {
	seen := orderedmap.New[*Sample, struct{}]()
	g.collect(seen, func(*Sample) bool { return true })
	return keys(seen)
}

// SamplesBySource returns the samples below g whose canonical source id is
// id.
func (g *Group) SamplesBySource(id string) []*Sample {
	seen := orderedmap.New[*Sample, struct{}]()
	g.collect(seen, func(s *Sample) bool { return s.id == id })
	return keys(seen)
}

func (g *Group) collect(into *orderedmap.OrderedMap[*Sample, struct{}], match func(*Sample) bool) {
	for pair := g.samples.Oldest(); pair != nil; pair = pair.Next() {
		if match(pair.Key) {
			into.Set(pair.Key, struct{}{})
		}
	}
	for pair := g.subgroups.Oldest(); pair != nil; pair = pair.Next() {
		pair.Key.collect(into, match)
	}
}

func keys[K comparable, V any](m *orderedmap.OrderedMap[K, V]) []K {
	out := make([]K, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Destroy destroys every descendant and detaches the group from its parent.
// The root group cannot be destroyed.
func (g *Group) Destroy() error {
	if g.isRoot() {
		return ErrRootGroup
	}
	g.destroy()
	return nil
}

func (g *Group) destroy() {
	if g.destroyed {
		return
	}
	for _, s := range g.Samples() {
		s.Destroy()
	}
	for _, sub := range g.Subgroups() {
		sub.destroy()
	}
	g.destroyed = true

	if g.parent != nil {
		_ = g.parent.removeGroup(g)
	}
	g.events.Clear()
	g.release()
}

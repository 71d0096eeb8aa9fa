/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package model

import (
	liberr "github.com/nabbar/openhlx/errors"
)

// GroupRange is the fixed cardinality of the Group collection (spec §3).
var GroupRange = Range{Min: 1, Max: 8}

// Group is a named aggregate of Zones whose mute/sources are derived, not
// stored (spec §3, supplemented by original_source/src/lib/model/GroupModel.cpp
// for the majority-with-tie-favors-muted rule — see SPEC_FULL.md §12).
type Group struct {
	id     Identifier
	Name   Field[string]
	Volume Volume
	zones  IdentifierSet
}

// Identifier returns the Group's stable identity.
func (g *Group) Identifier() Identifier {
	return g.id
}

// SetName assigns the Group's display name.
func (g *Group) SetName(name string) (AssignResult, liberr.Error) {
	if name == "" {
		return AssignSuccess, ErrInvalid.Errorf("group name")
	}
	return g.Name.Set(name), nil
}

// SetVolumeLevel assigns the Group's own volume level, enforcing [-80, 0].
func (g *Group) SetVolumeLevel(level int8) (AssignResult, liberr.Error) {
	if level < VolumeLevelMin || level > VolumeLevelMax {
		return AssignSuccess, ErrOutOfRange.Errorf(VolumeLevelMin, VolumeLevelMax, level)
	}
	return g.Volume.Level.Set(level), nil
}

// AddZone adds a Zone to the Group's membership. zones validates the
// identifier against the live Zone collection before it ever reaches the
// membership bitset.
func (g *Group) AddZone(zones *Zones, id Identifier) liberr.Error {
	if _, e := zones.Get(id); e != nil {
		return e
	}
	return g.zones.Add(id)
}

// RemoveZone removes a Zone from the Group's membership. Removing a
// non-member is a no-op success (Testable Property 5's round-trip law).
func (g *Group) RemoveZone(id Identifier) liberr.Error {
	return g.zones.Remove(id)
}

// HasZone reports whether id is a member of the Group.
func (g *Group) HasZone(id Identifier) bool {
	return g.zones.Contains(id)
}

// ZoneCount returns the number of member Zones.
func (g *Group) ZoneCount() uint {
	return g.zones.Len()
}

// Zones calls fn for every member Zone identifier in ascending order.
func (g *Group) Zones(fn func(Identifier)) {
	g.zones.Each(fn)
}

// DeriveMute computes the Group's mute state from its member Zones: muted
// iff at least half of the members are muted (majority rule, ties favor
// muted). A Group with no members is never considered muted. This mirrors
// GroupModel's derivation in original_source, which the distilled spec
// only states as "derived, not stored" without naming the tie-break.
func (g *Group) DeriveMute(zones *Zones) bool {
	total := g.zones.Len()
	if total == 0 {
		return false
	}

	var muted uint
	g.zones.Each(func(id Identifier) {
		z, e := zones.Get(id)
		if e != nil {
			return
		}
		if m, ok := z.Volume.Mute.Get(); ok && m {
			muted++
		}
	})

	return muted*2 >= total
}

// DeriveSources computes the Group's effective source set as the union of
// its member Zones' source references (supplemented from original_source;
// spec.md only says Group sources are "derived").
func (g *Group) DeriveSources(zones *Zones) []Identifier {
	seen := make(map[Identifier]struct{})
	out := make([]Identifier, 0, g.zones.Len())

	g.zones.Each(func(id Identifier) {
		z, e := zones.Get(id)
		if e != nil {
			return
		}
		ref, ok := z.SourceRef.Get()
		if !ok {
			return
		}
		if _, dup := seen[ref]; dup {
			return
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	})

	return out
}

// Groups is the owning collection of all Group entities.
type Groups struct {
	rng Range
	m   map[Identifier]*Group
}

// NewGroups constructs the full, fixed-cardinality Group collection.
func NewGroups() *Groups {
	c := &Groups{rng: GroupRange, m: make(map[Identifier]*Group, GroupRange.Cardinality())}
	for i := c.rng.Min; i <= c.rng.Max; i++ {
		c.m[i] = &Group{id: i, zones: NewIdentifierSet(ZoneRange)}
	}
	return c
}

// ValidateIdentifier implements Testable Property 4 for the Group range.
func (c *Groups) ValidateIdentifier(i Identifier) liberr.Error {
	return c.rng.Validate(i)
}

// Get returns the Group for i, or ErrOutOfRange/ErrNotFound.
func (c *Groups) Get(i Identifier) (*Group, liberr.Error) {
	if e := c.ValidateIdentifier(i); e != nil {
		return nil, e
	}
	g, ok := c.m[i]
	if !ok {
		return nil, ErrNotFound.Errorf(i)
	}
	return g, nil
}

// Range returns the collection's identifier range.
func (c *Groups) Range() Range {
	return c.rng
}

// Each calls fn for every Group in ascending identifier order.
func (c *Groups) Each(fn func(*Group)) {
	for i := c.rng.Min; i <= c.rng.Max; i++ {
		fn(c.m[i])
	}
}

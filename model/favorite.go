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

// FavoriteRange is the fixed cardinality of the Favorite collection
// (spec §3).
var FavoriteRange = Range{Min: 1, Max: 8}

// Favorite is a named, saved group-of-zones-and-source recall (spec §3).
// Unlike Group, a Favorite's membership is a snapshot the client applies
// on invocation rather than a live aggregate, so it stores plain fields
// instead of deriving anything.
type Favorite struct {
	id        Identifier
	Name      Field[string]
	SourceRef Field[Identifier]
	zones     IdentifierSet
}

// Identifier returns the Favorite's stable identity.
func (f *Favorite) Identifier() Identifier {
	return f.id
}

// SetName assigns the Favorite's display name.
func (f *Favorite) SetName(name string) (AssignResult, liberr.Error) {
	if name == "" {
		return AssignSuccess, ErrInvalid.Errorf("favorite name")
	}
	return f.Name.Set(name), nil
}

// SetSourceRef binds the Favorite to one of the device's fixed Sources.
func (f *Favorite) SetSourceRef(sources *Sources, id Identifier) (AssignResult, liberr.Error) {
	if e := sources.ValidateIdentifier(id); e != nil {
		return AssignSuccess, e
	}
	return f.SourceRef.Set(id), nil
}

// AddZone records a Zone as part of the Favorite's recall set.
func (f *Favorite) AddZone(zones *Zones, id Identifier) liberr.Error {
	if _, e := zones.Get(id); e != nil {
		return e
	}
	return f.zones.Add(id)
}

// RemoveZone removes a Zone from the Favorite's recall set. Removing a
// non-member is a no-op success (Testable Property 5's round-trip law).
func (f *Favorite) RemoveZone(id Identifier) liberr.Error {
	return f.zones.Remove(id)
}

// HasZone reports whether id is part of the Favorite's recall set.
func (f *Favorite) HasZone(id Identifier) bool {
	return f.zones.Contains(id)
}

// Zones calls fn for every recalled Zone identifier in ascending order.
func (f *Favorite) Zones(fn func(Identifier)) {
	f.zones.Each(fn)
}

// Favorites is the owning collection of all Favorite entities.
type Favorites struct {
	rng Range
	m   map[Identifier]*Favorite
}

// NewFavorites constructs the full, fixed-cardinality Favorite collection.
func NewFavorites() *Favorites {
	c := &Favorites{rng: FavoriteRange, m: make(map[Identifier]*Favorite, FavoriteRange.Cardinality())}
	for i := c.rng.Min; i <= c.rng.Max; i++ {
		c.m[i] = &Favorite{id: i, zones: NewIdentifierSet(ZoneRange)}
	}
	return c
}

// ValidateIdentifier implements Testable Property 4 for the Favorite range.
func (c *Favorites) ValidateIdentifier(i Identifier) liberr.Error {
	return c.rng.Validate(i)
}

// Get returns the Favorite for i, or ErrOutOfRange/ErrNotFound.
func (c *Favorites) Get(i Identifier) (*Favorite, liberr.Error) {
	if e := c.ValidateIdentifier(i); e != nil {
		return nil, e
	}
	fav, ok := c.m[i]
	if !ok {
		return nil, ErrNotFound.Errorf(i)
	}
	return fav, nil
}

// Range returns the collection's identifier range.
func (c *Favorites) Range() Range {
	return c.rng
}

// Each calls fn for every Favorite in ascending identifier order.
func (c *Favorites) Each(fn func(*Favorite)) {
	for i := c.rng.Min; i <= c.rng.Max; i++ {
		fn(c.m[i])
	}
}

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

// SourceRange is the fixed, compile-time cardinality of the Source
// collection (spec §3: fixed cardinality of 8).
var SourceRange = Range{Min: 1, Max: 8}

// Source is one of the device's fixed input sources ({ id, name }).
// Sources are created at model construction and mutated only by SetName;
// they are never destroyed (spec §3).
type Source struct {
	id   Identifier
	Name Field[string]
}

// Identifier returns the Source's stable identity.
func (s *Source) Identifier() Identifier {
	return s.id
}

// SetName assigns the Source's display name.
func (s *Source) SetName(name string) (AssignResult, liberr.Error) {
	if name == "" {
		return AssignSuccess, ErrInvalid.Errorf("source name")
	}
	return s.Name.Set(name), nil
}

// Sources is the owning collection of all Source entities.
type Sources struct {
	rng Range
	m   map[Identifier]*Source
}

// NewSources constructs the full, fixed-cardinality Source collection.
// Every identifier in SourceRange exists from construction; only their
// Name field starts uninitialised.
func NewSources() *Sources {
	c := &Sources{rng: SourceRange, m: make(map[Identifier]*Source, SourceRange.Cardinality())}
	for i := c.rng.Min; i <= c.rng.Max; i++ {
		c.m[i] = &Source{id: i}
	}
	return c
}

// ValidateIdentifier implements Testable Property 4 for the Source range.
func (c *Sources) ValidateIdentifier(i Identifier) liberr.Error {
	return c.rng.Validate(i)
}

// Get returns the Source for i, or ErrOutOfRange/ErrNotFound.
func (c *Sources) Get(i Identifier) (*Source, liberr.Error) {
	if e := c.ValidateIdentifier(i); e != nil {
		return nil, e
	}
	s, ok := c.m[i]
	if !ok {
		return nil, ErrNotFound.Errorf(i)
	}
	return s, nil
}

// Range returns the collection's identifier range.
func (c *Sources) Range() Range {
	return c.rng
}

// Each calls fn for every Source in ascending identifier order.
func (c *Sources) Each(fn func(*Source)) {
	for i := c.rng.Min; i <= c.rng.Max; i++ {
		fn(c.m[i])
	}
}

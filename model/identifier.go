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
	"github.com/bits-and-blooms/bitset"

	liberr "github.com/nabbar/openhlx/errors"
)

// Identifier is a stable integer identity for a model entity. 0 is reserved
// as invalid; callers only ever do arithmetic on it via a Range's
// Validate/Contains, never directly (spec §3).
type Identifier uint32

// InvalidIdentifier is the reserved, never-assigned zero identifier.
const InvalidIdentifier Identifier = 0

// ZoneIdentifierAll is the device firmware's broadcast sentinel used by
// volume-follow style commands: it is never a real Zone's identifier and
// is only ever accepted as a fan-out target by the server-side Zones
// controller (supplemented from original_source; spec.md does not name it).
const ZoneIdentifierAll Identifier = 0xFF

// Range describes a collection's compile-time-constant, dense identifier
// span [Min, Max].
type Range struct {
	Min Identifier
	Max Identifier
}

// Cardinality returns the number of identifiers the range admits.
func (r Range) Cardinality() int {
	if r.Max < r.Min {
		return 0
	}
	return int(r.Max-r.Min) + 1
}

// Validate implements ValidateIdentifier from spec §3/Testable Property 4:
// OutOfRange iff i < Min or i > Max, Success (nil) otherwise.
func (r Range) Validate(i Identifier) liberr.Error {
	if i < r.Min || i > r.Max {
		return ErrOutOfRange.Errorf(r.Min, r.Max, i)
	}
	return nil
}

func (r Range) index(i Identifier) uint {
	return uint(i - r.Min)
}

// IdentifierSet is a packed membership set over a Range, used for Group's
// zones/sources sets (ValidateIdentifier is enforced at Add/Remove time,
// so every member index always fits the backing bitset).
type IdentifierSet struct {
	rng  Range
	bits *bitset.BitSet
}

// NewIdentifierSet builds an empty set scoped to rng.
func NewIdentifierSet(rng Range) IdentifierSet {
	return IdentifierSet{rng: rng, bits: bitset.New(uint(rng.Cardinality()))}
}

// Add inserts i into the set. Returns ErrOutOfRange if i is outside the
// set's Range.
func (s *IdentifierSet) Add(i Identifier) liberr.Error {
	if e := s.rng.Validate(i); e != nil {
		return e
	}
	s.bits.Set(s.rng.index(i))
	return nil
}

// Remove deletes i from the set; removing a non-member is a no-op success,
// matching Testable Property 5's round-trip expectation.
func (s *IdentifierSet) Remove(i Identifier) liberr.Error {
	if e := s.rng.Validate(i); e != nil {
		return e
	}
	s.bits.Clear(s.rng.index(i))
	return nil
}

// Contains reports membership; an out-of-range identifier is simply absent.
func (s *IdentifierSet) Contains(i Identifier) bool {
	if s.rng.Validate(i) != nil {
		return false
	}
	return s.bits.Test(s.rng.index(i))
}

// Len returns the number of members currently in the set.
func (s *IdentifierSet) Len() uint {
	return s.bits.Count()
}

// Each calls fn for every member identifier in ascending order.
func (s *IdentifierSet) Each(fn func(Identifier)) {
	for i, e := s.bits.NextSet(0); e; i, e = s.bits.NextSet(i + 1) {
		fn(s.rng.Min + Identifier(i))
	}
}

// Slice returns the set's members as a sorted slice.
func (s *IdentifierSet) Slice() []Identifier {
	out := make([]Identifier, 0, s.bits.Count())
	s.Each(func(i Identifier) { out = append(out, i) })
	return out
}

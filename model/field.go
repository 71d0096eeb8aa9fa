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

import liberr "github.com/nabbar/openhlx/errors"

// AssignResult distinguishes a genuine mutation from a same-value no-op,
// per spec §3's field "already set" semantics (Testable Property 3).
type AssignResult uint8

const (
	// AssignSuccess means the field held a different value (or was unset)
	// and now holds the new one.
	AssignSuccess AssignResult = iota
	// AssignAlreadySet means the field already held the given value;
	// higher layers use this to suppress redundant notifications.
	AssignAlreadySet
)

// Field is a single typed, possibly-uninitialised value with "already set"
// assignment semantics. It is not safe for concurrent use; every entity
// that embeds Field is owned exclusively by its collection, which is in
// turn only ever touched from the single event-loop goroutine (spec §5).
type Field[T comparable] struct {
	set bool
	val T
}

// Get returns the field's value. ok is false (ErrNotInitialized territory)
// if the field was never assigned.
func (f *Field[T]) Get() (value T, ok bool) {
	return f.val, f.set
}

// MustGet returns the field's value or the zero value of T if unset.
func (f *Field[T]) MustGet() T {
	return f.val
}

// IsSet reports whether the field has ever been assigned.
func (f *Field[T]) IsSet() bool {
	return f.set
}

// Set assigns v to the field. It returns AssignSuccess the first time v is
// observed (or whenever v differs from the current value) and
// AssignAlreadySet when v equals the current value — the field itself is
// left unchanged in the AlreadySet case, but the postcondition Get() == v
// holds either way, satisfying Testable Property 3.
func (f *Field[T]) Set(v T) AssignResult {
	if f.set && f.val == v {
		return AssignAlreadySet
	}

	f.val = v
	f.set = true
	return AssignSuccess
}

// Reset clears the field back to uninitialised. Used by collections when
// re-seeding a model from scratch (e.g. proxy cache invalidation).
func (f *Field[T]) Reset() {
	var zero T
	f.val = zero
	f.set = false
}

// RangedField is a Field additionally constrained to [min, max]; Set
// rejects out-of-range values with ErrOutOfRange before ever touching the
// stored value.
type RangedField[T int | int8 | int16 | int32 | int64] struct {
	Field[T]
	Min T
	Max T
}

// NewRangedField builds a RangedField bound to [min, max].
func NewRangedField[T int | int8 | int16 | int32 | int64](min, max T) RangedField[T] {
	return RangedField[T]{Min: min, Max: max}
}

// SetChecked validates v against [Min, Max] before delegating to Field.Set.
func (f *RangedField[T]) SetChecked(v T) (AssignResult, liberr.Error) {
	if v < f.Min || v > f.Max {
		return AssignSuccess, ErrOutOfRange.Errorf(f.Min, f.Max, v)
	}

	return f.Set(v), nil
}

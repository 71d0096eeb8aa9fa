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

package model_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/nabbar/openhlx/model"
)

var _ = Describe("Range", func() {
	rng := Range{Min: 1, Max: 8}

	It("computes cardinality", func() {
		Expect(rng.Cardinality()).To(Equal(8))
	})

	It("validates in-range identifiers", func() {
		Expect(rng.Validate(1)).To(BeNil())
		Expect(rng.Validate(8)).To(BeNil())
	})

	It("rejects out-of-range identifiers", func() {
		Expect(rng.Validate(0)).ToNot(BeNil())
		Expect(rng.Validate(9)).ToNot(BeNil())
	})
})

var _ = Describe("IdentifierSet", func() {
	rng := Range{Min: 1, Max: 8}

	It("starts empty", func() {
		s := NewIdentifierSet(rng)
		Expect(s.Len()).To(Equal(uint(0)))
	})

	It("adds and reports membership", func() {
		s := NewIdentifierSet(rng)
		Expect(s.Add(3)).To(BeNil())
		Expect(s.Contains(3)).To(BeTrue())
		Expect(s.Contains(4)).To(BeFalse())
		Expect(s.Len()).To(Equal(uint(1)))
	})

	It("rejects out-of-range members", func() {
		s := NewIdentifierSet(rng)
		Expect(s.Add(9)).ToNot(BeNil())
	})

	It("round-trips add then remove back to absent (Testable Property 5)", func() {
		s := NewIdentifierSet(rng)
		Expect(s.Add(5)).To(BeNil())
		Expect(s.Remove(5)).To(BeNil())
		Expect(s.Contains(5)).To(BeFalse())
	})

	It("treats removing a non-member as a no-op success", func() {
		s := NewIdentifierSet(rng)
		Expect(s.Remove(2)).To(BeNil())
	})

	It("enumerates members in ascending order", func() {
		s := NewIdentifierSet(rng)
		s.Add(5)
		s.Add(2)
		s.Add(7)
		Expect(s.Slice()).To(Equal([]Identifier{2, 5, 7}))
	})
})

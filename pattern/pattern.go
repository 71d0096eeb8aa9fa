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

// Package pattern compiles and matches the fixed set of line patterns the
// ASCII wire protocol uses to tell a command completion, a command error,
// and an unsolicited state-change notification apart on a single stream
// (spec §4.1).
package pattern

import (
	"regexp"
	"sort"

	liberr "github.com/nabbar/openhlx/errors"
)

// Kind tags what a matched line means to the caller: a command completion,
// a command error, or one of the notification shapes a controller
// registers for its own entity class. Kinds are opaque strings rather than
// a closed enum so every controller can register its own without this
// package growing a dependency on `controller`.
type Kind string

const (
	// KindCompletion is the generic "command succeeded" terminator line.
	KindCompletion Kind = "completion"
	// KindError is the generic "command failed" terminator line.
	KindError Kind = "error"
)

// entry is one compiled pattern bound to a Kind and its expected capture
// count.
type entry struct {
	kind     Kind
	expr     *regexp.Regexp
	captures int
	source   string
}

// Match is the result of a successful Registry.Match call.
type Match struct {
	Kind     Kind
	Captures []string
	// Length is the byte length of the matched prefix, counted from the
	// start of the scanned slice.
	Length int
}

// Registry is a sorted table of compiled patterns shared by notification
// and response dispatch so interleaved frames can be disambiguated from a
// single byte stream (spec §4.1).
type Registry struct {
	entries []entry
	built   bool
}

// NewRegistry constructs an empty, not-yet-compiled Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a pattern bound to kind, with expectedCaptures recording
// how many capture groups a successful match must carry (controllers
// decide per SPEC_FULL.md's Open Question 2 whether all, some, or none
// of those captures are mandatory for their own dispatch). Register may
// be called only before CompileAll.
func (r *Registry) Register(kind Kind, expr string, expectedCaptures int) liberr.Error {
	if r.built {
		return ErrInvalid.Errorf("registry already compiled")
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return ErrBadPattern.Errorf(expr, err.Error())
	}

	r.entries = append(r.entries, entry{kind: kind, expr: re, captures: expectedCaptures, source: expr})
	return nil
}

// CompileAll finalises the Registry: entries are sorted most-specific
// first (by descending literal-prefix length, i.e. the longest fixed
// prefix before the first metacharacter wins ties toward specificity) and
// further registration is rejected. A pattern that failed to compile
// during Register already returned an error there; CompileAll itself only
// fails if the Registry has nothing registered, since an empty registry
// can never usefully disambiguate a stream.
func (r *Registry) CompileAll() liberr.Error {
	if len(r.entries) == 0 {
		return ErrInvalid.Errorf("no patterns registered")
	}

	sort.SliceStable(r.entries, func(i, j int) bool {
		return literalPrefixLen(r.entries[i].source) > literalPrefixLen(r.entries[j].source)
	})

	r.built = true
	return nil
}

// literalPrefixLen returns the length of expr's fixed (non-metacharacter)
// prefix, used as the specificity ranking key.
func literalPrefixLen(expr string) int {
	n := 0
	for _, c := range expr {
		if isRegexMeta(c) {
			break
		}
		n++
	}
	return n
}

func isRegexMeta(c rune) bool {
	switch c {
	case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
		return true
	default:
		return false
	}
}

// Match scans buf from offset 0 against every registered pattern and
// returns the match with the smallest prefix length — i.e. the first
// complete line in the buffer — breaking ties in favour of the
// most-specific pattern (its position in the sorted table). It returns
// ok=false if nothing in buf matches yet, which the caller treats as
// "need more bytes".
func (r *Registry) Match(buf []byte) (m Match, ok bool) {
	best := -1

	for idx := range r.entries {
		e := &r.entries[idx]
		loc := e.expr.FindSubmatchIndex(buf)
		if loc == nil {
			continue
		}

		length := loc[1]
		if best == -1 || length < m.Length {
			caps := make([]string, 0, e.captures)
			for g := 1; g*2 < len(loc); g++ {
				if loc[g*2] < 0 {
					continue
				}
				caps = append(caps, string(buf[loc[g*2]:loc[g*2+1]]))
			}
			m = Match{Kind: e.kind, Captures: caps, Length: length}
			best = idx
		}
	}

	return m, best != -1
}

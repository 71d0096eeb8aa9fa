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

// Package controller implements the per-property controllers (spec
// component H): one file-group per entity class, each composing a client
// side (issues requests, parses notifications), a server side (answers
// requests, emits notifications) and a proxy side (counts expected
// refresh units without owning any transport) over the same model
// collection, selected by the Role bitmask a caller passes to New.
package controller

// Role is a bitmask selecting which side(s) of a controller are active.
// hlxc only ever sets RoleClient; hlxsimd only ever sets RoleServer;
// hlxproxyd sets RoleClient|RoleServer|RoleProxy since it terminates one
// side of each role and originates the other (spec §4.6, §4.8).
type Role uint8

const (
	// RoleClient issues requests against a command/client.Manager and
	// applies the parsed reply/notification to the local model.
	RoleClient Role = 1 << iota
	// RoleServer answers requests against a command/server.Manager,
	// mutating the local model and broadcasting the resulting change.
	RoleServer
	// RoleProxy marks a controller used only to count expected refresh
	// units while the bytes themselves are relayed, unparsed, by the
	// proxy splice (spec §4.8).
	RoleProxy
)

// Has reports whether r includes every bit set in want.
func (r Role) Has(want Role) bool {
	return r&want == want
}

func mergeRoles(roles []Role) Role {
	var r Role
	for _, x := range roles {
		r |= x
	}
	return r
}

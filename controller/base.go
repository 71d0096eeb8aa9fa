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

package controller

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/nabbar/openhlx/command/client"
	"github.com/nabbar/openhlx/command/server"
	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/model"
	"github.com/nabbar/openhlx/notify"
	"github.com/nabbar/openhlx/pattern"
	"github.com/nabbar/openhlx/proxy"
	"github.com/nabbar/openhlx/semaphore/types"
)

// DefaultRequestTimeout bounds every client-issued request this package
// sends, refresh queries included, absent an explicit per-call override.
const DefaultRequestTimeout = 5 * time.Second

// base is embedded by every concrete entity controller. It owns the
// Role-gated wiring to the client/server Command Managers, the refresh
// progress counters, and the Init/once guard, so each entity file only
// has to supply its object code, its field frame shapes, and its model
// plumbing (spec §4.6: "composition over the inheritance triangle").
type base struct {
	roles Role

	once sync.Once

	clientMgr *client.Manager
	serverMgr *server.Manager
	notifier  *notify.Notifier
	bar       types.Bar
	splice    *proxy.Splice

	mu       sync.Mutex
	expected uint32
	observed uint32

	onDidRefresh    func()
	onDidNotRefresh func(liberr.Error)
}

// InitArgs bundles what Init needs from whichever role(s) are active; a
// headless server-only controller leaves ClientMgr nil, a pure-client CLI
// leaves ServerMgr nil, hlxproxyd's client+server+proxy role supplies all
// three (spec §4.6, §4.8). Bar is nil for every headless (server/proxy)
// use; controller.Refresh still calls every Bar method unconditionally,
// since the caller is expected to pass semaphore's nobar.New stand-in
// rather than a literal nil when it wants a no-op sink.
type InitArgs struct {
	ClientMgr *client.Manager
	ServerMgr *server.Manager
	Notifier  *notify.Notifier
	Bar       types.Bar

	// Proxy is only consulted by a controller with RoleProxy set; it is
	// the shared Splice (spec component J) a server-role request handler
	// forwards through once it finds localReady false (spec §4.8:
	// "its controller is NotInitialized for the requested datum").
	Proxy *proxy.Splice
}

func newBase(roles []Role) base {
	return base{roles: mergeRoles(roles)}
}

// initOnce runs register exactly once across the controller's lifetime,
// regardless of how many times a caller (re-)drives Init (spec §4.6:
// "Init is idempotent via a sync.Once-guarded registration step").
func (b *base) initOnce(a InitArgs, register func()) {
	b.once.Do(func() {
		b.clientMgr = a.ClientMgr
		b.serverMgr = a.ServerMgr
		b.notifier = a.Notifier
		b.bar = a.Bar
		b.splice = a.Proxy
		register()
	})
}

// OnDidRefresh arms fn to fire once every expected refresh unit for this
// controller has been observed.
func (b *base) OnDidRefresh(fn func()) {
	b.onDidRefresh = fn
}

// OnDidNotRefresh arms fn to fire on the first refresh query failure; the
// aggregate lifecycle (component I) chains this across every controller
// with go-multierror.
func (b *base) OnDidNotRefresh(fn func(liberr.Error)) {
	b.onDidNotRefresh = fn
}

// beginRefresh resets the expected/observed counters and, when a Bar was
// configured, its visible total/current.
func (b *base) beginRefresh(expected uint32) {
	b.mu.Lock()
	b.expected = expected
	b.observed = 0
	b.mu.Unlock()

	if b.bar != nil {
		b.bar.Reset(int64(expected), 0)
	}
}

// markObserved records one more completed refresh unit, firing
// onDidRefresh once the last one lands.
func (b *base) markObserved() {
	b.mu.Lock()
	b.observed++
	done := b.observed >= b.expected
	b.mu.Unlock()

	if b.bar != nil {
		b.bar.Inc(1)
	}
	if done && b.onDidRefresh != nil {
		b.onDidRefresh()
	}
}

// failRefresh reports a single query failure without incrementing the
// observed counter; the caller decides whether to keep issuing the
// remaining queries or abandon the refresh outright.
func (b *base) failRefresh(err liberr.Error) {
	if b.onDidNotRefresh != nil {
		b.onDidNotRefresh(err)
	}
}

// RefreshProgress reports the controller's own (observed, expected) pair,
// which Lifecycle I sums across every controller for the aggregate
// percentage (SPEC_FULL.md §4.7).
func (b *base) RefreshProgress() (observed uint32, expected uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.observed, b.expected
}

// localReady reports whether this controller's local model has completed
// at least one full refresh cycle against its upstream — the gate a
// proxy-role request handler consults to decide between answering from
// its own cache and forwarding through the Splice (spec §4.8: "its
// controller is NotInitialized for the requested datum").
func (b *base) localReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expected > 0 && b.observed >= b.expected
}

// publish forwards c to the shared Notifier, a no-op when none is wired
// (a proxy-only controller never mutates a model of its own).
func (b *base) publish(c notify.Change) {
	if b.notifier != nil {
		b.notifier.Publish(c)
	}
}

// publishIf only forwards c when result is model.AssignSuccess, which is
// the mechanism Testable Property 3 relies on (spec §4.9, notify.Publish's
// own doc comment).
func (b *base) publishIf(result model.AssignResult, c notify.Change) {
	if result == model.AssignSuccess {
		b.publish(c)
	}
}

// --- wire grammar shared by every entity file ---
//
// Every command/notification frame this package builds has the shape
//
//	<code><object><id>[<sep><value>]\r\n
//
// where <code> is one of requestCode/notifyCode below, <object> is the
// entity's one-letter object code (reconstructed from
// original_source/src/lib/model/*ControllerBasis.hpp; only the Zone ('O')
// and Group ('G') literals actually survived the distillation — the rest
// are this module's own consistent extension of that scheme, documented
// in DESIGN.md), and <id> is the entity's decimal Identifier. A query
// frame omits <value>; every other frame has it. Singleton entities
// (FrontPanel, Infrared, Network, Configuration) fix <id> at 0.

const (
	opQuery byte = 'Q' // client query, bare <object><id>
	opWrite byte = 'W' // client mutation, <op><field><object><id> <value>
	opField byte = 'N' // server broadcast / query-dump field line
)

// singletonID is the fixed identifier singleton entities address
// themselves with on the wire (there being only ever one of them).
const singletonID model.Identifier = 0

// queryFrame builds a client "refresh this identifier" request.
func queryFrame(object byte, id model.Identifier) []byte {
	return []byte(fmt.Sprintf("%c%c%d\r\n", opQuery, object, id))
}

// queryPattern compiles the completion regexp for queryFrame's echo-back
// acknowledgement; it carries no captures, the data having already
// arrived as field frames dispatched through the notify registry while
// the query exchange was active (command/client.Manager.dispatchFrame
// tries every inbound frame against the active exchange's own completion
// pattern first, so field frames that don't match it still fall through
// to notification dispatch).
func queryPattern(object byte, id model.Identifier) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^%c%c%d\r\n$`, opQuery, object, id))
}

// setFrame builds a client mutation request for one field of one id.
func setFrame(object byte, field byte, id model.Identifier, value string) []byte {
	return []byte(fmt.Sprintf("%c%c%c%d %s\r\n", opWrite, field, object, id, value))
}

// setRequestExpr compiles the server-side request pattern matching every
// setFrame for (object, field) regardless of id: one handler, registered
// once, serves every identifier in the collection. Captures are (id,
// value) in that order.
func setRequestExpr(object byte, field byte) string {
	return fmt.Sprintf(`^%c%c%c([0-9]+) (.+)\r\n$`, opWrite, field, object)
}

// fieldFrame builds the broadcast/completion line for one field's current
// value: the same bytes serve as the server's notification broadcast, the
// client's own pending-command completion pattern (when the client issued
// the mutation itself), and the client's notify-registry pattern for
// every other connection's copy of this controller (spec §4.4's
// disambiguation between solicited completion and unsolicited
// notification sharing one wire shape).
func fieldFrame(object byte, field byte, id model.Identifier, value string) []byte {
	return []byte(fmt.Sprintf("%c%c%c%d %s\r\n", opField, field, object, id, value))
}

// fieldCompletionPattern compiles the regexp a client exchange watches
// for fieldFrame's echo of its own mutation, bound to one id, with a
// single capture group for value.
func fieldCompletionPattern(object byte, field byte, id model.Identifier) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^%c%c%c%d (.+)\r\n$`, opField, field, object, id))
}

// fieldNotifyExpr compiles the client notify-registry pattern matching
// fieldFrame for (object, field) regardless of id, one registration
// covering every identifier. Captures are (id, value) in that order.
func fieldNotifyExpr(object byte, field byte) string {
	return fmt.Sprintf(`^%c%c%c([0-9]+) (.+)\r\n$`, opField, field, object)
}

// fieldKind names the pattern.Registry entry a field's request/notify
// pattern is registered under; request and notify registries are
// distinct Registry instances so the same Kind value never collides
// between them.
func fieldKind(object byte, field byte) pattern.Kind {
	return pattern.Kind(fmt.Sprintf("%c%c", object, field))
}

// broadcast fans frame out to every connection the server Manager
// currently holds, which is how a mutation applied by one peer's request
// reaches every other connected peer as an unsolicited notification
// (spec §4.5, §4.9).
func (b *base) broadcast(mgr *server.Manager, frame []byte) {
	if mgr == nil {
		return
	}
	mgr.Broadcast(frame)
}

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

// Package lifecycle drives the application-level connection state machine
// (spec component I): Disconnected, Resolving, Connecting, Refreshing,
// Steady, Disconnecting. It sits above connmgr's Connection Manager and
// every per-property controller's own Refresh protocol, translating their
// individual events into the one aggregate state a CLI or proxy daemon
// actually cares about.
package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/nabbar/openhlx/connmgr"
	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/model"
	"github.com/nabbar/openhlx/transport"
)

// State is one node of the lifecycle diagram (spec §4.7).
type State uint8

const (
	Disconnected State = iota
	Resolving
	Connecting
	Refreshing
	Steady
	Disconnecting
)

// String names a State for logging; never referenced for control flow.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Resolving:
		return "Resolving"
	case Connecting:
		return "Connecting"
	case Refreshing:
		return "Refreshing"
	case Steady:
		return "Steady"
	case Disconnecting:
		return "Disconnecting"
	default:
		return "Unknown"
	}
}

// StateDelegate receives every state transition, in order, on whichever
// goroutine triggered it (spec §5: no dedicated event-loop goroutine of
// its own — this Manager is driven entirely by connmgr's and
// controller's own callbacks).
type StateDelegate func(from State, to State)

// RefreshController is the subset of a controller (component H) Lifecycle
// needs: the refresh operation itself plus the progress/completion
// callbacks every concrete controller's base already implements.
type RefreshController interface {
	Refresh(timeout time.Duration) liberr.Error
	RefreshProgress() (observed uint32, expected uint32)
	OnDidRefresh(fn func())
	OnDidNotRefresh(fn func(liberr.Error))
}

// Manager drives one connection's worth of lifecycle state. It owns no
// Connection of its own: that remains connmgr.Manager's exclusive
// property (spec §5's "Shared-resource policy"), Lifecycle only observes.
type Manager struct {
	mu    sync.Mutex
	state State

	conn        *connmgr.Manager
	controllers []RefreshController

	pending     int
	refreshErrs *multierror.Error

	stateDelegates  []StateDelegate
	onDidNotRefresh func(error)
}

// New constructs a Manager bound to conn, wiring a lifecycle delegate and
// a refresh-completion callback into every supplied controller. conn and
// controllers must outlive the Manager.
func New(conn *connmgr.Manager, controllers ...RefreshController) *Manager {
	m := &Manager{conn: conn, controllers: controllers}

	conn.AddLifecycleDelegate(m.onConnLifecycle)
	for _, c := range controllers {
		ctrl := c
		ctrl.OnDidRefresh(m.markRefreshed)
		ctrl.OnDidNotRefresh(m.markRefreshFailed)
	}

	return m
}

// AddStateDelegate registers d to receive future state transitions.
func (m *Manager) AddStateDelegate(d StateDelegate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateDelegates = append(m.stateDelegates, d)
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Progress reports the aggregate refresh percentage across every
// registered controller (spec §4.7: "progress reported as 0..100
// integer"). Before the first Refreshing phase, or with no controllers
// registered, it reports 0.
func (m *Manager) Progress() int {
	var observed, expected uint64
	for _, c := range m.controllers {
		o, e := c.RefreshProgress()
		observed += uint64(o)
		expected += uint64(e)
	}
	if expected == 0 {
		return 0
	}
	return int(100 * observed / expected)
}

func (m *Manager) transition(to State) {
	m.mu.Lock()
	from := m.state
	m.state = to
	delegates := make([]StateDelegate, len(m.stateDelegates))
	copy(delegates, m.stateDelegates)
	m.mu.Unlock()

	for _, d := range delegates {
		d(from, to)
	}
}

// Connect drives Disconnected → Resolving → Connecting → (DidConnect) →
// Refreshing, then issues every registered controller's Refresh. connmgr
// resolves and dials synchronously within its own Connect call, so
// Resolving and Connecting are both entered before that call and the
// Manager only ever observes its binary outcome, never an intermediate
// DidNotResolve event of its own (spec's Connection Manager has none).
func (m *Manager) Connect(ctx context.Context, url string, connectTimeout time.Duration, refreshTimeout time.Duration) liberr.Error {
	m.mu.Lock()
	if m.state != Disconnected {
		m.mu.Unlock()
		return model.ErrInProgress.Error()
	}
	m.mu.Unlock()

	m.transition(Resolving)
	m.transition(Connecting)

	if e := m.conn.Connect(ctx, url, connectTimeout); e != nil {
		m.transition(Disconnected)
		return e
	}

	m.beginRefresh(refreshTimeout)
	return nil
}

// beginRefresh resets the per-cycle failure accumulator and issues every
// controller's Refresh concurrently; each controller paces its own query
// stream (spec §4.6/§4.7), this Manager only counts completions.
func (m *Manager) beginRefresh(timeout time.Duration) {
	m.mu.Lock()
	m.pending = len(m.controllers)
	m.refreshErrs = nil
	m.mu.Unlock()

	m.transition(Refreshing)

	if len(m.controllers) == 0 {
		m.transition(Steady)
		return
	}

	for _, c := range m.controllers {
		if e := c.Refresh(timeout); e != nil {
			m.markRefreshFailed(e)
		}
	}
}

// markRefreshed is OnDidRefresh's target for every controller: once every
// controller has reported, Refreshing transitions to Steady.
func (m *Manager) markRefreshed() {
	m.mu.Lock()
	m.pending--
	done := m.pending <= 0
	m.mu.Unlock()

	if done {
		m.transition(Steady)
	}
}

// markRefreshFailed is OnDidNotRefresh's target for every controller. The
// first failure in a refresh cycle begins Disconnecting and asks connmgr
// to tear the connection down; every subsequent failure in the same cycle
// still accumulates into the multierror so the eventual DidDisconnect
// callback reports the complete partial-failure picture (spec §4.7's
// expansion over the distilled "single DidNotRefresh" rule).
func (m *Manager) markRefreshFailed(err liberr.Error) {
	m.mu.Lock()
	m.refreshErrs = multierror.Append(m.refreshErrs, err)
	first := m.state != Disconnecting
	m.mu.Unlock()

	if first {
		m.transition(Disconnecting)
		_ = m.conn.Disconnect()
	}
}

// Disconnect tears the connection down from any state; the resulting
// DidDisconnect fan-out lands the Manager in Disconnected.
func (m *Manager) Disconnect() liberr.Error {
	if m.State() == Disconnected {
		return nil
	}
	m.transition(Disconnecting)
	return m.conn.Disconnect()
}

// onConnLifecycle is connmgr's LifecycleDelegate: the only transport event
// this Manager reacts to directly is DidDisconnect, since WillConnect /
// IsConnecting / DidConnect / DidNotConnect are already folded into
// Connect's own synchronous return above.
func (m *Manager) onConnLifecycle(ev transport.LifecycleEvent, _ error) {
	if ev != transport.DidDisconnect {
		return
	}

	m.mu.Lock()
	already := m.state == Disconnected
	errs := m.refreshErrs
	m.refreshErrs = nil
	m.mu.Unlock()

	if already {
		return
	}

	if errs != nil && m.onDidNotRefresh != nil {
		m.onDidNotRefresh(errs.ErrorOrNil())
	}
	m.transition(Disconnected)
}

// OnDidNotRefresh arms fn to receive the aggregate cause of a failed
// refresh cycle, reported exactly once per Disconnect.
func (m *Manager) OnDidNotRefresh(fn func(error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDidNotRefresh = fn
}

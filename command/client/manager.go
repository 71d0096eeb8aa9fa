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

// Package client implements the client-role Command Manager (spec
// component F): exchange serialisation over a single active slot, frame
// disambiguation between solicited/unsolicited notifications and
// command completion/error responses, and per-exchange timeouts.
package client

import (
	"bytes"
	"context"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/logger"
	"github.com/nabbar/openhlx/model"
	"github.com/nabbar/openhlx/pattern"
	"github.com/nabbar/openhlx/queue"
)

var crlf = []byte("\r\n")

// Writer is the minimal outbound dependency the Manager needs: a single
// serialised write, satisfied by *connmgr.Manager.
type Writer interface {
	Write(p []byte) (int, liberr.Error)
}

// NotificationFunc is invoked once per dispatched notification frame; its
// return value is never consulted (spec §4.4.4).
type NotificationFunc func(frame []byte, captures []string)

// Manager serialises one active exchange at a time over a Writer and
// dispatches everything else as a state-change notification (spec §4.4).
type Manager struct {
	mu  sync.Mutex
	log logger.Logger

	conn       Writer
	errPattern *regexp.Regexp
	notify     *pattern.Registry
	notifyFns  map[pattern.Kind]NotificationFunc

	seq   atomic.Uint64
	q     *queue.Queue[*ExchangeState]
	arena map[ExchangeID]*ExchangeState

	active *ExchangeState
	timer  *time.Timer
	timerC <-chan time.Time

	buf     []byte
	inbound chan struct{}
}

// New constructs a Manager. notify is the shared Pattern Registry (already
// CompileAll'd) controllers register their notification kinds into;
// errPattern is the single literal error-terminator pattern shared by
// every command (spec §4.4: "the shared error pattern"). log may be nil.
func New(conn Writer, errPattern *regexp.Regexp, notify *pattern.Registry, log logger.Logger) *Manager {
	return &Manager{
		log:        log,
		conn:       conn,
		errPattern: errPattern,
		notify:     notify,
		notifyFns:  make(map[pattern.Kind]NotificationFunc),
		q:          queue.New[*ExchangeState](),
		arena:      make(map[ExchangeID]*ExchangeState),
		inbound:    make(chan struct{}, 1),
	}
}

// RegisterNotificationHandler binds fn to kind. Duplicate registration for
// an already-bound kind fails with ErrAlreadyExists (spec §4.4).
func (m *Manager) RegisterNotificationHandler(kind pattern.Kind, fn NotificationFunc) liberr.Error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notifyFns[kind]; ok {
		return model.ErrAlreadyExists.Error()
	}
	m.notifyFns[kind] = fn
	return nil
}

// UnregisterNotificationHandler removes kind's handler, if any. A miss is
// not an error (spec leaves Unregister idempotent; see DESIGN.md Open
// Question 1).
func (m *Manager) UnregisterNotificationHandler(kind pattern.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notifyFns, kind)
}

// SendCommand enqueues request for dispatch once the active slot frees up
// and returns the ExchangeState tracking it. completion is this command's
// own completion pattern (the original SendContext's per-call regexp);
// the shared error pattern is always tested alongside it.
func (m *Manager) SendCommand(request []byte, completion *regexp.Regexp, timeout time.Duration, onComplete CompletionFunc, onError ErrorFunc, userData any) *ExchangeState {
	id := ExchangeID(m.seq.Add(1))
	ex := newExchange(id, request, completion, timeout, onComplete, onError, userData)

	m.mu.Lock()
	m.arena[id] = ex
	m.mu.Unlock()

	m.q.Push(ex)
	return ex
}

// OnApplicationData feeds newly-arrived connection bytes into the
// Manager's inbound accumulator; it is the connmgr ApplicationDataDelegate
// this Manager installs. It never blocks the producer (spec §4.2).
func (m *Manager) OnApplicationData(b []byte) {
	m.mu.Lock()
	m.buf = append(m.buf, b...)
	m.mu.Unlock()

	select {
	case m.inbound <- struct{}{}:
	default:
	}
}

// OnDisconnect drains the queue and fails the active exchange, if any,
// with ErrDisconnected (spec §4.4.6).
func (m *Manager) OnDisconnect() {
	m.mu.Lock()
	active := m.active
	m.active = nil
	m.stopTimerLocked()
	m.mu.Unlock()

	if active != nil && active.OnError != nil {
		active.OnError(active, model.ErrDisconnected.Error())
	}

	for _, ex := range m.q.Drain() {
		if ex.OnError != nil {
			ex.OnError(ex, model.ErrDisconnected.Error())
		}
	}
}

// Run is the Command Manager's single event-loop goroutine (spec
// §4.4/§5): it services the queue, drains inbound bytes, and fires
// per-exchange timeouts, exactly one case per wake. It returns when ctx
// is cancelled.
func (m *Manager) Run(ctx context.Context) {
	m.serviceQueue()

	for {
		m.mu.Lock()
		timerC := m.timerC
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-m.inbound:
			m.drainInbound()
			m.serviceQueue()
		case <-m.q.Signal():
			m.serviceQueue()
		case <-timerC:
			m.onTimeout()
		}
	}
}

// serviceQueue activates the next queued exchange if the active slot is
// free (spec §4.4.1).
func (m *Manager) serviceQueue() {
	m.mu.Lock()
	if m.active != nil {
		m.mu.Unlock()
		return
	}

	ex, ok := m.q.Pop()
	if !ok {
		m.mu.Unlock()
		return
	}

	m.active = ex
	m.armTimerLocked(ex.Timeout)
	m.mu.Unlock()

	_, _ = m.conn.Write(ex.Request)
}

func (m *Manager) armTimerLocked(d time.Duration) {
	m.stopTimerLocked()
	if d <= 0 {
		return
	}
	m.timer = time.NewTimer(d)
	m.timerC = m.timer.C
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.timerC = nil
}

// onTimeout fails the active exchange with ErrTimedOut and clears the
// slot (spec §4.4.5).
func (m *Manager) onTimeout() {
	m.mu.Lock()
	active := m.active
	m.active = nil
	m.stopTimerLocked()
	m.mu.Unlock()

	if active != nil && active.OnError != nil {
		active.OnError(active, model.ErrTimedOut.Error())
	}

	m.serviceQueue()
}

// drainInbound splits the accumulated buffer into CR-LF terminated frames
// (spec glossary: "Frame. One CR-LF terminated ASCII line") and dispatches
// each in arrival order, leaving any trailing partial line buffered.
func (m *Manager) drainInbound() {
	m.mu.Lock()
	buf := m.buf
	m.mu.Unlock()

	for {
		idx := bytes.Index(buf, crlf)
		if idx < 0 {
			break
		}

		frame := buf[:idx+len(crlf)]
		buf = buf[idx+len(crlf):]
		m.dispatchFrame(frame)
	}

	m.mu.Lock()
	m.buf = buf
	m.mu.Unlock()
}

// dispatchFrame implements the per-frame disambiguation of spec §4.4
// steps 2-4: while an exchange is active, test its completion pattern,
// then the shared error pattern, before falling back to notification
// dispatch; the active-slot clear is atomic with respect to this call
// (spec's "Key invariant").
func (m *Manager) dispatchFrame(frame []byte) {
	m.mu.Lock()
	active := m.active
	m.mu.Unlock()

	if active != nil {
		if loc := active.Completion.FindSubmatchIndex(frame); loc != nil {
			caps := captureStrings(frame, loc)
			m.clearActive()
			if active.OnComplete != nil {
				active.OnComplete(active, caps)
			}
			return
		}

		if m.errPattern != nil {
			if loc := m.errPattern.FindSubmatchIndex(frame); loc != nil {
				m.clearActive()
				if active.OnError != nil {
					active.OnError(active, model.ErrBadCommand.Errorf(string(frame)))
				}
				return
			}
		}
	}

	if match, ok := m.notify.Match(frame); ok {
		m.mu.Lock()
		fn := m.notifyFns[match.Kind]
		m.mu.Unlock()

		if fn != nil {
			fn(frame, match.Captures)
		}
		return
	}

	if m.log != nil {
		m.log.Debug("discarding unmatched frame", map[string]interface{}{"frame": string(frame)})
	}
}

func (m *Manager) clearActive() {
	m.mu.Lock()
	m.active = nil
	m.stopTimerLocked()
	m.mu.Unlock()
	m.serviceQueue()
}

func captureStrings(buf []byte, loc []int) []string {
	caps := make([]string, 0, len(loc)/2-1)
	for g := 1; g*2 < len(loc); g++ {
		if loc[g*2] < 0 {
			continue
		}
		caps = append(caps, string(buf[loc[g*2]:loc[g*2+1]]))
	}
	return caps
}

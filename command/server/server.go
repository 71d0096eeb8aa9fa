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

// Package server implements the server-role Command Manager (spec
// component G): one or more bound listeners, per-connection request
// framing, and registry-driven request dispatch.
package server

import (
	"bytes"
	"context"
	"net"
	"sync"

	"github.com/google/uuid"

	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/logger"
	"github.com/nabbar/openhlx/pattern"
	"github.com/nabbar/openhlx/transport"
)

var crlf = []byte("\r\n")

// standardErrorReply is the literal reply for an inbound frame that
// matches no registered request pattern (spec §4.5).
var standardErrorReply = []byte("ERROR\r\n")

// ConnectionID uniquely identifies one accepted inbound connection for the
// lifetime of the process (spec §4.5: "a unique ConnectionId").
type ConnectionID string

// RequestFunc handles one matched inbound request frame. It is invoked on
// the connection's own read goroutine (spec §5: ordering is per-connection
// FIFO, not global).
type RequestFunc func(conn *Connection, frame []byte, captures []string)

// Manager owns every bound listener and every accepted Connection (spec
// §4.5: "Listens on one or more bound sockets").
type Manager struct {
	mu          sync.Mutex
	log         logger.Logger
	requests    *pattern.Registry
	handlers    map[pattern.Kind]RequestFunc
	listeners   []*transport.Listener
	connections map[ConnectionID]*Connection
}

// New constructs a Manager. requests is the shared, already CompileAll'd
// request-pattern Registry the per-property controllers register their
// request kinds into.
func New(requests *pattern.Registry, log logger.Logger) *Manager {
	return &Manager{
		log:         log,
		requests:    requests,
		handlers:    make(map[pattern.Kind]RequestFunc),
		connections: make(map[ConnectionID]*Connection),
	}
}

// RegisterRequestHandler binds fn to kind, replacing any prior handler for
// the same kind — one controller owns each request kind, so unlike
// notification handlers there is no duplicate-registration guard here.
func (m *Manager) RegisterRequestHandler(kind pattern.Kind, fn RequestFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[kind] = fn
}

// Listen binds address and begins accepting connections on it. Calling it
// more than once (e.g. once for the standard port, once for the legacy
// high-numbered port) is how the device's dual-listener shape is realised
// (spec §4.5: "typically two... semantically equivalent").
func (m *Manager) Listen(address string) liberr.Error {
	ln, err := transport.Listen(address, m.onAccept)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.listeners = append(m.listeners, ln)
	m.mu.Unlock()
	return nil
}

func (m *Manager) onAccept(c *transport.Connection) {
	conn := &Connection{id: ConnectionID(uuid.New().String()), conn: c}

	m.mu.Lock()
	m.connections[conn.id] = conn
	m.mu.Unlock()

	c.RegisterFuncLifecycle(func(ev transport.LifecycleEvent, _ error) {
		if ev == transport.DidDisconnect {
			m.mu.Lock()
			delete(m.connections, conn.id)
			m.mu.Unlock()
		}
	})

	go m.readLoop(conn)
}

// readLoop is the per-connection goroutine: it blocks on Read, splits
// CR-LF terminated frames, and dispatches each against the request
// registry (spec §4.5).
func (m *Manager) readLoop(conn *Connection) {
	buf := make([]byte, 4096)
	var acc []byte

	for {
		n, err := conn.conn.Read(buf)
		if err != nil {
			return
		}

		acc = append(acc, buf[:n]...)

		for {
			idx := bytes.Index(acc, crlf)
			if idx < 0 {
				break
			}

			frame := acc[:idx+len(crlf)]
			acc = acc[idx+len(crlf):]
			m.dispatch(conn, frame)
		}
	}
}

func (m *Manager) dispatch(conn *Connection, frame []byte) {
	match, ok := m.requests.Match(frame)
	if !ok {
		_ = conn.SendErrorResponse()
		if m.log != nil {
			m.log.Debug("inbound frame matched no request pattern", map[string]interface{}{"frame": string(frame)})
		}
		return
	}

	m.mu.Lock()
	fn := m.handlers[match.Kind]
	m.mu.Unlock()

	if fn == nil {
		_ = conn.SendErrorResponse()
		return
	}

	fn(conn, frame, match.Captures)
}

// Shutdown closes every listener and every accepted connection.
func (m *Manager) Shutdown(ctx context.Context) liberr.Error {
	m.mu.Lock()
	listeners := make([]*transport.Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	var last liberr.Error
	for _, ln := range listeners {
		if err := ln.Shutdown(ctx); err != nil {
			last = err
		}
	}
	return last
}

// Addrs returns the bound address of every listener, in Listen call order.
func (m *Manager) Addrs() []net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]net.Addr, 0, len(m.listeners))
	for _, ln := range m.listeners {
		out = append(out, ln.Addr())
	}
	return out
}

// Connections returns a snapshot of currently accepted connection IDs.
func (m *Manager) Connections() []ConnectionID {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ConnectionID, 0, len(m.connections))
	for id := range m.connections {
		out = append(out, id)
	}
	return out
}

// Broadcast writes buf to every currently accepted connection, used by a
// per-property controller (component H) to fan a field change out to
// every other connected peer once its own request handler has applied
// the mutation locally (spec §4.5, §4.9). The connection snapshot is
// taken under the lock and every write happens after it is released, per
// §5's "no iterator retained across suspension points" — a slow or
// stalled peer never blocks acceptance of new connections or delivery to
// the rest.
func (m *Manager) Broadcast(buf []byte) {
	m.mu.Lock()
	conns := make([]*Connection, 0, len(m.connections))
	for _, c := range m.connections {
		conns = append(conns, c)
	}
	m.mu.Unlock()

	for _, c := range conns {
		_ = c.SendResponse(buf)
	}
}

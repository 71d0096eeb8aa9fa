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

// Package transport implements the single-TCP-stream Connection
// abstraction (spec component B) on top of the standard library, plus a
// minimal listener for the server role (spec component C's inbound half).
package transport

import (
	"net"
	"sync"

	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/model"
)

// LifecycleEvent tags one of the Connection lifecycle transitions a
// Connection Manager subscribes to (spec §4.2).
type LifecycleEvent uint8

const (
	WillConnect LifecycleEvent = iota
	IsConnecting
	DidConnect
	DidNotConnect
	DidDisconnect
)

// LifecycleHandler receives a LifecycleEvent and, for DidNotConnect /
// DidDisconnect, the error that caused it (nil otherwise).
type LifecycleHandler func(LifecycleEvent, error)

// ErrFunc receives every error a Connection observes on its read/write
// path, mirroring the socket test suite's RegisterFuncError contract.
type ErrFunc func(errs ...error)

// Connection is one TCP stream: it emits framed bytes up via Read,
// accepts bytes down via Write, and surfaces lifecycle events (spec §4.2).
// It is not safe for concurrent use by multiple goroutines; it is owned
// exclusively by the single event-loop goroutine of its Connection
// Manager (spec §5).
type Connection struct {
	mu        sync.Mutex
	conn      net.Conn
	errFn     ErrFunc
	lifecycle LifecycleHandler
}

// Dial opens a client-role Connection to address, firing WillConnect
// before dialing and DidConnect/DidNotConnect after.
func Dial(address string) (*Connection, liberr.Error) {
	c := &Connection{}
	if e := c.connect(address); e != nil {
		return nil, e
	}
	return c, nil
}

// NewFromAccepted wraps an already-accepted net.Conn as a server-role
// Connection (no dial phase: it starts DidConnect).
func NewFromAccepted(nc net.Conn) *Connection {
	return &Connection{conn: nc}
}

func (c *Connection) connect(address string) liberr.Error {
	c.fireLifecycle(WillConnect, nil)
	c.fireLifecycle(IsConnecting, nil)

	nc, err := net.Dial("tcp", address)
	if err != nil {
		c.fireLifecycle(DidNotConnect, err)
		return model.ErrNotConnected.Error(err)
	}

	c.mu.Lock()
	c.conn = nc
	c.mu.Unlock()

	c.fireLifecycle(DidConnect, nil)
	return nil
}

// RegisterFuncError sets (or clears, with nil) the callback invoked with
// every error observed by Write/Read/Close.
func (c *Connection) RegisterFuncError(fn ErrFunc) {
	c.mu.Lock()
	c.errFn = fn
	c.mu.Unlock()
}

// RegisterFuncLifecycle sets (or clears, with nil) the callback invoked
// on every LifecycleEvent.
func (c *Connection) RegisterFuncLifecycle(fn LifecycleHandler) {
	c.mu.Lock()
	c.lifecycle = fn
	c.mu.Unlock()
}

func (c *Connection) fireLifecycle(ev LifecycleEvent, err error) {
	c.mu.Lock()
	fn := c.lifecycle
	c.mu.Unlock()

	if fn != nil {
		fn(ev, err)
	}
}

func (c *Connection) fireError(err error) {
	if err == nil {
		return
	}

	c.mu.Lock()
	fn := c.errFn
	c.mu.Unlock()

	if fn != nil {
		fn(err)
	}
}

// IsConnected reports whether the Connection currently has a live socket.
func (c *Connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Write writes p to the wire. It fails with ErrNotConnected before a
// connection exists.
func (c *Connection) Write(p []byte) (int, liberr.Error) {
	c.mu.Lock()
	nc := c.conn
	c.mu.Unlock()

	if nc == nil {
		e := model.ErrNotConnected.Error()
		c.fireError(e)
		return 0, e
	}

	n, err := nc.Write(p)
	if err != nil {
		le := model.ErrWriteStalled.Error(err)
		c.fireError(le)
		return n, le
	}
	return n, nil
}

// Read reads into p from the wire. It fails with ErrNotConnected before a
// connection exists.
func (c *Connection) Read(p []byte) (int, liberr.Error) {
	c.mu.Lock()
	nc := c.conn
	c.mu.Unlock()

	if nc == nil {
		e := model.ErrNotConnected.Error()
		c.fireError(e)
		return 0, e
	}

	n, err := nc.Read(p)
	if err != nil {
		le := model.ErrDisconnected.Error(err)
		c.fireError(le)
		return n, le
	}
	return n, nil
}

// Close tears the Connection down and fires DidDisconnect. Closing an
// already-closed or never-connected Connection returns ErrNotConnected.
func (c *Connection) Close() liberr.Error {
	c.mu.Lock()
	nc := c.conn
	c.conn = nil
	c.mu.Unlock()

	if nc == nil {
		e := model.ErrNotConnected.Error()
		c.fireError(e)
		return e
	}

	err := nc.Close()
	c.fireLifecycle(DidDisconnect, err)
	if err != nil {
		le := model.ErrInternal.Error(err)
		c.fireError(le)
		return le
	}
	return nil
}

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

package transport

import (
	"context"
	"net"
	"sync"

	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/model"
)

// AcceptFunc is invoked once per accepted inbound Connection, on the
// listener's accept goroutine.
type AcceptFunc func(*Connection)

// Listener is the inbound half of the server role (spec component C):
// it accepts TCP connections and hands each one, wrapped, to an
// AcceptFunc.
type Listener struct {
	mu       sync.Mutex
	ln       net.Listener
	accepted map[*Connection]struct{}
	done     chan struct{}
}

// Listen binds address and starts accepting in a background goroutine,
// invoking onAccept for every new Connection.
func Listen(address string, onAccept AcceptFunc) (*Listener, liberr.Error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, model.ErrNotConnected.Error(err)
	}

	l := &Listener{
		ln:       ln,
		accepted: make(map[*Connection]struct{}),
		done:     make(chan struct{}),
	}

	go l.acceptLoop(onAccept)
	return l, nil
}

// Addr returns the listener's bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

func (l *Listener) acceptLoop(onAccept AcceptFunc) {
	for {
		nc, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.done:
				return
			default:
				continue
			}
		}

		c := NewFromAccepted(nc)

		l.mu.Lock()
		l.accepted[c] = struct{}{}
		l.mu.Unlock()

		c.RegisterFuncLifecycle(func(ev LifecycleEvent, _ error) {
			if ev == DidDisconnect {
				l.mu.Lock()
				delete(l.accepted, c)
				l.mu.Unlock()
			}
		})

		if onAccept != nil {
			onAccept(c)
		}
	}
}

// Shutdown closes the listener and every currently accepted Connection.
// It does not wait past ctx's deadline for in-flight accepts to settle.
func (l *Listener) Shutdown(ctx context.Context) liberr.Error {
	close(l.done)

	if err := l.ln.Close(); err != nil {
		return model.ErrInternal.Error(err)
	}

	l.mu.Lock()
	conns := make([]*Connection, 0, len(l.accepted))
	for c := range l.accepted {
		conns = append(conns, c)
	}
	l.mu.Unlock()

	for _, c := range conns {
		select {
		case <-ctx.Done():
			return model.ErrTimedOut.Error(ctx.Err())
		default:
			_ = c.Close()
		}
	}

	return nil
}

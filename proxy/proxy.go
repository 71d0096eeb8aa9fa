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

// Package proxy implements the Proxy Splice (spec component J): the glue
// a proxy-role per-property controller falls back to when it cannot
// answer a downstream request from its own (not yet refreshed) local
// cache. The Splice relays the original request bytes upstream as an
// opaque passthrough exchange and wires the upstream response straight
// back to the originating downstream connection.
package proxy

import (
	"context"
	"regexp"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/nabbar/openhlx/command/client"
	"github.com/nabbar/openhlx/command/server"
	liberr "github.com/nabbar/openhlx/errors"
	"github.com/nabbar/openhlx/model"
)

// defaultInflight is the per-ConnectionID weight of the inflight limiter
// (spec §4.8: "a per-ConnectionId inflight limit (default 1)"); a second
// proxied request from the same downstream connection blocks on Acquire
// until the first completes rather than racing it upstream.
const defaultInflight = 1

// CompletionFunc is invoked once the upstream passthrough exchange
// completes; captures are whatever the upstream completion pattern
// captured, letting the original controller format its own downstream
// reply without the Splice knowing the entity's wire shape.
type CompletionFunc func(downstream *server.Connection, captures []string)

// ErrorFunc is invoked once the upstream passthrough exchange fails. A nil
// ErrorFunc falls back to Splice writing SendErrorResponse downstream
// itself (spec §4.8 step 4).
type ErrorFunc func(downstream *server.Connection, err liberr.Error)

// ProxyContext binds one downstream request to its outbound upstream
// exchange (spec §4.8). Its lifetime is tied exclusively to the
// client.ExchangeState it rides as UserData — there is no separate arena
// keeping it alive, which is this module's resolution of the open
// question the original implementation left ambiguous (DESIGN.md).
type ProxyContext struct {
	Downstream *server.Connection
	Request    []byte
	OnComplete CompletionFunc
	OnError    ErrorFunc
}

// Splice forwards unanswerable server-side requests through an upstream
// client.Manager and reflects the response back downstream (spec §4.8).
// One Splice is shared by every proxy-role controller in a process, since
// the inflight limiter and loop-prevention state are per-ConnectionID,
// not per-entity.
type Splice struct {
	upstream *client.Manager

	mu        sync.Mutex
	limiters  map[server.ConnectionID]*semaphore.Weighted
	forwarded map[string]int
}

// New constructs a Splice relaying through upstream.
func New(upstream *client.Manager) *Splice {
	return &Splice{
		upstream:  upstream,
		limiters:  make(map[server.ConnectionID]*semaphore.Weighted),
		forwarded: make(map[string]int),
	}
}

func (s *Splice) limiterFor(id server.ConnectionID) *semaphore.Weighted {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[id]
	if !ok {
		l = semaphore.NewWeighted(defaultInflight)
		s.limiters[id] = l
	}
	return l
}

// WasForwardedByMe reports whether frame is byte-identical to a request
// this Splice currently has in flight upstream — the "forwarded-by-me"
// bit spec §4.8 has inbound dispatch inspect to break a cycle when the
// upstream is itself a proxy pointed back at this process.
func (s *Splice) WasForwardedByMe(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forwarded[string(frame)] > 0
}

func (s *Splice) markForwarded(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forwarded[string(frame)]++
}

func (s *Splice) unmarkForwarded(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := string(frame)
	if s.forwarded[key] <= 1 {
		delete(s.forwarded, key)
		return
	}
	s.forwarded[key]--
}

// Forward relays pctx.Request upstream as an opaque passthrough exchange
// (spec §4.8 steps 1-2), blocking on this connection's inflight limiter
// until a slot frees, and returns once the exchange has been queued — not
// once it completes; completion arrives later on pctx.OnComplete/OnError.
// completion is the upstream response pattern for the logical kind
// originally requested; any solicited notifications interleaved ahead of
// it are dispatched by the upstream client.Manager itself, the same as
// for any other exchange (spec §4.8 step 3's first half comes for free).
func (s *Splice) Forward(ctx context.Context, completion *regexp.Regexp, timeout time.Duration, pctx *ProxyContext) liberr.Error {
	if pctx == nil || pctx.Downstream == nil {
		return model.ErrInvalid.Errorf("proxy: nil downstream connection")
	}

	if s.WasForwardedByMe(pctx.Request) {
		return model.ErrInvalid.Errorf("proxy: loop detected, request already forwarded by this splice")
	}

	limiter := s.limiterFor(pctx.Downstream.ID())
	if err := limiter.Acquire(ctx, defaultInflight); err != nil {
		return model.ErrInProgress.Error()
	}

	s.markForwarded(pctx.Request)

	s.upstream.SendCommand(pctx.Request, completion, timeout,
		func(ex *client.ExchangeState, captures []string) {
			s.onComplete(limiter, ex, captures)
		},
		func(ex *client.ExchangeState, err liberr.Error) {
			s.onError(limiter, ex, err)
		},
		pctx,
	)
	return nil
}

// onComplete recovers the ProxyContext from the exchange's UserData,
// releases the inflight slot and the loop-prevention mark, then invokes
// the downstream completion handler (spec §4.8 step 3's second half).
func (s *Splice) onComplete(limiter *semaphore.Weighted, ex *client.ExchangeState, captures []string) {
	pctx, ok := ex.UserData.(*ProxyContext)
	if !ok || pctx == nil {
		limiter.Release(defaultInflight)
		return
	}

	s.unmarkForwarded(pctx.Request)
	limiter.Release(defaultInflight)

	if pctx.OnComplete != nil {
		pctx.OnComplete(pctx.Downstream, captures)
	}
}

// onError recovers the ProxyContext, releases the held resources, and
// either invokes the downstream error handler or, absent one, writes the
// standard error response downstream itself (spec §4.8 step 4).
func (s *Splice) onError(limiter *semaphore.Weighted, ex *client.ExchangeState, err liberr.Error) {
	pctx, ok := ex.UserData.(*ProxyContext)
	if !ok || pctx == nil {
		limiter.Release(defaultInflight)
		return
	}

	s.unmarkForwarded(pctx.Request)
	limiter.Release(defaultInflight)

	if pctx.OnError != nil {
		pctx.OnError(pctx.Downstream, err)
		return
	}
	_ = pctx.Downstream.SendErrorResponse()
}

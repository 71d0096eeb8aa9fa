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

package client

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	liberr "github.com/nabbar/openhlx/errors"
)

// ExchangeID is the arena key for an outstanding exchange. It is a plain
// incrementing counter, not a UUID: the UUID on ExchangeState.LogID exists
// only to make a single exchange traceable across log lines, per
// SPEC_FULL.md's "owned records + identifiers" design note.
type ExchangeID uint64

// CompletionFunc is invoked once, on the run-loop goroutine, when an
// exchange's completion pattern matches.
type CompletionFunc func(ex *ExchangeState, captures []string)

// ErrorFunc is invoked once, on the run-loop goroutine, when an exchange
// fails: wire-level error frame, timeout, or disconnect.
type ErrorFunc func(ex *ExchangeState, err liberr.Error)

// ExchangeState is one outstanding request/response exchange (spec §4.4).
// It is owned exclusively by the Manager that created it from the moment
// SendCommand returns until exactly one of OnComplete/OnError fires.
type ExchangeState struct {
	ID         ExchangeID
	LogID      string
	Request    []byte
	Completion *regexp.Regexp
	Timeout    time.Duration
	OnComplete CompletionFunc
	OnError    ErrorFunc

	// UserData carries caller-owned context through to whichever handler
	// fires — SPEC_FULL.md §4.8 ties proxy.ProxyContext's lifetime to
	// this field rather than a side table.
	UserData any
}

func newExchange(id ExchangeID, request []byte, completion *regexp.Regexp, timeout time.Duration, onComplete CompletionFunc, onError ErrorFunc, userData any) *ExchangeState {
	return &ExchangeState{
		ID:         id,
		LogID:      uuid.New().String(),
		Request:    request,
		Completion: completion,
		Timeout:    timeout,
		OnComplete: onComplete,
		OnError:    onError,
		UserData:   userData,
	}
}

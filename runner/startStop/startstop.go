/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package startStop wraps a start/stop function pair into a restartable,
// concurrency-safe service handle: Start launches the start function in its
// own goroutine and returns immediately, Stop cancels it and waits for the
// paired stop function to run exactly once.
package startStop

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Func is the shape of both the start and the stop callback: it blocks
// until ctx is done (start) or until teardown completes (stop), and
// reports any failure.
type Func func(ctx context.Context) error

// StartStop is a restartable service handle around one start/stop Func
// pair. Every method is safe to call from multiple goroutines.
type StartStop interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	IsRunning() bool
	Uptime() time.Duration
	ErrorsLast() error
	ErrorsList() []error
}

type inst struct {
	start Func
	stop  Func

	mu      sync.Mutex
	running bool
	startAt time.Time
	cancel  context.CancelFunc
	once    *sync.Once

	errMu sync.Mutex
	errs  []error
}

// New builds a StartStop around start and stop; either may be nil, in
// which case the corresponding Start/Stop call records an "invalid ...
// function" error instead of panicking.
func New(start, stop Func) StartStop {
	return &inst{start: start, stop: stop}
}

func (i *inst) addError(err error) {
	if err == nil {
		return
	}

	i.errMu.Lock()
	i.errs = append(i.errs, err)
	i.errMu.Unlock()
}

func (i *inst) clearErrors() {
	i.errMu.Lock()
	i.errs = nil
	i.errMu.Unlock()
}

// ErrorsLast returns the most recently recorded error, or nil.
func (i *inst) ErrorsLast() error {
	i.errMu.Lock()
	defer i.errMu.Unlock()

	if len(i.errs) == 0 {
		return nil
	}

	return i.errs[len(i.errs)-1]
}

// ErrorsList returns every error recorded since the last Start.
func (i *inst) ErrorsList() []error {
	i.errMu.Lock()
	defer i.errMu.Unlock()

	out := make([]error, len(i.errs))
	copy(out, i.errs)
	return out
}

// IsRunning reports whether the start function is currently executing.
func (i *inst) IsRunning() bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.running
}

// Uptime reports how long the current run has been alive, or zero when
// not running.
func (i *inst) Uptime() time.Duration {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.running || i.startAt.IsZero() {
		return 0
	}

	return time.Since(i.startAt)
}

// Start stops whatever instance is currently running, clears the error
// history, and launches start in a new goroutine. It returns immediately;
// a nil start function or a failure inside it surfaces through
// ErrorsLast/ErrorsList instead of Start's own return value.
func (i *inst) Start(ctx context.Context) error {
	_ = i.Stop(ctx)

	i.clearErrors()

	if i.start == nil {
		i.addError(errors.New("invalid start function"))
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	once := &sync.Once{}

	i.mu.Lock()
	i.cancel = cancel
	i.once = once
	i.running = true
	i.startAt = time.Now()
	i.mu.Unlock()

	go func() {
		err := i.start(runCtx)
		i.addError(err)

		i.mu.Lock()
		i.running = false
		i.startAt = time.Time{}
		i.mu.Unlock()
	}()

	return nil
}

// Stop cancels the running instance's context and runs the paired stop
// function exactly once, regardless of how many goroutines call Stop
// concurrently. It is a no-op when nothing is running.
func (i *inst) Stop(ctx context.Context) error {
	i.mu.Lock()
	running := i.running
	cancel := i.cancel
	once := i.once
	i.mu.Unlock()

	if !running {
		return nil
	}

	if cancel != nil {
		cancel()
	}

	if once != nil {
		once.Do(func() {
			if i.stop == nil {
				i.addError(errors.New("invalid stop function"))
				return
			}

			i.addError(i.stop(ctx))
		})
	}

	i.mu.Lock()
	i.running = false
	i.startAt = time.Time{}
	i.mu.Unlock()

	return nil
}

// Restart stops the current instance, if any, and starts a fresh one.
func (i *inst) Restart(ctx context.Context) error {
	_ = i.Stop(ctx)
	return i.Start(ctx)
}

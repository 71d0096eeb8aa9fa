/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
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

// Package sem is the worker-limiting core of the semaphore facade: a
// weighted slot limiter for a positive count, a GOMAXPROCS-sized limiter
// when asked for 0, and a plain sync.WaitGroup when asked for a negative
// (unlimited) count.
package sem

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Semaphore is the minimal worker-limiting contract, independent of any
// progress-bar concern.
type Semaphore interface {
	context.Context

	Weighted() int64
	NewWorker() error
	NewWorkerTry() bool
	DeferWorker()
	WaitAll() error
	DeferMain()

	New() Semaphore
}

// MaxSimultaneous returns the default worker limit used when New is asked
// for 0: the runtime's GOMAXPROCS.
func MaxSimultaneous() int {
	return runtime.GOMAXPROCS(0)
}

// SetSimultaneous clamps n into [1, MaxSimultaneous()], returning
// MaxSimultaneous() itself for any n outside that range.
func SetSimultaneous(n int64) int64 {
	max := int64(MaxSimultaneous())
	if n < 1 || n > max {
		return max
	}
	return n
}

// New builds a Semaphore limiting concurrent workers to nbrSimultaneous:
// 0 means MaxSimultaneous(), negative means unlimited (WaitGroup-only).
func New(ctx context.Context, nbrSimultaneous int64) Semaphore {
	c, cancel := context.WithCancel(ctx)

	if nbrSimultaneous < 0 {
		return &unlimited{ctx: c, cancel: cancel}
	}
	if nbrSimultaneous == 0 {
		nbrSimultaneous = int64(MaxSimultaneous())
	}

	return &weighted{
		ctx:    c,
		cancel: cancel,
		weight: nbrSimultaneous,
		sem:    semaphore.NewWeighted(nbrSimultaneous),
	}
}

type weighted struct {
	ctx    context.Context
	cancel context.CancelFunc
	weight int64
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
}

func (w *weighted) Deadline() (time.Time, bool)        { return w.ctx.Deadline() }
func (w *weighted) Done() <-chan struct{}              { return w.ctx.Done() }
func (w *weighted) Err() error                         { return w.ctx.Err() }
func (w *weighted) Value(key interface{}) interface{}  { return w.ctx.Value(key) }

func (w *weighted) Weighted() int64 { return w.weight }

func (w *weighted) NewWorker() error {
	if err := w.sem.Acquire(w.ctx, 1); err != nil {
		return err
	}
	w.wg.Add(1)
	return nil
}

func (w *weighted) NewWorkerTry() bool {
	if !w.sem.TryAcquire(1) {
		return false
	}
	w.wg.Add(1)
	return true
}

func (w *weighted) DeferWorker() {
	w.sem.Release(1)
	w.wg.Done()
}

func (w *weighted) WaitAll() error {
	w.wg.Wait()
	return nil
}

func (w *weighted) DeferMain() {
	w.cancel()
}

func (w *weighted) New() Semaphore {
	return New(w.ctx, w.weight)
}

type unlimited struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (u *unlimited) Deadline() (time.Time, bool)       { return u.ctx.Deadline() }
func (u *unlimited) Done() <-chan struct{}             { return u.ctx.Done() }
func (u *unlimited) Err() error                        { return u.ctx.Err() }
func (u *unlimited) Value(key interface{}) interface{} { return u.ctx.Value(key) }

func (u *unlimited) Weighted() int64 { return -1 }

func (u *unlimited) NewWorker() error {
	select {
	case <-u.ctx.Done():
		return u.ctx.Err()
	default:
	}
	u.wg.Add(1)
	return nil
}

func (u *unlimited) NewWorkerTry() bool {
	select {
	case <-u.ctx.Done():
		return false
	default:
	}
	u.wg.Add(1)
	return true
}

func (u *unlimited) DeferWorker() { u.wg.Done() }

func (u *unlimited) WaitAll() error {
	u.wg.Wait()
	return nil
}

func (u *unlimited) DeferMain() { u.cancel() }

func (u *unlimited) New() Semaphore { return New(u.ctx, -1) }

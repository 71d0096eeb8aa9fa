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

// Package semaphore is the worker-limiting, optionally progress-reporting
// facade used by controller.Refresh and the proxy inflight limiter. A
// Semaphore built with withProgress=false hands out Bar instances whose
// increments are discarded (package nobar); built with withProgress=true,
// every Bar renders against a shared *mpb.Progress (package bar).
package semaphore

import (
	"context"

	"github.com/vbauerster/mpb/v8"

	"github.com/nabbar/openhlx/semaphore/bar"
	"github.com/nabbar/openhlx/semaphore/nobar"
	"github.com/nabbar/openhlx/semaphore/sem"
	"github.com/nabbar/openhlx/semaphore/types"
)

// Semaphore re-exports types.Semaphore so callers only need this package.
type Semaphore = types.Semaphore

// Bar re-exports types.Bar.
type Bar = types.Bar

type model struct {
	sem.Semaphore
	pgb *mpb.Progress
}

// New builds a Semaphore limiting concurrent workers to weight (see
// sem.New for the meaning of 0/negative) and, when withProgress is true,
// backed by a live *mpb.Progress that every Bar factory renders against.
func New(ctx context.Context, weight int64, withProgress bool) types.Semaphore {
	m := &model{Semaphore: sem.New(ctx, weight)}
	if withProgress {
		m.pgb = mpb.New(mpb.WithWidth(40), mpb.WithContext(ctx))
	}
	return m
}

// MaxSimultaneous re-exports sem.MaxSimultaneous.
func MaxSimultaneous() int {
	return sem.MaxSimultaneous()
}

// SetSimultaneous re-exports sem.SetSimultaneous.
func SetSimultaneous(n int64) int64 {
	return sem.SetSimultaneous(n)
}

func (m *model) GetMPB() interface{} {
	if m.pgb == nil {
		return nil
	}
	return m.pgb
}

// Clone returns an independent Semaphore with the same weight, sharing
// this one's *mpb.Progress container instead of starting a fresh one.
func (m *model) Clone() types.Semaphore {
	return &model{Semaphore: m.Semaphore.New(), pgb: m.pgb}
}

func (m *model) New() types.SemPgb {
	return &model{Semaphore: m.Semaphore.New(), pgb: m.pgb}
}

func (m *model) DeferMain() {
	if m.pgb != nil {
		m.pgb.Wait()
	}
	m.Semaphore.DeferMain()
}

func (m *model) BarBytes(title string, item string, total int64, drop bool, prev types.Bar) types.Bar {
	if m.pgb == nil {
		return nobar.New(m, total, drop)
	}
	return bar.NewBytes(m, title, item, total, drop, prev)
}

func (m *model) BarTime(title string, item string, total int64, drop bool, prev types.Bar) types.Bar {
	if m.pgb == nil {
		return nobar.New(m, total, drop)
	}
	return bar.NewTime(m, title, item, total, drop, prev)
}

func (m *model) BarNumber(title string, item string, total int64, drop bool, prev types.Bar) types.Bar {
	if m.pgb == nil {
		return nobar.New(m, total, drop)
	}
	return bar.NewNumber(m, title, item, total, drop, prev)
}

func (m *model) BarOpts(total int64, drop bool) types.Bar {
	if m.pgb == nil {
		return nobar.New(m, total, drop)
	}
	return bar.New(m, total, drop)
}

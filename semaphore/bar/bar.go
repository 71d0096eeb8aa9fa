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

// Package bar implements types.Bar against a live *mpb.Progress, pulled
// from the owning SemPgb's GetMPB(). Used whenever the owning Semaphore was
// built with progress reporting enabled.
package bar

import (
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/nabbar/openhlx/semaphore/types"
)

type model struct {
	types.SemPgb

	bar   *mpb.Bar
	total int64
	cur   atomic.Int64
}

// New creates a plain bar with no decorators, total set to total.
func New(sem types.SemPgb, total int64, drop bool) types.Bar {
	return build(sem, total, drop, nil, nil)
}

// NewBytes creates a bar decorated for a byte-counted transfer (download,
// copy).
func NewBytes(sem types.SemPgb, title string, item string, total int64, drop bool, prev types.Bar) types.Bar {
	opts := []mpb.BarOption{
		mpb.PrependDecorators(decor.Name(title+" "+item), decor.CountersKibiByte("% .2f / % .2f")),
		mpb.AppendDecorators(decor.Percentage()),
	}
	return build(sem, total, drop, prev, opts)
}

// NewTime creates a bar decorated with an elapsed-time counter.
func NewTime(sem types.SemPgb, title string, item string, total int64, drop bool, prev types.Bar) types.Bar {
	opts := []mpb.BarOption{
		mpb.PrependDecorators(decor.Name(title+" "+item)),
		mpb.AppendDecorators(decor.Elapsed(decor.ET_STYLE_GO)),
	}
	return build(sem, total, drop, prev, opts)
}

// NewNumber creates a bar decorated with a plain item counter (n / total).
func NewNumber(sem types.SemPgb, title string, item string, total int64, drop bool, prev types.Bar) types.Bar {
	opts := []mpb.BarOption{
		mpb.PrependDecorators(decor.Name(title+" "+item), decor.CountersNoUnit("%d / %d")),
	}
	return build(sem, total, drop, prev, opts)
}

func build(sem types.SemPgb, total int64, drop bool, prev types.Bar, opts []mpb.BarOption) types.Bar {
	m := &model{SemPgb: sem, total: total}

	pgb, _ := sem.GetMPB().(*mpb.Progress)
	if pgb == nil {
		return m
	}

	o := append([]mpb.BarOption{}, opts...)
	if drop {
		o = append(o, mpb.BarRemoveOnComplete())
	}
	if p, ok := prev.(*model); ok && p != nil && p.bar != nil {
		o = append(o, mpb.BarQueueAfter(p.bar))
	}

	m.bar = pgb.AddBar(total, o...)
	return m
}

func (m *model) Inc(n int) {
	m.cur.Add(int64(n))
	if m.bar != nil {
		m.bar.IncrBy(n)
	}
}

func (m *model) Inc64(n int64) {
	m.cur.Add(n)
	if m.bar != nil {
		m.bar.IncrInt64(n)
	}
}

func (m *model) Dec(n int) {
	m.cur.Add(-int64(n))
	if m.bar != nil {
		m.bar.IncrBy(-n)
	}
}

func (m *model) Dec64(n int64) {
	m.cur.Add(-n)
	if m.bar != nil {
		m.bar.IncrInt64(-n)
	}
}

func (m *model) Reset(total int64, current int64) {
	m.total = total
	m.cur.Store(current)
	if m.bar != nil {
		m.bar.SetCurrent(current)
	}
}

func (m *model) Total() int64   { return m.total }
func (m *model) Current() int64 { return m.cur.Load() }

func (m *model) Completed() bool {
	if m.bar == nil {
		return true
	}
	return m.bar.Completed()
}

func (m *model) Complete() {
	m.cur.Store(m.total)
	if m.bar != nil {
		m.bar.SetCurrent(m.total)
	}
}

func (m *model) DeferWorker() {
	m.Inc(1)
	m.SemPgb.DeferWorker()
}

func (m *model) DeferMain() {
	m.Complete()
	if m.bar != nil {
		m.bar.Wait()
	}
	m.SemPgb.DeferMain()
}

func (m *model) GetMPB() interface{} {
	if m.bar == nil {
		return nil
	}
	return m.bar
}

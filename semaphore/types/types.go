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

// Package types declares the shapes shared by the semaphore facade and its
// sem/bar/nobar implementations, so none of those packages need to import
// one another directly.
package types

import "context"

// SemPgb is a weighted worker limiter that may or may not be backed by a
// live *mpb.Progress instance (GetMPB returns nil when it is not).
type SemPgb interface {
	context.Context

	Weighted() int64
	NewWorker() error
	NewWorkerTry() bool
	DeferWorker()
	WaitAll() error
	DeferMain()
	New() SemPgb

	GetMPB() interface{}
}

// Bar is one unit of progress tracked against a SemPgb's worker limit. A
// headless SemPgb (no progress bar enabled) still returns a Bar from every
// factory method, just one whose increments are discarded.
type Bar interface {
	context.Context

	Weighted() int64
	NewWorker() error
	NewWorkerTry() bool
	DeferWorker()
	WaitAll() error
	New() SemPgb

	Inc(n int)
	Inc64(n int64)
	Dec(n int)
	Dec64(n int64)
	Reset(total int64, current int64)
	Total() int64
	Current() int64
	Completed() bool
	Complete()
	DeferMain()
}

// BarMPB is implemented by a Bar that can expose its underlying *mpb.Bar;
// absent (or nil) when the bar was created with no progress reporting.
type BarMPB interface {
	GetMPB() interface{}
}

// Semaphore is the public facade: a SemPgb plus the Bar factories.
type Semaphore interface {
	SemPgb

	// Clone returns an independent Semaphore with the same weight,
	// sharing the same *mpb.Progress container (if any) instead of
	// starting a fresh one.
	Clone() Semaphore

	BarBytes(title string, item string, total int64, drop bool, prev Bar) Bar
	BarTime(title string, item string, total int64, drop bool, prev Bar) Bar
	BarNumber(title string, item string, total int64, drop bool, prev Bar) Bar
	BarOpts(total int64, drop bool) Bar
}
